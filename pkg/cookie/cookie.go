// Package cookie holds the canonical cookie record consumed by the analysis
// pipeline. Collectors report cookie flags under many historical key spellings
// and value encodings; FromMap normalizes all of that once, at the boundary, so
// downstream components only ever see the canonical form.
package cookie

import (
	"strings"
)

// SameSite is the normalized SameSite attribute. Unknown strings from
// collectors are treated as not set rather than guessed at.
type SameSite string

const (
	SameSiteStrict SameSite = "strict"
	SameSiteLax    SameSite = "lax"
	SameSiteNone   SameSite = "none"
	SameSiteUnset  SameSite = ""
)

// ParseSameSite normalizes a raw SameSite string. "no_restriction" is the
// Chrome extension API spelling of None.
func ParseSameSite(raw string) SameSite {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "strict":
		return SameSiteStrict
	case "lax":
		return SameSiteLax
	case "none", "no_restriction":
		return SameSiteNone
	default:
		return SameSiteUnset
	}
}

// Level returns the ordinal strictness: Strict 2, Lax 1, anything else 0.
func (s SameSite) Level() int {
	switch s {
	case SameSiteStrict:
		return 2
	case SameSiteLax:
		return 1
	default:
		return 0
	}
}

// CrossSiteSendable reports whether the cookie rides along on cross-site
// requests (no SameSite restriction at all).
func (s SameSite) CrossSiteSendable() bool {
	return s == SameSiteUnset || s == SameSiteNone
}

// LoginBehavior carries behavior flags embedded directly in a cookie record.
// This is the offline/training path; at runtime the same signals are derived
// from a Context instead.
type LoginBehavior struct {
	ChangedDuringLogin bool `json:"changed_during_login"`
	NewAfterLogin      bool `json:"new_after_login"`
	RotatedAfterLogin  bool `json:"rotated_after_login"`
}

// Cookie is the canonical normalized record.
type Cookie struct {
	Name   string `json:"name"`
	Domain string `json:"domain"`
	Path   string `json:"path"`

	Secure   bool     `json:"secure"`
	HTTPOnly bool     `json:"httpOnly"`
	SameSite SameSite `json:"sameSite"`

	// ExpirationDate is a unix timestamp in seconds. nil means session cookie.
	ExpirationDate *float64 `json:"expirationDate,omitempty"`

	Value string `json:"value,omitempty"`

	// HostOnly is tri-state: collectors that cannot observe it leave it nil,
	// which is "unknown" and must not be conflated with false.
	HostOnly *bool `json:"hostOnly,omitempty"`

	// Login is non-nil only when behavior flags were supplied with the cookie.
	Login *LoginBehavior `json:"login,omitempty"`

	// ThirdParty, when set, overrides the context-derived third-party signal.
	ThirdParty *bool `json:"third_party,omitempty"`
}

// IsSession reports whether the cookie has no expiry.
func (c *Cookie) IsSession() bool {
	return c.ExpirationDate == nil
}

// HasHostPrefix checks the __Host- naming contract (case-sensitive, per RFC
// 6265bis prefix rules).
func (c *Cookie) HasHostPrefix() bool {
	return strings.HasPrefix(c.Name, "__Host-")
}

// IsWildcardDomain reports whether the cookie is scoped to all subdomains.
func (c *Cookie) IsWildcardDomain() bool {
	return strings.HasPrefix(c.Domain, ".")
}

// BareDomain returns the domain with any leading dot stripped.
func (c *Cookie) BareDomain() string {
	return strings.TrimPrefix(c.Domain, ".")
}

// BeforeCookie describes a cookie observed before a login transition.
type BeforeCookie struct {
	Present bool `json:"present"`
}

// Context carries optional runtime observations around a login event, used to
// derive behavior features when the cookie record itself has none.
type Context struct {
	LoginEvent        bool                    `json:"loginEvent"`
	ChangedCookies    []string                `json:"changedCookies"`
	BeforeCookieIndex map[string]BeforeCookie `json:"beforeCookieIndex"`
	CurrentDomain     string                  `json:"currentDomain"`
}

// Changed reports whether name is in the changed-cookies set.
func (ctx *Context) Changed(name string) bool {
	if ctx == nil {
		return false
	}
	for _, n := range ctx.ChangedCookies {
		if n == name {
			return true
		}
	}
	return false
}
