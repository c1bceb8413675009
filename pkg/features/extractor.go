// Package features turns a normalized cookie plus optional login context into
// the fixed 38-feature vector consumed by the classifier and the
// explainability engine.
package features

import (
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/CodeMonkeyCybersecurity/crumbs/pkg/cookie"
)

var authPatterns = compileAll(
	`session`, `auth`, `token`, `login`, `jwt`, `bearer`, `sid`, `user`, `sso`, `refresh`,
)

var trackingPatterns = compileAll(
	`^_ga`, `^_gid`, `analytics`, `tracking`, `^utm`, `^fbp`, `amplitude`, `mixpanel`, `^_cl`,
)

var preferencePatterns = compileAll(
	`lang`, `theme`, `consent`, `preferences`, `settings`, `locale`, `timezone`, `currency`,
)

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(`(?i)` + p)
	}
	return out
}

var hexValue = regexp.MustCompile(`^[a-f0-9]+$`)

const base64Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/=-_"

// Group names, in vector order.
const (
	GroupAttributes = "attributes"
	GroupScope      = "scope"
	GroupLexical    = "lexical"
	GroupBehavior   = "behavior"
)

var groupOrder = []string{GroupAttributes, GroupScope, GroupLexical, GroupBehavior}

// Groups maps each feature group to its ordered member features.
var Groups = map[string][]string{
	GroupAttributes: {
		"has_secure", "has_httponly", "has_samesite", "samesite_level",
		"is_session_cookie", "expiry_days", "lifetime_category",
	},
	GroupScope: {
		"domain_is_wildcard", "domain_depth", "etld_match",
		"path_is_root", "path_depth", "cross_site_sendable", "exposure_score",
	},
	GroupLexical: {
		"name_matches_auth", "name_matches_tracking", "name_matches_preference",
		"has_host_prefix", "has_secure_prefix", "name_entropy", "name_length",
		"name_has_underscore", "value_length", "value_entropy_bucket",
		"value_looks_like_jwt", "value_looks_like_hex", "value_looks_base64",
		"value_has_padding", "value_is_numeric", "value_length_bucket",
	},
	GroupBehavior: {
		"f_changed_during_login", "f_new_after_login", "f_rotated_after_login",
		"f_persistent_days_bucket", "f_subdomain_shared", "f_third_party_context",
		"f_login_behavior_score", "f_security_posture_score",
	},
}

// Names returns every numeric feature name in canonical order.
func Names() []string {
	var names []string
	for _, g := range groupOrder {
		names = append(names, Groups[g]...)
	}
	return names
}

// Vector is one cookie's extracted features. CookieName and CookieDomain are
// display metadata only and are never fed to a classifier.
type Vector struct {
	Values       map[string]float64 `json:"values"`
	CookieName   string             `json:"_cookie_name"`
	CookieDomain string             `json:"_cookie_domain"`
}

// Get returns a feature value, zero when absent.
func (v Vector) Get(name string) float64 {
	return v.Values[name]
}

// Ordered returns the values in canonical feature order, ready for a model.
func (v Vector) Ordered() []float64 {
	names := Names()
	out := make([]float64, len(names))
	for i, n := range names {
		out[i] = v.Values[n]
	}
	return out
}

// Extractor computes feature vectors. It is stateless apart from the clock,
// which is injectable so expiry-derived features stay deterministic in tests.
type Extractor struct {
	now func() time.Time
}

func NewExtractor() *Extractor {
	return &Extractor{now: time.Now}
}

// Extract never fails: missing fields contribute zero-valued features.
func (e *Extractor) Extract(c cookie.Cookie, ctx *cookie.Context) Vector {
	f := make(map[string]float64, 38)

	// Attributes
	f["has_secure"] = boolFeature(c.Secure)
	f["has_httponly"] = boolFeature(c.HTTPOnly)
	f["has_samesite"] = boolFeature(c.SameSite != cookie.SameSiteUnset)
	f["samesite_level"] = float64(c.SameSite.Level())

	days := 0
	if c.ExpirationDate != nil {
		days = e.daysUntil(*c.ExpirationDate)
		f["is_session_cookie"] = 0
		f["expiry_days"] = math.Min(float64(days), 365)
		f["lifetime_category"] = lifetimeCategory(days)
	} else {
		f["is_session_cookie"] = 1
		f["expiry_days"] = 0
		f["lifetime_category"] = 0
	}

	// Scope
	path := c.Path
	if path == "" {
		path = "/"
	}
	f["domain_is_wildcard"] = boolFeature(c.IsWildcardDomain())
	f["domain_depth"] = float64(strings.Count(c.Domain, "."))
	f["etld_match"] = 1
	f["path_is_root"] = boolFeature(path == "/")
	f["path_depth"] = math.Max(float64(strings.Count(path, "/")-1), 0)
	f["cross_site_sendable"] = boolFeature(c.SameSite.CrossSiteSendable())
	wildcardFactor := 1.0
	if c.IsWildcardDomain() {
		wildcardFactor = 2.0
	}
	f["exposure_score"] = wildcardFactor * (1 + f["expiry_days"]/365.0)

	// Lexical
	name := strings.ToLower(c.Name)
	f["name_matches_auth"] = boolFeature(anyMatch(authPatterns, name))
	f["name_matches_tracking"] = boolFeature(anyMatch(trackingPatterns, name))
	f["name_matches_preference"] = boolFeature(anyMatch(preferencePatterns, name))
	f["has_host_prefix"] = boolFeature(strings.HasPrefix(name, "__host-"))
	f["has_secure_prefix"] = boolFeature(strings.HasPrefix(name, "__secure-"))
	f["name_entropy"] = Entropy(name)
	f["name_length"] = float64(len(name))
	f["name_has_underscore"] = boolFeature(strings.Contains(name, "_"))

	if c.Value != "" {
		v := c.Value
		ent := Entropy(v)
		f["value_length"] = float64(len(v))
		f["value_entropy_bucket"] = entropyBucket(ent)
		f["value_looks_like_jwt"] = boolFeature(strings.Count(v, ".") == 2 && len(v) > 50)
		f["value_looks_like_hex"] = boolFeature(hexValue.MatchString(strings.ToLower(v)))
		f["value_looks_base64"] = boolFeature(looksBase64(v))
		f["value_has_padding"] = boolFeature(strings.HasSuffix(v, "="))
		f["value_is_numeric"] = boolFeature(isDigits(v))
		f["value_length_bucket"] = lengthBucket(len(v))
	} else {
		for _, k := range []string{
			"value_length", "value_entropy_bucket", "value_looks_like_jwt",
			"value_looks_like_hex", "value_looks_base64", "value_has_padding",
			"value_is_numeric", "value_length_bucket",
		} {
			f[k] = 0
		}
	}

	// Behavior. Direct flags win; otherwise a login transition in the context
	// drives derivation; otherwise the signals stay 0, meaning unknown.
	switch {
	case c.Login != nil:
		f["f_changed_during_login"] = boolFeature(c.Login.ChangedDuringLogin)
		f["f_new_after_login"] = boolFeature(c.Login.NewAfterLogin)
		f["f_rotated_after_login"] = boolFeature(c.Login.RotatedAfterLogin)
	case ctx != nil && ctx.LoginEvent && len(ctx.ChangedCookies) > 0:
		f["f_changed_during_login"] = boolFeature(ctx.Changed(c.Name))
		if len(ctx.BeforeCookieIndex) > 0 {
			before, wasPresent := ctx.BeforeCookieIndex[c.Name]
			f["f_new_after_login"] = boolFeature(!wasPresent)
			f["f_rotated_after_login"] = boolFeature(wasPresent && before.Present)
		} else {
			f["f_new_after_login"] = boolFeature(ctx.Changed(c.Name))
			f["f_rotated_after_login"] = 0
		}
	default:
		f["f_changed_during_login"] = 0
		f["f_new_after_login"] = 0
		f["f_rotated_after_login"] = 0
	}

	f["f_persistent_days_bucket"] = persistentDaysBucket(c.IsSession(), f["expiry_days"])
	f["f_subdomain_shared"] = boolFeature(c.IsWildcardDomain() || (c.HostOnly != nil && !*c.HostOnly))

	switch {
	case c.ThirdParty != nil:
		f["f_third_party_context"] = boolFeature(*c.ThirdParty)
	case ctx != nil && ctx.CurrentDomain != "":
		clean := c.BareDomain()
		f["f_third_party_context"] = boolFeature(
			clean != ctx.CurrentDomain && !strings.HasSuffix(clean, "."+ctx.CurrentDomain),
		)
	default:
		f["f_third_party_context"] = 0
	}

	f["f_login_behavior_score"] = f["f_changed_during_login"] + f["f_new_after_login"] + f["f_rotated_after_login"]
	f["f_security_posture_score"] = f["has_secure"] + f["has_httponly"] + math.Min(f["samesite_level"], 1)

	return Vector{
		Values:       f,
		CookieName:   c.Name,
		CookieDomain: c.Domain,
	}
}

// daysUntil returns whole days from now to the given unix timestamp, floored
// at zero.
func (e *Extractor) daysUntil(expiry float64) int {
	diff := expiry - float64(e.now().Unix())
	if diff <= 0 {
		return 0
	}
	return int(diff / 86400)
}

// Entropy is the Shannon entropy of the string's byte distribution, in bits.
func Entropy(s string) float64 {
	if s == "" {
		return 0
	}
	counts := make(map[rune]int)
	total := 0
	for _, r := range s {
		counts[r]++
		total++
	}
	ent := 0.0
	for _, cnt := range counts {
		p := float64(cnt) / float64(total)
		ent -= p * math.Log2(p)
	}
	return ent
}

// MatchesAuthName reports whether a cookie name matches the authentication
// keyword patterns. Shared with the rule-based fallback classifier.
func MatchesAuthName(name string) bool {
	return anyMatch(authPatterns, strings.ToLower(name))
}

// MatchesTrackingName reports whether a cookie name matches known
// analytics/tracking patterns.
func MatchesTrackingName(name string) bool {
	return anyMatch(trackingPatterns, strings.ToLower(name))
}

// MatchesPreferenceName reports whether a cookie name matches preference
// keyword patterns.
func MatchesPreferenceName(name string) bool {
	return anyMatch(preferencePatterns, strings.ToLower(name))
}

func anyMatch(patterns []*regexp.Regexp, s string) bool {
	for _, p := range patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

// looksBase64 tolerates up to 10% of distinct characters falling outside the
// base64 alphabet (minimum slack of one character).
func looksBase64(v string) bool {
	distinct := make(map[rune]bool)
	outside := make(map[rune]bool)
	for _, r := range v {
		distinct[r] = true
		if !strings.ContainsRune(base64Alphabet, r) {
			outside[r] = true
		}
	}
	limit := math.Max(float64(len(distinct))*0.1, 1)
	return float64(len(outside)) < limit
}

func isDigits(v string) bool {
	if v == "" {
		return false
	}
	for _, r := range v {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func lifetimeCategory(days int) float64 {
	switch {
	case days < 1:
		return 0
	case days < 7:
		return 1
	case days < 30:
		return 2
	default:
		return 3
	}
}

func entropyBucket(ent float64) float64 {
	switch {
	case ent < 2:
		return 0
	case ent < 4:
		return 1
	default:
		return 2
	}
}

func lengthBucket(n int) float64 {
	switch {
	case n < 20:
		return 0
	case n < 50:
		return 1
	case n < 100:
		return 2
	default:
		return 3
	}
}

func persistentDaysBucket(session bool, expiryDays float64) float64 {
	switch {
	case session:
		return 0
	case expiryDays <= 7:
		return 1
	case expiryDays <= 30:
		return 2
	default:
		return 3
	}
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
