// Package risk converts a cookie's attributes and classification into a
// severity-ranked assessment: issues, a numeric score with interacting
// breadth/lifetime multipliers, and plain-language recommendations.
package risk

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/CodeMonkeyCybersecurity/crumbs/pkg/classifier"
	"github.com/CodeMonkeyCybersecurity/crumbs/pkg/cookie"
	"github.com/CodeMonkeyCybersecurity/crumbs/pkg/types"
)

// Scoring rules fire only for cookies whose authentication probability clears
// this gate (or whose predicted type is authentication outright).
const authGate = 0.3

type Issue struct {
	Severity    types.Severity `json:"severity"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Impact      string         `json:"impact"`
}

type Assessment struct {
	Severity types.Severity `json:"severity"`
	Score    int            `json:"score"`
	MaxScore int            `json:"max_score"`
}

// Attributes echoes the normalized cookie attributes back in the result so
// report consumers never re-parse collector records.
type Attributes struct {
	Domain         string          `json:"domain"`
	Path           string          `json:"path"`
	Secure         bool            `json:"secure"`
	HTTPOnly       bool            `json:"httpOnly"`
	SameSite       cookie.SameSite `json:"sameSite"`
	ExpirationDate *float64        `json:"expirationDate,omitempty"`
	HostOnly       *bool           `json:"hostOnly,omitempty"`
}

type Result struct {
	ID              string                    `json:"id"`
	CookieName      string                    `json:"cookie_name"`
	CookieDomain    string                    `json:"cookie_domain"`
	Attributes      Attributes                `json:"cookie_attributes"`
	Classification  classifier.Classification `json:"classification"`
	Assessment      Assessment                `json:"risk_assessment"`
	Issues          []Issue                   `json:"issues"`
	Recommendations []string                  `json:"recommendations"`
	Summary         string                    `json:"summary"`
}

// Scorer is stateless apart from its clock, injectable for deterministic
// lifetime tests.
type Scorer struct {
	now func() time.Time
}

func NewScorer() *Scorer {
	return &Scorer{now: time.Now}
}

// Analyze scores one cookie. siteHost, when known, exempts a Domain attribute
// equal to the scanned host from the scope penalty. It never fails: sparse
// cookies simply trigger fewer rules.
func (s *Scorer) Analyze(c cookie.Cookie, cls classifier.Classification, siteHost string) Result {
	var (
		issues          []Issue
		recommendations []string
		rawPoints       int
	)

	isAuth := cls.Type == types.TypeAuthentication || cls.AuthProbability() > authGate

	breadthFactor := 1.0
	lifetimeFactor := 1.0

	if isAuth {
		if !c.HTTPOnly {
			issues = append(issues, Issue{
				Severity:    types.SeverityCritical,
				Title:       "Missing HttpOnly Flag",
				Description: "Cookie accessible via JavaScript - vulnerable to XSS attacks that can steal session tokens",
				Impact:      "Account takeover via cross-site scripting (XSS)",
			})
			rawPoints += 40
			recommendations = append(recommendations, "Set HttpOnly flag to prevent JavaScript access")
		}

		if !c.Secure {
			issues = append(issues, Issue{
				Severity:    types.SeverityHigh,
				Title:       "Missing Secure Flag",
				Description: "Cookie sent over HTTP - vulnerable to network interception",
				Impact:      "Session token exposure on unsecured connections",
			})
			rawPoints += 25
			recommendations = append(recommendations, "Set Secure flag to require HTTPS")
		}

		if c.SameSite.CrossSiteSendable() {
			issues = append(issues, Issue{
				Severity:    types.SeverityHigh,
				Title:       "Missing SameSite Protection",
				Description: "Cookie sent with cross-site requests - vulnerable to CSRF attacks",
				Impact:      "Unauthorized actions via cross-site request forgery",
			})
			rawPoints += 20
			recommendations = append(recommendations, "Set SameSite=Lax or Strict to prevent CSRF")
		}

		hasScopeIssue := false
		lowerName := strings.ToLower(c.Name)

		// Scope branches are mutually exclusive and checked in precedence
		// order: wildcard beats prefix contract beats explicit Domain beats
		// the weak naming heuristic.
		switch {
		case c.IsWildcardDomain():
			issues = append(issues, Issue{
				Severity: types.SeverityMedium,
				Title:    "Wildcard Domain - Subdomain Takeover Risk",
				Description: fmt.Sprintf(
					"Cookie accessible to all subdomains of %s. If attacker controls ANY subdomain, they can steal this cookie.",
					c.BareDomain()),
				Impact: "Session hijacking via compromised subdomain",
			})
			rawPoints += 15
			recommendations = append(recommendations, "Limit domain scope to a specific host (avoid leading dot)")
			hasScopeIssue = true
			breadthFactor = 1.5

		case c.HasHostPrefix():
			switch {
			case c.HostOnly != nil && !*c.HostOnly:
				issues = append(issues, Issue{
					Severity:    types.SeverityHigh,
					Title:       "__Host- prefix requires host-only cookie",
					Description: "__Host- cookies must NOT set Domain (hostOnly must be true).",
					Impact:      "Prefix contract violated; increases cookie scope",
				})
				rawPoints += 20
				recommendations = append(recommendations, "Remove Domain attribute (ensure hostOnly=true) for __Host- cookies")
				hasScopeIssue = true
				breadthFactor = 1.3
			case c.HostOnly == nil:
				// Unknown is not a misconfiguration; say so without scoring.
				issues = append(issues, Issue{
					Severity:    types.SeverityInfo,
					Title:       "__Host- compliance not verifiable",
					Description: "Cookie name uses __Host- prefix, but hostOnly flag was not provided by the collector. Include hostOnly to verify compliance.",
					Impact:      "Unable to assess prefix requirements",
				})
			}

		case c.HostOnly != nil && !*c.HostOnly && c.Domain != "" && c.Domain != "localhost" && c.Domain != "127.0.0.1":
			if siteHost == "" || c.Domain != siteHost {
				issues = append(issues, Issue{
					Severity: types.SeverityLow,
					Title:    "Non-host-only Domain Scope",
					Description: fmt.Sprintf(
						"Cookie appears to be set with a Domain attribute (%s). This can be intentional, but is broader than host-only.",
						c.Domain),
					Impact: "Potential cross-subdomain cookie access",
				})
				rawPoints += 6
				recommendations = append(recommendations, "Use host-only cookies when cross-subdomain sharing isn't required")
				hasScopeIssue = true
				breadthFactor = 1.15
			}

		case strings.Contains(lowerName, "shared") || strings.Contains(lowerName, "global"):
			issues = append(issues, Issue{
				Severity:    types.SeverityLow,
				Title:       "Shared Cookie Naming",
				Description: "Cookie name suggests it may be shared across subdomains.",
				Impact:      "Slightly increased attack surface",
			})
			rawPoints += 4
			hasScopeIssue = true
			breadthFactor = 1.05
		}

		if c.Path == "/" && hasScopeIssue && !c.HasHostPrefix() {
			issues = append(issues, Issue{
				Severity:    types.SeverityLow,
				Title:       "Broad Path Scope",
				Description: "Cookie accessible to all paths on domain. Consider limiting to specific paths like /api or /app.",
				Impact:      "Increased exposure surface",
			})
			rawPoints += 5
			recommendations = append(recommendations, "Limit path scope if possible (e.g., /api instead of /)")
		}

		if c.ExpirationDate != nil {
			days := s.daysUntil(*c.ExpirationDate)
			switch {
			case days > 30:
				issues = append(issues, Issue{
					Severity: types.SeverityMedium,
					Title:    "Long-Lived Session Cookie",
					Description: fmt.Sprintf(
						"Cookie expires in %d days. Extended lifetime increases window for session replay attacks.", days),
					Impact: "Extended exposure window for stolen tokens",
				})
				rawPoints += 10
				recommendations = append(recommendations, "Use shorter expiration time for session cookies")
			case days > 7:
				issues = append(issues, Issue{
					Severity: types.SeverityLow,
					Title:    "Moderate Session Lifetime",
					Description: fmt.Sprintf(
						"Cookie expires in %d days. Consider shorter lifetime for sensitive sessions.", days),
					Impact: "Moderate exposure window",
				})
				rawPoints += 5
				recommendations = append(recommendations, "Consider shorter session lifetime")
			case days >= 3:
				issues = append(issues, Issue{
					Severity:    types.SeverityLow,
					Title:       "Multi-Day Session",
					Description: fmt.Sprintf("Cookie expires in %d days", days),
					Impact:      "Extended session window",
				})
				rawPoints += 3
			}
			lifetimeFactor = 1.0 + minFloat(float64(days)/365.0, 1.0)
		}
	}

	score := int(float64(rawPoints) * breadthFactor * lifetimeFactor)
	severity := types.SeverityForScore(score)

	return Result{
		ID:           uuid.New().String(),
		CookieName:   c.Name,
		CookieDomain: c.Domain,
		Attributes: Attributes{
			Domain:         c.Domain,
			Path:           defaultPath(c.Path),
			Secure:         c.Secure,
			HTTPOnly:       c.HTTPOnly,
			SameSite:       c.SameSite,
			ExpirationDate: c.ExpirationDate,
			HostOnly:       c.HostOnly,
		},
		Classification:  cls,
		Assessment:      Assessment{Severity: severity, Score: score, MaxScore: 100},
		Issues:          issues,
		Recommendations: recommendations,
		Summary:         summarize(c.Name, cls, severity, len(issues)),
	}
}

func (s *Scorer) daysUntil(expiry float64) int {
	diff := expiry - float64(s.now().Unix())
	if diff <= 0 {
		return 0
	}
	return int(diff / 86400)
}

var typePhrases = map[types.CookieType]string{
	types.TypeAuthentication: "keeps you logged in",
	types.TypeTracking:       "tracks activity",
	types.TypePreference:     "stores preferences",
	types.TypeOther:          "serves functional purpose",
}

var severityPhrases = map[types.Severity]string{
	types.SeverityCritical: "CRITICAL - account takeover possible",
	types.SeverityHigh:     "HIGH RISK - significant exposure",
	types.SeverityMedium:   "MEDIUM RISK - some concerns",
	types.SeverityLow:      "LOW RISK - minor improvements possible",
	types.SeverityInfo:     "No significant concerns",
}

func summarize(name string, cls classifier.Classification, severity types.Severity, issueCount int) string {
	if name == "" {
		name = "Unknown"
	}
	phrase := typePhrases[cls.Type]
	if phrase == "" {
		phrase = typePhrases[types.TypeOther]
	}
	if issueCount > 0 {
		return fmt.Sprintf("Cookie '%s' likely %s (AI: %.0f%%). %s. Found %d issue(s).",
			name, phrase, cls.Confidence*100, severityPhrases[severity], issueCount)
	}
	return fmt.Sprintf("Cookie '%s' %s. %s.", name, phrase, severityPhrases[severity])
}

func defaultPath(p string) string {
	if p == "" {
		return "/"
	}
	return p
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
