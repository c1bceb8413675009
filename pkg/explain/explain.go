// Package explain produces the human-readable justification for a cookie's
// classification and risk score: rule-based signal lists merged with optional
// model attributions, plus a transparent re-derivation of the risk formula.
//
// The formula breakdown is reconstructed from issue titles and is display-only;
// it may diverge slightly from the scorer's exact arithmetic and must never be
// treated as the scoring source of truth.
package explain

import (
	"strings"

	"github.com/CodeMonkeyCybersecurity/crumbs/pkg/classifier"
	"github.com/CodeMonkeyCybersecurity/crumbs/pkg/features"
	"github.com/CodeMonkeyCybersecurity/crumbs/pkg/risk"
	"github.com/CodeMonkeyCybersecurity/crumbs/pkg/types"
)

type signalDef struct {
	feature string
	short   string
	detail  string
}

// Signal definitions are ordered by priority; truncation keeps the top
// entries.
var authSignalDefs = []signalDef{
	{"name_matches_auth", "Identity keyword in name", "Cookie name matches authentication patterns (session, auth, token, etc.)"},
	{"f_changed_during_login", "Changed during login", "Cookie value changed when user logged in - strong authentication signal"},
	{"f_new_after_login", "Appeared after login", "Cookie was created during the login process"},
	{"f_rotated_after_login", "Rotated after login", "Cookie value was rotated at login - typical of session tokens"},
	{"has_httponly", "HttpOnly flag set", "Server restricted JavaScript access - common for auth cookies"},
	{"has_secure", "Secure flag set", "Cookie requires HTTPS - standard for sensitive tokens"},
	{"is_session_cookie", "Session-scoped", "Cookie expires when browser closes - typical for session tokens"},
	{"value_looks_like_jwt", "JWT token pattern", "Value matches JSON Web Token structure (header.payload.signature)"},
	{"value_entropy_bucket", "High-entropy token", "Cookie value has high randomness - characteristic of cryptographic tokens"},
	{"value_looks_like_hex", "Hex token value", "Value is hexadecimal - common for session identifiers"},
	{"value_length_bucket", "Long token value", "Cookie value length suggests a security token"},
	{"has_host_prefix", "__Host- prefix", "Uses secure __Host- prefix - locked to specific origin"},
	{"has_secure_prefix", "__Secure- prefix", "Uses __Secure- prefix - requires HTTPS"},
	{"f_login_behavior_score", "Strong login correlation", "Multiple login-related behavior signals detected"},
}

var riskSignalDefs = []signalDef{
	{"cross_site_sendable", "Sent cross-site (SameSite=None)", "Cookie is sent with cross-origin requests, enabling CSRF attacks"},
	{"domain_is_wildcard", "Shared across subdomains", "Wildcard domain scope - any subdomain can access this cookie"},
	{"f_subdomain_shared", "Subdomain-shared scope", "Cookie accessible to multiple subdomains - broader attack surface"},
	{"f_third_party_context", "Third-party context", "Cookie set by or shared with a different domain"},
	{"exposure_score", "High exposure score", "Combined domain scope and lifetime create elevated exposure"},
	{"f_persistent_days_bucket", "Long-lived cookie", "Extended lifetime increases window for replay attacks"},
}

var trackingSignalDefs = []signalDef{
	{"name_matches_tracking", "Tracking keyword in name", "Name matches known analytics/tracking patterns (_ga, fbp, etc.)"},
	{"f_third_party_context", "Third-party tracker", "Cookie is set by an external domain - typical of ad/analytics trackers"},
}

// severityPointMap recreates the scorer's per-rule point values by matching
// lowercase issue title fragments.
var severityPointMap = []struct {
	pattern string
	points  int
}{
	{"httponly", 40},
	{"secure flag", 25},
	{"samesite", 20},
	{"wildcard domain", 15},
	{"long-lived", 10},
	{"moderate session", 5},
	{"multi-day", 3},
	{"broad path", 5},
	{"non-host-only", 6},
	{"shared cookie", 4},
}

type Signal struct {
	Signal    string  `json:"signal"`
	Detail    string  `json:"detail"`
	Feature   string  `json:"feature"`
	Value     float64 `json:"value"`
	Direction string  `json:"direction,omitempty"`
	// ModelWeight is set for signals sourced from model attribution.
	ModelWeight float64 `json:"coefficient_contribution,omitempty"`
}

type FormulaComponents struct {
	AuthGate       float64 `json:"auth_gate"`
	SeverityPoints int     `json:"severity_points"`
	BreadthFactor  float64 `json:"breadth_factor"`
	LifetimeFactor float64 `json:"lifetime_factor"`
	EstimatedScore int     `json:"estimated_score"`
}

type Formula struct {
	Components     FormulaComponents `json:"components"`
	Formula        string            `json:"formula"`
	Interpretation string            `json:"interpretation"`
}

type Result struct {
	AuthSignals     []Signal `json:"auth_signals"`
	RiskSignals     []Signal `json:"risk_signals"`
	TrackingSignals []Signal `json:"tracking_signals"`
	Formula         Formula  `json:"risk_formula"`
}

const formulaText = "RiskScore = Sum(Severity Points) x Breadth x Lifetime  [gated on P(auth) > 0.3]"

// Explain builds the explainability payload for one cookie's analysis.
func Explain(v features.Vector, cls classifier.Classification, issues []risk.Issue) Result {
	var authSignals, riskSignals, trackingSignals []Signal

	authProb := cls.AuthProbability()

	if cls.Type == types.TypeAuthentication || authProb > 0.3 {
		for _, def := range authSignalDefs {
			val := v.Get(def.feature)
			if isActive(def.feature, val) {
				authSignals = append(authSignals, Signal{
					Signal:    def.short,
					Detail:    def.detail,
					Feature:   def.feature,
					Value:     val,
					Direction: "positive",
				})
			}
		}

		// Merge model attributions, skipping features the rules already
		// surfaced.
		for _, drv := range cls.AuthDrivers {
			if drv.Value <= 0 || hasFeature(authSignals, drv.Feature) {
				continue
			}
			short, detail := lookupAuthText(drv.Feature)
			authSignals = append(authSignals, Signal{
				Signal:      short,
				Detail:      detail,
				Feature:     drv.Feature,
				Value:       drv.Value,
				Direction:   "positive",
				ModelWeight: drv.Weight,
			})
		}
	}

	for _, def := range riskSignalDefs {
		val := v.Get(def.feature)
		if isActive(def.feature, val) {
			riskSignals = append(riskSignals, Signal{
				Signal: def.short, Detail: def.detail, Feature: def.feature, Value: val,
			})
		}
	}

	if cls.Type == types.TypeTracking || cls.Probabilities[types.TypeTracking] > 0.3 {
		for _, def := range trackingSignalDefs {
			val := v.Get(def.feature)
			if isActive(def.feature, val) {
				trackingSignals = append(trackingSignals, Signal{
					Signal: def.short, Detail: def.detail, Feature: def.feature, Value: val,
				})
			}
		}
	}

	points := reconstructPoints(issues)

	breadth := 1.0
	if v.Get("domain_is_wildcard") > 0 {
		breadth = 1.5
	}
	lifetime := 1.0
	if v.Get("is_session_cookie") == 0 {
		lifetime = 1.0 + minFloat(v.Get("expiry_days")/365.0, 1.0)
	}

	estimated := 0
	if authProb > 0.3 {
		estimated = int(float64(points) * breadth * lifetime)
	}

	return Result{
		AuthSignals:     truncate(authSignals, 5),
		RiskSignals:     truncate(riskSignals, 3),
		TrackingSignals: truncate(trackingSignals, 3),
		Formula: Formula{
			Components: FormulaComponents{
				AuthGate:       round3(authProb),
				SeverityPoints: points,
				BreadthFactor:  round2(breadth),
				LifetimeFactor: round2(lifetime),
				EstimatedScore: estimated,
			},
			Formula:        formulaText,
			Interpretation: interpret(authProb, points, breadth*lifetime),
		},
	}
}

func reconstructPoints(issues []risk.Issue) int {
	points := 0
	for _, issue := range issues {
		title := strings.ToLower(issue.Title)
		for _, entry := range severityPointMap {
			if strings.Contains(title, entry.pattern) {
				points += entry.points
				break
			}
		}
	}
	return points
}

// isActive applies per-feature activation thresholds; plain booleans just need
// to be set.
func isActive(name string, value float64) bool {
	switch name {
	case "value_entropy_bucket", "value_length_bucket", "f_login_behavior_score":
		return value >= 2
	case "exposure_score":
		return value > 1.5
	case "f_persistent_days_bucket":
		return value >= 3
	default:
		return value > 0
	}
}

func interpret(authProb float64, points int, exposure float64) string {
	estimated := 0
	if authProb > 0.3 {
		estimated = int(float64(points) * exposure)
	}
	switch {
	case authProb > 0.7 && estimated >= 50:
		return "High-confidence auth cookie with critical security gaps - account takeover possible"
	case authProb > 0.7 && estimated >= 30:
		return "High-confidence auth cookie with significant security gaps"
	case authProb > 0.7 && estimated < 15:
		return "Auth cookie with good security posture - low risk"
	case authProb > 0.3 && estimated >= 30:
		return "Possible auth cookie with elevated risk from missing protections"
	case authProb > 0.3 && estimated > 0:
		return "Possible auth cookie with moderate risk"
	case authProb <= 0.3:
		return "Low authentication probability - severity checks not applied"
	default:
		return "Minimal security concerns detected"
	}
}

func lookupAuthText(feature string) (string, string) {
	for _, def := range authSignalDefs {
		if def.feature == feature {
			return def.short, def.detail
		}
	}
	return titleize(feature), ""
}

func hasFeature(signals []Signal, feature string) bool {
	for _, s := range signals {
		if s.Feature == feature {
			return true
		}
	}
	return false
}

func titleize(feature string) string {
	words := strings.Split(feature, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func truncate(signals []Signal, n int) []Signal {
	if len(signals) > n {
		return signals[:n]
	}
	return signals
}

func round2(f float64) float64 { return float64(int(f*100+0.5)) / 100 }
func round3(f float64) float64 { return float64(int(f*1000+0.5)) / 1000 }

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
