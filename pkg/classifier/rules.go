package classifier

import (
	"github.com/CodeMonkeyCybersecurity/crumbs/pkg/cookie"
	"github.com/CodeMonkeyCybersecurity/crumbs/pkg/features"
	"github.com/CodeMonkeyCybersecurity/crumbs/pkg/types"
)

// Well-known session identifier names set by common frameworks. An exact match
// overrides pattern scoring with a high-confidence label.
var knownAuthNames = map[string]bool{
	"JSESSIONID":        true,
	"PHPSESSID":         true,
	"ASP.NET_SessionId": true,
	"connect.sid":       true,
	"_session_id":       true,
	"sessionid":         true,
	"SID":               true,
	"SSID":              true,
	"csrftoken":         true,
	"XSRF-TOKEN":        true,
}

// Well-known analytics cookie names.
var knownTrackingNames = map[string]bool{
	"_ga":          true,
	"_gid":         true,
	"_gat":         true,
	"_fbp":         true,
	"_gcl_au":      true,
	"amplitude_id": true,
	"mp_mixpanel":  true,
	"_hjid":        true,
	"IDE":          true,
	"NID":          true,
}

const (
	overrideConfidence   = 0.95
	authConfidence       = 0.75
	trackingConfidence   = 0.80
	preferenceConfidence = 0.70
	otherConfidence      = 0.60
)

// RuleClassifier is the name-keyword fallback used when no trained model is
// available. Confidences are fixed; the remaining probability mass is split
// evenly across the other classes so distributions still sum to one.
type RuleClassifier struct{}

func NewRuleClassifier() *RuleClassifier {
	return &RuleClassifier{}
}

func (r *RuleClassifier) Classify(v features.Vector, c *cookie.Cookie) Classification {
	name := v.CookieName
	if c != nil {
		name = c.Name
	}

	if knownAuthNames[name] {
		return distribute(types.TypeAuthentication, overrideConfidence)
	}
	if knownTrackingNames[name] {
		return distribute(types.TypeTracking, overrideConfidence)
	}

	switch {
	case features.MatchesAuthName(name):
		return distribute(types.TypeAuthentication, authConfidence)
	case features.MatchesTrackingName(name):
		return distribute(types.TypeTracking, trackingConfidence)
	case features.MatchesPreferenceName(name):
		return distribute(types.TypePreference, preferenceConfidence)
	default:
		return distribute(types.TypeOther, otherConfidence)
	}
}

func distribute(predicted types.CookieType, confidence float64) Classification {
	rest := (1 - confidence) / float64(len(types.CookieTypes)-1)
	probs := make(map[types.CookieType]float64, len(types.CookieTypes))
	for _, t := range types.CookieTypes {
		if t == predicted {
			probs[t] = confidence
		} else {
			probs[t] = rest
		}
	}
	return Classification{
		Type:          predicted,
		Confidence:    confidence,
		Probabilities: probs,
	}
}
