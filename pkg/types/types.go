package types

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
)

// SeverityForScore maps a final risk score onto the severity tiers.
func SeverityForScore(score int) Severity {
	switch {
	case score >= 50:
		return SeverityCritical
	case score >= 30:
		return SeverityHigh
	case score >= 15:
		return SeverityMedium
	case score > 0:
		return SeverityLow
	default:
		return SeverityInfo
	}
}

type CookieType string

const (
	TypeAuthentication CookieType = "authentication"
	TypeTracking       CookieType = "tracking"
	TypePreference     CookieType = "preference"
	TypeOther          CookieType = "other"
)

// CookieTypes lists every classification label. Probability maps returned by a
// classifier must carry all of these keys.
var CookieTypes = []CookieType{TypeAuthentication, TypeTracking, TypePreference, TypeOther}
