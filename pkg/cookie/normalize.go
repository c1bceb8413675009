package cookie

import (
	"strings"
)

// Alias spellings seen in the wild across collectors and historical exports.
var (
	httpOnlyKeys = []string{"httpOnly", "HttpOnly", "httponly", "http_only"}
	secureKeys   = []string{"secure", "Secure"}
	sameSiteKeys = []string{"sameSite", "SameSite", "same_site", "samesite"}
	hostOnlyKeys = []string{"hostOnly", "HostOnly", "host_only"}
)

// FromMap builds a canonical Cookie from a loosely typed record. Missing or
// malformed fields degrade to their zero values; this function never fails.
func FromMap(raw map[string]interface{}) Cookie {
	c := Cookie{
		Name:   stringField(raw, "name"),
		Domain: stringField(raw, "domain"),
		Path:   stringField(raw, "path"),
		Value:  stringField(raw, "value"),
	}
	if c.Path == "" {
		c.Path = "/"
	}

	if v, ok := lookup(raw, secureKeys); ok {
		c.Secure = coerceBool(v)
	}
	if v, ok := lookup(raw, httpOnlyKeys); ok {
		c.HTTPOnly = coerceBool(v)
	}
	if v, ok := lookup(raw, sameSiteKeys); ok {
		if s, ok := v.(string); ok {
			c.SameSite = ParseSameSite(s)
		}
	}
	if v, ok := lookup(raw, hostOnlyKeys); ok && v != nil {
		b := coerceBool(v)
		c.HostOnly = &b
	}

	if v, ok := raw["expirationDate"]; ok && v != nil {
		if ts, ok := toFloat(v); ok {
			c.ExpirationDate = &ts
		}
	}

	// Behavior flags ride along in training data. Presence of the first key
	// selects the direct path, matching the extractor's resolution order.
	if _, ok := raw["changed_during_login"]; ok {
		c.Login = &LoginBehavior{
			ChangedDuringLogin: coerceBool(raw["changed_during_login"]),
			NewAfterLogin:      coerceBool(raw["new_after_login"]),
			RotatedAfterLogin:  coerceBool(raw["rotated_after_login"]),
		}
	}
	if v, ok := raw["third_party"]; ok {
		b := coerceBool(v)
		c.ThirdParty = &b
	}

	return c
}

func lookup(raw map[string]interface{}, keys []string) (interface{}, bool) {
	for _, k := range keys {
		if v, ok := raw[k]; ok {
			return v, true
		}
	}
	return nil, false
}

func stringField(raw map[string]interface{}, key string) string {
	if v, ok := raw[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// coerceBool maps the common flag encodings onto a bool. Unrecognized strings
// fall back to truthiness so a malformed record never aborts an analysis.
func coerceBool(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case int:
		return t != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "1", "yes", "y", "on":
			return true
		case "false", "0", "no", "n", "off", "":
			return false
		}
		return true
	default:
		return v != nil
	}
}

func toFloat(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	}
	return 0, false
}
