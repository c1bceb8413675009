package analyzer

import "github.com/CodeMonkeyCybersecurity/crumbs/pkg/cookie"

func floatPtr(f float64) *float64 { return &f }

// DemoCookies returns a small set of example cookies exhibiting the common
// misconfiguration patterns, for trying out the analyzer without a browser.
func DemoCookies() []cookie.Cookie {
	return []cookie.Cookie{
		{
			// Auth token readable by scripts and sent cross-site.
			Name:           "session_token",
			Domain:         ".mybank.com",
			Path:           "/",
			Secure:         true,
			HTTPOnly:       false,
			SameSite:       cookie.SameSiteUnset,
			ExpirationDate: floatPtr(1748736000),
			Value:          "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.eyJ1c2VySWQiOiIxMjM0NSJ9.SflKxwRJ",
		},
		{
			Name:           "user_preferences",
			Domain:         "mybank.com",
			Path:           "/",
			Secure:         false,
			HTTPOnly:       false,
			SameSite:       cookie.SameSiteLax,
			ExpirationDate: floatPtr(1780272000),
			Value:          "theme=dark;lang=en",
		},
		{
			Name:           "_ga",
			Domain:         ".mybank.com",
			Path:           "/",
			Secure:         false,
			HTTPOnly:       false,
			SameSite:       cookie.SameSiteUnset,
			ExpirationDate: floatPtr(1780272000),
			Value:          "GA1.2.123456789.1234567890",
		},
		{
			// Well-configured remember-me token.
			Name:           "auth_remember",
			Domain:         ".mybank.com",
			Path:           "/",
			Secure:         true,
			HTTPOnly:       true,
			SameSite:       cookie.SameSiteStrict,
			ExpirationDate: floatPtr(1743552000),
			Value:          "a1b2c3d4e5f6",
		},
		{
			// Session cookie served over plain HTTP.
			Name:     "JSESSIONID",
			Domain:   "shop.example.com",
			Path:     "/",
			Secure:   false,
			HTTPOnly: true,
			SameSite: cookie.SameSiteLax,
			Value:    "5F4DCC3B5AA765D61D8327DEB882CF99",
		},
	}
}
