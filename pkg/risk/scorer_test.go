package risk

import (
	"math/rand"
	"testing"
	"time"

	"github.com/CodeMonkeyCybersecurity/crumbs/pkg/classifier"
	"github.com/CodeMonkeyCybersecurity/crumbs/pkg/cookie"
	"github.com/CodeMonkeyCybersecurity/crumbs/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

func testScorer() *Scorer {
	return &Scorer{now: func() time.Time { return testNow }}
}

func expiryIn(days int) *float64 {
	ts := float64(testNow.Unix() + int64(days)*86400)
	return &ts
}

func boolPtr(b bool) *bool { return &b }

func classificationFor(t types.CookieType, confidence float64) classifier.Classification {
	rest := (1 - confidence) / 3
	probs := make(map[types.CookieType]float64, 4)
	for _, ct := range types.CookieTypes {
		if ct == t {
			probs[ct] = confidence
		} else {
			probs[ct] = rest
		}
	}
	return classifier.Classification{Type: t, Confidence: confidence, Probabilities: probs}
}

func authClassification() classifier.Classification {
	return classificationFor(types.TypeAuthentication, 0.95)
}

func TestNonAuthCookiesAreNotScored(t *testing.T) {
	s := testScorer()

	// Every flag wrong, but tracking type with low P(auth) means zero score.
	c := cookie.Cookie{
		Name:           "_ga",
		Domain:         ".example.com",
		Path:           "/",
		Secure:         false,
		HTTPOnly:       false,
		ExpirationDate: expiryIn(400),
	}

	result := s.Analyze(c, classificationFor(types.TypeTracking, 0.95), "")
	assert.Equal(t, 0, result.Assessment.Score)
	assert.Equal(t, types.SeverityInfo, result.Assessment.Severity)
	assert.Empty(t, result.Issues)
	assert.Empty(t, result.Recommendations)
}

func TestAuthGateOnProbability(t *testing.T) {
	s := testScorer()
	c := cookie.Cookie{Name: "mystery", HTTPOnly: false, Secure: true, SameSite: cookie.SameSiteStrict}

	// Type is other but P(auth) above the gate still triggers scoring.
	cls := classificationFor(types.TypeOther, 0.5)
	cls.Probabilities[types.TypeAuthentication] = 0.4

	result := s.Analyze(c, cls, "")
	assert.Greater(t, result.Assessment.Score, 0)
	require.NotEmpty(t, result.Issues)
	assert.Equal(t, "Missing HttpOnly Flag", result.Issues[0].Title)
}

func TestWildcardBankCookie(t *testing.T) {
	s := testScorer()

	c := cookie.Cookie{
		Name:     "session_token",
		Domain:   ".bank.com",
		Path:     "/app",
		Secure:   true,
		HTTPOnly: false,
		SameSite: cookie.SameSiteNone,
	}

	result := s.Analyze(c, authClassification(), "")

	titles := make([]string, 0, len(result.Issues))
	for _, issue := range result.Issues {
		titles = append(titles, issue.Title)
	}
	assert.Contains(t, titles, "Missing HttpOnly Flag")
	assert.Contains(t, titles, "Missing SameSite Protection")
	assert.Contains(t, titles, "Wildcard Domain - Subdomain Takeover Risk")

	// 40 + 20 + 15 = 75 raw, breadth 1.5, lifetime 1.0 for a session cookie.
	assert.Equal(t, 112, result.Assessment.Score)
	assert.Equal(t, types.SeverityCritical, result.Assessment.Severity)
}

func TestMissingHTTPOnlyContribution(t *testing.T) {
	s := testScorer()

	base := cookie.Cookie{
		Name:     "session_token",
		Domain:   "example.com",
		Path:     "/app",
		Secure:   true,
		HTTPOnly: false,
		SameSite: cookie.SameSiteStrict,
	}

	// The only violation is HttpOnly, so the score is exactly its 40 points.
	only := s.Analyze(base, authClassification(), "")
	assert.Equal(t, 40, only.Assessment.Score)

	// Dropping another flag can only push the score up.
	worse := base
	worse.Secure = false
	assert.GreaterOrEqual(t,
		s.Analyze(worse, authClassification(), "").Assessment.Score,
		only.Assessment.Score,
	)

	worst := worse
	worst.SameSite = cookie.SameSiteUnset
	assert.GreaterOrEqual(t,
		s.Analyze(worst, authClassification(), "").Assessment.Score,
		s.Analyze(worse, authClassification(), "").Assessment.Score,
	)
}

func TestHostPrefixUnverifiable(t *testing.T) {
	s := testScorer()

	c := cookie.Cookie{
		Name:     "__Host-session",
		Path:     "/",
		Secure:   true,
		HTTPOnly: true,
		SameSite: cookie.SameSiteStrict,
	}

	result := s.Analyze(c, authClassification(), "")
	require.Len(t, result.Issues, 1)
	assert.Equal(t, types.SeverityInfo, result.Issues[0].Severity)
	assert.Equal(t, "__Host- compliance not verifiable", result.Issues[0].Title)
	assert.Equal(t, 0, result.Assessment.Score)
}

func TestHostPrefixViolation(t *testing.T) {
	s := testScorer()

	c := cookie.Cookie{
		Name:     "__Host-session",
		Domain:   "example.com",
		Path:     "/",
		Secure:   true,
		HTTPOnly: true,
		SameSite: cookie.SameSiteStrict,
		HostOnly: boolPtr(false),
	}

	result := s.Analyze(c, authClassification(), "")
	require.NotEmpty(t, result.Issues)
	assert.Equal(t, "__Host- prefix requires host-only cookie", result.Issues[0].Title)
	// 20 points at breadth 1.3.
	assert.Equal(t, 26, result.Assessment.Score)
}

func TestSiteHostExemptsDomainScope(t *testing.T) {
	s := testScorer()

	c := cookie.Cookie{
		Name:     "session_token",
		Domain:   "example.com",
		Path:     "/app",
		Secure:   true,
		HTTPOnly: true,
		SameSite: cookie.SameSiteStrict,
		HostOnly: boolPtr(false),
	}

	flagged := s.Analyze(c, authClassification(), "")
	assert.Equal(t, 6, flagged.Assessment.Score)

	exempt := s.Analyze(c, authClassification(), "example.com")
	assert.Equal(t, 0, exempt.Assessment.Score)
}

func TestLifetimeRules(t *testing.T) {
	s := testScorer()

	base := cookie.Cookie{
		Name:     "session_token",
		Domain:   "example.com",
		Path:     "/app",
		Secure:   true,
		HTTPOnly: true,
		SameSite: cookie.SameSiteStrict,
	}

	tests := []struct {
		name          string
		days          int
		expectedTitle string
		expectedScore int
	}{
		// int(points * (1 + days/365)): 3*1.0137, 5*1.0411, 10*1.1644.
		{"multi day", 5, "Multi-Day Session", 3},
		{"moderate", 15, "Moderate Session Lifetime", 5},
		{"long lived", 60, "Long-Lived Session Cookie", 11},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			c.ExpirationDate = expiryIn(tt.days)
			result := s.Analyze(c, authClassification(), "")
			require.Len(t, result.Issues, 1)
			assert.Equal(t, tt.expectedTitle, result.Issues[0].Title)
			assert.Equal(t, tt.expectedScore, result.Assessment.Score)
		})
	}

	short := base
	short.ExpirationDate = expiryIn(1)
	assert.Empty(t, s.Analyze(short, authClassification(), "").Issues)
}

func TestSummaryMentionsIssueCount(t *testing.T) {
	s := testScorer()

	c := cookie.Cookie{Name: "session_token", Secure: true, SameSite: cookie.SameSiteStrict}
	result := s.Analyze(c, authClassification(), "")
	assert.Contains(t, result.Summary, "session_token")
	assert.Contains(t, result.Summary, "Found 1 issue(s)")

	clean := cookie.Cookie{Name: "session_token", Secure: true, HTTPOnly: true, SameSite: cookie.SameSiteStrict}
	cleanResult := s.Analyze(clean, authClassification(), "")
	assert.Contains(t, cleanResult.Summary, "No significant concerns")
	assert.NotEmpty(t, cleanResult.ID)
}

// TestScoreRoundTrip rebuilds the documented formula from scratch for random
// attribute combinations and requires the scorer to agree exactly.
func TestScoreRoundTrip(t *testing.T) {
	s := testScorer()
	rng := rand.New(rand.NewSource(42))

	sameSites := []cookie.SameSite{
		cookie.SameSiteStrict, cookie.SameSiteLax, cookie.SameSiteNone, cookie.SameSiteUnset,
	}
	dayChoices := []int{-1, 0, 2, 3, 5, 8, 15, 31, 60, 400}

	for i := 0; i < 500; i++ {
		httpOnly := rng.Intn(2) == 0
		secure := rng.Intn(2) == 0
		sameSite := sameSites[rng.Intn(len(sameSites))]
		wildcard := rng.Intn(2) == 0
		rootPath := rng.Intn(2) == 0
		days := dayChoices[rng.Intn(len(dayChoices))]

		c := cookie.Cookie{
			Name:     "session_token",
			Secure:   secure,
			HTTPOnly: httpOnly,
			SameSite: sameSite,
		}
		if wildcard {
			c.Domain = ".example.com"
		} else {
			c.Domain = "example.com"
		}
		if rootPath {
			c.Path = "/"
		} else {
			c.Path = "/app"
		}
		if days >= 0 {
			c.ExpirationDate = expiryIn(days)
		}

		points := 0
		if !httpOnly {
			points += 40
		}
		if !secure {
			points += 25
		}
		if sameSite.CrossSiteSendable() {
			points += 20
		}
		breadth := 1.0
		if wildcard {
			points += 15
			breadth = 1.5
			if rootPath {
				points += 5
			}
		}
		lifetime := 1.0
		if days >= 0 {
			switch {
			case days > 30:
				points += 10
			case days > 7:
				points += 5
			case days >= 3:
				points += 3
			}
			lifetime = 1.0 + minFloat(float64(days)/365.0, 1.0)
		}
		expected := int(float64(points) * breadth * lifetime)

		result := s.Analyze(c, authClassification(), "")
		require.Equal(t, expected, result.Assessment.Score,
			"httpOnly=%v secure=%v sameSite=%q wildcard=%v root=%v days=%d",
			httpOnly, secure, sameSite, wildcard, rootPath, days)
	}
}

func TestRankOrdersByScoreThenAuthProbability(t *testing.T) {
	lowAuth := classificationFor(types.TypeOther, 0.6)
	highAuth := authClassification()

	results := []Result{
		{CookieName: "c", Assessment: Assessment{Score: 10}, Classification: lowAuth},
		{CookieName: "a", Assessment: Assessment{Score: 50}, Classification: lowAuth},
		{CookieName: "b", Assessment: Assessment{Score: 10}, Classification: highAuth},
	}

	ranked := Rank(results)
	assert.Equal(t, "a", ranked[0].CookieName)
	assert.Equal(t, "b", ranked[1].CookieName)
	assert.Equal(t, "c", ranked[2].CookieName)
}
