package attack

import (
	"strings"
	"testing"
	"time"

	"github.com/CodeMonkeyCybersecurity/crumbs/pkg/cookie"
	"github.com/CodeMonkeyCybersecurity/crumbs/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

func testSimulator() *Simulator {
	return &Simulator{now: func() time.Time { return testNow }}
}

func expiryIn(days int) *float64 {
	ts := float64(testNow.Unix() + int64(days)*86400)
	return &ts
}

func pathTypes(sim Simulation) []PathType {
	out := make([]PathType, 0, len(sim.Paths))
	for _, p := range sim.Paths {
		out = append(out, p.Type)
	}
	return out
}

func TestXSSOnlyAuthCookie(t *testing.T) {
	s := testSimulator()

	c := cookie.Cookie{
		Name:     "session_token",
		Domain:   "example.com",
		Secure:   true,
		HTTPOnly: false,
		SameSite: cookie.SameSiteLax,
	}

	sim := s.Simulate(c, types.TypeAuthentication, nil)

	require.Len(t, sim.Paths, 1)
	assert.Equal(t, PathXSS, sim.Paths[0].Type)
	assert.Equal(t, types.SeverityCritical, sim.Paths[0].Severity)
	assert.Equal(t, 25, sim.AttackSurfaceScore)
	assert.True(t, strings.HasPrefix(sim.OverallRisk, "HIGH"), sim.OverallRisk)
	assert.Contains(t, sim.Impact, "XSS")
}

func TestXSSNonAuthIsMedium(t *testing.T) {
	s := testSimulator()

	c := cookie.Cookie{Name: "theme", Secure: true, HTTPOnly: false, SameSite: cookie.SameSiteLax}
	sim := s.Simulate(c, types.TypePreference, nil)

	require.Len(t, sim.Paths, 1)
	assert.Equal(t, types.SeverityMedium, sim.Paths[0].Severity)
	assert.True(t, strings.HasPrefix(sim.OverallRisk, "MODERATE"), sim.OverallRisk)
}

func TestCSRFPath(t *testing.T) {
	s := testSimulator()

	c := cookie.Cookie{
		Name:     "session_token",
		Secure:   true,
		HTTPOnly: true,
		SameSite: cookie.SameSiteNone,
	}

	sim := s.Simulate(c, types.TypeAuthentication, nil)
	require.Contains(t, pathTypes(sim), PathCSRF)
	require.Len(t, sim.Paths, 1)
	assert.Equal(t, types.SeverityHigh, sim.Paths[0].Severity)
	assert.Contains(t, sim.Impact, "CSRF")

	// Lax stops the cross-site send entirely.
	c.SameSite = cookie.SameSiteLax
	assert.Empty(t, s.Simulate(c, types.TypeAuthentication, nil).Paths)
}

func TestSubdomainPathAddsSiteFix(t *testing.T) {
	s := testSimulator()

	c := cookie.Cookie{
		Name:     "session_token",
		Domain:   ".example.com",
		Secure:   true,
		HTTPOnly: true,
		SameSite: cookie.SameSiteStrict,
	}

	sim := s.Simulate(c, types.TypeAuthentication, nil)
	require.Contains(t, pathTypes(sim), PathSubdomain)

	var fixTexts []string
	for _, f := range sim.Fixes {
		fixTexts = append(fixTexts, f.Fix)
	}
	assert.Contains(t, fixTexts, "Report to site security team")
}

func TestHostPrefixSkipsSiteFix(t *testing.T) {
	s := testSimulator()

	c := cookie.Cookie{
		Name:     "__Host-session",
		Domain:   ".example.com",
		Secure:   true,
		HTTPOnly: true,
		SameSite: cookie.SameSiteStrict,
	}

	sim := s.Simulate(c, types.TypeAuthentication, nil)
	for _, f := range sim.Fixes {
		assert.NotEqual(t, "Report to site security team", f.Fix)
	}
}

func TestNetworkPath(t *testing.T) {
	s := testSimulator()

	c := cookie.Cookie{
		Name:     "session_token",
		Secure:   false,
		HTTPOnly: true,
		SameSite: cookie.SameSiteStrict,
	}

	sim := s.Simulate(c, types.TypeAuthentication, nil)
	require.Len(t, sim.Paths, 1)
	assert.Equal(t, PathNetwork, sim.Paths[0].Type)
	assert.Equal(t, types.SeverityHigh, sim.Paths[0].Severity)
}

func TestReplayRequiresLongLivedAuthCookie(t *testing.T) {
	s := testSimulator()

	base := cookie.Cookie{
		Name:     "session_token",
		Secure:   true,
		HTTPOnly: true,
		SameSite: cookie.SameSiteStrict,
	}

	longLived := base
	longLived.ExpirationDate = expiryIn(90)
	sim := s.Simulate(longLived, types.TypeAuthentication, nil)
	require.Contains(t, pathTypes(sim), PathReplay)
	assert.Equal(t, types.SeverityMedium, sim.Paths[0].Severity)
	assert.Contains(t, sim.Paths[0].Description, "~90 days")

	shortLived := base
	shortLived.ExpirationDate = expiryIn(7)
	assert.Empty(t, s.Simulate(shortLived, types.TypeAuthentication, nil).Paths)

	// Non-auth cookies never get the replay path.
	nonAuth := s.Simulate(longLived, types.TypePreference, nil)
	assert.Empty(t, nonAuth.Paths)
}

func TestOverallRiskTiers(t *testing.T) {
	s := testSimulator()

	// Everything wrong on an auth cookie.
	worst := cookie.Cookie{
		Name:           "session_token",
		Domain:         ".example.com",
		Secure:         false,
		HTTPOnly:       false,
		SameSite:       cookie.SameSiteUnset,
		ExpirationDate: expiryIn(90),
	}
	sim := s.Simulate(worst, types.TypeAuthentication, nil)
	assert.Equal(t, 5, sim.PathCount)
	assert.Equal(t, 100, sim.AttackSurfaceScore)
	assert.True(t, strings.HasPrefix(sim.OverallRisk, "CRITICAL"), sim.OverallRisk)
	assert.Contains(t, sim.Impact, "full account compromise")

	// Fully hardened cookie has no paths at all.
	safe := cookie.Cookie{
		Name:     "__Host-session",
		Secure:   true,
		HTTPOnly: true,
		SameSite: cookie.SameSiteStrict,
	}
	clean := s.Simulate(safe, types.TypeAuthentication, nil)
	assert.Zero(t, clean.PathCount)
	assert.True(t, strings.HasPrefix(clean.OverallRisk, "LOW"), clean.OverallRisk)
	assert.Contains(t, clean.Impact, "No actionable attack vectors")
}

func TestFixesDeduplicated(t *testing.T) {
	s := testSimulator()

	c := cookie.Cookie{
		Name:           "session_token",
		Domain:         ".example.com",
		Secure:         false,
		HTTPOnly:       false,
		SameSite:       cookie.SameSiteUnset,
		ExpirationDate: expiryIn(90),
	}

	sim := s.Simulate(c, types.TypeAuthentication, nil)
	seen := make(map[string]bool)
	for _, f := range sim.Fixes {
		assert.False(t, seen[f.Fix], "duplicate fix %q", f.Fix)
		seen[f.Fix] = true
	}
}
