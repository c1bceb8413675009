package analyzer

import (
	"context"
	"testing"

	"github.com/CodeMonkeyCybersecurity/crumbs/pkg/attack"
	"github.com/CodeMonkeyCybersecurity/crumbs/pkg/cookie"
	"github.com/CodeMonkeyCybersecurity/crumbs/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeBatchRejectsEmptyInput(t *testing.T) {
	a := New()

	_, err := a.AnalyzeBatch(context.Background(), nil, nil)
	assert.ErrorIs(t, err, ErrEmptyBatch)

	_, err = a.AnalyzeBatch(context.Background(), []cookie.Cookie{}, nil)
	assert.ErrorIs(t, err, ErrEmptyBatch)
}

func TestAnalyzeCookiePipeline(t *testing.T) {
	a := New()

	report := a.AnalyzeCookie(context.Background(), cookie.Cookie{
		Name:     "JSESSIONID",
		Domain:   "shop.example.com",
		Path:     "/",
		Secure:   false,
		HTTPOnly: true,
		SameSite: cookie.SameSiteLax,
	}, nil)

	assert.Equal(t, "JSESSIONID", report.CookieName)
	assert.NotEmpty(t, report.ID)
	assert.Equal(t, types.TypeAuthentication, report.Classification.Type)
	assert.Greater(t, report.Assessment.Score, 0)
	assert.NotEmpty(t, report.Issues)
	// Insecure transport shows up both as an issue and as an attack path.
	hasNetworkPath := false
	for _, p := range report.Attacks.Paths {
		if p.Type == attack.PathNetwork {
			hasNetworkPath = true
		}
	}
	assert.True(t, hasNetworkPath)
	assert.NotEmpty(t, report.Explanation.AuthSignals)
}

func TestAnalyzeBatchRanksAndCounts(t *testing.T) {
	a := New(WithWorkers(4))

	batch, err := a.AnalyzeBatch(context.Background(), DemoCookies(), nil)
	require.NoError(t, err)
	require.Len(t, batch.Results, 5)
	assert.Equal(t, 5, batch.Stats.TotalCookies)

	// Ranked by score descending.
	for i := 1; i < len(batch.Results); i++ {
		assert.GreaterOrEqual(t,
			batch.Results[i-1].Assessment.Score,
			batch.Results[i].Assessment.Score,
		)
	}

	total := batch.Stats.Critical + batch.Stats.High + batch.Stats.Medium +
		batch.Stats.Low + batch.Stats.Info
	assert.Equal(t, 5, total)
	assert.False(t, batch.GeneratedAt.IsZero())
}

func TestForHost(t *testing.T) {
	a := New(WithSiteHost("example.com"))

	assert.Same(t, a, a.ForHost(""))
	assert.Same(t, a, a.ForHost("example.com"))

	scoped := a.ForHost("other.com")
	assert.NotSame(t, a, scoped)
	assert.Equal(t, "other.com", scoped.siteHost)
}

func TestRenderText(t *testing.T) {
	a := New()
	batch, err := a.AnalyzeBatch(context.Background(), DemoCookies(), nil)
	require.NoError(t, err)

	report := RenderText(batch)
	assert.Contains(t, report, "COOKIE SECURITY REPORT")
	assert.Contains(t, report, "SUMMARY: Analyzed 5 cookies")
	assert.Contains(t, report, "DETAILED FINDINGS")
	assert.Contains(t, report, "session_token")
	assert.Contains(t, report, "1. ")
}
