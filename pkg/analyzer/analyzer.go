// Package analyzer runs the full per-cookie pipeline: feature extraction,
// classification, risk scoring, explanation, and attack simulation. Batches
// fan out across a bounded worker group and come back ranked by risk.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/CodeMonkeyCybersecurity/crumbs/internal/logger"
	"github.com/CodeMonkeyCybersecurity/crumbs/pkg/attack"
	"github.com/CodeMonkeyCybersecurity/crumbs/pkg/classifier"
	"github.com/CodeMonkeyCybersecurity/crumbs/pkg/cookie"
	"github.com/CodeMonkeyCybersecurity/crumbs/pkg/explain"
	"github.com/CodeMonkeyCybersecurity/crumbs/pkg/features"
	"github.com/CodeMonkeyCybersecurity/crumbs/pkg/risk"
	"github.com/CodeMonkeyCybersecurity/crumbs/pkg/types"
)

// ErrEmptyBatch is returned when a batch request carries no cookies. Callers
// at the HTTP and CLI boundaries translate it into their own error shape.
var ErrEmptyBatch = errors.New("no cookies provided")

const defaultWorkers = 8

// Report is the complete analysis of a single cookie.
type Report struct {
	risk.Result
	Explanation explain.Result    `json:"explanation"`
	Attacks     attack.Simulation `json:"attack_simulation"`
}

// SummaryStats aggregates a batch by severity tier.
type SummaryStats struct {
	TotalCookies int `json:"total_cookies"`
	Critical     int `json:"critical"`
	High         int `json:"high"`
	Medium       int `json:"medium"`
	Low          int `json:"low"`
	Info         int `json:"info"`
}

// BatchReport holds ranked per-cookie reports plus batch aggregates.
type BatchReport struct {
	Results     []Report     `json:"results"`
	Stats       SummaryStats `json:"summary_stats"`
	GeneratedAt time.Time    `json:"generated_at"`
}

type Analyzer struct {
	extractor *features.Extractor
	model     classifier.Classifier
	scorer    *risk.Scorer
	simulator *attack.Simulator
	siteHost  string
	workers   int
	log       *logger.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithModel supplies a trained classification model. Without one the
// rule-based fallback classifier is used.
func WithModel(m classifier.Classifier) Option {
	return func(a *Analyzer) { a.model = m }
}

// WithSiteHost names the host the cookies were collected from, which exempts
// same-host Domain attributes from the scope penalty.
func WithSiteHost(host string) Option {
	return func(a *Analyzer) { a.siteHost = host }
}

// WithWorkers bounds batch parallelism.
func WithWorkers(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.workers = n
		}
	}
}

func WithLogger(log *logger.Logger) Option {
	return func(a *Analyzer) { a.log = log }
}

func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		extractor: features.NewExtractor(),
		scorer:    risk.NewScorer(),
		simulator: attack.NewSimulator(),
		workers:   defaultWorkers,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.model = classifier.Select(a.model)
	return a
}

// ForHost returns a shallow copy scoped to a different site host, for callers
// that learn the host per request rather than at construction.
func (a *Analyzer) ForHost(host string) *Analyzer {
	if host == "" || host == a.siteHost {
		return a
	}
	clone := *a
	clone.siteHost = host
	return &clone
}

// AnalyzeCookie runs the pipeline for one cookie. It never fails for a
// well-formed record; sparse attributes simply trigger fewer rules.
func (a *Analyzer) AnalyzeCookie(ctx context.Context, c cookie.Cookie, loginCtx *cookie.Context) Report {
	if a.log != nil {
		ctx, span := a.log.StartSpan(ctx, "analyzer.analyze_cookie")
		defer span.End()
		a.log.WithContext(ctx).WithCookie(c.Name, c.Domain).Debug("analyzing cookie")
	}

	vec := a.extractor.Extract(c, loginCtx)
	cls := a.model.Classify(vec, &c)
	result := a.scorer.Analyze(c, cls, a.siteHost)

	return Report{
		Result:      result,
		Explanation: explain.Explain(vec, cls, result.Issues),
		Attacks:     a.simulator.Simulate(c, cls.Type, &vec),
	}
}

// AnalyzeBatch fans the pipeline out over a bounded worker group, preserving
// input order before ranking. An empty batch is the one caller error.
func (a *Analyzer) AnalyzeBatch(ctx context.Context, cookies []cookie.Cookie, loginCtx *cookie.Context) (*BatchReport, error) {
	if len(cookies) == 0 {
		return nil, ErrEmptyBatch
	}

	reports := make([]Report, len(cookies))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for i, c := range cookies {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			reports[i] = a.AnalyzeCookie(gctx, c, loginCtx)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch analysis: %w", err)
	}

	// Same ordering as risk.Rank: score first, then P(auth) as tiebreak.
	sort.SliceStable(reports, func(i, j int) bool {
		if reports[i].Assessment.Score != reports[j].Assessment.Score {
			return reports[i].Assessment.Score > reports[j].Assessment.Score
		}
		return reports[i].Classification.AuthProbability() > reports[j].Classification.AuthProbability()
	})

	stats := SummaryStats{TotalCookies: len(cookies)}
	for _, r := range reports {
		switch r.Assessment.Severity {
		case types.SeverityCritical:
			stats.Critical++
		case types.SeverityHigh:
			stats.High++
		case types.SeverityMedium:
			stats.Medium++
		case types.SeverityLow:
			stats.Low++
		default:
			stats.Info++
		}
	}

	if a.log != nil {
		a.log.WithContext(ctx).Infow("batch analysis complete",
			"cookies", stats.TotalCookies,
			"critical", stats.Critical,
			"high", stats.High)
	}

	return &BatchReport{
		Results:     reports,
		Stats:       stats,
		GeneratedAt: time.Now().UTC(),
	}, nil
}
