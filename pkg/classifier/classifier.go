// Package classifier defines the contract between the analysis pipeline and
// whatever predicts a cookie's functional type. The trained statistical model
// lives behind the Classifier interface and is loaded elsewhere; this package
// ships the rule-based fallback so a batch can always be analyzed even with no
// model artifact on disk.
package classifier

import (
	"github.com/CodeMonkeyCybersecurity/crumbs/pkg/cookie"
	"github.com/CodeMonkeyCybersecurity/crumbs/pkg/features"
	"github.com/CodeMonkeyCybersecurity/crumbs/pkg/types"
)

// Contribution is one feature's share of a model decision, used by the
// explainability engine.
type Contribution struct {
	Feature string  `json:"feature"`
	Weight  float64 `json:"weight"`
	Value   float64 `json:"value"`
}

// Classification is the prediction for one cookie. Probabilities always
// carries all four type keys and sums to ~1.
type Classification struct {
	Type          types.CookieType             `json:"type"`
	Confidence    float64                      `json:"confidence"`
	Probabilities map[types.CookieType]float64 `json:"probabilities"`
	// AuthDrivers is optional model attribution for the authentication class;
	// empty for classifiers that cannot produce it.
	AuthDrivers []Contribution `json:"auth_drivers,omitempty"`
}

// AuthProbability is a nil-safe accessor for P(authentication).
func (c Classification) AuthProbability() float64 {
	return c.Probabilities[types.TypeAuthentication]
}

// Classifier maps a feature vector (and the cookie it came from, for
// name-based overrides) to a Classification. Implementations must not fail
// for well-formed vectors.
type Classifier interface {
	Classify(v features.Vector, c *cookie.Cookie) Classification
}

// Select returns the model when one is available and the rule-based fallback
// otherwise. The choice happens per call site, not via inheritance, so the
// two strategies stay independently testable.
func Select(model Classifier) Classifier {
	if model != nil {
		return model
	}
	return NewRuleClassifier()
}
