// Package scoring turns clause matches into a 0..100 safety score.
//
// The score starts at 100 and loses points for the total severity mass of
// the matches and for how densely that mass is packed into the document:
//
//	mass    = Σ weight
//	density = mass per 1000 words (0 when mass is 0)
//	penalty = MassPenalty*mass + DensityPenaltyMax*min(1, density/DensityCeiling)
//	score   = clamp(round(100 - penalty), 0, 100)
//
// The same mass in a shorter document yields a higher density and therefore
// a lower score. A zero-length document with matches is treated as having
// saturated density.
package scoring

import (
	"fmt"
	"math"

	"github.com/raysh454/clauseguard/internal/model"
)

const (
	MaxScore = 100
	MinScore = 0
)

// Config holds the tunable penalty constants.
type Config struct {
	// MassPenalty is subtracted per unit of severity weight.
	MassPenalty float64 `json:"mass_penalty"`

	// DensityPenaltyMax is the largest penalty the density term can add.
	DensityPenaltyMax float64 `json:"density_penalty_max"`

	// DensityCeiling is the density (weight per 1000 words) at which the
	// density term saturates.
	DensityCeiling float64 `json:"density_ceiling"`
}

// DefaultConfig returns the stock constants.
func DefaultConfig() Config {
	return Config{MassPenalty: 2.5, DensityPenaltyMax: 25, DensityCeiling: 20}
}

// Aggregator computes scores. It is stateless and safe for concurrent use.
type Aggregator struct {
	cfg Config
}

// New validates cfg and returns an Aggregator.
func New(cfg Config) (*Aggregator, error) {
	if cfg.MassPenalty < 0 || cfg.DensityPenaltyMax < 0 || cfg.DensityCeiling <= 0 ||
		math.IsNaN(cfg.MassPenalty) || math.IsNaN(cfg.DensityPenaltyMax) || math.IsNaN(cfg.DensityCeiling) {
		return nil, &model.ScoringError{Err: fmt.Errorf("bad scoring constants %+v: %w", cfg, model.ErrInvalidInput)}
	}
	return &Aggregator{cfg: cfg}, nil
}

// Default returns an Aggregator with DefaultConfig.
func Default() *Aggregator {
	return &Aggregator{cfg: DefaultConfig()}
}

// Config returns the constants in use.
func (a *Aggregator) Config() Config { return a.cfg }

// Score returns the safety score for the given severity weights in a
// document of words words. Negative weights or lengths fail with a
// ScoringError wrapping model.ErrInvalidInput.
func (a *Aggregator) Score(weights []int, words int) (int, error) {
	mass, err := massOf(weights, words)
	if err != nil {
		return 0, err
	}
	return a.score(mass, words), nil
}

func (a *Aggregator) score(mass, words int) int {
	if mass == 0 {
		return MaxScore
	}
	penalty := a.cfg.MassPenalty*float64(mass) + a.cfg.DensityPenaltyMax*a.densityFactor(mass, words)
	s := math.Round(float64(MaxScore) - penalty)
	if s <= MinScore {
		return MinScore
	}
	return clamp(int(s))
}

// densityFactor is in [0, 1].
func (a *Aggregator) densityFactor(mass, words int) float64 {
	if words == 0 {
		return 1
	}
	return math.Min(1, Density(mass, words)/a.cfg.DensityCeiling)
}

// Density returns mass per 1000 words, 0 when either side is zero.
func Density(mass, words int) float64 {
	if mass == 0 || words == 0 {
		return 0
	}
	return float64(mass) * 1000 / float64(words)
}

// massOf sums weights, saturating at math.MaxInt.
func massOf(weights []int, words int) (int, error) {
	if words < 0 {
		return 0, &model.ScoringError{Err: fmt.Errorf("document length %d: %w", words, model.ErrInvalidInput)}
	}
	mass := 0
	for i, w := range weights {
		if w < 0 {
			return 0, &model.ScoringError{Err: fmt.Errorf("weight[%d] = %d: %w", i, w, model.ErrInvalidInput)}
		}
		if w > math.MaxInt-mass {
			mass = math.MaxInt
			continue
		}
		mass += w
	}
	return mass, nil
}

func clamp(s int) int {
	if s < MinScore {
		return MinScore
	}
	if s > MaxScore {
		return MaxScore
	}
	return s
}
