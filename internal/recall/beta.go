// Package recall turns a card's decayed review counts into a Beta posterior
// over recall probability and uses it to pick which card to review next.
package recall

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/conorfennell/flashbeta/internal/domain"
)

// ErrEmptyDeck is returned when there is no card to select from.
var ErrEmptyDeck = errors.New("recall: no cards to select from")

// DistributionParameterError reports Beta shape parameters that are not
// strictly positive.
type DistributionParameterError struct {
	Alpha float64
	Beta  float64
}

func (e *DistributionParameterError) Error() string {
	return fmt.Sprintf("recall: invalid beta parameters alpha=%g beta=%g", e.Alpha, e.Beta)
}

// Posterior is the Beta distribution over a card's recall probability.
type Posterior struct {
	Alpha float64
	Beta  float64
}

// NewPosterior validates the shape parameters.
func NewPosterior(alpha, beta float64) (Posterior, error) {
	if !(alpha > 0) || !(beta > 0) || math.IsInf(alpha, 0) || math.IsInf(beta, 0) {
		return Posterior{}, &DistributionParameterError{Alpha: alpha, Beta: beta}
	}
	return Posterior{Alpha: alpha, Beta: beta}, nil
}

// PosteriorFor builds the Laplace-smoothed posterior for card at now:
// alpha = weighted successes + 1, beta = weighted failures + 1.
func PosteriorFor(card domain.Card, now time.Time) (Posterior, error) {
	return NewPosterior(card.WeightedSuccesses(now)+1, card.WeightedFailures(now)+1)
}

func (p Posterior) dist(src rand.Source) distuv.Beta {
	return distuv.Beta{Alpha: p.Alpha, Beta: p.Beta, Src: src}
}

// Sample draws one value in [0, 1]. A nil src uses the global generator.
func (p Posterior) Sample(src rand.Source) float64 {
	return p.dist(src).Rand()
}

// Density evaluates the probability density at x. It is zero outside [0, 1].
func (p Posterior) Density(x float64) float64 {
	if x < 0 || x > 1 {
		return 0
	}
	return p.dist(nil).Prob(x)
}

// Mean is alpha / (alpha + beta).
func (p Posterior) Mean() float64 {
	return p.Alpha / (p.Alpha + p.Beta)
}
