package recall

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/conorfennell/flashbeta/internal/domain"
)

const epsilon = 1e-9

var now = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

func assertFloat(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > epsilon {
		t.Errorf("%s = %.9f, want %.9f", name, got, want)
	}
}

func cardWith(slug string, passed bool, n int) domain.Card {
	c := domain.NewCard(slug,
		domain.Side{Type: domain.Text, Value: slug},
		domain.Side{Type: domain.Text, Value: slug})
	for i := 0; i < n; i++ {
		c.Record(passed, now)
	}
	return c
}

func TestNewPosteriorRejectsBadParameters(t *testing.T) {
	testCases := []struct {
		name        string
		alpha, beta float64
	}{
		{"zero alpha", 0, 1},
		{"negative beta", 1, -2},
		{"NaN alpha", math.NaN(), 1},
		{"infinite beta", 1, math.Inf(1)},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewPosterior(tc.alpha, tc.beta)
			var perr *DistributionParameterError
			if !errors.As(err, &perr) {
				t.Fatalf("Expected DistributionParameterError, but got %v", err)
			}
		})
	}
}

func TestPosteriorForEmptyCard(t *testing.T) {
	p, err := PosteriorFor(cardWith("a", true, 0), now)
	if err != nil {
		t.Fatalf("PosteriorFor() returned an unexpected error: %v", err)
	}
	assertFloat(t, "alpha", p.Alpha, 1)
	assertFloat(t, "beta", p.Beta, 1)
	assertFloat(t, "mean", p.Mean(), 0.5)
}

func TestDensity(t *testing.T) {
	uniform := Posterior{Alpha: 1, Beta: 1}
	for _, x := range []float64{0.1, 0.5, 0.9} {
		assertFloat(t, "uniform density", uniform.Density(x), 1)
	}

	linear := Posterior{Alpha: 2, Beta: 1}
	for _, x := range []float64{0.25, 0.5, 0.75} {
		assertFloat(t, "Beta(2,1) density", linear.Density(x), 2*x)
	}

	if d := linear.Density(-0.1); d != 0 {
		t.Errorf("Expected zero density below 0, but got %g", d)
	}
	if d := linear.Density(1.1); d != 0 {
		t.Errorf("Expected zero density above 1, but got %g", d)
	}
}

func TestDensityLargeParameters(t *testing.T) {
	p := Posterior{Alpha: 5001, Beta: 3001}
	d := p.Density(p.Mean())
	if math.IsInf(d, 0) || math.IsNaN(d) || d <= 0 {
		t.Errorf("Expected a finite positive density for long histories, but got %g", d)
	}
}

func TestSample(t *testing.T) {
	src := rand.NewPCG(1, 2)
	p := Posterior{Alpha: 8, Beta: 2}

	const n = 20000
	var sum float64
	for i := 0; i < n; i++ {
		x := p.Sample(src)
		if x < 0 || x > 1 {
			t.Fatalf("Sample() = %g, outside [0, 1]", x)
		}
		sum += x
	}
	if mean := sum / n; math.Abs(mean-p.Mean()) > 0.01 {
		t.Errorf("Expected sample mean near %.3f, but got %.3f", p.Mean(), mean)
	}
}

func TestScorerCachesPosterior(t *testing.T) {
	s, err := NewScorer(0)
	if err != nil {
		t.Fatalf("NewScorer() returned an unexpected error: %v", err)
	}
	card := cardWith("a", true, 3)

	first, err := s.Posterior(card, now)
	if err != nil {
		t.Fatalf("Posterior() returned an unexpected error: %v", err)
	}
	if s.cache.Len() != 1 {
		t.Fatalf("Expected one cached posterior, but got %d", s.cache.Len())
	}
	second, _ := s.Posterior(card, now)
	if first != second {
		t.Errorf("Expected cached posterior %+v, but got %+v", first, second)
	}

	card.Record(false, now)
	third, _ := s.Posterior(card, now)
	if third.Beta != 2 {
		t.Errorf("Expected new result to invalidate the cache entry, got beta %.2f", third.Beta)
	}
}

func TestNextPrefersWeakCard(t *testing.T) {
	s, _ := NewScorer(16)
	cards := domain.Collection{
		cardWith("strong", true, 100),
		cardWith("weak", false, 100),
	}
	src := rand.NewPCG(7, 11)
	for i := 0; i < 50; i++ {
		next, err := s.Next(cards, now, src)
		if err != nil {
			t.Fatalf("Next() returned an unexpected error: %v", err)
		}
		if next.Card.Slug != "weak" {
			t.Fatalf("Expected the weak card to be selected, but got %s (sample %.4f)", next.Card.Slug, next.Sample)
		}
	}
}

func TestRankOrdersAscending(t *testing.T) {
	s, _ := NewScorer(16)
	cards := domain.Collection{
		cardWith("a", true, 5),
		cardWith("b", false, 5),
		cardWith("c", true, 1),
	}
	ranked, err := s.Rank(cards, now, rand.NewPCG(3, 4))
	if err != nil {
		t.Fatalf("Rank() returned an unexpected error: %v", err)
	}
	if len(ranked) != len(cards) {
		t.Fatalf("Expected %d ranked cards, but got %d", len(cards), len(ranked))
	}
	for i := 1; i < len(ranked); i++ {
		if ranked[i-1].Sample > ranked[i].Sample {
			t.Errorf("Expected ascending samples, but %.4f came before %.4f", ranked[i-1].Sample, ranked[i].Sample)
		}
	}
}

func TestNextEmptyDeck(t *testing.T) {
	s, _ := NewScorer(16)
	if _, err := s.Next(nil, now, nil); !errors.Is(err, ErrEmptyDeck) {
		t.Errorf("Expected ErrEmptyDeck, but got %v", err)
	}
}

func TestNextSkipsCardDatedFarAhead(t *testing.T) {
	var skipped []string
	s, _ := NewScorer(16, WithSkipped(func(c domain.Card, err error) {
		var perr *DistributionParameterError
		if !errors.As(err, &perr) {
			t.Errorf("Expected DistributionParameterError for %s, but got %v", c.Slug, err)
		}
		skipped = append(skipped, c.Slug)
	}))

	typo := cardWith("typo", true, 0)
	typo.Record(true, time.Date(9000, 1, 1, 0, 0, 0, 0, time.UTC))
	if ws := typo.WeightedSuccesses(now); !math.IsInf(ws, 1) {
		t.Fatalf("Expected the weight to overflow, but got %v", ws)
	}
	cards := domain.Collection{typo, cardWith("fresh", true, 0)}

	next, err := s.Next(cards, now, rand.NewPCG(1, 2))
	if err != nil {
		t.Fatalf("Next() returned an unexpected error: %v", err)
	}
	if next.Card.Slug != "fresh" {
		t.Errorf("Expected the scorable card, but got %s", next.Card.Slug)
	}
	if len(skipped) != 1 || skipped[0] != "typo" {
		t.Errorf("Expected typo to be reported as skipped, but got %v", skipped)
	}
}

func TestScoreFailsWhenNothingScorable(t *testing.T) {
	s, _ := NewScorer(16)
	typo := cardWith("typo", false, 0)
	typo.Record(false, time.Date(9000, 1, 1, 0, 0, 0, 0, time.UTC))

	_, err := s.Rank(domain.Collection{typo}, now, rand.NewPCG(1, 2))
	var perr *DistributionParameterError
	if !errors.As(err, &perr) {
		t.Errorf("Expected DistributionParameterError, but got %v", err)
	}
}
