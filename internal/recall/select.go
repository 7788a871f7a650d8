package recall

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"time"

	lru "github.com/hashicorp/golang-lru"

	"github.com/conorfennell/flashbeta/internal/domain"
)

const defaultCacheSize = 1024

type cacheKey struct {
	slug    string
	results int
	now     int64
}

// Scorer memoizes card posteriors so a single render that ranks and then
// reports the same cards at the same instant computes each posterior once.
// Cards are append-only, so slug, history length and instant identify a
// posterior.
type Scorer struct {
	cache   *lru.Cache
	skipped func(card domain.Card, err error)
}

// ScorerOption configures a Scorer.
type ScorerOption func(*Scorer)

// WithSkipped sets the function told about each card left out of a ranking
// because its posterior could not be formed.
func WithSkipped(fn func(card domain.Card, err error)) ScorerOption {
	return func(s *Scorer) { s.skipped = fn }
}

// NewScorer creates a Scorer holding up to size posteriors.
func NewScorer(size int, opts ...ScorerOption) (*Scorer, error) {
	if size <= 0 {
		size = defaultCacheSize
	}
	c, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("failed to create posterior cache: %w", err)
	}
	s := &Scorer{cache: c, skipped: func(domain.Card, error) {}}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Posterior returns the posterior of card at now.
func (s *Scorer) Posterior(card domain.Card, now time.Time) (Posterior, error) {
	key := cacheKey{slug: card.Slug, results: len(card.Results), now: now.UnixNano()}
	if v, ok := s.cache.Get(key); ok {
		return v.(Posterior), nil
	}
	p, err := PosteriorFor(card, now)
	if err != nil {
		return Posterior{}, fmt.Errorf("card %s: %w", card.Slug, err)
	}
	s.cache.Add(key, p)
	return p, nil
}

// Scored is a card and its posterior.
type Scored struct {
	Card      domain.Card
	Posterior Posterior
}

// Score returns the posterior of every card at now, in collection order.
// A card whose posterior cannot be formed, such as one whose history holds a
// date so far ahead that its decayed weight overflows, is left out and passed
// to the skipped function. Score fails only when cards is non-empty and none
// of them could be scored.
func (s *Scorer) Score(cards domain.Collection, now time.Time) ([]Scored, error) {
	out := make([]Scored, 0, len(cards))
	var firstErr error
	for _, c := range cards {
		p, err := s.Posterior(c, now)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			s.skipped(c, err)
			continue
		}
		out = append(out, Scored{Card: c, Posterior: p})
	}
	if len(out) == 0 && firstErr != nil {
		return nil, fmt.Errorf("no card could be scored: %w", firstErr)
	}
	return out, nil
}

// Ranked is a card and the score it drew.
type Ranked struct {
	Card   domain.Card
	Sample float64
}

// Rank draws one sample per scorable card and orders them by ascending
// sample, so the card least likely to be recalled comes first. Equal samples
// keep collection order.
func (s *Scorer) Rank(cards domain.Collection, now time.Time, src rand.Source) ([]Ranked, error) {
	scored, err := s.Score(cards, now)
	if err != nil {
		return nil, err
	}
	out := make([]Ranked, 0, len(scored))
	for _, sc := range scored {
		out = append(out, Ranked{Card: sc.Card, Sample: sc.Posterior.Sample(src)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Sample < out[j].Sample
	})
	return out, nil
}

// Next picks the card to review by Thompson sampling.
func (s *Scorer) Next(cards domain.Collection, now time.Time, src rand.Source) (Ranked, error) {
	if len(cards) == 0 {
		return Ranked{}, ErrEmptyDeck
	}
	ranked, err := s.Rank(cards, now, src)
	if err != nil {
		return Ranked{}, err
	}
	return ranked[0], nil
}
