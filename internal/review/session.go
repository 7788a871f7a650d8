// Package review runs review sessions: pick the weakest card, record the
// outcome and persist the collection.
package review

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/conorfennell/flashbeta/internal/deck"
	"github.com/conorfennell/flashbeta/internal/domain"
	"github.com/conorfennell/flashbeta/internal/recall"
)

// ErrUnknownCard is returned when a slug does not match any card.
var ErrUnknownCard = errors.New("review: unknown card")

// Session holds a loaded collection and writes it back after each review.
type Session struct {
	repo            deck.Repository
	scorer          *recall.Scorer
	src             rand.Source
	now             func() time.Time
	dailyForgetting float64
	skipped         func(domain.Card, error)
	cards           domain.Collection
}

// Option configures a Session.
type Option func(*Session)

// WithClock sets the clock used for scoring and result dates.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithSource sets the random source used for sampling.
func WithSource(src rand.Source) Option {
	return func(s *Session) { s.src = src }
}

// WithDailyForgetting overrides every card's forgetting rate.
func WithDailyForgetting(f float64) Option {
	return func(s *Session) { s.dailyForgetting = f }
}

// WithSkipped sets the function told about cards that cannot be scored.
func WithSkipped(fn func(card domain.Card, err error)) Option {
	return func(s *Session) { s.skipped = fn }
}

// Open loads the collection from repo.
func Open(ctx context.Context, repo deck.Repository, opts ...Option) (*Session, error) {
	s := &Session{
		repo: repo,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	var scorerOpts []recall.ScorerOption
	if s.skipped != nil {
		scorerOpts = append(scorerOpts, recall.WithSkipped(s.skipped))
	}
	scorer, err := recall.NewScorer(0, scorerOpts...)
	if err != nil {
		return nil, err
	}
	s.scorer = scorer

	cards, err := repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load cards: %w", err)
	}
	if s.dailyForgetting > 0 {
		for i := range cards {
			cards[i].DailyForgetting = s.dailyForgetting
		}
	}
	s.cards = cards
	return s, nil
}

// Cards returns the session's collection.
func (s *Session) Cards() domain.Collection {
	return s.cards
}

// Scorer returns the posterior cache shared by the session.
func (s *Session) Scorer() *recall.Scorer {
	return s.scorer
}

// Now reads the session clock.
func (s *Session) Now() time.Time {
	return s.now()
}

// Next returns the card to review now.
func (s *Session) Next() (domain.Card, error) {
	next, err := s.scorer.Next(s.cards, s.now(), s.src)
	if err != nil {
		return domain.Card{}, err
	}
	return next.Card, nil
}

// Record appends an outcome for slug, dated now, and saves the collection.
func (s *Session) Record(ctx context.Context, slug string, passed bool) (domain.Card, error) {
	i := s.cards.Find(slug)
	if i < 0 {
		return domain.Card{}, fmt.Errorf("%w: %s", ErrUnknownCard, slug)
	}
	s.cards[i].Record(passed, s.now())
	if err := s.repo.Save(ctx, s.cards); err != nil {
		return domain.Card{}, err
	}
	return s.cards[i], nil
}

// Save writes the collection as it stands.
func (s *Session) Save(ctx context.Context) error {
	return s.repo.Save(ctx, s.cards)
}
