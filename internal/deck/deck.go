// Package deck loads and saves the card collection and merges it with a
// default deck.
package deck

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/conorfennell/flashbeta/internal/domain"
	"github.com/conorfennell/flashbeta/internal/storage"
)

// Key is the storage key the collection is kept under.
const Key = "cards"

// Repository loads and saves a whole card collection.
type Repository interface {
	Load(ctx context.Context) (domain.Collection, error)
	Save(ctx context.Context, cards domain.Collection) error
}

// Seed supplies the default deck merged into whatever was saved.
type Seed func(ctx context.Context) ([]domain.Card, error)

// Observer receives diagnostics from the loader.
type Observer interface {
	// DecodeFailed is called when the saved blob cannot be decoded.
	// quarantineKey is where the raw blob was copied, or "" if that failed.
	DecodeFailed(err error, quarantineKey string, size int)
	// DuplicateSlug is called for each saved card dropped because an earlier
	// saved card has the same slug.
	DuplicateSlug(slug string)
	// SeedFailed is called when the default deck could not be produced.
	SeedFailed(err error)
	// Loaded reports the outcome of a successful load.
	Loaded(saved, seeded int)
}

// NopObserver discards all diagnostics.
type NopObserver struct{}

func (NopObserver) DecodeFailed(error, string, int) {}
func (NopObserver) DuplicateSlug(string)            {}
func (NopObserver) SeedFailed(error)                {}
func (NopObserver) Loaded(int, int)                 {}

// Store is a Repository backed by a key-value blob store.
type Store struct {
	blobs    storage.Blobs
	seed     Seed
	observer Observer
	now      func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithSeed sets the default deck.
func WithSeed(seed Seed) Option {
	return func(s *Store) { s.seed = seed }
}

// WithObserver sets the diagnostics sink.
func WithObserver(o Observer) Option {
	return func(s *Store) { s.observer = o }
}

// WithClock sets the clock used to date legacy results.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates a Store over blobs.
func NewStore(blobs storage.Blobs, opts ...Option) *Store {
	s := &Store{
		blobs:    blobs,
		observer: NopObserver{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the saved collection and appends any default card whose slug
// is not already saved. A missing blob yields just the default deck. A blob
// that cannot be decoded is copied to a quarantine key and an empty
// collection is returned.
func (s *Store) Load(ctx context.Context) (domain.Collection, error) {
	raw, err := s.blobs.Get(ctx, Key)
	if err != nil {
		return nil, fmt.Errorf("failed to read saved cards: %w", err)
	}

	if len(raw) == 0 {
		defaults := s.defaults(ctx)
		s.observer.Loaded(0, len(defaults))
		return Merge(nil, defaults), nil
	}

	saved, err := Decode(raw, s.now())
	if err != nil {
		s.observer.DecodeFailed(err, s.quarantine(ctx, raw), len(raw))
		return domain.Collection{}, nil
	}

	saved = s.dedupe(saved)
	merged := Merge(saved, s.defaults(ctx))
	s.observer.Loaded(len(saved), len(merged)-len(saved))
	return merged, nil
}

// Save overwrites the saved collection.
func (s *Store) Save(ctx context.Context, cards domain.Collection) error {
	data, err := Encode(cards)
	if err != nil {
		return err
	}
	if err := s.blobs.Put(ctx, Key, data); err != nil {
		return fmt.Errorf("failed to save cards: %w", err)
	}
	return nil
}

// Export returns the saved blob as stored, re-indented when it is valid JSON.
// Nothing saved yet exports as an empty array.
func (s *Store) Export(ctx context.Context) ([]byte, error) {
	raw, err := s.blobs.Get(ctx, Key)
	if err != nil {
		return nil, fmt.Errorf("failed to read saved cards: %w", err)
	}
	if len(raw) == 0 {
		return []byte("[]"), nil
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "    "); err != nil {
		return raw, nil
	}
	return buf.Bytes(), nil
}

func (s *Store) defaults(ctx context.Context) []domain.Card {
	if s.seed == nil {
		return nil
	}
	cards, err := s.seed(ctx)
	if err != nil {
		s.observer.SeedFailed(err)
		return nil
	}
	return cards
}

func (s *Store) quarantine(ctx context.Context, raw []byte) string {
	key := fmt.Sprintf("%s.corrupt.%s", Key, uuid.NewString())
	if err := s.blobs.Put(ctx, key, raw); err != nil {
		return ""
	}
	return key
}

func (s *Store) dedupe(cards domain.Collection) domain.Collection {
	seen := make(map[string]bool, len(cards))
	out := cards[:0]
	for _, c := range cards {
		if seen[c.Slug] {
			s.observer.DuplicateSlug(c.Slug)
			continue
		}
		seen[c.Slug] = true
		out = append(out, c)
	}
	return out
}

// Merge returns saved followed by every default whose slug does not appear
// earlier. Saved cards always win; defaults never override progress.
func Merge(saved, defaults []domain.Card) domain.Collection {
	out := make(domain.Collection, 0, len(saved)+len(defaults))
	seen := make(map[string]bool, len(saved)+len(defaults))
	out = append(out, saved...)
	for _, c := range saved {
		seen[c.Slug] = true
	}
	for _, c := range defaults {
		if seen[c.Slug] {
			continue
		}
		seen[c.Slug] = true
		out = append(out, c)
	}
	return out
}
