// Package seed produces default decks. A default deck only adds cards whose
// slug has not been saved, so seeds can be changed freely between runs.
package seed

import (
	"context"
	"fmt"
	"strconv"

	"github.com/conorfennell/flashbeta/internal/deck"
	"github.com/conorfennell/flashbeta/internal/domain"
)

// Multiplication generates the times-table deck. Week w adds the facts of w
// with every number from w up to 10, in both orders.
func Multiplication(weeks int) deck.Seed {
	return func(context.Context) ([]domain.Card, error) {
		if weeks < 0 || weeks > 10 {
			return nil, fmt.Errorf("multiplication weeks must be between 0 and 10, got %d", weeks)
		}
		var cards []domain.Card
		for i := 1; i <= weeks; i++ {
			var row []domain.Card
			for j := 10; j >= i; j-- {
				row = append(row, fact(i, j))
			}
			for j := 10; j >= i; j-- {
				row = append(row, fact(j, i))
			}
			cards = append(cards, row...)
		}
		return unique(cards), nil
	}
}

func fact(a, b int) domain.Card {
	return domain.NewCard(
		fmt.Sprintf("%dx%d", a, b),
		domain.Side{Type: domain.Text, Value: fmt.Sprintf("%d x %d", a, b)},
		domain.Side{Type: domain.Text, Value: strconv.Itoa(a * b)},
	)
}

// Basic is a small fixed deck pairing written words with recordings.
func Basic() deck.Seed {
	return func(context.Context) ([]domain.Card, error) {
		word := func(w string) domain.Side { return domain.Side{Type: domain.Text, Value: w} }
		clip := func(w string) domain.Side { return domain.Side{Type: domain.Audio, Value: "./media/" + w + ".m4a"} }
		return []domain.Card{
			domain.NewCard("cat-text-audio", word("cat"), clip("cat")),
			domain.NewCard("cat-audio-text", clip("cat"), word("cat")),
			domain.NewCard("dog-text-audio", word("dog"), clip("dog")),
			domain.NewCard("dog-audio-text", clip("dog"), word("dog")),
		}, nil
	}
}

// None is the empty deck.
func None() deck.Seed {
	return func(context.Context) ([]domain.Card, error) { return nil, nil }
}

// Combine concatenates seeds. The first card seen for a slug wins.
func Combine(seeds ...deck.Seed) deck.Seed {
	return func(ctx context.Context) ([]domain.Card, error) {
		var all []domain.Card
		for _, s := range seeds {
			cards, err := s(ctx)
			if err != nil {
				return nil, err
			}
			all = append(all, cards...)
		}
		return unique(all), nil
	}
}

func unique(cards []domain.Card) []domain.Card {
	seen := make(map[string]bool, len(cards))
	out := cards[:0]
	for _, c := range cards {
		if seen[c.Slug] {
			continue
		}
		seen[c.Slug] = true
		out = append(out, c)
	}
	return out
}
