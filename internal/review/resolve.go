package review

import (
	"fmt"

	"github.com/sahilm/fuzzy"

	"github.com/conorfennell/flashbeta/internal/domain"
)

// Resolve finds the slug a user meant. An exact slug wins; otherwise the
// best fuzzy match is used when it scores strictly higher than the runner-up.
func Resolve(cards domain.Collection, query string) (string, error) {
	if cards.Find(query) >= 0 {
		return query, nil
	}
	matches := fuzzy.Find(query, cards.Slugs())
	switch {
	case len(matches) == 0:
		return "", fmt.Errorf("%w: %s", ErrUnknownCard, query)
	case len(matches) > 1 && matches[0].Score == matches[1].Score:
		return "", fmt.Errorf("%w: %q is ambiguous between %s and %s", ErrUnknownCard, query, matches[0].Str, matches[1].Str)
	default:
		return matches[0].Str, nil
	}
}
