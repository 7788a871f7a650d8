package deck

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/conorfennell/flashbeta/internal/domain"
)

// MalformedResultError reports a stored result that is neither a bare
// boolean nor a {result, date} object.
type MalformedResultError struct {
	Card   string
	Index  int
	Raw    string
	Reason string
}

func (e *MalformedResultError) Error() string {
	return fmt.Sprintf("deck: card %q result %d is malformed (%s): %s", e.Card, e.Index, e.Reason, e.Raw)
}

type sideRecord struct {
	Type  string `json:"type" validate:"oneof=text audio"`
	Value string `json:"value"`
}

type resultRecord struct {
	Result bool   `json:"result"`
	Date   string `json:"date"`
}

type cardRecord struct {
	Front   sideRecord        `json:"front"`
	Back    sideRecord        `json:"back"`
	Slug    string            `json:"slug" validate:"required"`
	Results []json.RawMessage `json:"results"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Layouts accepted for result dates. The second is what JavaScript's Date()
// prints, which older decks contain.
var dateLayouts = []string{
	time.RFC3339Nano,
	"Mon Jan 02 2006 15:04:05 GMT-0700",
}

func parseDate(s string) (time.Time, error) {
	// Drop the trailing "(Zone Name)" of the JavaScript form.
	if i := strings.Index(s, " ("); i >= 0 {
		s = s[:i]
	}
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func decodeBool(raw json.RawMessage) (bool, bool) {
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return false, false
	}
	var v bool
	if err := json.Unmarshal(raw, &v); err != nil {
		return false, false
	}
	return v, true
}

// decodeResult accepts the legacy bare boolean, dated at now, or the
// structured {result, date} object. Anything else yields a non-empty reason.
func decodeResult(raw json.RawMessage, now time.Time) (domain.Result, string) {
	if passed, ok := decodeBool(raw); ok {
		return domain.Result{Passed: passed, Date: now}, ""
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return domain.Result{}, "not a boolean or an object"
	}
	rawResult, ok := fields["result"]
	if !ok {
		return domain.Result{}, "missing result"
	}
	passed, ok := decodeBool(rawResult)
	if !ok {
		return domain.Result{}, "result is not a boolean"
	}
	var date string
	if err := json.Unmarshal(fields["date"], &date); err != nil || date == "" {
		return domain.Result{}, "missing or non-string date"
	}
	at, err := parseDate(date)
	if err != nil {
		return domain.Result{}, "unparseable date"
	}
	return domain.Result{Passed: passed, Date: at}, ""
}

// ErrNullDeck is returned when a stored deck is the JSON literal null.
var ErrNullDeck = errors.New("deck: stored deck is null")

// Decode parses a stored deck. Legacy boolean results are dated at now.
func Decode(data []byte, now time.Time) (domain.Collection, error) {
	var records []cardRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse deck: %w", err)
	}
	if records == nil {
		return nil, ErrNullDeck
	}

	cards := make(domain.Collection, 0, len(records))
	for i, rec := range records {
		if err := validate.Struct(rec); err != nil {
			return nil, fmt.Errorf("invalid card %d (%q): %w", i, rec.Slug, err)
		}
		card := domain.NewCard(rec.Slug,
			domain.Side{Type: domain.SideType(rec.Front.Type), Value: rec.Front.Value},
			domain.Side{Type: domain.SideType(rec.Back.Type), Value: rec.Back.Value},
		)
		for j, raw := range rec.Results {
			r, reason := decodeResult(raw, now)
			if reason != "" {
				return nil, &MalformedResultError{Card: rec.Slug, Index: j, Raw: string(raw), Reason: reason}
			}
			card.Results = append(card.Results, r)
		}
		cards = append(cards, card)
	}
	return cards, nil
}

// Encode serializes cards as a 4-space indented JSON array.
func Encode(cards domain.Collection) ([]byte, error) {
	type outRecord struct {
		Front   sideRecord     `json:"front"`
		Back    sideRecord     `json:"back"`
		Slug    string         `json:"slug"`
		Results []resultRecord `json:"results"`
	}

	records := make([]outRecord, 0, len(cards))
	for _, c := range cards {
		rec := outRecord{
			Front:   sideRecord{Type: string(c.Front.Type), Value: c.Front.Value},
			Back:    sideRecord{Type: string(c.Back.Type), Value: c.Back.Value},
			Slug:    c.Slug,
			Results: make([]resultRecord, 0, len(c.Results)),
		}
		for _, r := range c.Results {
			rec.Results = append(rec.Results, resultRecord{
				Result: r.Passed,
				Date:   r.Date.Format(time.RFC3339Nano),
			})
		}
		records = append(records, rec)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(records); err != nil {
		return nil, fmt.Errorf("failed to encode deck: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
