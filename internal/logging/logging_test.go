package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/conorfennell/flashbeta/internal/config"
	"github.com/conorfennell/flashbeta/internal/deck"
	"github.com/conorfennell/flashbeta/internal/domain"
)

var _ deck.Observer = (*Observer)(nil)

func TestNewRejectsBadSettings(t *testing.T) {
	var buf bytes.Buffer
	if _, err := New(&buf, config.LogConfig{Level: "loud", Format: "text"}); err == nil {
		t.Error("Expected an error for an unknown level")
	}
	if _, err := New(&buf, config.LogConfig{Level: "info", Format: "xml"}); err == nil {
		t.Error("Expected an error for an unknown format")
	}
}

func TestObserverJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, config.LogConfig{Level: "debug", Format: "json"})
	if err != nil {
		t.Fatalf("New() returned an unexpected error: %v", err)
	}
	obs := NewObserver(logger)

	obs.DecodeFailed(errors.New("bad json"), "cards.corrupt.x", 12)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Expected a JSON log line, got %q: %v", buf.String(), err)
	}
	if entry["level"] != "ERROR" {
		t.Errorf("Expected ERROR level, but got %v", entry["level"])
	}
	if entry["preserved_as"] != "cards.corrupt.x" {
		t.Errorf("Expected quarantine key to be logged, but got %v", entry["preserved_as"])
	}
	if entry["error"] != "bad json" {
		t.Errorf("Expected error to be logged, but got %v", entry["error"])
	}
}

func TestObserverRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, config.LogConfig{Level: "warn", Format: "text"})
	if err != nil {
		t.Fatalf("New() returned an unexpected error: %v", err)
	}
	obs := NewObserver(logger)

	obs.Loaded(3, 4)
	if buf.Len() != 0 {
		t.Errorf("Expected debug output to be filtered, but got %q", buf.String())
	}
	obs.DuplicateSlug("2x3")
	if !strings.Contains(buf.String(), "slug=2x3") {
		t.Errorf("Expected the duplicate slug to be logged, but got %q", buf.String())
	}
}

func TestObserverCardSkipped(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, config.LogConfig{Level: "info", Format: "text"})
	if err != nil {
		t.Fatalf("New() returned an unexpected error: %v", err)
	}
	card := domain.NewCard("9x9", domain.Side{Type: domain.Text, Value: "9 x 9"}, domain.Side{Type: domain.Text, Value: "81"})

	NewObserver(logger).CardSkipped(card, errors.New("overflow"))
	out := buf.String()
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "slug=9x9") || !strings.Contains(out, "error=overflow") {
		t.Errorf("Expected a warning naming the card and error, but got %q", out)
	}
}
