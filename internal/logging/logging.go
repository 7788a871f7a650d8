// Package logging builds the application's slog logger and adapts it to the
// deck loader's Observer.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/conorfennell/flashbeta/internal/config"
	"github.com/conorfennell/flashbeta/internal/domain"
)

// New returns a logger writing to w in the configured format and level.
func New(w io.Writer, cfg config.LogConfig) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(cfg.Level))); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	opts := &slog.HandlerOptions{Level: level}

	switch cfg.Format {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}
}

// Observer reports deck loading diagnostics through a slog.Logger.
type Observer struct {
	logger *slog.Logger
}

// NewObserver wraps logger.
func NewObserver(logger *slog.Logger) *Observer {
	return &Observer{logger: logger}
}

func (o *Observer) DecodeFailed(err error, quarantineKey string, size int) {
	if quarantineKey == "" {
		o.logger.Error("Saved cards could not be parsed and could not be preserved; starting empty",
			"error", err, "bytes", size)
		return
	}
	o.logger.Error("Saved cards could not be parsed; starting empty",
		"error", err, "bytes", size, "preserved_as", quarantineKey)
}

func (o *Observer) DuplicateSlug(slug string) {
	o.logger.Warn("Dropping saved card with duplicate slug", "slug", slug)
}

func (o *Observer) SeedFailed(err error) {
	o.logger.Warn("Default deck unavailable", "error", err)
}

func (o *Observer) Loaded(saved, seeded int) {
	o.logger.Debug("Cards loaded", "saved", saved, "from_default_deck", seeded)
}

// CardSkipped reports a card left out of scoring.
func (o *Observer) CardSkipped(card domain.Card, err error) {
	o.logger.Warn("Skipping card that cannot be scored", "slug", card.Slug, "error", err)
}
