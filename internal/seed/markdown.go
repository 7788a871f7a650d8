package seed

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/conorfennell/flashbeta/internal/deck"
	"github.com/conorfennell/flashbeta/internal/domain"
	"github.com/conorfennell/flashbeta/internal/gitsource"
	"github.com/conorfennell/flashbeta/internal/knol"
	"github.com/conorfennell/flashbeta/internal/parser"
)

// Markdown builds a deck from every .md file under dir. Files that fail to
// parse are skipped and logged together once the walk is done.
func Markdown(dir string) deck.Seed {
	return func(ctx context.Context) ([]domain.Card, error) {
		var cards []domain.Card
		var parseErrors []error

		walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if d.IsDir() {
				if d.Name() == ".git" {
					return filepath.SkipDir
				}
				return nil
			}
			if !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
				return nil
			}
			notes, parseErr := parser.ParseFile(path)
			if parseErr != nil {
				parseErrors = append(parseErrors, fmt.Errorf("parsing %s: %w", path, parseErr))
				return nil
			}
			for _, n := range notes {
				cards = append(cards, domain.NewCard(knol.Slug(n), n.Front, n.Back))
			}
			return nil
		})
		if walkErr != nil {
			return nil, fmt.Errorf("error walking directory %s: %w", dir, walkErr)
		}

		if len(parseErrors) > 0 {
			slog.Warn("Some markdown files could not be parsed", "dir", dir, "errors", len(parseErrors), "first", parseErrors[0])
		}
		slog.Debug("Markdown deck read", "dir", dir, "cards", len(cards))
		return unique(cards), nil
	}
}

// Git clones or pulls repoURL under reposDir and builds a deck from the
// markdown files it contains.
func Git(repoURL, reposDir string, progress io.Writer) deck.Seed {
	return func(ctx context.Context) ([]domain.Card, error) {
		localPath, err := gitsource.LocalPath(reposDir, repoURL)
		if err != nil {
			return nil, err
		}
		if err := gitsource.Sync(ctx, repoURL, localPath, progress); err != nil {
			return nil, err
		}
		return Markdown(localPath)(ctx)
	}
}
