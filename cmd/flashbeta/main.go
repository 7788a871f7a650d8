package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/pflag"

	"github.com/conorfennell/flashbeta/internal/config"
	"github.com/conorfennell/flashbeta/internal/deck"
	"github.com/conorfennell/flashbeta/internal/logging"
	"github.com/conorfennell/flashbeta/internal/report"
	"github.com/conorfennell/flashbeta/internal/review"
	"github.com/conorfennell/flashbeta/internal/seed"
	"github.com/conorfennell/flashbeta/internal/storage"
)

const usage = `Usage: flashbeta [flags] <command> [args]

Commands:
  list           Show every card with its counts and estimated recall
  next           Show the card to review next
  pass <slug>    Record a successful review
  fail <slug>    Record a failed review
  review         Review cards interactively
  export         Print the saved cards

Flags:
`

func main() {
	flags := pflag.NewFlagSet("flashbeta", pflag.ContinueOnError)
	config.RegisterFlags(flags, config.Default())
	limit := flags.IntP("number", "n", 0, "Cards to review in one session (0 for no limit)")
	flags.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flags.PrintDefaults()
	}
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "flashbeta: %v\n", err)
		os.Exit(2)
	}

	logger, err := logging.New(os.Stderr, cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "flashbeta: %v\n", err)
		os.Exit(2)
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, flags.Args(), *limit); err != nil {
		slog.Error("flashbeta failed", "error", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger, args []string, limit int) error {
	if len(args) == 0 {
		return errors.New("no command given; try --help")
	}

	blobs, err := openStore(cfg.Store)
	if err != nil {
		return err
	}
	defer blobs.Close()

	observer := logging.NewObserver(logger)
	store := deck.NewStore(blobs,
		deck.WithSeed(defaultDeck(cfg.Deck)),
		deck.WithObserver(observer),
	)

	if args[0] == "export" {
		data, err := store.Export(ctx)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(os.Stdout, "%s\n", data)
		return err
	}

	session, err := review.Open(ctx, store,
		review.WithDailyForgetting(cfg.Review.DailyForgetting),
		review.WithSkipped(observer.CardSkipped),
	)
	if err != nil {
		return err
	}

	switch args[0] {
	case "list":
		rows, err := report.Rows(session.Cards(), session.Now(), session.Scorer())
		if err != nil {
			return err
		}
		report.Render(os.Stdout, rows)
		return nil

	case "next":
		card, err := session.Next()
		if err != nil {
			return err
		}
		fmt.Printf("%s\t%s\n", card.Slug, card.Label())
		return nil

	case "pass", "fail":
		if len(args) != 2 {
			return fmt.Errorf("usage: flashbeta %s <slug>", args[0])
		}
		slug, err := review.Resolve(session.Cards(), args[1])
		if err != nil {
			return err
		}
		card, err := session.Record(ctx, slug, args[0] == "pass")
		if err != nil {
			return err
		}
		logger.Info("Review recorded", "slug", card.Slug, "passed", args[0] == "pass",
			"successes", card.Successes(), "failures", card.Failures())
		return nil

	case "review":
		n, err := review.Run(ctx, session, os.Stdin, os.Stdout, limit)
		logger.Info("Review session finished", "reviewed", n)
		return err

	default:
		return fmt.Errorf("unknown command %q; try --help", args[0])
	}
}

func openStore(cfg config.StoreConfig) (storage.Blobs, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		db, err := storage.OpenSQLite(cfg.Path)
		if err != nil {
			return nil, err
		}
		slog.Debug("Database opened successfully", "path", cfg.Path)
		return db, nil
	case config.DriverFile:
		return storage.NewFile(cfg.Path)
	case config.DriverMemory:
		return storage.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

func defaultDeck(cfg config.DeckConfig) deck.Seed {
	switch cfg.Seed {
	case config.SeedMultiplication:
		return seed.Multiplication(cfg.Weeks)
	case config.SeedBasic:
		return seed.Basic()
	case config.SeedMarkdown:
		return seed.Markdown(cfg.MarkdownDir)
	case config.SeedGit:
		return seed.Git(cfg.GitURL, cfg.ReposDir, io.Discard)
	default:
		return seed.None()
	}
}
