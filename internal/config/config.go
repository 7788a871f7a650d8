// Package config loads flashbeta settings from defaults, an optional YAML
// file, FLASHBETA_* environment variables and command-line flags, in that
// order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/conorfennell/flashbeta/internal/domain"
)

// EnvPrefix marks environment variables read as configuration.
// FLASHBETA_STORE_PATH sets store.path.
const EnvPrefix = "FLASHBETA_"

// Store drivers.
const (
	DriverSQLite = "sqlite"
	DriverFile   = "file"
	DriverMemory = "memory"
)

// Default deck seeds.
const (
	SeedMultiplication = "multiplication"
	SeedBasic          = "basic"
	SeedMarkdown       = "markdown"
	SeedGit            = "git"
	SeedNone           = "none"
)

// Config is the full application configuration.
type Config struct {
	Log    LogConfig    `koanf:"log"`
	Store  StoreConfig  `koanf:"store"`
	Deck   DeckConfig   `koanf:"deck"`
	Review ReviewConfig `koanf:"review"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	Format string `koanf:"format" validate:"oneof=text json"`
}

// StoreConfig selects where the card collection is kept. Path is the
// database file for sqlite and the directory for file.
type StoreConfig struct {
	Driver string `koanf:"driver" validate:"oneof=sqlite file memory"`
	Path   string `koanf:"path" validate:"required_unless=Driver memory"`
}

// DeckConfig selects the default deck merged into saved cards.
type DeckConfig struct {
	Seed        string `koanf:"seed" validate:"oneof=multiplication basic markdown git none"`
	Weeks       int    `koanf:"weeks" validate:"min=0,max=10"`
	MarkdownDir string `koanf:"markdown_dir" validate:"required_if=Seed markdown"`
	GitURL      string `koanf:"git_url" validate:"required_if=Seed git"`
	ReposDir    string `koanf:"repos_dir" validate:"required_if=Seed git"`
}

// ReviewConfig tunes scoring.
type ReviewConfig struct {
	DailyForgetting float64 `koanf:"daily_forgetting" validate:"gt=0,lt=1"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Store: StoreConfig{
			Driver: DriverSQLite,
			Path:   "flashbeta.db",
		},
		Deck: DeckConfig{
			Seed:     SeedMultiplication,
			Weeks:    2,
			ReposDir: "repos",
		},
		Review: ReviewConfig{
			DailyForgetting: domain.DefaultDailyForgetting,
		},
	}
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"log-level":        "log.level",
	"log-format":       "log.format",
	"store":            "store.driver",
	"db":               "store.path",
	"seed":             "deck.seed",
	"weeks":            "deck.weeks",
	"markdown-dir":     "deck.markdown_dir",
	"git-url":          "deck.git_url",
	"repos-dir":        "deck.repos_dir",
	"daily-forgetting": "review.daily_forgetting",
}

// RegisterFlags adds the configuration flags to flags with defaults from def.
func RegisterFlags(flags *pflag.FlagSet, def Config) {
	flags.String("config", "", "Path to a YAML configuration file")
	flags.String("log-level", def.Log.Level, "Log level: debug, info, warn or error")
	flags.String("log-format", def.Log.Format, "Log format: text or json")
	flags.String("store", def.Store.Driver, "Card store: sqlite, file or memory")
	flags.String("db", def.Store.Path, "SQLite database file, or directory for the file store")
	flags.String("seed", def.Deck.Seed, "Default deck: multiplication, basic, markdown, git or none")
	flags.Int("weeks", def.Deck.Weeks, "Weeks of the multiplication table to include")
	flags.String("markdown-dir", def.Deck.MarkdownDir, "Directory of markdown Q:/A: files for the markdown deck")
	flags.String("git-url", def.Deck.GitURL, "Repository holding a markdown deck")
	flags.String("repos-dir", def.Deck.ReposDir, "Where deck repositories are cloned")
	flags.Float64("daily-forgetting", def.Review.DailyForgetting, "Fraction of recall strength lost per day")
}

// Load builds the configuration. flags must have been registered with
// RegisterFlags and parsed.
func Load(flags *pflag.FlagSet) (Config, error) {
	cfg := Default()
	k := koanf.New(".")

	path, _ := flags.GetString("config")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return cfg, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	} else if _, err := os.Stat("flashbeta.yaml"); err == nil {
		if err := k.Load(file.Provider("flashbeta.yaml"), yaml.Parser()); err != nil {
			return cfg, fmt.Errorf("failed to load config file flashbeta.yaml: %w", err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("failed to stat flashbeta.yaml: %w", err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return cfg, fmt.Errorf("failed to load environment: %w", err)
	}

	if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, flagKey(flags)), nil); err != nil {
		return cfg, fmt.Errorf("failed to load flags: %w", err)
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("failed to decode configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// envKey turns FLASHBETA_DECK_MARKDOWN_DIR into deck.markdown_dir: the first
// underscore separates the section, the rest are part of the key.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.Replace(s, "_", ".", 1)
}

func flagKey(flags *pflag.FlagSet) func(*pflag.Flag) (string, interface{}) {
	return func(f *pflag.Flag) (string, interface{}) {
		key, ok := flagKeys[f.Name]
		if !ok {
			return "", nil
		}
		return key, posflag.FlagVal(flags, f)
	}
}
