// Package sheet parses sheet command flags and runs the interactive
// character sheet.
package sheet

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	entrypoint "github.com/louisbranch/charsheet/internal/platform/cmd"
	"github.com/louisbranch/charsheet/internal/platform/discovery"
	"github.com/louisbranch/charsheet/internal/platform/timeouts"
	"github.com/louisbranch/charsheet/internal/services/charstore/api"
	"github.com/louisbranch/charsheet/internal/services/sheet/app"
	"github.com/louisbranch/charsheet/internal/services/sheet/domain"
	"github.com/louisbranch/charsheet/internal/services/sheet/remote"
	"github.com/louisbranch/charsheet/internal/services/sheet/sheetsync"
)

// Config holds sheet command configuration.
type Config struct {
	RemoteURL     string        `env:"REMOTE_URL"`
	RulesetPath   string        `env:"RULESET_PATH"`
	Locale        string        `env:"LOCALE" envDefault:"en-US"`
	RemoteTimeout time.Duration `env:"REMOTE_TIMEOUT"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := Config{RemoteTimeout: timeouts.RemoteRequest}
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	cfg.RemoteURL = discovery.OrDefaultHTTPURL(cfg.RemoteURL, discovery.ServiceCharstore, api.CharacterPath)
	fs.StringVar(&cfg.RemoteURL, "remote", cfg.RemoteURL, "Character persistence endpoint URL")
	fs.StringVar(&cfg.RulesetPath, "ruleset", cfg.RulesetPath, "Ruleset YAML file (empty uses the built-in ruleset)")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "Locale for messages")
	fs.DurationVar(&cfg.RemoteTimeout, "remote-timeout", cfg.RemoteTimeout, "Per-request timeout for the endpoint (0 disables)")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if cfg.RemoteTimeout < 0 {
		return Config{}, errors.New("remote timeout must not be negative")
	}
	return cfg, nil
}

// Run starts the interactive sheet on stdin and stdout.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceSheet, func(ctx context.Context) error {
		return RunIO(ctx, cfg, os.Stdin, os.Stdout)
	})
}

// RunIO runs the sheet against the given input and output until the input
// ends, a quit command is read, or ctx is canceled.
func RunIO(ctx context.Context, cfg Config, in io.Reader, out io.Writer) error {
	ruleset, err := domain.LoadRuleset(cfg.RulesetPath)
	if err != nil {
		return fmt.Errorf("load ruleset: %w", err)
	}
	client, err := remote.New(cfg.RemoteURL,
		remote.WithTimeout(cfg.RemoteTimeout),
		remote.WithLogger(log.Default()),
	)
	if err != nil {
		return err
	}
	engine := app.New(ruleset, client,
		sheetsync.WithLocale(cfg.Locale),
		sheetsync.WithLogger(log.Default()),
	)
	return newConsole(engine, out, cfg.Locale).run(ctx, in)
}
