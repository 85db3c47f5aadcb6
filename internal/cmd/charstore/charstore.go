// Package charstore parses character store flags and launches the service.
package charstore

import (
	"context"
	"errors"
	"flag"
	"log"
	"path/filepath"
	"strings"
	"time"

	entrypoint "github.com/louisbranch/charsheet/internal/platform/cmd"
	"github.com/louisbranch/charsheet/internal/platform/discovery"
	platformgrpc "github.com/louisbranch/charsheet/internal/platform/grpc"
	server "github.com/louisbranch/charsheet/internal/services/charstore/app"
)

// Config holds character store command configuration.
type Config struct {
	HTTPAddr    string `env:"CHARSTORE_HTTP_ADDR"`
	HealthAddr  string `env:"CHARSTORE_HEALTH_ADDR"`
	DBPath      string `env:"CHARSTORE_DB_PATH"`
	RulesetPath string `env:"RULESET_PATH"`
	// HealthCheck checks a running store's health listener and exits.
	HealthCheck bool
}

const healthCheckTimeout = 5 * time.Second

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	cfg.HTTPAddr = discovery.OrDefaultHTTPAddr(cfg.HTTPAddr, discovery.ServiceCharstore)
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join("data", "charstore.db")
	}
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address for the character document API")
	fs.StringVar(&cfg.HealthAddr, "health-addr", cfg.HealthAddr, "gRPC health listen address (empty disables)")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path")
	fs.StringVar(&cfg.RulesetPath, "ruleset", cfg.RulesetPath, "Ruleset YAML file for the initial document")
	fs.BoolVar(&cfg.HealthCheck, "check-health", false, "Check the health listener at -health-addr and exit")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if cfg.HealthCheck && strings.TrimSpace(cfg.HealthAddr) == "" {
		return Config{}, errors.New("-check-health requires -health-addr")
	}
	return cfg, nil
}

// Run starts the character store.
func Run(ctx context.Context, cfg Config) error {
	if cfg.HealthCheck {
		checkCtx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
		defer cancel()
		return platformgrpc.CheckHealth(checkCtx, cfg.HealthAddr, server.HealthService, log.Printf)
	}
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceCharstore, func(ctx context.Context) error {
		srv, err := server.NewServer(ctx, server.Config{
			HTTPAddr:    cfg.HTTPAddr,
			HealthAddr:  cfg.HealthAddr,
			DBPath:      cfg.DBPath,
			RulesetPath: cfg.RulesetPath,
		})
		if err != nil {
			return err
		}
		return srv.Serve(ctx)
	})
}
