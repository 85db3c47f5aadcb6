// Package main starts the character document store.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	charstorecmd "github.com/louisbranch/charsheet/internal/cmd/charstore"
	"github.com/louisbranch/charsheet/internal/platform/config"
)

func main() {
	log.SetPrefix("[CHARSTORE] ")
	cfg, err := charstorecmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exit(fmt.Errorf("parse flags: %w", err))
		return
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := charstorecmd.Run(ctx, cfg); err != nil {
		stop()
		config.Exit(fmt.Errorf("charstore: %w", err))
	}
}
