// Package main starts the interactive character sheet.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	sheetcmd "github.com/louisbranch/charsheet/internal/cmd/sheet"
	"github.com/louisbranch/charsheet/internal/platform/config"
)

func main() {
	log.SetPrefix("[SHEET] ")
	cfg, err := sheetcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exit(fmt.Errorf("parse flags: %w", err))
		return
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := sheetcmd.Run(ctx, cfg); err != nil {
		stop()
		config.Exit(fmt.Errorf("sheet: %w", err))
	}
}
