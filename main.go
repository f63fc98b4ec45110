package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"

	"github.com/tabulon-ai/tabulon-engine/pkg/config"
	"github.com/tabulon-ai/tabulon-engine/pkg/logging"
	"github.com/tabulon-ai/tabulon-engine/pkg/profiler"
	"github.com/tabulon-ai/tabulon-engine/pkg/store"
)

// version is set via ldflags at build time.
var version = "dev"

func main() {
	persist := flag.Bool("store", false, "persist the table and profile to PostgreSQL")
	schemaOnly := flag.Bool("schema-only", false, "print only the synthesized CREATE TABLE statement")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <file.csv|.tsv|.txt|.xlsx>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(version)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	logger.Info("Starting tabulon-engine",
		zap.String("version", cfg.Version),
		zap.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var st store.Store
	if *persist {
		ps, err := store.NewPostgres(ctx, cfg.Database, logger)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer ps.Close()
		st = ps
	}

	path := flag.Arg(0)
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Fatal("Failed to read input file", zap.Error(err))
	}

	engine := profiler.New(cfg, st, logger)
	profile, err := engine.Profile(ctx, data, filepath.Base(path),
		func(stage profiler.Stage, percent int, message string) {
			logger.Info("Progress",
				zap.String("stage", string(stage)),
				zap.Int("percent", percent),
				zap.String("message", message))
		})
	if err != nil {
		logger.Fatal("Profiling failed", zap.Error(err))
	}

	if *schemaOnly {
		fmt.Println(profile.Schema.Text)
		return
	}

	out, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		logger.Fatal("Failed to encode profile", zap.Error(err))
	}
	fmt.Println(string(out))
}
