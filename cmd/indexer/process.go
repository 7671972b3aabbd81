package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"poolstats/internal/config"
	"poolstats/internal/ingest"
	"poolstats/internal/launch"
	"poolstats/internal/storage/postgres"
)

func newProcessCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process",
		Short: "Replay captured logs through the stats engine into Postgres",
		RunE:  runProcess,
	}

	cmd.Flags().String("in", "./data/logs.jsonl", "input raw logs JSONL")
	cmd.Flags().String("pg-dsn", "", "Postgres DSN")
	cmd.Flags().Int("flush-size", 500, "applied events per flush")
	cmd.Flags().String("cursor-file", "", "cursor file path (keeps the cursor in Postgres when empty)")
	cmd.Flags().String("cursor-name", "default", "cursor name in the database")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	return cmd
}

func runProcess(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadProcess(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewStore(ctx, cfg.PostgresDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	var cursors ingest.CursorStore
	if cfg.CursorFile != "" {
		cursors = &ingest.FileCursorStore{Path: cfg.CursorFile}
	} else {
		cursors = &ingest.DBCursorStore{Store: db, Name: cfg.CursorName}
	}

	decoder, err := launch.NewDecoder()
	if err != nil {
		return err
	}

	processor := ingest.NewProcessor(ingest.Config{
		Input:     cfg.Input,
		BatchSize: cfg.BatchSize,
	}, decoder, db, cursors, logger)

	logger.Info("process start",
		zap.String("in", cfg.Input),
		zap.Int("flush_size", cfg.BatchSize),
		zap.String("cursor_file", cfg.CursorFile),
		zap.String("cursor_name", cfg.CursorName),
	)

	return processor.Run(ctx)
}
