package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"poolstats/internal/config"
	"poolstats/internal/model"
	"poolstats/internal/storage/postgres"
)

func newQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Read-only lookups against the indexed entities",
	}

	cmd.PersistentFlags().String("pg-dsn", "", "Postgres DSN")
	cmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")

	coinCmd := &cobra.Command{
		Use:   "coin <coin-address>",
		Short: "Show a coin and its pool statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withQueryStore(cmd, func(ctx context.Context, db *postgres.Store) error {
				coin, stat, err := db.CoinWithPool(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSON(struct {
					Coin model.Coin     `json:"coin"`
					Pool model.PoolStat `json:"pool"`
				}{coin, stat})
			})
		},
	}

	royaltiesCmd := &cobra.Command{
		Use:   "royalties <pool-address>",
		Short: "List recent royalty flows for a pool (newest first, max 100)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			window := timeRangeFlags(cmd)
			return withQueryStore(cmd, func(ctx context.Context, db *postgres.Store) error {
				flows, err := db.RoyaltyFlowsByPool(ctx, args[0], window, limit)
				if err != nil {
					return err
				}
				return printJSON(flows)
			})
		},
	}
	royaltiesCmd.Flags().Int("limit", 0, "row limit (0 means the 100-row cap)")
	addTimeRangeFlags(royaltiesCmd)

	positionsCmd := &cobra.Command{
		Use:   "positions <pool-address>",
		Short: "List LP positions for a pool (recently modified first, max 50)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			window := timeRangeFlags(cmd)
			return withQueryStore(cmd, func(ctx context.Context, db *postgres.Store) error {
				positions, err := db.LPPositionsByPool(ctx, args[0], window, limit)
				if err != nil {
					return err
				}
				return printJSON(positions)
			})
		},
	}
	positionsCmd.Flags().Int("limit", 0, "row limit (0 means the 50-row cap)")
	addTimeRangeFlags(positionsCmd)

	dailyCmd := &cobra.Command{
		Use:   "daily <pool-address>",
		Short: "List daily stats for a pool (newest day first, max 30)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			window := timeRangeFlags(cmd)
			return withQueryStore(cmd, func(ctx context.Context, db *postgres.Store) error {
				days, err := db.DailyPoolStatsByPool(ctx, args[0], window, limit)
				if err != nil {
					return err
				}
				return printJSON(days)
			})
		},
	}
	dailyCmd.Flags().Int("limit", 0, "row limit (0 means the 30-day cap)")
	addTimeRangeFlags(dailyCmd)

	cmd.AddCommand(coinCmd, royaltiesCmd, positionsCmd, dailyCmd)
	return cmd
}

func addTimeRangeFlags(cmd *cobra.Command) {
	cmd.Flags().Uint64("from", 0, "earliest unix timestamp (0 means unbounded)")
	cmd.Flags().Uint64("to", 0, "latest unix timestamp (0 means unbounded)")
}

func timeRangeFlags(cmd *cobra.Command) postgres.TimeRange {
	from, _ := cmd.Flags().GetUint64("from")
	to, _ := cmd.Flags().GetUint64("to")
	return postgres.TimeRange{From: from, To: to}
}

func withQueryStore(cmd *cobra.Command, fn func(context.Context, *postgres.Store) error) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadQuery(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx := cmd.Context()
	db, err := postgres.NewStore(ctx, cfg.PostgresDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	logger.Debug("query", zap.String("command", cmd.Name()))
	if err := fn(ctx, db); err != nil {
		logger.Error("query failed", zap.String("command", cmd.Name()), zap.Error(err))
		return err
	}
	return nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
