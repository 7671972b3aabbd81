// Package ingest replays captured log records through the stats engine
// and flushes the resulting entity state to Postgres.
package ingest

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"poolstats/internal/engine"
	"poolstats/internal/launch"
	"poolstats/internal/model"
	"poolstats/internal/storage"
	"poolstats/internal/store"
)

const defaultBatchSize = 500

// Config controls a single processing run.
type Config struct {
	// Input is the JSONL file produced by the run stage.
	Input string
	// BatchSize is the number of applied events between flushes.
	BatchSize int
}

// Database is the persistence surface the processor flushes to.
// *postgres.Store implements it.
type Database interface {
	LoadWorkingSet(ctx context.Context, mem *store.Memory) error
	UpsertBatch(ctx context.Context, batch store.Batch) error
}

// Processor drives the replay loop: hydrate working set, scan logs,
// decode, apply, flush.
type Processor struct {
	cfg     Config
	decoder *launch.Decoder
	db      Database
	cursors CursorStore
	logger  *zap.Logger
}

func NewProcessor(cfg Config, decoder *launch.Decoder, db Database, cursors CursorStore, logger *zap.Logger) *Processor {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{cfg: cfg, decoder: decoder, db: db, cursors: cursors, logger: logger}
}

// Run replays the input file once. Records at or below the stored
// cursor are skipped, so accumulators are advanced exactly once per
// event across restarts. The cursor is persisted only after the
// corresponding entity batch lands in Postgres.
func (p *Processor) Run(ctx context.Context) error {
	mem := store.NewMemory()
	if err := p.db.LoadWorkingSet(ctx, mem); err != nil {
		return fmt.Errorf("hydrate working set: %w", err)
	}
	eng := engine.New(mem, p.logger)

	cursor, haveCursor, err := p.cursors.Load(ctx)
	if err != nil {
		return fmt.Errorf("load cursor: %w", err)
	}
	if haveCursor {
		p.logger.Info("resume from cursor",
			zap.Uint64("block", cursor.Block),
			zap.Uint64("logIndex", cursor.LogIndex))
	}

	var total, applied, skipped, stale uint64
	var last Cursor
	haveLast := false
	pending := 0

	flush := func() error {
		batch := mem.Drain()
		if batch.Len() > 0 {
			if err := p.db.UpsertBatch(ctx, batch); err != nil {
				return fmt.Errorf("flush entities: %w", err)
			}
		}
		if haveCursor {
			if err := p.cursors.Save(ctx, cursor); err != nil {
				return fmt.Errorf("save cursor: %w", err)
			}
		}
		pending = 0
		return nil
	}

	scanErr := storage.ScanLogs(p.cfg.Input, func(record model.LogRecord) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		total++

		// The run stage writes logs in ascending (block, logIndex)
		// order. A regression means the file was corrupted or merged
		// badly; applying it would produce a different final state.
		if haveLast && last.Covers(record.BlockNumber, record.LogIndex) {
			return fmt.Errorf("log order regression at block %d index %d (last block %d index %d)",
				record.BlockNumber, record.LogIndex, last.Block, last.LogIndex)
		}
		last = Cursor{Block: record.BlockNumber, LogIndex: record.LogIndex}
		haveLast = true

		if haveCursor && cursor.Covers(record.BlockNumber, record.LogIndex) {
			stale++
			return nil
		}
		cursor = last
		haveCursor = true

		if record.Removed {
			skipped++
			return nil
		}
		if len(record.Topics) == 0 || !p.decoder.CanDecode(record.Topics[0]) {
			skipped++
			return nil
		}

		ev, err := p.decoder.Decode(record)
		if err != nil {
			p.logger.Warn("skip undecodable log",
				zap.Uint64("block", record.BlockNumber),
				zap.Uint64("logIndex", record.LogIndex),
				zap.Error(err))
			skipped++
			return nil
		}

		eng.Apply(ev)
		applied++
		pending++
		if pending >= p.cfg.BatchSize {
			return flush()
		}
		return nil
	})
	if scanErr != nil {
		return scanErr
	}

	if err := flush(); err != nil {
		return err
	}

	p.logger.Info("processing complete",
		zap.Uint64("total", total),
		zap.Uint64("applied", applied),
		zap.Uint64("skipped", skipped),
		zap.Uint64("stale", stale))
	return nil
}
