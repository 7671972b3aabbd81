// Package indexer captures launch-app logs from the chain into a JSONL
// file for deterministic replay by the process stage.
package indexer

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"poolstats/internal/chain"
	"poolstats/internal/event"
	"poolstats/internal/launch"
	"poolstats/internal/model"
	"poolstats/internal/storage"
)

// RunConfig holds runtime settings for a capture run.
type RunConfig struct {
	FromBlock uint64
	ToBlock   uint64
	// Factories are the launch-app contracts that emit CoinCreated.
	Factories []common.Address
	// Pools seeds the pool filter set; pools discovered via CoinCreated
	// during the run are added automatically.
	Pools             []common.Address
	BatchSize         uint64
	CheckpointPath    string
	CheckpointEnabled bool
	MaxRetries        int
	RetryBackoff      time.Duration
}

// Runner streams logs from the chain and writes them to the sink. It
// watches the factory contracts for CoinCreated and widens the address
// filter with each newly announced pool. Discovery is per-span: a
// newly announced pool is captured from the next span onward, so
// events it emits inside its own discovery span require re-running
// that range with the pool passed as a seed.
type Runner struct {
	cfg        RunConfig
	chain      *chain.Client
	sink       storage.LogSink
	decoder    *launch.Decoder
	logger     *zap.Logger
	seen       map[string]struct{}
	tracked    map[common.Address]struct{}
	addresses  []common.Address
	checkpoint *CheckpointStore
}

// NewRunner builds a Runner with its dependencies.
func NewRunner(cfg RunConfig, chainClient *chain.Client, sink storage.LogSink, logger *zap.Logger) (*Runner, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	decoder, err := launch.NewDecoder()
	if err != nil {
		return nil, fmt.Errorf("build decoder: %w", err)
	}
	r := &Runner{
		cfg:        cfg,
		chain:      chainClient,
		sink:       sink,
		decoder:    decoder,
		logger:     logger,
		seen:       make(map[string]struct{}),
		tracked:    make(map[common.Address]struct{}),
		checkpoint: NewCheckpointStore(cfg.CheckpointPath, cfg.CheckpointEnabled),
	}
	for _, addr := range cfg.Factories {
		r.track(addr)
	}
	for _, addr := range cfg.Pools {
		r.track(addr)
	}
	return r, nil
}

func (r *Runner) track(addr common.Address) {
	if _, ok := r.tracked[addr]; ok {
		return
	}
	r.tracked[addr] = struct{}{}
	r.addresses = append(r.addresses, addr)
}

// Run executes the capture loop.
func (r *Runner) Run(ctx context.Context) error {
	if r.chain == nil {
		return fmt.Errorf("chain client is nil")
	}
	if r.sink == nil {
		return fmt.Errorf("log sink is nil")
	}
	if r.cfg.BatchSize == 0 {
		return fmt.Errorf("batch size must be greater than zero")
	}
	if len(r.addresses) == 0 {
		return fmt.Errorf("at least one factory or pool address is required")
	}

	chainID, err := r.chain.GetChainID(ctx)
	if err != nil {
		return fmt.Errorf("get chain id: %w", err)
	}
	if !chainID.IsUint64() {
		return fmt.Errorf("chain id does not fit in uint64: %s", chainID)
	}
	chainIDValue := chainID.Uint64()

	from := r.cfg.FromBlock
	to := r.cfg.ToBlock
	if to == 0 {
		latest, err := r.chain.LatestBlockNumber(ctx)
		if err != nil {
			return fmt.Errorf("get latest block: %w", err)
		}
		to = latest
	}

	if r.checkpoint != nil {
		cp, ok, err := r.checkpoint.Load()
		if err != nil {
			return err
		}
		if ok && cp.LastProcessedBlock >= from {
			from = cp.LastProcessedBlock + 1
			r.logger.Info("resume from checkpoint", zap.Uint64("last_processed", cp.LastProcessedBlock), zap.Uint64("from", from))
		}
	}

	if from > to {
		r.logger.Info("nothing to capture", zap.Uint64("from", from), zap.Uint64("to", to))
		return nil
	}

	spans, err := SplitRange(from, to, r.cfg.BatchSize)
	if err != nil {
		return err
	}

	topic0 := r.decoder.Topic0Hashes()

	for _, span := range spans {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		r.logger.Info("fetch logs",
			zap.Uint64("from", span.From),
			zap.Uint64("to", span.To),
			zap.Int("addresses", len(r.addresses)))

		logs, err := r.filterLogsWithRetry(ctx, span.From, span.To, topic0)
		if err != nil {
			return fmt.Errorf("filter logs: %w", err)
		}

		ingestedAt := time.Now().UTC()
		records := make([]model.LogRecord, 0, len(logs))
		for _, log := range logs {
			if r.isDuplicate(log) {
				continue
			}

			ts, err := r.blockTimestampWithRetry(ctx, log.BlockNumber)
			if err != nil {
				return fmt.Errorf("block timestamp %d: %w", log.BlockNumber, err)
			}
			record := buildLogRecord(chainIDValue, log, ts, ingestedAt)
			records = append(records, record)
			r.registerDiscoveredPool(record)
		}

		if err := r.sink.PutLogBatch(records); err != nil {
			return fmt.Errorf("store logs: %w", err)
		}

		if r.checkpoint != nil {
			if err := r.checkpoint.Save(span.To); err != nil {
				return err
			}
		}

		r.logger.Info("batch complete", zap.Int("logs", len(records)), zap.Uint64("from", span.From), zap.Uint64("to", span.To))
	}

	return nil
}

// registerDiscoveredPool adds the pool announced by a CoinCreated log
// to the filter set for subsequent ranges.
func (r *Runner) registerDiscoveredPool(record model.LogRecord) {
	if len(record.Topics) == 0 || !r.decoder.CanDecode(record.Topics[0]) {
		return
	}
	ev, err := r.decoder.Decode(record)
	if err != nil {
		return
	}
	created, ok := ev.(event.CoinCreated)
	if !ok {
		return
	}
	addr := common.HexToAddress(created.PoolAddress)
	if _, tracked := r.tracked[addr]; tracked {
		return
	}
	r.track(addr)
	r.logger.Info("track discovered pool",
		zap.String("pool", created.PoolAddress),
		zap.String("coin", created.CoinAddress))
}

func (r *Runner) filterLogsWithRetry(ctx context.Context, fromBlock, toBlock uint64, topic0 []common.Hash) ([]types.Log, error) {
	var logs []types.Log
	err := backoff{attempts: r.cfg.MaxRetries, base: r.cfg.RetryBackoff}.do(ctx, func(ctx context.Context) error {
		var err error
		logs, err = r.chain.FilterLogs(ctx, fromBlock, toBlock, r.addresses, topic0)
		if err != nil {
			r.logger.Warn("filter logs failed", zap.Error(err), zap.Uint64("from", fromBlock), zap.Uint64("to", toBlock))
		}
		return err
	})
	return logs, err
}

func (r *Runner) blockTimestampWithRetry(ctx context.Context, blockNumber uint64) (uint64, error) {
	var ts uint64
	err := backoff{attempts: r.cfg.MaxRetries, base: r.cfg.RetryBackoff}.do(ctx, func(ctx context.Context) error {
		var err error
		ts, err = r.chain.BlockTimestamp(ctx, blockNumber)
		if err != nil {
			r.logger.Warn("block timestamp fetch failed", zap.Error(err), zap.Uint64("block_number", blockNumber))
		}
		return err
	})
	return ts, err
}

func (r *Runner) isDuplicate(log types.Log) bool {
	id := fmt.Sprintf("%d:%s:%d", log.BlockNumber, log.TxHash.Hex(), log.Index)
	if _, ok := r.seen[id]; ok {
		return true
	}
	r.seen[id] = struct{}{}
	return false
}
