package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"poolstats/internal/model"
	"poolstats/internal/store"
)

// UpsertBatch writes one drained entity batch. Each entity kind is
// queued into a single pgx batch so a flush is one round trip.
func (s *Store) UpsertBatch(ctx context.Context, batch store.Batch) error {
	if batch.Len() == 0 {
		return nil
	}

	queued := &pgx.Batch{}

	for _, coin := range batch.Coins {
		queued.Queue(`
			INSERT INTO coins (
				id, symbol, name, creator, created_at, created_at_block, pool_address, pool_stat_id, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,now())
			ON CONFLICT (id) DO UPDATE SET
				symbol = EXCLUDED.symbol,
				name = EXCLUDED.name,
				creator = EXCLUDED.creator,
				created_at = EXCLUDED.created_at,
				created_at_block = EXCLUDED.created_at_block,
				pool_address = EXCLUDED.pool_address,
				pool_stat_id = EXCLUDED.pool_stat_id,
				updated_at = now()
		`,
			coin.ID,
			coin.Symbol,
			coin.Name,
			coin.Creator,
			int64(coin.CreatedAt),
			int64(coin.CreatedAtBlock),
			coin.PoolAddress,
			coin.PoolStatID,
		)
	}

	for _, stat := range batch.PoolStats {
		queued.Queue(`
			INSERT INTO pool_stats (
				id, coin_id, volume_24h, depth, fee_apr, total_volume_usd, total_royalties,
				last_updated, last_updated_block, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,now())
			ON CONFLICT (id) DO UPDATE SET
				coin_id = EXCLUDED.coin_id,
				volume_24h = EXCLUDED.volume_24h,
				depth = EXCLUDED.depth,
				fee_apr = EXCLUDED.fee_apr,
				total_volume_usd = EXCLUDED.total_volume_usd,
				total_royalties = EXCLUDED.total_royalties,
				last_updated = EXCLUDED.last_updated,
				last_updated_block = EXCLUDED.last_updated_block,
				updated_at = now()
		`,
			stat.ID,
			stat.CoinID,
			stat.Volume24h.String(),
			stat.Depth.String(),
			stat.FeeAPR.String(),
			stat.TotalVolumeUSD.String(),
			stat.TotalRoyalties.String(),
			int64(stat.LastUpdated),
			int64(stat.LastUpdatedBlock),
		)
	}

	for _, swap := range batch.SwapEvents {
		queued.Queue(`
			INSERT INTO swap_events (
				id, pool_id, sender, recipient, amount0, amount1, sqrt_price_x96, liquidity,
				tick, block_timestamp, block_number, tx_hash
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
			ON CONFLICT (id) DO UPDATE SET
				pool_id = EXCLUDED.pool_id,
				sender = EXCLUDED.sender,
				recipient = EXCLUDED.recipient,
				amount0 = EXCLUDED.amount0,
				amount1 = EXCLUDED.amount1,
				sqrt_price_x96 = EXCLUDED.sqrt_price_x96,
				liquidity = EXCLUDED.liquidity,
				tick = EXCLUDED.tick,
				block_timestamp = EXCLUDED.block_timestamp,
				block_number = EXCLUDED.block_number,
				tx_hash = EXCLUDED.tx_hash
		`,
			swap.ID,
			swap.PoolID,
			swap.Sender,
			swap.Recipient,
			swap.Amount0.String(),
			swap.Amount1.String(),
			swap.SqrtPriceX96,
			swap.Liquidity,
			swap.Tick,
			int64(swap.BlockTimestamp),
			int64(swap.BlockNumber),
			swap.TxHash,
		)
	}

	for _, flow := range batch.RoyaltyFlows {
		queued.Queue(`
			INSERT INTO royalty_flows (
				id, pool_id, coin_id, payer, amount, block_timestamp, block_number, tx_hash
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
			ON CONFLICT (id) DO UPDATE SET
				pool_id = EXCLUDED.pool_id,
				coin_id = EXCLUDED.coin_id,
				payer = EXCLUDED.payer,
				amount = EXCLUDED.amount,
				block_timestamp = EXCLUDED.block_timestamp,
				block_number = EXCLUDED.block_number,
				tx_hash = EXCLUDED.tx_hash
		`,
			flow.ID,
			flow.PoolID,
			flow.CoinID,
			flow.Payer,
			flow.Amount.String(),
			int64(flow.BlockTimestamp),
			int64(flow.BlockNumber),
			flow.TxHash,
		)
	}

	for _, position := range batch.LPPositions {
		queued.Queue(`
			INSERT INTO lp_positions (
				id, pool_id, owner_address, liquidity, unclaimed_royalties, created_at, last_modified
			) VALUES ($1,$2,$3,$4,$5,$6,$7)
			ON CONFLICT (id) DO UPDATE SET
				pool_id = EXCLUDED.pool_id,
				owner_address = EXCLUDED.owner_address,
				liquidity = EXCLUDED.liquidity,
				unclaimed_royalties = EXCLUDED.unclaimed_royalties,
				created_at = EXCLUDED.created_at,
				last_modified = EXCLUDED.last_modified
		`,
			position.ID,
			position.PoolID,
			position.Owner,
			position.Liquidity.String(),
			position.UnclaimedRoyalties.String(),
			int64(position.CreatedAt),
			int64(position.LastModified),
		)
	}

	for _, day := range batch.DailyPoolStats {
		queued.Queue(`
			INSERT INTO daily_pool_stats (
				id, pool_id, date, volume_usd, royalties_usd, swap_count, unique_users
			) VALUES ($1,$2,$3,$4,$5,$6,$7)
			ON CONFLICT (id) DO UPDATE SET
				pool_id = EXCLUDED.pool_id,
				date = EXCLUDED.date,
				volume_usd = EXCLUDED.volume_usd,
				royalties_usd = EXCLUDED.royalties_usd,
				swap_count = EXCLUDED.swap_count,
				unique_users = EXCLUDED.unique_users
		`,
			day.ID,
			day.PoolID,
			day.Date,
			day.VolumeUSD.String(),
			day.RoyaltiesUSD.String(),
			int64(day.SwapCount),
			int64(day.UniqueUsers),
		)
	}

	results := s.pool.SendBatch(ctx, queued)
	defer results.Close()

	for i := 0; i < queued.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// LoadWorkingSet hydrates an in-memory store with the mutable entities
// (coins, pool stats, positions, daily buckets) so accumulators resume
// from their persisted values. Append-only logs are not loaded.
func (s *Store) LoadWorkingSet(ctx context.Context, mem *store.Memory) error {
	coins, err := s.loadCoins(ctx)
	if err != nil {
		return fmt.Errorf("load coins: %w", err)
	}
	for _, coin := range coins {
		mem.PutCoin(coin)
	}

	stats, err := s.loadPoolStats(ctx)
	if err != nil {
		return fmt.Errorf("load pool stats: %w", err)
	}
	for _, stat := range stats {
		mem.PutPoolStat(stat)
	}

	positions, err := s.loadLPPositions(ctx)
	if err != nil {
		return fmt.Errorf("load lp positions: %w", err)
	}
	for _, position := range positions {
		mem.PutLPPosition(position)
	}

	dailies, err := s.loadDailyPoolStats(ctx)
	if err != nil {
		return fmt.Errorf("load daily stats: %w", err)
	}
	for _, day := range dailies {
		mem.PutDailyPoolStat(day)
	}

	// Hydration writes are not new state; drop the dirty marks.
	mem.Drain()
	return nil
}

func (s *Store) loadCoins(ctx context.Context) ([]model.Coin, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, symbol, name, creator, created_at, created_at_block, pool_address, pool_stat_id
		FROM coins
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Coin
	for rows.Next() {
		var coin model.Coin
		var createdAt, createdAtBlock int64
		if err := rows.Scan(&coin.ID, &coin.Symbol, &coin.Name, &coin.Creator,
			&createdAt, &createdAtBlock, &coin.PoolAddress, &coin.PoolStatID); err != nil {
			return nil, err
		}
		coin.CreatedAt = uint64(createdAt)
		coin.CreatedAtBlock = uint64(createdAtBlock)
		out = append(out, coin)
	}
	return out, rows.Err()
}

func (s *Store) loadPoolStats(ctx context.Context) ([]model.PoolStat, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, coin_id, volume_24h::text, depth::text, fee_apr::text,
			total_volume_usd::text, total_royalties::text, last_updated, last_updated_block
		FROM pool_stats
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.PoolStat
	for rows.Next() {
		stat, err := scanPoolStat(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, stat)
	}
	return out, rows.Err()
}

func (s *Store) loadLPPositions(ctx context.Context) ([]model.LPPosition, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, pool_id, owner_address, liquidity::text, unclaimed_royalties::text, created_at, last_modified
		FROM lp_positions
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.LPPosition
	for rows.Next() {
		position, err := scanLPPosition(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, position)
	}
	return out, rows.Err()
}

func (s *Store) loadDailyPoolStats(ctx context.Context) ([]model.DailyPoolStat, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, pool_id, date, volume_usd::text, royalties_usd::text, swap_count, unique_users
		FROM daily_pool_stats
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.DailyPoolStat
	for rows.Next() {
		day, err := scanDailyPoolStat(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, day)
	}
	return out, rows.Err()
}
