package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"poolstats/internal/model"
)

// Fixed page caps matching what the dashboard consumer requests.
const (
	maxRoyaltyRows  = 100
	maxPositionRows = 50
	maxDailyRows    = 30
)

var ErrNotFound = errors.New("not found")

// CoinWithPool returns a coin and its linked pool stat.
func (s *Store) CoinWithPool(ctx context.Context, coinID string) (model.Coin, model.PoolStat, error) {
	coinID = strings.ToLower(coinID)

	row := s.pool.QueryRow(ctx, `
		SELECT id, symbol, name, creator, created_at, created_at_block, pool_address, pool_stat_id
		FROM coins WHERE id=$1
	`, coinID)

	var coin model.Coin
	var createdAt, createdAtBlock int64
	if err := row.Scan(&coin.ID, &coin.Symbol, &coin.Name, &coin.Creator,
		&createdAt, &createdAtBlock, &coin.PoolAddress, &coin.PoolStatID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Coin{}, model.PoolStat{}, fmt.Errorf("coin %s: %w", coinID, ErrNotFound)
		}
		return model.Coin{}, model.PoolStat{}, err
	}
	coin.CreatedAt = uint64(createdAt)
	coin.CreatedAtBlock = uint64(createdAtBlock)

	statRow := s.pool.QueryRow(ctx, `
		SELECT id, coin_id, volume_24h::text, depth::text, fee_apr::text,
			total_volume_usd::text, total_royalties::text, last_updated, last_updated_block
		FROM pool_stats WHERE id=$1
	`, coin.PoolStatID)

	stat, err := scanPoolStat(statRow)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Coin{}, model.PoolStat{}, fmt.Errorf("pool stat %s: %w", coin.PoolStatID, ErrNotFound)
		}
		return model.Coin{}, model.PoolStat{}, err
	}

	return coin, stat, nil
}

// TimeRange bounds a listing by block timestamp, inclusive on both
// ends. A zero bound is open.
type TimeRange struct {
	From uint64
	To   uint64
}

func (r TimeRange) bounds() (int64, int64) {
	from := int64(r.From)
	to := int64(r.To)
	if r.To == 0 {
		to = int64(1)<<62 - 1
	}
	return from, to
}

// RoyaltyFlowsByPool lists royalty flows for a pool within the time
// range, newest first, capped at 100 rows.
func (s *Store) RoyaltyFlowsByPool(ctx context.Context, poolID string, window TimeRange, limit int) ([]model.RoyaltyFlow, error) {
	if limit <= 0 || limit > maxRoyaltyRows {
		limit = maxRoyaltyRows
	}
	from, to := window.bounds()

	rows, err := s.pool.Query(ctx, `
		SELECT id, pool_id, coin_id, payer, amount::text, block_timestamp, block_number, tx_hash
		FROM royalty_flows
		WHERE pool_id=$1 AND block_timestamp BETWEEN $2 AND $3
		ORDER BY block_timestamp DESC, block_number DESC
		LIMIT $4
	`, strings.ToLower(poolID), from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.RoyaltyFlow
	for rows.Next() {
		var flow model.RoyaltyFlow
		var amount string
		var blockTimestamp, blockNumber int64
		if err := rows.Scan(&flow.ID, &flow.PoolID, &flow.CoinID, &flow.Payer,
			&amount, &blockTimestamp, &blockNumber, &flow.TxHash); err != nil {
			return nil, err
		}
		if flow.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("parse amount: %w", err)
		}
		flow.BlockTimestamp = uint64(blockTimestamp)
		flow.BlockNumber = uint64(blockNumber)
		out = append(out, flow)
	}
	return out, rows.Err()
}

// LPPositionsByPool lists positions for a pool modified within the
// time range, most recently modified first, capped at 50 rows.
func (s *Store) LPPositionsByPool(ctx context.Context, poolID string, window TimeRange, limit int) ([]model.LPPosition, error) {
	if limit <= 0 || limit > maxPositionRows {
		limit = maxPositionRows
	}
	from, to := window.bounds()

	rows, err := s.pool.Query(ctx, `
		SELECT id, pool_id, owner_address, liquidity::text, unclaimed_royalties::text, created_at, last_modified
		FROM lp_positions
		WHERE pool_id=$1 AND last_modified BETWEEN $2 AND $3
		ORDER BY last_modified DESC
		LIMIT $4
	`, strings.ToLower(poolID), from, to, limit)
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

// DailyPoolStatsByPool lists day buckets for a pool whose days fall in
// the time range, newest day first, capped at 30 rows. The timestamp
// bounds are mapped onto day ids the same way the aggregator buckets.
func (s *Store) DailyPoolStatsByPool(ctx context.Context, poolID string, window TimeRange, limit int) ([]model.DailyPoolStat, error) {
	if limit <= 0 || limit > maxDailyRows {
		limit = maxDailyRows
	}
	from, to := window.bounds()

	rows, err := s.pool.Query(ctx, `
		SELECT id, pool_id, date, volume_usd::text, royalties_usd::text, swap_count, unique_users
		FROM daily_pool_stats
		WHERE pool_id=$1 AND date BETWEEN $2 AND $3
		ORDER BY date DESC
		LIMIT $4
	`, strings.ToLower(poolID), from/86400, to/86400, limit)
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

func scanPoolStat(row pgx.Row) (model.PoolStat, error) {
	var stat model.PoolStat
	var volume24h, depth, feeAPR, totalVolume, totalRoyalties string
	var lastUpdated, lastUpdatedBlock int64
	if err := row.Scan(&stat.ID, &stat.CoinID, &volume24h, &depth, &feeAPR,
		&totalVolume, &totalRoyalties, &lastUpdated, &lastUpdatedBlock); err != nil {
		return model.PoolStat{}, err
	}

	var err error
	if stat.Volume24h, err = decimal.NewFromString(volume24h); err != nil {
		return model.PoolStat{}, fmt.Errorf("parse volume_24h: %w", err)
	}
	if stat.Depth, err = decimal.NewFromString(depth); err != nil {
		return model.PoolStat{}, fmt.Errorf("parse depth: %w", err)
	}
	if stat.FeeAPR, err = decimal.NewFromString(feeAPR); err != nil {
		return model.PoolStat{}, fmt.Errorf("parse fee_apr: %w", err)
	}
	if stat.TotalVolumeUSD, err = decimal.NewFromString(totalVolume); err != nil {
		return model.PoolStat{}, fmt.Errorf("parse total_volume_usd: %w", err)
	}
	if stat.TotalRoyalties, err = decimal.NewFromString(totalRoyalties); err != nil {
		return model.PoolStat{}, fmt.Errorf("parse total_royalties: %w", err)
	}
	stat.LastUpdated = uint64(lastUpdated)
	stat.LastUpdatedBlock = uint64(lastUpdatedBlock)
	return stat, nil
}

func scanLPPosition(row pgx.Row) (model.LPPosition, error) {
	var position model.LPPosition
	var liquidity, unclaimed string
	var createdAt, lastModified int64
	if err := row.Scan(&position.ID, &position.PoolID, &position.Owner,
		&liquidity, &unclaimed, &createdAt, &lastModified); err != nil {
		return model.LPPosition{}, err
	}

	var err error
	if position.Liquidity, err = decimal.NewFromString(liquidity); err != nil {
		return model.LPPosition{}, fmt.Errorf("parse liquidity: %w", err)
	}
	if position.UnclaimedRoyalties, err = decimal.NewFromString(unclaimed); err != nil {
		return model.LPPosition{}, fmt.Errorf("parse unclaimed_royalties: %w", err)
	}
	position.CreatedAt = uint64(createdAt)
	position.LastModified = uint64(lastModified)
	return position, nil
}

func scanDailyPoolStat(row pgx.Row) (model.DailyPoolStat, error) {
	var day model.DailyPoolStat
	var volumeUSD, royaltiesUSD string
	var swapCount, uniqueUsers int64
	if err := row.Scan(&day.ID, &day.PoolID, &day.Date,
		&volumeUSD, &royaltiesUSD, &swapCount, &uniqueUsers); err != nil {
		return model.DailyPoolStat{}, err
	}

	var err error
	if day.VolumeUSD, err = decimal.NewFromString(volumeUSD); err != nil {
		return model.DailyPoolStat{}, fmt.Errorf("parse volume_usd: %w", err)
	}
	if day.RoyaltiesUSD, err = decimal.NewFromString(royaltiesUSD); err != nil {
		return model.DailyPoolStat{}, fmt.Errorf("parse royalties_usd: %w", err)
	}
	day.SwapCount = uint64(swapCount)
	day.UniqueUsers = uint64(uniqueUsers)
	return day, nil
}
