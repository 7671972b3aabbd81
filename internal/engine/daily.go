package engine

import (
	"github.com/shopspring/decimal"

	"poolstats/internal/model"
)

// daySeconds aligns buckets to UTC calendar days.
const daySeconds = 86400

// bumpDailyStat upserts the day-aligned bucket for a swap's pool,
// adding the volume contribution and counting the swap. dayID is the
// timestamp integer-divided by 86400; block timestamps are
// non-negative, so truncation is unambiguous.
//
// royaltiesUSD and uniqueUsers stay at their stored values: royalty
// flows do not feed the daily bucket and unique-user tracking is not
// part of this path.
func (e *Engine) bumpDailyStat(poolID string, volumeUSD decimal.Decimal, timestamp uint64) {
	dayID := int64(timestamp / daySeconds)
	id := model.DailyID(poolID, dayID)

	day, ok := e.store.DailyPoolStat(id)
	if !ok {
		day = model.DailyPoolStat{
			ID:           id,
			PoolID:       poolID,
			Date:         dayID,
			VolumeUSD:    decimal.Zero,
			RoyaltiesUSD: decimal.Zero,
		}
	}

	day.VolumeUSD = day.VolumeUSD.Add(volumeUSD)
	day.SwapCount++
	e.store.PutDailyPoolStat(day)
}
