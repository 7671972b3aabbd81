package engine

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"poolstats/internal/event"
	"poolstats/internal/fixedpoint"
	"poolstats/internal/model"
)

// applyCoinCreated creates the Coin and its PoolStat with zeroed
// accumulators. It does not check for an existing entity: a duplicate
// CoinCreated overwrites both and resets the accumulators. The event
// source guarantees at-most-once emission per coin address.
func (e *Engine) applyCoinCreated(ev event.CoinCreated) {
	coinID := lowerAddr(ev.CoinAddress)
	poolID := lowerAddr(ev.PoolAddress)

	stat := model.PoolStat{
		ID:               poolID,
		CoinID:           coinID,
		Volume24h:        decimal.Zero,
		Depth:            decimal.Zero,
		FeeAPR:           decimal.Zero,
		TotalVolumeUSD:   decimal.Zero,
		TotalRoyalties:   decimal.Zero,
		LastUpdated:      ev.BlockTimestamp,
		LastUpdatedBlock: ev.BlockNumber,
	}

	coin := model.Coin{
		ID:             coinID,
		Symbol:         ev.Symbol,
		Name:           ev.Name,
		Creator:        lowerAddr(ev.Creator),
		CreatedAt:      ev.BlockTimestamp,
		CreatedAtBlock: ev.BlockNumber,
		PoolAddress:    poolID,
		PoolStatID:     poolID,
	}

	e.store.PutCoin(coin)
	e.store.PutPoolStat(stat)

	e.logger.Info("coin created",
		zap.String("coin", coinID),
		zap.String("pool", poolID),
		zap.String("symbol", ev.Symbol),
		zap.Uint64("block", ev.BlockNumber),
	)
}

// applySwap records the swap and advances the pool's volume
// accumulators. volumeUSD is |amount0| + |amount1| in token units, a
// proxy rather than a true USD valuation.
func (e *Engine) applySwap(ev event.Swap) {
	poolID := lowerAddr(ev.PoolAddress)
	stat, ok := e.store.PoolStat(poolID)
	if !ok {
		// Pool never registered via CoinCreated. Expected under
		// partial indexing; skip without error.
		e.logger.Debug("swap for untracked pool", zap.String("pool", poolID))
		return
	}

	amount0 := fixedpoint.FromRaw(ev.Amount0, fixedpoint.TokenDecimals)
	amount1 := fixedpoint.FromRaw(ev.Amount1, fixedpoint.TokenDecimals)
	volumeUSD := amount0.Abs().Add(amount1.Abs())

	stat.TotalVolumeUSD = stat.TotalVolumeUSD.Add(volumeUSD)
	stat.Volume24h = stat.Volume24h.Add(volumeUSD)
	stat.LastUpdated = ev.BlockTimestamp
	stat.LastUpdatedBlock = ev.BlockNumber
	e.store.PutPoolStat(stat)

	swap := model.SwapEvent{
		ID:             model.EventID(ev.TxHash, ev.LogIndex),
		PoolID:         poolID,
		Sender:         lowerAddr(ev.Sender),
		Recipient:      lowerAddr(ev.Recipient),
		Amount0:        amount0,
		Amount1:        amount1,
		SqrtPriceX96:   rawString(ev.SqrtPriceX96),
		Liquidity:      rawString(ev.Liquidity),
		Tick:           ev.Tick,
		BlockTimestamp: ev.BlockTimestamp,
		BlockNumber:    ev.BlockNumber,
		TxHash:         lowerAddr(ev.TxHash),
	}
	e.store.PutSwapEvent(swap)

	e.bumpDailyStat(poolID, volumeUSD, ev.BlockTimestamp)
}

// applyRoyaltyPaid records the payout and advances totalRoyalties.
func (e *Engine) applyRoyaltyPaid(ev event.RoyaltyPaid) {
	poolID := lowerAddr(ev.PoolAddress)
	stat, ok := e.store.PoolStat(poolID)
	if !ok {
		e.logger.Debug("royalty for untracked pool", zap.String("pool", poolID))
		return
	}

	amount := fixedpoint.FromRaw(ev.Amount, fixedpoint.TokenDecimals)

	flow := model.RoyaltyFlow{
		ID:             model.EventID(ev.TxHash, ev.LogIndex),
		PoolID:         poolID,
		CoinID:         stat.CoinID,
		Payer:          lowerAddr(ev.Payer),
		Amount:         amount,
		BlockTimestamp: ev.BlockTimestamp,
		BlockNumber:    ev.BlockNumber,
		TxHash:         lowerAddr(ev.TxHash),
	}

	stat.TotalRoyalties = stat.TotalRoyalties.Add(amount)
	stat.LastUpdated = ev.BlockTimestamp
	e.store.PutPoolStat(stat)
	e.store.PutRoyaltyFlow(flow)
}

// applyModifyLiquidity upserts the provider position and adjusts the
// pool depth by the same signed delta. Neither value is floored:
// inconsistent upstream data can drive them negative, which is logged
// but stored as computed.
func (e *Engine) applyModifyLiquidity(ev event.ModifyLiquidity) {
	poolID := lowerAddr(ev.PoolAddress)
	stat, ok := e.store.PoolStat(poolID)
	if !ok {
		e.logger.Debug("liquidity change for untracked pool", zap.String("pool", poolID))
		return
	}

	owner := lowerAddr(ev.Sender)
	positionID := model.PositionID(poolID, owner)
	position, ok := e.store.LPPosition(positionID)
	if !ok {
		position = model.LPPosition{
			ID:                 positionID,
			PoolID:             poolID,
			Owner:              owner,
			Liquidity:          decimal.Zero,
			UnclaimedRoyalties: decimal.Zero,
			CreatedAt:          ev.BlockTimestamp,
		}
	}

	delta := fixedpoint.FromRaw(ev.LiquidityDelta, fixedpoint.TokenDecimals)

	position.Liquidity = position.Liquidity.Add(delta)
	position.LastModified = ev.BlockTimestamp
	if position.Liquidity.IsNegative() {
		e.logger.Warn("position liquidity below zero",
			zap.String("position", positionID),
			zap.String("liquidity", position.Liquidity.String()),
		)
	}
	e.store.PutLPPosition(position)

	stat.Depth = stat.Depth.Add(delta)
	stat.LastUpdated = ev.BlockTimestamp
	if stat.Depth.IsNegative() {
		e.logger.Warn("pool depth below zero",
			zap.String("pool", poolID),
			zap.String("depth", stat.Depth.String()),
		)
	}
	e.store.PutPoolStat(stat)
}
