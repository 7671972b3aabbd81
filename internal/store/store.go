// Package store holds the entity state the engine reads and writes.
// It is the only mutable state in the pipeline; handlers receive it
// explicitly so they can be tested in isolation.
package store

import "poolstats/internal/model"

// Store is a keyed map from string ids to typed entities. Get returns
// a copy; Put replaces whatever is at the entity's id. There is no
// delete: the engine only ever creates and updates.
type Store interface {
	Coin(id string) (model.Coin, bool)
	PutCoin(coin model.Coin)

	PoolStat(id string) (model.PoolStat, bool)
	PutPoolStat(stat model.PoolStat)

	SwapEvent(id string) (model.SwapEvent, bool)
	PutSwapEvent(swap model.SwapEvent)

	RoyaltyFlow(id string) (model.RoyaltyFlow, bool)
	PutRoyaltyFlow(flow model.RoyaltyFlow)

	LPPosition(id string) (model.LPPosition, bool)
	PutLPPosition(position model.LPPosition)

	DailyPoolStat(id string) (model.DailyPoolStat, bool)
	PutDailyPoolStat(day model.DailyPoolStat)
}
