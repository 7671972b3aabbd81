package store

import "poolstats/internal/model"

// Memory is the in-process Store. It tracks which ids were written
// since the last Drain so the ingest layer can flush only changed
// entities to the database, the way a batch of accumulators is flushed.
//
// Memory is not safe for concurrent use; the pipeline processes one
// event at a time by design.
type Memory struct {
	coins     map[string]model.Coin
	poolStats map[string]model.PoolStat
	swaps     map[string]model.SwapEvent
	royalties map[string]model.RoyaltyFlow
	positions map[string]model.LPPosition
	dailies   map[string]model.DailyPoolStat

	dirty dirtySet
}

type dirtySet struct {
	coins     map[string]struct{}
	poolStats map[string]struct{}
	swaps     map[string]struct{}
	royalties map[string]struct{}
	positions map[string]struct{}
	dailies   map[string]struct{}
}

func newDirtySet() dirtySet {
	return dirtySet{
		coins:     make(map[string]struct{}),
		poolStats: make(map[string]struct{}),
		swaps:     make(map[string]struct{}),
		royalties: make(map[string]struct{}),
		positions: make(map[string]struct{}),
		dailies:   make(map[string]struct{}),
	}
}

func NewMemory() *Memory {
	return &Memory{
		coins:     make(map[string]model.Coin),
		poolStats: make(map[string]model.PoolStat),
		swaps:     make(map[string]model.SwapEvent),
		royalties: make(map[string]model.RoyaltyFlow),
		positions: make(map[string]model.LPPosition),
		dailies:   make(map[string]model.DailyPoolStat),
		dirty:     newDirtySet(),
	}
}

func (m *Memory) Coin(id string) (model.Coin, bool) {
	coin, ok := m.coins[id]
	return coin, ok
}

func (m *Memory) PutCoin(coin model.Coin) {
	m.coins[coin.ID] = coin
	m.dirty.coins[coin.ID] = struct{}{}
}

func (m *Memory) PoolStat(id string) (model.PoolStat, bool) {
	stat, ok := m.poolStats[id]
	return stat, ok
}

func (m *Memory) PutPoolStat(stat model.PoolStat) {
	m.poolStats[stat.ID] = stat
	m.dirty.poolStats[stat.ID] = struct{}{}
}

func (m *Memory) SwapEvent(id string) (model.SwapEvent, bool) {
	swap, ok := m.swaps[id]
	return swap, ok
}

func (m *Memory) PutSwapEvent(swap model.SwapEvent) {
	m.swaps[swap.ID] = swap
	m.dirty.swaps[swap.ID] = struct{}{}
}

func (m *Memory) RoyaltyFlow(id string) (model.RoyaltyFlow, bool) {
	flow, ok := m.royalties[id]
	return flow, ok
}

func (m *Memory) PutRoyaltyFlow(flow model.RoyaltyFlow) {
	m.royalties[flow.ID] = flow
	m.dirty.royalties[flow.ID] = struct{}{}
}

func (m *Memory) LPPosition(id string) (model.LPPosition, bool) {
	position, ok := m.positions[id]
	return position, ok
}

func (m *Memory) PutLPPosition(position model.LPPosition) {
	m.positions[position.ID] = position
	m.dirty.positions[position.ID] = struct{}{}
}

func (m *Memory) DailyPoolStat(id string) (model.DailyPoolStat, bool) {
	day, ok := m.dailies[id]
	return day, ok
}

func (m *Memory) PutDailyPoolStat(day model.DailyPoolStat) {
	m.dailies[day.ID] = day
	m.dirty.dailies[day.ID] = struct{}{}
}

// Batch is the set of entities changed since the last Drain.
type Batch struct {
	Coins          []model.Coin
	PoolStats      []model.PoolStat
	SwapEvents     []model.SwapEvent
	RoyaltyFlows   []model.RoyaltyFlow
	LPPositions    []model.LPPosition
	DailyPoolStats []model.DailyPoolStat
}

// Len returns the number of entities in the batch.
func (b Batch) Len() int {
	return len(b.Coins) + len(b.PoolStats) + len(b.SwapEvents) +
		len(b.RoyaltyFlows) + len(b.LPPositions) + len(b.DailyPoolStats)
}

// Drain returns all dirty entities and resets the dirty tracking.
// Entity state itself is retained, so accumulators keep their values
// across flushes.
func (m *Memory) Drain() Batch {
	var batch Batch
	for id := range m.dirty.coins {
		batch.Coins = append(batch.Coins, m.coins[id])
	}
	for id := range m.dirty.poolStats {
		batch.PoolStats = append(batch.PoolStats, m.poolStats[id])
	}
	for id := range m.dirty.swaps {
		batch.SwapEvents = append(batch.SwapEvents, m.swaps[id])
	}
	for id := range m.dirty.royalties {
		batch.RoyaltyFlows = append(batch.RoyaltyFlows, m.royalties[id])
	}
	for id := range m.dirty.positions {
		batch.LPPositions = append(batch.LPPositions, m.positions[id])
	}
	for id := range m.dirty.dailies {
		batch.DailyPoolStats = append(batch.DailyPoolStats, m.dailies[id])
	}
	m.dirty = newDirtySet()
	return batch
}
