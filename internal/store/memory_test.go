package store

import (
	"testing"

	"github.com/shopspring/decimal"

	"poolstats/internal/model"
)

func TestMemoryGetReturnsCopy(t *testing.T) {
	m := NewMemory()
	m.PutPoolStat(model.PoolStat{ID: "0xp1", TotalVolumeUSD: decimal.RequireFromString("3")})

	stat, ok := m.PoolStat("0xp1")
	if !ok {
		t.Fatalf("pool stat missing")
	}
	stat.TotalVolumeUSD = decimal.RequireFromString("999")

	stored, _ := m.PoolStat("0xp1")
	if !stored.TotalVolumeUSD.Equal(decimal.RequireFromString("3")) {
		t.Fatalf("mutating a returned entity leaked into the store: %s", stored.TotalVolumeUSD)
	}
}

func TestMemoryMissingKey(t *testing.T) {
	m := NewMemory()
	if _, ok := m.Coin("0xnope"); ok {
		t.Fatalf("expected miss for unknown id")
	}
}

func TestMemoryDrainReturnsOnlyDirty(t *testing.T) {
	m := NewMemory()
	m.PutCoin(model.Coin{ID: "0xc1"})
	m.PutPoolStat(model.PoolStat{ID: "0xp1"})

	batch := m.Drain()
	if len(batch.Coins) != 1 || len(batch.PoolStats) != 1 || batch.Len() != 2 {
		t.Fatalf("unexpected first drain: %+v", batch)
	}

	// Nothing written since: drain is empty, state is retained.
	batch = m.Drain()
	if batch.Len() != 0 {
		t.Fatalf("second drain should be empty, got %d", batch.Len())
	}
	if _, ok := m.Coin("0xc1"); !ok {
		t.Fatalf("drain must not evict entity state")
	}
}

func TestMemoryDrainCoalescesRewrites(t *testing.T) {
	m := NewMemory()
	m.PutSwapEvent(model.SwapEvent{ID: "0xaa-0", Tick: 1})
	m.PutSwapEvent(model.SwapEvent{ID: "0xaa-0", Tick: 2})

	batch := m.Drain()
	if len(batch.SwapEvents) != 1 {
		t.Fatalf("rewrites of one id should drain once, got %d", len(batch.SwapEvents))
	}
	if batch.SwapEvents[0].Tick != 2 {
		t.Fatalf("drain should carry the last write, got tick %d", batch.SwapEvents[0].Tick)
	}
}
