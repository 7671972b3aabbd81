package engine

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"poolstats/internal/event"
	"poolstats/internal/model"
	"poolstats/internal/store"
)

const (
	coinAddr = "0xC1c1C1c1C1c1c1C1C1C1c1C1C1C1c1c1C1C1c1C1"
	poolAddr = "0xP0"
	poolID   = "0xp0"
)

func newTestEngine() (*Engine, *store.Memory) {
	mem := store.NewMemory()
	return New(mem, zap.NewNop()), mem
}

func coinCreated(ts, block uint64) event.CoinCreated {
	return event.CoinCreated{
		CoinAddress:    coinAddr,
		Symbol:         "ABC",
		Name:           "Alpha Beta Coin",
		Creator:        "0xDD00000000000000000000000000000000000000",
		PoolAddress:    poolAddr,
		BlockTimestamp: ts,
		BlockNumber:    block,
	}
}

func swap(txHash string, logIndex uint32, amount0, amount1 string, ts, block uint64) event.Swap {
	return event.Swap{
		PoolAddress:    poolAddr,
		Sender:         "0xAA00000000000000000000000000000000000000",
		Recipient:      "0xBB00000000000000000000000000000000000000",
		Amount0:        mustBig(amount0),
		Amount1:        mustBig(amount1),
		SqrtPriceX96:   big.NewInt(79228162514264337),
		Liquidity:      big.NewInt(5000),
		Tick:           12,
		TxHash:         txHash,
		LogIndex:       logIndex,
		BlockTimestamp: ts,
		BlockNumber:    block,
	}
}

func mustBig(value string) *big.Int {
	parsed, ok := new(big.Int).SetString(value, 10)
	if !ok {
		panic("bad big int fixture: " + value)
	}
	return parsed
}

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func TestCoinCreatedCreatesCoinAndPoolStat(t *testing.T) {
	e, mem := newTestEngine()
	e.Apply(coinCreated(1000, 42))

	coin, ok := mem.Coin("0xc1c1c1c1c1c1c1c1c1c1c1c1c1c1c1c1c1c1c1c1")
	if !ok {
		t.Fatalf("coin not created")
	}
	if coin.Symbol != "ABC" || coin.PoolStatID != poolID {
		t.Fatalf("coin fields mismatch: %+v", coin)
	}
	if coin.CreatedAt != 1000 || coin.CreatedAtBlock != 42 {
		t.Fatalf("coin block fields mismatch: %+v", coin)
	}

	stat, ok := mem.PoolStat(poolID)
	if !ok {
		t.Fatalf("pool stat not created")
	}
	if !stat.TotalVolumeUSD.IsZero() || !stat.TotalRoyalties.IsZero() || !stat.Depth.IsZero() {
		t.Fatalf("accumulators must start at zero: %+v", stat)
	}
	if stat.CoinID != coin.ID {
		t.Fatalf("pool stat not linked to coin")
	}
	if stat.LastUpdated != 1000 || stat.LastUpdatedBlock != 42 {
		t.Fatalf("pool stat block fields mismatch: %+v", stat)
	}
}

// A second CoinCreated at the same address overwrites the pair and
// resets all accumulators. This is current behavior, not a defect.
func TestDuplicateCoinCreatedResetsAccumulators(t *testing.T) {
	e, mem := newTestEngine()
	e.Apply(coinCreated(1000, 42))
	e.Apply(swap("0xAA", 0, "-2000000000000000000", "1000000000000000000", 1000, 43))

	stat, _ := mem.PoolStat(poolID)
	if !stat.TotalVolumeUSD.Equal(dec("3")) {
		t.Fatalf("precondition failed: volume %s", stat.TotalVolumeUSD)
	}

	e.Apply(coinCreated(2000, 50))

	stat, _ = mem.PoolStat(poolID)
	if !stat.TotalVolumeUSD.IsZero() {
		t.Fatalf("duplicate CoinCreated must reset accumulators, got %s", stat.TotalVolumeUSD)
	}
	if stat.LastUpdated != 2000 || stat.LastUpdatedBlock != 50 {
		t.Fatalf("duplicate CoinCreated must take new block fields: %+v", stat)
	}
}

func TestSwapAccumulatesVolume(t *testing.T) {
	e, mem := newTestEngine()
	e.Apply(coinCreated(1000, 42))

	amounts := []struct{ a0, a1, want string }{
		{"-2000000000000000000", "1000000000000000000", "3"},
		{"500000000000000000", "-250000000000000000", "3.75"},
		{"-1", "1", "3.750000000000000002"},
	}
	for i, step := range amounts {
		e.Apply(swap("0xAA", uint32(i), step.a0, step.a1, 1000, 43))
		stat, _ := mem.PoolStat(poolID)
		if !stat.TotalVolumeUSD.Equal(dec(step.want)) {
			t.Fatalf("step %d: totalVolumeUSD %s, want %s", i, stat.TotalVolumeUSD, step.want)
		}
		if !stat.Volume24h.Equal(dec(step.want)) {
			t.Fatalf("step %d: volume24h %s, want %s", i, stat.Volume24h, step.want)
		}
	}
}

func TestSwapForUnknownPoolIsIgnored(t *testing.T) {
	e, mem := newTestEngine()
	e.Apply(swap("0xAA", 0, "-2000000000000000000", "1000000000000000000", 1000, 43))

	if _, ok := mem.SwapEvent(model.EventID("0xAA", 0)); ok {
		t.Fatalf("swap for unregistered pool must not create an entity")
	}
	if _, ok := mem.PoolStat(poolID); ok {
		t.Fatalf("swap must not create a pool stat")
	}
}

func TestSwapEventKeyCollapsesDuplicates(t *testing.T) {
	e, mem := newTestEngine()
	e.Apply(coinCreated(1000, 42))

	e.Apply(swap("0xAA", 0, "-1000000000000000000", "0", 1000, 43))
	e.Apply(swap("0xAA", 0, "-2000000000000000000", "0", 1001, 44))
	e.Apply(swap("0xAA", 1, "-3000000000000000000", "0", 1002, 45))
	e.Apply(swap("0xBB", 0, "-4000000000000000000", "0", 1003, 46))

	// Same (txHash, logIndex): last write wins, one entity.
	first, ok := mem.SwapEvent(model.EventID("0xAA", 0))
	if !ok {
		t.Fatalf("swap entity missing")
	}
	if !first.Amount0.Equal(dec("-2")) {
		t.Fatalf("last write should win: %s", first.Amount0)
	}

	if _, ok := mem.SwapEvent(model.EventID("0xAA", 1)); !ok {
		t.Fatalf("distinct log index must create a distinct entity")
	}
	if _, ok := mem.SwapEvent(model.EventID("0xBB", 0)); !ok {
		t.Fatalf("distinct tx hash must create a distinct entity")
	}

	// Accumulators are not idempotent under re-delivery: all four
	// applications count.
	stat, _ := mem.PoolStat(poolID)
	if !stat.TotalVolumeUSD.Equal(dec("10")) {
		t.Fatalf("totalVolumeUSD %s, want 10", stat.TotalVolumeUSD)
	}
}

func TestDailyBucketPartition(t *testing.T) {
	e, mem := newTestEngine()
	e.Apply(coinCreated(1000, 42))

	// Same day: both land in bucket 0.
	e.Apply(swap("0xAA", 0, "-1000000000000000000", "0", 1000, 43))
	e.Apply(swap("0xAA", 1, "-1000000000000000000", "0", 86399, 44))
	// Next day: bucket 1.
	e.Apply(swap("0xAA", 2, "-1000000000000000000", "0", 86400, 45))

	day0, ok := mem.DailyPoolStat(model.DailyID(poolID, 0))
	if !ok {
		t.Fatalf("day 0 bucket missing")
	}
	if day0.SwapCount != 2 || !day0.VolumeUSD.Equal(dec("2")) {
		t.Fatalf("day 0 mismatch: %+v", day0)
	}

	day1, ok := mem.DailyPoolStat(model.DailyID(poolID, 1))
	if !ok {
		t.Fatalf("day 1 bucket missing")
	}
	if day1.SwapCount != 1 || !day1.VolumeUSD.Equal(dec("1")) {
		t.Fatalf("day 1 mismatch: %+v", day1)
	}
	if day1.Date != 1 {
		t.Fatalf("day 1 date mismatch: %d", day1.Date)
	}
	if day0.UniqueUsers != 0 || !day0.RoyaltiesUSD.IsZero() {
		t.Fatalf("swap path must not touch uniqueUsers/royaltiesUSD: %+v", day0)
	}
}

func TestRoyaltyPaid(t *testing.T) {
	e, mem := newTestEngine()
	e.Apply(coinCreated(1000, 42))

	e.Apply(event.RoyaltyPaid{
		PoolAddress:    poolAddr,
		Payer:          "0xEE00000000000000000000000000000000000000",
		Amount:         mustBig("1500000000000000000"),
		TxHash:         "0xCC",
		LogIndex:       3,
		BlockTimestamp: 2000,
		BlockNumber:    44,
	})

	stat, _ := mem.PoolStat(poolID)
	if !stat.TotalRoyalties.Equal(dec("1.5")) {
		t.Fatalf("totalRoyalties %s, want 1.5", stat.TotalRoyalties)
	}
	if stat.LastUpdated != 2000 {
		t.Fatalf("lastUpdated not advanced: %d", stat.LastUpdated)
	}

	flow, ok := mem.RoyaltyFlow(model.EventID("0xCC", 3))
	if !ok {
		t.Fatalf("royalty flow missing")
	}
	if flow.PoolID != poolID || flow.CoinID != stat.CoinID {
		t.Fatalf("royalty flow references mismatch: %+v", flow)
	}
	if !flow.Amount.Equal(dec("1.5")) {
		t.Fatalf("royalty flow amount %s", flow.Amount)
	}
}

func TestRoyaltyForUnknownPoolIsIgnored(t *testing.T) {
	e, mem := newTestEngine()
	e.Apply(event.RoyaltyPaid{
		PoolAddress: poolAddr,
		Amount:      mustBig("1000000000000000000"),
		TxHash:      "0xCC",
	})
	if _, ok := mem.RoyaltyFlow(model.EventID("0xCC", 0)); ok {
		t.Fatalf("royalty for unregistered pool must not create an entity")
	}
}

func TestModifyLiquidityFirstTouchAndAccumulation(t *testing.T) {
	e, mem := newTestEngine()
	e.Apply(coinCreated(1000, 42))

	provider := "0xFF00000000000000000000000000000000000000"
	e.Apply(event.ModifyLiquidity{
		PoolAddress:    poolAddr,
		Sender:         provider,
		LiquidityDelta: mustBig("4000000000000000000"),
		BlockTimestamp: 1100,
		BlockNumber:    43,
	})

	positionID := model.PositionID(poolID, provider)
	position, ok := mem.LPPosition(positionID)
	if !ok {
		t.Fatalf("position not created on first touch")
	}
	if !position.Liquidity.Equal(dec("4")) {
		t.Fatalf("first delta must land directly: %s", position.Liquidity)
	}
	if position.CreatedAt != 1100 || position.LastModified != 1100 {
		t.Fatalf("position timestamps mismatch: %+v", position)
	}

	e.Apply(event.ModifyLiquidity{
		PoolAddress:    poolAddr,
		Sender:         provider,
		LiquidityDelta: mustBig("-1500000000000000000"),
		BlockTimestamp: 1200,
		BlockNumber:    44,
	})

	position, _ = mem.LPPosition(positionID)
	if !position.Liquidity.Equal(dec("2.5")) {
		t.Fatalf("deltas must accumulate: %s", position.Liquidity)
	}
	if position.CreatedAt != 1100 {
		t.Fatalf("createdAt must not change on update: %d", position.CreatedAt)
	}
	if position.LastModified != 1200 {
		t.Fatalf("lastModified must advance: %d", position.LastModified)
	}

	stat, _ := mem.PoolStat(poolID)
	if !stat.Depth.Equal(dec("2.5")) {
		t.Fatalf("depth must track the summed deltas: %s", stat.Depth)
	}
}

// Withdrawing more than was ever deposited is stored as computed; no
// floor is applied to the position or the pool depth.
func TestModifyLiquidityMayGoNegative(t *testing.T) {
	e, mem := newTestEngine()
	e.Apply(coinCreated(1000, 42))

	provider := "0xFF00000000000000000000000000000000000000"
	e.Apply(event.ModifyLiquidity{
		PoolAddress:    poolAddr,
		Sender:         provider,
		LiquidityDelta: mustBig("-3000000000000000000"),
		BlockTimestamp: 1100,
	})

	position, _ := mem.LPPosition(model.PositionID(poolID, provider))
	if !position.Liquidity.Equal(dec("-3")) {
		t.Fatalf("negative liquidity must be stored: %s", position.Liquidity)
	}
	stat, _ := mem.PoolStat(poolID)
	if !stat.Depth.Equal(dec("-3")) {
		t.Fatalf("negative depth must be stored: %s", stat.Depth)
	}
}

type futureEvent struct{}

func (futureEvent) Kind() event.Kind { return "FeeTierChanged" }

func TestUnrecognizedEventKindIsIgnored(t *testing.T) {
	e, mem := newTestEngine()
	e.Apply(coinCreated(1000, 42))
	e.Apply(futureEvent{})

	stat, ok := mem.PoolStat(poolID)
	if !ok || !stat.TotalVolumeUSD.IsZero() {
		t.Fatalf("unknown kinds must not change state")
	}
}

func TestEndToEndScenario(t *testing.T) {
	e, mem := newTestEngine()

	e.Apply(coinCreated(1000, 42))
	stat, ok := mem.PoolStat(poolID)
	if !ok || !stat.TotalVolumeUSD.IsZero() {
		t.Fatalf("pool stat must exist with zero volume after CoinCreated")
	}

	e.Apply(swap("0xAA", 0, "-2000000000000000000", "1000000000000000000", 1000, 43))

	stat, _ = mem.PoolStat(poolID)
	if !stat.TotalVolumeUSD.Equal(dec("3")) {
		t.Fatalf("totalVolumeUSD %s, want 3", stat.TotalVolumeUSD)
	}
	day0, _ := mem.DailyPoolStat(model.DailyID(poolID, 0))
	if !day0.VolumeUSD.Equal(dec("3")) || day0.SwapCount != 1 {
		t.Fatalf("day 0 mismatch: %+v", day0)
	}

	// Next calendar day (t=90000 → dayID 1): totals keep growing, a
	// fresh bucket opens, day 0 stays frozen.
	e.Apply(swap("0xAB", 0, "-2000000000000000000", "1000000000000000000", 90000, 44))

	stat, _ = mem.PoolStat(poolID)
	if !stat.TotalVolumeUSD.Equal(dec("6")) {
		t.Fatalf("totalVolumeUSD %s, want 6", stat.TotalVolumeUSD)
	}
	day1, ok := mem.DailyPoolStat(model.DailyID(poolID, 1))
	if !ok || !day1.VolumeUSD.Equal(dec("3")) || day1.SwapCount != 1 {
		t.Fatalf("day 1 mismatch: %+v", day1)
	}
	day0, _ = mem.DailyPoolStat(model.DailyID(poolID, 0))
	if !day0.VolumeUSD.Equal(dec("3")) || day0.SwapCount != 1 {
		t.Fatalf("day 0 must remain unchanged: %+v", day0)
	}
}
