// Package event defines the typed union of on-chain events consumed by
// the statistics engine. Adding a new kind means adding a struct here
// and a case to the engine dispatch, which the compiler then checks.
package event

import "math/big"

// Kind tags one event variant.
type Kind string

const (
	KindCoinCreated     Kind = "CoinCreated"
	KindSwap            Kind = "Swap"
	KindRoyaltyPaid     Kind = "RoyaltyPaid"
	KindModifyLiquidity Kind = "ModifyLiquidity"
)

// Event is one finalized on-chain occurrence. Implementations are the
// four structs below; the dispatcher ignores anything else.
type Event interface {
	Kind() Kind
}

// CoinCreated is emitted by the coin factory when a creator token and
// its paired launch pool are deployed.
type CoinCreated struct {
	CoinAddress    string
	Symbol         string
	Name           string
	Creator        string
	PoolAddress    string
	BlockTimestamp uint64
	BlockNumber    uint64
}

func (CoinCreated) Kind() Kind { return KindCoinCreated }

// Swap is emitted by a launch pool on every trade. Amounts are raw
// 18-decimal-scaled integers, signed from the pool's perspective.
type Swap struct {
	PoolAddress    string
	Sender         string
	Recipient      string
	Amount0        *big.Int
	Amount1        *big.Int
	SqrtPriceX96   *big.Int
	Liquidity      *big.Int
	Tick           int32
	TxHash         string
	LogIndex       uint32
	BlockTimestamp uint64
	BlockNumber    uint64
}

func (Swap) Kind() Kind { return KindSwap }

// RoyaltyPaid is emitted by a launch pool when creator royalties are
// paid out. Amount is a raw non-negative 18-decimal-scaled integer.
type RoyaltyPaid struct {
	PoolAddress    string
	Payer          string
	Amount         *big.Int
	TxHash         string
	LogIndex       uint32
	BlockTimestamp uint64
	BlockNumber    uint64
}

func (RoyaltyPaid) Kind() Kind { return KindRoyaltyPaid }

// ModifyLiquidity is emitted by a launch pool when a provider adds or
// removes liquidity. LiquidityDelta is a raw signed integer.
type ModifyLiquidity struct {
	PoolAddress    string
	Sender         string
	LiquidityDelta *big.Int
	BlockTimestamp uint64
	BlockNumber    uint64
}

func (ModifyLiquidity) Kind() Kind { return KindModifyLiquidity }
