package model

import "github.com/shopspring/decimal"

// LPPosition tracks one provider's liquidity in a pool, keyed by
// "{poolAddress}-{owner}". Created on first ModifyLiquidity with zero
// liquidity, then mutated by signed deltas. No lower bound is applied;
// liquidity can go negative if the upstream stream is inconsistent.
type LPPosition struct {
	ID                 string          `json:"id"`
	PoolID             string          `json:"pool_id"`
	Owner              string          `json:"owner"`
	Liquidity          decimal.Decimal `json:"liquidity"`
	UnclaimedRoyalties decimal.Decimal `json:"unclaimed_royalties"`
	CreatedAt          uint64          `json:"created_at"`
	LastModified       uint64          `json:"last_modified"`
}
