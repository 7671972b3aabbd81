package model

import "github.com/shopspring/decimal"

// PoolStat holds the running aggregates for one launch pool.
//
// Volume24h accumulates forever; no time-window eviction is applied.
// Downstream consumers read the cumulative value as stored.
type PoolStat struct {
	ID               string          `json:"id"` // lowercase pool address
	CoinID           string          `json:"coin_id"`
	Volume24h        decimal.Decimal `json:"volume_24h"`
	Depth            decimal.Decimal `json:"depth"`
	FeeAPR           decimal.Decimal `json:"fee_apr"`
	TotalVolumeUSD   decimal.Decimal `json:"total_volume_usd"`
	TotalRoyalties   decimal.Decimal `json:"total_royalties"`
	LastUpdated      uint64          `json:"last_updated"`
	LastUpdatedBlock uint64          `json:"last_updated_block"`
}
