package model

import "github.com/shopspring/decimal"

// RoyaltyFlow is one recorded royalty payout, keyed like SwapEvent.
type RoyaltyFlow struct {
	ID             string          `json:"id"`
	PoolID         string          `json:"pool_id"`
	CoinID         string          `json:"coin_id"`
	Payer          string          `json:"payer"`
	Amount         decimal.Decimal `json:"amount"`
	BlockTimestamp uint64          `json:"block_timestamp"`
	BlockNumber    uint64          `json:"block_number"`
	TxHash         string          `json:"tx_hash"`
}
