package model

import "github.com/shopspring/decimal"

// DailyPoolStat is a day-aligned bucket keyed by "{poolAddress}-{dayID}"
// where dayID = unix timestamp / 86400.
//
// RoyaltiesUSD and UniqueUsers are stored but never advanced by the
// swap path: royalty flows do not feed the daily bucket and unique-user
// tracking is not implemented.
type DailyPoolStat struct {
	ID           string          `json:"id"`
	PoolID       string          `json:"pool_id"`
	Date         int64           `json:"date"` // dayID
	VolumeUSD    decimal.Decimal `json:"volume_usd"`
	RoyaltiesUSD decimal.Decimal `json:"royalties_usd"`
	SwapCount    uint64          `json:"swap_count"`
	UniqueUsers  uint64          `json:"unique_users"`
}
