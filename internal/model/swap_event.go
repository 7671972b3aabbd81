package model

import "github.com/shopspring/decimal"

// SwapEvent is one recorded pool swap, keyed by "{txHash}-{logIndex}"
// so duplicate delivery collapses to a single entity.
type SwapEvent struct {
	ID             string          `json:"id"`
	PoolID         string          `json:"pool_id"`
	Sender         string          `json:"sender"`
	Recipient      string          `json:"recipient"`
	Amount0        decimal.Decimal `json:"amount0"`
	Amount1        decimal.Decimal `json:"amount1"`
	SqrtPriceX96   string          `json:"sqrt_price_x96"`
	Liquidity      string          `json:"liquidity"`
	Tick           int32           `json:"tick"`
	BlockTimestamp uint64          `json:"block_timestamp"`
	BlockNumber    uint64          `json:"block_number"`
	TxHash         string          `json:"tx_hash"`
}
