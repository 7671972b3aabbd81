package model

// Coin is a launched creator token. Created once at CoinCreated and
// immutable afterwards.
type Coin struct {
	ID             string `json:"id"` // lowercase coin address
	Symbol         string `json:"symbol"`
	Name           string `json:"name"`
	Creator        string `json:"creator"`
	CreatedAt      uint64 `json:"created_at"`
	CreatedAtBlock uint64 `json:"created_at_block"`
	PoolAddress    string `json:"pool_address"`
	PoolStatID     string `json:"pool_stat_id"`
}
