// Package fixedpoint converts raw on-chain integer amounts into exact
// decimal values. Conversions never round: a raw amount divided by
// 10^d is representable exactly as a decimal with d fractional digits.
package fixedpoint

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// TokenDecimals is the scale used by launch coins and their pools.
const TokenDecimals uint8 = 18

// FromRaw converts a raw integer amount with the given decimal exponent
// into its decimal value. A nil amount converts to zero. The exponent
// is unsigned by type; there is no negative-exponent case.
func FromRaw(raw *big.Int, decimals uint8) decimal.Decimal {
	if raw == nil {
		return decimal.Zero
	}
	if decimals == 0 {
		return decimal.NewFromBigInt(new(big.Int).Set(raw), 0)
	}
	return decimal.NewFromBigInt(new(big.Int).Set(raw), -int32(decimals))
}

// FromRawString parses a base-10 raw amount and converts it. Empty
// input converts to zero, matching how absent log fields are treated.
func FromRawString(raw string, decimals uint8) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	parsed, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("invalid raw amount: %s", raw)
	}
	return FromRaw(parsed, decimals), nil
}
