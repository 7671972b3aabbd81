package model

import (
	"fmt"
	"strings"
)

// Composite ids join their components with "-". Components are
// lowercase hex addresses or hashes, so the separator cannot collide.

// EventID identifies one on-chain log occurrence: "{txHash}-{logIndex}".
func EventID(txHash string, logIndex uint32) string {
	return fmt.Sprintf("%s-%d", strings.ToLower(txHash), logIndex)
}

// PositionID identifies a liquidity position: "{poolAddress}-{owner}".
func PositionID(poolAddress, owner string) string {
	return strings.ToLower(poolAddress) + "-" + strings.ToLower(owner)
}

// DailyID identifies a per-day bucket: "{poolAddress}-{dayID}".
func DailyID(poolAddress string, dayID int64) string {
	return fmt.Sprintf("%s-%d", strings.ToLower(poolAddress), dayID)
}
