package indexer

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ParseAddresses validates and converts flag-supplied hex addresses.
// Blank entries are dropped so trailing commas in flag values are
// harmless; anything else malformed fails the whole list.
func ParseAddresses(inputs []string) ([]common.Address, error) {
	var addresses []common.Address
	for _, raw := range inputs {
		trimmed := strings.TrimSpace(raw)
		switch {
		case trimmed == "":
		case common.IsHexAddress(trimmed):
			addresses = append(addresses, common.HexToAddress(trimmed))
		default:
			return nil, fmt.Errorf("invalid address: %s", trimmed)
		}
	}
	return addresses, nil
}
