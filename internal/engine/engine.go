// Package engine applies ordered on-chain events to the entity store.
// Events must arrive in finalized order (ascending block number, then
// log index); every handler does read-modify-write on shared
// accumulators, so reordering changes the final state.
package engine

import (
	"math/big"
	"strings"

	"go.uber.org/zap"

	"poolstats/internal/event"
	"poolstats/internal/store"
)

// Engine routes each event to its handler. It holds no state of its
// own; all reads and writes go through the injected store.
type Engine struct {
	store  store.Store
	logger *zap.Logger
}

func New(entityStore store.Store, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{store: entityStore, logger: logger}
}

// Apply dispatches one event to exactly one handler based on its kind.
// Unrecognized kinds are ignored so future event types cannot halt the
// pipeline. Handlers never fail: an event either fully applies or is a
// no-op.
func (e *Engine) Apply(ev event.Event) {
	switch v := ev.(type) {
	case event.CoinCreated:
		e.applyCoinCreated(v)
	case event.Swap:
		e.applySwap(v)
	case event.RoyaltyPaid:
		e.applyRoyaltyPaid(v)
	case event.ModifyLiquidity:
		e.applyModifyLiquidity(v)
	default:
		e.logger.Debug("ignore unrecognized event", zap.String("kind", string(ev.Kind())))
	}
}

func lowerAddr(address string) string {
	return strings.ToLower(address)
}

func rawString(value *big.Int) string {
	if value == nil {
		return "0"
	}
	return value.String()
}
