// Package launch decodes coin-factory and launch-pool logs into the
// typed events the statistics engine consumes.
package launch

import (
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"poolstats/internal/event"
	"poolstats/internal/model"
)

// Decoder maps topic0 hashes to event decoders.
type Decoder struct {
	launchABI   abi.ABI
	topicToName map[string]string
}

func NewDecoder() (*Decoder, error) {
	parsed, err := LaunchABI()
	if err != nil {
		return nil, err
	}

	topicToName := map[string]string{
		strings.ToLower(parsed.Events["CoinCreated"].ID.Hex()):     "CoinCreated",
		strings.ToLower(parsed.Events["Swap"].ID.Hex()):            "Swap",
		strings.ToLower(parsed.Events["RoyaltyPaid"].ID.Hex()):     "RoyaltyPaid",
		strings.ToLower(parsed.Events["ModifyLiquidity"].ID.Hex()): "ModifyLiquidity",
	}

	return &Decoder{launchABI: parsed, topicToName: topicToName}, nil
}

// CanDecode reports whether the topic0 belongs to a known event.
// Unknown topics are the caller's cue to skip the log.
func (d *Decoder) CanDecode(topic0 string) bool {
	if topic0 == "" {
		return false
	}
	_, ok := d.topicToName[strings.ToLower(topic0)]
	return ok
}

// Topic0Hashes returns the topic0 filter set for log queries.
func (d *Decoder) Topic0Hashes() []common.Hash {
	hashes := make([]common.Hash, 0, len(d.topicToName))
	for topic := range d.topicToName {
		hashes = append(hashes, common.HexToHash(topic))
	}
	return hashes
}

// Decode converts a raw log record into a typed event. The emitting
// address is lowercased so entity keys never vary by case.
func (d *Decoder) Decode(log model.LogRecord) (event.Event, error) {
	if len(log.Topics) == 0 {
		return nil, fmt.Errorf("missing topics")
	}
	name, ok := d.topicToName[strings.ToLower(log.Topics[0])]
	if !ok {
		return nil, fmt.Errorf("unsupported topic0: %s", log.Topics[0])
	}

	switch name {
	case "CoinCreated":
		return d.decodeCoinCreated(log)
	case "Swap":
		return d.decodeSwap(log)
	case "RoyaltyPaid":
		return d.decodeRoyaltyPaid(log)
	case "ModifyLiquidity":
		return d.decodeModifyLiquidity(log)
	default:
		return nil, fmt.Errorf("unsupported event name: %s", name)
	}
}

func (d *Decoder) decodeCoinCreated(log model.LogRecord) (event.Event, error) {
	ev := d.launchABI.Events["CoinCreated"]
	indexedTopics, err := parseIndexedTopics(ev, log.Topics)
	if err != nil {
		return nil, err
	}

	var indexed struct {
		Coin    common.Address
		Creator common.Address
	}
	if err := abi.ParseTopics(&indexed, indexedArguments(ev.Inputs), indexedTopics); err != nil {
		return nil, fmt.Errorf("parse topics: %w", err)
	}

	values, err := unpackNonIndexed(ev, log.Data)
	if err != nil {
		return nil, err
	}
	if len(values) != 3 {
		return nil, fmt.Errorf("unexpected CoinCreated values: %d", len(values))
	}

	symbol, err := asString(values[0])
	if err != nil {
		return nil, err
	}
	name, err := asString(values[1])
	if err != nil {
		return nil, err
	}
	pool, err := asAddress(values[2])
	if err != nil {
		return nil, err
	}

	return event.CoinCreated{
		CoinAddress:    lowerHex(indexed.Coin),
		Symbol:         symbol,
		Name:           name,
		Creator:        lowerHex(indexed.Creator),
		PoolAddress:    lowerHex(pool),
		BlockTimestamp: log.Timestamp,
		BlockNumber:    log.BlockNumber,
	}, nil
}

func (d *Decoder) decodeSwap(log model.LogRecord) (event.Event, error) {
	ev := d.launchABI.Events["Swap"]
	indexedTopics, err := parseIndexedTopics(ev, log.Topics)
	if err != nil {
		return nil, err
	}

	var indexed struct {
		Sender    common.Address
		Recipient common.Address
	}
	if err := abi.ParseTopics(&indexed, indexedArguments(ev.Inputs), indexedTopics); err != nil {
		return nil, fmt.Errorf("parse topics: %w", err)
	}

	values, err := unpackNonIndexed(ev, log.Data)
	if err != nil {
		return nil, err
	}
	if len(values) != 5 {
		return nil, fmt.Errorf("unexpected Swap values: %d", len(values))
	}

	amount0, err := asBigInt(values[0])
	if err != nil {
		return nil, err
	}
	amount1, err := asBigInt(values[1])
	if err != nil {
		return nil, err
	}
	sqrtPrice, err := asBigInt(values[2])
	if err != nil {
		return nil, err
	}
	liquidity, err := asBigInt(values[3])
	if err != nil {
		return nil, err
	}
	tickInt, err := asBigInt(values[4])
	if err != nil {
		return nil, err
	}
	tick, err := int24FromBig(tickInt)
	if err != nil {
		return nil, err
	}
	logIndex, err := logIndex32(log.LogIndex)
	if err != nil {
		return nil, err
	}

	return event.Swap{
		PoolAddress:    strings.ToLower(log.Address),
		Sender:         lowerHex(indexed.Sender),
		Recipient:      lowerHex(indexed.Recipient),
		Amount0:        amount0,
		Amount1:        amount1,
		SqrtPriceX96:   sqrtPrice,
		Liquidity:      liquidity,
		Tick:           tick,
		TxHash:         strings.ToLower(log.TxHash),
		LogIndex:       logIndex,
		BlockTimestamp: log.Timestamp,
		BlockNumber:    log.BlockNumber,
	}, nil
}

func (d *Decoder) decodeRoyaltyPaid(log model.LogRecord) (event.Event, error) {
	ev := d.launchABI.Events["RoyaltyPaid"]
	indexedTopics, err := parseIndexedTopics(ev, log.Topics)
	if err != nil {
		return nil, err
	}

	var indexed struct {
		Payer common.Address
	}
	if err := abi.ParseTopics(&indexed, indexedArguments(ev.Inputs), indexedTopics); err != nil {
		return nil, fmt.Errorf("parse topics: %w", err)
	}

	values, err := unpackNonIndexed(ev, log.Data)
	if err != nil {
		return nil, err
	}
	if len(values) != 1 {
		return nil, fmt.Errorf("unexpected RoyaltyPaid values: %d", len(values))
	}

	amount, err := asBigInt(values[0])
	if err != nil {
		return nil, err
	}
	logIndex, err := logIndex32(log.LogIndex)
	if err != nil {
		return nil, err
	}

	return event.RoyaltyPaid{
		PoolAddress:    strings.ToLower(log.Address),
		Payer:          lowerHex(indexed.Payer),
		Amount:         amount,
		TxHash:         strings.ToLower(log.TxHash),
		LogIndex:       logIndex,
		BlockTimestamp: log.Timestamp,
		BlockNumber:    log.BlockNumber,
	}, nil
}

func (d *Decoder) decodeModifyLiquidity(log model.LogRecord) (event.Event, error) {
	ev := d.launchABI.Events["ModifyLiquidity"]
	indexedTopics, err := parseIndexedTopics(ev, log.Topics)
	if err != nil {
		return nil, err
	}

	var indexed struct {
		Sender common.Address
	}
	if err := abi.ParseTopics(&indexed, indexedArguments(ev.Inputs), indexedTopics); err != nil {
		return nil, fmt.Errorf("parse topics: %w", err)
	}

	values, err := unpackNonIndexed(ev, log.Data)
	if err != nil {
		return nil, err
	}
	if len(values) != 1 {
		return nil, fmt.Errorf("unexpected ModifyLiquidity values: %d", len(values))
	}

	delta, err := asBigInt(values[0])
	if err != nil {
		return nil, err
	}

	return event.ModifyLiquidity{
		PoolAddress:    strings.ToLower(log.Address),
		Sender:         lowerHex(indexed.Sender),
		LiquidityDelta: delta,
		BlockTimestamp: log.Timestamp,
		BlockNumber:    log.BlockNumber,
	}, nil
}

func lowerHex(address common.Address) string {
	return strings.ToLower(address.Hex())
}

func asBigInt(value interface{}) (*big.Int, error) {
	parsed, ok := value.(*big.Int)
	if !ok {
		return nil, fmt.Errorf("expected big int, got %T", value)
	}
	return parsed, nil
}

func asAddress(value interface{}) (common.Address, error) {
	parsed, ok := value.(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("expected address, got %T", value)
	}
	return parsed, nil
}

func asString(value interface{}) (string, error) {
	parsed, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("expected string, got %T", value)
	}
	return parsed, nil
}

func logIndex32(index uint64) (uint32, error) {
	if index > math.MaxUint32 {
		return 0, fmt.Errorf("log index out of range: %d", index)
	}
	return uint32(index), nil
}

func int24FromBig(value *big.Int) (int32, error) {
	if value == nil {
		return 0, fmt.Errorf("nil tick")
	}
	if !value.IsInt64() {
		return 0, fmt.Errorf("tick out of range: %s", value)
	}
	tick := value.Int64()
	if tick < -(1<<23) || tick > (1<<23)-1 {
		return 0, fmt.Errorf("tick out of int24 range: %d", tick)
	}
	return int32(tick), nil
}
