package launch

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"poolstats/internal/event"
	"poolstats/internal/model"
)

func buildTestLog(emitter common.Address, topic0 common.Hash, data []byte, indexed []common.Hash) model.LogRecord {
	topics := []string{topic0.Hex()}
	for _, topic := range indexed {
		topics = append(topics, topic.Hex())
	}
	return model.LogRecord{
		ChainID:     8453,
		BlockNumber: 1200,
		BlockHash:   "0xb10c",
		TxHash:      "0xABCDEF",
		LogIndex:    7,
		Address:     emitter.Hex(),
		Topics:      topics,
		Data:        hexutil.Encode(data),
		Timestamp:   1700000000,
	}
}

func topicFromAddress(address common.Address) common.Hash {
	return common.BytesToHash(address.Bytes())
}

func TestDecodeCoinCreated(t *testing.T) {
	parsed, err := LaunchABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}
	decoder, err := NewDecoder()
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}

	factory := common.HexToAddress("0x1111111111111111111111111111111111111111")
	coin := common.HexToAddress("0xC1C1C1c1c1c1C1c1C1C1C1C1C1c1C1C1c1c1C1C1")
	creator := common.HexToAddress("0x2222222222222222222222222222222222222222")
	pool := common.HexToAddress("0x3333333333333333333333333333333333333333")

	data, err := parsed.Events["CoinCreated"].Inputs.NonIndexed().Pack("ABC", "Alpha Beta Coin", pool)
	if err != nil {
		t.Fatalf("pack: %v", err)
	}

	log := buildTestLog(factory, parsed.Events["CoinCreated"].ID, data, []common.Hash{
		topicFromAddress(coin),
		topicFromAddress(creator),
	})

	decoded, err := decoder.Decode(log)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	created, ok := decoded.(event.CoinCreated)
	if !ok {
		t.Fatalf("decoded type mismatch: %T", decoded)
	}
	if created.CoinAddress != "0xc1c1c1c1c1c1c1c1c1c1c1c1c1c1c1c1c1c1c1c1" {
		t.Fatalf("coin address not lowercased: %s", created.CoinAddress)
	}
	if created.Symbol != "ABC" || created.Name != "Alpha Beta Coin" {
		t.Fatalf("metadata mismatch: %+v", created)
	}
	if created.PoolAddress != "0x3333333333333333333333333333333333333333" {
		t.Fatalf("pool address mismatch: %s", created.PoolAddress)
	}
	if created.BlockTimestamp != 1700000000 || created.BlockNumber != 1200 {
		t.Fatalf("block fields mismatch: %+v", created)
	}
}

func TestDecodeSwap(t *testing.T) {
	parsed, err := LaunchABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}
	decoder, err := NewDecoder()
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}

	pool := common.HexToAddress("0x4444444444444444444444444444444444444444")
	sender := common.HexToAddress("0x5555555555555555555555555555555555555555")
	recipient := common.HexToAddress("0x6666666666666666666666666666666666666666")

	data, err := parsed.Events["Swap"].Inputs.NonIndexed().Pack(
		big.NewInt(-1000),
		big.NewInt(2000),
		big.NewInt(123456789),
		big.NewInt(987654321),
		big.NewInt(-15),
	)
	if err != nil {
		t.Fatalf("pack: %v", err)
	}

	log := buildTestLog(pool, parsed.Events["Swap"].ID, data, []common.Hash{
		topicFromAddress(sender),
		topicFromAddress(recipient),
	})

	decoded, err := decoder.Decode(log)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	swap, ok := decoded.(event.Swap)
	if !ok {
		t.Fatalf("decoded type mismatch: %T", decoded)
	}
	if swap.Amount0.String() != "-1000" || swap.Amount1.String() != "2000" {
		t.Fatalf("amounts mismatch: %+v", swap)
	}
	if swap.Tick != -15 {
		t.Fatalf("tick mismatch: %d", swap.Tick)
	}
	if swap.PoolAddress != "0x4444444444444444444444444444444444444444" {
		t.Fatalf("pool address mismatch: %s", swap.PoolAddress)
	}
	if swap.TxHash != "0xabcdef" || swap.LogIndex != 7 {
		t.Fatalf("event key fields mismatch: %+v", swap)
	}
}

func TestDecodeRoyaltyPaidAndModifyLiquidity(t *testing.T) {
	parsed, err := LaunchABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}
	decoder, err := NewDecoder()
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}

	pool := common.HexToAddress("0x4444444444444444444444444444444444444444")
	payer := common.HexToAddress("0x7777777777777777777777777777777777777777")

	royaltyData, err := parsed.Events["RoyaltyPaid"].Inputs.NonIndexed().Pack(big.NewInt(1500))
	if err != nil {
		t.Fatalf("pack royalty: %v", err)
	}
	royaltyLog := buildTestLog(pool, parsed.Events["RoyaltyPaid"].ID, royaltyData, []common.Hash{
		topicFromAddress(payer),
	})

	decoded, err := decoder.Decode(royaltyLog)
	if err != nil {
		t.Fatalf("decode royalty: %v", err)
	}
	royalty, ok := decoded.(event.RoyaltyPaid)
	if !ok {
		t.Fatalf("decoded type mismatch: %T", decoded)
	}
	if royalty.Amount.String() != "1500" {
		t.Fatalf("royalty amount mismatch: %s", royalty.Amount)
	}
	if royalty.Payer != "0x7777777777777777777777777777777777777777" {
		t.Fatalf("payer mismatch: %s", royalty.Payer)
	}

	deltaData, err := parsed.Events["ModifyLiquidity"].Inputs.NonIndexed().Pack(big.NewInt(-9000))
	if err != nil {
		t.Fatalf("pack delta: %v", err)
	}
	deltaLog := buildTestLog(pool, parsed.Events["ModifyLiquidity"].ID, deltaData, []common.Hash{
		topicFromAddress(payer),
	})

	decoded, err = decoder.Decode(deltaLog)
	if err != nil {
		t.Fatalf("decode delta: %v", err)
	}
	modify, ok := decoded.(event.ModifyLiquidity)
	if !ok {
		t.Fatalf("decoded type mismatch: %T", decoded)
	}
	if modify.LiquidityDelta.String() != "-9000" {
		t.Fatalf("delta mismatch: %s", modify.LiquidityDelta)
	}
}

func TestDecodeRejectsOversizedLogIndex(t *testing.T) {
	parsed, err := LaunchABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}
	decoder, err := NewDecoder()
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}

	pool := common.HexToAddress("0x4444444444444444444444444444444444444444")
	sender := common.HexToAddress("0x5555555555555555555555555555555555555555")

	data, err := parsed.Events["Swap"].Inputs.NonIndexed().Pack(
		big.NewInt(-1000),
		big.NewInt(2000),
		big.NewInt(1),
		big.NewInt(1),
		big.NewInt(0),
	)
	if err != nil {
		t.Fatalf("pack: %v", err)
	}

	log := buildTestLog(pool, parsed.Events["Swap"].ID, data, []common.Hash{
		topicFromAddress(sender),
		topicFromAddress(sender),
	})
	log.LogIndex = 1 << 32

	if _, err := decoder.Decode(log); err == nil {
		t.Fatalf("expected error for log index above uint32 range")
	}
}

func TestCanDecodeUnknownTopic(t *testing.T) {
	decoder, err := NewDecoder()
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}
	if decoder.CanDecode("0x00000000000000000000000000000000000000000000000000000000deadbeef") {
		t.Fatalf("unknown topic0 must not be decodable")
	}
	if decoder.CanDecode("") {
		t.Fatalf("empty topic0 must not be decodable")
	}
	if len(decoder.Topic0Hashes()) != 4 {
		t.Fatalf("expected four known topics")
	}
}
