package fixedpoint

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
)

func TestFromRaw(t *testing.T) {
	cases := []struct {
		name     string
		raw      string
		decimals uint8
		want     string
	}{
		{"one token", "1000000000000000000", 18, "1"},
		{"half token", "500000000000000000", 18, "0.5"},
		{"zero exponent", "123456789", 0, "123456789"},
		{"negative amount", "-2000000000000000000", 18, "-2"},
		{"sub-unit dust", "1", 18, "0.000000000000000001"},
		{"zero", "0", 18, "0"},
	}

	for _, tc := range cases {
		raw, ok := new(big.Int).SetString(tc.raw, 10)
		if !ok {
			t.Fatalf("%s: bad fixture %s", tc.name, tc.raw)
		}
		want, err := decimal.NewFromString(tc.want)
		if err != nil {
			t.Fatalf("%s: bad expectation %s", tc.name, tc.want)
		}
		got := FromRaw(raw, tc.decimals)
		if !got.Equal(want) {
			t.Fatalf("%s: got %s, want %s", tc.name, got, want)
		}
	}
}

func TestFromRawNil(t *testing.T) {
	if got := FromRaw(nil, 18); !got.IsZero() {
		t.Fatalf("nil amount should convert to zero, got %s", got)
	}
}

func TestFromRawDoesNotAliasInput(t *testing.T) {
	raw := big.NewInt(1000)
	got := FromRaw(raw, 2)
	raw.SetInt64(999999)
	want := decimal.RequireFromString("10")
	if !got.Equal(want) {
		t.Fatalf("conversion aliased its input: got %s, want %s", got, want)
	}
}

func TestFromRawString(t *testing.T) {
	got, err := FromRawString("2500000000000000000", 18)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(decimal.RequireFromString("2.5")) {
		t.Fatalf("got %s, want 2.5", got)
	}

	got, err = FromRawString("", 18)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.IsZero() {
		t.Fatalf("empty input should convert to zero, got %s", got)
	}

	if _, err := FromRawString("0xff", 18); err == nil {
		t.Fatalf("expected error for non-decimal input")
	}
}
