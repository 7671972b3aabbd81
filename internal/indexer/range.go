package indexer

import "fmt"

// Span is an inclusive block range handed to one eth_getLogs call.
type Span struct {
	From uint64
	To   uint64
}

// Blocks returns the number of blocks the span covers.
func (s Span) Blocks() uint64 {
	return s.To - s.From + 1
}

// SplitRange cuts [from, to] into spans of at most step blocks. The
// last span ends exactly at to.
func SplitRange(from, to, step uint64) ([]Span, error) {
	if step == 0 {
		return nil, fmt.Errorf("batch size must be greater than zero")
	}
	if to < from {
		return nil, fmt.Errorf("to block must be >= from block")
	}

	spans := make([]Span, 0, (to-from)/step+1)
	for cursor := from; ; cursor += step {
		end := cursor + step - 1
		if end > to || end < cursor {
			end = to
		}
		spans = append(spans, Span{From: cursor, To: end})
		if end == to {
			break
		}
	}
	return spans, nil
}
