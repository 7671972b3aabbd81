package storage

import (
	"path/filepath"
	"testing"

	"poolstats/internal/model"
)

func TestJsonlRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs.jsonl")
	sink := NewJsonlSink(path)

	records := []model.LogRecord{
		{BlockNumber: 100, TxHash: "0xaa", LogIndex: 0, Address: "0x1111", Topics: []string{"0xt0"}},
		{BlockNumber: 100, TxHash: "0xaa", LogIndex: 1, Address: "0x1111", Topics: []string{"0xt0"}},
		{BlockNumber: 101, TxHash: "0xbb", LogIndex: 0, Address: "0x2222", Topics: []string{"0xt1"}},
	}
	if err := sink.PutLogBatch(records[:2]); err != nil {
		t.Fatalf("first batch: %v", err)
	}
	if err := sink.PutLogBatch(records[2:]); err != nil {
		t.Fatalf("second batch: %v", err)
	}

	var got []model.LogRecord
	err := ScanLogs(path, func(record model.LogRecord) error {
		got = append(got, record)
		return nil
	})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}

	if len(got) != len(records) {
		t.Fatalf("record count %d, want %d", len(got), len(records))
	}
	for i := range records {
		if got[i].BlockNumber != records[i].BlockNumber || got[i].LogIndex != records[i].LogIndex {
			t.Fatalf("record %d out of order: %+v", i, got[i])
		}
	}
}

func TestScanLogsMissingFile(t *testing.T) {
	err := ScanLogs(filepath.Join(t.TempDir(), "absent.jsonl"), func(model.LogRecord) error {
		t.Fatalf("callback must not run")
		return nil
	})
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
}
