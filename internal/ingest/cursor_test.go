package ingest

import (
	"context"
	"path/filepath"
	"testing"
)

func TestCursorCovers(t *testing.T) {
	c := Cursor{Block: 100, LogIndex: 5}

	cases := []struct {
		name     string
		block    uint64
		logIndex uint64
		want     bool
	}{
		{"earlier block", 99, 200, true},
		{"same block earlier index", 100, 4, true},
		{"same position", 100, 5, true},
		{"same block later index", 100, 6, false},
		{"later block", 101, 0, false},
	}
	for _, tc := range cases {
		if got := c.Covers(tc.block, tc.logIndex); got != tc.want {
			t.Errorf("%s: Covers(%d, %d) = %v, want %v", tc.name, tc.block, tc.logIndex, got, tc.want)
		}
	}
}

func TestFileCursorStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := &FileCursorStore{Path: filepath.Join(t.TempDir(), "state", "cursor.json")}

	if _, ok, err := s.Load(ctx); err != nil || ok {
		t.Fatalf("fresh load: ok=%v err=%v, want absent", ok, err)
	}

	want := Cursor{Block: 12345, LogIndex: 42}
	if err := s.Save(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, ok, err := s.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("load after save: ok=%v err=%v", ok, err)
	}
	if got != want {
		t.Fatalf("cursor = %+v, want %+v", got, want)
	}

	// Overwrite advances the mark.
	want = Cursor{Block: 12350, LogIndex: 0}
	if err := s.Save(ctx, want); err != nil {
		t.Fatalf("second save: %v", err)
	}
	got, _, _ = s.Load(ctx)
	if got != want {
		t.Fatalf("cursor after overwrite = %+v, want %+v", got, want)
	}
}
