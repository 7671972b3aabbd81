package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"poolstats/internal/storage/postgres"
)

// Cursor is the high-water mark of processed logs: the position of the
// last log whose effects were flushed. Events at or below it must not
// be re-applied, because accumulator increments are not idempotent.
type Cursor struct {
	Block    uint64 `json:"block_number"`
	LogIndex uint64 `json:"log_index"`
}

// Covers reports whether a log at (block, logIndex) is at or below the
// cursor, i.e. already processed.
func (c Cursor) Covers(block, logIndex uint64) bool {
	if block != c.Block {
		return block < c.Block
	}
	return logIndex <= c.LogIndex
}

// CursorStore persists the processing high-water mark.
type CursorStore interface {
	Load(ctx context.Context) (Cursor, bool, error)
	Save(ctx context.Context, cursor Cursor) error
}

// FileCursorStore keeps the cursor in a local JSON file.
type FileCursorStore struct {
	Path string
}

type cursorRecord struct {
	Cursor
	UpdatedAt string `json:"updated_at"`
}

func (s *FileCursorStore) Load(ctx context.Context) (Cursor, bool, error) {
	if s == nil || s.Path == "" {
		return Cursor{}, false, nil
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return Cursor{}, false, nil
		}
		return Cursor{}, false, fmt.Errorf("read cursor: %w", err)
	}

	var rec cursorRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return Cursor{}, false, fmt.Errorf("parse cursor: %w", err)
	}
	return rec.Cursor, true, nil
}

func (s *FileCursorStore) Save(ctx context.Context, cursor Cursor) error {
	if s == nil || s.Path == "" {
		return nil
	}
	dir := filepath.Dir(s.Path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create cursor dir: %w", err)
		}
	}

	rec := cursorRecord{
		Cursor:    cursor,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal cursor: %w", err)
	}

	tmp := s.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write cursor tmp: %w", err)
	}
	if err := os.Rename(tmp, s.Path); err != nil {
		return fmt.Errorf("rename cursor: %w", err)
	}
	return nil
}

// DBCursorStore keeps the cursor in the ingest_cursor table.
type DBCursorStore struct {
	Store *postgres.Store
	Name  string
}

func (s *DBCursorStore) Load(ctx context.Context) (Cursor, bool, error) {
	if s == nil || s.Store == nil {
		return Cursor{}, false, nil
	}
	block, logIndex, ok, err := s.Store.LoadCursor(ctx, s.Name)
	if err != nil || !ok {
		return Cursor{}, false, err
	}
	return Cursor{Block: block, LogIndex: logIndex}, true, nil
}

func (s *DBCursorStore) Save(ctx context.Context, cursor Cursor) error {
	if s == nil || s.Store == nil {
		return nil
	}
	return s.Store.SaveCursor(ctx, s.Name, cursor.Block, cursor.LogIndex)
}
