// Package storage moves raw log records between the fetch and process
// stages as JSONL files.
package storage

import "poolstats/internal/model"

// LogSink is a destination for captured log records.
type LogSink interface {
	PutLogBatch(logs []model.LogRecord) error
}
