// File: internal/store/logsink.go
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	json "github.com/json-iterator/go"
	"go.uber.org/zap"
)

// Record is the audit trail entry for one posting attempt. Both successes
// and failures are recorded; Diagnostic is empty on success.
type Record struct {
	Timestamp  time.Time `json:"timestamp"`
	AccountID  string    `json:"account_id"`
	Title      string    `json:"title"`
	Success    bool      `json:"success"`
	ArticleID  string    `json:"article_id,omitempty"`
	ArticleURL string    `json:"article_url,omitempty"`
	Diagnostic string    `json:"diagnostic,omitempty"`
}

// LogSink appends posting attempt records as individual JSON files. One file
// per attempt keeps appends atomic without any locking protocol; the
// timestamp prefix makes the directory listing chronological.
type LogSink struct {
	dir string
	log *zap.Logger
}

// NewLogSink creates a posting log sink rooted at the given directory.
func NewLogSink(dir string, logger *zap.Logger) *LogSink {
	return &LogSink{
		dir: dir,
		log: logger.Named("logsink"),
	}
}

// Append records one posting attempt. A zero timestamp is stamped with the
// current time.
func (l *LogSink) Append(rec Record) error {
	if rec.AccountID == "" {
		return fmt.Errorf("posting record requires an account id")
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode posting record: %w", err)
	}
	name := fmt.Sprintf("%s_%s.json", rec.Timestamp.Format("20060102T150405.000"), rec.AccountID)
	path := filepath.Join(l.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write posting record %q: %w", path, err)
	}
	l.log.Debug("Posting attempt recorded.",
		zap.String("account", rec.AccountID), zap.Bool("success", rec.Success))
	return nil
}

// List returns every recorded attempt in chronological order. Unreadable
// files are skipped with a warning; the history must stay listable even when
// a single entry is corrupt.
func (l *LogSink) List() ([]Record, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read log directory %q: %w", l.dir, err)
	}

	var records []Record
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(l.dir, entry.Name()))
		if err != nil {
			l.log.Warn("Skipping unreadable posting record.",
				zap.String("file", entry.Name()), zap.Error(err))
			continue
		}
		var rec Record
		if err := json.Unmarshal(data, &rec); err != nil {
			l.log.Warn("Skipping malformed posting record.",
				zap.String("file", entry.Name()), zap.Error(err))
			continue
		}
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Timestamp.Before(records[j].Timestamp) })
	return records, nil
}
