// Package audit records admin actions to a local append-only trail.
//
// The trail is a JSONL file next to the config (default
// ~/.lantern/audit.jsonl), one entry per line. A file lock serializes
// appends across processes so a serve instance and a CLI invocation cannot
// interleave partial lines. Reads tolerate corrupt lines: one bad line must
// not take down the whole admin page.
package audit

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
)

// Actions recorded by the admin surface.
const (
	ActionReindexRequested = "reindex_requested"
	ActionToolEnabled      = "tool_enabled"
	ActionToolDisabled     = "tool_disabled"
	ActionToastsCleared    = "toasts_cleared"
)

// ErrClosed indicates the log has been closed.
var ErrClosed = errors.New("audit log closed")

// Entry is a single audit record.
type Entry struct {
	ID     string    `json:"id"`
	Actor  string    `json:"actor"`
	Action string    `json:"action"`
	Target string    `json:"target,omitempty"`
	Detail string    `json:"detail,omitempty"`
	At     time.Time `json:"at"`
}

// Log is an append-only audit trail backed by a JSONL file.
// It is safe for concurrent use within a process; the file lock extends
// that safety across processes.
type Log struct {
	path   string
	lock   *flock.Flock
	logger *slog.Logger

	mu     sync.Mutex
	closed bool
}

// Open prepares the audit trail at path, creating the parent directory if
// needed. The file itself is created lazily on first append.
func Open(path string, logger *slog.Logger) (*Log, error) {
	if path == "" {
		return nil, errors.New("audit path is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("creating audit directory: %w", err)
	}

	return &Log{
		path:   path,
		lock:   flock.New(path + ".lock"),
		logger: logger,
	}, nil
}

// Append writes the entry as one JSONL line. A zero At is stamped with the
// current time; an empty ID gets a fresh uuid. The write is fsynced before
// the lock is released.
func (l *Log) Append(entry Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrClosed
	}

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.At.IsZero() {
		entry.At = time.Now().UTC()
	}

	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding audit entry: %w", err)
	}

	if err := l.lock.Lock(); err != nil {
		return fmt.Errorf("locking audit log: %w", err)
	}
	defer func() {
		if unlockErr := l.lock.Unlock(); unlockErr != nil {
			l.logger.Warn("failed to unlock audit log", "error", unlockErr)
		}
	}()

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		return fmt.Errorf("opening audit log: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			l.logger.Warn("failed to close audit log", "error", closeErr)
		}
	}()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("writing audit entry: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("syncing audit log: %w", err)
	}

	l.logger.Debug("audit entry recorded",
		"action", entry.Action,
		"target", entry.Target,
	)
	return nil
}

// Recent returns up to n entries, newest first. Corrupt lines are skipped
// with a warning. A missing file yields an empty result, not an error.
func (l *Log) Recent(n int) ([]Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil, ErrClosed
	}
	if n <= 0 {
		return nil, nil
	}

	f, err := os.Open(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening audit log: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var entry Entry
		if err := json.Unmarshal(line, &entry); err != nil {
			l.logger.Warn("skipping corrupt audit line", "error", err)
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading audit log: %w", err)
	}

	// Newest first, capped at n.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries, nil
}

// Close marks the log closed. Further appends and reads fail with
// ErrClosed.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	return nil
}
