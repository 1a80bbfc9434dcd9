// Package state persists the work queue snapshot and its action history
// as a single JSON document.
//
// The queue part is replaced wholesale on every rebuild. The history part
// only ever grows. A snapshot that cannot be parsed is discarded and
// treated as empty.
package state

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"

	"github.com/daviddao/notionqueue/internal/clock"
	"github.com/daviddao/notionqueue/internal/tickets"
	"github.com/daviddao/notionqueue/internal/types"
)

// DefaultPath is the snapshot location relative to the working directory.
const DefaultPath = ".queue/state.json"

// Config configures a Store.
type Config struct {
	// Path defaults to DefaultPath.
	Path string

	// Clock stamps last_synced. Defaults to clock.Real().
	Clock clock.Clock

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Store reads and writes the snapshot file. It takes no locks: two
// processes writing the same file race and the last writer wins.
type Store struct {
	path   string
	clock  clock.Clock
	logger *slog.Logger
}

// New creates a Store.
func New(config Config) *Store {
	path := config.Path
	if path == "" {
		path = DefaultPath
	}
	clk := config.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{path: path, clock: clk, logger: logger}
}

// Path returns the snapshot file path.
func (s *Store) Path() string {
	return s.path
}

// Load returns the persisted snapshot. A missing or unparsable file
// yields an empty snapshot.
func (s *Store) Load() (*types.SyncState, error) {
	state, _, err := s.read()
	return state, err
}

// RebuildAndPersist replaces the queue with the active queue selected
// from all, keeps the recovered history and stamps last_synced.
func (s *Store) RebuildAndPersist(all []types.Ticket, filter tickets.Filter) (*types.SyncState, error) {
	previous, _, err := s.read()
	if err != nil {
		return nil, err
	}

	state := &types.SyncState{
		LastSynced: types.Timestamp(s.clock.Now()),
		Queue:      tickets.ToQueueItems(tickets.ActiveQueue(all, filter)),
		History:    previous.History,
	}
	if err := s.write(state); err != nil {
		return nil, err
	}
	return state, nil
}

// AppendHistory appends entry to the persisted history. Without a
// snapshot file this does nothing; the next rebuild creates one.
func (s *Store) AppendHistory(entry types.HistoryEntry) error {
	state, exists, err := s.read()
	if err != nil {
		return err
	}
	if !exists {
		s.logger.Debug("no snapshot yet, history entry skipped", "ticket", entry.TicketID, "action", entry.Action)
		return nil
	}
	state.History = append(state.History, entry)
	return s.write(state)
}

// read loads the snapshot. exists reports whether a file was present,
// even if it had to be discarded.
func (s *Store) read() (state *types.SyncState, exists bool, err error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return empty(), false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read state %s: %w", s.path, err)
	}

	var loaded types.SyncState
	if err := json.Unmarshal(data, &loaded); err != nil {
		s.logger.Warn("discarding unreadable state file", "path", s.path, "error", err)
		return empty(), true, nil
	}
	if loaded.Queue == nil {
		loaded.Queue = []types.QueueItem{}
	}
	if loaded.History == nil {
		loaded.History = []types.HistoryEntry{}
	}
	return &loaded, true, nil
}

// write replaces the snapshot file atomically.
func (s *Store) write(state *types.SyncState) error {
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	data = append(data, '\n')
	if err := atomic.WriteFile(s.path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write state %s: %w", s.path, err)
	}
	// atomic.WriteFile leaves new files with the temp file's 0600 mode.
	if err := os.Chmod(s.path, 0o644); err != nil {
		return fmt.Errorf("chmod state %s: %w", s.path, err)
	}
	return nil
}

func empty() *types.SyncState {
	return &types.SyncState{
		Queue:   []types.QueueItem{},
		History: []types.HistoryEntry{},
	}
}
