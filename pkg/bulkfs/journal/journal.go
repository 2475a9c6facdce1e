// Package journal records completed bulk operations so they can be reviewed
// later with "bulkfs history".
package journal

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/jamesainslie/bulkfs/pkg/bulkfs/engine"
	"github.com/jamesainslie/bulkfs/pkg/bulkfs/logging"
)

var logger = logging.Get("journal")

// ErrNotFound is returned by Get for an unknown entry ID.
var ErrNotFound = errors.New("journal entry not found")

// Params are the request parameters of a journaled operation.
type Params struct {
	FindText    string `json:"find_text,omitempty" yaml:"find_text,omitempty"`
	ReplaceText string `json:"replace_text,omitempty" yaml:"replace_text,omitempty"`
	Keyword     string `json:"keyword,omitempty" yaml:"keyword,omitempty"`
	Recursive   bool   `json:"recursive" yaml:"recursive"`
	Trash       bool   `json:"trash,omitempty" yaml:"trash,omitempty"`
}

// RenameParams extracts the journaled parameters of a rename request.
func RenameParams(req engine.RenameRequest) Params {
	return Params{FindText: req.FindText, ReplaceText: req.ReplaceText, Recursive: req.Recursive}
}

// DeleteParams extracts the journaled parameters of a delete request.
func DeleteParams(req engine.DeleteRequest, trash bool) Params {
	return Params{Keyword: req.Keyword, Recursive: req.Recursive, Trash: trash}
}

// Entry is one journaled operation.
type Entry struct {
	ID        string          `json:"id" yaml:"id"`
	Timestamp time.Time       `json:"timestamp" yaml:"timestamp"`
	Operation string          `json:"operation" yaml:"operation"`
	Root      string          `json:"root" yaml:"root"`
	Params    Params          `json:"params" yaml:"params"`
	Summary   *engine.Summary `json:"summary" yaml:"summary"`
}

// Journal stores entries as one JSON file each in a directory. Writers in
// different processes are serialised by a lock file in that directory.
type Journal struct {
	dir  string
	mu   sync.Mutex
	lock *flock.Flock
	now  func() time.Time
}

// DefaultDir returns $XDG_DATA_HOME/bulkfs/journal.
func DefaultDir() string {
	return filepath.Join(xdg.DataHome, "bulkfs", "journal")
}

// New creates a journal in dir. The directory is created on first write.
func New(dir string) (*Journal, error) {
	if dir == "" {
		return nil, errors.New("journal directory cannot be empty")
	}
	return &Journal{
		dir:  dir,
		lock: flock.New(filepath.Join(dir, ".lock")),
		now:  time.Now,
	}, nil
}

// Dir returns the journal directory.
func (j *Journal) Dir() string {
	return j.dir
}

// Record journals a completed operation. Dry runs and operations that never
// started are not journaled; Record returns nil, nil for them.
func (j *Journal) Record(params Params, summary *engine.Summary) (*Entry, error) {
	if summary == nil || summary.DryRun || summary.Error != "" {
		return nil, nil
	}

	now := j.now().UTC()
	entry := &Entry{
		ID:        newID(summary.Operation, now),
		Timestamp: now,
		Operation: summary.Operation,
		Root:      summary.Root,
		Params:    params,
		Summary:   summary,
	}

	if err := j.write(entry); err != nil {
		return nil, fmt.Errorf("failed to write journal entry: %w", err)
	}

	logger.Info("operation journaled", "id", entry.ID, "op", entry.Operation, "root", entry.Root)
	return entry, nil
}

func (j *Journal) write(entry *Entry) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if err := os.MkdirAll(j.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create journal directory: %w", err)
	}

	if err := j.lock.Lock(); err != nil {
		return fmt.Errorf("failed to lock journal: %w", err)
	}
	defer func() { _ = j.lock.Unlock() }()

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}

	path := j.path(entry.ID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// List returns entries newest first. A limit of zero or less returns all of
// them. Unreadable entry files are skipped.
func (j *Journal) List(limit int) ([]Entry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	files, err := os.ReadDir(j.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Entry{}, nil
		}
		return nil, fmt.Errorf("failed to read journal directory: %w", err)
	}

	entries := []Entry{}
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}
		entry, err := j.read(filepath.Join(j.dir, f.Name()))
		if err != nil {
			logger.Warn("skipping unreadable journal entry", "file", f.Name(), "error", err)
			continue
		}
		entries = append(entries, *entry)
	}

	sort.SliceStable(entries, func(a, b int) bool {
		return entries[a].Timestamp.After(entries[b].Timestamp)
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// Get returns the entry with the given ID.
func (j *Journal) Get(id string) (*Entry, error) {
	if id == "" {
		return nil, errors.New("entry ID cannot be empty")
	}
	if strings.ContainsAny(id, `/\`) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	entry, err := j.read(j.path(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}
	return entry, nil
}

// Cleanup removes entries recorded more than retentionDays ago and returns
// how many were removed. A retention of zero or less keeps everything.
func (j *Journal) Cleanup(retentionDays int) (int, error) {
	if retentionDays <= 0 {
		return 0, nil
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	files, err := os.ReadDir(j.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read journal directory: %w", err)
	}

	if err := j.lock.Lock(); err != nil {
		return 0, fmt.Errorf("failed to lock journal: %w", err)
	}
	defer func() { _ = j.lock.Unlock() }()

	cutoff := j.now().AddDate(0, 0, -retentionDays)
	removed := 0
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}
		path := filepath.Join(j.dir, f.Name())
		entry, err := j.read(path)
		if err != nil || !entry.Timestamp.Before(cutoff) {
			continue
		}
		if err := os.Remove(path); err != nil {
			logger.Warn("failed to remove journal entry", "file", f.Name(), "error", err)
			continue
		}
		removed++
	}

	if removed > 0 {
		logger.Info("journal cleaned", "removed", removed, "retention_days", retentionDays)
	}
	return removed, nil
}

func (j *Journal) path(id string) string {
	return filepath.Join(j.dir, id+".json")
}

func (j *Journal) read(path string) (*Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read entry: %w", err)
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal entry: %w", err)
	}
	return &entry, nil
}

// newID builds an ID like "rename-2024-06-15T10-30-00-1a2b3c4d".
func newID(op string, at time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s-%s-%s", op, at.Format("2006-01-02T15-04-05"), suffix)
}
