package engine

// Operation names used in summaries and journal entries.
const (
	OpRename = "rename"
	OpDelete = "delete"
)

// Detail statuses.
const (
	StatusRenamed = "renamed"
	StatusPreview = "preview"
	StatusDeleted = "deleted"
	StatusFailed  = "failed"
)

// Summary is the flat, serialisable form of a rename or delete result.
// Formatters, the journal and the daemon protocol all carry summaries.
type Summary struct {
	Operation string         `json:"operation" yaml:"operation"`
	Root      string         `json:"root" yaml:"root"`
	DryRun    bool           `json:"dry_run" yaml:"dry_run"`
	Counts    map[string]int `json:"counts" yaml:"counts"`
	Details   []Detail       `json:"details" yaml:"details"`
	Error     string         `json:"error,omitempty" yaml:"error,omitempty"`
}

// Detail is one outcome row.
type Detail struct {
	Status string `json:"status" yaml:"status"`
	Path   string `json:"path" yaml:"path"`
	Target string `json:"target,omitempty" yaml:"target,omitempty"`
	IsDir  bool   `json:"is_dir,omitempty" yaml:"is_dir,omitempty"`
	Error  string `json:"error,omitempty" yaml:"error,omitempty"`
}

// CountKeys returns the counter names for the summary's operation in
// display order.
func (s *Summary) CountKeys() []string {
	if s.Operation == OpDelete {
		return []string{string(CounterMatched), string(CounterDeleted), string(CounterFailed)}
	}
	return []string{string(CounterRenamed), string(CounterSkipped), string(CounterFailed)}
}

// Count returns the named counter, zero when absent.
func (s *Summary) Count(name string) int {
	return s.Counts[name]
}

// Failed reports whether the operation could not start or any item failed.
func (s *Summary) Failed() bool {
	return s.Error != "" || s.Counts[string(CounterFailed)] > 0
}

// Summary flattens the result.
func (r *RenameResult) Summary() *Summary {
	s := &Summary{
		Operation: OpRename,
		Root:      r.Root,
		DryRun:    r.DryRun,
		Counts: map[string]int{
			string(CounterRenamed): r.Renamed,
			string(CounterSkipped): r.Skipped,
			string(CounterFailed):  r.Failed,
		},
		Details: make([]Detail, 0, len(r.Details)),
		Error:   r.Error,
	}

	for _, d := range r.Details {
		switch o := d.(type) {
		case Renamed:
			status := StatusRenamed
			if r.DryRun {
				status = StatusPreview
			}
			s.Details = append(s.Details, Detail{Status: status, Path: o.From, Target: o.To})
		case RenameFailed:
			s.Details = append(s.Details, Detail{Status: StatusFailed, Path: o.From, Error: o.Err})
		}
	}
	return s
}

// Summary flattens the result.
func (r *DeleteResult) Summary() *Summary {
	s := &Summary{
		Operation: OpDelete,
		Root:      r.Root,
		DryRun:    r.DryRun,
		Counts: map[string]int{
			string(CounterMatched): r.Matched,
			string(CounterDeleted): r.Deleted,
			string(CounterFailed):  r.Failed,
		},
		Details: make([]Detail, 0, len(r.Details)),
		Error:   r.Error,
	}

	for _, d := range r.Details {
		switch o := d.(type) {
		case Previewed:
			s.Details = append(s.Details, Detail{Status: StatusPreview, Path: o.Path, IsDir: o.IsDir})
		case Deleted:
			s.Details = append(s.Details, Detail{Status: StatusDeleted, Path: o.Path, IsDir: o.IsDir})
		case DeleteFailed:
			s.Details = append(s.Details, Detail{Status: StatusFailed, Path: o.Path, IsDir: o.IsDir, Error: o.Err})
		}
	}
	return s
}
