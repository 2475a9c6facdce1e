package engine

import (
	"path/filepath"
	"strings"

	"github.com/jamesainslie/bulkfs/pkg/bulkfs/walker"
)

// RenameRequest describes a bulk find/replace rename.
type RenameRequest struct {
	RootPath    string `json:"root_path,omitempty"`
	FindText    string `json:"find_text"`
	ReplaceText string `json:"replace_text"`
	Recursive   bool   `json:"recursive,omitempty"`
	DryRun      bool   `json:"dry_run,omitempty"`
}

// RenameOutcome is one recorded rename: either Renamed or RenameFailed.
type RenameOutcome interface {
	renameOutcome()
}

// Renamed is a committed rename, or in a dry run a rename that would be made.
type Renamed struct {
	From string
	To   string
}

// RenameFailed is an entry that could not be renamed, or a directory that
// could not be listed.
type RenameFailed struct {
	From string
	Err  string
}

func (Renamed) renameOutcome()      {}
func (RenameFailed) renameOutcome() {}

// RenameResult is the aggregate result of RenameBulk.
type RenameResult struct {
	Root    string
	DryRun  bool
	Renamed int
	Skipped int
	Failed  int
	Details []RenameOutcome
	Error   string
}

// OK reports whether the operation ran and nothing failed.
func (r *RenameResult) OK() bool {
	return r.Error == "" && r.Failed == 0
}

// RenameBulk replaces the first occurrence of FindText with ReplaceText in
// the name of every entry under the request root.
//
// Entries whose name does not change are counted as skipped and get no
// detail. A rename whose target already exists in the same directory fails
// and leaves both entries alone. With Recursive set, a renamed directory is
// descended into under its new name.
func (e *Engine) RenameBulk(req RenameRequest) *RenameResult {
	res := &RenameResult{
		Root:    req.RootPath,
		DryRun:  req.DryRun,
		Details: []RenameOutcome{},
	}

	if blank(req.FindText) {
		res.Root = e.resolveRoot(req.RootPath)
		res.Error = MsgFindTextRequired
		return res
	}

	root, err := e.prepare(req.RootPath)
	res.Root = root
	if err != nil {
		res.Error = err.Error()
		return res
	}

	log := logger.With("op", "rename", "root", root, "dry_run", req.DryRun)
	log.Info("rename started", "find", req.FindText, "replace", req.ReplaceText, "recursive", req.Recursive)

	agg := NewAggregate[RenameOutcome]()
	w := walker.New(e.fs, root, req.Recursive)

	for visit := range w.Visits() {
		if visit.Err != nil {
			agg.Record(RenameFailed{From: visit.Dir, Err: visit.Err.Error()}, CounterFailed)
			continue
		}

		for _, entry := range visit.Children {
			current := entry.Path

			proposed := strings.Replace(entry.Name, req.FindText, req.ReplaceText, 1)
			if proposed == entry.Name {
				agg.Add(CounterSkipped)
			} else {
				switch o := e.renameEntry(visit.Dir, entry.Path, proposed, req.DryRun).(type) {
				case Renamed:
					agg.Record(o, CounterRenamed)
					if !req.DryRun {
						current = o.To
					}
				case RenameFailed:
					agg.Record(o, CounterFailed)
					log.Warn("rename failed", "path", o.From, "error", o.Err)
				}
			}

			if entry.IsDir {
				w.Descend(current)
			}
		}
	}

	res.Renamed = agg.Count(CounterRenamed)
	res.Skipped = agg.Count(CounterSkipped)
	res.Failed = agg.Count(CounterFailed)
	res.Details = agg.Details()

	stats := w.Stats()
	log.Info("rename finished",
		"renamed", res.Renamed, "skipped", res.Skipped, "failed", res.Failed,
		"dirs", stats.DirsVisited, "entries", stats.EntriesSeen)
	return res
}

// renameEntry checks and, unless dryRun, performs one rename.
func (e *Engine) renameEntry(dir, from, name string, dryRun bool) RenameOutcome {
	if !validName(name) {
		return RenameFailed{From: from, Err: MsgInvalidTarget}
	}

	to := filepath.Join(dir, name)

	exists, err := e.fs.Exists(to)
	if err != nil {
		return RenameFailed{From: from, Err: err.Error()}
	}
	// A case-only rename on a case-insensitive volume finds the entry itself.
	if exists && !e.fs.SameFile(from, to) {
		return RenameFailed{From: from, Err: MsgTargetExists}
	}

	if dryRun {
		return Renamed{From: from, To: to}
	}

	if err := e.fs.Rename(from, to); err != nil {
		return RenameFailed{From: from, Err: err.Error()}
	}
	logger.Debug("renamed", "from", from, "to", to)
	return Renamed{From: from, To: to}
}

// validName rejects names that would leave the parent directory.
func validName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsRune(name, '/') && !strings.ContainsRune(name, filepath.Separator)
}
