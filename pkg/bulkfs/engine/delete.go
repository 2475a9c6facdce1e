package engine

import (
	"strings"

	"github.com/jamesainslie/bulkfs/pkg/bulkfs/walker"
)

// DeleteRequest describes a bulk keyword delete.
type DeleteRequest struct {
	RootPath  string `json:"root_path,omitempty"`
	Keyword   string `json:"keyword"`
	Recursive bool   `json:"recursive,omitempty"`
	DryRun    bool   `json:"dry_run,omitempty"`
}

// DeleteOutcome is one recorded match: Previewed, Deleted or DeleteFailed.
type DeleteOutcome interface {
	deleteOutcome()
}

// Previewed is a match reported by a dry run.
type Previewed struct {
	Path  string
	IsDir bool
}

// Deleted is a match that was removed.
type Deleted struct {
	Path  string
	IsDir bool
}

// DeleteFailed is a match that could not be removed, or a directory that
// could not be listed.
type DeleteFailed struct {
	Path  string
	IsDir bool
	Err   string
}

func (Previewed) deleteOutcome()    {}
func (Deleted) deleteOutcome()      {}
func (DeleteFailed) deleteOutcome() {}

// DeleteResult is the aggregate result of DeleteBulk.
type DeleteResult struct {
	Root    string
	DryRun  bool
	Matched int
	Deleted int
	Failed  int
	Details []DeleteOutcome
	Error   string
}

// OK reports whether the operation ran and nothing failed.
func (r *DeleteResult) OK() bool {
	return r.Error == "" && r.Failed == 0
}

// DeleteBulk removes every entry under the request root whose name contains
// Keyword. Matching is case-sensitive.
//
// A matched directory is removed with its contents in one step and is never
// descended into, in a dry run as well. Non-matching directories are
// descended into when Recursive is set.
func (e *Engine) DeleteBulk(req DeleteRequest) *DeleteResult {
	res := &DeleteResult{
		Root:    req.RootPath,
		DryRun:  req.DryRun,
		Details: []DeleteOutcome{},
	}

	if blank(req.Keyword) {
		res.Root = e.resolveRoot(req.RootPath)
		res.Error = MsgKeywordRequired
		return res
	}

	root, err := e.prepare(req.RootPath)
	res.Root = root
	if err != nil {
		res.Error = err.Error()
		return res
	}

	log := logger.With("op", "delete", "root", root, "dry_run", req.DryRun)
	log.Info("delete started", "keyword", req.Keyword, "recursive", req.Recursive)

	agg := NewAggregate[DeleteOutcome]()
	w := walker.New(e.fs, root, req.Recursive)

	for visit := range w.Visits() {
		if visit.Err != nil {
			agg.Record(DeleteFailed{Path: visit.Dir, IsDir: true, Err: visit.Err.Error()}, CounterFailed)
			continue
		}

		for _, entry := range visit.Children {
			if !strings.Contains(entry.Name, req.Keyword) {
				if entry.IsDir {
					w.Descend(entry.Path)
				}
				continue
			}

			agg.Add(CounterMatched)

			if req.DryRun {
				agg.Record(Previewed{Path: entry.Path, IsDir: entry.IsDir})
				continue
			}

			if err := e.remover.Remove(entry.Path, entry.IsDir); err != nil {
				agg.Record(DeleteFailed{Path: entry.Path, IsDir: entry.IsDir, Err: err.Error()}, CounterFailed)
				log.Warn("delete failed", "path", entry.Path, "error", err)
				continue
			}
			agg.Record(Deleted{Path: entry.Path, IsDir: entry.IsDir}, CounterDeleted)
			log.Debug("deleted", "path", entry.Path, "dir", entry.IsDir)
		}
	}

	res.Matched = agg.Count(CounterMatched)
	res.Deleted = agg.Count(CounterDeleted)
	res.Failed = agg.Count(CounterFailed)
	res.Details = agg.Details()

	stats := w.Stats()
	log.Info("delete finished",
		"matched", res.Matched, "deleted", res.Deleted, "failed", res.Failed,
		"dirs", stats.DirsVisited, "entries", stats.EntriesSeen)
	return res
}
