// Package walker provides the breadth-first directory traversal used by the
// bulk rename and delete engines.
//
// The walker only lists directories. Callers decide, entry by entry, which
// paths to descend into; this lets a rename engine follow a directory to its
// new name after renaming it.
//
//	w := walker.New(fs, root, recursive)
//	for visit := range w.Visits() {
//	    if visit.Err != nil {
//	        // record the unreadable directory and keep going
//	        continue
//	    }
//	    for _, child := range visit.Children {
//	        if child.IsDir {
//	            w.Descend(child.Path)
//	        }
//	    }
//	}
package walker

import (
	"container/list"
	"iter"

	"github.com/jamesainslie/bulkfs/pkg/bulkfs/fsys"
	"github.com/jamesainslie/bulkfs/pkg/bulkfs/logging"
)

var logger = logging.Get("walker")

// Visit is one dequeued directory and its immediate children.
// Err is set when the directory could not be listed; Children is nil then.
type Visit struct {
	Dir      string
	Children []fsys.Entry
	Err      error
}

// Stats counts the work done by a walk so far.
type Stats struct {
	DirsVisited  int
	DirsFailed   int
	EntriesSeen  int
	DirsEnqueued int
}

// Walker is a single-use breadth-first traversal.
// It is not safe for concurrent use.
type Walker struct {
	fs        fsys.FS
	recursive bool
	queue     *list.List
	enqueued  map[string]struct{}
	stats     Stats
}

// New creates a walker seeded with root.
func New(fs fsys.FS, root string, recursive bool) *Walker {
	w := &Walker{
		fs:        fs,
		recursive: recursive,
		queue:     list.New(),
		enqueued:  make(map[string]struct{}),
	}
	w.push(root)
	return w
}

// Recursive reports whether Descend enqueues anything.
func (w *Walker) Recursive() bool {
	return w.recursive
}

// Descend schedules dir for a later visit. It returns false when recursion is
// disabled or dir has already been scheduled in this traversal.
// No check is made that dir is still a directory; that happens when it is listed.
func (w *Walker) Descend(dir string) bool {
	if !w.recursive {
		return false
	}
	if _, seen := w.enqueued[dir]; seen {
		return false
	}
	w.push(dir)
	return true
}

// Next lists the next queued directory. It returns false once the queue is empty.
func (w *Walker) Next() (Visit, bool) {
	front := w.queue.Front()
	if front == nil {
		return Visit{}, false
	}
	dir := w.queue.Remove(front).(string)

	w.stats.DirsVisited++
	children, err := w.fs.ListChildren(dir)
	if err != nil {
		w.stats.DirsFailed++
		logger.Warn("directory unreadable", "dir", dir, "error", err)
		return Visit{Dir: dir, Err: err}, true
	}

	w.stats.EntriesSeen += len(children)
	return Visit{Dir: dir, Children: children}, true
}

// Visits returns an iterator over Next. Descend may be called while ranging.
func (w *Walker) Visits() iter.Seq[Visit] {
	return func(yield func(Visit) bool) {
		for {
			v, ok := w.Next()
			if !ok || !yield(v) {
				return
			}
		}
	}
}

// Pending returns the number of directories still queued.
func (w *Walker) Pending() int {
	return w.queue.Len()
}

// Stats returns traversal counters.
func (w *Walker) Stats() Stats {
	return w.stats
}

func (w *Walker) push(dir string) {
	w.enqueued[dir] = struct{}{}
	w.stats.DirsEnqueued++
	w.queue.PushBack(dir)
}
