package output

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jamesainslie/bulkfs/pkg/bulkfs/engine"
	"github.com/jamesainslie/bulkfs/pkg/bulkfs/journal"
	"github.com/jamesainslie/bulkfs/pkg/bulkfs/listing"
	"github.com/jamesainslie/bulkfs/pkg/bulkfs/search"
)

// TimeLayout formats modification times in tables.
const TimeLayout = "2006-01-02 15:04"

// FromSummary builds the view of a rename or delete summary.
func FromSummary(s *engine.Summary) *Result {
	mode := "live"
	if s.DryRun {
		mode = "dry run"
	}

	r := &Result{
		Kind:  KindSummary,
		Title: s.Operation + " " + s.Root,
		Meta: []Field{
			{Label: "Operation", Value: s.Operation},
			{Label: "Root", Value: s.Root},
			{Label: "Mode", Value: mode},
		},
		Rows:  make([]Row, 0, len(s.Details)),
		Items: make([]any, 0, len(s.Details)),
		Data:  s,
		Error: s.Error,
	}
	if s.DryRun {
		r.Title += " (dry run)"
	}

	if s.Operation == engine.OpDelete {
		r.Columns = []string{"STATUS", "TYPE", "PATH", "ERROR"}
		r.Empty = "No entries matched the keyword"
	} else {
		r.Columns = []string{"STATUS", "PATH", "TARGET", "ERROR"}
		r.Empty = "No names contain the search text"
	}

	for _, d := range s.Details {
		var cells []string
		if s.Operation == engine.OpDelete {
			cells = []string{d.Status, entryType(d.IsDir), d.Path, d.Error}
		} else {
			cells = []string{d.Status, d.Path, d.Target, d.Error}
		}
		r.Rows = append(r.Rows, Row{Tone: statusTone(d.Status), Cells: cells})
		r.Items = append(r.Items, d)
		if d.Status == engine.StatusRenamed {
			r.Paths = append(r.Paths, d.Target)
		} else {
			r.Paths = append(r.Paths, d.Path)
		}
	}

	for _, key := range s.CountKeys() {
		r.Counts = append(r.Counts, Field{Label: key, Value: strconv.Itoa(s.Count(key))})
	}
	return r
}

// FromEntry builds the view of one journal entry.
func FromEntry(e *journal.Entry) *Result {
	summary := e.Summary
	if summary == nil {
		summary = &engine.Summary{Operation: e.Operation, Root: e.Root}
	}

	r := FromSummary(summary)
	r.Title = e.ID
	meta := []Field{
		{Label: "ID", Value: e.ID},
		{Label: "When", Value: e.Timestamp.Local().Format(time.RFC3339)},
	}
	meta = append(meta, paramFields(e.Params)...)
	r.Meta = append(meta, r.Meta...)
	r.Data = e
	return r
}

// ListColumns selects the optional listing columns.
type ListColumns struct {
	Type     bool
	Size     bool
	Modified bool
}

// AllListColumns shows every optional column.
var AllListColumns = ListColumns{Type: true, Size: true, Modified: true}

// FromSnapshot builds the view of a directory listing.
func FromSnapshot(snap *listing.Snapshot, cols ListColumns) *Result {
	r := &Result{
		Kind:  KindListing,
		Title: snap.Path,
		Meta:  []Field{{Label: "Path", Value: snap.Path}},
		Rows:  make([]Row, 0, len(snap.Entries)),
		Items: make([]any, 0, len(snap.Entries)),
		Data:  snap,
		Error: snap.Error,
		Empty: "Directory is empty",
	}

	r.Columns = []string{"NAME"}
	if cols.Type {
		r.Columns = append(r.Columns, "TYPE")
	}
	if cols.Size {
		r.Columns = append(r.Columns, "SIZE")
	}
	if cols.Modified {
		r.Columns = append(r.Columns, "MODIFIED")
	}

	dirs := 0
	for _, e := range snap.Entries {
		cells := []string{e.Name}
		if cols.Type {
			cells = append(cells, entryType(e.IsDir))
		}
		if cols.Size {
			cells = append(cells, entrySize(e))
		}
		if cols.Modified {
			cells = append(cells, entryTime(e.ModTime))
		}

		tone := ToneNone
		if e.IsDir {
			tone = ToneDir
			dirs++
		}
		r.Rows = append(r.Rows, Row{Tone: tone, Cells: cells})
		r.Items = append(r.Items, e)
		r.Paths = append(r.Paths, e.Path)
	}

	r.Counts = []Field{
		{Label: "entries", Value: strconv.Itoa(len(snap.Entries))},
		{Label: "dirs", Value: strconv.Itoa(dirs)},
		{Label: "files", Value: strconv.Itoa(len(snap.Entries) - dirs)},
	}
	return r
}

// FromSearch builds the view of a search.
func FromSearch(keyword string, res *search.Result) *Result {
	r := &Result{
		Kind:  KindSearch,
		Title: fmt.Sprintf("search %q", keyword),
		Meta: []Field{
			{Label: "Keyword", Value: keyword},
			{Label: "Engine", Value: res.Engine},
			{Label: "Platform", Value: res.Platform},
		},
		Columns: []string{"TYPE", "SIZE", "PATH"},
		Rows:    make([]Row, 0, len(res.Entries)),
		Items:   make([]any, 0, len(res.Entries)),
		Data:    res,
		Error:   res.Error,
		Empty:   "No matches",
	}

	for _, e := range res.Entries {
		tone := ToneNone
		if e.IsDir {
			tone = ToneDir
		}
		r.Rows = append(r.Rows, Row{Tone: tone, Cells: []string{entryType(e.IsDir), entrySize(e), e.Path}})
		r.Items = append(r.Items, e)
		r.Paths = append(r.Paths, e.Path)
	}

	r.Counts = []Field{{Label: "matches", Value: strconv.Itoa(len(res.Entries))}}
	return r
}

// FromHistory builds the view of journal entries, newest first. Times are
// shown relative to now.
func FromHistory(entries []journal.Entry, now time.Time) *Result {
	r := &Result{
		Kind:    KindHistory,
		Title:   "history",
		Columns: []string{"ID", "WHEN", "OPERATION", "ROOT", "RESULT"},
		Rows:    make([]Row, 0, len(entries)),
		Items:   make([]any, 0, len(entries)),
		Data:    entries,
		Empty:   "No operations recorded",
	}

	failed := 0
	for _, e := range entries {
		tone := ToneGood
		outcome := ""
		if e.Summary != nil {
			outcome = countsLine(e.Summary)
			if e.Summary.Failed() {
				tone = ToneBad
				failed++
			}
		}
		when := humanize.RelTime(e.Timestamp, now, "ago", "from now")
		r.Rows = append(r.Rows, Row{Tone: tone, Cells: []string{e.ID, when, e.Operation, e.Root, outcome}})
		r.Items = append(r.Items, e)
		r.Paths = append(r.Paths, e.Root)
	}

	r.Counts = []Field{
		{Label: "operations", Value: strconv.Itoa(len(entries))},
		{Label: "with failures", Value: strconv.Itoa(failed)},
	}
	return r
}

func statusTone(status string) Tone {
	switch status {
	case engine.StatusRenamed, engine.StatusDeleted:
		return ToneGood
	case engine.StatusPreview:
		return ToneWarn
	case engine.StatusFailed:
		return ToneBad
	default:
		return ToneNone
	}
}

func entryType(isDir bool) string {
	if isDir {
		return "dir"
	}
	return "file"
}

func entrySize(e listing.Entry) string {
	if e.IsDir {
		return "-"
	}
	return humanize.IBytes(uint64(e.Size))
}

func entryTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(TimeLayout)
}

func countsLine(s *engine.Summary) string {
	parts := make([]string, 0, 3)
	for _, key := range s.CountKeys() {
		parts = append(parts, fmt.Sprintf("%s=%d", key, s.Count(key)))
	}
	return strings.Join(parts, " ")
}

func paramFields(p journal.Params) []Field {
	var out []Field
	if p.FindText != "" {
		out = append(out, Field{Label: "Find", Value: p.FindText})
		out = append(out, Field{Label: "Replace", Value: p.ReplaceText})
	}
	if p.Keyword != "" {
		out = append(out, Field{Label: "Keyword", Value: p.Keyword})
	}
	out = append(out, Field{Label: "Recursive", Value: strconv.FormatBool(p.Recursive)})
	if p.Trash {
		out = append(out, Field{Label: "Trash", Value: "true"})
	}
	return out
}
