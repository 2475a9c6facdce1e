// Package output renders bulkfs results (operation summaries, directory
// listings, search hits and journal history) in a selectable format.
//
// Every result is first converted into a Result view: a title, a few
// metadata fields, a table of rows and the original structured value.
// Tabular formatters render the table, structured formatters (json, yaml)
// encode the original value.
//
//	formatter, err := output.Get("pretty")
//	if err != nil {
//	    return err
//	}
//	var buf bytes.Buffer
//	if err := formatter.Format(&buf, output.FromSummary(summary)); err != nil {
//	    return err
//	}
//	os.Stdout.Write(buf.Bytes())
package output

import (
	"bytes"
	"fmt"
	"sort"
	"sync"

	"github.com/jamesainslie/bulkfs/pkg/bulkfs/logging"
)

var logger = logging.Get("output")

// Kinds of result a Result can carry.
const (
	KindSummary = "summary"
	KindListing = "listing"
	KindSearch  = "search"
	KindHistory = "history"
)

// Tone classifies a row for styling.
type Tone int

// Row tones.
const (
	ToneNone Tone = iota
	ToneGood
	ToneWarn
	ToneBad
	ToneDir
)

// Field is a labelled value shown in headers and footers.
type Field struct {
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
}

// Row is one table row.
type Row struct {
	Tone  Tone
	Cells []string
}

// Result is the formatter-neutral view of something bulkfs printed.
type Result struct {
	// Kind is one of the Kind constants.
	Kind string

	// Title is a one-line description, e.g. "rename /home/u/photos".
	Title string

	// Meta holds header fields.
	Meta []Field

	// Columns names the table columns.
	Columns []string

	// Rows holds the table body.
	Rows []Row

	// Items holds one structured value per row, for line-oriented encoders.
	Items []any

	// Paths holds the filesystem path of each row, for piping.
	Paths []string

	// Counts holds footer fields.
	Counts []Field

	// Data is the original structured value.
	Data any

	// Error is a top-level error message.
	Error string

	// Empty is shown by the pretty formatter when there are no rows.
	Empty string
}

// Formatter renders a Result.
type Formatter interface {
	// Format writes the formatted output to the buffer.
	Format(w *bytes.Buffer, r *Result) error
}

// FormatterFactory creates a Formatter.
type FormatterFactory func() Formatter

// Registry manages formatter registration and lookup.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]FormatterFactory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]FormatterFactory)}
}

// Register adds a formatter factory, replacing any with the same name.
func (r *Registry) Register(name string, factory FormatterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get returns a new formatter instance by name.
func (r *Registry) Get(name string) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown formatter: %s", name)
	}
	return factory(), nil
}

// Available returns the sorted formatter names.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global formatter registry.
var DefaultRegistry = NewRegistry()

// Register adds a formatter factory to the default registry.
func Register(name string, factory FormatterFactory) {
	DefaultRegistry.Register(name, factory)
}

// Get returns a new formatter instance from the default registry.
func Get(name string) (Formatter, error) {
	return DefaultRegistry.Get(name)
}

// Available returns all formatter names from the default registry.
func Available() []string {
	return DefaultRegistry.Available()
}

// Render formats r with the named formatter from the default registry.
func Render(name string, r *Result) ([]byte, error) {
	f, err := Get(name)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := f.Format(&buf, r); err != nil {
		logger.Error("formatting failed", "format", name, "kind", r.Kind, "error", err)
		return nil, fmt.Errorf("formatting %s output: %w", name, err)
	}
	return buf.Bytes(), nil
}
