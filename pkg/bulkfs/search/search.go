// Package search finds entries whose name contains a keyword below a
// directory. On macOS the Spotlight index is queried through mdfind; other
// platforms, or a failed mdfind, fall back to a parallel walk.
package search

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"os/exec"
	"runtime"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"
	"github.com/jamesainslie/bulkfs/pkg/bulkfs/filter"
	"github.com/jamesainslie/bulkfs/pkg/bulkfs/listing"
	"github.com/jamesainslie/bulkfs/pkg/bulkfs/logging"
	"github.com/spf13/afero"
)

var logger = logging.Get("search")

// Backend names reported in Result.Engine.
const (
	EngineSpotlight = "spotlight"
	EngineWalk      = "fastwalk"
)

// DefaultLimit applies when a request has no positive limit.
const DefaultLimit = 200

// MsgKeywordRequired is the result error for a blank keyword.
const MsgKeywordRequired = "keyword required"

// Request describes a search.
type Request struct {
	Keyword   string `json:"keyword"`
	Directory string `json:"directory"`
	Limit     int    `json:"limit,omitempty"`
}

// Result is the outcome of a search. Error is set when the search could not
// run; Entries is never nil.
type Result struct {
	Platform string          `json:"platform" yaml:"platform"`
	Engine   string          `json:"engine" yaml:"engine"`
	Entries  []listing.Entry `json:"entries" yaml:"entries"`
	Error    string          `json:"error,omitempty" yaml:"error,omitempty"`
}

// Output runs a command and returns its standard output.
type Output func(ctx context.Context, name string, args ...string) ([]byte, error)

func commandOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Searcher runs searches. It is safe for concurrent use.
type Searcher struct {
	fs       afero.Fs
	filter   *filter.Filter
	goos     string
	lookPath func(string) (string, error)
	output   Output
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithFilter drops entries the filter rejects. Rejected directories are
// not descended into by the walking backend.
func WithFilter(f *filter.Filter) Option {
	return func(s *Searcher) {
		s.filter = f
	}
}

// WithGOOS overrides backend selection.
func WithGOOS(goos string) Option {
	return func(s *Searcher) {
		s.goos = goos
	}
}

// WithCommand replaces executable lookup and execution for mdfind.
func WithCommand(lookPath func(string) (string, error), output Output) Option {
	return func(s *Searcher) {
		s.lookPath = lookPath
		s.output = output
	}
}

// WithFS sets the filesystem used to stat mdfind hits. The walking backend
// always reads the operating system filesystem.
func WithFS(fs afero.Fs) Option {
	return func(s *Searcher) {
		s.fs = fs
	}
}

// New creates a Searcher.
func New(opts ...Option) *Searcher {
	s := &Searcher{
		fs:       afero.NewOsFs(),
		goos:     runtime.GOOS,
		lookPath: exec.LookPath,
		output:   commandOutput,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search looks for names containing req.Keyword, case-insensitively, below
// req.Directory, which must already be absolute. Results are ordered
// directories first, then by name.
func (s *Searcher) Search(ctx context.Context, req Request) *Result {
	res := &Result{Platform: s.goos, Entries: []listing.Entry{}}

	keyword := strings.TrimSpace(req.Keyword)
	if keyword == "" {
		res.Error = MsgKeywordRequired
		return res
	}

	limit := req.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	var (
		entries []listing.Entry
		err     error
	)
	if s.goos == "darwin" {
		res.Engine = EngineSpotlight
		entries, err = s.spotlight(ctx, req.Directory, keyword, limit)
		if err != nil {
			logger.Warn("mdfind failed, walking instead", "error", err)
		}
	}
	if s.goos != "darwin" || err != nil {
		res.Engine = EngineWalk
		entries, err = s.walk(ctx, req.Directory, keyword, limit)
	}
	if err != nil {
		res.Error = err.Error()
		return res
	}

	listing.Sort(entries, filter.SortName, false)
	res.Entries = entries
	logger.Debug("search finished", "engine", res.Engine, "dir", req.Directory, "keyword", keyword, "hits", len(entries))
	return res
}

// spotlight queries mdfind and parses one path per output line.
func (s *Searcher) spotlight(ctx context.Context, dir, keyword string, limit int) ([]listing.Entry, error) {
	bin, err := s.lookPath("mdfind")
	if err != nil {
		return nil, err
	}

	out, err := s.output(ctx, bin, "-onlyin", dir, "-name", keyword)
	if err != nil {
		return nil, fmt.Errorf("mdfind: %w", err)
	}

	lower := strings.ToLower(keyword)
	var entries []listing.Entry

	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() && len(entries) < limit {
		path := strings.TrimSpace(sc.Text())
		if path == "" || path == dir || !s.keepUnder(dir, path) {
			continue
		}
		info, err := s.fs.Stat(path)
		if err != nil {
			// The index can be stale.
			continue
		}
		if !strings.Contains(strings.ToLower(info.Name()), lower) {
			continue
		}
		entries = append(entries, toEntry(path, info))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading mdfind output: %w", err)
	}
	return entries, nil
}

// keepUnder applies the filter to path and to every directory between dir
// and path, so index hits inside pruned directories are dropped the same way
// the walk backend never reaches them.
func (s *Searcher) keepUnder(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return s.filter.Keep(path)
	}

	current := dir
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		current = filepath.Join(current, part)
		if !s.filter.Keep(current) {
			return false
		}
	}
	return true
}

// errLimit stops the walk once enough entries were found.
var errLimit = errors.New("search limit reached")

// walk searches with fastwalk. Which entries are kept once the limit is
// reached depends on scheduling.
func (s *Searcher) walk(ctx context.Context, dir, keyword string, limit int) ([]listing.Entry, error) {
	lower := strings.ToLower(keyword)

	var (
		mu      sync.Mutex
		entries []listing.Entry
	)

	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, dir, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if path == dir {
				return err
			}
			logger.Debug("search skipped unreadable entry", "path", path, "error", err)
			return nil
		}
		if path == dir {
			return nil
		}

		if !s.filter.Keep(path) {
			if d.IsDir() {
				return fastwalk.SkipDir
			}
			return nil
		}

		if !strings.Contains(strings.ToLower(d.Name()), lower) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}

		mu.Lock()
		defer mu.Unlock()
		if len(entries) >= limit {
			return errLimit
		}
		entries = append(entries, toEntry(path, info))
		return nil
	})
	if err != nil && !errors.Is(err, errLimit) {
		return nil, err
	}
	if entries == nil {
		entries = []listing.Entry{}
	}
	return entries, nil
}

func toEntry(path string, info fs.FileInfo) listing.Entry {
	e := listing.Entry{
		Name:    info.Name(),
		Path:    path,
		IsDir:   info.IsDir(),
		ModTime: info.ModTime(),
	}
	if !e.IsDir {
		e.Size = info.Size()
	}
	return e
}
