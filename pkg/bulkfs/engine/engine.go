// Package engine implements the bulk rename and bulk delete operations.
//
// Both operations walk a directory subtree breadth-first, decide per entry
// what to do, and report every outcome in a single result value. A result is
// always returned: problems that prevent the operation from starting set the
// result's Error field, and problems with individual entries are recorded as
// failed outcomes while the walk continues.
//
//	eng, err := engine.New()
//	if err != nil {
//	    return err
//	}
//	res := eng.RenameBulk(engine.RenameRequest{
//	    RootPath:    "~/Downloads",
//	    FindText:    "IMG_",
//	    ReplaceText: "photo-",
//	    DryRun:      true,
//	})
package engine

import (
	"errors"
	"strings"

	"github.com/jamesainslie/bulkfs/pkg/bulkfs/fsys"
	"github.com/jamesainslie/bulkfs/pkg/bulkfs/logging"
	"github.com/jamesainslie/bulkfs/pkg/bulkfs/pathutil"
)

var logger = logging.Get("engine")

// Messages reported in a result's Error field or on a failed outcome.
const (
	MsgFindTextRequired = "find text required"
	MsgKeywordRequired  = "keyword required"
	MsgRootNotDir       = "root must be a directory"
	MsgTargetExists     = "target name already exists"
	MsgInvalidTarget    = "invalid target name"
)

// Remover deletes a matched entry. isDir reports whether path is a directory,
// in which case the whole subtree goes in one call.
type Remover interface {
	Remove(path string, isDir bool) error
}

// RemoverFunc adapts a function to Remover.
type RemoverFunc func(path string, isDir bool) error

// Remove calls f.
func (f RemoverFunc) Remove(path string, isDir bool) error {
	return f(path, isDir)
}

// FSRemover removes entries permanently through an fsys.FS.
type FSRemover struct {
	FS fsys.FS
}

// Remove deletes a file, or a directory and everything below it.
func (r FSRemover) Remove(path string, isDir bool) error {
	if isDir {
		return r.FS.RemoveAll(path)
	}
	return r.FS.RemoveFile(path)
}

// Engine runs bulk operations. It holds no state between calls and is safe
// to share, though concurrent operations on overlapping trees will race on
// the filesystem.
type Engine struct {
	fs       fsys.FS
	resolver *pathutil.Resolver
	remover  Remover
}

// Option configures an Engine.
type Option func(*Engine)

// WithFS sets the filesystem. The default is the operating system.
func WithFS(fs fsys.FS) Option {
	return func(e *Engine) {
		e.fs = fs
	}
}

// WithResolver sets the resolver for request root paths.
// The default resolves against the user's home directory.
func WithResolver(r *pathutil.Resolver) Option {
	return func(e *Engine) {
		e.resolver = r
	}
}

// WithRemover sets how matched entries are deleted. The default removes them
// permanently through the engine's filesystem.
func WithRemover(r Remover) Option {
	return func(e *Engine) {
		e.remover = r
	}
}

// New creates an engine.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}

	if e.fs == nil {
		e.fs = fsys.OS()
	}
	if e.resolver == nil {
		r, err := pathutil.New("")
		if err != nil {
			return nil, err
		}
		e.resolver = r
	}
	if e.remover == nil {
		e.remover = FSRemover{FS: e.fs}
	}
	return e, nil
}

// FS returns the engine's filesystem.
func (e *Engine) FS() fsys.FS {
	return e.fs
}

// Resolver returns the engine's path resolver.
func (e *Engine) Resolver() *pathutil.Resolver {
	return e.resolver
}

// errNotDir marks a root that exists but is not a directory.
var errNotDir = errors.New(MsgRootNotDir)

// resolveRoot resolves rootPath, falling back to the raw input when the
// path cannot be resolved.
func (e *Engine) resolveRoot(rootPath string) string {
	root, err := e.resolver.Resolve(rootPath)
	if err != nil {
		return rootPath
	}
	return root
}

// prepare resolves rootPath and checks it is a directory.
// The returned path is usable even when err is set.
func (e *Engine) prepare(rootPath string) (string, error) {
	root, err := e.resolver.Resolve(rootPath)
	if err != nil {
		return rootPath, err
	}

	info, err := e.fs.Stat(root)
	if err != nil {
		return root, err
	}
	if !info.IsDir {
		return root, errNotDir
	}
	return root, nil
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
