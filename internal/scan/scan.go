// Package scan labels every binding in a directory of Python files.
package scan

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/phobologic/varhint/internal/discover"
	"github.com/phobologic/varhint/internal/document"
	"github.com/phobologic/varhint/internal/hint"
	"github.com/phobologic/varhint/internal/model"
)

// Options controls a scan.
type Options struct {
	MaxFiles    int   // 0 means all
	MaxFileSize int64 // 0 means no limit
	Workers     int   // 0 means GOMAXPROCS
	Warnings    io.Writer
}

// Scanner parses files and labels their bindings.
type Scanner struct {
	store    *document.Store
	analyzer *hint.Analyzer
}

// New returns a scanner that parses through store and labels with analyzer.
func New(store *document.Store, analyzer *hint.Analyzer) *Scanner {
	return &Scanner{store: store, analyzer: analyzer}
}

// Dir scans every Python file under root.
func (s *Scanner) Dir(ctx context.Context, root string, opts Options) (*model.Report, error) {
	files, err := discover.Files(root, discover.Options{MaxSize: opts.MaxFileSize, Warnings: opts.Warnings})
	if err != nil {
		return nil, fmt.Errorf("discovering files: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no python files found")
	}
	if opts.MaxFiles > 0 && len(files) > opts.MaxFiles {
		files = files[:opts.MaxFiles]
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	warnings := &lockedWriter{w: opts.Warnings}
	results := make([]*model.FileBindings, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			source, err := os.ReadFile(filepath.Join(root, f.Path))
			if err != nil {
				warnings.printf("Warning: failed to read %s: %v\n", f.Path, err)
				return nil
			}
			fb, err := s.Source(gctx, f.Path, source)
			if err != nil {
				warnings.printf("Warning: failed to parse %s: %v\n", f.Path, err)
				return nil
			}
			results[i] = fb
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rep := &model.Report{RepoName: filepath.Base(root), Root: filepath.Base(root)}
	for _, fb := range results {
		if fb != nil {
			rep.Files = append(rep.Files, *fb)
		}
	}
	if len(rep.Files) == 0 {
		return nil, fmt.Errorf("no files could be parsed")
	}
	return rep, nil
}

// Source labels the bindings of a single file.
func (s *Scanner) Source(ctx context.Context, path string, source []byte) (*model.FileBindings, error) {
	doc, err := s.store.Open(ctx, path, source)
	if err != nil {
		return nil, err
	}
	fb := &model.FileBindings{Path: path, Language: doc.Language}
	if doc.Tree == nil {
		return fb, nil
	}
	for _, b := range doc.Tree.Bindings() {
		line, col := doc.Tree.Position(b.Target.Start)
		fb.Bindings = append(fb.Bindings, model.Binding{
			File:   path,
			Name:   b.Name,
			Line:   line,
			Column: col,
			Scope:  b.Scope.Name,
			Label:  string(s.analyzer.Label(doc.Tree, b.Target)),
		})
	}
	return fb, nil
}

// lockedWriter serializes warnings written from concurrent workers.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) printf(format string, args ...any) {
	if l.w == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = fmt.Fprintf(l.w, format, args...)
}
