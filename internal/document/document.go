// Package document holds parsed source documents and caches their trees.
package document

import (
	"context"
	"fmt"
	"hash/fnv"
	"os"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/phobologic/varhint/internal/lang"
	"github.com/phobologic/varhint/internal/model"
	"github.com/phobologic/varhint/internal/syntax"
)

// Document is an immutable snapshot of an open file.
type Document struct {
	Path     string
	Language string // "" when the file kind is unsupported
	Source   []byte
	Tree     *syntax.Tree // nil when Language is ""

	lines *syntax.Lines
}

// New parses source according to the language implied by path. Unsupported
// file kinds produce a document without a tree.
func New(ctx context.Context, path string, source []byte) (*Document, error) {
	d := &Document{Path: path, Source: source, lines: syntax.NewLines(source)}
	l := lang.ForPath(path)
	if l == nil || l.Name != lang.Python {
		return d, nil
	}
	tree, err := syntax.Parse(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	d.Language = l.Name
	d.Tree = tree
	return d, nil
}

// Offset converts a 1-based line and rune column into a byte offset. A
// column past the end of the line clamps to the line end.
func (d *Document) Offset(line, column uint32) (uint32, bool) {
	return d.lines.Offset(line, column)
}

// Caret returns the caret state for a byte offset.
func (d *Document) Caret(offset uint32) model.Caret {
	if int(offset) > len(d.Source) {
		offset = uint32(len(d.Source))
	}
	line, col := d.lines.Position(offset)
	return model.Caret{Line: uint32(line), Column: uint32(col), Offset: offset}
}

// CaretAt returns the caret state for a 1-based line and column.
func (d *Document) CaretAt(line, column uint32) (model.Caret, bool) {
	off, ok := d.Offset(line, column)
	if !ok {
		return model.Caret{}, false
	}
	return model.Caret{Line: line, Column: column, Offset: off}, true
}

// DefaultTTL is how long a parsed document stays cached when unused.
const DefaultTTL = 5 * time.Minute

// Store parses documents and caches them by path and content, so repeated
// queries against an unchanged file reuse its tree.
type Store struct {
	cache *cache.Cache
}

// NewStore returns a store whose entries expire after ttl without use.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{cache: cache.New(ttl, 2*ttl)}
}

// Open returns the document for path with the given content.
func (s *Store) Open(ctx context.Context, path string, source []byte) (*Document, error) {
	key := cacheKey(path, source)
	if v, ok := s.cache.Get(key); ok {
		return v.(*Document), nil
	}
	d, err := New(ctx, path, source)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, d, cache.DefaultExpiration)
	return d, nil
}

// Load reads path from disk and opens it.
func (s *Store) Load(ctx context.Context, path string) (*Document, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return s.Open(ctx, path, source)
}

// Len returns the number of cached documents.
func (s *Store) Len() int {
	return s.cache.ItemCount()
}

func cacheKey(path string, source []byte) string {
	h := fnv.New64a()
	_, _ = h.Write(source)
	return fmt.Sprintf("%s#%x", path, h.Sum64())
}
