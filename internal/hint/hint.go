// Package hint answers caret queries: which variable is under the caret and
// what its type label is.
package hint

import (
	"io"
	"log"

	"github.com/phobologic/varhint/internal/classify"
	"github.com/phobologic/varhint/internal/document"
	"github.com/phobologic/varhint/internal/infer"
	"github.com/phobologic/varhint/internal/lang"
	"github.com/phobologic/varhint/internal/model"
	"github.com/phobologic/varhint/internal/syntax"
)

// Analyzer turns a document and caret offset into display text. It is safe
// for concurrent use.
type Analyzer struct {
	oracle   infer.TypeOracle
	maxDepth int
	logger   *log.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithOracle sets the declared-type oracle. Pass nil to disable declared
// types entirely.
func WithOracle(o infer.TypeOracle) Option {
	return func(a *Analyzer) { a.oracle = o }
}

// WithMaxDepth sets the inference recursion bound.
func WithMaxDepth(n int) Option {
	return func(a *Analyzer) { a.maxDepth = n }
}

// WithLogger sets the logger used to report recovered failures.
func WithLogger(l *log.Logger) Option {
	return func(a *Analyzer) {
		if l != nil {
			a.logger = l
		}
	}
}

// New returns an Analyzer that reads declared types from annotations.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		oracle:   infer.AnnotationOracle{},
		maxDepth: infer.DefaultMaxDepth,
		logger:   log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Describe returns the text to display for the caret at offset in doc:
// "<name>: <type>" for a variable, or one of the placeholder texts.
func (a *Analyzer) Describe(doc *document.Document, offset uint32) (text string) {
	if doc == nil {
		return model.NoEditor
	}
	if doc.Language != lang.Python || doc.Tree == nil {
		return model.NotPython
	}

	res := classify.Classify(doc.Tree, offset)
	switch res.Kind {
	case classify.NoElement:
		return model.NoElement
	case classify.NoTarget:
		return model.NoVariable
	}

	name := res.Name()
	defer func() {
		if r := recover(); r != nil {
			a.logger.Printf("inference for %q in %s at %d: %v", name, doc.Path, offset, r)
			text = format(name, string(model.Unknown))
		}
	}()

	if ref, ok := res.Node.(*syntax.Reference); ok && a.oracle != nil {
		if declared, ok := a.oracle.DeclaredType(doc.Tree, ref); ok {
			return format(name, declared)
		}
	}
	return format(name, string(a.Label(doc.Tree, res.Node)))
}

// Label infers the label for a single node of tree.
func (a *Analyzer) Label(tree *syntax.Tree, n syntax.Node) model.Label {
	return infer.New(tree, infer.WithMaxDepth(a.maxDepth)).Infer(n)
}

func format(name, label string) string {
	return name + ": " + label
}
