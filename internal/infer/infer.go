// Package infer derives best-effort type labels for syntax nodes.
//
// Inference is structural: literals map to their kind, references follow
// their binding to the bound value, and binary operations apply numeric and
// string promotion. Anything that cannot be determined is model.Unknown;
// inference never fails.
package infer

import (
	"strings"

	"github.com/phobologic/varhint/internal/model"
	"github.com/phobologic/varhint/internal/syntax"
)

// DefaultMaxDepth bounds recursion through nested expressions and chains
// of references.
const DefaultMaxDepth = 64

// Engine infers labels for nodes of a single tree. An Engine holds no
// mutable state and may be used from several goroutines.
type Engine struct {
	tree     *syntax.Tree
	maxDepth int
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxDepth sets the recursion bound. Values below 1 are ignored.
func WithMaxDepth(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxDepth = n
		}
	}
}

// New returns an engine for tree.
func New(tree *syntax.Tree, opts ...Option) *Engine {
	e := &Engine{tree: tree, maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// walk tracks the bindings currently being inferred, to cut cycles such as
// x = x + 1 with no earlier x.
type walk struct {
	active map[*syntax.Binding]bool
}

// Infer returns the label for n.
func (e *Engine) Infer(n syntax.Node) model.Label {
	w := &walk{active: make(map[*syntax.Binding]bool)}
	return e.infer(n, 0, w)
}

func (e *Engine) infer(n syntax.Node, depth int, w *walk) model.Label {
	if depth > e.maxDepth {
		return model.Unknown
	}
	switch n := n.(type) {
	case nil:
		return model.Unknown
	case *syntax.Literal:
		return literal(n)
	case *syntax.BindingTarget:
		if e.tree == nil {
			return model.Unknown
		}
		return e.value(e.tree.BindingFor(n), depth+1, w)
	case *syntax.Reference:
		return e.reference(n, depth, w)
	case *syntax.BinaryOp:
		left := e.infer(n.Left, depth+1, w)
		right := e.infer(n.Right, depth+1, w)
		return promote(n.Operator, left, right)
	case *syntax.Call:
		if ref, ok := n.Callee.(*syntax.Reference); ok && e.tree != nil {
			if b := e.tree.Resolve(ref); b != nil && b.Function() != nil {
				return model.FunctionCall
			}
		}
		return model.Unknown
	case *syntax.FunctionDef:
		return model.Function
	case *syntax.LambdaDef:
		return model.Lambda
	case *syntax.Parenthesized:
		return e.infer(n.Inner, depth+1, w)
	case *syntax.Assignment:
		if lit, ok := n.Value.(*syntax.Literal); ok && lit.Kind == syntax.TupleLit {
			return model.Tuple
		}
		return e.infer(n.Value, depth+1, w)
	case *syntax.ClassDef, *syntax.Module, *syntax.Other:
		return model.Unknown
	}
	return model.Unknown
}

func (e *Engine) reference(ref *syntax.Reference, depth int, w *walk) model.Label {
	if e.tree == nil || ref == nil {
		return model.Unknown
	}
	b := e.tree.Resolve(ref)
	if b == nil {
		return model.Unknown
	}
	if fn := b.Function(); fn != nil {
		return model.FunctionAssignment(fn.Name)
	}
	if b.InClassBody() {
		return model.ClassAttribute
	}
	return e.value(b, depth+1, w)
}

// value infers the value bound by b, picking the matching element when the
// binding unpacks a tuple or list display of the same arity.
func (e *Engine) value(b *syntax.Binding, depth int, w *walk) model.Label {
	if b == nil || b.Assignment == nil || depth > e.maxDepth {
		return model.Unknown
	}
	if w.active[b] {
		return model.Unknown
	}
	w.active[b] = true
	defer delete(w.active, b)

	a := b.Assignment
	if b.Index < 0 && b.Arity == 0 {
		return e.infer(a.Value, depth+1, w)
	}
	if lit, ok := unwrap(a.Value).(*syntax.Literal); ok && b.Index >= 0 && !lit.Comprehension &&
		(lit.Kind == syntax.TupleLit || lit.Kind == syntax.ListLit) && len(lit.Items) == b.Arity {
		return e.infer(lit.Items[b.Index], depth+1, w)
	}
	return e.infer(a, depth+1, w)
}

func unwrap(n syntax.Node) syntax.Node {
	for {
		p, ok := n.(*syntax.Parenthesized)
		if !ok || p == nil {
			return n
		}
		n = p.Inner
	}
}

func literal(lit *syntax.Literal) model.Label {
	switch lit.Kind {
	case syntax.StringLit:
		return model.Str
	case syntax.IntLit:
		// Numeric literals are told apart by their source text.
		if strings.Contains(lit.Text, ".") {
			return model.Float
		}
		return model.Int
	case syntax.FloatLit:
		return model.Float
	case syntax.BoolLit:
		return model.Bool
	case syntax.ListLit:
		return model.List
	case syntax.DictLit:
		return model.Dict
	case syntax.TupleLit:
		return model.Tuple
	case syntax.SetLit:
		return model.Set
	}
	return model.Unknown
}

// promote applies the arithmetic promotion rules: str wins over float, float
// wins over int, and any other pair of operands is int.
func promote(op string, left, right model.Label) model.Label {
	switch op {
	case "+", "-", "*", "/", "//":
	default:
		return model.Unknown
	}
	switch {
	case left == model.Str || right == model.Str:
		return model.Str
	case left == model.Float || right == model.Float:
		return model.Float
	}
	return model.Int
}
