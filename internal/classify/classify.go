// Package classify finds the variable a caret points at.
package classify

import (
	"github.com/phobologic/varhint/internal/syntax"
)

// Kind is the outcome of classifying a caret offset.
type Kind int

const (
	// NoElement means no syntax node covers the offset.
	NoElement Kind = iota
	// NoTarget means the offset is neither on a reference nor on a binding.
	NoTarget
	// Reference means the offset is on a use of a name.
	Reference
	// Binding means the offset is on a name being bound.
	Binding
)

func (k Kind) String() string {
	switch k {
	case NoElement:
		return "no-element"
	case NoTarget:
		return "no-target"
	case Reference:
		return "reference"
	case Binding:
		return "binding"
	}
	return "unknown"
}

// Result is a classified caret position. Node is a *syntax.Reference or a
// *syntax.BindingTarget when Kind is Reference or Binding.
type Result struct {
	Kind Kind
	Node syntax.Node
	// Path runs from the root to the innermost node at the offset.
	Path []syntax.Node
}

// Name returns the name of the classified variable, or "".
func (r Result) Name() string {
	switch n := r.Node.(type) {
	case *syntax.Reference:
		return n.Name
	case *syntax.BindingTarget:
		return n.Name
	}
	return ""
}

// Classify locates the innermost node covering offset and walks up to the
// nearest reference or binding target. References win over bindings at the
// same level.
func Classify(tree *syntax.Tree, offset uint32) Result {
	if tree == nil || tree.Root == nil {
		return Result{Kind: NoElement}
	}
	path := syntax.PathAt(tree.Root, offset)
	if len(path) == 0 {
		return Result{Kind: NoElement}
	}
	for i := len(path) - 1; i >= 0; i-- {
		switch n := path[i].(type) {
		case *syntax.Reference:
			return Result{Kind: Reference, Node: n, Path: path}
		case *syntax.BindingTarget:
			return Result{Kind: Binding, Node: n, Path: path}
		}
	}
	return Result{Kind: NoTarget, Path: path}
}
