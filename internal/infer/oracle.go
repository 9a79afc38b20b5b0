package infer

import (
	"github.com/phobologic/varhint/internal/syntax"
)

// TypeOracle supplies a declared type for a reference when one is known,
// e.g. from an editor's static analysis. Declared types take precedence over
// structural inference for the queried name only.
type TypeOracle interface {
	DeclaredType(tree *syntax.Tree, ref *syntax.Reference) (string, bool)
}

// OracleFunc adapts a function to TypeOracle.
type OracleFunc func(tree *syntax.Tree, ref *syntax.Reference) (string, bool)

// DeclaredType calls f.
func (f OracleFunc) DeclaredType(tree *syntax.Tree, ref *syntax.Reference) (string, bool) {
	return f(tree, ref)
}

// AnnotationOracle reports the annotation written on the binding a reference
// resolves to, as in "x: list[int] = []" or "def f(a: int)".
type AnnotationOracle struct{}

// DeclaredType implements TypeOracle.
func (AnnotationOracle) DeclaredType(tree *syntax.Tree, ref *syntax.Reference) (string, bool) {
	if tree == nil || ref == nil {
		return "", false
	}
	t := tree.DeclaredType(tree.Resolve(ref))
	return t, t != ""
}

// Chain consults each oracle in order and returns the first declared type.
type Chain []TypeOracle

// DeclaredType implements TypeOracle.
func (c Chain) DeclaredType(tree *syntax.Tree, ref *syntax.Reference) (string, bool) {
	for _, o := range c {
		if o == nil {
			continue
		}
		if t, ok := o.DeclaredType(tree, ref); ok && t != "" {
			return t, true
		}
	}
	return "", false
}
