package syntax

import (
	"sort"
)

// ScopeKind is the kind of a name scope.
type ScopeKind int

const (
	ModuleScope ScopeKind = iota
	ClassScope
	FunctionScope
	LambdaScope
	ComprehensionScope
)

// Scope is a region in which names are bound.
type Scope struct {
	Kind   ScopeKind
	Name   string // qualified name, e.g. "module", "User", "User.save"
	Owner  Node
	Parent *Scope

	bindings []*Binding
	attrs    []*Binding // class scopes only: class-level names and self.x targets
}

// Binding is a single place where a name gets bound: a binding target, or a
// function or class declaration.
type Binding struct {
	Name string

	// Target is the bound name node; nil for declarations.
	Target *BindingTarget
	// Decl is the *FunctionDef or *ClassDef for declarations.
	Decl Node
	// Assignment is the statement binding Target, if any.
	Assignment *Assignment
	// Index is Target's position in an unpacking pattern of Arity names, or
	// -1 when Target is the whole left-hand side.
	Index int
	Arity int

	Scope *Scope
	// Attribute is set for class-level names and self.x style targets.
	Attribute bool

	end uint32
}

// Function returns the declared function, or nil.
func (b *Binding) Function() *FunctionDef {
	fn, _ := b.Decl.(*FunctionDef)
	return fn
}

// Class returns the declared class, or nil.
func (b *Binding) Class() *ClassDef {
	cls, _ := b.Decl.(*ClassDef)
	return cls
}

// InClassBody reports whether the binding is an attribute of a class rather
// than a local or module variable.
func (b *Binding) InClassBody() bool {
	return b.Attribute
}

// Pos returns the start offset of the bound name.
func (b *Binding) Pos() uint32 {
	if b.Target != nil {
		return b.Target.Start
	}
	switch d := b.Decl.(type) {
	case *FunctionDef:
		return d.NameSpan.Start
	case *ClassDef:
		return d.NameSpan.Start
	}
	return 0
}

// Tree is an indexed syntax tree for a single file. It is immutable after
// construction.
type Tree struct {
	Root   *Module
	Source []byte

	module     *Scope
	scopeOf    map[Node]*Scope
	bindingOf  map[*BindingTarget]*Binding
	classScope map[*ClassDef]*Scope
	all        []*Binding
	lines      *Lines
}

// NewTree indexes root. Source may be nil for trees built by hand.
func NewTree(root *Module, source []byte) *Tree {
	if root == nil {
		root = &Module{}
	}
	t := &Tree{
		Root:       root,
		Source:     source,
		scopeOf:    make(map[Node]*Scope),
		bindingOf:  make(map[*BindingTarget]*Binding),
		classScope: make(map[*ClassDef]*Scope),
		lines:      NewLines(source),
	}
	t.module = &Scope{Kind: ModuleScope, Name: "module", Owner: root}
	ix := &indexer{tree: t}
	for _, n := range root.Body {
		ix.walk(n, t.module)
	}
	sort.SliceStable(t.all, func(i, j int) bool { return t.all[i].Pos() < t.all[j].Pos() })
	return t
}

// Module returns the module scope.
func (t *Tree) Module() *Scope {
	return t.module
}

// ScopeOf returns the scope a reference, binding target or definition lives in.
func (t *Tree) ScopeOf(n Node) *Scope {
	return t.scopeOf[n]
}

// BindingFor returns the binding introduced by target.
func (t *Tree) BindingFor(target *BindingTarget) *Binding {
	return t.bindingOf[target]
}

// Bindings returns every binding target in the tree in source order.
func (t *Tree) Bindings() []*Binding {
	out := make([]*Binding, 0, len(t.all))
	for _, b := range t.all {
		if b.Target != nil {
			out = append(out, b)
		}
	}
	return out
}

// Resolve returns the binding a reference refers to, or nil. Bare names are
// looked up from the innermost scope outward; class bodies are skipped when
// the lookup starts inside a function. Attribute references on self, cls or
// the class name resolve against the enclosing class.
func (t *Tree) Resolve(ref *Reference) *Binding {
	scope := t.scopeOf[ref]
	if ref == nil || scope == nil {
		return nil
	}
	if ref.Qualifier != nil {
		return t.resolveAttribute(ref, scope)
	}
	return lookup(scope, ref.Name, ref.Start)
}

func lookup(start *Scope, name string, before uint32) *Binding {
	for s := start; s != nil; s = s.Parent {
		if s.Kind == ClassScope && s != start {
			continue
		}
		if b := find(s.bindings, name, before); b != nil {
			return b
		}
	}
	return nil
}

// find returns the last binding of name that is complete before the given
// offset, or failing that the last binding of name at all.
func find(bindings []*Binding, name string, before uint32) *Binding {
	var last, lastBefore *Binding
	for _, b := range bindings {
		if b.Name != name {
			continue
		}
		last = b
		if b.end <= before {
			lastBefore = b
		}
	}
	if lastBefore != nil {
		return lastBefore
	}
	return last
}

func (t *Tree) resolveAttribute(ref *Reference, scope *Scope) *Binding {
	cls := t.qualifierClass(ref.Qualifier, scope)
	if cls == nil {
		return nil
	}
	return find(cls.attrs, ref.Name, ref.Start)
}

// qualifierClass returns the class scope a qualifier denotes: self or cls
// inside a method, or a class name.
func (t *Tree) qualifierClass(q Node, scope *Scope) *Scope {
	ref, ok := q.(*Reference)
	if !ok || ref.Qualifier != nil {
		return nil
	}
	if ref.Name == "self" || ref.Name == "cls" {
		return enclosingClass(scope)
	}
	if b := lookup(scope, ref.Name, ref.Start); b != nil {
		if cls := b.Class(); cls != nil {
			return t.classScope[cls]
		}
	}
	return nil
}

// enclosingClass returns the class whose method body contains scope.
func enclosingClass(scope *Scope) *Scope {
	for s := scope; s != nil; s = s.Parent {
		if s.Kind == ClassScope {
			return s
		}
		if s.Kind == ModuleScope {
			return nil
		}
	}
	return nil
}

// DeclaredType returns the annotation declared for b's name in b's scope,
// looking at every binding of the name since annotations hold scope-wide.
func (t *Tree) DeclaredType(b *Binding) string {
	if b == nil || b.Target == nil {
		return ""
	}
	if b.Target.Annotation != "" {
		return b.Target.Annotation
	}
	list := b.Scope.bindings
	if b.Attribute {
		if cls := enclosingClass(b.Scope); cls != nil {
			list = cls.attrs
		}
	}
	for _, other := range list {
		if other.Name == b.Name && other.Target != nil && other.Target.Annotation != "" {
			return other.Target.Annotation
		}
	}
	return ""
}

// Position converts a byte offset into a 1-based line and rune column.
func (t *Tree) Position(off uint32) (line, col int) {
	return t.lines.Position(off)
}

type indexer struct {
	tree *Tree
}

func (ix *indexer) newScope(kind ScopeKind, name string, owner Node, parent *Scope) *Scope {
	qualified := name
	if parent != nil && parent.Kind != ModuleScope {
		qualified = parent.Name + "." + name
	}
	return &Scope{Kind: kind, Name: qualified, Owner: owner, Parent: parent}
}

func (ix *indexer) add(scope *Scope, b *Binding) {
	b.Scope = scope
	ix.tree.all = append(ix.tree.all, b)
	if b.Target != nil {
		ix.tree.bindingOf[b.Target] = b
		ix.tree.scopeOf[b.Target] = scope
	}
	if b.Target != nil && b.Target.Qualifier != nil {
		// self.x = v inside a method binds an attribute of the class.
		if cls := enclosingClass(scope); cls != nil && scope.Kind != ClassScope && isSelf(b.Target.Qualifier) {
			b.Attribute = true
			cls.attrs = append(cls.attrs, b)
		}
		return
	}
	scope.bindings = append(scope.bindings, b)
	if scope.Kind == ClassScope {
		b.Attribute = b.Decl == nil
		scope.attrs = append(scope.attrs, b)
	}
}

func isSelf(q Node) bool {
	ref, ok := q.(*Reference)
	return ok && ref.Qualifier == nil && (ref.Name == "self" || ref.Name == "cls")
}

func (ix *indexer) walk(n Node, scope *Scope) {
	switch n := n.(type) {
	case nil:
		return
	case *Assignment:
		ix.bindTargets(n.Target, n, scope)
		ix.walk(n.Value, scope)
	case *BindingTarget:
		ix.add(scope, &Binding{Name: n.Name, Target: n, Index: -1, end: n.End})
		ix.walk(n.Qualifier, scope)
	case *Reference:
		ix.tree.scopeOf[n] = scope
		ix.walk(n.Qualifier, scope)
	case *FunctionDef:
		ix.tree.scopeOf[n] = scope
		ix.add(scope, &Binding{Name: n.Name, Decl: n, Index: -1, end: n.NameSpan.End})
		inner := ix.newScope(FunctionScope, n.Name, n, scope)
		ix.params(n.Params, scope, inner)
		for _, s := range n.Body {
			ix.walk(s, inner)
		}
	case *LambdaDef:
		ix.tree.scopeOf[n] = scope
		inner := ix.newScope(LambdaScope, "<lambda>", n, scope)
		ix.params(n.Params, scope, inner)
		ix.walk(n.Body, inner)
	case *Literal:
		if n.Comprehension {
			ix.comprehension(n, n.Items, scope)
			return
		}
		for _, c := range n.Items {
			ix.walk(c, scope)
		}
	case *Other:
		if n.Kind == "generator_expression" {
			ix.comprehension(n, n.Nodes, scope)
			return
		}
		for _, c := range n.Nodes {
			ix.walk(c, scope)
		}
	case *ClassDef:
		ix.tree.scopeOf[n] = scope
		ix.add(scope, &Binding{Name: n.Name, Decl: n, Index: -1, end: n.NameSpan.End})
		for _, base := range n.Bases {
			ix.walk(base, scope)
		}
		inner := ix.newScope(ClassScope, n.Name, n, scope)
		ix.tree.classScope[n] = inner
		for _, s := range n.Body {
			ix.walk(s, inner)
		}
	default:
		for _, c := range n.Children() {
			ix.walk(c, scope)
		}
	}
}

// comprehension binds loop variables in a scope of their own so they do not
// leak into the enclosing one. The iterable of the first for clause is
// evaluated in the enclosing scope.
func (ix *indexer) comprehension(owner Node, parts []Node, outer *Scope) {
	ix.tree.scopeOf[owner] = outer
	inner := ix.newScope(ComprehensionScope, "<comprehension>", owner, outer)
	first := true
	for _, part := range parts {
		clause, ok := part.(*Other)
		if !ok || clause.Kind != "for_in_clause" {
			ix.walk(part, inner)
			continue
		}
		for i, c := range clause.Nodes {
			if i > 0 && first {
				ix.walk(c, outer)
				continue
			}
			ix.walk(c, inner)
		}
		first = false
	}
}

// params binds parameter names in the function scope; defaults are
// evaluated in the enclosing scope.
func (ix *indexer) params(ps []*Assignment, outer, inner *Scope) {
	for _, p := range ps {
		if p == nil {
			continue
		}
		ix.bindTargets(p.Target, p, inner)
		ix.walk(p.Value, outer)
	}
}

func (ix *indexer) bindTargets(target Node, a *Assignment, scope *Scope) {
	switch t := target.(type) {
	case *BindingTarget:
		ix.add(scope, &Binding{Name: t.Name, Target: t, Assignment: a, Index: -1, end: a.End})
		ix.walk(t.Qualifier, scope)
	case *Other:
		if t.Kind != "pattern" {
			ix.walk(t, scope)
			return
		}
		for i, item := range t.Nodes {
			if bt, ok := item.(*BindingTarget); ok {
				ix.add(scope, &Binding{Name: bt.Name, Target: bt, Assignment: a, Index: i, Arity: len(t.Nodes), end: a.End})
				ix.walk(bt.Qualifier, scope)
				continue
			}
			// Nested or starred patterns: bound, but without a position.
			Walk(item, func(n Node) bool {
				if bt, ok := n.(*BindingTarget); ok {
					ix.add(scope, &Binding{Name: bt.Name, Target: bt, Assignment: a, Index: -1, Arity: -1, end: a.End})
					ix.walk(bt.Qualifier, scope)
					return false
				}
				if ref, ok := n.(*Reference); ok {
					ix.tree.scopeOf[ref] = scope
				}
				return true
			})
		}
	default:
		ix.walk(target, scope)
	}
}
