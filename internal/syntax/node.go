// Package syntax defines the closed set of syntax nodes the inference engine
// understands, builds them from tree-sitter Python trees, and indexes scopes
// and bindings for reference resolution.
//
// Trees are immutable once built and may be read from any number of
// goroutines.
package syntax

// Span is a half-open byte range [Start, End) in the document source.
type Span struct {
	Start uint32
	End   uint32
}

// Range returns the span itself; it lets every node embedding Span satisfy
// the Node interface.
func (s Span) Range() Span { return s }

// Contains reports whether off lies within the span.
func (s Span) Contains(off uint32) bool {
	return s.Start <= off && off < s.End
}

// Node is a syntax node. The set of implementations is closed: every
// variant lives in this file.
type Node interface {
	Range() Span
	Children() []Node
	isNode()
}

// LiteralKind is the kind of a literal expression.
type LiteralKind int

const (
	StringLit LiteralKind = iota
	IntLit
	FloatLit
	BoolLit
	ListLit
	DictLit
	TupleLit
	SetLit
)

var literalKindNames = [...]string{"string", "int", "float", "bool", "list", "dict", "tuple", "set"}

func (k LiteralKind) String() string {
	if int(k) < len(literalKindNames) {
		return literalKindNames[k]
	}
	return "literal"
}

// Module is the root of a file's tree.
type Module struct {
	Span
	Body []Node
}

// Literal is a constant or container display. Items holds the element nodes
// of list, tuple and set displays and the key/value pairs of dict displays.
// Comprehension is set for list/dict/set comprehensions, whose Items are the
// comprehension parts rather than elements.
type Literal struct {
	Span
	Kind          LiteralKind
	Text          string
	Items         []Node
	Comprehension bool
}

// Reference is a use of a name. Qualifier is the object of an attribute
// access (the self in self.x), nil for bare names.
type Reference struct {
	Span
	Name      string
	Qualifier Node
}

// BindingTarget is a name being bound, usually the left-hand side of an
// assignment. Annotation holds the declared type text, if any.
type BindingTarget struct {
	Span
	Name       string
	Qualifier  Node
	Annotation string
}

// Assignment binds Target to Value. Target is a *BindingTarget, or an *Other
// of kind "pattern" when unpacking. Value may be nil (annotation-only
// declarations, parameters without defaults).
type Assignment struct {
	Span
	Target Node
	Value  Node
}

// BinaryOp is a binary expression. Right may be nil in incomplete code.
type BinaryOp struct {
	Span
	Operator string
	Left     Node
	Right    Node
}

// Call is a call expression.
type Call struct {
	Span
	Callee Node
	Args   []Node
}

// FunctionDef is a def statement. Params are assignments whose value is the
// parameter default, if any.
type FunctionDef struct {
	Span
	Name     string
	NameSpan Span
	Params   []*Assignment
	Returns  string
	Body     []Node
}

// LambdaDef is a lambda expression.
type LambdaDef struct {
	Span
	Params []*Assignment
	Body   Node
}

// ClassDef is a class statement.
type ClassDef struct {
	Span
	Name     string
	NameSpan Span
	Bases    []Node
	Body     []Node
}

// Parenthesized is an expression wrapped in parentheses. Inner is nil for ().
type Parenthesized struct {
	Span
	Inner Node
}

// Other is any construct without a dedicated variant. Kind is the grammar
// node type; Nodes are its converted children.
type Other struct {
	Span
	Kind  string
	Nodes []Node
}

func (*Module) isNode()        {}
func (*Literal) isNode()       {}
func (*Reference) isNode()     {}
func (*BindingTarget) isNode() {}
func (*Assignment) isNode()    {}
func (*BinaryOp) isNode()      {}
func (*Call) isNode()          {}
func (*FunctionDef) isNode()   {}
func (*LambdaDef) isNode()     {}
func (*ClassDef) isNode()      {}
func (*Parenthesized) isNode() {}
func (*Other) isNode()         {}

func (n *Module) Children() []Node  { return compact(n.Body...) }
func (n *Literal) Children() []Node { return compact(n.Items...) }
func (n *Reference) Children() []Node {
	return compact(n.Qualifier)
}
func (n *BindingTarget) Children() []Node {
	return compact(n.Qualifier)
}
func (n *Assignment) Children() []Node { return compact(n.Target, n.Value) }
func (n *BinaryOp) Children() []Node   { return compact(n.Left, n.Right) }
func (n *Call) Children() []Node {
	return compact(append([]Node{n.Callee}, n.Args...)...)
}
func (n *FunctionDef) Children() []Node {
	return compact(append(params(n.Params), n.Body...)...)
}
func (n *LambdaDef) Children() []Node {
	return compact(append(params(n.Params), n.Body)...)
}
func (n *ClassDef) Children() []Node {
	return compact(append(append([]Node{}, n.Bases...), n.Body...)...)
}
func (n *Parenthesized) Children() []Node { return compact(n.Inner) }
func (n *Other) Children() []Node         { return compact(n.Nodes...) }

func params(ps []*Assignment) []Node {
	out := make([]Node, 0, len(ps))
	for _, p := range ps {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

// compact drops nil entries, including typed nil pointers.
func compact(nodes ...Node) []Node {
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if !isNil(n) {
			out = append(out, n)
		}
	}
	return out
}

func isNil(n Node) bool {
	switch v := n.(type) {
	case nil:
		return true
	case *Module:
		return v == nil
	case *Literal:
		return v == nil
	case *Reference:
		return v == nil
	case *BindingTarget:
		return v == nil
	case *Assignment:
		return v == nil
	case *BinaryOp:
		return v == nil
	case *Call:
		return v == nil
	case *FunctionDef:
		return v == nil
	case *LambdaDef:
		return v == nil
	case *ClassDef:
		return v == nil
	case *Parenthesized:
		return v == nil
	case *Other:
		return v == nil
	}
	return false
}

// PathAt returns the chain of nodes from root down to the innermost node
// whose span covers off. It returns nil when root does not cover off.
func PathAt(root Node, off uint32) []Node {
	if isNil(root) || !root.Range().Contains(off) {
		return nil
	}
	path := []Node{root}
	for n := root; ; {
		next := childAt(n, off)
		if next == nil {
			return path
		}
		path = append(path, next)
		n = next
	}
}

func childAt(n Node, off uint32) Node {
	for _, c := range n.Children() {
		if c.Range().Contains(off) {
			return c
		}
	}
	return nil
}

// Walk calls fn for n and every descendant in depth-first source order.
// Returning false from fn skips the node's children.
func Walk(n Node, fn func(Node) bool) {
	if isNil(n) || !fn(n) {
		return
	}
	for _, c := range n.Children() {
		Walk(c, fn)
	}
}
