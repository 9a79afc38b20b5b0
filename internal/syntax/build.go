package syntax

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/varhint/internal/lang"
)

// Parse parses Python source and returns its indexed syntax tree. Syntax
// errors do not fail the parse; unparseable regions become Other nodes.
func Parse(ctx context.Context, source []byte) (*Tree, error) {
	py := lang.Languages[lang.Python]
	if py == nil {
		return nil, fmt.Errorf("python grammar not registered")
	}
	st, err := py.Parse(ctx, source)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	return NewTree(Build(st.RootNode(), source), source), nil
}

// Build converts a tree-sitter Python module into a syntax tree. The module
// span always covers the whole source.
func Build(root *sitter.Node, source []byte) *Module {
	b := &builder{source: source}
	m := &Module{Span: Span{Start: 0, End: uint32(len(source))}}
	if root != nil {
		m.Body = b.statements(root)
	}
	return m
}

type builder struct {
	source []byte
}

func (b *builder) text(n *sitter.Node) string {
	return lang.NodeText(n, b.source)
}

func sameNode(a, b *sitter.Node) bool {
	if a == nil || b == nil {
		return false
	}
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Type() == b.Type()
}

func span(n *sitter.Node) Span {
	return Span{Start: n.StartByte(), End: n.EndByte()}
}

// namedChildren returns the named children of n, skipping comments.
func namedChildren(n *sitter.Node) []*sitter.Node {
	var out []*sitter.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c == nil || c.Type() == "comment" {
			continue
		}
		out = append(out, c)
	}
	return out
}

// statements converts the statements of a module or block, flattening
// nested blocks.
func (b *builder) statements(n *sitter.Node) []Node {
	var out []Node
	for _, c := range namedChildren(n) {
		if c.Type() == "block" {
			out = append(out, b.statements(c)...)
			continue
		}
		if node := b.expr(c); node != nil {
			out = append(out, node)
		}
	}
	return out
}

func (b *builder) exprs(ns []*sitter.Node) []Node {
	out := make([]Node, 0, len(ns))
	for _, c := range ns {
		if node := b.expr(c); node != nil {
			out = append(out, node)
		}
	}
	return out
}

func (b *builder) other(n *sitter.Node) *Other {
	return &Other{Span: span(n), Kind: n.Type(), Nodes: b.exprs(namedChildren(n))}
}

func (b *builder) literal(n *sitter.Node, kind LiteralKind, items []Node) *Literal {
	return &Literal{Span: span(n), Kind: kind, Text: b.text(n), Items: items}
}

func (b *builder) comprehension(n *sitter.Node, kind LiteralKind) *Literal {
	lit := b.literal(n, kind, b.exprs(namedChildren(n)))
	lit.Comprehension = true
	return lit
}

// expr converts an expression or statement node.
func (b *builder) expr(n *sitter.Node) Node {
	if n == nil {
		return nil
	}
	switch n.Type() {
	case "comment":
		return nil
	case "expression_statement":
		kids := namedChildren(n)
		if len(kids) == 1 {
			return b.expr(kids[0])
		}
		return b.other(n)
	case "block":
		return &Other{Span: span(n), Kind: "block", Nodes: b.statements(n)}

	case "identifier":
		return &Reference{Span: span(n), Name: b.text(n)}
	case "attribute":
		obj := n.ChildByFieldName("object")
		attr := n.ChildByFieldName("attribute")
		if attr == nil {
			return b.other(n)
		}
		return &Reference{Span: span(n), Name: b.text(attr), Qualifier: b.expr(obj)}

	case "integer":
		return b.literal(n, IntLit, nil)
	case "float":
		return b.literal(n, FloatLit, nil)
	case "string", "concatenated_string":
		return b.literal(n, StringLit, nil)
	case "true", "false":
		return b.literal(n, BoolLit, nil)
	case "list":
		return b.literal(n, ListLit, b.exprs(namedChildren(n)))
	case "tuple", "expression_list":
		return b.literal(n, TupleLit, b.exprs(namedChildren(n)))
	case "set":
		return b.literal(n, SetLit, b.exprs(namedChildren(n)))
	case "dictionary":
		return b.literal(n, DictLit, b.exprs(namedChildren(n)))
	case "list_comprehension":
		return b.comprehension(n, ListLit)
	case "dictionary_comprehension":
		return b.comprehension(n, DictLit)
	case "set_comprehension":
		return b.comprehension(n, SetLit)
	case "unary_operator":
		return b.unary(n)

	case "parenthesized_expression":
		p := &Parenthesized{Span: span(n)}
		if kids := namedChildren(n); len(kids) > 0 {
			p.Inner = b.expr(kids[0])
		}
		return p
	case "binary_operator", "boolean_operator":
		op := n.ChildByFieldName("operator")
		bin := &BinaryOp{
			Span:  span(n),
			Left:  b.expr(n.ChildByFieldName("left")),
			Right: b.expr(n.ChildByFieldName("right")),
		}
		if op != nil {
			bin.Operator = op.Type()
		}
		return bin
	case "call":
		c := &Call{Span: span(n), Callee: b.expr(n.ChildByFieldName("function"))}
		if args := n.ChildByFieldName("arguments"); args != nil {
			if args.Type() == "argument_list" {
				c.Args = b.exprs(namedChildren(args))
			} else {
				c.Args = []Node{b.expr(args)}
			}
		}
		return c
	case "keyword_argument":
		// The keyword name is not a reference.
		return &Other{Span: span(n), Kind: n.Type(), Nodes: compact(b.expr(n.ChildByFieldName("value")))}

	case "assignment":
		return b.assignment(n)
	case "augmented_assignment":
		return b.augmented(n)
	case "function_definition":
		return b.function(n)
	case "lambda":
		return b.lambda(n)
	case "class_definition":
		return b.class(n)
	case "for_statement", "for_in_clause":
		return b.forLoop(n)
	case "as_pattern":
		return b.asPattern(n)
	case "import_statement", "import_from_statement", "dotted_name", "aliased_import":
		// Imported names are out of reach of single-file resolution.
		return &Other{Span: span(n), Kind: n.Type()}
	}
	return b.other(n)
}

// unary folds a signed numeric literal into the literal itself.
func (b *builder) unary(n *sitter.Node) Node {
	arg := n.ChildByFieldName("argument")
	op := n.ChildByFieldName("operator")
	if arg != nil && op != nil && (op.Type() == "-" || op.Type() == "+") {
		switch arg.Type() {
		case "integer":
			return b.literal(n, IntLit, nil)
		case "float":
			return b.literal(n, FloatLit, nil)
		}
	}
	return b.other(n)
}

func (b *builder) annotation(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return lang.CollapseWhitespace(b.text(n))
}

func (b *builder) assignment(n *sitter.Node) Node {
	a := &Assignment{
		Span:   span(n),
		Target: b.target(n.ChildByFieldName("left"), b.annotation(n.ChildByFieldName("type"))),
	}
	if right := n.ChildByFieldName("right"); right != nil {
		a.Value = b.expr(right)
	}
	return a
}

// augmented rewrites x op= v as x = x op v.
func (b *builder) augmented(n *sitter.Node) Node {
	left := n.ChildByFieldName("left")
	op := n.ChildByFieldName("operator")
	if left == nil || op == nil {
		return b.other(n)
	}
	return &Assignment{
		Span:   span(n),
		Target: b.target(left, ""),
		Value: &BinaryOp{
			Span:     span(n),
			Operator: strings.TrimSuffix(op.Type(), "="),
			Left:     b.expr(left),
			Right:    b.expr(n.ChildByFieldName("right")),
		},
	}
}

// target converts the left-hand side of a binding.
func (b *builder) target(n *sitter.Node, annotation string) Node {
	if n == nil {
		return nil
	}
	switch n.Type() {
	case "identifier":
		return &BindingTarget{Span: span(n), Name: b.text(n), Annotation: annotation}
	case "attribute":
		attr := n.ChildByFieldName("attribute")
		if attr == nil {
			return b.other(n)
		}
		return &BindingTarget{
			Span:       span(n),
			Name:       b.text(attr),
			Qualifier:  b.expr(n.ChildByFieldName("object")),
			Annotation: annotation,
		}
	case "pattern_list", "tuple_pattern", "list_pattern", "tuple", "list", "expression_list":
		var items []Node
		for _, c := range namedChildren(n) {
			if t := b.target(c, ""); t != nil {
				items = append(items, t)
			}
		}
		return &Other{Span: span(n), Kind: "pattern", Nodes: items}
	case "parenthesized_expression":
		if kids := namedChildren(n); len(kids) == 1 {
			return b.target(kids[0], annotation)
		}
	case "list_splat_pattern", "list_splat":
		if kids := namedChildren(n); len(kids) == 1 {
			return &Other{Span: span(n), Kind: n.Type(), Nodes: compact(b.target(kids[0], ""))}
		}
	}
	// Subscripts and other non-name targets bind nothing.
	return b.expr(n)
}

func (b *builder) params(n *sitter.Node) []*Assignment {
	if n == nil {
		return nil
	}
	var out []*Assignment
	for _, p := range namedChildren(n) {
		if a := b.param(p); a != nil {
			out = append(out, a)
		}
	}
	return out
}

func (b *builder) param(p *sitter.Node) *Assignment {
	var name, typ, value *sitter.Node
	switch p.Type() {
	case "identifier":
		name = p
	case "typed_parameter":
		for _, c := range namedChildren(p) {
			if c.Type() == "identifier" || c.Type() == "list_splat_pattern" || c.Type() == "dictionary_splat_pattern" {
				name = c
				break
			}
		}
		typ = p.ChildByFieldName("type")
	case "default_parameter":
		name = p.ChildByFieldName("name")
		value = p.ChildByFieldName("value")
	case "typed_default_parameter":
		name = p.ChildByFieldName("name")
		typ = p.ChildByFieldName("type")
		value = p.ChildByFieldName("value")
	case "list_splat_pattern", "dictionary_splat_pattern":
		name = p
	default:
		return nil
	}
	if name == nil {
		return nil
	}
	if name.Type() != "identifier" {
		kids := namedChildren(name)
		if len(kids) == 0 {
			return nil
		}
		name = kids[0]
	}
	a := &Assignment{
		Span:   span(p),
		Target: &BindingTarget{Span: span(name), Name: b.text(name), Annotation: b.annotation(typ)},
	}
	if value != nil {
		a.Value = b.expr(value)
	}
	return a
}

func (b *builder) function(n *sitter.Node) Node {
	fn := &FunctionDef{
		Span:    span(n),
		Params:  b.params(n.ChildByFieldName("parameters")),
		Returns: b.annotation(n.ChildByFieldName("return_type")),
	}
	if name := n.ChildByFieldName("name"); name != nil {
		fn.Name = b.text(name)
		fn.NameSpan = span(name)
	}
	if body := n.ChildByFieldName("body"); body != nil {
		fn.Body = b.statements(body)
	}
	return fn
}

func (b *builder) lambda(n *sitter.Node) Node {
	return &LambdaDef{
		Span:   span(n),
		Params: b.params(n.ChildByFieldName("parameters")),
		Body:   b.expr(n.ChildByFieldName("body")),
	}
}

func (b *builder) class(n *sitter.Node) Node {
	cls := &ClassDef{Span: span(n)}
	if name := n.ChildByFieldName("name"); name != nil {
		cls.Name = b.text(name)
		cls.NameSpan = span(name)
	}
	if bases := n.ChildByFieldName("superclasses"); bases != nil {
		cls.Bases = b.exprs(namedChildren(bases))
	}
	if body := n.ChildByFieldName("body"); body != nil {
		cls.Body = b.statements(body)
	}
	return cls
}

// forLoop keeps the loop variables as binding targets without a value.
func (b *builder) forLoop(n *sitter.Node) Node {
	loop := &Other{Span: span(n), Kind: n.Type()}
	left := n.ChildByFieldName("left")
	for _, c := range namedChildren(n) {
		if sameNode(c, left) {
			loop.Nodes = append(loop.Nodes, compact(b.target(c, ""))...)
			continue
		}
		if c.Type() == "block" {
			loop.Nodes = append(loop.Nodes, b.statements(c)...)
			continue
		}
		loop.Nodes = append(loop.Nodes, compact(b.expr(c))...)
	}
	return loop
}

// asPattern handles "with open(p) as f" and "except E as err".
func (b *builder) asPattern(n *sitter.Node) Node {
	out := &Other{Span: span(n), Kind: n.Type()}
	alias := n.ChildByFieldName("alias")
	for _, c := range namedChildren(n) {
		if sameNode(c, alias) {
			if kids := namedChildren(c); len(kids) == 1 {
				out.Nodes = append(out.Nodes, compact(b.target(kids[0], ""))...)
			} else {
				out.Nodes = append(out.Nodes, compact(b.target(c, ""))...)
			}
			continue
		}
		out.Nodes = append(out.Nodes, compact(b.expr(c))...)
	}
	return out
}
