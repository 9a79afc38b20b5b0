// Package model defines core data structures for varhint.
package model

// Caret is a point in an open document. Line and Column are 1-based, Offset
// is a byte offset into the document source.
type Caret struct {
	Line   uint32
	Column uint32
	Offset uint32
}

// Label is a human-readable type label.
type Label string

// Type labels produced by inference.
const (
	Str            Label = "str"
	Int            Label = "int"
	Float          Label = "float"
	Bool           Label = "bool"
	List           Label = "list"
	Dict           Label = "dict"
	Tuple          Label = "tuple"
	Set            Label = "set"
	Function       Label = "function"
	Lambda         Label = "lambda function"
	ClassAttribute Label = "class attribute"
	FunctionCall   Label = "function call"
	Unknown        Label = "Unknown type"
)

// FunctionAssignment is the label for a name bound to a declared function.
func FunctionAssignment(name string) Label {
	return Label("function assignment - " + name)
}

// Placeholder texts shown instead of a type label.
const (
	Loading    = "Loading..."
	NoEditor   = "No editor open"
	NotPython  = "Not a Python file"
	NoElement  = "No element at caret"
	NoVariable = "No variable at caret"
)

// Binding is a single binding target found by a scan, with its inferred label.
type Binding struct {
	File   string
	Name   string
	Line   int
	Column int
	Scope  string
	Label  string
}

// FileBindings holds the bindings found in a single source file.
type FileBindings struct {
	Path     string
	Language string
	Bindings []Binding
}

// Report is the complete result of a scan, ready for serialization.
type Report struct {
	RepoName string
	Root     string
	Files    []FileBindings
}
