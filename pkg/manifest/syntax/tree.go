// Package syntax builds a tolerant concrete syntax tree of a package
// manifest.
//
// The tree records only the shapes manifests are made of: calls with
// labeled arguments, array literals, string literals, identifiers and
// implicit member expressions (".package", ".macOS"). Everything else is
// kept as [Raw] text. Every node carries the byte span it was read from, so
// edits are made by splicing new text between spans of the original source.
//
// Parsing never fails. Unterminated constructs are closed at the point where
// input runs out or an enclosing closer appears, and stray closers are
// skipped.
package syntax

import "github.com/matzehuels/spmgraph/pkg/manifest/scan"

// Node is any element of the syntax tree.
type Node interface {
	Span() scan.Span
}

// String is a string literal.
type String struct {
	Value string // unescaped contents
	Raw   string // source text including quotes
	Pos   scan.Span
}

// Ident is a bare identifier such as "Package" or "let".
type Ident struct {
	Name string
	Pos  scan.Span
}

// Member is an implicit member expression: a dot followed by a name.
type Member struct {
	Name string
	Pos  scan.Span
}

// Raw is source text the parser does not interpret.
type Raw struct {
	Text string
	Pos  scan.Span
}

// Seq is a run of juxtaposed terms forming one value, for example a range
// expression like "1.0.0"..<"2.0.0".
type Seq struct {
	Nodes []Node
	Pos   scan.Span
}

// Call is a callee followed by a parenthesized argument list. A nil Callee
// means a bare parenthesized group.
type Call struct {
	Callee Node
	Args   []*Arg
	Open   int  // offset of "("
	Close  int  // offset of ")", or where parsing stopped
	Closed bool // whether ")" was found
	Pos    scan.Span
}

// Arg is one call argument with an optional label.
type Arg struct {
	Label string
	Value Node // nil when the label has no value
	Pos   scan.Span
}

// Array is a bracketed list literal.
type Array struct {
	Elems  []Node
	Open   int
	Close  int
	Closed bool
	Pos    scan.Span
}

func (n *String) Span() scan.Span { return n.Pos }
func (n *Ident) Span() scan.Span  { return n.Pos }
func (n *Member) Span() scan.Span { return n.Pos }
func (n *Raw) Span() scan.Span    { return n.Pos }
func (n *Seq) Span() scan.Span    { return n.Pos }
func (n *Call) Span() scan.Span   { return n.Pos }
func (n *Arg) Span() scan.Span    { return n.Pos }
func (n *Array) Span() scan.Span  { return n.Pos }

// Name returns the callee name: the identifier or member name, or "" for
// other callees.
func (c *Call) Name() string {
	switch n := c.Callee.(type) {
	case *Ident:
		return n.Name
	case *Member:
		return n.Name
	}
	return ""
}

// IsMember reports whether c is a call of the implicit member name, as in
// ".package(...)".
func (c *Call) IsMember(name string) bool {
	m, ok := c.Callee.(*Member)
	return ok && m.Name == name
}

// Inner returns the span between the parentheses.
func (c *Call) Inner() scan.Span { return scan.Span{Start: c.Open + 1, End: c.Close} }

// Arg returns the first argument with the given label.
func (c *Call) Arg(label string) *Arg {
	for _, a := range c.Args {
		if a.Label == label {
			return a
		}
	}
	return nil
}

// StringArg returns the value of a string-valued labeled argument.
func (c *Call) StringArg(label string) (string, bool) {
	if a := c.Arg(label); a != nil {
		if s, ok := a.Value.(*String); ok {
			return s.Value, true
		}
	}
	return "", false
}

// ArrayArg returns the array value of a labeled argument.
func (c *Call) ArrayArg(label string) (*Array, bool) {
	if a := c.Arg(label); a != nil {
		if arr, ok := a.Value.(*Array); ok {
			return arr, true
		}
	}
	return nil, false
}

// Inner returns the span between the brackets.
func (a *Array) Inner() scan.Span { return scan.Span{Start: a.Open + 1, End: a.Close} }

// Calls returns the array elements that are calls of the implicit member
// name.
func (a *Array) Calls(name string) []*Call {
	var out []*Call
	for _, e := range a.Elems {
		if c, ok := e.(*Call); ok && c.IsMember(name) {
			out = append(out, c)
		}
	}
	return out
}

// Strings returns the values of the string literal elements of a, skipping
// anything else.
func Strings(a *Array) []string {
	if a == nil {
		return nil
	}
	var out []string
	for _, e := range a.Elems {
		if s, ok := e.(*String); ok {
			out = append(out, s.Value)
		}
	}
	return out
}

// Walk visits n and its descendants in source order. When fn returns false
// the children of that node are skipped.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	switch n := n.(type) {
	case *Seq:
		for _, c := range n.Nodes {
			Walk(c, fn)
		}
	case *Call:
		if n.Callee != nil {
			Walk(n.Callee, fn)
		}
		for _, a := range n.Args {
			Walk(a, fn)
		}
	case *Arg:
		if n.Value != nil {
			Walk(n.Value, fn)
		}
	case *Array:
		for _, e := range n.Elems {
			Walk(e, fn)
		}
	}
}

// File is a parsed manifest.
type File struct {
	Src   string
	Nodes []Node
}

// Span covers the whole source.
func (f *File) Span() scan.Span { return scan.Span{Start: 0, End: len(f.Src)} }

// Package returns the first call of the identifier "Package", or nil.
func (f *File) Package() *Call {
	var found *Call
	f.walk(func(n Node) bool {
		if found != nil {
			return false
		}
		if c, ok := n.(*Call); ok {
			if id, ok := c.Callee.(*Ident); ok && id.Name == "Package" {
				found = c
				return false
			}
		}
		return true
	})
	return found
}

// Field returns the argument holding a top-level manifest field. Fields are
// taken from the Package call when there is one; otherwise the first
// argument with the label anywhere in the file whose value is accepted by
// accept (nil accepts any value) is returned.
func (f *File) Field(label string, accept func(Node) bool) *Arg {
	if pkg := f.Package(); pkg != nil {
		a := pkg.Arg(label)
		if a == nil || accept != nil && !accept(a.Value) {
			return nil
		}
		return a
	}
	var found *Arg
	f.walk(func(n Node) bool {
		if found != nil {
			return false
		}
		if a, ok := n.(*Arg); ok && a.Label == label && (accept == nil || accept(a.Value)) {
			found = a
			return false
		}
		return true
	})
	return found
}

// ArrayField returns the array value of a top-level field.
func (f *File) ArrayField(label string) (*Array, bool) {
	a := f.Field(label, func(n Node) bool {
		_, ok := n.(*Array)
		return ok
	})
	if a == nil {
		return nil, false
	}
	return a.Value.(*Array), true
}

func (f *File) walk(fn func(Node) bool) {
	for _, n := range f.Nodes {
		Walk(n, fn)
	}
}
