package syntax

import "github.com/matzehuels/spmgraph/pkg/manifest/scan"

// Parse reads src into a syntax tree. It never fails.
func Parse(src string) *File {
	p := &parser{src: src, toks: Lex(src)}
	f := &File{Src: src}
	for !p.at(TokEOF) {
		if p.closer() || p.peek().Is(",") {
			p.next()
			continue
		}
		a := p.arg()
		if a.Label == "" {
			f.Nodes = append(f.Nodes, a.Value)
			continue
		}
		f.Nodes = append(f.Nodes, a)
	}
	return f
}

type parser struct {
	src  string
	toks []Token
	pos  int
}

func (p *parser) peek() Token { return p.toks[p.pos] }

func (p *parser) peekAt(k int) Token {
	if p.pos+k >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+k]
}

func (p *parser) next() Token {
	t := p.toks[p.pos]
	if t.Kind != TokEOF {
		p.pos++
	}
	return t
}

func (p *parser) at(k Kind) bool { return p.peek().Kind == k }

func (p *parser) closer() bool {
	t := p.peek()
	return t.Is(")") || t.Is("]")
}

// stop reports whether the current token ends a value.
func (p *parser) stop() bool {
	t := p.peek()
	return t.Kind == TokEOF || t.Is(",") || t.Is(")") || t.Is("]")
}

// value reads juxtaposed terms up to a separator or closer. It returns nil
// when no term is present.
func (p *parser) value() Node {
	var terms []Node
	for !p.stop() {
		terms = append(terms, p.term())
	}
	switch len(terms) {
	case 0:
		return nil
	case 1:
		return terms[0]
	}
	return &Seq{Nodes: terms, Pos: scan.Span{Start: terms[0].Span().Start, End: terms[len(terms)-1].Span().End}}
}

// term reads one primary expression and any call suffixes. It always
// consumes at least one token.
func (p *parser) term() Node {
	t := p.next()
	var n Node
	switch {
	case t.Kind == TokString:
		n = &String{Value: t.Value, Raw: t.Text, Pos: t.Span}
	case t.Kind == TokIdent:
		n = &Ident{Name: t.Text, Pos: t.Span}
	case t.Is(".") && p.at(TokIdent) && p.peek().Span.Start == t.Span.End:
		name := p.next()
		n = &Member{Name: name.Text, Pos: scan.Span{Start: t.Span.Start, End: name.Span.End}}
	case t.Is("["):
		n = p.array(t)
	case t.Is("("):
		n = p.call(nil, t)
	default:
		n = &Raw{Text: t.Text, Pos: t.Span}
	}

	for p.peek().Is("(") && callable(n) {
		n = p.call(n, p.next())
	}
	return n
}

func callable(n Node) bool {
	switch n.(type) {
	case *Ident, *Member, *Call:
		return true
	}
	return false
}

func (p *parser) call(callee Node, open Token) *Call {
	c := &Call{Callee: callee, Open: open.Span.Start}
	start := open.Span.Start
	if callee != nil {
		start = callee.Span().Start
	}
	for {
		t := p.peek()
		switch {
		case t.Is(")"):
			p.next()
			c.Close, c.Closed = t.Span.Start, true
			c.Pos = scan.Span{Start: start, End: t.Span.End}
			return c
		case t.Kind == TokEOF || t.Is("]"):
			c.Close = t.Span.Start
			c.Pos = scan.Span{Start: start, End: t.Span.Start}
			return c
		case t.Is(","):
			p.next()
		default:
			c.Args = append(c.Args, p.arg())
		}
	}
}

func (p *parser) arg() *Arg {
	a := &Arg{}
	start := p.peek().Span.Start
	end := start
	if p.at(TokIdent) && p.peekAt(1).Is(":") {
		a.Label = p.next().Text
		end = p.next().Span.End
	}
	a.Value = p.value()
	if a.Value != nil {
		end = a.Value.Span().End
	}
	a.Pos = scan.Span{Start: start, End: end}
	return a
}

func (p *parser) array(open Token) *Array {
	a := &Array{Open: open.Span.Start}
	for {
		t := p.peek()
		switch {
		case t.Is("]"):
			p.next()
			a.Close, a.Closed = t.Span.Start, true
			a.Pos = scan.Span{Start: open.Span.Start, End: t.Span.End}
			return a
		case t.Kind == TokEOF || t.Is(")"):
			a.Close = t.Span.Start
			a.Pos = scan.Span{Start: open.Span.Start, End: t.Span.Start}
			return a
		case t.Is(","):
			p.next()
		default:
			if n := p.value(); n != nil {
				a.Elems = append(a.Elems, n)
			}
		}
	}
}
