package edit

import (
	"strings"

	"github.com/matzehuels/spmgraph/pkg/manifest/scan"
	"github.com/matzehuels/spmgraph/pkg/manifest/syntax"
)

const defaultIndent = "    "

// list is an array literal split into its top-level elements.
type list struct {
	open  int
	inner scan.Span
	elems []scan.Segment
}

func listOf(src string, a *syntax.Array) list {
	inner := a.Inner()
	segs := scan.Split(inner.Text(src))
	for i := range segs {
		segs[i].Span = segs[i].Span.Shift(inner.Start)
	}
	return list{open: a.Open, inner: inner, elems: segs}
}

// layout carries the formatting conventions observed in a file.
type layout struct {
	src     string
	unit    string
	newline string
}

func newLayout(src string) layout {
	l := layout{src: src, unit: indentUnit(src), newline: "\n"}
	if strings.Contains(src, "\r\n") {
		l.newline = "\r\n"
	}
	return l
}

// appendElement adds elem after the last element of l, following the
// line-per-element or inline style already in use. An empty array becomes
// a one-element block when block is set and an inline list otherwise.
func (lo layout) appendElement(l list, elem string, block bool) []splice {
	src := lo.src
	if len(l.elems) == 0 {
		return []splice{lo.fillEmpty(l, elem, block)}
	}

	last := l.elems[len(l.elems)-1]
	if !startsLine(src, last.Start) {
		return []splice{{scan.Span{Start: last.End, End: last.End}, ", " + elem}}
	}

	indent := lineIndent(src, last.Start)
	i := skipBlanks(src, last.End)
	trailing := i < l.inner.End && src[i] == ','
	if trailing {
		i = skipBlanks(src, i+1)
	}
	i = skipLineComment(src, i)
	if i < l.inner.End && isLineBreak(src[i]) {
		comma := ""
		if trailing {
			comma = ","
		}
		edits := []splice{{scan.Span{Start: i, End: i}, lo.newline + indent + elem + comma}}
		if !trailing {
			edits = append(edits, splice{scan.Span{Start: last.End, End: last.End}, ","})
		}
		return edits
	}
	return []splice{{scan.Span{Start: last.End, End: last.End}, "," + lo.newline + indent + elem}}
}

func (lo layout) fillEmpty(l list, elem string, block bool) splice {
	src := lo.src
	p := l.inner.End
	for p > l.inner.Start && isSpace(src[p-1]) {
		p--
	}
	span := scan.Span{Start: p, End: l.inner.End}
	if !block {
		if p > l.inner.Start {
			return splice{span, " " + elem}
		}
		return splice{scan.Span{Start: l.inner.Start, End: l.inner.End}, elem}
	}
	indent := lineIndent(src, l.open)
	return splice{span, lo.newline + indent + lo.unit + elem + lo.newline + indent}
}

// removeElements deletes the marked elements of l. Whole lines are removed
// for elements laid out one per line so the surrounding formatting stays
// intact.
func (lo layout) removeElements(l list, drop []bool) []splice {
	src := lo.src
	lastKept := -1
	for i := range l.elems {
		if !drop[i] {
			lastKept = i
		}
	}
	if lastKept < 0 {
		if len(l.elems) == 0 {
			return nil
		}
		return []splice{{l.inner, ""}}
	}

	var edits []splice
	for i := 0; i < lastKept; i++ {
		if !drop[i] {
			continue
		}
		e := l.elems[i]
		if end, ok := lineTail(src, e.End, l.inner.End); ok && startsLine(src, e.Start) {
			edits = append(edits, splice{scan.Span{Start: lineStart(src, e.Start), End: end}, ""})
			continue
		}
		edits = append(edits, splice{scan.Span{Start: e.Start, End: l.elems[i+1].Start}, ""})
	}

	if lastKept == len(l.elems)-1 {
		return edits
	}
	kept := l.elems[lastKept]
	first := l.elems[lastKept+1]
	last := l.elems[len(l.elems)-1]

	if !startsLine(src, first.Start) {
		return append(edits, splice{scan.Span{Start: kept.End, End: last.End}, ""})
	}

	start := lineStart(src, first.Start)
	if start > 0 && src[start-1] == '\n' {
		start--
		if start > 0 && src[start-1] == '\r' {
			start--
		}
	}
	end := last.End
	if j := skipBlanks(src, end); j < l.inner.End && src[j] == ',' {
		end = j + 1
	} else if j := skipBlanks(src, kept.End); j < l.inner.End && src[j] == ',' {
		edits = append(edits, splice{scan.Span{Start: j, End: j + 1}, ""})
	}
	return append(edits, splice{scan.Span{Start: start, End: end}, ""})
}

// lineTail returns the offset just past the line break that ends the line
// holding an element ending at pos, allowing a trailing comma and line
// comment in between.
func lineTail(src string, pos, limit int) (int, bool) {
	i := skipBlanks(src, pos)
	if i < limit && src[i] == ',' {
		i = skipBlanks(src, i+1)
	}
	i = skipLineComment(src, i)
	if i < limit && src[i] == '\r' {
		i++
	}
	if i < limit && src[i] == '\n' {
		return i + 1, true
	}
	return 0, false
}

func lineStart(src string, pos int) int {
	return strings.LastIndexByte(src[:pos], '\n') + 1
}

// startsLine reports whether only blanks precede pos on its line.
func startsLine(src string, pos int) bool {
	return strings.TrimLeft(src[lineStart(src, pos):pos], " \t") == ""
}

func lineIndent(src string, pos int) string {
	start := lineStart(src, pos)
	end := start
	for end < len(src) && (src[end] == ' ' || src[end] == '\t') {
		end++
	}
	return src[start:end]
}

// indentUnit returns the smallest indentation step used in src.
func indentUnit(src string) string {
	unit := ""
	for _, line := range strings.Split(src, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		switch {
		case indent == "":
			continue
		case indent[0] == '\t':
			return "\t"
		case unit == "" || len(indent) < len(unit):
			unit = indent
		}
	}
	if unit == "" || strings.Trim(unit, " ") != "" {
		return defaultIndent
	}
	return unit
}

func skipBlanks(src string, i int) int {
	for i < len(src) && (src[i] == ' ' || src[i] == '\t') {
		i++
	}
	return i
}

func skipLineComment(src string, i int) int {
	if strings.HasPrefix(src[i:], "//") {
		if j := strings.IndexByte(src[i:], '\n'); j >= 0 {
			i += j
			if i > 0 && src[i-1] == '\r' {
				i--
			}
			return i
		}
		return len(src)
	}
	return i
}

func isLineBreak(c byte) bool { return c == '\n' || c == '\r' }

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
