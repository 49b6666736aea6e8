// Package scan implements character-level structural scanning of package
// manifests.
//
// The scanner understands just enough of the manifest language to be safe:
// double-quoted string literals with backslash escapes, line and block
// comments, and bracket/parenthesis nesting. It offers two operations:
//
//   - [Block] locates the bracketed array that follows a field label such as
//     "dependencies:" and returns the span of its contents.
//   - [Split] walks an array body and cuts it into declarations at the
//     top-level commas, so that ".package(url: "a", from: "1.0.0")" is never
//     split at its inner comma.
//
// All positions are byte offsets into the scanned text, so callers can splice
// edits into the original source without disturbing anything else.
package scan

import "strings"

// Span is a half-open byte range [Start, End) into a source text.
type Span struct {
	Start int
	End   int
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int { return s.End - s.Start }

// Text returns the covered substring of src.
func (s Span) Text(src string) string { return src[s.Start:s.End] }

// Shift returns the span moved by offset bytes.
func (s Span) Shift(offset int) Span { return Span{s.Start + offset, s.End + offset} }

// Segment is one declaration produced by [Split]. Its span excludes
// surrounding whitespace, comments and separators.
type Segment struct {
	Span
	Text string
}

// Block finds the first "label:" outside string literals and comments that
// is followed by a bracketed array, and returns the span of the array
// contents (between, not including, the brackets). Occurrences of the label
// that are followed by something other than "[" are skipped. It reports
// false when no such array exists or the array is never closed.
func Block(src, label string) (Span, bool) {
	for i := 0; i < len(src); {
		if j, ok := SkipLiteral(src, i); ok {
			i = j
			continue
		}
		if isLabelAt(src, i, label) {
			j := skipSpace(src, i+len(label))
			if j < len(src) && src[j] == ':' {
				j = skipSpace(src, j+1)
				if j < len(src) && src[j] == '[' {
					end, ok := matchClose(src, j)
					if !ok {
						return Span{}, false
					}
					return Span{Start: j + 1, End: end}, true
				}
			}
		}
		i++
	}
	return Span{}, false
}

// Split cuts src into top-level declarations. A declaration ends wherever
// nesting depth returns to zero at a comma, or at the end of input. Commas
// inside parentheses, brackets, string literals and comments never split.
// Empty input yields no segments; an unterminated trailing declaration is
// returned as-is.
func Split(src string) []Segment {
	var segs []Segment
	depth := 0
	first, last := -1, -1

	emit := func() {
		if first >= 0 {
			segs = append(segs, Segment{Span: Span{first, last}, Text: src[first:last]})
		}
		first, last = -1, -1
	}

	for i := 0; i < len(src); {
		if j, ok := SkipLiteral(src, i); ok {
			if src[i] == '"' {
				if first < 0 {
					first = i
				}
				last = j
			}
			i = j
			continue
		}

		c := src[i]
		switch {
		case c == ',' && depth == 0:
			emit()
			i++
			continue
		case c == '(' || c == '[':
			depth++
		case c == ')' || c == ']':
			if depth > 0 {
				depth--
			}
		case isSpace(c):
			i++
			continue
		}
		if first < 0 {
			first = i
		}
		last = i + 1
		i++
	}
	emit()
	return segs
}

// SplitDeclarations returns the text of each declaration in src.
func SplitDeclarations(src string) []string {
	segs := Split(src)
	out := make([]string, len(segs))
	for i, s := range segs {
		out[i] = s.Text
	}
	return out
}

// matchClose returns the index of the bracket closing the one at open.
// The opening byte must be '(' or '['. Only brackets of the same kind are
// counted; literals and comments are skipped.
func matchClose(src string, open int) (int, bool) {
	o := src[open]
	var c byte
	switch o {
	case '(':
		c = ')'
	case '[':
		c = ']'
	default:
		return 0, false
	}

	depth := 0
	for i := open; i < len(src); {
		if j, ok := SkipLiteral(src, i); ok {
			i = j
			continue
		}
		switch src[i] {
		case o:
			depth++
		case c:
			depth--
			if depth == 0 {
				return i, true
			}
		}
		i++
	}
	return 0, false
}

// SkipLiteral reports whether a string literal or comment starts at i and,
// if so, returns the index just past it. Unterminated literals extend to the
// end of src.
func SkipLiteral(src string, i int) (int, bool) {
	rest := src[i:]
	switch {
	case rest[0] == '"':
		return skipString(src, i), true
	case strings.HasPrefix(rest, "//"):
		if j := strings.IndexByte(rest, '\n'); j >= 0 {
			return i + j, true
		}
		return len(src), true
	case strings.HasPrefix(rest, "/*"):
		if j := strings.Index(rest[2:], "*/"); j >= 0 {
			return i + 2 + j + 2, true
		}
		return len(src), true
	}
	return i, false
}

// skipSpace returns the first index at or after i that is neither
// whitespace nor part of a comment.
func skipSpace(src string, i int) int {
	for i < len(src) {
		if isSpace(src[i]) {
			i++
			continue
		}
		if src[i] != '"' {
			if j, ok := SkipLiteral(src, i); ok {
				i = j
				continue
			}
		}
		break
	}
	return i
}

func skipString(src string, i int) int {
	for j := i + 1; j < len(src); j++ {
		switch src[j] {
		case '\\':
			j++
		case '"':
			return j + 1
		}
	}
	return len(src)
}

func isLabelAt(src string, i int, label string) bool {
	if !strings.HasPrefix(src[i:], label) {
		return false
	}
	if i > 0 && isIdentByte(src[i-1]) {
		return false
	}
	end := i + len(label)
	return end >= len(src) || !isIdentByte(src[end])
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

func isIdentByte(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
