package syntax

import (
	"strings"

	"github.com/matzehuels/spmgraph/pkg/manifest/scan"
)

// Kind classifies a token.
type Kind int

const (
	TokEOF Kind = iota
	TokIdent
	TokString
	TokPunct
	TokOther
)

func (k Kind) String() string {
	switch k {
	case TokEOF:
		return "EOF"
	case TokIdent:
		return "Ident"
	case TokString:
		return "String"
	case TokPunct:
		return "Punct"
	default:
		return "Other"
	}
}

// Token is a lexical unit. Text is the raw source slice; for strings Value
// holds the unescaped contents.
type Token struct {
	Kind  Kind
	Text  string
	Value string
	Span  scan.Span
}

// Is reports whether t is the punctuation p.
func (t Token) Is(p string) bool {
	return t.Kind == TokPunct && t.Text == p
}

const punctuation = ".()[]:,"

// Lex splits src into tokens, dropping whitespace and comments. The last
// token is always EOF. Lexing never fails: unterminated strings and comments
// run to the end of input.
func Lex(src string) []Token {
	var toks []Token
	for i := 0; i < len(src); {
		c := src[i]
		switch {
		case isSpace(c):
			i++
		case strings.HasPrefix(src[i:], "//") || strings.HasPrefix(src[i:], "/*"):
			j, _ := scan.SkipLiteral(src, i)
			i = j
		case c == '"':
			j := lexString(src, i)
			toks = append(toks, stringToken(src, i, j))
			i = j
		case isIdentStart(c):
			j := i + 1
			for j < len(src) && isIdentByte(src[j]) {
				j++
			}
			toks = append(toks, Token{Kind: TokIdent, Text: src[i:j], Span: scan.Span{Start: i, End: j}})
			i = j
		case strings.IndexByte(punctuation, c) >= 0:
			toks = append(toks, Token{Kind: TokPunct, Text: src[i : i+1], Span: scan.Span{Start: i, End: i + 1}})
			i++
		default:
			j := i + 1
			for j < len(src) && isOther(src, j) {
				j++
			}
			toks = append(toks, Token{Kind: TokOther, Text: src[i:j], Span: scan.Span{Start: i, End: j}})
			i = j
		}
	}
	return append(toks, Token{Kind: TokEOF, Span: scan.Span{Start: len(src), End: len(src)}})
}

func lexString(src string, i int) int {
	if strings.HasPrefix(src[i:], `"""`) {
		if j := strings.Index(src[i+3:], `"""`); j >= 0 {
			return i + 3 + j + 3
		}
		return len(src)
	}
	j, _ := scan.SkipLiteral(src, i)
	return j
}

func stringToken(src string, start, end int) Token {
	raw := src[start:end]
	body := raw
	switch {
	case strings.HasPrefix(body, `"""`):
		body = strings.TrimPrefix(body, `"""`)
		body = strings.TrimSuffix(body, `"""`)
		body = strings.TrimPrefix(body, "\n")
	default:
		body = body[1:]
		if len(body) > 0 && body[len(body)-1] == '"' && !escapedAt(body, len(body)-1) {
			body = body[:len(body)-1]
		}
	}
	return Token{Kind: TokString, Text: raw, Value: unescape(body), Span: scan.Span{Start: start, End: end}}
}

func escapedAt(s string, i int) bool {
	n := 0
	for j := i - 1; j >= 0 && s[j] == '\\'; j-- {
		n++
	}
	return n%2 == 1
}

func unescape(s string) string {
	if strings.IndexByte(s, '\\') < 0 {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			b.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '0':
			b.WriteByte(0)
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

func isOther(src string, j int) bool {
	c := src[j]
	if isSpace(c) || c == '"' || isIdentStart(c) || strings.IndexByte(punctuation, c) >= 0 {
		return false
	}
	return !strings.HasPrefix(src[j:], "//") && !strings.HasPrefix(src[j:], "/*")
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

func isIdentStart(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= 0x80
}

func isIdentByte(c byte) bool {
	return isIdentStart(c) || c >= '0' && c <= '9'
}
