package database

import (
	"strconv"
	"strings"
)

// Placeholder selects the native positional parameter style of a backend.
type Placeholder int

const (
	// PlaceholderDollar renders $1, $2, … (PostgreSQL).
	PlaceholderDollar Placeholder = iota
	// PlaceholderQuestionNumbered renders ?1, ?2, … (SQLite).
	PlaceholderQuestionNumbered
)

func (p Placeholder) appendMarker(out []byte, n int) []byte {
	switch p {
	case PlaceholderQuestionNumbered:
		out = append(out, '?')
	default:
		out = append(out, '$')
	}
	return strconv.AppendInt(out, int64(n), 10)
}

// Translate rewrites the {N} placeholders of t into the native markers of ph
// and returns the native argument list, one entry per binding in index order.
// Every occurrence of the same index maps to the same marker. Placeholders
// inside quoted strings, identifiers, comments and dollar-quoted blocks are
// left alone.
//
// An index without a binding and a binding that is never referenced are both
// reported as *TemplateError.
func Translate(t Template, ph Placeholder) (string, []any, error) {
	args := make([]any, len(t.bindings))
	for i, b := range t.bindings {
		args[i] = b.Value()
	}
	if t.native {
		return t.sql, args, nil
	}

	q := t.sql
	used := make([]bool, len(t.bindings))
	out := make([]byte, 0, len(q)+8)
	i := 0

	for i < len(q) {
		switch c := q[i]; c {
		case '\'', '"', '`':
			j, ok := skipQuoted(q, i+1, c)
			if !ok {
				return "", nil, &TemplateError{SQL: q, Reason: "unterminated " + string(c) + " quote"}
			}
			out = append(out, q[i:j]...)
			i = j
			continue
		case '-':
			if strings.HasPrefix(q[i:], "--") {
				j := skipLineComment(q, i+2)
				out = append(out, q[i:j]...)
				i = j
				continue
			}
		case '/':
			if strings.HasPrefix(q[i:], "/*") {
				j, ok := skipBlockComment(q, i+2)
				if !ok {
					return "", nil, &TemplateError{SQL: q, Reason: "unterminated block comment"}
				}
				out = append(out, q[i:j]...)
				i = j
				continue
			}
		case '$':
			if j, ok := skipDollarQuoted(q, i); ok {
				out = append(out, q[i:j]...)
				i = j
				continue
			}
		case '{':
			n, j, ok := parsePlaceholder(q, i)
			if !ok {
				break
			}
			if n < 1 || n > len(t.bindings) {
				return "", nil, &TemplateError{SQL: q, Index: n, Reason: "no binding supplied"}
			}
			used[n-1] = true
			out = ph.appendMarker(out, n)
			i = j
			continue
		}
		out = append(out, q[i])
		i++
	}

	for k, u := range used {
		if !u {
			return "", nil, &TemplateError{SQL: q, Index: k + 1, Reason: "binding never referenced"}
		}
	}
	return string(out), args, nil
}

// parsePlaceholder reads {digits} at q[i]. It returns the index and the
// offset just past the closing brace.
func parsePlaceholder(q string, i int) (int, int, bool) {
	j := i + 1
	for j < len(q) && q[j] >= '0' && q[j] <= '9' {
		j++
	}
	if j == i+1 || j >= len(q) || q[j] != '}' {
		return 0, 0, false
	}
	n, err := strconv.Atoi(q[i+1 : j])
	if err != nil {
		// Too many digits to be a real index.
		return -1, j + 1, true
	}
	return n, j + 1, true
}

// skipQuoted returns the offset just past the closing quote, honoring doubled
// quotes as escapes.
func skipQuoted(s string, i int, quote byte) (int, bool) {
	for i < len(s) {
		c := s[i]
		i++
		if c == quote {
			if i < len(s) && s[i] == quote {
				i++
				continue
			}
			return i, true
		}
	}
	return 0, false
}

func skipLineComment(s string, i int) int {
	for i < len(s) {
		if s[i] == '\n' {
			return i + 1
		}
		i++
	}
	return i
}

func skipBlockComment(s string, i int) (int, bool) {
	for i < len(s)-1 {
		if s[i] == '*' && s[i+1] == '/' {
			return i + 2, true
		}
		i++
	}
	return 0, false
}

// skipDollarQuoted handles $$...$$ and $tag$...$tag$. A positional $1 is not
// a dollar quote. An unterminated block is treated as plain text.
func skipDollarQuoted(s string, i int) (int, bool) {
	j := i + 1
	if j < len(s) && s[j] >= '0' && s[j] <= '9' {
		return 0, false
	}
	for j < len(s) && isTagChar(s[j]) {
		j++
	}
	if j >= len(s) || s[j] != '$' {
		return 0, false
	}
	tag := s[i : j+1]
	idx := strings.Index(s[j+1:], tag)
	if idx < 0 {
		return 0, false
	}
	return j + 1 + idx + len(tag), true
}

func isTagChar(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c >= 0x80
}
