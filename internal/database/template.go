package database

import (
	"strconv"
	"strings"
)

// Fragment is one piece of an interpolated query. Implemented by SQL,
// Unescaped and every Binding.
type Fragment interface {
	fragment()
}

// SQL is query text written by the programmer. It is emitted verbatim.
type SQL string

// Unescaped is trusted text spliced into the query as-is, typically a table
// or column name. Never pass user input through it.
type Unescaped string

func (SQL) fragment()       {}
func (Unescaped) fragment() {}

// Template is an immutable query: SQL text with {N} placeholders plus the
// bindings they refer to, N being 1-based.
type Template struct {
	sql      string
	bindings []Binding
	native   bool
}

// NewTemplate pairs text containing {N} placeholders with its bindings.
//
//	database.NewTemplate(`SELECT name FROM planets WHERE id = {1} OR parent = {1}`, database.Int(3))
func NewTemplate(sql string, bindings ...Binding) Template {
	return Template{
		sql:      sql,
		bindings: append([]Binding(nil), bindings...),
	}
}

// Interpolate builds a template from parts. Bindings are carried as data and
// replaced by the next placeholder; SQL and Unescaped text is written as-is.
//
//	database.Interpolate(
//		database.SQL(`INSERT INTO "`), database.Unescaped(table), database.SQL(`" (id, name) VALUES (`),
//		database.Int(1), database.SQL(", "), database.String(name), database.SQL(")"),
//	)
func Interpolate(parts ...Fragment) Template {
	var b strings.Builder
	var bindings []Binding
	for _, p := range parts {
		switch p := p.(type) {
		case SQL:
			b.WriteString(string(p))
		case Unescaped:
			b.WriteString(string(p))
		case Binding:
			bindings = append(bindings, p)
			b.WriteByte('{')
			b.WriteString(strconv.Itoa(len(bindings)))
			b.WriteByte('}')
		}
	}
	return Template{sql: b.String(), bindings: bindings}
}

// UnsafeTemplate wraps SQL already written in the backend's native parameter
// syntax ($1 for PostgreSQL, ?1 or ? for SQLite). The text is sent without
// translation and the bindings are passed positionally.
func UnsafeTemplate(nativeSQL string, bindings ...Binding) Template {
	return Template{
		sql:      nativeSQL,
		bindings: append([]Binding(nil), bindings...),
		native:   true,
	}
}

// SQL returns the template text.
func (t Template) SQL() string { return t.sql }

// Bindings returns a copy of the bindings in index order.
func (t Template) Bindings() []Binding {
	return append([]Binding(nil), t.bindings...)
}

// Native reports whether the text is already in backend syntax.
func (t Template) Native() bool { return t.native }

func (t Template) String() string {
	if len(t.bindings) == 0 {
		return t.sql
	}
	vals := make([]string, len(t.bindings))
	for i, b := range t.bindings {
		vals[i] = b.String()
	}
	return t.sql + " [" + strings.Join(vals, ", ") + "]"
}
