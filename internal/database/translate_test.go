package database

import (
	"errors"
	"reflect"
	"testing"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name     string
		tmpl     Template
		ph       Placeholder
		wantSQL  string
		wantArgs []any
	}{
		{
			name:     "in order",
			tmpl:     NewTemplate(`INSERT INTO t (id, name) VALUES ({1}, {2})`, Int(1), String("a")),
			wantSQL:  `INSERT INTO t (id, name) VALUES ($1, $2)`,
			wantArgs: []any{int64(1), "a"},
		},
		{
			name:     "repeated and out of order",
			tmpl:     NewTemplate(`SELECT {2}, {1}, {2}, {1}`, Int(7), Double(1.5)),
			wantSQL:  `SELECT $2, $1, $2, $1`,
			wantArgs: []any{int64(7), 1.5},
		},
		{
			name:     "sqlite markers",
			tmpl:     NewTemplate(`UPDATE t SET v = {1} WHERE id = {2} OR parent = {2}`, Null{}, Int(3)),
			ph:       PlaceholderQuestionNumbered,
			wantSQL:  `UPDATE t SET v = ?1 WHERE id = ?2 OR parent = ?2`,
			wantArgs: []any{nil, int64(3)},
		},
		{
			name:     "quoted and commented text untouched",
			tmpl:     NewTemplate("SELECT '{1}', \"{1}\", `{1}` -- {1}\n, {1} /* {1} */", Int(1)),
			wantSQL:  "SELECT '{1}', \"{1}\", `{1}` -- {1}\n, $1 /* {1} */",
			wantArgs: []any{int64(1)},
		},
		{
			name:     "escaped quote inside literal",
			tmpl:     NewTemplate(`SELECT 'it''s {1}', {1}`, String("x")),
			wantSQL:  `SELECT 'it''s {1}', $1`,
			wantArgs: []any{"x"},
		},
		{
			name:     "dollar quoted block",
			tmpl:     NewTemplate(`SELECT $tag$ {1} $tag$, {1}`, Int(2)),
			wantSQL:  `SELECT $tag$ {1} $tag$, $1`,
			wantArgs: []any{int64(2)},
		},
		{
			name:     "braces that are not placeholders",
			tmpl:     NewTemplate(`SELECT {a}, {}, {1`),
			wantSQL:  `SELECT {a}, {}, {1`,
			wantArgs: []any{},
		},
		{
			name:     "native template bypasses translation",
			tmpl:     UnsafeTemplate(`SELECT $1, '{1}'`, String("z")),
			wantSQL:  `SELECT $1, '{1}'`,
			wantArgs: []any{"z"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := Translate(tt.tmpl, tt.ph)
			if err != nil {
				t.Fatalf("Translate: %v", err)
			}
			if sql != tt.wantSQL {
				t.Fatalf("sql=%q want %q", sql, tt.wantSQL)
			}
			if !reflect.DeepEqual(args, tt.wantArgs) {
				t.Fatalf("args=%#v want %#v", args, tt.wantArgs)
			}
		})
	}
}

func TestTranslate_SlotCountMatchesDistinctIndexes(t *testing.T) {
	tmpl := NewTemplate(`{3} {1} {3} {2} {1} {3}`, Int(1), Int(2), Int(3))
	sql, args, err := Translate(tmpl, PlaceholderDollar)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if len(args) != 3 {
		t.Fatalf("len(args)=%d want 3", len(args))
	}
	if sql != `$3 $1 $3 $2 $1 $3` {
		t.Fatalf("sql=%q", sql)
	}
}

func TestTranslate_Errors(t *testing.T) {
	tests := []struct {
		name      string
		tmpl      Template
		wantIndex int
	}{
		{"missing binding", NewTemplate(`SELECT {1}, {2}`, Int(1)), 2},
		{"zero index", NewTemplate(`SELECT {0}`, Int(1)), 0},
		{"unused binding", NewTemplate(`SELECT {1}`, Int(1), Int(2)), 2},
		{"no placeholders at all", NewTemplate(`SELECT 1`, String("x")), 1},
		{"unterminated quote", NewTemplate(`SELECT 'oops {1}`, Int(1)), 0},
		{"unterminated comment", NewTemplate(`SELECT {1} /* oops`, Int(1)), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Translate(tt.tmpl, PlaceholderDollar)
			var te *TemplateError
			if !errors.As(err, &te) {
				t.Fatalf("err=%v, want *TemplateError", err)
			}
			if te.Index != tt.wantIndex {
				t.Fatalf("Index=%d want %d", te.Index, tt.wantIndex)
			}
		})
	}
}

func TestInterpolate(t *testing.T) {
	name := "Robert'); DROP TABLE students;--"
	tmpl := Interpolate(
		SQL(`INSERT INTO "`), Unescaped("students_1"), SQL(`" (id, name, note) VALUES (`),
		Int(1), SQL(", "), String(name), SQL(", "), NullableString(nil), SQL(")"),
	)

	if got, want := tmpl.SQL(), `INSERT INTO "students_1" (id, name, note) VALUES ({1}, {2}, {3})`; got != want {
		t.Fatalf("SQL()=%q want %q", got, want)
	}

	sql, args, err := Translate(tmpl, PlaceholderDollar)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if sql != `INSERT INTO "students_1" (id, name, note) VALUES ($1, $2, $3)` {
		t.Fatalf("sql=%q", sql)
	}
	if !reflect.DeepEqual(args, []any{int64(1), name, nil}) {
		t.Fatalf("args=%#v", args)
	}
}

func TestTemplate_Immutable(t *testing.T) {
	bindings := []Binding{Int(1)}
	tmpl := NewTemplate(`SELECT {1}`, bindings...)
	bindings[0] = Int(99)

	got := tmpl.Bindings()
	if got[0] != Int(1) {
		t.Fatalf("template saw caller mutation: %v", got[0])
	}
	got[0] = Int(42)
	if tmpl.Bindings()[0] != Int(1) {
		t.Fatalf("Bindings() exposed internal slice")
	}
}

func TestNullableBindings(t *testing.T) {
	i, f, s := int64(4), 2.5, "x"
	tests := []struct {
		got  Binding
		want Binding
	}{
		{NullableInt(nil), Null{}},
		{NullableInt(&i), Int(4)},
		{NullableDouble(nil), Null{}},
		{NullableDouble(&f), Double(2.5)},
		{NullableString(nil), Null{}},
		{NullableString(&s), String("x")},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Fatalf("got %v want %v", tt.got, tt.want)
		}
	}
}
