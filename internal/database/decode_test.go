package database

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func sampleRow() Row {
	return NewRow(
		[]string{"id", "name", "note", "ratio", "whole", "digits", "flag", "tiny", "raw", "at", "id"},
		[]Cell{
			IntCell(1),
			TextCell("abc"),
			NullCell(),
			FloatCell(1.5),
			FloatCell(3),
			TextCell("42"),
			BoolCell(true),
			IntCell(1),
			BlobCell([]byte("bytes")),
			TimeCell(time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)),
			IntCell(999),
		},
	)
}

func TestDecode(t *testing.T) {
	row := sampleRow()

	if v, err := Decode[int64](row, "id"); err != nil || v != 1 {
		t.Fatalf("Decode[int64](id)=%v, %v", v, err)
	}
	if v, err := Decode[int](row, "whole"); err != nil || v != 3 {
		t.Fatalf("Decode[int](whole)=%v, %v", v, err)
	}
	if v, err := Decode[float64](row, "id"); err != nil || v != 1 {
		t.Fatalf("Decode[float64](id)=%v, %v", v, err)
	}
	if v, err := Decode[float64](row, "ratio"); err != nil || v != 1.5 {
		t.Fatalf("Decode[float64](ratio)=%v, %v", v, err)
	}
	if v, err := Decode[string](row, "name"); err != nil || v != "abc" {
		t.Fatalf("Decode[string](name)=%v, %v", v, err)
	}
	if v, err := Decode[string](row, "raw"); err != nil || v != "bytes" {
		t.Fatalf("Decode[string](raw)=%v, %v", v, err)
	}
	if v, err := Decode[[]byte](row, "name"); err != nil || string(v) != "abc" {
		t.Fatalf("Decode[[]byte](name)=%v, %v", v, err)
	}
	if v, err := Decode[bool](row, "flag"); err != nil || !v {
		t.Fatalf("Decode[bool](flag)=%v, %v", v, err)
	}
	if v, err := Decode[bool](row, "tiny"); err != nil || !v {
		t.Fatalf("Decode[bool](tiny)=%v, %v", v, err)
	}
	if v, err := Decode[time.Time](row, "at"); err != nil || v.Year() != 2026 {
		t.Fatalf("Decode[time.Time](at)=%v, %v", v, err)
	}
}

func TestDecode_DuplicateColumnFirstWins(t *testing.T) {
	v, err := Decode[int64](sampleRow(), "id")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if v != 1 {
		t.Fatalf("got %d, want the first id column", v)
	}
}

func TestDecode_CaseSensitive(t *testing.T) {
	_, err := Decode[int64](sampleRow(), "ID")
	if !errors.Is(err, ErrColumnNotFound) {
		t.Fatalf("err=%v want ErrColumnNotFound", err)
	}
}

func TestDecodeNull(t *testing.T) {
	row := sampleRow()

	note, err := DecodeNull[string](row, "note")
	if err != nil {
		t.Fatalf("DecodeNull(note): %v", err)
	}
	if note.Valid {
		t.Fatalf("note.Valid=true for NULL cell")
	}

	name, err := DecodeNull[string](row, "name")
	if err != nil {
		t.Fatalf("DecodeNull(name): %v", err)
	}
	if !name.Valid || name.V != "abc" {
		t.Fatalf("name=%+v", name)
	}

	id, err := DecodeNull[int](row, "id")
	if err != nil || !id.Valid || id.V != 1 {
		t.Fatalf("DecodeNull[int](id)=%+v, %v", id, err)
	}
}

func TestDecode_Errors(t *testing.T) {
	row := sampleRow()

	tests := []struct {
		name   string
		decode func() error
		want   error
	}{
		{"missing column", func() error { _, err := Decode[int64](row, "nope"); return err }, ErrColumnNotFound},
		{"missing column nullable", func() error { _, err := DecodeNull[string](row, "nope"); return err }, ErrColumnNotFound},
		{"missing column time", func() error { _, err := Decode[time.Time](row, "nope"); return err }, ErrColumnNotFound},
		{"null into non-nullable", func() error { _, err := Decode[string](row, "note"); return err }, ErrUnexpectedNull},
		{"numeric text as int", func() error { _, err := Decode[int64](row, "digits"); return err }, ErrTypeMismatch},
		{"text as int nullable", func() error { _, err := DecodeNull[int](row, "name"); return err }, ErrTypeMismatch},
		{"fractional float as int", func() error { _, err := Decode[int64](row, "ratio"); return err }, ErrTypeMismatch},
		{"int as string", func() error { _, err := Decode[string](row, "id"); return err }, ErrTypeMismatch},
		{"text as bool", func() error { _, err := Decode[bool](row, "name"); return err }, ErrTypeMismatch},
		{"text as time", func() error { _, err := Decode[time.Time](row, "name"); return err }, ErrTypeMismatch},
		{"int as time", func() error { _, err := Decode[time.Time](row, "id"); return err }, ErrTypeMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.decode()
			if !errors.Is(err, tt.want) {
				t.Fatalf("err=%v want %v", err, tt.want)
			}
			var de *DecodingError
			if !errors.As(err, &de) {
				t.Fatalf("err=%T want *DecodingError", err)
			}
			if !IsError(err) {
				t.Fatalf("IsError(%v)=false", err)
			}
		})
	}
}

func TestDecode_Int32Range(t *testing.T) {
	row := NewRow([]string{"big", "small"}, []Cell{IntCell(1 << 40), IntCell(-7)})

	if _, err := Decode[int32](row, "big"); !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("err=%v want ErrTypeMismatch", err)
	}
	if v, err := Decode[int32](row, "small"); err != nil || v != -7 {
		t.Fatalf("Decode[int32](small)=%v, %v", v, err)
	}
}

func TestDecode_Float64Precision(t *testing.T) {
	row := NewRow([]string{"exact", "lossy"}, []Cell{IntCell(1 << 53), IntCell(1<<53 + 1)})

	if v, err := Decode[float64](row, "exact"); err != nil || v != 1<<53 {
		t.Fatalf("Decode[float64](exact)=%v, %v", v, err)
	}
	if _, err := Decode[float64](row, "lossy"); !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("err=%v want ErrTypeMismatch", err)
	}
}

func TestDecode_Deterministic(t *testing.T) {
	row := sampleRow()

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				v, err := Decode[[]byte](row, "raw")
				if err != nil || string(v) != "bytes" {
					t.Errorf("Decode[[]byte](raw)=%q, %v", v, err)
					return
				}
				// Mutating the result must not affect the row.
				v[0] = 'X'
			}
		}()
	}
	wg.Wait()

	first, err1 := Decode[string](row, "digits")
	second, err2 := Decode[string](row, "digits")
	if first != second || err1 != nil || err2 != nil {
		t.Fatalf("decode not deterministic: %q/%v vs %q/%v", first, err1, second, err2)
	}
}

func TestRow_Strings(t *testing.T) {
	row := NewRow([]string{"a", "b", "c"}, []Cell{IntCell(1), NullCell(), TextCell("x")})
	got := row.Strings()
	want := []string{"1", "NULL", "x"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Strings()[%d]=%q want %q", i, got[i], want[i])
		}
	}
	if row.Len() != 3 {
		t.Fatalf("Len()=%d want 3", row.Len())
	}
}
