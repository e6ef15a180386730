package database

import (
	"database/sql"
	"math"
	"time"
	"unicode/utf8"
)

// Decodable lists the Go types a Cell can be decoded into.
type Decodable interface {
	int | int32 | int64 | float64 | string | []byte | bool | time.Time
}

// Decode reads column from row as T. A NULL cell is an error; use DecodeNull
// for nullable columns.
//
//	id, err := database.Decode[int64](row, "id")
func Decode[T Decodable](row Row, column string) (T, error) {
	var out T
	c, ok := row.Cell(column)
	if !ok {
		return out, &DecodingError{Kind: ColumnNotFound, Column: column}
	}
	if c.IsNull() {
		return out, &DecodingError{Kind: UnexpectedNull, Column: column}
	}
	if err := convertCell(column, c, &out); err != nil {
		return out, err
	}
	return out, nil
}

// DecodeNull reads a nullable column. NULL yields a zero sql.Null with Valid
// unset.
func DecodeNull[T Decodable](row Row, column string) (sql.Null[T], error) {
	var out sql.Null[T]
	c, ok := row.Cell(column)
	if !ok {
		return out, &DecodingError{Kind: ColumnNotFound, Column: column}
	}
	if c.IsNull() {
		return out, nil
	}
	if err := convertCell(column, c, &out.V); err != nil {
		return sql.Null[T]{}, err
	}
	out.Valid = true
	return out, nil
}

func convertCell(column string, c Cell, dst any) error {
	switch d := dst.(type) {
	case *int64:
		v, ok := cellInt(c, math.MinInt64, math.MaxInt64)
		if !ok {
			return mismatch(column, c, "int64")
		}
		*d = v
	case *int:
		v, ok := cellInt(c, math.MinInt, math.MaxInt)
		if !ok {
			return mismatch(column, c, "int")
		}
		*d = int(v)
	case *int32:
		v, ok := cellInt(c, math.MinInt32, math.MaxInt32)
		if !ok {
			return mismatch(column, c, "int32")
		}
		*d = int32(v)
	case *float64:
		switch {
		case c.kind == KindFloat:
			*d = c.f
		case c.kind == KindInt && c.i >= -1<<53 && c.i <= 1<<53:
			*d = float64(c.i)
		default:
			return mismatch(column, c, "float64")
		}
	case *string:
		switch {
		case c.kind == KindText:
			*d = c.s
		case c.kind == KindBlob && utf8.Valid(c.b):
			*d = string(c.b)
		default:
			return mismatch(column, c, "string")
		}
	case *[]byte:
		switch c.kind {
		case KindBlob:
			*d = append([]byte{}, c.b...)
		case KindText:
			*d = []byte(c.s)
		default:
			return mismatch(column, c, "[]byte")
		}
	case *bool:
		switch {
		case c.kind == KindBool:
			*d = c.v
		case c.kind == KindInt && (c.i == 0 || c.i == 1):
			*d = c.i == 1
		default:
			return mismatch(column, c, "bool")
		}
	case *time.Time:
		if c.kind != KindTime {
			return mismatch(column, c, "time.Time")
		}
		*d = c.t
	default:
		return mismatch(column, c, "unsupported type")
	}
	return nil
}

// cellInt converts integer cells, and float cells holding an integral value,
// when the result fits in [lo, hi]. Text is never parsed.
func cellInt(c Cell, lo, hi int64) (int64, bool) {
	switch c.kind {
	case KindInt:
		return c.i, c.i >= lo && c.i <= hi
	case KindFloat:
		// Two's complement bounds: hi+1 == -lo, which is exact as a float.
		if c.f != math.Trunc(c.f) || c.f < float64(lo) || c.f >= -float64(lo) {
			return 0, false
		}
		return int64(c.f), true
	default:
		return 0, false
	}
}

func mismatch(column string, c Cell, target string) error {
	return &DecodingError{Kind: TypeMismatch, Column: column, Detail: c.kind.String() + " as " + target}
}
