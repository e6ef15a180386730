package database

import (
	"encoding/hex"
	"strconv"
	"time"
)

// Kind is the backend representation of a Cell.
type Kind int

const (
	KindNull Kind = iota
	KindInt
	KindFloat
	KindText
	KindBlob
	KindBool
	KindTime
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindText:
		return "text"
	case KindBlob:
		return "blob"
	case KindBool:
		return "bool"
	case KindTime:
		return "time"
	default:
		return "unknown"
	}
}

// Cell is one raw column value as delivered by a backend. The zero Cell is
// NULL.
type Cell struct {
	kind Kind
	i    int64
	f    float64
	s    string
	b    []byte
	v    bool
	t    time.Time
}

func NullCell() Cell            { return Cell{} }
func IntCell(v int64) Cell      { return Cell{kind: KindInt, i: v} }
func FloatCell(v float64) Cell  { return Cell{kind: KindFloat, f: v} }
func TextCell(v string) Cell    { return Cell{kind: KindText, s: v} }
func BoolCell(v bool) Cell      { return Cell{kind: KindBool, v: v} }
func TimeCell(v time.Time) Cell { return Cell{kind: KindTime, t: v} }

// BlobCell copies v.
func BlobCell(v []byte) Cell {
	return Cell{kind: KindBlob, b: append([]byte{}, v...)}
}

// Kind returns the representation of the cell.
func (c Cell) Kind() Kind { return c.kind }

// IsNull reports whether the cell holds SQL NULL.
func (c Cell) IsNull() bool { return c.kind == KindNull }

// String renders the cell for display. NULL renders as "NULL".
func (c Cell) String() string {
	switch c.kind {
	case KindInt:
		return strconv.FormatInt(c.i, 10)
	case KindFloat:
		return strconv.FormatFloat(c.f, 'g', -1, 64)
	case KindText:
		return c.s
	case KindBlob:
		return `\x` + hex.EncodeToString(c.b)
	case KindBool:
		return strconv.FormatBool(c.v)
	case KindTime:
		return c.t.Format(time.RFC3339Nano)
	default:
		return "NULL"
	}
}
