package database

import "strconv"

// Binding is a scalar query parameter. The set of implementations is closed:
// Int, Double, String and Null.
type Binding interface {
	Fragment

	// Value returns the parameter as handed to the backend driver.
	Value() any

	// String renders the value as a SQL literal, for logs only.
	String() string

	binding()
}

// Int binds a 64-bit signed integer.
type Int int64

// Double binds a 64-bit float.
type Double float64

// String binds UTF-8 text.
type String string

// Null binds SQL NULL.
type Null struct{}

func (v Int) Value() any    { return int64(v) }
func (v Double) Value() any { return float64(v) }
func (v String) Value() any { return string(v) }
func (Null) Value() any     { return nil }

func (Int) binding()    {}
func (Double) binding() {}
func (String) binding() {}
func (Null) binding()   {}

func (Int) fragment()    {}
func (Double) fragment() {}
func (String) fragment() {}
func (Null) fragment()   {}

func (v Int) String() string    { return strconv.FormatInt(int64(v), 10) }
func (v Double) String() string { return strconv.FormatFloat(float64(v), 'g', -1, 64) }
func (v String) String() string { return strconv.Quote(string(v)) }
func (Null) String() string     { return "NULL" }

// NullableInt binds v, or NULL when v is nil.
func NullableInt(v *int64) Binding {
	if v == nil {
		return Null{}
	}
	return Int(*v)
}

// NullableDouble binds v, or NULL when v is nil.
func NullableDouble(v *float64) Binding {
	if v == nil {
		return Null{}
	}
	return Double(*v)
}

// NullableString binds v, or NULL when v is nil.
func NullableString(v *string) Binding {
	if v == nil {
		return Null{}
	}
	return String(*v)
}
