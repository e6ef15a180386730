package database

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Error is implemented by every error kind declared by this package.
type Error interface {
	error
	taxonomy()
}

// IsError reports whether err is, or wraps, one of this package's error kinds.
func IsError(err error) bool {
	var e Error
	return errors.As(err, &e)
}

// TemplateError reports a placeholder that has no binding, a binding that is
// never referenced, or text that cannot be scanned. It is raised before any I/O.
type TemplateError struct {
	SQL    string
	Index  int
	Reason string
}

func (e *TemplateError) Error() string {
	if e.Index > 0 {
		return fmt.Sprintf("template error: {%d}: %s", e.Index, e.Reason)
	}
	return fmt.Sprintf("template error: %s", e.Reason)
}

// QueryError represents a statement the backend rejected or failed to run.
// Cause is the driver's native error, kept unchanged.
type QueryError struct {
	SQL   string
	Cause error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query error: %v", e.Cause)
}

func (e *QueryError) Unwrap() error {
	return e.Cause
}

// ConnectionError represents a failure establishing or using a connection
// outside a transaction.
type ConnectionError struct {
	Cause error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection error: %v", e.Cause)
}

func (e *ConnectionError) Unwrap() error {
	return e.Cause
}

// TransactionError records which phase of a transaction failed. Begin and
// Commit are set alone; Closure is set alone when the rollback succeeded, or
// together with Rollback when it did not.
type TransactionError struct {
	Begin    error
	Closure  error
	Rollback error
	Commit   error
}

func (e *TransactionError) Error() string {
	var merr *multierror.Error
	if e.Begin != nil {
		merr = multierror.Append(merr, fmt.Errorf("begin: %w", e.Begin))
	}
	if e.Closure != nil {
		merr = multierror.Append(merr, fmt.Errorf("closure: %w", e.Closure))
	}
	if e.Rollback != nil {
		merr = multierror.Append(merr, fmt.Errorf("rollback: %w", e.Rollback))
	}
	if e.Commit != nil {
		merr = multierror.Append(merr, fmt.Errorf("commit: %w", e.Commit))
	}
	if merr == nil {
		return "transaction error"
	}
	merr.ErrorFormat = func(errs []error) string {
		msg := "transaction error"
		for i, err := range errs {
			if i == 0 {
				msg += ": "
			} else {
				msg += "; "
			}
			msg += err.Error()
		}
		return msg
	}
	return merr.Error()
}

// Unwrap exposes every recorded cause to errors.Is and errors.As.
func (e *TransactionError) Unwrap() []error {
	var errs []error
	for _, err := range []error{e.Begin, e.Closure, e.Rollback, e.Commit} {
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// DecodingKind classifies a DecodingError.
type DecodingKind int

const (
	ColumnNotFound DecodingKind = iota + 1
	UnexpectedNull
	TypeMismatch
)

func (k DecodingKind) String() string {
	switch k {
	case ColumnNotFound:
		return "column not found"
	case UnexpectedNull:
		return "unexpected null"
	case TypeMismatch:
		return "type mismatch"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is against a *DecodingError.
var (
	ErrColumnNotFound = errors.New("column not found")
	ErrUnexpectedNull = errors.New("unexpected null")
	ErrTypeMismatch   = errors.New("type mismatch")
)

// DecodingError is returned by Decode and DecodeNull.
type DecodingError struct {
	Kind   DecodingKind
	Column string
	// Detail names the conversion for TypeMismatch, e.g. "text as int64".
	Detail string
}

func (e *DecodingError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("decoding error: column %q: %s: %s", e.Column, e.Kind, e.Detail)
	}
	return fmt.Sprintf("decoding error: column %q: %s", e.Column, e.Kind)
}

func (e *DecodingError) Is(target error) bool {
	switch target {
	case ErrColumnNotFound:
		return e.Kind == ColumnNotFound
	case ErrUnexpectedNull:
		return e.Kind == UnexpectedNull
	case ErrTypeMismatch:
		return e.Kind == TypeMismatch
	}
	return false
}

func (*TemplateError) taxonomy()    {}
func (*QueryError) taxonomy()       {}
func (*ConnectionError) taxonomy()  {}
func (*TransactionError) taxonomy() {}
func (*DecodingError) taxonomy()    {}
