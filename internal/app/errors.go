package app

import (
	"errors"
	"fmt"
)

// ErrNotConnected is returned by operations that need an open connection.
var ErrNotConnected = errors.New("not connected")

// ErrConfig represents a configuration error.
type ErrConfig struct {
	Cause error
}

func (e *ErrConfig) Error() string {
	return fmt.Sprintf("config error: %v", e.Cause)
}

func (e *ErrConfig) Unwrap() error {
	return e.Cause
}
