package storage

import (
	"errors"
	"fmt"
)

// ErrCorruptRecord matches any DecodeError. Use it to tell bad stored data apart from
// connection or statement failures.
var ErrCorruptRecord = errors.New("corrupt audit record")

// DecodeError reports a stored column value that does not map to a known variant.
type DecodeError struct {
	AuditID int64
	Column  string
	Value   string
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode audit %d: column %s holds %q: %v", e.AuditID, e.Column, e.Value, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrCorruptRecord) true for every DecodeError.
func (e *DecodeError) Is(target error) bool { return target == ErrCorruptRecord }
