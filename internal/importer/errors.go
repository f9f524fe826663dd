package importer

import (
	"errors"
	"fmt"
)

// ErrUnrecognizedType is wrapped by UnrecognizedTypeError.
var ErrUnrecognizedType = errors.New("unrecognized type")

// UnrecognizedTypeError reports a raw record whose type cannot be mapped to
// a transaction type. It aborts the whole batch.
type UnrecognizedTypeError struct {
	Source string
	Type   string
	ID     string
}

func (e *UnrecognizedTypeError) Error() string {
	return fmt.Sprintf("%s: unrecognized type: %q (record %q)", e.Source, e.Type, e.ID)
}

func (e *UnrecognizedTypeError) Unwrap() error {
	return ErrUnrecognizedType
}
