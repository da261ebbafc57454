package diagram

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by the loaders, the storage layer and the editor.
var (
	// ErrInvalidFormat covers a wrong file extension and any JSON syntax or
	// shape failure.
	ErrInvalidFormat = errors.New("invalid format")
	// ErrIOFailure covers read and write failures.
	ErrIOFailure = errors.New("i/o failure")
	// ErrNodeNotFound is returned when a handle or id is unknown.
	ErrNodeNotFound = errors.New("node not found")
)

// FileError describes a failed file operation.
type FileError struct {
	Kind error // ErrInvalidFormat or ErrIOFailure
	Op   string
	Path string
	Err  error
}

// Error implements the error interface. The kind is left out when the
// cause already carries it.
func (e *FileError) Error() string {
	if e.Err != nil && errors.Is(e.Err, e.Kind) {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %v: %v", e.Op, e.Path, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Kind)
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *FileError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewFileError builds a FileError of the given kind.
func NewFileError(kind error, op, path string, err error) *FileError {
	return &FileError{Kind: kind, Op: op, Path: path, Err: err}
}
