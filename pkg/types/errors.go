package types

import (
	"errors"
	"fmt"
)

// Error taxonomy for the indexing pipeline.
var (
	// ErrFileNotFound is returned when a requested file is absent from every
	// configured search root.
	ErrFileNotFound = errors.New("file not found in search roots")

	// ErrReadFailure tags I/O errors opening or reading a located file.
	ErrReadFailure = errors.New("read failure")
)

// IndexError wraps a parse or commit failure with the offending location.
type IndexError struct {
	URI URI
	Err error
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("index %s: %v", e.URI, e.Err)
}

func (e *IndexError) Unwrap() error {
	return e.Err
}
