package storage

import "errors"

var (
	// ErrUnavailable indicates the storage medium could not be read or written.
	ErrUnavailable = errors.New("storage unavailable")

	// ErrCorrupt indicates persisted content does not have the expected shape.
	ErrCorrupt = errors.New("corrupt data")
)
