package object

import "errors"

var (
	// ErrObjectNotFound is returned when no object is stored under a hash.
	ErrObjectNotFound = errors.New("object not found")
	// ErrObjectCorrupt is returned when a stored object cannot be decoded or
	// its content no longer matches its hash.
	ErrObjectCorrupt = errors.New("object corrupt")
)
