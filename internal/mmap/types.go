package mmap

import "errors"

// AccessPattern is an madvise(2) hint.
type AccessPattern int

const (
	// AccessDefault clears any earlier advice.
	AccessDefault AccessPattern = iota
	// AccessSequential expects data to be accessed sequentially.
	AccessSequential
	// AccessRandom suits bitmap builds and checks, which touch one byte per
	// statement at an unpredictable offset.
	AccessRandom
)

var (
	// ErrClosed is returned when attempting to access a closed mapping.
	ErrClosed = errors.New("mmap: mapping is closed")
	// ErrInvalidSize is returned when the requested size is invalid (e.g. negative or too large).
	ErrInvalidSize = errors.New("mmap: invalid file size")
	// ErrInvalidOffset is returned when the offset is invalid (e.g. negative).
	ErrInvalidOffset = errors.New("mmap: invalid offset")
	// ErrReadOnly is returned when syncing a read-only mapping is requested.
	ErrReadOnly = errors.New("mmap: mapping is read-only")
)
