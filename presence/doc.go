// Package presence implements the persistent presence bitmap: a fixed-size,
// headerless file of mapSize bytes, memory-mapped and addressed bit by bit.
//
// A build run opens the file in ModeBuild, which creates or resizes it to
// exactly mapSize bytes and maps it read-write. Every statement sets one bit.
// A check run opens the same file in ModeCheck, which maps it read-only and
// refuses files that are missing or of the wrong length.
//
// The bitmap is lossy. An unset bit proves that no statement of the build
// run mapped to that address; a set bit only says that some statement did.
//
// There is no locking: one process at a time must own a bitmap file.
package presence
