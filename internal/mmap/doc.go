// Package mmap provides memory-mapped file access for the presence bitmap
// and for local snapshot blobs.
//
// # Usage
//
// Read-only mapping of a whole file:
//
//	m, err := mmap.Open("presence.map")
//	if err != nil { ... }
//	defer m.Close()
//	data := m.Bytes()
//
// Read-write mapping of an already sized file:
//
//	m, err := mmap.Map(f, size, true)
//	data := m.Bytes()
//	data[5] |= 1 << 3
//	err = m.Sync() // msync(MS_SYNC)
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2), msync(2) and madvise(2)
//   - Windows: CreateFileMapping/MapViewOfFile and FlushViewOfFile (madvise is a no-op)
//
// # Thread Safety
//
// Close is idempotent and protected by an atomic flag. Callers must not touch
// the slice returned by Bytes after Close returns.
package mmap
