// Package fs provides filesystem abstractions for testability and fault injection.
//
//   - [LocalFS]: production implementation using the os package
//   - [FaultyFS]: test wrapper that injects write, sync, close and rename failures
//
// Snapshot restores and the local blob store write through a [FileSystem] so
// that their temp-file-then-rename sequences can be exercised against
// injected faults:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule(".tmp", fs.Fault{FailAfterBytes: -1, FailOnSync: true})
//
// Operations take no context.Context: local filesystem calls are not
// interruptible at the syscall level. Remote storage goes through blobstore.
package fs
