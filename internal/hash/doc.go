// Package hash provides hardware-accelerated checksums for snapshot integrity.
//
// # CRC32-Castagnoli (CRC32C)
//
// Snapshot headers carry the CRC32C of the raw bitmap, and S3 uploads of
// small blobs send the same checksum so the service can reject corrupted
// bodies. CRC32C is accelerated on x86 (SSE4.2) and ARM (CRC extension).
//
// For one-shot checksums:
//
//	checksum := hash.CRC32C(data)
//
// For streaming checksums:
//
//	h := hash.NewCRC32C()
//	h.Write(chunk1)
//	h.Write(chunk2)
//	checksum := h.Sum32()
package hash
