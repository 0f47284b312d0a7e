// Package fingerprint derives bitmap addresses from statements.
//
// # Digest
//
// Sum hashes the canonical string values of subject, predicate and object
// with MD5, in that order, with no delimiter or length prefix between the
// fields:
//
//	d := fingerprint.Sum(st)
//
// Because the fields are concatenated without a separator, two statements
// whose concatenated values coincide hash identically:
//
//	("ab", "c", "d") and ("a", "bc", "d") share a digest
//
// This is kept on purpose: existing presence bitmaps were built with this
// layout, and adding a delimiter would move every statement to a different
// address.
//
// # Address
//
// AddressOf maps a digest to a byte and bit inside a bitmap of mapSize bytes:
//
//	byteOffset = |int32 big-endian of d[0:4]|, wrapped into [0, mapSize)
//	bitOffset  = d[10] & 7
//
// The magnitude is taken in 64-bit arithmetic, so math.MinInt32 maps to 2^31
// instead of staying negative. Offsets below mapSize are unchanged by the
// wrap; only the boundary values 0x7FFFFFFF, 0x80000000 and 0x80000001
// (with the default map size of math.MaxInt32) are folded back into range.
package fingerprint
