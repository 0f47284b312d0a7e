// Package ntriples reads and writes N-Triples dumps.
//
// Files ending in .gz, .zst or .lz4 are decompressed transparently. A File is
// a scan.Scanner: every call to Statements reopens the dump and parses it
// from the start.
package ntriples
