// Package sqlstore is a small SQL-backed triple store used as the reference
// collaborator for build, verify and term checks.
//
// Terms live in two dictionary tables: term2id maps lexicon.EncodeTermKey to
// lexicon.EncodeID, id2term maps lexicon.EncodeIDKey to lexicon.SerializeTerm.
// Statement rows hold reverse keys only, so scanning resolves every term
// through id2term and a damaged reverse entry changes the scanned statement.
//
// Two drivers are supported: "sqlite3" (github.com/mattn/go-sqlite3) and
// "postgres" (github.com/lib/pq). An optional namespace prefixes every table
// so several datasets can share one database.
package sqlstore
