// Package lexicon checks and repairs the two dictionary indices of a triple
// store.
//
// A store keeps every term once, behind a compact internal ID:
//
//	forward:  EncodeTermKey(term) -> EncodeID(id)
//	reverse:  EncodeIDKey(id)     -> SerializeTerm(term)
//
// The indices are maintained independently, and after a crash or a faulty
// bulk load they can disagree. Check walks the round trip for one term
// (forward lookup, decode, reverse lookup, deserialize, compare) and
// classifies the outcome. Repair rewrites the reverse entry from the
// operator-supplied term and commits.
//
// # Transactions
//
// Every check and repair runs on an explicit Tx obtained from
// Lexicon.Begin. Repair commits the Tx it is handed; callers that only
// check roll back. Repair never re-checks its own work; run Check again on a
// fresh Tx to confirm a fix.
package lexicon
