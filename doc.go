// Package triplecheck verifies a triple store after bulk ingestion.
//
// It answers two questions offline, without touching the store's indices:
//
//   - Was every statement of a source dataset ingested? Build scans the
//     dataset once and sets one bit per statement in a memory-mapped
//     presence bitmap; Verify scans the store and reports statements whose
//     bit is unset.
//   - Do the store's term dictionaries agree? CheckTerms looks each term up
//     in the forward index, resolves the ID through the reverse index and
//     compares the result, optionally rewriting bad reverse entries.
//
// # Presence bitmap
//
//	bm, _ := presence.Open("dataset.bits", presence.ModeBuild)
//	report, err := triplecheck.Build(ctx, ntriplesReader, bm)
//	_ = bm.Close()
//
//	bm, _ = presence.Open("dataset.bits", presence.ModeCheck)
//	report, err = triplecheck.Verify(ctx, store, bm)
//	fmt.Println(report.Missing)
//
// The bitmap is lossy. An unset bit proves a statement was never marked; a
// set bit may belong to a different statement. Verify therefore detects
// missing statements with high probability but never reports false
// positives.
//
// # Dictionary consistency
//
//	report, err := triplecheck.CheckTerms(ctx, store, []string{"alice"}, true)
//
// Repairs are committed without re-checking. Run CheckTerms again without
// fix to confirm.
//
// # Errors
//
// Fatal failures are *Error values tagged with a Kind; use KindOf to
// classify them. Missing statements and bad terms are diagnostics: they are
// logged and counted in the report, never returned as errors.
package triplecheck
