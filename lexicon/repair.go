package lexicon

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/triplecheck/model"
)

// Repair rewrites the reverse entry of id as the plain literal term and
// commits tx.
func Repair(ctx context.Context, tx Tx, term string, id ID) (bool, error) {
	return RepairTerm(ctx, tx, model.NewLiteral(term), id)
}

// RepairTerm removes the reverse entry of id, inserts the serialized term if
// the key is then absent, and commits tx. It reports whether the insert took
// place; a concurrent writer refilling the key makes the insert a no-op.
//
// The caller must run a fresh check to confirm the fix.
func RepairTerm(ctx context.Context, tx Tx, term model.Term, id ID) (bool, error) {
	key := EncodeIDKey(id)

	if err := tx.Remove(ctx, key); err != nil {
		return false, errors.Join(fmt.Errorf("lexicon: remove %s: %w", id, err), tx.Rollback())
	}

	inserted, err := tx.InsertIfAbsent(ctx, key, SerializeTerm(term))
	if err != nil {
		return false, errors.Join(fmt.Errorf("lexicon: insert %s: %w", id, err), tx.Rollback())
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("lexicon: commit repair of %s: %w", id, err)
	}
	return inserted, nil
}
