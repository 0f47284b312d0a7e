package sqlstore

import (
	"context"
	"fmt"
	"iter"

	"github.com/hupe1980/triplecheck/lexicon"
	"github.com/hupe1980/triplecheck/model"
	"github.com/hupe1980/triplecheck/scan"
)

var (
	_ scan.Scanner = (*Store)(nil)
	_ scan.Counter = (*Store)(nil)
)

// StatementCount implements scan.Counter.
func (s *Store) StatementCount(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, s.queries.statementCount).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlstore: count statements: %w", err)
	}
	return n, nil
}

// Statements implements scan.Scanner. Statements are yielded in insertion
// order with every term resolved through the reverse dictionary. A missing
// or undecodable reverse entry ends the scan with an error.
func (s *Store) Statements(ctx context.Context) iter.Seq2[model.Statement, error] {
	return func(yield func(model.Statement, error) bool) {
		rows, err := s.db.QueryContext(ctx, s.queries.statementScan)
		if err != nil {
			yield(model.Statement{}, fmt.Errorf("sqlstore: scan statements: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			var (
				seq             int64
				subj, pred, obj []byte
			)
			if err := rows.Scan(&seq, &subj, &pred, &obj); err != nil {
				yield(model.Statement{}, fmt.Errorf("sqlstore: scan statement row: %w", err))
				return
			}

			st, err := resolve(seq, subj, pred, obj)
			if !yield(st, err) || err != nil {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(model.Statement{}, fmt.Errorf("sqlstore: scan statements: %w", err))
		}
	}
}

func resolve(seq int64, subj, pred, obj []byte) (model.Statement, error) {
	var terms [3]model.Term
	for i, raw := range [...][]byte{subj, pred, obj} {
		if raw == nil {
			return model.Statement{}, fmt.Errorf("sqlstore: statement %d: %s has no reverse entry", seq, position(i))
		}
		t, err := lexicon.DeserializeTerm(raw)
		if err != nil {
			return model.Statement{}, fmt.Errorf("sqlstore: statement %d: %s: %w", seq, position(i), err)
		}
		terms[i] = t
	}
	return model.NewStatement(terms[0], terms[1], terms[2]), nil
}

func position(i int) string {
	switch i {
	case 0:
		return "subject"
	case 1:
		return "predicate"
	default:
		return "object"
	}
}
