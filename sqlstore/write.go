package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hupe1980/triplecheck/lexicon"
	"github.com/hupe1980/triplecheck/model"
)

const termIDCounter = "term_id"

// Insert adds statements in one transaction, assigning IDs to terms seen for
// the first time. Statements already present are skipped. It returns the
// number of statements added.
func (s *Store) Insert(ctx context.Context, stmts ...model.Statement) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlstore: begin insert: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var added int64
	for _, st := range stmts {
		var keys [3][]byte
		for i, term := range [...]model.Term{st.Subject, st.Predicate, st.Object} {
			id, err := s.intern(ctx, tx, term)
			if err != nil {
				return 0, err
			}
			keys[i] = lexicon.EncodeIDKey(id)
		}

		res, err := tx.ExecContext(ctx, s.queries.statementAdd, keys[0], keys[1], keys[2])
		if err != nil {
			return 0, fmt.Errorf("sqlstore: insert statement %s: %w", st, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("sqlstore: insert statement %s: %w", st, err)
		}
		added += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlstore: commit insert: %w", err)
	}
	return added, nil
}

// InternTerm returns the ID of a term, adding it to both dictionary tables
// if it is new.
func (s *Store) InternTerm(ctx context.Context, term model.Term) (lexicon.ID, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlstore: begin intern: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	id, err := s.intern(ctx, tx, term)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlstore: commit intern: %w", err)
	}
	return id, nil
}

func (s *Store) intern(ctx context.Context, tx *sql.Tx, term model.Term) (lexicon.ID, error) {
	fk := lexicon.EncodeTermKey(term)

	var raw []byte
	err := tx.QueryRowContext(ctx, s.queries.forwardLookup, fk).Scan(&raw)
	switch {
	case err == nil:
		return lexicon.DecodeID(raw)
	case !errors.Is(err, sql.ErrNoRows):
		return 0, fmt.Errorf("sqlstore: look up %s: %w", term, err)
	}

	var next int64
	if err := tx.QueryRowContext(ctx, s.queries.nextID, termIDCounter).Scan(&next); err != nil {
		return 0, fmt.Errorf("sqlstore: allocate term id: %w", err)
	}
	id := lexicon.ID(next)

	if _, err := tx.ExecContext(ctx, s.queries.forwardInsert, fk, lexicon.EncodeID(id)); err != nil {
		return 0, fmt.Errorf("sqlstore: insert forward entry for %s: %w", term, err)
	}
	if _, err := tx.ExecContext(ctx, s.queries.reverseUpsert, lexicon.EncodeIDKey(id), lexicon.SerializeTerm(term)); err != nil {
		return 0, fmt.Errorf("sqlstore: insert reverse entry for %s: %w", id, err)
	}
	return id, nil
}

// PutReverse overwrites the raw reverse entry of id outside any lexicon
// transaction. It exists to stage damaged dictionaries.
func (s *Store) PutReverse(ctx context.Context, id lexicon.ID, value []byte) error {
	if _, err := s.db.ExecContext(ctx, s.queries.reverseUpsert, lexicon.EncodeIDKey(id), value); err != nil {
		return fmt.Errorf("sqlstore: put reverse entry %s: %w", id, err)
	}
	return nil
}

// DeleteReverse removes the reverse entry of id outside any lexicon
// transaction.
func (s *Store) DeleteReverse(ctx context.Context, id lexicon.ID) error {
	if _, err := s.db.ExecContext(ctx, s.queries.reverseRemove, lexicon.EncodeIDKey(id)); err != nil {
		return fmt.Errorf("sqlstore: delete reverse entry %s: %w", id, err)
	}
	return nil
}
