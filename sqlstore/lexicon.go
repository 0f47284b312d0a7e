package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hupe1980/triplecheck/lexicon"
)

var _ lexicon.Lexicon = (*Store)(nil)

// Begin implements lexicon.Lexicon.
func (s *Store) Begin(ctx context.Context) (lexicon.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: begin: %w", err)
	}
	return &sqlTx{tx: tx, q: &s.queries}, nil
}

type sqlTx struct {
	tx *sql.Tx
	q  *queries
}

func txErr(err error) error {
	if errors.Is(err, sql.ErrTxDone) {
		return lexicon.ErrTxDone
	}
	return err
}

func (t *sqlTx) lookup(ctx context.Context, query string, key []byte) ([]byte, bool, error) {
	var v []byte
	err := t.tx.QueryRowContext(ctx, query, key).Scan(&v)
	switch {
	case err == nil:
		return v, true, nil
	case errors.Is(err, sql.ErrNoRows):
		return nil, false, nil
	default:
		return nil, false, txErr(err)
	}
}

func (t *sqlTx) ForwardLookup(ctx context.Context, key []byte) ([]byte, bool, error) {
	return t.lookup(ctx, t.q.forwardLookup, key)
}

func (t *sqlTx) ReverseLookup(ctx context.Context, key []byte) ([]byte, bool, error) {
	return t.lookup(ctx, t.q.reverseLookup, key)
}

func (t *sqlTx) Remove(ctx context.Context, key []byte) error {
	_, err := t.tx.ExecContext(ctx, t.q.reverseRemove, key)
	return txErr(err)
}

func (t *sqlTx) InsertIfAbsent(ctx context.Context, key, value []byte) (bool, error) {
	res, err := t.tx.ExecContext(ctx, t.q.reverseInsert, key, value)
	if err != nil {
		return false, txErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (t *sqlTx) Commit() error {
	return txErr(t.tx.Commit())
}

func (t *sqlTx) Rollback() error {
	return txErr(t.tx.Rollback())
}
