package lexicon

import (
	"context"
	"sync"

	"github.com/hupe1980/triplecheck/model"
)

// MemoryLexicon is an in-memory Lexicon for tests and fixtures.
// Writes are staged per transaction and applied on Commit.
type MemoryLexicon struct {
	mu      sync.RWMutex
	forward map[string][]byte
	reverse map[string][]byte
	next    ID
	commits int
}

// NewMemoryLexicon creates an empty lexicon. IDs start at 1.
func NewMemoryLexicon() *MemoryLexicon {
	return &MemoryLexicon{
		forward: make(map[string][]byte),
		reverse: make(map[string][]byte),
		next:    1,
	}
}

// Add registers a term in both indices and returns its ID. Adding a known
// term returns the existing ID.
func (l *MemoryLexicon) Add(t model.Term) ID {
	l.mu.Lock()
	defer l.mu.Unlock()

	fk := string(EncodeTermKey(t))
	if b, ok := l.forward[fk]; ok {
		id, _ := DecodeID(b)
		return id
	}

	id := l.next
	l.next++
	l.forward[fk] = EncodeID(id)
	l.reverse[string(EncodeIDKey(id))] = SerializeTerm(t)
	return id
}

// SetReverse overwrites the raw reverse entry of id, bypassing transactions.
func (l *MemoryLexicon) SetReverse(id ID, value []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reverse[string(EncodeIDKey(id))] = append([]byte(nil), value...)
}

// DeleteReverse drops the reverse entry of id, bypassing transactions.
func (l *MemoryLexicon) DeleteReverse(id ID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.reverse, string(EncodeIDKey(id)))
}

// Commits returns the number of committed transactions.
func (l *MemoryLexicon) Commits() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.commits
}

// Begin implements Lexicon.
func (l *MemoryLexicon) Begin(ctx context.Context) (Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &memoryTx{l: l, staged: make(map[string][]byte)}, nil
}

type memoryTx struct {
	l      *MemoryLexicon
	staged map[string][]byte // nil value marks a removal
	done   bool
}

func (tx *memoryTx) ForwardLookup(_ context.Context, key []byte) ([]byte, bool, error) {
	if tx.done {
		return nil, false, ErrTxDone
	}
	tx.l.mu.RLock()
	defer tx.l.mu.RUnlock()
	v, ok := tx.l.forward[string(key)]
	return v, ok, nil
}

func (tx *memoryTx) ReverseLookup(_ context.Context, key []byte) ([]byte, bool, error) {
	if tx.done {
		return nil, false, ErrTxDone
	}
	if v, ok := tx.staged[string(key)]; ok {
		return v, v != nil, nil
	}
	tx.l.mu.RLock()
	defer tx.l.mu.RUnlock()
	v, ok := tx.l.reverse[string(key)]
	return v, ok, nil
}

func (tx *memoryTx) Remove(_ context.Context, key []byte) error {
	if tx.done {
		return ErrTxDone
	}
	tx.staged[string(key)] = nil
	return nil
}

func (tx *memoryTx) InsertIfAbsent(ctx context.Context, key, value []byte) (bool, error) {
	_, found, err := tx.ReverseLookup(ctx, key)
	if err != nil || found {
		return false, err
	}
	tx.staged[string(key)] = append([]byte(nil), value...)
	return true, nil
}

func (tx *memoryTx) Commit() error {
	if tx.done {
		return ErrTxDone
	}
	tx.done = true

	tx.l.mu.Lock()
	defer tx.l.mu.Unlock()
	for k, v := range tx.staged {
		if v == nil {
			delete(tx.l.reverse, k)
		} else {
			tx.l.reverse[k] = v
		}
	}
	tx.l.commits++
	return nil
}

func (tx *memoryTx) Rollback() error {
	if tx.done {
		return ErrTxDone
	}
	tx.done = true
	return nil
}
