package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/mdaffar/marketledger/internal/usecase"
)

var errForeignTx = errors.New("memory: transaction was not started by this store")

// TxManager implements usecase.TxManager for the in-memory stores.
type TxManager struct{}

// NewTxManager creates a new TxManager.
func NewTxManager() *TxManager {
	return &TxManager{}
}

// Begin starts a new unit of work.
func (m *TxManager) Begin(ctx context.Context) (usecase.Tx, error) {
	return &Tx{}, nil
}

// Tx is an in-memory unit of work built on compensating actions. Mutating
// repository calls register an undo for every write; Rollback replays the
// undos in reverse, so a failure partway through a multi-store operation
// restores the exact prior state. Entity locks taken through the Tx are held
// until it finishes, either way.
type Tx struct {
	mu       sync.Mutex
	undo     []func()
	release  []func()
	finished bool
}

// onRollback registers a compensating action for a staged write.
func (t *Tx) onRollback(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.undo = append(t.undo, fn)
}

// onRelease registers an entity lock release, run when the Tx finishes.
func (t *Tx) onRelease(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.release = append(t.release, fn)
}

// Commit keeps all staged writes and releases the held locks.
func (t *Tx) Commit(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.finished {
		return nil
	}
	t.finished = true
	t.undo = nil
	t.releaseLocks()

	return nil
}

// Rollback compensates all staged writes in reverse order and releases the
// held locks. Rolling back a finished Tx is a no-op, so deferring Rollback
// after a successful Commit is safe.
func (t *Tx) Rollback(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.finished {
		return nil
	}
	t.finished = true

	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
	t.releaseLocks()

	return nil
}

func (t *Tx) releaseLocks() {
	for i := len(t.release) - 1; i >= 0; i-- {
		t.release[i]()
	}
	t.release = nil
}

// asTx narrows a usecase.Tx to the in-memory implementation.
func asTx(tx usecase.Tx) (*Tx, error) {
	mtx, ok := tx.(*Tx)
	if !ok {
		return nil, errForeignTx
	}
	return mtx, nil
}
