// Package store defines the persistent state store the host keeps a
// ledger in, plus the record types it persists alongside the state:
// the event log, per-account call nonces and call receipts.
package store

import (
	"errors"

	"github.com/Mohsinsiddi/w3ledger/internal/ledger"
	"github.com/ethereum/go-ethereum/common"
)

// Errors.
var (
	ErrNoGenesis     = errors.New("store has no genesis; run `w3ledger genesis` first")
	ErrGenesisExists = errors.New("store already has a genesis")
	ErrClosed        = errors.New("store is closed")
)

// Receipt summarizes one committed call.
type Receipt struct {
	ID     string
	Caller common.Address
	Op     ledger.Op
	Nonce  uint64
	Events []ledger.Event
}

// Record is a persisted event with its position in the log (starting at 1)
// and the receipt of the call that emitted it.
type Record struct {
	Seq     uint64
	Receipt string
	Event   ledger.Event
}

// Store persists one ledger.
type Store interface {
	// Init writes the genesis configuration. It fails with ErrGenesisExists
	// if one is already present.
	Init(g ledger.Genesis) error

	// Load rebuilds the full ledger state. It fails with ErrNoGenesis on an
	// empty store.
	Load() (*ledger.State, error)

	// Commit atomically persists cs, appends its events, stores r and sets
	// the caller's next nonce to r.Nonce+1. On error nothing is written.
	Commit(cs *ledger.ChangeSet, r *Receipt) error

	// Nonce returns the next expected nonce for a.
	Nonce(a common.Address) (uint64, error)

	// Events returns up to limit events after the first offset ones.
	// A limit <= 0 means no limit.
	Events(offset, limit int) ([]Record, error)

	// Receipts returns up to limit receipts, most recent first.
	Receipts(limit int) ([]*Receipt, error)

	Close() error
}
