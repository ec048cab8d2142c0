// Package memstore is an in-memory store.Store for tests and ephemeral runs.
package memstore

import (
	"sync"

	"github.com/Mohsinsiddi/w3ledger/internal/ledger"
	"github.com/Mohsinsiddi/w3ledger/internal/store"
	"github.com/ethereum/go-ethereum/common"
)

// Store keeps everything in process memory. Load and Receipts return
// copies so callers never alias what is stored. Safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	genesis  *ledger.Genesis
	state    *ledger.State
	events   []store.Record
	receipts []*store.Receipt
	nonces   map[common.Address]uint64
	closed   bool
}

var _ store.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{nonces: make(map[common.Address]uint64)}
}

func (s *Store) Init(g ledger.Genesis) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return store.ErrClosed
	}
	if s.genesis != nil {
		return store.ErrGenesisExists
	}
	s.genesis = &g
	s.state = ledger.NewState(g)
	return nil
}

func (s *Store) Load() (*ledger.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, store.ErrClosed
	}
	if s.genesis == nil {
		return nil, store.ErrNoGenesis
	}
	return copyState(s.state), nil
}

func (s *Store) Commit(cs *ledger.ChangeSet, r *store.Receipt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return store.ErrClosed
	}
	if s.genesis == nil {
		return store.ErrNoGenesis
	}
	cs.Apply(s.state)
	for _, e := range cs.Events {
		s.events = append(s.events, store.Record{
			Seq:     uint64(len(s.events) + 1),
			Receipt: r.ID,
			Event:   e,
		})
	}
	rc := *r
	rc.Events = append([]ledger.Event(nil), cs.Events...)
	s.receipts = append(s.receipts, &rc)
	s.nonces[r.Caller] = r.Nonce + 1
	return nil
}

func (s *Store) Nonce(a common.Address) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, store.ErrClosed
	}
	return s.nonces[a], nil
}

func (s *Store) Events(offset, limit int) ([]store.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, store.ErrClosed
	}
	offset = max(offset, 0)
	if offset >= len(s.events) {
		return nil, nil
	}
	end := len(s.events)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	out := make([]store.Record, end-offset)
	copy(out, s.events[offset:end])
	return out, nil
}

func (s *Store) Receipts(limit int) ([]*store.Receipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, store.ErrClosed
	}
	var out []*store.Receipt
	for i := len(s.receipts) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		rc := *s.receipts[i]
		rc.Events = append([]ledger.Event(nil), rc.Events...)
		out = append(out, &rc)
	}
	return out, nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func copyState(src *ledger.State) *ledger.State {
	dst := ledger.NewState(src.Genesis())
	if src.IsInitialized() {
		dst.RestoreInitialized()
	}
	for _, a := range src.Accounts() {
		dst.RestoreBalance(a, src.BalanceOf(a))
	}
	for _, k := range src.AllowanceKeys() {
		dst.RestoreAllowance(k.Owner, k.Spender, src.AllowanceOf(k.Owner, k.Spender))
	}
	return dst
}
