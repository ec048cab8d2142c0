// Package boltstore persists a ledger in a bbolt file. Every Commit runs
// in a single read-write transaction, so a call is either fully on disk or
// not at all.
package boltstore

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/Mohsinsiddi/w3ledger/internal/ledger"
	"github.com/Mohsinsiddi/w3ledger/internal/store"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
	bolt "go.etcd.io/bbolt"
	bolterrors "go.etcd.io/bbolt/errors"
)

var (
	metaBucket       = []byte("meta")
	balancesBucket   = []byte("balances")
	allowancesBucket = []byte("allowances")
	eventsBucket     = []byte("events")
	noncesBucket     = []byte("nonces")
	receiptsBucket   = []byte("receipts")

	genesisKey     = []byte("genesis")
	initializedKey = []byte("initialized")
)

var allBuckets = [][]byte{
	metaBucket, balancesBucket, allowancesBucket, eventsBucket, noncesBucket, receiptsBucket,
}

// Store is a BoltDB-backed store.Store.
type Store struct {
	db *bolt.DB
}

var _ store.Store = (*Store)(nil)

// DefaultTimeout bounds how long Open waits for another process to
// release the file lock.
const DefaultTimeout = time.Second

// Option configures Open.
type Option func(*bolt.Options)

// WithTimeout sets how long Open waits for the file lock.
func WithTimeout(d time.Duration) Option {
	return func(o *bolt.Options) {
		o.Timeout = d
	}
}

// WithReadOnly opens the file with a shared lock. Commit and Init fail.
func WithReadOnly() Option {
	return func(o *bolt.Options) {
		o.ReadOnly = true
	}
}

// Open opens the database at path. It is created unless the store is
// opened read-only, in which case a missing file is an fs.ErrNotExist.
func Open(path string, opts ...Option) (*Store, error) {
	bo := &bolt.Options{Timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(bo)
	}
	if bo.ReadOnly {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("opening %s: %w", path, err)
		}
	}
	db, err := bolt.Open(path, 0o600, bo)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	if bo.ReadOnly {
		return &Store{db: db}, nil
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("creating bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.db.Path() }

func (s *Store) Init(g ledger.Genesis) error {
	enc, err := encodeGenesis(g)
	if err != nil {
		return fmt.Errorf("encoding genesis: %w", err)
	}
	return s.update(func(tx *bolt.Tx) error {
		meta := tx.Bucket(metaBucket)
		if meta.Get(genesisKey) != nil {
			return store.ErrGenesisExists
		}
		return meta.Put(genesisKey, enc)
	})
}

func (s *Store) Load() (*ledger.State, error) {
	var st *ledger.State
	err := s.view(func(tx *bolt.Tx) error {
		meta := tx.Bucket(metaBucket)
		raw := meta.Get(genesisKey)
		if raw == nil {
			return store.ErrNoGenesis
		}
		g, err := decodeGenesis(raw)
		if err != nil {
			return fmt.Errorf("decoding genesis: %w", err)
		}
		st = ledger.NewState(g)
		if meta.Get(initializedKey) != nil {
			st.RestoreInitialized()
		}

		err = tx.Bucket(balancesBucket).ForEach(func(k, v []byte) error {
			st.RestoreBalance(common.BytesToAddress(k), new(uint256.Int).SetBytes(v))
			return nil
		})
		if err != nil {
			return err
		}
		return tx.Bucket(allowancesBucket).ForEach(func(k, v []byte) error {
			if len(k) != 2*common.AddressLength {
				return fmt.Errorf("corrupt allowance key of %d bytes", len(k))
			}
			owner := common.BytesToAddress(k[:common.AddressLength])
			spender := common.BytesToAddress(k[common.AddressLength:])
			st.RestoreAllowance(owner, spender, new(uint256.Int).SetBytes(v))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return st, nil
}

func (s *Store) Commit(cs *ledger.ChangeSet, r *store.Receipt) error {
	return s.update(func(tx *bolt.Tx) error {
		meta := tx.Bucket(metaBucket)
		if meta.Get(genesisKey) == nil {
			return store.ErrNoGenesis
		}
		if cs.Initialized {
			if err := meta.Put(initializedKey, []byte{1}); err != nil {
				return err
			}
		}

		balances := tx.Bucket(balancesBucket)
		for a, v := range cs.Balances {
			if err := balances.Put(a.Bytes(), amountBytes(v)); err != nil {
				return err
			}
		}
		allowances := tx.Bucket(allowancesBucket)
		for k, v := range cs.Allowances {
			if err := allowances.Put(allowanceKey(k), amountBytes(v)); err != nil {
				return err
			}
		}

		events := tx.Bucket(eventsBucket)
		var first uint64
		for i, e := range cs.Events {
			seq, err := events.NextSequence()
			if err != nil {
				return err
			}
			if i == 0 {
				first = seq
			}
			enc, err := encodeEvent(r.ID, e)
			if err != nil {
				return fmt.Errorf("encoding event: %w", err)
			}
			if err := events.Put(itob(seq), enc); err != nil {
				return err
			}
		}

		receipts := tx.Bucket(receiptsBucket)
		seq, err := receipts.NextSequence()
		if err != nil {
			return err
		}
		enc, err := rlp.EncodeToBytes(&receiptRLP{
			ID:         r.ID,
			Caller:     r.Caller,
			Op:         string(r.Op),
			Nonce:      r.Nonce,
			FirstEvent: first,
			EventCount: uint64(len(cs.Events)),
		})
		if err != nil {
			return fmt.Errorf("encoding receipt: %w", err)
		}
		if err := receipts.Put(itob(seq), enc); err != nil {
			return err
		}

		return tx.Bucket(noncesBucket).Put(r.Caller.Bytes(), itob(r.Nonce+1))
	})
}

func (s *Store) Nonce(a common.Address) (uint64, error) {
	var n uint64
	err := s.view(func(tx *bolt.Tx) error {
		if v := tx.Bucket(noncesBucket).Get(a.Bytes()); v != nil {
			n = btoi(v)
		}
		return nil
	})
	return n, err
}

func (s *Store) Events(offset, limit int) ([]store.Record, error) {
	var out []store.Record
	err := s.view(func(tx *bolt.Tx) error {
		c := tx.Bucket(eventsBucket).Cursor()
		for k, v := c.Seek(itob(uint64(max(offset, 0)) + 1)); k != nil; k, v = c.Next() {
			if limit > 0 && len(out) == limit {
				break
			}
			rec, err := decodeEvent(btoi(k), v)
			if err != nil {
				return fmt.Errorf("decoding event %d: %w", btoi(k), err)
			}
			out = append(out, rec)
		}
		return nil
	})
	return out, err
}

func (s *Store) Receipts(limit int) ([]*store.Receipt, error) {
	var out []*store.Receipt
	err := s.view(func(tx *bolt.Tx) error {
		events := tx.Bucket(eventsBucket)
		c := tx.Bucket(receiptsBucket).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(out) == limit {
				break
			}
			var rr receiptRLP
			if err := rlp.DecodeBytes(v, &rr); err != nil {
				return fmt.Errorf("decoding receipt %d: %w", btoi(k), err)
			}
			r := &store.Receipt{ID: rr.ID, Caller: rr.Caller, Op: ledger.Op(rr.Op), Nonce: rr.Nonce}
			for seq := rr.FirstEvent; seq < rr.FirstEvent+rr.EventCount; seq++ {
				rec, err := decodeEvent(seq, events.Get(itob(seq)))
				if err != nil {
					return fmt.Errorf("decoding event %d: %w", seq, err)
				}
				r.Events = append(r.Events, rec.Event)
			}
			out = append(out, r)
		}
		return nil
	})
	return out, err
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) view(fn func(tx *bolt.Tx) error) error {
	err := s.db.View(fn)
	if errors.Is(err, bolterrors.ErrDatabaseNotOpen) {
		return store.ErrClosed
	}
	return err
}

func (s *Store) update(fn func(tx *bolt.Tx) error) error {
	err := s.db.Update(fn)
	if errors.Is(err, bolterrors.ErrDatabaseNotOpen) {
		return store.ErrClosed
	}
	return err
}
