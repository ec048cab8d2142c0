// Package storetest holds the behaviour every store.Store must share.
// Backends call Run from their own tests.
package storetest

import (
	"sync"
	"testing"

	"github.com/Mohsinsiddi/w3ledger/internal/ledger"
	"github.com/Mohsinsiddi/w3ledger/internal/store"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	Owner = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	Bob   = common.HexToAddress("0x00000000000000000000000000000000000000b2")
	Carol = common.HexToAddress("0x00000000000000000000000000000000000000c3")
)

// Genesis is the configuration every conformance test starts from.
func Genesis() ledger.Genesis {
	return ledger.Genesis{
		Owner:       Owner,
		TotalSupply: uint256.NewInt(1000),
		Name:        []byte("Store Token"),
		Ticker:      []byte("STO"),
	}
}

// Run exercises a fresh store produced by open for each subtest.
func Run(t *testing.T, open func(t *testing.T) store.Store) {
	t.Run("LoadWithoutGenesis", func(t *testing.T) {
		s := open(t)
		_, err := s.Load()
		assert.ErrorIs(t, err, store.ErrNoGenesis)
	})

	t.Run("InitTwice", func(t *testing.T) {
		s := open(t)
		require.NoError(t, s.Init(Genesis()))
		assert.ErrorIs(t, s.Init(Genesis()), store.ErrGenesisExists)
	})

	t.Run("GenesisRoundTrip", func(t *testing.T) {
		s := open(t)
		require.NoError(t, s.Init(Genesis()))

		st, err := s.Load()
		require.NoError(t, err)
		assert.False(t, st.IsInitialized())
		assert.Equal(t, Owner, st.Owner())
		assert.Equal(t, "1000", st.TotalSupply().Dec())
		assert.Equal(t, "Store Token", string(st.Name()))
		assert.Equal(t, "STO", string(st.Ticker()))
		assert.Empty(t, st.Accounts())
	})

	t.Run("CommitPersistsLedgerCalls", func(t *testing.T) {
		s := open(t)
		require.NoError(t, s.Init(Genesis()))
		st, err := s.Load()
		require.NoError(t, err)

		nonce := uint64(0)
		commit := func(caller common.Address, id string) ledger.Option {
			return ledger.WithCommitter(ledger.CommitFunc(func(cs *ledger.ChangeSet) error {
				n, err := s.Nonce(caller)
				if err != nil {
					return err
				}
				nonce = n
				return s.Commit(cs, &store.Receipt{ID: id, Caller: caller, Op: cs.Op, Nonce: n})
			}))
		}

		require.NoError(t, ledger.New(st, commit(Owner, "r1")).Initialize(Owner))
		require.NoError(t, ledger.New(st, commit(Owner, "r2")).Transfer(Owner, Bob, uint256.NewInt(300)))
		require.NoError(t, ledger.New(st, commit(Bob, "r3")).Approve(Bob, Carol, uint256.NewInt(100)))
		assert.Equal(t, uint64(0), nonce, "Bob's first call used nonce 0")

		loaded, err := s.Load()
		require.NoError(t, err)
		assert.True(t, loaded.IsInitialized())
		assert.Equal(t, "700", loaded.BalanceOf(Owner).Dec())
		assert.Equal(t, "300", loaded.BalanceOf(Bob).Dec())
		assert.Equal(t, "100", loaded.AllowanceOf(Bob, Carol).Dec())
		assert.True(t, loaded.Conserved())

		n, err := s.Nonce(Owner)
		require.NoError(t, err)
		assert.Equal(t, uint64(2), n)
		n, err = s.Nonce(Bob)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), n)
		n, err = s.Nonce(Carol)
		require.NoError(t, err)
		assert.Zero(t, n)

		events, err := s.Events(0, 0)
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, uint64(1), events[0].Seq)
		assert.Equal(t, "r2", events[0].Receipt)
		assert.Equal(t, ledger.EventTransfer, events[0].Event.Kind)
		assert.Equal(t, "300", events[0].Event.Amount.Dec())
		assert.Equal(t, uint64(2), events[1].Seq)
		assert.Equal(t, ledger.EventApproval, events[1].Event.Kind)
		assert.Equal(t, Bob, events[1].Event.Owner())
		assert.Equal(t, Carol, events[1].Event.Spender())

		page, err := s.Events(1, 5)
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, uint64(2), page[0].Seq)

		receipts, err := s.Receipts(2)
		require.NoError(t, err)
		require.Len(t, receipts, 2)
		assert.Equal(t, "r3", receipts[0].ID)
		assert.Equal(t, ledger.OpApprove, receipts[0].Op)
		require.Len(t, receipts[0].Events, 1)
		assert.Equal(t, "r2", receipts[1].ID)
		assert.Equal(t, uint64(1), receipts[1].Nonce)

		all, err := s.Receipts(0)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, ledger.OpInitialize, all[2].Op)
		assert.Empty(t, all[2].Events)
	})

	t.Run("FailedCallWritesNothing", func(t *testing.T) {
		s := open(t)
		require.NoError(t, s.Init(Genesis()))
		st, err := s.Load()
		require.NoError(t, err)

		calls := 0
		l := ledger.New(st, ledger.WithCommitter(ledger.CommitFunc(func(cs *ledger.ChangeSet) error {
			calls++
			return s.Commit(cs, &store.Receipt{ID: "x", Caller: Owner, Op: cs.Op})
		})))
		require.NoError(t, l.Initialize(Owner))
		require.Error(t, l.Transfer(Owner, Bob, uint256.NewInt(1001)))
		assert.Equal(t, 1, calls)

		loaded, err := s.Load()
		require.NoError(t, err)
		assert.Equal(t, "1000", loaded.BalanceOf(Owner).Dec())
		assert.False(t, loaded.HasAccount(Bob))

		events, err := s.Events(0, 0)
		require.NoError(t, err)
		assert.Empty(t, events)
	})

	t.Run("ConcurrentReadsDuringCommits", func(t *testing.T) {
		s := open(t)
		require.NoError(t, s.Init(Genesis()))
		st, err := s.Load()
		require.NoError(t, err)

		var seq uint64
		l := ledger.New(st, ledger.WithCommitter(ledger.CommitFunc(func(cs *ledger.ChangeSet) error {
			r := &store.Receipt{ID: "c", Caller: Owner, Op: cs.Op, Nonce: seq}
			seq++
			return s.Commit(cs, r)
		})))
		require.NoError(t, l.Initialize(Owner))

		const transfers = 200
		done := make(chan struct{})
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				_, _ = s.Nonce(Owner)
				_, _ = s.Events(0, 10)
				_, _ = s.Receipts(5)
				_, _ = s.Load()
			}
		}()
		for i := 0; i < transfers; i++ {
			require.NoError(t, l.Transfer(Owner, Bob, uint256.NewInt(1)))
		}
		close(done)
		wg.Wait()

		n, err := s.Nonce(Owner)
		require.NoError(t, err)
		assert.Equal(t, uint64(transfers+1), n)
		events, err := s.Events(0, 0)
		require.NoError(t, err)
		assert.Len(t, events, transfers)
		loaded, err := s.Load()
		require.NoError(t, err)
		assert.Equal(t, "200", loaded.BalanceOf(Bob).Dec())
		assert.True(t, loaded.Conserved())
	})

	t.Run("EventsPastEnd", func(t *testing.T) {
		s := open(t)
		events, err := s.Events(10, 10)
		require.NoError(t, err)
		assert.Empty(t, events)
	})
}
