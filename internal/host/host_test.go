package host_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/Mohsinsiddi/w3ledger/internal/calldata"
	"github.com/Mohsinsiddi/w3ledger/internal/host"
	"github.com/Mohsinsiddi/w3ledger/internal/ledger"
	"github.com/Mohsinsiddi/w3ledger/internal/store"
	"github.com/Mohsinsiddi/w3ledger/internal/store/memstore"
	"github.com/Mohsinsiddi/w3ledger/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// Well-known Anvil accounts #0 and #1. Never fund on a live network.
const (
	ownerKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	bobKey   = "59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d"
)

var carol = common.HexToAddress("0x00000000000000000000000000000000000000c3")

func signer(t *testing.T, key string) *wallet.KeySigner {
	t.Helper()
	s, err := wallet.NewKeySigner(key)
	require.NoError(t, err)
	return s
}

type fixture struct {
	store *memstore.Store
	d     *host.Dispatcher
	owner *wallet.KeySigner
	bob   *wallet.KeySigner
	logs  *observer.ObservedLogs
}

func newFixture(t *testing.T, supply uint64, opts ...host.Option) *fixture {
	t.Helper()
	f := &fixture{
		store: memstore.New(),
		owner: signer(t, ownerKey),
		bob:   signer(t, bobKey),
	}
	require.NoError(t, f.store.Init(ledger.Genesis{
		Owner:       f.owner.Address(),
		TotalSupply: uint256.NewInt(supply),
		Name:        []byte("Host Token"),
		Ticker:      []byte("HST"),
	}))

	core, logs := observer.New(zap.DebugLevel)
	f.logs = logs
	d, err := host.Open(f.store, append([]host.Option{host.WithLogger(zap.New(core))}, opts...)...)
	require.NoError(t, err)
	f.d = d
	return f
}

func (f *fixture) send(t *testing.T, s host.Signer, call calldata.Call) (*store.Receipt, error) {
	t.Helper()
	nonce, err := f.d.Nonce(s.Address())
	require.NoError(t, err)
	env, err := host.Seal(f.d.Domain(), nonce, call, s)
	require.NoError(t, err)
	return f.d.Dispatch(context.Background(), env)
}

func (f *fixture) balance(a common.Address) string {
	var out string
	f.d.View(func(st *ledger.State) { out = st.BalanceOf(a).Dec() })
	return out
}

func TestOpenWithoutGenesis(t *testing.T) {
	_, err := host.Open(memstore.New())
	assert.ErrorIs(t, err, store.ErrNoGenesis)
}

func TestDomainDefaultsToName(t *testing.T) {
	f := newFixture(t, 10)
	assert.Equal(t, []byte("Host Token"), f.d.Domain())

	g := newFixture(t, 10, host.WithDomain([]byte("other")))
	assert.Equal(t, []byte("other"), g.d.Domain())
}

func TestSignedCallsRunAndPersist(t *testing.T) {
	f := newFixture(t, 1000)

	r, err := f.send(t, f.owner, calldata.Initialize())
	require.NoError(t, err)
	assert.Equal(t, ledger.OpInitialize, r.Op)
	assert.Equal(t, f.owner.Address(), r.Caller)
	assert.Equal(t, uint64(0), r.Nonce)
	assert.True(t, strings.HasPrefix(r.ID, "rcpt_"))
	assert.Empty(t, r.Events)

	r, err = f.send(t, f.owner, calldata.Transfer(f.bob.Address(), uint256.NewInt(250)))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), r.Nonce)
	require.Len(t, r.Events, 1)
	assert.Equal(t, ledger.TransferEvent(f.owner.Address(), f.bob.Address(), uint256.NewInt(250)), r.Events[0])

	assert.Equal(t, "750", f.balance(f.owner.Address()))
	assert.Equal(t, "250", f.balance(f.bob.Address()))

	persisted, err := f.store.Load()
	require.NoError(t, err)
	assert.Equal(t, "250", persisted.BalanceOf(f.bob.Address()).Dec())

	n, err := f.d.Nonce(f.owner.Address())
	require.NoError(t, err)
	assert.Equal(t, uint64(2), n)

	receipts, err := f.store.Receipts(1)
	require.NoError(t, err)
	require.Len(t, receipts, 1)
	assert.Equal(t, r.ID, receipts[0].ID)
}

func TestApproveAndTransferFromEnvelope(t *testing.T) {
	f := newFixture(t, 1000)
	_, err := f.send(t, f.owner, calldata.Initialize())
	require.NoError(t, err)

	_, err = f.send(t, f.owner, calldata.Approve(carol, uint256.NewInt(300)))
	require.NoError(t, err)

	// The allowance is keyed by (from, to), so bob can move owner's funds
	// to carol.
	r, err := f.send(t, f.bob, calldata.TransferFrom(f.owner.Address(), carol, uint256.NewInt(100)))
	require.NoError(t, err)
	require.Len(t, r.Events, 2)
	assert.Equal(t, ledger.EventApproval, r.Events[0].Kind)
	assert.Equal(t, "200", r.Events[0].Amount.Dec())
	assert.Equal(t, ledger.EventTransfer, r.Events[1].Kind)

	assert.Equal(t, "100", f.balance(carol))
	var allowance string
	f.d.View(func(st *ledger.State) { allowance = st.AllowanceOf(f.owner.Address(), carol).Dec() })
	assert.Equal(t, "200", allowance)
}

func TestReplayRejected(t *testing.T) {
	f := newFixture(t, 1000)
	env, err := host.Seal(f.d.Domain(), 0, calldata.Initialize(), f.owner)
	require.NoError(t, err)

	_, err = f.d.Dispatch(context.Background(), env)
	require.NoError(t, err)

	_, err = f.d.Dispatch(context.Background(), env)
	assert.ErrorIs(t, err, host.ErrBadNonce)
}

func TestFutureNonceRejected(t *testing.T) {
	f := newFixture(t, 1000)
	env, err := host.Seal(f.d.Domain(), 5, calldata.Initialize(), f.owner)
	require.NoError(t, err)

	_, err = f.d.Dispatch(context.Background(), env)
	assert.ErrorIs(t, err, host.ErrBadNonce)
	assert.Equal(t, 1, f.logs.FilterMessage("rejected envelope").Len())
}

func TestFailedCallKeepsNonce(t *testing.T) {
	f := newFixture(t, 1000)

	_, err := f.send(t, f.bob, calldata.Initialize())
	assert.ErrorIs(t, err, ledger.ErrNotOwner)

	n, err := f.d.Nonce(f.bob.Address())
	require.NoError(t, err)
	assert.Zero(t, n)

	receipts, err := f.store.Receipts(0)
	require.NoError(t, err)
	assert.Empty(t, receipts)

	entries := f.logs.FilterMessage("call failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "initialize", entries[0].ContextMap()["op"])
}

func TestWrongDomainRecoversOtherSigner(t *testing.T) {
	f := newFixture(t, 1000)
	env, err := host.Seal([]byte("another ledger"), 0, calldata.Initialize(), f.owner)
	require.NoError(t, err)

	// The digest differs, so recovery yields some other account which is
	// not the owner.
	_, err = f.d.Dispatch(context.Background(), env)
	assert.ErrorIs(t, err, ledger.ErrNotOwner)
	assert.Equal(t, "0", f.balance(f.owner.Address()))
}

func TestBadSignatureRejected(t *testing.T) {
	f := newFixture(t, 1000)
	env, err := host.Seal(f.d.Domain(), 0, calldata.Initialize(), f.owner)
	require.NoError(t, err)

	env.Signature = env.Signature[:10]
	_, err = f.d.Dispatch(context.Background(), env)
	assert.ErrorIs(t, err, host.ErrBadSignature)
}

func TestMalformedCalldataRejected(t *testing.T) {
	f := newFixture(t, 1000)
	env := &host.Envelope{Nonce: 0, Data: []byte{0xde, 0xad, 0xbe, 0xef}}
	digest, err := host.Digest(f.d.Domain(), env.Nonce, env.Data)
	require.NoError(t, err)
	env.Signature, err = f.owner.Sign(digest.Bytes())
	require.NoError(t, err)

	_, err = f.d.Dispatch(context.Background(), env)
	assert.ErrorIs(t, err, calldata.ErrUnknownSelector)
}

func TestCanceledContext(t *testing.T) {
	f := newFixture(t, 1000)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.d.DispatchAs(ctx, f.owner.Address(), calldata.Initialize())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDispatchAs(t *testing.T) {
	f := newFixture(t, 1000)
	ctx := context.Background()

	_, err := f.d.DispatchAs(ctx, f.owner.Address(), calldata.Initialize())
	require.NoError(t, err)
	r, err := f.d.DispatchAs(ctx, f.owner.Address(), calldata.Transfer(carol, uint256.NewInt(1)))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), r.Nonce)
	assert.Equal(t, "1", f.balance(carol))
}

func TestConcurrentDispatchConserves(t *testing.T) {
	f := newFixture(t, 1_000_000)
	ctx := context.Background()
	_, err := f.d.DispatchAs(ctx, f.owner.Address(), calldata.Initialize())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			to := common.BigToAddress(uint256.NewInt(uint64(i + 1)).ToBig())
			_, err := f.d.DispatchAs(ctx, f.owner.Address(), calldata.Transfer(to, uint256.NewInt(10)))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, "999500", f.balance(f.owner.Address()))
	f.d.View(func(st *ledger.State) { assert.True(t, st.Conserved()) })

	n, err := f.d.Nonce(f.owner.Address())
	require.NoError(t, err)
	assert.Equal(t, uint64(51), n)
}

type failingStore struct {
	*memstore.Store
}

func (failingStore) Commit(*ledger.ChangeSet, *store.Receipt) error {
	return errors.New("disk full")
}

func TestStoreFailureLeavesStateUntouched(t *testing.T) {
	s := memstore.New()
	owner := signer(t, ownerKey)
	require.NoError(t, s.Init(ledger.Genesis{Owner: owner.Address(), TotalSupply: uint256.NewInt(5)}))

	d, err := host.Open(failingStore{s})
	require.NoError(t, err)

	_, err = d.DispatchAs(context.Background(), owner.Address(), calldata.Initialize())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	d.View(func(st *ledger.State) {
		assert.False(t, st.IsInitialized())
		assert.False(t, st.HasAccount(owner.Address()))
	})
}

func TestReceiptIDGeneratorFailure(t *testing.T) {
	f := newFixture(t, 5, host.WithIDGenerator(func() (string, error) {
		return "", errors.New("entropy exhausted")
	}))
	_, err := f.d.DispatchAs(context.Background(), f.owner.Address(), calldata.Initialize())
	assert.ErrorContains(t, err, "entropy exhausted")
}
