// Package host runs a ledger on behalf of remote callers. It authenticates
// signed envelopes, enforces per-account nonces, and persists every
// successful call together with its receipt in one store commit.
package host

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Mohsinsiddi/w3ledger/internal/calldata"
	"github.com/Mohsinsiddi/w3ledger/internal/ledger"
	"github.com/Mohsinsiddi/w3ledger/internal/store"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// ErrBadNonce reports an envelope whose nonce is not the signer's next one.
var ErrBadNonce = errors.New("bad envelope nonce")

// Dispatcher serializes calls against one ledger. It is safe for
// concurrent use.
type Dispatcher struct {
	mu     sync.Mutex
	store  store.Store
	state  *ledger.State
	domain []byte
	log    *zap.Logger
	newID  func() (string, error)
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(d *Dispatcher) {
		d.log = l
	}
}

// WithDomain overrides the signing domain. It defaults to the token name.
func WithDomain(domain []byte) Option {
	return func(d *Dispatcher) {
		d.domain = append([]byte(nil), domain...)
	}
}

// WithIDGenerator replaces the receipt id source.
func WithIDGenerator(fn func() (string, error)) Option {
	return func(d *Dispatcher) {
		d.newID = fn
	}
}

// Open loads the ledger kept in s.
func Open(s store.Store, opts ...Option) (*Dispatcher, error) {
	st, err := s.Load()
	if err != nil {
		return nil, fmt.Errorf("loading ledger: %w", err)
	}
	d := &Dispatcher{
		store: s,
		state: st,
		log:   zap.NewNop(),
		newID: NewReceiptID,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.domain == nil {
		d.domain = st.Name()
	}
	d.log = d.log.With(zap.ByteString("ledger", d.domain))
	return d, nil
}

// Domain returns the signing domain envelopes must be sealed for.
func (d *Dispatcher) Domain() []byte {
	return append([]byte(nil), d.domain...)
}

// Nonce returns the next nonce expected from a.
func (d *Dispatcher) Nonce(a common.Address) (uint64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.store.Nonce(a)
}

// View runs fn with the current state. fn must not retain st.
func (d *Dispatcher) View(fn func(st *ledger.State)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn(d.state)
}

// Dispatch authenticates env and runs the call it carries.
func (d *Dispatcher) Dispatch(ctx context.Context, env *Envelope) (*store.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	caller, err := Recover(d.domain, env)
	if err != nil {
		d.log.Warn("rejected envelope", zap.Error(err))
		return nil, err
	}
	call, err := calldata.Decode(env.Data)
	if err != nil {
		d.log.Warn("rejected envelope", zap.Stringer("caller", caller), zap.Error(err))
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	expected, err := d.store.Nonce(caller)
	if err != nil {
		return nil, fmt.Errorf("reading nonce: %w", err)
	}
	if env.Nonce != expected {
		d.log.Warn("rejected envelope",
			zap.Stringer("caller", caller),
			zap.Uint64("nonce", env.Nonce),
			zap.Uint64("expected", expected),
		)
		return nil, fmt.Errorf("%w: got %d, want %d", ErrBadNonce, env.Nonce, expected)
	}
	return d.execute(ctx, caller, expected, call)
}

// DispatchAs runs call for an already authenticated caller at its next
// nonce.
func (d *Dispatcher) DispatchAs(ctx context.Context, caller common.Address, call calldata.Call) (*store.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	nonce, err := d.store.Nonce(caller)
	if err != nil {
		return nil, fmt.Errorf("reading nonce: %w", err)
	}
	return d.execute(ctx, caller, nonce, call)
}

// execute runs call with d.mu held.
func (d *Dispatcher) execute(ctx context.Context, caller common.Address, nonce uint64, call calldata.Call) (*store.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id, err := d.newID()
	if err != nil {
		return nil, err
	}
	r := &store.Receipt{ID: id, Caller: caller, Op: call.Op, Nonce: nonce}
	log := d.log.With(
		zap.String("op", string(call.Op)),
		zap.Stringer("caller", caller),
		zap.Uint64("nonce", nonce),
		zap.String("receipt", id),
	)

	l := ledger.New(d.state, ledger.WithCommitter(ledger.CommitFunc(func(cs *ledger.ChangeSet) error {
		r.Events = cs.Events
		return d.store.Commit(cs, r)
	})))

	switch call.Op {
	case ledger.OpInitialize:
		err = l.Initialize(caller)
	case ledger.OpTransfer:
		err = l.Transfer(caller, call.To, call.Amount)
	case ledger.OpApprove:
		err = l.Approve(caller, call.Spender, call.Amount)
	case ledger.OpTransferFrom:
		err = l.TransferFrom(caller, call.From, call.To, call.Amount)
	default:
		err = fmt.Errorf("%w: %q", calldata.ErrUnknownSelector, call.Op)
	}
	if err != nil {
		log.Info("call failed", zap.Error(err))
		return nil, err
	}

	log.Info("call committed", zap.Int("events", len(r.Events)))
	for _, e := range r.Events {
		log.Debug("event", zap.Stringer("event", e))
	}
	return r, nil
}
