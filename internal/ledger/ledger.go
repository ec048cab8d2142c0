// Package ledger implements the state-transition rules of a single-asset
// fungible token: initialization, transfers, and delegated transfers
// backed by allowances.
//
// Every operation stages its writes and events, hands the resulting
// ChangeSet to a Committer, and folds it into the State only once the
// committer accepts it. A failing operation changes nothing.
package ledger

import (
	"fmt"

	"github.com/holiman/uint256"
)

// Op names a state-changing ledger operation.
type Op string

const (
	OpInitialize   Op = "initialize"
	OpTransfer     Op = "transfer"
	OpApprove      Op = "approve"
	OpTransferFrom Op = "transfer_from"
)

// Ledger runs operations against a State it does not own. The caller is
// responsible for serializing calls.
type Ledger struct {
	state     *State
	committer Committer
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithCommitter sets where change sets go before they are applied.
func WithCommitter(c Committer) Option {
	return func(l *Ledger) {
		l.committer = c
	}
}

// New creates a Ledger operating on st.
func New(st *State, opts ...Option) *Ledger {
	l := &Ledger{
		state:     st,
		committer: nopCommitter{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// State returns the state the ledger operates on.
func (l *Ledger) State() *State { return l.state }

// Initialize credits the whole supply to the owner. It can run once, and
// only the owner may run it.
func (l *Ledger) Initialize(caller AccountID) error {
	return l.run(OpInitialize, func(t *txn) error {
		if t.isInitialized() {
			return ErrAlreadyInitialized
		}
		if caller != l.state.owner {
			return ErrNotOwner
		}
		t.setBalance(l.state.owner, &l.state.totalSupply)
		t.initialized = true
		return nil
	})
}

// Transfer moves amount from caller to to.
func (l *Ledger) Transfer(caller, to AccountID, amount *uint256.Int) error {
	amount = orZero(amount)
	return l.run(OpTransfer, func(t *txn) error {
		return transfer(t, caller, to, amount)
	})
}

// Approve adds amount to the allowance spender holds over caller's
// balance. Approvals accumulate: a second approval raises the existing
// allowance instead of replacing it. Caller must have a balance record.
func (l *Ledger) Approve(caller, spender AccountID, amount *uint256.Int) error {
	amount = orZero(amount)
	return l.run(OpApprove, func(t *txn) error {
		if _, ok := t.balance(caller); !ok {
			return ErrAccountNotFound
		}
		key := AllowanceKey{Owner: caller, Spender: spender}
		current, _ := t.allowance(key)
		updated, err := checkedAdd(current, amount)
		if err != nil {
			return err
		}
		t.setAllowance(key, updated)
		t.emit(ApprovalEvent(caller, spender, updated))
		return nil
	})
}

// TransferFrom moves amount from from to to, spending the allowance stored
// under (from, to). The caller's identity plays no part in the check: the
// allowance is looked up by the transfer's source and destination.
func (l *Ledger) TransferFrom(caller, from, to AccountID, amount *uint256.Int) error {
	amount = orZero(amount)
	return l.run(OpTransferFrom, func(t *txn) error {
		key := AllowanceKey{Owner: from, Spender: to}
		current, ok := t.allowance(key)
		if !ok {
			return ErrAllowanceNotFound
		}
		if current.Lt(amount) {
			return ErrInsufficientAllowance
		}
		updated, err := checkedSub(current, amount)
		if err != nil {
			return err
		}
		t.setAllowance(key, updated)
		t.emit(ApprovalEvent(from, to, updated))
		return transfer(t, from, to, amount)
	})
}

// transfer is the primitive shared by Transfer and TransferFrom. The
// receiver's balance is read after the debit is staged, so a transfer to
// self leaves the balance unchanged.
func transfer(t *txn, from, to AccountID, amount *uint256.Int) error {
	fromBal, ok := t.balance(from)
	if !ok {
		return ErrAccountNotFound
	}
	if fromBal.Lt(amount) {
		return ErrInsufficientBalance
	}
	debited, err := checkedSub(fromBal, amount)
	if err != nil {
		return err
	}
	t.setBalance(from, debited)

	toBal, _ := t.balance(to)
	credited, err := checkedAdd(toBal, amount)
	if err != nil {
		return err
	}
	t.setBalance(to, credited)

	t.emit(TransferEvent(from, to, amount))
	return nil
}

func (l *Ledger) run(op Op, fn func(t *txn) error) error {
	t := newTxn(l.state)
	if err := fn(t); err != nil {
		return &CallError{Op: op, Err: err}
	}
	cs := t.changeSet(op)
	if err := l.committer.Commit(cs); err != nil {
		return &CallError{Op: op, Err: fmt.Errorf("commit: %w", err)}
	}
	cs.Apply(l.state)
	return nil
}

// --- read accessors ---

func (l *Ledger) IsInitialized() bool { return l.state.IsInitialized() }
func (l *Ledger) Owner() AccountID { return l.state.Owner() }
func (l *Ledger) TotalSupply() *uint256.Int { return l.state.TotalSupply() }
func (l *Ledger) Name() []byte { return l.state.Name() }
func (l *Ledger) Ticker() []byte { return l.state.Ticker() }

// BalanceOf returns the balance of a, or zero when a has no record.
func (l *Ledger) BalanceOf(a AccountID) *uint256.Int { return l.state.BalanceOf(a) }

// AllowanceOf returns the allowance spender holds over owner, or zero.
func (l *Ledger) AllowanceOf(owner, spender AccountID) *uint256.Int {
	return l.state.AllowanceOf(owner, spender)
}
