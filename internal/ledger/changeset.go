package ledger

import "github.com/holiman/uint256"

// ChangeSet is everything one successful call writes: new balance and
// allowance values, the initialized flag, and the events in emission order.
type ChangeSet struct {
	Op          Op
	Initialized bool
	Balances    map[AccountID]*uint256.Int
	Allowances  map[AllowanceKey]*uint256.Int
	Events      []Event
}

// Apply folds cs into st.
func (cs *ChangeSet) Apply(st *State) {
	if cs.Initialized {
		st.initialized = true
	}
	for a, v := range cs.Balances {
		st.balances[a] = *v
	}
	for k, v := range cs.Allowances {
		st.allowances[k] = *v
	}
}

// Committer receives the change set of a call before it is applied to the
// in-memory state. If Commit fails the call fails and nothing is applied.
type Committer interface {
	Commit(cs *ChangeSet) error
}

// CommitFunc adapts a function to Committer.
type CommitFunc func(cs *ChangeSet) error

// Commit calls f(cs).
func (f CommitFunc) Commit(cs *ChangeSet) error { return f(cs) }

type nopCommitter struct{}

func (nopCommitter) Commit(*ChangeSet) error { return nil }

// txn stages the writes of one call on top of a State. Reads see staged
// values first, so a later step observes an earlier step's writes.
type txn struct {
	st          *State
	initialized bool
	balances    map[AccountID]*uint256.Int
	allowances  map[AllowanceKey]*uint256.Int
	events      []Event
}

func newTxn(st *State) *txn {
	return &txn{
		st:         st,
		balances:   make(map[AccountID]*uint256.Int),
		allowances: make(map[AllowanceKey]*uint256.Int),
	}
}

func (t *txn) isInitialized() bool {
	return t.initialized || t.st.initialized
}

func (t *txn) balance(a AccountID) (*uint256.Int, bool) {
	if v, ok := t.balances[a]; ok {
		return v.Clone(), true
	}
	v, ok := t.st.balances[a]
	return &v, ok
}

func (t *txn) setBalance(a AccountID, v *uint256.Int) {
	t.balances[a] = v.Clone()
}

func (t *txn) allowance(k AllowanceKey) (*uint256.Int, bool) {
	if v, ok := t.allowances[k]; ok {
		return v.Clone(), true
	}
	v, ok := t.st.allowances[k]
	return &v, ok
}

func (t *txn) setAllowance(k AllowanceKey, v *uint256.Int) {
	t.allowances[k] = v.Clone()
}

func (t *txn) emit(e Event) {
	t.events = append(t.events, e)
}

func (t *txn) changeSet(op Op) *ChangeSet {
	return &ChangeSet{
		Op:          op,
		Initialized: t.initialized,
		Balances:    t.balances,
		Allowances:  t.allowances,
		Events:      t.events,
	}
}
