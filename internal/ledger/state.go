package ledger

import (
	"bytes"
	"slices"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// AccountID identifies a ledger account.
type AccountID = common.Address

// AllowanceKey is the (owner, spender) pair an allowance is stored under.
type AllowanceKey struct {
	Owner   AccountID
	Spender AccountID
}

// Genesis is the configuration fixed at deployment.
type Genesis struct {
	Owner       AccountID
	TotalSupply *uint256.Int
	Name        []byte
	Ticker      []byte
}

// State is the ledger's complete persistent record. It is not safe for
// concurrent use; the host serializes every call that touches it.
type State struct {
	owner       AccountID
	totalSupply uint256.Int
	name        []byte
	ticker      []byte
	initialized bool
	balances    map[AccountID]uint256.Int
	allowances  map[AllowanceKey]uint256.Int
}

// NewState returns an uninitialized state for g. No account has a balance
// record until Initialize runs.
func NewState(g Genesis) *State {
	return &State{
		owner:       g.Owner,
		totalSupply: *orZero(g.TotalSupply),
		name:        bytes.Clone(g.Name),
		ticker:      bytes.Clone(g.Ticker),
		balances:    make(map[AccountID]uint256.Int),
		allowances:  make(map[AllowanceKey]uint256.Int),
	}
}

// Genesis returns a copy of the deployment configuration.
func (s *State) Genesis() Genesis {
	return Genesis{
		Owner:       s.owner,
		TotalSupply: s.totalSupply.Clone(),
		Name:        bytes.Clone(s.name),
		Ticker:      bytes.Clone(s.ticker),
	}
}

// --- restore (used by stores rebuilding a persisted state) ---

// RestoreInitialized marks the state as initialized.
func (s *State) RestoreInitialized() { s.initialized = true }

// RestoreBalance writes a balance record directly, bypassing every rule.
func (s *State) RestoreBalance(a AccountID, v *uint256.Int) { s.balances[a] = *orZero(v) }

// RestoreAllowance writes an allowance record directly, bypassing every rule.
func (s *State) RestoreAllowance(owner, spender AccountID, v *uint256.Int) {
	s.allowances[AllowanceKey{Owner: owner, Spender: spender}] = *orZero(v)
}

// --- read accessors ---

// IsInitialized reports whether Initialize has run.
func (s *State) IsInitialized() bool { return s.initialized }

// Owner returns the account allowed to initialize the ledger.
func (s *State) Owner() AccountID { return s.owner }

// TotalSupply returns the fixed unit count set at genesis.
func (s *State) TotalSupply() *uint256.Int { return s.totalSupply.Clone() }

func (s *State) Name() []byte { return bytes.Clone(s.name) }

func (s *State) Ticker() []byte { return bytes.Clone(s.ticker) }

// HasAccount reports whether a has a balance record. A zero balance still
// counts as a record.
func (s *State) HasAccount(a AccountID) bool {
	_, ok := s.balances[a]
	return ok
}

// BalanceOf returns the balance of a, or zero when a has no record.
func (s *State) BalanceOf(a AccountID) *uint256.Int {
	v := s.balances[a]
	return &v
}

// AllowanceOf returns what spender may move out of owner, or zero.
func (s *State) AllowanceOf(owner, spender AccountID) *uint256.Int {
	v := s.allowances[AllowanceKey{Owner: owner, Spender: spender}]
	return &v
}

// Accounts returns every account holding a balance record, sorted.
func (s *State) Accounts() []AccountID {
	out := make([]AccountID, 0, len(s.balances))
	for a := range s.balances {
		out = append(out, a)
	}
	slices.SortFunc(out, func(x, y AccountID) int { return x.Cmp(y) })
	return out
}

// AllowanceKeys returns every allowance record key, sorted by owner then spender.
func (s *State) AllowanceKeys() []AllowanceKey {
	out := make([]AllowanceKey, 0, len(s.allowances))
	for k := range s.allowances {
		out = append(out, k)
	}
	slices.SortFunc(out, func(x, y AllowanceKey) int {
		if c := x.Owner.Cmp(y.Owner); c != 0 {
			return c
		}
		return x.Spender.Cmp(y.Spender)
	})
	return out
}

// Circulating sums every balance. It reports false if the sum does not fit
// in 256 bits, which can only happen with a corrupted state.
func (s *State) Circulating() (*uint256.Int, bool) {
	sum := new(uint256.Int)
	for _, v := range s.balances {
		if _, overflow := sum.AddOverflow(sum, &v); overflow {
			return nil, false
		}
	}
	return sum, true
}

// Conserved reports whether balances add up to the total supply, or, before
// initialization, whether no balance records exist at all.
func (s *State) Conserved() bool {
	if !s.initialized {
		return len(s.balances) == 0
	}
	sum, ok := s.Circulating()
	return ok && sum.Eq(&s.totalSupply)
}
