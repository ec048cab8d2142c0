package ledger

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// EventKind distinguishes the two event shapes the ledger emits.
type EventKind uint8

const (
	EventTransfer EventKind = iota + 1
	EventApproval
)

// Canonical ERC-20 event signatures and their topic hashes.
var (
	TransferTopic = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))
	ApprovalTopic = crypto.Keccak256Hash([]byte("Approval(address,address,uint256)"))
)

func (k EventKind) String() string {
	switch k {
	case EventTransfer:
		return "Transfer"
	case EventApproval:
		return "Approval"
	default:
		return fmt.Sprintf("EventKind(%d)", uint8(k))
	}
}

// Topic returns the log topic0 for k.
func (k EventKind) Topic() common.Hash {
	switch k {
	case EventTransfer:
		return TransferTopic
	case EventApproval:
		return ApprovalTopic
	default:
		return common.Hash{}
	}
}

// Event is a record the ledger appends within a successful call.
//
// For a Transfer, From and To are the source and destination accounts.
// For an Approval, From is the allowance owner and To is the spender, and
// Amount is the allowance total after the change, not the delta.
type Event struct {
	Kind   EventKind
	From   AccountID
	To     AccountID
	Amount *uint256.Int
}

// TransferEvent builds a Transfer(from, to, amount) record.
func TransferEvent(from, to AccountID, amount *uint256.Int) Event {
	return Event{Kind: EventTransfer, From: from, To: to, Amount: orZero(amount)}
}

// ApprovalEvent builds an Approval(owner, spender, amount) record.
func ApprovalEvent(owner, spender AccountID, amount *uint256.Int) Event {
	return Event{Kind: EventApproval, From: owner, To: spender, Amount: orZero(amount)}
}

// Owner is From, named for Approval events.
func (e Event) Owner() AccountID { return e.From }

// Spender is To, named for Approval events.
func (e Event) Spender() AccountID { return e.To }

func (e Event) String() string {
	return fmt.Sprintf("%s(%s, %s, %s)", e.Kind, e.From.Hex(), e.To.Hex(), orZero(e.Amount).Dec())
}

// Log renders e as an ERC-20 compatible log entry emitted by contract.
// Both addresses are indexed; the amount is the single data word.
func (e Event) Log(contract common.Address) *types.Log {
	word := orZero(e.Amount).Bytes32()
	return &types.Log{
		Address: contract,
		Topics: []common.Hash{
			e.Kind.Topic(),
			common.BytesToHash(e.From.Bytes()),
			common.BytesToHash(e.To.Bytes()),
		},
		Data: word[:],
	}
}

// EventFromLog decodes a log produced by Event.Log.
func EventFromLog(l *types.Log) (Event, error) {
	if len(l.Topics) != 3 {
		return Event{}, fmt.Errorf("expected 3 topics, got %d", len(l.Topics))
	}
	if len(l.Data) != 32 {
		return Event{}, fmt.Errorf("expected 32 data bytes, got %d", len(l.Data))
	}
	var kind EventKind
	switch l.Topics[0] {
	case TransferTopic:
		kind = EventTransfer
	case ApprovalTopic:
		kind = EventApproval
	default:
		return Event{}, fmt.Errorf("unknown event topic %s", l.Topics[0].Hex())
	}
	return Event{
		Kind:   kind,
		From:   common.BytesToAddress(l.Topics[1].Bytes()),
		To:     common.BytesToAddress(l.Topics[2].Bytes()),
		Amount: new(uint256.Int).SetBytes(l.Data),
	}, nil
}

// EventLog is an append-only, in-memory event sink. It satisfies Committer
// so a bare Ledger can run without a persistent store.
type EventLog struct {
	events []Event
}

// Commit appends the events of cs.
func (l *EventLog) Commit(cs *ChangeSet) error {
	l.events = append(l.events, cs.Events...)
	return nil
}

// Events returns every recorded event in emission order.
func (l *EventLog) Events() []Event {
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

// Len returns the number of recorded events.
func (l *EventLog) Len() int { return len(l.events) }
