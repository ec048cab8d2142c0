package boltstore

import (
	"encoding/binary"

	"github.com/Mohsinsiddi/w3ledger/internal/ledger"
	"github.com/Mohsinsiddi/w3ledger/internal/store"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
)

// On-disk record shapes. Field order is part of the format.

type genesisRLP struct {
	Owner  common.Address
	Supply *uint256.Int
	Name   []byte
	Ticker []byte
}

type eventRLP struct {
	Receipt string
	Kind    uint8
	From    common.Address
	To      common.Address
	Amount  *uint256.Int
}

type receiptRLP struct {
	ID         string
	Caller     common.Address
	Op         string
	Nonce      uint64
	FirstEvent uint64
	EventCount uint64
}

func encodeGenesis(g ledger.Genesis) ([]byte, error) {
	supply := g.TotalSupply
	if supply == nil {
		supply = new(uint256.Int)
	}
	return rlp.EncodeToBytes(&genesisRLP{Owner: g.Owner, Supply: supply, Name: g.Name, Ticker: g.Ticker})
}

func decodeGenesis(b []byte) (ledger.Genesis, error) {
	var r genesisRLP
	if err := rlp.DecodeBytes(b, &r); err != nil {
		return ledger.Genesis{}, err
	}
	return ledger.Genesis{Owner: r.Owner, TotalSupply: r.Supply, Name: r.Name, Ticker: r.Ticker}, nil
}

func encodeEvent(receipt string, e ledger.Event) ([]byte, error) {
	amount := e.Amount
	if amount == nil {
		amount = new(uint256.Int)
	}
	return rlp.EncodeToBytes(&eventRLP{
		Receipt: receipt,
		Kind:    uint8(e.Kind),
		From:    e.From,
		To:      e.To,
		Amount:  amount,
	})
}

func decodeEvent(seq uint64, b []byte) (store.Record, error) {
	var r eventRLP
	if err := rlp.DecodeBytes(b, &r); err != nil {
		return store.Record{}, err
	}
	return store.Record{
		Seq:     seq,
		Receipt: r.Receipt,
		Event: ledger.Event{
			Kind:   ledger.EventKind(r.Kind),
			From:   r.From,
			To:     r.To,
			Amount: r.Amount,
		},
	}, nil
}

func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

func btoi(b []byte) uint64 {
	return binary.BigEndian.Uint64(b)
}

func amountBytes(v *uint256.Int) []byte {
	word := v.Bytes32()
	return word[:]
}

func allowanceKey(k ledger.AllowanceKey) []byte {
	key := make([]byte, 0, 2*common.AddressLength)
	key = append(key, k.Owner.Bytes()...)
	return append(key, k.Spender.Bytes()...)
}
