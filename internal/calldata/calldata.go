// Package calldata encodes ledger calls as ERC-20 ABI calldata: a 4-byte
// function selector followed by one 32-byte word per argument.
//
// Function selectors:
//
//	initialize()                 → 0x8129fc1c
//	transfer(a,u256)             → 0xa9059cbb
//	approve(a,u256)              → 0x095ea7b3
//	transferFrom(a,a,u256)       → 0x23b872dd
package calldata

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/Mohsinsiddi/w3ledger/internal/ledger"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"golang.org/x/crypto/sha3"
)

const wordSize = 32

// Errors.
var (
	ErrUnknownSelector = errors.New("unknown function selector")
	ErrMalformedCall   = errors.New("malformed calldata")
)

// Function describes one callable entry point.
type Function struct {
	Op        ledger.Op
	Signature string
	Selector  [4]byte
	Args      int
}

// Functions lists every entry point in selector-table order.
var Functions = []Function{
	newFunction(ledger.OpInitialize, "initialize()", 0),
	newFunction(ledger.OpTransfer, "transfer(address,uint256)", 2),
	newFunction(ledger.OpApprove, "approve(address,uint256)", 2),
	newFunction(ledger.OpTransferFrom, "transferFrom(address,address,uint256)", 3),
}

func newFunction(op ledger.Op, sig string, args int) Function {
	return Function{Op: op, Signature: sig, Selector: Selector(sig), Args: args}
}

// Selector returns the first four bytes of keccak256(sig).
func Selector(sig string) [4]byte {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(sig))
	var sel [4]byte
	copy(sel[:], h.Sum(nil)[:4])
	return sel
}

// Lookup returns the function for op.
func Lookup(op ledger.Op) (Function, bool) {
	for _, fn := range Functions {
		if fn.Op == op {
			return fn, true
		}
	}
	return Function{}, false
}

// Call is a decoded ledger call. Which fields are meaningful depends on Op:
//
//	initialize:    none
//	transfer:      To, Amount
//	approve:       Spender, Amount
//	transfer_from: From, To, Amount
type Call struct {
	Op      ledger.Op
	From    common.Address
	To      common.Address
	Spender common.Address
	Amount  *uint256.Int
}

// Initialize builds an initialize call.
func Initialize() Call { return Call{Op: ledger.OpInitialize} }

// Transfer builds a transfer call.
func Transfer(to common.Address, amount *uint256.Int) Call {
	return Call{Op: ledger.OpTransfer, To: to, Amount: amount}
}

// Approve builds an approve call.
func Approve(spender common.Address, amount *uint256.Int) Call {
	return Call{Op: ledger.OpApprove, Spender: spender, Amount: amount}
}

// TransferFrom builds a transferFrom call.
func TransferFrom(from, to common.Address, amount *uint256.Int) Call {
	return Call{Op: ledger.OpTransferFrom, From: from, To: to, Amount: amount}
}

// Encode serializes c.
func Encode(c Call) ([]byte, error) {
	fn, ok := Lookup(c.Op)
	if !ok {
		return nil, fmt.Errorf("%w: no function for op %q", ErrUnknownSelector, c.Op)
	}
	out := make([]byte, 0, 4+fn.Args*wordSize)
	out = append(out, fn.Selector[:]...)

	switch c.Op {
	case ledger.OpTransfer:
		out = appendAddress(out, c.To)
		out = appendAmount(out, c.Amount)
	case ledger.OpApprove:
		out = appendAddress(out, c.Spender)
		out = appendAmount(out, c.Amount)
	case ledger.OpTransferFrom:
		out = appendAddress(out, c.From)
		out = appendAddress(out, c.To)
		out = appendAmount(out, c.Amount)
	}
	return out, nil
}

// Decode parses calldata produced by Encode or any ERC-20 client.
// Trailing bytes and dirty address padding are rejected.
func Decode(data []byte) (Call, error) {
	if len(data) < 4 {
		return Call{}, fmt.Errorf("%w: %d bytes, need at least a selector", ErrMalformedCall, len(data))
	}
	var sel [4]byte
	copy(sel[:], data[:4])

	var fn *Function
	for i := range Functions {
		if Functions[i].Selector == sel {
			fn = &Functions[i]
			break
		}
	}
	if fn == nil {
		return Call{}, fmt.Errorf("%w: 0x%s", ErrUnknownSelector, hex.EncodeToString(sel[:]))
	}

	args := data[4:]
	if len(args) != fn.Args*wordSize {
		return Call{}, fmt.Errorf("%w: %s expects %d argument bytes, got %d",
			ErrMalformedCall, fn.Signature, fn.Args*wordSize, len(args))
	}
	words := make([][]byte, fn.Args)
	for i := range words {
		words[i] = args[i*wordSize : (i+1)*wordSize]
	}

	c := Call{Op: fn.Op}
	var err error
	switch fn.Op {
	case ledger.OpTransfer:
		if c.To, err = decodeAddress(words[0]); err != nil {
			return Call{}, err
		}
		c.Amount = decodeAmount(words[1])
	case ledger.OpApprove:
		if c.Spender, err = decodeAddress(words[0]); err != nil {
			return Call{}, err
		}
		c.Amount = decodeAmount(words[1])
	case ledger.OpTransferFrom:
		if c.From, err = decodeAddress(words[0]); err != nil {
			return Call{}, err
		}
		if c.To, err = decodeAddress(words[1]); err != nil {
			return Call{}, err
		}
		c.Amount = decodeAmount(words[2])
	}
	return c, nil
}

// DecodeHex decodes 0x-prefixed hex calldata.
func DecodeHex(s string) (Call, error) {
	data, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return Call{}, fmt.Errorf("%w: %v", ErrMalformedCall, err)
	}
	return Decode(data)
}

// --- word helpers ---

func appendAddress(out []byte, a common.Address) []byte {
	out = append(out, make([]byte, wordSize-common.AddressLength)...)
	return append(out, a.Bytes()...)
}

func appendAmount(out []byte, v *uint256.Int) []byte {
	if v == nil {
		v = new(uint256.Int)
	}
	word := v.Bytes32()
	return append(out, word[:]...)
}

var zeroPad = make([]byte, wordSize-common.AddressLength)

func decodeAddress(word []byte) (common.Address, error) {
	if !bytes.Equal(word[:wordSize-common.AddressLength], zeroPad) {
		return common.Address{}, fmt.Errorf("%w: address word has non-zero padding", ErrMalformedCall)
	}
	return common.BytesToAddress(word[wordSize-common.AddressLength:]), nil
}

func decodeAmount(word []byte) *uint256.Int {
	return new(uint256.Int).SetBytes(word)
}
