package host

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/Mohsinsiddi/w3ledger/internal/calldata"
	"github.com/Mohsinsiddi/w3ledger/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
)

// ErrBadSignature reports an envelope whose signer cannot be recovered.
var ErrBadSignature = errors.New("bad envelope signature")

// Envelope is a signed ledger call. Data is ERC-20 calldata; Nonce must be
// the signer's next nonce on the target ledger.
type Envelope struct {
	Nonce     uint64
	Data      []byte
	Signature []byte
}

// Signer produces EIP-191 signatures for one account.
type Signer interface {
	Sign(message []byte) ([]byte, error)
	Address() common.Address
}

// Digest is keccak256(rlp([domain, nonce, data])). Binding the ledger's
// domain stops an envelope from replaying against another ledger.
func Digest(domain []byte, nonce uint64, data []byte) (common.Hash, error) {
	enc, err := rlp.EncodeToBytes([]any{domain, nonce, data})
	if err != nil {
		return common.Hash{}, fmt.Errorf("encoding digest: %w", err)
	}
	return crypto.Keccak256Hash(enc), nil
}

// Seal encodes call and signs it for domain at nonce.
func Seal(domain []byte, nonce uint64, call calldata.Call, s Signer) (*Envelope, error) {
	data, err := calldata.Encode(call)
	if err != nil {
		return nil, err
	}
	digest, err := Digest(domain, nonce, data)
	if err != nil {
		return nil, err
	}
	sig, err := s.Sign(digest.Bytes())
	if err != nil {
		return nil, fmt.Errorf("signing envelope: %w", err)
	}
	return &Envelope{Nonce: nonce, Data: data, Signature: sig}, nil
}

// Recover returns the account that signed env for domain.
func Recover(domain []byte, env *Envelope) (common.Address, error) {
	digest, err := Digest(domain, env.Nonce, env.Data)
	if err != nil {
		return common.Address{}, err
	}
	addr, err := wallet.VerifyMessage(digest.Bytes(), env.Signature)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	return addr, nil
}

// Encode returns the RLP encoding of env.
func (env *Envelope) Encode() ([]byte, error) {
	return rlp.EncodeToBytes(env)
}

// Hex returns the 0x-prefixed hex of Encode.
func (env *Envelope) Hex() (string, error) {
	b, err := env.Encode()
	if err != nil {
		return "", err
	}
	return "0x" + hex.EncodeToString(b), nil
}

// DecodeEnvelope parses an RLP-encoded envelope.
func DecodeEnvelope(b []byte) (*Envelope, error) {
	var env Envelope
	if err := rlp.DecodeBytes(b, &env); err != nil {
		return nil, fmt.Errorf("decoding envelope: %w", err)
	}
	return &env, nil
}

// DecodeEnvelopeHex parses the output of Envelope.Hex.
func DecodeEnvelopeHex(s string) (*Envelope, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decoding envelope hex: %w", err)
	}
	return DecodeEnvelope(b)
}

// LedgerAddress is the pseudo contract address logs of the ledger named
// domain are attributed to: the last 20 bytes of keccak256(domain).
func LedgerAddress(domain []byte) common.Address {
	return common.BytesToAddress(crypto.Keccak256(domain)[12:])
}
