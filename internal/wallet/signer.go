package wallet

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Signer signs ledger call digests for a signing wallet.
type Signer struct {
	wallet *Wallet
	ks     KeystoreBackend
}

// NewSigner creates a signer for the given wallet.
func NewSigner(w *Wallet, ks KeystoreBackend) *Signer {
	return &Signer{wallet: w, ks: ks}
}

// Sign returns the EIP-191 signature of message.
func (s *Signer) Sign(message []byte) ([]byte, error) {
	return SignMessage(s.wallet, s.ks, message)
}

// Address returns the wallet's account.
func (s *Signer) Address() common.Address {
	return s.wallet.Account()
}

// KeySigner signs with a raw private key. It serves tools that hold keys
// outside any keystore.
type KeySigner struct {
	key  string
	addr common.Address
}

// NewKeySigner parses a hex private key.
func NewKeySigner(hexKey string) (*KeySigner, error) {
	priv, err := crypto.HexToECDSA(normaliseHexKey(hexKey))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return &KeySigner{key: normaliseHexKey(hexKey), addr: crypto.PubkeyToAddress(priv.PublicKey)}, nil
}

// Sign returns the EIP-191 signature of message.
func (s *KeySigner) Sign(message []byte) ([]byte, error) {
	priv, err := crypto.HexToECDSA(s.key)
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}
	return signEIP191(priv, message)
}

// Address returns the account the key controls.
func (s *KeySigner) Address() common.Address {
	return s.addr
}
