package wallet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignerAddress(t *testing.T) {
	w := &Wallet{Name: "w", Address: testSignerAddr, Type: TypeSigning}
	s := NewSigner(w, nullKeystore())
	assert.Equal(t, testSignerAddr, s.Address().Hex())
}

func TestSignerWatchOnlyError(t *testing.T) {
	w := &Wallet{Name: "watcher", Address: testSignerAddr, Type: TypeWatchOnly}
	_, err := NewSigner(w, nullKeystore()).Sign([]byte("digest"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "watch-only")
}

func TestSignerKeyNotFound(t *testing.T) {
	t.Setenv(KeyEnvVar, "")
	ks := testKeystore(t)
	w := &Wallet{Name: "missing", Address: testSignerAddr, Type: TypeSigning, KeyRef: "w3ledger.doesnotexist"}

	_, err := NewSigner(w, ks).Sign([]byte("digest"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "retrieving key")
}

func TestSignerSignsWithKeychainKey(t *testing.T) {
	t.Setenv(KeyEnvVar, "")
	ks := testKeystore(t)
	ref, err := ks.Store("testwal", testPrivKeyHex)
	require.NoError(t, err)

	w := &Wallet{Name: "testwal", Address: testSignerAddr, Type: TypeSigning, KeyRef: ref}
	sig, err := NewSigner(w, ks).Sign([]byte("digest"))
	require.NoError(t, err)

	recovered, err := VerifyMessage([]byte("digest"), sig)
	require.NoError(t, err)
	assert.Equal(t, testSignerAddr, recovered.Hex())
}

func TestKeySigner(t *testing.T) {
	s, err := NewKeySigner("0x" + testPrivKeyHex)
	require.NoError(t, err)
	assert.Equal(t, testSignerAddr, s.Address().Hex())

	sig, err := s.Sign([]byte("payload"))
	require.NoError(t, err)
	recovered, err := VerifyMessage([]byte("payload"), sig)
	require.NoError(t, err)
	assert.Equal(t, s.Address(), recovered)
}

func TestKeySignerInvalidKey(t *testing.T) {
	_, err := NewKeySigner("not-a-key")
	assert.ErrorIs(t, err, ErrInvalidKey)
}
