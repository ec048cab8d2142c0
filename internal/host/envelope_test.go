package host_test

import (
	"testing"

	"github.com/Mohsinsiddi/w3ledger/internal/calldata"
	"github.com/Mohsinsiddi/w3ledger/internal/host"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealRecover(t *testing.T) {
	s := signer(t, bobKey)
	env, err := host.Seal([]byte("Host Token"), 3, calldata.Transfer(carol, uint256.NewInt(9)), s)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), env.Nonce)
	assert.Len(t, env.Signature, 65)

	addr, err := host.Recover([]byte("Host Token"), env)
	require.NoError(t, err)
	assert.Equal(t, s.Address(), addr)

	env.Nonce = 4
	addr, err = host.Recover([]byte("Host Token"), env)
	require.NoError(t, err)
	assert.NotEqual(t, s.Address(), addr, "the nonce is covered by the signature")
}

func TestDigestBindsEveryField(t *testing.T) {
	base, err := host.Digest([]byte("a"), 1, []byte{1})
	require.NoError(t, err)

	for _, other := range []struct {
		domain []byte
		nonce  uint64
		data   []byte
	}{
		{[]byte("b"), 1, []byte{1}},
		{[]byte("a"), 2, []byte{1}},
		{[]byte("a"), 1, []byte{2}},
	} {
		d, err := host.Digest(other.domain, other.nonce, other.data)
		require.NoError(t, err)
		assert.NotEqual(t, base, d)
	}
}

func TestEnvelopeHexRoundTrip(t *testing.T) {
	env, err := host.Seal([]byte("Host Token"), 7, calldata.Approve(carol, uint256.NewInt(12)), signer(t, ownerKey))
	require.NoError(t, err)

	h, err := env.Hex()
	require.NoError(t, err)
	decoded, err := host.DecodeEnvelopeHex(h)
	require.NoError(t, err)
	assert.Equal(t, env, decoded)

	_, err = host.DecodeEnvelopeHex("0xzz")
	assert.Error(t, err)
	_, err = host.DecodeEnvelopeHex("0x01")
	assert.Error(t, err)
}

func TestReceiptIDs(t *testing.T) {
	id, err := host.NewReceiptID()
	require.NoError(t, err)

	parsed, err := host.ParseReceiptID(id)
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	next, err := host.NewReceiptID()
	require.NoError(t, err)
	assert.NotEqual(t, id, next)

	_, err = host.ParseReceiptID("plan_01h2xcejqtf2nbrexx3vqjhp41")
	assert.Error(t, err)
	_, err = host.ParseReceiptID("garbage")
	assert.Error(t, err)
}

func TestLedgerAddress(t *testing.T) {
	a := host.LedgerAddress([]byte("Test Token"))
	assert.Equal(t, a, host.LedgerAddress([]byte("Test Token")))
	assert.NotEqual(t, a, host.LedgerAddress([]byte("Other Token")))
	assert.NotEqual(t, common.Address{}, a)
}
