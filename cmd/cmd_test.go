package cmd

import (
	"context"
	"testing"

	"github.com/Mohsinsiddi/w3ledger/internal/calldata"
	"github.com/Mohsinsiddi/w3ledger/internal/config"
	"github.com/Mohsinsiddi/w3ledger/internal/ledger"
	"github.com/Mohsinsiddi/w3ledger/internal/store"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ownerHex = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"

var (
	owner = common.HexToAddress(ownerHex)
	bob   = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
)

// useConfig points the package globals at a fresh config directory.
func useConfig(t *testing.T, backend string) {
	t.Helper()
	c, err := config.Load(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, c.SetBackend(backend))
	c.Genesis = &config.Genesis{
		Owner:       ownerHex,
		TotalSupply: "1000",
		Name:        "Cmd Token",
		Ticker:      "CMD",
		Decimals:    2,
	}
	require.NoError(t, c.Save())

	prevCfg, prevUnits := cfg, unitsFlag
	cfg, unitsFlag = c, false
	t.Cleanup(func() { cfg, unitsFlag = prevCfg, prevUnits })
}

// ---------------------------------------------------------------------------
// normalizeSignature
// ---------------------------------------------------------------------------

func TestNormalizeSignature_AlreadyCanonical(t *testing.T) {
	assert.Equal(t, "transfer(address,uint256)", normalizeSignature("transfer(address,uint256)"))
}

func TestNormalizeSignature_WithNames(t *testing.T) {
	assert.Equal(t, "transfer(address,uint256)", normalizeSignature("transfer(address to, uint256 amount)"))
}

func TestNormalizeSignature_NoParams(t *testing.T) {
	assert.Equal(t, "initialize()", normalizeSignature("initialize()"))
}

func TestNormalizeSignature_ThreeParams(t *testing.T) {
	assert.Equal(t, "transferFrom(address,address,uint256)", normalizeSignature("transferFrom(address from, address to, uint256 amount)"))
}

func TestNormalizeSignature_NoParens(t *testing.T) {
	assert.Equal(t, "noop", normalizeSignature("noop"))
}

func TestNormalizeSignature_ExtraSpaces(t *testing.T) {
	assert.Equal(t, "approve(address,uint256)", normalizeSignature("approve(  address  spender ,  uint256  amount  )"))
}

// ---------------------------------------------------------------------------
// selectors and calldata
// ---------------------------------------------------------------------------

func TestLookupSelector(t *testing.T) {
	fn, ok := lookupSelector("0xa9059cbb")
	require.True(t, ok)
	assert.Equal(t, ledger.OpTransfer, fn.Op)

	fn, ok = lookupSelector("0X23B872DD0000")
	require.True(t, ok)
	assert.Equal(t, ledger.OpTransferFrom, fn.Op)

	_, ok = lookupSelector("0x70a08231") // balanceOf is read-only, not a call
	assert.False(t, ok)
	_, ok = lookupSelector("0xa905")
	assert.False(t, ok)
}

func TestSplitHexWords(t *testing.T) {
	word := "0000000000000000000000000000000000000000000000000000000000000001"
	assert.Equal(t, []string{word, word}, splitHexWords(word+word))
	assert.Equal(t, []string{word, "ab"}, splitHexWords(word+"ab"))
	assert.Equal(t, []string{"abcd"}, splitHexWords("abcd"))
	assert.Empty(t, splitHexWords(""))
}

func TestBuildCall(t *testing.T) {
	call, err := buildCall("transfer", []string{bob.Hex(), "0x10"})
	require.NoError(t, err)
	assert.Equal(t, calldata.Transfer(bob, uint256.NewInt(16)), call)

	call, err = buildCall("transfer_from", []string{owner.Hex(), bob.Hex(), "7"})
	require.NoError(t, err)
	assert.Equal(t, calldata.TransferFrom(owner, bob, uint256.NewInt(7)), call)

	call, err = buildCall("initialize", nil)
	require.NoError(t, err)
	assert.Equal(t, ledger.OpInitialize, call.Op)
}

func TestBuildCallErrors(t *testing.T) {
	_, err := buildCall("mint", []string{bob.Hex(), "1"})
	assert.ErrorContains(t, err, "unknown call")

	_, err = buildCall("approve", []string{bob.Hex()})
	assert.ErrorContains(t, err, "takes 2 argument(s), got 1")

	_, err = buildCall("approve", []string{bob.Hex(), "-1"})
	assert.ErrorIs(t, err, config.ErrInvalidAmount)

	_, err = buildCall("transfer", []string{"0x1234", "1"})
	assert.ErrorContains(t, err, "not a 20-byte address")
}

func TestParseAmountWithUnits(t *testing.T) {
	useConfig(t, config.BackendMemory)

	v, err := parseAmount("150")
	require.NoError(t, err)
	assert.Equal(t, "150", v.Dec())
	assert.Equal(t, "150", formatAmount(v))

	unitsFlag = true
	v, err = parseAmount("1.5")
	require.NoError(t, err)
	assert.Equal(t, "150", v.Dec())
	assert.Equal(t, "1.5 CMD", formatAmount(v))

	_, err = parseAmount("0.001")
	assert.Error(t, err)
}

func TestConvertAmount(t *testing.T) {
	pairs, err := convertAmount("1500000", 6, false)
	require.NoError(t, err)
	got := map[string]string{}
	for _, p := range pairs {
		got[p[0]] = p[1]
	}
	assert.Contains(t, got["Token Units"], "1.5")
	assert.Contains(t, got["Hex"], "0x16e360")

	pairs, err = convertAmount("1.5", 6, false)
	require.NoError(t, err)
	assert.Contains(t, pairs[1][1], "1500000")

	_, err = convertAmount("abc", 6, false)
	assert.Error(t, err)
}

// ---------------------------------------------------------------------------
// events
// ---------------------------------------------------------------------------

func TestParseEventKind(t *testing.T) {
	for in, want := range map[string]ledger.EventKind{
		"":         0,
		"all":      0,
		"Transfer": ledger.EventTransfer,
		"approval": ledger.EventApproval,
	} {
		got, err := parseEventKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := parseEventKind("mint")
	assert.Error(t, err)
}

func TestFilterRecordsAndRows(t *testing.T) {
	useConfig(t, config.BackendMemory)
	records := []store.Record{
		{Seq: 1, Receipt: "rcpt_a", Event: ledger.TransferEvent(owner, bob, uint256.NewInt(5))},
		{Seq: 2, Receipt: "rcpt_b", Event: ledger.ApprovalEvent(bob, owner, uint256.NewInt(3))},
	}

	assert.Len(t, filterRecords(records, 0), 2)
	only := filterRecords(records, ledger.EventApproval)
	require.Len(t, only, 1)
	assert.Equal(t, uint64(2), only[0].Seq)

	rows := eventRows(records)
	require.Len(t, rows, 2)
	assert.Equal(t, "Transfer", rows[0].Kind)
	assert.Equal(t, "rcpt_a", rows[0].Receipt)
	assert.Equal(t, owner.Hex(), rows[0].From)
	assert.Len(t, rows[1].Cells, len(eventColumns))
}

// ---------------------------------------------------------------------------
// store wiring
// ---------------------------------------------------------------------------

func TestMemoryBackendStartsFromGenesis(t *testing.T) {
	useConfig(t, config.BackendMemory)

	d, s, err := openDispatcher(false)
	require.NoError(t, err)
	_, err = d.DispatchAs(context.Background(), owner, calldata.Initialize())
	require.NoError(t, err)
	require.NoError(t, s.Close())

	err = viewLedger(func(st *ledger.State) error {
		assert.False(t, st.IsInitialized())
		assert.Equal(t, "Cmd Token", string(st.Name()))
		return nil
	})
	require.NoError(t, err)
}

func TestBoltBackendWithoutGenesis(t *testing.T) {
	useConfig(t, config.BackendBolt)

	_, err := openStore(true)
	assert.ErrorIs(t, err, store.ErrNoGenesis)
}

func TestBoltBackendPersists(t *testing.T) {
	useConfig(t, config.BackendBolt)
	g, err := cfg.LedgerGenesis()
	require.NoError(t, err)

	s, err := openStore(false)
	require.NoError(t, err)
	require.NoError(t, s.Init(g))
	require.NoError(t, s.Close())

	d, s, err := openDispatcher(false)
	require.NoError(t, err)
	ctx := context.Background()
	_, err = d.DispatchAs(ctx, owner, calldata.Initialize())
	require.NoError(t, err)
	_, err = d.DispatchAs(ctx, owner, calldata.Transfer(bob, uint256.NewInt(400)))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	err = viewLedger(func(st *ledger.State) error {
		assert.Equal(t, "600", st.BalanceOf(owner).Dec())
		assert.Equal(t, "400", st.BalanceOf(bob).Dec())
		assert.True(t, st.Conserved())
		return nil
	})
	require.NoError(t, err)
}

func TestExplainCallErrorKeepsSentinel(t *testing.T) {
	err := explainCallError(&ledger.CallError{Op: ledger.OpTransferFrom, Err: ledger.ErrAllowanceNotFound})
	assert.ErrorIs(t, err, ledger.ErrAllowanceNotFound)
	assert.Contains(t, err.Error(), "w3ledger approve")
}
