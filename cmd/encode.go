package cmd

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/Mohsinsiddi/w3ledger/internal/calldata"
	"github.com/Mohsinsiddi/w3ledger/internal/ledger"
	"github.com/Mohsinsiddi/w3ledger/internal/ui"
	"github.com/spf13/cobra"
)

var encodeCmd = &cobra.Command{
	Use:   "encode <call> [args...]",
	Short: "Encode ledger calldata without signing it",
	Long: `Build the calldata of a ledger call. This is the reverse of the decode
command. Accounts may be addresses or wallet names.

Calls:
  initialize
  transfer       <to> <amount>
  approve        <spender> <amount>
  transfer-from  <from> <to> <amount>

Examples:
  w3ledger encode transfer 0x70997970C51812dc3A010C7d01b50e0d17dc79C8 1000
  w3ledger encode approve bob 2.5 --units`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		call, err := buildCall(args[0], args[1:])
		if err != nil {
			return err
		}
		data, err := calldata.Encode(call)
		if err != nil {
			return fmt.Errorf("encoding failed: %w", err)
		}
		fn, _ := calldata.Lookup(call.Op)

		pairs := [][2]string{
			{"Signature", fn.Signature},
			{"Selector", "0x" + hex.EncodeToString(fn.Selector[:])},
		}
		pairs = append(pairs, callArgs(call)...)
		pairs = append(pairs,
			[2]string{"Calldata", ui.Val("0x" + hex.EncodeToString(data))},
			[2]string{"Bytes", fmt.Sprintf("%d", len(data))},
		)
		fmt.Println(ui.KeyValueBlock("Encoded Calldata", pairs))
		return nil
	},
}

// buildCall parses a call name and its positional arguments.
func buildCall(name string, args []string) (calldata.Call, error) {
	op, want, err := callArity(name)
	if err != nil {
		return calldata.Call{}, err
	}
	if len(args) != want {
		return calldata.Call{}, fmt.Errorf("%s takes %d argument(s), got %d", op, want, len(args))
	}
	if op == ledger.OpInitialize {
		return calldata.Initialize(), nil
	}

	amount, err := parseAmount(args[want-1])
	if err != nil {
		return calldata.Call{}, err
	}
	accounts := make([]ledger.AccountID, want-1)
	for i := range accounts {
		if accounts[i], err = resolveAccount(args[i]); err != nil {
			return calldata.Call{}, err
		}
	}

	switch op {
	case ledger.OpTransfer:
		return calldata.Transfer(accounts[0], amount), nil
	case ledger.OpApprove:
		return calldata.Approve(accounts[0], amount), nil
	default:
		return calldata.TransferFrom(accounts[0], accounts[1], amount), nil
	}
}

func callArity(name string) (ledger.Op, int, error) {
	switch strings.ToLower(strings.ReplaceAll(name, "_", "-")) {
	case "initialize":
		return ledger.OpInitialize, 0, nil
	case "transfer":
		return ledger.OpTransfer, 2, nil
	case "approve":
		return ledger.OpApprove, 2, nil
	case "transfer-from", "transferfrom":
		return ledger.OpTransferFrom, 3, nil
	}
	return "", 0, fmt.Errorf("unknown call %q (want initialize, transfer, approve or transfer-from)", name)
}
