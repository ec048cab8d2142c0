package cmd

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/Mohsinsiddi/w3ledger/internal/calldata"
	"github.com/Mohsinsiddi/w3ledger/internal/ledger"
	"github.com/Mohsinsiddi/w3ledger/internal/ui"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/sha3"
)

var selectorCmd = &cobra.Command{
	Use:   "selector [signature-or-selector]",
	Short: "List, compute or look up 4-byte function selectors",
	Long: `Without arguments, list the functions and events the ledger speaks.
With a canonical signature, compute its selector. With a 0x selector, look
it up among the ledger's functions.

Examples:
  w3ledger selector
  w3ledger selector "transfer(address to, uint256 amount)"   # → 0xa9059cbb
  w3ledger selector 0x095ea7b3                               # → approve`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			t := ui.NewTable([]ui.Column{
				{Title: "Selector", Width: 12},
				{Title: "Signature", Width: 40},
				{Title: "Call", Width: 14},
			})
			for _, fn := range calldata.Functions {
				t.AddRow(ui.Row{
					ui.Val("0x" + hex.EncodeToString(fn.Selector[:])),
					fn.Signature,
					ui.Token(string(fn.Op)),
				})
			}
			fmt.Println(t.Render())
			fmt.Println(ui.KeyValueBlock("Event Topics", [][2]string{
				{"Transfer", ledger.TransferTopic.Hex()},
				{"Approval", ledger.ApprovalTopic.Hex()},
			}))
			return nil
		}

		input := args[0]
		if strings.HasPrefix(input, "0x") || strings.HasPrefix(input, "0X") {
			fn, ok := lookupSelector(input)
			method := ui.Meta("not a ledger function")
			if ok {
				method = ui.Val(fn.Signature)
			}
			fmt.Println(ui.KeyValueBlock("Selector Lookup", [][2]string{
				{"Selector", input},
				{"Method", method},
			}))
			return nil
		}

		sig := normalizeSignature(input)
		h := sha3.NewLegacyKeccak256()
		h.Write([]byte(sig))
		hash := h.Sum(nil)

		fmt.Println(ui.KeyValueBlock("Function Selector", [][2]string{
			{"Signature", sig},
			{"Selector", ui.Val("0x" + hex.EncodeToString(hash[:4]))},
			{"Full Hash", "0x" + hex.EncodeToString(hash)},
		}))
		return nil
	},
}

// lookupSelector finds the ledger function whose selector prefixes s.
func lookupSelector(s string) (calldata.Function, bool) {
	clean := strings.ToLower(strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X"))
	if len(clean) < 8 {
		return calldata.Function{}, false
	}
	for _, fn := range calldata.Functions {
		if hex.EncodeToString(fn.Selector[:]) == clean[:8] {
			return fn, true
		}
	}
	return calldata.Function{}, false
}

// normalizeSignature removes parameter names, keeping only types.
// "transfer(address to, uint256 amount)" → "transfer(address,uint256)"
func normalizeSignature(sig string) string {
	parenIdx := strings.Index(sig, "(")
	if parenIdx < 0 {
		return sig
	}

	name := sig[:parenIdx]
	paramStr := strings.TrimSuffix(sig[parenIdx+1:], ")")

	if strings.TrimSpace(paramStr) == "" {
		return name + "()"
	}

	var types []string
	for _, p := range strings.Split(paramStr, ",") {
		// Take only the first word (the type), skip the name.
		if parts := strings.Fields(p); len(parts) > 0 {
			types = append(types, parts[0])
		}
	}
	return name + "(" + strings.Join(types, ",") + ")"
}
