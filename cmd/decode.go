package cmd

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/Mohsinsiddi/w3ledger/internal/calldata"
	"github.com/Mohsinsiddi/w3ledger/internal/host"
	"github.com/Mohsinsiddi/w3ledger/internal/ledger"
	"github.com/Mohsinsiddi/w3ledger/internal/ui"
	"github.com/spf13/cobra"
)

var decodeEnvelope bool

var decodeCmd = &cobra.Command{
	Use:   "decode <calldata>",
	Short: "Decode ledger calldata or a signed envelope",
	Long: `Decode raw calldata (hex) into the ledger call it encodes.

With --envelope the argument is a signed envelope as printed by
--envelope-only; the signer is recovered against the configured ledger.

Examples:
  w3ledger decode 0xa9059cbb000000000000000000000000d8da6bf26964af9d7eed9e03e53415d37aa960450000000000000000000000000000000000000000000000000de0b6b3a7640000
  w3ledger decode --envelope 0xf86b80a4...`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := args[0]

		clean := strings.TrimPrefix(strings.TrimPrefix(input, "0x"), "0X")
		if len(clean) == 0 {
			return fmt.Errorf("empty input — provide a hex string starting with 0x")
		}

		var (
			data  []byte
			pairs [][2]string
		)
		if decodeEnvelope {
			env, err := host.DecodeEnvelopeHex(input)
			if err != nil {
				return err
			}
			data = env.Data
			pairs = append(pairs, [2]string{"Nonce", fmt.Sprintf("%d", env.Nonce)})
			if g, err := cfg.LedgerGenesis(); err == nil {
				signer, err := host.Recover(g.Name, env)
				if err != nil {
					pairs = append(pairs, [2]string{"Signer", ui.StyleError.Render(err.Error())})
				} else {
					pairs = append(pairs, [2]string{"Signer", ui.Addr(signer.Hex())})
				}
			}
			clean = hex.EncodeToString(data)
		} else {
			b, err := hex.DecodeString(clean)
			if err != nil {
				return fmt.Errorf("invalid hex: %w", err)
			}
			data = b
		}

		if len(clean) >= 8 {
			pairs = append(pairs, [2]string{"Selector", "0x" + strings.ToLower(clean[:8])})
		}

		call, err := calldata.Decode(data)
		if err != nil {
			pairs = append([][2]string{{"Method", ui.StyleError.Render(err.Error())}}, pairs...)
			for i, w := range splitHexWords(clean[min(len(clean), 8):]) {
				pairs = append(pairs, [2]string{fmt.Sprintf("Arg[%d]", i), "0x" + w})
			}
			fmt.Println(ui.KeyValueBlock("Decoded Calldata", pairs))
			return nil
		}

		fn, _ := calldata.Lookup(call.Op)
		pairs = append([][2]string{{"Method", ui.Val(fn.Signature)}}, pairs...)
		pairs = append(pairs, callArgs(call)...)
		fmt.Println(ui.KeyValueBlock("Decoded Calldata", pairs))
		return nil
	},
}

// callArgs renders the meaningful fields of call in argument order.
func callArgs(call calldata.Call) [][2]string {
	switch call.Op {
	case ledger.OpTransfer:
		return [][2]string{
			{"To", ui.Addr(call.To.Hex())},
			{"Amount", ui.Val(formatAmount(call.Amount))},
		}
	case ledger.OpApprove:
		return [][2]string{
			{"Spender", ui.Addr(call.Spender.Hex())},
			{"Amount", ui.Val(formatAmount(call.Amount))},
		}
	case ledger.OpTransferFrom:
		return [][2]string{
			{"From", ui.Addr(call.From.Hex())},
			{"To", ui.Addr(call.To.Hex())},
			{"Amount", ui.Val(formatAmount(call.Amount))},
		}
	}
	return nil
}

// splitHexWords splits a hex string into 64-char (32-byte) words.
func splitHexWords(hex string) []string {
	var words []string
	for i := 0; i+64 <= len(hex); i += 64 {
		words = append(words, hex[i:i+64])
	}
	// Trailing partial word.
	if remainder := len(hex) % 64; remainder > 0 && len(hex) > 64 {
		words = append(words, hex[len(hex)-remainder:])
	} else if len(hex) < 64 && len(hex) > 0 {
		words = append(words, hex)
	}
	return words
}

func init() {
	decodeCmd.Flags().BoolVar(&decodeEnvelope, "envelope", false, "treat the argument as a signed envelope")
}
