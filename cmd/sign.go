package cmd

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/Mohsinsiddi/w3ledger/internal/ui"
	"github.com/Mohsinsiddi/w3ledger/internal/wallet"
	"github.com/spf13/cobra"
)

var (
	verifySig     string
	verifyAddress string
)

var walletSignCmd = &cobra.Command{
	Use:   "sign <message>",
	Short: "Sign a message with EIP-191 (personal_sign)",
	Long: `Sign a plaintext message using EIP-191 personal_sign, the same scheme
ledger envelopes are signed with.

Examples:
  w3ledger wallet sign "hello world"
  w3ledger wallet sign "login nonce: 12345" --wallet alice`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		message := args[0]

		signer, err := signingWallet()
		if err != nil {
			return err
		}
		sig, err := signer.Sign([]byte(message))
		if err != nil {
			return fmt.Errorf("signing failed: %w", err)
		}

		sigHex := "0x" + hex.EncodeToString(sig)
		addr := signer.Address().Hex()
		fmt.Println(ui.KeyValueBlock("Message Signed", [][2]string{
			{"Signer", ui.Addr(addr)},
			{"Message", message},
			{"Signature", sigHex},
		}))
		fmt.Println(ui.Hint("Verify: w3ledger wallet verify \"" + message + "\" --sig " + sigHex + " --address " + addr))
		return nil
	},
}

var walletVerifyCmd = &cobra.Command{
	Use:   "verify <message>",
	Short: "Verify an EIP-191 signed message",
	Long: `Recover the signer of an EIP-191 signed message and compare it to the
expected address or wallet name, if given.

Examples:
  w3ledger wallet verify "hello world" --sig 0x... --address alice
  w3ledger wallet verify "hello world" --sig 0x...`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		message := args[0]

		if verifySig == "" {
			return fmt.Errorf("--sig is required — provide the hex signature")
		}
		sigBytes, err := hex.DecodeString(strings.TrimPrefix(verifySig, "0x"))
		if err != nil {
			return fmt.Errorf("invalid signature hex: %w", err)
		}

		recovered, err := wallet.VerifyMessage([]byte(message), sigBytes)
		if err != nil {
			return fmt.Errorf("verification failed: %w", err)
		}

		pairs := [][2]string{
			{"Message", message},
			{"Recovered Signer", ui.Addr(recovered.Hex())},
		}
		if verifyAddress != "" {
			expected, err := resolveAccount(verifyAddress)
			if err != nil {
				return err
			}
			if expected == recovered {
				pairs = append(pairs, [2]string{"Match", ui.Success("signature is valid, signer matches")})
			} else {
				pairs = append(pairs,
					[2]string{"Expected", ui.Addr(expected.Hex())},
					[2]string{"Match", ui.Err("signature does NOT match expected address")},
				)
			}
		}

		fmt.Println(ui.KeyValueBlock("Signature Verification", pairs))
		return nil
	},
}

func init() {
	walletVerifyCmd.Flags().StringVar(&verifySig, "sig", "", "hex signature to verify (required)")
	walletVerifyCmd.Flags().StringVar(&verifyAddress, "address", "", "expected signer address or wallet name")
}
