package cmd

import (
	"fmt"

	"github.com/Mohsinsiddi/w3ledger/internal/calldata"
	"github.com/Mohsinsiddi/w3ledger/internal/host"
	"github.com/Mohsinsiddi/w3ledger/internal/ledger"
	"github.com/Mohsinsiddi/w3ledger/internal/store"
	"github.com/Mohsinsiddi/w3ledger/internal/ui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	envelopeOnly bool
	nonceFlag    int64
)

var initializeCmd = &cobra.Command{
	Use:   "initialize",
	Short: "Credit the whole supply to the genesis owner (owner only, once)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCall(cmd, calldata.Initialize(), nil)
	},
}

var transferCmd = &cobra.Command{
	Use:   "transfer <to> <amount>",
	Short: "Move tokens from the signing wallet to another account",
	Example: `  w3ledger transfer 0x70997970C51812dc3A010C7d01b50e0d17dc79C8 250
  w3ledger transfer bob 1.5 --units`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		to, err := resolveAccount(args[0])
		if err != nil {
			return err
		}
		amount, err := parseAmount(args[1])
		if err != nil {
			return err
		}
		return runCall(cmd, calldata.Transfer(to, amount), [][2]string{
			{"To", ui.Addr(to.Hex())},
			{"Amount", ui.Val(formatAmount(amount))},
		})
	},
}

var approveCmd = &cobra.Command{
	Use:   "approve <spender> <amount>",
	Short: "Raise the allowance of a spender by amount",
	Long: `Raise the allowance the signing wallet grants to spender.

Approvals add up: approving 50 twice leaves an allowance of 100. The
Approval event reports the new total.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		spender, err := resolveAccount(args[0])
		if err != nil {
			return err
		}
		amount, err := parseAmount(args[1])
		if err != nil {
			return err
		}
		return runCall(cmd, calldata.Approve(spender, amount), [][2]string{
			{"Spender", ui.Addr(spender.Hex())},
			{"Increase", ui.Val(formatAmount(amount))},
		})
	},
}

var transferFromCmd = &cobra.Command{
	Use:   "transfer-from <from> <to> <amount>",
	Short: "Move tokens out of an account that approved the destination",
	Long: `Move amount from <from> to <to>, spending the allowance <from> granted
to <to>. The signing wallet only pays for the call; it does not need an
allowance of its own.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := resolveAccount(args[0])
		if err != nil {
			return err
		}
		to, err := resolveAccount(args[1])
		if err != nil {
			return err
		}
		amount, err := parseAmount(args[2])
		if err != nil {
			return err
		}
		return runCall(cmd, calldata.TransferFrom(from, to, amount), [][2]string{
			{"From", ui.Addr(from.Hex())},
			{"To", ui.Addr(to.Hex())},
			{"Amount", ui.Val(formatAmount(amount))},
		})
	},
}

var submitCmd = &cobra.Command{
	Use:   "submit <envelope>",
	Short: "Run a signed envelope produced with --envelope-only",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := host.DecodeEnvelopeHex(args[0])
		if err != nil {
			return err
		}
		d, s, err := openDispatcher(false)
		if err != nil {
			return err
		}
		defer s.Close()

		r, err := d.Dispatch(cmd.Context(), env)
		if err != nil {
			return explainCallError(err)
		}
		printReceipt(r)
		return nil
	},
}

// runCall signs call with the selected wallet and either dispatches it or,
// with --envelope-only, prints the sealed envelope.
func runCall(cmd *cobra.Command, call calldata.Call, preview [][2]string) error {
	signer, err := signingWallet()
	if err != nil {
		return err
	}

	if envelopeOnly {
		return printEnvelope(signer, call)
	}

	d, s, err := openDispatcher(false)
	if err != nil {
		return err
	}
	defer s.Close()

	nonce, err := d.Nonce(signer.Address())
	if err != nil {
		return err
	}

	if !yesFlag {
		pairs := append([][2]string{
			{"Call", ui.Val(string(call.Op))},
			{"Signer", ui.Addr(signer.Address().Hex())},
		}, preview...)
		pairs = append(pairs, [2]string{"Nonce", fmt.Sprintf("%d", nonce)})
		fmt.Println(ui.KeyValueBlock("Call Preview", pairs))
		if !ui.Confirm("Sign and run this call?") {
			fmt.Println(ui.Meta("Cancelled."))
			return nil
		}
	}

	env, err := host.Seal(d.Domain(), nonce, call, signer)
	if err != nil {
		return err
	}
	r, err := d.Dispatch(cmd.Context(), env)
	if err != nil {
		return explainCallError(err)
	}
	printReceipt(r)
	return nil
}

// printEnvelope seals call without touching the store unless the nonce
// must be looked up.
func printEnvelope(signer host.Signer, call calldata.Call) error {
	g, err := cfg.LedgerGenesis()
	if err != nil {
		return fmt.Errorf("%w: run `w3ledger genesis` first", err)
	}

	var nonce uint64
	if nonceFlag >= 0 {
		nonce = uint64(nonceFlag)
	} else {
		d, s, err := openDispatcher(true)
		if err != nil {
			return err
		}
		nonce, err = d.Nonce(signer.Address())
		s.Close()
		if err != nil {
			return err
		}
	}

	env, err := host.Seal(g.Name, nonce, call, signer)
	if err != nil {
		return err
	}
	h, err := env.Hex()
	if err != nil {
		return err
	}
	logger.Debug("envelope sealed",
		zap.String("signer", signer.Address().Hex()),
		zap.Uint64("nonce", nonce),
		zap.String("op", string(call.Op)),
	)
	fmt.Println(h)
	return nil
}

func printReceipt(r *store.Receipt) {
	pairs := [][2]string{
		{"Receipt", ui.Val(r.ID)},
		{"Call", ui.Val(string(r.Op))},
		{"Caller", ui.Addr(r.Caller.Hex())},
		{"Nonce", fmt.Sprintf("%d", r.Nonce)},
	}
	for i, e := range r.Events {
		pairs = append(pairs, [2]string{fmt.Sprintf("Event[%d]", i), describeEvent(e)})
	}
	fmt.Println(ui.Success("Call committed."))
	fmt.Println(ui.KeyValueBlock("Receipt", pairs))
}

func describeEvent(e ledger.Event) string {
	switch e.Kind {
	case ledger.EventTransfer:
		return fmt.Sprintf("%s %s → %s %s", ui.Token(e.Kind.String()),
			ui.Addr(ui.TruncateAddr(e.From.Hex())), ui.Addr(ui.TruncateAddr(e.To.Hex())),
			ui.Val(formatAmount(e.Amount)))
	case ledger.EventApproval:
		return fmt.Sprintf("%s %s → %s allowance %s", ui.Token(e.Kind.String()),
			ui.Addr(ui.TruncateAddr(e.Owner().Hex())), ui.Addr(ui.TruncateAddr(e.Spender().Hex())),
			ui.Val(formatAmount(e.Amount)))
	}
	return e.String()
}

func init() {
	for _, c := range []*cobra.Command{initializeCmd, transferCmd, approveCmd, transferFromCmd} {
		c.Flags().BoolVar(&envelopeOnly, "envelope-only", false, "print the signed envelope instead of running it")
		c.Flags().Int64Var(&nonceFlag, "nonce", -1, "envelope nonce (default: the signer's next nonce)")
	}
}
