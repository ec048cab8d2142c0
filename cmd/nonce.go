package cmd

import (
	"fmt"

	"github.com/Mohsinsiddi/w3ledger/internal/ui"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

var nonceCmd = &cobra.Command{
	Use:   "nonce [account]",
	Short: "Show the next envelope nonce of an account",
	Long: `Show the nonce the next signed call from an account must carry.

Use it to sign envelopes offline with --envelope-only --nonce.

Examples:
  w3ledger nonce
  w3ledger nonce alice`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			who common.Address
			err error
		)
		if len(args) == 1 {
			who, err = resolveAccount(args[0])
		} else {
			who, err = defaultAccount()
		}
		if err != nil {
			return err
		}

		s, err := openStore(true)
		if err != nil {
			return err
		}
		defer s.Close()

		n, err := s.Nonce(who)
		if err != nil {
			return err
		}

		fmt.Println(ui.KeyValueBlock("Nonce", [][2]string{
			{"Account", ui.Addr(who.Hex())},
			{"Next Nonce", ui.Val(fmt.Sprintf("%d", n))},
		}))
		return nil
	},
}
