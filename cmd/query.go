package cmd

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Mohsinsiddi/w3ledger/internal/config"
	"github.com/Mohsinsiddi/w3ledger/internal/ledger"
	"github.com/Mohsinsiddi/w3ledger/internal/ui"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

var holdersLimit int

var balanceCmd = &cobra.Command{
	Use:   "balance [account]",
	Short: "Show the balance of an account (default: the selected wallet)",
	Args:  cobra.MaximumNArgs(1),
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

		return viewLedger(func(st *ledger.State) error {
			pairs := [][2]string{
				{"Account", ui.Addr(who.Hex())},
				{"Balance", ui.Val(formatAmount(st.BalanceOf(who)))},
			}
			if !st.HasAccount(who) {
				pairs = append(pairs, [2]string{"Record", ui.Meta("none (never funded)")})
			}
			fmt.Println(ui.KeyValueBlock(string(st.Ticker())+" Balance", pairs))
			return nil
		})
	},
}

var allowanceCmd = &cobra.Command{
	Use:   "allowance <owner> <spender>",
	Short: "Show how much spender may move out of owner",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, err := resolveAccount(args[0])
		if err != nil {
			return err
		}
		spender, err := resolveAccount(args[1])
		if err != nil {
			return err
		}
		return viewLedger(func(st *ledger.State) error {
			fmt.Println(ui.KeyValueBlock("Allowance", [][2]string{
				{"Owner", ui.Addr(owner.Hex())},
				{"Spender", ui.Addr(spender.Hex())},
				{"Remaining", ui.Val(formatAmount(st.AllowanceOf(owner, spender)))},
			}))
			return nil
		})
	},
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the token configuration and ledger status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, s, err := openDispatcher(true)
		if err != nil {
			return err
		}
		defer s.Close()

		var pairs [][2]string
		d.View(func(st *ledger.State) {
			status := ui.StyleWarning.Render("not initialized")
			if st.IsInitialized() {
				status = ui.StyleSuccess.Render("initialized")
			}
			pairs = [][2]string{
				{"Name", ui.Val(string(st.Name()))},
				{"Ticker", ui.Token(string(st.Ticker()))},
				{"Owner", ui.Addr(st.Owner().Hex())},
				{"Total Supply", ui.Val(formatAmount(st.TotalSupply()))},
				{"Decimals", fmt.Sprintf("%d", cfg.Decimals())},
				{"Status", status},
				{"Holders", fmt.Sprintf("%d", len(st.Accounts()))},
			}
		})
		pairs = append(pairs, [2]string{"Backend", ui.Meta(cfg.Backend)})
		if cfg.Backend == config.BackendMemory {
			pairs = append(pairs, [2]string{"Data File", ui.Meta("none (state resets every run)")})
		} else {
			pairs = append(pairs, [2]string{"Data File", ui.Meta(cfg.DataPath())})
		}
		fmt.Println(ui.KeyValueBlock("Ledger", pairs))
		return nil
	},
}

var holdersCmd = &cobra.Command{
	Use:   "holders",
	Short: "List every account with a balance record, largest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return viewLedger(func(st *ledger.State) error {
			accounts := st.Accounts()
			if len(accounts) == 0 {
				fmt.Println(ui.Info("No balance records yet."))
				if !st.IsInitialized() {
					fmt.Println(ui.Hint("Credit the supply with: w3ledger initialize"))
				}
				return nil
			}

			sort.SliceStable(accounts, func(i, j int) bool {
				return st.BalanceOf(accounts[i]).Gt(st.BalanceOf(accounts[j]))
			})
			if holdersLimit > 0 && len(accounts) > holdersLimit {
				accounts = accounts[:holdersLimit]
			}

			names := walletNames()
			t := ui.NewTable([]ui.Column{
				{Title: "#", Width: 4, Align: ui.AlignRight},
				{Title: "Account", Width: 44},
				{Title: "Wallet", Width: 14},
				{Title: "Balance", Width: 30, Align: ui.AlignRight},
			})
			for i, a := range accounts {
				t.AddRow(ui.Row{
					ui.Meta(fmt.Sprintf("%d", i+1)),
					ui.Addr(a.Hex()),
					ui.Val(names[a]),
					ui.Val(formatAmount(st.BalanceOf(a))),
				})
			}
			fmt.Println(t.Render())
			fmt.Println(ui.Meta(fmt.Sprintf("%d holder(s) shown", len(accounts))))
			return nil
		})
	},
}

// errNotConserved makes audit exit non-zero.
var errNotConserved = errors.New("ledger is not conserved")

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Check that balances add up to the total supply",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return viewLedger(func(st *ledger.State) error {
			circulating := "overflow"
			if sum, ok := st.Circulating(); ok {
				circulating = formatAmount(sum)
			}
			fmt.Println(ui.KeyValueBlock("Audit", [][2]string{
				{"Total Supply", ui.Val(formatAmount(st.TotalSupply()))},
				{"Circulating", ui.Val(circulating)},
				{"Accounts", fmt.Sprintf("%d", len(st.Accounts()))},
				{"Allowances", fmt.Sprintf("%d", len(st.AllowanceKeys()))},
			}))
			if !st.Conserved() {
				fmt.Println(ui.Err("Balances do not add up to the total supply."))
				return errNotConserved
			}
			fmt.Println(ui.Success("Conserved: balances add up to the total supply."))
			return nil
		})
	},
}

// walletNames maps known wallet addresses to their names.
func walletNames() map[common.Address]string {
	names := make(map[common.Address]string)
	for _, w := range newWalletManager().List() {
		names[w.Account()] = w.Name
	}
	return names
}

func init() {
	holdersCmd.Flags().IntVarP(&holdersLimit, "limit", "n", 0, "show at most n holders (0: all)")
}
