package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/Mohsinsiddi/w3ledger/internal/config"
	"github.com/Mohsinsiddi/w3ledger/internal/ui"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configShowCmd = &cobra.Command{
	Use:     "show",
	Aliases: []string{"list"},
	Short:   "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}
		fmt.Printf("%s\n\n", ui.StyleTitle.Render("Current Configuration"))
		fmt.Println(string(data))
		fmt.Println(ui.Meta("Config directory: " + cfg.Dir()))
		fmt.Println(ui.Meta("Data file:        " + cfg.DataPath()))
		return nil
	},
}

var configSetBackendCmd = &cobra.Command{
	Use:       "set-backend <bolt|memory>",
	Short:     "Choose where the ledger is stored",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{config.BackendBolt, config.BackendMemory},
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.SetBackend(args[0]); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Backend set to %q", args[0])))
		if args[0] == config.BackendMemory {
			fmt.Println(ui.Warn("The memory backend starts from genesis on every run."))
		}
		return nil
	},
}

var configSetDataFileCmd = &cobra.Command{
	Use:   "set-data-file <path>",
	Short: "Set the BoltDB file (relative to the config directory unless absolute)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg.DataFile = args[0]
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success("Data file set to " + cfg.DataPath()))
		return nil
	},
}

var configSetDefaultWalletCmd = &cobra.Command{
	Use:   "set-default-wallet <name>",
	Short: "Set the default wallet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := newWalletManager().Get(args[0]); err != nil {
			return fmt.Errorf("wallet %q not found — run `w3ledger wallet list` to see all wallets", args[0])
		}
		cfg.DefaultWallet = args[0]
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Default wallet set to %q", args[0])))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configSetBackendCmd, configSetDataFileCmd, configSetDefaultWalletCmd)
}
