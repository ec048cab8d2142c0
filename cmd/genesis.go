package cmd

import (
	"errors"
	"fmt"

	"github.com/Mohsinsiddi/w3ledger/internal/config"
	"github.com/Mohsinsiddi/w3ledger/internal/store"
	"github.com/Mohsinsiddi/w3ledger/internal/store/boltstore"
	"github.com/Mohsinsiddi/w3ledger/internal/ui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	genesisOwner    string
	genesisSupply   string
	genesisName     string
	genesisTicker   string
	genesisDecimals uint8
)

var genesisCmd = &cobra.Command{
	Use:   "genesis",
	Short: "Create the token: owner, total supply, name and ticker",
	Long: `Write the token configuration and create the ledger store.

The genesis is fixed once written. Nothing is credited until the owner
runs 'w3ledger initialize'.

Examples:
  w3ledger genesis --owner alice --supply 1000000 --name "Demo Token" --ticker DEMO
  w3ledger genesis --owner 0xf39F... --supply 21000000 --units --decimals 8 --name Coin --ticker CN`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Genesis != nil {
			return fmt.Errorf("genesis already configured for %q\n  Point --config at a new directory to create another ledger", cfg.Genesis.Name)
		}
		if genesisSupply == "" {
			return fmt.Errorf("--supply is required")
		}

		owner := genesisOwner
		if owner == "" {
			a, err := defaultAccount()
			if err != nil {
				return fmt.Errorf("--owner is required or set a default wallet")
			}
			owner = a.Hex()
		} else {
			a, err := resolveAccount(owner)
			if err != nil {
				return err
			}
			owner = a.Hex()
		}

		// --units needs the decimals of the genesis being written.
		supply := genesisSupply
		if unitsFlag {
			v, err := ui.ParseUnits(genesisSupply, genesisDecimals)
			if err != nil {
				return err
			}
			supply = v.Dec()
		}

		g := &config.Genesis{
			Owner:       owner,
			TotalSupply: supply,
			Name:        genesisName,
			Ticker:      genesisTicker,
			Decimals:    genesisDecimals,
		}
		lg, err := g.Ledger()
		if err != nil {
			return err
		}

		if cfg.Backend == config.BackendBolt {
			s, err := boltstore.Open(cfg.DataPath(), boltstore.WithTimeout(config.StoreOpenTimeout))
			if err != nil {
				return err
			}
			err = s.Init(lg)
			s.Close()
			if errors.Is(err, store.ErrGenesisExists) {
				return fmt.Errorf("%s already holds a ledger\n  Remove it or choose another file with `w3ledger config set-data-file`", cfg.DataPath())
			}
			if err != nil {
				return err
			}
		}

		cfg.Genesis = g
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		logger.Info("genesis written",
			zap.String("owner", owner),
			zap.String("supply", supply),
			zap.String("backend", cfg.Backend),
		)

		fmt.Println(ui.Success(fmt.Sprintf("Token %s (%s) created.", g.Name, ui.Token(g.Ticker))))
		fmt.Println(ui.KeyValueBlock("Genesis", [][2]string{
			{"Owner", ui.Addr(owner)},
			{"Total Supply", ui.Val(formatAmount(lg.TotalSupply))},
			{"Decimals", fmt.Sprintf("%d", g.Decimals)},
			{"Backend", ui.Meta(cfg.Backend)},
		}))
		if cfg.Backend == config.BackendMemory {
			fmt.Println(ui.Warn("The memory backend keeps nothing between runs."))
		}
		fmt.Println(ui.Hint("Credit the supply with: w3ledger initialize --wallet <owner-wallet>"))
		return nil
	},
}

func init() {
	genesisCmd.Flags().StringVar(&genesisOwner, "owner", "", "owner address or wallet name (default: the default wallet)")
	genesisCmd.Flags().StringVar(&genesisSupply, "supply", "", "total supply (required)")
	genesisCmd.Flags().StringVar(&genesisName, "name", "", "token name (required)")
	genesisCmd.Flags().StringVar(&genesisTicker, "ticker", "", "token ticker (required)")
	genesisCmd.Flags().Uint8Var(&genesisDecimals, "decimals", config.DefaultDecimals, "display decimals")
	genesisCmd.MarkFlagRequired("name")   //nolint:errcheck
	genesisCmd.MarkFlagRequired("ticker") //nolint:errcheck
}
