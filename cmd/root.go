package cmd

import (
	"fmt"
	"os"

	"github.com/Mohsinsiddi/w3ledger/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/Mohsinsiddi/w3ledger/cmd.Version=1.2.3" .
var Version = "1.0.0"

// ConfigDirEnv overrides the --config default.
const ConfigDirEnv = "W3LEDGER_CONFIG_DIR"

var (
	cfgDir     string
	cfg        *config.Config
	logger     = zap.NewNop()
	verbose    bool
	walletFlag string
	unitsFlag  bool
	yesFlag    bool
)

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "w3ledger",
	Short: "A signed, append-only fungible token ledger",
	Long: `w3ledger keeps a single fungible token ledger on disk and runs
signed calls against it.

  Create the token with 'genesis', credit the supply with 'initialize',
  then move funds with 'transfer', 'approve' and 'transfer-from'.
  Every call is an EIP-191 signed envelope carrying ERC-20 calldata, is
  checked against the signer's nonce, and either commits fully or not
  at all.

Amounts are base-unit integers. With --units they are read and shown as
decimal token amounts using the genesis decimals.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		var err error
		if verbose {
			logger, err = zap.NewDevelopment()
			if err != nil {
				return fmt.Errorf("building logger: %w", err)
			}
		}
		cfg, err = config.Load(cfgDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		logger.Debug("config loaded",
			zap.String("dir", cfg.Dir()),
			zap.String("backend", cfg.Backend),
		)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	if envDir := os.Getenv(ConfigDirEnv); envDir != "" {
		cfgDir = envDir
	}

	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", cfgDir, "config directory (default: ~/.w3ledger)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log dispatcher activity to stderr")
	rootCmd.PersistentFlags().StringVarP(&walletFlag, "wallet", "w", "", "signing wallet (default: the configured default wallet)")
	rootCmd.PersistentFlags().BoolVar(&unitsFlag, "units", false, "read and print amounts in decimal token units")
	rootCmd.PersistentFlags().BoolVarP(&yesFlag, "yes", "y", false, "skip confirmation prompts")

	rootCmd.AddCommand(
		genesisCmd,
		initializeCmd,
		transferCmd,
		approveCmd,
		transferFromCmd,
		submitCmd,
		balanceCmd,
		allowanceCmd,
		infoCmd,
		holdersCmd,
		auditCmd,
		eventsCmd,
		receiptsCmd,
		nonceCmd,
		decodeCmd,
		encodeCmd,
		selectorCmd,
		convertCmd,
		walletCmd,
		configCmd,
	)
}
