package cmd

import (
	"fmt"
	"strings"

	"github.com/Mohsinsiddi/w3ledger/internal/config"
	"github.com/Mohsinsiddi/w3ledger/internal/ui"
	"github.com/holiman/uint256"
	"github.com/spf13/cobra"
)

var convertDecimals int

var convertCmd = &cobra.Command{
	Use:   "convert <amount>",
	Short: "Convert between base units, token units and hex",
	Long: `Convert an amount between base units and decimal token units using the
genesis decimals (or --decimals).

A value with a decimal point, or any value with --units, is read as token
units. Otherwise it is read as base units in decimal or 0x-hex.

Examples:
  w3ledger convert 1500000000000000000      # → 1.5 tokens
  w3ledger convert 1.5                      # → 1500000000000000000
  w3ledger convert 0xff --decimals 0        # → 255`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		decimals := cfg.Decimals()
		if convertDecimals >= 0 {
			if convertDecimals > int(config.MaxDecimals) {
				return fmt.Errorf("--decimals must be at most %d", config.MaxDecimals)
			}
			decimals = uint8(convertDecimals)
		}
		pairs, err := convertAmount(args[0], decimals, unitsFlag)
		if err != nil {
			return err
		}
		fmt.Println(ui.KeyValueBlock("Amount Conversion", pairs))
		return nil
	},
}

// convertAmount renders s in every representation.
func convertAmount(s string, decimals uint8, tokenUnits bool) ([][2]string, error) {
	input := "base units"
	parse := config.ParseAmount
	if tokenUnits || strings.Contains(s, ".") {
		input = "token units"
		parse = func(s string) (*uint256.Int, error) { return ui.ParseUnits(s, decimals) }
	}
	v, err := parse(s)
	if err != nil {
		return nil, err
	}

	return [][2]string{
		{"Input", ui.Val(s) + " " + ui.Meta(input)},
		{"Base Units", ui.Val(v.Dec())},
		{"Token Units", ui.Val(ui.FormatUnits(v, decimals))},
		{"Hex", ui.Val(v.Hex())},
		{"Decimals", fmt.Sprintf("%d", decimals)},
	}, nil
}

func init() {
	convertCmd.Flags().IntVar(&convertDecimals, "decimals", -1, "decimals to convert with (default: genesis decimals)")
}
