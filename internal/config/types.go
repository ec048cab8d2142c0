package config

import "github.com/holiman/uint256"

// Config holds all w3ledger configuration.
type Config struct {
	Backend       string   `json:"backend"`        // "bolt" | "memory"
	DataFile      string   `json:"data_file"`      // relative to the config dir unless absolute
	DefaultWallet string   `json:"default_wallet"`
	Genesis       *Genesis `json:"genesis,omitempty"`

	// internal: config dir path used for Save()
	configDir string
}

// Genesis is the token configuration written once when the ledger is
// created. Amounts are base-unit integers in decimal or 0x-hex.
type Genesis struct {
	Owner       string `json:"owner"`
	TotalSupply string `json:"total_supply"`
	Name        string `json:"name"`
	Ticker      string `json:"ticker"`
	Decimals    uint8  `json:"decimals"` // display only
}

// Supply parses TotalSupply.
func (g *Genesis) Supply() (*uint256.Int, error) {
	return ParseAmount(g.TotalSupply)
}
