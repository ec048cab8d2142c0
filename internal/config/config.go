package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Mohsinsiddi/w3ledger/internal/ledger"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

const (
	defaultDataFile = "ledger.db"

	configFile  = "config.json"
	walletsFile = "wallets.json"
	keysDir     = "keys"
)

// Errors.
var (
	ErrNoGenesis      = errors.New("no genesis configured")
	ErrInvalidGenesis = errors.New("invalid genesis")
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrUnknownBackend = errors.New("unknown storage backend")
)

// Load reads config from dir (or creates defaults). dir defaults to ~/.w3ledger.
func Load(dir string) (*Config, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("could not determine home dir: %w", err)
		}
		dir = filepath.Join(home, ".w3ledger")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	cfg := defaults(dir)

	path := filepath.Join(dir, configFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.configDir = dir

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to disk.
func (c *Config) Save() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.configDir, configFile), data, 0o600)
}

// Validate checks the backend and, when present, the genesis.
func (c *Config) Validate() error {
	if err := ValidateBackend(c.Backend); err != nil {
		return err
	}
	if c.Genesis != nil {
		if _, err := c.Genesis.Ledger(); err != nil {
			return err
		}
	}
	return nil
}

// SetBackend switches the storage backend.
func (c *Config) SetBackend(b string) error {
	if err := ValidateBackend(b); err != nil {
		return err
	}
	c.Backend = b
	return nil
}

// ValidateBackend reports whether b names a storage backend.
func ValidateBackend(b string) error {
	switch b {
	case BackendBolt, BackendMemory:
		return nil
	}
	return fmt.Errorf("%w %q (want %q or %q)", ErrUnknownBackend, b, BackendBolt, BackendMemory)
}

// Dir returns the config directory.
func (c *Config) Dir() string {
	return c.configDir
}

// DataPath returns the absolute path of the ledger data file.
func (c *Config) DataPath() string {
	if filepath.IsAbs(c.DataFile) {
		return c.DataFile
	}
	return filepath.Join(c.configDir, c.DataFile)
}

// WalletsPath returns the path of wallets.json.
func (c *Config) WalletsPath() string {
	return filepath.Join(c.configDir, walletsFile)
}

// KeysDir returns the directory of the encrypted file keyring.
func (c *Config) KeysDir() string {
	return filepath.Join(c.configDir, keysDir)
}

// LedgerGenesis returns the configured genesis in ledger form.
func (c *Config) LedgerGenesis() (ledger.Genesis, error) {
	if c.Genesis == nil {
		return ledger.Genesis{}, ErrNoGenesis
	}
	return c.Genesis.Ledger()
}

// Decimals returns the display decimals, falling back to the default when
// no genesis is configured.
func (c *Config) Decimals() uint8 {
	if c.Genesis == nil {
		return DefaultDecimals
	}
	return c.Genesis.Decimals
}

// Ledger validates g and converts it.
func (g *Genesis) Ledger() (ledger.Genesis, error) {
	if !common.IsHexAddress(g.Owner) {
		return ledger.Genesis{}, fmt.Errorf("%w: owner %q is not an address", ErrInvalidGenesis, g.Owner)
	}
	supply, err := g.Supply()
	if err != nil {
		return ledger.Genesis{}, fmt.Errorf("%w: total supply: %v", ErrInvalidGenesis, err)
	}
	if strings.TrimSpace(g.Name) == "" {
		return ledger.Genesis{}, fmt.Errorf("%w: name is empty", ErrInvalidGenesis)
	}
	if strings.TrimSpace(g.Ticker) == "" {
		return ledger.Genesis{}, fmt.Errorf("%w: ticker is empty", ErrInvalidGenesis)
	}
	if g.Decimals > MaxDecimals {
		return ledger.Genesis{}, fmt.Errorf("%w: decimals %d above %d", ErrInvalidGenesis, g.Decimals, MaxDecimals)
	}
	return ledger.Genesis{
		Owner:       common.HexToAddress(g.Owner),
		TotalSupply: supply,
		Name:        []byte(g.Name),
		Ticker:      []byte(g.Ticker),
	}, nil
}

// ParseAmount parses a base-unit integer written in decimal or 0x-hex.
func ParseAmount(s string) (*uint256.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	var (
		v   *uint256.Int
		err error
	)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err = uint256.FromHex("0x" + s[2:])
	} else {
		v, err = uint256.FromDecimal(s)
	}
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidAmount, s, err)
	}
	return v, nil
}

// --- helpers ---

func defaults(dir string) *Config {
	return &Config{
		Backend:   BackendBolt,
		DataFile:  defaultDataFile,
		configDir: dir,
	}
}
