package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/Mohsinsiddi/w3ledger/internal/config"
	"github.com/Mohsinsiddi/w3ledger/internal/host"
	"github.com/Mohsinsiddi/w3ledger/internal/ledger"
	"github.com/Mohsinsiddi/w3ledger/internal/store"
	"github.com/Mohsinsiddi/w3ledger/internal/store/boltstore"
	"github.com/Mohsinsiddi/w3ledger/internal/store/memstore"
	"github.com/Mohsinsiddi/w3ledger/internal/ui"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// openStore opens the configured backend. The memory backend starts from
// the configured genesis on every invocation.
func openStore(readOnly bool) (store.Store, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		g, err := cfg.LedgerGenesis()
		if err != nil {
			return nil, fmt.Errorf("%w: run `w3ledger genesis` first", err)
		}
		s := memstore.New()
		if err := s.Init(g); err != nil {
			return nil, err
		}
		return s, nil
	default:
		opts := []boltstore.Option{boltstore.WithTimeout(config.StoreOpenTimeout)}
		if readOnly {
			opts = append(opts, boltstore.WithReadOnly())
		}
		s, err := boltstore.Open(cfg.DataPath(), opts...)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, store.ErrNoGenesis
			}
			return nil, err
		}
		return s, nil
	}
}

// openDispatcher opens the store and a dispatcher over it. The caller
// must close the returned store.
func openDispatcher(readOnly bool) (*host.Dispatcher, store.Store, error) {
	s, err := openStore(readOnly)
	if err != nil {
		return nil, nil, err
	}
	d, err := host.Open(s, host.WithLogger(logger))
	if err != nil {
		s.Close()
		return nil, nil, err
	}
	return d, s, nil
}

// viewLedger runs fn against the current state, read-only.
func viewLedger(fn func(st *ledger.State) error) error {
	d, s, err := openDispatcher(true)
	if err != nil {
		return err
	}
	defer s.Close()

	var ferr error
	d.View(func(st *ledger.State) { ferr = fn(st) })
	return ferr
}

// parseAmount reads a base-unit integer, or a decimal token amount with --units.
func parseAmount(s string) (*uint256.Int, error) {
	if unitsFlag {
		return ui.ParseUnits(s, cfg.Decimals())
	}
	return config.ParseAmount(s)
}

// formatAmount prints v as base units, or as token units with --units.
func formatAmount(v *uint256.Int) string {
	if !unitsFlag {
		return v.Dec()
	}
	ticker := ""
	if cfg.Genesis != nil {
		ticker = cfg.Genesis.Ticker
	}
	return ui.FormatAmount(v, cfg.Decimals(), ticker)
}

// resolveAccount accepts a 0x address or a wallet name.
func resolveAccount(s string) (common.Address, error) {
	if common.IsHexAddress(s) {
		return common.HexToAddress(s), nil
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return common.Address{}, fmt.Errorf("%q is not a 20-byte address", s)
	}
	w, err := newWalletManager().Get(s)
	if err != nil {
		return common.Address{}, fmt.Errorf("wallet %q not found — run `w3ledger wallet list`", s)
	}
	return w.Account(), nil
}

// defaultAccount resolves the --wallet flag or the default wallet.
func defaultAccount() (common.Address, error) {
	name := walletFlag
	if name == "" {
		name = cfg.DefaultWallet
	}
	if name == "" {
		if w := newWalletManager().Default(); w != nil {
			return w.Account(), nil
		}
		return common.Address{}, errors.New("no account given and no default wallet — run `w3ledger wallet use <name>`")
	}
	return resolveAccount(name)
}

// explainCallError adds a hint to ledger failures a user can act on.
func explainCallError(err error) error {
	switch {
	case errors.Is(err, ledger.ErrNotOwner):
		return fmt.Errorf("%w\n  Only the genesis owner may initialize; pick it with --wallet", err)
	case errors.Is(err, ledger.ErrAccountNotFound):
		return fmt.Errorf("%w\n  The account has never received tokens", err)
	case errors.Is(err, ledger.ErrAllowanceNotFound):
		return fmt.Errorf("%w\n  The source must first approve the destination with `w3ledger approve`", err)
	}
	return err
}
