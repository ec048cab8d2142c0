// soak: runs concurrent signed calls from several generated accounts against
// a throwaway BoltDB ledger, then reopens it and checks that balances still
// add up to the total supply. Prints a per-account summary table.
//
// Run from the module root:
//
//	go run ./scripts/soak -accounts 8 -calls 500 -rate 200
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/Mohsinsiddi/w3ledger/internal/calldata"
	"github.com/Mohsinsiddi/w3ledger/internal/host"
	"github.com/Mohsinsiddi/w3ledger/internal/ledger"
	"github.com/Mohsinsiddi/w3ledger/internal/store/boltstore"
	"github.com/Mohsinsiddi/w3ledger/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ── config ────────────────────────────────────────────────────────────────────

var (
	numAccounts = flag.Int("accounts", 6, "generated accounts")
	numCalls    = flag.Int("calls", 200, "calls per account")
	supply      = flag.Uint64("supply", 1_000_000, "total supply")
	callRate    = flag.Float64("rate", 0, "max calls per second across all accounts (0 = unlimited)")
	verbose     = flag.Bool("v", false, "log every dispatch")
)

// ── types ─────────────────────────────────────────────────────────────────────

type account struct {
	name   string
	signer *wallet.KeySigner
}

type tally struct {
	ok, failed, rejected int
}

// ── main ──────────────────────────────────────────────────────────────────────

func main() {
	flag.Parse()
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "soak:", err)
		os.Exit(1)
	}
}

func run() error {
	log := zap.NewNop()
	if *verbose {
		var err error
		if log, err = zap.NewDevelopment(); err != nil {
			return err
		}
		defer log.Sync() //nolint:errcheck
	}

	dir, err := os.MkdirTemp("", "w3ledger-soak")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "ledger.db")

	accounts, err := generateAccounts(*numAccounts)
	if err != nil {
		return err
	}
	owner := accounts[0]

	s, err := boltstore.Open(path)
	if err != nil {
		return err
	}
	err = s.Init(ledger.Genesis{
		Owner:       owner.signer.Address(),
		TotalSupply: uint256.NewInt(*supply),
		Name:        []byte("Soak Token"),
		Ticker:      []byte("SOAK"),
	})
	if err != nil {
		return err
	}
	d, err := host.Open(s, host.WithLogger(log))
	if err != nil {
		return err
	}
	if _, err := d.DispatchAs(context.Background(), owner.signer.Address(), calldata.Initialize()); err != nil {
		return fmt.Errorf("initialize: %w", err)
	}

	// Spread the supply so every account can act.
	share := uint256.NewInt(*supply / uint64(len(accounts)))
	for _, a := range accounts[1:] {
		if _, err := d.DispatchAs(context.Background(), owner.signer.Address(), calldata.Transfer(a.signer.Address(), share)); err != nil {
			return fmt.Errorf("seeding %s: %w", a.name, err)
		}
	}

	limit := rate.Inf
	if *callRate > 0 {
		limit = rate.Limit(*callRate)
	}
	limiter := rate.NewLimiter(limit, max(*numAccounts, 1))

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		tallies = make(map[string]*tally)
	)
	for _, a := range accounts {
		tallies[a.name] = &tally{}
		wg.Add(1)
		go func(a account) {
			defer wg.Done()
			rng := rand.New(rand.NewPCG(uint64(len(a.name)), rand.Uint64()))
			for i := 0; i < *numCalls; i++ {
				if err := limiter.Wait(context.Background()); err != nil {
					return
				}
				err := send(d, a, randomCall(rng, accounts))

				mu.Lock()
				t := tallies[a.name]
				switch {
				case err == nil:
					t.ok++
				case errors.Is(err, host.ErrBadNonce):
					t.rejected++
				default:
					t.failed++
				}
				mu.Unlock()
			}
		}(a)
	}
	wg.Wait()
	if err := s.Close(); err != nil {
		return err
	}

	// Reopen from disk and audit.
	s, err = boltstore.Open(path, boltstore.WithReadOnly())
	if err != nil {
		return err
	}
	defer s.Close()
	st, err := s.Load()
	if err != nil {
		return err
	}

	printTable(accounts, tallies, st)
	if !st.Conserved() {
		return errors.New("ledger is NOT conserved after reopen")
	}
	fmt.Println("\nconserved: balances add up to", st.TotalSupply().Dec())
	return nil
}

func generateAccounts(n int) ([]account, error) {
	mgr := wallet.NewManager()
	out := make([]account, 0, n)
	for i := 0; i < max(n, 2); i++ {
		name := fmt.Sprintf("acct%02d", i)
		if _, _, err := mgr.Generate(name); err != nil {
			return nil, err
		}
		hexKey, err := mgr.ExportKey(name)
		if err != nil {
			return nil, err
		}
		signer, err := wallet.NewKeySigner(hexKey)
		if err != nil {
			return nil, err
		}
		out = append(out, account{name: name, signer: signer})
	}
	return out, nil
}

// send seals call with the sender's current nonce. Each goroutine owns one
// key, so nonces never race.
func send(d *host.Dispatcher, a account, call calldata.Call) error {
	nonce, err := d.Nonce(a.signer.Address())
	if err != nil {
		return err
	}
	env, err := host.Seal(d.Domain(), nonce, call, a.signer)
	if err != nil {
		return err
	}
	_, err = d.Dispatch(context.Background(), env)
	return err
}

func randomCall(rng *rand.Rand, accounts []account) calldata.Call {
	pick := func() common.Address { return accounts[rng.IntN(len(accounts))].signer.Address() }
	amount := uint256.NewInt(rng.Uint64N(*supply / 10))
	switch rng.IntN(3) {
	case 0:
		return calldata.Approve(pick(), amount)
	case 1:
		return calldata.TransferFrom(pick(), pick(), amount)
	default:
		return calldata.Transfer(pick(), amount)
	}
}

// ── output ────────────────────────────────────────────────────────────────────

func printTable(accounts []account, tallies map[string]*tally, st *ledger.State) {
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].name < accounts[j].name })

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ACCOUNT\tADDRESS\tOK\tFAILED\tREJECTED\tBALANCE")
	fmt.Fprintln(w, strings.Repeat("-", 7)+"\t"+
		strings.Repeat("-", 14)+"\t"+
		strings.Repeat("-", 5)+"\t"+
		strings.Repeat("-", 6)+"\t"+
		strings.Repeat("-", 8)+"\t"+
		strings.Repeat("-", 12))
	for _, a := range accounts {
		t := tallies[a.name]
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%s\n",
			a.name, shortAddr(a.signer.Address().Hex()), t.ok, t.failed, t.rejected,
			st.BalanceOf(a.signer.Address()).Dec())
	}
	w.Flush()
}

// ── helpers ───────────────────────────────────────────────────────────────────

func shortAddr(addr string) string {
	if len(addr) < 10 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}
