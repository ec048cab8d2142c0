package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Mohsinsiddi/w3ledger/internal/config"
	"github.com/Mohsinsiddi/w3ledger/internal/host"
	"github.com/Mohsinsiddi/w3ledger/internal/ledger"
	"github.com/Mohsinsiddi/w3ledger/internal/store"
	"github.com/Mohsinsiddi/w3ledger/internal/ui"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/spf13/cobra"
)

var (
	eventsOffset      int
	eventsLimit       int
	eventsKind        string
	eventsInteractive bool
	eventsLogs        bool

	receiptsLimit int
	receiptsID    string
)

var eventColumns = []ui.Column{
	{Title: "#", Width: 6, Align: ui.AlignRight},
	{Title: "Event", Width: 9},
	{Title: "From / Owner", Width: 14},
	{Title: "To / Spender", Width: 14},
	{Title: "Amount", Width: 26, Align: ui.AlignRight},
	{Title: "Receipt", Width: 32},
}

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List the event log",
	Long: `List Transfer and Approval events in the order they were emitted.

Examples:
  w3ledger events --limit 50
  w3ledger events --kind approval
  w3ledger events --interactive
  w3ledger events --logs            # ERC-20 log JSON`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := parseEventKind(eventsKind)
		if err != nil {
			return err
		}

		d, s, err := openDispatcher(true)
		if err != nil {
			return err
		}
		defer s.Close()

		limit := eventsLimit
		if eventsInteractive {
			limit = 0
		}
		records, err := s.Events(eventsOffset, limit)
		if err != nil {
			return err
		}
		records = filterRecords(records, kind)

		if eventsLogs {
			return printLogs(records, host.LedgerAddress(d.Domain()))
		}
		if len(records) == 0 {
			fmt.Println(ui.Info("No events."))
			return nil
		}
		if eventsInteractive {
			return ui.RunEventList("Events: "+string(d.Domain()), eventColumns, eventRows(records))
		}

		t := ui.NewTable(eventColumns)
		for _, r := range eventRows(records) {
			t.AddRow(r.Cells)
		}
		fmt.Println(t.Render())
		fmt.Println(ui.Meta(fmt.Sprintf("%d event(s) from #%d", len(records), records[0].Seq)))
		return nil
	},
}

var receiptsCmd = &cobra.Command{
	Use:   "receipts",
	Short: "List committed calls, most recent first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var want string
		if receiptsID != "" {
			id, err := host.ParseReceiptID(receiptsID)
			if err != nil {
				return err
			}
			want = id
		}

		s, err := openStore(true)
		if err != nil {
			return err
		}
		defer s.Close()

		limit := receiptsLimit
		if want != "" {
			limit = 0
		}
		receipts, err := s.Receipts(limit)
		if err != nil {
			return err
		}

		if want != "" {
			for _, r := range receipts {
				if r.ID == want {
					printReceipt(r)
					return nil
				}
			}
			return fmt.Errorf("receipt %s not found", want)
		}

		if len(receipts) == 0 {
			fmt.Println(ui.Info("No calls committed yet."))
			return nil
		}
		t := ui.NewTable([]ui.Column{
			{Title: "Receipt", Width: 32},
			{Title: "Call", Width: 14},
			{Title: "Caller", Width: 14},
			{Title: "Nonce", Width: 6, Align: ui.AlignRight},
			{Title: "Events", Width: 6, Align: ui.AlignRight},
		})
		for _, r := range receipts {
			t.AddRow(ui.Row{
				ui.Val(r.ID),
				ui.Token(string(r.Op)),
				ui.Addr(ui.TruncateAddr(r.Caller.Hex())),
				fmt.Sprintf("%d", r.Nonce),
				fmt.Sprintf("%d", len(r.Events)),
			})
		}
		fmt.Println(t.Render())
		return nil
	},
}

// parseEventKind maps a --kind value to a filter. The zero kind keeps
// every event.
func parseEventKind(s string) (ledger.EventKind, error) {
	switch strings.ToLower(s) {
	case "", "all":
		return 0, nil
	case "transfer":
		return ledger.EventTransfer, nil
	case "approval":
		return ledger.EventApproval, nil
	}
	return 0, fmt.Errorf("unknown event kind %q (want transfer or approval)", s)
}

func filterRecords(records []store.Record, kind ledger.EventKind) []store.Record {
	if kind == 0 {
		return records
	}
	var out []store.Record
	for _, r := range records {
		if r.Event.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}

func eventRows(records []store.Record) []ui.EventRow {
	rows := make([]ui.EventRow, 0, len(records))
	for _, r := range records {
		e := r.Event
		rows = append(rows, ui.EventRow{
			Cells: ui.Row{
				ui.Meta(fmt.Sprintf("%d", r.Seq)),
				ui.Token(e.Kind.String()),
				ui.Addr(ui.TruncateAddr(e.From.Hex())),
				ui.Addr(ui.TruncateAddr(e.To.Hex())),
				ui.Val(formatAmount(e.Amount)),
				ui.Meta(r.Receipt),
			},
			Kind:    e.Kind.String(),
			Receipt: r.Receipt,
			From:    e.From.Hex(),
		})
	}
	return rows
}

// printLogs writes the records as go-ethereum log objects, one JSON array.
func printLogs(records []store.Record, contract common.Address) error {
	logs := make([]*types.Log, 0, len(records))
	for _, r := range records {
		l := r.Event.Log(contract)
		l.Index = uint(r.Seq - 1)
		logs = append(logs, l)
	}
	data, err := json.MarshalIndent(logs, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func init() {
	eventsCmd.Flags().IntVar(&eventsOffset, "offset", 0, "skip the first n events")
	eventsCmd.Flags().IntVarP(&eventsLimit, "limit", "n", config.DefaultPageSize, "show at most n events (0: all)")
	eventsCmd.Flags().StringVar(&eventsKind, "kind", "", "only show transfer or approval events")
	eventsCmd.Flags().BoolVarP(&eventsInteractive, "interactive", "i", false, "browse events in an interactive table")
	eventsCmd.Flags().BoolVar(&eventsLogs, "logs", false, "print events as ERC-20 log JSON")

	receiptsCmd.Flags().IntVarP(&receiptsLimit, "limit", "n", config.DefaultPageSize, "show at most n receipts (0: all)")
	receiptsCmd.Flags().StringVar(&receiptsID, "id", "", "show a single receipt by id")
}
