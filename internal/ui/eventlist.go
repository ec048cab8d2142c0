package ui

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// EventRow is one row of the interactive event browser.
type EventRow struct {
	Cells   Row    // rendered cells, parallel to the table columns
	Kind    string // "Transfer" | "Approval"; used by the filter
	Receipt string // receipt id, copied with c
	From    string // full source/owner address, copied with a
}

var eventFilters = []string{"", "Transfer", "Approval"}

// eventListModel is the bubbletea model for the interactive event table.
type eventListModel struct {
	title   string
	columns []Column
	rows    []EventRow
	visible []int // indexes into rows that pass the filter
	filter  int   // index into eventFilters
	cursor  int
	flash   string // brief feedback shown in hint bar
	copy    func(string) error
}

func newEventListModel(title string, cols []Column, rows []EventRow) eventListModel {
	m := eventListModel{title: title, columns: cols, rows: rows, copy: copyToClipboard}
	m.applyFilter()
	return m
}

func (m *eventListModel) applyFilter() {
	m.visible = nil
	want := eventFilters[m.filter]
	for i, r := range m.rows {
		if want == "" || r.Kind == want {
			m.visible = append(m.visible, i)
		}
	}
	if m.cursor >= len(m.visible) {
		m.cursor = max(len(m.visible)-1, 0)
	}
}

func (m eventListModel) current() (EventRow, bool) {
	if m.cursor >= len(m.visible) {
		return EventRow{}, false
	}
	return m.rows[m.visible[m.cursor]], true
}

func (m eventListModel) Init() tea.Cmd { return nil }

func (m eventListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.flash = ""
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit

		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}

		case "down", "j":
			if m.cursor < len(m.visible)-1 {
				m.cursor++
			}

		case "home", "g":
			m.cursor = 0

		case "end", "G":
			m.cursor = max(len(m.visible)-1, 0)

		case "f":
			m.filter = (m.filter + 1) % len(eventFilters)
			m.applyFilter()

		case "c":
			row, ok := m.current()
			if !ok || row.Receipt == "" {
				m.flash = "No receipt id"
				break
			}
			m.flash = m.copyFlash(row.Receipt)

		case "a":
			row, ok := m.current()
			if !ok || row.From == "" {
				m.flash = "No address"
				break
			}
			m.flash = m.copyFlash(row.From)
		}
	}
	return m, nil
}

func (m eventListModel) copyFlash(text string) string {
	if err := m.copy(text); err != nil {
		return "Copy failed: " + err.Error()
	}
	return "Copied: " + TruncateAddr(text)
}

func (m eventListModel) View() string {
	table := NewTable(m.columns)
	for _, i := range m.visible {
		table.AddRow(m.rows[i].Cells)
	}
	table.SelIdx = m.cursor

	var sb strings.Builder
	sb.WriteString(m.title)
	if f := eventFilters[m.filter]; f != "" {
		sb.WriteString(StyleMeta.Render(fmt.Sprintf("  (showing %s only)", f)))
	}
	sb.WriteString("\n\n")
	sb.WriteString(table.Render())

	sb.WriteString("\n")
	if m.flash != "" {
		sb.WriteString(StyleSuccess.Render("  ✓ " + m.flash))
	} else {
		sb.WriteString(eventControls())
	}
	sb.WriteString("\n")

	return sb.String()
}

// eventControls renders the bottom control bar for the event table.
func eventControls() string {
	sep := StyleMeta.Render("   ")
	var sb strings.Builder
	sb.WriteString(StyleMeta.Render("[ ↑↓ ]"))
	sb.WriteString(StyleMeta.Render(" navigate"))
	sb.WriteString(sep)
	sb.WriteString(StyleInfo.Render("[ f ]"))
	sb.WriteString(StyleMeta.Render(" filter"))
	sb.WriteString(sep)
	sb.WriteString(StyleWarning.Render("[ c ]"))
	sb.WriteString(StyleMeta.Render(" copy receipt"))
	sb.WriteString(sep)
	sb.WriteString(StyleWarning.Render("[ a ]"))
	sb.WriteString(StyleMeta.Render(" copy address"))
	sb.WriteString(sep)
	sb.WriteString(StyleMeta.Render("[ q ]"))
	sb.WriteString(StyleMeta.Render(" quit"))
	return sb.String()
}

// RunEventList starts the interactive event browser. Blocks until the user
// presses q/ESC. Uses the alt screen so the terminal is restored on exit.
func RunEventList(title string, cols []Column, rows []EventRow) error {
	m := newEventListModel(title, cols, rows)
	p := tea.NewProgram(m, tea.WithInput(os.Stdin), tea.WithOutput(os.Stdout), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// copyToClipboard writes text to the system clipboard.
func copyToClipboard(text string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("pbcopy")
	case "windows":
		cmd = exec.Command("clip")
	default:
		// Try wl-copy (Wayland), fall back to xclip.
		if _, err := exec.LookPath("wl-copy"); err == nil {
			cmd = exec.Command("wl-copy")
		} else {
			cmd = exec.Command("xclip", "-selection", "clipboard")
		}
	}
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("clipboard: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("clipboard: %w", err)
	}
	_, _ = io.WriteString(stdin, text)
	stdin.Close()
	return cmd.Wait()
}
