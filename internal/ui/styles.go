package ui

import "github.com/charmbracelet/lipgloss"

// Color palette.
var (
	ColorSuccess   = lipgloss.Color("#00D26A") // green: credit, success
	ColorWarning   = lipgloss.Color("#FFB800") // yellow: debit, warning
	ColorError     = lipgloss.Color("#FF4444") // red: error, danger
	ColorInfo      = lipgloss.Color("#4CC9F0") // light blue: notes
	ColorAddress   = lipgloss.Color("#00B4D8") // cyan: accounts, ids
	ColorValue     = lipgloss.Color("#FFFFFF") // white bold: amounts
	ColorMeta      = lipgloss.Color("#555555") // dim gray: sequence numbers, metadata
	ColorBorder    = lipgloss.Color("#1E3A5F") // dark blue: UI chrome
	ColorToken     = lipgloss.Color("#9B5DE5") // purple: token names
	ColorHighlight = lipgloss.Color("#F15BB5") // pink: selected rows
)

// Base styles.
var (
	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning).Bold(true)
	StyleError   = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	StyleInfo    = lipgloss.NewStyle().Foreground(ColorInfo)
	StyleAddress = lipgloss.NewStyle().Foreground(ColorAddress)
	StyleValue   = lipgloss.NewStyle().Foreground(ColorValue).Bold(true)
	StyleMeta    = lipgloss.NewStyle().Foreground(ColorMeta)
	StyleToken   = lipgloss.NewStyle().Foreground(ColorToken).Bold(true)

	StyleBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	StyleHeader = lipgloss.NewStyle().
			Foreground(ColorHighlight).
			Bold(true).
			Underline(true)

	StyleSelected = lipgloss.NewStyle().
			Background(ColorHighlight).
			Foreground(lipgloss.Color("#000000")).
			Bold(true)

	StyleTitle = lipgloss.NewStyle().
			Foreground(ColorToken).
			Bold(true).
			MarginBottom(1)

	StyleDim = lipgloss.NewStyle().Foreground(ColorMeta)
)

// Banner returns the w3ledger ASCII banner.
func Banner() string {
	art := `
  ██╗    ██╗██████╗ ██╗     ███████╗██████╗  ██████╗ ███████╗██████╗
  ██║    ██║╚════██╗██║     ██╔════╝██╔══██╗██╔════╝ ██╔════╝██╔══██╗
  ██║ █╗ ██║ █████╔╝██║     █████╗  ██║  ██║██║  ███╗█████╗  ██████╔╝
  ██║███╗██║ ╚═══██╗██║     ██╔══╝  ██║  ██║██║   ██║██╔══╝  ██╔══██╗
  ╚███╔███╔╝██████╔╝███████╗███████╗██████╔╝╚██████╔╝███████╗██║  ██║
   ╚══╝╚══╝ ╚═════╝ ╚══════╝╚══════╝╚═════╝  ╚═════╝ ╚══════╝╚═╝  ╚═╝`

	tagline := StyleMeta.Render("     A signed, append-only token ledger")
	features := StyleMeta.Render("  ✦ ERC-20 calldata  ✦ EIP-191 envelopes  ✦ BoltDB storage")

	return StyleToken.Render(art) + "\n" + tagline + "\n" + features + "\n"
}

// Success formats a success message.
func Success(msg string) string { return StyleSuccess.Render("✓ " + msg) }

// Warn formats a warning message.
func Warn(msg string) string { return StyleWarning.Render("⚠ " + msg) }

// Err formats an error message.
func Err(msg string) string { return StyleError.Render("✗ " + msg) }

// Info formats an informational note.
func Info(msg string) string { return StyleInfo.Render("ℹ " + msg) }

// Hint formats a suggestion for what to run next.
func Hint(msg string) string { return StyleMeta.Render("💡 " + msg) }

// Addr formats an address.
func Addr(a string) string { return StyleAddress.Render(a) }

// Val formats a value.
func Val(v string) string { return StyleValue.Render(v) }

// Meta formats metadata text.
func Meta(m string) string { return StyleMeta.Render(m) }

// Token formats a token name or ticker.
func Token(t string) string { return StyleToken.Render(t) }

// TruncateAddr shortens an address for display: 0x1234…5678.
func TruncateAddr(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}
