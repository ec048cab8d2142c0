package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Input is where prompts read answers from.
var Input io.Reader = os.Stdin

// Confirm prompts the user with a yes/no question. Returns true for yes.
func Confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", StyleWarning.Render(prompt))
	return readYes()
}

// ConfirmDanger is like Confirm but styled with the error color (for destructive actions).
func ConfirmDanger(prompt string) bool {
	fmt.Printf("%s [y/N]: ", StyleError.Render("⚠ "+prompt))
	return readYes()
}

func readYes() bool {
	line, _ := bufio.NewReader(Input).ReadString('\n')
	line = strings.TrimSpace(strings.ToLower(line))
	return line == "y" || line == "yes"
}

// PromptInput asks for a line of text and returns it trimmed.
func PromptInput(prompt string) string {
	fmt.Printf("%s: ", StyleInfo.Render(prompt))
	line, _ := bufio.NewReader(Input).ReadString('\n')
	return strings.TrimSpace(line)
}

// DangerBox frames content in a red rounded border. Used for secrets.
func DangerBox(content string) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorError).
		Padding(1, 2).
		Render(content)
}
