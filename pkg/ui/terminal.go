package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Logo is printed at the top of interactive commands
const Logo = `
  ┌─┐┬─┐┌─┐┌┬┐┌─┐┌─┐┌┬┐
  ├┤ ├┬┘├┤  ││││  ├─┤ │ 
  └  ┴└─└─┘─┴┘└─┘┴ ┴ ┴ 
  FRED category crawler
`

// Output is where every helper in this package writes
var Output io.Writer = os.Stdout

// ProgressOutput receives the redrawn progress line, away from the log
// lines on stdout.
var ProgressOutput io.Writer = os.Stderr

var (
	cyanStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00D7FF"))
	yellowStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700"))
	redStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F")).Bold(true)
	greenStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FFF87"))
	magentaStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#D75FFF"))
	dimStyle     = lipgloss.NewStyle().Faint(true)
	logoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00D7FF")).Bold(true)
)

// Color helpers
var (
	Cyan    = cyanStyle.Render
	Yellow  = yellowStyle.Render
	Red     = redStyle.Render
	Green   = greenStyle.Render
	Magenta = magentaStyle.Render
	Dim     = dimStyle.Render
)

// PrintLogo prints the banner
func PrintLogo() {
	fmt.Fprint(Output, logoStyle.Render(Logo)+"\n")
}

// PrintError prints an error message in red, with an optional cause
func PrintError(msg string, args ...interface{}) {
	if len(args) > 0 {
		msg = fmt.Sprintf("%s: %v", msg, args[0])
	}
	fmt.Fprintln(Output, Red("✗ "+msg))
}

// PrintSuccess prints a success message in green
func PrintSuccess(msg string) {
	fmt.Fprintln(Output, Green("✓ "+msg))
}

// PrintInfo prints a label/value pair
func PrintInfo(label string, value string) {
	fmt.Fprintf(Output, "%s: %s\n", Cyan(label), Yellow(value))
}

// PrintWarning prints a warning message in yellow
func PrintWarning(msg string, args ...interface{}) {
	if len(args) > 0 {
		msg = fmt.Sprintf("%s: %v", msg, args[0])
	}
	fmt.Fprintln(Output, Yellow("⚠ "+msg))
}

// PrintHighlight prints a highlighted message in magenta
func PrintHighlight(msg string) {
	fmt.Fprintln(Output, Magenta(msg))
}
