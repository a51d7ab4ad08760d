package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/example/coursewizard/internal/driver"
)

// ANSI color codes
const (
	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorGreen = "\033[32m"
	colorBlue  = "\033[34m"
	colorGray  = "\033[90m"
	colorBold  = "\033[1m"
)

// Out is where all helpers print.
var Out io.Writer = os.Stdout

// PrintHeader prints a section header
func PrintHeader(title string) {
	line := strings.Repeat("=", len(title)+4)
	fmt.Fprintf(Out, "\n%s%s%s\n", colorBold+colorBlue, line, colorReset)
	fmt.Fprintf(Out, "%s  %s  %s\n", colorBold+colorBlue, title, colorReset)
	fmt.Fprintf(Out, "%s%s%s\n\n", colorBold+colorBlue, line, colorReset)
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Fprintf(Out, "%s✓%s %s\n", colorGreen, colorReset, message)
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Fprintf(Out, "%s✗%s %s\n", colorRed, colorReset, message)
}

// PrintInfo prints an informational message
func PrintInfo(message string) {
	fmt.Fprintf(Out, "  %s\n", message)
}

// PrintMuted prints a de-emphasised line
func PrintMuted(message string) {
	fmt.Fprintf(Out, "  %s%s%s\n", colorGray, message, colorReset)
}

// PrintTable prints a simple table
func PrintTable(headers []string, rows [][]string) {
	if len(rows) == 0 {
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	for i, h := range headers {
		fmt.Fprintf(Out, "%s%-*s%s  ", colorBold, widths[i], h, colorReset)
	}
	fmt.Fprintln(Out)
	for _, w := range widths {
		fmt.Fprint(Out, strings.Repeat("-", w)+"  ")
	}
	fmt.Fprintln(Out)
	for _, row := range rows {
		for i, cell := range row {
			fmt.Fprintf(Out, "%-*s  ", widths[i], cell)
		}
		fmt.Fprintln(Out)
	}
}

// Notifier shows wizard notifications with the helpers above.
type Notifier struct{}

func (Notifier) Notify(level driver.Level, message string) {
	if message == "" {
		return
	}
	if level == driver.LevelError {
		PrintError(message)
		return
	}
	PrintSuccess(message)
}
