package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// stdout receives command output. Tests swap it for a buffer.
var stdout io.Writer = os.Stdout

// ===== Palette =====

var (
	colorAccent = lipgloss.Color("36")
	colorOK     = lipgloss.Color("35")
	colorWarn   = lipgloss.Color("220")
	colorFail   = lipgloss.Color("167")
	colorCmd    = lipgloss.Color("75")
	colorValue  = lipgloss.Color("255")
	colorMuted  = lipgloss.Color("245")
	colorFaint  = lipgloss.Color("240")
)

// ===== Styles =====

var (
	styleFaint  = lipgloss.NewStyle().Foreground(colorFaint)
	styleMuted  = lipgloss.NewStyle().Foreground(colorMuted)
	styleValue  = lipgloss.NewStyle().Foreground(colorValue)
	styleOK     = lipgloss.NewStyle().Foreground(colorOK)
	styleWarn   = lipgloss.NewStyle().Foreground(colorWarn)
	styleFail   = lipgloss.NewStyle().Foreground(colorFail)
	styleAccent = lipgloss.NewStyle().Foreground(colorAccent)
	styleCmd    = lipgloss.NewStyle().Foreground(colorCmd)
	styleKey    = lipgloss.NewStyle().Foreground(colorMuted).Width(12)

	// explorer
	styleName = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
)

const separator = " · "

// ===== Status lines =====

func printStatus(icon string, style lipgloss.Style, msg string) {
	fmt.Fprintln(stdout, style.Render(icon)+" "+msg)
}

func printSuccess(format string, args ...any) {
	printStatus("✓", styleOK, fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	printStatus("✗", styleFail, fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	printStatus("!", styleWarn, styleWarn.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	printStatus("›", styleMuted, fmt.Sprintf(format, args...))
}

// printDetail prints an indented, muted line under the previous status.
func printDetail(format string, args ...any) {
	fmt.Fprintln(stdout, "  "+styleFaint.Render(fmt.Sprintf(format, args...)))
}

// printFile lists a written artifact.
func printFile(path string) {
	fmt.Fprintln(stdout, "  "+styleFaint.Render("→")+" "+styleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Fprintln(stdout, styleKey.Render(key)+" "+styleValue.Render(value))
}

// ===== Graph summaries =====

// statsLine summarizes a graph: "3 people · 2 relationships · cached".
func statsLine(people, relationships int, cached bool) string {
	status := styleMuted.Render("fresh")
	if cached {
		status = styleOK.Render("cached")
	}
	parts := []string{
		styleFaint.Render(plural(people, "person", "people")),
		styleFaint.Render(plural(relationships, "relationship", "relationships")),
		status,
	}
	return strings.Join(parts, styleFaint.Render(separator))
}

func printStats(people, relationships int, cached bool) {
	fmt.Fprintln(stdout, "  "+statsLine(people, relationships, cached))
}

// printLayout reports which algorithm placed the nodes, as a warning when
// the requested one failed.
func printLayout(requested, used string, fallback bool) {
	if fallback {
		printWarning("%s layout failed, used %s", requested, used)
		return
	}
	printKeyValue("layout", used)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return fmt.Sprintf("%d %s", n, many)
}

// ===== Hints =====

func printNextStep(description, cmd string) {
	fmt.Fprintln(stdout, styleFaint.Render(description+":")+" "+styleCmd.Render(cmd))
}

func printNewline() {
	fmt.Fprintln(stdout)
}
