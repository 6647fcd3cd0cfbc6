package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/codegraph/pkg/codegraph"
	cgerrors "github.com/matzehuels/codegraph/pkg/errors"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success, search matches
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - commands
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleHighlight for emphasized values.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)

	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)

	styleHeader  = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	styleCluster = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	styleMatch   = lipgloss.NewStyle().Foreground(colorGreen)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// =============================================================================
// Status Output
// =============================================================================

// stdout receives all status lines; tests swap it for a buffer.
var stdout io.Writer = os.Stdout

var styleKey = lipgloss.NewStyle().Foreground(colorGray).Width(12)

func statusLine(icon string, iconStyle lipgloss.Style, text string) {
	fmt.Fprintln(stdout, iconStyle.Render(icon)+" "+text)
}

func printSuccess(format string, args ...any) {
	statusLine(iconSuccess, styleIconSuccess, fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	statusLine(iconError, styleIconError, fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	statusLine(iconWarning, styleIconWarning, StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	statusLine(iconInfo, styleIconInfo, fmt.Sprintf(format, args...))
}

// printDetail prints an indented, dimmed line under the previous status.
func printDetail(format string, args ...any) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile names a written output file.
func printFile(path string) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Fprintln(stdout, styleKey.Render(key)+" "+StyleValue.Render(value))
}

// printNextStep suggests a follow-up command.
func printNextStep(description, cmd string) {
	fmt.Fprintln(stdout, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

func printNewline() { fmt.Fprintln(stdout) }

// =============================================================================
// Graph Output
// =============================================================================

// graphStats is what printStats reports about a graph.
type graphStats struct {
	nodes, edges, clusters, matches int
	cached                          bool
}

// printStats prints graph statistics on a single line. Zero counts other
// than nodes are left out.
func printStats(s graphStats) {
	parts := []string{fmt.Sprintf("%d nodes", s.nodes)}
	if s.edges > 0 {
		parts = append(parts, fmt.Sprintf("%d edges", s.edges))
	}
	if s.clusters > 0 {
		parts = append(parts, fmt.Sprintf("%d clusters", s.clusters))
	}
	if s.matches > 0 {
		parts = append(parts, fmt.Sprintf("%d matches", s.matches))
	}
	for i, p := range parts {
		parts[i] = StyleDim.Render(p)
	}

	status, statusStyle := iconFresh, styleComputed
	if s.cached {
		status, statusStyle = iconCached, styleCached
	}
	parts = append(parts, statusStyle.Render(status))

	fmt.Fprintln(stdout, "  "+strings.Join(parts, StyleDim.Render(" · ")))
}

// nodeTable renders nodes as a bordered table. The cursor row, if within
// range, is marked; clusters, matches and dimmed nodes are styled like the
// graph renderer colours them.
func nodeTable(nodes []codegraph.Node, cursor int) string {
	rows := make([][]string, 0, len(nodes))
	for i, n := range nodes {
		mark := "  "
		if i == cursor {
			mark = "▸ "
		}
		rows = append(rows, []string{mark, nodeLabel(n), string(n.Kind), n.Language, n.FilePath, fmt.Sprintf("%.0f", n.Size)})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Name", "Kind", "Language", "File", "Size").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			if row < 0 || row >= len(nodes) {
				return lipgloss.NewStyle()
			}
			n := nodes[row]
			style := lipgloss.NewStyle()
			switch {
			case n.IsCluster:
				style = styleCluster
			case n.Highlighted:
				style = styleMatch
			case n.Dimmed:
				style = StyleDim
			}
			if row == cursor {
				style = style.Bold(true)
			}
			return style
		}).
		Render()
}

func nodeLabel(n codegraph.Node) string {
	if n.IsCluster {
		return "◆ " + n.Name
	}
	return n.Name
}

// FormatError renders err for the terminal. Coded errors show their message
// with a hint keyed on the code.
func FormatError(err error) string {
	text := cgerrors.UserMessage(err)
	var ce *cgerrors.Error
	if errors.As(err, &ce) && ce.Cause != nil {
		text += ": " + ce.Cause.Error()
	}
	msg := styleIconError.Render(iconError) + " " + text
	if hint := errorHint(cgerrors.GetCode(err)); hint != "" {
		msg += "\n  " + StyleDim.Render(hint)
	}
	return msg
}

func errorHint(code cgerrors.Code) string {
	switch code {
	case cgerrors.ErrCodeNetwork, cgerrors.ErrCodeTimeout:
		return "is the backend running? set backend.url or CODEGRAPH_BACKEND__URL"
	case cgerrors.ErrCodeUnauthorized:
		return "set backend.token or CODEGRAPH_BACKEND__TOKEN"
	case cgerrors.ErrCodeNotFound:
		return "check the project id with --project"
	case cgerrors.ErrCodeInvalidLayout:
		return "layouts: force, circular, hierarchical, grid"
	}
	return ""
}
