package cli

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/codegraph/pkg/codegraph"
	"github.com/matzehuels/codegraph/pkg/codegraph/layout"
	"github.com/matzehuels/codegraph/pkg/controller"
	"github.com/matzehuels/codegraph/pkg/perf"
)

// Explorer styles
var (
	listDimStyle   = lipgloss.NewStyle().Foreground(colorDim)
	listInputStyle = lipgloss.NewStyle().Foreground(colorWhite).Bold(true)
	listErrorStyle = lipgloss.NewStyle().Foreground(colorRed)
)

// =============================================================================
// Messages
// =============================================================================

// eventMsg carries a controller event into the program.
type eventMsg controller.Event

// fpsMsg carries a frame-rate sample into the program.
type fpsMsg perf.Sample

// opDoneMsg reports the outcome of a controller operation run as a command.
type opDoneMsg struct {
	op  string
	err error
}

// clickMsg reports the outcome of a cluster click.
type clickMsg struct {
	id       string
	expanded bool
}

// =============================================================================
// ExplorerModel - Interactive graph browser
// =============================================================================

// ExplorerModel is the bubbletea model for the graph explorer. Controller
// operations that publish events run as commands, never inside Update: the
// subscriber forwards events with Program.Send, which blocks until Update
// is free to receive them.
type ExplorerModel struct {
	ctx     context.Context
	ctrl    *controller.Controller
	monitor *perf.Monitor
	initial controller.Filters

	Nodes  []codegraph.Node
	Cursor int
	Offset int
	Height int

	input  textinput.Model
	status string
	sample perf.Sample
}

// NewExplorerModel creates an explorer over ctrl. When initial names a
// project, the model loads it on start.
func NewExplorerModel(ctx context.Context, ctrl *controller.Controller, monitor *perf.Monitor, initial controller.Filters) ExplorerModel {
	input := textinput.New()
	input.Prompt = "/"
	input.Placeholder = "search nodes"
	input.PromptStyle = listInputStyle
	input.TextStyle = listInputStyle
	input.Cursor.SetMode(cursor.CursorStatic)

	return ExplorerModel{
		input:   input,
		ctx:     ctx,
		ctrl:    ctrl,
		monitor: monitor,
		initial: initial,
		Nodes:   ctrl.Graph().Nodes,
		Height:  15,
	}
}

func (m ExplorerModel) Init() tea.Cmd {
	if m.initial.Project == "" {
		return nil
	}
	f := m.initial
	return m.run("load", func(ctx context.Context) error {
		return m.ctrl.Load(ctx, f)
	})
}

func (m ExplorerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.input.Focused() {
			return m.updateSearch(msg)
		}
		return m.updateBrowse(msg)

	case eventMsg:
		m.setNodes(m.ctrl.Graph().Nodes)
		if msg.Reheat {
			m.status = "expanded cluster"
		}

	case clickMsg:
		if !msg.expanded {
			m.status = "not a cluster: " + msg.id
		}

	case opDoneMsg:
		switch {
		case msg.err == nil:
			m.status = msg.op + " done"
		case errors.Is(msg.err, controller.ErrSuperseded):
			m.status = msg.op + " superseded"
		default:
			m.status = fmt.Sprintf("%s failed: %v", msg.op, msg.err)
		}

	case fpsMsg:
		m.sample = perf.Sample(msg)

	case tea.WindowSizeMsg:
		m.Height = msg.Height - 9
		if m.Height < 5 {
			m.Height = 5
		}
		m.clampOffset()
	}
	return m, nil
}

func (m ExplorerModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
			m.clampOffset()
		}
	case "down", "j":
		if m.Cursor < len(m.Nodes)-1 {
			m.Cursor++
			m.clampOffset()
		}
	case "/":
		m.input.SetValue(m.ctrl.Query())
		m.input.CursorEnd()
		return m, m.input.Focus()
	case "enter":
		if m.Cursor >= len(m.Nodes) {
			return m, nil
		}
		id := m.Nodes[m.Cursor].ID
		ctrl := m.ctrl
		return m, func() tea.Msg {
			return clickMsg{id: id, expanded: ctrl.ClickNode(id)}
		}
	case "l":
		next := nextStrategy(m.ctrl.Strategy())
		return m, m.run("layout "+string(next), func(ctx context.Context) error {
			return m.ctrl.SetLayout(ctx, string(next))
		})
	case "c":
		f := m.ctrl.Filters()
		if f.Project == "" {
			return m, nil
		}
		f.Cluster = !f.Cluster
		return m, m.run("filters", func(ctx context.Context) error {
			return m.ctrl.SetFilters(ctx, f)
		})
	case "r":
		return m, m.run("retry", m.ctrl.Retry)
	case "R":
		return m, m.run("refresh", m.ctrl.Refresh)
	case "f":
		m.monitor.SetEnabled(!m.monitor.Enabled(), time.Now())
		m.sample = perf.Sample{}
	}
	return m, nil
}

func (m ExplorerModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc, tea.KeyEnter:
		m.input.Blur()
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	query := m.input.Value()
	if query == before {
		return m, cmd
	}
	ctrl := m.ctrl
	return m, tea.Batch(cmd, func() tea.Msg {
		ctrl.Search(query)
		return nil
	})
}

// run wraps a controller operation in a command reporting its outcome.
func (m ExplorerModel) run(op string, fn func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return opDoneMsg{op: op, err: fn(ctx)}
	}
}

// setNodes replaces the listed nodes, keeping the cursor on the same node
// when it survived the change.
func (m *ExplorerModel) setNodes(nodes []codegraph.Node) {
	var current string
	if m.Cursor < len(m.Nodes) {
		current = m.Nodes[m.Cursor].ID
	}
	m.Nodes = nodes
	m.Cursor = 0
	if i := slices.IndexFunc(nodes, func(n codegraph.Node) bool { return n.ID == current }); i >= 0 {
		m.Cursor = i
	}
	m.clampOffset()
}

func (m *ExplorerModel) clampOffset() {
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
	if m.Offset < 0 {
		m.Offset = 0
	}
}

func (m ExplorerModel) View() string {
	m.monitor.Tick()

	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.title()))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(m.summary()))
	b.WriteString("\n")
	if m.input.Focused() {
		b.WriteString(m.input.View())
	} else {
		b.WriteString(listDimStyle.Render("↑/↓ move  ⏎ expand  / search  l layout  c cluster  r retry  f fps  q quit"))
	}
	b.WriteString("\n\n")

	switch state := m.ctrl.State(); {
	case state == controller.Error:
		b.WriteString(listErrorStyle.Render(fmt.Sprintf("%s %v", iconError, m.ctrl.Err())))
		b.WriteString("\n")
		b.WriteString(listDimStyle.Render("press r to retry"))
	case state.Busy() && len(m.Nodes) == 0:
		b.WriteString(listDimStyle.Render("loading..."))
	case len(m.Nodes) == 0:
		b.WriteString(listDimStyle.Render("no nodes"))
	default:
		end := min(m.Offset+m.Height, len(m.Nodes))
		b.WriteString(nodeTable(m.Nodes[m.Offset:end], m.Cursor-m.Offset))
		b.WriteString("\n")
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Nodes))))
	}

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(listDimStyle.Render("  " + m.status))
	}
	return b.String()
}

func (m ExplorerModel) title() string {
	project := m.ctrl.Filters().Project
	if project == "" {
		project = "codegraph"
	}
	return project
}

func (m ExplorerModel) summary() string {
	g := m.ctrl.Graph()
	parts := []string{
		m.ctrl.State().String(),
		fmt.Sprintf("%d nodes", g.NodeCount()),
		fmt.Sprintf("%d edges", g.EdgeCount()),
		"layout " + string(m.ctrl.Strategy()),
	}
	if q := m.ctrl.Query(); q != "" {
		parts = append(parts, fmt.Sprintf("search %q", q))
	}
	if m.monitor.Enabled() {
		parts = append(parts, fmt.Sprintf("%.1f fps", m.sample.FPS))
	}
	return strings.Join(parts, " · ")
}

// nextStrategy returns the strategy after s in [layout.Strategies], wrapping
// around.
func nextStrategy(s layout.Strategy) layout.Strategy {
	all := layout.Strategies()
	i := slices.Index(all, s)
	return all[(i+1)%len(all)]
}
