// Package tui is an interactive task console that drives the same tool calls
// an MCP client would send.
package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/n0roo/todo-mcp/internal/mcp"
	"github.com/n0roo/todo-mcp/internal/task"
)

// Backend executes tool calls and resource reads
type Backend interface {
	CallTool(ctx context.Context, name string, arguments json.RawMessage) (*sdk.CallToolResult, error)
	ReadResource(ctx context.Context, uri string) (*sdk.ReadResourceResult, error)
}

var tabs = []task.Filter{task.FilterAll, task.FilterPending, task.FilterCompleted}

func tabLabel(f task.Filter) string {
	switch f {
	case task.FilterPending:
		return "Pending"
	case task.FilterCompleted:
		return "Completed"
	default:
		return "All"
	}
}

// Model is the console model
type Model struct {
	backend Backend

	// State
	tab         int
	cursor      int
	width       int
	height      int
	ready       bool
	adding      bool
	busy        bool
	status      string
	err         error
	lastRefresh time.Time

	// Data
	tasks []task.Task

	// Components
	input   textinput.Model
	spinner spinner.Model
}

// tasksMsg carries a fresh copy of every task
type tasksMsg struct {
	tasks []task.Task
	err   error
}

// actionMsg carries the text of a finished tool call and the tasks after it
type actionMsg struct {
	text  string
	tasks []task.Task
	err   error
}

// NewModel creates a console over backend
func NewModel(backend Backend) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(primaryColor)

	in := textinput.New()
	in.Placeholder = "Task title"
	in.CharLimit = 200

	return Model{
		backend: backend,
		spinner: s,
		input:   in,
	}
}

// Init loads the task list
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.load)
}

func (m Model) load() tea.Msg {
	tasks, err := readTasks(m.backend)
	return tasksMsg{tasks: tasks, err: err}
}

func readTasks(b Backend) ([]task.Task, error) {
	res, err := b.ReadResource(context.Background(), mcp.ResourceAllURI)
	if err != nil {
		return nil, err
	}
	if len(res.Contents) == 0 {
		return nil, fmt.Errorf("empty resource %s", mcp.ResourceAllURI)
	}
	var tasks []task.Task
	if err := json.Unmarshal([]byte(res.Contents[0].Text), &tasks); err != nil {
		return nil, fmt.Errorf("decode %s: %w", mcp.ResourceAllURI, err)
	}
	return tasks, nil
}

// callTool runs a tool and reloads the tasks afterwards
func (m Model) callTool(name string, args map[string]string) tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		raw, err := json.Marshal(args)
		if err != nil {
			return actionMsg{err: err}
		}
		res, err := backend.CallTool(context.Background(), name, raw)
		if err != nil {
			return actionMsg{err: err}
		}
		var text []string
		for _, c := range res.Content {
			if tc, ok := c.(*sdk.TextContent); ok {
				text = append(text, tc.Text)
			}
		}
		tasks, err := readTasks(backend)
		return actionMsg{text: strings.Join(text, "\n"), tasks: tasks, err: err}
	}
}

// visible returns the tasks shown on the current tab
func (m Model) visible() []task.Task {
	filter := tabs[m.tab]
	out := make([]task.Task, 0, len(m.tasks))
	for _, t := range m.tasks {
		if filter.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

func (m Model) selected() (task.Task, bool) {
	items := m.visible()
	if m.cursor < 0 || m.cursor >= len(items) {
		return task.Task{}, false
	}
	return items[m.cursor], true
}

func (m *Model) clampCursor() {
	n := len(m.visible())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) startBusy(cmd tea.Cmd) (Model, tea.Cmd) {
	m.busy = true
	return m, tea.Batch(m.spinner.Tick, cmd)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.adding {
			return m.updateInput(msg)
		}
		return m.updateList(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

	case tasksMsg:
		m.busy = false
		m.err = msg.err
		if msg.err == nil {
			m.tasks = msg.tasks
			m.lastRefresh = time.Now()
		}
		m.clampCursor()

	case actionMsg:
		m.busy = false
		m.err = msg.err
		if msg.err == nil {
			m.status = msg.text
			m.tasks = msg.tasks
			m.lastRefresh = time.Now()
		}
		m.clampCursor()

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "1", "2", "3":
		m.tab = int(msg.String()[0] - '1')
		m.cursor = 0
	case "tab":
		m.tab = (m.tab + 1) % len(tabs)
		m.cursor = 0
	case "shift+tab":
		m.tab = (m.tab + len(tabs) - 1) % len(tabs)
		m.cursor = 0
	case "j", "down":
		m.cursor++
		m.clampCursor()
	case "k", "up":
		m.cursor--
		m.clampCursor()
	case "r":
		return m.startBusy(m.load)
	case "a":
		m.adding = true
		m.input.SetValue("")
		return m, m.input.Focus()
	case "c", "enter":
		if t, ok := m.selected(); ok {
			return m.startBusy(m.callTool(mcp.ToolCompleteTodo, map[string]string{"id": t.ID}))
		}
	case "d":
		if t, ok := m.selected(); ok {
			return m.startBusy(m.callTool(mcp.ToolDeleteTodo, map[string]string{"id": t.ID}))
		}
	}
	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.adding = false
		m.input.Blur()
		return m, nil
	case "enter":
		title := strings.TrimSpace(m.input.Value())
		m.adding = false
		m.input.Blur()
		if title == "" {
			return m, nil
		}
		return m.startBusy(m.callTool(mcp.ToolAddTodo, map[string]string{"title": title}))
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the UI
func (m Model) View() string {
	if !m.ready {
		return "\n  Loading..."
	}

	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")
	b.WriteString(m.renderList())
	b.WriteString("\n")

	if m.adding {
		b.WriteString(inputBoxStyle.Render(m.input.View()))
		b.WriteString("\n")
	}
	b.WriteString(m.renderStatus())
	b.WriteString(m.renderFooter())

	return b.String()
}

func (m Model) renderHeader() string {
	title := "📝 Todo Console"
	done := 0
	for _, t := range m.tasks {
		if t.Completed {
			done++
		}
	}
	info := fmt.Sprintf("%d/%d done", done, len(m.tasks))
	if !m.lastRefresh.IsZero() {
		info += fmt.Sprintf("  Last refresh: %s", m.lastRefresh.Format("15:04:05"))
	}

	headerWidth := m.width
	if headerWidth < 60 {
		headerWidth = 60
	}

	left := lipgloss.NewStyle().Bold(true).Render(title)
	right := lipgloss.NewStyle().Foreground(mutedColor).Render(info)

	gap := headerWidth - lipgloss.Width(left) - lipgloss.Width(right) - 4
	if gap < 0 {
		gap = 0
	}

	return lipgloss.NewStyle().
		Background(lipgloss.Color("#2D3748")).
		Foreground(lipgloss.Color("#FFFFFF")).
		Padding(0, 1).
		Width(headerWidth).
		Render(left + strings.Repeat(" ", gap) + right)
}

func (m Model) renderTabs() string {
	var out []string
	for i, f := range tabs {
		style := tabStyle
		if i == m.tab {
			style = activeTabStyle
		}
		out = append(out, style.Render(fmt.Sprintf("[%d]%s", i+1, tabLabel(f))))
	}
	return strings.Join(out, " ")
}

func (m Model) renderList() string {
	items := m.visible()
	if len(items) == 0 {
		return statusMutedStyle.Render("  No tasks") + "\n"
	}

	var b strings.Builder
	for i, t := range items {
		line := fmt.Sprintf("%s [%s] %s", StatusIcon(t.Completed), t.ID, t.Title)
		if i == m.cursor {
			b.WriteString(selectedItemStyle.Render("▸ " + line))
		} else {
			b.WriteString(normalItemStyle.Render(line))
		}
		b.WriteString("\n")
		if t.Description != "" {
			b.WriteString(descriptionStyle.Render(t.Description))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m Model) renderStatus() string {
	switch {
	case m.busy:
		return m.spinner.View() + " Working...\n"
	case m.err != nil:
		return statusErrorStyle.Render("  "+m.err.Error()) + "\n"
	case m.status != "":
		return titleStyle.Render("  "+m.status) + "\n"
	}
	return ""
}

func (m Model) renderFooter() string {
	help := "  [1-3/Tab] Filter  [j/k] Move  [a] Add  [c] Complete  [d] Delete  [r] Refresh  [q] Quit"
	if m.adding {
		help = "  [Enter] Save  [Esc] Cancel"
	}
	return helpStyle.Render(help)
}

// Run starts the console
func Run(backend Backend) error {
	p := tea.NewProgram(
		NewModel(backend),
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
