package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	behaviordto "github.com/JHR999/behavior-tracker/internal/modules/behavior/dto"
	checkindto "github.com/JHR999/behavior-tracker/internal/modules/checkin/dto"
	"github.com/JHR999/behavior-tracker/internal/ui/components"
	"github.com/JHR999/behavior-tracker/internal/ui/theme"
	situationalview "github.com/JHR999/behavior-tracker/internal/ui/views/situational"
	tableview "github.com/JHR999/behavior-tracker/internal/ui/views/table"
	todayview "github.com/JHR999/behavior-tracker/internal/ui/views/today"
)

// ─── ports ───────────────────────────────────────────────────────────────────

type behaviorPort interface {
	ListBehaviors(ctx context.Context) ([]behaviordto.BehaviorOutput, error)
	SetProbability(ctx context.Context, input behaviordto.SetProbabilityInput) (behaviordto.ProbabilityChangeOutput, error)
	Reload(ctx context.Context) ([]behaviordto.BehaviorOutput, error)
}

type checkinPort interface {
	Pending(ctx context.Context) (checkindto.PendingOutput, error)
	Queue(ctx context.Context) ([]checkindto.ItemOutput, error)
	Situational(ctx context.Context) ([]checkindto.ItemOutput, error)
	Today(ctx context.Context) ([]checkindto.ItemOutput, error)
	RecordOutcome(ctx context.Context, input checkindto.RecordOutcomeInput) (checkindto.RecordOutcomeOutput, error)
	ResetSession(ctx context.Context) (checkindto.SessionOutput, error)
}

// ─── tab index ───────────────────────────────────────────────────────────────

type tabID int

const (
	tabToday tabID = iota
	tabSituational
	tabTable
	tabCount
)

var tabLabels = [tabCount]string{
	"Today", "Situational", "Table",
}

// ─── async messages ───────────────────────────────────────────────────────────

type recordedMsg struct {
	out checkindto.RecordOutcomeOutput
	err error
}

type resetMsg struct {
	session checkindto.SessionOutput
	err     error
}

type reloadedMsg struct {
	count int
	err   error
}

type probabilitySetMsg struct {
	out behaviordto.ProbabilityChangeOutput
	err error
}

// ─── key bindings ─────────────────────────────────────────────────────────────

type keyMap struct {
	Tab     key.Binding
	Help    key.Binding
	Palette key.Binding
	Quit    key.Binding
	Did     key.Binding
	Didnt   key.Binding
	Reset   key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
		Did:     key.NewBinding(key.WithKeys("y", "+"), key.WithHelp("y/+", "did it")),
		Didnt:   key.NewBinding(key.WithKeys("n", "-"), key.WithHelp("n/-", "didn't")),
		Reset:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset today")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Help, k.Palette, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Did, k.Didnt, k.Reset},
		{k.Tab, k.Help, k.Palette, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It owns tab routing, the help overlay
// and the command palette. Every action goes through the ports and then
// refreshes all tabs, since one answer can change each of them.
type Model struct {
	tablePath string

	behaviors behaviorPort
	checkin   checkinPort

	todayView       todayview.Model
	situationalView situationalview.Model
	tableView       tableview.Model

	activeTab tabID
	keys      keyMap
	help      help.Model
	showHelp  bool
	palette   components.Palette
	status    string
	width     int
	height    int
}

// ─── constructor ─────────────────────────────────────────────────────────────

func NewModel(tablePath string, behaviors behaviorPort, checkin checkinPort) Model {
	return Model{
		tablePath:       tablePath,
		behaviors:       behaviors,
		checkin:         checkin,
		todayView:       todayview.New(checkinPortBridge{p: checkin}),
		situationalView: situationalview.New(checkinPortBridge{p: checkin}),
		tableView:       tableview.New(behaviorPortBridge{p: behaviors}),
		activeTab:       tabToday,
		keys:            defaultKeys(),
		help:            help.New(),
		palette:         components.NewPalette(),
		status:          "ready",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.todayView.Init(),
		m.situationalView.Init(),
		m.tableView.Init(),
	)
}

// ─── update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// The palette intercepts all input while open.
	if m.palette.Visible() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.propagateSize()

	// Loaded messages are routed to their view regardless of the active tab.
	case todayview.LoadedMsg:
		var cmd tea.Cmd
		m.todayView, cmd = m.todayView.Update(msg)
		return m, cmd

	case situationalview.LoadedMsg:
		var cmd tea.Cmd
		m.situationalView, cmd = m.situationalView.Update(msg)
		return m, cmd

	case tableview.LoadedMsg:
		var cmd tea.Cmd
		m.tableView, cmd = m.tableView.Update(msg)
		return m, cmd

	case recordedMsg:
		if msg.err != nil {
			m.status = "record failed: " + msg.err.Error()
			return m, nil
		}
		c := msg.out.Change
		m.status = fmt.Sprintf("%s: %d%% → %d%%", c.Name, c.Before, c.After)
		return m, m.refreshAll()

	case resetMsg:
		if msg.err != nil {
			m.status = "reset failed: " + msg.err.Error()
			return m, nil
		}
		m.status = "today reset (" + msg.session.Day + ")"
		return m, m.refreshAll()

	case reloadedMsg:
		if msg.err != nil {
			m.status = "reload failed: " + msg.err.Error()
			return m, nil
		}
		m.status = fmt.Sprintf("reloaded %d behaviors", msg.count)
		return m, m.refreshAll()

	case probabilitySetMsg:
		if msg.err != nil {
			m.status = "set failed: " + msg.err.Error()
			return m, nil
		}
		m.status = fmt.Sprintf("%s set to %d%%", msg.out.Name, msg.out.After)
		return m, m.refreshAll()

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}

		// Yield to sub-view when its search filter is active.
		if m.subViewFiltering() {
			break
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab":
			m.activeTab = (m.activeTab + tabCount - 1) % tabCount
			return m, nil
		case "?":
			m.showHelp = !m.showHelp
			return m, nil
		case ":":
			return m, m.palette.Open()
		case "y", "+":
			return m.recordSelected("did")
		case "n", "-":
			return m.recordSelected("didnt")
		case "r":
			if m.activeTab == tabToday {
				return m, m.resetCmd()
			}
		}
	}

	// Propagate the message to the active tab's sub-view.
	var tabCmd tea.Cmd
	switch m.activeTab {
	case tabToday:
		m.todayView, tabCmd = m.todayView.Update(msg)
	case tabSituational:
		m.situationalView, tabCmd = m.situationalView.Update(msg)
	case tabTable:
		m.tableView, tabCmd = m.tableView.Update(msg)
	}
	cmds = append(cmds, tabCmd)

	return m, tea.Batch(cmds...)
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	tabBar := m.renderTabBar()
	statusBar := m.renderStatusBar()
	tabBarH := lipgloss.Height(tabBar)
	statusBarH := lipgloss.Height(statusBar)

	contentH := m.height - tabBarH - statusBarH
	if contentH < 1 {
		contentH = 1
	}

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).
			Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH,
			lipgloss.Center, lipgloss.Center, m.palette.View())
	default:
		content = m.activeView()
	}

	return lipgloss.JoinVertical(lipgloss.Left, tabBar, content, statusBar)
}

func (m Model) activeView() string {
	switch m.activeTab {
	case tabToday:
		return m.todayView.View()
	case tabSituational:
		return m.situationalView.View()
	case tabTable:
		return m.tableView.View()
	}
	return ""
}

func (m Model) renderTabBar() string {
	parts := make([]string, tabCount)
	for i := tabID(0); i < tabCount; i++ {
		label := tabLabels[i]
		if i == m.activeTab {
			parts[i] = theme.Hot.Render(" " + label + " ")
		} else {
			parts[i] = theme.Muted.Render(" " + label + " ")
		}
	}
	sep := theme.Muted.Render(" │ ")
	bar := "btrack  " + strings.Join(parts, sep)
	if m.tablePath != "" {
		bar += theme.Muted.Render("   " + filepath.Base(m.tablePath))
	}
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	right := theme.Muted.Render("y/n:answer  ?:help  tab:switch  :::palette  q:quit")
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

// ─── palette execution ────────────────────────────────────────────────────────

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	if strings.TrimSpace(input) == "" {
		return m, nil
	}
	parts := strings.Fields(input)

	switch parts[0] {
	case "record":
		if len(parts) < 2 {
			m.status = "usage: record <did|didnt>"
			return m, nil
		}
		return m.recordSelected(parts[1])

	case "set":
		if len(parts) < 2 {
			m.status = "usage: set <probability>"
			return m, nil
		}
		p, err := strconv.Atoi(parts[1])
		if err != nil {
			m.status = "invalid probability"
			return m, nil
		}
		name, ok := m.selectedName()
		if !ok {
			m.status = "no behavior selected"
			return m, nil
		}
		return m, m.setProbabilityCmd(name, p)

	case "reset":
		return m, m.resetCmd()

	case "reload":
		return m, m.reloadCmd()

	case "today":
		m.activeTab = tabToday
	case "situational":
		m.activeTab = tabSituational
	case "table":
		m.activeTab = tabTable

	default:
		m.status = "unknown command: " + parts[0]
	}
	return m, nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

// selectedName is the pending item on Today and the highlighted row elsewhere.
func (m Model) selectedName() (string, bool) {
	switch m.activeTab {
	case tabToday:
		return m.todayView.Current()
	case tabSituational:
		return m.situationalView.Selected()
	case tabTable:
		if b, ok := m.tableView.Selected(); ok {
			return b.Name, true
		}
	}
	return "", false
}

func (m Model) recordSelected(outcome string) (tea.Model, tea.Cmd) {
	name, ok := m.selectedName()
	if !ok {
		if m.activeTab == tabToday {
			m.status = "nothing pending"
		} else {
			m.status = "no behavior selected"
		}
		return m, nil
	}
	return m, m.recordCmd(name, outcome)
}

// subViewFiltering reports whether the active tab's list filter is open,
// in which case global key bindings must yield to allow free typing.
func (m Model) subViewFiltering() bool {
	switch m.activeTab {
	case tabSituational:
		return m.situationalView.Filtering()
	case tabTable:
		return m.tableView.Filtering()
	}
	return false
}

func (m *Model) propagateSize() {
	sz := tea.WindowSizeMsg{Width: m.width, Height: m.height - 3}
	m.todayView, _ = m.todayView.Update(sz)
	m.situationalView, _ = m.situationalView.Update(sz)
	m.tableView, _ = m.tableView.Update(sz)
}

func (m Model) refreshAll() tea.Cmd {
	return tea.Batch(m.todayView.Refresh(), m.situationalView.Refresh(), m.tableView.Refresh())
}

// ─── async commands ───────────────────────────────────────────────────────────

func (m Model) recordCmd(name, outcome string) tea.Cmd {
	return func() tea.Msg {
		out, err := m.checkin.RecordOutcome(context.Background(), checkindto.RecordOutcomeInput{Name: name, Outcome: outcome})
		return recordedMsg{out: out, err: err}
	}
}

func (m Model) resetCmd() tea.Cmd {
	return func() tea.Msg {
		session, err := m.checkin.ResetSession(context.Background())
		return resetMsg{session: session, err: err}
	}
}

func (m Model) reloadCmd() tea.Cmd {
	return func() tea.Msg {
		behaviors, err := m.behaviors.Reload(context.Background())
		return reloadedMsg{count: len(behaviors), err: err}
	}
}

func (m Model) setProbabilityCmd(name string, probability int) tea.Cmd {
	return func() tea.Msg {
		out, err := m.behaviors.SetProbability(context.Background(), behaviordto.SetProbabilityInput{Name: name, Probability: probability})
		return probabilitySetMsg{out: out, err: err}
	}
}

// ─── port bridges ─────────────────────────────────────────────────────────────
// Each bridge narrows a broad port interface to the minimal interface needed by
// a specific sub-view.

type behaviorPortBridge struct{ p behaviorPort }

func (b behaviorPortBridge) ListBehaviors(ctx context.Context) ([]behaviordto.BehaviorOutput, error) {
	return b.p.ListBehaviors(ctx)
}

type checkinPortBridge struct{ p checkinPort }

func (b checkinPortBridge) Pending(ctx context.Context) (checkindto.PendingOutput, error) {
	return b.p.Pending(ctx)
}
func (b checkinPortBridge) Queue(ctx context.Context) ([]checkindto.ItemOutput, error) {
	return b.p.Queue(ctx)
}
func (b checkinPortBridge) Today(ctx context.Context) ([]checkindto.ItemOutput, error) {
	return b.p.Today(ctx)
}
func (b checkinPortBridge) Situational(ctx context.Context) ([]checkindto.ItemOutput, error) {
	return b.p.Situational(ctx)
}
