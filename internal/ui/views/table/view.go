package table

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	behaviordto "github.com/JHR999/behavior-tracker/internal/modules/behavior/dto"
	"github.com/JHR999/behavior-tracker/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type Port interface {
	ListBehaviors(ctx context.Context) ([]behaviordto.BehaviorOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type LoadedMsg struct {
	Behaviors []behaviordto.BehaviorOutput
	Err       error
}

// ─── list item ───────────────────────────────────────────────────────────────

type behaviorItem struct {
	behavior behaviordto.BehaviorOutput
}

func (i behaviorItem) Title() string { return i.behavior.Name }
func (i behaviorItem) Description() string {
	kind := "scheduled"
	if i.behavior.Situational {
		kind = "situational"
	}
	if i.behavior.PromptTime != "" {
		kind += " @ " + i.behavior.PromptTime
	}
	return fmt.Sprintf("%d%%  %s", i.behavior.Probability, kind)
}
func (i behaviorItem) FilterValue() string { return i.behavior.Name }

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port     Port
	list     list.Model
	detail   viewport.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer
	loading  bool
	err      error
	width    int
	height   int
}

func New(port Port) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Behaviors"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().
		Background(theme.Mantle).
		Foreground(theme.Text).
		Padding(1)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	r, _ := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(0),
	)

	return Model{
		port:     port,
		list:     l,
		detail:   vp,
		spinner:  sp,
		renderer: r,
		loading:  true,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.Refresh(), m.spinner.Tick)
}

// Refresh reloads the behavior list from the port.
func (m Model) Refresh() tea.Cmd {
	return func() tea.Msg {
		if m.port == nil {
			return LoadedMsg{}
		}
		behaviors, err := m.port.ListBehaviors(context.Background())
		return LoadedMsg{Behaviors: behaviors, Err: err}
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.detail.SetContent(m.renderDetail())

	case LoadedMsg:
		m.loading = false
		m.err = msg.Err
		if msg.Err != nil {
			m.list.Title = "Behaviors: " + msg.Err.Error()
			return m, nil
		}
		m.list.Title = "Behaviors"
		items := make([]list.Item, len(msg.Behaviors))
		for i, b := range msg.Behaviors {
			items[i] = behaviorItem{behavior: b}
		}
		cmds = append(cmds, m.list.SetItems(items))
		m.detail.SetContent(m.renderDetail())

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	if !m.loading {
		var lCmd tea.Cmd
		prevIdx := m.list.Index()
		m.list, lCmd = m.list.Update(msg)
		cmds = append(cmds, lCmd)
		if m.list.Index() != prevIdx {
			m.detail.SetContent(m.renderDetail())
		}

		var vCmd tea.Cmd
		m.detail, vCmd = m.detail.Update(msg)
		cmds = append(cmds, vCmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.loading {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Loading table…")
	}

	listW := m.width * 4 / 10
	detailW := m.width - listW

	listPane := lipgloss.NewStyle().
		Width(listW).
		Height(m.height).
		Render(m.list.View())

	detailPane := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Surface1).
		Background(theme.Mantle).
		Width(max(detailW-2, 1)).
		Height(max(m.height-2, 1)).
		Render(m.detail.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

// Selected returns the highlighted behavior, if any.
func (m Model) Selected() (behaviordto.BehaviorOutput, bool) {
	if item, ok := m.list.SelectedItem().(behaviorItem); ok {
		return item.behavior, true
	}
	return behaviordto.BehaviorOutput{}, false
}

// Filtering reports whether the list's search filter is currently active.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m *Model) resize() {
	listW := m.width * 4 / 10
	detailW := m.width - listW
	m.list.SetSize(listW, m.height)
	m.detail.Width = max(detailW-4, 1)
	m.detail.Height = max(m.height-4, 1)
}

func (m Model) renderDetail() string {
	b, ok := m.Selected()
	if !ok {
		return theme.Muted.Render("No behaviors yet. Add one with btrack add.")
	}
	prompt := b.PromptTime
	if prompt == "" {
		prompt = "none"
	}
	md := fmt.Sprintf("# %s\n\n| field | value |\n|---|---|\n| probability | %d%% |\n| category | %s |\n| prompt time | %s |\n| markers | %s / %s |\n| row | %d |\n",
		b.Name, b.Probability, b.Category, prompt, b.UpEmoji, b.DownEmoji, b.Position+1)
	if m.renderer == nil {
		return md
	}
	out, err := m.renderer.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}
