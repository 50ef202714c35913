package situational

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	checkindto "github.com/JHR999/behavior-tracker/internal/modules/checkin/dto"
	"github.com/JHR999/behavior-tracker/internal/ui/theme"
)

type Port interface {
	Situational(ctx context.Context) ([]checkindto.ItemOutput, error)
}

type LoadedMsg struct {
	Items []checkindto.ItemOutput
	Err   error
}

type entry struct {
	item checkindto.ItemOutput
}

func (e entry) Title() string { return e.item.Name }
func (e entry) Description() string {
	return fmt.Sprintf("%d%%  +: %s  -: %s", e.item.Probability, e.item.UpEmoji, e.item.DownEmoji)
}
func (e entry) FilterValue() string { return e.item.Name }

// Model lists situational behaviors. They can be adjusted any number of
// times a day, so the list never filters anything out.
type Model struct {
	port   Port
	list   list.Model
	width  int
	height int
}

func New(port Port) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Peach).BorderForeground(theme.Peach)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Peach)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Situational"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)
	return Model{port: port, list: l}
}

func (m Model) Init() tea.Cmd { return m.Refresh() }

func (m Model) Refresh() tea.Cmd {
	return func() tea.Msg {
		if m.port == nil {
			return LoadedMsg{}
		}
		items, err := m.port.Situational(context.Background())
		return LoadedMsg{Items: items, Err: err}
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(m.width, max(m.height-2, 1))

	case LoadedMsg:
		if msg.Err != nil {
			m.list.Title = "Situational: " + msg.Err.Error()
			return m, nil
		}
		m.list.Title = "Situational"
		items := make([]list.Item, len(msg.Items))
		for i, item := range msg.Items {
			items[i] = entry{item: item}
		}
		cmds = append(cmds, m.list.SetItems(items))
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	hint := theme.Muted.Render("+: did it  -: didn't  /: filter")
	return lipgloss.JoinVertical(lipgloss.Left, m.list.View(), hint)
}

func (m Model) Selected() (string, bool) {
	if e, ok := m.list.SelectedItem().(entry); ok {
		return e.item.Name, true
	}
	return "", false
}

func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}
