package today

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	checkindto "github.com/JHR999/behavior-tracker/internal/modules/checkin/dto"
	"github.com/JHR999/behavior-tracker/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type Port interface {
	Pending(ctx context.Context) (checkindto.PendingOutput, error)
	Queue(ctx context.Context) ([]checkindto.ItemOutput, error)
	Today(ctx context.Context) ([]checkindto.ItemOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type LoadedMsg struct {
	Pending checkindto.PendingOutput
	Queue   []checkindto.ItemOutput
	Today   []checkindto.ItemOutput
	Err     error
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model renders the current pending check-in, the rest of the queue and the
// status of every scheduled behavior.
type Model struct {
	port    Port
	spinner spinner.Model
	bar     progress.Model
	data    LoadedMsg
	loading bool
	width   int
	height  int
}

func New(port Port) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	bar := progress.New(progress.WithGradient(string(theme.Peach), string(theme.Green)))
	bar.ShowPercentage = false

	return Model{port: port, spinner: sp, bar: bar, loading: true}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.Refresh(), m.spinner.Tick)
}

func (m Model) Refresh() tea.Cmd {
	return func() tea.Msg {
		if m.port == nil {
			return LoadedMsg{}
		}
		ctx := context.Background()
		pending, err := m.port.Pending(ctx)
		if err != nil {
			return LoadedMsg{Err: err}
		}
		queue, err := m.port.Queue(ctx)
		if err != nil {
			return LoadedMsg{Err: err}
		}
		today, err := m.port.Today(ctx)
		return LoadedMsg{Pending: pending, Queue: queue, Today: today, Err: err}
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = max(min(m.width-8, 60), 10)

	case LoadedMsg:
		m.loading = false
		m.data = msg

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

// Current returns the presented behavior name, if anything is pending.
func (m Model) Current() (string, bool) {
	if !m.data.Pending.Pending {
		return "", false
	}
	return m.data.Pending.Item.Name, true
}

func (m Model) View() string {
	if m.loading {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Loading today…")
	}
	if m.data.Err != nil {
		return theme.Down.Render("Error: " + m.data.Err.Error())
	}

	var sb strings.Builder
	sb.WriteString(m.renderCurrent())
	sb.WriteString("\n\n")
	sb.WriteString(m.renderQueue())
	sb.WriteString("\n\n")
	sb.WriteString(m.renderToday())
	return lipgloss.NewStyle().Width(m.width).Height(m.height).Render(sb.String())
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m Model) renderCurrent() string {
	p := m.data.Pending
	if !p.Pending {
		body := theme.Title.Render("All caught up") + "\n\n" +
			theme.Muted.Render("Nothing is due right now. r: reset today")
		return theme.Pane.Width(max(m.width-4, 20)).Render(body)
	}
	item := p.Item
	var sb strings.Builder
	sb.WriteString(theme.Title.Render(item.Name))
	if item.PromptTime != "" {
		sb.WriteString(theme.Muted.Render("  due " + item.PromptTime))
	}
	sb.WriteString("\n\n")
	sb.WriteString(theme.Hot.Render(fmt.Sprintf("%d%%", item.Probability)) + "\n")
	sb.WriteString(m.bar.ViewAs(float64(item.Probability)/100) + "\n\n")
	sb.WriteString(fmt.Sprintf("y: %s did it   n: %s didn't   ", item.UpEmoji, item.DownEmoji))
	sb.WriteString(theme.Muted.Render(fmt.Sprintf("(%d of %d due)", p.Position+1, p.Total)))
	return theme.PaneActive.Width(max(m.width-4, 20)).Render(sb.String())
}

func (m Model) renderQueue() string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Queue") + "\n")
	if len(m.data.Queue) == 0 {
		sb.WriteString(theme.Muted.Render("  empty"))
		return sb.String()
	}
	for i, item := range m.data.Queue {
		marker := "  "
		if m.data.Pending.Pending && i == m.data.Pending.Position {
			marker = theme.Hot.Render("▸ ")
		}
		sb.WriteString(fmt.Sprintf("%s%-5s %s %s\n", marker, item.PromptTime, item.Name, theme.Muted.Render(fmt.Sprintf("%d%%", item.Probability))))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (m Model) renderToday() string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Today") + "\n")
	if len(m.data.Today) == 0 {
		sb.WriteString(theme.Muted.Render("  no scheduled behaviors"))
		return sb.String()
	}
	for _, item := range m.data.Today {
		status := item.Status
		switch status {
		case "answered":
			status = theme.Up.Render(status)
		case "due":
			status = theme.Hot.Render(status)
		default:
			status = theme.Muted.Render(status)
		}
		prompt := item.PromptTime
		if prompt == "" {
			prompt = "--:--"
		}
		sb.WriteString(fmt.Sprintf("  %-5s %-11s %s\n", prompt, status, item.Name))
	}
	return strings.TrimRight(sb.String(), "\n")
}
