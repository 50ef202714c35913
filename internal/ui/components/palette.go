package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/JHR999/behavior-tracker/internal/ui/theme"
)

// PaletteSubmitMsg carries the confirmed command line.
type PaletteSubmitMsg struct{ Input string }

type PaletteCancelMsg struct{}

var (
	paletteStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Peach).
			Background(theme.Mantle).
			Foreground(theme.Text).
			Padding(0, 1)

	hintStyle   = lipgloss.NewStyle().Foreground(theme.Subtext0)
	activeStyle = lipgloss.NewStyle().Foreground(theme.Peach)
)

// Command is one palette entry. Name is what tab completion inserts.
type Command struct {
	Name  string
	Usage string
}

// Commands must stay in sync with executePalette in app/model.go.
var Commands = []Command{
	{Name: "record", Usage: "record <did|didnt>"},
	{Name: "set", Usage: "set <probability>"},
	{Name: "reset", Usage: "reset"},
	{Name: "reload", Usage: "reload"},
	{Name: "today", Usage: "today"},
	{Name: "situational", Usage: "situational"},
	{Name: "table", Usage: "table"},
}

const maxHints = 5

type Palette struct {
	input   textinput.Model
	visible bool
	width   int
}

func NewPalette() Palette {
	ti := textinput.New()
	ti.Placeholder = "record did, set 60, reset…"
	ti.CharLimit = 128
	return Palette{input: ti}
}

func (p Palette) Visible() bool { return p.visible }

// Value is the text typed so far.
func (p Palette) Value() string { return p.input.Value() }

func (p *Palette) Open() tea.Cmd {
	p.visible = true
	p.input.SetValue("")
	return p.input.Focus()
}

func (p *Palette) SetWidth(w int) { p.width = w }

func (p Palette) Update(msg tea.Msg) (Palette, tea.Cmd) {
	if !p.visible {
		return p, nil
	}
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc":
			p.close()
			return p, func() tea.Msg { return PaletteCancelMsg{} }
		case "enter":
			val := strings.TrimSpace(p.input.Value())
			p.close()
			return p, func() tea.Msg { return PaletteSubmitMsg{Input: val} }
		case "tab":
			if matches := Match(p.input.Value()); len(matches) == 1 {
				p.input.SetValue(matches[0].Name + " ")
				p.input.CursorEnd()
			}
			return p, nil
		}
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

// Match returns the commands whose name starts with the first word typed.
// Once a full command name and a space are typed only that command matches.
func Match(input string) []Command {
	input = strings.ToLower(strings.TrimLeft(input, " "))
	word, _, hasArgs := strings.Cut(input, " ")
	var out []Command
	for _, c := range Commands {
		if hasArgs {
			if c.Name == word {
				out = append(out, c)
			}
			continue
		}
		if strings.HasPrefix(c.Name, word) {
			out = append(out, c)
		}
	}
	return out
}

func (p Palette) View() string {
	if !p.visible {
		return ""
	}
	matches := Match(p.input.Value())
	if len(matches) > maxHints {
		matches = matches[:maxHints]
	}

	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Command Palette") + "\n")
	sb.WriteString(": " + p.input.View() + "\n")
	if len(matches) > 0 {
		sb.WriteString("\n")
		style := hintStyle
		if len(matches) == 1 {
			style = activeStyle
		}
		for _, c := range matches {
			sb.WriteString(style.Render("  "+c.Usage) + "\n")
		}
	}

	w := p.width
	if w < 20 {
		w = 64
	}
	return paletteStyle.Width(w - 2).Render(sb.String())
}

func (p *Palette) close() {
	p.visible = false
	p.input.Blur()
}
