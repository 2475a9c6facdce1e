package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jamesainslie/bulkfs/pkg/bulkfs/engine"
)

// chromeHeight is the number of lines around the viewport: box border,
// title, counts, dividers, buttons and help.
const chromeHeight = 12

// Focus targets of the confirmation buttons.
const (
	focusCancel = iota
	focusApply
)

// Options configures the confirmation screen.
type Options struct {
	// Preview is the dry-run summary to confirm.
	Preview *engine.Summary
	// Action labels the apply button, e.g. "Rename" or "Move to trash".
	Action string
}

// Model shows a dry-run preview in a scrollable viewport and asks whether
// to apply it.
type Model struct {
	opts     Options
	viewport viewport.Model
	focused  int

	done      bool
	confirmed bool

	width  int
	height int
}

// NewModel creates a confirmation model for opts.
func NewModel(opts Options) Model {
	if opts.Action == "" {
		opts.Action = "Apply"
	}
	m := Model{
		opts:    opts,
		focused: focusCancel,
		width:   80,
		height:  24,
	}
	m.viewport = viewport.New(m.width-4, max(m.height-chromeHeight, 3))
	m.viewport.SetContent(previewLines(opts.Preview))
	return m
}

// Confirmed reports whether the user chose to apply the operation.
func (m Model) Confirmed() bool {
	return m.confirmed
}

// Done reports whether the user has decided.
func (m Model) Done() bool {
	return m.done
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = max(msg.Width-4, 10)
		m.viewport.Height = max(msg.Height-chromeHeight, 3)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "esc", "n":
		return m.finish(false)
	case "y":
		return m.finish(true)
	case "left", "h":
		m.focused = focusCancel
	case "right", "l":
		m.focused = focusApply
	case "tab", "shift+tab":
		m.focused = (m.focused + 1) % 2
	case "enter":
		return m.finish(m.focused == focusApply)
	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) finish(confirmed bool) (tea.Model, tea.Cmd) {
	m.done = true
	m.confirmed = confirmed
	return m, tea.Quit
}

// View implements tea.Model.
func (m Model) View() string {
	if m.done {
		return ""
	}

	s := m.opts.Preview
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("%s preview", titleCase(s.Operation))))
	b.WriteString("  ")
	b.WriteString(pathStyle.Render(s.Root))
	b.WriteString("\n")
	b.WriteString(mutedTextStyle.Render(countsText(s)))
	b.WriteString("\n")

	divider := dividerStyle.Render(strings.Repeat("─", max(m.viewport.Width, 10)))
	b.WriteString(divider)
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(divider)
	b.WriteString("\n")

	cancel := buttonStyle.Render("Cancel")
	apply := buttonStyle.Render(m.opts.Action)
	if m.focused == focusCancel {
		cancel = buttonFocusedStyle.Render("Cancel")
	} else if s.Operation == engine.OpDelete {
		apply = dangerButtonFocusedStyle.Render(m.opts.Action)
	} else {
		apply = buttonFocusedStyle.Render(m.opts.Action)
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Center, cancel, "  ", apply))
	b.WriteString("\n")
	b.WriteString(mutedTextStyle.Render("↑/↓ scroll • tab switch • y apply • n cancel"))

	return outerBoxStyle.Width(max(m.width-2, 20)).Render(b.String())
}

// previewLines renders one line per detail row.
func previewLines(s *engine.Summary) string {
	if len(s.Details) == 0 {
		return mutedTextStyle.Render("Nothing to do.")
	}

	lines := make([]string, 0, len(s.Details))
	for _, d := range s.Details {
		status := statusStyle(d.Status).Render(fmt.Sprintf("%-8s", d.Status))
		line := status + " " + d.Path
		if d.Target != "" {
			line += mutedTextStyle.Render(" → ") + d.Target
		}
		if d.IsDir {
			line += mutedTextStyle.Render(" (dir)")
		}
		if d.Error != "" {
			line += " " + errorTextStyle.Render(d.Error)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func countsText(s *engine.Summary) string {
	parts := make([]string, 0, 3)
	for _, k := range s.CountKeys() {
		parts = append(parts, fmt.Sprintf("%s: %d", k, s.Count(k)))
	}
	return strings.Join(parts, "  ")
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Confirm shows the preview full-screen and returns the user's decision.
func Confirm(opts Options) (bool, error) {
	p := tea.NewProgram(NewModel(opts), tea.WithAltScreen())

	final, err := p.Run()
	if err != nil {
		return false, err
	}
	m, ok := final.(Model)
	if !ok {
		return false, nil
	}
	return m.Confirmed(), nil
}
