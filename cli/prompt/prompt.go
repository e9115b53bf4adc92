// Package prompt asks for template values on the terminal.
package prompt

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"

	"github.com/subframe7536/yaak/function"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

const (
	charLimit    = 4096
	defaultWidth = 60
)

// Terminal is a [function.Prompter] that reads a line with a Bubble Tea
// text input. Only one prompt is shown at a time; concurrent callers wait
// their turn.
type Terminal struct {
	In  io.Reader
	Out io.Writer

	mu sync.Mutex
}

// New returns a Terminal reading from stdin and drawing on stderr, so that
// rendered output on stdout is not interleaved with the prompt.
func New() *Terminal {
	return &Terminal{In: os.Stdin, Out: os.Stderr}
}

// Prompt implements [function.Prompter].
func (t *Terminal) Prompt(ctx context.Context, req function.PromptRequest) (string, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p := tea.NewProgram(newModel(req),
		tea.WithContext(ctx),
		tea.WithInput(t.In),
		tea.WithOutput(t.Out),
	)

	final, err := p.Run()
	if err != nil {
		return "", false, err
	}

	m, _ := final.(model)
	if !m.done {
		return "", false, nil
	}

	return m.input.Value(), true, nil
}

type model struct {
	title string
	label string
	input textinput.Model
	done  bool
	quit  bool
}

func newModel(req function.PromptRequest) model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = req.Placeholder
	ti.SetValue(req.DefaultValue)
	ti.CharLimit = charLimit
	ti.Width = defaultWidth
	ti.Focus()

	if req.Password {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	}

	label := req.Label
	if label == "" {
		label = "Enter a value"
	}

	return model{title: req.Title, label: label, input: ti}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEnter:
			m.done = true
			m.quit = true

			return m, tea.Quit

		case tea.KeyEsc, tea.KeyCtrlC, tea.KeyCtrlD:
			m.quit = true

			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.input.Width = max(msg.Width-len(m.input.Prompt)-2, 1)

		return m, nil
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quit {
		return ""
	}

	var b strings.Builder

	if m.title != "" {
		b.WriteString(titleStyle.Render(m.title))
		b.WriteString("\n")
	}

	b.WriteString(labelStyle.Render(m.label))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(hintStyle.Render("enter to accept, esc to cancel"))
	b.WriteString("\n")

	return b.String()
}
