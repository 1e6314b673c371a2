package prompt

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// TUI asks with a small bubbletea dialog. Esc or ctrl+c dismisses it.
type TUI struct {
	In  io.Reader
	Out io.Writer
}

func (t *TUI) Prompt(title, message, def string) (string, error) {
	var opts []tea.ProgramOption
	if t.In != nil {
		opts = append(opts, tea.WithInput(t.In))
	}
	if t.Out != nil {
		opts = append(opts, tea.WithOutput(t.Out))
	}
	final, err := tea.NewProgram(newDialog(title, message, def), opts...).Run()
	if err != nil {
		return "", fmt.Errorf("prompt %q: %w", title, err)
	}
	d, ok := final.(dialog)
	if !ok || d.dismissed {
		return "", nil
	}
	return d.answer, nil
}

// dialog is the bubbletea model behind TUI.
type dialog struct {
	title     string
	message   string
	input     textinput.Model
	answer    string
	done      bool
	dismissed bool
}

func newDialog(title, message, def string) dialog {
	in := textinput.New()
	in.CharLimit = 120
	in.Width = 40
	in.SetValue(def)
	in.Focus()
	return dialog{title: title, message: message, input: in}
}

func (d dialog) Init() tea.Cmd {
	return textinput.Blink
}

func (d dialog) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "enter":
			d.answer = d.input.Value()
			d.done = true
			return d, tea.Quit
		case "esc", "ctrl+c":
			d.dismissed = true
			d.done = true
			return d, tea.Quit
		}
	}
	var cmd tea.Cmd
	d.input, cmd = d.input.Update(msg)
	return d, cmd
}

func (d dialog) View() string {
	if d.done {
		return ""
	}
	body := titleStyle.Render(d.title) + "\n" + d.message + "\n\n" + d.input.View() + "\n" +
		hintStyle.Render("enter: confirm • esc: use default")
	return boxStyle.Render(body) + "\n"
}
