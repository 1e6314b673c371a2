package prompt

import (
	"bytes"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"": ModeTUI, "TUI": ModeTUI, "line": ModeLine, " defaults ": ModeDefaults} {
		got, err := ParseMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseMode("dialog")
	assert.Error(t, err)
}

func TestNewPicksImplementation(t *testing.T) {
	assert.IsType(t, &Line{}, New(ModeLine, nil, nil))
	assert.IsType(t, Defaults{}, New(ModeDefaults, nil, nil))
	assert.IsType(t, &TUI{}, New(ModeTUI, nil, nil))
}

func TestLineReadsAnswers(t *testing.T) {
	var out bytes.Buffer
	l := &Line{In: strings.NewReader("Chapter Left\n\n"), Out: &out}

	got, err := l.Prompt("Master Page Needed", "Enter left master page name:", "Normal Left")
	require.NoError(t, err)
	assert.Equal(t, "Chapter Left", got)
	assert.Contains(t, out.String(), "Master Page Needed\nEnter left master page name: ")

	got, err = l.Prompt("t", "m", "d")
	require.NoError(t, err)
	assert.Equal(t, "", got)

	// end of input dismisses the prompt
	got, err = l.Prompt("t", "m", "d")
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestDefaultsDismisses(t *testing.T) {
	got, err := Defaults{}.Prompt("t", "m", "Normal Right")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDialogEnterSubmitsTypedValue(t *testing.T) {
	var m tea.Model = newDialog("Master Page Needed", "Enter right master page name:", "Normal Right")
	for range "Normal Right" {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	}
	for _, r := range "Body" {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	assert.Contains(t, m.View(), "Master Page Needed")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	d := m.(dialog)
	assert.True(t, d.done)
	assert.False(t, d.dismissed)
	assert.Equal(t, "Body", d.answer)
	assert.Empty(t, d.View())
}

func TestDialogStartsWithEditableDefault(t *testing.T) {
	var m tea.Model = newDialog("Master Page Needed", "Enter left master page name:", "Normal Left")
	assert.Equal(t, "Normal Left", m.(dialog).input.Value())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "Normal Lefs", m.(dialog).answer)
}

func TestDialogEnterKeepsDefault(t *testing.T) {
	var m tea.Model = newDialog("t", "m", "Normal Right")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "Normal Right", m.(dialog).answer)
}

func TestDialogEscDismisses(t *testing.T) {
	var m tea.Model = newDialog("t", "m", "Normal Left")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	d := m.(dialog)
	assert.True(t, d.dismissed)
	assert.Equal(t, "", d.answer)
}
