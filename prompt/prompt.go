// Package prompt answers the questions the layout core asks the user, such as
// which master page a new page should use.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ByLCY/overset/contract"
)

// Mode selects how prompts are answered.
type Mode string

const (
	ModeTUI      Mode = "tui"
	ModeLine     Mode = "line"
	ModeDefaults Mode = "defaults"
)

// ParseMode validates a mode name from config or flags.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeTUI, ModeLine, ModeDefaults:
		return m, nil
	case "":
		return ModeTUI, nil
	default:
		return "", fmt.Errorf("unknown prompt mode %q (want tui, line or defaults)", s)
	}
}

// New returns the prompter for mode reading from in and writing to out.
func New(mode Mode, in io.Reader, out io.Writer) contract.Prompter {
	switch mode {
	case ModeLine:
		return &Line{In: in, Out: out}
	case ModeDefaults:
		return Defaults{}
	default:
		return &TUI{In: in, Out: out}
	}
}

// Defaults dismisses every prompt so the caller falls back to its default.
type Defaults struct{}

func (Defaults) Prompt(_, _, _ string) (string, error) { return "", nil }

// Line asks on a plain terminal line. End of input counts as a dismissed prompt.
type Line struct {
	In  io.Reader
	Out io.Writer

	reader *bufio.Reader
}

func (l *Line) Prompt(title, message, _ string) (string, error) {
	if l.reader == nil {
		l.reader = bufio.NewReader(l.In)
	}
	if _, err := fmt.Fprintf(l.Out, "%s\n%s ", title, message); err != nil {
		return "", err
	}
	answer, err := l.reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read answer: %w", err)
	}
	return strings.TrimSpace(answer), nil
}
