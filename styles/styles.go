// Package styles applies character or paragraph styles to text frames with an
// ordered fallback: language-specific style, key style, then the frame's current style.
package styles

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ByLCY/overset/contract"
)

// Kind is the closed set of style kinds.
type Kind int

const (
	KindParagraph Kind = iota
	KindCharacter
)

type capability struct {
	name         string
	defaultStyle string
	available    func(h contract.StyleHost) []string
	current      func(h contract.StyleHost, frame string) (string, error)
	set          func(h contract.StyleHost, style, frame string) error
}

var capabilities = map[Kind]capability{
	KindParagraph: {
		name:         "paragraph",
		defaultStyle: "Default Paragraph Style",
		available:    contract.StyleHost.ParagraphStyles,
		current:      contract.StyleHost.ParagraphStyle,
		set:          contract.StyleHost.SetParagraphStyle,
	},
	KindCharacter: {
		name:         "character",
		defaultStyle: "Default Character Style",
		available:    contract.StyleHost.CharacterStyles,
		current:      contract.StyleHost.CharacterStyle,
		set:          contract.StyleHost.SetCharacterStyle,
	},
}

// characterKeys are metadata keys whose frames hold inline text, not paragraphs.
var characterKeys = map[string]bool{"date": true, "series": true}

func (k Kind) String() string {
	if c, ok := capabilities[k]; ok {
		return c.name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// DefaultStyle is the style name a frame without an explicit style reports.
func (k Kind) DefaultStyle() string { return capabilities[k].defaultStyle }

// ParseKind accepts "paragraph" or "character" (and "char").
func ParseKind(s string) (Kind, error) {
	switch s {
	case "paragraph", "para", "p":
		return KindParagraph, nil
	case "character", "char", "c":
		return KindCharacter, nil
	}
	return KindParagraph, fmt.Errorf("unknown style kind %q", s)
}

// KindForKey picks the style kind for a frame filled from a metadata key.
func KindForKey(key string) Kind {
	if characterKeys[key] {
		return KindCharacter
	}
	return KindParagraph
}

// Candidates returns the preferred style names for key: "<lang>--<key>" first when
// lang is set, then key itself.
func Candidates(lang, key string) []string {
	var out []string
	if lang != "" {
		out = append(out, lang+"--"+key)
	}
	return append(out, key)
}

// Result reports which style ended up on the frame.
type Result struct {
	Applied string
	Tried   []string
}

// Apply sets the first candidate that exists on the host. The frame's current style
// is always tried last, so a frame keeps its formatting when no candidate matches.
// A host rejection other than contract.ErrNotFound stops the search.
func Apply(h contract.StyleHost, kind Kind, frame string, candidates []string, logger *zap.Logger) (Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	c, ok := capabilities[kind]
	if !ok {
		return Result{}, fmt.Errorf("unknown style kind %d", int(kind))
	}

	current, err := c.current(h, frame)
	if err != nil {
		return Result{}, fmt.Errorf("read %s style of %s: %w", c.name, frame, err)
	}
	if current == "" {
		current = c.defaultStyle
	}

	available := map[string]bool{}
	for _, s := range c.available(h) {
		available[s] = true
	}
	var ordered []string
	for _, s := range candidates {
		if available[s] {
			ordered = append(ordered, s)
		}
	}
	ordered = append(ordered, current)

	var res Result
	var lastErr error
	for _, style := range ordered {
		res.Tried = append(res.Tried, style)
		logger.Debug("applying style",
			zap.String("frame", frame),
			zap.Stringer("kind", kind),
			zap.String("style", style))
		err := c.set(h, style, frame)
		if err == nil {
			res.Applied = style
			return res, nil
		}
		if !errors.Is(err, contract.ErrNotFound) {
			return res, fmt.Errorf("set %s style %q on %s: %w", c.name, style, frame, err)
		}
		lastErr = err
	}
	return res, fmt.Errorf("no %s style could be applied to %s: %w", c.name, frame, lastErr)
}
