// Package api exposes the two user-facing operations, resolve overflow and shrink
// frame to fit, with the precondition checks and notifications around them.
package api

import (
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/ByLCY/overset/config"
	"github.com/ByLCY/overset/contract"
	"github.com/ByLCY/overset/fit"
	"github.com/ByLCY/overset/pagination"
	"github.com/ByLCY/overset/styles"
)

var (
	// ErrNoDocument is fatal: there is nothing to operate on.
	ErrNoDocument = errors.New("no document open")
	// ErrNoFrame is a warning: the user has not selected a text frame.
	ErrNoFrame = errors.New("no text frame selected")
	// ErrUnknownFrame: the selected frame does not exist in the document.
	ErrUnknownFrame = errors.New("unknown frame")
)

// Kind classifies an outcome for notification.
type Kind string

const (
	KindSuccess        Kind = "success"
	KindBoundedFailure Kind = "bounded-failure"
)

// Operation names the entry point that produced an outcome.
type Operation string

const (
	OpResolveOverflow Operation = "resolve-overflow"
	OpShrinkToFit     Operation = "shrink-to-fit"
)

// Outcome is what the user is told after an operation.
type Outcome struct {
	Operation  Operation `yaml:"operation"`
	Kind       Kind      `yaml:"kind"`
	Frame      string    `yaml:"frame"`
	PagesAdded []int     `yaml:"pages_added,omitempty"`
	Frames     []string  `yaml:"frames_added,omitempty"`
	Chain      []string  `yaml:"chain,omitempty"`
	Width      float64   `yaml:"width,omitempty"`
	Height     float64   `yaml:"height,omitempty"`
	MaxHeight  float64   `yaml:"max_height,omitempty"`
	Steps      int       `yaml:"steps,omitempty"`
	Unit       string    `yaml:"unit"`
}

// Message is the notification text for the outcome.
func (o Outcome) Message() string {
	switch {
	case o.Operation == OpResolveOverflow:
		return "Text overflow handled. Pages added as needed."
	case o.Kind == KindBoundedFailure:
		return fmt.Sprintf("Text still overflows at max height (%s %s). Consider adjusting layout.",
			strconv.FormatFloat(o.MaxHeight, 'f', -1, 64), o.Unit)
	default:
		return fmt.Sprintf("Text frame %s resized to fit text without overflow.", o.Frame)
	}
}

// Session binds a document to the collaborators an operation needs.
type Session struct {
	Doc      contract.Document
	Prompter contract.Prompter
	Logger   *zap.Logger
	Config   *config.Config
}

func (s *Session) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

func (s *Session) config() *config.Config {
	if s.Config == nil {
		return config.DefaultConfig()
	}
	return s.Config
}

// check runs the precondition checks shared by both operations.
func (s *Session) check(frame string) error {
	if s.Doc == nil {
		return ErrNoDocument
	}
	if frame == "" {
		return ErrNoFrame
	}
	if _, err := s.Doc.Columns(frame); err != nil {
		if errors.Is(err, contract.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrUnknownFrame, frame)
		}
		return err
	}
	return nil
}

// ResolveOverflow adds linked pages after the current page until the text of frame
// is fully shown.
func (s *Session) ResolveOverflow(frame string) (Outcome, error) {
	if err := s.check(frame); err != nil {
		return Outcome{}, err
	}
	cfg := s.config()
	prompter := s.Prompter
	if prompter == nil {
		prompter = contract.PrompterFunc(func(_, _, _ string) (string, error) { return "", nil })
	}

	engine := pagination.NewEngine(s.Doc, prompter, pagination.Options{
		MaxPages:    cfg.Pagination.MaxPages,
		FramePrefix: cfg.Pagination.FramePrefix,
		Correction:  cfg.Pagination.Correction,
	}, s.logger())
	res, err := engine.ResolveOverflow(frame)
	out := Outcome{
		Operation:  OpResolveOverflow,
		Frame:      frame,
		PagesAdded: res.Pages,
		Frames:     res.Frames,
		Chain:      res.Chain,
		Unit:       s.Doc.Unit().String(),
	}
	if err != nil {
		return out, err
	}
	out.Kind = KindSuccess
	return out, nil
}

// ShrinkFrameToFit shrinks frame to the smallest height that shows all its text.
// Reaching the printable height with text still hidden is a bounded failure, not an error.
func (s *Session) ShrinkFrameToFit(frame string) (Outcome, error) {
	if err := s.check(frame); err != nil {
		return Outcome{}, err
	}
	cfg := s.config()
	res, err := fit.Shrink(s.Doc, frame, fit.Options{
		Probe:    cfg.Fit.Probe,
		Step:     cfg.Fit.Step,
		MaxSteps: cfg.Fit.MaxSteps,
		Logger:   s.logger(),
	})
	out := Outcome{
		Operation: OpShrinkToFit,
		Frame:     frame,
		Width:     res.Width,
		Height:    res.Height,
		MaxHeight: res.MaxHeight,
		Steps:     res.Steps,
		Unit:      s.Doc.Unit().String(),
	}
	if err != nil {
		return out, err
	}
	out.Kind = KindSuccess
	if res.Status == fit.StatusMaxHeightReached {
		out.Kind = KindBoundedFailure
	}
	return out, nil
}

// ApplyStyle sets the first available candidate style on frame, falling back to its
// current style. The document must also implement contract.StyleHost.
func (s *Session) ApplyStyle(frame string, kind styles.Kind, candidates []string) (styles.Result, error) {
	if err := s.check(frame); err != nil {
		return styles.Result{}, err
	}
	host, ok := s.Doc.(contract.StyleHost)
	if !ok {
		return styles.Result{}, fmt.Errorf("document does not support styles")
	}
	return styles.Apply(host, kind, frame, candidates, s.logger())
}
