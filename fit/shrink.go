// Package fit shrinks a text frame to the smallest height that still shows all of
// its text, within the printable height of the page.
package fit

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/ByLCY/overset/contract"
	"github.com/ByLCY/overset/geometry"
)

// ErrInvalidOptions is returned for a non-positive probe or step.
var ErrInvalidOptions = errors.New("fit: invalid options")

// Host is the part of the document the shrinker needs.
type Host interface {
	geometry.Source
	TextOverflows(frame string) (bool, error)
	SizeObject(width, height float64, frame string) error
}

// Options configure the linear search. Lengths are in document units.
type Options struct {
	Probe float64 // first height tried
	Step  float64 // growth per iteration
	// MaxSteps bounds the number of resizes; zero means no bound beyond the max height.
	MaxSteps int
	Logger   *zap.Logger
}

// DefaultOptions starts at 1 unit and grows by 2.
func DefaultOptions() Options {
	return Options{Probe: 1, Step: 2}
}

// Status is the terminal state of a shrink.
type Status int

const (
	// StatusFitted: the text fits at Height.
	StatusFitted Status = iota
	// StatusMaxHeightReached: the frame is at MaxHeight and still overflows.
	StatusMaxHeightReached
)

func (s Status) String() string {
	if s == StatusMaxHeightReached {
		return "max-height-reached"
	}
	return "fitted"
}

// Result reports the final frame size.
type Result struct {
	Status    Status
	Width     float64
	Height    float64
	MaxHeight float64
	// Steps counts the growth iterations after the probe.
	Steps int
}

// Shrink resizes frame to the printable width and the smallest tested height at
// which it stops overflowing. Heights only grow during the search, so the result
// is the first of probe, probe+step, ... that fits, capped at the printable height.
func Shrink(h Host, frame string, opts Options) (Result, error) {
	if opts.Probe <= 0 || opts.Step <= 0 || math.IsNaN(opts.Probe) || math.IsNaN(opts.Step) {
		return Result{}, fmt.Errorf("%w: probe=%g step=%g", ErrInvalidOptions, opts.Probe, opts.Step)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	g := geometry.NewProvider(h).Snapshot()
	res := Result{
		Width:     g.PrintableWidth(),
		MaxHeight: g.PrintableHeight(),
	}
	res.Height = math.Min(opts.Probe, res.MaxHeight)
	if err := h.SizeObject(res.Width, res.Height, frame); err != nil {
		return res, fmt.Errorf("resize %s: %w", frame, err)
	}

	for {
		overflows, err := h.TextOverflows(frame)
		if err != nil {
			return res, fmt.Errorf("check overflow of %s: %w", frame, err)
		}
		if !overflows {
			break
		}
		if res.Height >= res.MaxHeight {
			res.Status = StatusMaxHeightReached
			logger.Warn("text still overflows at max height",
				zap.String("frame", frame),
				zap.Float64("max_height", res.MaxHeight),
				zap.Stringer("unit", g.Unit))
			return res, nil
		}
		if opts.MaxSteps > 0 && res.Steps >= opts.MaxSteps {
			return res, fmt.Errorf("%d resizes of %s: %w", res.Steps, frame, contract.ErrIterationBudget)
		}
		res.Height = math.Min(res.Height+opts.Step, res.MaxHeight)
		res.Steps++
		if err := h.SizeObject(res.Width, res.Height, frame); err != nil {
			return res, fmt.Errorf("resize %s: %w", frame, err)
		}
	}

	res.Status = StatusFitted
	logger.Info("frame resized to fit text",
		zap.String("frame", frame),
		zap.Float64("height", res.Height),
		zap.Int("steps", res.Steps))
	return res, nil
}
