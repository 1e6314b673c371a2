// Package pagination extends a document with linked pages and frames until the
// text of a starting frame no longer overflows.
package pagination

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ByLCY/overset/contract"
	"github.com/ByLCY/overset/geometry"
	"github.com/ByLCY/overset/master"
)

// Options represents options for the pagination engine
type Options struct {
	// MaxPages bounds the number of pages one run may add.
	MaxPages int
	// FramePrefix is prepended to the page index to name new frames.
	FramePrefix string
	// Correction adds the unit-specific overflow correction to new frame heights.
	Correction bool
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		MaxPages:    1000,
		FramePrefix: "TextFrame_",
		Correction:  true,
	}
}

// Status is the terminal state of a run.
type Status int

const (
	StatusRunning Status = iota
	StatusDone
)

func (s Status) String() string {
	if s == StatusDone {
		return "done"
	}
	return "running"
}

// Outcome describes what a run did to the document. On error it holds the
// partial result; nothing is rolled back.
type Outcome struct {
	Status Status
	// Pages lists the indexes of created pages in creation order.
	Pages []int
	// Frames lists the names of created frames in creation order.
	Frames []string
	// Chain is the overflow chain from the start frame to the final tail,
	// including frames that were already linked before the run.
	Chain []string
}

// Engine handles the pagination process
type Engine struct {
	doc      contract.Document
	geo      *geometry.Provider
	resolver *master.Resolver
	options  Options
	logger   *zap.Logger
}

// NewEngine creates a new pagination engine
func NewEngine(doc contract.Document, prompter contract.Prompter, options Options, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if options.FramePrefix == "" {
		options.FramePrefix = DefaultOptions().FramePrefix
	}
	return &Engine{
		doc:      doc,
		geo:      geometry.NewProvider(doc),
		resolver: master.NewResolver(doc, prompter, logger),
		options:  options,
		logger:   logger,
	}
}

// run is the state of one ResolveOverflow call.
type run struct {
	masters *master.Run
	page    int
	columns int
	gap     float64
	tail    string
}

// ResolveOverflow adds pages until the chain starting at start stops overflowing.
// Frames already linked after start are kept; new frames are linked after the
// last of them.
func (e *Engine) ResolveOverflow(start string) (Outcome, error) {
	out := Outcome{Chain: []string{start}}

	columns, err := e.doc.Columns(start)
	if err != nil {
		return out, fmt.Errorf("read columns of %s: %w", start, err)
	}
	gap, err := e.doc.ColumnGap(start)
	if err != nil {
		return out, fmt.Errorf("read column gap of %s: %w", start, err)
	}

	r := &run{
		masters: master.NewRun(),
		page:    e.doc.CurrentPage(),
		columns: columns,
		gap:     gap,
		tail:    start,
	}
	if err := e.seekTail(r, &out); err != nil {
		return out, err
	}

	for {
		overflows, err := e.doc.TextOverflows(r.tail)
		if err != nil {
			return out, fmt.Errorf("check overflow of %s: %w", r.tail, err)
		}
		if !overflows {
			break
		}
		if e.options.MaxPages > 0 && len(out.Pages) >= e.options.MaxPages {
			return out, fmt.Errorf("%d pages added after %s: %w", len(out.Pages), start, contract.ErrIterationBudget)
		}
		if err := e.extend(r, &out); err != nil {
			return out, err
		}
	}

	out.Status = StatusDone
	e.logger.Info("text overflow handled",
		zap.String("frame", start),
		zap.Int("pages_added", len(out.Pages)),
		zap.Int("prompts", r.masters.Prompts()))
	return out, nil
}

// seekTail follows existing links from start so extension begins after the last
// linked frame, and never before the page that frame sits on.
func (e *Engine) seekTail(r *run, out *Outcome) error {
	seen := map[string]bool{r.tail: true}
	for {
		next, err := e.doc.NextFrame(r.tail)
		if err != nil {
			return fmt.Errorf("read link of %s: %w", r.tail, err)
		}
		if next == "" || seen[next] {
			break
		}
		seen[next] = true
		r.tail = next
		out.Chain = append(out.Chain, next)
	}
	page, err := e.doc.FramePage(r.tail)
	if err != nil {
		return fmt.Errorf("read page of %s: %w", r.tail, err)
	}
	if page > r.page {
		r.page = page
	}
	return nil
}

// extend creates the next page with its frame and links the current tail to it.
// Each host change is recorded in out as soon as it succeeds.
func (e *Engine) extend(r *run, out *Outcome) error {
	page := r.page + 1
	side := master.SideOf(page, e.doc.FacingPages())
	name, err := e.resolver.Resolve(r.masters, side)
	if err != nil {
		return err
	}
	if err := e.doc.NewPage(page, name); err != nil {
		return fmt.Errorf("create page %d with master %q: %w", page, name, err)
	}
	r.page = page
	out.Pages = append(out.Pages, page)

	frame, err := e.createTextFrame(r, out)
	if err != nil {
		return err
	}
	if err := e.doc.LinkTextFrames(r.tail, frame); err != nil {
		return fmt.Errorf("link %s -> %s: %w", r.tail, frame, err)
	}
	out.Chain = append(out.Chain, frame)
	r.tail = frame
	e.logger.Debug("page added",
		zap.Int("page", page),
		zap.Stringer("side", side),
		zap.String("master", name),
		zap.String("frame", frame))
	return nil
}

func (e *Engine) createTextFrame(r *run, out *Outcome) (string, error) {
	g := e.geo.Snapshot()
	rect := g.PrintableArea()
	if e.options.Correction {
		rect.Height += e.geo.OverflowCorrection(g.Unit)
	}

	name := fmt.Sprintf("%s%d", e.options.FramePrefix, r.page)
	created, err := e.doc.CreateText(r.page, rect, name)
	if err != nil {
		return "", fmt.Errorf("create frame %s on page %d: %w", name, r.page, err)
	}
	out.Frames = append(out.Frames, created)
	if err := e.doc.SetColumns(r.columns, created); err != nil {
		return "", fmt.Errorf("set columns of %s: %w", created, err)
	}
	if err := e.doc.SetColumnGap(r.gap, created); err != nil {
		return "", fmt.Errorf("set column gap of %s: %w", created, err)
	}
	return created, nil
}

// IsBudgetExceeded reports whether err came from the MaxPages guard.
func IsBudgetExceeded(err error) bool {
	return errors.Is(err, contract.ErrIterationBudget)
}
