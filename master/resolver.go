// Package master decides which master page template governs a newly created page.
package master

import (
	"fmt"
	"slices"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ByLCY/overset/contract"
)

// Side is the facing-page side of a page.
type Side int

const (
	SideNone  Side = iota // document without facing pages
	SideLeft              // even page index
	SideRight             // odd page index
)

func (s Side) String() string {
	switch s {
	case SideLeft:
		return "left"
	case SideRight:
		return "right"
	default:
		return "none"
	}
}

// SideOf classifies a page index.
func SideOf(page int, facing bool) Side {
	if !facing {
		return SideNone
	}
	if page%2 == 0 {
		return SideLeft
	}
	return SideRight
}

// PromptTitle is the title shown on the master page prompt.
const PromptTitle = "Master Page Needed"

// Run holds the decisions of one pagination run. Each side is resolved at most
// once; nothing is invalidated before the run ends.
type Run struct {
	cache   map[Side]string
	prompts int
}

// NewRun starts an empty run.
func NewRun() *Run {
	return &Run{cache: make(map[Side]string, 3)}
}

// Resolved returns the cached name for side.
func (r *Run) Resolved(side Side) (string, bool) {
	name, ok := r.cache[side]
	return name, ok
}

// Prompts is the number of prompts shown during this run.
func (r *Run) Prompts() int { return r.prompts }

// Resolver picks master pages using the document catalog and the user.
type Resolver struct {
	catalog  contract.MasterCatalog
	prompter contract.Prompter
	logger   *zap.Logger
	title    cases.Caser
}

// NewResolver creates a resolver. A nil logger disables logging.
func NewResolver(catalog contract.MasterCatalog, prompter contract.Prompter, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		catalog:  catalog,
		prompter: prompter,
		logger:   logger,
		title:    cases.Title(language.English),
	}
}

// Resolve returns the master page for a page on side. Whatever the user types is
// accepted as-is; the host validates it when the page is created.
func (r *Resolver) Resolve(run *Run, side Side) (string, error) {
	all := r.catalog.MasterPageNames()
	switch len(all) {
	case 0:
		return "", nil
	case 1:
		return all[0], nil
	}

	if name, ok := run.Resolved(side); ok {
		return name, nil
	}

	def, message := r.defaultFor(side, all)
	answer, err := r.prompter.Prompt(PromptTitle, message, def)
	if err != nil {
		return "", fmt.Errorf("prompt for %s master page: %w", side, err)
	}
	run.prompts++
	if answer == "" {
		answer = def
	}
	run.cache[side] = answer
	r.logger.Debug("master page resolved",
		zap.Stringer("side", side),
		zap.String("master", answer),
		zap.Bool("default", answer == def))
	return answer, nil
}

// ConventionalName is "Normal Left" / "Normal Right".
func (r *Resolver) ConventionalName(side Side) string {
	return "Normal " + r.title.String(side.String())
}

func (r *Resolver) defaultFor(side Side, all []string) (string, string) {
	fallback := all[0]
	if side == SideNone {
		return fallback, fmt.Sprintf("Enter master page name (or press enter for %q):", fallback)
	}
	def := fallback
	if candidate := r.ConventionalName(side); slices.Contains(all, candidate) {
		def = candidate
	}
	return def, fmt.Sprintf("Enter %s master page name (or press enter for %q):", side, def)
}
