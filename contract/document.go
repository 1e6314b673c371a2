// Package contract describes the host collaborator the layout core works against:
// the document being edited and the user who answers prompts.
package contract

import "github.com/ByLCY/overset/geometry"

// DocumentReader is the query side of the host document.
type DocumentReader interface {
	geometry.Source
	// CurrentPage returns the 1-based index of the current page.
	CurrentPage() int
	// TextOverflows reports whether text of the chain containing frame is still hidden.
	TextOverflows(frame string) (bool, error)
	Columns(frame string) (int, error)
	ColumnGap(frame string) (float64, error)
	// NextFrame returns the frame linked after frame, or "" at the end of the chain.
	NextFrame(frame string) (string, error)
	// FramePage returns the 1-based page index frame sits on.
	FramePage(frame string) (int, error)
	FacingPages() bool
	MasterCatalog
}

// MasterCatalog lists the master page templates of a document.
type MasterCatalog interface {
	MasterPageNames() []string
}

// DocumentWriter is the mutation side of the host document. Every call applies
// immediately; there is no transaction.
type DocumentWriter interface {
	// NewPage inserts a page at index. An empty master means the document default.
	NewPage(index int, master string) error
	// CreateText creates a text frame on page and returns its name.
	CreateText(page int, rect geometry.Rect, name string) (string, error)
	SetColumns(columns int, frame string) error
	SetColumnGap(gap float64, frame string) error
	// LinkTextFrames makes to receive the overflow of from.
	LinkTextFrames(from, to string) error
	// SizeObject resizes a frame keeping its position.
	SizeObject(width, height float64, frame string) error
}

// Document is everything the pagination engine needs.
type Document interface {
	DocumentReader
	DocumentWriter
}

// Prompter asks the user for a value. A dismissed prompt returns an empty string
// and no error.
type Prompter interface {
	Prompt(title, message, def string) (string, error)
}

// PrompterFunc adapts a function to Prompter.
type PrompterFunc func(title, message, def string) (string, error)

func (f PrompterFunc) Prompt(title, message, def string) (string, error) {
	return f(title, message, def)
}

// StyleHost exposes character and paragraph styles of text frames.
type StyleHost interface {
	CharacterStyles() []string
	ParagraphStyles() []string
	CharacterStyle(frame string) (string, error)
	ParagraphStyle(frame string) (string, error)
	SetCharacterStyle(style, frame string) error
	SetParagraphStyle(style, frame string) error
}
