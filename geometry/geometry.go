// Package geometry reads page size, margins and the measurement unit from a host
// document. It never mutates anything.
package geometry

// Margins are expressed in the document unit.
type Margins struct {
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
}

// Size is a page size in the document unit.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Rect is a frame rectangle in the document unit.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Source is the part of the host document the provider queries.
type Source interface {
	PageMargins() Margins
	PageSize() Size
	Unit() Unit
}

// Geometry is a read-only snapshot of the layout constants.
type Geometry struct {
	Size    Size    `json:"size"`
	Margins Margins `json:"margins"`
	Unit    Unit    `json:"unit"`
}

// PrintableWidth is the page width inside the left and right margins.
func (g Geometry) PrintableWidth() float64 {
	return g.Size.Width - g.Margins.Left - g.Margins.Right
}

// PrintableHeight is the page height inside the top and bottom margins.
func (g Geometry) PrintableHeight() float64 {
	return g.Size.Height - g.Margins.Top - g.Margins.Bottom
}

// PrintableArea returns the rectangle inside the margins.
func (g Geometry) PrintableArea() Rect {
	return Rect{
		X:      g.Margins.Left,
		Y:      g.Margins.Top,
		Width:  g.PrintableWidth(),
		Height: g.PrintableHeight(),
	}
}

// Correction returns the overflow correction for the snapshot's unit.
func (g Geometry) Correction() float64 {
	return OverflowCorrection(g.Unit)
}

// Provider answers geometry queries against a Source.
// Callers make sure a document is open before asking.
type Provider struct {
	src Source
}

// NewProvider wraps src.
func NewProvider(src Source) *Provider {
	return &Provider{src: src}
}

func (p *Provider) CurrentMargins() Margins { return p.src.PageMargins() }

func (p *Provider) PageSize() Size { return p.src.PageSize() }

func (p *Provider) MeasurementUnit() Unit { return p.src.Unit() }

// OverflowCorrection returns the fixed correction for u.
func (p *Provider) OverflowCorrection(u Unit) float64 { return OverflowCorrection(u) }

// Snapshot captures the current values in one struct.
func (p *Provider) Snapshot() Geometry {
	return Geometry{
		Size:    p.src.PageSize(),
		Margins: p.src.PageMargins(),
		Unit:    p.src.Unit(),
	}
}
