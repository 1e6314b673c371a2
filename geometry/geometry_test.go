package geometry

import (
	"math"
	"testing"
)

type staticSource struct {
	size    Size
	margins Margins
	unit    Unit
}

func (s staticSource) PageMargins() Margins { return s.margins }
func (s staticSource) PageSize() Size       { return s.size }
func (s staticSource) Unit() Unit           { return s.unit }

func TestProviderSnapshot(t *testing.T) {
	src := staticSource{
		size:    Size{Width: 210, Height: 297},
		margins: Margins{Left: 20, Right: 15, Top: 25, Bottom: 22},
		unit:    UnitMillimeters,
	}
	p := NewProvider(src)
	g := p.Snapshot()

	if g.PrintableWidth() != 175 {
		t.Fatalf("printable width: got %g", g.PrintableWidth())
	}
	if g.PrintableHeight() != 250 {
		t.Fatalf("printable height: got %g", g.PrintableHeight())
	}
	if area := g.PrintableArea(); area.X != 20 || area.Y != 25 {
		t.Fatalf("printable area origin: got %+v", area)
	}
	if p.MeasurementUnit() != UnitMillimeters || g.Correction() != 2 {
		t.Fatalf("unexpected unit/correction: %v %g", p.MeasurementUnit(), g.Correction())
	}
	if p.OverflowCorrection(UnitPoints) != 5.67 {
		t.Fatalf("points correction: got %g", p.OverflowCorrection(UnitPoints))
	}
}

func TestPreset(t *testing.T) {
	a4, err := Preset("a4", UnitMillimeters)
	if err != nil {
		t.Fatalf("Preset: %v", err)
	}
	if a4.Width != 210 || a4.Height != 297 {
		t.Fatalf("A4 mm: %+v", a4)
	}
	pt, err := Preset("A4", UnitPoints)
	if err != nil {
		t.Fatalf("Preset: %v", err)
	}
	if math.Abs(pt.Width-595.28) > 0.05 {
		t.Fatalf("A4 width in pt: %g", pt.Width)
	}
	if l := a4.Landscape(); l.Width != 297 {
		t.Fatalf("landscape: %+v", l)
	}
	if _, err := Preset("Tabloid", UnitPoints); err == nil {
		t.Fatalf("expected error for unknown preset")
	}
}
