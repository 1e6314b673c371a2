package geometry

import (
	"fmt"
	"strings"
)

// Standard page sizes in millimeters.
var pagePresets = map[string]Size{
	"A3":     {Width: 297, Height: 420},
	"A4":     {Width: 210, Height: 297},
	"A5":     {Width: 148, Height: 210},
	"B5":     {Width: 176, Height: 250},
	"LETTER": {Width: 215.9, Height: 279.4},
	"LEGAL":  {Width: 215.9, Height: 355.6},
}

// Preset returns a named page size converted to unit.
func Preset(name string, unit Unit) (Size, error) {
	mm, ok := pagePresets[strings.ToUpper(name)]
	if !ok {
		return Size{}, fmt.Errorf("unsupported page size: %s", name)
	}
	return Size{
		Width:  Length{Value: mm.Width, Unit: UnitMillimeters}.To(unit),
		Height: Length{Value: mm.Height, Unit: UnitMillimeters}.To(unit),
	}, nil
}

// Landscape swaps width and height.
func (s Size) Landscape() Size {
	return Size{Width: s.Height, Height: s.Width}
}
