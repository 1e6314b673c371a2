package geometry

import (
	"fmt"
	"strconv"
	"strings"
)

// This file defines unit-safe lengths and the per-unit overflow correction.

// Unit identifies the measurement unit a document works in.
type Unit int

const (
	UnitPoints      Unit = iota // pt, 1/72 inch
	UnitMillimeters             // mm
	UnitInches                  // in
	UnitPicas                   // p, 12pt
	UnitCentimeters             // cm
	UnitCiceros                 // c, 12 Didot points
)

// Conversion constants between pt and mm.
const (
	PtToMm = 0.352777
	MmToPt = 1.0 / PtToMm
)

// mmPer lists how many millimeters one unit is worth.
var mmPer = map[Unit]float64{
	UnitPoints:      PtToMm,
	UnitMillimeters: 1,
	UnitInches:      25.4,
	UnitPicas:       12 * PtToMm,
	UnitCentimeters: 10,
	UnitCiceros:     4.512,
}

// overflowCorrection is 2mm expressed in each unit. Some glyphs do not fit into a
// frame whose height is geometrically sufficient, so new frames get this much extra.
var overflowCorrection = map[Unit]float64{
	UnitPoints:      5.67,
	UnitMillimeters: 2.0,
	UnitInches:      0.0787,
	UnitPicas:       0.4724,
	UnitCentimeters: 0.2,
	UnitCiceros:     0.4433,
}

// OverflowCorrection returns the additive height correction for u.
// Unknown units get no correction.
func OverflowCorrection(u Unit) float64 {
	return overflowCorrection[u]
}

// String returns the short suffix for a Unit value.
func (u Unit) String() string {
	switch u {
	case UnitPoints:
		return "pt"
	case UnitMillimeters:
		return "mm"
	case UnitInches:
		return "in"
	case UnitPicas:
		return "p"
	case UnitCentimeters:
		return "cm"
	case UnitCiceros:
		return "c"
	default:
		return fmt.Sprintf("unit(%d)", int(u))
	}
}

// ParseUnit accepts short suffixes as well as spelled-out names.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pt", "point", "points":
		return UnitPoints, nil
	case "mm", "millimeter", "millimeters":
		return UnitMillimeters, nil
	case "in", "inch", "inches":
		return UnitInches, nil
	case "p", "pica", "picas":
		return UnitPicas, nil
	case "cm", "centimeter", "centimeters":
		return UnitCentimeters, nil
	case "c", "cicero", "ciceros":
		return UnitCiceros, nil
	}
	return UnitPoints, fmt.Errorf("unknown unit %q", s)
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

func (l Length) IsZero() bool { return l.Value == 0 }

// To converts this length to the target unit.
func (l Length) To(target Unit) float64 {
	if l.Unit == target {
		return l.Value
	}
	from, ok := mmPer[l.Unit]
	if !ok {
		return l.Value
	}
	to, ok := mmPer[target]
	if !ok {
		return l.Value
	}
	return l.Value * from / to
}

func (l Length) ToMM() float64 { return l.To(UnitMillimeters) }
func (l Length) ToPT() float64 { return l.To(UnitPoints) }

// suffixes is ordered so that longer suffixes are tried first ("cm" before "c").
var suffixes = []struct {
	s string
	u Unit
}{{"mm", UnitMillimeters}, {"cm", UnitCentimeters}, {"pt", UnitPoints}, {"in", UnitInches}, {"p", UnitPicas}, {"c", UnitCiceros}}

// ParseLength parses "12pt", "20mm", "3p" and friends. A bare number takes def as its unit.
func ParseLength(value string, def Unit) (Length, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return Length{Unit: def}, fmt.Errorf("empty length")
	}
	unit := def
	num := v
	for _, suf := range suffixes {
		if strings.HasSuffix(v, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(v, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{Unit: def}, fmt.Errorf("invalid length %q: %w", value, err)
	}
	return Length{Value: f, Unit: unit}, nil
}

// IsLength reports whether value parses as a length.
func IsLength(value string) bool {
	_, err := ParseLength(value, UnitPoints)
	return err == nil
}
