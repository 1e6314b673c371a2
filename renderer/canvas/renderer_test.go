package canvasrenderer

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/ByLCY/overset/document"
	"github.com/ByLCY/overset/geometry"
)

var bodyFont = document.FontResource{
	Name: "Body",
	Src:  "builtin:lmroman10-regular",
}

func TestLayoutLinesGreedyWrapsText(t *testing.T) {
	r := NewRenderer(".")

	// 这里的宽度/字号/行高均为 mm
	fontSizeMM := 12 * geometry.PtToMm
	lineHeightMM := fontSizeMM * 1.2

	lines, err := r.LayoutLines("hello world again", 10, bodyFont, fontSizeMM, lineHeightMM)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) < 2 {
		t.Fatalf("expected wrapping into multiple lines, got %d", len(lines))
	}
	for i, ln := range lines {
		if strings.TrimSpace(ln.Content) != ln.Content {
			t.Fatalf("line %d keeps break whitespace: %q", i, ln.Content)
		}
		if ln.Newline {
			t.Fatalf("line %d marked as hard break", i)
		}
	}
}

func TestGreedyWrapHonorsNewlines(t *testing.T) {
	r := NewRenderer(".")
	fontSizeMM := 12 * geometry.PtToMm
	lineHeightMM := fontSizeMM * 1.2

	lines, err := r.LayoutLines("foo\n\nbar", 100, bodyFont, fontSizeMM, lineHeightMM)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines including blank, got %d", len(lines))
	}
	if lines[1].Content != "" {
		t.Fatalf("expected middle line to be blank, got %q", lines[1].Content)
	}
	if !lines[0].Newline || !lines[1].Newline || lines[2].Newline {
		t.Fatalf("newline flags: %v %v %v", lines[0].Newline, lines[1].Newline, lines[2].Newline)
	}
}

// TestLineHeightsInvariant 验证：
// 1) 首行 GapBefore == 0；
// 2) 其余行 GapBefore ≈ max(lineHeight - textHeight, 0)；
// 3) 各行的 Height 与 textHeight 一致（渲染器会用字体度量回填）。
func TestLineHeightsInvariant(t *testing.T) {
	r := NewRenderer(".")
	fontSizeMM := 12 * geometry.PtToMm
	lineHeightMM := fontSizeMM * 1.3

	content := "longlonglong longlonglong longlonglong longlonglong longlonglong"
	lines, err := r.LayoutLines(content, 40, bodyFont, fontSizeMM, lineHeightMM)
	if err != nil {
		t.Fatalf("LayoutLines error: %v", err)
	}
	if len(lines) < 2 {
		t.Fatalf("expected multiple lines for invariant test, got %d", len(lines))
	}

	textHeight := lines[0].Height
	if textHeight <= 0 {
		t.Fatalf("invalid text height: %g", textHeight)
	}
	wantLeading := math.Max(lineHeightMM-textHeight, 0)

	if lines[0].GapBefore != 0 {
		t.Fatalf("first line GapBefore must be 0, got %g", lines[0].GapBefore)
	}
	const eps = 1e-6
	for i := 1; i < len(lines); i++ {
		if diff := math.Abs(lines[i].GapBefore - wantLeading); diff > eps {
			t.Fatalf("line %d GapBefore mismatch: got=%g want=%g diff=%g", i, lines[i].GapBefore, wantLeading, diff)
		}
		if diff := math.Abs(lines[i].Height - textHeight); diff > eps {
			t.Fatalf("line %d Height mismatch: got=%g want=%g diff=%g", i, lines[i].Height, textHeight, diff)
		}
	}
}

// TestGreedyWrapWidthLimit 验证每行宽度不超过限制（mm）。
func TestGreedyWrapWidthLimit(t *testing.T) {
	r := NewRenderer(".")
	fontSizeMM := 12 * geometry.PtToMm
	lineHeightMM := fontSizeMM * 1.2

	limit := 30.0 // mm
	content := "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	lines, err := r.LayoutLines(content, limit, bodyFont, fontSizeMM, lineHeightMM)
	if err != nil {
		t.Fatalf("LayoutLines error: %v", err)
	}
	if len(lines) == 0 {
		t.Fatalf("expected at least one line")
	}
	for i, ln := range lines {
		if ln.Width-limit > 1e-6 { // 允许极小的数值误差
			t.Fatalf("line %d width exceeds limit: width=%g limit=%g", i, ln.Width, limit)
		}
	}
}

func TestUnknownFontFallsBack(t *testing.T) {
	r := NewRenderer("")
	font := document.FontResource{Name: "Ghost", Src: "builtin:no-such-face"}
	lines, err := r.LayoutLines("fallback text", 100, font, 4, 5)
	if err != nil {
		t.Fatalf("fallback font should be used: %v", err)
	}
	if len(lines) != 1 || lines[0].Content != "fallback text" {
		t.Fatalf("unexpected lines: %+v", lines)
	}
}

// TestRenderOverflowingDocument 用渲染器作为排版后端构建文档并输出 PDF。
func TestRenderOverflowingDocument(t *testing.T) {
	r := NewRendererWithOptions(Options{Outlines: true})
	doc := document.New(geometry.Size{Width: 148, Height: 210}, geometry.Margins{Left: 15, Right: 15, Top: 15, Bottom: 15},
		geometry.UnitMillimeters, r)
	doc.Fonts["Body"] = bodyFont
	if err := doc.NewPage(1, ""); err != nil {
		t.Fatal(err)
	}
	if _, err := doc.CreateText(1, geometry.Rect{X: 15, Y: 15, Width: 118, Height: 20}, "Story"); err != nil {
		t.Fatal(err)
	}
	if err := doc.SetText("Story", strings.Repeat("overset text keeps going ", 60)); err != nil {
		t.Fatal(err)
	}

	over, err := doc.TextOverflows("Story")
	if err != nil {
		t.Fatalf("overflow check failed: %v", err)
	}
	if !over {
		t.Fatalf("a 20mm frame cannot hold the story")
	}

	res, err := doc.Layout()
	if err != nil {
		t.Fatalf("layout failed: %v", err)
	}
	if !res.Pages[0].Frames[0].Overflows {
		t.Fatalf("frame box must be flagged as overflowing")
	}
	data, err := r.Render(res)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("output is not a PDF")
	}
}

func TestRenderRejectsEmptyResult(t *testing.T) {
	r := NewRenderer("")
	if _, err := r.Render(nil); err == nil {
		t.Fatalf("expected error for nil result")
	}
	if _, err := r.Render(&document.Result{}); err == nil {
		t.Fatalf("expected error for result without pages")
	}
}
