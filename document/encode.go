package document

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/ByLCY/overset/geometry"
)

// Encode 把文档写回 DSL 文本，Build(Parse(Encode(d))) 得到等价的文档。
// 页面尺寸总是以 `layout custom width .. height ..` 的形式写出，避免预设与单位换算带来的误差。
func Encode(w io.Writer, d *Document) error {
	bw := bufio.NewWriter(w)
	e := &encoder{w: bw, unit: d.Measure}

	e.line(0, "doc %s %s {", identOr(d.Name, "Document"), identOr(d.Version, "v1"))

	if len(d.Meta) > 0 {
		e.line(1, "meta {")
		for _, k := range sortedKeys(d.Meta) {
			e.line(2, "%s: %s", k, strconv.Quote(d.Meta[k]))
		}
		e.line(1, "}")
	}

	if len(d.Fonts) > 0 || len(d.ParaStyles) > 0 || len(d.CharStyles) > 0 {
		e.line(1, "resources {")
		fontNames := make([]string, 0, len(d.Fonts))
		for name := range d.Fonts {
			fontNames = append(fontNames, name)
		}
		sort.Strings(fontNames)
		for _, name := range fontNames {
			font := d.Fonts[name]
			props := map[string]string{"src": font.Src}
			if font.Style != "" {
				props["style"] = font.Style
			}
			e.line(2, "font %s { %s }", name, props2dsl(props))
		}
		for _, name := range styleNames(d.ParaStyles) {
			e.line(2, "paragraph-style %s { %s }", name, props2dsl(d.ParaStyles[name].Props))
		}
		for _, name := range styleNames(d.CharStyles) {
			e.line(2, "char-style %s { %s }", name, props2dsl(d.CharStyles[name].Props))
		}
		e.line(1, "}")
	}

	layout := fmt.Sprintf("layout custom width %s height %s margin %s %s %s %s unit %s",
		e.length(d.Size.Width), e.length(d.Size.Height),
		e.length(d.Margins.Top), e.length(d.Margins.Right), e.length(d.Margins.Bottom), e.length(d.Margins.Left),
		d.Measure)
	if d.Facing {
		layout += " facing"
	}
	e.line(1, "%s", layout)

	for _, m := range d.Masters {
		e.line(1, "master %s", strconv.Quote(m))
	}

	for i, p := range d.Pages {
		head := "page"
		if p.Master != "" {
			head += " master " + strconv.Quote(p.Master)
		}
		e.line(1, "%s {", head)
		for _, f := range d.FramesOn(i + 1) {
			e.frame(f)
		}
		e.line(1, "}")
	}
	e.line(0, "}")

	if e.err != nil {
		return e.err
	}
	return bw.Flush()
}

type encoder struct {
	w    *bufio.Writer
	unit geometry.Unit
	err  error
}

func (e *encoder) line(indent int, format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, "%s%s\n", strings.Repeat("  ", indent), fmt.Sprintf(format, args...))
}

func (e *encoder) length(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + e.unit.String()
}

func (e *encoder) frame(f *Frame) {
	parts := []string{
		"frame", f.Name,
		"x", e.length(f.Rect.X),
		"y", e.length(f.Rect.Y),
		"width", e.length(f.Rect.Width),
		"height", e.length(f.Rect.Height),
	}
	if f.Columns > 1 {
		parts = append(parts, "columns", strconv.Itoa(f.Columns))
	}
	if f.Gap > 0 {
		parts = append(parts, "gap", e.length(f.Gap))
	}
	if f.ParagraphStyle != "" {
		parts = append(parts, "style", f.ParagraphStyle)
	}
	if f.CharStyle != "" {
		parts = append(parts, "char-style", f.CharStyle)
	}
	if f.Next != "" {
		parts = append(parts, "next", f.Next)
	}
	head := strings.Join(parts, " ")
	if f.Text == "" {
		e.line(2, "%s", head)
		return
	}
	e.line(2, "%s {", head)
	for _, para := range strings.Split(f.Text, "\n") {
		e.line(3, "%s", strconv.Quote(para))
	}
	e.line(2, "}")
}

func props2dsl(props map[string]string) string {
	keys := sortedKeys(props)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strconv.Quote(props[k])))
	}
	return strings.Join(parts, " ")
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func identOr(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
