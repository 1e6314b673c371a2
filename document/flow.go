package document

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/ByLCY/overset/geometry"
)

const (
	defaultFontSizePt = 12.0
	defaultLineFactor = 1.4
	fitEpsilon        = 1e-6
)

// textSettings 是链首文本最终生效的字体参数（单位：mm）。
type textSettings struct {
	fontName   string
	font       FontResource
	fontSize   float64
	lineHeight float64
}

// chainFlow 记录文本在整条链中的分布。
type chainFlow struct {
	settings textSettings
	frames   []frameFlow
	rest     string
}

type frameFlow struct {
	frame   *Frame
	columns []ColumnBox
}

func (c chainFlow) overflows() bool {
	return strings.TrimSpace(c.rest) != ""
}

// settingsFor 合并段落样式与字符样式，字符样式中的 font/size 优先。
func (d *Document) settingsFor(f *Frame) (textSettings, error) {
	props := map[string]string{}
	if f.ParagraphStyle != "" {
		if st, ok := d.ParaStyles[f.ParagraphStyle]; ok {
			for k, v := range st.Props {
				props[k] = v
			}
		}
	}
	if f.CharStyle != "" {
		if st, ok := d.CharStyles[f.CharStyle]; ok {
			for _, k := range []string{"font", "size"} {
				if v, ok := st.Props[k]; ok {
					props[k] = v
				}
			}
		}
	}

	s := textSettings{fontName: props["font"]}
	s.fontSize = parseMM(props["size"], geometry.UnitPoints)
	if s.fontSize <= 0 {
		s.fontSize = geometry.Length{Value: defaultFontSizePt, Unit: geometry.UnitPoints}.ToMM()
	}
	s.lineHeight = s.fontSize * defaultLineFactor
	if v := strings.TrimSpace(props["line-height"]); v != "" {
		if strings.HasSuffix(v, "x") {
			if factor, err := strconv.ParseFloat(strings.TrimSuffix(v, "x"), 64); err == nil && factor > 0 {
				s.lineHeight = s.fontSize * factor
			}
		} else if lh := parseMM(v, geometry.UnitPoints); lh > 0 {
			s.lineHeight = lh
		}
	}

	font, err := d.resolveFont(s.fontName)
	if err != nil {
		return s, err
	}
	s.font = font
	if s.fontName == "" {
		s.fontName = font.Name
	}
	return s, nil
}

// resolveFont 按名称查找字体；未指定时退回 Body 或按名称排序的第一个字体，一个都没有时交给渲染器的内置字体。
func (d *Document) resolveFont(name string) (FontResource, error) {
	if font, ok := d.Fonts[name]; ok {
		return font, nil
	}
	if name != "" && len(d.Fonts) > 0 {
		return FontResource{}, fmt.Errorf("字体 %s 未定义", name)
	}
	if font, ok := d.Fonts["Body"]; ok {
		return font, nil
	}
	names := make([]string, 0, len(d.Fonts))
	for n := range d.Fonts {
		names = append(names, n)
	}
	sort.Strings(names)
	if len(names) > 0 {
		return d.Fonts[names[0]], nil
	}
	return FontResource{Name: "Body"}, nil
}

func parseMM(value string, def geometry.Unit) float64 {
	if strings.TrimSpace(value) == "" {
		return 0
	}
	l, err := geometry.ParseLength(value, def)
	if err != nil {
		return 0
	}
	return l.ToMM()
}

// toMM 把文档单位的长度换算为 mm。
func (d *Document) toMM(v float64) float64 {
	return geometry.Length{Value: v, Unit: d.Measure}.ToMM()
}

// flowChain 将链首文本依次填入每个文本框的每一栏，返回放置结果与剩余文本。
func (d *Document) flowChain(chain []*Frame) (chainFlow, error) {
	if d.typesetter == nil {
		return chainFlow{}, fmt.Errorf("document: 缺少排版后端 Typesetter")
	}
	if len(chain) == 0 {
		return chainFlow{}, nil
	}
	settings, err := d.settingsFor(chain[0])
	if err != nil {
		return chainFlow{}, err
	}
	flow := chainFlow{settings: settings, rest: chain[0].Text}

	for _, f := range chain {
		ff := frameFlow{frame: f}
		for _, col := range d.columnBoxes(f) {
			if strings.TrimSpace(flow.rest) != "" {
				lines, err := d.typesetter.LayoutLines(flow.rest, col.Width, settings.font, settings.fontSize, settings.lineHeight)
				if err != nil {
					return flow, fmt.Errorf("排版文本框 %s 失败：%w", f.Name, err)
				}
				placed := fitLines(lines, d.toMM(f.Rect.Height), settings)
				col.Lines = lines[:placed]
				flow.rest = joinLines(lines[placed:])
			}
			ff.columns = append(ff.columns, col)
		}
		flow.frames = append(flow.frames, ff)
	}
	return flow, nil
}

// columnBoxes 计算文本框各栏的位置与宽度（mm，页面坐标）。
func (d *Document) columnBoxes(f *Frame) []ColumnBox {
	cols := f.Columns
	if cols < 1 {
		cols = 1
	}
	gap := d.toMM(f.Gap)
	width := (d.toMM(f.Rect.Width) - float64(cols-1)*gap) / float64(cols)
	width = math.Max(width, 0)
	x := d.toMM(f.Rect.X)
	out := make([]ColumnBox, cols)
	for i := range out {
		out[i] = ColumnBox{X: x + float64(i)*(width+gap), Width: width}
	}
	return out
}

// fitLines 返回在给定高度内能放下的行数，每栏第一行不计行前间距。
func fitLines(lines []TextLine, height float64, s textSettings) int {
	leading := math.Max(s.lineHeight-s.fontSize, 0)
	used := 0.0
	for i := range lines {
		h := lines[i].Height
		if h <= 0 {
			h = s.fontSize
		}
		gap := 0.0
		if i > 0 {
			gap = lines[i].GapBefore
			if gap <= 0 {
				gap = leading
			}
		}
		if used+gap+h > height+fitEpsilon {
			return i
		}
		used += gap + h
	}
	return len(lines)
}

// joinLines 把未放下的行拼回文本，折行处补空格，原有换行处补 "\n"。
func joinLines(lines []TextLine) string {
	var b strings.Builder
	for i, ln := range lines {
		if i > 0 {
			if lines[i-1].Newline {
				b.WriteByte('\n')
			} else {
				b.WriteByte(' ')
			}
		}
		b.WriteString(ln.Content)
	}
	return b.String()
}

// Layout 排版整份文档，返回按页组织的文本框与行。
func (d *Document) Layout() (*Result, error) {
	res := &Result{Title: d.Meta["title"], Fonts: d.Fonts}
	for i, p := range d.Pages {
		res.Pages = append(res.Pages, ResultPage{
			Index:  i + 1,
			Master: p.Master,
			Width:  d.toMM(d.Size.Width),
			Height: d.toMM(d.Size.Height),
			Margin: geometry.Margins{
				Left:   d.toMM(d.Margins.Left),
				Right:  d.toMM(d.Margins.Right),
				Top:    d.toMM(d.Margins.Top),
				Bottom: d.toMM(d.Margins.Bottom),
			},
		})
	}

	done := map[string]bool{}
	for _, f := range d.Frames {
		if done[f.Name] {
			continue
		}
		chain := d.chainFrom(d.head(f))
		flow, err := d.flowChain(chain)
		if err != nil {
			return nil, err
		}
		for i, ff := range flow.frames {
			done[ff.frame.Name] = true
			box := FrameBox{
				Name:       ff.frame.Name,
				X:          d.toMM(ff.frame.Rect.X),
				Y:          d.toMM(ff.frame.Rect.Y),
				Width:      d.toMM(ff.frame.Rect.Width),
				Height:     d.toMM(ff.frame.Rect.Height),
				Font:       flow.settings.fontName,
				FontSize:   flow.settings.fontSize,
				LineHeight: flow.settings.lineHeight,
				Columns:    ff.columns,
				Overflows:  i == len(flow.frames)-1 && flow.overflows(),
			}
			page := ff.frame.Page - 1
			if page >= 0 && page < len(res.Pages) {
				res.Pages[page].Frames = append(res.Pages[page].Frames, box)
			}
		}
	}
	return res, nil
}
