package document

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ByLCY/overset/binding"
	"github.com/ByLCY/overset/dsl"
	"github.com/ByLCY/overset/geometry"
)

// 未声明 layout 时使用 A4、四边 20mm、单位 mm。
const defaultMargin = 20.0

type pendingLink struct {
	from, to string
}

// Build 根据 DSL AST 生成内存文档：页面几何、母版、页面与文本框。
func Build(doc *dsl.Document, opts BuildOptions) (*Document, error) {
	if doc == nil {
		return nil, fmt.Errorf("文档为空")
	}

	out := New(geometry.Size{Width: 210, Height: 297}, geometry.Margins{
		Left: defaultMargin, Right: defaultMargin, Top: defaultMargin, Bottom: defaultMargin,
	}, geometry.UnitMillimeters, opts.Typesetter)
	out.Name = doc.Name
	out.Version = doc.Version
	out.SizeName = "A4"

	if err := collectResources(doc, out); err != nil {
		return nil, err
	}
	collectMeta(doc, out)

	data := map[string]any{}
	for k, v := range opts.Data {
		data[k] = v
	}
	data["meta"] = out.Meta

	var links []pendingLink
	for _, section := range doc.Sections {
		switch {
		case section.Layout != nil:
			if err := applyLayout(section.Layout, out); err != nil {
				return nil, err
			}
		case section.Master != nil:
			if err := out.AddMaster(string(section.Master.Name)); err != nil {
				return nil, err
			}
		case section.Page != nil:
			pageLinks, err := buildPage(section.Page, out, data)
			if err != nil {
				return nil, err
			}
			links = append(links, pageLinks...)
		}
	}
	if len(out.Pages) == 0 {
		return nil, fmt.Errorf("文档中缺少 page 段落")
	}

	for _, l := range links {
		if err := out.LinkTextFrames(l.from, l.to); err != nil {
			return nil, fmt.Errorf("链接 %s -> %s：%w", l.from, l.to, err)
		}
	}
	out.current = 1
	return out, nil
}

func collectResources(doc *dsl.Document, out *Document) error {
	rawParagraph := map[string]Style{}
	rawChar := map[string]Style{}

	for _, section := range doc.Sections {
		if section.Resources == nil || section.Resources.Block == nil {
			continue
		}
		for _, stmt := range section.Resources.Block.Statements {
			if stmt.Command == nil {
				continue
			}
			switch stmt.Command.Name {
			case "font":
				font := parseFontResource(stmt.Command)
				if font.Name != "" {
					out.Fonts[font.Name] = font
				}
			case "paragraph-style", "style":
				style := parseStyleResource(stmt.Command)
				if style.Name != "" {
					rawParagraph[style.Name] = style
				}
			case "char-style":
				style := parseStyleResource(stmt.Command)
				if style.Name != "" {
					rawChar[style.Name] = style
				}
			}
		}
	}

	var err error
	if out.ParaStyles, err = resolveStyles(rawParagraph); err != nil {
		return err
	}
	if out.CharStyles, err = resolveStyles(rawChar); err != nil {
		return err
	}
	return nil
}

func collectMeta(doc *dsl.Document, out *Document) {
	for _, section := range doc.Sections {
		if section.Meta == nil || section.Meta.Block == nil {
			continue
		}
		for _, stmt := range section.Meta.Block.Statements {
			if stmt.Assignment == nil {
				continue
			}
			out.Meta[strings.ToLower(stmt.Assignment.Key)] = stmt.Assignment.Value.Text()
		}
	}
}

func parseFontResource(cmd *dsl.Command) FontResource {
	if len(cmd.Args) == 0 {
		return FontResource{}
	}
	font := FontResource{Name: cmd.Args[0].Value}
	if cmd.Block == nil {
		return font
	}
	for _, stmt := range cmd.Block.Statements {
		if stmt.Assignment == nil {
			continue
		}
		switch stmt.Assignment.Key {
		case "src":
			font.Src = stmt.Assignment.Value.Text()
		case "style":
			font.Style = stmt.Assignment.Value.Text()
		}
	}
	return font
}

func parseStyleResource(cmd *dsl.Command) Style {
	if len(cmd.Args) == 0 {
		return Style{}
	}
	style := Style{
		Name:  cmd.Args[0].Value,
		Props: map[string]string{},
	}
	if len(cmd.Args) >= 3 && strings.EqualFold(cmd.Args[1].Value, "extends") {
		style.Extends = cmd.Args[2].Value
	}
	if cmd.Block == nil {
		return style
	}
	for _, stmt := range cmd.Block.Statements {
		if stmt.Assignment == nil {
			continue
		}
		if val := stmt.Assignment.Value.Text(); val != "" {
			style.Props[stmt.Assignment.Key] = val
		}
	}
	return style
}

// resolveStyles 展开 extends 继承链，子样式属性覆盖父样式。
func resolveStyles(styles map[string]Style) (map[string]Style, error) {
	resolved := map[string]Style{}
	visiting := map[string]bool{}

	var dfs func(name string) (Style, error)
	dfs = func(name string) (Style, error) {
		if style, ok := resolved[name]; ok {
			return style, nil
		}
		style, ok := styles[name]
		if !ok {
			return Style{}, fmt.Errorf("style %s 未定义", name)
		}
		if visiting[name] {
			return Style{}, fmt.Errorf("style 继承存在循环：%s", name)
		}
		visiting[name] = true

		props := map[string]string{}
		if style.Extends != "" {
			parent, err := dfs(style.Extends)
			if err != nil {
				return Style{}, err
			}
			for k, v := range parent.Props {
				props[k] = v
			}
		}
		for k, v := range style.Props {
			props[k] = v
		}
		style.Props = props
		resolved[name] = style
		delete(visiting, name)
		return style, nil
	}

	for name := range styles {
		if _, err := dfs(name); err != nil {
			return nil, err
		}
	}
	return resolved, nil
}

// applyLayout 解析 `layout A4 landscape margin 20mm 15mm unit mm facing`。
// 边距遵循 CSS 语义：1 个值四边相同，2 个值为上下/左右，3 个值为上/左右/下，4 个值为上/右/下/左。
func applyLayout(section *dsl.LayoutSection, out *Document) error {
	params := section.Params
	unit := geometry.UnitMillimeters
	for i := 0; i < len(params)-1; i++ {
		if params[i].Value == "unit" {
			u, err := geometry.ParseUnit(params[i+1].Value)
			if err != nil {
				return fmt.Errorf("layout: %w", err)
			}
			unit = u
		}
	}
	length := func(raw string) (float64, error) {
		l, err := geometry.ParseLength(raw, unit)
		if err != nil {
			return 0, fmt.Errorf("layout: %w", err)
		}
		return l.To(unit), nil
	}

	var size geometry.Size
	custom := strings.EqualFold(section.Size, "custom")
	if !custom {
		preset, err := geometry.Preset(section.Size, unit)
		if err != nil {
			return fmt.Errorf("暂不支持的纸张尺寸：%s", section.Size)
		}
		size = preset
	}
	m := defaultMargin
	if unit != geometry.UnitMillimeters {
		m = geometry.Length{Value: defaultMargin, Unit: geometry.UnitMillimeters}.To(unit)
	}
	margins := geometry.Margins{Left: m, Right: m, Top: m, Bottom: m}
	landscape := false
	facing := false

	for i := 0; i < len(params); i++ {
		switch params[i].Value {
		case "portrait":
			landscape = false
		case "landscape":
			landscape = true
		case "facing":
			facing = true
		case "unit":
			i++
		case "width", "height":
			if i+1 >= len(params) {
				return fmt.Errorf("layout: %s 缺少取值", params[i].Value)
			}
			v, err := length(params[i+1].Value)
			if err != nil {
				return err
			}
			if params[i].Value == "width" {
				size.Width = v
			} else {
				size.Height = v
			}
			i++
		case "margin":
			var vals []float64
			for j := i + 1; j < len(params) && len(vals) < 4; j++ {
				if params[j].Type != "Number" {
					break
				}
				v, err := length(params[j].Value)
				if err != nil {
					return err
				}
				vals = append(vals, v)
			}
			switch len(vals) {
			case 0:
				return fmt.Errorf("layout: margin 缺少取值")
			case 1:
				margins = geometry.Margins{Top: vals[0], Right: vals[0], Bottom: vals[0], Left: vals[0]}
			case 2:
				margins = geometry.Margins{Top: vals[0], Right: vals[1], Bottom: vals[0], Left: vals[1]}
			case 3:
				margins = geometry.Margins{Top: vals[0], Right: vals[1], Bottom: vals[2], Left: vals[1]}
			case 4:
				margins = geometry.Margins{Top: vals[0], Right: vals[1], Bottom: vals[2], Left: vals[3]}
			}
			i += len(vals)
		default:
			return fmt.Errorf("layout: 未知参数 %s", params[i].Value)
		}
	}

	if size.Width <= 0 || size.Height <= 0 {
		return fmt.Errorf("layout: 页面尺寸无效 %gx%g", size.Width, size.Height)
	}
	if landscape {
		size = size.Landscape()
	}
	if margins.Left+margins.Right >= size.Width || margins.Top+margins.Bottom >= size.Height {
		return fmt.Errorf("layout: 边距超出页面尺寸")
	}

	out.Size = size
	out.Margins = margins
	out.Measure = unit
	out.Facing = facing
	out.Landscape = landscape
	out.SizeName = strings.ToUpper(section.Size)
	if custom {
		out.SizeName = ""
	}
	return nil
}

// buildPage 追加一个页面，并创建页面上的文本框。next 链接在所有页面建好后统一处理。
func buildPage(section *dsl.PageSection, out *Document, data map[string]any) ([]pendingLink, error) {
	_, attrs := parseArgs(section.Params, false)
	master := attrs["master"]
	index := len(out.Pages) + 1
	if err := out.NewPage(index, master); err != nil {
		return nil, fmt.Errorf("第 %d 页：%w", index, err)
	}
	if section.Block == nil {
		return nil, nil
	}

	var links []pendingLink
	for _, stmt := range section.Block.Statements {
		if stmt.Command == nil || stmt.Command.Name != "frame" {
			continue
		}
		link, err := buildFrame(stmt.Command, index, out, data)
		if err != nil {
			return nil, err
		}
		if link.to != "" {
			links = append(links, link)
		}
	}
	return links, nil
}

func buildFrame(cmd *dsl.Command, page int, out *Document, data map[string]any) (pendingLink, error) {
	name, attrs := parseArgs(cmd.Args, true)
	area := geometry.Geometry{Size: out.Size, Margins: out.Margins, Unit: out.Measure}.PrintableArea()

	rect := area
	for key, dst := range map[string]*float64{"x": &rect.X, "y": &rect.Y, "width": &rect.Width, "height": &rect.Height} {
		raw, ok := attrs[key]
		if !ok {
			continue
		}
		l, err := geometry.ParseLength(raw, out.Measure)
		if err != nil {
			return pendingLink{}, fmt.Errorf("frame %s: %s: %w", name, key, err)
		}
		*dst = l.To(out.Measure)
	}

	created, err := out.CreateText(page, rect, name)
	if err != nil {
		return pendingLink{}, err
	}
	if v, ok := attrs["columns"]; ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return pendingLink{}, fmt.Errorf("frame %s: columns: %w", created, err)
		}
		if err := out.SetColumns(n, created); err != nil {
			return pendingLink{}, err
		}
	}
	if v, ok := attrs["gap"]; ok {
		l, err := geometry.ParseLength(v, out.Measure)
		if err != nil {
			return pendingLink{}, fmt.Errorf("frame %s: gap: %w", created, err)
		}
		if err := out.SetColumnGap(l.To(out.Measure), created); err != nil {
			return pendingLink{}, err
		}
	}
	if v, ok := attrs["style"]; ok {
		if err := out.SetParagraphStyle(v, created); err != nil {
			return pendingLink{}, err
		}
	}
	if v, ok := attrs["char-style"]; ok {
		if err := out.SetCharacterStyle(v, created); err != nil {
			return pendingLink{}, err
		}
	}
	if text := extractText(cmd.Block); text != "" {
		if err := out.SetText(created, binding.Interpolate(text, data)); err != nil {
			return pendingLink{}, err
		}
	}
	return pendingLink{from: created, to: attrs["next"]}, nil
}

// parseArgs 把 `Name key value key value` 形式的参数拆成名称与属性表。
func parseArgs(args []*dsl.Lexeme, allowName bool) (string, map[string]string) {
	result := map[string]string{}
	if len(args) == 0 {
		return "", result
	}

	cursor := 0
	var name string
	if allowName && args[0].Type == "Ident" {
		name = args[0].Value
		cursor = 1
	}

	for cursor < len(args)-1 {
		result[args[cursor].Value] = args[cursor+1].Value
		cursor += 2
	}
	return name, result
}

// extractText 以换行拼接块内的字符串字面量，每个字面量是一个段落。
func extractText(block *dsl.Block) string {
	if block == nil {
		return ""
	}
	var parts []string
	for _, stmt := range block.Statements {
		if stmt.Text != nil {
			parts = append(parts, string(stmt.Text.Value))
		}
	}
	return strings.Join(parts, "\n")
}
