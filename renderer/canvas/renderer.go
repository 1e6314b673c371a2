package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/overset/document"
	"github.com/ByLCY/overset/fonts"
	"github.com/ByLCY/overset/geometry"
	"github.com/ByLCY/overset/renderer"
)

const outlineWidth = 0.2

var (
	textColor     = canvas.RGBA(30.0/255, 30.0/255, 30.0/255, 1)
	outlineColor  = canvas.RGBA(0.6, 0.6, 0.6, 1)
	overflowColor = canvas.RGBA(0.85, 0.1, 0.1, 1)
	marginColor   = canvas.RGBA(0.3, 0.5, 0.9, 1)
)

// Renderer draws document layouts via github.com/tdewolff/canvas and doubles as
// the typesetter used for overflow detection.
type Renderer struct {
	baseDir  string
	outlines bool

	fontBlobs map[string][]byte // by unique name

	fontMu         sync.Mutex
	fontFamilies   map[string]*fontFamilyEntry
	fallbackFamily *canvas.FontFamily
	fallbackFont   string
}

var (
	_ renderer.Renderer   = (*Renderer)(nil)
	_ document.Typesetter = (*Renderer)(nil)
)

type fontFamilyEntry struct {
	family *canvas.FontFamily
	style  canvas.FontStyle
}

// Options configures the canvas renderer.
type Options struct {
	BaseDir string
	Fonts   map[string]Resource // extra fonts accessible via builtin:<name>
	// Fallback names the built-in face used when a font cannot be loaded.
	Fallback string
	// Outlines draws frame borders, column guides and page margins.
	Outlines bool
}

// Resource can be provided either by Bytes or by Path.
type Resource struct {
	Bytes []byte
	Path  string
}

// NewRenderer creates a canvas-based renderer rooted at baseDir for resolving font files.
func NewRenderer(baseDir string) *Renderer { return NewRendererWithOptions(Options{BaseDir: baseDir}) }

// NewRendererWithOptions creates a renderer with injected fonts and optional baseDir.
func NewRendererWithOptions(opts Options) *Renderer {
	r := &Renderer{
		baseDir:      opts.BaseDir,
		outlines:     opts.Outlines,
		fontBlobs:    map[string][]byte{},
		fontFamilies: map[string]*fontFamilyEntry{},
		fallbackFont: opts.Fallback,
	}
	if r.fallbackFont == "" {
		r.fallbackFont = fonts.Default
	}
	for name, res := range opts.Fonts {
		if name == "" {
			continue
		}
		if len(res.Bytes) > 0 {
			r.fontBlobs[name] = res.Bytes
			continue
		}
		if res.Path != "" {
			data, _ := os.ReadFile(res.Path) // caught when the font is actually used
			if len(data) > 0 {
				r.fontBlobs[name] = data
			}
		}
	}
	return r
}

// Render renders the result into a PDF byte slice.
func (r *Renderer) Render(result *document.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	if len(result.Pages) == 0 {
		return nil, fmt.Errorf("缺少可渲染的页面")
	}

	var buf bytes.Buffer
	writer := pdf.New(&buf, result.Pages[0].Width, result.Pages[0].Height, nil)
	writer.SetInfo(result.Title, "", "", "", "overset")
	for i, page := range result.Pages {
		if i > 0 {
			writer.NewPage(page.Width, page.Height)
		}
		c := canvas.New(page.Width, page.Height)
		ctx := canvas.NewContext(c)
		ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与排版结果保持左上角为原点

		if err := r.drawPage(ctx, page, result.Fonts); err != nil {
			return nil, err
		}
		c.RenderTo(writer)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

// LayoutLines 实现 document.Typesetter 接口，使用贪心换行算法。
// 约定：fontSize/lineHeight 入参均为毫米（mm）。渲染器内部与字体系统交互使用 pt，并在边界做 mm↔pt 换算。
func (r *Renderer) LayoutLines(content string, width float64, font document.FontResource, fontSize, lineHeight float64) ([]document.TextLine, error) {
	face, err := r.fontFace(font, toPt(fontSize))
	if err != nil {
		return nil, err
	}

	lines := greedyWrapTokens(content, width, face)
	textHeight := face.Metrics().LineHeight
	if textHeight <= 0 {
		textHeight = lineHeight
	}
	leading := math.Max(lineHeight-textHeight, 0)
	if len(lines) == 0 {
		lines = []document.TextLine{{Content: "", Width: 0, Height: textHeight}}
	}
	for i := range lines {
		if lines[i].Height <= 0 {
			lines[i].Height = textHeight
		}
		if i == 0 {
			lines[i].GapBefore = 0
		} else {
			lines[i].GapBefore = leading
		}
	}
	return lines, nil
}

func (r *Renderer) drawPage(ctx *canvas.Context, page document.ResultPage, fontSet map[string]document.FontResource) error {
	if r.outlines {
		m := page.Margin
		r.strokeRect(ctx, m.Left, m.Top, page.Width-m.Left-m.Right, page.Height-m.Top-m.Bottom, marginColor)
	}
	for _, box := range page.Frames {
		if r.outlines {
			col := outlineColor
			if box.Overflows {
				col = overflowColor
			}
			r.strokeRect(ctx, box.X, box.Y, box.Width, box.Height, col)
		}
		if err := r.drawFrame(ctx, box, resolveFontResource(box.Font, fontSet)); err != nil {
			return fmt.Errorf("绘制文本框 %s 失败: %w", box.Name, err)
		}
	}
	return nil
}

func (r *Renderer) drawFrame(ctx *canvas.Context, box document.FrameBox, fontRes document.FontResource) error {
	// FrameBox 的坐标/字号/行高均为 mm；创建字体面需要 pt，这里做一次 mm→pt。
	face, err := r.fontFace(fontRes, toPt(box.FontSize))
	if err != nil {
		return err
	}
	metrics := face.Metrics()

	for _, col := range box.Columns {
		cursorY := box.Y
		for _, line := range col.Lines {
			cursorY += line.GapBefore
			lineHeight := line.Height
			if lineHeight <= 0 {
				lineHeight = box.FontSize
			}
			if line.Content != "" {
				// 基线位置：行顶部加上字体上升部
				ctx.DrawText(col.X, cursorY+metrics.Ascent, canvas.NewTextLine(face, line.Content, canvas.Left))
			}
			cursorY += lineHeight
		}
	}
	return nil
}

func (r *Renderer) strokeRect(ctx *canvas.Context, x, y, w, h float64, col color.Color) {
	ctx.SetFillColor(color.RGBA{0, 0, 0, 0})
	ctx.SetStrokeColor(col)
	ctx.SetStrokeWidth(outlineWidth)
	ctx.DrawPath(x, y, canvas.Rectangle(w, h))
}

func (r *Renderer) fontFace(font document.FontResource, size float64) (*canvas.FontFace, error) {
	family, style, err := r.ensureFontFamily(font)
	if err != nil {
		return nil, err
	}
	return family.Face(size, textColor, style, canvas.FontNormal), nil
}

func (r *Renderer) ensureFontFamily(font document.FontResource) (*canvas.FontFamily, canvas.FontStyle, error) {
	key := fontCacheKey(font)
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if entry, ok := r.fontFamilies[key]; ok {
		return entry.family, entry.style, nil
	}

	style := parseFontStyle(font.Style)
	familyName := font.Name
	if familyName == "" {
		familyName = "Body"
	}
	family := canvas.NewFontFamily(familyName)

	if err := r.loadFontIntoFamily(family, font, style); err != nil {
		fallback, fbStyle, fbErr := r.fallback()
		if fbErr != nil {
			return nil, canvas.FontRegular, err
		}
		r.fontFamilies[key] = &fontFamilyEntry{family: fallback, style: fbStyle}
		return fallback, fbStyle, nil
	}

	entry := &fontFamilyEntry{family: family, style: style}
	r.fontFamilies[key] = entry
	return family, style, nil
}

func (r *Renderer) loadFontIntoFamily(family *canvas.FontFamily, font document.FontResource, style canvas.FontStyle) error {
	data, err := r.loadFontBytes(font)
	if err != nil {
		return err
	}
	return family.LoadFont(data, 0, style)
}

func (r *Renderer) loadFontBytes(font document.FontResource) ([]byte, error) {
	if font.Src == "" {
		return nil, fmt.Errorf("字体 %s 缺少 src", font.Name)
	}
	src := font.Src
	if strings.HasPrefix(src, "built-in:") || strings.HasPrefix(src, "builtin:") {
		name := strings.TrimPrefix(strings.TrimPrefix(src, "built-in:"), "builtin:")
		if blob, ok := r.fontBlobs[name]; ok {
			return blob, nil
		}
		return fonts.Load(name)
	}
	path := src
	if r.baseDir == "" && !filepath.IsAbs(path) {
		return nil, fmt.Errorf("未指定资源目录时不允许直接使用字体路径：%s（请改用 builtin:）", src)
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.baseDir, path)
	}
	return os.ReadFile(path)
}

// fallback 需要在持有 fontMu 时调用。
func (r *Renderer) fallback() (*canvas.FontFamily, canvas.FontStyle, error) {
	if r.fallbackFamily != nil {
		return r.fallbackFamily, canvas.FontRegular, nil
	}
	data, err := fonts.Load(r.fallbackFont)
	if err != nil {
		return nil, canvas.FontRegular, err
	}
	family := canvas.NewFontFamily("overset-fallback")
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, canvas.FontRegular, err
	}
	r.fallbackFamily = family
	return family, canvas.FontRegular, nil
}

func resolveFontResource(name string, fontSet map[string]document.FontResource) document.FontResource {
	if font, ok := fontSet[name]; ok {
		return font
	}
	if font, ok := fontSet["Body"]; ok {
		return font
	}
	return document.FontResource{Name: name}
}

func parseFontStyle(style string) canvas.FontStyle {
	if style == "" {
		return canvas.FontRegular
	}
	s := strings.ToLower(style)
	result := canvas.FontRegular
	switch {
	case strings.Contains(s, "black"):
		result = canvas.FontBlack
	case strings.Contains(s, "extrabold"):
		result = canvas.FontExtraBold
	case strings.Contains(s, "semibold"), strings.Contains(s, "demibold"):
		result = canvas.FontSemiBold
	case strings.Contains(s, "bold"):
		result = canvas.FontBold
	case strings.Contains(s, "medium"):
		result = canvas.FontMedium
	case strings.Contains(s, "light"):
		result = canvas.FontLight
	}
	if strings.Contains(s, "italic") || strings.Contains(s, "oblique") {
		result |= canvas.FontItalic
	}
	return result
}

func fontCacheKey(font document.FontResource) string {
	return fmt.Sprintf("%s|%s|%s", font.Name, font.Src, font.Style)
}

// toPt 将毫米(mm)转换为点(pt)。
func toPt(mm float64) float64 { return mm * geometry.MmToPt }

// greedyWrapTokens 优先在空白处折行，单词超过栏宽时在词内拆分。
// 软折行处的空白不进入任何一行；显式换行结束的行带 Newline 标记，便于拼回剩余文本。
func greedyWrapTokens(content string, width float64, face *canvas.FontFace) []document.TextLine {
	limit := width
	if limit <= 0 {
		limit = math.MaxFloat64
	}

	tokens := tokenizeContent(content)
	var lines []document.TextLine
	var builder strings.Builder
	currentWidth := 0.0
	afterSoftBreak := false

	emit := func(hard bool) {
		if builder.Len() == 0 && !hard {
			return
		}
		lineStr := builder.String()
		lineWidth := currentWidth
		if !hard {
			if trimmed := strings.TrimRightFunc(lineStr, unicode.IsSpace); trimmed != lineStr {
				lineStr = trimmed
				lineWidth = face.TextWidth(trimmed)
			}
		}
		lines = append(lines, document.TextLine{
			Content: lineStr,
			Width:   lineWidth,
			Newline: hard,
		})
		builder.Reset()
		currentWidth = 0
		afterSoftBreak = !hard
	}

	appendToken := func(token string) {
		builder.WriteString(token)
		currentWidth += face.TextWidth(token)
	}

	for _, token := range tokens {
		if token == "\n" {
			emit(true)
			continue
		}
		if builder.Len() == 0 && afterSoftBreak && strings.TrimSpace(token) == "" {
			continue
		}

		tokenWidth := face.TextWidth(token)
		if currentWidth > 0 && currentWidth+tokenWidth > limit {
			emit(false)
			if strings.TrimSpace(token) == "" {
				continue
			}
		}
		if tokenWidth <= limit {
			appendToken(token)
			if currentWidth > limit {
				emit(false)
			}
			continue
		}

		for _, chunk := range splitTokenByWidth(token, limit, face) {
			chunkWidth := face.TextWidth(chunk)
			if currentWidth > 0 && currentWidth+chunkWidth > limit {
				emit(false)
			}
			appendToken(chunk)
			if currentWidth > limit {
				emit(false)
			}
		}
	}

	if builder.Len() > 0 || len(lines) == 0 || lines[len(lines)-1].Newline {
		emit(true)
		lines[len(lines)-1].Newline = false
	}
	return lines
}

func tokenizeContent(s string) []string {
	var tokens []string
	var builder strings.Builder
	lastWasSpace := false
	flush := func() {
		if builder.Len() == 0 {
			return
		}
		tokens = append(tokens, builder.String())
		builder.Reset()
	}

	for _, r := range s {
		if r == '\r' {
			continue
		}
		if r == '\n' {
			flush()
			tokens = append(tokens, "\n")
			lastWasSpace = false
			continue
		}
		isSpace := unicode.IsSpace(r)
		if builder.Len() == 0 {
			lastWasSpace = isSpace
		} else if lastWasSpace != isSpace {
			flush()
			lastWasSpace = isSpace
		}
		builder.WriteRune(r)
	}
	flush()
	return tokens
}

func splitTokenByWidth(token string, limit float64, face *canvas.FontFace) []string {
	if limit <= 0 || limit == math.MaxFloat64 {
		return []string{token}
	}
	var parts []string
	var builder strings.Builder
	for _, r := range token {
		builder.WriteRune(r)
		if face.TextWidth(builder.String()) > limit && builder.Len() > 1 {
			runes := []rune(builder.String())
			parts = append(parts, string(runes[:len(runes)-1]))
			builder.Reset()
			builder.WriteRune(r)
		}
	}
	if builder.Len() > 0 {
		parts = append(parts, builder.String())
	}
	return parts
}
