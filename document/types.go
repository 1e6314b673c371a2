package document

import "github.com/ByLCY/overset/geometry"

// 该文件定义内存文档模型与排版结果，供宿主接口实现、渲染与调试 JSON 共用。

// Document 是内存中的版面文档：统一的页面几何、母版、页面与文本框。
type Document struct {
	Name    string            `json:"name"`
	Version string            `json:"version"`
	Meta    map[string]string `json:"meta"`

	Size    geometry.Size    `json:"size"`
	Margins geometry.Margins `json:"margins"`
	Measure geometry.Unit    `json:"unit"`
	Facing  bool             `json:"facing"`
	// SizeName 记录 layout 段落中的纸张名称，写回 DSL 时使用。
	SizeName  string `json:"sizeName,omitempty"`
	Landscape bool   `json:"landscape,omitempty"`

	Masters []string `json:"masters"`
	Pages   []*Page  `json:"pages"`
	// Frames 按创建顺序保存，名称在文档内唯一。
	Frames []*Frame `json:"frames"`

	Fonts      map[string]FontResource `json:"fonts"`
	ParaStyles map[string]Style        `json:"paragraphStyles"`
	CharStyles map[string]Style        `json:"charStyles"`

	current    int
	typesetter Typesetter
}

// Page 是一个具体页面，序号由其在 Pages 中的位置决定（从 1 开始）。
type Page struct {
	// Master 为空表示使用文档默认母版。
	Master string `json:"master,omitempty"`
}

// Frame 是文本框。文本只保存在链首，后续框从链首接收溢出文本。
type Frame struct {
	Name           string        `json:"name"`
	Page           int           `json:"page"`
	Rect           geometry.Rect `json:"rect"`
	Columns        int           `json:"columns"`
	Gap            float64       `json:"gap"`
	Text           string        `json:"text,omitempty"`
	ParagraphStyle string        `json:"paragraphStyle,omitempty"`
	CharStyle      string        `json:"charStyle,omitempty"`
	Next           string        `json:"next,omitempty"`
	Prev           string        `json:"prev,omitempty"`
}

// FontResource 描述字体资源，src 可以是文件路径或 builtin:* 形式。
type FontResource struct {
	Name  string `json:"name"`
	Src   string `json:"src"`
	Style string `json:"style,omitempty"`
}

// Style 是段落样式或字符样式，属性沿用 DSL 中的键（font/size/line-height）。
type Style struct {
	Name    string            `json:"name"`
	Extends string            `json:"extends,omitempty"`
	Props   map[string]string `json:"props"`
}

// TextLine 表示排版后的一行文本内容及其宽高（单位：mm）。
type TextLine struct {
	Content   string  `json:"content"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	GapBefore float64 `json:"gapBefore,omitempty"`
	// Newline 表示该行以显式换行结束，拼回剩余文本时需要补回 "\n"。
	Newline bool `json:"newline,omitempty"`
}

// Result 保存整份文档的排版结果，坐标统一为 mm。
type Result struct {
	Title string                  `json:"title"`
	Pages []ResultPage            `json:"pages"`
	Fonts map[string]FontResource `json:"fonts"`
}

// ResultPage 记录页面尺寸、边距、母版与页面上的文本框。
type ResultPage struct {
	Index  int              `json:"index"`
	Master string           `json:"master,omitempty"`
	Width  float64          `json:"width"`
	Height float64          `json:"height"`
	Margin geometry.Margins `json:"margin"`
	Frames []FrameBox       `json:"frames"`
}

// FrameBox 是已定位的文本框，包含每一栏实际放入的行。
type FrameBox struct {
	Name       string      `json:"name"`
	X          float64     `json:"x"`
	Y          float64     `json:"y"`
	Width      float64     `json:"width"`
	Height     float64     `json:"height"`
	Font       string      `json:"font"`
	FontSize   float64     `json:"fontSize"`
	LineHeight float64     `json:"lineHeight"`
	Columns    []ColumnBox `json:"columns"`
	Overflows  bool        `json:"overflows"`
}

// ColumnBox 是文本框中的一栏。
type ColumnBox struct {
	X     float64    `json:"x"`
	Width float64    `json:"width"`
	Lines []TextLine `json:"lines"`
}
