package document

// BuildOptions 配置文档构建所需的依赖，例如排版后端。
type BuildOptions struct {
	Typesetter Typesetter
	// Data 用于替换文本中的 ${...} 占位符；meta 段落总会以 "meta" 键提供。
	Data map[string]any
}

// Typesetter 负责根据字体与宽度约束将文本拆成可绘制的行。
// 约定：width/fontSize/lineHeight 入参与返回的行高均为毫米（mm）。
type Typesetter interface {
	LayoutLines(content string, width float64, font FontResource, fontSize, lineHeight float64) ([]TextLine, error)
}
