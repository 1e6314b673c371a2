package document

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

// Monospace 是等宽排版后端：每个字符宽 Advance×字号。
// 不依赖字体文件，适合测试与没有渲染器时的溢出估算。
type Monospace struct {
	Advance float64
}

// LayoutLines 按单词贪心折行，单词超出栏宽时按字符断开。
func (m Monospace) LayoutLines(content string, width float64, _ FontResource, fontSize, lineHeight float64) ([]TextLine, error) {
	if width <= 0 {
		return nil, fmt.Errorf("monospace: 栏宽必须大于 0，实际 %g", width)
	}
	advance := m.Advance
	if advance <= 0 {
		advance = 0.5
	}
	charWidth := advance * fontSize
	perLine := int(math.Floor(width/charWidth + fitEpsilon))
	if perLine < 1 {
		perLine = 1
	}
	leading := math.Max(lineHeight-fontSize, 0)

	var lines []TextLine
	emit := func(s string, newline bool) {
		gap := leading
		if len(lines) == 0 {
			gap = 0
		}
		lines = append(lines, TextLine{
			Content:   s,
			Width:     float64(utf8.RuneCountInString(s)) * charWidth,
			Height:    fontSize,
			GapBefore: gap,
			Newline:   newline,
		})
	}

	paragraphs := strings.Split(content, "\n")
	for pi, para := range paragraphs {
		last := pi == len(paragraphs)-1
		var current []rune
		for _, word := range strings.Fields(para) {
			runes := []rune(word)
			for len(runes) > perLine {
				if len(current) > 0 {
					emit(string(current), false)
					current = nil
				}
				emit(string(runes[:perLine]), false)
				runes = runes[perLine:]
			}
			switch {
			case len(current) == 0:
				current = runes
			case len(current)+1+len(runes) <= perLine:
				current = append(append(current, ' '), runes...)
			default:
				emit(string(current), false)
				current = runes
			}
		}
		emit(string(current), !last)
	}
	return lines, nil
}
