package binding

import (
	"fmt"
	"regexp"
	"strings"
)

var exprPattern = regexp.MustCompile(`\$\{\s*([A-Za-z_][A-Za-z0-9_.-]*)\s*\}`)

// Interpolate 将文本中的 ${meta.title} 之类的占位符替换为 data 中的值。
// 路径不存在时保留原占位符，方便在排版结果中发现遗漏的字段。
func Interpolate(text string, data map[string]any) string {
	if len(data) == 0 || !strings.Contains(text, "${") {
		return text
	}
	return exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := exprPattern.FindStringSubmatch(match)
		if val, ok := Lookup(data, groups[1]); ok {
			return fmt.Sprint(val)
		}
		return match
	})
}

// Lookup 沿点分路径在嵌套 map 中取值。
func Lookup(data map[string]any, path string) (any, bool) {
	var current any = data
	for _, segment := range strings.Split(path, ".") {
		switch m := current.(type) {
		case map[string]any:
			v, ok := m[segment]
			if !ok {
				return nil, false
			}
			current = v
		case map[string]string:
			v, ok := m[segment]
			if !ok {
				return nil, false
			}
			current = v
		default:
			return nil, false
		}
	}
	return current, true
}

// Placeholders 返回文本中出现的全部路径，按出现顺序去重。
func Placeholders(text string) []string {
	var out []string
	seen := map[string]bool{}
	for _, m := range exprPattern.FindAllStringSubmatch(text, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			out = append(out, m[1])
		}
	}
	return out
}
