package binding

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/ByLCY/actprint/layout"
)

var exprPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Interpolate 将文本中的 ${path.to.value} 替换为 data 中的值。
// 若 data 为空或路径不存在，则返回原占位符。
func Interpolate(text string, data any) string {
	return interpolate(text, data, func(match string) string { return match })
}

func interpolate(text string, data any, missing func(match string) string) string {
	if data == nil {
		return text
	}
	return exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := exprPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return missing(match)
		}
		path := strings.TrimSpace(groups[1])
		if path == "" {
			return missing(match)
		}
		if val, ok := resolvePath(data, path); ok {
			return formatScalar(val)
		}
		return missing(match)
	})
}

// Values 把字段的值表达式绑定到 JSON 数据模型，实现 layout.ValueRenderer。
// 没有数据模型时占位符都打印为空，字面文本原样保留。
type Values struct {
	Data any
	// KeepMissing 为真时保留无法解析的占位符，便于排查模板。
	KeepMissing bool
}

// RenderValue 解析字段的值表达式。
func (v Values) RenderValue(f *layout.Field) (string, error) {
	missing := func(string) string { return "" }
	if v.KeepMissing {
		missing = func(match string) string { return match }
	}
	if v.Data == nil {
		return strings.TrimSpace(exprPattern.ReplaceAllStringFunc(f.Value, missing)), nil
	}
	return strings.TrimSpace(interpolate(f.Value, v.Data, missing)), nil
}

// ExpandRows 为带 RowsPath 的 table 字段从数据模型生成数据行，返回新的字段序列。
func (v Values) ExpandRows(fields []layout.Field) ([]layout.Field, error) {
	out := slices.Clone(fields)
	if v.Data == nil {
		return out, nil
	}
	for i := range out {
		f := &out[i]
		if f.RowsPath == "" {
			continue
		}
		raw, ok := resolvePath(v.Data, f.RowsPath)
		if !ok {
			continue
		}
		items, ok := raw.([]any)
		if !ok {
			return nil, fmt.Errorf("字段 %q 的数据行 %s 不是数组", f.Name, f.RowsPath)
		}
		rows := make([]layout.Row, 0, len(items))
		for idx, item := range items {
			obj, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("字段 %q 的第 %d 行不是对象", f.Name, idx)
			}
			row := layout.Row{Values: make(map[string]string, len(obj))}
			for k, val := range obj {
				row.Values[k] = formatScalar(val)
			}
			rows = append(rows, row)
		}
		f.Rows = append(slices.Clone(f.Rows), rows...)
	}
	return out, nil
}

// LoadJSON 读取 JSON 数据模型；path 为空时返回 nil。
func LoadJSON(path string) (any, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取数据文件 %s 失败: %w", path, err)
	}
	return DecodeJSON(raw)
}

// DecodeJSON 解析 JSON 数据模型。
func DecodeJSON(raw []byte) (any, error) {
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("解析数据 JSON 失败: %w", err)
	}
	return data, nil
}

func formatScalar(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		if v {
			return "да"
		}
		return "нет"
	default:
		return fmt.Sprint(v)
	}
}

func resolvePath(data any, path string) (any, bool) {
	current := data
	segments := strings.Split(path, ".")
	for _, segment := range segments {
		name, indexes := parseSegment(segment)
		if name != "" {
			var ok bool
			current, ok = descendMap(current, name)
			if !ok {
				return nil, false
			}
		}
		for _, idxStr := range indexes {
			idx, err := strconv.Atoi(idxStr)
			if err != nil {
				return nil, false
			}
			var ok bool
			current, ok = descendArray(current, idx)
			if !ok {
				return nil, false
			}
		}
	}
	return current, true
}

func parseSegment(segment string) (string, []string) {
	name := segment
	indexes := []string{}
	if i := strings.Index(segment, "["); i != -1 {
		name = segment[:i]
		rest := segment[i:]
		for len(rest) > 0 {
			if rest[0] != '[' {
				break
			}
			end := strings.IndexByte(rest, ']')
			if end == -1 {
				break
			}
			indexes = append(indexes, rest[1:end])
			rest = rest[end+1:]
		}
	}
	return name, indexes
}

func descendMap(current any, key string) (any, bool) {
	switch c := current.(type) {
	case map[string]any:
		val, ok := c[key]
		return val, ok
	default:
		return nil, false
	}
}

func descendArray(current any, idx int) (any, bool) {
	switch c := current.(type) {
	case []any:
		if idx < 0 || idx >= len(c) {
			return nil, false
		}
		return c[idx], true
	default:
		return nil, false
	}
}
