package layout

import (
	"errors"
	"fmt"
)

// ErrNoMetrics 表示未注入 TextMetrics。
var ErrNoMetrics = errors.New("layout: 缺少文本测量后端 TextMetrics")

// ConfigurationError 表示样式配置无法解析，渲染开始前即失败。
type ConfigurationError struct {
	Setting string
	Value   string
	Err     error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("样式配置 %s=%q 无效: %v", e.Setting, e.Value, e.Err)
	}
	return fmt.Sprintf("样式配置 %s=%q 无效", e.Setting, e.Value)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// MeasurementError 表示测量后端失败或返回了非正宽度。测量是纯函数，不重试。
type MeasurementError struct {
	Text  string
	Width float64
	Err   error
}

func (e *MeasurementError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("测量文本 %q 失败: %v", e.Text, e.Err)
	}
	return fmt.Sprintf("测量文本 %q 得到非正宽度 %g", e.Text, e.Width)
}

func (e *MeasurementError) Unwrap() error { return e.Err }

// StructuralError 表示字段结构自相矛盾，例如自定义编号却没有任何可用序号。
type StructuralError struct {
	Field  string
	Reason string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("字段 %q 结构不一致: %s", e.Field, e.Reason)
}
