package layout

import (
	"io"

	"github.com/sirupsen/logrus"
)

// BuildOptions 配置排版阶段所需的依赖：测量后端、取值器、样式与签名附录。
type BuildOptions struct {
	Metrics  TextMetrics
	Values   ValueRenderer
	Style    StyleConfig
	Appendix Appendix
	Logger   logrus.FieldLogger
}

// FontAttrs 描述测量所用的字体属性，Size 单位为 pt。
type FontAttrs struct {
	Family string
	Size   float64
	Bold   bool
	Italic bool
}

// TextMetrics 负责文本宽度测量与折行，宽度单位为 twip。实现必须是纯函数。
type TextMetrics interface {
	Measure(text string, font FontAttrs) (float64, error)
	SymbolWidth(font FontAttrs) (float64, error)
	WrapLines(text string, width float64, font FontAttrs) ([]string, error)
}

// ValueRenderer 将字段的原始值解析为显示文本。
type ValueRenderer interface {
	RenderValue(f *Field) (string, error)
}

// PlainValues 原样返回 Field.Value。
type PlainValues struct{}

func (PlainValues) RenderValue(f *Field) (string, error) { return f.Value, nil }

// Appendix 是文档末尾的签名附录，由外部根据 HTML 生成块。
type Appendix interface {
	Empty() bool
	Blocks(pageWidth float64) ([]Block, error)
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
