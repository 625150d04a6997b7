package layout

import (
	"fmt"
	"strconv"
	"strings"
)

// A4 纸张尺寸（twip）。
const (
	a4WidthTwip  = 11906.0
	a4HeightTwip = 16838.0
)

const (
	// DefaultSpacingTwip 是单倍行距对应的 twip 值。
	DefaultSpacingTwip = 240.0
	// DefaultCellPadding 是按内容测量的单元格额外宽度（twip）。
	DefaultCellPadding = 200.0
	// DefaultPlaceholder 是记录字段值为空时打印的占位文本（“不适用”）。
	DefaultPlaceholder = "н/п"
	// DefaultBorder 是签名附录表格的边框样式。
	DefaultBorder = "1px solid black"

	TableStyleActs  = "Раздел 1"
	TableStyleSigns = "Раздел 2"

	commentsSizeDelta = 3
)

// DocSettings 是按文档存储的原始样式设置。边距未带单位时按厘米解释。
type DocSettings struct {
	Name         string
	LeftIndent   Length
	RightIndent  Length
	TopIndent    Length
	BottomIndent Length
	LineSpacing  string
	FontFamily   string
	FontSize     float64
	Orientation  string
	Border       string
	Placeholder  *string
	CellPadding  *float64
}

// StyleConfig 是一次渲染使用的已解析样式，渲染期间只读。
type StyleConfig struct {
	Section      SectionStyle `json:"section"`
	FontFamily   string       `json:"fontFamily"`
	FontSize     float64      `json:"fontSize"`     // pt
	CommentsSize float64      `json:"commentsSize"` // 下标（注释）字号，pt
	Spacing      float64      `json:"spacing"`      // twip
	BreakSize    float64      `json:"breakSize"`
	BreakSpacing float64      `json:"breakSpacing"`
	CellPadding  float64      `json:"cellPadding"` // twip
	Placeholder  string       `json:"placeholder"`
	Border       string       `json:"border"`
}

// DefaultSettings 返回 A4 纵向、左 3cm 右 1.5cm 上下 2cm 边距、12pt 的默认设置。
func DefaultSettings() DocSettings {
	return DocSettings{
		LeftIndent:   Length{Value: 3, Unit: UnitCM},
		RightIndent:  Length{Value: 1.5, Unit: UnitCM},
		TopIndent:    Length{Value: 2, Unit: UnitCM},
		BottomIndent: Length{Value: 2, Unit: UnitCM},
		LineSpacing:  "1",
		FontFamily:   "Times New Roman",
		FontSize:     12,
	}
}

// DefaultStyle 返回 DefaultSettings 解析后的样式。
func DefaultStyle() StyleConfig {
	cfg, err := ResolveStyle(DefaultSettings())
	if err != nil {
		panic(err)
	}
	return cfg
}

// ResolveStyle 将存储的文档设置映射为渲染样式。配置错误在渲染开始前返回。
func ResolveStyle(s DocSettings) (StyleConfig, error) {
	if s.FontSize <= 0 {
		return StyleConfig{}, &ConfigurationError{Setting: "fontSize", Value: strconv.FormatFloat(s.FontSize, 'g', -1, 64)}
	}
	spacing, err := resolveLineSpacing(s.LineSpacing)
	if err != nil {
		return StyleConfig{}, err
	}

	width, height := a4WidthTwip, a4HeightTwip
	orientation := strings.ToLower(strings.TrimSpace(s.Orientation))
	switch orientation {
	case "", "portrait":
		orientation = "portrait"
	case "landscape":
		width, height = height, width
	default:
		return StyleConfig{}, &ConfigurationError{Setting: "orientation", Value: s.Orientation}
	}

	cfg := StyleConfig{
		Section: SectionStyle{
			PageWidth:    width,
			PageHeight:   height,
			MarginLeft:   s.LeftIndent.Twips(),
			MarginRight:  s.RightIndent.Twips(),
			MarginTop:    s.TopIndent.Twips(),
			MarginBottom: s.BottomIndent.Twips(),
			Orientation:  orientation,
		},
		FontFamily:   s.FontFamily,
		FontSize:     s.FontSize,
		CommentsSize: s.FontSize - commentsSizeDelta,
		Spacing:      spacing,
		BreakSize:    s.FontSize,
		BreakSpacing: spacing,
		CellPadding:  DefaultCellPadding,
		Placeholder:  DefaultPlaceholder,
		Border:       DefaultBorder,
	}
	if cfg.CommentsSize <= 0 {
		cfg.CommentsSize = s.FontSize
	}
	if s.Placeholder != nil {
		cfg.Placeholder = *s.Placeholder
	}
	if s.CellPadding != nil {
		cfg.CellPadding = *s.CellPadding
	}
	if strings.TrimSpace(s.Border) != "" {
		cfg.Border = s.Border
	}
	if err := cfg.Validate(); err != nil {
		return StyleConfig{}, err
	}
	return cfg, nil
}

// resolveLineSpacing: "1" 与 "2" 为固定映射，其余数值按线性公式 x*240-240。
func resolveLineSpacing(v string) (float64, error) {
	v = strings.TrimSpace(v)
	switch v {
	case "", "1":
		return 1, nil
	case "2":
		return DefaultSpacingTwip, nil
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", "."), 64)
	if err != nil {
		return 0, &ConfigurationError{Setting: "lineSpacing", Value: v, Err: err}
	}
	return f*DefaultSpacingTwip - DefaultSpacingTwip, nil
}

// Validate 检查样式是否可以用于排版。
func (c StyleConfig) Validate() error {
	if c.Section.PageWidth <= 0 {
		return &ConfigurationError{Setting: "pageWidth", Value: fmt.Sprint(c.Section.PageWidth)}
	}
	if c.Section.ContentWidth() <= 0 {
		return &ConfigurationError{
			Setting: "margins",
			Value:   fmt.Sprintf("%g+%g", c.Section.MarginLeft, c.Section.MarginRight),
			Err:     fmt.Errorf("左右边距之和不小于页面宽度 %g", c.Section.PageWidth),
		}
	}
	if c.FontSize <= 0 {
		return &ConfigurationError{Setting: "fontSize", Value: fmt.Sprint(c.FontSize)}
	}
	if c.CellPadding < 0 {
		return &ConfigurationError{Setting: "cellPadding", Value: fmt.Sprint(c.CellPadding)}
	}
	return nil
}
