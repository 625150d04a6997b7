// Package metrics 提供不依赖字体文件的文本宽度估算，以及带 LRU 缓存的测量装饰器。
package metrics

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"

	"github.com/ByLCY/actprint/layout"
)

// 字符宽度以 em（字号）的比例表示。
const (
	defaultAverage    = 0.5
	defaultNarrow     = 0.28
	defaultUpper      = 0.66
	defaultWide       = 1.0
	defaultBoldFactor = 1.06
)

const narrowLetters = "fijlrtI1|.,:;'!`"

// Estimator 按 Unicode 宽度类别估算文本宽度，实现 layout.TextMetrics。
// 适用于没有字体文件的环境；零值不可用，请使用 NewEstimator。
type Estimator struct {
	Average    float64
	Narrow     float64
	Upper      float64
	Wide       float64
	BoldFactor float64
}

var _ layout.TextMetrics = (*Estimator)(nil)

// NewEstimator 返回使用默认比例的估算器。
func NewEstimator() *Estimator {
	return &Estimator{
		Average:    defaultAverage,
		Narrow:     defaultNarrow,
		Upper:      defaultUpper,
		Wide:       defaultWide,
		BoldFactor: defaultBoldFactor,
	}
}

// Measure 返回文本宽度（twip）。文本先做 NFC 规范化，组合附加符号不占宽度。
func (e *Estimator) Measure(text string, font layout.FontAttrs) (float64, error) {
	em, err := e.em(font)
	if err != nil {
		return 0, err
	}
	return e.measure(text, font, em), nil
}

// SymbolWidth 返回一个平均字符的宽度（twip），用于把溢出宽度换算为字符数。
func (e *Estimator) SymbolWidth(font layout.FontAttrs) (float64, error) {
	em, err := e.em(font)
	if err != nil {
		return 0, err
	}
	w := em * e.Average
	if font.Bold {
		w *= e.BoldFactor
	}
	return w, nil
}

// WrapLines 按估算宽度折行。
func (e *Estimator) WrapLines(text string, limit float64, font layout.FontAttrs) ([]string, error) {
	em, err := e.em(font)
	if err != nil {
		return nil, err
	}
	return Wrap(text, limit, func(s string) float64 { return e.measure(s, font, em) }), nil
}

func (e *Estimator) em(font layout.FontAttrs) (float64, error) {
	if font.Size <= 0 {
		return 0, fmt.Errorf("字号 %g 无效", font.Size)
	}
	if e.Average <= 0 {
		return 0, fmt.Errorf("估算器未初始化，请使用 NewEstimator")
	}
	return font.Size * layout.TwipsPerPt, nil
}

func (e *Estimator) measure(text string, font layout.FontAttrs, em float64) float64 {
	total := 0.0
	for _, r := range norm.NFC.String(text) {
		total += e.runeWidth(r)
	}
	total *= em
	if font.Bold {
		total *= e.BoldFactor
	}
	return total
}

func (e *Estimator) runeWidth(r rune) float64 {
	switch {
	case unicode.Is(unicode.Mn, r), unicode.Is(unicode.Cf, r):
		return 0
	case unicode.IsSpace(r):
		return e.Narrow
	}
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return e.Wide
	}
	switch {
	case strings.ContainsRune(narrowLetters, r), unicode.IsPunct(r) && r != '%' && r != '&':
		return e.Narrow
	case unicode.IsUpper(r):
		return e.Upper
	}
	return e.Average
}
