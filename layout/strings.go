package layout

import (
	"fmt"
)

// gridSpanTwo 是续行单元格横跨的列数（标题列与值列）。
const gridSpanTwo = 2

// layoutString 把 table 类字段打印为“标题-值”字符串：先换一行并打开一张单行表格，
// 再按字段的对齐策略排列单元格。
func layoutString(st *RenderState, f *Field) error {
	st.textBreak(oneLineBreak)
	st.table = st.section.AddTable("")
	st.table.AddRow()

	var err error
	switch f.Strategy {
	case StrategyEnum:
		_, err = layoutEnum(st, f)
	case StrategyInterlinear:
		err = layoutInterlinear(st, f)
	case StrategyInterlinearInColumn:
		err = layoutInterlinearInColumn(st, f)
	case StrategyNewlineInterlinear:
		err = layoutNewlineInterlinear(st, f)
	default:
		return fmt.Errorf("未知的对齐策略 %d", f.Strategy)
	}
	return err
}

// enumMeasure 是 enum 类策略共用的测量结果，宽度均为 twip。
type enumMeasure struct {
	value  string
	titleW float64
	valueW float64
	align  Align
}

// measureEnum 以内容宽度测量标题与值；原标题宽度规格只用于决定标题对齐。
// 字符串排版使用测得的原始宽度，不加单元格内边距，拆分判断与宽度换算都基于它。
func measureEnum(st *RenderState, f *Field) (enumMeasure, error) {
	m := enumMeasure{align: AlignDefault}
	if f.TitleSize.Kind == SizeLeft {
		m.align = AlignLeft
	}
	value, err := st.values.RenderValue(f)
	if err != nil {
		return m, fmt.Errorf("取值失败: %w", err)
	}
	m.value = value
	if m.titleW, err = st.measure(f.Name, st.font(f.TitleStyle)); err != nil {
		return m, err
	}
	if m.valueW, err = st.measure(value, st.font(f.ValueStyle)); err != nil {
		return m, err
	}
	return m, nil
}

// splitValue 在值宽度超过页面宽度时把值拆成两段；否则 ok 为 false。
// 多出的宽度按单个字符的估计宽度换算为字符数，切分以 rune 为单位。
func (st *RenderState) splitValue(value string, valueW float64, font FontAttrs) (first, second string, ok bool, err error) {
	if valueW <= st.pageWidth {
		return "", "", false, nil
	}
	symbol, err := st.metrics.SymbolWidth(font)
	if err != nil {
		return "", "", false, &MeasurementError{Text: value, Err: err}
	}
	if symbol <= 0 {
		return "", "", false, &MeasurementError{Text: value, Width: symbol}
	}
	first, second = splitRunes(value, valueW-st.pageWidth, symbol)
	return first, second, true, nil
}

// splitRunes 从末尾切下 overflow/symbol 个字符。多出的字符数不少于文本长度时第一段为空，
// 整个值进入续行，文本不会丢失。
func splitRunes(value string, overflow, symbol float64) (string, string) {
	runes := []rune(value)
	if len(runes) == 0 {
		return "", ""
	}
	cut := int(float64(len(runes)) - overflow/symbol)
	cut = max(0, min(cut, len(runes)-1))
	return string(runes[:cut]), string(runes[cut:])
}

// layoutEnum：标题与值并排；值过宽时剩余部分放到第二行，横跨两列。
func layoutEnum(st *RenderState, f *Field) (enumMeasure, error) {
	m, err := measureEnum(st, f)
	if err != nil {
		return m, err
	}
	first, second, split, err := st.splitValue(m.value, m.valueW, st.font(f.ValueStyle))
	if err != nil {
		return m, err
	}

	text, valueW, border := m.value, m.valueW, BorderLine
	switch {
	case split:
		text, border = first, BorderNone
		st.fieldLog(f).WithField("cut", len([]rune(first))).Debug("值超出页面宽度，拆分为两行")
	case m.titleW < st.pageWidth:
		valueW = st.pageWidth - m.titleW
	}

	row := st.table.LastRow()
	row.AddCell(m.titleW, BorderNone).AddText(st.run(f.Name, f.TitleStyle), m.align)
	row.AddCell(valueW, border).AddText(st.run(text, f.ValueStyle), AlignDefault)

	if split {
		cell := st.table.AddRow().AddCell(m.titleW, BorderLine)
		cell.GridSpan = gridSpanTwo
		cell.AddText(st.run(second, f.ValueStyle), AlignDefault)
	}
	return m, nil
}

// layoutInterlinear 在 enum 之后追加一行下标：值未占满页面时先放一个与标题同宽的空白单元格。
func layoutInterlinear(st *RenderState, f *Field) error {
	m, err := layoutEnum(st, f)
	if err != nil {
		return err
	}
	row := st.table.AddRow()
	span := gridSpanTwo
	if m.valueW < st.pageWidth {
		row.AddCell(m.titleW, BorderNone).AddText(st.subscriptRun(""), AlignCenter)
		span = 0
	}
	cell := row.AddCell(st.pageWidth, BorderNone)
	cell.GridSpan = span
	cell.AddText(st.subscriptRun(f.SubscriptText), AlignCenter)
	return nil
}

// layoutInterlinearInColumn 按纸宽折行标题，用最后一行的宽度换算值单元格的百分比，
// 之后交给通用的单字段记录渲染。
func layoutInterlinearInColumn(st *RenderState, f *Field) error {
	g := *f
	g.ColumnsAlign = f.TitleSize.Kind
	g.TitleSize = Content()

	font := st.font(f.TitleStyle)
	lines, err := st.metrics.WrapLines(f.Name, st.pageWidth, font)
	if err != nil {
		return &MeasurementError{Text: f.Name, Width: st.pageWidth, Err: err}
	}
	last := ""
	if len(lines) > 0 {
		last = lines[len(lines)-1]
	}
	lastW, err := st.measure(last, font)
	if err != nil {
		return err
	}

	g.ShowValue = true
	g.ValueSize = Percent(max(0, 100*(st.pageWidth-lastW)/st.pageWidth))
	_, err = recordCell(st, &g, recordPlain)
	return err
}

// layoutNewlineInterlinear：标题与值各占一整行，二者总是打印。
func layoutNewlineInterlinear(st *RenderState, f *Field) error {
	g := *f
	g.ColumnsAlign = f.TitleSize.Kind
	g.TitleSize = EndLine()
	g.ValueSize = EndLine()
	g.ShowTitle = true
	g.ShowValue = true
	_, err := recordCell(st, &g, recordPlain)
	return err
}
