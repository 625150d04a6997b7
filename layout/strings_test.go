package layout

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func stringField(strategy Strategy, name, value string) Field {
	return Field{
		Kind:      KindTable,
		Print:     PrintAsString,
		Strategy:  strategy,
		Name:      name,
		ShowTitle: true,
		ShowValue: true,
		Value:     value,
	}
}

func TestSplitRunesReconstruction(t *testing.T) {
	cases := []struct {
		value     string
		overflow  float64
		wantFirst string
	}{
		{value: "абвгд", overflow: 200, wantFirst: "абв"},
		{value: "abc", overflow: 0.5, wantFirst: "ab"},
		// 多出的字符数超过文本长度：第一段为空，整个值进入续行。
		{value: "abc", overflow: 1000, wantFirst: ""},
		{value: "Объект защиты: склад №3", overflow: 950, wantFirst: "Объект защиты"},
	}
	for _, tc := range cases {
		first, second := splitRunes(tc.value, tc.overflow, 100)
		if first != tc.wantFirst {
			t.Fatalf("%q 溢出 %g: 第一段期望 %q，实际 %q", tc.value, tc.overflow, tc.wantFirst, first)
		}
		if first+second != tc.value {
			t.Fatalf("%q: 两段拼接 %q+%q 与原值不等", tc.value, first, second)
		}
		if second == "" {
			t.Fatalf("%q: 拆分后第二段不应为空", tc.value)
		}
	}
}

func TestSplitValuePurity(t *testing.T) {
	st := newRenderState(nil, BuildOptions{
		Metrics: stubMetrics{perRune: 100, symbolErr: errors.New("不应调用")},
		Style:   testStyle(2000),
	})
	for range 3 {
		first, second, ok, err := st.splitValue("короткое", 800, FontAttrs{Size: 12})
		if err != nil || ok || first != "" || second != "" {
			t.Fatalf("未超宽时不应拆分: %q %q %v %v", first, second, ok, err)
		}
	}
	_, _, _, err := st.splitValue("длинное", 2500, FontAttrs{Size: 12})
	var mErr *MeasurementError
	if !errors.As(err, &mErr) {
		t.Fatalf("字符宽度失败应返回 MeasurementError，实际 %v", err)
	}
}

func TestEnumNoSplitRecomputesValueWidth(t *testing.T) {
	// 标题 1000 twip，值 500 twip，可用宽度 2000 twip。
	f := stringField(StrategyEnum, strings.Repeat("Т", 10), strings.Repeat("з", 5))
	doc := buildDoc(t, []Field{f}, 2000)
	sec := doc.Sections[0]
	if diff := cmp.Diff([]string{"break", "table", "break"}, blockKinds(sec)); diff != "" {
		t.Fatalf("块序列不符 (-want +got):\n%s", diff)
	}
	tbl := sec.Tables()[0]
	if len(tbl.Rows) != 1 {
		t.Fatalf("未拆分时只应有一行，实际 %d", len(tbl.Rows))
	}
	if diff := cmp.Diff([]float64{1000, 1000}, rowWidths(tbl.Rows[0])); diff != "" {
		t.Fatalf("单元格宽度不符 (-want +got):\n%s", diff)
	}
	cells := tbl.Rows[0].Cells
	if cells[0].Border != BorderNone || cells[1].Border != BorderLine {
		t.Fatalf("边框不符: %q %q", cells[0].Border, cells[1].Border)
	}
}

func buildPadded(t *testing.T, fields []Field, width float64) *Document {
	t.Helper()
	style := testStyle(width)
	style.CellPadding = DefaultCellPadding
	doc, err := Build(fields, BuildOptions{Metrics: stubMetrics{perRune: 100}, Style: style})
	if err != nil {
		t.Fatalf("排版失败: %v", err)
	}
	return doc
}

func TestEnumWidthsIgnoreCellPadding(t *testing.T) {
	doc := buildPadded(t, []Field{stringField(StrategyEnum, strings.Repeat("Т", 10), strings.Repeat("з", 5))}, 2000)
	tbl := doc.Sections[0].Tables()[0]
	if len(tbl.Rows) != 1 {
		t.Fatalf("未拆分时只应有一行，实际 %d", len(tbl.Rows))
	}
	if diff := cmp.Diff([]float64{1000, 1000}, rowWidths(tbl.Rows[0])); diff != "" {
		t.Fatalf("单元格宽度不符 (-want +got):\n%s", diff)
	}
}

func TestEnumFittingValueNotSplitWithPadding(t *testing.T) {
	// 值 1900 twip，不超过可用宽度 2000 twip。
	value := strings.Repeat("з", 19)
	doc := buildPadded(t, []Field{stringField(StrategyEnum, strings.Repeat("Т", 10), value)}, 2000)
	tbl := doc.Sections[0].Tables()[0]
	if len(tbl.Rows) != 1 {
		t.Fatalf("未超宽的值不应拆分，实际 %d 行", len(tbl.Rows))
	}
	if got := tbl.Rows[0].Cells[1].Text(); got != value {
		t.Fatalf("值应完整打印: %q", got)
	}
	for _, w := range rowWidths(tbl.Rows[0]) {
		if w > 2000 {
			t.Fatalf("单元格不应宽于页面: %v", rowWidths(tbl.Rows[0]))
		}
	}
}

func TestInterlinearSpacerWithPadding(t *testing.T) {
	f := stringField(StrategyInterlinear, strings.Repeat("Т", 10), strings.Repeat("з", 19))
	f.SubscriptText = "(адрес)"
	doc := buildPadded(t, []Field{f}, 2000)
	rows := doc.Sections[0].Tables()[0].Rows
	if len(rows) != 2 {
		t.Fatalf("期望值行与下标行，实际 %d 行", len(rows))
	}
	if diff := cmp.Diff([]string{"", "(адрес)"}, rowTexts(rows[1])); diff != "" {
		t.Fatalf("值未占满页面时应有空白占位单元格 (-want +got):\n%s", diff)
	}
}

func TestEnumSplitsOverflowingValue(t *testing.T) {
	value := strings.Repeat("ab", 15)
	doc := buildDoc(t, []Field{stringField(StrategyEnum, "Итог", value)}, 2000)
	tbl := doc.Sections[0].Tables()[0]
	if len(tbl.Rows) != 2 {
		t.Fatalf("超宽的值应拆成两行，实际 %d", len(tbl.Rows))
	}
	first := tbl.Rows[0].Cells[1]
	second := tbl.Rows[1].Cells[0]
	if first.Border != BorderNone {
		t.Fatalf("拆分后第一段不应带下划线，实际 %q", first.Border)
	}
	// 值 3000 超出 1000，即 10 个字符。
	if got := first.Text(); got != value[:20] {
		t.Fatalf("第一段不符: %q", got)
	}
	if first.Text()+second.Text() != value {
		t.Fatalf("两段拼接应等于原值")
	}
	if second.GridSpan != 2 || second.Width != 400 || second.Border != BorderLine {
		t.Fatalf("续行单元格应从标题宽度起横跨两列: %+v", second)
	}
}

func TestEnumEmptyValueKeepsCell(t *testing.T) {
	doc := buildDoc(t, []Field{stringField(StrategyEnum, "Примечание", "")}, 2000)
	row := doc.Sections[0].Tables()[0].Rows[0]
	if diff := cmp.Diff([]string{"Примечание", ""}, rowTexts(row)); diff != "" {
		t.Fatalf("空值也应保留单元格 (-want +got):\n%s", diff)
	}
}

func TestInterlinearSubscriptRow(t *testing.T) {
	f := stringField(StrategyInterlinear, "Адрес", "ул. Ленина")
	f.SubscriptText = "(место нахождения)"
	doc := buildDoc(t, []Field{f}, 3000)
	tbl := doc.Sections[0].Tables()[0]
	if len(tbl.Rows) != 2 {
		t.Fatalf("期望值行加下标行，实际 %d 行", len(tbl.Rows))
	}
	sub := tbl.Rows[1]
	if diff := cmp.Diff([]string{"", "(место нахождения)"}, rowTexts(sub)); diff != "" {
		t.Fatalf("下标行不符 (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{500, 3000}, rowWidths(sub)); diff != "" {
		t.Fatalf("下标行宽度不符 (-want +got):\n%s", diff)
	}
	if sub.Cells[1].GridSpan != 0 || !sub.Cells[1].Paragraphs[0].Runs[0].Subscript {
		t.Fatalf("下标单元格格式不符: %+v", sub.Cells[1])
	}
}

func TestInterlinearWideValueSpansTwoColumns(t *testing.T) {
	f := stringField(StrategyInterlinear, "Адрес", strings.Repeat("д", 40))
	f.SubscriptText = "(адрес)"
	doc := buildDoc(t, []Field{f}, 3000)
	tbl := doc.Sections[0].Tables()[0]
	if len(tbl.Rows) != 3 {
		t.Fatalf("拆分后应有两行值加一行下标，实际 %d 行", len(tbl.Rows))
	}
	sub := tbl.Rows[2]
	if len(sub.Cells) != 1 || sub.Cells[0].GridSpan != 2 {
		t.Fatalf("值占满页面时下标单元格应横跨两列: %+v", sub.Cells)
	}
}

func TestInterlinearInColumnUsesLastTitleLine(t *testing.T) {
	// 标题按 20 个字符折行，最后一行 5 个字符 = 500，值占剩余的 75%。
	f := stringField(StrategyInterlinearInColumn, strings.Repeat("н", 25), "")
	f.ShowValue = false
	f.TitleSize = SizeSpec{Kind: SizeLeft}

	st := newRenderState([]Field{f}, BuildOptions{Metrics: stubMetrics{perRune: 100}, Style: testStyle(2000)})
	if err := layoutString(st, &st.fields[0]); err != nil {
		t.Fatalf("排版失败: %v", err)
	}
	cell := st.table.Rows[0].Cells[0]
	if cell.Width != 2000 {
		t.Fatalf("单元格宽度应封顶为页面宽度，实际 %g", cell.Width)
	}
	p := cell.Paragraphs[0]
	if len(p.Runs) != 2 || p.Runs[1].Text != "" {
		t.Fatalf("值应被强制显示且空值不打印占位文本: %+v", p.Runs)
	}
	if p.Align != AlignLeft {
		t.Fatalf("标题对齐应来自原标题宽度规格，实际 %q", p.Align)
	}
	if st.fields[0].ShowValue {
		t.Fatalf("策略内的调整不应修改字段本身")
	}
}

func TestInterlinearInColumnShortTitle(t *testing.T) {
	f := stringField(StrategyInterlinearInColumn, "Дата", "01.02.2024")
	doc := buildDoc(t, []Field{f}, 4000)
	cell := doc.Sections[0].Tables()[0].Rows[0].Cells[0]
	// 标题 400 + 值 (4000-400)/4000 = 90% → 3600。
	if cell.Width != 4000 {
		t.Fatalf("单元格宽度不符: %g", cell.Width)
	}
	if got := cell.Text(); got != "Дата01.02.2024" {
		t.Fatalf("单元格文本不符: %q", got)
	}
}

func TestNewlineInterlinearForcesBothLines(t *testing.T) {
	f := stringField(StrategyNewlineInterlinear, "Заключение", "Нарушений не выявлено")
	f.ShowTitle = false
	doc := buildDoc(t, []Field{{}, f}, 3000)
	tbl := doc.Sections[0].Tables()[0]
	cell := tbl.Rows[0].Cells[0]
	if cell.Width != 3000 {
		t.Fatalf("整行单元格应取页面宽度，实际 %g", cell.Width)
	}
	if diff := cmp.Diff("Заключение\nНарушений не выявлено", cell.Text()); diff != "" {
		t.Fatalf("标题与值应各占一行 (-want +got):\n%s", diff)
	}
}

func TestUnknownStrategy(t *testing.T) {
	f := stringField(Strategy(42), "Поле", "x")
	if _, err := Build([]Field{f}, BuildOptions{Metrics: stubMetrics{perRune: 100}, Style: testStyle(2000)}); err == nil {
		t.Fatalf("未知策略应返回错误")
	}
}
