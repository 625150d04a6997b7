package canvasrenderer

import (
	"bytes"
	"testing"

	"github.com/ByLCY/actprint/fonts"
	"github.com/ByLCY/actprint/layout"
)

// newTestRenderer 在没有任何衬线字体的环境中跳过测试。
func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	if _, err := fonts.NewLocator().Find("Times New Roman", false, false); err != nil {
		t.Skipf("本机没有可用字体: %v", err)
	}
	return NewRenderer(Options{FontSize: 12, Title: "test"})
}

var body = layout.FontAttrs{Family: "Times New Roman", Size: 12}

func TestMeasureIsMonotonic(t *testing.T) {
	r := newTestRenderer(t)
	short, err := r.Measure("Акт", body)
	if err != nil {
		t.Fatalf("Measure 失败: %v", err)
	}
	long, err := r.Measure("Акт проверки", body)
	if err != nil {
		t.Fatalf("Measure 失败: %v", err)
	}
	if short <= 0 || long <= short {
		t.Fatalf("宽度应为正且随文本增长: %g %g", short, long)
	}
	symbol, err := r.SymbolWidth(body)
	if err != nil || symbol <= 0 || symbol >= long {
		t.Fatalf("SymbolWidth = %g, %v", symbol, err)
	}
}

func TestMeasureRejectsZeroSize(t *testing.T) {
	r := NewRenderer(Options{})
	if _, err := r.Measure("x", layout.FontAttrs{}); err == nil {
		t.Fatalf("字号为 0 时应返回错误")
	}
}

func TestWrapLinesHonorsNewlines(t *testing.T) {
	r := newTestRenderer(t)
	lines, err := r.WrapLines("foo\n\nbar", 10000, body)
	if err != nil {
		t.Fatalf("WrapLines 失败: %v", err)
	}
	if len(lines) != 3 || lines[1] != "" {
		t.Fatalf("应保留空行: %q", lines)
	}
}

func TestWrapLinesWidthLimit(t *testing.T) {
	r := newTestRenderer(t)
	limit := 1500.0
	lines, err := r.WrapLines("слово слово слово слово слово слово слово", limit, body)
	if err != nil {
		t.Fatalf("WrapLines 失败: %v", err)
	}
	if len(lines) < 2 {
		t.Fatalf("应折成多行, got %d", len(lines))
	}
	for i, ln := range lines {
		w, _ := r.Measure(ln, body)
		if w-limit > 1e-6 {
			t.Fatalf("第 %d 行超出宽度: %g > %g", i, w, limit)
		}
	}
}

func TestRenderProducesPDF(t *testing.T) {
	r := newTestRenderer(t)
	style := layout.DefaultStyle()
	doc := &layout.Document{}
	section := doc.AddSection(style.Section)
	section.Header = layout.SectionHeader{PageNumber: true, Align: layout.AlignRight}
	section.AddParagraph(&layout.Paragraph{Runs: []layout.Run{{Text: "Акт проверки", Bold: true}}, Align: layout.AlignCenter})
	section.AddTextBreak(1, 12, 240)
	table := section.AddTable(layout.TableStyleActs)
	row := table.AddRow()
	row.AddCell(3000, layout.BorderNone).AddText(layout.Run{Text: "Дата"}, layout.AlignLeft)
	row.AddCell(12000, layout.BorderLine).AddText(layout.Run{Text: "01.02.2024", Italic: true}, layout.AlignDefault)
	for range 120 {
		section.AddTextBreak(1, 12, 240)
	}

	out, err := r.Render(doc)
	if err != nil {
		t.Fatalf("Render 失败: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatalf("输出不是 PDF")
	}
}

func TestRenderRejectsEmptyDocument(t *testing.T) {
	r := NewRenderer(Options{})
	if _, err := r.Render(nil); err == nil {
		t.Fatalf("nil 文档应返回错误")
	}
	if _, err := r.Render(&layout.Document{}); err == nil {
		t.Fatalf("没有节的文档应返回错误")
	}
}

func TestSplitTokens(t *testing.T) {
	got := splitTokens("ab  cd\nef")
	want := []string{"ab", "  ", "cd", "\n", "ef"}
	if len(got) != len(want) {
		t.Fatalf("记号数不符: %q", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("第 %d 个记号不符: %q", i, got)
		}
	}
}
