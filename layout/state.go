package layout

import (
	"github.com/sirupsen/logrus"
)

// groupPhase 是记录分组的状态：idle → open（累积中）→ closing（输出下标行）→ idle。
type groupPhase int

const (
	groupIdle groupPhase = iota
	groupOpen
	groupClosing
)

func (p groupPhase) String() string {
	switch p {
	case groupIdle:
		return "idle"
	case groupOpen:
		return "open"
	case groupClosing:
		return "closing"
	default:
		return "unknown"
	}
}

// subCells 是子单元格计数器。只有在新分组打开时才会被重置。
type subCells struct {
	present  bool // 是否打开过分组
	phase    groupPhase
	count    int
	reserved bool // 本组是否已为下标预留过一个位置
}

func (s *subCells) open() { *s = subCells{present: true, phase: groupOpen} }

// single 用于签名字段：一个永远只含一个字段的分组。
func (s *subCells) single() { *s = subCells{present: true, phase: groupOpen, count: 1} }

// advance 为当前字段计数；reserve 为真且本组尚未预留时额外预留一个下标位置。
func (s *subCells) advance(reserve bool) {
	s.count++
	if reserve && !s.reserved {
		s.count++
		s.reserved = true
	}
}

func (s *subCells) closing() { s.phase = groupClosing }

func (s *subCells) suppress() { s.count = 0 }

func (s *subCells) idle() { s.phase = groupIdle }

// groupEntry 是累积缓冲中的一个字段及其单元格宽度。
type groupEntry struct {
	field *Field
	width float64
}

// RenderState 是一次排版独占的可变状态，渲染结束即丢弃。
type RenderState struct {
	doc     *Document
	section *Section
	table   *Table

	sub     subCells
	group   []groupEntry
	needSub bool

	fields    []Field
	pageWidth float64
	style     StyleConfig

	metrics TextMetrics
	values  ValueRenderer
	log     logrus.FieldLogger
}

func newRenderState(fields []Field, opts BuildOptions) *RenderState {
	doc := &Document{}
	section := doc.AddSection(opts.Style.Section)
	section.Header = SectionHeader{PageNumber: true, Align: AlignRight}

	values := opts.Values
	if values == nil {
		values = PlainValues{}
	}
	log := opts.Logger
	if log == nil {
		log = discardLogger()
	}
	return &RenderState{
		doc:       doc,
		section:   section,
		fields:    fields,
		pageWidth: opts.Style.Section.ContentWidth(),
		style:     opts.Style,
		metrics:   opts.Metrics,
		values:    values,
		log:       log,
	}
}

// SubCells 返回子单元格计数；没有打开过分组时 ok 为 false。
func (st *RenderState) SubCells() (count int, ok bool) {
	return st.sub.count, st.sub.present
}

// prevVisible 返回 index 之前最近的可见字段，隐藏字段被跳过。
func (st *RenderState) prevVisible(index int) *Field {
	for i := index - 1; i >= 0; i-- {
		if st.fields[i].Visible() {
			return &st.fields[i]
		}
	}
	return nil
}

// nextVisible 返回 index 之后最近的可见字段。
func (st *RenderState) nextVisible(index int) *Field {
	for i := index + 1; i < len(st.fields); i++ {
		if st.fields[i].Visible() {
			return &st.fields[i]
		}
	}
	return nil
}

func (st *RenderState) font(ts TextStyle) FontAttrs {
	size := ts.Size
	if size <= 0 {
		size = st.style.FontSize
	}
	return FontAttrs{Family: st.style.FontFamily, Size: size, Bold: ts.Bold, Italic: ts.Italic}
}

func (st *RenderState) run(text string, ts TextStyle) Run {
	size := ts.Size
	if size <= 0 {
		size = st.style.FontSize
	}
	return Run{Text: text, Bold: ts.Bold, Italic: ts.Italic, Size: size}
}

func (st *RenderState) subscriptRun(text string) Run {
	return Run{Text: text, Size: st.style.CommentsSize, Subscript: true}
}

// measure 返回文本宽度（twip）。空文本宽度为 0，不调用后端。
func (st *RenderState) measure(text string, font FontAttrs) (float64, error) {
	if text == "" {
		return 0, nil
	}
	w, err := st.metrics.Measure(text, font)
	if err != nil {
		return 0, &MeasurementError{Text: text, Err: err}
	}
	if w <= 0 {
		return 0, &MeasurementError{Text: text, Width: w}
	}
	return w, nil
}

// cellWidth 按宽度规格计算单元格宽度：百分比与整行取页面宽度，其余按内容测量。
func (st *RenderState) cellWidth(text string, spec SizeSpec, font FontAttrs) (float64, error) {
	switch spec.Kind {
	case SizePercent:
		return st.pageWidth * spec.Percent / 100, nil
	case SizeEndLine:
		return st.pageWidth, nil
	}
	w, err := st.measure(text, font)
	if err != nil {
		return 0, err
	}
	return w + st.style.CellPadding, nil
}

func (st *RenderState) textBreak(lines int) {
	st.section.AddTextBreak(lines, st.style.BreakSize, st.style.BreakSpacing)
}

func (st *RenderState) fieldLog(f *Field) logrus.FieldLogger {
	return st.log.WithFields(logrus.Fields{"field": f.Name, "kind": f.Kind.String()})
}
