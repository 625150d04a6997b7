package layout

// 该文件定义排版输出树：节、段落、换行、表格、行、单元格与带样式的文本片段。
// 宽度与间距统一使用 twip。树由 Build 逐步追加，之后交给独立的序列化器。

// Document 是一次排版的完整结果。
type Document struct {
	Sections []*Section `json:"sections"`
}

// SectionStyle 记录页面尺寸与边距（twip）。
type SectionStyle struct {
	PageWidth    float64 `json:"pageWidth"`
	PageHeight   float64 `json:"pageHeight"`
	MarginLeft   float64 `json:"marginLeft"`
	MarginRight  float64 `json:"marginRight"`
	MarginTop    float64 `json:"marginTop"`
	MarginBottom float64 `json:"marginBottom"`
	Orientation  string  `json:"orientation"`
}

// ContentWidth 返回去掉左右边距后的可用宽度。
func (s SectionStyle) ContentWidth() float64 {
	return s.PageWidth - s.MarginLeft - s.MarginRight
}

// SectionHeader 描述每页重复的页眉。
type SectionHeader struct {
	PageNumber bool  `json:"pageNumber"`
	Align      Align `json:"align,omitempty"`
}

// Section 是输出游标：所有组件都只向其末尾追加块。
type Section struct {
	Style  SectionStyle  `json:"style"`
	Header SectionHeader `json:"header"`
	Blocks []Block       `json:"blocks"`
}

// Block 只设置其中一个字段。
type Block struct {
	Paragraph *Paragraph `json:"paragraph,omitempty"`
	Break     *TextBreak `json:"break,omitempty"`
	Table     *Table     `json:"table,omitempty"`
}

// Kind 返回块的类型名称。
func (b Block) Kind() string {
	switch {
	case b.Paragraph != nil:
		return "paragraph"
	case b.Break != nil:
		return "break"
	case b.Table != nil:
		return "table"
	default:
		return "unknown"
	}
}

// Align 是段落水平对齐方式。
type Align string

const (
	AlignDefault Align = ""
	AlignLeft    Align = "left"
	AlignCenter  Align = "center"
	AlignRight   Align = "right"
	AlignBoth    Align = "both"
)

// Run 是一段带样式的文本。
type Run struct {
	Text      string  `json:"text"`
	Bold      bool    `json:"bold,omitempty"`
	Italic    bool    `json:"italic,omitempty"`
	Size      float64 `json:"size,omitempty"` // pt
	Subscript bool    `json:"subscript,omitempty"`
}

// Paragraph 由若干 Run 组成。
type Paragraph struct {
	Runs        []Run   `json:"runs"`
	Align       Align   `json:"align,omitempty"`
	SpaceBefore float64 `json:"spaceBefore,omitempty"`
	SpaceAfter  float64 `json:"spaceAfter,omitempty"`
	Spacing     float64 `json:"spacing,omitempty"`
}

// Text 拼接段落内全部文本。
func (p *Paragraph) Text() string {
	if p == nil {
		return ""
	}
	s := ""
	for _, r := range p.Runs {
		s += r.Text
	}
	return s
}

// TextBreak 是若干空行。
type TextBreak struct {
	Lines   int     `json:"lines"`
	Size    float64 `json:"size,omitempty"`
	Spacing float64 `json:"spacing,omitempty"`
}

// Border 是单元格边框样式。
type Border string

const (
	BorderNone   Border = "none"   // 无边框
	BorderLine   Border = "line"   // 仅下划线（填写栏）
	BorderSingle Border = "single" // 四周实线
)

// Table 是一张表格。表格句柄在分组开始时被替换，而不是修改。
type Table struct {
	Style     string      `json:"style,omitempty"`
	MarginTop bool        `json:"marginTop,omitempty"`
	Rows      []*TableRow `json:"rows"`
}

// TableRow 是表格中的一行。
type TableRow struct {
	Cells []*Cell `json:"cells"`
}

// Cell 是一个单元格，Width 为首选宽度（twip）。
type Cell struct {
	Width      float64      `json:"width"`
	Border     Border       `json:"border"`
	GridSpan   int          `json:"gridSpan,omitempty"`
	Paragraphs []*Paragraph `json:"paragraphs"`
}

// Text 拼接单元格内全部文本。
func (c *Cell) Text() string {
	if c == nil {
		return ""
	}
	s := ""
	for i, p := range c.Paragraphs {
		if i > 0 {
			s += "\n"
		}
		s += p.Text()
	}
	return s
}

// AddSection 追加一个新节。
func (d *Document) AddSection(style SectionStyle) *Section {
	s := &Section{Style: style}
	d.Sections = append(d.Sections, s)
	return s
}

// AddParagraph 在节末尾追加段落。
func (s *Section) AddParagraph(p *Paragraph) *Paragraph {
	s.Blocks = append(s.Blocks, Block{Paragraph: p})
	return p
}

// AddTextBreak 追加 lines 行空行。
func (s *Section) AddTextBreak(lines int, size, spacing float64) {
	s.Blocks = append(s.Blocks, Block{Break: &TextBreak{Lines: lines, Size: size, Spacing: spacing}})
}

// AddTable 追加一张新表格并返回其句柄。
func (s *Section) AddTable(style string) *Table {
	t := &Table{Style: style}
	s.Blocks = append(s.Blocks, Block{Table: t})
	return t
}

// AddBlocks 原样追加外部生成的块（例如签名附录）。
func (s *Section) AddBlocks(blocks ...Block) {
	s.Blocks = append(s.Blocks, blocks...)
}

// Tables 返回节内所有表格，便于检查与测试。
func (s *Section) Tables() []*Table {
	var out []*Table
	for _, b := range s.Blocks {
		if b.Table != nil {
			out = append(out, b.Table)
		}
	}
	return out
}

// AddRow 追加一行。
func (t *Table) AddRow() *TableRow {
	r := &TableRow{}
	t.Rows = append(t.Rows, r)
	return r
}

// LastRow 返回最后一行；表格为空时新建一行。
func (t *Table) LastRow() *TableRow {
	if len(t.Rows) == 0 {
		return t.AddRow()
	}
	return t.Rows[len(t.Rows)-1]
}

// AddCell 追加一个单元格。
func (r *TableRow) AddCell(width float64, border Border) *Cell {
	c := &Cell{Width: width, Border: border}
	r.Cells = append(r.Cells, c)
	return c
}

// Width 返回行内单元格首选宽度之和。
func (r *TableRow) Width() float64 {
	w := 0.0
	for _, c := range r.Cells {
		w += c.Width
	}
	return w
}

// AddText 在单元格内追加一个只含单个 Run 的段落。
func (c *Cell) AddText(run Run, align Align) *Paragraph {
	p := &Paragraph{Runs: []Run{run}, Align: align}
	c.Paragraphs = append(c.Paragraphs, p)
	return p
}
