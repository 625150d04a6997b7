package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/color"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/actprint/fonts"
	"github.com/ByLCY/actprint/layout"
	"github.com/ByLCY/actprint/renderer"
)

const (
	tableBorderWidth = 0.2 // mm
	cellPaddingMM    = 1.0
	defaultFontSize  = 12.0
)

// Renderer 通过 github.com/tdewolff/canvas 把排版树输出为 PDF 预览，
// 同时实现 layout.TextMetrics，使测量与绘制使用同一套字形。
type Renderer struct {
	locator  *fonts.Locator
	family   string
	fontSize float64
	title    string

	fontMu       sync.Mutex
	fontFamilies map[string]*fontFamilyEntry
}

var (
	_ renderer.Renderer  = (*Renderer)(nil)
	_ layout.TextMetrics = (*Renderer)(nil)
)

// Options 配置 canvas 渲染器。
type Options struct {
	// FontDirs 为空时使用 fonts.DefaultDirs。
	FontDirs   []string
	FontFamily string
	FontSize   float64 // pt，Run 未指定字号时使用
	Title      string
}

// NewRenderer 创建渲染器。
func NewRenderer(opts Options) *Renderer {
	family := opts.FontFamily
	if family == "" {
		family = "Times New Roman"
	}
	size := opts.FontSize
	if size <= 0 {
		size = defaultFontSize
	}
	return &Renderer{
		locator:      fonts.NewLocator(opts.FontDirs...),
		family:       family,
		fontSize:     size,
		title:        opts.Title,
		fontFamilies: map[string]*fontFamilyEntry{},
	}
}

// Render 把文档的每个节按页面尺寸分页绘制并写成 PDF。
func (r *Renderer) Render(doc *layout.Document) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("排版结果为空")
	}
	if len(doc.Sections) == 0 {
		return nil, fmt.Errorf("缺少可渲染的节")
	}

	var buf bytes.Buffer
	first := doc.Sections[0].Style
	writer := pdf.New(&buf, mm(first.PageWidth), mm(first.PageHeight), nil)
	writer.SetInfo(r.title, "", "", "", "actprint")
	p := &pager{r: r, writer: writer}
	for _, section := range doc.Sections {
		if err := p.section(section); err != nil {
			return nil, err
		}
	}
	p.flush()
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

// pager 维护当前页与纵向游标（mm，左上角为原点）。
type pager struct {
	r      *Renderer
	writer *pdf.PDF

	style  layout.SectionStyle
	header layout.SectionHeader
	pages  int

	c   *canvas.Canvas
	ctx *canvas.Context
	y   float64
}

func (p *pager) section(s *layout.Section) error {
	p.style = s.Style
	p.header = s.Header
	if err := p.newPage(); err != nil {
		return err
	}
	for _, b := range s.Blocks {
		var err error
		switch {
		case b.Paragraph != nil:
			err = p.paragraph(b.Paragraph, p.left(), p.contentWidth())
		case b.Break != nil:
			err = p.textBreak(b.Break)
		case b.Table != nil:
			err = p.table(b.Table)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (p *pager) left() float64         { return mm(p.style.MarginLeft) }
func (p *pager) contentWidth() float64 { return mm(p.style.ContentWidth()) }
func (p *pager) bottom() float64       { return mm(p.style.PageHeight - p.style.MarginBottom) }

func (p *pager) flush() {
	if p.c != nil {
		p.c.RenderTo(p.writer)
		p.c = nil
	}
}

func (p *pager) newPage() error {
	w, h := mm(p.style.PageWidth), mm(p.style.PageHeight)
	if p.c != nil {
		p.flush()
		p.writer.NewPage(w, h)
	}
	p.pages++
	p.c = canvas.New(w, h)
	p.ctx = canvas.NewContext(p.c)
	p.ctx.SetCoordSystem(canvas.CartesianIV)
	p.y = mm(p.style.MarginTop)

	if p.header.PageNumber {
		face, err := p.r.fontFace(layout.FontAttrs{Family: p.r.family, Size: p.r.fontSize})
		if err != nil {
			return err
		}
		align, x := textAnchor(p.header.Align, p.left(), p.contentWidth())
		baseline := mm(p.style.MarginTop)/2 + face.Metrics().Ascent/2
		p.ctx.DrawText(x, baseline, canvas.NewTextLine(face, strconv.Itoa(p.pages), align))
	}
	return nil
}

// ensure 在剩余高度不足时换页。整页都放不下的内容直接绘制，由页面裁切。
func (p *pager) ensure(height float64) error {
	if p.y+height <= p.bottom() || p.y <= mm(p.style.MarginTop) {
		return nil
	}
	return p.newPage()
}

func (p *pager) textBreak(b *layout.TextBreak) error {
	size := b.Size
	if size <= 0 {
		size = p.r.fontSize
	}
	face, err := p.r.fontFace(layout.FontAttrs{Family: p.r.family, Size: size})
	if err != nil {
		return err
	}
	h := face.Metrics().LineHeight * float64(max(b.Lines, 0))
	if p.y+h > p.bottom() {
		return p.newPage()
	}
	p.y += h
	return nil
}

func (p *pager) paragraph(para *layout.Paragraph, x, width float64) error {
	lines, err := p.r.layoutRuns(para.Runs, width)
	if err != nil {
		return err
	}
	p.y += mm(para.SpaceBefore)
	for _, ln := range lines {
		if err := p.ensure(ln.height); err != nil {
			return err
		}
		p.drawLine(ln, para.Align, x, width, p.y)
		p.y += ln.height
	}
	p.y += mm(para.SpaceAfter)
	return nil
}

func (p *pager) drawLine(ln textLine, align layout.Align, x, width, top float64) {
	offset := 0.0
	switch align {
	case layout.AlignCenter:
		offset = (width - ln.width) / 2
	case layout.AlignRight:
		offset = width - ln.width
	}
	cursor := x + max(offset, 0)
	for _, piece := range ln.pieces {
		p.ctx.DrawText(cursor, top+ln.ascent, canvas.NewTextLine(piece.face, piece.text, canvas.Left))
		cursor += piece.width
	}
}

type cellBox struct {
	cell   *layout.Cell
	x, w   float64
	lines  [][]textLine
	aligns []layout.Align
	height float64
}

// table 逐行绘制。行宽超过可用宽度时按比例缩小，与文字处理器的自动调整一致。
func (p *pager) table(t *layout.Table) error {
	if t.MarginTop {
		p.y += p.r.lineHeight()
	}
	for _, row := range t.Rows {
		total := mm(row.Width())
		scale := 1.0
		if total > p.contentWidth() && total > 0 {
			scale = p.contentWidth() / total
		}

		boxes := make([]cellBox, 0, len(row.Cells))
		x := p.left()
		rowHeight := 0.0
		for _, cell := range row.Cells {
			w := mm(cell.Width) * scale
			box := cellBox{cell: cell, x: x, w: w}
			inner := max(w-2*cellPaddingMM, 1)
			for _, para := range cell.Paragraphs {
				lines, err := p.r.layoutRuns(para.Runs, inner)
				if err != nil {
					return err
				}
				box.lines = append(box.lines, lines)
				box.aligns = append(box.aligns, para.Align)
				for _, ln := range lines {
					box.height += ln.height
				}
			}
			box.height = max(box.height, p.r.lineHeight()) + 2*cellPaddingMM
			rowHeight = max(rowHeight, box.height)
			boxes = append(boxes, box)
			x += w
		}

		if err := p.ensure(rowHeight); err != nil {
			return err
		}
		for _, box := range boxes {
			p.drawBorder(box.cell.Border, box.x, p.y, box.w, rowHeight)
			top := p.y + cellPaddingMM
			for i, lines := range box.lines {
				for _, ln := range lines {
					p.drawLine(ln, box.aligns[i], box.x+cellPaddingMM, box.w-2*cellPaddingMM, top)
					top += ln.height
				}
			}
		}
		p.y += rowHeight
	}
	return nil
}

func (p *pager) drawBorder(b layout.Border, x, y, w, h float64) {
	p.ctx.SetStrokeColor(canvas.Black)
	p.ctx.SetStrokeWidth(tableBorderWidth)
	switch b {
	case layout.BorderSingle:
		p.ctx.SetFillColor(color.RGBA{0, 0, 0, 0})
		p.ctx.DrawPath(x, y, canvas.Rectangle(w, h))
	case layout.BorderLine:
		line := &canvas.Path{}
		line.MoveTo(0, 0)
		line.LineTo(w, 0)
		p.ctx.DrawPath(x, y+h, line)
	}
}

type textPiece struct {
	text  string
	face  *canvas.FontFace
	width float64
}

type textLine struct {
	pieces []textPiece
	width  float64
	height float64
	ascent float64
}

// layoutRuns 把多个样式片段按贪心算法排入宽度为 width（mm）的行。
func (r *Renderer) layoutRuns(runs []layout.Run, width float64) ([]textLine, error) {
	var lines []textLine
	cur := textLine{}
	push := func() {
		if cur.height == 0 {
			cur.height = r.lineHeight()
		}
		lines = append(lines, cur)
		cur = textLine{}
	}

	for _, run := range runs {
		size := run.Size
		if size <= 0 {
			size = r.fontSize
		}
		face, err := r.fontFace(layout.FontAttrs{Family: r.family, Size: size, Bold: run.Bold, Italic: run.Italic})
		if err != nil {
			return nil, err
		}
		m := face.Metrics()
		for _, token := range splitTokens(run.Text) {
			if token == "\n" {
				push()
				continue
			}
			blank := strings.TrimSpace(token) == ""
			w := face.TextWidth(token)
			if cur.width > 0 && cur.width+w > width {
				push()
			}
			if blank && len(cur.pieces) == 0 {
				continue
			}
			cur.pieces = append(cur.pieces, textPiece{text: token, face: face, width: w})
			cur.width += w
			cur.height = max(cur.height, m.LineHeight)
			cur.ascent = max(cur.ascent, m.Ascent)
		}
	}
	if len(cur.pieces) > 0 || len(lines) == 0 {
		push()
	}
	return lines, nil
}

func (r *Renderer) lineHeight() float64 {
	face, err := r.fontFace(layout.FontAttrs{Family: r.family, Size: r.fontSize})
	if err != nil {
		return ptToMM(r.fontSize) * 1.15
	}
	return face.Metrics().LineHeight
}

// splitTokens 把文本切成交替的空白段与非空白段，显式换行单独成为一个记号。
func splitTokens(s string) []string {
	var tokens []string
	var b strings.Builder
	lastSpace := false
	flush := func() {
		if b.Len() > 0 {
			tokens = append(tokens, b.String())
			b.Reset()
		}
	}
	for _, r := range s {
		switch {
		case r == '\r':
			continue
		case r == '\n':
			flush()
			tokens = append(tokens, "\n")
			continue
		}
		space := unicode.IsSpace(r)
		if b.Len() > 0 && space != lastSpace {
			flush()
		}
		lastSpace = space
		b.WriteRune(r)
	}
	flush()
	return tokens
}

func textAnchor(a layout.Align, x, width float64) (canvas.TextAlign, float64) {
	switch a {
	case layout.AlignCenter:
		return canvas.Center, x + width/2
	case layout.AlignRight:
		return canvas.Right, x + width
	default:
		return canvas.Left, x
	}
}

// mm 将 twip 转换为毫米。
func mm(twip float64) float64 { return layout.TwipToMM(twip) }

func ptToMM(pt float64) float64 { return mm(pt * layout.TwipsPerPt) }
