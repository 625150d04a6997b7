package signature

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/ByLCY/actprint/layout"
)

// ConvertOptions 控制 HTML 到排版块的转换。
type ConvertOptions struct {
	// FontSize 为 0 时文本沿用文档默认字号。
	FontSize   float64
	TableStyle string
}

type inline struct {
	bold, italic bool
}

// Convert 把受限的 HTML 子集（p/div/h*、table/tr/td/th、b/strong/i/em、br）
// 转换为排版块。表格宽度按 pageWidth 的百分比换算，未标注宽度的列均分。
func Convert(src string, pageWidth float64, opts ConvertOptions) ([]layout.Block, error) {
	if pageWidth <= 0 {
		return nil, fmt.Errorf("签名附录: 页面宽度 %g 无效", pageWidth)
	}
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("解析签名附录 HTML 失败: %w", err)
	}
	body := findElement(doc, "body")
	if body == nil {
		return nil, nil
	}
	c := &converter{pageWidth: pageWidth, opts: opts}
	c.walkBlocks(body)
	c.flushLoose()
	return c.blocks, nil
}

type converter struct {
	pageWidth float64
	opts      ConvertOptions
	blocks    []layout.Block
	// loose 收集直接位于 body 下的文本与内联元素。
	loose paragraphs
}

func (c *converter) walkBlocks(n *html.Node) {
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		if ch.Type == html.ElementNode {
			if shouldSkipElement(ch.Data) {
				continue
			}
			switch ch.Data {
			case "table":
				c.flushLoose()
				c.blocks = append(c.blocks, layout.Block{Table: c.parseTable(ch)})
				continue
			case "p", "div", "h1", "h2", "h3", "h4", "h5", "h6":
				c.flushLoose()
				if isBlockContainer(ch) {
					c.walkBlocks(ch)
					continue
				}
				var ps paragraphs
				ps.walk(ch, inline{bold: isHeading(ch.Data)}, c.opts.FontSize)
				align := alignOf(ch)
				for _, p := range ps.done() {
					p.Align = align
					c.blocks = append(c.blocks, layout.Block{Paragraph: p})
				}
				continue
			case "br":
				if c.loose.empty() {
					c.blocks = append(c.blocks, layout.Block{Break: &layout.TextBreak{Lines: 1, Size: c.opts.FontSize}})
					continue
				}
			}
		}
		c.loose.walkNode(ch, inline{}, c.opts.FontSize)
	}
}

func (c *converter) flushLoose() {
	for _, p := range c.loose.done() {
		c.blocks = append(c.blocks, layout.Block{Paragraph: p})
	}
	c.loose = paragraphs{}
}

type htmlCell struct {
	node    *html.Node
	header  bool
	span    int
	percent float64 // 0 表示未标注
}

// parseTable 收集 thead/tbody 与直接子 tr，然后按列数换算宽度。
func (c *converter) parseTable(tableNode *html.Node) *layout.Table {
	var rows [][]htmlCell
	collect := func(section *html.Node) {
		for tr := section.FirstChild; tr != nil; tr = tr.NextSibling {
			if tr.Type == html.ElementNode && tr.Data == "tr" {
				if row := parseTableRow(tr); len(row) > 0 {
					rows = append(rows, row)
				}
			}
		}
	}
	collect(tableNode)
	for ch := tableNode.FirstChild; ch != nil; ch = ch.NextSibling {
		if ch.Type == html.ElementNode && (ch.Data == "thead" || ch.Data == "tbody" || ch.Data == "tfoot") {
			collect(ch)
		}
	}

	columns := 0
	for _, row := range rows {
		n := 0
		for _, cell := range row {
			n += cell.span
		}
		columns = max(columns, n)
	}

	border := layout.BorderNone
	if hasBorder(tableNode) {
		border = layout.BorderSingle
	}
	table := &layout.Table{Style: c.opts.TableStyle}
	for _, row := range rows {
		out := table.AddRow()
		for _, hc := range row {
			width := c.pageWidth * float64(hc.span) / float64(columns)
			if hc.percent > 0 {
				width = c.pageWidth * hc.percent / 100
			}
			cellBorder := border
			if hasBorder(hc.node) {
				cellBorder = layout.BorderSingle
			}
			cell := out.AddCell(width, cellBorder)
			if hc.span > 1 {
				cell.GridSpan = hc.span
			}
			var ps paragraphs
			ps.walk(hc.node, inline{bold: hc.header}, c.opts.FontSize)
			align := alignOf(hc.node)
			if align == layout.AlignDefault && hc.header {
				align = layout.AlignCenter
			}
			for _, p := range ps.done() {
				p.Align = align
				cell.Paragraphs = append(cell.Paragraphs, p)
			}
		}
	}
	return table
}

func parseTableRow(tr *html.Node) []htmlCell {
	var row []htmlCell
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || (c.Data != "td" && c.Data != "th") {
			continue
		}
		cell := htmlCell{node: c, header: c.Data == "th", span: 1}
		for _, attr := range c.Attr {
			switch attr.Key {
			case "colspan":
				fmt.Sscanf(attr.Val, "%d", &cell.span)
			case "width":
				cell.percent = parsePercent(attr.Val)
			}
		}
		if cell.span < 1 {
			cell.span = 1
		}
		if w, ok := styleProperty(c, "width"); ok {
			cell.percent = parsePercent(w)
		}
		row = append(row, cell)
	}
	return row
}

// paragraphs 按 <br> 与块级子元素把内联内容切分为段落。
type paragraphs struct {
	list []*layout.Paragraph
	open bool
}

func (ps *paragraphs) empty() bool { return len(ps.list) == 0 }

func (ps *paragraphs) newLine() { ps.open = false }

func (ps *paragraphs) add(run layout.Run) {
	if !ps.open {
		ps.list = append(ps.list, &layout.Paragraph{})
		ps.open = true
	}
	p := ps.list[len(ps.list)-1]
	p.Runs = append(p.Runs, run)
}

func (ps *paragraphs) walk(n *html.Node, f inline, size float64) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		ps.walkNode(c, f, size)
	}
}

func (ps *paragraphs) walkNode(n *html.Node, f inline, size float64) {
	switch n.Type {
	case html.TextNode:
		text := collapseSpace(n.Data)
		if strings.TrimSpace(text) == "" {
			return
		}
		ps.add(layout.Run{Text: text, Bold: f.bold, Italic: f.italic, Size: size})
	case html.ElementNode:
		if shouldSkipElement(n.Data) {
			return
		}
		switch n.Data {
		case "br":
			ps.newLine()
		case "b", "strong":
			ps.walk(n, inline{bold: true, italic: f.italic}, size)
		case "i", "em":
			ps.walk(n, inline{bold: f.bold, italic: true}, size)
		case "p", "div", "li", "h1", "h2", "h3", "h4", "h5", "h6":
			ps.newLine()
			ps.walk(n, inline{bold: f.bold || isHeading(n.Data), italic: f.italic}, size)
			ps.newLine()
		default:
			ps.walk(n, f, size)
		}
	}
}

// done 去掉段落首尾多余空白并丢弃空段落。
func (ps *paragraphs) done() []*layout.Paragraph {
	out := ps.list[:0:0]
	for _, p := range ps.list {
		if len(p.Runs) == 0 {
			continue
		}
		p.Runs[0].Text = strings.TrimLeft(p.Runs[0].Text, " ")
		last := len(p.Runs) - 1
		p.Runs[last].Text = strings.TrimRight(p.Runs[last].Text, " ")
		if strings.TrimSpace(p.Text()) == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// collapseSpace 把连续空白压缩为一个空格，保留首尾的单个空格以便与相邻片段拼接。
func collapseSpace(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		if s != "" {
			return " "
		}
		return ""
	}
	out := strings.Join(fields, " ")
	if strings.TrimLeft(s, " \t\r\n") != s {
		out = " " + out
	}
	if strings.TrimRight(s, " \t\r\n") != s {
		out += " "
	}
	return out
}

func alignOf(n *html.Node) layout.Align {
	v, ok := styleProperty(n, "text-align")
	if !ok {
		v = attr(n, "align")
	}
	switch strings.ToLower(v) {
	case "left":
		return layout.AlignLeft
	case "center":
		return layout.AlignCenter
	case "right":
		return layout.AlignRight
	case "justify":
		return layout.AlignBoth
	}
	return layout.AlignDefault
}

func hasBorder(n *html.Node) bool {
	if v, ok := styleProperty(n, "border"); ok {
		v = strings.ToLower(v)
		return v != "" && v != "none" && !strings.HasPrefix(v, "0")
	}
	v := attr(n, "border")
	return v != "" && v != "0"
}

// styleProperty 读取内联 style 中的某个属性。
func styleProperty(n *html.Node, name string) (string, bool) {
	for _, decl := range strings.Split(attr(n, "style"), ";") {
		key, val, ok := strings.Cut(decl, ":")
		if ok && strings.EqualFold(strings.TrimSpace(key), name) {
			return strings.TrimSpace(val), true
		}
	}
	return "", false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func parsePercent(v string) float64 {
	v = strings.TrimSpace(v)
	if !strings.HasSuffix(v, "%") {
		return 0
	}
	p, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(v, "%")), 64)
	if err != nil || p <= 0 {
		return 0
	}
	return min(p, 100)
}

func isHeading(tag string) bool {
	return len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6'
}

func shouldSkipElement(tag string) bool {
	switch tag {
	case "script", "style", "noscript", "template", "head":
		return true
	}
	return false
}

// isBlockContainer 报告元素是否含有块级子元素。
func isBlockContainer(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			switch c.Data {
			case "div", "p", "table", "h1", "h2", "h3", "h4", "h5", "h6":
				return true
			}
		}
	}
	return false
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}
