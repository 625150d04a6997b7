// Package signature 生成文档末尾的电子签名附录：先按两种表格布局生成 HTML，
// 再把 HTML 转换为排版树中的块。
package signature

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/ByLCY/actprint/layout"
)

// Layout 是附录表格的布局。
type Layout int

const (
	// LayoutPlain 两列：证书持有人、签署时间。
	LayoutPlain Layout = iota
	// LayoutWithCertificate 三列：额外包含证书序列号与有效期。
	LayoutWithCertificate
)

func (l Layout) String() string {
	if l == LayoutWithCertificate {
		return "kcp"
	}
	return "plain"
}

// ParseLayout 解析布局名称，空串为 plain。
func ParseLayout(s string) (Layout, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "plain":
		return LayoutPlain, nil
	case "kcp", "certificate":
		return LayoutWithCertificate, nil
	}
	return LayoutPlain, fmt.Errorf("未知的签名附录布局 %q", s)
}

const (
	mainHeader    = "Документ подписан и передан через веб-систему Adept"
	confirmedText = "Подпись соответствует файлу документа"

	headerOwner       = "Владелец сертификата: организация, сотрудник"
	headerCertificate = "Сертификат: серийный номер, период действия"
	headerSignedAt    = "Дата и время подписания"
)

// Entry 是一条电子签名记录。
type Entry struct {
	Organization string `yaml:"organization" json:"organization"`
	Employee     string `yaml:"employee" json:"employee"`
	Position     string `yaml:"position,omitempty" json:"position,omitempty"`
	Certificate  string `yaml:"certificate,omitempty" json:"certificate,omitempty"`
	ValidFrom    string `yaml:"valid_from,omitempty" json:"validFrom,omitempty"`
	ValidTo      string `yaml:"valid_to,omitempty" json:"validTo,omitempty"`
	SignedAt     string `yaml:"signed_at" json:"signedAt"`
}

// Appendix 实现 layout.Appendix。nil 指针视为空附录。
type Appendix struct {
	Layout   Layout
	Entries  []Entry
	Border   string
	FontSize float64
}

// New 构造使用默认边框的附录。
func New(l Layout, entries []Entry) *Appendix {
	return &Appendix{Layout: l, Entries: entries, Border: layout.DefaultBorder}
}

// Empty 报告附录是否没有签名。
func (a *Appendix) Empty() bool { return a == nil || len(a.Entries) == 0 }

// Blocks 生成 HTML 并转换为块。
func (a *Appendix) Blocks(pageWidth float64) ([]layout.Block, error) {
	if a.Empty() {
		return nil, nil
	}
	return Convert(a.HTML(), pageWidth, ConvertOptions{FontSize: a.FontSize, TableStyle: layout.TableStyleSigns})
}

// HTML 按布局生成附录表格。
func (a *Appendix) HTML() string {
	if a.Empty() {
		return ""
	}
	border := a.Border
	if border == "" {
		border = layout.DefaultBorder
	}
	cellStyle := func(width string) string {
		return fmt.Sprintf(` style="width:%s; border:%s"`, width, html.EscapeString(border))
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<p style="text-align:center"><b>%s</b></p>`, html.EscapeString(mainHeader))
	fmt.Fprintf(&b, `<table style="width:100%%; border:%s">`, html.EscapeString(border))

	switch a.Layout {
	case LayoutWithCertificate:
		b.WriteString("<tr>")
		for _, h := range []struct{ text, width string }{
			{headerOwner, "40%"}, {headerCertificate, "30%"}, {headerSignedAt, "30%"},
		} {
			fmt.Fprintf(&b, "<th%s>%s</th>", cellStyle(h.width), html.EscapeString(h.text))
		}
		b.WriteString("</tr>")
		for _, e := range a.Entries {
			b.WriteString("<tr>")
			fmt.Fprintf(&b, "<td%s>%s</td>", cellStyle("40%"), ownerHTML(e))
			fmt.Fprintf(&b, "<td%s>%s</td>", cellStyle("30%"), certificateHTML(e))
			fmt.Fprintf(&b, "<td%s>%s</td>", cellStyle("30%"), signedHTML(e))
			b.WriteString("</tr>")
		}
	default:
		fmt.Fprintf(&b, "<tr><th%s>%s</th><th%s>%s</th></tr>",
			cellStyle("50%"), html.EscapeString(headerOwner),
			cellStyle("50%"), html.EscapeString(headerSignedAt))
		for _, e := range a.Entries {
			fmt.Fprintf(&b, "<tr><td%s>%s</td><td%s>%s</td></tr>",
				cellStyle("50%"), ownerHTML(e), cellStyle("50%"), signedHTML(e))
		}
	}
	b.WriteString("</table>")
	return b.String()
}

func ownerHTML(e Entry) string {
	employee := e.Employee
	if e.Position != "" {
		employee = strings.TrimSpace(e.Position + " " + e.Employee)
	}
	return joinLines(e.Organization, employee)
}

func certificateHTML(e Entry) string {
	period := ""
	switch {
	case e.ValidFrom != "" && e.ValidTo != "":
		period = fmt.Sprintf("с %s по %s", e.ValidFrom, e.ValidTo)
	case e.ValidTo != "":
		period = "по " + e.ValidTo
	}
	return joinLines(e.Certificate, period)
}

func signedHTML(e Entry) string {
	return joinLines(e.SignedAt, "") + "<br><i>" + html.EscapeString(confirmedText) + "</i>"
}

// joinLines 转义每一行并以 <br> 连接，跳过空行。
func joinLines(lines ...string) string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, html.EscapeString(l))
		}
	}
	return strings.Join(out, "<br>")
}
