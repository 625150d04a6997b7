package layout

import (
	"fmt"
	"math"
	"strings"
)

// recordMode 决定空值如何打印。
type recordMode int

const (
	recordPlain     recordMode = iota // 由字符串策略调用：空值保持空白
	recordGrouped                     // 记录分组：空值打印占位文本
	recordSignature                   // 签名：空值留作手写栏
)

// layoutRecord 排版 record 字段。相邻（跳过隐藏字段）且行号相同的 record 字段共享同一行；
// 下一个可见字段不属于本组或当前字段为最后一个时分组关闭，并按需输出下标行。
// 返回当前表格句柄，由调用方保存到 RenderState。
func layoutRecord(st *RenderState, index int) (*Table, error) {
	f := &st.fields[index]
	log := st.fieldLog(f).WithField("index", index)

	first := !sameGroup(st.prevVisible(index), f) || st.sub.phase != groupOpen
	if first {
		st.sub.open()
		st.group = st.group[:0]
		st.needSub = false
		st.textBreak(oneLineBreak)
		st.table = st.section.AddTable("")
		st.table.AddRow()
		log.Debug("打开新分组")
	}

	st.sub.advance(wantsSubscriptSlot(f))
	if f.Subscript {
		st.needSub = true
	}

	cell, err := recordCell(st, f, recordGrouped)
	if err != nil {
		return nil, err
	}
	st.group = append(st.group, groupEntry{field: f, width: cell.Width})

	if !sameGroup(st.nextVisible(index), f) {
		log.WithField("size", len(st.group)).Debug("关闭分组")
		closeGroup(st)
	}
	return st.table, nil
}

// sameGroup 报告 other 是否与 f 属于同一打印行。只有可见的 record 字段才能共享一行，
// 其他类型的字段即使行号相同也视为分组边界。
func sameGroup(other, f *Field) bool {
	return other != nil && other.Kind == KindRecord && other.Visible() && other.Line.Same(f.Line)
}

// closeGroup 关闭当前记录分组，按需输出下标行。没有打开的分组时什么也不做。
func closeGroup(st *RenderState) {
	if st.sub.phase != groupOpen || len(st.group) == 0 {
		return
	}
	if st.needSub {
		emitGroupSubscripts(st)
	}
	st.group = st.group[:0]
	st.needSub = false
	st.sub.idle()
}

// layoutSignature 排版签名字段：总是新开一张单行表格，之后换行；
// 分组大小恒为一，因此无需前瞻即可输出下标行。
func layoutSignature(st *RenderState, f *Field) (*Table, error) {
	st.sub.single()
	st.table = st.section.AddTable("")
	st.table.AddRow()

	cell, err := recordCell(st, f, recordSignature)
	if err != nil {
		return nil, err
	}
	st.group = append(st.group[:0], groupEntry{field: f, width: cell.Width})
	st.textBreak(oneLineBreak)
	if f.Subscript {
		st.sub.closing()
		addSubscriptRow(st)
	}
	st.group = st.group[:0]
	st.sub.idle()
	return st.table, nil
}

// wantsSubscriptSlot 报告字段是否有资格占用本组唯一的下标预留位置。
func wantsSubscriptSlot(f *Field) bool {
	return f.Subscript && f.ShowTitle && f.ValueSize.Kind != SizeString
}

func subscriptText(f *Field) string {
	if !f.Subscript {
		return ""
	}
	return f.SubscriptText
}

// emitGroupSubscripts 在分组关闭时复核下标：只有拼接后的下标文本非空才输出下标行。
func emitGroupSubscripts(st *RenderState) {
	var texts []string
	for _, e := range st.group {
		if t := subscriptText(e.field); t != "" {
			texts = append(texts, t)
		}
	}
	if strings.Join(texts, ", ") == "" {
		st.sub.suppress()
		st.log.WithField("size", len(st.group)).Debug("下标文本为空，跳过下标行")
		return
	}
	st.sub.closing()
	addSubscriptRow(st)
}

// addSubscriptRow 为缓冲中的每个字段输出一个下标单元格，宽度与其上方单元格一致。
func addSubscriptRow(st *RenderState) {
	row := st.table.AddRow()
	for _, e := range st.group {
		row.AddCell(e.width, BorderNone).AddText(st.subscriptRun(subscriptText(e.field)), AlignCenter)
	}
}

// recordCell 是通用的单字段记录渲染：在当前行追加一个单元格，内含标题与值。
// 整行规格（SizeEndLine）使标题与值各占一行且单元格取页面宽度。
func recordCell(st *RenderState, f *Field, mode recordMode) (*Cell, error) {
	var (
		titleW, valueW float64
		value          string
		err            error
	)
	if f.ShowTitle {
		if titleW, err = st.cellWidth(f.Name, f.TitleSize, st.font(f.TitleStyle)); err != nil {
			return nil, err
		}
	}
	if f.ShowValue {
		if value, err = st.values.RenderValue(f); err != nil {
			return nil, fmt.Errorf("取值失败: %w", err)
		}
		if value == "" && mode == recordGrouped {
			value = st.style.Placeholder
		}
		if valueW, err = st.cellWidth(value, f.ValueSize, st.font(f.ValueStyle)); err != nil {
			return nil, err
		}
	}

	endLine := f.TitleSize.Kind == SizeEndLine || f.ValueSize.Kind == SizeEndLine
	width := math.Min(titleW+valueW, st.pageWidth)
	if endLine {
		width = st.pageWidth
	}
	border := BorderNone
	if f.ShowValue {
		border = BorderLine
	}
	align := AlignDefault
	if f.ColumnsAlign == SizeLeft {
		align = AlignLeft
	}

	cell := st.table.LastRow().AddCell(width, border)
	if endLine {
		if f.ShowTitle {
			cell.AddText(st.run(f.Name, f.TitleStyle), align)
		}
		if f.ShowValue {
			cell.AddText(st.run(value, f.ValueStyle), AlignDefault)
		}
		return cell, nil
	}
	p := &Paragraph{Align: align}
	if f.ShowTitle {
		p.Runs = append(p.Runs, st.run(f.Name, f.TitleStyle))
	}
	if f.ShowValue {
		p.Runs = append(p.Runs, st.run(value, f.ValueStyle))
	}
	cell.Paragraphs = append(cell.Paragraphs, p)
	return cell, nil
}
