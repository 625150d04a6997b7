package layout

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
)

// layoutTable 将 table 类字段打印为网格：标题段落、表头、可选的编号行与数据行。
// 没有可打印的列时什么都不输出，printed 为 false。
func layoutTable(st *RenderState, f *Field) (printed bool, err error) {
	log := st.fieldLog(f)

	cols := printableColumns(f.Columns)
	if len(cols) == 0 {
		log.Debug("没有可打印的列，跳过表格")
		return false, nil
	}

	st.section.AddParagraph(&Paragraph{
		Runs:       []Run{st.run(f.Name, f.TitleStyle)},
		SpaceAfter: 0,
	})

	if f.CustomNumeration {
		cols = orderColumns(cols)
		if cols[0].Ordinal == nil {
			cols = deriveOrdinals(cols)
		}
		numbered := 0
		for _, c := range cols {
			if c.Ordinal != nil {
				numbered++
			}
		}
		switch {
		case numbered == 0:
			return false, &StructuralError{Field: f.Name, Reason: "自定义编号的表格没有任何列可以确定序号"}
		case numbered < len(cols):
			log.WithField("missing", len(cols)-numbered).Warn("部分列没有序号，编号单元格将留空")
		}
	}

	table := st.section.AddTable(TableStyleActs)
	table.MarginTop = f.MarginTop
	st.table = table

	widths := make([]float64, len(cols))
	for i, c := range cols {
		widths[i] = st.pageWidth * c.Percent / 100
	}

	header := table.AddRow()
	for i, c := range cols {
		header.AddCell(widths[i], BorderSingle).AddText(st.run(c.Name, TextStyle{}), AlignCenter)
	}

	if f.CustomNumeration {
		row := table.AddRow()
		for i, c := range cols {
			text := ""
			if c.Ordinal != nil {
				text = strconv.Itoa(*c.Ordinal)
			}
			row.AddCell(widths[i], BorderSingle).AddText(st.run(text, TextStyle{}), AlignCenter)
		}
	}

	rows := f.Rows
	if len(rows) == 0 {
		// 至少输出一行空单元格，表格不能只有表头。
		rows = []Row{{}}
	}
	for _, r := range rows {
		row := table.AddRow()
		for i, c := range cols {
			row.AddCell(widths[i], BorderSingle).AddText(st.run(r.Value(c), f.ValueStyle), AlignCenter)
		}
	}

	log.WithField("columns", len(cols)).WithField("rows", len(f.Rows)).Debug("表格已输出")
	return true, nil
}

func printableColumns(cols []Column) []Column {
	out := make([]Column, 0, len(cols))
	for _, c := range cols {
		if c.Print {
			out = append(out, c)
		}
	}
	return out
}

// orderColumns 按显式序号升序稳定排序，没有序号的列排在最后。序号 0 与缺失不同。
func orderColumns(cols []Column) []Column {
	out := slices.Clone(cols)
	slices.SortStableFunc(out, func(a, b Column) int {
		switch {
		case a.Ordinal == nil && b.Ordinal == nil:
			return 0
		case a.Ordinal == nil:
			return 1
		case b.Ordinal == nil:
			return -1
		}
		return cmp.Compare(*a.Ordinal, *b.Ordinal)
	})
	return out
}

// deriveOrdinals 以列名开头的十进制数字作为序号（"12a" → 12）；列名不以数字开头时序号仍然缺失。
func deriveOrdinals(cols []Column) []Column {
	out := slices.Clone(cols)
	for i := range out {
		if n, ok := leadingInt(out[i].Name); ok {
			out[i].Ordinal = &n
		}
	}
	return out
}

func leadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
