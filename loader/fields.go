package loader

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ByLCY/actprint/dsl"
	"github.com/ByLCY/actprint/layout"
)

// 字段声明示例：
//
//	record "Дата" line 1 title-size 30% subscript { value: "${act.date}" }
//	table "Перечень" numeration { column "№" 10% ordinal 1; rows: items }
//	table "Адрес" print string strategy interlinearEnum
//	signature "Инспектор" line 10
func parseFields(b *dsl.Block) ([]layout.Field, error) {
	fields := make([]layout.Field, 0, len(b.Statements))
	for _, stmt := range b.Statements {
		cmd := stmt.Command
		if cmd == nil {
			return nil, fmt.Errorf("fields 段只允许字段声明")
		}
		f, err := parseField(cmd)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return fields, nil
}

func parseField(cmd *dsl.Command) (layout.Field, error) {
	kind, ok := layout.ParseKind(cmd.Name)
	if !ok {
		return layout.Field{}, fmt.Errorf("%s: 未知的字段类型 %q", cmd.Pos, cmd.Name)
	}
	f := layout.Field{Kind: kind, ShowTitle: true, ShowValue: true}
	args := argCursor{args: cmd.Args}
	if a, ok := args.peek(); ok && a.IsString() {
		f.Name = a.Value
		args.pos++
	}
	wrap := func(err error) error {
		return fmt.Errorf("%s: 字段 %q: %w", cmd.Pos, f.Name, err)
	}

	for {
		a, ok := args.next()
		if !ok {
			break
		}
		if applyFlag(&f, a.Value) {
			continue
		}
		v, err := args.value(a.Value)
		if err != nil {
			return f, wrap(err)
		}
		if err := applyOption(&f, a.Value, v); err != nil {
			return f, wrap(err)
		}
	}

	if cmd.Block != nil {
		if err := applyFieldBlock(&f, cmd.Block); err != nil {
			return f, wrap(err)
		}
	}
	return f, nil
}

// applyFlag 处理不带参数的选项。
func applyFlag(f *layout.Field, name string) bool {
	switch name {
	case "hide-title":
		f.ShowTitle = false
	case "hide-value":
		f.ShowValue = false
	case "hidden":
		f.ShowTitle, f.ShowValue = false, false
	case "subscript":
		f.Subscript = true
	case "numeration":
		f.CustomNumeration = true
	case "margin-top":
		f.MarginTop = true
	default:
		return false
	}
	return true
}

// applyOption 处理带一个参数的选项；命令参数与块内赋值共用。
func applyOption(f *layout.Field, key, v string) error {
	switch key {
	case "line":
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("行号 %q 无效", v)
		}
		f.Line = layout.LineAt(n)
	case "print":
		switch v {
		case "table":
			f.Print = layout.PrintAsTable
		case "string":
			f.Print = layout.PrintAsString
		default:
			return fmt.Errorf("未知的打印方式 %q", v)
		}
	case "strategy":
		s, ok := layout.ParseStrategy(v)
		if !ok {
			return fmt.Errorf("未知的对齐策略 %q", v)
		}
		f.Strategy = s
	case "title-size":
		spec, err := parseSize(v)
		if err != nil {
			return err
		}
		f.TitleSize = spec
	case "value-size":
		spec, err := parseSize(v)
		if err != nil {
			return err
		}
		f.ValueSize = spec
	case "value":
		f.Value = v
	case "subscript":
		f.Subscript = true
		f.SubscriptText = v
	case "rows":
		f.RowsPath = v
	case "title-style":
		style, err := parseTextStyle(v)
		if err != nil {
			return err
		}
		f.TitleStyle = style
	case "value-style":
		style, err := parseTextStyle(v)
		if err != nil {
			return err
		}
		f.ValueStyle = style
	default:
		return fmt.Errorf("未知的选项 %q", key)
	}
	return nil
}

func applyFieldBlock(f *layout.Field, b *dsl.Block) error {
	for _, stmt := range b.Statements {
		switch {
		case stmt.Assignment != nil:
			a := stmt.Assignment
			if err := applyOption(f, a.Key, a.Value.Text()); err != nil {
				return fmt.Errorf("%s: %w", a.Pos, err)
			}
		case stmt.Text != nil:
			f.Value = string(stmt.Text.Value)
		case stmt.Command != nil:
			cmd := stmt.Command
			if f.Kind != layout.KindTable && f.Kind != layout.KindSupplement {
				return fmt.Errorf("%s: %s 字段不能声明 %s", cmd.Pos, f.Kind, cmd.Name)
			}
			switch cmd.Name {
			case "column":
				col, err := parseColumn(cmd)
				if err != nil {
					return err
				}
				f.Columns = append(f.Columns, col)
			case "row":
				row, err := parseRow(cmd, f.Columns)
				if err != nil {
					return err
				}
				f.Rows = append(f.Rows, row)
			default:
				return fmt.Errorf("%s: 未知的声明 %q", cmd.Pos, cmd.Name)
			}
		}
	}
	return nil
}

// parseColumn: column "Наименование" 40% key name ordinal 1 hidden
func parseColumn(cmd *dsl.Command) (layout.Column, error) {
	col := layout.Column{Print: true}
	args := argCursor{args: cmd.Args}
	for {
		a, ok := args.next()
		if !ok {
			break
		}
		switch {
		case a.IsString() && col.Name == "":
			col.Name = a.Value
		case a.Type == "Number" && strings.HasSuffix(a.Value, "%"):
			p, err := parsePercent(a.Value)
			if err != nil {
				return col, fmt.Errorf("%s: %w", cmd.Pos, err)
			}
			col.Percent = p
		case a.Value == "hidden":
			col.Print = false
		case a.Value == "key":
			v, err := args.value("key")
			if err != nil {
				return col, fmt.Errorf("%s: %w", cmd.Pos, err)
			}
			col.Key = v
		case a.Value == "ordinal":
			v, err := args.value("ordinal")
			if err != nil {
				return col, fmt.Errorf("%s: %w", cmd.Pos, err)
			}
			n, err := strconv.Atoi(v)
			if err != nil {
				return col, fmt.Errorf("%s: 列序号 %q 无效", cmd.Pos, v)
			}
			col.Ordinal = &n
		default:
			return col, fmt.Errorf("%s: 列 %q 的参数 %q 无法识别", cmd.Pos, col.Name, a.Raw)
		}
	}
	return col, nil
}

// parseRow 支持按列顺序的位置参数（row "a" "b"）与键值块（row { key: "a" }）。
func parseRow(cmd *dsl.Command, cols []layout.Column) (layout.Row, error) {
	row := layout.Row{Values: map[string]string{}}
	for i, a := range cmd.Args {
		if i >= len(cols) {
			return row, fmt.Errorf("%s: 数据行的值多于列数 %d", cmd.Pos, len(cols))
		}
		row.Values[cols[i].ValueKey()] = a.Value
	}
	if cmd.Block != nil {
		for _, stmt := range cmd.Block.Statements {
			if stmt.Assignment == nil {
				return row, fmt.Errorf("%s: 数据行块只允许赋值", cmd.Pos)
			}
			row.Values[stmt.Assignment.Key] = stmt.Assignment.Value.Text()
		}
	}
	return row, nil
}

// parseSize 接受 30%、content、left、endLine、string。
func parseSize(v string) (layout.SizeSpec, error) {
	if strings.HasSuffix(v, "%") {
		p, err := parsePercent(v)
		if err != nil {
			return layout.SizeSpec{}, err
		}
		return layout.Percent(p), nil
	}
	kind, ok := layout.ParseSizeKind(v)
	if !ok || kind == layout.SizePercent {
		return layout.SizeSpec{}, fmt.Errorf("宽度规格 %q 无效", v)
	}
	return layout.SizeSpec{Kind: kind}, nil
}

func parsePercent(v string) (float64, error) {
	p, err := strconv.ParseFloat(strings.TrimSuffix(v, "%"), 64)
	if err != nil || p < 0 || p > 100 {
		return 0, fmt.Errorf("百分比 %q 无效", v)
	}
	return p, nil
}

// parseTextStyle 解析 "bold italic 14" 形式的样式描述。
func parseTextStyle(v string) (layout.TextStyle, error) {
	var style layout.TextStyle
	for _, tok := range strings.Fields(v) {
		switch strings.ToLower(tok) {
		case "bold":
			style.Bold = true
		case "italic":
			style.Italic = true
		case "regular", "normal":
		default:
			size, err := strconv.ParseFloat(strings.TrimSuffix(tok, "pt"), 64)
			if err != nil || size <= 0 {
				return style, fmt.Errorf("样式 %q 无法识别", tok)
			}
			style.Size = size
		}
	}
	return style, nil
}

type argCursor struct {
	args []*dsl.Lexeme
	pos  int
}

func (c *argCursor) peek() (*dsl.Lexeme, bool) {
	if c.pos >= len(c.args) {
		return nil, false
	}
	return c.args[c.pos], true
}

func (c *argCursor) next() (*dsl.Lexeme, bool) {
	a, ok := c.peek()
	if ok {
		c.pos++
	}
	return a, ok
}

func (c *argCursor) value(option string) (string, error) {
	a, ok := c.next()
	if !ok {
		return "", fmt.Errorf("选项 %s 缺少参数", option)
	}
	return a.Value, nil
}
