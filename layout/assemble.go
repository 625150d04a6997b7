package layout

import (
	"fmt"
	"slices"
)

const (
	oneLineBreak   = 1
	fiveLinesBreak = 5
)

// Build 按合并顺序遍历字段，将每个字段分派给对应的排版组件，生成文档树。
// 任一协作者失败时返回错误且不返回部分文档。
func Build(fields []Field, opts BuildOptions) (*Document, error) {
	if opts.Metrics == nil {
		return nil, ErrNoMetrics
	}
	if err := opts.Style.Validate(); err != nil {
		return nil, err
	}

	// supplement 替换作用于副本，后续字段的前后查看能看到替换结果。
	st := newRenderState(slices.Clone(fields), opts)
	st.log.WithField("fields", len(fields)).Debug("开始排版")

	for i := range st.fields {
		f := &st.fields[i]
		if !f.Visible() {
			continue
		}
		if f.Kind != KindRecord {
			closeGroup(st)
		}
		switch f.Kind {
		case KindTable, KindSupplement:
			f.applySupplement()
			if err := layoutTableField(st, f); err != nil {
				return nil, fmt.Errorf("字段 %q: %w", f.Name, err)
			}
		case KindRecord:
			table, err := layoutRecord(st, i)
			if err != nil {
				return nil, fmt.Errorf("字段 %q: %w", f.Name, err)
			}
			st.table = table
		case KindSignature:
			table, err := layoutSignature(st, f)
			if err != nil {
				return nil, fmt.Errorf("签名字段 %q: %w", f.Name, err)
			}
			st.table = table
		default:
			return nil, fmt.Errorf("字段 %q 的类型 %d 未知", f.Name, f.Kind)
		}
	}

	if opts.Appendix != nil && !opts.Appendix.Empty() {
		blocks, err := opts.Appendix.Blocks(st.pageWidth)
		if err != nil {
			return nil, fmt.Errorf("签名附录: %w", err)
		}
		st.textBreak(fiveLinesBreak)
		st.section.AddBlocks(blocks...)
	}
	return st.doc, nil
}

// layoutTableField 处理 table 类字段：按打印方式选择网格或字符串排版，之后换一行。
func layoutTableField(st *RenderState, f *Field) error {
	switch f.Print {
	case PrintAsTable:
		printed, err := layoutTable(st, f)
		if err != nil {
			return err
		}
		if !printed {
			return nil
		}
	case PrintAsString:
		if err := layoutString(st, f); err != nil {
			return err
		}
	default:
		return fmt.Errorf("未知的打印方式 %d", f.Print)
	}
	st.textBreak(oneLineBreak)
	return nil
}
