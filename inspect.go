package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ByLCY/actprint/layout"
)

type inspectParams struct {
	root        string
	data        string
	signatures  string
	format      string
	keepMissing bool
}

func newInspectCommand(logger *logrus.Logger) *cobra.Command {
	params := &inspectParams{}
	cmd := &cobra.Command{
		Use:   "inspect <act>",
		Short: "列出合并签名并展开数据行之后的字段序列",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := prepare(cmd.Context(), params.root, args[0], params.data, params.signatures, params.keepMissing)
			if err != nil {
				return err
			}
			logger.WithField("fields", len(in.fields)).Debug("字段已合并")
			switch params.format {
			case "table":
				return writeFieldTable(cmd.OutOrStdout(), in.fields)
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(in.fields)
			default:
				return fmt.Errorf("输出格式 %q 无效", params.format)
			}
		},
	}
	cmd.Flags().StringVar(&params.root, "root", "", "文书定义目录")
	cmd.Flags().StringVar(&params.data, "data", "", "JSON 数据模型")
	cmd.Flags().StringVar(&params.signatures, "signatures", "", "YAML 签名清单")
	cmd.Flags().StringVar(&params.format, "format", "table", "输出格式: table, json")
	cmd.Flags().BoolVar(&params.keepMissing, "keep-missing", false, "保留无法解析的占位符")
	return cmd
}

func writeFieldTable(w io.Writer, fields []layout.Field) error {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"#", "Kind", "Line", "Print", "Strategy", "Name"})
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoMergeCells(false)
	table.SetRowLine(false)
	table.SetAutoWrapText(false)
	for i, f := range fields {
		line := "-"
		if f.Line.Set {
			line = strconv.Itoa(f.Line.N)
		}
		mode := "-"
		strategy := "-"
		if f.Kind == layout.KindTable || f.Kind == layout.KindSupplement {
			mode = "table"
			if f.Print == layout.PrintAsString {
				mode = "string"
				strategy = f.Strategy.String()
			}
		}
		name := f.Name
		if !f.Visible() {
			name += " (hidden)"
		}
		table.Append([]string{strconv.Itoa(i), f.Kind.String(), line, mode, strategy, name})
	}
	table.Render()
	return nil
}
