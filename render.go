package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ByLCY/actprint/binding"
	"github.com/ByLCY/actprint/layout"
	"github.com/ByLCY/actprint/loader"
	"github.com/ByLCY/actprint/metrics"
	canvasrenderer "github.com/ByLCY/actprint/renderer/canvas"
	"github.com/ByLCY/actprint/signature"
)

const (
	metricsCanvas   = "canvas"
	metricsEstimate = "estimate"
)

type renderParams struct {
	root        string
	data        string
	signatures  string
	out         string
	debug       string
	metrics     string
	fontDirs    []string
	cacheSize   int
	keepMissing bool
}

func newRenderCommand(logger *logrus.Logger) *cobra.Command {
	params := &renderParams{}
	cmd := &cobra.Command{
		Use:   "render <act>",
		Short: "排版一份文书并输出调试 JSON 和/或 PDF 预览",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if params.out == "" && params.debug == "" {
				return errors.New("至少需要指定 --out 或 --debug 之一")
			}
			return runRender(cmd.Context(), logger, params, args[0], cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&params.root, "root", "", "文书定义目录，<act> 不带扩展名时在此查找 <act>.act")
	cmd.Flags().StringVar(&params.data, "data", "", "JSON 数据模型")
	cmd.Flags().StringVar(&params.signatures, "signatures", "", "YAML 签名清单")
	cmd.Flags().StringVarP(&params.out, "out", "o", "", "PDF 输出路径")
	cmd.Flags().StringVar(&params.debug, "debug", "", "排版树 JSON 输出路径，- 表示标准输出")
	cmd.Flags().StringVar(&params.metrics, "metrics", metricsCanvas, "测量后端: canvas（真实字体）或 estimate（字符宽度估算）")
	cmd.Flags().StringSliceVar(&params.fontDirs, "font-dir", nil, "字体搜索目录，可重复")
	cmd.Flags().IntVar(&params.cacheSize, "cache-size", 4096, "测量缓存容量")
	cmd.Flags().BoolVar(&params.keepMissing, "keep-missing", false, "保留无法解析的占位符")
	return cmd
}

// prepared 是排版前已合并、已绑定数据的输入。
type prepared struct {
	act      *loader.Act
	fields   []layout.Field
	values   binding.Values
	appendix *signature.Appendix
}

// prepare 读取文书定义，合并签名清单并按数据模型展开表格行。
func prepare(ctx context.Context, root, id, dataPath, signaturesPath string, keepMissing bool) (*prepared, error) {
	act, err := loader.DSLSource{Root: root}.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	fields := act.Fields
	appendix := act.Appendix

	if signaturesPath != "" {
		list, err := loader.LoadSignatureList(signaturesPath)
		if err != nil {
			return nil, err
		}
		fields = loader.MergeSignatures(fields, list.Signatories)
		listed, err := list.Appendix()
		if err != nil {
			return nil, err
		}
		if listed != nil {
			appendix = listed
		}
	}

	data, err := binding.LoadJSON(dataPath)
	if err != nil {
		return nil, err
	}
	values := binding.Values{Data: data, KeepMissing: keepMissing}
	fields, err = values.ExpandRows(fields)
	if err != nil {
		return nil, err
	}
	return &prepared{act: act, fields: fields, values: values, appendix: appendix}, nil
}

func runRender(ctx context.Context, logger *logrus.Logger, params *renderParams, id string, stdout io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	in, err := prepare(ctx, params.root, id, params.data, params.signatures, params.keepMissing)
	if err != nil {
		return err
	}
	log := logger.WithField("act", in.act.Name)

	style, err := layout.ResolveStyle(in.act.Settings)
	if err != nil {
		return err
	}
	if in.appendix != nil {
		in.appendix.Border = style.Border
		if in.appendix.FontSize <= 0 {
			in.appendix.FontSize = style.FontSize
		}
	}

	title := in.act.Settings.Name
	if title == "" {
		title = in.act.Name
	}
	pdfRenderer := canvasrenderer.NewRenderer(canvasrenderer.Options{
		FontDirs:   params.fontDirs,
		FontFamily: style.FontFamily,
		FontSize:   style.FontSize,
		Title:      title,
	})

	var backend layout.TextMetrics
	switch params.metrics {
	case metricsCanvas:
		backend = pdfRenderer
	case metricsEstimate:
		backend = metrics.NewEstimator()
	default:
		return fmt.Errorf("测量后端 %q 无效", params.metrics)
	}
	cache, err := metrics.NewCache(backend, params.cacheSize)
	if err != nil {
		return err
	}

	doc, err := layout.Build(in.fields, layout.BuildOptions{
		Metrics:  cache,
		Values:   in.values,
		Style:    style,
		Appendix: in.appendix,
		Logger:   log,
	})
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"fields":   len(in.fields),
		"sections": len(doc.Sections),
		"cached":   cache.Len(),
	}).Info("排版完成")

	switch params.debug {
	case "":
	case "-":
		if err := layout.EncodeDebugJSON(stdout, doc); err != nil {
			return err
		}
	default:
		if err := layout.WriteDebugJSON(doc, params.debug); err != nil {
			return fmt.Errorf("写入调试 JSON 失败: %w", err)
		}
		log.WithField("path", params.debug).Info("已写入调试 JSON")
	}

	if params.out == "" {
		return nil
	}
	pdf, err := pdfRenderer.Render(doc)
	if err != nil {
		return err
	}
	if err := os.WriteFile(params.out, pdf, 0o644); err != nil {
		return fmt.Errorf("写入 %s 失败: %w", params.out, err)
	}
	log.WithField("path", params.out).Info("已写入 PDF")
	return nil
}
