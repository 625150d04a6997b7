package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const appName = "actprint"

type rootParams struct {
	logLevel  string
	logFormat string
	config    string
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	params := &rootParams{}
	logger := logrus.New()

	root := &cobra.Command{
		Use:           appName,
		Short:         "把文书字段排版为带分页的文档树，并输出调试 JSON 或 PDF 预览",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := bindEnvironment(cmd, &params.config); err != nil {
				return err
			}
			return configureLogger(logger, params.logLevel, params.logFormat)
		},
	}
	root.PersistentFlags().StringVar(&params.logLevel, "log-level", "info", "日志级别: debug, info, warn, error")
	root.PersistentFlags().StringVar(&params.logFormat, "log-format", "text", "日志格式: text, json")
	root.PersistentFlags().StringVar(&params.config, "config", "", "YAML/TOML 配置文件，键名与命令行参数相同")

	root.AddCommand(newRenderCommand(logger), newInspectCommand(logger))
	return root
}

func configureLogger(l *logrus.Logger, level, format string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("日志级别 %q 无效: %w", level, err)
	}
	l.SetLevel(lvl)
	switch format {
	case "text":
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		return fmt.Errorf("日志格式 %q 无效", format)
	}
	l.SetOutput(os.Stderr)
	return nil
}
