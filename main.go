package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ByLCY/overset/config"
)

var (
	configPath string
	verbose    bool
	promptMode string
	outPath    string
	pdfPath    string
	debugPath  string
	reportPath string
	dataJSON   string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "overset",
	Short: "处理文本框溢出：自动加页或收缩文本框",
	Long: `overset 读取 DSL 文档，对指定文本框执行溢出处理：
  resolve  在当前页之后插入页面并链接文本框，直到文本全部显示
  shrink   把文本框收缩到恰好容纳文本的高度
  style    按语言回退规则给文本框套用样式
  render   只排版并输出 PDF`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if promptMode != "" {
			cfg.Prompt.Mode = promptMode
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		zc := zap.NewProductionConfig()
		level, err := zap.ParseAtomicLevel(cfg.Log.Level)
		if err != nil {
			return fmt.Errorf("failed to parse log level: %w", err)
		}
		zc.Level = level
		if verbose {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "overset.yaml", "YAML 配置文件路径")
	pf.BoolVarP(&verbose, "verbose", "v", false, "输出调试日志")
	pf.StringVar(&promptMode, "prompt", "", "母版询问方式：tui、line 或 defaults")
	pf.StringVarP(&outPath, "out", "o", "", "把修改后的文档写回 DSL 文件")
	pf.StringVar(&pdfPath, "pdf", "", "PDF 输出路径")
	pf.StringVar(&debugPath, "debug", "", "布局调试 JSON 输出路径")
	pf.StringVar(&reportPath, "report", "", "以 YAML 输出操作结果")
	pf.StringVar(&dataJSON, "data", "", "绑定到 DSL 的 JSON 数据")

	rootCmd.AddCommand(resolveCmd, shrinkCmd, styleCmd, renderCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
