package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ByLCY/overset/api"
	"github.com/ByLCY/overset/contract"
	"github.com/ByLCY/overset/document"
	"github.com/ByLCY/overset/dsl"
	"github.com/ByLCY/overset/prompt"
	canvasrenderer "github.com/ByLCY/overset/renderer/canvas"
	"github.com/ByLCY/overset/styles"
)

var (
	frameName  string
	styleKind  string
	styleLang  string
	styleKey   string
	candidates []string
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <doc>",
	Short: "在当前页之后加页并链接文本框，直到文本不再溢出",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOperation(args[0], func(s *api.Session) (any, string, error) {
			out, err := s.ResolveOverflow(frameName)
			return out, out.Message(), err
		})
	},
}

var shrinkCmd = &cobra.Command{
	Use:   "shrink <doc>",
	Short: "把文本框收缩到恰好容纳文本的高度",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOperation(args[0], func(s *api.Session) (any, string, error) {
			out, err := s.ShrinkFrameToFit(frameName)
			return out, out.Message(), err
		})
	},
}

var styleCmd = &cobra.Command{
	Use:   "style <doc>",
	Short: "按 <lang>--<key>、<key>、当前样式的顺序套用样式",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := styleKey
		if key == "" {
			key = frameName
		}
		kind := styles.KindForKey(key)
		if styleKind != "" {
			k, err := styles.ParseKind(styleKind)
			if err != nil {
				return err
			}
			kind = k
		}
		names := candidates
		if len(names) == 0 {
			names = styles.Candidates(styleLang, key)
		}
		return runOperation(args[0], func(s *api.Session) (any, string, error) {
			res, err := s.ApplyStyle(frameName, kind, names)
			return res, fmt.Sprintf("已为 %s 套用%s样式 %s", frameName, kind, res.Applied), err
		})
	},
}

var renderCmd = &cobra.Command{
	Use:   "render <doc>",
	Short: "排版文档并输出 PDF 或调试 JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, r, err := loadDocument(args[0])
		if err != nil {
			return err
		}
		if pdfPath == "" && debugPath == "" {
			pdfPath = "output/" + stem(args[0]) + ".pdf"
		}
		return writeOutputs(doc, r)
	},
}

func init() {
	for _, c := range []*cobra.Command{resolveCmd, shrinkCmd, styleCmd} {
		c.Flags().StringVarP(&frameName, "frame", "f", "", "要处理的文本框名称")
	}
	styleCmd.Flags().StringVar(&styleKind, "kind", "", "样式类型：paragraph 或 character（默认按 key 推断）")
	styleCmd.Flags().StringVar(&styleLang, "lang", "", "语言前缀，例如 cs")
	styleCmd.Flags().StringVar(&styleKey, "key", "", "样式键，默认与文本框同名")
	styleCmd.Flags().StringSliceVar(&candidates, "candidate", nil, "按顺序尝试的样式名，覆盖 --lang/--key")
}

type operation func(s *api.Session) (result any, message string, err error)

// runOperation 串联解析、构建、执行操作与输出。
func runOperation(path string, op operation) error {
	doc, r, err := loadDocument(path)
	if err != nil {
		return err
	}
	if frameName != "" {
		if err := doc.Select(frameName); err != nil && !errors.Is(err, contract.ErrNotFound) {
			return err
		}
	}

	mode, err := prompt.ParseMode(cfg.Prompt.Mode)
	if err != nil {
		return err
	}
	session := &api.Session{
		Doc:      doc,
		Prompter: prompt.New(mode, os.Stdin, os.Stderr),
		Logger:   logger,
		Config:   cfg,
	}

	result, message, err := op(session)
	if errors.Is(err, api.ErrNoFrame) {
		logger.Warn("未选择文本框，什么也没做", zap.String("doc", path))
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Println(message)

	if reportPath != "" {
		if err := writeReport(result, reportPath); err != nil {
			return err
		}
	}
	if outPath != "" {
		if err := writeDSL(doc, outPath); err != nil {
			return err
		}
	}
	return writeOutputs(doc, r)
}

func loadDocument(path string) (*document.Document, *canvasrenderer.Renderer, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("无法打开 DSL 文件 %s: %w", path, err)
	}
	defer file.Close()

	ast, err := dsl.Parse(file)
	if err != nil {
		return nil, nil, fmt.Errorf("解析 DSL 失败: %w", err)
	}

	var data map[string]any
	if dataJSON != "" {
		if err := json.Unmarshal([]byte(dataJSON), &data); err != nil {
			return nil, nil, fmt.Errorf("解析 data JSON 失败: %w", err)
		}
	}

	baseDir := cfg.Render.BaseDir
	if baseDir == "" {
		baseDir = filepath.Dir(path)
	}
	r := canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{
		BaseDir:  baseDir,
		Fallback: cfg.Render.Font,
		Outlines: cfg.Render.Outlines,
	})
	doc, err := document.Build(ast, document.BuildOptions{Typesetter: r, Data: data})
	if err != nil {
		return nil, nil, fmt.Errorf("构建文档失败: %w", err)
	}
	logger.Debug("document loaded",
		zap.String("path", path),
		zap.Int("pages", doc.PageCount()),
		zap.Int("frames", len(doc.Frames)))
	return doc, r, nil
}

func writeOutputs(doc *document.Document, r *canvasrenderer.Renderer) error {
	if pdfPath == "" && debugPath == "" {
		return nil
	}
	result, err := doc.Layout()
	if err != nil {
		return fmt.Errorf("布局计算失败: %w", err)
	}
	if debugPath != "" {
		if err := ensureDir(debugPath); err != nil {
			return err
		}
		if err := document.WriteDebugJSON(result, debugPath); err != nil {
			return fmt.Errorf("输出调试 JSON 失败: %w", err)
		}
	}
	if pdfPath != "" {
		pdfBytes, err := r.Render(result)
		if err != nil {
			return fmt.Errorf("渲染 PDF 失败: %w", err)
		}
		if err := ensureDir(pdfPath); err != nil {
			return err
		}
		if err := os.WriteFile(pdfPath, pdfBytes, 0o644); err != nil {
			return fmt.Errorf("写入 PDF 文件失败: %w", err)
		}
		logger.Info("pdf written", zap.String("path", pdfPath), zap.Int("pages", len(result.Pages)))
	}
	return nil
}

func writeDSL(doc *document.Document, path string) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("创建 DSL 文件失败: %w", err)
	}
	if err := document.Encode(f, doc); err != nil {
		f.Close()
		return fmt.Errorf("写入 DSL 失败: %w", err)
	}
	return f.Close()
}

func writeReport(result any, path string) error {
	data, err := yaml.Marshal(result)
	if err != nil {
		return fmt.Errorf("序列化结果失败: %w", err)
	}
	if err := ensureDir(path); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func ensureDir(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	return nil
}

func stem(path string) string {
	base := filepath.Base(path)
	return base[:len(base)-len(filepath.Ext(base))]
}
