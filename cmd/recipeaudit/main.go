package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/John-Robertt/recipeaudit/internal/app/run"
	"github.com/John-Robertt/recipeaudit/internal/config"
	"github.com/John-Robertt/recipeaudit/internal/infra/fsx"
	"github.com/John-Robertt/recipeaudit/internal/infra/logx"
	"github.com/John-Robertt/recipeaudit/internal/report"
)

const (
	exitOK    = 0
	exitFail  = 1
	exitUsage = 2
)

func main() {
	os.Exit(execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// exitError 表示命令已开始执行后的失败（exit 1）。cobra 自身返回的错误（未知参数/命令等）视为用法错误（exit 2）。
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

var errIssuesFound = errors.New("发现问题（--fail-on-issues）")

type cliFlags struct {
	config       string
	data         string
	inputFormat  string
	format       string
	out          string
	concurrency  int
	logLevel     string
	failOnIssues bool
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}

	var ee *exitError
	if errors.As(err, &ee) {
		if !errors.Is(ee.err, errIssuesFound) {
			fmt.Fprintf(stderr, "错误：%v\n", ee.err)
		}
		return ee.code
	}
	fmt.Fprintf(stderr, "参数错误：%v\n\n使用 \"recipeaudit --help\" 查看详细说明。\n", err)
	return exitUsage
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	f := &cliFlags{}

	root := &cobra.Command{
		Use:   "recipeaudit",
		Short: "鸡尾酒配方数据质量审计",
		Long: `recipeaudit 读取配方数据集，按原料文本估算体积，并标记可疑配方：
  - 主基酒未出现在原料中
  - 总量过大、酸度或甜度过高

不带子命令时等同于 "recipeaudit audit"。`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAudit(cmd, f)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&f.config, "config", "", "配置文件路径（默认依次尝试 ./recipeaudit.yaml|yml|json）")
	pf.StringVar(&f.data, "data", "", "数据集：文件、目录或 http(s) URL（默认 data/recipes.json）")
	pf.StringVar(&f.inputFormat, "input-format", "", "数据集格式：json|yaml|html（默认按扩展名推断）")
	pf.StringVar(&f.format, "format", "", "输出格式：text|json|yaml（默认 text）")
	pf.StringVar(&f.out, "out", "", "同时把报告原子写入该文件")
	pf.IntVar(&f.concurrency, "concurrency", config.DefaultConcurrency, "审计并发数")
	pf.StringVar(&f.logLevel, "log-level", logx.DefaultLevel, "日志级别：debug|info|warn|error（写入 stderr）")

	auditCmd := &cobra.Command{
		Use:   "audit",
		Short: "审计数据集并输出问题列表",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAudit(cmd, f)
		},
	}
	for _, c := range []*cobra.Command{root, auditCmd} {
		c.Flags().BoolVar(&f.failOnIssues, "fail-on-issues", false, "存在问题时以 1 退出")
	}

	measureCmd := &cobra.Command{
		Use:   "measure",
		Short: "输出每条配方的体积聚合（total/acid/sweet/spirit）",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMeasure(cmd, f)
		},
	}

	root.AddCommand(auditCmd, measureCmd)
	return root
}

func loadConfig(cmd *cobra.Command, f *cliFlags) (config.EffectiveConfig, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return config.EffectiveConfig{}, fmt.Errorf("读取当前目录失败：%w", err)
	}

	changed := func(name string) bool {
		fl := cmd.Flags().Lookup(name)
		return fl != nil && fl.Changed
	}

	return config.LoadEffective(cwd, config.CLIArgs{
		ConfigPath:      f.config,
		Data:            f.data,
		DataSet:         changed("data"),
		InputFormat:     f.inputFormat,
		InputFormatSet:  changed("input-format"),
		Format:          f.format,
		FormatSet:       changed("format"),
		Out:             f.out,
		Concurrency:     f.concurrency,
		ConcurrencySet:  changed("concurrency"),
		LogLevel:        f.logLevel,
		LogLevelSet:     changed("log-level"),
		FailOnIssues:    f.failOnIssues,
		FailOnIssuesSet: changed("fail-on-issues"),
	})
}

// setup 读取配置并构造 logger；失败都按 exit 1 处理。
func setup(cmd *cobra.Command, f *cliFlags) (config.EffectiveConfig, *zap.Logger, error) {
	eff, err := loadConfig(cmd, f)
	if err != nil {
		return config.EffectiveConfig{}, nil, &exitError{code: exitFail, err: err}
	}
	logger, err := logx.New(eff.LogLevel, cmd.ErrOrStderr())
	if err != nil {
		return config.EffectiveConfig{}, nil, &exitError{code: exitFail, err: err}
	}
	if eff.ConfigFile != "" {
		logger.Info("config loaded", zap.String("path", eff.ConfigFile))
	}
	return eff, logger, nil
}

func runAudit(cmd *cobra.Command, f *cliFlags) error {
	eff, logger, err := setup(cmd, f)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	var obs run.Observer
	if w, ok := progressWriter(cmd.ErrOrStderr()); ok {
		obs = newProgressUI(w)
	}

	rr, err := run.Execute(cmd.Context(), eff, logger, obs)
	if err != nil {
		return &exitError{code: exitFail, err: err}
	}

	var buf bytes.Buffer
	if err := report.Render(&buf, eff.Format, rr); err != nil {
		return &exitError{code: exitFail, err: err}
	}
	if err := emit(cmd.OutOrStdout(), eff.Out, buf.Bytes()); err != nil {
		return &exitError{code: exitFail, err: err}
	}

	if eff.FailOnIssues && rr.Summary.Total > 0 {
		return &exitError{code: exitFail, err: errIssuesFound}
	}
	return nil
}

func runMeasure(cmd *cobra.Command, f *cliFlags) error {
	eff, logger, err := setup(cmd, f)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	rows, err := run.Measure(cmd.Context(), eff, logger)
	if err != nil {
		return &exitError{code: exitFail, err: err}
	}

	var buf bytes.Buffer
	if err := report.RenderMeasure(&buf, eff.Format, rows); err != nil {
		return &exitError{code: exitFail, err: err}
	}
	if err := emit(cmd.OutOrStdout(), eff.Out, buf.Bytes()); err != nil {
		return &exitError{code: exitFail, err: err}
	}
	return nil
}

// emit 把渲染结果写到 stdout；指定 --out 时再原子写入文件。
func emit(stdout io.Writer, out string, b []byte) error {
	if _, err := stdout.Write(b); err != nil {
		return err
	}
	if out == "" {
		return nil
	}
	if err := fsx.WriteFile(out, b); err != nil {
		return fmt.Errorf("写入报告文件 %q 失败：%w", out, err)
	}
	return nil
}

// progressWriter：进度只在 stderr 是交互终端时启用，且永不写 stdout。
func progressWriter(stderr io.Writer) (io.Writer, bool) {
	f, ok := stderr.(*os.File)
	if !ok || !isTTY(f) {
		return nil, false
	}
	return f, true
}

func isTTY(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
