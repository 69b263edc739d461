package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/John-Robertt/recipeaudit/internal/audit"
	"github.com/John-Robertt/recipeaudit/internal/dataset"
	"github.com/John-Robertt/recipeaudit/internal/infra/logx"
	"github.com/John-Robertt/recipeaudit/internal/report"
)

const (
	// ErrCodeNotFound 表示 --config 显式指定的配置文件不存在。
	ErrCodeNotFound = "config_not_found"
	// ErrCodeInvalid 表示配置文件无法读取/解析，或字段不合法。
	ErrCodeInvalid = "config_invalid"
)

const (
	// DefaultConcurrency 为 1：默认顺序审计。
	DefaultConcurrency = 1
	// MaxConcurrency 是并发上限；超出截断。
	MaxConcurrency = 32
)

// DiscoverNames 是无 --config 时在 cwd 下依次尝试的配置文件名（均为可选）。
var DiscoverNames = []string{"recipeaudit.yaml", "recipeaudit.yml", "recipeaudit.json"}

// CLIArgs 是 CLI 暴露的入口，并保留“是否显式指定”的信息。
// 这能保证覆盖优先级可实现：例如 --fail-on-issues=false 必须能覆盖配置中的 true。
type CLIArgs struct {
	ConfigPath string

	Data    string
	DataSet bool

	InputFormat    string
	InputFormatSet bool

	Format    string
	FormatSet bool

	Out string

	Concurrency    int
	ConcurrencySet bool

	LogLevel    string
	LogLevelSet bool

	FailOnIssues    bool
	FailOnIssuesSet bool
}

// FileConfig 对应 recipeaudit.yaml / .json 的解析结构。
type FileConfig struct {
	Data         string       `mapstructure:"data"`
	InputFormat  string       `mapstructure:"input_format"`
	Format       string       `mapstructure:"format"`
	Concurrency  int          `mapstructure:"concurrency"`
	LogLevel     string       `mapstructure:"log_level"`
	FailOnIssues *bool        `mapstructure:"fail_on_issues"`
	ExcludeDirs  []string     `mapstructure:"exclude_dirs"`
	Proxy        *ProxyConfig `mapstructure:"proxy"`
	Rules        *RulesConfig `mapstructure:"rules"`
}

type ProxyConfig struct {
	URL string `mapstructure:"url"`
}

// RulesConfig 覆盖默认审计规则；未出现的字段保持默认值。
// 列表字段一旦出现即整体替换（不与默认表合并）。
type RulesConfig struct {
	MaxTotal *float64 `mapstructure:"max_total"`
	MaxAcid  *float64 `mapstructure:"max_acid"`
	MaxSweet *float64 `mapstructure:"max_sweet"`

	AcidKeywords   []string `mapstructure:"acid_keywords"`
	SweetKeywords  []string `mapstructure:"sweet_keywords"`
	SpiritKeywords []string `mapstructure:"spirit_keywords"`

	Aliases       map[string][]string `mapstructure:"aliases"`
	ExemptLiquors []string            `mapstructure:"exempt_liquors"`

	Counting string `mapstructure:"counting"`
}

// EffectiveConfig 是合并并做最小规范化后的最终配置（实现层直接消费，不再做二次默认/优先级判断）。
type EffectiveConfig struct {
	// ConfigFile 是实际读取的配置文件（绝对路径）；未使用配置文件时为空。
	ConfigFile string

	// Data 是数据集位置：clean + absolute 的本地路径，或原样的 http(s) URL。
	Data        string
	InputFormat string

	Format string
	Out    string

	Concurrency  int
	LogLevel     string
	FailOnIssues bool

	ExcludeDirs []string
	ProxyURL    string

	Rules audit.Rules
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeNotFound:
		return fmt.Sprintf("%s：未找到配置文件 %q", e.Code, e.Path)
	case ErrCodeInvalid:
		if e.Path == "" {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		if e.Err != nil {
			return fmt.Sprintf("%s：配置文件 %q 无效：%v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s：配置文件 %q 无效", e.Code, e.Path)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// LoadEffective 发现并读取配置文件，然后与 CLI 参数合并为最终配置。
//
// 发现规则（固定）：
// 1) CLI 提供 --config：必须存在
// 2) 否则依次尝试 <cwd>/recipeaudit.yaml|yml|json（可选，都不存在则只用默认值）
//
// 覆盖优先级（固定）：CLI > 配置文件 > 内置默认。
// 相对路径：CLI 的相对 cwd；配置文件里的相对配置文件所在目录。
func LoadEffective(cwd string, cli CLIArgs) (EffectiveConfig, error) {
	cwdAbs, err := filepath.Abs(cwd)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cwd, Err: err}
	}

	var (
		cfgPath string
		fc      FileConfig
	)

	if strings.TrimSpace(cli.ConfigPath) != "" {
		cfgPath = absCleanFrom(cwdAbs, cli.ConfigPath)
		if _, err := os.Stat(cfgPath); err != nil {
			if os.IsNotExist(err) {
				return EffectiveConfig{}, &Error{Code: ErrCodeNotFound, Path: cfgPath, Err: os.ErrNotExist}
			}
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
		}
	} else {
		for _, name := range DiscoverNames {
			p := filepath.Join(cwdAbs, name)
			if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
				cfgPath = p
				break
			}
		}
	}

	if cfgPath != "" {
		fc, err = readFileConfig(cfgPath)
		if err != nil {
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
		}
	}

	eff, err := merge(cwdAbs, cli, fc, cfgPath)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}
	eff.ConfigFile = cfgPath
	return eff, nil
}

func merge(cwdAbs string, cli CLIArgs, fc FileConfig, cfgPath string) (EffectiveConfig, error) {
	cfgDir := cwdAbs
	if cfgPath != "" {
		cfgDir = filepath.Dir(cfgPath)
	}

	// data：CLI > config > 默认 data/recipes.json
	data := resolveData(cwdAbs, dataset.DefaultPath)
	if cli.DataSet && strings.TrimSpace(cli.Data) != "" {
		data = resolveData(cwdAbs, cli.Data)
	} else if strings.TrimSpace(fc.Data) != "" {
		data = resolveData(cfgDir, fc.Data)
	}

	inputFormat := strings.ToLower(strings.TrimSpace(pick(cli.InputFormatSet, cli.InputFormat, fc.InputFormat)))
	if inputFormat != "" {
		if _, ok := dataset.DefaultRegistry().Get(inputFormat); !ok {
			return EffectiveConfig{}, fmt.Errorf("input_format 只能是 %s，实际是 %q", strings.Join(dataset.DefaultRegistry().Names(), "|"), inputFormat)
		}
	}

	format := strings.ToLower(strings.TrimSpace(pick(cli.FormatSet, cli.Format, fc.Format)))
	if format == "" {
		format = report.FormatText
	}
	if !report.IsFormat(format) {
		return EffectiveConfig{}, fmt.Errorf("format 只能是 %s，实际是 %q", strings.Join(report.Formats, "|"), format)
	}

	out := ""
	if strings.TrimSpace(cli.Out) != "" {
		out = absCleanFrom(cwdAbs, cli.Out)
	}

	concurrency := fc.Concurrency
	if cli.ConcurrencySet {
		concurrency = cli.Concurrency
	}
	if concurrency == 0 {
		concurrency = DefaultConcurrency
	}
	if concurrency < 1 {
		concurrency = 1
	}
	if concurrency > MaxConcurrency {
		concurrency = MaxConcurrency
	}

	logLevel := pick(cli.LogLevelSet, cli.LogLevel, fc.LogLevel)
	if strings.TrimSpace(logLevel) == "" {
		logLevel = logx.DefaultLevel
	}
	if _, err := logx.ParseLevel(logLevel); err != nil {
		return EffectiveConfig{}, err
	}

	failOnIssues := false
	if cli.FailOnIssuesSet {
		failOnIssues = cli.FailOnIssues
	} else if fc.FailOnIssues != nil {
		failOnIssues = *fc.FailOnIssues
	}

	proxyURL := ""
	if fc.Proxy != nil {
		proxyURL = strings.TrimSpace(fc.Proxy.URL)
	}
	if proxyURL != "" {
		if _, err := url.Parse(proxyURL); err != nil {
			return EffectiveConfig{}, fmt.Errorf("proxy.url 无效：%w", err)
		}
	}

	rules, err := mergeRules(audit.DefaultRules(), fc.Rules)
	if err != nil {
		return EffectiveConfig{}, err
	}

	return EffectiveConfig{
		Data:         data,
		InputFormat:  inputFormat,
		Format:       format,
		Out:          out,
		Concurrency:  concurrency,
		LogLevel:     strings.ToLower(strings.TrimSpace(logLevel)),
		FailOnIssues: failOnIssues,
		ExcludeDirs:  append([]string(nil), fc.ExcludeDirs...),
		ProxyURL:     proxyURL,
		Rules:        rules,
	}, nil
}

func mergeRules(r audit.Rules, rc *RulesConfig) (audit.Rules, error) {
	if rc == nil {
		return r.Normalize(), nil
	}
	for name, v := range map[string]*float64{"max_total": rc.MaxTotal, "max_acid": rc.MaxAcid, "max_sweet": rc.MaxSweet} {
		if v != nil && *v < 0 {
			return audit.Rules{}, fmt.Errorf("rules.%s 不能为负数：%v", name, *v)
		}
	}
	if rc.MaxTotal != nil {
		r.MaxTotal = *rc.MaxTotal
	}
	if rc.MaxAcid != nil {
		r.MaxAcid = *rc.MaxAcid
	}
	if rc.MaxSweet != nil {
		r.MaxSweet = *rc.MaxSweet
	}
	if rc.AcidKeywords != nil {
		r.AcidKeywords = rc.AcidKeywords
	}
	if rc.SweetKeywords != nil {
		r.SweetKeywords = rc.SweetKeywords
	}
	if rc.SpiritKeywords != nil {
		r.SpiritKeywords = rc.SpiritKeywords
	}
	if rc.Aliases != nil {
		r.Aliases = rc.Aliases
	}
	if rc.ExemptLiquors != nil {
		r.ExemptLiquors = rc.ExemptLiquors
	}
	switch audit.Counting(strings.ToLower(strings.TrimSpace(rc.Counting))) {
	case "":
	case audit.CountPerKeyword:
		r.Counting = audit.CountPerKeyword
	case audit.CountPerIngredient:
		r.Counting = audit.CountPerIngredient
	default:
		return audit.Rules{}, fmt.Errorf("rules.counting 只能是 %s 或 %s，实际是 %q", audit.CountPerKeyword, audit.CountPerIngredient, rc.Counting)
	}
	return r.Normalize(), nil
}

func pick(cliSet bool, cliVal, fileVal string) string {
	if cliSet {
		return cliVal
	}
	return fileVal
}

// resolveData：URL 原样保留；本地路径以 base 为基准转为 clean + absolute。
func resolveData(base, p string) string {
	p = strings.TrimSpace(p)
	lp := strings.ToLower(p)
	if strings.HasPrefix(lp, "http://") || strings.HasPrefix(lp, "https://") {
		return p
	}
	return absCleanFrom(base, p)
}

// absCleanFrom 以 base 为基准，把 p 变为 clean + absolute。
func absCleanFrom(base, p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	p = filepath.Clean(p)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(base, p))
}

// readFileConfig 用 viper 读取并解析配置文件；格式由扩展名决定（yaml/yml/json）。
func readFileConfig(path string) (FileConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		v.SetConfigType("yaml")
	case ".json":
		v.SetConfigType("json")
	default:
		return FileConfig{}, fmt.Errorf("不支持的配置文件扩展名：%q（可选 .yaml/.yml/.json）", filepath.Ext(path))
	}

	if err := v.ReadInConfig(); err != nil {
		return FileConfig{}, fmt.Errorf("read config failed: %w", err)
	}
	var fc FileConfig
	if err := v.Unmarshal(&fc); err != nil {
		return FileConfig{}, fmt.Errorf("unmarshal config failed: %w", err)
	}
	return fc, nil
}
