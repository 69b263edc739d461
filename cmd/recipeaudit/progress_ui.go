package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/John-Robertt/recipeaudit/internal/app/run"
	"github.com/John-Robertt/recipeaudit/internal/config"
	"github.com/John-Robertt/recipeaudit/internal/domain"
)

var _ run.Observer = (*progressUI)(nil)

// progressUI 是交互终端下的进度输出（只写 stderr）。
//
// 每个阶段一行；被标记的配方各一行；未被标记的配方只计数。
type progressUI struct {
	w io.Writer

	mu        sync.Mutex
	startedAt time.Time

	total   int
	done    int
	flagged int

	title lipgloss.Style
	label lipgloss.Style
	warn  lipgloss.Style
	dim   lipgloss.Style
}

func newProgressUI(w io.Writer) *progressUI {
	r := lipgloss.NewRenderer(w)
	return &progressUI{
		w:     w,
		title: r.NewStyle().Bold(true),
		label: r.NewStyle().Foreground(lipgloss.Color("6")),
		warn:  r.NewStyle().Foreground(lipgloss.Color("3")),
		dim:   r.NewStyle().Faint(true),
	}
}

func (p *progressUI) OnStart(eff config.EffectiveConfig) {
	now := time.Now()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.startedAt.IsZero() {
		p.startedAt = now
	}

	fmt.Fprintln(p.w, p.title.Render(fmt.Sprintf("[%s] recipeaudit", now.Format("15:04:05"))))
	fmt.Fprintln(p.w, p.label.Render("配置（生效）:"))
	if eff.ConfigFile != "" {
		fmt.Fprintf(p.w, "  config: %s\n", eff.ConfigFile)
	}
	fmt.Fprintf(p.w, "  data: %s\n", formatSource(eff.Data))
	fmt.Fprintf(p.w, "  input_format: %s\n", orAuto(eff.InputFormat))
	fmt.Fprintf(p.w, "  format: %s\n", eff.Format)
	fmt.Fprintf(p.w, "  concurrency: %d\n", eff.Concurrency)
	fmt.Fprintf(p.w, "  thresholds: total>%s acid>%s sweet>%s (%s)\n",
		domain.FormatOunces(eff.Rules.MaxTotal),
		domain.FormatOunces(eff.Rules.MaxAcid),
		domain.FormatOunces(eff.Rules.MaxSweet),
		eff.Rules.Counting,
	)
	if len(eff.ExcludeDirs) > 0 {
		fmt.Fprintf(p.w, "  exclude_dirs: %s\n", formatStringListJSON(eff.ExcludeDirs))
	}
	if eff.Out != "" {
		fmt.Fprintf(p.w, "  out: %s\n", eff.Out)
	}
	fmt.Fprintln(p.w)
}

func (p *progressUI) OnPhaseDone(name string, fields map[string]any, dur time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch name {
	case "load":
		p.total = intField(fields, "recipes")
		fmt.Fprintf(p.w, "%s recipes=%d %s\n",
			p.label.Render("加载:"), p.total, p.dim.Render("("+formatShortDuration(dur)+")"),
		)
	case "audit":
		fmt.Fprintf(p.w, "%s workers=%d flagged=%d issues=%d %s\n",
			p.label.Render("审计:"), intField(fields, "workers"), p.flagged, intField(fields, "issues"),
			p.dim.Render("("+formatShortDuration(dur)+")"),
		)
		fmt.Fprintf(p.w, "完成: elapsed=%s\n\n", formatElapsed(time.Since(p.startedAt)))
	default:
		fmt.Fprintf(p.w, "%s (%s)\n", name, formatShortDuration(dur))
	}
}

func (p *progressUI) OnRecipeDone(done, total int, r domain.Recipe, issues []domain.Issue) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if done > p.done {
		p.done = done
	}
	p.total = total
	if len(issues) == 0 {
		return
	}
	p.flagged++

	kinds := make([]string, 0, len(issues))
	for _, it := range issues {
		kinds = append(kinds, string(it.Kind))
	}
	fmt.Fprintf(p.w, "[%d/%d] %s %s %s\n",
		done, total, r.ID, truncate(r.Name, 60), p.warn.Render(strings.Join(kinds, ",")),
	)
}

func orAuto(s string) string {
	if strings.TrimSpace(s) == "" {
		return "auto"
	}
	return s
}

// formatSource 隐去 URL 中的认证信息。
func formatSource(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" || u.User == nil {
		return raw
	}
	u.User = nil
	return u.String() + " (auth=on)"
}

func formatStringListJSON(xs []string) string {
	if xs == nil {
		xs = []string{}
	}
	b, err := json.Marshal(xs)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if max <= 0 || len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

func formatShortDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

func formatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	sec := int(d.Seconds())
	h := sec / 3600
	m := (sec % 3600) / 60
	s := sec % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func intField(fields map[string]any, key string) int {
	if fields == nil {
		return 0
	}
	switch x := fields[key].(type) {
	case int:
		return x
	case int64:
		return int(x)
	default:
		return 0
	}
}
