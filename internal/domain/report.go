package domain

import "time"

// AuditReport 是一次审计的稳定输出结构（json/yaml 报告直接序列化它）。
//
// 约束：Issues 保持审计产生的顺序（配方输入顺序 + 配方内固定检查顺序），Finalize 不排序。
type AuditReport struct {
	RunID  string `json:"run_id" yaml:"run_id"`
	Source string `json:"source" yaml:"source"`

	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at"`

	Scanned int           `json:"scanned" yaml:"scanned"`
	Summary ReportSummary `json:"summary" yaml:"summary"`
	Issues  []Issue       `json:"issues" yaml:"issues"`
}

type ReportSummary struct {
	PrimaryLiquorMissing int `json:"primary_liquor_missing" yaml:"primary_liquor_missing"`
	LargeVolume          int `json:"large_volume" yaml:"large_volume"`
	ExtremeAcid          int `json:"extreme_acid" yaml:"extreme_acid"`
	ExtremeSweet         int `json:"extreme_sweet" yaml:"extreme_sweet"`
	Total                int `json:"total" yaml:"total"`
}

// Finalize 做两件事：
// 1) 时间统一为 UTC（JSON 输出为 RFC3339 且后缀 Z）
// 2) summary 由 issues 计算得出；issues 为 nil 时规范为空切片，保证输出 "issues": []
func (r *AuditReport) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()
	if r.Issues == nil {
		r.Issues = []Issue{}
	}

	var s ReportSummary
	for _, it := range r.Issues {
		switch it.Kind {
		case IssuePrimaryLiquorMissing:
			s.PrimaryLiquorMissing++
		case IssueLargeVolume:
			s.LargeVolume++
		case IssueExtremeAcid:
			s.ExtremeAcid++
		case IssueExtremeSweet:
			s.ExtremeSweet++
		}
	}
	s.Total = len(r.Issues)
	r.Summary = s
}
