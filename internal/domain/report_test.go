package domain

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"
)

func TestAuditReport_Finalize_KeepOrderAndSummaryAndUTC(t *testing.T) {
	r := AuditReport{
		Source:     "/abs/data/recipes.json",
		StartedAt:  time.Date(2026, 2, 9, 10, 0, 0, 0, time.FixedZone("X", 8*3600)),
		FinishedAt: time.Date(2026, 2, 9, 10, 0, 1, 0, time.FixedZone("X", 8*3600)),
		Scanned:    3,
		Issues: []Issue{
			{Kind: IssueExtremeSweet, RecipeID: "9"},
			{Kind: IssuePrimaryLiquorMissing, RecipeID: "2"},
			{Kind: IssueExtremeAcid, RecipeID: "2"},
			{Kind: IssueLargeVolume, RecipeID: "1"},
		},
	}

	r.Finalize()

	// issues 顺序是对外契约：Finalize 不能重排。
	got := []RecipeID{r.Issues[0].RecipeID, r.Issues[1].RecipeID, r.Issues[2].RecipeID, r.Issues[3].RecipeID}
	want := []RecipeID{"9", "2", "2", "1"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("issues 顺序被改变：%v", got)
		}
	}
	s := r.Summary
	if s.PrimaryLiquorMissing != 1 || s.LargeVolume != 1 || s.ExtremeAcid != 1 || s.ExtremeSweet != 1 || s.Total != 4 {
		t.Fatalf("summary 统计不正确：%+v", s)
	}

	b, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("json.Marshal 失败：%v", err)
	}
	if !bytes.Contains(b, []byte("\"started_at\":\"2026-02-09T02:00:00Z\"")) {
		t.Fatalf("started_at 不是 UTC RFC3339：%s", string(b))
	}
}

func TestAuditReport_Finalize_EmptyIssuesIsArray(t *testing.T) {
	r := AuditReport{Scanned: 0}
	r.Finalize()

	b, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("json.Marshal 失败：%v", err)
	}
	if !bytes.Contains(b, []byte("\"issues\":[]")) {
		t.Fatalf("期望 issues 为 []，实际：%s", string(b))
	}
}
