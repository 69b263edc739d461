package run

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/John-Robertt/recipeaudit/internal/audit"
	"github.com/John-Robertt/recipeaudit/internal/config"
	"github.com/John-Robertt/recipeaudit/internal/dataset"
	"github.com/John-Robertt/recipeaudit/internal/domain"
	"github.com/John-Robertt/recipeaudit/internal/infra/httpx"
	"github.com/John-Robertt/recipeaudit/internal/quantity"
	"github.com/John-Robertt/recipeaudit/internal/report"
)

// Execute 执行一次审计：加载数据集 -> 逐条审计 -> 生成 AuditReport。
//
// 加载失败直接返回错误（不产生部分报告）；审计本身不会失败，只有 ctx 取消会中断。
// logger 与 obs 均可为 nil。
func Execute(ctx context.Context, eff config.EffectiveConfig, logger *zap.Logger, obs Observer) (domain.AuditReport, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	started := time.Now().UTC()
	runID := uuid.NewString()
	logger = logger.With(zap.String("run_id", runID))

	if obs != nil {
		obs.OnStart(eff)
	}

	recipes, err := load(ctx, eff, logger, obs)
	if err != nil {
		return domain.AuditReport{}, err
	}
	logUnparsed(logger, recipes)

	auditStarted := time.Now()
	var done atomic.Int64
	issues, err := audit.RunParallel(ctx, recipes, eff.Rules, audit.Options{
		Workers: eff.Concurrency,
		OnRecipe: func(idx int, r domain.Recipe, one []domain.Issue) {
			n := int(done.Add(1))
			if len(one) > 0 {
				logger.Debug("recipe flagged",
					zap.String("id", string(r.ID)),
					zap.Int("index", idx),
					zap.Int("issues", len(one)),
				)
			}
			if obs != nil {
				obs.OnRecipeDone(n, len(recipes), r, one)
			}
		},
	})
	if err != nil {
		return domain.AuditReport{}, err
	}
	if obs != nil {
		obs.OnPhaseDone("audit", map[string]any{
			"workers": eff.Concurrency,
			"issues":  len(issues),
		}, time.Since(auditStarted))
	}

	rr := domain.AuditReport{
		RunID:      runID,
		Source:     eff.Data,
		StartedAt:  started,
		FinishedAt: time.Now().UTC(),
		Scanned:    len(recipes),
		Issues:     issues,
	}
	rr.Finalize()
	logger.Info("audit finished",
		zap.Int("scanned", rr.Scanned),
		zap.Int("issues", rr.Summary.Total),
	)
	return rr, nil
}

// Measure 加载数据集并返回每条配方的体积聚合（按输入顺序）。
func Measure(ctx context.Context, eff config.EffectiveConfig, logger *zap.Logger) ([]report.MeasureRow, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	recipes, err := load(ctx, eff, logger, nil)
	if err != nil {
		return nil, err
	}
	logUnparsed(logger, recipes)

	rows := make([]report.MeasureRow, 0, len(recipes))
	for _, r := range recipes {
		rows = append(rows, report.MeasureRow{
			ID:      r.ID,
			Name:    r.Name,
			Volumes: audit.Measure(r, eff.Rules),
		})
	}
	return rows, nil
}

func load(ctx context.Context, eff config.EffectiveConfig, logger *zap.Logger, obs Observer) ([]domain.Recipe, error) {
	client, err := httpx.NewClient(eff.ProxyURL)
	if err != nil {
		return nil, &config.Error{Code: config.ErrCodeInvalid, Err: fmt.Errorf("proxy.url 无效：%w", err)}
	}

	started := time.Now()
	recipes, err := dataset.Load(ctx, eff.Data, dataset.Options{
		Format:      eff.InputFormat,
		ExcludeDirs: eff.ExcludeDirs,
		Client:      client,
	})
	if err != nil {
		return nil, err
	}
	dur := time.Since(started)

	logger.Debug("dataset loaded",
		zap.String("source", eff.Data),
		zap.Int("recipes", len(recipes)),
		zap.Duration("took", dur),
	)
	if obs != nil {
		obs.OnPhaseDone("load", map[string]any{"recipes": len(recipes)}, dur)
	}
	return recipes, nil
}

// logUnparsed 在 debug 级别记录每个体积记为 0 的原料及原因。
func logUnparsed(logger *zap.Logger, recipes []domain.Recipe) {
	if !logger.Core().Enabled(zap.DebugLevel) {
		return
	}
	for _, r := range recipes {
		for _, ing := range r.Ingredients {
			if _, err := quantity.Extract(ing); err != nil {
				logger.Debug("ingredient volume counted as 0",
					zap.String("id", string(r.ID)),
					zap.String("ingredient", ing),
					zap.Error(err),
				)
			}
		}
	}
}
