package run

import (
	"time"

	"github.com/John-Robertt/recipeaudit/internal/config"
	"github.com/John-Robertt/recipeaudit/internal/domain"
)

// Observer 用于把“运行进度/阶段/配方结果”从核心执行流程中解耦出来。
//
// 约束：
// - run 包只负责发事件，不做任何输出（stdout 只留给报告）。
// - Observer 的实现必须并发安全：concurrency > 1 时事件可能来自多个 goroutine。
type Observer interface {
	// OnStart 在 Execute 开始时调用。
	OnStart(eff config.EffectiveConfig)
	// OnPhaseDone 在阶段（load/audit）结束时调用。
	OnPhaseDone(name string, fields map[string]any, dur time.Duration)
	// OnRecipeDone 在单条配方审计完成时调用；done 为已完成数量。
	OnRecipeDone(done, total int, r domain.Recipe, issues []domain.Issue)
}
