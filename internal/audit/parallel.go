package audit

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/John-Robertt/recipeaudit/internal/domain"
)

// Options 控制 RunParallel 的执行方式。
type Options struct {
	// Workers <= 1 时退化为顺序执行。
	Workers int
	// OnRecipe 在每条配方审计完成后调用；Workers > 1 时可能并发调用，实现必须并发安全。
	OnRecipe func(idx int, r domain.Recipe, issues []domain.Issue)
}

// RunParallel 与 Run 语义相同，但允许按配方并发。
//
// 每条配方的结果写入独立槽位，最后按输入下标拼接，因此输出顺序与 Run 完全一致。
// ctx 取消时返回 ctx.Err()，不返回部分结果。
func RunParallel(ctx context.Context, recipes []domain.Recipe, rules Rules, opt Options) ([]domain.Issue, error) {
	rules = rules.Normalize()

	if opt.Workers <= 1 {
		issues := make([]domain.Issue, 0, len(recipes)/4)
		for i := range recipes {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			one := check(recipes[i], rules)
			if opt.OnRecipe != nil {
				opt.OnRecipe(i, recipes[i], one)
			}
			issues = append(issues, one...)
		}
		return issues, nil
	}

	slots := make([][]domain.Issue, len(recipes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opt.Workers)
	for i := range recipes {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			slots[i] = check(recipes[i], rules)
			if opt.OnRecipe != nil {
				opt.OnRecipe(i, recipes[i], slots[i])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	n := 0
	for _, s := range slots {
		n += len(s)
	}
	issues := make([]domain.Issue, 0, n)
	for _, s := range slots {
		issues = append(issues, s...)
	}
	return issues, nil
}
