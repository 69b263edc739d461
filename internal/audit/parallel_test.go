package audit

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/John-Robertt/recipeaudit/internal/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func sampleRecipes(n int) []domain.Recipe {
	out := make([]domain.Recipe, 0, n)
	for i := 0; i < n; i++ {
		r := domain.Recipe{
			ID:   domain.RecipeID(fmt.Sprint(i)),
			Name: fmt.Sprintf("Recipe %d", i),
		}
		switch i % 4 {
		case 0:
			r.Ingredients = []string{"2 oz gin", "1 oz lime"}
			r.MainLiquor = []string{"gin"}
		case 1:
			r.Ingredients = []string{"3 oz lemon juice", "2 oz soda"}
			r.MainLiquor = []string{"vodka"}
		case 2:
			r.Ingredients = []string{"13 oz soda"}
		case 3:
			r.Ingredients = []string{"4 oz syrup"}
			r.Name += " Punch"
		}
		out = append(out, r)
	}
	return out
}

func TestRunParallel_SameOrderAsRun(t *testing.T) {
	recipes := sampleRecipes(257)
	want := Run(recipes, DefaultRules())

	for _, workers := range []int{0, 1, 3, 16} {
		var mu sync.Mutex
		seen := 0
		got, err := RunParallel(context.Background(), recipes, DefaultRules(), Options{
			Workers: workers,
			OnRecipe: func(int, domain.Recipe, []domain.Issue) {
				mu.Lock()
				seen++
				mu.Unlock()
			},
		})
		if err != nil {
			t.Fatalf("workers=%d 不期望错误：%v", workers, err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("workers=%d 结果与顺序执行不一致 (-want +got):\n%s", workers, diff)
		}
		if seen != len(recipes) {
			t.Fatalf("workers=%d OnRecipe 调用次数：期望 %d，实际 %d", workers, len(recipes), seen)
		}
	}
}

func TestRunParallel_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, workers := range []int{1, 4} {
		got, err := RunParallel(ctx, sampleRecipes(10), DefaultRules(), Options{Workers: workers})
		if err == nil {
			t.Fatalf("workers=%d 期望 ctx 错误，实际 nil", workers)
		}
		if got != nil {
			t.Fatalf("workers=%d 取消时不应返回部分结果：%v", workers, got)
		}
	}
}
