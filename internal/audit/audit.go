package audit

import (
	"strings"

	"github.com/John-Robertt/recipeaudit/internal/domain"
	"github.com/John-Robertt/recipeaudit/internal/quantity"
)

// Run 按输入顺序审计全部配方，返回有序的 Issue 列表。
// 纯函数：不做 I/O，不修改 recipes。
func Run(recipes []domain.Recipe, rules Rules) []domain.Issue {
	rules = rules.Normalize()
	issues := make([]domain.Issue, 0, len(recipes)/4)
	for i := range recipes {
		issues = append(issues, check(recipes[i], rules)...)
	}
	return issues
}

// Check 审计单条配方。输出顺序固定：主基酒 -> 总量 -> 酸 -> 甜。
func Check(r domain.Recipe, rules Rules) []domain.Issue {
	return check(r, rules.Normalize())
}

func check(r domain.Recipe, rules Rules) []domain.Issue {
	var issues []domain.Issue
	name := strings.ToLower(r.Name)

	if declared, found := primaryLiquor(r, rules); !found && len(declared) > 0 &&
		!containsAny(declared, rules.ExemptLiquors) &&
		!containsSubstr(name, rules.PrimaryExemptNames) {
		issues = append(issues, domain.NewPrimaryLiquorIssue(r, declared))
	}

	v := measure(r, rules)

	if v.Total > rules.MaxTotal && !containsSubstr(name, rules.LargeVolumeExemptNames) {
		issues = append(issues, domain.NewLargeVolumeIssue(r, v.Total))
	}
	if v.Acid > rules.MaxAcid {
		issues = append(issues, domain.NewExtremeAcidIssue(r, v.Acid))
	}
	if v.Sweet > rules.MaxSweet && !containsSubstr(name, rules.SweetExemptNames) {
		issues = append(issues, domain.NewExtremeSweetIssue(r, v.Sweet))
	}
	return issues
}

// HasPrimaryLiquor 报告声明的主基酒（含别名）是否出现在原料文本中。
// 没有声明时返回 false。
func HasPrimaryLiquor(r domain.Recipe, rules Rules) bool {
	_, found := primaryLiquor(r, rules.Normalize())
	return found
}

// primaryLiquor 返回小写后的声明列表，以及是否至少命中一个。
func primaryLiquor(r domain.Recipe, rules Rules) (declared []string, found bool) {
	text := strings.ToLower(strings.Join(r.Ingredients, " "))

	declared = make([]string, 0, len(r.MainLiquor))
	for _, m := range r.MainLiquor {
		m = strings.ToLower(m)
		declared = append(declared, m)
		if strings.Contains(text, m) {
			found = true
		}
		if containsSubstr(text, rules.Aliases[m]) {
			found = true
		}
	}
	return declared, found
}

// Measure 计算单条配方的体积聚合。
func Measure(r domain.Recipe, rules Rules) domain.Volumes {
	return measure(r, rules.Normalize())
}

func measure(r domain.Recipe, rules Rules) domain.Volumes {
	var v domain.Volumes
	for _, ing := range r.Ingredients {
		oz := quantity.Ounces(ing)
		v.Total += oz

		low := strings.ToLower(ing)
		addN(&v.Acid, oz, hits(low, rules.AcidKeywords, rules.Counting))
		addN(&v.Sweet, oz, hits(low, rules.SweetKeywords, rules.Counting))
		addN(&v.Spirit, oz, hits(low, rules.SpiritKeywords, rules.Counting))
	}
	return v
}

// addN 逐次累加，保持与“每命中一次加一次”相同的浮点舍入顺序。
func addN(sum *float64, oz float64, n int) {
	for ; n > 0; n-- {
		*sum += oz
	}
}

// hits 返回累加次数：per_keyword 为命中的关键词个数；per_ingredient 最多为 1。
func hits(low string, keywords []string, c Counting) int {
	n := 0
	for _, k := range keywords {
		if strings.Contains(low, k) {
			n++
			if c == CountPerIngredient {
				return 1
			}
		}
	}
	return n
}

func containsSubstr(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func containsAny(items, set []string) bool {
	for _, it := range items {
		for _, s := range set {
			if it == s {
				return true
			}
		}
	}
	return false
}
