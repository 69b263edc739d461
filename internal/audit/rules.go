package audit

import "strings"

// 关键词表：分类按大小写不敏感的子串匹配。
var (
	AcidKeywords   = []string{"lemon", "lime", "grapefruit"}
	SweetKeywords  = []string{"syrup", "sugar", "cordial", "liqueur", "vermouth"}
	SpiritKeywords = []string{"vodka", "gin", "rum", "whiskey", "tequila", "bourbon", "brandy", "cognac", "mezcal"}
)

// LiquorAliases：声明的主基酒 -> 也能满足它的原料词。
var LiquorAliases = map[string][]string{
	"whiskey": {"bourbon", "rye", "scotch"},
	"bourbon": {"whiskey"},
}

// ExemptLiquors 是“非实体类别”的声明值：只要声明列表里出现其一，就不做主基酒检查。
var ExemptLiquors = []string{"liqueur", "bitters", "punch"}

// 配方名豁免词。
var (
	PrimaryExemptNames     = []string{"punch"}
	LargeVolumeExemptNames = []string{"punch", "bowl", "pitcher"}
	SweetExemptNames       = []string{"punch"}
)

const (
	DefaultMaxTotal = 12.0
	DefaultMaxAcid  = 2.5
	DefaultMaxSweet = 3.5
)

// Counting 决定同一分类内多个关键词命中同一条原料时如何累加。
type Counting string

const (
	// CountPerKeyword：每命中一个关键词，累加一次该原料体积（默认）。
	CountPerKeyword Counting = "per_keyword"
	// CountPerIngredient：同一分类内最多累加一次。
	CountPerIngredient Counting = "per_ingredient"
)

// Rules 是审计使用的全部阈值与词表。
//
// 约束：所有词表都按小写比较；Check/Run 内部会先 Normalize。
type Rules struct {
	MaxTotal float64
	MaxAcid  float64
	MaxSweet float64

	AcidKeywords   []string
	SweetKeywords  []string
	SpiritKeywords []string

	Aliases       map[string][]string
	ExemptLiquors []string

	PrimaryExemptNames     []string
	LargeVolumeExemptNames []string
	SweetExemptNames       []string

	Counting Counting
}

// DefaultRules 返回固定的默认规则（每次返回独立副本，调用方可以放心修改）。
func DefaultRules() Rules {
	aliases := make(map[string][]string, len(LiquorAliases))
	for k, v := range LiquorAliases {
		aliases[k] = clone(v)
	}
	return Rules{
		MaxTotal:               DefaultMaxTotal,
		MaxAcid:                DefaultMaxAcid,
		MaxSweet:               DefaultMaxSweet,
		AcidKeywords:           clone(AcidKeywords),
		SweetKeywords:          clone(SweetKeywords),
		SpiritKeywords:         clone(SpiritKeywords),
		Aliases:                aliases,
		ExemptLiquors:          clone(ExemptLiquors),
		PrimaryExemptNames:     clone(PrimaryExemptNames),
		LargeVolumeExemptNames: clone(LargeVolumeExemptNames),
		SweetExemptNames:       clone(SweetExemptNames),
		Counting:               CountPerKeyword,
	}
}

// Normalize 把所有词表转为小写并去掉空白项。
func (r Rules) Normalize() Rules {
	r.AcidKeywords = lowerAll(r.AcidKeywords)
	r.SweetKeywords = lowerAll(r.SweetKeywords)
	r.SpiritKeywords = lowerAll(r.SpiritKeywords)
	r.ExemptLiquors = lowerAll(r.ExemptLiquors)
	r.PrimaryExemptNames = lowerAll(r.PrimaryExemptNames)
	r.LargeVolumeExemptNames = lowerAll(r.LargeVolumeExemptNames)
	r.SweetExemptNames = lowerAll(r.SweetExemptNames)

	aliases := make(map[string][]string, len(r.Aliases))
	for k, v := range r.Aliases {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		aliases[k] = lowerAll(v)
	}
	r.Aliases = aliases

	if r.Counting == "" {
		r.Counting = CountPerKeyword
	}
	return r
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func clone(in []string) []string { return append([]string(nil), in...) }
