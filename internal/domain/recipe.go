package domain

// RecipeID 是数据集里 id 字段的展示形态。
//
// 数据集允许任意 JSON 标量作为 id：数字按原文保留（"1"、"1.0"），字符串去掉引号。
// 它只用于输出定位，不参与任何计算。
type RecipeID string

// Recipe 是一条只读的配方记录（加载后不再修改）。
//
// 不变量：
// - ID/Name 必填（由 dataset 层在解码时校验）
// - Ingredients/MainLiquor 缺失时为空切片，而不是 nil 语义上的“未知”
type Recipe struct {
	ID          RecipeID `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Ingredients []string `json:"ingredients" yaml:"ingredients"`
	MainLiquor  []string `json:"mainLiquor" yaml:"mainLiquor"`

	// 以下字段由前端使用，审计只透传（measure 输出里会展示 difficulty）。
	Flavor       []string `json:"flavor,omitempty" yaml:"flavor,omitempty"`
	Difficulty   string   `json:"difficulty,omitempty" yaml:"difficulty,omitempty"`
	Image        string   `json:"image,omitempty" yaml:"image,omitempty"`
	Instructions []string `json:"instructions,omitempty" yaml:"instructions,omitempty"`
}
