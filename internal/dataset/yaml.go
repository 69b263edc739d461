package dataset

import (
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/John-Robertt/recipeaudit/internal/domain"
)

// YAML 解码与 JSON 同结构的 YAML 数据集（手工维护配方时更易读）。
type YAML struct{}

func (YAML) Name() string   { return "yaml" }
func (YAML) Exts() []string { return []string{".yaml", ".yml"} }

type yamlRecipe struct {
	ID           yaml.Node `yaml:"id"`
	Name         *string   `yaml:"name"`
	Ingredients  []string  `yaml:"ingredients"`
	MainLiquor   []string  `yaml:"mainLiquor"`
	Flavor       []string  `yaml:"flavor"`
	Difficulty   string    `yaml:"difficulty"`
	Image        string    `yaml:"image"`
	Instructions []string  `yaml:"instructions"`
}

func (YAML) Decode(data []byte) ([]domain.Recipe, error) {
	var items []yaml.Node
	if err := yaml.Unmarshal(data, &items); err != nil {
		return nil, err
	}

	out := make([]domain.Recipe, 0, len(items))
	for i := range items {
		var yr yamlRecipe
		if err := items[i].Decode(&yr); err != nil {
			return nil, &RecordError{Index: i, Err: err}
		}
		id, ok, err := yamlScalarID(&yr.ID)
		if err != nil {
			return nil, &RecordError{Index: i, Err: err}
		}
		r, err := record{
			ID:           id,
			HasID:        ok,
			Name:         yr.Name,
			Ingredients:  yr.Ingredients,
			MainLiquor:   yr.MainLiquor,
			Flavor:       yr.Flavor,
			Difficulty:   yr.Difficulty,
			Image:        yr.Image,
			Instructions: yr.Instructions,
		}.recipe()
		if err != nil {
			return nil, &RecordError{Index: i, Err: err}
		}
		out = append(out, r)
	}
	return out, nil
}

// yamlScalarID 与 jsonScalarID 的展示规则一致：null/bool 为 None/True/False，
// 数字按解析后的值输出（0x1F -> 31，1.50 -> 1.5），字符串原样。
func yamlScalarID(n *yaml.Node) (string, bool, error) {
	switch n.Kind {
	case 0:
		return "", false, nil
	case yaml.ScalarNode:
	default:
		return "", false, errScalarID
	}

	switch n.ShortTag() {
	case "!!null":
		return "None", true, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return "", false, err
		}
		if b {
			return "True", true, nil
		}
		return "False", true, nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			// 超出 int64：按十进制原文处理
			s, err := formatNumber(n.Value)
			return s, err == nil, err
		}
		return strconv.FormatInt(i, 10), true, nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return "", false, err
		}
		return formatFloat(f), true, nil
	default:
		return n.Value, true, nil
	}
}
