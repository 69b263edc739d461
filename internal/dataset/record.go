package dataset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/John-Robertt/recipeaudit/internal/domain"
)

// record 是各格式解码后的中间形态：id 已转换为展示文本，HasID/Name 保留“字段是否存在”。
type record struct {
	ID    string
	HasID bool
	Name  *string

	Ingredients  []string
	MainLiquor   []string
	Flavor       []string
	Difficulty   string
	Image        string
	Instructions []string
}

var (
	errMissingID   = errors.New("缺少必填字段 id")
	errMissingName = errors.New("缺少必填字段 name")
	errNullName    = errors.New("name 不能为 null")
	errScalarID    = errors.New("id 必须是标量（字符串/数字/布尔/null）")
)

// recipe 校验必填字段，并把缺省的列表字段规范为空切片。
func (rec record) recipe() (domain.Recipe, error) {
	if !rec.HasID {
		return domain.Recipe{}, errMissingID
	}
	if rec.Name == nil {
		return domain.Recipe{}, errMissingName
	}
	return domain.Recipe{
		ID:           domain.RecipeID(rec.ID),
		Name:         *rec.Name,
		Ingredients:  orEmpty(rec.Ingredients),
		MainLiquor:   orEmpty(rec.MainLiquor),
		Flavor:       rec.Flavor,
		Difficulty:   rec.Difficulty,
		Image:        rec.Image,
		Instructions: rec.Instructions,
	}, nil
}

func orEmpty(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

// jsonScalarID 把 JSON 里的 id 转为展示文本，与 Python 打印 json.load 结果的方式一致：
// 字符串去引号；整数按十进制；浮点按最短往返（1.50 -> 1.5，1e2 -> 100.0）；
// true/false/null -> True/False/None。对象/数组不是合法 id。
func jsonScalarID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", errMissingID
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	case '{', '[':
		return "", errScalarID
	case 'n':
		return "None", nil
	case 't':
		return "True", nil
	case 'f':
		return "False", nil
	default:
		return formatNumber(string(raw))
	}
}

// formatNumber：不含 '.'/'e' 的字面量是整数（任意精度），其余按 float64。
func formatNumber(s string) (string, error) {
	if !strings.ContainsAny(s, ".eE") {
		n, ok := new(big.Int).SetString(s, 10)
		if !ok {
			return "", fmt.Errorf("id 不是合法数字：%q", s)
		}
		return n.String(), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return "", fmt.Errorf("id 不是合法数字：%q", s)
	}
	return formatFloat(f), nil
}

// formatFloat 与 Python float repr 一致（溢出为 inf）。
func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}
	return domain.FormatOunces(f)
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func normSpace(s string) string { return strings.Join(strings.Fields(s), " ") }
