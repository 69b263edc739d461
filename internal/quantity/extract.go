package quantity

import (
	"regexp"
	"strconv"
	"strings"
)

// Unit 是唯一识别的体积单位。
const Unit = "oz"

// 数字段允许任意个数字与 '.'（"1.2.3" 也能匹配，但随后解析失败记 0）。
// 数字与单位之间的空白包含 Unicode 空白（不换行空格 U+00A0、窄空格 U+202F 等），
// RE2 的 \s 不含 \v 且只覆盖 ASCII，因此补上 \v、\p{Z}、U+0085 与 U+001C-U+001F。
var ozRE = regexp.MustCompile(`([\d.]+)[\s\v\p{Z}\x{85}\x{1c}-\x{1f}]*oz`)

const (
	KindNoMatch       = "no_match"
	KindInvalidNumber = "invalid_number"
)

// UnparsedError 说明为什么一条原料没有贡献体积。
type UnparsedError struct {
	// Kind: "no_match" 或 "invalid_number"
	Kind string
	// Raw 是 invalid_number 时匹配到的数字段。
	Raw string
}

func (e *UnparsedError) Error() string {
	switch e.Kind {
	case KindNoMatch:
		return "未找到 <数字> oz 形式的用量"
	case KindInvalidNumber:
		return "用量数字无法解析：" + strconv.Quote(e.Raw)
	default:
		return "unparsed"
	}
}

// Extract 从原料描述中提取第一个 "<数字> oz" 用量。
// 失败时返回 0 与 *UnparsedError。
func Extract(ingredient string) (float64, error) {
	m := ozRE.FindStringSubmatch(strings.ToLower(ingredient))
	if len(m) < 2 {
		return 0, &UnparsedError{Kind: KindNoMatch}
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil || v < 0 {
		return 0, &UnparsedError{Kind: KindInvalidNumber, Raw: m[1]}
	}
	return v, nil
}

// Ounces 是 Extract 的降级版本：任何失败都视为 0 贡献，不向调用方暴露错误。
func Ounces(ingredient string) float64 {
	v, _ := Extract(ingredient)
	return v
}
