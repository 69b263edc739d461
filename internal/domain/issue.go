package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

type IssueKind string

const (
	IssuePrimaryLiquorMissing IssueKind = "primary_liquor_missing"
	IssueLargeVolume          IssueKind = "large_volume"
	IssueExtremeAcid          IssueKind = "extreme_acid"
	IssueExtremeSweet         IssueKind = "extreme_sweet"
)

// Issue 描述一条被标记的异常。
//
// Message 是对外的单行文本（text 输出逐行打印它），其余字段供 json/yaml 报告使用。
type Issue struct {
	Kind       IssueKind `json:"kind" yaml:"kind"`
	RecipeID   RecipeID  `json:"recipe_id" yaml:"recipe_id"`
	RecipeName string    `json:"recipe_name" yaml:"recipe_name"`
	Value      float64   `json:"value,omitempty" yaml:"value,omitempty"`
	Liquors    []string  `json:"liquors,omitempty" yaml:"liquors,omitempty"`
	Message    string    `json:"message" yaml:"message"`
}

func (i Issue) String() string { return i.Message }

// NewPrimaryLiquorIssue 构造“主基酒不在原料中”的 Issue。liquors 为已小写的声明列表。
func NewPrimaryLiquorIssue(r Recipe, liquors []string) Issue {
	ls := append([]string(nil), liquors...)
	return Issue{
		Kind:       IssuePrimaryLiquorMissing,
		RecipeID:   r.ID,
		RecipeName: r.Name,
		Liquors:    ls,
		Message:    fmt.Sprintf("%s: Main liquor %s not found in ingredients.", prefix(r), FormatList(ls)),
	}
}

func NewLargeVolumeIssue(r Recipe, total float64) Issue {
	return volumeIssue(IssueLargeVolume, r, total, "Suspiciously large volume")
}

func NewExtremeAcidIssue(r Recipe, acid float64) Issue {
	return volumeIssue(IssueExtremeAcid, r, acid, "Extreme Acid")
}

func NewExtremeSweetIssue(r Recipe, sweet float64) Issue {
	return volumeIssue(IssueExtremeSweet, r, sweet, "Extreme Sweet")
}

func volumeIssue(kind IssueKind, r Recipe, v float64, label string) Issue {
	return Issue{
		Kind:       kind,
		RecipeID:   r.ID,
		RecipeName: r.Name,
		Value:      v,
		Message:    fmt.Sprintf("%s: %s (%s oz).", prefix(r), label, FormatOunces(v)),
	}
}

func prefix(r Recipe) string {
	return fmt.Sprintf("ID %s (%s)", r.ID, r.Name)
}

// FormatOunces 输出最短可往返的十进制表示；整数值补 ".0"（20 -> "20.0"）。
// 绝对值 >= 1e16 或 < 1e-4 时改用指数形式（1e+16、1e-05）。
func FormatOunces(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	a := math.Abs(v)
	if a != 0 && (a >= 1e16 || a < 1e-4) {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// FormatList 把字符串列表渲染为 ['a', 'b'] 形式（与 Python list repr 一致）。
// 含单引号且不含双引号的元素改用双引号包裹；控制字符与不可打印字符转义，保证结果是单行。
func FormatList(items []string) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, s := range items {
		if i > 0 {
			b.WriteString(", ")
		}
		quoteItem(&b, s)
	}
	b.WriteByte(']')
	return b.String()
}

func quoteItem(b *strings.Builder, s string) {
	q := byte('\'')
	if strings.Contains(s, "'") && !strings.Contains(s, `"`) {
		q = '"'
	}
	b.WriteByte(q)
	for _, r := range s {
		switch {
		case r == '\\':
			b.WriteString(`\\`)
		case r == rune(q):
			b.WriteByte('\\')
			b.WriteByte(q)
		case r == '\t':
			b.WriteString(`\t`)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case unicode.IsPrint(r):
			b.WriteRune(r)
		case r < 0x100:
			fmt.Fprintf(b, `\x%02x`, r)
		case r < 0x10000:
			fmt.Fprintf(b, `\u%04x`, r)
		default:
			fmt.Fprintf(b, `\U%08x`, r)
		}
	}
	b.WriteByte(q)
}
