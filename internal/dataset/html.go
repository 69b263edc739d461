package dataset

import (
	"bytes"
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/John-Robertt/recipeaudit/internal/domain"
)

// HTML 从保存下来的配方页面中解析配方卡片。
//
// 卡片约定（与前端渲染的卡片结构一致，外加 data-* 属性承载元数据）：
//
//	<article class="recipe-card" data-recipe-id="12" data-main-liquor="gin, vermouth"
//	         data-flavor="dry" data-difficulty="easy">
//	  <img src="...">
//	  <h3>Martini</h3>
//	  <ul><li>2 oz gin</li>...</ul>
//	  <ol><li>Stir with ice.</li>...</ol>
//	</article>
//
// goquery 不执行 JS：只能解析已渲染（或静态导出）的页面。
type HTML struct{}

func (HTML) Name() string   { return "html" }
func (HTML) Exts() []string { return []string{".html", ".htm"} }

const cardSelector = "article.recipe-card, [data-recipe-id]"

func (HTML) Decode(data []byte) ([]domain.Recipe, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	// 卡片内部带 data-recipe-id 的元素（例如收藏按钮）不是独立配方。
	cards := doc.Find(cardSelector).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.ParentsFiltered(cardSelector).Length() == 0
	})
	if cards.Length() == 0 {
		return nil, errors.New("页面中没有找到配方卡片（" + cardSelector + "）")
	}

	out := make([]domain.Recipe, 0, cards.Length())
	var firstErr error
	cards.EachWithBreak(func(i int, s *goquery.Selection) bool {
		r, err := parseCard(s).recipe()
		if err != nil {
			firstErr = &RecordError{Index: i, Err: err}
			return false
		}
		out = append(out, r)
		return true
	})
	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}

func parseCard(s *goquery.Selection) record {
	var rec record

	if id, ok := s.Attr("data-recipe-id"); ok && strings.TrimSpace(id) != "" {
		rec.ID = strings.TrimSpace(id)
		rec.HasID = true
	}
	if h := s.Find("h3").First(); h.Length() > 0 {
		name := normSpace(h.Text())
		rec.Name = &name
	}

	rec.Ingredients = listItems(s.Find("ul li"))
	rec.Instructions = listItems(s.Find("ol li"))
	rec.MainLiquor = splitList(s.AttrOr("data-main-liquor", ""))
	rec.Flavor = splitList(s.AttrOr("data-flavor", ""))
	rec.Difficulty = strings.TrimSpace(s.AttrOr("data-difficulty", ""))
	rec.Image = strings.TrimSpace(s.Find("img").First().AttrOr("src", ""))
	return rec
}

func listItems(sel *goquery.Selection) []string {
	var out []string
	sel.Each(func(_ int, li *goquery.Selection) {
		if t := normSpace(li.Text()); t != "" {
			out = append(out, t)
		}
	})
	return out
}
