package dataset

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/John-Robertt/recipeaudit/internal/domain"
)

// JSON 解码前端使用的 data/recipes.json：顶层是配方对象数组。
//
// 字段名大小写敏感（"Name" 不等于 "name"）；重复键以最后一个为准。
type JSON struct{}

func (JSON) Name() string   { return "json" }
func (JSON) Exts() []string { return []string{".json"} }

func (JSON) Decode(data []byte) ([]domain.Recipe, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		var te *json.UnmarshalTypeError
		if errors.As(err, &te) {
			return nil, fmt.Errorf("顶层必须是配方数组：%w", err)
		}
		return nil, err
	}

	out := make([]domain.Recipe, 0, len(items))
	for i, raw := range items {
		rec, err := decodeJSONRecord(raw)
		if err != nil {
			return nil, &RecordError{Index: i, Err: err}
		}
		r, err := rec.recipe()
		if err != nil {
			return nil, &RecordError{Index: i, Err: err}
		}
		out = append(out, r)
	}
	return out, nil
}

// decodeJSONRecord 先解到 map 再按精确键名取值：encoding/json 的结构体匹配不区分大小写。
func decodeJSONRecord(raw json.RawMessage) (record, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return record{}, err
	}
	if fields == nil {
		return record{}, errors.New("配方必须是对象")
	}

	var rec record
	if v, ok := fields["id"]; ok {
		id, err := jsonScalarID(v)
		if err != nil {
			return record{}, err
		}
		rec.ID, rec.HasID = id, true
	}
	if v, ok := fields["name"]; ok {
		var name *string
		if err := json.Unmarshal(v, &name); err != nil {
			return record{}, fmt.Errorf("name: %w", err)
		}
		if name == nil {
			return record{}, errNullName
		}
		rec.Name = name
	}

	// 固定顺序，保证多个字段出错时报告的是同一个。
	optional := []struct {
		key string
		dst any
	}{
		{"ingredients", &rec.Ingredients},
		{"mainLiquor", &rec.MainLiquor},
		{"flavor", &rec.Flavor},
		{"difficulty", &rec.Difficulty},
		{"image", &rec.Image},
		{"instructions", &rec.Instructions},
	}
	for _, f := range optional {
		v, ok := fields[f.key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(v, f.dst); err != nil {
			return record{}, fmt.Errorf("%s: %w", f.key, err)
		}
	}
	return rec, nil
}
