package dataset

import (
	"fmt"
	"sort"
	"strings"

	"github.com/John-Robertt/recipeaudit/internal/domain"
)

// Loader 把“格式差异”限制在 dataset 包内部；审计只依赖 []domain.Recipe。
//
// 约束：Decode 必须是纯函数：相同输入 => 相同输出，且保持记录在源中的顺序。
type Loader interface {
	Name() string
	Exts() []string
	Decode(data []byte) ([]domain.Recipe, error)
}

// Registry 是 loader 的只读注册表（按 name 与扩展名索引）。
type Registry struct {
	byName map[string]Loader
	byExt  map[string]Loader
}

func NewRegistry(loaders ...Loader) (Registry, error) {
	byName := make(map[string]Loader, len(loaders))
	byExt := make(map[string]Loader, len(loaders)*2)
	for _, l := range loaders {
		if l == nil {
			return Registry{}, fmt.Errorf("loader 不能为空")
		}
		name := strings.ToLower(strings.TrimSpace(l.Name()))
		if name == "" {
			return Registry{}, fmt.Errorf("loader.Name 不能为空")
		}
		if _, ok := byName[name]; ok {
			return Registry{}, fmt.Errorf("重复的 loader：%q", name)
		}
		byName[name] = l
		for _, ext := range l.Exts() {
			ext = strings.ToLower(ext)
			if _, ok := byExt[ext]; ok {
				return Registry{}, fmt.Errorf("扩展名 %q 被多个 loader 声明", ext)
			}
			byExt[ext] = l
		}
	}
	return Registry{byName: byName, byExt: byExt}, nil
}

// DefaultRegistry 包含 json/yaml/html 三种格式。
func DefaultRegistry() Registry {
	r, err := NewRegistry(JSON{}, YAML{}, HTML{})
	if err != nil {
		panic(err) // 内置 loader 的名称与扩展名是固定的
	}
	return r
}

func (r Registry) Get(name string) (Loader, bool) {
	if r.byName == nil {
		return nil, false
	}
	l, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]
	return l, ok
}

// ForExt 按扩展名（含 '.'，大小写不敏感）查找 loader。
func (r Registry) ForExt(ext string) (Loader, bool) {
	if r.byExt == nil {
		return nil, false
	}
	l, ok := r.byExt[strings.ToLower(ext)]
	return l, ok
}

// Names 返回已注册的格式名（稳定排序），用于帮助信息与错误提示。
func (r Registry) Names() []string {
	out := make([]string, 0, len(r.byName))
	for n := range r.byName {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
