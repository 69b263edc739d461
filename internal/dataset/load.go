package dataset

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/John-Robertt/recipeaudit/internal/domain"
	"github.com/John-Robertt/recipeaudit/internal/infra/httpx"
)

// DefaultPath 是未指定数据集时的默认位置（相对当前目录）。
var DefaultPath = filepath.Join("data", "recipes.json")

// Options 控制一次加载。
type Options struct {
	// Format 强制使用某个 loader（json/yaml/html）；为空时按扩展名推断。
	Format string
	// ExcludeDirs 仅对目录数据源生效：相对 root 的路径（绝对路径按绝对路径处理）。
	ExcludeDirs []string
	// Client 用于 URL 数据源；nil 时使用 httpx.NewClient("")。
	Client *http.Client
}

// Load 加载数据集。src 可以是文件、目录或 http(s) URL。
//
// - 文件：按 Format 或扩展名选择 loader
// - 目录：递归收集可识别的数据文件，按相对路径排序后依次解码并拼接
// - URL：GET 下载后解码；格式按 Format 或 URL path 的扩展名推断，默认 json
//
// 任何错误都以 *Error 返回，且不返回部分结果。
func (r Registry) Load(ctx context.Context, src string, opt Options) ([]domain.Recipe, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		src = DefaultPath
	}

	if isURL(src) {
		return r.loadURL(ctx, src, opt)
	}

	fi, err := os.Stat(src)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &Error{Code: ErrCodeNotFound, Path: src, Err: err}
		}
		return nil, &Error{Code: ErrCodeIOFailed, Path: src, Err: err}
	}
	if fi.IsDir() {
		return r.loadDir(ctx, src, opt)
	}
	return r.loadFile(src, opt.Format)
}

// Load 使用 DefaultRegistry 加载数据集。
func Load(ctx context.Context, src string, opt Options) ([]domain.Recipe, error) {
	return DefaultRegistry().Load(ctx, src, opt)
}

func (r Registry) loadFile(p, format string) ([]domain.Recipe, error) {
	l, err := r.pick(format, filepath.Ext(p), false)
	if err != nil {
		return nil, &Error{Code: ErrCodeInvalid, Path: p, Err: err}
	}
	b, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &Error{Code: ErrCodeNotFound, Path: p, Err: err}
		}
		return nil, &Error{Code: ErrCodeIOFailed, Path: p, Err: err}
	}
	recipes, err := l.Decode(b)
	if err != nil {
		return nil, &Error{Code: ErrCodeInvalid, Path: p, Err: err}
	}
	return recipes, nil
}

func (r Registry) loadDir(ctx context.Context, root string, opt Options) ([]domain.Recipe, error) {
	if strings.TrimSpace(opt.Format) != "" {
		if _, ok := r.Get(opt.Format); !ok {
			return nil, &Error{Code: ErrCodeInvalid, Path: root, Err: unknownFormat(r, opt.Format)}
		}
	}
	files, err := r.Discover(root, opt.Format, opt.ExcludeDirs)
	if err != nil {
		return nil, &Error{Code: ErrCodeIOFailed, Path: root, Err: err}
	}
	if len(files) == 0 {
		return nil, &Error{Code: ErrCodeNotFound, Path: root, Err: fmt.Errorf("目录中没有可识别的数据文件（%s）", strings.Join(r.Names(), "/"))}
	}

	var out []domain.Recipe
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, &Error{Code: ErrCodeIOFailed, Path: root, Err: err}
		}
		recipes, err := r.loadFile(f, opt.Format)
		if err != nil {
			return nil, err
		}
		out = append(out, recipes...)
	}
	return out, nil
}

// Discover 扫描 root 下可被某个 loader 识别的数据文件，返回按相对路径排序的绝对/原样路径。
//
// 规则：
// - 以 '.' 开头的目录一律跳过（.git 等）
// - excludeDirs 视为相对 root 的路径（若是绝对路径，则按绝对路径处理）
// - format 非空时只收集该格式的扩展名
func (r Registry) Discover(root, format string, excludeDirs []string) ([]string, error) {
	root = filepath.Clean(root)
	excluded := buildExcluded(root, excludeDirs)

	var only Loader
	if strings.TrimSpace(format) != "" {
		l, ok := r.Get(format)
		if !ok {
			return nil, unknownFormat(r, format)
		}
		only = l
	}

	type found struct{ rel, path string }
	files := make([]found, 0, 8)
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if p != root && (strings.HasPrefix(d.Name(), ".") || isExcluded(p, excluded)) {
				return filepath.SkipDir
			}
			return nil
		}
		if isExcluded(p, excluded) {
			return nil
		}

		l, ok := r.ForExt(filepath.Ext(d.Name()))
		if !ok || (only != nil && l.Name() != only.Name()) {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		files = append(files, found{rel: rel, path: p})
		return nil
	})
	if err != nil {
		return nil, err
	}

	// 强制稳定顺序：配方顺序决定 issue 顺序。
	sort.Slice(files, func(i, j int) bool { return files[i].rel < files[j].rel })
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.path)
	}
	return out, nil
}

func (r Registry) loadURL(ctx context.Context, src string, opt Options) ([]domain.Recipe, error) {
	u, err := url.Parse(src)
	if err != nil {
		return nil, &Error{Code: ErrCodeInvalid, Path: src, Err: err}
	}
	l, err := r.pick(opt.Format, path.Ext(u.Path), true)
	if err != nil {
		return nil, &Error{Code: ErrCodeInvalid, Path: src, Err: err}
	}

	c := opt.Client
	if c == nil {
		c, err = httpx.NewClient("")
		if err != nil {
			return nil, &Error{Code: ErrCodeFetchFailed, Path: src, Err: err}
		}
	}

	b, err := fetchURL(ctx, c, src)
	if err != nil {
		return nil, &Error{Code: ErrCodeFetchFailed, Path: src, Err: err}
	}
	recipes, err := l.Decode(b)
	if err != nil {
		return nil, &Error{Code: ErrCodeInvalid, Path: src, Err: err}
	}
	return recipes, nil
}

func fetchURL(ctx context.Context, c *http.Client, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPStatusError{URL: u, StatusCode: resp.StatusCode}
	}
	return io.ReadAll(resp.Body)
}

// pick 选择 loader：显式 format 优先；否则按扩展名；URL 无扩展名时默认 json。
func (r Registry) pick(format, ext string, defaultJSON bool) (Loader, error) {
	if strings.TrimSpace(format) != "" {
		l, ok := r.Get(format)
		if !ok {
			return nil, unknownFormat(r, format)
		}
		return l, nil
	}
	if l, ok := r.ForExt(ext); ok {
		return l, nil
	}
	if defaultJSON && ext == "" {
		if l, ok := r.Get("json"); ok {
			return l, nil
		}
	}
	return nil, fmt.Errorf("无法从扩展名 %q 推断格式；请指定 --input-format（可选 %s）", ext, strings.Join(r.Names(), "|"))
}

func unknownFormat(r Registry, format string) error {
	return fmt.Errorf("未知数据格式 %q（可选 %s）", format, strings.Join(r.Names(), "|"))
}

func isURL(s string) bool {
	ls := strings.ToLower(s)
	return strings.HasPrefix(ls, "http://") || strings.HasPrefix(ls, "https://")
}

func buildExcluded(root string, excludeDirs []string) []string {
	excluded := make([]string, 0, len(excludeDirs))
	for _, x := range excludeDirs {
		x = strings.TrimSpace(x)
		if x == "" {
			continue
		}
		if filepath.IsAbs(x) {
			excluded = append(excluded, filepath.Clean(x))
			continue
		}
		excluded = append(excluded, filepath.Clean(filepath.Join(root, x)))
	}
	sort.Strings(excluded)
	return excluded
}

func isExcluded(p string, excluded []string) bool {
	p = filepath.Clean(p)
	for _, base := range excluded {
		if p == base || strings.HasPrefix(p, base+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
