package dataset

import (
	"errors"
	"fmt"
)

const (
	// ErrCodeNotFound 表示数据集文件/目录不存在。
	ErrCodeNotFound = "dataset_not_found"
	// ErrCodeInvalid 表示数据集无法解析，或某条记录缺少必填字段。
	ErrCodeInvalid = "dataset_invalid"
	// ErrCodeFetchFailed 表示 URL 数据集下载失败（网络错误或非 2xx）。
	ErrCodeFetchFailed = "fetch_failed"
	// ErrCodeIOFailed 表示读取本地文件/目录失败（权限等）。
	ErrCodeIOFailed = "io_failed"
)

// Error 是加载阶段的结构化错误（带 error_code）。加载错误都是致命的。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	var re *RecordError
	switch {
	case e.Code == ErrCodeNotFound:
		return fmt.Sprintf("%s：未找到数据集 %q", e.Code, e.Path)
	case errors.As(e.Err, &re):
		return fmt.Sprintf("%s：数据集 %q 第 %d 条记录无效：%v", e.Code, e.Path, re.Index+1, re.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s：数据集 %q：%v", e.Code, e.Path, e.Err)
	default:
		return fmt.Sprintf("%s：数据集 %q", e.Code, e.Path)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// RecordError 定位到数据集中的某一条记录（Index 从 0 开始）。
type RecordError struct {
	Index int
	Err   error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("record %d: %v", e.Index, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

// HTTPStatusError 表示数据源返回了非 2xx 的 HTTP 状态码。
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "HTTP status error"
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}
