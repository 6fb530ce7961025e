package auto

import (
	"errors"
	"fmt"
)

// ErrAccessDenied 平台拒绝模拟输入（权限不足或没有活动会话）
var ErrAccessDenied = errors.New("系统拒绝模拟输入")

// ErrDisplayNotFound 指定的显示器不存在
var ErrDisplayNotFound = errors.New("显示器不存在")

// CaptureError 显示器枚举或截图失败，可在下一轮重试
type CaptureError struct {
	Op      string
	Display int
	Err     error
}

func (e *CaptureError) Error() string {
	return fmt.Sprintf("截屏失败 [%s, 显示器 %d]: %v", e.Op, e.Display, e.Err)
}

func (e *CaptureError) Unwrap() error { return e.Err }

// InputError 点击分发失败
type InputError struct {
	Op    string
	Point Point
	Err   error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("模拟输入失败 [%s @ %s]: %v", e.Op, e.Point, e.Err)
}

func (e *InputError) Unwrap() error { return e.Err }

// TemplateError 模板加载或解码失败
type TemplateError struct {
	Path string
	Err  error
}

func (e *TemplateError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("模板加载失败: %v", e.Err)
	}
	return fmt.Sprintf("模板加载失败 [%s]: %v", e.Path, e.Err)
}

func (e *TemplateError) Unwrap() error { return e.Err }

// ConfigError 配置无效，工作线程拒绝启动
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("配置无效 [%s]: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// NewConfigError 创建配置错误
func NewConfigError(field, format string, args ...interface{}) *ConfigError {
	return &ConfigError{Field: field, Err: fmt.Errorf(format, args...)}
}
