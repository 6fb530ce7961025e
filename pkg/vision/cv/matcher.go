package cv

import (
	"errors"
	"runtime"

	"github.com/zoeyai/autoclick/pkg/auto"
	"github.com/zoeyai/autoclick/pkg/vision"
)

// Matcher 纯 Go 归一化互相关匹配器
type Matcher struct {
	workers int
}

// MatcherOption 匹配器选项
type MatcherOption func(*Matcher)

// WithWorkers 设置按行并行扫描的协程数，1 表示串行
func WithWorkers(n int) MatcherOption {
	return func(m *Matcher) {
		if n > 0 {
			m.workers = n
		}
	}
}

// NewMatcher 创建匹配器，默认并行度为 GOMAXPROCS
func NewMatcher(opts ...MatcherOption) *Matcher {
	m := &Matcher{workers: runtime.GOMAXPROCS(0)}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Detect 在帧中查找模板，返回最高得分与模板左上角位置
// 模板大于帧时返回 *ImageSizeError
func (m *Matcher) Detect(frame *vision.Frame, tmpl *vision.Template) (vision.MatchResult, error) {
	if err := checkInputs(frame, tmpl); err != nil {
		return vision.MatchResult{}, err
	}

	score, loc, err := MatchTemplate(frame.Gray, tmpl.Gray, m.workers)
	if err != nil {
		return vision.MatchResult{}, err
	}
	return vision.MatchResult{Score: score, Point: auto.Point{X: loc.X, Y: loc.Y}}, nil
}

func checkInputs(frame *vision.Frame, tmpl *vision.Template) error {
	if frame == nil || frame.Gray == nil {
		return errors.New("帧为空")
	}
	if tmpl == nil || tmpl.Gray == nil {
		return errors.New("模板为空")
	}
	return nil
}
