//go:build !gocv

package cv

import (
	"errors"

	"github.com/zoeyai/autoclick/pkg/vision"
)

// ErrOpenCVUnavailable 当前构建未包含 OpenCV 支持
var ErrOpenCVUnavailable = errors.New("未启用 OpenCV 支持，请使用 -tags gocv 重新构建")

// OpenCVMatcher 占位类型，未使用 gocv 标签构建时不可用
type OpenCVMatcher struct{}

// NewOpenCVMatcher 返回 ErrOpenCVUnavailable
func NewOpenCVMatcher() (*OpenCVMatcher, error) {
	return nil, ErrOpenCVUnavailable
}

// Detect 始终返回 ErrOpenCVUnavailable
func (m *OpenCVMatcher) Detect(frame *vision.Frame, tmpl *vision.Template) (vision.MatchResult, error) {
	return vision.MatchResult{}, ErrOpenCVUnavailable
}
