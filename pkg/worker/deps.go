package worker

import (
	"time"

	"github.com/zoeyai/autoclick/pkg/auto"
	"github.com/zoeyai/autoclick/pkg/vision"
	"github.com/zoeyai/autoclick/pkg/vision/cv"
)

// CaptureProvider 截图能力
type CaptureProvider interface {
	ListDisplays() ([]auto.Display, error)
	CaptureGray(displayID int) (*vision.Frame, error)
}

// ClickDispatcher 点击能力
type ClickDispatcher interface {
	ClickAt(p auto.Point) error
}

// TemplateLoader 模板加载
type TemplateLoader interface {
	Load(path string) (*vision.Template, error)
}

// TemplateLoaderFunc 函数形式的 TemplateLoader
type TemplateLoaderFunc func(path string) (*vision.Template, error)

// Load 调用 f(path)
func (f TemplateLoaderFunc) Load(path string) (*vision.Template, error) {
	return f(path)
}

// Matcher 模板匹配
type Matcher interface {
	Detect(frame *vision.Frame, tmpl *vision.Template) (vision.MatchResult, error)
}

// Snapshotter 保存点击时的帧，用于排查误点
type Snapshotter interface {
	Snapshot(frame *vision.Frame, tmpl *vision.Template, res vision.MatchResult) (string, error)
}

// Deps 工作器依赖
// Capture 与 Clicker 必填，其余为空时使用默认实现
type Deps struct {
	Capture   CaptureProvider
	Clicker   ClickDispatcher
	Templates TemplateLoader
	Matcher   Matcher
	Snapshots Snapshotter
	Now       func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Templates == nil {
		d.Templates = TemplateLoaderFunc(vision.LoadTemplate)
	}
	if d.Matcher == nil {
		d.Matcher = cv.NewMatcher()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}
