package worker

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/zoeyai/autoclick/pkg/auto"
)

// Config 一次运行的配置快照，运行期间不可修改
type Config struct {
	// Threshold 判定为命中的最低得分，包含边界
	Threshold float64
	// Interval 两轮检测之间的间隔
	Interval time.Duration
	// Cooldown 两次成功点击之间的最短间隔
	Cooldown time.Duration
	// Monitor 显示器编号
	Monitor int
	// ClickOffset 点击位置相对模板中心的偏移
	ClickOffset auto.Point
	// TemplatePath 模板图片路径
	TemplatePath string
}

// Validate 校验配置，越界时返回 *auto.ConfigError，不做截断
func (c Config) Validate() error {
	if math.IsNaN(c.Threshold) || c.Threshold < 0 || c.Threshold > 1 {
		return auto.NewConfigError("threshold", "阈值必须在 0 到 1 之间, 当前 %v", c.Threshold)
	}
	if c.Interval < 0 {
		return auto.NewConfigError("interval", "检测间隔不能为负, 当前 %v", c.Interval)
	}
	if c.Cooldown < 0 {
		return auto.NewConfigError("cooldown", "冷却时间不能为负, 当前 %v", c.Cooldown)
	}
	if c.Monitor < 0 {
		return auto.NewConfigError("monitor", "显示器编号不能为负, 当前 %d", c.Monitor)
	}
	if c.TemplatePath == "" {
		return auto.NewConfigError("template_path", "未指定模板路径")
	}
	return nil
}

// State 运行状态
type State int32

const (
	Idle State = iota
	Running
	Stopping
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// EventKind 事件类型
type EventKind int

const (
	EventStarted EventKind = iota
	EventDetection
	EventClicked
	EventCooldownSkipped
	EventError
	EventStopped
)

func (k EventKind) String() string {
	switch k {
	case EventStarted:
		return "started"
	case EventDetection:
		return "detection"
	case EventClicked:
		return "clicked"
	case EventCooldownSkipped:
		return "cooldown_skipped"
	case EventError:
		return "error"
	case EventStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// ErrorKind 错误分类
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindCapture
	KindInput
	KindTemplate
	KindMatch
	KindConfig
)

func (k ErrorKind) String() string {
	switch k {
	case KindCapture:
		return "capture"
	case KindInput:
		return "input"
	case KindTemplate:
		return "template"
	case KindMatch:
		return "match"
	case KindConfig:
		return "config"
	default:
		return "none"
	}
}

// ClassifyError 将错误映射为分类，无法识别的按匹配错误处理
func ClassifyError(err error) ErrorKind {
	var (
		captureErr  *auto.CaptureError
		inputErr    *auto.InputError
		templateErr *auto.TemplateError
		configErr   *auto.ConfigError
	)
	switch {
	case err == nil:
		return KindNone
	case errors.As(err, &captureErr):
		return KindCapture
	case errors.As(err, &inputErr):
		return KindInput
	case errors.As(err, &templateErr):
		return KindTemplate
	case errors.As(err, &configErr):
		return KindConfig
	default:
		return KindMatch
	}
}

// Event 工作器向外报告的事件，创建后不可修改
type Event struct {
	Kind  EventKind
	RunID string
	Time  time.Time

	// Score 匹配得分（Detection / Clicked / CooldownSkipped）
	Score float64
	// Point 全局屏幕点击坐标（Detection / Clicked）
	Point auto.Point
	// MatchPoint 模板左上角在帧内的位置（Detection）
	MatchPoint auto.Point
	// Elapsed 本轮匹配耗时（Detection）
	Elapsed time.Duration
	// Remaining 剩余冷却时间（CooldownSkipped）
	Remaining time.Duration

	// ErrKind 错误分类（Error）
	ErrKind ErrorKind
	// Message 错误描述（Error）
	Message string
}

func (e Event) String() string {
	switch e.Kind {
	case EventStarted:
		return "已启动"
	case EventDetection:
		return fmt.Sprintf("检测 score=%.3f @ %s", e.Score, e.Point)
	case EventClicked:
		return fmt.Sprintf("点击 %s (score=%.3f)", e.Point, e.Score)
	case EventCooldownSkipped:
		return fmt.Sprintf("冷却中跳过 score=%.3f 剩余 %v", e.Score, e.Remaining.Round(time.Millisecond))
	case EventError:
		return fmt.Sprintf("错误[%s] %s", e.ErrKind, e.Message)
	case EventStopped:
		return "已停止"
	default:
		return e.Kind.String()
	}
}
