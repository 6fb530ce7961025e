// Package worker 实现检测工作器：截图、匹配、判定、点击，并通过事件向外报告
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/zoeyai/autoclick/internal/logger"
	"github.com/zoeyai/autoclick/pkg/auto"
	"github.com/zoeyai/autoclick/pkg/vision"
)

// DefaultEventBuffer 默认保留的待消费事件数
const DefaultEventBuffer = 256

// Option 工作器选项
type Option func(*options)

type options struct {
	buffer int
}

// WithEventBuffer 设置待消费事件的保留上限
func WithEventBuffer(n int) Option {
	return func(o *options) {
		o.buffer = n
	}
}

// Handle 运行中的工作器句柄
type Handle struct {
	runID  string
	cancel context.CancelFunc
	state  atomic.Int32
	events chan Event
	queue  *eventQueue
	done   chan struct{}
}

// Events 事件通道，Stopped 之后关闭
func (h *Handle) Events() <-chan Event { return h.events }

// Stop 请求停止，在迭代边界生效
func (h *Handle) Stop() { h.cancel() }

// Wait 等待工作器退出
func (h *Handle) Wait() { <-h.done }

// State 当前运行状态
func (h *Handle) State() State { return State(h.state.Load()) }

// RunID 本次运行的标识
func (h *Handle) RunID() string { return h.runID }

// Dropped 因消费过慢被丢弃的事件数
func (h *Handle) Dropped() int64 { return h.queue.dropped.Load() }

type worker struct {
	cfg    Config
	deps   Deps
	h      *Handle
	log    *logger.Logger
	last   time.Time
	clicks int
}

// Start 校验配置并在后台启动工作器，立即返回
// ctx 取消等同于 Stop
func Start(ctx context.Context, cfg Config, deps Deps, opts ...Option) (*Handle, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if deps.Capture == nil || deps.Clicker == nil {
		return nil, errors.New("缺少截图或点击实现")
	}
	deps = deps.withDefaults()

	if err := checkMonitor(deps.Capture, cfg.Monitor); err != nil {
		return nil, err
	}

	o := options{buffer: DefaultEventBuffer}
	for _, opt := range opts {
		opt(&o)
	}

	runCtx, cancel := context.WithCancel(ctx)
	h := &Handle{
		runID:  uuid.NewString(),
		cancel: cancel,
		events: make(chan Event),
		queue:  newEventQueue(o.buffer),
		done:   make(chan struct{}),
	}
	w := &worker{cfg: cfg, deps: deps, h: h, log: logger.Default()}

	go h.queue.pump(h.events)
	go w.run(runCtx)
	return h, nil
}

// checkMonitor 确认显示器编号有效，无法枚举时留给每轮截图报告
func checkMonitor(capture CaptureProvider, monitor int) error {
	displays, err := capture.ListDisplays()
	if err != nil {
		logger.Warn("枚举显示器失败: %v", err)
		return nil
	}
	if monitor >= len(displays) {
		return auto.NewConfigError("monitor", "显示器 %d 不存在, 共 %d 个", monitor, len(displays))
	}
	return nil
}

func (w *worker) setState(s State) { w.h.state.Store(int32(s)) }

func (w *worker) emit(e Event) {
	e.RunID = w.h.runID
	if e.Time.IsZero() {
		e.Time = w.deps.Now()
	}
	if n := w.h.queue.push(e); n > 0 {
		w.log.Warn("消费过慢, 丢弃 %d 个旧事件", n)
	}
}

func (w *worker) emitError(err error) {
	kind := ClassifyError(err)
	// 可恢复错误每轮都可能出现，由消费端决定如何展示
	if kind == KindTemplate {
		w.log.Error("%s: %v", kind, err)
	} else {
		w.log.Debug("%s: %v", kind, err)
	}
	w.emit(Event{Kind: EventError, ErrKind: kind, Message: err.Error()})
}

func (w *worker) run(ctx context.Context) {
	defer close(w.h.done)
	defer w.h.cancel()

	w.setState(Running)
	defer func() {
		w.emit(Event{Kind: EventStopped})
		w.setState(Stopped)
		w.h.queue.close()
		w.log.Info("工作器已停止, 共点击 %d 次", w.clicks)
	}()

	if ctx.Err() != nil {
		return
	}
	tmpl, err := w.deps.Templates.Load(w.cfg.TemplatePath)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		w.emitError(err)
		return
	}
	w.log.Info("模板已加载: %s (%dx%d, hash=%s)", tmpl.Path, tmpl.Width(), tmpl.Height(), tmpl.Fingerprint)
	w.log.Info("工作器启动 run=%s threshold=%.2f interval=%v cooldown=%v monitor=%d",
		w.h.runID, w.cfg.Threshold, w.cfg.Interval, w.cfg.Cooldown, w.cfg.Monitor)
	w.emit(Event{Kind: EventStarted})

	for ctx.Err() == nil {
		w.iterate(ctx, tmpl)
		if !sleep(ctx, w.cfg.Interval) {
			break
		}
	}
	w.setState(Stopping)
}

// iterate 执行一轮检测；每次发出事件前检查停止信号
func (w *worker) iterate(ctx context.Context, tmpl *vision.Template) {
	frame, err := w.deps.Capture.CaptureGray(w.cfg.Monitor)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		w.emitError(err)
		return
	}

	start := time.Now()
	res, err := w.detect(frame, tmpl)
	elapsed := time.Since(start)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		w.emitError(err)
		return
	}

	point := screenPoint(frame, tmpl, res.Point, w.cfg.ClickOffset)
	w.log.Debug("score=%.3f match=%s click=%s %.1fms", res.Score, res.Point, point, float64(elapsed.Microseconds())/1000)
	w.emit(Event{Kind: EventDetection, Score: res.Score, Point: point, MatchPoint: res.Point, Elapsed: elapsed})

	if res.Score < w.cfg.Threshold {
		return
	}

	now := w.deps.Now()
	if ctx.Err() != nil {
		return
	}
	if w.clicks > 0 {
		if since := now.Sub(w.last); since < w.cfg.Cooldown {
			w.emit(Event{Kind: EventCooldownSkipped, Score: res.Score, Remaining: w.cfg.Cooldown - since})
			return
		}
	}

	if err := w.deps.Clicker.ClickAt(point); err != nil {
		w.emitError(err)
		return
	}
	// 点击已经发生，即使期间收到停止也照常上报 Clicked
	w.last = w.deps.Now()
	w.clicks++
	w.log.LogEvent("CLK", true, float64(elapsed.Microseconds())/1000, fmt.Sprintf("%s score=%.3f", point, res.Score))
	w.emit(Event{Kind: EventClicked, Score: res.Score, Point: point})

	if w.deps.Snapshots != nil {
		if path, err := w.deps.Snapshots.Snapshot(frame, tmpl, res); err != nil {
			w.log.Warn("保存快照失败: %v", err)
		} else {
			w.log.Debug("快照已保存: %s", path)
		}
	}
}

// detect 调用匹配器，panic 转为错误
func (w *worker) detect(frame *vision.Frame, tmpl *vision.Template) (res vision.MatchResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("匹配异常: %v", r)
		}
	}()
	return w.deps.Matcher.Detect(frame, tmpl)
}

// sleep 可被取消的等待，返回 false 表示已请求停止
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
