package worker

import (
	"context"
	"errors"
	"image"
	"sync"
	"testing"
	"time"

	"github.com/zoeyai/autoclick/pkg/auto"
	"github.com/zoeyai/autoclick/pkg/vision"
)

var errNoDisplay = errors.New("display gone")

// fakeCapture 按脚本返回帧或错误，脚本用完后调用 stop
type fakeCapture struct {
	mu       sync.Mutex
	displays []auto.Display
	listErr  error
	script   []error
	frame    *vision.Frame
	calls    int
	onCall   func(n int)
	stop     context.CancelFunc
}

func newFakeCapture(stop context.CancelFunc, script ...error) *fakeCapture {
	return &fakeCapture{
		displays: []auto.Display{{ID: 0, Width: 1920, Height: 1080, Primary: true}},
		script:   script,
		frame:    &vision.Frame{Gray: image.NewGray(image.Rect(0, 0, 64, 32)), Scale: 1},
		stop:     stop,
	}
}

func (c *fakeCapture) ListDisplays() ([]auto.Display, error) {
	return c.displays, c.listErr
}

func (c *fakeCapture) CaptureGray(displayID int) (*vision.Frame, error) {
	c.mu.Lock()
	n := c.calls
	c.calls++
	c.mu.Unlock()

	if c.onCall != nil {
		c.onCall(n)
	}
	if n >= len(c.script) {
		if c.stop != nil {
			c.stop()
		}
		return nil, &auto.CaptureError{Op: "capture", Display: displayID, Err: errNoDisplay}
	}
	if err := c.script[n]; err != nil {
		return nil, &auto.CaptureError{Op: "capture", Display: displayID, Err: err}
	}
	return c.frame, nil
}

func (c *fakeCapture) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// frames 生成 n 个成功截图的脚本
func frames(n int) []error {
	return make([]error, n)
}

// fakeMatcher 依次返回脚本中的得分
type fakeMatcher struct {
	mu     sync.Mutex
	scores []float64
	point  auto.Point
	err    error
	panics bool
	calls  int
}

func (m *fakeMatcher) Detect(frame *vision.Frame, tmpl *vision.Template) (vision.MatchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := m.calls
	m.calls++
	if m.panics && n == 0 {
		panic("boom")
	}
	if m.err != nil && n == 0 {
		return vision.MatchResult{}, m.err
	}
	score := 0.0
	if len(m.scores) > 0 {
		if n >= len(m.scores) {
			n = len(m.scores) - 1
		}
		score = m.scores[n]
	}
	return vision.MatchResult{Score: score, Point: m.point}, nil
}

func (m *fakeMatcher) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// fakeClicker 记录点击位置，按脚本返回错误
type fakeClicker struct {
	mu     sync.Mutex
	errs   []error
	points []auto.Point
	calls  int
	// onClick 在点击成功后调用
	onClick func()
}

func (c *fakeClicker) ClickAt(p auto.Point) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := c.calls
	c.calls++
	if n < len(c.errs) && c.errs[n] != nil {
		return c.errs[n]
	}
	c.points = append(c.points, p)
	if c.onClick != nil {
		c.onClick()
	}
	return nil
}

func (c *fakeClicker) Points() []auto.Point {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]auto.Point(nil), c.points...)
}

// fakeClock 每次调用前进 step
type fakeClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func newFakeClock(step time.Duration) *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), step: step}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(c.step)
	return c.now
}

// staticTemplate 返回 32x16 的模板
func staticTemplate() TemplateLoader {
	return TemplateLoaderFunc(func(path string) (*vision.Template, error) {
		return &vision.Template{Path: path, Gray: image.NewGray(image.Rect(0, 0, 32, 16))}, nil
	})
}

func testConfig() Config {
	return Config{
		Threshold:    0.88,
		Interval:     0,
		Cooldown:     4 * time.Second,
		TemplatePath: "accept_button.png",
	}
}

// collect 读取全部事件直到通道关闭
func collect(t *testing.T, h *Handle) []Event {
	t.Helper()
	var events []Event
	timeout := time.After(5 * time.Second)
	for {
		select {
		case e, ok := <-h.Events():
			if !ok {
				return events
			}
			events = append(events, e)
		case <-timeout:
			t.Fatalf("等待事件超时, 已收到 %v", kinds(events))
			return nil
		}
	}
}

func kinds(events []Event) []EventKind {
	out := make([]EventKind, len(events))
	for i, e := range events {
		out[i] = e.Kind
	}
	return out
}
