package worker

import (
	"context"
	"errors"
	"image"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zoeyai/autoclick/pkg/auto"
	"github.com/zoeyai/autoclick/pkg/vision"
	"github.com/zoeyai/autoclick/pkg/vision/cv"
)

func start(t *testing.T, ctx context.Context, cfg Config, deps Deps) *Handle {
	t.Helper()
	h, err := Start(ctx, cfg, deps)
	require.NoError(t, err)
	return h
}

func TestClickPoint(t *testing.T) {
	got := ClickPoint(auto.Point{X: 50, Y: 30}, 32, 16, auto.Point{X: 2, Y: -3}, auto.Point{})
	assert.Equal(t, auto.Point{X: 68, Y: 35}, got)

	got = ClickPoint(auto.Point{X: 50, Y: 30}, 33, 17, auto.Point{}, auto.Point{X: 1920, Y: -200})
	assert.Equal(t, auto.Point{X: 1986, Y: -162}, got)
}

func TestScreenPointScaled(t *testing.T) {
	frame := &vision.Frame{Gray: image.NewGray(image.Rect(0, 0, 200, 100)), Origin: auto.Point{X: 1440}, Scale: 2}
	tmpl := &vision.Template{Gray: image.NewGray(image.Rect(0, 0, 32, 16))}

	got := screenPoint(frame, tmpl, auto.Point{X: 50, Y: 30}, auto.Point{X: 2, Y: -3})
	assert.Equal(t, auto.Point{X: 1440 + 33 + 2, Y: 19 - 3}, got)
}

func TestCooldownSkipsSecondClick(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clicker := &fakeClicker{}
	h := start(t, ctx, testConfig(), Deps{
		Capture:   newFakeCapture(cancel, frames(2)...),
		Clicker:   clicker,
		Templates: staticTemplate(),
		Matcher:   &fakeMatcher{scores: []float64{0.95, 0.97}, point: auto.Point{X: 50, Y: 30}},
		Now:       newFakeClock(100 * time.Millisecond).Now,
	})

	events := collect(t, h)
	assert.Equal(t, []EventKind{
		EventStarted,
		EventDetection, EventClicked,
		EventDetection, EventCooldownSkipped,
		EventStopped,
	}, kinds(events))
	assert.Equal(t, []auto.Point{{X: 66, Y: 38}}, clicker.Points())
	assert.InDelta(t, 0.97, events[4].Score, 1e-9)
	assert.Greater(t, events[4].Remaining, time.Duration(0))

	for _, e := range events {
		assert.Equal(t, h.RunID(), e.RunID)
	}
	h.Wait()
	assert.Equal(t, Stopped, h.State())
}

func TestCooldownElapsedClicksAgain(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := testConfig()
	cfg.Cooldown = time.Second
	clicker := &fakeClicker{}
	h := start(t, ctx, cfg, Deps{
		Capture:   newFakeCapture(cancel, frames(2)...),
		Clicker:   clicker,
		Templates: staticTemplate(),
		Matcher:   &fakeMatcher{scores: []float64{0.95}},
		Now:       newFakeClock(time.Second).Now,
	})

	events := collect(t, h)
	assert.Equal(t, []EventKind{
		EventStarted,
		EventDetection, EventClicked,
		EventDetection, EventClicked,
		EventStopped,
	}, kinds(events))
	assert.Len(t, clicker.Points(), 2)
}

func TestThresholdInclusive(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clicker := &fakeClicker{}
	h := start(t, ctx, testConfig(), Deps{
		Capture:   newFakeCapture(cancel, frames(1)...),
		Clicker:   clicker,
		Templates: staticTemplate(),
		Matcher:   &fakeMatcher{scores: []float64{0.88}},
	})

	events := collect(t, h)
	assert.Equal(t, []EventKind{EventStarted, EventDetection, EventClicked, EventStopped}, kinds(events))
	assert.Len(t, clicker.Points(), 1)
}

func TestBelowThresholdNoClick(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clicker := &fakeClicker{}
	h := start(t, ctx, testConfig(), Deps{
		Capture:   newFakeCapture(cancel, frames(3)...),
		Clicker:   clicker,
		Templates: staticTemplate(),
		Matcher:   &fakeMatcher{scores: []float64{0.2, 0.879999, -0.5}},
	})

	events := collect(t, h)
	assert.Equal(t, []EventKind{
		EventStarted, EventDetection, EventDetection, EventDetection, EventStopped,
	}, kinds(events))
	assert.Empty(t, clicker.Points())
	assert.InDelta(t, -0.5, events[3].Score, 1e-9)
}

func TestStopYieldsOnlyStopped(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	capture := newFakeCapture(cancel, frames(5)...)
	capture.onCall = func(n int) {
		if n == 2 {
			cancel()
		}
	}
	clicker := &fakeClicker{}
	h := start(t, ctx, testConfig(), Deps{
		Capture:   capture,
		Clicker:   clicker,
		Templates: staticTemplate(),
		Matcher:   &fakeMatcher{scores: []float64{0.1, 0.1, 0.99}},
	})

	events := collect(t, h)
	assert.Equal(t, []EventKind{EventStarted, EventDetection, EventDetection, EventStopped}, kinds(events))
	assert.Empty(t, clicker.Points())
	assert.Equal(t, 3, capture.Calls())
}

func TestCancelledBeforeStartYieldsOnlyStopped(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	loads := 0
	capture := newFakeCapture(nil, frames(3)...)
	h := start(t, ctx, testConfig(), Deps{
		Capture: capture,
		Clicker: &fakeClicker{},
		Templates: TemplateLoaderFunc(func(path string) (*vision.Template, error) {
			loads++
			return &vision.Template{Path: path, Gray: image.NewGray(image.Rect(0, 0, 32, 16))}, nil
		}),
		Matcher: &fakeMatcher{scores: []float64{0.99}},
	})

	events := collect(t, h)
	h.Wait()
	assert.Equal(t, []EventKind{EventStopped}, kinds(events))
	assert.Zero(t, loads)
	assert.Zero(t, capture.Calls())
}

// 点击过程中收到停止：点击已发生，仍然上报 Clicked
func TestStopDuringClickStillReportsClick(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clicker := &fakeClicker{onClick: cancel}
	capture := newFakeCapture(nil, frames(3)...)
	h := start(t, ctx, testConfig(), Deps{
		Capture:   capture,
		Clicker:   clicker,
		Templates: staticTemplate(),
		Matcher:   &fakeMatcher{scores: []float64{0.99}},
	})

	events := collect(t, h)
	assert.Equal(t, []EventKind{EventStarted, EventDetection, EventClicked, EventStopped}, kinds(events))
	assert.Len(t, clicker.Points(), 1)
	assert.Equal(t, 1, capture.Calls())
}

// 冷却判定前收到停止，不再上报 CooldownSkipped
func TestStopBeforeCooldownCheck(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	matcher := &fakeMatcher{scores: []float64{0.99}}
	clock := newFakeClock(10 * time.Millisecond)
	now := func() time.Time {
		if matcher.Calls() >= 2 {
			cancel()
		}
		return clock.Now()
	}
	clicker := &fakeClicker{}
	h := start(t, ctx, testConfig(), Deps{
		Capture:   newFakeCapture(cancel, frames(3)...),
		Clicker:   clicker,
		Templates: staticTemplate(),
		Matcher:   matcher,
		Now:       now,
	})

	events := collect(t, h)
	assert.Equal(t, []EventKind{
		EventStarted,
		EventDetection, EventClicked,
		EventDetection,
		EventStopped,
	}, kinds(events))
	assert.Len(t, clicker.Points(), 1)
}

func TestStopInterruptsSleep(t *testing.T) {
	cfg := testConfig()
	cfg.Interval = time.Hour

	h := start(t, context.Background(), cfg, Deps{
		Capture:   newFakeCapture(nil, frames(10)...),
		Clicker:   &fakeClicker{},
		Templates: staticTemplate(),
		Matcher:   &fakeMatcher{scores: []float64{0.1}},
	})

	first := <-h.Events()
	require.Equal(t, EventStarted, first.Kind)
	second := <-h.Events()
	require.Equal(t, EventDetection, second.Kind)

	h.Stop()
	rest := collect(t, h)
	assert.Equal(t, []EventKind{EventStopped}, kinds(rest))
}

func TestTemplateFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	capture := newFakeCapture(cancel, frames(1)...)
	h := start(t, ctx, testConfig(), Deps{
		Capture: capture,
		Clicker: &fakeClicker{},
		Templates: TemplateLoaderFunc(func(path string) (*vision.Template, error) {
			return nil, &auto.TemplateError{Path: path, Err: errors.New("无法解码")}
		}),
	})

	events := collect(t, h)
	require.Equal(t, []EventKind{EventError, EventStopped}, kinds(events))
	assert.Equal(t, KindTemplate, events[0].ErrKind)
	assert.Contains(t, events[0].Message, "accept_button.png")
	assert.Zero(t, capture.Calls())
}

func TestTemplateFailureRealLoader(t *testing.T) {
	cfg := testConfig()
	cfg.TemplatePath = "does-not-exist.png"

	h := start(t, context.Background(), cfg, Deps{
		Capture: newFakeCapture(nil),
		Clicker: &fakeClicker{},
	})

	events := collect(t, h)
	require.Equal(t, []EventKind{EventError, EventStopped}, kinds(events))
	assert.Equal(t, KindTemplate, events[0].ErrKind)
}

func TestCaptureErrorContinues(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clicker := &fakeClicker{}
	h := start(t, ctx, testConfig(), Deps{
		Capture:   newFakeCapture(cancel, errNoDisplay, nil),
		Clicker:   clicker,
		Templates: staticTemplate(),
		Matcher:   &fakeMatcher{scores: []float64{0.95}},
	})

	events := collect(t, h)
	require.Equal(t, []EventKind{
		EventStarted, EventError, EventDetection, EventClicked, EventStopped,
	}, kinds(events))
	assert.Equal(t, KindCapture, events[1].ErrKind)
	assert.Len(t, clicker.Points(), 1)
}

func TestInputErrorDoesNotStartCooldown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clicker := &fakeClicker{errs: []error{
		&auto.InputError{Op: "click", Err: auto.ErrAccessDenied},
	}}
	h := start(t, ctx, testConfig(), Deps{
		Capture:   newFakeCapture(cancel, frames(2)...),
		Clicker:   clicker,
		Templates: staticTemplate(),
		Matcher:   &fakeMatcher{scores: []float64{0.95}},
		Now:       newFakeClock(10 * time.Millisecond).Now,
	})

	events := collect(t, h)
	require.Equal(t, []EventKind{
		EventStarted,
		EventDetection, EventError,
		EventDetection, EventClicked,
		EventStopped,
	}, kinds(events))
	assert.Equal(t, KindInput, events[2].ErrKind)
	assert.Len(t, clicker.Points(), 1)
}

func TestMatchErrorsContinue(t *testing.T) {
	tests := []struct {
		name    string
		matcher *fakeMatcher
	}{
		{"size", &fakeMatcher{scores: []float64{0.1}, err: &cv.ImageSizeError{SourceSize: [2]int{10, 10}, SearchSize: [2]int{32, 16}}}},
		{"panic", &fakeMatcher{scores: []float64{0.1}, panics: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			h := start(t, ctx, testConfig(), Deps{
				Capture:   newFakeCapture(cancel, frames(2)...),
				Clicker:   &fakeClicker{},
				Templates: staticTemplate(),
				Matcher:   tt.matcher,
			})

			events := collect(t, h)
			require.Equal(t, []EventKind{EventStarted, EventError, EventDetection, EventStopped}, kinds(events))
			assert.Equal(t, KindMatch, events[1].ErrKind)
		})
	}
}

func TestStartRejectsInvalidConfig(t *testing.T) {
	base := testConfig()
	tests := []struct {
		name  string
		edit  func(c *Config)
		field string
	}{
		{"threshold high", func(c *Config) { c.Threshold = 1.01 }, "threshold"},
		{"threshold low", func(c *Config) { c.Threshold = -0.1 }, "threshold"},
		{"interval", func(c *Config) { c.Interval = -time.Millisecond }, "interval"},
		{"cooldown", func(c *Config) { c.Cooldown = -time.Second }, "cooldown"},
		{"monitor negative", func(c *Config) { c.Monitor = -1 }, "monitor"},
		{"monitor missing", func(c *Config) { c.Monitor = 1 }, "monitor"},
		{"template", func(c *Config) { c.TemplatePath = "" }, "template_path"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.edit(&cfg)
			capture := newFakeCapture(nil)
			h, err := Start(context.Background(), cfg, Deps{Capture: capture, Clicker: &fakeClicker{}})
			assert.Nil(t, h)
			var ce *auto.ConfigError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.field, ce.Field)
			assert.Zero(t, capture.Calls())
		})
	}
}

func TestStartRequiresDeps(t *testing.T) {
	_, err := Start(context.Background(), testConfig(), Deps{Clicker: &fakeClicker{}})
	assert.Error(t, err)
}

func TestStartIgnoresEnumerationFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	capture := newFakeCapture(cancel)
	capture.listErr = errors.New("no display server")
	h := start(t, ctx, testConfig(), Deps{
		Capture:   capture,
		Clicker:   &fakeClicker{},
		Templates: staticTemplate(),
	})
	events := collect(t, h)
	assert.Equal(t, []EventKind{EventStarted, EventStopped}, kinds(events))
}

// 160x90 噪声帧中贴入 32x16 模板，使用真实匹配器
func TestEndToEndWithNCC(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	tmplImg := image.NewGray(image.Rect(0, 0, 32, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 32; x++ {
			v := uint8(40)
			if x > 3 && x < 28 && y > 3 && y < 12 {
				v = 220
			}
			if (x+y)%7 == 0 {
				v = 120
			}
			tmplImg.Pix[y*tmplImg.Stride+x] = v
		}
	}
	positive := image.NewGray(image.Rect(0, 0, 160, 90))
	for i := range positive.Pix {
		positive.Pix[i] = uint8(rng.Intn(256))
	}
	for y := 0; y < 16; y++ {
		copy(positive.Pix[(40+y)*positive.Stride+64:], tmplImg.Pix[y*tmplImg.Stride:y*tmplImg.Stride+32])
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	capture := newFakeCapture(cancel, frames(1)...)
	capture.frame = &vision.Frame{Gray: positive, Origin: auto.Point{X: 100, Y: 200}, Scale: 1}
	clicker := &fakeClicker{}
	cfg := testConfig()
	cfg.Threshold = 0.95
	cfg.ClickOffset = auto.Point{X: 2, Y: -3}

	h := start(t, ctx, cfg, Deps{
		Capture: capture,
		Clicker: clicker,
		Templates: TemplateLoaderFunc(func(path string) (*vision.Template, error) {
			return vision.TemplateFromImage(tmplImg)
		}),
		Matcher: cv.NewMatcher(cv.WithWorkers(2)),
	})

	events := collect(t, h)
	require.Equal(t, []EventKind{EventStarted, EventDetection, EventClicked, EventStopped}, kinds(events))
	assert.GreaterOrEqual(t, events[1].Score, 0.95)
	assert.Equal(t, auto.Point{X: 64, Y: 40}, events[1].MatchPoint)
	assert.Equal(t, []auto.Point{{X: 100 + 64 + 16 + 2, Y: 200 + 40 + 8 - 3}}, clicker.Points())
}

type recordingSnapshots struct {
	calls int
}

func (r *recordingSnapshots) Snapshot(frame *vision.Frame, tmpl *vision.Template, res vision.MatchResult) (string, error) {
	r.calls++
	return "snap.png", nil
}

func TestSnapshotOnClick(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	snaps := &recordingSnapshots{}
	h := start(t, ctx, testConfig(), Deps{
		Capture:   newFakeCapture(cancel, frames(2)...),
		Clicker:   &fakeClicker{},
		Templates: staticTemplate(),
		Matcher:   &fakeMatcher{scores: []float64{0.99, 0.1}},
		Snapshots: snaps,
	})
	collect(t, h)
	h.Wait()
	assert.Equal(t, 1, snaps.calls)
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorKind
	}{
		{nil, KindNone},
		{&auto.CaptureError{Err: errNoDisplay}, KindCapture},
		{&auto.InputError{Err: auto.ErrAccessDenied}, KindInput},
		{&auto.TemplateError{Err: errNoDisplay}, KindTemplate},
		{auto.NewConfigError("threshold", "bad"), KindConfig},
		{&cv.ImageSizeError{}, KindMatch},
		{errors.New("other"), KindMatch},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyError(tt.err), "%v", tt.err)
	}
	assert.Equal(t, "capture", KindCapture.String())
}

func TestEventString(t *testing.T) {
	e := Event{Kind: EventClicked, Score: 0.9123, Point: auto.Point{X: 68, Y: 35}}
	assert.Equal(t, "点击 (68, 35) (score=0.912)", e.String())

	e = Event{Kind: EventError, ErrKind: KindInput, Message: "denied"}
	assert.Equal(t, "错误[input] denied", e.String())
}
