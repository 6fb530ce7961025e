package input

import (
	"time"

	"github.com/zoeyai/autoclick/pkg/auto"
	"github.com/zoeyai/autoclick/pkg/permissions"
)

// DefaultSettleDelay 移动鼠标后等待其到位的时间
const DefaultSettleDelay = 50 * time.Millisecond

// Dispatcher 点击分发器，失败时不重试
type Dispatcher struct {
	// Button 鼠标按键: left / right / center
	Button string
	// DoubleClick 是否双击
	DoubleClick bool
	// Settle 移动后等待时间
	Settle time.Duration

	allowed func() bool
}

// Option 分发器选项
type Option func(*Dispatcher)

// WithButton 设置按键
func WithButton(button string) Option {
	return func(d *Dispatcher) {
		d.Button = button
	}
}

// WithDoubleClick 设置双击
func WithDoubleClick() Option {
	return func(d *Dispatcher) {
		d.DoubleClick = true
	}
}

// WithSettleDelay 设置移动后的等待时间
func WithSettleDelay(delay time.Duration) Option {
	return func(d *Dispatcher) {
		d.Settle = delay
	}
}

// NewDispatcher 创建点击分发器
func NewDispatcher(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		Button:  "left",
		Settle:  DefaultSettleDelay,
		allowed: inputAllowed,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// ClickAt 移动到全局坐标 p 并点击
// 平台拒绝模拟输入时返回 *auto.InputError
func (d *Dispatcher) ClickAt(p auto.Point) error {
	if !d.allowed() {
		return &auto.InputError{Op: "click", Point: p, Err: auto.ErrAccessDenied}
	}

	moveTo(p.X, p.Y)
	if d.Settle > 0 {
		time.Sleep(d.Settle) // 短暂延迟确保鼠标到位
	}
	click(d.Button, d.DoubleClick)
	return nil
}

func inputAllowed() bool {
	return permissions.CheckPermissions().Accessibility
}
