package main

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/zoeyai/autoclick/internal/logger"
	"github.com/zoeyai/autoclick/pkg/worker"
)

// observer 接收事件的旁路组件（指标、状态服务）
type observer interface {
	Observe(e worker.Event)
}

// consumer 消费工作器事件：记录历史、转发给旁路组件、限流输出错误
type consumer struct {
	history    *worker.History
	observers  []observer
	errLimit   *rate.Limiter
	suppressed int
}

func newConsumer(historySize int, observers ...observer) *consumer {
	return &consumer{
		history:   worker.NewHistory(historySize),
		observers: observers,
		errLimit:  rate.NewLimiter(rate.Every(2*time.Second), 3),
	}
}

func (c *consumer) handle(e worker.Event) {
	c.history.Add(e)
	for _, o := range c.observers {
		o.Observe(e)
	}

	switch e.Kind {
	case worker.EventError:
		if e.ErrKind == worker.KindTemplate {
			logger.Error("%s", e)
			return
		}
		if !c.errLimit.Allow() {
			c.suppressed++
			return
		}
		if c.suppressed > 0 {
			logger.Warn("%s (另有 %d 条相同类型错误未显示)", e, c.suppressed)
			c.suppressed = 0
			return
		}
		logger.Warn("%s", e)
	case worker.EventDetection, worker.EventCooldownSkipped:
		logger.Debug("%s", e)
	case worker.EventClicked:
		logger.Info("%s", e)
	case worker.EventStopped:
		logger.Info("本次运行: 检测 %d 次, 点击 %d 次, 跳过 %d 次, 错误 %d 次",
			c.history.Count(worker.EventDetection),
			c.history.Count(worker.EventClicked),
			c.history.Count(worker.EventCooldownSkipped),
			c.history.Count(worker.EventError))
	}
}

// run 消费直到事件通道关闭
func (c *consumer) run(events <-chan worker.Event) {
	for e := range events {
		c.handle(e)
	}
}
