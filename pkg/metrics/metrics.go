// Package metrics 将工作器事件汇总为 Prometheus 指标
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zoeyai/autoclick/internal/logger"
	"github.com/zoeyai/autoclick/pkg/worker"
)

// Collector 指标集合，使用独立的 Registry
type Collector struct {
	registry *prometheus.Registry

	Events     *prometheus.CounterVec
	Errors     *prometheus.CounterVec
	Score      prometheus.Gauge
	MatchTime  prometheus.Histogram
	Running    prometheus.Gauge
	LastClick  prometheus.Gauge
	DroppedTot prometheus.Counter

	server *http.Server
}

// NewCollector 创建并注册指标
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		Events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "autoclick_events_total",
				Help: "Total number of worker events by kind",
			},
			[]string{"kind"},
		),
		Errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "autoclick_errors_total",
				Help: "Total number of worker errors by kind",
			},
			[]string{"kind"},
		),
		Score: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "autoclick_last_score",
			Help: "Most recent correlation score",
		}),
		MatchTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "autoclick_match_duration_seconds",
			Help:    "Template matching duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
		Running: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "autoclick_running",
			Help: "1 while the worker is running",
		}),
		LastClick: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "autoclick_last_click_timestamp_seconds",
			Help: "Unix time of the last successful click",
		}),
		DroppedTot: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "autoclick_events_dropped_total",
			Help: "Events discarded because the consumer fell behind",
		}),
	}

	c.registry.MustRegister(
		c.Events, c.Errors, c.Score, c.MatchTime, c.Running, c.LastClick, c.DroppedTot,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Observe 记录一个事件
func (c *Collector) Observe(e worker.Event) {
	c.Events.WithLabelValues(e.Kind.String()).Inc()

	switch e.Kind {
	case worker.EventStarted:
		c.Running.Set(1)
	case worker.EventStopped:
		c.Running.Set(0)
	case worker.EventDetection:
		c.Score.Set(e.Score)
		c.MatchTime.Observe(e.Elapsed.Seconds())
	case worker.EventClicked:
		c.LastClick.Set(float64(e.Time.Unix()) + float64(e.Time.Nanosecond())/1e9)
	case worker.EventError:
		c.Errors.WithLabelValues(e.ErrKind.String()).Inc()
	}
}

// AddDropped 累加被丢弃的事件数
func (c *Collector) AddDropped(n int64) {
	if n > 0 {
		c.DroppedTot.Add(float64(n))
	}
}

// Handler 返回 /metrics 处理器
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Serve 在 addr 上暴露 /metrics，返回实际监听地址
func (c *Collector) Serve(addr string) (net.Addr, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("指标服务监听失败: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	c.server = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := c.server.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("指标服务退出: %v", err)
		}
	}()
	logger.Info("指标服务已启动: http://%s/metrics", lis.Addr())
	return lis.Addr(), nil
}

// Shutdown 关闭指标服务
func (c *Collector) Shutdown(ctx context.Context) error {
	if c.server == nil {
		return nil
	}
	return c.server.Shutdown(ctx)
}
