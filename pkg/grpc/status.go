// Package grpc 通过 gRPC 健康检查协议对外暴露工作器运行状态
package grpc

import (
	"context"
	"fmt"
	"net"
	"sync"

	ggrpc "google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/zoeyai/autoclick/internal/logger"
	"github.com/zoeyai/autoclick/pkg/worker"
)

// ServiceName 健康检查中的服务名
const ServiceName = "autoclick.Worker"

// StatusServer 状态服务
// 工作器运行中为 SERVING，其余为 NOT_SERVING
type StatusServer struct {
	mu     sync.Mutex
	server *ggrpc.Server
	health *health.Server
	lis    net.Listener
}

// NewStatusServer 创建状态服务
func NewStatusServer() *StatusServer {
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	srv := ggrpc.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	return &StatusServer{server: srv, health: hs}
}

// Observe 根据工作器事件更新状态
func (s *StatusServer) Observe(e worker.Event) {
	switch e.Kind {
	case worker.EventStarted:
		s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	case worker.EventStopped:
		s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	}
}

// Check 查询当前状态
func (s *StatusServer) Check(ctx context.Context) (healthpb.HealthCheckResponse_ServingStatus, error) {
	resp, err := s.health.Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN, err
	}
	return resp.GetStatus(), nil
}

// Serve 在 addr 上监听并在后台提供服务，返回实际监听地址
func (s *StatusServer) Serve(addr string) (net.Addr, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("状态服务监听失败: %w", err)
	}

	s.mu.Lock()
	s.lis = lis
	s.mu.Unlock()

	go func() {
		if err := s.server.Serve(lis); err != nil {
			logger.Warn("状态服务退出: %v", err)
		}
	}()
	logger.Info("状态服务已启动: %s", lis.Addr())
	return lis.Addr(), nil
}

// Stop 停止服务
func (s *StatusServer) Stop() {
	s.health.Shutdown()
	s.server.GracefulStop()
}
