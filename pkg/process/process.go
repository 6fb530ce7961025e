// Package process 查找目标进程，用于在其启动后再开始检测
package process

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/process"

	"github.com/zoeyai/autoclick/internal/logger"
)

// DefaultPollInterval 等待进程时的默认轮询间隔
const DefaultPollInterval = 2 * time.Second

// ProcessInfo 进程信息
type ProcessInfo struct {
	PID  int    `json:"pid"`
	Name string `json:"name"`
	Path string `json:"path"`
}

// FindProcess 按名称查找进程 (不区分大小写，支持部分匹配)
func FindProcess(name string) ([]ProcessInfo, error) {
	procs, err := process.Processes()
	if err != nil {
		return nil, fmt.Errorf("获取进程列表失败: %w", err)
	}

	name = strings.ToLower(name)
	var matches []ProcessInfo

	for _, proc := range procs {
		procName, err := proc.Name()
		if err != nil {
			continue
		}

		if strings.Contains(strings.ToLower(procName), name) {
			exe, _ := proc.Exe()
			matches = append(matches, ProcessInfo{
				PID:  int(proc.Pid),
				Name: procName,
				Path: exe,
			})
		}
	}

	return matches, nil
}

var findProcess = FindProcess

// WaitFor 阻塞直到名称匹配的进程出现或 ctx 结束
// poll <= 0 时使用 DefaultPollInterval
func WaitFor(ctx context.Context, name string, poll time.Duration) (*ProcessInfo, error) {
	if poll <= 0 {
		poll = DefaultPollInterval
	}

	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	logged := false
	for {
		matches, err := findProcess(name)
		if err != nil {
			return nil, err
		}
		if len(matches) > 0 {
			logger.Info("检测到进程 %s (PID=%d)", matches[0].Name, matches[0].PID)
			return &matches[0], nil
		}
		if !logged {
			logger.Info("等待进程 %s 启动...", name)
			logged = true
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
