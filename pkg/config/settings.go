package config

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zoeyai/autoclick/pkg/auto"
	"github.com/zoeyai/autoclick/pkg/worker"
)

// DefaultTemplateName 自动查找的模板文件名
const DefaultTemplateName = "accept_button.png"

// 匹配后端
const (
	MatcherNCC    = "ncc"
	MatcherOpenCV = "opencv"
)

// Offset 点击偏移
type Offset struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// Settings 用户设置
type Settings struct {
	Threshold    float64 `yaml:"threshold"`
	IntervalMs   int     `yaml:"interval_ms"`
	CooldownMs   int     `yaml:"cooldown_ms"`
	Monitor      int     `yaml:"monitor"`
	ClickOffset  Offset  `yaml:"click_offset"`
	TemplatePath string  `yaml:"template_path,omitempty"`

	LogLevel    string `yaml:"log_level"`
	LogFile     string `yaml:"log_file,omitempty"`
	MetricsAddr string `yaml:"metrics_addr,omitempty"`
	StatusAddr  string `yaml:"status_addr,omitempty"`
	DebugDir    string `yaml:"debug_dir,omitempty"`
	WaitProcess string `yaml:"wait_process,omitempty"`
	Matcher     string `yaml:"matcher"`
}

// DefaultSettings 默认设置
func DefaultSettings() *Settings {
	return &Settings{
		Threshold:  0.88,
		IntervalMs: 120,
		CooldownMs: 4000,
		Monitor:    0,
		LogLevel:   "info",
		Matcher:    MatcherNCC,
	}
}

// Interval 检测间隔
func (s *Settings) Interval() time.Duration {
	return time.Duration(s.IntervalMs) * time.Millisecond
}

// Cooldown 冷却时间
func (s *Settings) Cooldown() time.Duration {
	return time.Duration(s.CooldownMs) * time.Millisecond
}

// Validate 校验设置，越界时返回 *auto.ConfigError
func (s *Settings) Validate() error {
	if math.IsNaN(s.Threshold) || s.Threshold < 0 || s.Threshold > 1 {
		return auto.NewConfigError("threshold", "阈值必须在 0 到 1 之间, 当前 %v", s.Threshold)
	}
	if s.IntervalMs < 0 {
		return auto.NewConfigError("interval_ms", "检测间隔不能为负, 当前 %d", s.IntervalMs)
	}
	if s.CooldownMs < 0 {
		return auto.NewConfigError("cooldown_ms", "冷却时间不能为负, 当前 %d", s.CooldownMs)
	}
	if s.Monitor < 0 {
		return auto.NewConfigError("monitor", "显示器编号不能为负, 当前 %d", s.Monitor)
	}
	switch strings.ToLower(s.Matcher) {
	case "", MatcherNCC, MatcherOpenCV:
	default:
		return auto.NewConfigError("matcher", "未知的匹配后端 %q", s.Matcher)
	}
	return nil
}

// ResolveTemplatePath 返回模板路径
// 显式指定时必须存在，否则依次在可执行文件旁和当前目录查找
func (s *Settings) ResolveTemplatePath() (string, error) {
	if s.TemplatePath != "" {
		if _, err := os.Stat(s.TemplatePath); err != nil {
			return "", auto.NewConfigError("template_path", "模板不存在: %s", s.TemplatePath)
		}
		return s.TemplatePath, nil
	}

	for _, p := range templateCandidates() {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, nil
		}
	}
	return "", auto.NewConfigError("template_path", "未找到模板 %s, 请通过 -template 指定", DefaultTemplateName)
}

var executable = os.Executable

func templateCandidates() []string {
	var out []string
	if exe, err := executable(); err == nil {
		dir := filepath.Dir(exe)
		out = append(out,
			filepath.Join(dir, "resources", "templates", DefaultTemplateName),
			filepath.Join(dir, "templates", DefaultTemplateName),
		)
	}
	if cwd, err := os.Getwd(); err == nil {
		out = append(out, filepath.Join(cwd, "resources", "templates", DefaultTemplateName))
	}
	return out
}

// WorkerConfig 生成工作器配置快照，模板路径需已解析
func (s *Settings) WorkerConfig(templatePath string) worker.Config {
	return worker.Config{
		Threshold:    s.Threshold,
		Interval:     s.Interval(),
		Cooldown:     s.Cooldown(),
		Monitor:      s.Monitor,
		ClickOffset:  auto.Point{X: s.ClickOffset.X, Y: s.ClickOffset.Y},
		TemplatePath: templatePath,
	}
}
