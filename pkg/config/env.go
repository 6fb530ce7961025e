package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/zoeyai/autoclick/pkg/auto"
)

// 环境变量
const (
	EnvThreshold = "AUTOCLICK_THRESHOLD"
	EnvInterval  = "AUTOCLICK_INTERVAL"
	EnvCooldown  = "AUTOCLICK_COOLDOWN"
	EnvMonitor   = "AUTOCLICK_MONITOR"
	EnvTemplate  = "AUTOCLICK_TEMPLATE"
	EnvLogLevel  = "AUTOCLICK_LOG_LEVEL"
)

// LoadDotEnv 加载 .env 文件，文件不存在时忽略
// 已存在的环境变量不会被覆盖
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// ApplyEnv 用环境变量覆盖设置，数值无法解析时返回 *auto.ConfigError
func (s *Settings) ApplyEnv() error {
	if v, ok := os.LookupEnv(EnvThreshold); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return auto.NewConfigError("threshold", "%s 无法解析: %q", EnvThreshold, v)
		}
		s.Threshold = f
	}
	if err := envInt(EnvInterval, "interval_ms", &s.IntervalMs); err != nil {
		return err
	}
	if err := envInt(EnvCooldown, "cooldown_ms", &s.CooldownMs); err != nil {
		return err
	}
	if err := envInt(EnvMonitor, "monitor", &s.Monitor); err != nil {
		return err
	}
	if v, ok := os.LookupEnv(EnvTemplate); ok {
		s.TemplatePath = v
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok {
		s.LogLevel = v
	}
	return nil
}

func envInt(key, field string, dst *int) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return auto.NewConfigError(field, "%s 无法解析: %q", key, v)
	}
	*dst = n
	return nil
}
