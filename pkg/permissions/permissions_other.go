//go:build !darwin

package permissions

import (
	"os"
	"runtime"
)

const (
	accessibilityHint   = "请在图形会话中运行 (需要 DISPLAY 或 WAYLAND_DISPLAY)"
	screenRecordingHint = accessibilityHint
)

var lookupEnv = os.LookupEnv

// CheckPermissions 检查所需权限
// Windows 无需额外授权，Linux 需要可用的图形会话
func CheckPermissions() *PermissionStatus {
	if runtime.GOOS != "linux" {
		return newStatus(true, true)
	}
	ok := hasSession()
	return newStatus(ok, ok)
}

func hasSession() bool {
	for _, key := range []string{"DISPLAY", "WAYLAND_DISPLAY"} {
		if v, ok := lookupEnv(key); ok && v != "" {
			return true
		}
	}
	return false
}

// RequestAccessibilityPermission 请求辅助功能权限
func RequestAccessibilityPermission() bool {
	return CheckPermissions().Accessibility
}

// OpenAccessibilitySettings 其他平台没有对应的设置页面
func OpenAccessibilitySettings() {}

// OpenScreenRecordingSettings 其他平台没有对应的设置页面
func OpenScreenRecordingSettings() {}

// ResetPermissions 其他平台没有权限记录可重置
func ResetPermissions() error {
	return nil
}
