// Package permissions 检查截屏与模拟输入所需的系统权限
package permissions

import (
	"strings"
)

// PermissionStatus 权限状态
type PermissionStatus struct {
	Accessibility   bool `json:"accessibility"`
	ScreenRecording bool `json:"screen_recording"`
	AllGranted      bool `json:"all_granted"`
}

func newStatus(accessibility, screenRecording bool) *PermissionStatus {
	return &PermissionStatus{
		Accessibility:   accessibility,
		ScreenRecording: screenRecording,
		AllGranted:      accessibility && screenRecording,
	}
}

// GetPermissionInstructions 获取权限说明，全部授予时返回空串
func GetPermissionInstructions(status *PermissionStatus) string {
	if status == nil || status.AllGranted {
		return ""
	}

	var b strings.Builder
	b.WriteString("需要授权以下权限才能正常工作:\n\n")
	n := 1
	if !status.Accessibility {
		b.WriteString(itemPrefix(n) + "辅助功能权限 (用于点击按钮)\n")
		b.WriteString("   " + accessibilityHint + "\n\n")
		n++
	}
	if !status.ScreenRecording {
		b.WriteString(itemPrefix(n) + "屏幕录制权限 (用于截屏和模板匹配)\n")
		b.WriteString("   " + screenRecordingHint + "\n\n")
	}
	b.WriteString("授权后需要重启程序才能生效。")
	return b.String()
}

func itemPrefix(n int) string {
	return string(rune('0'+n)) + ". "
}

var (
	requestAccessibility = RequestAccessibilityPermission
	openAccessibility    = OpenAccessibilitySettings
	openScreenRecording  = OpenScreenRecordingSettings
)

// EnsurePermissions 检查权限，未授予的项请求授权并打开对应的设置页面
// 返回检查结果和需要展示给用户的说明
func EnsurePermissions() (*PermissionStatus, string) {
	status := CheckPermissions()
	if status.AllGranted {
		return status, ""
	}
	if !status.Accessibility && !requestAccessibility() {
		openAccessibility()
	}
	if !status.ScreenRecording {
		openScreenRecording()
	}
	return status, GetPermissionInstructions(status)
}
