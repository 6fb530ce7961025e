//go:build linux

package permissions

import (
	"strings"
	"testing"
)

func TestCheckPermissionsSession(t *testing.T) {
	orig := lookupEnv
	t.Cleanup(func() { lookupEnv = orig })

	lookupEnv = func(string) (string, bool) { return "", false }
	if CheckPermissions().AllGranted {
		t.Error("无图形会话时不应授予")
	}

	lookupEnv = func(key string) (string, bool) {
		if key == "WAYLAND_DISPLAY" {
			return "wayland-0", true
		}
		return "", false
	}
	if !CheckPermissions().Accessibility {
		t.Error("有 Wayland 会话时应授予")
	}
}

func TestEnsurePermissionsOpensSettings(t *testing.T) {
	origEnv, origReq, origAcc, origScr := lookupEnv, requestAccessibility, openAccessibility, openScreenRecording
	t.Cleanup(func() {
		lookupEnv, requestAccessibility, openAccessibility, openScreenRecording = origEnv, origReq, origAcc, origScr
	})

	var opened []string
	openAccessibility = func() { opened = append(opened, "accessibility") }
	openScreenRecording = func() { opened = append(opened, "screen") }

	lookupEnv = func(string) (string, bool) { return "", false }
	status, msg := EnsurePermissions()
	if status.AllGranted {
		t.Fatal("无图形会话时不应授予")
	}
	if !strings.Contains(msg, "DISPLAY") {
		t.Errorf("说明应提示图形会话: %q", msg)
	}
	if len(opened) != 2 || opened[0] != "accessibility" || opened[1] != "screen" {
		t.Errorf("应依次打开两个设置页面, 实际 %v", opened)
	}

	// 请求授权成功时不打开辅助功能设置
	opened = nil
	requestAccessibility = func() bool { return true }
	EnsurePermissions()
	if len(opened) != 1 || opened[0] != "screen" {
		t.Errorf("只应打开屏幕录制设置, 实际 %v", opened)
	}

	opened = nil
	lookupEnv = func(key string) (string, bool) { return ":0", key == "DISPLAY" }
	status, msg = EnsurePermissions()
	if !status.AllGranted || msg != "" {
		t.Errorf("有图形会话时应全部授予, 实际 %+v %q", status, msg)
	}
	if len(opened) != 0 {
		t.Errorf("已授予时不应打开设置, 实际 %v", opened)
	}
}

func TestResetPermissionsNoop(t *testing.T) {
	if err := ResetPermissions(); err != nil {
		t.Errorf("非 macOS 平台重置应为空操作: %v", err)
	}
}
