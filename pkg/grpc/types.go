package grpc

import (
	"net"
	"os"
	"runtime"
	"strings"
)

// Version 版本号
const Version = "1.0.0"

// SystemInfo 系统信息
type SystemInfo struct {
	Hostname  string `json:"hostname"`
	Platform  string `json:"platform"`
	OSVersion string `json:"os_version"`
	Version   string `json:"version"`
	IPAddress string `json:"ip_address"`
}

// GetSystemInfo 获取当前系统信息
func GetSystemInfo() *SystemInfo {
	hostname, _ := os.Hostname()

	platform := strings.ToUpper(runtime.GOOS)
	if platform == "DARWIN" {
		platform = "MACOS"
	}

	return &SystemInfo{
		Hostname:  hostname,
		Platform:  platform,
		OSVersion: runtime.GOOS + "/" + runtime.GOARCH,
		Version:   Version,
		IPAddress: getLocalIP(),
	}
}

// getLocalIP 返回第一个非回环的 IPv4 地址
func getLocalIP() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "127.0.0.1"
	}
	for _, a := range addrs {
		if ipNet, ok := a.(*net.IPNet); ok && !ipNet.IP.IsLoopback() {
			if ip4 := ipNet.IP.To4(); ip4 != nil {
				return ip4.String()
			}
		}
	}
	return "127.0.0.1"
}
