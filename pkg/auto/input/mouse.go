// Package input 提供模拟鼠标点击
package input

import (
	"github.com/go-vgo/robotgo"
)

// 平台调用，测试中可替换
var (
	moveTo = func(x, y int) { robotgo.Move(x, y) }
	click  = func(button string, double bool) { robotgo.Click(button, double) }
)
