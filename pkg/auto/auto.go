// Package auto 提供屏幕自动化的共享类型：坐标点、显示器描述和错误分类。
// 具体功能分布在子包中：screen（截图）、input（点击）。
package auto

import (
	"fmt"
	"image"
	"math"
)

// Point 表示二维坐标点
type Point struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Add 返回两个点的逐分量之和
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

func (p Point) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

// Display 显示器信息，Origin 为其在全局屏幕坐标系中的左上角
type Display struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Origin  Point  `json:"origin"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Primary bool   `json:"primary"`
}

// Bounds 返回显示器在全局坐标系中的矩形区域
func (d Display) Bounds() image.Rectangle {
	return image.Rect(d.Origin.X, d.Origin.Y, d.Origin.X+d.Width, d.Origin.Y+d.Height)
}

// Label 返回用于列表展示的显示器描述
func (d Display) Label() string {
	label := fmt.Sprintf("#%d • %dx%d @ %s", d.ID, d.Width, d.Height, d.Origin)
	if d.Primary {
		label += " • primary"
	}
	return label
}

// ScaleCoord 按比例缩放坐标值（截图像素 → 输入坐标）
func ScaleCoord(value int, scale float64) int {
	if scale <= 0 {
		return value
	}
	return int(math.Round(float64(value) / scale))
}
