package vision

import (
	"image"

	"github.com/zoeyai/autoclick/pkg/auto"
)

// Frame 一次截图得到的灰度帧
// 每轮检测重新创建，匹配结束后即丢弃
type Frame struct {
	// Gray 灰度像素，左上角为 (0,0)
	Gray *image.Gray
	// Origin 来源显示器在全局坐标系中的左上角
	Origin auto.Point
	// DisplayID 来源显示器编号
	DisplayID int
	// Scale 截图像素与输入坐标之比（HiDPI 下大于 1），0 视为 1
	Scale float64
}

// NewFrame 由任意图像创建灰度帧
func NewFrame(img image.Image, origin auto.Point, displayID int) *Frame {
	return &Frame{Gray: ToGray(img), Origin: origin, DisplayID: displayID, Scale: 1}
}

// Width 帧宽度
func (f *Frame) Width() int { return f.Gray.Rect.Dx() }

// Height 帧高度
func (f *Frame) Height() int { return f.Gray.Rect.Dy() }

// ToScreen 将帧内像素坐标换算为全局屏幕坐标
func (f *Frame) ToScreen(p auto.Point) auto.Point {
	return auto.Point{
		X: auto.ScaleCoord(p.X, f.Scale) + f.Origin.X,
		Y: auto.ScaleCoord(p.Y, f.Scale) + f.Origin.Y,
	}
}

// Template 参考模板（只读）
type Template struct {
	// Path 模板来源路径
	Path string
	// Gray 灰度像素
	Gray *image.Gray
	// Fingerprint 感知哈希，用于日志中辨认模板
	Fingerprint string
}

// Width 模板宽度
func (t *Template) Width() int { return t.Gray.Rect.Dx() }

// Height 模板高度
func (t *Template) Height() int { return t.Gray.Rect.Dy() }

// Center 模板中心相对左上角的偏移
func (t *Template) Center() auto.Point {
	return auto.Point{X: t.Width() / 2, Y: t.Height() / 2}
}

// MatchResult 匹配结果
type MatchResult struct {
	// Score 归一化互相关得分，范围 [-1, 1]，1 表示完全匹配
	Score float64 `json:"score"`
	// Point 最佳匹配位置（模板左上角，帧内坐标）
	Point auto.Point `json:"point"`
}
