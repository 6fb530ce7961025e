package worker

import (
	"github.com/zoeyai/autoclick/pkg/auto"
	"github.com/zoeyai/autoclick/pkg/vision"
)

// ClickPoint 计算点击坐标: 匹配位置 + 模板中心 + 偏移 + 显示器原点
// 模板中心按整数除法取 (w/2, h/2)
func ClickPoint(match auto.Point, tmplW, tmplH int, offset, origin auto.Point) auto.Point {
	return match.
		Add(auto.Point{X: tmplW / 2, Y: tmplH / 2}).
		Add(offset).
		Add(origin)
}

// screenPoint 与 ClickPoint 相同，但按帧的缩放比换算帧内坐标
func screenPoint(frame *vision.Frame, tmpl *vision.Template, match, offset auto.Point) auto.Point {
	if frame.Scale == 0 || frame.Scale == 1 {
		return ClickPoint(match, tmpl.Width(), tmpl.Height(), offset, frame.Origin)
	}
	return frame.ToScreen(match.Add(tmpl.Center())).Add(offset)
}
