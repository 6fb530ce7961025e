// Package screen 提供显示器枚举和灰度截图
package screen

import (
	"fmt"
	"image"

	"github.com/go-vgo/robotgo"

	"github.com/zoeyai/autoclick/pkg/auto"
	"github.com/zoeyai/autoclick/pkg/vision"
)

// Provider 基于 robotgo 的截图提供者，不缓存任何帧
type Provider struct{}

// NewProvider 创建截图提供者
func NewProvider() *Provider {
	return &Provider{}
}

// ListDisplays 枚举所有显示器
func (p *Provider) ListDisplays() ([]auto.Display, error) {
	n := robotgo.DisplaysNum()
	if n <= 0 {
		return nil, &auto.CaptureError{Op: "list", Display: -1, Err: fmt.Errorf("未检测到显示器")}
	}

	// robotgo 将主显示器排在首位
	displays := make([]auto.Display, 0, n)
	for i := 0; i < n; i++ {
		x, y, w, h := robotgo.GetDisplayBounds(i)
		displays = append(displays, auto.Display{
			ID:      i,
			Name:    fmt.Sprintf("Display %d", i),
			Origin:  auto.Point{X: x, Y: y},
			Width:   w,
			Height:  h,
			Primary: i == 0,
		})
	}
	return displays, nil
}

// CaptureGray 截取指定显示器并转为灰度帧
func (p *Provider) CaptureGray(displayID int) (*vision.Frame, error) {
	displays, err := p.ListDisplays()
	if err != nil {
		return nil, err
	}
	if displayID < 0 || displayID >= len(displays) {
		return nil, &auto.CaptureError{Op: "capture", Display: displayID, Err: auto.ErrDisplayNotFound}
	}
	d := displays[displayID]

	img, err := robotgo.CaptureImg(d.Origin.X, d.Origin.Y, d.Width, d.Height)
	if err != nil {
		return nil, &auto.CaptureError{Op: "capture", Display: displayID, Err: err}
	}
	if img == nil || img.Bounds().Empty() {
		return nil, &auto.CaptureError{Op: "capture", Display: displayID, Err: fmt.Errorf("截图为空")}
	}

	return &vision.Frame{
		Gray:      vision.ToGray(img),
		Origin:    d.Origin,
		DisplayID: displayID,
		Scale:     captureScale(img, d),
	}, nil
}

// captureScale 截图像素与逻辑尺寸之比（Retina / 高 DPI 下大于 1）
func captureScale(img image.Image, d auto.Display) float64 {
	if d.Width <= 0 {
		return 1
	}
	scale := float64(img.Bounds().Dx()) / float64(d.Width)
	if scale <= 0 {
		return 1
	}
	return scale
}
