// Package vision 定义模板匹配所需的灰度图像类型，并负责模板加载。
//
// 基本用法:
//
//	tmpl, err := vision.LoadTemplate("resources/templates/accept_button.png")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	frame := vision.NewFrame(img, auto.Point{}, 0)
//	result, err := cv.NewMatcher().Detect(frame, tmpl)
//
// 匹配算法本身位于子包 cv。
package vision

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// ToGray 将任意图像转换为左上角位于 (0,0) 的紧凑灰度图
func ToGray(img image.Image) *image.Gray {
	if img == nil {
		return nil
	}
	if g, ok := img.(*image.Gray); ok && g.Rect.Min == (image.Point{}) && g.Stride == g.Rect.Dx() {
		return g
	}

	b := img.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// ToRGBA 将灰度图展开为 RGBA，便于绘制调试标注
func ToRGBA(g *image.Gray) *image.RGBA {
	dst := image.NewRGBA(g.Bounds())
	for y := 0; y < g.Rect.Dy(); y++ {
		for x := 0; x < g.Rect.Dx(); x++ {
			v := g.Pix[y*g.Stride+x]
			dst.SetRGBA(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return dst
}
