// Package annotate 将点击时的帧保存为带标注的 PNG，便于排查误点
package annotate

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/zoeyai/autoclick/pkg/vision"
)

const labelSize = 12.0

var (
	boxColor   = color.RGBA{R: 255, G: 40, B: 40, A: 255}
	labelColor = color.RGBA{R: 255, G: 220, B: 0, A: 255}
)

// Annotator 调试快照写入器
type Annotator struct {
	dir  string
	font *truetype.Font
	now  func() time.Time
}

// New 创建写入 dir 目录的快照器
func New(dir string) (*Annotator, error) {
	if dir == "" {
		return nil, fmt.Errorf("快照目录为空")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("创建快照目录失败: %w", err)
	}
	f, err := freetype.ParseFont(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("加载字体失败: %w", err)
	}
	return &Annotator{dir: dir, font: f, now: time.Now}, nil
}

// Render 在帧上绘制匹配框和得分
func (a *Annotator) Render(frame *vision.Frame, tmpl *vision.Template, res vision.MatchResult) (*image.RGBA, error) {
	dst := vision.ToRGBA(frame.Gray)
	rect := image.Rect(res.Point.X, res.Point.Y, res.Point.X+tmpl.Width(), res.Point.Y+tmpl.Height())
	drawBox(dst, rect.Intersect(dst.Bounds()), boxColor)

	c := freetype.NewContext()
	c.SetDPI(72)
	c.SetFont(a.font)
	c.SetFontSize(labelSize)
	c.SetClip(dst.Bounds())
	c.SetDst(dst)
	c.SetSrc(image.NewUniform(labelColor))

	y := rect.Min.Y - int(c.PointToFixed(labelSize)>>6) - 2
	if y < 0 {
		y = rect.Max.Y + 2
	}
	pt := freetype.Pt(rect.Min.X, y+int(c.PointToFixed(labelSize)>>6))
	if _, err := c.DrawString(fmt.Sprintf("%.3f", res.Score), pt); err != nil {
		return nil, fmt.Errorf("绘制标注失败: %w", err)
	}
	return dst, nil
}

// Snapshot 渲染并写入一张快照，返回文件路径
func (a *Annotator) Snapshot(frame *vision.Frame, tmpl *vision.Template, res vision.MatchResult) (string, error) {
	img, err := a.Render(frame, tmpl, res)
	if err != nil {
		return "", err
	}

	name := fmt.Sprintf("click-%s.png", a.now().Format("20060102-150405.000"))
	path := filepath.Join(a.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("创建快照文件失败: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return "", fmt.Errorf("PNG 编码失败: %w", err)
	}
	return path, nil
}

// drawBox 绘制 1 像素宽的矩形边框
func drawBox(dst *image.RGBA, r image.Rectangle, c color.RGBA) {
	if r.Empty() {
		return
	}
	for x := r.Min.X; x < r.Max.X; x++ {
		dst.SetRGBA(x, r.Min.Y, c)
		dst.SetRGBA(x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		dst.SetRGBA(r.Min.X, y, c)
		dst.SetRGBA(r.Max.X-1, y, c)
	}
}
