//go:build gocv

package cv

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/zoeyai/autoclick/pkg/auto"
	"github.com/zoeyai/autoclick/pkg/vision"
)

// OpenCVMatcher 使用 OpenCV TM_CCOEFF_NORMED 的匹配器
// 得分定义与 Matcher 相同，但并列位置的取舍由 OpenCV 的 MinMaxLoc 决定
type OpenCVMatcher struct{}

// NewOpenCVMatcher 创建 OpenCV 匹配器
func NewOpenCVMatcher() (*OpenCVMatcher, error) {
	return &OpenCVMatcher{}, nil
}

// Detect 在帧中查找模板
func (m *OpenCVMatcher) Detect(frame *vision.Frame, tmpl *vision.Template) (vision.MatchResult, error) {
	if err := checkInputs(frame, tmpl); err != nil {
		return vision.MatchResult{}, err
	}
	if err := checkSourceLargerThanSearch(frame.Gray, tmpl.Gray); err != nil {
		return vision.MatchResult{}, err
	}

	src, err := grayToMat(frame.Gray)
	if err != nil {
		return vision.MatchResult{}, err
	}
	defer src.Close()

	search, err := grayToMat(tmpl.Gray)
	if err != nil {
		return vision.MatchResult{}, err
	}
	defer search.Close()

	result := gocv.NewMat()
	defer result.Close()
	mask := gocv.NewMat()
	defer mask.Close()

	gocv.MatchTemplate(src, search, &result, gocv.TmCcoeffNormed, mask)
	_, maxVal, _, maxLoc := gocv.MinMaxLoc(result)

	return vision.MatchResult{
		Score: float64(maxVal),
		Point: auto.Point{X: maxLoc.X, Y: maxLoc.Y},
	}, nil
}

// grayToMat 将灰度图复制为 CV_8UC1 Mat
func grayToMat(g *image.Gray) (gocv.Mat, error) {
	w, h := g.Rect.Dx(), g.Rect.Dy()
	pix := g.Pix
	if g.Stride != w {
		pix = make([]uint8, w*h)
		for y := 0; y < h; y++ {
			copy(pix[y*w:(y+1)*w], g.Pix[y*g.Stride:y*g.Stride+w])
		}
	}
	mat, err := gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8U, pix)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("图像转换失败: %w", err)
	}
	return mat, nil
}
