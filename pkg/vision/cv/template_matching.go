package cv

import (
	"errors"
	"fmt"
	"image"
	"math"

	"golang.org/x/sync/errgroup"
)

// placement 一个候选位置及其得分
type placement struct {
	score float64
	x, y  int
}

// integral 积分图，用于 O(1) 求窗口像素和与平方和
type integral struct {
	stride int
	sum    []int64
	sq     []int64
}

func newIntegral(g *image.Gray) *integral {
	w, h := g.Rect.Dx(), g.Rect.Dy()
	stride := w + 1
	ii := &integral{
		stride: stride,
		sum:    make([]int64, stride*(h+1)),
		sq:     make([]int64, stride*(h+1)),
	}
	for y := 0; y < h; y++ {
		var rowSum, rowSq int64
		row := g.Pix[y*g.Stride : y*g.Stride+w]
		for x, p := range row {
			v := int64(p)
			rowSum += v
			rowSq += v * v
			i := (y+1)*stride + x + 1
			ii.sum[i] = ii.sum[i-stride] + rowSum
			ii.sq[i] = ii.sq[i-stride] + rowSq
		}
	}
	return ii
}

// window 返回以 (x,y) 为左上角、w×h 窗口的像素和与平方和
func (ii *integral) window(x, y, w, h int) (int64, int64) {
	a := y*ii.stride + x
	b := y*ii.stride + x + w
	c := (y+h)*ii.stride + x
	d := (y+h)*ii.stride + x + w
	return ii.sum[d] - ii.sum[b] - ii.sum[c] + ii.sum[a],
		ii.sq[d] - ii.sq[b] - ii.sq[c] + ii.sq[a]
}

// nccSearch 一次模板搜索的预计算状态
type nccSearch struct {
	src   *image.Gray
	tw    int
	th    int
	n     int64
	tDiff []float64 // 模板像素减去均值
	tVarN int64     // n × Σ(t - mean)²，整数精确值
	ii    *integral
}

func newNCCSearch(src, tmpl *image.Gray) *nccSearch {
	tw, th := tmpl.Rect.Dx(), tmpl.Rect.Dy()
	n := int64(tw * th)

	var tSum, tSq int64
	for y := 0; y < th; y++ {
		for _, p := range tmpl.Pix[y*tmpl.Stride : y*tmpl.Stride+tw] {
			v := int64(p)
			tSum += v
			tSq += v * v
		}
	}
	mean := float64(tSum) / float64(n)

	tDiff := make([]float64, 0, n)
	for y := 0; y < th; y++ {
		for _, p := range tmpl.Pix[y*tmpl.Stride : y*tmpl.Stride+tw] {
			tDiff = append(tDiff, float64(p)-mean)
		}
	}

	return &nccSearch{
		src:   src,
		tw:    tw,
		th:    th,
		n:     n,
		tDiff: tDiff,
		tVarN: n*tSq - tSum*tSum,
		ii:    newIntegral(src),
	}
}

// score 计算模板左上角位于 (x,y) 时的归一化互相关
// 模板与窗口都为常量时视为完全匹配，只有一方为常量时得分为 0
func (s *nccSearch) score(x, y int) float64 {
	wSum, wSq := s.ii.window(x, y, s.tw, s.th)
	wVarN := s.n*wSq - wSum*wSum

	if s.tVarN == 0 || wVarN == 0 {
		if s.tVarN == 0 && wVarN == 0 {
			return 1
		}
		return 0
	}

	var num float64
	stride := s.src.Stride
	for ty := 0; ty < s.th; ty++ {
		row := s.src.Pix[(y+ty)*stride+x : (y+ty)*stride+x+s.tw]
		trow := s.tDiff[ty*s.tw : (ty+1)*s.tw]
		for i, p := range row {
			num += trow[i] * float64(p)
		}
	}

	n := float64(s.n)
	denom := math.Sqrt((float64(s.tVarN) / n) * (float64(wVarN) / n))
	r := num / denom
	if r > 1 {
		return 1
	}
	if r < -1 {
		return -1
	}
	return r
}

// scanRow 扫描一行候选位置，并列时保留最左侧
func (s *nccSearch) scanRow(y, outW int) placement {
	best := placement{score: math.Inf(-1), y: y}
	for x := 0; x < outW; x++ {
		if r := s.score(x, y); r > best.score {
			best = placement{score: r, x: x, y: y}
		}
	}
	return best
}

// MatchTemplate 在 src 中穷举搜索 tmpl，返回最高得分及其左上角位置
// workers > 1 时按行并行扫描，结果与串行完全一致；并列时取行号最小、再取列号最小者
func MatchTemplate(src, tmpl *image.Gray, workers int) (float64, image.Point, error) {
	if src == nil || tmpl == nil {
		return 0, image.Point{}, errors.New("匹配输入为空")
	}
	if err := checkSourceLargerThanSearch(src, tmpl); err != nil {
		return 0, image.Point{}, err
	}

	s := newNCCSearch(src, tmpl)
	outW := src.Rect.Dx() - s.tw + 1
	outH := src.Rect.Dy() - s.th + 1
	rows := make([]placement, outH)

	if workers <= 1 || outH == 1 {
		for y := 0; y < outH; y++ {
			rows[y] = s.scanRow(y, outW)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(workers)
		for y := 0; y < outH; y++ {
			g.Go(func() error {
				rows[y] = s.scanRow(y, outW)
				return nil
			})
		}
		_ = g.Wait()
	}

	best := rows[0]
	for _, r := range rows[1:] {
		if r.score > best.score {
			best = r
		}
	}
	return best.score, image.Point{X: best.x, Y: best.y}, nil
}

// checkSourceLargerThanSearch 检查源图像是否不小于搜索图像
func checkSourceLargerThanSearch(source, search *image.Gray) error {
	sw, sh := source.Rect.Dx(), source.Rect.Dy()
	tw, th := search.Rect.Dx(), search.Rect.Dy()
	if tw <= 0 || th <= 0 {
		return fmt.Errorf("模板尺寸无效: %dx%d", tw, th)
	}
	if sw < tw || sh < th {
		return &ImageSizeError{
			SourceSize: [2]int{sw, sh},
			SearchSize: [2]int{tw, th},
		}
	}
	return nil
}

// ImageSizeError 图像尺寸错误
type ImageSizeError struct {
	SourceSize [2]int
	SearchSize [2]int
}

func (e *ImageSizeError) Error() string {
	return fmt.Sprintf("搜索图像尺寸大于源图像: 模板 %dx%d, 帧 %dx%d",
		e.SearchSize[0], e.SearchSize[1], e.SourceSize[0], e.SourceSize[1])
}
