// Package cv 提供单尺度模板匹配
//
// 默认匹配器使用纯 Go 实现的归一化互相关 (NCC)，在帧内穷举模板的所有整数偏移，
// 结果与 OpenCV 的 TM_CCOEFF_NORMED 等价。使用 -tags gocv 构建时可改用 OpenCV 实现。
//
// 基本用法:
//
//	m := cv.NewMatcher()
//	result, err := m.Detect(frame, tmpl)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("得分 %.3f 位置 %v\n", result.Score, result.Point)
//
// 复杂度为 O(帧面积 × 模板面积)，只适合小模板、小区域的场景。
package cv
