package vision

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // GIF 解码
	_ "image/jpeg" // JPEG 解码
	_ "image/png"  // PNG 解码
	"os"
	"strings"

	"github.com/corona10/goimagehash"
	_ "golang.org/x/image/bmp"  // BMP 解码
	_ "golang.org/x/image/tiff" // TIFF 解码
	_ "golang.org/x/image/webp" // WebP 解码

	"github.com/zoeyai/autoclick/pkg/auto"
)

// LoadTemplate 读取并校验模板图像
// 失败时返回 *auto.TemplateError
func LoadTemplate(path string) (*Template, error) {
	if strings.TrimSpace(path) == "" {
		return nil, &auto.TemplateError{Err: errors.New("模板路径为空")}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &auto.TemplateError{Path: path, Err: fmt.Errorf("无法读取文件: %w", err)}
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, &auto.TemplateError{Path: path, Err: fmt.Errorf("无法解码图像: %w", err)}
	}

	return templateFromImage(path, img)
}

// TemplateFromImage 由已解码图像创建模板，执行与 LoadTemplate 相同的校验
func TemplateFromImage(img image.Image) (*Template, error) {
	return templateFromImage("", img)
}

func templateFromImage(path string, img image.Image) (*Template, error) {
	if img == nil {
		return nil, &auto.TemplateError{Path: path, Err: errors.New("图像为空")}
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, &auto.TemplateError{Path: path, Err: fmt.Errorf("图像尺寸无效: %dx%d", b.Dx(), b.Dy())}
	}

	tmpl := &Template{Path: path, Gray: ToGray(img)}
	if hash, err := goimagehash.DifferenceHash(img); err == nil {
		tmpl.Fingerprint = hash.ToString()
	}
	return tmpl, nil
}
