package imgx

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // 注册 GIF 解码器
	_ "image/jpeg" // 注册 JPEG 解码器
	_ "image/png"  // 注册 PNG 解码器

	_ "golang.org/x/image/bmp"  // 注册 BMP 解码器
	_ "golang.org/x/image/webp" // 注册 WebP 解码器（emoji 图集常见格式）
)

// Info 是图片头部信息（只解码 config，不解码像素）。
type Info struct {
	Format string
	Width  int
	Height int
}

// InvalidImageError 表示字节无法被识别为受支持的图片。
type InvalidImageError struct {
	Err error
}

func (e *InvalidImageError) Error() string { return fmt.Sprintf("图片无效：%v", e.Err) }

func (e *InvalidImageError) Unwrap() error { return e.Err }

// IsInvalidImage 判断 err 是否为图片内容错误。
func IsInvalidImage(err error) bool {
	var e *InvalidImageError
	return errors.As(err, &e)
}

// Probe 校验 b 是受支持的图片（PNG/JPEG/GIF/BMP/WebP），并返回格式与尺寸。
func Probe(b []byte) (Info, error) {
	if len(b) == 0 {
		return Info{}, &InvalidImageError{Err: errors.New("内容为空")}
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(b))
	if err != nil {
		return Info{}, &InvalidImageError{Err: err}
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Info{}, &InvalidImageError{Err: fmt.Errorf("尺寸无效：%dx%d", cfg.Width, cfg.Height)}
	}
	return Info{Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}
