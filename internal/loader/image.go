package loader

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"GopherScene/internal/logger"
	"GopherScene/internal/scene"

	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrUnsupportedFormat is returned for files no registered decoder recognizes.
var ErrUnsupportedFormat = errors.New("loader: unsupported format")

// DecodeImage decodes png, jpeg, bmp, tiff or webp data into tightly packed RGBA8 pixels.
func DecodeImage(r io.Reader) (*scene.Source, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, ErrUnsupportedFormat
		}
		return nil, err
	}
	b := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != 4*b.Dx() || b.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	}
	logger.Log.Debug("Decoded image",
		zap.String("format", format),
		zap.Int("width", b.Dx()),
		zap.Int("height", b.Dy()))
	return scene.NewSource(rgba.Pix, b.Dx(), b.Dy()), nil
}

// LoadImage reads an image file into an sRGB color texture.
func LoadImage(path string) (*scene.Texture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	src, err := DecodeImage(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %q: %w", path, err)
	}
	tex := scene.NewTexture(src)
	tex.Name = path
	tex.ColorSpace = scene.SRGBColorSpace
	return tex, nil
}
