package loader

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"

	"GopherScene/internal/scene"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

func TestDecodeImageToRGBA(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	img.Set(2, 1, color.NRGBA{10, 20, 30, 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	src, err := DecodeImage(&buf)
	require.NoError(t, err)

	assert.Equal(t, 3, src.Width)
	assert.Equal(t, 2, src.Height)
	require.Len(t, src.Data, 3*2*4)
	last := (1*3 + 2) * 4
	assert.Equal(t, []byte{10, 20, 30, 255}, src.Data[last:last+4])
}

func TestDecodeImageBMP(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(0, 0, color.RGBA{255, 255, 255, 255})
	var buf bytes.Buffer
	require.NoError(t, bmp.Encode(&buf, img))

	src, err := DecodeImage(&buf)
	require.NoError(t, err)

	assert.Equal(t, 4, src.Width)
	assert.Equal(t, []byte{255, 255, 255, 255}, src.Data[:4])
}

func TestDecodeImageUnknownFormat(t *testing.T) {
	_, err := DecodeImage(bytes.NewReader([]byte("definitely not an image")))

	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestLoadImageIsSRGB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "albedo.png")
	writePNG(t, path, 8, 4)

	tex, err := LoadImage(path)
	require.NoError(t, err)

	assert.Equal(t, scene.SRGBColorSpace, tex.ColorSpace)
	assert.Equal(t, 1, tex.Version)
	w, h, _ := tex.Size()
	assert.Equal(t, 8, w)
	assert.Equal(t, 4, h)
}
