package renderer

import (
	"image"

	"golang.org/x/image/draw"
)

// flipRows returns a copy of data with its rows in reverse order.
func flipRows(data []byte, width, height, depth, bytesPerPixel int) []byte {
	row := width * bytesPerPixel
	if row == 0 || height < 2 || len(data) < row*height*depth {
		return data
	}
	out := make([]byte, len(data))
	for z := 0; z < depth; z++ {
		slice := z * row * height
		for y := 0; y < height; y++ {
			src := slice + y*row
			dst := slice + (height-1-y)*row
			copy(out[dst:dst+row], data[src:src+row])
		}
	}
	return out
}

// premultiply scales RGB by alpha in a copy of 8 bit RGBA data.
func premultiply(data []byte) []byte {
	out := make([]byte, len(data))
	for i := 0; i+3 < len(data); i += 4 {
		a := uint32(data[i+3])
		out[i] = byte(uint32(data[i]) * a / 255)
		out[i+1] = byte(uint32(data[i+1]) * a / 255)
		out[i+2] = byte(uint32(data[i+2]) * a / 255)
		out[i+3] = data[i+3]
	}
	return out
}

// fitSize scales width and height down to fit max, keeping the aspect ratio.
func fitSize(width, height, max int) (int, int) {
	if width <= max && height <= max {
		return width, height
	}
	if width >= height {
		h := height * max / width
		if h < 1 {
			h = 1
		}
		return max, h
	}
	w := width * max / height
	if w < 1 {
		w = 1
	}
	return w, max
}

// downscaleRGBA resamples 8 bit RGBA pixels to the requested size.
func downscaleRGBA(data []byte, width, height, newWidth, newHeight int) []byte {
	src := &image.NRGBA{Pix: data, Stride: width * 4, Rect: image.Rect(0, 0, width, height)}
	dst := image.NewNRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst.Pix
}

// mipLevels is the full chain length for a base level of the given size.
func mipLevels(width, height int) int {
	n := 1
	for s := max(width, height); s > 1; s >>= 1 {
		n++
	}
	return n
}
