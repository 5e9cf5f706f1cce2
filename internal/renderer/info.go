package renderer

import (
	"GopherScene/internal/gpu"
	"GopherScene/internal/logger"

	"go.uber.org/zap"
)

// RenderStats counts draw work since the last reset.
type RenderStats struct {
	Frame     int
	Calls     int
	Triangles int
	Points    int
	Lines     int
}

// MemoryStats counts live GPU resources.
type MemoryStats struct {
	Geometries int
	Textures   int
}

// Info is the renderer statistics block.
type Info struct {
	Render    RenderStats
	Memory    MemoryStats
	Programs  int
	AutoReset bool
}

func newInfo() *Info {
	return &Info{AutoReset: true}
}

// Update accounts one draw call of count vertices drawn instances times.
func (i *Info) Update(count int, mode gpu.Enum, instances int) {
	i.Render.Calls++
	switch mode {
	case gpu.TRIANGLES:
		i.Render.Triangles += instances * (count / 3)
	case gpu.TRIANGLE_STRIP, gpu.TRIANGLE_FAN:
		if count > 2 {
			i.Render.Triangles += instances * (count - 2)
		}
	case gpu.LINES:
		i.Render.Lines += instances * (count / 2)
	case gpu.LINE_STRIP:
		if count > 1 {
			i.Render.Lines += instances * (count - 1)
		}
	case gpu.LINE_LOOP:
		i.Render.Lines += instances * count
	case gpu.POINTS:
		i.Render.Points += instances * count
	default:
		logger.Log.Error("Unknown draw mode", zap.Uint32("mode", uint32(mode)))
	}
}

// Reset clears per frame counters. Frame keeps counting.
func (i *Info) Reset() {
	i.Render.Calls = 0
	i.Render.Triangles = 0
	i.Render.Points = 0
	i.Render.Lines = 0
}
