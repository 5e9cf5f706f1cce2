package renderer

import (
	"testing"

	"GopherScene/internal/gpu"

	"github.com/stretchr/testify/assert"
)

func TestInfoUpdateByMode(t *testing.T) {
	tests := []struct {
		mode      gpu.Enum
		count     int
		instances int
		want      RenderStats
	}{
		{gpu.TRIANGLES, 36, 1, RenderStats{Calls: 1, Triangles: 12}},
		{gpu.TRIANGLES, 36, 3, RenderStats{Calls: 1, Triangles: 36}},
		{gpu.TRIANGLE_STRIP, 5, 1, RenderStats{Calls: 1, Triangles: 3}},
		{gpu.LINES, 8, 1, RenderStats{Calls: 1, Lines: 4}},
		{gpu.LINE_STRIP, 8, 1, RenderStats{Calls: 1, Lines: 7}},
		{gpu.LINE_LOOP, 8, 1, RenderStats{Calls: 1, Lines: 8}},
		{gpu.POINTS, 10, 2, RenderStats{Calls: 1, Points: 20}},
	}
	for _, tt := range tests {
		info := newInfo()
		info.Update(tt.count, tt.mode, tt.instances)
		assert.Equal(t, tt.want, info.Render, "mode 0x%x", uint32(tt.mode))
	}
}

func TestInfoResetKeepsFrame(t *testing.T) {
	info := newInfo()
	info.Render.Frame = 7
	info.Update(3, gpu.TRIANGLES, 1)

	info.Reset()

	assert.Equal(t, RenderStats{Frame: 7}, info.Render)
	assert.True(t, info.AutoReset)
}
