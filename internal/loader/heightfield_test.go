package loader

import (
	"testing"

	"GopherScene/internal/scene"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func positions(g *scene.Geometry) scene.Float32Array {
	return g.Attribute("position").(*scene.BufferAttribute).Array.(scene.Float32Array)
}

func TestGridLayout(t *testing.T) {
	g, err := Grid(3, 2)
	require.NoError(t, err)

	pos := positions(g)
	assert.Equal(t, 9, g.Attribute("position").Count())
	assert.Equal(t, 2*2*6, g.Index.Count())
	// centered on the origin
	assert.Equal(t, float32(-2), pos[0])
	assert.Equal(t, float32(2), pos[len(pos)-1])
	assert.InDelta(t, 0, g.BoundingSphere.Center.Len(), 1e-6)
}

func TestGridRejectsTinySizes(t *testing.T) {
	_, err := Grid(1, 1)
	assert.Error(t, err)
	_, err = Heightfield(0, 1, 1)
	assert.Error(t, err)
}

func TestHeightfieldIsDeterministicPerSeed(t *testing.T) {
	a, err := Heightfield(17, 1, 42)
	require.NoError(t, err)
	b, err := Heightfield(17, 1, 42)
	require.NoError(t, err)
	c, err := Heightfield(17, 1, 7)
	require.NoError(t, err)

	assert.Equal(t, positions(a), positions(b))
	assert.NotEqual(t, positions(a), positions(c))
}

func TestHeightfieldDisplacesOnlyY(t *testing.T) {
	flat, err := Grid(9, 0.5)
	require.NoError(t, err)
	hills, err := Heightfield(9, 0.5, 3)
	require.NoError(t, err)

	fp, hp := positions(flat), positions(hills)
	varied := false
	for i := 0; i < len(fp); i += 3 {
		assert.Equal(t, fp[i], hp[i])
		assert.Equal(t, fp[i+2], hp[i+2])
		if hp[i+1] != 0 {
			varied = true
		}
	}
	assert.True(t, varied)

	n := hills.Attribute("normal").(*scene.BufferAttribute).Array.(scene.Float32Array)
	for i := 0; i < len(n); i += 3 {
		// terrain normals always face up
		assert.Greater(t, n[i+1], float32(0))
	}
}
