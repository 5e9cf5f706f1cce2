package renderer

import (
	"testing"

	"GopherScene/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCubeCamerasFaceEachAxis(t *testing.T) {
	cams := newCubeCameras(mgl32.Vec3{}, 0.1, 10)
	for i, c := range cams {
		forward := c.Rotation.Rotate(mgl32.Vec3{0, 0, -1})
		assert.InDeltaSlice(t, cubeFaces[i].dir[:], forward[:], 1e-5, "face %d", i)
	}
}

func TestEnvMapModeOfEquirect(t *testing.T) {
	tex := scene.NewTexture(nil)
	tex.Mapping = scene.EquirectangularReflectionMapping
	assert.Equal(t, scene.CubeReflectionMapping, envMapMode(tex))
	tex.Mapping = scene.EquirectangularRefractionMapping
	assert.Equal(t, scene.CubeRefractionMapping, envMapMode(tex))
	tex.Mapping = scene.UVMapping
	assert.Equal(t, scene.UVMapping, envMapMode(tex))
}

func TestCubeMapsPassThroughOtherTextures(t *testing.T) {
	r, rec := newTestRenderer(t, DefaultConfig())
	tex := scene.NewTexture(scene.NewSource(make([]byte, 4), 1, 1))

	assert.Same(t, tex, r.cubeMaps.Get(tex))
	assert.Nil(t, r.cubeMaps.Get(nil))
	assert.Zero(t, rec.Count("DrawElements"))
}

func TestEquirectWithoutImageYieldsNil(t *testing.T) {
	r, _ := newTestRenderer(t, DefaultConfig())
	tex := scene.NewTexture(nil)
	tex.Mapping = scene.EquirectangularReflectionMapping

	assert.Nil(t, r.cubeMaps.Get(tex))
	assert.Empty(t, r.cubeMaps.entries)
}

func TestEquirectConversionRestoresTarget(t *testing.T) {
	r, _ := newTestRenderer(t, DefaultConfig())
	rt := scene.NewRenderTarget(16, 16, scene.DefaultRenderTargetOptions())
	require.NoError(t, r.SetRenderTarget(rt, 0, 0))
	tex := scene.NewTexture(scene.NewSource(make([]byte, 16*8*4), 16, 8))
	tex.Mapping = scene.EquirectangularReflectionMapping

	cube := r.cubeMaps.Get(tex)

	require.NotNil(t, cube)
	assert.Equal(t, scene.CubeReflectionMapping, cube.Mapping)
	assert.Same(t, rt, r.RenderTarget())
	assert.Same(t, cube, r.cubeMaps.Get(tex))

	r.DisposeTexture(tex)
	assert.Empty(t, r.cubeMaps.entries)
}
