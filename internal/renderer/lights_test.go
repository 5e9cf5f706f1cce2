package renderer

import (
	"testing"

	"GopherScene/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var white = mgl32.Vec3{1, 1, 1}

func TestSetupSortsShadowAndMapLightsFirst(t *testing.T) {
	plain := scene.NewSpotLight(white, 1, 0, 0.5, 0, 2)
	mapped := scene.NewSpotLight(white, 1, 0, 0.5, 0, 2)
	mapped.Map = scene.NewTexture(scene.NewSource(make([]byte, 4), 1, 1))
	shadowed := scene.NewSpotLight(white, 1, 0, 0.5, 0, 2)
	shadowed.CastShadow = true
	plain2 := scene.NewSpotLight(white, 1, 0, 0.5, 0, 2)
	lights := []*scene.Light{plain, mapped, shadowed, plain2}

	ls := NewLights()
	ls.Setup(lights, false)

	assert.Equal(t, []*scene.Light{shadowed, mapped, plain, plain2}, lights)
	assert.Len(t, ls.State.Spot, 4)
	assert.Len(t, ls.State.SpotShadow, 1)
	assert.Len(t, ls.State.SpotLightMap, 1)
	// one matrix per spot light with a shadow or a map
	assert.Len(t, ls.State.SpotLightMatrix, 2)
}

func TestSpotShadowWithMapIsCountedOnce(t *testing.T) {
	l := scene.NewSpotLight(white, 1, 0, 0.5, 0, 2)
	l.CastShadow = true
	l.Map = scene.NewTexture(scene.NewSource(make([]byte, 4), 1, 1))

	ls := NewLights()
	ls.Setup([]*scene.Light{l}, false)

	assert.Equal(t, 1, ls.State.NumSpotLightShadowsWithMaps)
	assert.Len(t, ls.State.SpotLightMatrix, 1)
}

func TestVersionChangesOnlyWithHash(t *testing.T) {
	dir := scene.NewDirectionalLight(white, 1)
	ls := NewLights()

	ls.Setup([]*scene.Light{dir}, false)
	v := ls.State.Version
	dir.Intensity = 3
	ls.Setup([]*scene.Light{dir}, false)
	assert.Equal(t, v, ls.State.Version)

	ls.Setup([]*scene.Light{dir, scene.NewPointLight(white, 1, 0, 2)}, false)
	assert.Equal(t, v+1, ls.State.Version)
}

func TestAmbientAndProbesAccumulate(t *testing.T) {
	var sh [9]mgl32.Vec3
	sh[0] = mgl32.Vec3{1, 0, 0}
	ls := NewLights()

	ls.Setup([]*scene.Light{
		scene.NewAmbientLight(mgl32.Vec3{0.5, 0.5, 0.5}, 1),
		scene.NewAmbientLight(mgl32.Vec3{0.25, 0, 0}, 2),
		scene.NewLightProbe(sh, 2),
	}, false)

	assert.InDeltaSlice(t, []float32{1, 0.5, 0.5}, ls.State.Ambient[:], 1e-6)
	assert.InDeltaSlice(t, []float32{2, 0, 0}, ls.State.Probe[0][:], 1e-6)
	assert.Equal(t, 1, ls.State.NumLightProbes)
}

func TestUniformBlocksAreReusedPerLight(t *testing.T) {
	p := scene.NewPointLight(white, 1, 10, 2)
	ls := NewLights()

	ls.Setup([]*scene.Light{p}, false)
	first := ls.State.Point[0]
	ls.Setup([]*scene.Light{p}, false)
	assert.Same(t, first, ls.State.Point[0])

	ls.Forget(p.ID())
	ls.Setup([]*scene.Light{p}, false)
	assert.NotSame(t, first, ls.State.Point[0])
}

func TestSetupViewMovesPointLightIntoCameraSpace(t *testing.T) {
	p := scene.NewPointLight(white, 1, 10, 2)
	p.Position = mgl32.Vec3{1, 2, 3}
	p.UpdateMatrixWorld()
	cam := scene.NewPerspectiveCamera(50, 1, 0.1, 100)
	cam.Position = mgl32.Vec3{0, 0, 5}
	cam.UpdateMatrixWorld()
	ls := NewLights()
	lights := []*scene.Light{p}

	ls.Setup(lights, false)
	ls.SetupView(lights, cam)

	require.Len(t, ls.State.Point, 1)
	u := ls.State.Point[0].(*PointLightUniforms)
	assert.InDeltaSlice(t, []float32{1, 2, -2}, u.Position[:], 1e-5)
}
