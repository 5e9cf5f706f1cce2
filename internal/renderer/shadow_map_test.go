package renderer

import (
	"testing"

	"GopherScene/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shadowScene() (*scene.Scene, *scene.Light) {
	light := scene.NewSpotLight(mgl32.Vec3{1, 1, 1}, 1, 0, 0.5, 0, 2)
	light.Position = mgl32.Vec3{0, 4, 0}
	light.CastShadow = true
	box := basicBox()
	box.CastShadow = true
	box.ReceiveShadow = true
	sc := scene.NewScene()
	sc.Add(&light.Object, box)
	return sc, light
}

func shadowConfig(typ string) Config {
	cfg := DefaultConfig()
	cfg.ShadowMapEnabled = true
	cfg.ShadowMapType = typ
	return cfg
}

func TestDepthMaterialsCachedPerVariant(t *testing.T) {
	r, _ := newTestRenderer(t, shadowConfig("pcf"))
	s := r.shadowMap
	spot := scene.NewSpotLight(mgl32.Vec3{1, 1, 1}, 1, 0, 0.5, 0, 2)
	point := scene.NewPointLight(mgl32.Vec3{1, 1, 1}, 1, 10, 2)
	a := scene.NewMaterial(scene.MeshBasicMaterial)
	b := scene.NewMaterial(scene.MeshStandardMaterial)
	cut := scene.NewMaterial(scene.MeshBasicMaterial)
	cut.AlphaTest = 0.5

	da := s.depthMaterial(a, spot)

	assert.Same(t, da, s.depthMaterial(b, spot))
	assert.NotSame(t, da, s.depthMaterial(cut, spot))
	assert.Equal(t, scene.MeshDepthMaterial, da.Kind)
	assert.Equal(t, scene.RGBADepthPacking, da.DepthPacking)

	dp := s.depthMaterial(a, point)
	assert.Equal(t, scene.MeshDistanceMaterial, dp.Kind)
	assert.Equal(t, point.Shadow.Camera.Far, dp.FarDistance)
}

func TestShadowSide(t *testing.T) {
	r, _ := newTestRenderer(t, shadowConfig("pcf"))
	s := r.shadowMap
	m := scene.NewMaterial(scene.MeshBasicMaterial)

	assert.Equal(t, scene.BackSide, s.shadowSide(m))
	m.Side = scene.DoubleSide
	assert.Equal(t, scene.DoubleSide, s.shadowSide(m))

	explicit := scene.FrontSide
	m.ShadowSide = &explicit
	assert.Equal(t, scene.FrontSide, s.shadowSide(m))

	m.ShadowSide = nil
	m.Side = scene.FrontSide
	s.Type = scene.VSMShadowMap
	assert.Equal(t, scene.FrontSide, s.shadowSide(m))
}

func TestShadowCastersDrawnIntoMap(t *testing.T) {
	r, rec := newTestRenderer(t, shadowConfig("pcf"))
	sc, light := shadowScene()

	require.NoError(t, r.Render(sc, newTestCamera()))

	// one depth draw and one color draw
	assert.Equal(t, 2, rec.Count("DrawElements"))
	assert.False(t, light.Shadow.NeedsUpdate)
	assert.Equal(t, scene.PCFShadowMap, light.Shadow.MapType)
}

func TestShadowMapSkippedWithoutUpdate(t *testing.T) {
	r, rec := newTestRenderer(t, shadowConfig("pcf"))
	sc, _ := shadowScene()
	cam := newTestCamera()
	require.NoError(t, r.Render(sc, cam))

	r.shadowMap.AutoUpdate = false
	rec.ResetCalls()
	require.NoError(t, r.Render(sc, cam))
	assert.Equal(t, 1, rec.Count("DrawElements"))

	r.shadowMap.NeedsUpdate = true
	rec.ResetCalls()
	require.NoError(t, r.Render(sc, cam))
	assert.Equal(t, 2, rec.Count("DrawElements"))
	assert.False(t, r.shadowMap.NeedsUpdate)
}

func TestVSMBlursThroughPassTarget(t *testing.T) {
	r, rec := newTestRenderer(t, shadowConfig("vsm"))
	sc, light := shadowScene()

	require.NoError(t, r.Render(sc, newTestCamera()))

	require.NotNil(t, light.Shadow.MapPass)
	assert.Equal(t, scene.RGFormat, light.Shadow.Map.Texture().Format)
	// two full screen triangles for the blur
	assert.Equal(t, 2, rec.Count("DrawArrays"))
}

func TestShadowTypeChangeReallocates(t *testing.T) {
	r, _ := newTestRenderer(t, shadowConfig("pcf"))
	sc, light := shadowScene()
	cam := newTestCamera()
	require.NoError(t, r.Render(sc, cam))
	first := light.Shadow.Map
	require.Nil(t, light.Shadow.MapPass)

	r.shadowMap.Type = scene.VSMShadowMap
	require.NoError(t, r.Render(sc, cam))

	assert.NotSame(t, first, light.Shadow.Map)
	assert.NotNil(t, light.Shadow.MapPass)
	assert.Equal(t, scene.VSMShadowMap, light.Shadow.MapType)
}

func TestForgetLightReleasesShadowMap(t *testing.T) {
	r, _ := newTestRenderer(t, shadowConfig("pcf"))
	sc, light := shadowScene()
	require.NoError(t, r.Render(sc, newTestCamera()))
	require.NotNil(t, light.Shadow.Map)

	r.ForgetLight(light)

	assert.Nil(t, light.Shadow.Map)
}

func TestVSMBlursHorizontallyThenVertically(t *testing.T) {
	r, _ := newTestRenderer(t, shadowConfig("vsm"))
	sc, light := shadowScene()
	require.NoError(t, r.Render(sc, newTestCamera()))
	shadow := light.Shadow

	passes := r.shadowMap.vsmPasses(shadow)

	require.Len(t, passes, 2)
	assert.Equal(t, "1", passes[0].m.Defines["HORIZONTAL_PASS"])
	assert.Same(t, shadow.Map, passes[0].src)
	assert.Same(t, shadow.MapPass, passes[0].dest)
	assert.NotContains(t, passes[1].m.Defines, "HORIZONTAL_PASS")
	assert.Same(t, shadow.MapPass, passes[1].src)
	assert.Same(t, shadow.Map, passes[1].dest)
}
