package renderer

import (
	"errors"
	"testing"

	"GopherScene/internal/gpu/gputest"
	"GopherScene/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRenderer(t *testing.T, cfg Config) (*Renderer, *gputest.Recorder) {
	t.Helper()
	rec := gputest.New()
	r, err := New(rec, cfg, 64, 64)
	require.NoError(t, err)
	rec.ResetCalls()
	return r, rec
}

func newTestCamera() *scene.Camera {
	cam := scene.NewPerspectiveCamera(50, 1, 0.1, 100)
	cam.Position = mgl32.Vec3{0, 0, 5}
	return cam
}

func basicBox() *scene.Object {
	return scene.NewMesh(scene.NewBoxGeometry(1, 1, 1), scene.NewMaterial(scene.MeshBasicMaterial))
}

func draws(rec *gputest.Recorder) int {
	return rec.Count("DrawElements") + rec.Count("DrawArrays") +
		rec.Count("DrawElementsInstanced") + rec.Count("DrawArraysInstanced")
}

func TestRenderDrawsVisibleMesh(t *testing.T) {
	r, rec := newTestRenderer(t, DefaultConfig())
	sc := scene.NewScene()
	sc.Add(basicBox())

	require.NoError(t, r.Render(sc, newTestCamera()))

	assert.Equal(t, 1, rec.Count("DrawElements"))
	assert.Equal(t, 1, r.Info().Render.Calls)
	assert.Equal(t, 12, r.Info().Render.Triangles)
	assert.Equal(t, 1, r.Info().Render.Frame)
}

func TestProgramBuiltOnceAcrossFrames(t *testing.T) {
	r, rec := newTestRenderer(t, DefaultConfig())
	sc := scene.NewScene()
	sc.Add(basicBox())
	cam := newTestCamera()

	for i := 0; i < 3; i++ {
		require.NoError(t, r.Render(sc, cam))
	}

	assert.Equal(t, 1, rec.Count("CreateProgram"))
	assert.Equal(t, 3, rec.Count("DrawElements"))
	assert.Equal(t, 3, r.Info().Render.Frame)
	// counters are per frame
	assert.Equal(t, 1, r.Info().Render.Calls)
}

func TestGeometryUploadedOnce(t *testing.T) {
	r, rec := newTestRenderer(t, DefaultConfig())
	sc := scene.NewScene()
	sc.Add(basicBox())
	cam := newTestCamera()

	require.NoError(t, r.Render(sc, cam))
	uploads := rec.Count("BufferData")
	require.NoError(t, r.Render(sc, cam))

	assert.Positive(t, uploads)
	assert.Equal(t, uploads, rec.Count("BufferData"))
	assert.Equal(t, 1, r.Info().Memory.Geometries)
}

func TestObjectBehindCameraIsCulled(t *testing.T) {
	r, rec := newTestRenderer(t, DefaultConfig())
	sc := scene.NewScene()
	box := basicBox()
	box.Position = mgl32.Vec3{0, 0, 20}
	sc.Add(box)

	require.NoError(t, r.Render(sc, newTestCamera()))
	assert.Equal(t, 0, draws(rec))

	box.FrustumCulled = false
	require.NoError(t, r.Render(sc, newTestCamera()))
	assert.Equal(t, 1, draws(rec))
}

func TestInvisibleAndOtherLayerObjectsAreSkipped(t *testing.T) {
	r, rec := newTestRenderer(t, DefaultConfig())
	sc := scene.NewScene()
	hidden := basicBox()
	hidden.Visible = false
	other := basicBox()
	other.Layers.Set(3)
	sc.Add(hidden, other)

	require.NoError(t, r.Render(sc, newTestCamera()))

	assert.Equal(t, 0, draws(rec))
}

func TestMeshesWithEqualMaterialsShareProgram(t *testing.T) {
	r, rec := newTestRenderer(t, DefaultConfig())
	sc := scene.NewScene()
	a, b := basicBox(), basicBox()
	sc.Add(a, b)

	require.NoError(t, r.Render(sc, newTestCamera()))

	assert.Equal(t, 1, rec.Count("CreateProgram"))
	assert.Equal(t, 2, rec.Count("DrawElements"))
	require.Len(t, r.programs.Programs(), 1)
	assert.Equal(t, 2, r.programs.Programs()[0].UsedTimes())

	r.DisposeMaterial(a.Material)
	assert.Equal(t, 0, rec.Count("DeleteProgram"))
	r.DisposeMaterial(b.Material)
	assert.Equal(t, 1, rec.Count("DeleteProgram"))
}

func TestMaterialVersionSelectsNewProgram(t *testing.T) {
	r, rec := newTestRenderer(t, DefaultConfig())
	sc := scene.NewScene()
	box := basicBox()
	sc.Add(box)
	cam := newTestCamera()
	require.NoError(t, r.Render(sc, cam))

	box.Material.Map = scene.NewTexture(scene.NewSource(make([]byte, 16), 2, 2))
	box.Material.NeedsUpdate()
	require.NoError(t, r.Render(sc, cam))

	assert.Equal(t, 2, rec.Count("CreateProgram"))
}

func TestMultiMaterialDrawsEveryGroup(t *testing.T) {
	r, rec := newTestRenderer(t, DefaultConfig())
	materials := make([]*scene.Material, 6)
	for i := range materials {
		materials[i] = scene.NewMaterial(scene.MeshBasicMaterial)
	}
	sc := scene.NewScene()
	sc.Add(scene.NewMultiMaterialMesh(scene.NewBoxGeometry(1, 1, 1), materials))

	require.NoError(t, r.Render(sc, newTestCamera()))

	assert.Equal(t, 6, rec.Count("DrawElements"))
	assert.Equal(t, 12, r.Info().Render.Triangles)
	assert.Equal(t, 1, rec.Count("CreateProgram"))
}

func TestWireframeDrawsLines(t *testing.T) {
	r, _ := newTestRenderer(t, DefaultConfig())
	box := basicBox()
	box.Material.Wireframe = true
	sc := scene.NewScene()
	sc.Add(box)

	require.NoError(t, r.Render(sc, newTestCamera()))

	assert.Equal(t, 1, r.Info().Render.Calls)
	assert.Zero(t, r.Info().Render.Triangles)
	assert.Positive(t, r.Info().Render.Lines)
}

func TestInstancedMeshDrawsOnce(t *testing.T) {
	r, rec := newTestRenderer(t, DefaultConfig())
	sc := scene.NewScene()
	sc.Add(scene.NewInstancedMesh(scene.NewBoxGeometry(1, 1, 1), scene.NewMaterial(scene.MeshBasicMaterial), 3))

	require.NoError(t, r.Render(sc, newTestCamera()))

	assert.Equal(t, 1, rec.Count("DrawElementsInstanced"))
	assert.Equal(t, 36, r.Info().Render.Triangles)
}

func TestPointsDrawArrays(t *testing.T) {
	r, rec := newTestRenderer(t, DefaultConfig())
	g := scene.NewGeometry()
	g.SetAttribute("position", scene.NewBufferAttribute(scene.Float32Array{0, 0, 0, 1, 0, 0, 0, 1, 0}, 3, false))
	sc := scene.NewScene()
	sc.Add(scene.NewPoints(g, scene.NewMaterial(scene.PointsMaterial)))

	require.NoError(t, r.Render(sc, newTestCamera()))

	assert.Equal(t, 1, rec.Count("DrawArrays"))
	assert.Equal(t, 3, r.Info().Render.Points)
}

func TestDrawRangeLimitsCount(t *testing.T) {
	r, _ := newTestRenderer(t, DefaultConfig())
	box := basicBox()
	box.Geometry.DrawRange.Count = 6
	sc := scene.NewScene()
	sc.Add(box)

	require.NoError(t, r.Render(sc, newTestCamera()))

	assert.Equal(t, 2, r.Info().Render.Triangles)
}

func TestMissingMaterialIsAnError(t *testing.T) {
	r, _ := newTestRenderer(t, DefaultConfig())
	sc := scene.NewScene()
	sc.Add(scene.NewMesh(scene.NewBoxGeometry(1, 1, 1), nil))

	err := r.Render(sc, newTestCamera())

	assert.True(t, errors.Is(err, ErrNilMaterial))
}

func TestBackgroundColorForcesClear(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AutoClear = false
	r, rec := newTestRenderer(t, cfg)
	sc := scene.NewScene()

	require.NoError(t, r.Render(sc, newTestCamera()))
	assert.Equal(t, 0, rec.Count("Clear"))

	sc.SetBackgroundColor(mgl32.Vec3{0.2, 0.3, 0.4})
	require.NoError(t, r.Render(sc, newTestCamera()))
	assert.Equal(t, 1, rec.Count("Clear"))
}

func TestEquirectBackgroundConvertedOnce(t *testing.T) {
	r, rec := newTestRenderer(t, DefaultConfig())
	tex := scene.NewTexture(scene.NewSource(make([]byte, 8*4*4), 8, 4))
	tex.Mapping = scene.EquirectangularReflectionMapping
	sc := scene.NewScene()
	sc.BackgroundTexture = tex
	cam := newTestCamera()

	require.NoError(t, r.Render(sc, cam))

	// six faces plus the background box itself
	assert.Equal(t, 7, rec.Count("DrawElements"))
	assert.Len(t, r.cubeMaps.entries, 1)
	assert.Equal(t, 1, r.Info().Render.Frame)
	assert.Nil(t, r.RenderTarget())

	rec.ResetCalls()
	require.NoError(t, r.Render(sc, cam))
	assert.Equal(t, 1, rec.Count("DrawElements"))

	tex.NeedsUpdate()
	rec.ResetCalls()
	require.NoError(t, r.Render(sc, cam))
	assert.Equal(t, 7, rec.Count("DrawElements"))
	assert.Len(t, r.cubeMaps.entries, 1)
}

func TestShadowMapClampedAndAllocatedOnce(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ShadowMapEnabled = true
	r, _ := newTestRenderer(t, cfg)
	light := scene.NewSpotLight(mgl32.Vec3{1, 1, 1}, 1, 0, 0.5, 0, 2)
	light.Position = mgl32.Vec3{0, 4, 0}
	light.CastShadow = true
	light.Shadow.MapWidth = 8192
	box := basicBox()
	box.CastShadow = true
	sc := scene.NewScene()
	sc.Add(&light.Object, box)
	cam := newTestCamera()

	require.NoError(t, r.Render(sc, cam))
	first := light.Shadow.Map
	require.NotNil(t, first)
	assert.Equal(t, 4096, light.Shadow.MapWidth)
	assert.Equal(t, 4096, first.Width)
	assert.Equal(t, 512, first.Height)

	require.NoError(t, r.Render(sc, cam))
	assert.Same(t, first, light.Shadow.Map)

	// shadow draws are not part of the frame counters
	assert.Equal(t, 1, r.Info().Render.Calls)
	assert.Nil(t, r.RenderTarget())
}

func TestRenderIntoTarget(t *testing.T) {
	r, rec := newTestRenderer(t, DefaultConfig())
	rt := scene.NewRenderTarget(32, 32, scene.DefaultRenderTargetOptions())
	require.NoError(t, r.SetRenderTarget(rt, 0, 0))
	sc := scene.NewScene()
	sc.Add(basicBox())

	require.NoError(t, r.Render(sc, newTestCamera()))

	assert.Same(t, rt, r.RenderTarget())
	assert.Equal(t, 1, rec.Count("DrawElements"))
	assert.Positive(t, rec.Count("CreateFramebuffer"))
}

func TestCompileBuildsWithoutDrawing(t *testing.T) {
	r, rec := newTestRenderer(t, DefaultConfig())
	sc := scene.NewScene()
	sc.Add(basicBox(), scene.NewMesh(scene.NewBoxGeometry(1, 1, 1), scene.NewMaterial(scene.MeshLambertMaterial)))

	require.NoError(t, r.Compile(sc, newTestCamera()))

	assert.Equal(t, 2, rec.Count("CreateProgram"))
	assert.Equal(t, 0, draws(rec))
}

func TestDisposedRendererRefusesToRender(t *testing.T) {
	r, _ := newTestRenderer(t, DefaultConfig())
	r.Dispose()

	err := r.Render(scene.NewScene(), newTestCamera())

	assert.ErrorIs(t, err, ErrDisposed)
}
