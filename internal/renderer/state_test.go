package renderer

import (
	"testing"

	"GopherScene/internal/gpu"
	"GopherScene/internal/gpu/gputest"
	"GopherScene/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func newTestState(t *testing.T) (*State, *gputest.Recorder) {
	t.Helper()
	rec := gputest.New()
	ext := NewExtensions(rec)
	caps := NewCapabilities(rec, ext, DefaultConfig())
	s := NewState(rec, NewUtils(ext), caps)
	rec.ResetCalls()
	return s, rec
}

func setNormal(s *State) {
	s.SetBlending(scene.NormalBlending, 0, 0, 0, 0, 0, 0, mgl32.Vec3{}, 0, false)
}

func TestSetBlendingIsIdempotent(t *testing.T) {
	s, rec := newTestState(t)

	setNormal(s)
	setNormal(s)

	assert.Equal(t, 1, rec.Count("BlendFuncSeparate"))
	assert.Equal(t, 1, rec.Count("Enable"))
}

func TestResetForcesNextBlendingCall(t *testing.T) {
	s, rec := newTestState(t)
	setNormal(s)

	s.Reset()
	rec.ResetCalls()
	setNormal(s)

	assert.Equal(t, 1, rec.Count("BlendFuncSeparate"))
	assert.Equal(t, 1, rec.Count("Enable"))
}

func TestResetForcesEverySetter(t *testing.T) {
	s, rec := newTestState(t)
	s.Viewport([4]int32{0, 0, 10, 10})
	s.Depth.SetFunc(gpu.LEQUAL)
	s.Color.SetMask(true)
	s.UseProgram(3)

	s.Reset()
	rec.ResetCalls()
	s.Viewport([4]int32{0, 0, 10, 10})
	s.Depth.SetFunc(gpu.LEQUAL)
	s.Color.SetMask(true)
	s.UseProgram(3)
	s.SetFlipSided(false)

	assert.Equal(t, 1, rec.Count("Viewport"))
	assert.Equal(t, 1, rec.Count("DepthFunc"))
	assert.Equal(t, 1, rec.Count("ColorMask"))
	assert.Equal(t, 1, rec.Count("UseProgram"))
	assert.Equal(t, 1, rec.Count("FrontFace"))
}

func TestCustomBlendingTracksFactors(t *testing.T) {
	s, rec := newTestState(t)
	custom := func(src gpu.Enum) {
		s.SetBlending(scene.CustomBlending, gpu.FUNC_ADD, src, gpu.ONE, 0, 0, 0, mgl32.Vec3{}, 0, false)
	}

	custom(gpu.ONE)
	custom(gpu.ONE)
	custom(gpu.SRC_ALPHA)

	assert.Equal(t, 1, rec.Count("BlendEquationSeparate"))
	assert.Equal(t, 2, rec.Count("BlendFuncSeparate"))
	assert.Equal(t, 1, rec.Count("BlendColor"))
}

func TestNoBlendingDisablesOnce(t *testing.T) {
	s, rec := newTestState(t)
	s.SetBlending(scene.NoBlending, 0, 0, 0, 0, 0, 0, mgl32.Vec3{}, 0, false)
	s.SetBlending(scene.NoBlending, 0, 0, 0, 0, 0, 0, mgl32.Vec3{}, 0, false)
	assert.Equal(t, 1, rec.Count("Disable"))
}

func TestBindTextureSkipsRedundantBinds(t *testing.T) {
	s, rec := newTestState(t)

	s.BindTexture(gpu.TEXTURE_2D, 7, gpu.TEXTURE0)
	s.BindTexture(gpu.TEXTURE_2D, 7, gpu.TEXTURE0)
	s.BindTexture(gpu.TEXTURE_2D, 7, gpu.TEXTURE0+1)

	assert.Equal(t, 2, rec.Count("BindTexture"))
	assert.Equal(t, 2, rec.Count("ActiveTexture"))
	assert.Equal(t, gpu.Texture(7), rec.Bound(gpu.TEXTURE0+1, gpu.TEXTURE_2D))
}

func TestBindZeroTextureUsesPlaceholder(t *testing.T) {
	s, rec := newTestState(t)
	s.BindTexture(gpu.TEXTURE_2D, 0, gpu.TEXTURE0)
	assert.Equal(t, s.emptyTextures[gpu.TEXTURE_2D], rec.Bound(gpu.TEXTURE0, gpu.TEXTURE_2D))
}

func TestForgetTextureRebinds(t *testing.T) {
	s, rec := newTestState(t)
	s.BindTexture(gpu.TEXTURE_2D, 7, gpu.TEXTURE0)
	s.ForgetTexture(7)
	s.BindTexture(gpu.TEXTURE_2D, 7, gpu.TEXTURE0)
	assert.Equal(t, 2, rec.Count("BindTexture"))
}

func TestLockedDepthMaskIgnoresWrites(t *testing.T) {
	s, rec := newTestState(t)
	s.Depth.SetMask(true)
	s.Depth.SetLocked(true)
	s.Depth.SetMask(false)
	assert.Equal(t, 1, rec.Count("DepthMask"))
}

func TestFramebufferTargetsAlias(t *testing.T) {
	s, rec := newTestState(t)
	assert.True(t, s.BindFramebuffer(gpu.FRAMEBUFFER, 4))
	assert.False(t, s.BindFramebuffer(gpu.DRAW_FRAMEBUFFER, 4))
	assert.True(t, s.BindFramebuffer(gpu.READ_FRAMEBUFFER, 4))
	assert.Equal(t, 2, rec.Count("BindFramebuffer"))
}

func TestSetMaterialDerivesState(t *testing.T) {
	s, rec := newTestState(t)
	m := scene.NewMaterial(scene.MeshBasicMaterial)
	m.Side = scene.DoubleSide
	m.Transparent = true
	m.DepthWrite = false

	s.SetMaterial(m, false)
	rec.ResetCalls()
	s.SetMaterial(m, false)

	assert.Empty(t, rec.Calls, "second identical SetMaterial must not touch the GPU")
	assert.Equal(t, off, s.enabled[gpu.CULL_FACE])
	assert.Equal(t, on, s.enabled[gpu.BLEND])
	assert.Equal(t, off, s.Depth.mask)
}

func TestSetMaterialBackSideFlips(t *testing.T) {
	s, rec := newTestState(t)
	m := scene.NewMaterial(scene.MeshBasicMaterial)
	m.Side = scene.BackSide
	s.SetMaterial(m, false)
	assert.Contains(t, rec.Trace, "FrontFace2304")

	s.SetMaterial(m, true)
	assert.Equal(t, 2, rec.Count("FrontFace"))
}

func TestStencilFollowsMaterial(t *testing.T) {
	s, rec := newTestState(t)
	m := scene.NewMaterial(scene.MeshBasicMaterial)
	m.StencilWrite = true
	m.StencilRef = 1
	m.StencilZPass = scene.ReplaceStencilOp
	s.SetMaterial(m, false)
	assert.Equal(t, 1, rec.Count("StencilFunc"))
	assert.Equal(t, 1, rec.Count("StencilOp"))
	assert.Equal(t, 1, rec.Count("StencilMask"))
}
