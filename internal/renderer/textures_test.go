package renderer

import (
	"testing"

	"GopherScene/internal/gpu"
	"GopherScene/internal/gpu/gputest"
	"GopherScene/internal/scene"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTextures(t *testing.T) (*Textures, *Info, *gputest.Recorder) {
	t.Helper()
	rec := gputest.New()
	ext := NewExtensions(rec)
	caps := NewCapabilities(rec, ext, DefaultConfig())
	utils := NewUtils(ext)
	info := newInfo()
	tx := NewTextures(rec, ext, NewState(rec, utils, caps), caps, utils, info)
	rec.ResetCalls()
	return tx, info, rec
}

func rgbaTexture(w, h int) *scene.Texture {
	return scene.NewTexture(scene.NewSource(make([]byte, w*h*4), w, h))
}

func TestTextureUploadedOncePerVersion(t *testing.T) {
	tx, _, rec := newTestTextures(t)
	tex := rgbaTexture(4, 4)

	require.NoError(t, tx.SetTexture2D(tex, 0))
	require.NoError(t, tx.SetTexture2D(tex, 0))
	assert.Equal(t, 1, rec.Count("TexSubImage2D"))
	assert.Equal(t, 1, rec.Count("TexStorage2D"))

	tex.NeedsUpdate()
	require.NoError(t, tx.SetTexture2D(tex, 0))
	assert.Equal(t, 2, rec.Count("TexSubImage2D"))
	// same size, storage is reused
	assert.Equal(t, 1, rec.Count("TexStorage2D"))
}

func TestClonesWithEqualParametersShareNativeTexture(t *testing.T) {
	tx, info, rec := newTestTextures(t)
	a := rgbaTexture(4, 4)
	b := a.Clone()

	require.NoError(t, tx.SetTexture2D(a, 0))
	require.NoError(t, tx.SetTexture2D(b, 1))

	assert.Equal(t, 1, rec.Count("CreateTexture"))
	assert.Equal(t, 1, rec.Count("TexSubImage2D"))
	assert.Equal(t, 1, info.Memory.Textures)
	assert.Equal(t, rec.Bound(gpu.TEXTURE0, gpu.TEXTURE_2D), rec.Bound(gpu.TEXTURE0+1, gpu.TEXTURE_2D))
}

func TestSamplingParametersSplitNativeTexture(t *testing.T) {
	tx, info, rec := newTestTextures(t)
	a := rgbaTexture(4, 4)
	b := a.Clone()
	b.WrapS = scene.RepeatWrapping

	require.NoError(t, tx.SetTexture2D(a, 0))
	require.NoError(t, tx.SetTexture2D(b, 1))

	assert.Equal(t, 2, rec.Count("CreateTexture"))
	assert.Equal(t, 2, info.Memory.Textures)
	assert.NotEqual(t, rec.Bound(gpu.TEXTURE0, gpu.TEXTURE_2D), rec.Bound(gpu.TEXTURE0+1, gpu.TEXTURE_2D))
}

func TestSharedTextureDeletedWithLastUser(t *testing.T) {
	tx, info, rec := newTestTextures(t)
	a := rgbaTexture(4, 4)
	b := a.Clone()
	require.NoError(t, tx.SetTexture2D(a, 0))
	require.NoError(t, tx.SetTexture2D(b, 1))

	tx.DeallocateTexture(a)
	assert.Equal(t, 0, rec.Count("DeleteTexture"))
	tx.DeallocateTexture(b)
	assert.Equal(t, 1, rec.Count("DeleteTexture"))
	assert.Equal(t, 0, info.Memory.Textures)
}

func TestDeallocatedTextureCannotBeBound(t *testing.T) {
	tx, _, _ := newTestTextures(t)
	tex := rgbaTexture(2, 2)
	require.NoError(t, tx.SetTexture2D(tex, 0))
	tx.DeallocateTexture(tex)

	assert.ErrorIs(t, tx.SetTexture2D(tex, 0), ErrDisposed)
}

func TestOversizedTextureIsDownscaled(t *testing.T) {
	tx, _, rec := newTestTextures(t)
	tex := rgbaTexture(8192, 2)

	require.NoError(t, tx.SetTexture2D(tex, 0))

	native := rec.Bound(gpu.TEXTURE0, gpu.TEXTURE_2D)
	require.NotNil(t, rec.Textures[native])
	assert.Equal(t, int32(4096), rec.Textures[native].Width)
}

func TestTextureUnitsWrapPastLimit(t *testing.T) {
	tx, _, _ := newTestTextures(t)
	for i := 0; i < tx.caps.MaxTextures; i++ {
		assert.Equal(t, i, tx.AllocateTextureUnit())
	}
	assert.Equal(t, tx.caps.MaxTextures-1, tx.AllocateTextureUnit())

	tx.ResetTextureUnits()
	assert.Equal(t, 0, tx.AllocateTextureUnit())
}

func TestRenderTargetSetupAndDeallocate(t *testing.T) {
	tx, _, rec := newTestTextures(t)
	rt := scene.NewRenderTarget(16, 16, scene.DefaultRenderTargetOptions())

	require.NoError(t, tx.SetupRenderTarget(rt))
	require.NoError(t, tx.SetupRenderTarget(rt))
	assert.Equal(t, 1, rec.Count("CreateFramebuffer"))

	tx.DeallocateRenderTarget(rt)
	assert.Equal(t, 1, rec.Count("DeleteFramebuffer"))
}

func TestIncompleteFramebufferIsAnError(t *testing.T) {
	tx, _, rec := newTestTextures(t)
	rec.FramebufferStatus = 0

	err := tx.SetupRenderTarget(scene.NewRenderTarget(16, 16, scene.DefaultRenderTargetOptions()))

	assert.ErrorIs(t, err, ErrFramebuffer)
}

func cubeFaceSources(size int) []*scene.Source {
	faces := make([]*scene.Source, 6)
	for i := range faces {
		faces[i] = scene.NewSource(make([]byte, size*size*4), size, size)
	}
	return faces
}

func TestResizedCubeTextureKeepsSamplingParameters(t *testing.T) {
	tx, _, rec := newTestTextures(t)
	faces := cubeFaceSources(4)
	tex := scene.NewCubeTexture(faces)

	require.NoError(t, tx.SetTextureCube(tex, 0))
	first := rec.Bound(gpu.TEXTURE0, gpu.TEXTURE_CUBE_MAP)
	want := rec.Textures[first].Params
	require.NotEmpty(t, want)

	for _, f := range faces {
		f.Data, f.Width, f.Height = make([]byte, 8*8*4), 8, 8
	}
	tex.NeedsUpdate()
	require.NoError(t, tx.SetTextureCube(tex, 0))

	second := rec.Bound(gpu.TEXTURE0, gpu.TEXTURE_CUBE_MAP)
	require.NotEqual(t, first, second)
	assert.Equal(t, int32(8), rec.Textures[second].Width)
	assert.Equal(t, want, rec.Textures[second].Params)
}

func TestResized3DTextureKeepsSamplingParameters(t *testing.T) {
	tx, _, rec := newTestTextures(t)
	src := scene.NewSource(make([]byte, 2*2*2*4), 2, 2)
	src.Depth = 2
	tex := scene.NewDataTexture3D(src)

	require.NoError(t, tx.SetTexture3D(tex, 0))
	first := rec.Bound(gpu.TEXTURE0, gpu.TEXTURE_3D)
	want := rec.Textures[first].Params
	require.NotEmpty(t, want)

	src.Data, src.Width, src.Height, src.Depth = make([]byte, 4*4*4*4), 4, 4, 4
	tex.NeedsUpdate()
	require.NoError(t, tx.SetTexture3D(tex, 0))

	second := rec.Bound(gpu.TEXTURE0, gpu.TEXTURE_3D)
	require.NotEqual(t, first, second)
	assert.Equal(t, int32(4), rec.Textures[second].Depth)
	assert.Equal(t, want, rec.Textures[second].Params)
}

func TestDisposeFreesRenderTargetRenderbuffers(t *testing.T) {
	tx, _, rec := newTestTextures(t)
	opts := scene.DefaultRenderTargetOptions()
	plain := scene.NewRenderTarget(16, 16, opts)
	opts.Samples = 4
	msaa := scene.NewRenderTarget(16, 16, opts)
	require.NoError(t, tx.SetupRenderTarget(plain))
	require.NoError(t, tx.SetupRenderTarget(msaa))
	created := rec.Count("CreateRenderbuffer")
	require.Positive(t, created)

	tx.Dispose()

	assert.Equal(t, created, rec.Count("DeleteRenderbuffer"))
	assert.Equal(t, rec.Count("CreateFramebuffer"), rec.Count("DeleteFramebuffer"))
}
