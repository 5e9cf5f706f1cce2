package renderer

import (
	"testing"

	"GopherScene/internal/gpu"
	"GopherScene/internal/gpu/gputest"
	"GopherScene/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAttributes(t *testing.T) (*Attributes, *gputest.Recorder) {
	t.Helper()
	rec := gputest.New()
	at := NewAttributes(rec, NewUtils(NewExtensions(rec)))
	rec.ResetCalls()
	return at, rec
}

func TestAttributeUploadIsVersionGated(t *testing.T) {
	at, rec := newTestAttributes(t)
	a := scene.NewBufferAttribute(scene.Float32Array{0, 1, 2, 3, 4, 5}, 3, false)

	at.Update(a, gpu.ARRAY_BUFFER)
	at.Update(a, gpu.ARRAY_BUFFER)
	assert.Equal(t, 1, rec.Count("BufferData"))
	assert.Equal(t, 0, rec.Count("BufferSubData"))

	a.NeedsUpdate()
	at.Update(a, gpu.ARRAY_BUFFER)
	assert.Equal(t, 1, rec.Count("BufferData"))
	assert.Equal(t, 1, rec.Count("BufferSubData"))

	br := at.Get(a)
	require.NotNil(t, br)
	assert.Equal(t, gpu.FLOAT, br.typ)
	assert.Equal(t, 4, br.bytesPerElement)
}

func TestAttributeUpdateRanges(t *testing.T) {
	at, rec := newTestAttributes(t)
	a := scene.NewBufferAttribute(make(scene.Float32Array, 12), 3, false)
	at.Update(a, gpu.ARRAY_BUFFER)

	a.AddUpdateRange(0, 3)
	a.AddUpdateRange(9, 3)
	a.NeedsUpdate()
	at.Update(a, gpu.ARRAY_BUFFER)

	assert.Equal(t, 2, rec.Count("BufferSubData"))
	assert.Empty(t, a.UpdateRanges)
}

func TestAttributeResizeReallocates(t *testing.T) {
	at, rec := newTestAttributes(t)
	a := scene.NewBufferAttribute(make(scene.Float32Array, 3), 3, false)
	at.Update(a, gpu.ARRAY_BUFFER)

	a.Array = make(scene.Float32Array, 9)
	a.NeedsUpdate()
	at.Update(a, gpu.ARRAY_BUFFER)

	assert.Equal(t, 2, rec.Count("BufferData"))
	assert.Equal(t, 36, at.Get(a).size)
}

func TestInterleavedAttributesShareBuffer(t *testing.T) {
	at, rec := newTestAttributes(t)
	data := scene.NewInterleavedBuffer(make(scene.Float32Array, 10), 5)
	pos := scene.NewInterleavedAttribute(data, 3, 0, false)
	uv := scene.NewInterleavedAttribute(data, 2, 3, false)

	at.Update(pos, gpu.ARRAY_BUFFER)
	at.Update(uv, gpu.ARRAY_BUFFER)

	assert.Equal(t, 1, rec.Count("CreateBuffer"))
	assert.Same(t, at.Get(pos), at.Get(uv))
}

func TestAttributeRemove(t *testing.T) {
	at, rec := newTestAttributes(t)
	a := scene.NewBufferAttribute(scene.Uint16Array{0, 1, 2}, 1, false)
	at.Update(a, gpu.ELEMENT_ARRAY_BUFFER)
	assert.Equal(t, gpu.UNSIGNED_SHORT, at.Get(a).typ)

	at.Remove(a)

	assert.Nil(t, at.Get(a))
	assert.Equal(t, 1, rec.Count("DeleteBuffer"))
}

func newTestObjects(t *testing.T) (*Objects, *Info, *gputest.Recorder) {
	t.Helper()
	rec := gputest.New()
	ext := NewExtensions(rec)
	caps := NewCapabilities(rec, ext, DefaultConfig())
	attrs := NewAttributes(rec, NewUtils(ext))
	info := newInfo()
	geoms := NewGeometries(attrs, NewBindingStates(rec, attrs, caps), info)
	rec.ResetCalls()
	return NewObjects(geoms, attrs, info), info, rec
}

func TestSharedGeometryUpdatedOncePerFrame(t *testing.T) {
	objects, info, rec := newTestObjects(t)
	g := scene.NewBoxGeometry(1, 1, 1)
	m := scene.NewMaterial(scene.MeshBasicMaterial)
	a, b := scene.NewMesh(g, m), scene.NewMesh(g, m)
	info.Render.Frame = 1

	_, err := objects.Update(a)
	require.NoError(t, err)
	uploads := rec.Count("BufferData")
	g.Attributes["position"].(*scene.BufferAttribute).NeedsUpdate()
	_, err = objects.Update(b)
	require.NoError(t, err)

	// the second mesh shares the geometry, so the new version waits for the next frame
	assert.Equal(t, 0, rec.Count("BufferSubData"))
	assert.Equal(t, uploads, rec.Count("BufferData"))

	info.Render.Frame = 2
	_, err = objects.Update(b)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Count("BufferSubData"))
	assert.Equal(t, 1, info.Memory.Geometries)
}

func TestSkeletonUpdatedOncePerFrame(t *testing.T) {
	objects, info, _ := newTestObjects(t)
	bone := scene.NewGroup()
	skeleton := scene.NewSkeleton([]*scene.Object{bone}, []mgl32.Mat4{mgl32.Ident4()})
	g := scene.NewBoxGeometry(1, 1, 1)
	m := scene.NewMaterial(scene.MeshBasicMaterial)
	a := scene.NewSkinnedMesh(g, m, skeleton)
	b := scene.NewSkinnedMesh(g, m, skeleton)
	info.Render.Frame = 1

	_, err := objects.Update(a)
	require.NoError(t, err)
	_, err = objects.Update(b)
	require.NoError(t, err)
	assert.Equal(t, 1, skeleton.Version())

	info.Render.Frame = 2
	_, err = objects.Update(a)
	require.NoError(t, err)
	assert.Equal(t, 2, skeleton.Version())
}

func TestObjectWithoutGeometry(t *testing.T) {
	objects, _, _ := newTestObjects(t)

	_, err := objects.Update(scene.NewMesh(nil, scene.NewMaterial(scene.MeshBasicMaterial)))

	assert.ErrorIs(t, err, ErrNilGeometry)
}

func TestWireframeIndexCachedUntilIndexChanges(t *testing.T) {
	rec := gputest.New()
	ext := NewExtensions(rec)
	caps := NewCapabilities(rec, ext, DefaultConfig())
	attrs := NewAttributes(rec, NewUtils(ext))
	geoms := NewGeometries(attrs, NewBindingStates(rec, attrs, caps), newInfo())
	g := scene.NewBoxGeometry(1, 1, 1)

	first := geoms.GetWireframeAttribute(g)
	require.NotNil(t, first)
	// every triangle contributes its three edges
	assert.Equal(t, 72, first.Count())
	assert.Same(t, first, geoms.GetWireframeAttribute(g))

	g.Index.NeedsUpdate()
	assert.NotSame(t, first, geoms.GetWireframeAttribute(g))
}
