package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDsAreUnique(t *testing.T) {
	a := NewGeometry()
	b := NewGeometry()
	m := NewMaterial(MeshBasicMaterial)
	assert.NotEqual(t, a.ID(), b.ID())
	assert.NotEqual(t, a.ID(), m.ID())
}

func TestUpdateMatrixWorldComposesParents(t *testing.T) {
	parent := NewGroup()
	parent.Position = mgl32.Vec3{1, 0, 0}
	child := NewGroup()
	child.Position = mgl32.Vec3{0, 2, 0}
	parent.Add(child)

	parent.UpdateMatrixWorld()

	wp := child.WorldPosition()
	assert.InDeltaSlice(t, []float32{1, 2, 0}, wp[:], 1e-6)
}

func TestAddReparents(t *testing.T) {
	a, b, c := NewGroup(), NewGroup(), NewGroup()
	a.Add(c)
	b.Add(c)
	assert.Empty(t, a.Children)
	assert.Equal(t, b, c.Parent)
}

func TestLayers(t *testing.T) {
	var l Layers = 1
	l.Enable(3)
	assert.True(t, l.Test(1<<3))
	l.Disable(0)
	assert.False(t, l.Test(1))
}

func TestBoundingSphere(t *testing.T) {
	g := NewGeometry()
	g.SetAttribute("position", NewBufferAttribute(Float32Array{-1, 0, 0, 1, 0, 0}, 3, false))
	g.ComputeBoundingSphere()
	require.NotNil(t, g.BoundingSphere)
	assert.InDelta(t, 1, g.BoundingSphere.Radius, 1e-6)
	assert.Equal(t, mgl32.Vec3{}, g.BoundingSphere.Center)
}

func TestFrustumCullsBehindCamera(t *testing.T) {
	cam := NewPerspectiveCamera(60, 1, 0.1, 100)
	cam.UpdateMatrixWorld()
	f := FrustumFromMatrix(cam.ViewProjection())

	assert.True(t, f.IntersectsSphere(Sphere{Center: mgl32.Vec3{0, 0, -10}, Radius: 1}))
	assert.False(t, f.IntersectsSphere(Sphere{Center: mgl32.Vec3{0, 0, 10}, Radius: 1}))
	assert.False(t, f.IntersectsSphere(Sphere{Center: mgl32.Vec3{0, 0, -200}, Radius: 1}))
}

func TestCameraInverseFollowsWorld(t *testing.T) {
	cam := NewPerspectiveCamera(60, 1, 0.1, 100)
	cam.Position = mgl32.Vec3{0, 0, 5}
	cam.UpdateMatrixWorld()
	p := cam.MatrixWorldInverse.Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.InDelta(t, -5, p.Z(), 1e-5)
}

func TestSkeletonUpdateMarksBoneTexture(t *testing.T) {
	bone := NewObject(KindBone)
	bone.UpdateMatrixWorld()
	s := NewSkeleton([]*Object{bone}, nil)
	s.ComputeBoneTexture()
	v := s.BoneTexture.Version

	s.Update()

	assert.Equal(t, v+1, s.BoneTexture.Version)
	assert.Equal(t, 1, s.Version())
	ident := mgl32.Ident4()
	assert.InDeltaSlice(t, ident[:], s.BoneMatrices[:16], 1e-6)
}

func TestPointLightShadowHasSixViewports(t *testing.T) {
	l := NewPointLight(mgl32.Vec3{1, 1, 1}, 1, 10, 2)
	assert.Equal(t, 6, l.Shadow.ViewportCount())
	assert.Equal(t, 1, NewSpotLight(mgl32.Vec3{1, 1, 1}, 1, 0, 0.5, 0, 2).Shadow.ViewportCount())
	assert.Same(t, l, l.Object.Light())
}

func TestTextureCloneSharesSource(t *testing.T) {
	src := NewSource(make([]byte, 16), 2, 2)
	a := NewTexture(src)
	b := a.Clone()
	b.WrapS = RepeatWrapping
	assert.Same(t, a.Source, b.Source)
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, ClampToEdgeWrapping, a.WrapS)
}

func TestUvTransformIdentity(t *testing.T) {
	tex := NewTexture(nil)
	tex.UpdateMatrix()
	ident := mgl32.Ident3()
	assert.InDeltaSlice(t, ident[:], tex.Matrix[:], 1e-6)
}

func TestRenderTargetSetSizeUpdatesTextures(t *testing.T) {
	rt := NewRenderTarget(4, 4, DefaultRenderTargetOptions())
	rt.SetSize(8, 2, 1)
	w, h, _ := rt.Texture().Size()
	assert.Equal(t, 8, w)
	assert.Equal(t, 2, h)
}

func TestTypedArrayBytes(t *testing.T) {
	assert.Len(t, Float32Array{1, 2}.Bytes(), 8)
	assert.Len(t, Uint16Array{1, 2, 3}.Bytes(), 6)
	assert.Nil(t, Uint32Array{}.Bytes())
}
