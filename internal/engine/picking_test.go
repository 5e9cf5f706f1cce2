package engine

import (
	"testing"

	"GopherScene/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// quad returns a 2x2 square in the XY plane at depth z.
func quad(name string, z float32) *scene.Object {
	g := scene.NewGeometry()
	g.SetAttribute("position", scene.NewBufferAttribute(scene.Float32Array{
		-1, -1, z, 1, -1, z, 1, 1, z, -1, 1, z,
	}, 3, false))
	g.SetIndex(scene.NewBufferAttribute(scene.Uint16Array{0, 1, 2, 0, 2, 3}, 1, false))
	g.ComputeBoundingSphere()
	o := scene.NewMesh(g, scene.NewMaterial(scene.MeshBasicMaterial))
	o.Name = name
	return o
}

func pickCamera() *scene.Camera {
	cam := scene.NewPerspectiveCamera(60, 1, 0.1, 100)
	cam.Position = mgl32.Vec3{0, 0, 5}
	NewFlyCamera(cam)
	return cam
}

func TestScreenToRayThroughCenter(t *testing.T) {
	ray := ScreenToRay(pickCamera(), 50, 50, 100, 100)
	assertVec(t, mgl32.Vec3{0, 0, 5}, ray.Origin)
	assertVec(t, mgl32.Vec3{0, 0, -1}, ray.Direction)
}

func TestScreenToRayCornersDiverge(t *testing.T) {
	ray := ScreenToRay(pickCamera(), 100, 0, 100, 100)
	assert.Greater(t, ray.Direction.X(), float32(0))
	assert.Greater(t, ray.Direction.Y(), float32(0))
	assert.Less(t, ray.Direction.Z(), float32(0))
}

func TestRayIntersectSphere(t *testing.T) {
	ray := Ray{Origin: mgl32.Vec3{0, 0, 5}, Direction: mgl32.Vec3{0, 0, -1}}
	ok, d := RayIntersectSphere(ray, mgl32.Vec3{}, 1)
	require.True(t, ok)
	assert.InDelta(t, 4, d, 1e-5)

	ok, _ = RayIntersectSphere(ray, mgl32.Vec3{5, 0, 0}, 1)
	assert.False(t, ok)

	ok, _ = RayIntersectSphere(ray, mgl32.Vec3{0, 0, 10}, 1)
	assert.False(t, ok, "sphere behind the origin")

	ok, d = RayIntersectSphere(Ray{Direction: mgl32.Vec3{0, 0, -1}}, mgl32.Vec3{}, 2)
	require.True(t, ok)
	assert.InDelta(t, 2, d, 1e-5)
}

func TestRayIntersectTriangle(t *testing.T) {
	ray := Ray{Origin: mgl32.Vec3{0.2, 0.2, 3}, Direction: mgl32.Vec3{0, 0, -1}}
	ok, d := RayIntersectTriangle(ray, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0})
	require.True(t, ok)
	assert.InDelta(t, 3, d, 1e-5)

	ok, _ = RayIntersectTriangle(ray, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0})
	assert.True(t, ok, "back face")

	miss := Ray{Origin: mgl32.Vec3{0.8, 0.8, 3}, Direction: mgl32.Vec3{0, 0, -1}}
	ok, _ = RayIntersectTriangle(miss, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0})
	assert.False(t, ok)

	parallel := Ray{Origin: mgl32.Vec3{0.2, 0.2, 3}, Direction: mgl32.Vec3{1, 0, 0}}
	ok, _ = RayIntersectTriangle(parallel, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0})
	assert.False(t, ok)
}

func TestPickReturnsNearestVisibleMesh(t *testing.T) {
	root := scene.NewGroup()
	near, far := quad("near", 0), quad("far", -5)
	root.Add(far, near)
	root.UpdateMatrixWorld()

	ray := ScreenToRay(pickCamera(), 50, 50, 100, 100)
	hit, ok := Pick(root, ray)
	require.True(t, ok)
	assert.Same(t, near, hit.Object)
	assert.InDelta(t, 5, hit.Distance, 1e-4)
	assertVec(t, mgl32.Vec3{0, 0, 0}, hit.Point)

	near.Visible = false
	hit, ok = Pick(root, ray)
	require.True(t, ok)
	assert.Same(t, far, hit.Object)
	assert.InDelta(t, 10, hit.Distance, 1e-4)
}

func TestPickFollowsWorldTransform(t *testing.T) {
	root := scene.NewGroup()
	q := quad("moved", 0)
	q.Position = mgl32.Vec3{10, 0, 0}
	root.Add(q)
	root.UpdateMatrixWorld()

	_, ok := Pick(root, Ray{Origin: mgl32.Vec3{0, 0, 5}, Direction: mgl32.Vec3{0, 0, -1}})
	assert.False(t, ok)

	hit, ok := Pick(root, Ray{Origin: mgl32.Vec3{10, 0, 5}, Direction: mgl32.Vec3{0, 0, -1}})
	require.True(t, ok)
	assert.Same(t, q, hit.Object)
}
