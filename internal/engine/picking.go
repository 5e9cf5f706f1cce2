package engine

import (
	"math"

	"GopherScene/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
)

// Ray is a half line in world space. Direction is normalized.
type Ray struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3
}

// Hit is the closest intersection found by Pick.
type Hit struct {
	Object   *scene.Object
	Distance float32
	Point    mgl32.Vec3
}

// ScreenToRay converts a window position in pixels to a world space ray through the camera.
func ScreenToRay(cam *scene.Camera, screenX, screenY float32, width, height int) Ray {
	ndcX := 2*screenX/float32(width) - 1
	ndcY := 1 - 2*screenY/float32(height)

	inv := cam.ProjectionInverse
	near := inv.Mul4x1(mgl32.Vec4{ndcX, ndcY, -1, 1})
	far := inv.Mul4x1(mgl32.Vec4{ndcX, ndcY, 1, 1})
	nearW := cam.MatrixWorld.Mul4x1(near.Mul(1 / near.W()))
	farW := cam.MatrixWorld.Mul4x1(far.Mul(1 / far.W()))

	origin := nearW.Vec3()
	if cam.Orthographic {
		return Ray{Origin: origin, Direction: farW.Vec3().Sub(origin).Normalize()}
	}
	camPos := cam.WorldPosition()
	return Ray{Origin: camPos, Direction: origin.Sub(camPos).Normalize()}
}

// RayIntersectSphere returns the distance to the closest hit in front of the ray origin.
func RayIntersectSphere(ray Ray, center mgl32.Vec3, radius float32) (bool, float32) {
	oc := ray.Origin.Sub(center)
	a := ray.Direction.Dot(ray.Direction)
	b := 2 * oc.Dot(ray.Direction)
	c := oc.Dot(oc) - radius*radius

	disc := b*b - 4*a*c
	if disc < 0 {
		return false, 0
	}
	sq := float32(math.Sqrt(float64(disc)))
	t1 := (-b - sq) / (2 * a)
	t2 := (-b + sq) / (2 * a)
	switch {
	case t1 > 0:
		return true, t1
	case t2 > 0:
		// origin inside the sphere
		return true, t2
	}
	return false, 0
}

// RayIntersectTriangle is the Möller-Trumbore test. Both windings hit.
func RayIntersectTriangle(ray Ray, v0, v1, v2 mgl32.Vec3) (bool, float32) {
	const epsilon = 1e-7

	edge1 := v1.Sub(v0)
	edge2 := v2.Sub(v0)
	h := ray.Direction.Cross(edge2)
	a := edge1.Dot(h)
	if a > -epsilon && a < epsilon {
		return false, 0
	}

	f := 1 / a
	s := ray.Origin.Sub(v0)
	u := f * s.Dot(h)
	if u < 0 || u > 1 {
		return false, 0
	}
	q := s.Cross(edge1)
	v := f * ray.Direction.Dot(q)
	if v < 0 || u+v > 1 {
		return false, 0
	}
	t := f * edge2.Dot(q)
	if t > epsilon {
		return true, t
	}
	return false, 0
}

// Pick returns the closest visible mesh under ray. World matrices must be current.
// Meshes are tested against their bounding sphere first, then per triangle.
func Pick(root *scene.Object, ray Ray) (Hit, bool) {
	best := Hit{Distance: float32(math.MaxFloat32)}
	found := false
	root.Traverse(func(o *scene.Object) {
		if !o.Visible || o.Kind != scene.KindMesh || o.Geometry == nil {
			return
		}
		if t, ok := intersectMesh(o, ray); ok && t < best.Distance {
			best = Hit{Object: o, Distance: t, Point: ray.Origin.Add(ray.Direction.Mul(t))}
			found = true
		}
	})
	return best, found
}

func intersectMesh(o *scene.Object, ray Ray) (float32, bool) {
	g := o.Geometry
	if g.BoundingSphere == nil {
		g.ComputeBoundingSphere()
	}
	world := o.MatrixWorld
	center := mgl32.TransformCoordinate(g.BoundingSphere.Center, world)
	scale := maxScale(world)
	if ok, _ := RayIntersectSphere(ray, center, g.BoundingSphere.Radius*scale); !ok {
		return 0, false
	}

	pos, ok := g.Attribute("position").(*scene.BufferAttribute)
	if !ok {
		return 0, false
	}
	arr, ok := pos.Array.(scene.Float32Array)
	if !ok {
		return 0, false
	}
	vertex := func(i int) mgl32.Vec3 {
		return mgl32.TransformCoordinate(mgl32.Vec3{arr[i*3], arr[i*3+1], arr[i*3+2]}, world)
	}

	best := float32(math.MaxFloat32)
	hit := false
	test := func(a, b, c int) {
		if ok, t := RayIntersectTriangle(ray, vertex(a), vertex(b), vertex(c)); ok && t < best {
			best, hit = t, true
		}
	}
	if g.Index != nil {
		switch idx := g.Index.Array.(type) {
		case scene.Uint32Array:
			for i := 0; i+2 < len(idx); i += 3 {
				test(int(idx[i]), int(idx[i+1]), int(idx[i+2]))
			}
		case scene.Uint16Array:
			for i := 0; i+2 < len(idx); i += 3 {
				test(int(idx[i]), int(idx[i+1]), int(idx[i+2]))
			}
		}
	} else {
		for i := 0; i+2 < pos.Count(); i += 3 {
			test(i, i+1, i+2)
		}
	}
	return best, hit
}

func maxScale(m mgl32.Mat4) float32 {
	s := m.Col(0).Vec3().Len()
	if y := m.Col(1).Vec3().Len(); y > s {
		s = y
	}
	if z := m.Col(2).Vec3().Len(); z > s {
		s = z
	}
	return s
}
