package scene

import "github.com/go-gl/mathgl/mgl32"

// Plane is the half space Normal·p + D >= 0.
type Plane struct {
	Normal mgl32.Vec3
	D      float32
}

// DistanceTo returns the signed distance from pt, positive inside.
func (p Plane) DistanceTo(pt mgl32.Vec3) float32 {
	return p.Normal.Dot(pt) + p.D
}

// Frustum holds the six clip planes of a view volume: left, right, bottom, top, near, far.
type Frustum struct {
	Planes [6]Plane
}

// FrustumFromMatrix extracts the planes of a projection*view matrix (Gribb/Hartmann).
func FrustumFromMatrix(m mgl32.Mat4) Frustum {
	r0, r1, r2, r3 := m.Row(0), m.Row(1), m.Row(2), m.Row(3)
	var f Frustum
	f.Planes[0] = plane(r3.Add(r0))
	f.Planes[1] = plane(r3.Sub(r0))
	f.Planes[2] = plane(r3.Add(r1))
	f.Planes[3] = plane(r3.Sub(r1))
	f.Planes[4] = plane(r3.Add(r2))
	f.Planes[5] = plane(r3.Sub(r2))
	return f
}

func plane(v mgl32.Vec4) Plane {
	n := v.Vec3()
	l := n.Len()
	if l == 0 {
		return Plane{}
	}
	return Plane{Normal: n.Mul(1 / l), D: v.W() / l}
}

// IntersectsSphere reports whether any part of s is inside the frustum.
func (f *Frustum) IntersectsSphere(s Sphere) bool {
	for _, p := range f.Planes {
		if p.DistanceTo(s.Center) < -s.Radius {
			return false
		}
	}
	return true
}

// IntersectsObject tests the world space bounding sphere of o's geometry.
func (f *Frustum) IntersectsObject(o *Object) bool {
	g := o.Geometry
	if g == nil {
		return true
	}
	if g.BoundingSphere == nil {
		g.ComputeBoundingSphere()
	}
	if o.Kind == KindInstancedMesh {
		// instances may be anywhere
		return true
	}
	return f.IntersectsSphere(g.BoundingSphere.Transformed(o.MatrixWorld))
}
