package scene

import "github.com/go-gl/mathgl/mgl32"

// NewPlaneGeometry returns a width x height quad in the XY plane facing +Z.
func NewPlaneGeometry(width, height float32) *Geometry {
	hw, hh := width/2, height/2
	g := NewGeometry()
	g.SetAttribute("position", NewBufferAttribute(Float32Array{
		-hw, hh, 0, hw, hh, 0, -hw, -hh, 0, hw, -hh, 0,
	}, 3, false))
	g.SetAttribute("normal", NewBufferAttribute(Float32Array{
		0, 0, 1, 0, 0, 1, 0, 0, 1, 0, 0, 1,
	}, 3, false))
	g.SetAttribute("uv", NewBufferAttribute(Float32Array{
		0, 1, 1, 1, 0, 0, 1, 0,
	}, 2, false))
	g.SetIndex(NewBufferAttribute(Uint16Array{0, 2, 1, 2, 3, 1}, 1, false))
	g.ComputeBoundingSphere()
	return g
}

// box faces in +X -X +Y -Y +Z -Z order: normal, u axis, v axis
var boxFaces = [6][3]mgl32.Vec3{
	{{1, 0, 0}, {0, 0, -1}, {0, 1, 0}},
	{{-1, 0, 0}, {0, 0, 1}, {0, 1, 0}},
	{{0, 1, 0}, {1, 0, 0}, {0, 0, -1}},
	{{0, -1, 0}, {1, 0, 0}, {0, 0, 1}},
	{{0, 0, 1}, {1, 0, 0}, {0, 1, 0}},
	{{0, 0, -1}, {-1, 0, 0}, {0, 1, 0}},
}

// NewBoxGeometry returns an axis aligned box centered on the origin with one group per face.
func NewBoxGeometry(width, height, depth float32) *Geometry {
	half := mgl32.Vec3{width / 2, height / 2, depth / 2}
	var pos, norm, uv Float32Array
	var index Uint16Array
	g := NewGeometry()
	for f, face := range boxFaces {
		n, du, dv := face[0], face[1], face[2]
		base := uint16(len(pos) / 3)
		for _, c := range [4][2]float32{{-1, 1}, {1, 1}, {-1, -1}, {1, -1}} {
			p := n.Add(du.Mul(c[0])).Add(dv.Mul(c[1]))
			p = mgl32.Vec3{p.X() * half.X(), p.Y() * half.Y(), p.Z() * half.Z()}
			pos = append(pos, p[:]...)
			norm = append(norm, n[:]...)
			uv = append(uv, (c[0]+1)/2, (c[1]+1)/2)
		}
		index = append(index, base, base+2, base+1, base+2, base+3, base+1)
		g.AddGroup(f*6, 6, f)
	}
	g.SetAttribute("position", NewBufferAttribute(pos, 3, false))
	g.SetAttribute("normal", NewBufferAttribute(norm, 3, false))
	g.SetAttribute("uv", NewBufferAttribute(uv, 2, false))
	g.SetIndex(NewBufferAttribute(index, 1, false))
	g.ComputeBoundingSphere()
	return g
}
