package behaviour

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

func init() {
	RegisterScript("RotateScript", func() Component {
		return &RotateScript{Axis: mgl32.Vec3{0, 1, 0}, Speed: 45}
	})
	RegisterScript("OrbitScript", func() Component {
		return &OrbitScript{Radius: 10, Speed: 1}
	})
	RegisterScript("BounceScript", func() Component {
		return &BounceScript{Height: 5, Speed: 2}
	})
}

// RotateScript spins its object about Axis at Speed degrees per second.
type RotateScript struct {
	BaseComponent
	Axis  mgl32.Vec3
	Speed float32
}

func (r *RotateScript) Update(dt float32) {
	r.GetGameObject().Rotate(r.Axis, mgl32.DegToRad(r.Speed*dt))
}

// OrbitScript moves its object on a horizontal circle around Center.
type OrbitScript struct {
	BaseComponent
	Center mgl32.Vec3
	Radius float32
	Speed  float32 // radians per second
	time   float32
}

func (o *OrbitScript) Update(dt float32) {
	o.time += dt * o.Speed
	p := &o.GetGameObject().Object.Position
	p[0] = o.Center.X() + float32(math.Cos(float64(o.time)))*o.Radius
	p[2] = o.Center.Z() + float32(math.Sin(float64(o.time)))*o.Radius
}

// BounceScript oscillates its object vertically around the height it started at.
type BounceScript struct {
	BaseComponent
	Height float32
	Speed  float32
	startY float32
	time   float32
}

func (b *BounceScript) Start() {
	b.startY = b.GetGameObject().Object.Position.Y()
}

func (b *BounceScript) FixedUpdate(dt float32) {
	b.time += dt * b.Speed
	b.GetGameObject().Object.Position[1] = b.startY + float32(math.Sin(float64(b.time)))*b.Height
}
