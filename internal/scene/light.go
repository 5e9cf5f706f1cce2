package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

type LightKind int

const (
	AmbientLight LightKind = iota
	DirectionalLight
	PointLight
	SpotLight
	RectAreaLight
	HemisphereLight
	LightProbe
)

type Light struct {
	Object

	Kind        LightKind
	Color       mgl32.Vec3
	Intensity   float32
	Distance    float32
	Decay       float32
	Angle       float32
	Penumbra    float32
	Width       float32
	Height      float32
	GroundColor mgl32.Vec3
	SH          [9]mgl32.Vec3

	// Target orients directional and spot lights. It must be in the scene or have an updated world matrix.
	Target *Object
	// Map is projected by spot lights.
	Map    *Texture
	Shadow *LightShadow
}

func newLight(kind LightKind, color mgl32.Vec3, intensity float32) *Light {
	l := &Light{Kind: kind, Color: color, Intensity: intensity, Decay: 2}
	l.Object.init(KindLight)
	l.Object.light = l
	return l
}

func NewAmbientLight(color mgl32.Vec3, intensity float32) *Light {
	return newLight(AmbientLight, color, intensity)
}

func NewDirectionalLight(color mgl32.Vec3, intensity float32) *Light {
	l := newLight(DirectionalLight, color, intensity)
	l.Position = mgl32.Vec3{0, 1, 0}
	l.Target = NewGroup()
	l.Shadow = NewLightShadow(NewOrthographicCamera(-5, 5, 5, -5, 0.5, 500))
	return l
}

func NewPointLight(color mgl32.Vec3, intensity, distance, decay float32) *Light {
	l := newLight(PointLight, color, intensity)
	l.Distance, l.Decay = distance, decay
	l.Shadow = NewLightShadow(NewPerspectiveCamera(90, 1, 0.5, 500))
	l.Shadow.pointLight = true
	l.Shadow.FrameExtents = mgl32.Vec2{4, 2}
	l.Shadow.viewports = []mgl32.Vec4{
		{2, 1, 1, 1}, {0, 1, 1, 1}, {3, 1, 1, 1},
		{1, 1, 1, 1}, {3, 0, 1, 1}, {1, 0, 1, 1},
	}
	return l
}

func NewSpotLight(color mgl32.Vec3, intensity, distance, angle, penumbra, decay float32) *Light {
	l := newLight(SpotLight, color, intensity)
	l.Distance, l.Angle, l.Penumbra, l.Decay = distance, angle, penumbra, decay
	l.Position = mgl32.Vec3{0, 1, 0}
	l.Target = NewGroup()
	l.Shadow = NewLightShadow(NewPerspectiveCamera(50, 1, 0.5, 500))
	l.Shadow.spot = true
	return l
}

func NewRectAreaLight(color mgl32.Vec3, intensity, width, height float32) *Light {
	l := newLight(RectAreaLight, color, intensity)
	l.Width, l.Height = width, height
	return l
}

func NewHemisphereLight(sky, ground mgl32.Vec3, intensity float32) *Light {
	l := newLight(HemisphereLight, sky, intensity)
	l.GroundColor = ground
	l.Position = mgl32.Vec3{0, 1, 0}
	return l
}

func NewLightProbe(sh [9]mgl32.Vec3, intensity float32) *Light {
	l := newLight(LightProbe, mgl32.Vec3{1, 1, 1}, intensity)
	l.SH = sh
	return l
}

// LightShadow describes how a light renders its shadow map.
type LightShadow struct {
	Camera      *Camera
	Intensity   float32
	Bias        float32
	NormalBias  float32
	Radius      float32
	BlurSamples int
	MapWidth    int
	MapHeight   int
	Map         *RenderTarget
	MapPass     *RenderTarget
	MapType     ShadowMapType
	Matrix      mgl32.Mat4
	AutoUpdate  bool
	NeedsUpdate bool

	FrameExtents mgl32.Vec2
	viewports    []mgl32.Vec4
	pointLight   bool
	spot         bool
	focus        float32
}

func NewLightShadow(cam *Camera) *LightShadow {
	return &LightShadow{
		Camera:       cam,
		Intensity:    1,
		Radius:       1,
		BlurSamples:  8,
		MapWidth:     512,
		MapHeight:    512,
		Matrix:       mgl32.Ident4(),
		AutoUpdate:   true,
		FrameExtents: mgl32.Vec2{1, 1},
		viewports:    []mgl32.Vec4{{0, 0, 1, 1}},
		focus:        1,
	}
}

// ViewportCount is 6 for point lights and 1 otherwise.
func (s *LightShadow) ViewportCount() int { return len(s.viewports) }

// Viewport returns the normalized atlas viewport of face i.
func (s *LightShadow) Viewport(i int) mgl32.Vec4 { return s.viewports[i] }

var (
	cubeDirections = [6]mgl32.Vec3{{1, 0, 0}, {-1, 0, 0}, {0, 0, 1}, {0, 0, -1}, {0, 1, 0}, {0, -1, 0}}
	cubeUps        = [6]mgl32.Vec3{{0, 1, 0}, {0, 1, 0}, {0, 1, 0}, {0, 1, 0}, {0, 0, 1}, {0, 0, -1}}
	biasMatrix     = mgl32.Mat4{
		0.5, 0, 0, 0,
		0, 0.5, 0, 0,
		0, 0, 0.5, 0,
		0.5, 0.5, 0.5, 1,
	}
)

// UpdateMatrices places the shadow camera for viewport index vp and refreshes Matrix.
func (s *LightShadow) UpdateMatrices(l *Light, vp int) {
	cam := s.Camera
	pos := l.WorldPosition()
	if s.pointLight {
		target := pos.Add(cubeDirections[vp])
		cam.MatrixWorldInverse = mgl32.LookAtV(pos, target, cubeUps[vp])
		cam.MatrixWorld = cam.MatrixWorldInverse.Inv()
		if cam.Far != l.Distance && l.Distance > 0 {
			cam.Far = l.Distance
			cam.UpdateProjection()
		}
		s.Matrix = mgl32.Translate3D(-pos.X(), -pos.Y(), -pos.Z())
		return
	}
	if s.spot {
		fov := mgl32.RadToDeg(l.Angle) * 2 * s.focus
		far := cam.Far
		if l.Distance > 0 {
			far = l.Distance
		}
		if fov != cam.Fov || far != cam.Far {
			cam.Fov, cam.Far = fov, far
			cam.Aspect = float32(s.MapWidth) / float32(s.MapHeight)
			cam.UpdateProjection()
		}
	}
	target := mgl32.Vec3{}
	if l.Target != nil {
		target = l.Target.WorldPosition()
	}
	up := mgl32.Vec3{0, 1, 0}
	if d := target.Sub(pos); d.Len() > 0 && float32(math.Abs(float64(d.Normalize().Y()))) > 0.999 {
		up = mgl32.Vec3{0, 0, 1}
	}
	cam.MatrixWorldInverse = mgl32.LookAtV(pos, target, up)
	cam.MatrixWorld = cam.MatrixWorldInverse.Inv()
	s.Matrix = biasMatrix.Mul4(cam.Projection).Mul4(cam.MatrixWorldInverse)
}
