package scene

import "github.com/go-gl/mathgl/mgl32"

type FogKind int

const (
	LinearFog FogKind = iota
	ExponentialFog
)

type Fog struct {
	Kind    FogKind
	Color   mgl32.Vec3
	Near    float32
	Far     float32
	Density float32
}

// Scene is the root of a render. Background is either a color or a texture.
type Scene struct {
	Object

	BackgroundColor      *mgl32.Vec3
	BackgroundTexture    *Texture
	BackgroundBlurriness float32
	BackgroundIntensity  float32
	BackgroundRotation   mgl32.Mat3
	Environment          *Texture
	Fog                  *Fog
	OverrideMaterial     *Material
}

func NewScene() *Scene {
	s := &Scene{BackgroundIntensity: 1, BackgroundRotation: mgl32.Ident3()}
	s.Object.init(KindScene)
	return s
}

// SetBackgroundColor clears to c; it replaces a background texture.
func (s *Scene) SetBackgroundColor(c mgl32.Vec3) {
	s.BackgroundColor = &c
	s.BackgroundTexture = nil
}
