package renderer

import (
	"math"
	"sort"

	"GopherScene/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
)

// DirectionalLightUniforms feeds one element of directionalLights[].
type DirectionalLightUniforms struct {
	Direction mgl32.Vec3
	Color     mgl32.Vec3
}

func (u *DirectionalLightUniforms) UniformField(name string) any {
	switch name {
	case "direction":
		return u.Direction
	case "color":
		return u.Color
	}
	return nil
}

type PointLightUniforms struct {
	Position mgl32.Vec3
	Color    mgl32.Vec3
	Distance float32
	Decay    float32
}

func (u *PointLightUniforms) UniformField(name string) any {
	switch name {
	case "position":
		return u.Position
	case "color":
		return u.Color
	case "distance":
		return u.Distance
	case "decay":
		return u.Decay
	}
	return nil
}

type SpotLightUniforms struct {
	Position    mgl32.Vec3
	Direction   mgl32.Vec3
	Color       mgl32.Vec3
	Distance    float32
	Decay       float32
	ConeCos     float32
	PenumbraCos float32
}

func (u *SpotLightUniforms) UniformField(name string) any {
	switch name {
	case "position":
		return u.Position
	case "direction":
		return u.Direction
	case "color":
		return u.Color
	case "distance":
		return u.Distance
	case "decay":
		return u.Decay
	case "coneCos":
		return u.ConeCos
	case "penumbraCos":
		return u.PenumbraCos
	}
	return nil
}

type RectAreaLightUniforms struct {
	Color      mgl32.Vec3
	Position   mgl32.Vec3
	HalfWidth  mgl32.Vec3
	HalfHeight mgl32.Vec3
}

func (u *RectAreaLightUniforms) UniformField(name string) any {
	switch name {
	case "color":
		return u.Color
	case "position":
		return u.Position
	case "halfWidth":
		return u.HalfWidth
	case "halfHeight":
		return u.HalfHeight
	}
	return nil
}

type HemisphereLightUniforms struct {
	Direction   mgl32.Vec3
	SkyColor    mgl32.Vec3
	GroundColor mgl32.Vec3
}

func (u *HemisphereLightUniforms) UniformField(name string) any {
	switch name {
	case "direction":
		return u.Direction
	case "skyColor":
		return u.SkyColor
	case "groundColor":
		return u.GroundColor
	}
	return nil
}

// ShadowUniforms feeds one element of the *LightShadows[] arrays.
type ShadowUniforms struct {
	Intensity  float32
	Bias       float32
	NormalBias float32
	Radius     float32
	MapSize    mgl32.Vec2
	// point lights only
	CameraNear float32
	CameraFar  float32
}

func (u *ShadowUniforms) UniformField(name string) any {
	switch name {
	case "shadowIntensity":
		return u.Intensity
	case "shadowBias":
		return u.Bias
	case "shadowNormalBias":
		return u.NormalBias
	case "shadowRadius":
		return u.Radius
	case "shadowMapSize":
		return u.MapSize
	case "shadowCameraNear":
		return u.CameraNear
	case "shadowCameraFar":
		return u.CameraFar
	}
	return nil
}

// LightsHash changes exactly when the program permutation space of the lights changes.
type LightsHash struct {
	DirectionalLength     int
	PointLength           int
	SpotLength            int
	RectAreaLength        int
	HemiLength            int
	NumDirectionalShadows int
	NumPointShadows       int
	NumSpotShadows        int
	NumSpotMaps           int
	NumLightProbes        int
}

// LightsState is the uniform view of one scene's lights. Slices are reused across frames.
type LightsState struct {
	Version int
	Hash    LightsHash

	Ambient mgl32.Vec3
	Probe   []mgl32.Vec3

	Directional             []any
	DirectionalShadow       []any
	DirectionalShadowMap    []*scene.Texture
	DirectionalShadowMatrix []mgl32.Mat4

	Spot            []any
	SpotLightMap    []*scene.Texture
	SpotShadow      []any
	SpotShadowMap   []*scene.Texture
	SpotLightMatrix []mgl32.Mat4

	RectArea []any

	Point             []any
	PointShadow       []any
	PointShadowMap    []*scene.Texture
	PointShadowMatrix []mgl32.Mat4

	Hemi []any

	NumSpotLightShadowsWithMaps int
	NumLightProbes              int
}

// Lights builds LightsState from a light list once per frame.
type Lights struct {
	State LightsState

	lightCache  map[int]any
	shadowCache map[int]*ShadowUniforms
	hashSet     bool
}

func NewLights() *Lights {
	return &Lights{
		State:       LightsState{Probe: make([]mgl32.Vec3, 9)},
		lightCache:  make(map[int]any),
		shadowCache: make(map[int]*ShadowUniforms),
	}
}

// uniformsFor returns the uniform block of l, created once per light id.
func (ls *Lights) uniformsFor(l *scene.Light) any {
	if u, ok := ls.lightCache[l.ID()]; ok {
		return u
	}
	var u any
	switch l.Kind {
	case scene.DirectionalLight:
		u = &DirectionalLightUniforms{}
	case scene.PointLight:
		u = &PointLightUniforms{}
	case scene.SpotLight:
		u = &SpotLightUniforms{}
	case scene.RectAreaLight:
		u = &RectAreaLightUniforms{}
	case scene.HemisphereLight:
		u = &HemisphereLightUniforms{}
	}
	ls.lightCache[l.ID()] = u
	return u
}

func (ls *Lights) shadowFor(l *scene.Light) *ShadowUniforms {
	u, ok := ls.shadowCache[l.ID()]
	if !ok {
		u = &ShadowUniforms{}
		ls.shadowCache[l.ID()] = u
	}
	s := l.Shadow
	u.Intensity, u.Bias, u.NormalBias, u.Radius = s.Intensity, s.Bias, s.NormalBias, s.Radius
	u.MapSize = mgl32.Vec2{float32(s.MapWidth), float32(s.MapHeight)}
	return u
}

func castsShadow(l *scene.Light) bool { return l.CastShadow && l.Shadow != nil }

// shadowAndMapFirst ranks lights for sorting: shadow casters, then projected maps.
func shadowAndMapFirst(l *scene.Light) int {
	r := 0
	if l.CastShadow {
		r += 2
	}
	if l.Map != nil {
		r++
	}
	return r
}

func shadowMapTexture(s *scene.LightShadow) *scene.Texture {
	if s.Map == nil {
		return nil
	}
	return s.Map.Texture()
}

// Setup rebuilds the state from lights. lights is sorted in place, stable, so shadow
// casting and map projecting lights come first; SetupView relies on that order.
func (ls *Lights) Setup(lights []*scene.Light, useLegacyLights bool) {
	st := &ls.State
	var ambient mgl32.Vec3
	for i := range st.Probe {
		st.Probe[i] = mgl32.Vec3{}
	}
	st.Directional = st.Directional[:0]
	st.DirectionalShadow = st.DirectionalShadow[:0]
	st.DirectionalShadowMap = st.DirectionalShadowMap[:0]
	st.DirectionalShadowMatrix = st.DirectionalShadowMatrix[:0]
	st.Spot = st.Spot[:0]
	st.SpotLightMap = st.SpotLightMap[:0]
	st.SpotShadow = st.SpotShadow[:0]
	st.SpotShadowMap = st.SpotShadowMap[:0]
	st.SpotLightMatrix = st.SpotLightMatrix[:0]
	st.RectArea = st.RectArea[:0]
	st.Point = st.Point[:0]
	st.PointShadow = st.PointShadow[:0]
	st.PointShadowMap = st.PointShadowMap[:0]
	st.PointShadowMatrix = st.PointShadowMatrix[:0]
	st.Hemi = st.Hemi[:0]

	var numDirectionalShadows, numPointShadows, numSpotShadows, numSpotMaps, numSpotShadowsWithMaps, numLightProbes int

	sort.SliceStable(lights, func(i, j int) bool {
		return shadowAndMapFirst(lights[i]) > shadowAndMapFirst(lights[j])
	})

	scale := float32(1)
	if useLegacyLights {
		scale = math.Pi
	}

	for _, l := range lights {
		color := l.Color.Mul(l.Intensity * scale)
		switch l.Kind {
		case scene.AmbientLight:
			ambient = ambient.Add(color)
		case scene.LightProbe:
			for i := range st.Probe {
				st.Probe[i] = st.Probe[i].Add(l.SH[i].Mul(l.Intensity))
			}
			numLightProbes++
		case scene.DirectionalLight:
			u := ls.uniformsFor(l).(*DirectionalLightUniforms)
			u.Color = color
			if castsShadow(l) {
				st.DirectionalShadow = append(st.DirectionalShadow, ls.shadowFor(l))
				st.DirectionalShadowMap = append(st.DirectionalShadowMap, shadowMapTexture(l.Shadow))
				st.DirectionalShadowMatrix = append(st.DirectionalShadowMatrix, l.Shadow.Matrix)
				numDirectionalShadows++
			}
			st.Directional = append(st.Directional, u)
		case scene.SpotLight:
			u := ls.uniformsFor(l).(*SpotLightUniforms)
			u.Color = color
			u.Distance = l.Distance
			u.ConeCos = float32(math.Cos(float64(l.Angle)))
			u.PenumbraCos = float32(math.Cos(float64(l.Angle * (1 - l.Penumbra))))
			u.Decay = l.Decay
			if l.Map != nil {
				st.SpotLightMap = append(st.SpotLightMap, l.Map)
				numSpotMaps++
				if l.Shadow != nil {
					l.Shadow.UpdateMatrices(l, 0)
				}
				if l.CastShadow {
					numSpotShadowsWithMaps++
				}
			}
			if l.Shadow != nil && (l.CastShadow || l.Map != nil) {
				st.SpotLightMatrix = append(st.SpotLightMatrix, l.Shadow.Matrix)
			}
			if castsShadow(l) {
				st.SpotShadow = append(st.SpotShadow, ls.shadowFor(l))
				st.SpotShadowMap = append(st.SpotShadowMap, shadowMapTexture(l.Shadow))
				numSpotShadows++
			}
			st.Spot = append(st.Spot, u)
		case scene.RectAreaLight:
			u := ls.uniformsFor(l).(*RectAreaLightUniforms)
			u.Color = color
			st.RectArea = append(st.RectArea, u)
		case scene.PointLight:
			u := ls.uniformsFor(l).(*PointLightUniforms)
			u.Color = color
			u.Distance = l.Distance
			u.Decay = l.Decay
			if castsShadow(l) {
				su := ls.shadowFor(l)
				su.CameraNear, su.CameraFar = l.Shadow.Camera.Near, l.Shadow.Camera.Far
				st.PointShadow = append(st.PointShadow, su)
				st.PointShadowMap = append(st.PointShadowMap, shadowMapTexture(l.Shadow))
				st.PointShadowMatrix = append(st.PointShadowMatrix, l.Shadow.Matrix)
				numPointShadows++
			}
			st.Point = append(st.Point, u)
		case scene.HemisphereLight:
			u := ls.uniformsFor(l).(*HemisphereLightUniforms)
			u.SkyColor = color
			u.GroundColor = l.GroundColor.Mul(l.Intensity * scale)
			st.Hemi = append(st.Hemi, u)
		}
	}

	st.Ambient = ambient
	// matrices exist for every spot light with a shadow, a map, or both
	if n := numSpotShadows + numSpotMaps - numSpotShadowsWithMaps; len(st.SpotLightMatrix) > n {
		st.SpotLightMatrix = st.SpotLightMatrix[:n]
	}
	st.NumSpotLightShadowsWithMaps = numSpotShadowsWithMaps
	st.NumLightProbes = numLightProbes

	hash := LightsHash{
		DirectionalLength:     len(st.Directional),
		PointLength:           len(st.Point),
		SpotLength:            len(st.Spot),
		RectAreaLength:        len(st.RectArea),
		HemiLength:            len(st.Hemi),
		NumDirectionalShadows: numDirectionalShadows,
		NumPointShadows:       numPointShadows,
		NumSpotShadows:        numSpotShadows,
		NumSpotMaps:           numSpotMaps,
		NumLightProbes:        numLightProbes,
	}
	if !ls.hashSet || hash != st.Hash {
		st.Hash = hash
		st.Version++
		ls.hashSet = true
	}
}

// SetupView moves positions and directions into camera space. lights must be the slice
// passed to Setup.
func (ls *Lights) SetupView(lights []*scene.Light, camera *scene.Camera) {
	view := camera.MatrixWorldInverse
	view3 := view.Mat3()
	var dir, spot, rect, point, hemi int
	for _, l := range lights {
		pos := l.WorldPosition()
		switch l.Kind {
		case scene.DirectionalLight:
			u := ls.State.Directional[dir].(*DirectionalLightUniforms)
			u.Direction = view3.Mul3x1(pos.Sub(targetPosition(l))).Normalize()
			dir++
		case scene.SpotLight:
			u := ls.State.Spot[spot].(*SpotLightUniforms)
			u.Position = view.Mul4x1(pos.Vec4(1)).Vec3()
			u.Direction = view3.Mul3x1(pos.Sub(targetPosition(l))).Normalize()
			spot++
		case scene.RectAreaLight:
			u := ls.State.RectArea[rect].(*RectAreaLightUniforms)
			u.Position = view.Mul4x1(pos.Vec4(1)).Vec3()
			rot := view.Mul4(l.MatrixWorld).Mat3()
			u.HalfWidth = rot.Mul3x1(mgl32.Vec3{l.Width * 0.5, 0, 0})
			u.HalfHeight = rot.Mul3x1(mgl32.Vec3{0, l.Height * 0.5, 0})
			rect++
		case scene.PointLight:
			u := ls.State.Point[point].(*PointLightUniforms)
			u.Position = view.Mul4x1(pos.Vec4(1)).Vec3()
			point++
		case scene.HemisphereLight:
			u := ls.State.Hemi[hemi].(*HemisphereLightUniforms)
			u.Direction = view3.Mul3x1(pos).Normalize()
			hemi++
		}
	}
}

func targetPosition(l *scene.Light) mgl32.Vec3 {
	if l.Target == nil {
		return mgl32.Vec3{}
	}
	return l.Target.WorldPosition()
}

// Forget drops cached uniform blocks of a light that left the scene for good.
func (ls *Lights) Forget(id int) {
	delete(ls.lightCache, id)
	delete(ls.shadowCache, id)
}
