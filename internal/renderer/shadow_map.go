package renderer

import (
	"GopherScene/internal/logger"
	"GopherScene/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// depthKey selects a substitute material for the shadow pass.
type depthKey struct {
	distance  bool
	side      scene.Side
	alphaTest float32
	mapID     int
	alphaMap  int
	clipping  int
}

// ShadowMap renders the depth maps of shadow casting lights.
type ShadowMap struct {
	r *Renderer

	Enabled     bool
	AutoUpdate  bool
	NeedsUpdate bool
	Type        scene.ShadowMapType

	previousType scene.ShadowMapType
	frustum      scene.Frustum

	depthMaterials map[depthKey]*scene.Material

	vsmVertical   *scene.Material
	vsmHorizontal *scene.Material
	fullScreen    *scene.Object
}

func NewShadowMap(r *Renderer) *ShadowMap {
	return &ShadowMap{
		r:              r,
		Enabled:        r.cfg.ShadowMapEnabled,
		AutoUpdate:     r.cfg.ShadowMapAutoUpdate,
		Type:           r.cfg.shadowMapType(),
		previousType:   r.cfg.shadowMapType(),
		depthMaterials: make(map[depthKey]*scene.Material),
	}
}

func textureID(t *scene.Texture) int {
	if t == nil {
		return 0
	}
	return t.ID()
}

// shadowSide is the face culled while rendering depth: back faces for the hard shadow
// types so acne stays off lit surfaces.
func (s *ShadowMap) shadowSide(m *scene.Material) scene.Side {
	if m.ShadowSide != nil {
		return *m.ShadowSide
	}
	if s.Type == scene.VSMShadowMap {
		return m.Side
	}
	switch m.Side {
	case scene.FrontSide:
		return scene.BackSide
	case scene.BackSide:
		return scene.FrontSide
	}
	return scene.DoubleSide
}

// depthMaterial returns the cached substitute of m for light.
func (s *ShadowMap) depthMaterial(m *scene.Material, light *scene.Light) *scene.Material {
	key := depthKey{
		distance:  light.Kind == scene.PointLight,
		side:      s.shadowSide(m),
		alphaTest: m.AlphaTest,
		mapID:     textureID(m.Map),
		alphaMap:  textureID(m.AlphaMap),
	}
	if m.ClipShadows {
		key.clipping = len(m.ClippingPlanes)
	}

	dm, ok := s.depthMaterials[key]
	if !ok {
		if key.distance {
			dm = scene.NewMaterial(scene.MeshDistanceMaterial)
		} else {
			dm = scene.NewMaterial(scene.MeshDepthMaterial)
			if s.Type != scene.VSMShadowMap {
				dm.DepthPacking = scene.RGBADepthPacking
			}
		}
		dm.Name = "ShadowDepth"
		dm.Blending = scene.NoBlending
		dm.Side = key.side
		dm.AlphaTest = key.alphaTest
		dm.Map = m.Map
		dm.AlphaMap = m.AlphaMap
		s.depthMaterials[key] = dm
	}
	dm.ClipShadows = m.ClipShadows
	if m.ClipShadows {
		dm.ClippingPlanes = m.ClippingPlanes
	} else {
		dm.ClippingPlanes = nil
	}
	dm.DisplacementMap = m.DisplacementMap
	dm.DisplacementScale = m.DisplacementScale
	dm.DisplacementBias = m.DisplacementBias
	dm.Wireframe = m.Wireframe
	dm.WireframeLinewidth = m.WireframeLinewidth
	dm.Linewidth = m.Linewidth
	if key.distance {
		dm.ReferencePosition = light.WorldPosition()
		dm.NearDistance = light.Shadow.Camera.Near
		dm.FarDistance = light.Shadow.Camera.Far
	}
	return dm
}

// Render draws the maps of lights whose shadows need an update. The render target, viewport
// and clear color in effect before the call are restored.
func (s *ShadowMap) Render(lights []*scene.Light, sc *scene.Scene, camera *scene.Camera) error {
	if !s.Enabled || (!s.AutoUpdate && !s.NeedsUpdate) || len(lights) == 0 {
		return nil
	}
	r := s.r
	prev, prevFace, prevMip := r.currentRenderTarget, r.currentActiveCubeFace, r.currentActiveMipmapLevel

	toVSM := s.previousType != scene.VSMShadowMap && s.Type == scene.VSMShadowMap
	fromVSM := s.previousType == scene.VSMShadowMap && s.Type != scene.VSMShadowMap

	r.state.SetBlending(scene.NoBlending, 0, 0, 0, 0, 0, 0, mgl32.Vec3{}, 0, false)
	r.state.Color.SetClear(1, 1, 1, 1, false)
	r.state.Depth.SetTest(true)
	r.state.SetScissorTest(false)

	for _, light := range lights {
		shadow := light.Shadow
		if shadow == nil {
			logger.Log.Warn("Shadow casting light without shadow", zap.Int("light", light.ID()))
			continue
		}
		if !shadow.AutoUpdate && !shadow.NeedsUpdate {
			continue
		}

		s.allocate(light, toVSM || fromVSM)
		if err := r.SetRenderTarget(shadow.Map, 0, 0); err != nil {
			return err
		}
		r.Clear(true, true, true)

		for vp := 0; vp < shadow.ViewportCount(); vp++ {
			v := shadow.Viewport(vp)
			w, h := float32(shadow.MapWidth), float32(shadow.MapHeight)
			r.state.Viewport([4]int32{int32(w * v[0]), int32(h * v[1]), int32(w * v[2]), int32(h * v[3])})
			shadow.UpdateMatrices(light, vp)
			cam := shadow.Camera
			s.frustum = scene.FrustumFromMatrix(cam.Projection.Mul4(cam.MatrixWorldInverse))
			if err := s.renderObject(&sc.Object, camera, cam, light); err != nil {
				return err
			}
		}

		if s.Type == scene.VSMShadowMap && light.Kind != scene.PointLight {
			if err := s.vsmPass(shadow, camera); err != nil {
				return err
			}
		}
		shadow.NeedsUpdate = false
	}

	s.previousType = s.Type
	s.NeedsUpdate = false
	r.restoreClearColor()
	return r.SetRenderTarget(prev, prevFace, prevMip)
}

// allocate sizes the map of light's shadow, clamped to the texture limit. Storage is only
// recreated when the size or the map type changes.
func (s *ShadowMap) allocate(light *scene.Light, typeChanged bool) {
	shadow := light.Shadow
	ext := shadow.FrameExtents
	max := s.r.capabilities.MaxTextureSize
	width, height := shadow.MapWidth*int(ext.X()), shadow.MapHeight*int(ext.Y())
	if width > max {
		shadow.MapWidth = max / int(ext.X())
		width = shadow.MapWidth * int(ext.X())
	}
	if height > max {
		shadow.MapHeight = max / int(ext.Y())
		height = shadow.MapHeight * int(ext.Y())
	}

	if shadow.Map != nil && !typeChanged && shadow.Map.Width == width && shadow.Map.Height == height {
		return
	}
	if shadow.Map != nil {
		s.DisposeShadow(shadow)
	}

	opts := scene.DefaultRenderTargetOptions()
	if s.Type == scene.VSMShadowMap && light.Kind != scene.PointLight {
		opts.Format = scene.RGFormat
		opts.Type = scene.HalfFloatType
		shadow.MapPass = scene.NewRenderTarget(width, height, opts)
	} else {
		opts.MinFilter, opts.MagFilter = scene.NearestFilter, scene.NearestFilter
	}
	shadow.Map = scene.NewRenderTarget(width, height, opts)
	shadow.Map.Texture().Name = "ShadowMap"
	shadow.MapType = s.Type
	shadow.Camera.UpdateProjection()
	logger.Log.Debug("Allocated shadow map",
		zap.Int("light", light.ID()),
		zap.Int("width", width),
		zap.Int("height", height))
}

func (s *ShadowMap) renderObject(object *scene.Object, camera, shadowCamera *scene.Camera, light *scene.Light) error {
	if !object.Visible {
		return nil
	}
	r := s.r
	drawable := object.IsMesh() || object.IsLine() || object.Kind == scene.KindPoints
	casts := object.CastShadow || (object.ReceiveShadow && s.Type == scene.VSMShadowMap)
	if drawable && casts && object.Layers.Test(camera.Layers) && (!object.FrustumCulled || s.frustum.IntersectsObject(object)) {
		object.ModelViewMatrix = shadowCamera.MatrixWorldInverse.Mul4(object.MatrixWorld)
		object.NormalMatrix = object.ModelViewMatrix.Mat3().Inv().Transpose()
		geometry, err := r.objects.Update(object)
		if err != nil {
			return err
		}
		if len(object.Materials) > 0 {
			for i := range geometry.Groups {
				group := &geometry.Groups[i]
				if group.MaterialIndex >= len(object.Materials) {
					continue
				}
				if m := object.Materials[group.MaterialIndex]; m != nil && m.Visible {
					if err := s.draw(shadowCamera, geometry, s.depthMaterial(m, light), object, group); err != nil {
						return err
					}
				}
			}
		} else if m := object.Material; m != nil && m.Visible {
			if err := s.draw(shadowCamera, geometry, s.depthMaterial(m, light), object, nil); err != nil {
				return err
			}
		}
	}
	for _, child := range object.Children {
		if err := s.renderObject(child, camera, shadowCamera, light); err != nil {
			return err
		}
	}
	return nil
}

// draw forces a uniform refresh since depth materials are shared across source materials.
func (s *ShadowMap) draw(camera *scene.Camera, geometry *scene.Geometry, m *scene.Material, object *scene.Object, group *scene.Group) error {
	s.r.currentMaterialID = -1
	return s.r.renderBufferDirect(camera, nil, geometry, m, object, group)
}

func (s *ShadowMap) vsmMaterials() {
	if s.vsmVertical != nil {
		return
	}
	src := ShaderLib["vsm"]
	s.vsmVertical = scene.NewShaderMaterial(src.Vertex, src.Fragment, map[string]*scene.Uniform(src.Uniforms()))
	s.vsmVertical.Name = "VSMVertical"
	s.vsmHorizontal = s.vsmVertical.Clone()
	s.vsmHorizontal.Name = "VSMHorizontal"
	s.vsmHorizontal.Defines["HORIZONTAL_PASS"] = "1"
	for _, m := range []*scene.Material{s.vsmVertical, s.vsmHorizontal} {
		m.DepthTest, m.DepthWrite = false, false
		m.Blending = scene.NoBlending
	}

	g := scene.NewGeometry()
	g.SetAttribute("position", scene.NewBufferAttribute(scene.Float32Array{-1, -1, 0.5, 3, -1, 0.5, -1, 3, 0.5}, 3, false))
	g.SetAttribute("uv", scene.NewBufferAttribute(scene.Float32Array{0, 0, 2, 0, 0, 2}, 2, false))
	s.fullScreen = scene.NewMesh(g, s.vsmVertical)
	s.fullScreen.FrustumCulled = false
}

type blurPass struct {
	m    *scene.Material
	src  *scene.RenderTarget
	dest *scene.RenderTarget
}

// vsmPasses lists the separable blur: horizontal into MapPass, then vertical back into Map.
func (s *ShadowMap) vsmPasses(shadow *scene.LightShadow) []blurPass {
	s.vsmMaterials()
	return []blurPass{
		{s.vsmHorizontal, shadow.Map, shadow.MapPass},
		{s.vsmVertical, shadow.MapPass, shadow.Map},
	}
}

func (s *ShadowMap) vsmPass(shadow *scene.LightShadow, camera *scene.Camera) error {
	r := s.r
	resolution := mgl32.Vec2{float32(shadow.Map.Width), float32(shadow.Map.Height)}
	for _, p := range s.vsmPasses(shadow) {
		u := p.m.Uniforms
		u["shadow_pass"].Value = p.src.Texture()
		u["resolution"].Value = resolution
		u["radius"].Value = shadow.Radius
		u["samples"].Value = float32(shadow.BlurSamples)
		p.m.UniformsNeedUpdate = true

		if err := r.SetRenderTarget(p.dest, 0, 0); err != nil {
			return err
		}
		r.Clear(true, true, true)
		if err := s.draw(camera, s.fullScreen.Geometry, p.m, s.fullScreen, nil); err != nil {
			return err
		}
	}
	return nil
}

// DisposeShadow releases the maps of one shadow.
func (s *ShadowMap) DisposeShadow(shadow *scene.LightShadow) {
	if shadow.Map != nil {
		s.r.textures.DeallocateRenderTarget(shadow.Map)
		shadow.Map = nil
	}
	if shadow.MapPass != nil {
		s.r.textures.DeallocateRenderTarget(shadow.MapPass)
		shadow.MapPass = nil
	}
}

func (s *ShadowMap) Dispose() {
	for k, m := range s.depthMaterials {
		s.r.DisposeMaterial(m)
		delete(s.depthMaterials, k)
	}
	if s.vsmVertical != nil {
		s.r.DisposeMaterial(s.vsmVertical)
		s.r.DisposeMaterial(s.vsmHorizontal)
		s.r.DisposeGeometry(s.fullScreen.Geometry)
		s.vsmVertical, s.vsmHorizontal, s.fullScreen = nil, nil, nil
	}
}
