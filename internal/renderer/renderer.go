package renderer

import (
	"fmt"
	"math"

	"GopherScene/internal/gpu"
	"GopherScene/internal/logger"
	"GopherScene/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// materialRecord is the renderer side of one material: its programs and the inputs they were
// derived from.
type materialRecord struct {
	version        int
	programs       map[string]*Program
	currentProgram *Program
	uniforms       UniformValues
	uniformsList   []uniformNode

	needsLights        bool
	lightsStateVersion int
	fog                *scene.Fog
	environment        *scene.Texture
	envMap             *scene.Texture
	outputSRGB         bool
	toneMapping        scene.ToneMapping

	instancing        bool
	instancingColor   bool
	skinning          bool
	morphTargets      bool
	morphNormals      bool
	morphColors       bool
	morphTargetsCount int
	vertexAlphas      bool
	vertexTangents    bool
	receiveShadow     bool
	numClippingPlanes int
}

// Renderer draws scenes through a gpu.Context.
type Renderer struct {
	ctx gpu.Context
	cfg Config

	extensions    *Extensions
	capabilities  *Capabilities
	utils         *Utils
	state         *State
	info          *Info
	properties    *Properties[materialRecord]
	textures      *Textures
	attributes    *Attributes
	bindingStates *BindingStates
	geometries    *Geometries
	objects       *Objects
	programs      *Programs
	cubeMaps      *CubeMaps
	materials     *Materials
	morphtargets  *Morphtargets
	background    *Background
	shadowMap     *ShadowMap
	renderLists   *RenderLists
	renderStates  *RenderStates

	currentRenderList  *RenderList
	currentRenderState *RenderState
	renderListStack    []*RenderList
	renderStateStack   []*RenderState

	currentRenderTarget      *scene.RenderTarget
	currentActiveCubeFace    int
	currentActiveMipmapLevel int
	currentMaterialID        int
	currentCamera            *scene.Camera
	currentViewport          mgl32.Vec4
	currentScissor           mgl32.Vec4
	currentScissorTest       bool

	width       int
	height      int
	pixelRatio  float32
	viewport    mgl32.Vec4
	scissor     mgl32.Vec4
	scissorTest bool

	frustum          scene.Frustum
	projScreenMatrix mgl32.Mat4
	transmissionRT   map[int]*scene.RenderTarget
	spriteGeometry   *scene.Geometry
	emptyScene       *scene.Scene

	disposed bool
}

// New builds a renderer on ctx. ctx must be current on the calling goroutine for the renderer's
// whole life.
func New(ctx gpu.Context, cfg Config, width, height int) (*Renderer, error) {
	if ctx == nil {
		return nil, fmt.Errorf("renderer: nil gpu context")
	}
	cfg.Validate()
	r := &Renderer{
		ctx:               ctx,
		cfg:               cfg,
		currentMaterialID: -1,
		pixelRatio:        cfg.PixelRatio,
		transmissionRT:    make(map[int]*scene.RenderTarget),
		emptyScene:        scene.NewScene(),
	}
	r.extensions = NewExtensions(ctx)
	r.capabilities = NewCapabilities(ctx, r.extensions, r.cfg)
	r.utils = NewUtils(r.extensions)
	r.state = NewState(ctx, r.utils, r.capabilities)
	r.info = newInfo()
	r.properties = NewProperties[materialRecord]()
	r.textures = NewTextures(ctx, r.extensions, r.state, r.capabilities, r.utils, r.info)
	r.attributes = NewAttributes(ctx, r.utils)
	r.bindingStates = NewBindingStates(ctx, r.attributes, r.capabilities)
	r.geometries = NewGeometries(r.attributes, r.bindingStates, r.info)
	r.objects = NewObjects(r.geometries, r.attributes, r.info)
	r.programs = NewPrograms(ctx, r.bindingStates, r.capabilities, &r.cfg, r.info)
	r.cubeMaps = NewCubeMaps(r)
	r.materials = NewMaterials(r.cubeMaps)
	r.morphtargets = NewMorphtargets(r.capabilities)
	r.background = NewBackground(r)
	r.shadowMap = NewShadowMap(r)
	r.renderLists = NewRenderLists()
	r.renderStates = NewRenderStates()

	r.SetSize(width, height)
	r.restoreClearColor()
	logger.Log.Info("Renderer initialized",
		zap.Int("maxTextureSize", r.capabilities.MaxTextureSize),
		zap.Int("maxTextures", r.capabilities.MaxTextures),
		zap.String("precision", r.capabilities.Precision))
	return r, nil
}

// Info returns the live statistics block.
func (r *Renderer) Info() *Info { return r.info }

// Capabilities returns the device limits.
func (r *Renderer) Capabilities() *Capabilities { return r.capabilities }

// State exposes the GPU state mirror for callers that issue their own draws.
func (r *Renderer) State() *State { return r.state }

// Config returns a copy of the active settings.
func (r *Renderer) Config() Config { return r.cfg }

// SetConfig swaps settings at runtime. Programs pick up changes through their cache keys.
func (r *Renderer) SetConfig(cfg Config) {
	cfg.Validate()
	r.cfg = cfg
	r.shadowMap.Enabled = cfg.ShadowMapEnabled
	r.shadowMap.AutoUpdate = cfg.ShadowMapAutoUpdate
	r.shadowMap.Type = cfg.shadowMapType()
	r.SetPixelRatio(cfg.PixelRatio)
	logger.SetLevel(logger.ParseLevel(cfg.LogLevel))
}

// SetSize sets the drawing buffer size in logical pixels and resets the viewport to cover it.
func (r *Renderer) SetSize(width, height int) {
	r.width, r.height = width, height
	r.SetViewport(0, 0, float32(width), float32(height))
}

// Size returns the logical drawing buffer size.
func (r *Renderer) Size() (int, int) { return r.width, r.height }

func (r *Renderer) SetPixelRatio(ratio float32) {
	if ratio <= 0 {
		ratio = 1
	}
	r.pixelRatio = ratio
	r.SetSize(r.width, r.height)
}

// DrawingBufferSize is the size in device pixels.
func (r *Renderer) DrawingBufferSize() (int, int) {
	return int(math.Floor(float64(float32(r.width) * r.pixelRatio))), int(math.Floor(float64(float32(r.height) * r.pixelRatio)))
}

func (r *Renderer) scaled(v mgl32.Vec4) mgl32.Vec4 {
	return mgl32.Vec4{
		float32(math.Floor(float64(v[0] * r.pixelRatio))),
		float32(math.Floor(float64(v[1] * r.pixelRatio))),
		float32(math.Floor(float64(v[2] * r.pixelRatio))),
		float32(math.Floor(float64(v[3] * r.pixelRatio))),
	}
}

func rect(v mgl32.Vec4) [4]int32 {
	return [4]int32{int32(v[0]), int32(v[1]), int32(v[2]), int32(v[3])}
}

// SetViewport sets the default framebuffer viewport in logical pixels.
func (r *Renderer) SetViewport(x, y, width, height float32) {
	r.viewport = mgl32.Vec4{x, y, width, height}
	r.currentViewport = r.scaled(r.viewport)
	r.state.Viewport(rect(r.currentViewport))
}

// SetScissor sets the default framebuffer scissor box in logical pixels.
func (r *Renderer) SetScissor(x, y, width, height float32) {
	r.scissor = mgl32.Vec4{x, y, width, height}
	r.currentScissor = r.scaled(r.scissor)
	r.state.Scissor(rect(r.currentScissor))
}

func (r *Renderer) SetScissorTest(enabled bool) {
	r.scissorTest = enabled
	r.state.SetScissorTest(enabled)
}

// SetClearColor sets the color and alpha used by Clear and the background pass.
func (r *Renderer) SetClearColor(color mgl32.Vec3, alpha float32) {
	r.cfg.ClearColor = [3]float32{color[0], color[1], color[2]}
	r.cfg.ClearAlpha = alpha
	r.restoreClearColor()
}

func (r *Renderer) restoreClearColor() {
	c := r.cfg.ClearColor
	r.state.Color.SetClear(c[0], c[1], c[2], r.cfg.ClearAlpha, r.cfg.PremultipliedAlpha)
}

// Clear clears the selected buffers of the current render target with the current clear values.
func (r *Renderer) Clear(color, depth, stencil bool) {
	var bits gpu.Enum
	if color {
		bits |= gpu.COLOR_BUFFER_BIT
	}
	if depth {
		r.state.Depth.SetClear(1)
		bits |= gpu.DEPTH_BUFFER_BIT
	}
	if stencil {
		r.state.Stencil.SetClear(0)
		r.state.Stencil.SetMask(0xffffffff)
		bits |= gpu.STENCIL_BUFFER_BIT
	}
	if bits != 0 {
		r.ctx.Clear(bits)
	}
}

// RenderTarget returns the current destination, nil for the default framebuffer.
func (r *Renderer) RenderTarget() *scene.RenderTarget { return r.currentRenderTarget }

// SetRenderTarget directs draws to rt, or to the default framebuffer when rt is nil.
// face selects a cube face or a layer of a 3D/array target.
func (r *Renderer) SetRenderTarget(rt *scene.RenderTarget, face, mip int) error {
	r.currentRenderTarget = rt
	r.currentActiveCubeFace = face
	r.currentActiveMipmapLevel = mip
	r.programs.SetRenderTarget(rt)

	var fb gpu.Framebuffer
	if rt != nil {
		if err := r.textures.SetupRenderTarget(rt); err != nil {
			return err
		}
		fb = r.textures.Framebuffer(rt, face)
		r.currentViewport = rt.Viewport
		r.currentScissor = rt.Scissor
		r.currentScissorTest = rt.ScissorTest
	} else {
		r.currentViewport = r.scaled(r.viewport)
		r.currentScissor = r.scaled(r.scissor)
		r.currentScissorTest = r.scissorTest
	}

	if r.state.BindFramebuffer(gpu.FRAMEBUFFER, fb) && rt != nil {
		r.state.DrawBuffers(fb, len(rt.Textures))
	}
	if rt != nil {
		r.textures.SetLayer(rt, face)
	}
	r.state.Viewport(rect(r.currentViewport))
	r.state.Scissor(rect(r.currentScissor))
	r.state.SetScissorTest(r.currentScissorTest)
	return nil
}

// ResetState forgets every mirrored GPU value. Call it after foreign code touched the context.
func (r *Renderer) ResetState() {
	r.currentActiveCubeFace = 0
	r.currentActiveMipmapLevel = 0
	r.currentRenderTarget = nil
	r.currentMaterialID = -1
	r.currentCamera = nil
	r.programs.SetRenderTarget(nil)
	r.state.Reset()
	r.bindingStates.Reset()
}

func (r *Renderer) pushRenderState(sc *scene.Scene) {
	r.currentRenderState = r.renderStates.Get(sc.ID(), len(r.renderStateStack))
	r.currentRenderState.Init()
	r.renderStateStack = append(r.renderStateStack, r.currentRenderState)
}

func (r *Renderer) popRenderState() {
	r.renderStateStack = r.renderStateStack[:len(r.renderStateStack)-1]
	if n := len(r.renderStateStack); n > 0 {
		r.currentRenderState = r.renderStateStack[n-1]
	} else {
		r.currentRenderState = nil
	}
}

func (r *Renderer) pushRenderList(sc *scene.Scene) {
	r.currentRenderList = r.renderLists.Get(sc.ID(), len(r.renderListStack))
	r.currentRenderList.Init()
	r.renderListStack = append(r.renderListStack, r.currentRenderList)
}

func (r *Renderer) popRenderList() {
	r.renderListStack = r.renderListStack[:len(r.renderListStack)-1]
	if n := len(r.renderListStack); n > 0 {
		r.currentRenderList = r.renderListStack[n-1]
	} else {
		r.currentRenderList = nil
	}
}

// Render draws sc as seen from camera into the current render target.
func (r *Renderer) Render(sc *scene.Scene, camera *scene.Camera) error {
	if r.disposed {
		return ErrDisposed
	}
	if sc.MatrixAutoUpdate {
		sc.UpdateMatrixWorld()
	}
	if camera.Parent == nil {
		camera.UpdateMatrixWorld()
	}

	r.pushRenderState(sc)
	defer r.popRenderState()

	r.projScreenMatrix = camera.Projection.Mul4(camera.MatrixWorldInverse)
	r.frustum = scene.FrustumFromMatrix(r.projScreenMatrix)

	r.pushRenderList(sc)
	defer r.popRenderList()

	if len(r.renderStateStack) == 1 {
		r.info.Render.Frame++
	}
	if err := r.projectObject(&sc.Object, camera, 0, r.cfg.SortObjects); err != nil {
		return err
	}
	r.currentRenderList.Finish()
	if r.cfg.SortObjects {
		r.currentRenderList.Sort(nil, nil)
	}

	if err := r.shadowMap.Render(r.currentRenderState.ShadowsArray, sc, camera); err != nil {
		return err
	}

	if r.info.AutoReset && len(r.renderStateStack) == 1 {
		r.info.Reset()
	}

	if err := r.background.Render(r.currentRenderList, sc, camera); err != nil {
		return err
	}

	r.currentRenderState.SetupLights(r.cfg.UseLegacyLights)
	r.currentRenderState.SetupLightsView(camera)

	if err := r.renderScene(r.currentRenderList, sc, camera); err != nil {
		return err
	}

	if rt := r.currentRenderTarget; rt != nil {
		r.textures.UpdateMultisampleRenderTarget(rt)
		r.textures.UpdateRenderTargetMipmap(rt)
	}

	r.state.Depth.SetTest(true)
	r.state.Depth.SetMask(true)
	r.state.Color.SetMask(true)
	r.state.SetPolygonOffset(false, 0, 0)
	r.bindingStates.ResetDefaultState()
	r.currentMaterialID = -1
	r.currentCamera = nil
	return nil
}

// projectObject walks the graph collecting lights, shadow casters and visible drawables.
func (r *Renderer) projectObject(object *scene.Object, camera *scene.Camera, groupOrder int, sortObjects bool) error {
	if !object.Visible {
		return nil
	}
	if object.Layers.Test(camera.Layers) {
		switch {
		case object.Kind == scene.KindLight:
			l := object.Light()
			if l.Target != nil && l.Target.Parent == nil {
				l.Target.UpdateMatrixWorld()
			}
			r.currentRenderState.PushLight(l)
			if object.CastShadow && l.Shadow != nil {
				r.currentRenderState.PushShadow(l)
			}
		case object.Kind == scene.KindSprite:
			if !r.cfg.FrustumCulling || !object.FrustumCulled || r.frustum.IntersectsSphere(scene.Sphere{Center: object.WorldPosition(), Radius: maxScale(object)}) {
				if object.Geometry == nil {
					object.Geometry = r.sprite()
				}
				if err := r.pushDrawable(object, camera, groupOrder, sortObjects); err != nil {
					return err
				}
			}
		case object.IsMesh() || object.IsLine() || object.Kind == scene.KindPoints:
			if !r.cfg.FrustumCulling || !object.FrustumCulled || r.frustum.IntersectsObject(object) {
				if err := r.pushDrawable(object, camera, groupOrder, sortObjects); err != nil {
					return err
				}
			}
		}
	}
	for _, child := range object.Children {
		if err := r.projectObject(child, camera, groupOrder, sortObjects); err != nil {
			return err
		}
	}
	return nil
}

func maxScale(o *scene.Object) float32 {
	s := o.Scale
	return float32(math.Max(float64(s.X()), math.Max(float64(s.Y()), float64(s.Z()))))
}

func (r *Renderer) sprite() *scene.Geometry {
	if r.spriteGeometry == nil {
		r.spriteGeometry = scene.NewPlaneGeometry(1, 1)
	}
	return r.spriteGeometry
}

func (r *Renderer) pushDrawable(object *scene.Object, camera *scene.Camera, groupOrder int, sortObjects bool) error {
	geometry, err := r.objects.Update(object)
	if err != nil {
		return fmt.Errorf("object %d %q: %w", object.ID(), object.Name, err)
	}
	var z float32
	if sortObjects {
		center := object.WorldPosition()
		if geometry.BoundingSphere == nil {
			geometry.ComputeBoundingSphere()
		}
		if object.Kind != scene.KindSprite {
			center = object.MatrixWorld.Mul4x1(geometry.BoundingSphere.Center.Vec4(1)).Vec3()
		}
		p := r.projScreenMatrix.Mul4x1(center.Vec4(1))
		if p.W() != 0 {
			z = p.Z() / p.W()
		}
	}

	if len(object.Materials) > 0 {
		for i := range geometry.Groups {
			group := &geometry.Groups[i]
			if group.MaterialIndex >= len(object.Materials) {
				continue
			}
			m := object.Materials[group.MaterialIndex]
			if m != nil && m.Visible {
				r.currentRenderList.Push(object, geometry, m, groupOrder, z, group)
			}
		}
		return nil
	}
	if object.Material == nil {
		return fmt.Errorf("object %d %q: %w", object.ID(), object.Name, ErrNilMaterial)
	}
	if object.Material.Visible {
		r.currentRenderList.Push(object, geometry, object.Material, groupOrder, z, nil)
	}
	return nil
}

func (r *Renderer) renderScene(list *RenderList, sc *scene.Scene, camera *scene.Camera) error {
	if len(list.Transmissive) > 0 {
		if err := r.renderTransmissionPass(list.Opaque, sc, camera); err != nil {
			return err
		}
	}
	if err := r.renderObjects(list.Opaque, sc, camera); err != nil {
		return err
	}
	if err := r.renderObjects(list.Transmissive, sc, camera); err != nil {
		return err
	}
	return r.renderObjects(list.Transparent, sc, camera)
}

// renderTransmissionPass draws the opaque items into a per camera target that transmissive
// materials sample.
func (r *Renderer) renderTransmissionPass(opaque []*RenderItem, sc *scene.Scene, camera *scene.Camera) error {
	w, h := r.DrawingBufferSize()
	rt, ok := r.transmissionRT[camera.ID()]
	if !ok {
		opts := scene.DefaultRenderTargetOptions()
		opts.GenerateMipmaps = true
		opts.MinFilter = scene.LinearMipmapLinearFilter
		opts.Samples = r.cfg.Antialias
		if r.capabilities.ColorBufferFloat {
			opts.Type = scene.HalfFloatType
		}
		rt = scene.NewRenderTarget(w, h, opts)
		r.transmissionRT[camera.ID()] = rt
	}
	rt.SetSize(w, h, 1)

	prev, prevFace, prevMip := r.currentRenderTarget, r.currentActiveCubeFace, r.currentActiveMipmapLevel
	if err := r.SetRenderTarget(rt, 0, 0); err != nil {
		return err
	}
	r.Clear(true, true, true)
	if err := r.renderObjects(opaque, sc, camera); err != nil {
		return err
	}
	r.textures.UpdateMultisampleRenderTarget(rt)
	r.textures.UpdateRenderTargetMipmap(rt)
	return r.SetRenderTarget(prev, prevFace, prevMip)
}

func (r *Renderer) renderObjects(items []*RenderItem, sc *scene.Scene, camera *scene.Camera) error {
	for _, item := range items {
		material := item.Material
		if sc.OverrideMaterial != nil {
			material = sc.OverrideMaterial
		}
		if err := r.renderObject(item.Object, sc, camera, item.Geometry, material, item.Group); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) renderObject(object *scene.Object, sc *scene.Scene, camera *scene.Camera, geometry *scene.Geometry, material *scene.Material, group *scene.Group) error {
	object.ModelViewMatrix = camera.MatrixWorldInverse.Mul4(object.MatrixWorld)
	object.NormalMatrix = object.ModelViewMatrix.Mat3().Inv().Transpose()
	return r.renderBufferDirect(camera, sc, geometry, material, object, group)
}

// renderBufferDirect issues the draw call for one object and material.
func (r *Renderer) renderBufferDirect(camera *scene.Camera, sc *scene.Scene, geometry *scene.Geometry, material *scene.Material, object *scene.Object, group *scene.Group) error {
	if sc == nil {
		sc = r.emptyScene
	}
	frontFaceCW := object.MatrixWorld.Det() < 0

	program, err := r.setProgram(camera, sc, geometry, material, object)
	if err != nil {
		return err
	}
	if !program.Runnable() {
		return nil
	}
	r.state.SetMaterial(material, frontFaceCW)

	index := geometry.Index
	rangeFactor := 1
	if material.Wireframe && object.IsMesh() {
		index = r.geometries.GetWireframeAttribute(geometry)
		if index == nil {
			return nil
		}
		rangeFactor = 2
	}

	drawStart := geometry.DrawRange.Start * rangeFactor
	drawEnd := math.MaxInt
	if geometry.DrawRange.Count >= 0 {
		drawEnd = (geometry.DrawRange.Start + geometry.DrawRange.Count) * rangeFactor
	}
	if group != nil {
		drawStart = max(drawStart, group.Start*rangeFactor)
		drawEnd = min(drawEnd, (group.Start+group.Count)*rangeFactor)
	}
	if index != nil {
		drawStart = max(drawStart, 0)
		drawEnd = min(drawEnd, index.Count())
	} else if position := geometry.Attributes["position"]; position != nil {
		drawStart = max(drawStart, 0)
		drawEnd = min(drawEnd, position.Count())
	} else {
		return nil
	}
	drawCount := drawEnd - drawStart
	if drawCount <= 0 {
		return nil
	}

	r.bindingStates.Setup(object, material, program, geometry, index)

	mode := gpu.TRIANGLES
	switch {
	case object.IsMesh():
		if material.Wireframe {
			r.state.SetLineWidth(material.WireframeLinewidth * r.targetPixelRatio())
			mode = gpu.LINES
		}
	case object.IsLine():
		lw := material.Linewidth
		if lw == 0 {
			lw = 1
		}
		r.state.SetLineWidth(lw * r.targetPixelRatio())
		switch object.Kind {
		case scene.KindLineSegments:
			mode = gpu.LINES
		case scene.KindLineLoop:
			mode = gpu.LINE_LOOP
		default:
			mode = gpu.LINE_STRIP
		}
	case object.Kind == scene.KindPoints:
		mode = gpu.POINTS
	}

	instances := 1
	if object.Kind == scene.KindInstancedMesh {
		instances = object.Count
	}
	r.drawRange(mode, index, drawStart, drawCount, instances)
	return nil
}

func (r *Renderer) targetPixelRatio() float32 {
	if r.currentRenderTarget != nil {
		return 1
	}
	return r.pixelRatio
}

// drawRange is the buffer renderer: one native draw of count elements starting at start.
func (r *Renderer) drawRange(mode gpu.Enum, index *scene.BufferAttribute, start, count, instances int) {
	if instances <= 0 {
		return
	}
	if index != nil {
		rec := r.attributes.Get(index)
		if rec == nil {
			return
		}
		offset := start * rec.bytesPerElement
		if instances > 1 {
			r.ctx.DrawElementsInstanced(mode, int32(count), rec.typ, offset, int32(instances))
		} else {
			r.ctx.DrawElements(mode, int32(count), rec.typ, offset)
		}
	} else if instances > 1 {
		r.ctx.DrawArraysInstanced(mode, int32(start), int32(count), int32(instances))
	} else {
		r.ctx.DrawArrays(mode, int32(start), int32(count))
	}
	r.info.Update(count, mode, instances)
}

// materialFog returns the fog applied to material, nil when fog is off for it.
func materialFog(sc *scene.Scene, m *scene.Material) *scene.Fog {
	if m.Fog {
		return sc.Fog
	}
	return nil
}

func materialEnvironment(sc *scene.Scene, m *scene.Material) *scene.Texture {
	if m.Kind == scene.MeshStandardMaterial || m.Kind == scene.MeshPhysicalMaterial {
		return sc.Environment
	}
	return nil
}

// getProgram resolves the program of material for object, acquiring a new permutation when
// the derived cache key is not among the material's programs yet.
func (r *Renderer) getProgram(material *scene.Material, sc *scene.Scene, object *scene.Object) (*Program, error) {
	rec := r.properties.Get(material.ID())
	lights := &r.currentRenderState.Lights.State
	shadows := r.currentRenderState.ShadowsArray

	params, err := r.programs.GetParameters(material, lights, shadows, sc, object)
	if err != nil {
		return nil, err
	}
	key := r.programs.GetProgramCacheKey(params)

	if rec.programs == nil {
		rec.programs = make(map[string]*Program)
	}
	rec.environment = materialEnvironment(sc, material)
	rec.fog = materialFog(sc, material)
	rec.envMap = material.EnvMap
	if rec.envMap == nil {
		rec.envMap = rec.environment
	}

	program, ok := rec.programs[key]
	if ok {
		if rec.currentProgram == program && rec.lightsStateVersion == lights.Version {
			r.updateCommonMaterialProperties(material, params)
			return program, nil
		}
	} else {
		rec.uniforms = r.programs.GetUniforms(material)
		program, err = r.programs.AcquireProgram(params, key)
		if err != nil {
			return nil, err
		}
		rec.programs[key] = program
	}
	if rec.uniforms == nil {
		rec.uniforms = r.programs.GetUniforms(material)
	}

	rec.needsLights = usesLights(material)
	rec.lightsStateVersion = lights.Version
	if rec.needsLights {
		setLightUniforms(rec.uniforms, lights)
	}
	rec.currentProgram = program
	rec.uniformsList = nil
	r.updateCommonMaterialProperties(material, params)
	return program, nil
}

func (r *Renderer) updateCommonMaterialProperties(material *scene.Material, p *ProgramParameters) {
	rec := r.properties.Get(material.ID())
	rec.outputSRGB = p.OutputSRGB
	rec.toneMapping = p.ToneMapping
	rec.instancing = p.Instancing
	rec.instancingColor = p.InstancingColor
	rec.skinning = p.Skinning
	rec.morphTargets = p.MorphTargets
	rec.morphNormals = p.MorphNormals
	rec.morphColors = p.MorphColors
	rec.morphTargetsCount = p.MorphTargetsCount
	rec.vertexAlphas = p.VertexAlphas
	rec.vertexTangents = p.VertexTangents
	rec.receiveShadow = p.ShadowMapEnabled
	rec.numClippingPlanes = p.NumClippingPlanes
}

// setLightUniforms points the light entries of u at the current light state.
func setLightUniforms(u UniformValues, st *LightsState) {
	setUniform(u, "ambientLightColor", st.Ambient)
	setUniform(u, "lightProbe", st.Probe)
	setUniform(u, "directionalLights", st.Directional)
	setUniform(u, "directionalLightShadows", st.DirectionalShadow)
	setUniform(u, "directionalShadowMap", st.DirectionalShadowMap)
	setUniform(u, "directionalShadowMatrix", st.DirectionalShadowMatrix)
	setUniform(u, "spotLights", st.Spot)
	setUniform(u, "spotLightShadows", st.SpotShadow)
	setUniform(u, "spotLightMap", st.SpotLightMap)
	setUniform(u, "spotShadowMap", st.SpotShadowMap)
	setUniform(u, "spotLightMatrix", st.SpotLightMatrix)
	setUniform(u, "pointLights", st.Point)
	setUniform(u, "pointLightShadows", st.PointShadow)
	setUniform(u, "pointShadowMap", st.PointShadowMap)
	setUniform(u, "pointShadowMatrix", st.PointShadowMatrix)
	setUniform(u, "hemisphereLights", st.Hemi)
	setUniform(u, "rectAreaLights", st.RectArea)
}

// needsProgramChange compares what the material's current program was built from with the
// live draw inputs.
func (r *Renderer) needsProgramChange(rec *materialRecord, material *scene.Material, sc *scene.Scene, geometry *scene.Geometry, object *scene.Object) bool {
	if rec.currentProgram == nil || material.Version != rec.version {
		return true
	}
	lights := &r.currentRenderState.Lights.State
	switch {
	case rec.needsLights && rec.lightsStateVersion != lights.Version:
		return true
	case rec.outputSRGB != r.programs.outputSRGB():
		return true
	case rec.toneMapping != r.programs.toneMappingFor(material):
		return true
	case rec.instancing != (object.Kind == scene.KindInstancedMesh):
		return true
	case rec.instancing && rec.instancingColor != (object.InstanceColor != nil):
		return true
	case rec.skinning != (object.Kind == scene.KindSkinnedMesh && object.Skeleton != nil):
		return true
	case material.Fog && rec.fog != sc.Fog:
		return true
	case rec.environment != materialEnvironment(sc, material):
		return true
	case material.EnvMap != nil && rec.envMap != material.EnvMap:
		return true
	case rec.numClippingPlanes != len(material.ClippingPlanes):
		return true
	case rec.receiveShadow != (r.cfg.ShadowMapEnabled && len(r.currentRenderState.ShadowsArray) > 0 && object.ReceiveShadow):
		return true
	}
	vertexAlphas := false
	if material.VertexColors {
		if c, ok := geometry.Attributes["color"]; ok && c.Size() == 4 {
			vertexAlphas = true
		}
	}
	vertexTangents := hasAttribute(geometry, "tangent") && (material.NormalMap != nil || material.Anisotropy > 0)
	if rec.vertexAlphas != vertexAlphas || rec.vertexTangents != vertexTangents {
		return true
	}
	morphs := geometry.MorphAttributes
	return rec.morphTargets != (len(morphs["position"]) > 0) ||
		rec.morphNormals != (len(morphs["normal"]) > 0) ||
		rec.morphColors != (len(morphs["color"]) > 0) ||
		rec.morphTargetsCount != morphTargetsCount(geometry)
}

// setProgram makes the program of material current and uploads the uniforms that changed.
func (r *Renderer) setProgram(camera *scene.Camera, sc *scene.Scene, geometry *scene.Geometry, material *scene.Material, object *scene.Object) (*Program, error) {
	// an equirectangular environment is converted by a nested render, before this draw binds anything
	if envMap := material.EnvMap; envMap != nil {
		r.cubeMaps.Get(envMap)
	} else {
		r.cubeMaps.Get(materialEnvironment(sc, material))
	}
	r.textures.ResetTextureUnits()
	rec := r.properties.Get(material.ID())

	program := rec.currentProgram
	if r.needsProgramChange(rec, material, sc, geometry, object) {
		rec.version = material.Version
		var err error
		if program, err = r.getProgram(material, sc, object); err != nil {
			return nil, err
		}
	}

	refreshProgram, refreshMaterial, refreshLights := false, false, false
	pu := program.Uniforms()
	if r.state.UseProgram(program.Native()) {
		refreshProgram, refreshMaterial, refreshLights = true, true, true
	}
	if material.ID() != r.currentMaterialID {
		r.currentMaterialID = material.ID()
		refreshMaterial = true
	}

	if refreshProgram || r.currentCamera != camera {
		if err := r.setCameraUniforms(pu, camera); err != nil {
			return nil, err
		}
		if r.currentCamera != camera {
			r.currentCamera = camera
			refreshMaterial, refreshLights = true, true
		}
	}

	if object.Kind == scene.KindSkinnedMesh && object.Skeleton != nil {
		skeleton := object.Skeleton
		if skeleton.BoneTexture == nil {
			skeleton.ComputeBoneTexture()
		}
		if err := pu.SetValue("bindMatrix", object.BindMatrix, r.textures); err != nil {
			return nil, err
		}
		if err := pu.SetValue("bindMatrixInverse", object.BindMatrixInverse, r.textures); err != nil {
			return nil, err
		}
		if err := pu.SetValue("boneTexture", skeleton.BoneTexture, r.textures); err != nil {
			return nil, err
		}
	}

	if len(geometry.MorphAttributes) > 0 {
		if err := r.morphtargets.Update(object, geometry, pu, r.textures); err != nil {
			return nil, err
		}
	}

	values := rec.uniforms
	if refreshMaterial || refreshLights {
		setUniform(values, "toneMappingExposure", r.cfg.ToneMappingExposure)
		if rec.needsLights {
			setLightUniforms(values, &r.currentRenderState.Lights.State)
		}
		if fog := materialFog(sc, material); fog != nil {
			r.materials.RefreshFogUniforms(values, fog)
		}
		r.materials.RefreshMaterialUniforms(values, material, r.pixelRatio, float32(r.height), r.transmissionRT[camera.ID()], rec.environment)
		if rec.uniformsList == nil {
			rec.uniformsList = SeqWithValue(pu.Seq(), values)
		}
		if err := pu.Upload(rec.uniformsList, values, r.textures); err != nil {
			return nil, fmt.Errorf("material %d: %w", material.ID(), err)
		}
	} else if material.IsShader() && material.UniformsNeedUpdate {
		if rec.uniformsList == nil {
			rec.uniformsList = SeqWithValue(pu.Seq(), values)
		}
		if err := pu.Upload(rec.uniformsList, values, r.textures); err != nil {
			return nil, fmt.Errorf("material %d: %w", material.ID(), err)
		}
	} else if rec.uniformsList != nil {
		// samplers must claim their units again after ResetTextureUnits
		if err := r.rebindSamplers(pu, rec); err != nil {
			return nil, err
		}
	}
	material.UniformsNeedUpdate = false

	for name, v := range map[string]any{
		"modelViewMatrix": object.ModelViewMatrix,
		"normalMatrix":    object.NormalMatrix,
		"modelMatrix":     object.MatrixWorld,
	} {
		if err := pu.SetValue(name, v, r.textures); err != nil {
			return nil, err
		}
	}
	return program, nil
}

// rebindSamplers rebinds the texture uniforms of rec without touching other values.
func (r *Renderer) rebindSamplers(pu *Uniforms, rec *materialRecord) error {
	for _, n := range rec.uniformsList {
		v := rec.uniforms[n.ID()]
		if v == nil {
			continue
		}
		switch v.Value.(type) {
		case *scene.Texture, []*scene.Texture, []any:
			if err := pu.Upload([]uniformNode{n}, rec.uniforms, r.textures); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Renderer) setCameraUniforms(pu *Uniforms, camera *scene.Camera) error {
	values := map[string]any{
		"projectionMatrix": camera.Projection,
		"viewMatrix":       camera.MatrixWorldInverse,
		"cameraPosition":   camera.WorldPosition(),
		"isOrthographic":   camera.Orthographic,
	}
	if r.capabilities.LogarithmicDepthBuffer {
		values["logDepthBufFC"] = float32(2 / (math.Log(float64(camera.Far)+1) / math.Ln2))
	}
	for name, v := range values {
		if err := pu.SetValue(name, v, r.textures); err != nil {
			return err
		}
	}
	return nil
}

// Compile builds every program sc needs without drawing.
func (r *Renderer) Compile(sc *scene.Scene, camera *scene.Camera) error {
	if r.disposed {
		return ErrDisposed
	}
	r.pushRenderState(sc)
	defer r.popRenderState()

	sc.Traverse(func(o *scene.Object) {
		if o.Kind == scene.KindLight && o.Layers.Test(camera.Layers) {
			r.currentRenderState.PushLight(o.Light())
			if o.CastShadow && o.Light().Shadow != nil {
				r.currentRenderState.PushShadow(o.Light())
			}
		}
	})
	r.currentRenderState.SetupLights(r.cfg.UseLegacyLights)

	var firstErr error
	sc.Traverse(func(o *scene.Object) {
		if firstErr != nil || (!o.IsMesh() && !o.IsLine() && o.Kind != scene.KindPoints && o.Kind != scene.KindSprite) {
			return
		}
		materials := o.Materials
		if len(materials) == 0 && o.Material != nil {
			materials = []*scene.Material{o.Material}
		}
		for _, m := range materials {
			if m == nil {
				continue
			}
			rec := r.properties.Get(m.ID())
			rec.version = m.Version
			if _, err := r.getProgram(m, sc, o); err != nil {
				firstErr = err
				return
			}
		}
	})
	return firstErr
}

// DisposeMaterial releases the programs held by m.
func (r *Renderer) DisposeMaterial(m *scene.Material) {
	rec, ok := r.properties.Lookup(m.ID())
	if !ok {
		return
	}
	for _, p := range rec.programs {
		r.programs.ReleaseProgram(p)
	}
	r.properties.Remove(m.ID())
	if r.currentMaterialID == m.ID() {
		r.currentMaterialID = -1
	}
}

// DisposeGeometry releases the buffers, bindings and morph texture of g.
func (r *Renderer) DisposeGeometry(g *scene.Geometry) {
	r.morphtargets.Dispose(g.ID(), r.textures)
	r.geometries.Dispose(g)
}

// DisposeTexture releases the native texture of t and any cube map derived from it.
func (r *Renderer) DisposeTexture(t *scene.Texture) {
	r.cubeMaps.Dispose(t)
	r.textures.DeallocateTexture(t)
}

func (r *Renderer) DisposeRenderTarget(rt *scene.RenderTarget) {
	r.textures.DeallocateRenderTarget(rt)
}

// ForgetLight drops cached light uniforms of a light removed from its scenes.
func (r *Renderer) ForgetLight(l *scene.Light) {
	for _, s := range r.renderStates.states {
		s.Lights.Forget(l.ID())
	}
	if l.Shadow != nil {
		r.shadowMap.DisposeShadow(l.Shadow)
	}
}

// Dispose frees every native resource. The renderer is unusable afterwards.
func (r *Renderer) Dispose() {
	if r.disposed {
		return
	}
	for _, rt := range r.transmissionRT {
		r.textures.DeallocateRenderTarget(rt)
	}
	r.shadowMap.Dispose()
	r.background.Dispose()
	r.cubeMaps.DisposeAll()
	r.renderLists.Dispose()
	r.renderStates.Dispose()
	r.properties.Dispose()
	r.objects.Dispose()
	r.geometries.DisposeAll()
	r.bindingStates.Dispose()
	r.programs.Dispose()
	r.textures.Dispose()
	r.attributes.Dispose()
	r.state.Dispose()
	r.disposed = true
	logger.Log.Info("Renderer disposed")
}
