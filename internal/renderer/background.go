package renderer

import "GopherScene/internal/scene"

// backgroundMesh is one of the two lazily built background drawables.
type backgroundMesh struct {
	mesh     *scene.Object
	material *scene.Material

	// what the material was last prepared for
	texture     *scene.Texture
	version     int
	toneMapping scene.ToneMapping
}

// Background clears the frame and queues the scene background texture, if any, as the
// first opaque item.
type Background struct {
	r     *Renderer
	box   *backgroundMesh
	plane *backgroundMesh
}

func NewBackground(r *Renderer) *Background {
	return &Background{r: r}
}

func backgroundMaterial(shaderID string) *scene.Material {
	src := ShaderLib[shaderID]
	m := scene.NewShaderMaterial(src.Vertex, src.Fragment, map[string]*scene.Uniform(src.Uniforms()))
	m.Name = "Background" + shaderID
	m.ShaderID = shaderID
	m.DepthTest = false
	m.DepthWrite = false
	m.Fog = false
	return m
}

// Render clears according to the renderer settings and the scene background, then
// queues the background mesh at the front of list.
func (b *Background) Render(list *RenderList, sc *scene.Scene, camera *scene.Camera) error {
	r := b.r
	forceClear := false
	background := sc.BackgroundTexture
	if background != nil && isEquirect(background.Mapping) {
		background = r.cubeMaps.Get(background)
	}

	switch {
	case sc.BackgroundColor != nil:
		c := *sc.BackgroundColor
		r.state.Color.SetClear(c[0], c[1], c[2], 1, r.cfg.PremultipliedAlpha)
		forceClear = true
	default:
		r.restoreClearColor()
	}
	if r.cfg.AutoClear || forceClear {
		r.Clear(r.cfg.AutoClearColor, r.cfg.AutoClearDepth, r.cfg.AutoClearStencil)
	}
	if background == nil {
		return nil
	}

	if background.Kind == scene.TextureCube {
		bm := b.cube()
		u := bm.material.Uniforms
		u["envMap"].Value = background
		flip := float32(1)
		if !background.IsRenderTargetTexture {
			flip = -1
		}
		u["flipEnvMap"].Value = flip
		u["backgroundBlurriness"].Value = sc.BackgroundBlurriness
		u["backgroundIntensity"].Value = sc.BackgroundIntensity
		u["backgroundRotation"].Value = sc.BackgroundRotation.Transpose()
		b.track(bm, background)
		bm.material.UniformsNeedUpdate = true

		// the box follows the camera so it never clips
		bm.mesh.Position = camera.WorldPosition()
		bm.mesh.UpdateMatrixWorld()
		list.Unshift(bm.mesh, bm.mesh.Geometry, bm.material, 0, 0, nil)
		return nil
	}

	bm := b.flat()
	u := bm.material.Uniforms
	u["t2D"].Value = background
	u["backgroundIntensity"].Value = sc.BackgroundIntensity
	if background.MatrixAutoUpdate {
		background.UpdateMatrix()
	}
	u["uvTransform"].Value = background.Matrix
	b.track(bm, background)
	bm.material.UniformsNeedUpdate = true
	list.Unshift(bm.mesh, bm.mesh.Geometry, bm.material, 0, 0, nil)
	return nil
}

// track forces a program rebuild when the texture, its version or tone mapping changed.
func (b *Background) track(bm *backgroundMesh, t *scene.Texture) {
	toneMapping := b.r.programs.toneMappingFor(bm.material)
	if bm.texture != t || bm.version != t.Version || bm.toneMapping != toneMapping {
		bm.material.NeedsUpdate()
		bm.texture = t
		bm.version = t.Version
		bm.toneMapping = toneMapping
	}
}

func (b *Background) cube() *backgroundMesh {
	if b.box == nil {
		m := backgroundMaterial("backgroundCube")
		m.Side = scene.BackSide
		mesh := scene.NewMesh(scene.NewBoxGeometry(1, 1, 1), m)
		mesh.FrustumCulled = false
		b.box = &backgroundMesh{mesh: mesh, material: m}
	}
	return b.box
}

func (b *Background) flat() *backgroundMesh {
	if b.plane == nil {
		m := backgroundMaterial("background")
		m.Side = scene.FrontSide
		mesh := scene.NewMesh(scene.NewPlaneGeometry(2, 2), m)
		mesh.FrustumCulled = false
		b.plane = &backgroundMesh{mesh: mesh, material: m}
	}
	return b.plane
}

// Dispose releases the background meshes.
func (b *Background) Dispose() {
	for _, bm := range []*backgroundMesh{b.box, b.plane} {
		if bm == nil {
			continue
		}
		b.r.DisposeMaterial(bm.material)
		b.r.DisposeGeometry(bm.mesh.Geometry)
	}
	b.box, b.plane = nil, nil
}
