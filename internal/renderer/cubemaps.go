package renderer

import (
	"GopherScene/internal/logger"
	"GopherScene/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// cubeFaces orients a 90 degree camera at each cube face, in +X -X +Y -Y +Z -Z order.
var cubeFaces = [6]struct{ dir, up mgl32.Vec3 }{
	{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, -1, 0}},
	{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, -1, 0}},
	{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 0, 1}},
	{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{0, 0, -1}},
	{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, -1, 0}},
	{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, -1, 0}},
}

// newCubeCameras returns one camera per cube face placed at position.
func newCubeCameras(position mgl32.Vec3, near, far float32) [6]*scene.Camera {
	var cams [6]*scene.Camera
	for i, f := range cubeFaces {
		c := scene.NewPerspectiveCamera(90, 1, near, far)
		c.Position = position
		view := mgl32.LookAtV(position, position.Add(f.dir), f.up)
		c.Rotation = mgl32.Mat4ToQuat(view.Inv())
		c.UpdateMatrixWorld()
		cams[i] = c
	}
	return cams
}

func isEquirect(m scene.Mapping) bool {
	return m == scene.EquirectangularReflectionMapping || m == scene.EquirectangularRefractionMapping
}

// envMapMode is the mapping shaders sample t with once CubeMaps converted it.
func envMapMode(t *scene.Texture) scene.Mapping {
	switch t.Mapping {
	case scene.EquirectangularReflectionMapping:
		return scene.CubeReflectionMapping
	case scene.EquirectangularRefractionMapping:
		return scene.CubeRefractionMapping
	}
	return t.Mapping
}

type cubeEntry struct {
	rt      *scene.RenderTarget
	version int
}

// CubeMaps converts equirectangular environment textures into cube render targets.
type CubeMaps struct {
	r          *Renderer
	entries    map[int]*cubeEntry
	converting bool
}

func NewCubeMaps(r *Renderer) *CubeMaps {
	return &CubeMaps{r: r, entries: make(map[int]*cubeEntry)}
}

// Get returns the texture shaders should sample for t. Textures that are not equirectangular
// are returned as is. An equirectangular texture whose image is not there yet yields nil.
func (c *CubeMaps) Get(t *scene.Texture) *scene.Texture {
	if t == nil || !isEquirect(t.Mapping) {
		return t
	}
	e, ok := c.entries[t.ID()]
	if ok && e.version == t.Version {
		return e.rt.Texture()
	}
	if t.Source == nil || t.Source.Height == 0 || c.converting {
		if ok {
			return e.rt.Texture()
		}
		return nil
	}

	size := t.Source.Height / 2
	if max := c.r.capabilities.MaxCubemapSize; max > 0 && size > max {
		size = max
	}
	if !ok {
		opts := scene.DefaultRenderTargetOptions()
		opts.GenerateMipmaps = true
		opts.MinFilter = scene.LinearMipmapLinearFilter
		opts.ColorSpace = t.ColorSpace
		if t.Type == scene.FloatType || t.Type == scene.HalfFloatType {
			opts.Type = scene.HalfFloatType
		}
		e = &cubeEntry{rt: scene.NewCubeRenderTarget(size, opts)}
		c.entries[t.ID()] = e
	} else {
		e.rt.SetSize(size, size, 1)
	}
	e.rt.Texture().Mapping = envMapMode(t)

	if err := c.fromEquirect(e.rt, t); err != nil {
		logger.Log.Error("Failed to convert equirectangular texture",
			zap.Int("texture", t.ID()),
			zap.Error(err))
		return nil
	}
	e.version = t.Version
	logger.Log.Debug("Converted equirectangular texture to cube map",
		zap.Int("texture", t.ID()),
		zap.Int("size", size))
	return e.rt.Texture()
}

// fromEquirect renders the six faces of rt from inside a box textured with t. The draw
// target in effect before the call is restored.
func (c *CubeMaps) fromEquirect(rt *scene.RenderTarget, t *scene.Texture) error {
	r := c.r
	src := ShaderLib["equirect"]
	mat := scene.NewShaderMaterial(src.Vertex, src.Fragment, map[string]*scene.Uniform(src.Uniforms()))
	mat.Name = "CubemapFromEquirect"
	mat.Uniforms["tEquirect"].Value = t
	mat.Side = scene.BackSide
	mat.Blending = scene.NoBlending
	mat.ToneMapped = false

	mesh := scene.NewMesh(scene.NewBoxGeometry(5, 5, 5), mat)
	mesh.FrustumCulled = false
	sc := scene.NewScene()
	sc.Add(mesh)

	prev, prevFace, prevMip := r.currentRenderTarget, r.currentActiveCubeFace, r.currentActiveMipmapLevel
	tex := rt.Texture()
	genMipmaps := tex.GenerateMipmaps
	c.converting = true
	defer func() {
		c.converting = false
		tex.GenerateMipmaps = genMipmaps
		r.DisposeMaterial(mat)
		r.DisposeGeometry(mesh.Geometry)
	}()

	// mipmaps once, after the last face
	tex.GenerateMipmaps = false
	for i, cam := range newCubeCameras(mgl32.Vec3{}, 0.1, 10) {
		if i == 5 {
			tex.GenerateMipmaps = genMipmaps
		}
		if err := r.SetRenderTarget(rt, i, 0); err != nil {
			return err
		}
		r.Clear(true, true, true)
		if err := r.Render(sc, cam); err != nil {
			return err
		}
	}
	return r.SetRenderTarget(prev, prevFace, prevMip)
}

// Dispose releases the cube derived from t.
func (c *CubeMaps) Dispose(t *scene.Texture) {
	e, ok := c.entries[t.ID()]
	if !ok {
		return
	}
	c.r.textures.DeallocateRenderTarget(e.rt)
	delete(c.entries, t.ID())
}

func (c *CubeMaps) DisposeAll() {
	for id, e := range c.entries {
		c.r.textures.DeallocateRenderTarget(e.rt)
		delete(c.entries, id)
	}
}
