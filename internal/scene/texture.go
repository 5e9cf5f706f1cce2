package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Source is decoded pixel data shared between texture wrappers.
// Bump Version after mutating Data in place.
type Source struct {
	id      int
	Data    []byte
	Width   int
	Height  int
	Depth   int
	Version int
}

func NewSource(data []byte, width, height int) *Source {
	return &Source{id: NextID(), Data: data, Width: width, Height: height, Depth: 1}
}

func (s *Source) ID() int      { return s.id }
func (s *Source) NeedsUpdate() { s.Version++ }

type TextureKind int

const (
	Texture2D TextureKind = iota
	Texture3D
	Texture2DArray
	TextureCube
	DepthTexture
	CompressedTexture
)

type Texture struct {
	id   int
	Name string
	Kind TextureKind

	Source  *Source
	Images  []*Source // cube faces +X -X +Y -Y +Z -Z
	Mipmaps []*Source

	Mapping        Mapping
	Channel        int
	WrapS          Wrapping
	WrapT          Wrapping
	WrapR          Wrapping
	MagFilter      Filter
	MinFilter      Filter
	Anisotropy     int
	Format         Format
	InternalFormat string
	Type           DataType
	ColorSpace     ColorSpace

	FlipY            bool
	PremultiplyAlpha bool
	UnpackAlignment  int
	GenerateMipmaps  bool
	CompareFunction  CompareFunc

	Offset           mgl32.Vec2
	Repeat           mgl32.Vec2
	Center           mgl32.Vec2
	Rotation         float32
	MatrixAutoUpdate bool
	Matrix           mgl32.Mat3

	IsRenderTargetTexture bool
	Version               int
}

// NewTexture wraps a 2D source with default sampling.
func NewTexture(src *Source) *Texture {
	return &Texture{
		id:               NextID(),
		Kind:             Texture2D,
		Source:           src,
		Mapping:          UVMapping,
		WrapS:            ClampToEdgeWrapping,
		WrapT:            ClampToEdgeWrapping,
		WrapR:            ClampToEdgeWrapping,
		MagFilter:        LinearFilter,
		MinFilter:        LinearMipmapLinearFilter,
		Anisotropy:       1,
		Format:           RGBAFormat,
		Type:             UnsignedByteType,
		ColorSpace:       NoColorSpace,
		FlipY:            true,
		UnpackAlignment:  4,
		GenerateMipmaps:  true,
		Repeat:           mgl32.Vec2{1, 1},
		MatrixAutoUpdate: true,
		Matrix:           mgl32.Ident3(),
		Version:          boolVersion(src != nil),
	}
}

// NewCubeTexture wraps six face sources.
func NewCubeTexture(faces []*Source) *Texture {
	t := NewTexture(nil)
	t.Kind = TextureCube
	t.Images = faces
	t.Mapping = CubeReflectionMapping
	t.FlipY = false
	t.Version = boolVersion(len(faces) == 6)
	return t
}

// NewDataTexture3D wraps a volume; Source.Depth is the slice count.
func NewDataTexture3D(src *Source) *Texture {
	t := NewTexture(src)
	t.Kind = Texture3D
	t.MagFilter, t.MinFilter = NearestFilter, NearestFilter
	t.FlipY, t.GenerateMipmaps, t.UnpackAlignment = false, false, 1
	return t
}

// NewDataTextureArray wraps a stack of equally sized layers.
func NewDataTextureArray(src *Source) *Texture {
	t := NewDataTexture3D(src)
	t.Kind = Texture2DArray
	return t
}

// NewDepthTexture returns a depth attachment texture.
func NewDepthTexture(width, height int, typ DataType) *Texture {
	t := NewTexture(&Source{id: NextID(), Width: width, Height: height, Depth: 1})
	t.Kind = DepthTexture
	t.Format = DepthFormat
	t.Type = typ
	t.MagFilter, t.MinFilter = NearestFilter, NearestFilter
	t.FlipY, t.GenerateMipmaps = false, false
	t.Version = 0
	return t
}

// NewCompressedTexture wraps precompressed mip levels of a compressed format.
func NewCompressedTexture(mipmaps []*Source, width, height int, format Format) *Texture {
	t := NewTexture(&Source{id: NextID(), Width: width, Height: height, Depth: 1})
	t.Kind = CompressedTexture
	t.Mipmaps = mipmaps
	t.Format = format
	t.FlipY, t.GenerateMipmaps = false, false
	t.Version = 1
	return t
}

func boolVersion(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (t *Texture) ID() int { return t.id }

// NeedsUpdate schedules a re-upload on the next bind. The backing sources are marked too.
func (t *Texture) NeedsUpdate() {
	t.Version++
	if t.Source != nil {
		t.Source.Version++
	}
	for _, img := range t.Images {
		if img != nil {
			img.Version++
		}
	}
}

// Clone returns a wrapper with its own sampling parameters sharing the same source.
func (t *Texture) Clone() *Texture {
	c := *t
	c.id = NextID()
	c.Images = append([]*Source(nil), t.Images...)
	c.Mipmaps = append([]*Source(nil), t.Mipmaps...)
	return &c
}

// Size returns the level 0 dimensions.
func (t *Texture) Size() (int, int, int) {
	switch {
	case t.Source != nil:
		return t.Source.Width, t.Source.Height, t.Source.Depth
	case len(t.Images) > 0 && t.Images[0] != nil:
		return t.Images[0].Width, t.Images[0].Height, 1
	}
	return 0, 0, 0
}

// UpdateMatrix rebuilds the uv transform from offset, repeat, rotation and center.
func (t *Texture) UpdateMatrix() {
	c := float32(math.Cos(float64(t.Rotation)))
	s := float32(math.Sin(float64(t.Rotation)))
	sx, sy := t.Repeat.X(), t.Repeat.Y()
	cx, cy := t.Center.X(), t.Center.Y()
	tx, ty := t.Offset.X(), t.Offset.Y()
	// column major
	t.Matrix = mgl32.Mat3{
		sx * c, -sy * s, 0,
		sx * s, sy * c, 0,
		-sx*(c*cx+s*cy) + cx + tx, -sy*(-s*cx+c*cy) + cy + ty, 1,
	}
}

type RenderTargetKind int

const (
	RenderTarget2D RenderTargetKind = iota
	RenderTargetCube
	RenderTarget3D
	RenderTargetArray
)

// RenderTarget is an off-screen draw destination.
type RenderTarget struct {
	id            int
	Kind          RenderTargetKind
	Width         int
	Height        int
	Depth         int
	Textures      []*Texture
	DepthBuffer   bool
	StencilBuffer bool
	DepthTexture  *Texture
	Samples       int
	ResolveDepth  bool
	Viewport      mgl32.Vec4
	Scissor       mgl32.Vec4
	ScissorTest   bool
}

// RenderTargetOptions configures NewRenderTarget.
type RenderTargetOptions struct {
	Format          Format
	Type            DataType
	MinFilter       Filter
	MagFilter       Filter
	GenerateMipmaps bool
	DepthBuffer     bool
	StencilBuffer   bool
	DepthTexture    *Texture
	Samples         int
	Count           int
	ColorSpace      ColorSpace
}

// DefaultRenderTargetOptions has a single RGBA8 color attachment and a depth buffer.
func DefaultRenderTargetOptions() RenderTargetOptions {
	return RenderTargetOptions{
		Format:      RGBAFormat,
		Type:        UnsignedByteType,
		MinFilter:   LinearFilter,
		MagFilter:   LinearFilter,
		DepthBuffer: true,
		Count:       1,
	}
}

func NewRenderTarget(width, height int, opts RenderTargetOptions) *RenderTarget {
	if opts.Count < 1 {
		opts.Count = 1
	}
	rt := &RenderTarget{
		id:            NextID(),
		Kind:          RenderTarget2D,
		Width:         width,
		Height:        height,
		Depth:         1,
		DepthBuffer:   opts.DepthBuffer,
		StencilBuffer: opts.StencilBuffer,
		DepthTexture:  opts.DepthTexture,
		Samples:       opts.Samples,
		ResolveDepth:  true,
		Viewport:      mgl32.Vec4{0, 0, float32(width), float32(height)},
		Scissor:       mgl32.Vec4{0, 0, float32(width), float32(height)},
	}
	for i := 0; i < opts.Count; i++ {
		t := NewTexture(&Source{id: NextID(), Width: width, Height: height, Depth: 1})
		t.Format, t.Type = opts.Format, opts.Type
		t.MinFilter, t.MagFilter = opts.MinFilter, opts.MagFilter
		t.GenerateMipmaps = opts.GenerateMipmaps
		t.ColorSpace = opts.ColorSpace
		t.FlipY = false
		t.IsRenderTargetTexture = true
		t.Version = 0
		rt.Textures = append(rt.Textures, t)
	}
	return rt
}

// NewCubeRenderTarget returns a render target with six square faces.
func NewCubeRenderTarget(size int, opts RenderTargetOptions) *RenderTarget {
	rt := NewRenderTarget(size, size, opts)
	rt.Kind = RenderTargetCube
	for _, t := range rt.Textures {
		t.Kind = TextureCube
		t.Mapping = CubeReflectionMapping
	}
	return rt
}

func (rt *RenderTarget) ID() int { return rt.id }

// Texture returns the first color attachment.
func (rt *RenderTarget) Texture() *Texture {
	if len(rt.Textures) == 0 {
		return nil
	}
	return rt.Textures[0]
}

// SetSize resizes the target. The renderer reallocates native storage on next use.
func (rt *RenderTarget) SetSize(width, height, depth int) {
	if rt.Width == width && rt.Height == height && rt.Depth == depth {
		return
	}
	rt.Width, rt.Height, rt.Depth = width, height, depth
	for _, t := range rt.Textures {
		if t.Source != nil {
			t.Source.Width, t.Source.Height, t.Source.Depth = width, height, depth
		}
	}
	if rt.DepthTexture != nil && rt.DepthTexture.Source != nil {
		rt.DepthTexture.Source.Width, rt.DepthTexture.Source.Height = width, height
	}
	rt.Viewport = mgl32.Vec4{0, 0, float32(width), float32(height)}
	rt.Scissor = rt.Viewport
}
