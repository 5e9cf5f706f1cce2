package scene

import "github.com/go-gl/mathgl/mgl32"

// MaterialKind is the closed set of material variants the renderer knows how to shade.
type MaterialKind int

const (
	MeshBasicMaterial MaterialKind = iota
	MeshLambertMaterial
	MeshPhongMaterial
	MeshToonMaterial
	MeshStandardMaterial
	MeshPhysicalMaterial
	MeshMatcapMaterial
	MeshNormalMaterial
	MeshDepthMaterial
	MeshDistanceMaterial
	PointsMaterial
	LineBasicMaterial
	LineDashedMaterial
	SpriteMaterial
	ShadowMaterial
	ShaderMaterial
	RawShaderMaterial
)

var materialKindNames = [...]string{
	"MeshBasicMaterial", "MeshLambertMaterial", "MeshPhongMaterial", "MeshToonMaterial",
	"MeshStandardMaterial", "MeshPhysicalMaterial", "MeshMatcapMaterial", "MeshNormalMaterial",
	"MeshDepthMaterial", "MeshDistanceMaterial", "PointsMaterial", "LineBasicMaterial",
	"LineDashedMaterial", "SpriteMaterial", "ShadowMaterial", "ShaderMaterial", "RawShaderMaterial",
}

func (k MaterialKind) String() string {
	if int(k) < len(materialKindNames) {
		return materialKindNames[k]
	}
	return "UnknownMaterial"
}

// Uniform is a user supplied shader value for ShaderMaterial.
type Uniform struct {
	Value any
}

// Material carries every parameter any MaterialKind reads. Fields a kind does not use are ignored.
type Material struct {
	id      int
	Name    string
	Kind    MaterialKind
	Version int
	Visible bool

	// Blending and depth
	Transparent        bool
	Opacity            float32
	Blending           Blending
	BlendSrc           BlendFactor
	BlendDst           BlendFactor
	BlendEquation      BlendEquation
	BlendSrcAlpha      BlendFactor
	BlendDstAlpha      BlendFactor
	BlendEquationAlpha BlendEquation
	BlendAlphaSet      bool
	BlendColor         mgl32.Vec3
	BlendAlpha         float32
	PremultipliedAlpha bool
	DepthTest          bool
	DepthWrite         bool
	DepthFunc          DepthMode
	ColorWrite         bool

	StencilWrite     bool
	StencilWriteMask uint32
	StencilFunc      CompareFunc
	StencilRef       int32
	StencilFuncMask  uint32
	StencilFail      StencilOp
	StencilZFail     StencilOp
	StencilZPass     StencilOp

	PolygonOffset       bool
	PolygonOffsetFactor float32
	PolygonOffsetUnits  float32

	Side            Side
	ShadowSide      *Side
	AlphaTest       float32
	AlphaToCoverage bool
	AlphaHash       bool
	Dithering       bool
	ClippingPlanes  []mgl32.Vec4
	ClipShadows     bool

	// Surface
	Color              mgl32.Vec3
	Emissive           mgl32.Vec3
	EmissiveIntensity  float32
	Specular           mgl32.Vec3
	Shininess          float32
	Roughness          float32
	Metalness          float32
	Reflectivity       float32
	RefractionRatio    float32
	FlatShading        bool
	VertexColors       bool
	Fog                bool
	ToneMapped         bool
	Wireframe          bool
	WireframeLinewidth float32

	// Maps
	Map               *Texture
	AlphaMap          *Texture
	AOMap             *Texture
	AOMapIntensity    float32
	LightMap          *Texture
	LightMapIntensity float32
	EmissiveMap       *Texture
	BumpMap           *Texture
	BumpScale         float32
	NormalMap         *Texture
	NormalMapType     NormalMapType
	NormalScale       mgl32.Vec2
	DisplacementMap   *Texture
	DisplacementScale float32
	DisplacementBias  float32
	RoughnessMap      *Texture
	MetalnessMap      *Texture
	SpecularMap       *Texture
	EnvMap            *Texture
	EnvMapIntensity   float32
	EnvMapRotation    mgl32.Mat3
	GradientMap       *Texture
	Matcap            *Texture
	DepthPacking      DepthPacking

	// Physical
	Clearcoat             float32
	ClearcoatRoughness    float32
	ClearcoatMap          *Texture
	ClearcoatRoughnessMap *Texture
	ClearcoatNormalMap    *Texture
	ClearcoatNormalScale  mgl32.Vec2
	IOR                   float32
	SpecularIntensity     float32
	SpecularColor         mgl32.Vec3
	Sheen                 float32
	SheenColor            mgl32.Vec3
	SheenRoughness        float32
	Transmission          float32
	TransmissionMap       *Texture
	Thickness             float32
	AttenuationDistance   float32
	AttenuationColor      mgl32.Vec3
	Iridescence           float32
	IridescenceIOR        float32
	Anisotropy            float32
	AnisotropyRotation    float32
	Dispersion            float32

	// Points, lines and sprites
	Size            float32
	SizeAttenuation bool
	Linewidth       float32
	DashSize        float32
	GapSize         float32
	DashScale       float32
	Rotation        float32

	// Distance material
	ReferencePosition mgl32.Vec3
	NearDistance      float32
	FarDistance       float32

	// Shader materials
	ShaderID              string
	VertexShader          string
	FragmentShader        string
	Uniforms              map[string]*Uniform
	Defines               map[string]string
	UniformsNeedUpdate    bool
	CustomProgramCacheKey func() string
}

// NewMaterial returns a material of the given kind with the conventional defaults.
func NewMaterial(kind MaterialKind) *Material {
	return &Material{
		id:                   NextID(),
		Kind:                 kind,
		Visible:              true,
		Opacity:              1,
		Blending:             NormalBlending,
		BlendSrc:             SrcAlphaFactor,
		BlendDst:             OneMinusSrcAlphaFactor,
		BlendEquation:        AddEquation,
		DepthTest:            true,
		DepthWrite:           true,
		DepthFunc:            LessEqualDepth,
		ColorWrite:           true,
		StencilWriteMask:     0xff,
		StencilFunc:          AlwaysCompare,
		StencilFuncMask:      0xff,
		StencilFail:          KeepStencilOp,
		StencilZFail:         KeepStencilOp,
		StencilZPass:         KeepStencilOp,
		Side:                 FrontSide,
		Color:                mgl32.Vec3{1, 1, 1},
		EmissiveIntensity:    1,
		Specular:             mgl32.Vec3{0.067, 0.067, 0.067},
		Shininess:            30,
		Roughness:            1,
		Reflectivity:         1,
		RefractionRatio:      0.98,
		Fog:                  true,
		ToneMapped:           true,
		WireframeLinewidth:   1,
		AOMapIntensity:       1,
		LightMapIntensity:    1,
		BumpScale:            1,
		NormalScale:          mgl32.Vec2{1, 1},
		DisplacementScale:    1,
		EnvMapIntensity:      1,
		EnvMapRotation:       mgl32.Ident3(),
		DepthPacking:         BasicDepthPacking,
		ClearcoatNormalScale: mgl32.Vec2{1, 1},
		IOR:                  1.5,
		SpecularIntensity:    1,
		SpecularColor:        mgl32.Vec3{1, 1, 1},
		SheenRoughness:       1,
		AttenuationDistance:  float32(1e30),
		AttenuationColor:     mgl32.Vec3{1, 1, 1},
		IridescenceIOR:       1.3,
		Size:                 1,
		SizeAttenuation:      true,
		Linewidth:            1,
		DashSize:             3,
		GapSize:              1,
		DashScale:            1,
		NearDistance:         1,
		FarDistance:          1000,
		Uniforms:             map[string]*Uniform{},
		Defines:              map[string]string{},
	}
}

// NewShaderMaterial returns a material drawn with caller supplied GLSL.
func NewShaderMaterial(vertex, fragment string, uniforms map[string]*Uniform) *Material {
	m := NewMaterial(ShaderMaterial)
	m.VertexShader, m.FragmentShader = vertex, fragment
	if uniforms != nil {
		m.Uniforms = uniforms
	}
	return m
}

func (m *Material) ID() int { return m.id }

// NeedsUpdate forces the renderer to re-derive the program for this material.
func (m *Material) NeedsUpdate() { m.Version++ }

// Clone copies the material under a new id.
func (m *Material) Clone() *Material {
	c := *m
	c.id = NextID()
	c.Version = 0
	c.Uniforms = make(map[string]*Uniform, len(m.Uniforms))
	for k, v := range m.Uniforms {
		u := *v
		c.Uniforms[k] = &u
	}
	c.Defines = make(map[string]string, len(m.Defines))
	for k, v := range m.Defines {
		c.Defines[k] = v
	}
	return &c
}

// IsShader reports whether the material supplies its own GLSL.
func (m *Material) IsShader() bool {
	return m.Kind == ShaderMaterial || m.Kind == RawShaderMaterial
}
