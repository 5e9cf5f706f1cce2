package scene

// Portable enums. The renderer translates them to native values.

type Side int

const (
	FrontSide Side = iota
	BackSide
	DoubleSide
)

type Blending int

const (
	NoBlending Blending = iota
	NormalBlending
	AdditiveBlending
	SubtractiveBlending
	MultiplyBlending
	CustomBlending
)

type BlendEquation int

const (
	AddEquation BlendEquation = iota + 100
	SubtractEquation
	ReverseSubtractEquation
	MinEquation
	MaxEquation
)

type BlendFactor int

const (
	ZeroFactor BlendFactor = iota + 200
	OneFactor
	SrcColorFactor
	OneMinusSrcColorFactor
	SrcAlphaFactor
	OneMinusSrcAlphaFactor
	DstAlphaFactor
	OneMinusDstAlphaFactor
	DstColorFactor
	OneMinusDstColorFactor
	SrcAlphaSaturateFactor
	ConstantColorFactor
	OneMinusConstantColorFactor
	ConstantAlphaFactor
	OneMinusConstantAlphaFactor
)

type DepthMode int

const (
	NeverDepth DepthMode = iota
	AlwaysDepth
	LessDepth
	LessEqualDepth
	EqualDepth
	GreaterEqualDepth
	GreaterDepth
	NotEqualDepth
)

// CompareFunc is used by stencil tests and depth texture comparison.
type CompareFunc int

const (
	NoCompare CompareFunc = iota
	NeverCompare
	LessCompare
	EqualCompare
	LessEqualCompare
	GreaterCompare
	NotEqualCompare
	GreaterEqualCompare
	AlwaysCompare
)

type StencilOp int

const (
	KeepStencilOp StencilOp = iota
	ZeroStencilOp
	ReplaceStencilOp
	IncrementStencilOp
	DecrementStencilOp
	IncrementWrapStencilOp
	DecrementWrapStencilOp
	InvertStencilOp
)

type Wrapping int

const (
	RepeatWrapping Wrapping = iota + 1000
	ClampToEdgeWrapping
	MirroredRepeatWrapping
)

type Filter int

const (
	NearestFilter Filter = iota + 1003
	NearestMipmapNearestFilter
	NearestMipmapLinearFilter
	LinearFilter
	LinearMipmapNearestFilter
	LinearMipmapLinearFilter
)

type DataType int

const (
	UnsignedByteType DataType = iota + 1009
	ByteType
	ShortType
	UnsignedShortType
	IntType
	UnsignedIntType
	FloatType
	HalfFloatType
	UnsignedShort4444Type
	UnsignedShort5551Type
	UnsignedInt248Type
	UnsignedInt5999Type
)

type Format int

const (
	AlphaFormat Format = iota + 1021
	RGBFormat
	RGBAFormat
	LuminanceFormat
	DepthFormat
	DepthStencilFormat
	RedFormat
	RedIntegerFormat
	RGFormat
	RGIntegerFormat
	RGBAIntegerFormat

	RGB_S3TC_DXT1_Format Format = iota + 2000
	RGBA_S3TC_DXT1_Format
	RGBA_S3TC_DXT3_Format
	RGBA_S3TC_DXT5_Format
	RGB_ETC2_Format
	RGBA_ETC2_EAC_Format
	RGBA_ASTC_4x4_Format
	RGBA_BPTC_Format
)

// Compressed reports whether the format is a block-compressed format.
func (f Format) Compressed() bool {
	return f >= RGB_S3TC_DXT1_Format && f <= RGBA_BPTC_Format
}

type ColorSpace string

const (
	NoColorSpace     ColorSpace = ""
	SRGBColorSpace   ColorSpace = "srgb"
	LinearColorSpace ColorSpace = "srgb-linear"
)

type ToneMapping int

const (
	NoToneMapping ToneMapping = iota
	LinearToneMapping
	ReinhardToneMapping
	CineonToneMapping
	ACESFilmicToneMapping
	AgXToneMapping
	NeutralToneMapping
	CustomToneMapping
)

type ShadowMapType int

const (
	BasicShadowMap ShadowMapType = iota
	PCFShadowMap
	PCFSoftShadowMap
	VSMShadowMap
)

type Usage int

const (
	StaticDrawUsage Usage = iota + 35044
	DynamicDrawUsage
	StreamDrawUsage
)

type Mapping int

const (
	UVMapping Mapping = iota + 300
	CubeReflectionMapping
	CubeRefractionMapping
	EquirectangularReflectionMapping
	EquirectangularRefractionMapping
	CubeUVReflectionMapping
)

type DepthPacking int

const (
	BasicDepthPacking DepthPacking = iota + 3200
	RGBADepthPacking
)

type NormalMapType int

const (
	TangentSpaceNormalMap NormalMapType = iota
	ObjectSpaceNormalMap
)
