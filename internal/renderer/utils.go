package renderer

import (
	"GopherScene/internal/gpu"
	"GopherScene/internal/scene"
)

// Utils translates portable scene enums into native values.
type Utils struct {
	ext *Extensions
}

func NewUtils(ext *Extensions) *Utils {
	return &Utils{ext: ext}
}

func (u *Utils) Wrapping(w scene.Wrapping) gpu.Enum {
	switch w {
	case scene.RepeatWrapping:
		return gpu.REPEAT
	case scene.MirroredRepeatWrapping:
		return gpu.MIRRORED_REPEAT
	}
	return gpu.CLAMP_TO_EDGE
}

func (u *Utils) Filter(f scene.Filter) gpu.Enum {
	switch f {
	case scene.NearestFilter:
		return gpu.NEAREST
	case scene.NearestMipmapNearestFilter:
		return gpu.NEAREST_MIPMAP_NEAREST
	case scene.NearestMipmapLinearFilter:
		return gpu.NEAREST_MIPMAP_LINEAR
	case scene.LinearMipmapNearestFilter:
		return gpu.LINEAR_MIPMAP_NEAREST
	case scene.LinearMipmapLinearFilter:
		return gpu.LINEAR_MIPMAP_LINEAR
	}
	return gpu.LINEAR
}

func (u *Utils) DataType(t scene.DataType) gpu.Enum {
	switch t {
	case scene.UnsignedByteType:
		return gpu.UNSIGNED_BYTE
	case scene.ByteType:
		return gpu.BYTE
	case scene.ShortType:
		return gpu.SHORT
	case scene.UnsignedShortType:
		return gpu.UNSIGNED_SHORT
	case scene.IntType:
		return gpu.INT
	case scene.UnsignedIntType:
		return gpu.UNSIGNED_INT
	case scene.FloatType:
		return gpu.FLOAT
	case scene.HalfFloatType:
		return gpu.HALF_FLOAT
	case scene.UnsignedShort4444Type:
		return gpu.UNSIGNED_SHORT_4_4_4_4
	case scene.UnsignedShort5551Type:
		return gpu.UNSIGNED_SHORT_5_5_5_1
	case scene.UnsignedInt248Type:
		return gpu.UNSIGNED_INT_24_8
	case scene.UnsignedInt5999Type:
		return gpu.UNSIGNED_INT_5_9_9_9_REV
	}
	return 0
}

// Format returns the client pixel format. Compressed formats without driver support return 0.
func (u *Utils) Format(f scene.Format) gpu.Enum {
	switch f {
	case scene.AlphaFormat:
		return gpu.ALPHA
	case scene.RGBFormat:
		return gpu.RGB
	case scene.RGBAFormat:
		return gpu.RGBA
	case scene.LuminanceFormat:
		return gpu.LUMINANCE
	case scene.DepthFormat:
		return gpu.DEPTH_COMPONENT
	case scene.DepthStencilFormat:
		return gpu.DEPTH_STENCIL
	case scene.RedFormat:
		return gpu.RED
	case scene.RedIntegerFormat:
		return gpu.RED_INTEGER
	case scene.RGFormat:
		return gpu.RG
	case scene.RGIntegerFormat:
		return gpu.RG_INTEGER
	case scene.RGBAIntegerFormat:
		return gpu.RGBA_INTEGER
	}
	return u.compressedFormat(f)
}

func (u *Utils) compressedFormat(f scene.Format) gpu.Enum {
	switch f {
	case scene.RGB_S3TC_DXT1_Format, scene.RGBA_S3TC_DXT1_Format, scene.RGBA_S3TC_DXT3_Format, scene.RGBA_S3TC_DXT5_Format:
		if !u.ext.Get("GL_EXT_texture_compression_s3tc") {
			return 0
		}
		return map[scene.Format]gpu.Enum{
			scene.RGB_S3TC_DXT1_Format:  gpu.COMPRESSED_RGB_S3TC_DXT1_EXT,
			scene.RGBA_S3TC_DXT1_Format: gpu.COMPRESSED_RGBA_S3TC_DXT1_EXT,
			scene.RGBA_S3TC_DXT3_Format: gpu.COMPRESSED_RGBA_S3TC_DXT3_EXT,
			scene.RGBA_S3TC_DXT5_Format: gpu.COMPRESSED_RGBA_S3TC_DXT5_EXT,
		}[f]
	case scene.RGB_ETC2_Format, scene.RGBA_ETC2_EAC_Format:
		if !u.ext.Get("GL_ARB_ES3_compatibility") {
			return 0
		}
		if f == scene.RGB_ETC2_Format {
			return gpu.COMPRESSED_RGB8_ETC2
		}
		return gpu.COMPRESSED_RGBA8_ETC2_EAC
	case scene.RGBA_ASTC_4x4_Format:
		if !u.ext.Get("GL_KHR_texture_compression_astc_ldr") {
			return 0
		}
		return gpu.COMPRESSED_RGBA_ASTC_4x4_KHR
	case scene.RGBA_BPTC_Format:
		if !u.ext.Get("GL_ARB_texture_compression_bptc") {
			return 0
		}
		return gpu.COMPRESSED_RGBA_BPTC_UNORM
	}
	return 0
}

// InternalFormat picks the sized internal format for a client format and type.
// An explicit name such as "RGBA16F" wins when recognised.
func (u *Utils) InternalFormat(name string, format, typ gpu.Enum, colorSpace scene.ColorSpace) gpu.Enum {
	if v, ok := namedInternalFormats[name]; ok {
		return v
	}
	switch format {
	case gpu.RED:
		switch typ {
		case gpu.FLOAT:
			return gpu.R32F
		case gpu.HALF_FLOAT:
			return gpu.R16F
		case gpu.UNSIGNED_BYTE:
			return gpu.R8
		}
	case gpu.RG:
		switch typ {
		case gpu.FLOAT:
			return gpu.RG32F
		case gpu.HALF_FLOAT:
			return gpu.RG16F
		case gpu.UNSIGNED_BYTE:
			return gpu.RG8
		}
	case gpu.RGB:
		switch typ {
		case gpu.FLOAT:
			return gpu.RGB32F
		case gpu.HALF_FLOAT:
			return gpu.RGB16F
		case gpu.UNSIGNED_BYTE:
			if colorSpace == scene.SRGBColorSpace {
				return gpu.SRGB8
			}
			return gpu.RGB8
		}
	case gpu.RGBA:
		switch typ {
		case gpu.FLOAT:
			return gpu.RGBA32F
		case gpu.HALF_FLOAT:
			return gpu.RGBA16F
		case gpu.UNSIGNED_BYTE:
			if colorSpace == scene.SRGBColorSpace {
				return gpu.SRGB8_ALPHA8
			}
			return gpu.RGBA8
		case gpu.UNSIGNED_SHORT_4_4_4_4:
			return gpu.RGBA4
		case gpu.UNSIGNED_SHORT_5_5_5_1:
			return gpu.RGB5_A1
		}
	case gpu.DEPTH_COMPONENT:
		switch typ {
		case gpu.FLOAT:
			return gpu.DEPTH_COMPONENT32F
		case gpu.UNSIGNED_SHORT:
			return gpu.DEPTH_COMPONENT16
		}
		return gpu.DEPTH_COMPONENT24
	case gpu.DEPTH_STENCIL:
		if typ == gpu.FLOAT_32_UNSIGNED_INT_24_8_REV {
			return gpu.DEPTH32F_STENCIL8
		}
		return gpu.DEPTH24_STENCIL8
	}
	return format
}

var namedInternalFormats = map[string]gpu.Enum{
	"R8": gpu.R8, "RG8": gpu.RG8, "RGB8": gpu.RGB8, "RGBA8": gpu.RGBA8,
	"R16F": gpu.R16F, "RG16F": gpu.RG16F, "RGB16F": gpu.RGB16F, "RGBA16F": gpu.RGBA16F,
	"R32F": gpu.R32F, "RG32F": gpu.RG32F, "RGB32F": gpu.RGB32F, "RGBA32F": gpu.RGBA32F,
	"SRGB8": gpu.SRGB8, "SRGB8_ALPHA8": gpu.SRGB8_ALPHA8, "R11F_G11F_B10F": gpu.R11F_G11F_B10F,
	"DEPTH_COMPONENT16": gpu.DEPTH_COMPONENT16, "DEPTH_COMPONENT24": gpu.DEPTH_COMPONENT24,
	"DEPTH_COMPONENT32F": gpu.DEPTH_COMPONENT32F, "DEPTH24_STENCIL8": gpu.DEPTH24_STENCIL8,
}

func (u *Utils) BlendEquation(e scene.BlendEquation) gpu.Enum {
	switch e {
	case scene.SubtractEquation:
		return gpu.FUNC_SUBTRACT
	case scene.ReverseSubtractEquation:
		return gpu.FUNC_REVERSE_SUBTRACT
	case scene.MinEquation:
		return gpu.MIN
	case scene.MaxEquation:
		return gpu.MAX
	}
	return gpu.FUNC_ADD
}

func (u *Utils) BlendFactor(f scene.BlendFactor) gpu.Enum {
	switch f {
	case scene.ZeroFactor:
		return gpu.ZERO
	case scene.OneFactor:
		return gpu.ONE
	case scene.SrcColorFactor:
		return gpu.SRC_COLOR
	case scene.OneMinusSrcColorFactor:
		return gpu.ONE_MINUS_SRC_COLOR
	case scene.SrcAlphaFactor:
		return gpu.SRC_ALPHA
	case scene.OneMinusSrcAlphaFactor:
		return gpu.ONE_MINUS_SRC_ALPHA
	case scene.DstAlphaFactor:
		return gpu.DST_ALPHA
	case scene.OneMinusDstAlphaFactor:
		return gpu.ONE_MINUS_DST_ALPHA
	case scene.DstColorFactor:
		return gpu.DST_COLOR
	case scene.OneMinusDstColorFactor:
		return gpu.ONE_MINUS_DST_COLOR
	case scene.SrcAlphaSaturateFactor:
		return gpu.SRC_ALPHA_SATURATE
	case scene.ConstantColorFactor:
		return gpu.CONSTANT_COLOR
	case scene.OneMinusConstantColorFactor:
		return gpu.ONE_MINUS_CONSTANT_COLOR
	case scene.ConstantAlphaFactor:
		return gpu.CONSTANT_ALPHA
	case scene.OneMinusConstantAlphaFactor:
		return gpu.ONE_MINUS_CONSTANT_ALPHA
	}
	return gpu.ONE
}

func (u *Utils) DepthFunc(d scene.DepthMode) gpu.Enum {
	switch d {
	case scene.NeverDepth:
		return gpu.NEVER
	case scene.AlwaysDepth:
		return gpu.ALWAYS
	case scene.LessDepth:
		return gpu.LESS
	case scene.EqualDepth:
		return gpu.EQUAL
	case scene.GreaterEqualDepth:
		return gpu.GEQUAL
	case scene.GreaterDepth:
		return gpu.GREATER
	case scene.NotEqualDepth:
		return gpu.NOTEQUAL
	}
	return gpu.LEQUAL
}

func (u *Utils) Compare(c scene.CompareFunc) gpu.Enum {
	switch c {
	case scene.NeverCompare:
		return gpu.NEVER
	case scene.LessCompare:
		return gpu.LESS
	case scene.EqualCompare:
		return gpu.EQUAL
	case scene.LessEqualCompare:
		return gpu.LEQUAL
	case scene.GreaterCompare:
		return gpu.GREATER
	case scene.NotEqualCompare:
		return gpu.NOTEQUAL
	case scene.GreaterEqualCompare:
		return gpu.GEQUAL
	}
	return gpu.ALWAYS
}

func (u *Utils) StencilOp(op scene.StencilOp) gpu.Enum {
	switch op {
	case scene.ZeroStencilOp:
		return gpu.ZERO
	case scene.ReplaceStencilOp:
		return gpu.REPLACE
	case scene.IncrementStencilOp:
		return gpu.INCR
	case scene.DecrementStencilOp:
		return gpu.DECR
	case scene.IncrementWrapStencilOp:
		return gpu.INCR_WRAP
	case scene.DecrementWrapStencilOp:
		return gpu.DECR_WRAP
	case scene.InvertStencilOp:
		return gpu.INVERT
	}
	return gpu.KEEP
}

func (u *Utils) Usage(us scene.Usage) gpu.Enum {
	switch us {
	case scene.DynamicDrawUsage:
		return gpu.DYNAMIC_DRAW
	case scene.StreamDrawUsage:
		return gpu.STREAM_DRAW
	}
	return gpu.STATIC_DRAW
}
