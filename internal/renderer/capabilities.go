package renderer

import (
	"GopherScene/internal/gpu"
	"GopherScene/internal/logger"

	"go.uber.org/zap"
)

// Capabilities are device limits queried once at startup.
type Capabilities struct {
	Precision              string
	LogarithmicDepthBuffer bool

	MaxTextures         int
	MaxVertexTextures   int
	MaxTextureSize      int
	MaxCubemapSize      int
	MaxAttributes       int
	MaxVertexUniforms   int
	MaxVaryings         int
	MaxFragmentUniforms int
	MaxSamples          int
	MaxAnisotropy       float32
	VertexTextures      bool
	TextureFloatLinear  bool
	ColorBufferFloat    bool
}

// NewCapabilities queries ctx. Requested precision is lowered to what both stages support.
func NewCapabilities(ctx gpu.Context, ext *Extensions, cfg Config) *Capabilities {
	c := &Capabilities{
		LogarithmicDepthBuffer: cfg.LogarithmicDepthBuffer,
		MaxTextures:            int(ctx.GetInteger(gpu.MAX_TEXTURE_IMAGE_UNITS)),
		MaxVertexTextures:      int(ctx.GetInteger(gpu.MAX_VERTEX_TEXTURE_IMAGE_UNITS)),
		MaxTextureSize:         int(ctx.GetInteger(gpu.MAX_TEXTURE_SIZE)),
		MaxCubemapSize:         int(ctx.GetInteger(gpu.MAX_CUBE_MAP_TEXTURE_SIZE)),
		MaxAttributes:          int(ctx.GetInteger(gpu.MAX_VERTEX_ATTRIBS)),
		MaxVertexUniforms:      int(ctx.GetInteger(gpu.MAX_VERTEX_UNIFORM_VECTORS)),
		MaxVaryings:            int(ctx.GetInteger(gpu.MAX_VARYING_VECTORS)),
		MaxFragmentUniforms:    int(ctx.GetInteger(gpu.MAX_FRAGMENT_UNIFORM_VECTORS)),
		MaxSamples:             int(ctx.GetInteger(gpu.MAX_SAMPLES)),
		TextureFloatLinear:     ext.Has("GL_OES_texture_float_linear") || ext.Has("GL_ARB_texture_float"),
		ColorBufferFloat:       ext.Has("GL_EXT_color_buffer_float") || ext.Has("GL_ARB_color_buffer_float"),
	}
	c.VertexTextures = c.MaxVertexTextures > 0
	if ext.Has("GL_EXT_texture_filter_anisotropic") {
		c.MaxAnisotropy = ctx.GetFloat(gpu.MAX_TEXTURE_MAX_ANISOTROPY_EXT)
	}
	if cfg.MaxTextureSizeOverride > 0 && cfg.MaxTextureSizeOverride < c.MaxTextureSize {
		c.MaxTextureSize = cfg.MaxTextureSizeOverride
		if c.MaxCubemapSize > c.MaxTextureSize {
			c.MaxCubemapSize = c.MaxTextureSize
		}
	}

	c.Precision = cfg.Precision
	if max := maxPrecision(ctx, c.Precision); max != c.Precision {
		logger.Log.Warn("Precision not supported, using fallback",
			zap.String("requested", c.Precision),
			zap.String("using", max))
		c.Precision = max
	}
	return c
}

func maxPrecision(ctx gpu.Context, precision string) string {
	supports := func(p gpu.Enum) bool {
		_, _, vp := ctx.GetShaderPrecisionFormat(gpu.VERTEX_SHADER, p)
		_, _, fp := ctx.GetShaderPrecisionFormat(gpu.FRAGMENT_SHADER, p)
		return vp > 0 && fp > 0
	}
	if precision == "highp" {
		if supports(gpu.HIGH_FLOAT) {
			return "highp"
		}
		precision = "mediump"
	}
	if precision == "mediump" {
		if supports(gpu.MEDIUM_FLOAT) {
			return "mediump"
		}
	}
	return "lowp"
}
