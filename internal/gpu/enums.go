package gpu

// Native enum values. They match the OpenGL constants so backends can pass them through.
const (
	NONE Enum = 0
	ZERO Enum = 0
	ONE  Enum = 1

	POINTS         Enum = 0x0000
	LINES          Enum = 0x0001
	LINE_LOOP      Enum = 0x0002
	LINE_STRIP     Enum = 0x0003
	TRIANGLES      Enum = 0x0004
	TRIANGLE_STRIP Enum = 0x0005
	TRIANGLE_FAN   Enum = 0x0006

	DEPTH_BUFFER_BIT   Enum = 0x00000100
	STENCIL_BUFFER_BIT Enum = 0x00000400
	COLOR_BUFFER_BIT   Enum = 0x00004000

	// Capabilities
	CULL_FACE                Enum = 0x0B44
	DEPTH_TEST               Enum = 0x0B71
	STENCIL_TEST             Enum = 0x0B90
	BLEND                    Enum = 0x0BE2
	SCISSOR_TEST             Enum = 0x0C11
	POLYGON_OFFSET_FILL      Enum = 0x8037
	SAMPLE_ALPHA_TO_COVERAGE Enum = 0x809E

	// Faces
	FRONT          Enum = 0x0404
	BACK           Enum = 0x0405
	FRONT_AND_BACK Enum = 0x0408
	CW             Enum = 0x0900
	CCW            Enum = 0x0901

	// Comparison
	NEVER    Enum = 0x0200
	LESS     Enum = 0x0201
	EQUAL    Enum = 0x0202
	LEQUAL   Enum = 0x0203
	GREATER  Enum = 0x0204
	NOTEQUAL Enum = 0x0205
	GEQUAL   Enum = 0x0206
	ALWAYS   Enum = 0x0207

	// Stencil ops
	KEEP      Enum = 0x1E00
	REPLACE   Enum = 0x1E01
	INCR      Enum = 0x1E02
	DECR      Enum = 0x1E03
	INVERT    Enum = 0x150A
	INCR_WRAP Enum = 0x8507
	DECR_WRAP Enum = 0x8508

	// Blending
	FUNC_ADD                 Enum = 0x8006
	MIN                      Enum = 0x8007
	MAX                      Enum = 0x8008
	FUNC_SUBTRACT            Enum = 0x800A
	FUNC_REVERSE_SUBTRACT    Enum = 0x800B
	SRC_COLOR                Enum = 0x0300
	ONE_MINUS_SRC_COLOR      Enum = 0x0301
	SRC_ALPHA                Enum = 0x0302
	ONE_MINUS_SRC_ALPHA      Enum = 0x0303
	DST_ALPHA                Enum = 0x0304
	ONE_MINUS_DST_ALPHA      Enum = 0x0305
	DST_COLOR                Enum = 0x0306
	ONE_MINUS_DST_COLOR      Enum = 0x0307
	SRC_ALPHA_SATURATE       Enum = 0x0308
	CONSTANT_COLOR           Enum = 0x8001
	ONE_MINUS_CONSTANT_COLOR Enum = 0x8002
	CONSTANT_ALPHA           Enum = 0x8003
	ONE_MINUS_CONSTANT_ALPHA Enum = 0x8004

	// Data types
	BYTE                           Enum = 0x1400
	UNSIGNED_BYTE                  Enum = 0x1401
	SHORT                          Enum = 0x1402
	UNSIGNED_SHORT                 Enum = 0x1403
	INT                            Enum = 0x1404
	UNSIGNED_INT                   Enum = 0x1405
	FLOAT                          Enum = 0x1406
	HALF_FLOAT                     Enum = 0x140B
	UNSIGNED_SHORT_4_4_4_4         Enum = 0x8033
	UNSIGNED_SHORT_5_5_5_1         Enum = 0x8034
	UNSIGNED_SHORT_5_6_5           Enum = 0x8363
	UNSIGNED_INT_24_8              Enum = 0x84FA
	UNSIGNED_INT_5_9_9_9_REV       Enum = 0x8C3E
	UNSIGNED_INT_10F_11F_11F_REV   Enum = 0x8C3B
	FLOAT_32_UNSIGNED_INT_24_8_REV Enum = 0x8DAD

	// Uniform types
	FLOAT_VEC2                    Enum = 0x8B50
	FLOAT_VEC3                    Enum = 0x8B51
	FLOAT_VEC4                    Enum = 0x8B52
	INT_VEC2                      Enum = 0x8B53
	INT_VEC3                      Enum = 0x8B54
	INT_VEC4                      Enum = 0x8B55
	BOOL                          Enum = 0x8B56
	BOOL_VEC2                     Enum = 0x8B57
	BOOL_VEC3                     Enum = 0x8B58
	BOOL_VEC4                     Enum = 0x8B59
	FLOAT_MAT2                    Enum = 0x8B5A
	FLOAT_MAT3                    Enum = 0x8B5B
	FLOAT_MAT4                    Enum = 0x8B5C
	SAMPLER_2D                    Enum = 0x8B5E
	SAMPLER_3D                    Enum = 0x8B5F
	SAMPLER_CUBE                  Enum = 0x8B60
	SAMPLER_2D_SHADOW             Enum = 0x8B62
	SAMPLER_2D_ARRAY              Enum = 0x8DC1
	SAMPLER_2D_ARRAY_SHADOW       Enum = 0x8DC4
	SAMPLER_CUBE_SHADOW           Enum = 0x8DC5
	INT_SAMPLER_2D                Enum = 0x8DCA
	INT_SAMPLER_3D                Enum = 0x8DCB
	INT_SAMPLER_CUBE              Enum = 0x8DCC
	INT_SAMPLER_2D_ARRAY          Enum = 0x8DCF
	UNSIGNED_INT_SAMPLER_2D       Enum = 0x8DD2
	UNSIGNED_INT_SAMPLER_3D       Enum = 0x8DD3
	UNSIGNED_INT_SAMPLER_CUBE     Enum = 0x8DD4
	UNSIGNED_INT_SAMPLER_2D_ARRAY Enum = 0x8DD7

	// Pixel formats
	DEPTH_COMPONENT Enum = 0x1902
	RED             Enum = 0x1903
	ALPHA           Enum = 0x1906
	RGB             Enum = 0x1907
	RGBA            Enum = 0x1908
	LUMINANCE       Enum = 0x1909
	RG              Enum = 0x8227
	RG_INTEGER      Enum = 0x8228
	RED_INTEGER     Enum = 0x8D94
	RGB_INTEGER     Enum = 0x8D98
	RGBA_INTEGER    Enum = 0x8D99
	DEPTH_STENCIL   Enum = 0x84F9

	// Sized internal formats
	R8                 Enum = 0x8229
	RG8                Enum = 0x822B
	R16F               Enum = 0x822D
	R32F               Enum = 0x822E
	RG16F              Enum = 0x822F
	RG32F              Enum = 0x8230
	RGB8               Enum = 0x8051
	RGBA4              Enum = 0x8056
	RGB5_A1            Enum = 0x8057
	RGBA8              Enum = 0x8058
	SRGB8              Enum = 0x8C41
	SRGB8_ALPHA8       Enum = 0x8C43
	RGBA32F            Enum = 0x8814
	RGB32F             Enum = 0x8815
	RGBA16F            Enum = 0x881A
	RGB16F             Enum = 0x881B
	R11F_G11F_B10F     Enum = 0x8C3A
	RGB9_E5            Enum = 0x8C3D
	DEPTH_COMPONENT16  Enum = 0x81A5
	DEPTH_COMPONENT24  Enum = 0x81A6
	DEPTH_COMPONENT32F Enum = 0x8CAC
	DEPTH24_STENCIL8   Enum = 0x88F0
	DEPTH32F_STENCIL8  Enum = 0x8CAD
	STENCIL_INDEX8     Enum = 0x8D48

	// Compressed formats
	COMPRESSED_RGB_S3TC_DXT1_EXT  Enum = 0x83F0
	COMPRESSED_RGBA_S3TC_DXT1_EXT Enum = 0x83F1
	COMPRESSED_RGBA_S3TC_DXT3_EXT Enum = 0x83F2
	COMPRESSED_RGBA_S3TC_DXT5_EXT Enum = 0x83F3
	COMPRESSED_RGB8_ETC2          Enum = 0x9274
	COMPRESSED_RGBA8_ETC2_EAC     Enum = 0x9278
	COMPRESSED_RGBA_ASTC_4x4_KHR  Enum = 0x93B0
	COMPRESSED_RGBA_BPTC_UNORM    Enum = 0x8E8C

	// Textures
	TEXTURE_2D                  Enum = 0x0DE1
	TEXTURE_3D                  Enum = 0x806F
	TEXTURE_2D_ARRAY            Enum = 0x8C1A
	TEXTURE_CUBE_MAP            Enum = 0x8513
	TEXTURE_CUBE_MAP_POSITIVE_X Enum = 0x8515
	TEXTURE0                    Enum = 0x84C0
	TEXTURE_MAG_FILTER          Enum = 0x2800
	TEXTURE_MIN_FILTER          Enum = 0x2801
	TEXTURE_WRAP_S              Enum = 0x2802
	TEXTURE_WRAP_T              Enum = 0x2803
	TEXTURE_WRAP_R              Enum = 0x8072
	TEXTURE_COMPARE_MODE        Enum = 0x884C
	TEXTURE_COMPARE_FUNC        Enum = 0x884D
	COMPARE_REF_TO_TEXTURE      Enum = 0x884E
	TEXTURE_MAX_ANISOTROPY_EXT  Enum = 0x84FE
	NEAREST                     Enum = 0x2600
	LINEAR                      Enum = 0x2601
	NEAREST_MIPMAP_NEAREST      Enum = 0x2700
	LINEAR_MIPMAP_NEAREST       Enum = 0x2701
	NEAREST_MIPMAP_LINEAR       Enum = 0x2702
	LINEAR_MIPMAP_LINEAR        Enum = 0x2703
	REPEAT                      Enum = 0x2901
	CLAMP_TO_EDGE               Enum = 0x812F
	MIRRORED_REPEAT             Enum = 0x8370
	UNPACK_ALIGNMENT            Enum = 0x0CF5
	PACK_ALIGNMENT              Enum = 0x0D05

	// Buffers
	ARRAY_BUFFER         Enum = 0x8892
	ELEMENT_ARRAY_BUFFER Enum = 0x8893
	UNIFORM_BUFFER       Enum = 0x8A11
	STATIC_DRAW          Enum = 0x88E4
	DYNAMIC_DRAW         Enum = 0x88E8
	STREAM_DRAW          Enum = 0x88E0

	// Framebuffers
	FRAMEBUFFER              Enum = 0x8D40
	READ_FRAMEBUFFER         Enum = 0x8CA8
	DRAW_FRAMEBUFFER         Enum = 0x8CA9
	RENDERBUFFER             Enum = 0x8D41
	COLOR_ATTACHMENT0        Enum = 0x8CE0
	DEPTH_ATTACHMENT         Enum = 0x8D00
	STENCIL_ATTACHMENT       Enum = 0x8D20
	DEPTH_STENCIL_ATTACHMENT Enum = 0x821A
	FRAMEBUFFER_COMPLETE     Enum = 0x8CD5

	// Shaders
	FRAGMENT_SHADER Enum = 0x8B30
	VERTEX_SHADER   Enum = 0x8B31
	COMPILE_STATUS  Enum = 0x8B81
	LINK_STATUS     Enum = 0x8B82
	ACTIVE_UNIFORMS Enum = 0x8B86
	ACTIVE_ATTRIBS  Enum = 0x8B89
	LOW_FLOAT       Enum = 0x8DF0
	MEDIUM_FLOAT    Enum = 0x8DF1
	HIGH_FLOAT      Enum = 0x8DF2

	// Queries
	MAX_TEXTURE_SIZE                 Enum = 0x0D33
	MAX_CUBE_MAP_TEXTURE_SIZE        Enum = 0x851C
	MAX_TEXTURE_IMAGE_UNITS          Enum = 0x8872
	MAX_VERTEX_TEXTURE_IMAGE_UNITS   Enum = 0x8B4C
	MAX_VERTEX_ATTRIBS               Enum = 0x8869
	MAX_VERTEX_UNIFORM_VECTORS       Enum = 0x8DFB
	MAX_VARYING_VECTORS              Enum = 0x8DFC
	MAX_FRAGMENT_UNIFORM_VECTORS     Enum = 0x8DFD
	MAX_SAMPLES                      Enum = 0x8D57
	MAX_TEXTURE_MAX_ANISOTROPY_EXT   Enum = 0x84FF
	MAX_COMBINED_TEXTURE_IMAGE_UNITS Enum = 0x8B4D
	MAX_UNIFORM_BUFFER_BINDINGS      Enum = 0x8A2F
)

// InvalidHandle never names a live object; the state mirror uses it as a reset sentinel.
const InvalidHandle = ^uint32(0)
