// Package gpu describes the stateful, immediate-mode graphics API the renderer drives.
// The glbackend package implements it with OpenGL; gputest records calls for tests.
package gpu

type (
	Enum         uint32
	Buffer       uint32
	Texture      uint32
	Framebuffer  uint32
	Renderbuffer uint32
	VertexArray  uint32
	Shader       uint32
	Program      uint32
	Attrib       uint32
	Uniform      int32
)

// Context is the native call surface. Every method maps onto a single GL call.
type Context interface {
	Enable(capability Enum)
	Disable(capability Enum)
	BlendEquation(mode Enum)
	BlendEquationSeparate(modeRGB, modeAlpha Enum)
	BlendFunc(src, dst Enum)
	BlendFuncSeparate(srcRGB, dstRGB, srcAlpha, dstAlpha Enum)
	BlendColor(r, g, b, a float32)
	DepthFunc(fn Enum)
	DepthMask(mask bool)
	ClearDepth(d float64)
	ColorMask(r, g, b, a bool)
	ClearColor(r, g, b, a float32)
	StencilMask(mask uint32)
	StencilFunc(fn Enum, ref int32, mask uint32)
	StencilOp(fail, zfail, zpass Enum)
	ClearStencil(s int32)
	CullFace(mode Enum)
	FrontFace(mode Enum)
	LineWidth(w float32)
	PolygonOffset(factor, units float32)
	Viewport(x, y, width, height int32)
	Scissor(x, y, width, height int32)
	Clear(mask Enum)

	ActiveTexture(unit Enum)
	CreateTexture() Texture
	DeleteTexture(t Texture)
	BindTexture(target Enum, t Texture)
	TexParameteri(target, pname Enum, param int32)
	TexParameterf(target, pname Enum, param float32)
	TexStorage2D(target Enum, levels int32, internalFormat Enum, width, height int32)
	TexStorage3D(target Enum, levels int32, internalFormat Enum, width, height, depth int32)
	TexImage2D(target Enum, level int32, internalFormat Enum, width, height int32, format, typ Enum, data []byte)
	TexSubImage2D(target Enum, level, x, y, width, height int32, format, typ Enum, data []byte)
	TexImage3D(target Enum, level int32, internalFormat Enum, width, height, depth int32, format, typ Enum, data []byte)
	TexSubImage3D(target Enum, level, x, y, z, width, height, depth int32, format, typ Enum, data []byte)
	CompressedTexImage2D(target Enum, level int32, internalFormat Enum, width, height int32, data []byte)
	GenerateMipmap(target Enum)
	PixelStorei(pname Enum, param int32)

	CreateBuffer() Buffer
	DeleteBuffer(b Buffer)
	BindBuffer(target Enum, b Buffer)
	BufferData(target Enum, data []byte, usage Enum)
	BufferSubData(target Enum, offset int, data []byte)

	CreateVertexArray() VertexArray
	DeleteVertexArray(va VertexArray)
	BindVertexArray(va VertexArray)
	EnableVertexAttribArray(a Attrib)
	DisableVertexAttribArray(a Attrib)
	VertexAttribPointer(a Attrib, size int32, typ Enum, normalized bool, stride, offset int32)
	VertexAttribIPointer(a Attrib, size int32, typ Enum, stride, offset int32)
	VertexAttribDivisor(a Attrib, divisor uint32)
	VertexAttrib4f(a Attrib, x, y, z, w float32)

	CreateFramebuffer() Framebuffer
	DeleteFramebuffer(fb Framebuffer)
	BindFramebuffer(target Enum, fb Framebuffer)
	FramebufferTexture2D(target, attachment, texTarget Enum, t Texture, level int32)
	FramebufferTextureLayer(target, attachment Enum, t Texture, level, layer int32)
	FramebufferRenderbuffer(target, attachment, rbTarget Enum, rb Renderbuffer)
	CheckFramebufferStatus(target Enum) Enum
	DrawBuffers(bufs []Enum)
	ReadBuffer(src Enum)
	BlitFramebuffer(sx0, sy0, sx1, sy1, dx0, dy0, dx1, dy1 int32, mask, filter Enum)

	CreateRenderbuffer() Renderbuffer
	DeleteRenderbuffer(rb Renderbuffer)
	BindRenderbuffer(target Enum, rb Renderbuffer)
	RenderbufferStorage(target, internalFormat Enum, width, height int32)
	RenderbufferStorageMultisample(target Enum, samples int32, internalFormat Enum, width, height int32)

	CreateShader(typ Enum) Shader
	ShaderSource(s Shader, src string)
	CompileShader(s Shader)
	GetShaderi(s Shader, pname Enum) int32
	GetShaderInfoLog(s Shader) string
	DeleteShader(s Shader)
	CreateProgram() Program
	AttachShader(p Program, s Shader)
	BindAttribLocation(p Program, a Attrib, name string)
	LinkProgram(p Program)
	GetProgrami(p Program, pname Enum) int32
	GetProgramInfoLog(p Program) string
	DeleteProgram(p Program)
	UseProgram(p Program)
	GetActiveUniform(p Program, index uint32) (name string, size int32, typ Enum)
	GetUniformLocation(p Program, name string) Uniform
	GetActiveAttrib(p Program, index uint32) (name string, size int32, typ Enum)
	GetAttribLocation(p Program, name string) int32

	Uniform1i(u Uniform, v int32)
	Uniform1f(u Uniform, v float32)
	Uniform1fv(u Uniform, v []float32)
	Uniform2fv(u Uniform, v []float32)
	Uniform3fv(u Uniform, v []float32)
	Uniform4fv(u Uniform, v []float32)
	Uniform1iv(u Uniform, v []int32)
	Uniform2iv(u Uniform, v []int32)
	Uniform3iv(u Uniform, v []int32)
	Uniform4iv(u Uniform, v []int32)
	UniformMatrix2fv(u Uniform, v []float32)
	UniformMatrix3fv(u Uniform, v []float32)
	UniformMatrix4fv(u Uniform, v []float32)

	DrawArrays(mode Enum, first, count int32)
	DrawElements(mode Enum, count int32, typ Enum, offset int)
	DrawArraysInstanced(mode Enum, first, count, instances int32)
	DrawElementsInstanced(mode Enum, count int32, typ Enum, offset int, instances int32)

	GetInteger(pname Enum) int32
	GetFloat(pname Enum) float32
	GetShaderPrecisionFormat(shaderType, precisionType Enum) (rangeMin, rangeMax, precision int32)
	Extensions() []string
}
