// Package glbackend implements gpu.Context on top of OpenGL 4.1 core through go-gl.
// A context must be current on the calling thread and gl.Init must have succeeded.
package glbackend

import (
	"strings"
	"unsafe"

	"GopherScene/internal/gpu"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// Context forwards every call to the current OpenGL context.
type Context struct {
	exts []string
}

// New returns a Context for the OpenGL context current on this thread.
func New() *Context {
	return &Context{}
}

func ptr(data []byte) unsafe.Pointer {
	if len(data) == 0 {
		return nil
	}
	return gl.Ptr(data)
}

func (c *Context) Enable(v gpu.Enum)  { gl.Enable(uint32(v)) }
func (c *Context) Disable(v gpu.Enum) { gl.Disable(uint32(v)) }
func (c *Context) BlendEquation(m gpu.Enum) {
	gl.BlendEquation(uint32(m))
}
func (c *Context) BlendEquationSeparate(rgb, a gpu.Enum) {
	gl.BlendEquationSeparate(uint32(rgb), uint32(a))
}
func (c *Context) BlendFunc(s, d gpu.Enum) { gl.BlendFunc(uint32(s), uint32(d)) }
func (c *Context) BlendFuncSeparate(sr, dr, sa, da gpu.Enum) {
	gl.BlendFuncSeparate(uint32(sr), uint32(dr), uint32(sa), uint32(da))
}
func (c *Context) BlendColor(r, g, b, a float32) { gl.BlendColor(r, g, b, a) }
func (c *Context) DepthFunc(f gpu.Enum)          { gl.DepthFunc(uint32(f)) }
func (c *Context) DepthMask(m bool)              { gl.DepthMask(m) }
func (c *Context) ClearDepth(d float64)          { gl.ClearDepth(d) }
func (c *Context) ColorMask(r, g, b, a bool)     { gl.ColorMask(r, g, b, a) }
func (c *Context) ClearColor(r, g, b, a float32) { gl.ClearColor(r, g, b, a) }
func (c *Context) StencilMask(m uint32)          { gl.StencilMask(m) }
func (c *Context) StencilFunc(f gpu.Enum, ref int32, mask uint32) {
	gl.StencilFunc(uint32(f), ref, mask)
}
func (c *Context) StencilOp(fail, zfail, zpass gpu.Enum) {
	gl.StencilOp(uint32(fail), uint32(zfail), uint32(zpass))
}
func (c *Context) ClearStencil(s int32)                { gl.ClearStencil(s) }
func (c *Context) CullFace(m gpu.Enum)                 { gl.CullFace(uint32(m)) }
func (c *Context) FrontFace(m gpu.Enum)                { gl.FrontFace(uint32(m)) }
func (c *Context) LineWidth(w float32)                 { gl.LineWidth(w) }
func (c *Context) PolygonOffset(factor, units float32) { gl.PolygonOffset(factor, units) }
func (c *Context) Viewport(x, y, w, h int32)           { gl.Viewport(x, y, w, h) }
func (c *Context) Scissor(x, y, w, h int32)            { gl.Scissor(x, y, w, h) }
func (c *Context) Clear(mask gpu.Enum)                 { gl.Clear(uint32(mask)) }
func (c *Context) ActiveTexture(unit gpu.Enum)         { gl.ActiveTexture(uint32(unit)) }
func (c *Context) GenerateMipmap(target gpu.Enum)      { gl.GenerateMipmap(uint32(target)) }
func (c *Context) PixelStorei(pname gpu.Enum, v int32) { gl.PixelStorei(uint32(pname), v) }
func (c *Context) DeleteTexture(t gpu.Texture)         { tt := uint32(t); gl.DeleteTextures(1, &tt) }
func (c *Context) BindTexture(target gpu.Enum, t gpu.Texture) {
	gl.BindTexture(uint32(target), uint32(t))
}

func (c *Context) CreateTexture() gpu.Texture {
	var t uint32
	gl.GenTextures(1, &t)
	return gpu.Texture(t)
}

func (c *Context) TexParameteri(target, pname gpu.Enum, v int32) {
	gl.TexParameteri(uint32(target), uint32(pname), v)
}

func (c *Context) TexParameterf(target, pname gpu.Enum, v float32) {
	gl.TexParameterf(uint32(target), uint32(pname), v)
}

// TexStorage2D allocates every level with glTexImage2D since ARB_texture_storage
// is not part of the 4.1 core profile.
func (c *Context) TexStorage2D(target gpu.Enum, levels int32, internalFormat gpu.Enum, w, h int32) {
	format, typ := storageFormat(internalFormat)
	targets := []gpu.Enum{target}
	if target == gpu.TEXTURE_CUBE_MAP {
		targets = targets[:0]
		for i := gpu.Enum(0); i < 6; i++ {
			targets = append(targets, gpu.TEXTURE_CUBE_MAP_POSITIVE_X+i)
		}
	}
	for level := int32(0); level < levels; level++ {
		lw, lh := max32(w>>level, 1), max32(h>>level, 1)
		for _, t := range targets {
			gl.TexImage2D(uint32(t), level, int32(internalFormat), lw, lh, 0, uint32(format), uint32(typ), nil)
		}
	}
	gl.TexParameteri(uint32(target), gl.TEXTURE_MAX_LEVEL, levels-1)
}

func (c *Context) TexStorage3D(target gpu.Enum, levels int32, internalFormat gpu.Enum, w, h, d int32) {
	format, typ := storageFormat(internalFormat)
	for level := int32(0); level < levels; level++ {
		lw, lh := max32(w>>level, 1), max32(h>>level, 1)
		ld := d
		if target == gpu.TEXTURE_3D {
			ld = max32(d>>level, 1)
		}
		gl.TexImage3D(uint32(target), level, int32(internalFormat), lw, lh, ld, 0, uint32(format), uint32(typ), nil)
	}
	gl.TexParameteri(uint32(target), gl.TEXTURE_MAX_LEVEL, levels-1)
}

func (c *Context) TexImage2D(target gpu.Enum, level int32, internalFormat gpu.Enum, w, h int32, format, typ gpu.Enum, data []byte) {
	gl.TexImage2D(uint32(target), level, int32(internalFormat), w, h, 0, uint32(format), uint32(typ), ptr(data))
}

func (c *Context) TexSubImage2D(target gpu.Enum, level, x, y, w, h int32, format, typ gpu.Enum, data []byte) {
	gl.TexSubImage2D(uint32(target), level, x, y, w, h, uint32(format), uint32(typ), ptr(data))
}

func (c *Context) TexImage3D(target gpu.Enum, level int32, internalFormat gpu.Enum, w, h, d int32, format, typ gpu.Enum, data []byte) {
	gl.TexImage3D(uint32(target), level, int32(internalFormat), w, h, d, 0, uint32(format), uint32(typ), ptr(data))
}

func (c *Context) TexSubImage3D(target gpu.Enum, level, x, y, z, w, h, d int32, format, typ gpu.Enum, data []byte) {
	gl.TexSubImage3D(uint32(target), level, x, y, z, w, h, d, uint32(format), uint32(typ), ptr(data))
}

func (c *Context) CompressedTexImage2D(target gpu.Enum, level int32, internalFormat gpu.Enum, w, h int32, data []byte) {
	gl.CompressedTexImage2D(uint32(target), level, uint32(internalFormat), w, h, 0, int32(len(data)), ptr(data))
}

func (c *Context) CreateBuffer() gpu.Buffer {
	var b uint32
	gl.GenBuffers(1, &b)
	return gpu.Buffer(b)
}

func (c *Context) DeleteBuffer(b gpu.Buffer) { bb := uint32(b); gl.DeleteBuffers(1, &bb) }
func (c *Context) BindBuffer(target gpu.Enum, b gpu.Buffer) {
	gl.BindBuffer(uint32(target), uint32(b))
}
func (c *Context) BufferData(target gpu.Enum, data []byte, usage gpu.Enum) {
	gl.BufferData(uint32(target), len(data), ptr(data), uint32(usage))
}
func (c *Context) BufferSubData(target gpu.Enum, offset int, data []byte) {
	gl.BufferSubData(uint32(target), offset, len(data), ptr(data))
}

func (c *Context) CreateVertexArray() gpu.VertexArray {
	var va uint32
	gl.GenVertexArrays(1, &va)
	return gpu.VertexArray(va)
}

func (c *Context) DeleteVertexArray(va gpu.VertexArray) {
	v := uint32(va)
	gl.DeleteVertexArrays(1, &v)
}
func (c *Context) BindVertexArray(va gpu.VertexArray)    { gl.BindVertexArray(uint32(va)) }
func (c *Context) EnableVertexAttribArray(a gpu.Attrib)  { gl.EnableVertexAttribArray(uint32(a)) }
func (c *Context) DisableVertexAttribArray(a gpu.Attrib) { gl.DisableVertexAttribArray(uint32(a)) }
func (c *Context) VertexAttribPointer(a gpu.Attrib, size int32, typ gpu.Enum, norm bool, stride, offset int32) {
	gl.VertexAttribPointer(uint32(a), size, uint32(typ), norm, stride, gl.PtrOffset(int(offset)))
}
func (c *Context) VertexAttribIPointer(a gpu.Attrib, size int32, typ gpu.Enum, stride, offset int32) {
	gl.VertexAttribIPointer(uint32(a), size, uint32(typ), stride, gl.PtrOffset(int(offset)))
}
func (c *Context) VertexAttribDivisor(a gpu.Attrib, d uint32) { gl.VertexAttribDivisor(uint32(a), d) }
func (c *Context) VertexAttrib4f(a gpu.Attrib, x, y, z, w float32) {
	gl.VertexAttrib4f(uint32(a), x, y, z, w)
}

func (c *Context) CreateFramebuffer() gpu.Framebuffer {
	var fb uint32
	gl.GenFramebuffers(1, &fb)
	return gpu.Framebuffer(fb)
}

func (c *Context) DeleteFramebuffer(fb gpu.Framebuffer) {
	f := uint32(fb)
	gl.DeleteFramebuffers(1, &f)
}
func (c *Context) BindFramebuffer(target gpu.Enum, fb gpu.Framebuffer) {
	gl.BindFramebuffer(uint32(target), uint32(fb))
}
func (c *Context) FramebufferTexture2D(target, attachment, texTarget gpu.Enum, t gpu.Texture, level int32) {
	gl.FramebufferTexture2D(uint32(target), uint32(attachment), uint32(texTarget), uint32(t), level)
}
func (c *Context) FramebufferTextureLayer(target, attachment gpu.Enum, t gpu.Texture, level, layer int32) {
	gl.FramebufferTextureLayer(uint32(target), uint32(attachment), uint32(t), level, layer)
}
func (c *Context) FramebufferRenderbuffer(target, attachment, rbTarget gpu.Enum, rb gpu.Renderbuffer) {
	gl.FramebufferRenderbuffer(uint32(target), uint32(attachment), uint32(rbTarget), uint32(rb))
}
func (c *Context) CheckFramebufferStatus(target gpu.Enum) gpu.Enum {
	return gpu.Enum(gl.CheckFramebufferStatus(uint32(target)))
}
func (c *Context) DrawBuffers(bufs []gpu.Enum) {
	if len(bufs) == 0 {
		return
	}
	native := make([]uint32, len(bufs))
	for i, b := range bufs {
		native[i] = uint32(b)
	}
	gl.DrawBuffers(int32(len(native)), &native[0])
}
func (c *Context) ReadBuffer(src gpu.Enum) { gl.ReadBuffer(uint32(src)) }
func (c *Context) BlitFramebuffer(sx0, sy0, sx1, sy1, dx0, dy0, dx1, dy1 int32, mask, filter gpu.Enum) {
	gl.BlitFramebuffer(sx0, sy0, sx1, sy1, dx0, dy0, dx1, dy1, uint32(mask), uint32(filter))
}

func (c *Context) CreateRenderbuffer() gpu.Renderbuffer {
	var rb uint32
	gl.GenRenderbuffers(1, &rb)
	return gpu.Renderbuffer(rb)
}

func (c *Context) DeleteRenderbuffer(rb gpu.Renderbuffer) {
	r := uint32(rb)
	gl.DeleteRenderbuffers(1, &r)
}
func (c *Context) BindRenderbuffer(target gpu.Enum, rb gpu.Renderbuffer) {
	gl.BindRenderbuffer(uint32(target), uint32(rb))
}
func (c *Context) RenderbufferStorage(target, f gpu.Enum, w, h int32) {
	gl.RenderbufferStorage(uint32(target), uint32(f), w, h)
}
func (c *Context) RenderbufferStorageMultisample(target gpu.Enum, samples int32, f gpu.Enum, w, h int32) {
	gl.RenderbufferStorageMultisample(uint32(target), samples, uint32(f), w, h)
}

func (c *Context) CreateShader(typ gpu.Enum) gpu.Shader {
	return gpu.Shader(gl.CreateShader(uint32(typ)))
}

func (c *Context) ShaderSource(s gpu.Shader, src string) {
	csources, free := gl.Strs(src + "\x00")
	gl.ShaderSource(uint32(s), 1, csources, nil)
	free()
}

func (c *Context) CompileShader(s gpu.Shader) { gl.CompileShader(uint32(s)) }

func (c *Context) GetShaderi(s gpu.Shader, pname gpu.Enum) int32 {
	var v int32
	gl.GetShaderiv(uint32(s), uint32(pname), &v)
	return v
}

func (c *Context) GetShaderInfoLog(s gpu.Shader) string {
	var n int32
	gl.GetShaderiv(uint32(s), gl.INFO_LOG_LENGTH, &n)
	if n == 0 {
		return ""
	}
	log := strings.Repeat("\x00", int(n+1))
	gl.GetShaderInfoLog(uint32(s), n, nil, gl.Str(log))
	return strings.TrimRight(log, "\x00")
}

func (c *Context) DeleteShader(s gpu.Shader)                { gl.DeleteShader(uint32(s)) }
func (c *Context) CreateProgram() gpu.Program               { return gpu.Program(gl.CreateProgram()) }
func (c *Context) AttachShader(p gpu.Program, s gpu.Shader) { gl.AttachShader(uint32(p), uint32(s)) }
func (c *Context) LinkProgram(p gpu.Program)                { gl.LinkProgram(uint32(p)) }
func (c *Context) DeleteProgram(p gpu.Program)              { gl.DeleteProgram(uint32(p)) }
func (c *Context) UseProgram(p gpu.Program)                 { gl.UseProgram(uint32(p)) }
func (c *Context) BindAttribLocation(p gpu.Program, a gpu.Attrib, name string) {
	gl.BindAttribLocation(uint32(p), uint32(a), gl.Str(name+"\x00"))
}

func (c *Context) GetProgrami(p gpu.Program, pname gpu.Enum) int32 {
	var v int32
	gl.GetProgramiv(uint32(p), uint32(pname), &v)
	return v
}

func (c *Context) GetProgramInfoLog(p gpu.Program) string {
	var n int32
	gl.GetProgramiv(uint32(p), gl.INFO_LOG_LENGTH, &n)
	if n == 0 {
		return ""
	}
	log := strings.Repeat("\x00", int(n+1))
	gl.GetProgramInfoLog(uint32(p), n, nil, gl.Str(log))
	return strings.TrimRight(log, "\x00")
}

func (c *Context) GetActiveUniform(p gpu.Program, index uint32) (string, int32, gpu.Enum) {
	var length, size int32
	var typ uint32
	buf := make([]uint8, 256)
	gl.GetActiveUniform(uint32(p), index, int32(len(buf)), &length, &size, &typ, &buf[0])
	return string(buf[:length]), size, gpu.Enum(typ)
}

func (c *Context) GetUniformLocation(p gpu.Program, name string) gpu.Uniform {
	return gpu.Uniform(gl.GetUniformLocation(uint32(p), gl.Str(name+"\x00")))
}

func (c *Context) GetActiveAttrib(p gpu.Program, index uint32) (string, int32, gpu.Enum) {
	var length, size int32
	var typ uint32
	buf := make([]uint8, 256)
	gl.GetActiveAttrib(uint32(p), index, int32(len(buf)), &length, &size, &typ, &buf[0])
	return string(buf[:length]), size, gpu.Enum(typ)
}

func (c *Context) GetAttribLocation(p gpu.Program, name string) int32 {
	return gl.GetAttribLocation(uint32(p), gl.Str(name+"\x00"))
}

func (c *Context) Uniform1i(u gpu.Uniform, v int32)   { gl.Uniform1i(int32(u), v) }
func (c *Context) Uniform1f(u gpu.Uniform, v float32) { gl.Uniform1f(int32(u), v) }
func (c *Context) Uniform1fv(u gpu.Uniform, v []float32) {
	gl.Uniform1fv(int32(u), int32(len(v)), &v[0])
}
func (c *Context) Uniform2fv(u gpu.Uniform, v []float32) {
	gl.Uniform2fv(int32(u), int32(len(v)/2), &v[0])
}
func (c *Context) Uniform3fv(u gpu.Uniform, v []float32) {
	gl.Uniform3fv(int32(u), int32(len(v)/3), &v[0])
}
func (c *Context) Uniform4fv(u gpu.Uniform, v []float32) {
	gl.Uniform4fv(int32(u), int32(len(v)/4), &v[0])
}
func (c *Context) Uniform1iv(u gpu.Uniform, v []int32) { gl.Uniform1iv(int32(u), int32(len(v)), &v[0]) }
func (c *Context) Uniform2iv(u gpu.Uniform, v []int32) {
	gl.Uniform2iv(int32(u), int32(len(v)/2), &v[0])
}
func (c *Context) Uniform3iv(u gpu.Uniform, v []int32) {
	gl.Uniform3iv(int32(u), int32(len(v)/3), &v[0])
}
func (c *Context) Uniform4iv(u gpu.Uniform, v []int32) {
	gl.Uniform4iv(int32(u), int32(len(v)/4), &v[0])
}
func (c *Context) UniformMatrix2fv(u gpu.Uniform, v []float32) {
	gl.UniformMatrix2fv(int32(u), int32(len(v)/4), false, &v[0])
}
func (c *Context) UniformMatrix3fv(u gpu.Uniform, v []float32) {
	gl.UniformMatrix3fv(int32(u), int32(len(v)/9), false, &v[0])
}
func (c *Context) UniformMatrix4fv(u gpu.Uniform, v []float32) {
	gl.UniformMatrix4fv(int32(u), int32(len(v)/16), false, &v[0])
}

func (c *Context) DrawArrays(mode gpu.Enum, first, count int32) {
	gl.DrawArrays(uint32(mode), first, count)
}
func (c *Context) DrawElements(mode gpu.Enum, count int32, typ gpu.Enum, offset int) {
	gl.DrawElements(uint32(mode), count, uint32(typ), gl.PtrOffset(offset))
}
func (c *Context) DrawArraysInstanced(mode gpu.Enum, first, count, n int32) {
	gl.DrawArraysInstanced(uint32(mode), first, count, n)
}
func (c *Context) DrawElementsInstanced(mode gpu.Enum, count int32, typ gpu.Enum, offset int, n int32) {
	gl.DrawElementsInstanced(uint32(mode), count, uint32(typ), gl.PtrOffset(offset), n)
}

func (c *Context) GetInteger(pname gpu.Enum) int32 {
	var v int32
	gl.GetIntegerv(uint32(pname), &v)
	return v
}

func (c *Context) GetFloat(pname gpu.Enum) float32 {
	var v float32
	gl.GetFloatv(uint32(pname), &v)
	return v
}

func (c *Context) GetShaderPrecisionFormat(shaderType, precisionType gpu.Enum) (int32, int32, int32) {
	var rng [2]int32
	var precision int32
	gl.GetShaderPrecisionFormat(uint32(shaderType), uint32(precisionType), &rng[0], &precision)
	return rng[0], rng[1], precision
}

// Extensions lists GL_NUM_EXTENSIONS names once and caches them.
func (c *Context) Extensions() []string {
	if c.exts != nil {
		return c.exts
	}
	var n int32
	gl.GetIntegerv(gl.NUM_EXTENSIONS, &n)
	c.exts = make([]string, 0, n)
	for i := int32(0); i < n; i++ {
		c.exts = append(c.exts, gl.GoStr(gl.GetStringi(gl.EXTENSIONS, uint32(i))))
	}
	return c.exts
}

func max32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}

// storageFormat maps a sized internal format to a compatible client format and type.
func storageFormat(internalFormat gpu.Enum) (gpu.Enum, gpu.Enum) {
	switch internalFormat {
	case gpu.R8:
		return gpu.RED, gpu.UNSIGNED_BYTE
	case gpu.R16F:
		return gpu.RED, gpu.HALF_FLOAT
	case gpu.R32F:
		return gpu.RED, gpu.FLOAT
	case gpu.RG8:
		return gpu.RG, gpu.UNSIGNED_BYTE
	case gpu.RG16F:
		return gpu.RG, gpu.HALF_FLOAT
	case gpu.RG32F:
		return gpu.RG, gpu.FLOAT
	case gpu.RGB8, gpu.SRGB8:
		return gpu.RGB, gpu.UNSIGNED_BYTE
	case gpu.RGB16F, gpu.R11F_G11F_B10F, gpu.RGB9_E5:
		return gpu.RGB, gpu.HALF_FLOAT
	case gpu.RGB32F:
		return gpu.RGB, gpu.FLOAT
	case gpu.RGBA16F:
		return gpu.RGBA, gpu.HALF_FLOAT
	case gpu.RGBA32F:
		return gpu.RGBA, gpu.FLOAT
	case gpu.DEPTH_COMPONENT16:
		return gpu.DEPTH_COMPONENT, gpu.UNSIGNED_SHORT
	case gpu.DEPTH_COMPONENT24:
		return gpu.DEPTH_COMPONENT, gpu.UNSIGNED_INT
	case gpu.DEPTH_COMPONENT32F:
		return gpu.DEPTH_COMPONENT, gpu.FLOAT
	case gpu.DEPTH24_STENCIL8:
		return gpu.DEPTH_STENCIL, gpu.UNSIGNED_INT_24_8
	case gpu.DEPTH32F_STENCIL8:
		return gpu.DEPTH_STENCIL, gpu.FLOAT_32_UNSIGNED_INT_24_8_REV
	}
	return gpu.RGBA, gpu.UNSIGNED_BYTE
}

var _ gpu.Context = (*Context)(nil)
