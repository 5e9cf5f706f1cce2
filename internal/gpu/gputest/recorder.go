// Package gputest provides a recording gpu.Context for tests.
package gputest

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"GopherScene/internal/gpu"
)

// ActiveInfo is one reflected attribute or uniform.
type ActiveInfo struct {
	Name string
	Size int32
	Type gpu.Enum
}

// TextureState is what the recorder knows about one native texture.
type TextureState struct {
	Target  gpu.Enum
	Params  map[gpu.Enum]int32
	Levels  int32
	Width   int32
	Height  int32
	Depth   int32
	Format  gpu.Enum
	Uploads int
	Deleted bool
}

// BufferState is what the recorder knows about one native buffer.
type BufferState struct {
	Data       []byte
	Uploads    int
	SubUploads int
	Deleted    bool
}

// ProgramState is what the recorder knows about one native program.
type ProgramState struct {
	Shaders    []gpu.Shader
	Linked     bool
	Attributes []ActiveInfo
	Uniforms   []ActiveInfo
	Values     map[gpu.Uniform][]float32
	Deleted    bool
	locations  map[string]gpu.Uniform
	bindings   map[string]gpu.Attrib
}

type shaderState struct {
	typ    gpu.Enum
	source string
	ok     bool
}

// Recorder implements gpu.Context without a GPU. Every call is counted by method name.
type Recorder struct {
	Calls  map[string]int
	Trace  []string
	Limits map[gpu.Enum]int32
	Floats map[gpu.Enum]float32
	Exts   []string

	// FailCompile reports whether a shader source should fail to compile.
	FailCompile func(src string) bool
	// Reflect overrides source-based reflection of attributes and uniforms.
	Reflect func(vertex, fragment string) (attribs, uniforms []ActiveInfo)
	// FramebufferStatus is returned by CheckFramebufferStatus.
	FramebufferStatus gpu.Enum

	Textures     map[gpu.Texture]*TextureState
	Buffers      map[gpu.Buffer]*BufferState
	Programs     map[gpu.Program]*ProgramState
	Framebuffers map[gpu.Framebuffer]bool

	shaders      map[gpu.Shader]*shaderState
	next         uint32
	activeUnit   gpu.Enum
	unitBindings map[gpu.Enum]map[gpu.Enum]gpu.Texture
	boundBuffers map[gpu.Enum]gpu.Buffer
	program      gpu.Program
}

// New returns a recorder with desktop-class limits.
func New() *Recorder {
	return &Recorder{
		Calls: map[string]int{},
		Limits: map[gpu.Enum]int32{
			gpu.MAX_TEXTURE_SIZE:                 4096,
			gpu.MAX_CUBE_MAP_TEXTURE_SIZE:        4096,
			gpu.MAX_TEXTURE_IMAGE_UNITS:          16,
			gpu.MAX_VERTEX_TEXTURE_IMAGE_UNITS:   16,
			gpu.MAX_COMBINED_TEXTURE_IMAGE_UNITS: 32,
			gpu.MAX_VERTEX_ATTRIBS:               16,
			gpu.MAX_VERTEX_UNIFORM_VECTORS:       1024,
			gpu.MAX_FRAGMENT_UNIFORM_VECTORS:     1024,
			gpu.MAX_VARYING_VECTORS:              30,
			gpu.MAX_SAMPLES:                      8,
			gpu.MAX_UNIFORM_BUFFER_BINDINGS:      24,
		},
		Floats: map[gpu.Enum]float32{
			gpu.MAX_TEXTURE_MAX_ANISOTROPY_EXT: 16,
		},
		Exts:              []string{"GL_EXT_texture_filter_anisotropic", "GL_EXT_color_buffer_float"},
		FramebufferStatus: gpu.FRAMEBUFFER_COMPLETE,
		Textures:          map[gpu.Texture]*TextureState{},
		Buffers:           map[gpu.Buffer]*BufferState{},
		Programs:          map[gpu.Program]*ProgramState{},
		Framebuffers:      map[gpu.Framebuffer]bool{},
		shaders:           map[gpu.Shader]*shaderState{},
		activeUnit:        gpu.TEXTURE0,
		unitBindings:      map[gpu.Enum]map[gpu.Enum]gpu.Texture{},
		boundBuffers:      map[gpu.Enum]gpu.Buffer{},
	}
}

func (r *Recorder) record(name string, args ...any) {
	r.Calls[name]++
	if len(args) == 0 {
		r.Trace = append(r.Trace, name)
		return
	}
	r.Trace = append(r.Trace, name+fmt.Sprint(args...))
}

// Count returns how many times the named method was called.
func (r *Recorder) Count(name string) int { return r.Calls[name] }

// ResetCalls clears call counters and the trace, keeping object state.
func (r *Recorder) ResetCalls() {
	r.Calls = map[string]int{}
	r.Trace = nil
}

// Bound returns the texture bound to target on the given unit (TEXTURE0 based).
func (r *Recorder) Bound(unit, target gpu.Enum) gpu.Texture {
	return r.unitBindings[unit][target]
}

// LiveTextures counts textures that were created and not deleted.
func (r *Recorder) LiveTextures() int {
	n := 0
	for _, t := range r.Textures {
		if !t.Deleted {
			n++
		}
	}
	return n
}

func (r *Recorder) alloc() uint32 {
	r.next++
	return r.next
}

func (r *Recorder) Enable(c gpu.Enum)                   { r.record("Enable", c) }
func (r *Recorder) Disable(c gpu.Enum)                  { r.record("Disable", c) }
func (r *Recorder) BlendEquation(m gpu.Enum)            { r.record("BlendEquation", m) }
func (r *Recorder) BlendEquationSeparate(a, b gpu.Enum) { r.record("BlendEquationSeparate", a, b) }
func (r *Recorder) BlendFunc(s, d gpu.Enum)             { r.record("BlendFunc", s, d) }
func (r *Recorder) BlendFuncSeparate(a, b, c, d gpu.Enum) {
	r.record("BlendFuncSeparate", a, b, c, d)
}
func (r *Recorder) BlendColor(cr, g, b, a float32) { r.record("BlendColor", cr, g, b, a) }
func (r *Recorder) DepthFunc(f gpu.Enum)           { r.record("DepthFunc", f) }
func (r *Recorder) DepthMask(m bool)               { r.record("DepthMask", m) }
func (r *Recorder) ClearDepth(d float64)           { r.record("ClearDepth", d) }
func (r *Recorder) ColorMask(cr, g, b, a bool)     { r.record("ColorMask", cr, g, b, a) }
func (r *Recorder) ClearColor(cr, g, b, a float32) { r.record("ClearColor", cr, g, b, a) }
func (r *Recorder) StencilMask(m uint32)           { r.record("StencilMask", m) }
func (r *Recorder) StencilFunc(f gpu.Enum, ref int32, m uint32) {
	r.record("StencilFunc", f, ref, m)
}
func (r *Recorder) StencilOp(a, b, c gpu.Enum)      { r.record("StencilOp", a, b, c) }
func (r *Recorder) ClearStencil(s int32)            { r.record("ClearStencil", s) }
func (r *Recorder) CullFace(m gpu.Enum)             { r.record("CullFace", m) }
func (r *Recorder) FrontFace(m gpu.Enum)            { r.record("FrontFace", m) }
func (r *Recorder) LineWidth(w float32)             { r.record("LineWidth", w) }
func (r *Recorder) PolygonOffset(f, u float32)      { r.record("PolygonOffset", f, u) }
func (r *Recorder) Viewport(x, y, w, h int32)       { r.record("Viewport", x, y, w, h) }
func (r *Recorder) Scissor(x, y, w, h int32)        { r.record("Scissor", x, y, w, h) }
func (r *Recorder) Clear(m gpu.Enum)                { r.record("Clear", m) }
func (r *Recorder) PixelStorei(p gpu.Enum, v int32) { r.record("PixelStorei", p, v) }
func (r *Recorder) ActiveTexture(u gpu.Enum)        { r.record("ActiveTexture", u); r.activeUnit = u }
func (r *Recorder) GenerateMipmap(t gpu.Enum)       { r.record("GenerateMipmap", t) }
func (r *Recorder) DrawBuffers(b []gpu.Enum)        { r.record("DrawBuffers", len(b)) }
func (r *Recorder) ReadBuffer(s gpu.Enum)           { r.record("ReadBuffer", s) }
func (r *Recorder) VertexAttribDivisor(a gpu.Attrib, d uint32) {
	r.record("VertexAttribDivisor", a, d)
}
func (r *Recorder) VertexAttrib4f(a gpu.Attrib, x, y, z, w float32) {
	r.record("VertexAttrib4f", a)
}
func (r *Recorder) EnableVertexAttribArray(a gpu.Attrib)  { r.record("EnableVertexAttribArray", a) }
func (r *Recorder) DisableVertexAttribArray(a gpu.Attrib) { r.record("DisableVertexAttribArray", a) }
func (r *Recorder) VertexAttribPointer(a gpu.Attrib, size int32, typ gpu.Enum, norm bool, stride, offset int32) {
	r.record("VertexAttribPointer", a, size, typ, norm, stride, offset)
}
func (r *Recorder) VertexAttribIPointer(a gpu.Attrib, size int32, typ gpu.Enum, stride, offset int32) {
	r.record("VertexAttribIPointer", a, size, typ, stride, offset)
}

func (r *Recorder) CreateTexture() gpu.Texture {
	r.record("CreateTexture")
	t := gpu.Texture(r.alloc())
	r.Textures[t] = &TextureState{Params: map[gpu.Enum]int32{}}
	return t
}

func (r *Recorder) DeleteTexture(t gpu.Texture) {
	r.record("DeleteTexture", t)
	if s, ok := r.Textures[t]; ok {
		s.Deleted = true
	}
}

func (r *Recorder) BindTexture(target gpu.Enum, t gpu.Texture) {
	r.record("BindTexture", target, t)
	m := r.unitBindings[r.activeUnit]
	if m == nil {
		m = map[gpu.Enum]gpu.Texture{}
		r.unitBindings[r.activeUnit] = m
	}
	m[target] = t
	if s, ok := r.Textures[t]; ok && s.Target == 0 {
		s.Target = target
	}
}

func (r *Recorder) boundTexture(target gpu.Enum) *TextureState {
	if target >= gpu.TEXTURE_CUBE_MAP_POSITIVE_X && target < gpu.TEXTURE_CUBE_MAP_POSITIVE_X+6 {
		target = gpu.TEXTURE_CUBE_MAP
	}
	return r.Textures[r.unitBindings[r.activeUnit][target]]
}

func (r *Recorder) TexParameteri(target, pname gpu.Enum, v int32) {
	r.record("TexParameteri", target, pname, v)
	if s := r.boundTexture(target); s != nil {
		s.Params[pname] = v
	}
}

func (r *Recorder) TexParameterf(target, pname gpu.Enum, v float32) {
	r.record("TexParameterf", target, pname, v)
	if s := r.boundTexture(target); s != nil {
		s.Params[pname] = int32(v)
	}
}

func (r *Recorder) TexStorage2D(target gpu.Enum, levels int32, f gpu.Enum, w, h int32) {
	r.record("TexStorage2D", target, levels, f, w, h)
	if s := r.boundTexture(target); s != nil {
		s.Levels, s.Format, s.Width, s.Height = levels, f, w, h
	}
}

func (r *Recorder) TexStorage3D(target gpu.Enum, levels int32, f gpu.Enum, w, h, d int32) {
	r.record("TexStorage3D", target, levels, f, w, h, d)
	if s := r.boundTexture(target); s != nil {
		s.Levels, s.Format, s.Width, s.Height, s.Depth = levels, f, w, h, d
	}
}

func (r *Recorder) TexImage2D(target gpu.Enum, level int32, f gpu.Enum, w, h int32, format, typ gpu.Enum, data []byte) {
	r.record("TexImage2D", target, level, f, w, h)
	if s := r.boundTexture(target); s != nil {
		s.Uploads++
		if level == 0 {
			s.Format, s.Width, s.Height = f, w, h
		}
	}
}

func (r *Recorder) TexSubImage2D(target gpu.Enum, level, x, y, w, h int32, format, typ gpu.Enum, data []byte) {
	r.record("TexSubImage2D", target, level, w, h)
	if s := r.boundTexture(target); s != nil {
		s.Uploads++
	}
}

func (r *Recorder) TexImage3D(target gpu.Enum, level int32, f gpu.Enum, w, h, d int32, format, typ gpu.Enum, data []byte) {
	r.record("TexImage3D", target, level, f, w, h, d)
	if s := r.boundTexture(target); s != nil {
		s.Uploads++
		s.Format, s.Width, s.Height, s.Depth = f, w, h, d
	}
}

func (r *Recorder) TexSubImage3D(target gpu.Enum, level, x, y, z, w, h, d int32, format, typ gpu.Enum, data []byte) {
	r.record("TexSubImage3D", target, level, w, h, d)
	if s := r.boundTexture(target); s != nil {
		s.Uploads++
	}
}

func (r *Recorder) CompressedTexImage2D(target gpu.Enum, level int32, f gpu.Enum, w, h int32, data []byte) {
	r.record("CompressedTexImage2D", target, level, f, w, h)
	if s := r.boundTexture(target); s != nil {
		s.Uploads++
		s.Format = f
	}
}

func (r *Recorder) CreateBuffer() gpu.Buffer {
	r.record("CreateBuffer")
	b := gpu.Buffer(r.alloc())
	r.Buffers[b] = &BufferState{}
	return b
}

func (r *Recorder) DeleteBuffer(b gpu.Buffer) {
	r.record("DeleteBuffer", b)
	if s, ok := r.Buffers[b]; ok {
		s.Deleted = true
	}
}

func (r *Recorder) BindBuffer(target gpu.Enum, b gpu.Buffer) {
	r.record("BindBuffer", target, b)
	r.boundBuffers[target] = b
}

func (r *Recorder) BufferData(target gpu.Enum, data []byte, usage gpu.Enum) {
	r.record("BufferData", target, len(data), usage)
	if s, ok := r.Buffers[r.boundBuffers[target]]; ok {
		s.Data = append([]byte(nil), data...)
		s.Uploads++
	}
}

func (r *Recorder) BufferSubData(target gpu.Enum, offset int, data []byte) {
	r.record("BufferSubData", target, offset, len(data))
	if s, ok := r.Buffers[r.boundBuffers[target]]; ok {
		if offset+len(data) <= len(s.Data) {
			copy(s.Data[offset:], data)
		}
		s.SubUploads++
	}
}

func (r *Recorder) CreateVertexArray() gpu.VertexArray {
	r.record("CreateVertexArray")
	return gpu.VertexArray(r.alloc())
}
func (r *Recorder) DeleteVertexArray(va gpu.VertexArray) { r.record("DeleteVertexArray", va) }
func (r *Recorder) BindVertexArray(va gpu.VertexArray)   { r.record("BindVertexArray", va) }

func (r *Recorder) CreateFramebuffer() gpu.Framebuffer {
	r.record("CreateFramebuffer")
	fb := gpu.Framebuffer(r.alloc())
	r.Framebuffers[fb] = true
	return fb
}

func (r *Recorder) DeleteFramebuffer(fb gpu.Framebuffer) {
	r.record("DeleteFramebuffer", fb)
	r.Framebuffers[fb] = false
}

func (r *Recorder) BindFramebuffer(target gpu.Enum, fb gpu.Framebuffer) {
	r.record("BindFramebuffer", target, fb)
}

func (r *Recorder) FramebufferTexture2D(target, attachment, texTarget gpu.Enum, t gpu.Texture, level int32) {
	r.record("FramebufferTexture2D", attachment, texTarget, t, level)
}

func (r *Recorder) FramebufferTextureLayer(target, attachment gpu.Enum, t gpu.Texture, level, layer int32) {
	r.record("FramebufferTextureLayer", attachment, t, level, layer)
}

func (r *Recorder) FramebufferRenderbuffer(target, attachment, rbTarget gpu.Enum, rb gpu.Renderbuffer) {
	r.record("FramebufferRenderbuffer", attachment, rb)
}

func (r *Recorder) CheckFramebufferStatus(target gpu.Enum) gpu.Enum {
	r.record("CheckFramebufferStatus")
	return r.FramebufferStatus
}

func (r *Recorder) BlitFramebuffer(sx0, sy0, sx1, sy1, dx0, dy0, dx1, dy1 int32, mask, filter gpu.Enum) {
	r.record("BlitFramebuffer", sx1, sy1, mask, filter)
}

func (r *Recorder) CreateRenderbuffer() gpu.Renderbuffer {
	r.record("CreateRenderbuffer")
	return gpu.Renderbuffer(r.alloc())
}
func (r *Recorder) DeleteRenderbuffer(rb gpu.Renderbuffer) { r.record("DeleteRenderbuffer", rb) }
func (r *Recorder) BindRenderbuffer(target gpu.Enum, rb gpu.Renderbuffer) {
	r.record("BindRenderbuffer", rb)
}
func (r *Recorder) RenderbufferStorage(target, f gpu.Enum, w, h int32) {
	r.record("RenderbufferStorage", f, w, h)
}
func (r *Recorder) RenderbufferStorageMultisample(target gpu.Enum, samples int32, f gpu.Enum, w, h int32) {
	r.record("RenderbufferStorageMultisample", samples, f, w, h)
}

func (r *Recorder) CreateShader(typ gpu.Enum) gpu.Shader {
	r.record("CreateShader", typ)
	s := gpu.Shader(r.alloc())
	r.shaders[s] = &shaderState{typ: typ}
	return s
}

func (r *Recorder) ShaderSource(s gpu.Shader, src string) {
	r.record("ShaderSource")
	r.shaders[s].source = src
}

func (r *Recorder) CompileShader(s gpu.Shader) {
	r.record("CompileShader")
	st := r.shaders[s]
	st.ok = r.FailCompile == nil || !r.FailCompile(st.source)
}

func (r *Recorder) GetShaderi(s gpu.Shader, pname gpu.Enum) int32 {
	if pname == gpu.COMPILE_STATUS && r.shaders[s].ok {
		return 1
	}
	return 0
}

func (r *Recorder) GetShaderInfoLog(s gpu.Shader) string {
	if r.shaders[s].ok {
		return ""
	}
	return "ERROR: 0:1: syntax error"
}

func (r *Recorder) DeleteShader(s gpu.Shader) { r.record("DeleteShader", s) }

func (r *Recorder) CreateProgram() gpu.Program {
	r.record("CreateProgram")
	p := gpu.Program(r.alloc())
	r.Programs[p] = &ProgramState{
		Values:    map[gpu.Uniform][]float32{},
		locations: map[string]gpu.Uniform{},
		bindings:  map[string]gpu.Attrib{},
	}
	return p
}

func (r *Recorder) AttachShader(p gpu.Program, s gpu.Shader) {
	r.record("AttachShader")
	r.Programs[p].Shaders = append(r.Programs[p].Shaders, s)
}

func (r *Recorder) BindAttribLocation(p gpu.Program, a gpu.Attrib, name string) {
	r.record("BindAttribLocation", a, name)
	r.Programs[p].bindings[name] = a
}

func (r *Recorder) LinkProgram(p gpu.Program) {
	r.record("LinkProgram")
	ps := r.Programs[p]
	ps.Linked = true
	var vs, fs string
	for _, s := range ps.Shaders {
		st := r.shaders[s]
		if !st.ok {
			ps.Linked = false
		}
		if st.typ == gpu.VERTEX_SHADER {
			vs = st.source
		} else {
			fs = st.source
		}
	}
	if r.Reflect != nil {
		ps.Attributes, ps.Uniforms = r.Reflect(vs, fs)
	} else {
		ps.Attributes, ps.Uniforms = ReflectSource(vs, fs)
	}
	for i, u := range ps.Uniforms {
		ps.locations[u.Name] = gpu.Uniform(i)
		if strings.HasSuffix(u.Name, "[0]") {
			ps.locations[strings.TrimSuffix(u.Name, "[0]")] = gpu.Uniform(i)
		}
	}
}

func (r *Recorder) GetProgrami(p gpu.Program, pname gpu.Enum) int32 {
	ps := r.Programs[p]
	switch pname {
	case gpu.LINK_STATUS:
		if ps.Linked {
			return 1
		}
		return 0
	case gpu.ACTIVE_UNIFORMS:
		return int32(len(ps.Uniforms))
	case gpu.ACTIVE_ATTRIBS:
		return int32(len(ps.Attributes))
	}
	return 0
}

func (r *Recorder) GetProgramInfoLog(p gpu.Program) string {
	if r.Programs[p].Linked {
		return ""
	}
	return "link failed"
}

func (r *Recorder) DeleteProgram(p gpu.Program) {
	r.record("DeleteProgram", p)
	if ps, ok := r.Programs[p]; ok {
		ps.Deleted = true
	}
}

func (r *Recorder) UseProgram(p gpu.Program) {
	r.record("UseProgram", p)
	r.program = p
}

func (r *Recorder) GetActiveUniform(p gpu.Program, i uint32) (string, int32, gpu.Enum) {
	u := r.Programs[p].Uniforms[i]
	return u.Name, u.Size, u.Type
}

func (r *Recorder) GetUniformLocation(p gpu.Program, name string) gpu.Uniform {
	if l, ok := r.Programs[p].locations[name]; ok {
		return l
	}
	return -1
}

func (r *Recorder) GetActiveAttrib(p gpu.Program, i uint32) (string, int32, gpu.Enum) {
	a := r.Programs[p].Attributes[i]
	return a.Name, a.Size, a.Type
}

func (r *Recorder) GetAttribLocation(p gpu.Program, name string) int32 {
	ps := r.Programs[p]
	if a, ok := ps.bindings[name]; ok {
		return int32(a)
	}
	for i, a := range ps.Attributes {
		if a.Name == name {
			return int32(i)
		}
	}
	return -1
}

// UniformValue returns the last value written to the named uniform of the current program.
func (r *Recorder) UniformValue(name string) []float32 {
	ps := r.Programs[r.program]
	if ps == nil {
		return nil
	}
	l, ok := ps.locations[name]
	if !ok {
		return nil
	}
	return ps.Values[l]
}

func (r *Recorder) setUniform(name string, u gpu.Uniform, v []float32) {
	r.record(name, u)
	if ps := r.Programs[r.program]; ps != nil {
		ps.Values[u] = append([]float32(nil), v...)
	}
}

func ints(v []int32) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}

func (r *Recorder) Uniform1i(u gpu.Uniform, v int32) {
	r.setUniform("Uniform1i", u, []float32{float32(v)})
}
func (r *Recorder) Uniform1f(u gpu.Uniform, v float32)    { r.setUniform("Uniform1f", u, []float32{v}) }
func (r *Recorder) Uniform1fv(u gpu.Uniform, v []float32) { r.setUniform("Uniform1fv", u, v) }
func (r *Recorder) Uniform2fv(u gpu.Uniform, v []float32) { r.setUniform("Uniform2fv", u, v) }
func (r *Recorder) Uniform3fv(u gpu.Uniform, v []float32) { r.setUniform("Uniform3fv", u, v) }
func (r *Recorder) Uniform4fv(u gpu.Uniform, v []float32) { r.setUniform("Uniform4fv", u, v) }
func (r *Recorder) Uniform1iv(u gpu.Uniform, v []int32)   { r.setUniform("Uniform1iv", u, ints(v)) }
func (r *Recorder) Uniform2iv(u gpu.Uniform, v []int32)   { r.setUniform("Uniform2iv", u, ints(v)) }
func (r *Recorder) Uniform3iv(u gpu.Uniform, v []int32)   { r.setUniform("Uniform3iv", u, ints(v)) }
func (r *Recorder) Uniform4iv(u gpu.Uniform, v []int32)   { r.setUniform("Uniform4iv", u, ints(v)) }
func (r *Recorder) UniformMatrix2fv(u gpu.Uniform, v []float32) {
	r.setUniform("UniformMatrix2fv", u, v)
}
func (r *Recorder) UniformMatrix3fv(u gpu.Uniform, v []float32) {
	r.setUniform("UniformMatrix3fv", u, v)
}
func (r *Recorder) UniformMatrix4fv(u gpu.Uniform, v []float32) {
	r.setUniform("UniformMatrix4fv", u, v)
}

func (r *Recorder) DrawArrays(mode gpu.Enum, first, count int32) {
	r.record("DrawArrays", mode, first, count)
}
func (r *Recorder) DrawElements(mode gpu.Enum, count int32, typ gpu.Enum, offset int) {
	r.record("DrawElements", mode, count, typ, offset)
}
func (r *Recorder) DrawArraysInstanced(mode gpu.Enum, first, count, n int32) {
	r.record("DrawArraysInstanced", mode, first, count, n)
}
func (r *Recorder) DrawElementsInstanced(mode gpu.Enum, count int32, typ gpu.Enum, offset int, n int32) {
	r.record("DrawElementsInstanced", mode, count, typ, offset, n)
}

func (r *Recorder) GetInteger(pname gpu.Enum) int32 { return r.Limits[pname] }
func (r *Recorder) GetFloat(pname gpu.Enum) float32 { return r.Floats[pname] }

func (r *Recorder) GetShaderPrecisionFormat(shaderType, precisionType gpu.Enum) (int32, int32, int32) {
	return 127, 127, 23
}

func (r *Recorder) Extensions() []string { return r.Exts }

var (
	structRe  = regexp.MustCompile(`(?s)struct\s+(\w+)\s*\{(.*?)\}\s*;`)
	fieldRe   = regexp.MustCompile(`(\w+)\s+(\w+)\s*(?:\[(\w+)\])?\s*;`)
	uniformRe = regexp.MustCompile(`(?m)^\s*uniform\s+(?:(?:highp|mediump|lowp)\s+)?(\w+)\s+(\w+)\s*(?:\[(\w+)\])?\s*;`)
	inRe      = regexp.MustCompile(`(?m)^\s*(?:layout\s*\([^)]*\)\s*)?in\s+(?:(?:highp|mediump|lowp)\s+)?(\w+)\s+(\w+)\s*;`)
	defineRe  = regexp.MustCompile(`(?m)^\s*#define\s+(\w+)\s+(\d+)\s*$`)
)

var glslTypes = map[string]gpu.Enum{
	"float": gpu.FLOAT, "vec2": gpu.FLOAT_VEC2, "vec3": gpu.FLOAT_VEC3, "vec4": gpu.FLOAT_VEC4,
	"int": gpu.INT, "ivec2": gpu.INT_VEC2, "ivec3": gpu.INT_VEC3, "ivec4": gpu.INT_VEC4,
	"uint": gpu.UNSIGNED_INT, "bool": gpu.BOOL,
	"mat2": gpu.FLOAT_MAT2, "mat3": gpu.FLOAT_MAT3, "mat4": gpu.FLOAT_MAT4,
	"sampler2D": gpu.SAMPLER_2D, "sampler3D": gpu.SAMPLER_3D, "samplerCube": gpu.SAMPLER_CUBE,
	"sampler2DShadow": gpu.SAMPLER_2D_SHADOW, "sampler2DArray": gpu.SAMPLER_2D_ARRAY,
}

// ReflectSource extracts vertex inputs and uniforms from GLSL source the way a driver
// would report them: arrays as "name[0]" with a size, struct members expanded.
// Preprocessor conditionals are ignored; array sizes may name a #define.
func ReflectSource(vertex, fragment string) (attribs, uniforms []ActiveInfo) {
	for _, m := range inRe.FindAllStringSubmatch(vertex, -1) {
		attribs = append(attribs, ActiveInfo{Name: m[2], Size: 1, Type: glslTypes[m[1]]})
	}
	seen := map[string]bool{}
	for _, src := range []string{vertex, fragment} {
		defines := map[string]int{}
		for _, m := range defineRe.FindAllStringSubmatch(src, -1) {
			n, _ := strconv.Atoi(m[2])
			defines[m[1]] = n
		}
		size := func(s string) int {
			if s == "" {
				return 1
			}
			if n, err := strconv.Atoi(s); err == nil {
				return n
			}
			return defines[s]
		}
		structs := map[string][][3]string{}
		for _, m := range structRe.FindAllStringSubmatch(src, -1) {
			for _, f := range fieldRe.FindAllStringSubmatch(m[2], -1) {
				structs[m[1]] = append(structs[m[1]], [3]string{f[1], f[2], f[3]})
			}
		}
		for _, m := range uniformRe.FindAllStringSubmatch(src, -1) {
			typ, name, arr := m[1], m[2], m[3]
			n := size(arr)
			if n == 0 {
				continue
			}
			if fields, ok := structs[typ]; ok {
				for i := 0; i < n; i++ {
					prefix := name
					if arr != "" {
						prefix = fmt.Sprintf("%s[%d]", name, i)
					}
					for _, f := range fields {
						full := prefix + "." + f[1]
						fs := size(f[2])
						if f[2] != "" {
							full += "[0]"
						}
						if !seen[full] {
							seen[full] = true
							uniforms = append(uniforms, ActiveInfo{Name: full, Size: int32(fs), Type: glslTypes[f[0]]})
						}
					}
				}
				continue
			}
			full := name
			if arr != "" {
				full += "[0]"
			}
			if !seen[full] {
				seen[full] = true
				uniforms = append(uniforms, ActiveInfo{Name: full, Size: int32(n), Type: glslTypes[typ]})
			}
		}
	}
	return attribs, uniforms
}

var _ gpu.Context = (*Recorder)(nil)
