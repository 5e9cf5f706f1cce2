package renderer

import (
	"fmt"
	"regexp"
	"strconv"

	"GopherScene/internal/gpu"
	"GopherScene/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
)

// UniformFields is implemented by values fed to struct uniforms.
type UniformFields interface {
	UniformField(name string) any
}

// UniformValues maps top level uniform names to their current values.
type UniformValues map[string]*scene.Uniform

// uniformNode is one node of the setter tree built from a program's active uniforms.
type uniformNode interface {
	ID() string
	setValue(ctx gpu.Context, v any, tx *Textures) error
}

type uniformContainer struct {
	seq []uniformNode
	m   map[string]uniformNode
}

func (c *uniformContainer) add(n uniformNode) {
	c.seq = append(c.seq, n)
	c.m[n.ID()] = n
}

// Uniforms is the setter tree of one linked program. Leaves remember what they last wrote.
type Uniforms struct {
	uniformContainer
	ctx gpu.Context
}

var uniformPathRe = regexp.MustCompile(`([\w\d_]+)(\])?(\[|\.)?`)

// NewUniforms reflects program's active uniforms into a setter tree.
func NewUniforms(ctx gpu.Context, program gpu.Program) *Uniforms {
	u := &Uniforms{ctx: ctx, uniformContainer: uniformContainer{m: make(map[string]uniformNode)}}
	n := int(ctx.GetProgrami(program, gpu.ACTIVE_UNIFORMS))
	for i := 0; i < n; i++ {
		name, size, typ := ctx.GetActiveUniform(program, uint32(i))
		addr := ctx.GetUniformLocation(program, name)
		parseUniform(name, int(size), typ, addr, &u.uniformContainer)
	}
	return u
}

func parseUniform(path string, size int, typ gpu.Enum, addr gpu.Uniform, container *uniformContainer) {
	matches := uniformPathRe.FindAllStringSubmatchIndex(path, -1)
	for _, m := range matches {
		id := path[m[2]:m[3]]
		subscript := ""
		if m[6] >= 0 {
			subscript = path[m[6]:m[7]]
		}
		end := m[1]
		if subscript == "" || (subscript == "[" && end+2 == len(path)) {
			if subscript == "" {
				container.add(newSingleUniform(id, typ, addr))
			} else {
				container.add(newPureArrayUniform(id, size, typ, addr))
			}
			return
		}
		next, ok := container.m[id]
		if !ok {
			s := &structuredUniform{id: id, uniformContainer: uniformContainer{m: make(map[string]uniformNode)}}
			container.add(s)
			next = s
		}
		s, ok := next.(*structuredUniform)
		if !ok {
			return
		}
		container = &s.uniformContainer
	}
}

// Has reports whether the program declares a top level uniform named name.
func (u *Uniforms) Has(name string) bool {
	_, ok := u.m[name]
	return ok
}

// SetValue writes value to the named top level uniform. Unknown names are ignored.
func (u *Uniforms) SetValue(name string, value any, tx *Textures) error {
	n, ok := u.m[name]
	if !ok {
		return nil
	}
	return n.setValue(u.ctx, value, tx)
}

// Seq returns the top level nodes in reflection order.
func (u *Uniforms) Seq() []uniformNode { return u.seq }

// Upload writes every node of seq from values.
func (u *Uniforms) Upload(seq []uniformNode, values UniformValues, tx *Textures) error {
	for _, n := range seq {
		v, ok := values[n.ID()]
		if !ok || v == nil {
			continue
		}
		if err := n.setValue(u.ctx, v.Value, tx); err != nil {
			return fmt.Errorf("uniform %s: %w", n.ID(), err)
		}
	}
	return nil
}

// SeqWithValue filters seq down to nodes that values provides.
func SeqWithValue(seq []uniformNode, values UniformValues) []uniformNode {
	out := make([]uniformNode, 0, len(seq))
	for _, n := range seq {
		if _, ok := values[n.ID()]; ok {
			out = append(out, n)
		}
	}
	return out
}

type structuredUniform struct {
	uniformContainer
	id string
}

func (s *structuredUniform) ID() string { return s.id }

func (s *structuredUniform) setValue(ctx gpu.Context, v any, tx *Textures) error {
	if v == nil {
		return nil
	}
	for _, n := range s.seq {
		child := uniformChild(v, n.ID())
		if child == nil {
			continue
		}
		if err := n.setValue(ctx, child, tx); err != nil {
			return err
		}
	}
	return nil
}

// uniformChild resolves a struct member or array element of v.
func uniformChild(v any, id string) any {
	if idx, err := strconv.Atoi(id); err == nil {
		switch arr := v.(type) {
		case []any:
			if idx < len(arr) {
				return arr[idx]
			}
		case []map[string]any:
			if idx < len(arr) {
				return arr[idx]
			}
		}
		return nil
	}
	switch obj := v.(type) {
	case UniformFields:
		return obj.UniformField(id)
	case map[string]any:
		return obj[id]
	}
	return nil
}

type singleUniform struct {
	id    string
	addr  gpu.Uniform
	typ   gpu.Enum
	cache []float32
	// scratch is reused to flatten incoming values
	scratch []float32
}

func newSingleUniform(id string, typ gpu.Enum, addr gpu.Uniform) *singleUniform {
	return &singleUniform{id: id, typ: typ, addr: addr}
}

func (s *singleUniform) ID() string { return s.id }

func isSampler(typ gpu.Enum) bool {
	switch typ {
	case gpu.SAMPLER_2D, gpu.SAMPLER_2D_SHADOW, gpu.SAMPLER_3D, gpu.SAMPLER_CUBE, gpu.SAMPLER_2D_ARRAY:
		return true
	}
	return false
}

func (s *singleUniform) setValue(ctx gpu.Context, v any, tx *Textures) error {
	if isSampler(s.typ) {
		unit := tx.AllocateTextureUnit()
		if len(s.cache) == 0 || s.cache[0] != float32(unit) {
			ctx.Uniform1i(s.addr, int32(unit))
			s.cache = []float32{float32(unit)}
		}
		t, _ := v.(*scene.Texture)
		return bindSampler(tx, s.typ, t, unit)
	}
	s.scratch = flatten(s.scratch[:0], v)
	if len(s.scratch) == 0 || floatsEqual(s.cache, s.scratch) {
		return nil
	}
	writeUniform(ctx, s.typ, s.addr, s.scratch)
	s.cache = append(s.cache[:0], s.scratch...)
	return nil
}

type pureArrayUniform struct {
	id      string
	addr    gpu.Uniform
	typ     gpu.Enum
	size    int
	cache   []float32
	scratch []float32
}

func newPureArrayUniform(id string, size int, typ gpu.Enum, addr gpu.Uniform) *pureArrayUniform {
	return &pureArrayUniform{id: id, size: size, typ: typ, addr: addr}
}

func (p *pureArrayUniform) ID() string { return p.id }

func (p *pureArrayUniform) setValue(ctx gpu.Context, v any, tx *Textures) error {
	if isSampler(p.typ) {
		textures, _ := v.([]*scene.Texture)
		n := len(textures)
		if n > p.size {
			n = p.size
		}
		units := make([]int32, n)
		for i := range units {
			units[i] = int32(tx.AllocateTextureUnit())
		}
		p.scratch = p.scratch[:0]
		for _, u := range units {
			p.scratch = append(p.scratch, float32(u))
		}
		if !floatsEqual(p.cache, p.scratch) {
			ctx.Uniform1iv(p.addr, units)
			p.cache = append(p.cache[:0], p.scratch...)
		}
		for i := 0; i < n; i++ {
			if err := bindSampler(tx, p.typ, textures[i], int(units[i])); err != nil {
				return err
			}
		}
		return nil
	}
	p.scratch = flatten(p.scratch[:0], v)
	if len(p.scratch) == 0 || floatsEqual(p.cache, p.scratch) {
		return nil
	}
	writeUniform(ctx, p.typ, p.addr, p.scratch)
	p.cache = append(p.cache[:0], p.scratch...)
	return nil
}

func bindSampler(tx *Textures, typ gpu.Enum, t *scene.Texture, unit int) error {
	switch typ {
	case gpu.SAMPLER_3D:
		return tx.SetTexture3D(t, unit)
	case gpu.SAMPLER_CUBE:
		return tx.SetTextureCube(t, unit)
	case gpu.SAMPLER_2D_ARRAY:
		return tx.SetTexture2DArray(t, unit)
	}
	return tx.SetTexture2D(t, unit)
}

func floatsEqual(a, b []float32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// flatten appends the components of v to dst.
func flatten(dst []float32, v any) []float32 {
	switch x := v.(type) {
	case float32:
		return append(dst, x)
	case float64:
		return append(dst, float32(x))
	case int:
		return append(dst, float32(x))
	case int32:
		return append(dst, float32(x))
	case uint32:
		return append(dst, float32(x))
	case bool:
		if x {
			return append(dst, 1)
		}
		return append(dst, 0)
	case mgl32.Vec2:
		return append(dst, x[:]...)
	case mgl32.Vec3:
		return append(dst, x[:]...)
	case mgl32.Vec4:
		return append(dst, x[:]...)
	case mgl32.Mat2:
		return append(dst, x[:]...)
	case mgl32.Mat3:
		return append(dst, x[:]...)
	case mgl32.Mat4:
		return append(dst, x[:]...)
	case []float32:
		return append(dst, x...)
	case []int32:
		for _, i := range x {
			dst = append(dst, float32(i))
		}
		return dst
	case []mgl32.Vec2:
		for _, e := range x {
			dst = append(dst, e[:]...)
		}
		return dst
	case []mgl32.Vec3:
		for _, e := range x {
			dst = append(dst, e[:]...)
		}
		return dst
	case []mgl32.Vec4:
		for _, e := range x {
			dst = append(dst, e[:]...)
		}
		return dst
	case []mgl32.Mat3:
		for _, e := range x {
			dst = append(dst, e[:]...)
		}
		return dst
	case []mgl32.Mat4:
		for _, e := range x {
			dst = append(dst, e[:]...)
		}
		return dst
	}
	return dst
}

func toInts(v []float32) []int32 {
	out := make([]int32, len(v))
	for i, f := range v {
		out[i] = int32(f)
	}
	return out
}

// writeUniform issues the native setter matching typ.
func writeUniform(ctx gpu.Context, typ gpu.Enum, addr gpu.Uniform, v []float32) {
	switch typ {
	case gpu.FLOAT:
		if len(v) == 1 {
			ctx.Uniform1f(addr, v[0])
		} else {
			ctx.Uniform1fv(addr, v)
		}
	case gpu.FLOAT_VEC2:
		ctx.Uniform2fv(addr, v)
	case gpu.FLOAT_VEC3:
		ctx.Uniform3fv(addr, v)
	case gpu.FLOAT_VEC4:
		ctx.Uniform4fv(addr, v)
	case gpu.FLOAT_MAT2:
		ctx.UniformMatrix2fv(addr, v)
	case gpu.FLOAT_MAT3:
		ctx.UniformMatrix3fv(addr, v)
	case gpu.FLOAT_MAT4:
		ctx.UniformMatrix4fv(addr, v)
	case gpu.INT, gpu.BOOL, gpu.UNSIGNED_INT:
		if len(v) == 1 {
			ctx.Uniform1i(addr, int32(v[0]))
		} else {
			ctx.Uniform1iv(addr, toInts(v))
		}
	case gpu.INT_VEC2:
		ctx.Uniform2iv(addr, toInts(v))
	case gpu.INT_VEC3:
		ctx.Uniform3iv(addr, toInts(v))
	case gpu.INT_VEC4:
		ctx.Uniform4iv(addr, toInts(v))
	}
}
