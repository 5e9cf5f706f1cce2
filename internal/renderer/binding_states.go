package renderer

import (
	"GopherScene/internal/gpu"
	"GopherScene/internal/logger"
	"GopherScene/internal/scene"

	"go.uber.org/zap"
)

type cachedAttribute struct {
	attribute scene.Attribute
	data      *scene.InterleavedBuffer
}

// BindingState is one vertex array configuration for a geometry, program and wireframe flag.
type BindingState struct {
	object            gpu.VertexArray
	newAttributes     []bool
	enabledAttributes []bool
	attributeDivisors []uint32
	attributes        map[string]cachedAttribute
	attributesNum     int
	index             *scene.BufferAttribute
}

func newBindingState(va gpu.VertexArray, maxAttributes int) *BindingState {
	return &BindingState{
		object:            va,
		newAttributes:     make([]bool, maxAttributes),
		enabledAttributes: make([]bool, maxAttributes),
		attributeDivisors: make([]uint32, maxAttributes),
		attributes:        make(map[string]cachedAttribute),
	}
}

type programStates map[int]map[bool]*BindingState

// BindingStates caches vertex array objects keyed by (geometry id, program id, wireframe).
type BindingStates struct {
	ctx           gpu.Context
	attributes    *Attributes
	maxAttributes int

	states       map[int]programStates
	defaultState *BindingState
	current      *BindingState
	forceUpdate  bool
	warned       map[int]bool
}

func NewBindingStates(ctx gpu.Context, attributes *Attributes, caps *Capabilities) *BindingStates {
	def := newBindingState(0, caps.MaxAttributes)
	return &BindingStates{
		ctx:           ctx,
		attributes:    attributes,
		maxAttributes: caps.MaxAttributes,
		states:        make(map[int]programStates),
		defaultState:  def,
		current:       def,
		warned:        make(map[int]bool),
	}
}

// Setup binds the vertex layout for drawing geometry with program. Native attribute calls
// are issued only when the cached layout differs from the live one.
func (b *BindingStates) Setup(object *scene.Object, material *scene.Material, program *Program, geometry *scene.Geometry, index *scene.BufferAttribute) *BindingState {
	state := b.get(geometry, program, material)
	if b.current != state {
		b.current = state
		b.ctx.BindVertexArray(state.object)
	}

	update := b.needsUpdate(state, object, geometry, program, index)
	if update {
		b.saveCache(state, object, geometry, program, index)
	}

	if index != nil {
		b.attributes.Update(index, gpu.ELEMENT_ARRAY_BUFFER)
	}

	if update || b.forceUpdate {
		b.forceUpdate = false
		b.setupVertexAttributes(object, material, program, geometry)
		if index != nil {
			if rec := b.attributes.Get(index); rec != nil {
				b.ctx.BindBuffer(gpu.ELEMENT_ARRAY_BUFFER, rec.buffer)
			}
		}
	}
	return state
}

func (b *BindingStates) get(geometry *scene.Geometry, program *Program, material *scene.Material) *BindingState {
	ps, ok := b.states[geometry.ID()]
	if !ok {
		ps = make(programStates)
		b.states[geometry.ID()] = ps
	}
	ws, ok := ps[program.ID()]
	if !ok {
		ws = make(map[bool]*BindingState)
		ps[program.ID()] = ws
	}
	state, ok := ws[material.Wireframe]
	if !ok {
		state = newBindingState(b.ctx.CreateVertexArray(), b.maxAttributes)
		ws[material.Wireframe] = state
	}
	return state
}

// lookupAttribute resolves a program input to geometry data. Instance data lives on the object.
func lookupAttribute(object *scene.Object, geometry *scene.Geometry, name string) scene.Attribute {
	switch name {
	case "instanceMatrix":
		if object.InstanceMatrix != nil {
			return object.InstanceMatrix
		}
	case "instanceColor":
		if object.InstanceColor != nil {
			return object.InstanceColor
		}
	}
	if a, ok := geometry.Attributes[name]; ok {
		return a
	}
	return nil
}

func (b *BindingStates) needsUpdate(state *BindingState, object *scene.Object, geometry *scene.Geometry, program *Program, index *scene.BufferAttribute) bool {
	n := 0
	for name, pa := range program.Attributes() {
		if pa.location < 0 {
			continue
		}
		cached, ok := state.attributes[name]
		if !ok {
			return true
		}
		live := lookupAttribute(object, geometry, name)
		if cached.attribute != live {
			return true
		}
		if ia, ok := live.(*scene.InterleavedAttribute); ok && cached.data != ia.Data {
			return true
		}
		n++
	}
	if state.attributesNum != n {
		return true
	}
	return state.index != index
}

func (b *BindingStates) saveCache(state *BindingState, object *scene.Object, geometry *scene.Geometry, program *Program, index *scene.BufferAttribute) {
	cache := make(map[string]cachedAttribute)
	n := 0
	for name, pa := range program.Attributes() {
		if pa.location < 0 {
			continue
		}
		live := lookupAttribute(object, geometry, name)
		c := cachedAttribute{attribute: live}
		if ia, ok := live.(*scene.InterleavedAttribute); ok {
			c.data = ia.Data
		}
		cache[name] = c
		n++
	}
	state.attributes = cache
	state.attributesNum = n
	state.index = index
}

// InitAttributes starts a new attribute set on the current state.
func (b *BindingStates) InitAttributes() {
	for i := range b.current.newAttributes {
		b.current.newAttributes[i] = false
	}
}

func (b *BindingStates) EnableAttribute(loc int) {
	b.EnableAttributeAndDivisor(loc, 0)
}

// EnableAttributeAndDivisor enables loc with a per instance step. Locations past the
// device limit are skipped with a warning.
func (b *BindingStates) EnableAttributeAndDivisor(loc int, divisor uint32) {
	s := b.current
	if loc >= len(s.newAttributes) {
		if !b.warned[loc] {
			b.warned[loc] = true
			logger.Log.Warn("Vertex attribute location exceeds device limit",
				zap.Int("location", loc),
				zap.Int("maxAttributes", b.maxAttributes))
		}
		return
	}
	s.newAttributes[loc] = true
	if !s.enabledAttributes[loc] {
		b.ctx.EnableVertexAttribArray(gpu.Attrib(loc))
		s.enabledAttributes[loc] = true
	}
	if s.attributeDivisors[loc] != divisor {
		b.ctx.VertexAttribDivisor(gpu.Attrib(loc), divisor)
		s.attributeDivisors[loc] = divisor
	}
}

// DisableUnusedAttributes disables locations enabled before but not in the new set.
func (b *BindingStates) DisableUnusedAttributes() {
	s := b.current
	for i := range s.enabledAttributes {
		if s.enabledAttributes[i] && !s.newAttributes[i] {
			b.ctx.DisableVertexAttribArray(gpu.Attrib(i))
			s.enabledAttributes[i] = false
		}
	}
}

func (b *BindingStates) vertexAttribPointer(loc, size int, typ gpu.Enum, normalized bool, stride, offset int, integer bool) {
	if loc >= b.maxAttributes {
		return
	}
	if integer {
		b.ctx.VertexAttribIPointer(gpu.Attrib(loc), int32(size), typ, int32(stride), int32(offset))
	} else {
		b.ctx.VertexAttribPointer(gpu.Attrib(loc), int32(size), typ, normalized, int32(stride), int32(offset))
	}
}

func (b *BindingStates) setupVertexAttributes(object *scene.Object, material *scene.Material, program *Program, geometry *scene.Geometry) {
	b.InitAttributes()
	for name, pa := range program.Attributes() {
		if pa.location < 0 {
			continue
		}
		attr := lookupAttribute(object, geometry, name)
		if attr == nil {
			b.setDefaultValue(name, pa)
			continue
		}
		rec := b.attributes.Get(attr)
		if rec == nil {
			continue
		}
		size := attr.Size()
		perLocation := size / pa.locationSize
		if perLocation == 0 {
			perLocation = size
		}
		integer := rec.typ == gpu.INT || rec.typ == gpu.UNSIGNED_INT
		if ba, ok := attr.(*scene.BufferAttribute); ok && ba.Integer {
			integer = true
		}
		bpe := rec.bytesPerElement

		// stride and offset stay in elements until the native call
		var stride, offset int
		var instanced bool
		var meshPerAttribute int
		switch a := attr.(type) {
		case *scene.InterleavedAttribute:
			stride, offset = a.Data.Stride, a.Offset
			instanced, meshPerAttribute = a.Data.Instanced, a.Data.MeshPerAttribute
		case *scene.BufferAttribute:
			stride, offset = size, 0
			instanced, meshPerAttribute = a.Instanced, a.MeshPerAttribute
		}
		for i := 0; i < pa.locationSize; i++ {
			if instanced {
				b.EnableAttributeAndDivisor(pa.location+i, uint32(meshPerAttribute))
			} else {
				b.EnableAttribute(pa.location + i)
			}
		}
		b.ctx.BindBuffer(gpu.ARRAY_BUFFER, rec.buffer)
		for i := 0; i < pa.locationSize; i++ {
			b.vertexAttribPointer(pa.location+i, perLocation, rec.typ, attr.IsNormalized(),
				stride*bpe, (offset+perLocation*i)*bpe, integer)
		}
	}
	b.DisableUnusedAttributes()
}

// setDefaultValue feeds a constant to program inputs the geometry does not provide.
func (b *BindingStates) setDefaultValue(name string, pa programAttribute) {
	switch name {
	case "color":
		b.ctx.VertexAttrib4f(gpu.Attrib(pa.location), 1, 1, 1, 1)
	case "instanceMatrix":
		for i := 0; i < pa.locationSize && i < 4; i++ {
			col := [4]float32{}
			col[i] = 1
			b.ctx.VertexAttrib4f(gpu.Attrib(pa.location+i), col[0], col[1], col[2], col[3])
		}
	}
}

// Reset returns to the default vertex array and forces the next Setup to rebind.
func (b *BindingStates) Reset() {
	b.ResetDefaultState()
	b.forceUpdate = true
	if b.current != b.defaultState {
		b.current = b.defaultState
		b.ctx.BindVertexArray(b.defaultState.object)
	}
}

func (b *BindingStates) ResetDefaultState() {
	d := b.defaultState
	for i := range d.newAttributes {
		d.newAttributes[i] = false
		d.enabledAttributes[i] = false
		d.attributeDivisors[i] = 0
	}
	d.attributes = make(map[string]cachedAttribute)
	d.attributesNum = 0
	d.index = nil
}

// ReleaseStatesOfGeometry deletes every vertex array built for geometry id.
func (b *BindingStates) ReleaseStatesOfGeometry(id int) {
	ps, ok := b.states[id]
	if !ok {
		return
	}
	for _, ws := range ps {
		for _, s := range ws {
			b.deleteState(s)
		}
	}
	delete(b.states, id)
}

// ReleaseStatesOfProgram deletes every vertex array built for program id.
func (b *BindingStates) ReleaseStatesOfProgram(id int) {
	for _, ps := range b.states {
		ws, ok := ps[id]
		if !ok {
			continue
		}
		for _, s := range ws {
			b.deleteState(s)
		}
		delete(ps, id)
	}
}

func (b *BindingStates) deleteState(s *BindingState) {
	if b.current == s {
		b.current = b.defaultState
		b.ctx.BindVertexArray(0)
	}
	b.ctx.DeleteVertexArray(s.object)
}

func (b *BindingStates) Dispose() {
	b.Reset()
	for id := range b.states {
		b.ReleaseStatesOfGeometry(id)
	}
}
