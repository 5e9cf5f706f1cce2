package renderer

import (
	"GopherScene/internal/gpu"
	"GopherScene/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
)

const unknownEnum = gpu.Enum(gpu.InvalidHandle)

// tristate mirrors a boolean GPU flag whose native value may be unknown.
type tristate int8

const (
	unknown tristate = iota
	off
	on
)

func tri(b bool) tristate {
	if b {
		return on
	}
	return off
}

type CullFace int

const (
	CullFaceNone CullFace = iota
	CullFaceBack
	CullFaceFront
	CullFaceFrontBack
)

// ColorBuffer mirrors color write mask and clear color.
type ColorBuffer struct {
	ctx      gpu.Context
	locked   bool
	mask     tristate
	clear    mgl32.Vec4
	clearSet bool
}

func (c *ColorBuffer) SetMask(mask bool) {
	if c.mask != tri(mask) && !c.locked {
		c.ctx.ColorMask(mask, mask, mask, mask)
		c.mask = tri(mask)
	}
}

func (c *ColorBuffer) SetLocked(lock bool) { c.locked = lock }

func (c *ColorBuffer) SetClear(r, g, b, a float32, premultipliedAlpha bool) {
	if premultipliedAlpha {
		r, g, b = r*a, g*a, b*a
	}
	v := mgl32.Vec4{r, g, b, a}
	if !c.clearSet || c.clear != v {
		c.ctx.ClearColor(r, g, b, a)
		c.clear = v
		c.clearSet = true
	}
}

func (c *ColorBuffer) Reset() {
	c.locked = false
	c.mask = unknown
	c.clearSet = false
}

// DepthBuffer mirrors depth test, mask, function and clear value.
type DepthBuffer struct {
	ctx      gpu.Context
	state    *State
	locked   bool
	mask     tristate
	fn       gpu.Enum
	clear    float64
	clearSet bool
}

func (d *DepthBuffer) SetTest(test bool) {
	if test {
		d.state.Enable(gpu.DEPTH_TEST)
	} else {
		d.state.Disable(gpu.DEPTH_TEST)
	}
}

func (d *DepthBuffer) SetMask(mask bool) {
	if d.mask != tri(mask) && !d.locked {
		d.ctx.DepthMask(mask)
		d.mask = tri(mask)
	}
}

func (d *DepthBuffer) SetFunc(fn gpu.Enum) {
	if d.fn != fn {
		d.ctx.DepthFunc(fn)
		d.fn = fn
	}
}

func (d *DepthBuffer) SetLocked(lock bool) { d.locked = lock }

func (d *DepthBuffer) SetClear(depth float64) {
	if !d.clearSet || d.clear != depth {
		d.ctx.ClearDepth(depth)
		d.clear = depth
		d.clearSet = true
	}
}

func (d *DepthBuffer) Reset() {
	d.locked = false
	d.mask = unknown
	d.fn = unknownEnum
	d.clearSet = false
}

// StencilBuffer mirrors stencil test, masks, function, operations and clear value.
type StencilBuffer struct {
	ctx      gpu.Context
	state    *State
	locked   bool
	mask     int64
	fn       gpu.Enum
	ref      int32
	fnMask   uint32
	fail     gpu.Enum
	zfail    gpu.Enum
	zpass    gpu.Enum
	clear    int32
	clearSet bool
}

func (s *StencilBuffer) SetTest(test bool) {
	if s.locked {
		return
	}
	if test {
		s.state.Enable(gpu.STENCIL_TEST)
	} else {
		s.state.Disable(gpu.STENCIL_TEST)
	}
}

func (s *StencilBuffer) SetMask(mask uint32) {
	if s.mask != int64(mask) && !s.locked {
		s.ctx.StencilMask(mask)
		s.mask = int64(mask)
	}
}

func (s *StencilBuffer) SetFunc(fn gpu.Enum, ref int32, mask uint32) {
	if s.fn != fn || s.ref != ref || s.fnMask != mask {
		s.ctx.StencilFunc(fn, ref, mask)
		s.fn, s.ref, s.fnMask = fn, ref, mask
	}
}

func (s *StencilBuffer) SetOp(fail, zfail, zpass gpu.Enum) {
	if s.fail != fail || s.zfail != zfail || s.zpass != zpass {
		s.ctx.StencilOp(fail, zfail, zpass)
		s.fail, s.zfail, s.zpass = fail, zfail, zpass
	}
}

func (s *StencilBuffer) SetLocked(lock bool) { s.locked = lock }

func (s *StencilBuffer) SetClear(v int32) {
	if !s.clearSet || s.clear != v {
		s.ctx.ClearStencil(v)
		s.clear = v
		s.clearSet = true
	}
}

func (s *StencilBuffer) Reset() {
	s.locked = false
	s.mask = -1
	s.fn, s.fail, s.zfail, s.zpass = unknownEnum, unknownEnum, unknownEnum, unknownEnum
	s.ref, s.fnMask = -1, 0
	s.clearSet = false
}

type boundTexture struct {
	target  gpu.Enum
	texture gpu.Texture
}

// State mirrors the GPU pipeline state and only forwards calls that change it.
type State struct {
	ctx   gpu.Context
	utils *Utils

	Color   ColorBuffer
	Depth   DepthBuffer
	Stencil StencilBuffer

	enabled map[gpu.Enum]tristate

	program gpu.Program

	blendingEnabled    tristate
	blending           scene.Blending
	blendEquation      gpu.Enum
	blendSrc           gpu.Enum
	blendDst           gpu.Enum
	blendEquationAlpha gpu.Enum
	blendSrcAlpha      gpu.Enum
	blendDstAlpha      gpu.Enum
	blendColor         mgl32.Vec4
	blendColorSet      bool
	premultipliedAlpha tristate

	flipSided tristate
	cullFace  CullFace

	lineWidth           float32
	polygonOffsetFactor float32
	polygonOffsetUnits  float32
	polygonOffsetSet    bool

	maxTextures   int
	textureSlot   gpu.Enum
	boundTextures map[gpu.Enum]*boundTexture
	emptyTextures map[gpu.Enum]gpu.Texture

	framebuffers map[gpu.Enum]gpu.Framebuffer
	drawBuffers  map[gpu.Framebuffer]int

	viewport    [4]int32
	viewportSet bool
	scissor     [4]int32
	scissorSet  bool
}

// NewState creates the mirror and the 1x1 placeholder textures bound when a sampler has no texture.
func NewState(ctx gpu.Context, utils *Utils, caps *Capabilities) *State {
	s := &State{
		ctx:           ctx,
		utils:         utils,
		maxTextures:   caps.MaxTextures,
		boundTextures: make(map[gpu.Enum]*boundTexture),
		emptyTextures: make(map[gpu.Enum]gpu.Texture),
	}
	s.Color.ctx = ctx
	s.Depth.ctx, s.Depth.state = ctx, s
	s.Stencil.ctx, s.Stencil.state = ctx, s

	black := []byte{0, 0, 0, 0}
	for _, target := range []gpu.Enum{gpu.TEXTURE_2D, gpu.TEXTURE_CUBE_MAP, gpu.TEXTURE_2D_ARRAY, gpu.TEXTURE_3D} {
		t := ctx.CreateTexture()
		ctx.BindTexture(target, t)
		ctx.TexParameteri(target, gpu.TEXTURE_MIN_FILTER, int32(gpu.NEAREST))
		ctx.TexParameteri(target, gpu.TEXTURE_MAG_FILTER, int32(gpu.NEAREST))
		switch target {
		case gpu.TEXTURE_2D:
			ctx.TexImage2D(target, 0, gpu.RGBA8, 1, 1, gpu.RGBA, gpu.UNSIGNED_BYTE, black)
		case gpu.TEXTURE_CUBE_MAP:
			for i := gpu.Enum(0); i < 6; i++ {
				ctx.TexImage2D(gpu.TEXTURE_CUBE_MAP_POSITIVE_X+i, 0, gpu.RGBA8, 1, 1, gpu.RGBA, gpu.UNSIGNED_BYTE, black)
			}
		default:
			ctx.TexImage3D(target, 0, gpu.RGBA8, 1, 1, 1, gpu.RGBA, gpu.UNSIGNED_BYTE, black)
		}
		s.emptyTextures[target] = t
	}

	s.Reset()
	return s
}

// Enable turns a capability on when the mirror does not already say so.
func (s *State) Enable(capability gpu.Enum) {
	if s.enabled[capability] != on {
		s.ctx.Enable(capability)
		s.enabled[capability] = on
	}
}

func (s *State) Disable(capability gpu.Enum) {
	if s.enabled[capability] != off {
		s.ctx.Disable(capability)
		s.enabled[capability] = off
	}
}

// BindFramebuffer binds fb to target. FRAMEBUFFER and DRAW_FRAMEBUFFER alias each other.
// It reports whether a native call was made.
func (s *State) BindFramebuffer(target gpu.Enum, fb gpu.Framebuffer) bool {
	if cur, ok := s.framebuffers[target]; ok && cur == fb {
		return false
	}
	s.ctx.BindFramebuffer(target, fb)
	s.framebuffers[target] = fb
	switch target {
	case gpu.DRAW_FRAMEBUFFER:
		s.framebuffers[gpu.FRAMEBUFFER] = fb
	case gpu.FRAMEBUFFER:
		s.framebuffers[gpu.DRAW_FRAMEBUFFER] = fb
	}
	return true
}

// DrawBuffers selects count color attachments of fb, or the back buffer for the default framebuffer.
func (s *State) DrawBuffers(fb gpu.Framebuffer, count int) {
	if cur, ok := s.drawBuffers[fb]; ok && cur == count {
		return
	}
	bufs := []gpu.Enum{gpu.BACK}
	if fb != 0 {
		bufs = make([]gpu.Enum, count)
		for i := range bufs {
			bufs[i] = gpu.COLOR_ATTACHMENT0 + gpu.Enum(i)
		}
	}
	s.ctx.DrawBuffers(bufs)
	s.drawBuffers[fb] = count
}

// UseProgram reports whether the program changed.
func (s *State) UseProgram(p gpu.Program) bool {
	if s.program == p {
		return false
	}
	s.ctx.UseProgram(p)
	s.program = p
	return true
}

// SetBlending applies a blending mode. The separate factors only matter for CustomBlending.
func (s *State) SetBlending(blending scene.Blending, eq, src, dst, eqAlpha, srcAlpha, dstAlpha gpu.Enum, color mgl32.Vec3, alpha float32, premultipliedAlpha bool) {
	if blending == scene.NoBlending {
		if s.blendingEnabled != off {
			s.Disable(gpu.BLEND)
			s.blendingEnabled = off
		}
		return
	}
	if s.blendingEnabled != on {
		s.Enable(gpu.BLEND)
		s.blendingEnabled = on
	}

	if blending != scene.CustomBlending {
		if blending == s.blending && s.premultipliedAlpha == tri(premultipliedAlpha) {
			return
		}
		if s.blendEquation != gpu.FUNC_ADD || s.blendEquationAlpha != gpu.FUNC_ADD {
			s.ctx.BlendEquation(gpu.FUNC_ADD)
			s.blendEquation, s.blendEquationAlpha = gpu.FUNC_ADD, gpu.FUNC_ADD
		}
		if premultipliedAlpha {
			switch blending {
			case scene.NormalBlending:
				s.ctx.BlendFuncSeparate(gpu.ONE, gpu.ONE_MINUS_SRC_ALPHA, gpu.ONE, gpu.ONE_MINUS_SRC_ALPHA)
			case scene.AdditiveBlending:
				s.ctx.BlendFunc(gpu.ONE, gpu.ONE)
			case scene.SubtractiveBlending:
				s.ctx.BlendFuncSeparate(gpu.ZERO, gpu.ONE_MINUS_SRC_COLOR, gpu.ZERO, gpu.ONE)
			case scene.MultiplyBlending:
				s.ctx.BlendFuncSeparate(gpu.ZERO, gpu.SRC_COLOR, gpu.ZERO, gpu.SRC_ALPHA)
			}
		} else {
			switch blending {
			case scene.NormalBlending:
				s.ctx.BlendFuncSeparate(gpu.SRC_ALPHA, gpu.ONE_MINUS_SRC_ALPHA, gpu.ONE, gpu.ONE_MINUS_SRC_ALPHA)
			case scene.AdditiveBlending:
				s.ctx.BlendFunc(gpu.SRC_ALPHA, gpu.ONE)
			case scene.SubtractiveBlending:
				s.ctx.BlendFuncSeparate(gpu.ZERO, gpu.ONE_MINUS_SRC_COLOR, gpu.ZERO, gpu.ONE)
			case scene.MultiplyBlending:
				s.ctx.BlendFunc(gpu.ZERO, gpu.SRC_COLOR)
			}
		}
		s.blendSrc, s.blendDst, s.blendSrcAlpha, s.blendDstAlpha = unknownEnum, unknownEnum, unknownEnum, unknownEnum
		s.blendColor, s.blendColorSet = mgl32.Vec4{}, true
		s.blending = blending
		s.premultipliedAlpha = tri(premultipliedAlpha)
		return
	}

	if eqAlpha == 0 {
		eqAlpha = eq
	}
	if srcAlpha == 0 {
		srcAlpha = src
	}
	if dstAlpha == 0 {
		dstAlpha = dst
	}
	if eq != s.blendEquation || eqAlpha != s.blendEquationAlpha {
		s.ctx.BlendEquationSeparate(eq, eqAlpha)
		s.blendEquation, s.blendEquationAlpha = eq, eqAlpha
	}
	if src != s.blendSrc || dst != s.blendDst || srcAlpha != s.blendSrcAlpha || dstAlpha != s.blendDstAlpha {
		s.ctx.BlendFuncSeparate(src, dst, srcAlpha, dstAlpha)
		s.blendSrc, s.blendDst, s.blendSrcAlpha, s.blendDstAlpha = src, dst, srcAlpha, dstAlpha
	}
	c := color.Vec4(alpha)
	if !s.blendColorSet || c != s.blendColor {
		s.ctx.BlendColor(c[0], c[1], c[2], c[3])
		s.blendColor, s.blendColorSet = c, true
	}
	s.blending = blending
	s.premultipliedAlpha = off
}

// SetMaterial derives cull, blend, depth, stencil and polygon offset state from m.
func (s *State) SetMaterial(m *scene.Material, frontFaceCW bool) {
	if m.Side == scene.DoubleSide {
		s.Disable(gpu.CULL_FACE)
	} else {
		s.Enable(gpu.CULL_FACE)
	}
	flip := m.Side == scene.BackSide
	if frontFaceCW {
		flip = !flip
	}
	s.SetFlipSided(flip)

	if m.Blending == scene.NormalBlending && !m.Transparent {
		s.SetBlending(scene.NoBlending, 0, 0, 0, 0, 0, 0, mgl32.Vec3{}, 0, false)
	} else {
		var eqA, srcA, dstA gpu.Enum
		if m.BlendAlphaSet {
			eqA = s.utils.BlendEquation(m.BlendEquationAlpha)
			srcA = s.utils.BlendFactor(m.BlendSrcAlpha)
			dstA = s.utils.BlendFactor(m.BlendDstAlpha)
		}
		s.SetBlending(m.Blending,
			s.utils.BlendEquation(m.BlendEquation), s.utils.BlendFactor(m.BlendSrc), s.utils.BlendFactor(m.BlendDst),
			eqA, srcA, dstA, m.BlendColor, m.BlendAlpha, m.PremultipliedAlpha)
	}

	s.Depth.SetFunc(s.utils.DepthFunc(m.DepthFunc))
	s.Depth.SetTest(m.DepthTest)
	s.Depth.SetMask(m.DepthWrite)
	s.Color.SetMask(m.ColorWrite)

	s.Stencil.SetTest(m.StencilWrite)
	if m.StencilWrite {
		s.Stencil.SetMask(m.StencilWriteMask)
		s.Stencil.SetFunc(s.utils.Compare(m.StencilFunc), m.StencilRef, m.StencilFuncMask)
		s.Stencil.SetOp(s.utils.StencilOp(m.StencilFail), s.utils.StencilOp(m.StencilZFail), s.utils.StencilOp(m.StencilZPass))
	}

	s.SetPolygonOffset(m.PolygonOffset, m.PolygonOffsetFactor, m.PolygonOffsetUnits)

	if m.AlphaToCoverage {
		s.Enable(gpu.SAMPLE_ALPHA_TO_COVERAGE)
	} else {
		s.Disable(gpu.SAMPLE_ALPHA_TO_COVERAGE)
	}
}

func (s *State) SetFlipSided(flip bool) {
	if s.flipSided != tri(flip) {
		if flip {
			s.ctx.FrontFace(gpu.CW)
		} else {
			s.ctx.FrontFace(gpu.CCW)
		}
		s.flipSided = tri(flip)
	}
}

func (s *State) SetCullFace(face CullFace) {
	if face == CullFaceNone {
		s.Disable(gpu.CULL_FACE)
	} else {
		s.Enable(gpu.CULL_FACE)
		if face != s.cullFace {
			switch face {
			case CullFaceBack:
				s.ctx.CullFace(gpu.BACK)
			case CullFaceFront:
				s.ctx.CullFace(gpu.FRONT)
			default:
				s.ctx.CullFace(gpu.FRONT_AND_BACK)
			}
		}
	}
	s.cullFace = face
}

func (s *State) SetLineWidth(w float32) {
	if w != s.lineWidth {
		s.ctx.LineWidth(w)
		s.lineWidth = w
	}
}

func (s *State) SetPolygonOffset(enabled bool, factor, units float32) {
	if !enabled {
		s.Disable(gpu.POLYGON_OFFSET_FILL)
		return
	}
	s.Enable(gpu.POLYGON_OFFSET_FILL)
	if !s.polygonOffsetSet || s.polygonOffsetFactor != factor || s.polygonOffsetUnits != units {
		s.ctx.PolygonOffset(factor, units)
		s.polygonOffsetFactor, s.polygonOffsetUnits = factor, units
		s.polygonOffsetSet = true
	}
}

func (s *State) SetScissorTest(test bool) {
	if test {
		s.Enable(gpu.SCISSOR_TEST)
	} else {
		s.Disable(gpu.SCISSOR_TEST)
	}
}

// ActiveTexture selects a texture unit, TEXTURE0 based. Zero selects the last unit.
func (s *State) ActiveTexture(slot gpu.Enum) {
	if slot == 0 {
		slot = gpu.TEXTURE0 + gpu.Enum(s.maxTextures-1)
	}
	if s.textureSlot != slot {
		s.ctx.ActiveTexture(slot)
		s.textureSlot = slot
	}
}

// BindTexture binds t to target on slot. Slot zero means the active slot.
// A zero texture binds the placeholder for target.
func (s *State) BindTexture(target gpu.Enum, t gpu.Texture, slot gpu.Enum) {
	if slot == 0 {
		if s.textureSlot == unknownEnum {
			slot = gpu.TEXTURE0 + gpu.Enum(s.maxTextures-1)
		} else {
			slot = s.textureSlot
		}
	}
	bound, ok := s.boundTextures[slot]
	if !ok {
		bound = &boundTexture{target: unknownEnum}
		s.boundTextures[slot] = bound
	}
	if bound.target != target || bound.texture != t {
		if s.textureSlot != slot {
			s.ctx.ActiveTexture(slot)
			s.textureSlot = slot
		}
		native := t
		if native == 0 {
			native = s.emptyTextures[target]
		}
		s.ctx.BindTexture(target, native)
		bound.target, bound.texture = target, t
	}
}

// UnbindTexture clears whatever is bound on the active slot.
func (s *State) UnbindTexture() {
	bound, ok := s.boundTextures[s.textureSlot]
	if ok && bound.target != unknownEnum {
		s.ctx.BindTexture(bound.target, 0)
		bound.target, bound.texture = unknownEnum, 0
	}
}

// ForgetTexture drops mirror entries naming t so a recycled handle is rebound.
func (s *State) ForgetTexture(t gpu.Texture) {
	for _, b := range s.boundTextures {
		if b.texture == t {
			b.target, b.texture = unknownEnum, 0
		}
	}
}

func (s *State) Viewport(v [4]int32) {
	if !s.viewportSet || s.viewport != v {
		s.ctx.Viewport(v[0], v[1], v[2], v[3])
		s.viewport, s.viewportSet = v, true
	}
}

func (s *State) Scissor(v [4]int32) {
	if !s.scissorSet || s.scissor != v {
		s.ctx.Scissor(v[0], v[1], v[2], v[3])
		s.scissor, s.scissorSet = v, true
	}
}

// Reset restores native defaults and invalidates every mirrored value, so the next
// setter call always reaches the GPU. Call it after foreign code touched GPU state.
func (s *State) Reset() {
	ctx := s.ctx
	ctx.Disable(gpu.BLEND)
	ctx.Disable(gpu.CULL_FACE)
	ctx.Disable(gpu.DEPTH_TEST)
	ctx.Disable(gpu.POLYGON_OFFSET_FILL)
	ctx.Disable(gpu.SCISSOR_TEST)
	ctx.Disable(gpu.STENCIL_TEST)
	ctx.Disable(gpu.SAMPLE_ALPHA_TO_COVERAGE)
	ctx.BlendEquation(gpu.FUNC_ADD)
	ctx.BlendFunc(gpu.ONE, gpu.ZERO)
	ctx.BlendColor(0, 0, 0, 0)
	ctx.ColorMask(true, true, true, true)
	ctx.ClearColor(0, 0, 0, 0)
	ctx.DepthMask(true)
	ctx.DepthFunc(gpu.LESS)
	ctx.ClearDepth(1)
	ctx.StencilMask(0xffffffff)
	ctx.StencilFunc(gpu.ALWAYS, 0, 0xffffffff)
	ctx.StencilOp(gpu.KEEP, gpu.KEEP, gpu.KEEP)
	ctx.ClearStencil(0)
	ctx.CullFace(gpu.BACK)
	ctx.FrontFace(gpu.CCW)
	ctx.PolygonOffset(0, 0)
	ctx.ActiveTexture(gpu.TEXTURE0)
	ctx.BindFramebuffer(gpu.FRAMEBUFFER, 0)
	ctx.UseProgram(0)
	ctx.LineWidth(1)

	s.enabled = make(map[gpu.Enum]tristate)
	s.program = gpu.Program(gpu.InvalidHandle)
	s.blendingEnabled = unknown
	s.blending = scene.Blending(-1)
	s.blendEquation, s.blendSrc, s.blendDst = unknownEnum, unknownEnum, unknownEnum
	s.blendEquationAlpha, s.blendSrcAlpha, s.blendDstAlpha = unknownEnum, unknownEnum, unknownEnum
	s.blendColorSet = false
	s.premultipliedAlpha = unknown
	s.flipSided = unknown
	s.cullFace = CullFace(-1)
	s.lineWidth = -1
	s.polygonOffsetSet = false
	s.textureSlot = unknownEnum
	s.boundTextures = make(map[gpu.Enum]*boundTexture)
	s.framebuffers = make(map[gpu.Enum]gpu.Framebuffer)
	s.drawBuffers = make(map[gpu.Framebuffer]int)
	s.viewportSet = false
	s.scissorSet = false

	s.Color.Reset()
	s.Depth.Reset()
	s.Stencil.Reset()
}

// Dispose deletes the placeholder textures.
func (s *State) Dispose() {
	for target, t := range s.emptyTextures {
		s.ctx.DeleteTexture(t)
		delete(s.emptyTextures, target)
	}
}
