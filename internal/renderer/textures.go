package renderer

import (
	"fmt"

	"GopherScene/internal/gpu"
	"GopherScene/internal/logger"
	"GopherScene/internal/scene"

	"go.uber.org/zap"
)

// sharedTexture is one native texture backing every wrapper of a source with the same cache key.
type sharedTexture struct {
	texture   gpu.Texture
	usedTimes int
	version   int
	width     int
	height    int
	depth     int
	allocated bool
}

// textureRecord is the renderer side of one scene.Texture wrapper.
type textureRecord struct {
	initialized bool
	cacheKey    string
	sourceID    int
	shared      *sharedTexture
	version     int
}

func (r *textureRecord) native() gpu.Texture {
	if r.shared == nil {
		return 0
	}
	return r.shared.texture
}

type renderTargetRecord struct {
	initialized   bool
	framebuffer   gpu.Framebuffer
	faces         [6]gpu.Framebuffer
	depthBuffers  []gpu.Renderbuffer
	msFramebuffer gpu.Framebuffer
	msColor       []gpu.Renderbuffer
	msDepth       gpu.Renderbuffer
	width         int
	height        int
	depth         int
}

// Textures owns native texture and render target lifecycles.
type Textures struct {
	ctx   gpu.Context
	ext   *Extensions
	state *State
	caps  *Capabilities
	utils *Utils
	info  *Info

	textures *Properties[textureRecord]
	targets  *Properties[renderTargetRecord]
	sources  map[int]map[string]*sharedTexture
	disposed map[int]bool

	textureUnits int
	warnedUnits  bool
}

func NewTextures(ctx gpu.Context, ext *Extensions, state *State, caps *Capabilities, utils *Utils, info *Info) *Textures {
	return &Textures{
		ctx:      ctx,
		ext:      ext,
		state:    state,
		caps:     caps,
		utils:    utils,
		info:     info,
		textures: NewProperties[textureRecord](),
		targets:  NewProperties[renderTargetRecord](),
		sources:  make(map[int]map[string]*sharedTexture),
		disposed: make(map[int]bool),
	}
}

// AllocateTextureUnit hands out the next free unit. Past the device limit the last unit is
// reused with a warning.
func (tx *Textures) AllocateTextureUnit() int {
	unit := tx.textureUnits
	if unit >= tx.caps.MaxTextures {
		if !tx.warnedUnits {
			tx.warnedUnits = true
			logger.Log.Warn("Trying to use more texture units than supported",
				zap.Int("requested", unit+1),
				zap.Int("maxTextures", tx.caps.MaxTextures))
		}
		unit = tx.caps.MaxTextures - 1
	}
	tx.textureUnits++
	return unit
}

func (tx *Textures) ResetTextureUnits() {
	tx.textureUnits = 0
}

func textureTarget(t *scene.Texture) gpu.Enum {
	switch t.Kind {
	case scene.Texture3D:
		return gpu.TEXTURE_3D
	case scene.Texture2DArray:
		return gpu.TEXTURE_2D_ARRAY
	case scene.TextureCube:
		return gpu.TEXTURE_CUBE_MAP
	}
	return gpu.TEXTURE_2D
}

// textureCacheKey is the set of parameters that cannot differ between wrappers sharing one native texture.
func textureCacheKey(t *scene.Texture) string {
	return fmt.Sprint(t.WrapS, ",", t.WrapT, ",", t.WrapR, ",", t.MagFilter, ",", t.MinFilter, ",",
		t.Anisotropy, ",", t.InternalFormat, ",", t.Format, ",", t.Type, ",", t.GenerateMipmaps, ",",
		t.PremultiplyAlpha, ",", t.FlipY, ",", t.UnpackAlignment, ",", t.ColorSpace, ",", t.CompareFunction)
}

func sourceID(t *scene.Texture) int {
	if t.Source != nil {
		return t.Source.ID()
	}
	if len(t.Images) > 0 && t.Images[0] != nil {
		return t.Images[0].ID()
	}
	return -t.ID()
}

func sourceVersion(t *scene.Texture) int {
	if t.Source != nil {
		return t.Source.Version
	}
	v := 0
	for _, img := range t.Images {
		if img != nil {
			v += img.Version
		}
	}
	return v
}

func (tx *Textures) SetTexture2D(t *scene.Texture, unit int) error {
	return tx.setTexture(t, unit, gpu.TEXTURE_2D)
}

func (tx *Textures) SetTexture3D(t *scene.Texture, unit int) error {
	return tx.setTexture(t, unit, gpu.TEXTURE_3D)
}

func (tx *Textures) SetTexture2DArray(t *scene.Texture, unit int) error {
	return tx.setTexture(t, unit, gpu.TEXTURE_2D_ARRAY)
}

func (tx *Textures) SetTextureCube(t *scene.Texture, unit int) error {
	return tx.setTexture(t, unit, gpu.TEXTURE_CUBE_MAP)
}

// setTexture binds t on unit, uploading first when its version moved past the recorded one.
// A texture without data binds the placeholder for target.
func (tx *Textures) setTexture(t *scene.Texture, unit int, target gpu.Enum) error {
	slot := gpu.TEXTURE0 + gpu.Enum(unit)
	if t == nil {
		tx.state.BindTexture(target, 0, slot)
		return nil
	}
	if tx.disposed[t.ID()] {
		return fmt.Errorf("texture %d: %w", t.ID(), ErrDisposed)
	}
	rec := tx.textures.Get(t.ID())
	if t.Version > 0 && rec.version < t.Version {
		if err := tx.uploadTexture(rec, t, slot, target); err != nil {
			return err
		}
		return nil
	}
	tx.state.BindTexture(target, rec.native(), slot)
	return nil
}

// initTexture attaches rec to the shared native texture for t's current cache key.
// It reports whether the native texture is new and needs a full upload.
func (tx *Textures) initTexture(rec *textureRecord, t *scene.Texture) bool {
	key := textureCacheKey(t)
	src := sourceID(t)
	if rec.initialized && rec.cacheKey == key && rec.sourceID == src {
		return false
	}
	byKey, ok := tx.sources[src]
	if !ok {
		byKey = make(map[string]*sharedTexture)
		tx.sources[src] = byKey
	}
	force := false
	shared, ok := byKey[key]
	if !ok {
		shared = &sharedTexture{texture: tx.ctx.CreateTexture(), version: -1}
		byKey[key] = shared
		tx.info.Memory.Textures++
		force = true
		logger.Log.Debug("Texture created",
			zap.Int("source", src),
			zap.String("cacheKey", key),
			zap.Uint32("textureID", uint32(shared.texture)))
	}
	shared.usedTimes++

	if rec.initialized {
		tx.releaseShared(rec.sourceID, rec.cacheKey)
	}
	rec.initialized = true
	rec.cacheKey = key
	rec.sourceID = src
	rec.shared = shared
	return force
}

func (tx *Textures) releaseShared(src int, key string) {
	byKey := tx.sources[src]
	shared, ok := byKey[key]
	if !ok {
		return
	}
	shared.usedTimes--
	logger.Log.Debug("Texture reference released",
		zap.Uint32("textureID", uint32(shared.texture)),
		zap.Int("refCount", shared.usedTimes))
	if shared.usedTimes > 0 {
		return
	}
	tx.ctx.DeleteTexture(shared.texture)
	tx.state.ForgetTexture(shared.texture)
	tx.info.Memory.Textures--
	delete(byKey, key)
	if len(byKey) == 0 {
		delete(tx.sources, src)
	}
}

func (tx *Textures) setTextureParameters(target gpu.Enum, t *scene.Texture) {
	ctx := tx.ctx
	ctx.TexParameteri(target, gpu.TEXTURE_WRAP_S, int32(tx.utils.Wrapping(t.WrapS)))
	ctx.TexParameteri(target, gpu.TEXTURE_WRAP_T, int32(tx.utils.Wrapping(t.WrapT)))
	if target == gpu.TEXTURE_3D || target == gpu.TEXTURE_2D_ARRAY {
		ctx.TexParameteri(target, gpu.TEXTURE_WRAP_R, int32(tx.utils.Wrapping(t.WrapR)))
	}
	ctx.TexParameteri(target, gpu.TEXTURE_MAG_FILTER, int32(tx.utils.Filter(t.MagFilter)))
	ctx.TexParameteri(target, gpu.TEXTURE_MIN_FILTER, int32(tx.utils.Filter(t.MinFilter)))

	if t.CompareFunction != scene.NoCompare {
		ctx.TexParameteri(target, gpu.TEXTURE_COMPARE_MODE, int32(gpu.COMPARE_REF_TO_TEXTURE))
		ctx.TexParameteri(target, gpu.TEXTURE_COMPARE_FUNC, int32(tx.utils.Compare(t.CompareFunction)))
	}

	if t.Anisotropy > 1 && t.MagFilter != scene.NearestFilter &&
		t.MinFilter != scene.NearestFilter && t.MinFilter != scene.NearestMipmapNearestFilter &&
		tx.ext.Has("GL_EXT_texture_filter_anisotropic") {
		a := float32(t.Anisotropy)
		if a > tx.caps.MaxAnisotropy {
			a = tx.caps.MaxAnisotropy
		}
		ctx.TexParameterf(target, gpu.TEXTURE_MAX_ANISOTROPY_EXT, a)
	}
}

func needsMipmaps(t *scene.Texture) bool {
	return t.GenerateMipmaps && t.MinFilter != scene.NearestFilter && t.MinFilter != scene.LinearFilter
}

// formats resolves the native client format, type and internal format of t.
func (tx *Textures) formats(t *scene.Texture) (format, typ, internal gpu.Enum) {
	format = tx.utils.Format(t.Format)
	typ = tx.utils.DataType(t.Type)
	internal = tx.utils.InternalFormat(t.InternalFormat, format, typ, t.ColorSpace)
	return format, typ, internal
}

func validateDepthTexture(t *scene.Texture) error {
	switch t.Format {
	case scene.DepthFormat:
		switch t.Type {
		case scene.UnsignedShortType, scene.UnsignedIntType, scene.FloatType:
			return nil
		}
	case scene.DepthStencilFormat:
		if t.Type == scene.UnsignedInt248Type {
			return nil
		}
	}
	return fmt.Errorf("texture %d format %d type %d: %w", t.ID(), t.Format, t.Type, ErrInvalidDepthTexture)
}

func (tx *Textures) uploadTexture(rec *textureRecord, t *scene.Texture, slot, target gpu.Enum) error {
	if t.Kind == scene.DepthTexture {
		if err := validateDepthTexture(t); err != nil {
			return err
		}
	}
	force := tx.initTexture(rec, t)
	shared := rec.shared
	tx.state.BindTexture(target, shared.texture, slot)

	version := sourceVersion(t)
	if shared.version == version && !force {
		rec.version = t.Version
		return nil
	}

	tx.ctx.PixelStorei(gpu.UNPACK_ALIGNMENT, int32(t.UnpackAlignment))
	tx.setTextureParameters(target, t)

	uploaded := false
	switch {
	case t.Kind == scene.CompressedTexture || t.Format.Compressed():
		uploaded = tx.uploadCompressed(target, t)
	case target == gpu.TEXTURE_CUBE_MAP:
		uploaded = tx.uploadCube(shared, t, slot)
	case target == gpu.TEXTURE_3D || target == gpu.TEXTURE_2D_ARRAY:
		uploaded = tx.upload3D(shared, target, t, slot)
	default:
		uploaded = tx.upload2D(shared, target, t, slot)
	}

	if uploaded && len(t.Mipmaps) == 0 && needsMipmaps(t) && !t.Format.Compressed() {
		tx.ctx.GenerateMipmap(target)
	}
	shared.version = version
	rec.version = t.Version
	return nil
}

func (tx *Textures) uploadCompressed(target gpu.Enum, t *scene.Texture) bool {
	format := tx.utils.Format(t.Format)
	if format == 0 {
		logger.Log.Warn("Unsupported compressed texture format, upload skipped",
			zap.Int("texture", t.ID()),
			zap.Int("format", int(t.Format)))
		return false
	}
	for level, mip := range t.Mipmaps {
		tx.ctx.CompressedTexImage2D(target, int32(level), format, int32(mip.Width), int32(mip.Height), mip.Data)
	}
	return len(t.Mipmaps) > 0
}

// prepareImage applies flip, premultiply and the max size clamp to 2D pixel data.
// ok is false when the image is too large and cannot be resampled.
func (tx *Textures) prepareImage(t *scene.Texture, src *scene.Source, format, typ gpu.Enum, maxSize int) (data []byte, w, h int, ok bool) {
	data, w, h = src.Data, src.Width, src.Height
	rgba8 := format == gpu.RGBA && typ == gpu.UNSIGNED_BYTE
	if w > maxSize || h > maxSize {
		if !rgba8 || data == nil {
			logger.Log.Warn("Texture exceeds max texture size and cannot be resized, upload skipped",
				zap.Int("texture", t.ID()),
				zap.Int("width", w),
				zap.Int("height", h),
				zap.Int("maxTextureSize", maxSize))
			return nil, w, h, false
		}
		nw, nh := fitSize(w, h, maxSize)
		logger.Log.Warn("Texture has been resized",
			zap.Int("texture", t.ID()),
			zap.Int("width", w),
			zap.Int("height", h),
			zap.Int("newWidth", nw),
			zap.Int("newHeight", nh))
		data = downscaleRGBA(data, w, h, nw, nh)
		w, h = nw, nh
	}
	if data != nil && t.FlipY {
		data = flipRows(data, w, h, 1, bytesPerPixel(format, typ))
	}
	if data != nil && t.PremultiplyAlpha && rgba8 {
		data = premultiply(data)
	}
	return data, w, h, true
}

func bytesPerPixel(format, typ gpu.Enum) int {
	comps := 4
	switch format {
	case gpu.RED, gpu.RED_INTEGER, gpu.ALPHA, gpu.LUMINANCE, gpu.DEPTH_COMPONENT:
		comps = 1
	case gpu.RG, gpu.RG_INTEGER:
		comps = 2
	case gpu.RGB:
		comps = 3
	}
	switch typ {
	case gpu.FLOAT, gpu.INT, gpu.UNSIGNED_INT:
		return comps * 4
	case gpu.HALF_FLOAT, gpu.SHORT, gpu.UNSIGNED_SHORT:
		return comps * 2
	case gpu.UNSIGNED_SHORT_4_4_4_4, gpu.UNSIGNED_SHORT_5_5_5_1:
		return 2
	case gpu.UNSIGNED_INT_24_8, gpu.UNSIGNED_INT_5_9_9_9_REV:
		return 4
	}
	return comps
}

// reallocate replaces the immutable storage of shared when its size changed. A replaced
// native texture starts at default sampling state, so t's parameters are applied again.
func (tx *Textures) reallocate(shared *sharedTexture, target, slot gpu.Enum, t *scene.Texture, w, h, d int) bool {
	if !shared.allocated {
		shared.width, shared.height, shared.depth = w, h, d
		shared.allocated = true
		return true
	}
	if shared.width == w && shared.height == h && shared.depth == d {
		return false
	}
	tx.ctx.DeleteTexture(shared.texture)
	tx.state.ForgetTexture(shared.texture)
	shared.texture = tx.ctx.CreateTexture()
	shared.width, shared.height, shared.depth = w, h, d
	tx.state.BindTexture(target, shared.texture, slot)
	tx.setTextureParameters(target, t)
	return true
}

func (tx *Textures) upload2D(shared *sharedTexture, target gpu.Enum, t *scene.Texture, slot gpu.Enum) bool {
	format, typ, internal := tx.formats(t)
	if t.Source == nil {
		return false
	}

	if len(t.Mipmaps) > 0 {
		for level, mip := range t.Mipmaps {
			data, w, h, ok := tx.prepareImage(t, mip, format, typ, tx.caps.MaxTextureSize)
			if !ok {
				return false
			}
			tx.ctx.TexImage2D(target, int32(level), internal, int32(w), int32(h), format, typ, data)
		}
		return true
	}

	data, w, h, ok := tx.prepareImage(t, t.Source, format, typ, tx.caps.MaxTextureSize)
	if !ok {
		return false
	}
	if tx.reallocate(shared, target, slot, t, w, h, 1) {
		levels := 1
		if needsMipmaps(t) {
			levels = mipLevels(w, h)
		}
		tx.ctx.TexStorage2D(target, int32(levels), internal, int32(w), int32(h))
	}
	if data != nil {
		tx.ctx.TexSubImage2D(target, 0, 0, 0, int32(w), int32(h), format, typ, data)
	}
	return true
}

func (tx *Textures) uploadCube(shared *sharedTexture, t *scene.Texture, slot gpu.Enum) bool {
	if len(t.Images) != 6 {
		logger.Log.Warn("Cube texture needs six faces",
			zap.Int("texture", t.ID()),
			zap.Int("faces", len(t.Images)))
		return false
	}
	format, typ, internal := tx.formats(t)
	faces := make([][]byte, 6)
	var w, h int
	for i, img := range t.Images {
		data, fw, fh, ok := tx.prepareImage(t, img, format, typ, tx.caps.MaxCubemapSize)
		if !ok {
			return false
		}
		faces[i], w, h = data, fw, fh
	}
	if tx.reallocate(shared, gpu.TEXTURE_CUBE_MAP, slot, t, w, h, 1) {
		levels := 1
		if needsMipmaps(t) {
			levels = mipLevels(w, h)
		}
		tx.ctx.TexStorage2D(gpu.TEXTURE_CUBE_MAP, int32(levels), internal, int32(w), int32(h))
	}
	for i, data := range faces {
		if data != nil {
			tx.ctx.TexSubImage2D(gpu.TEXTURE_CUBE_MAP_POSITIVE_X+gpu.Enum(i), 0, 0, 0, int32(w), int32(h), format, typ, data)
		}
	}
	return true
}

func (tx *Textures) upload3D(shared *sharedTexture, target gpu.Enum, t *scene.Texture, slot gpu.Enum) bool {
	if t.Source == nil {
		return false
	}
	format, typ, internal := tx.formats(t)
	src := t.Source
	w, h, d := src.Width, src.Height, max(src.Depth, 1)
	data := src.Data
	if data != nil && t.FlipY {
		data = flipRows(data, w, h, d, bytesPerPixel(format, typ))
	}
	if tx.reallocate(shared, target, slot, t, w, h, d) {
		levels := 1
		if needsMipmaps(t) {
			levels = mipLevels(w, h)
		}
		tx.ctx.TexStorage3D(target, int32(levels), internal, int32(w), int32(h), int32(d))
	}
	if data != nil {
		tx.ctx.TexSubImage3D(target, 0, 0, 0, 0, int32(w), int32(h), int32(d), format, typ, data)
	}
	return true
}

// RenderTargetTexture returns the native texture behind an attachment, zero if not set up.
func (tx *Textures) RenderTargetTexture(t *scene.Texture) gpu.Texture {
	rec, ok := tx.textures.Lookup(t.ID())
	if !ok {
		return 0
	}
	return rec.native()
}

// attachmentTexture allocates a dedicated native texture for a render target attachment.
func (tx *Textures) attachmentTexture(t *scene.Texture) *textureRecord {
	rec := tx.textures.Get(t.ID())
	if rec.shared != nil {
		return rec
	}
	rec.initialized = true
	rec.cacheKey = textureCacheKey(t)
	rec.shared = &sharedTexture{texture: tx.ctx.CreateTexture(), usedTimes: 1, allocated: true}
	tx.info.Memory.Textures++
	return rec
}

func (tx *Textures) releaseAttachment(t *scene.Texture) {
	rec, ok := tx.textures.Lookup(t.ID())
	if !ok {
		return
	}
	if rec.shared != nil {
		tx.ctx.DeleteTexture(rec.shared.texture)
		tx.state.ForgetTexture(rec.shared.texture)
		tx.info.Memory.Textures--
	}
	tx.textures.Remove(t.ID())
}

func renderTargetTarget(rt *scene.RenderTarget) gpu.Enum {
	switch rt.Kind {
	case scene.RenderTargetCube:
		return gpu.TEXTURE_CUBE_MAP
	case scene.RenderTarget3D:
		return gpu.TEXTURE_3D
	case scene.RenderTargetArray:
		return gpu.TEXTURE_2D_ARRAY
	}
	return gpu.TEXTURE_2D
}

// SetupRenderTarget allocates the framebuffers, attachments and renderbuffers of rt once.
// A size change since the last setup frees everything and allocates again.
func (tx *Textures) SetupRenderTarget(rt *scene.RenderTarget) error {
	rec := tx.targets.Get(rt.ID())
	if rec.initialized {
		if rec.width == rt.Width && rec.height == rt.Height && rec.depth == rt.Depth {
			return nil
		}
		logger.Log.Debug("Render target resized",
			zap.Int("id", rt.ID()),
			zap.Int("width", rt.Width),
			zap.Int("height", rt.Height))
		tx.DeallocateRenderTarget(rt)
		rec = tx.targets.Get(rt.ID())
	}
	rec.initialized = true
	rec.width, rec.height, rec.depth = rt.Width, rt.Height, rt.Depth

	target := renderTargetTarget(rt)
	w, h, d := int32(rt.Width), int32(rt.Height), int32(max(rt.Depth, 1))

	for _, t := range rt.Textures {
		trec := tx.attachmentTexture(t)
		tx.state.BindTexture(target, trec.native(), 0)
		tx.setTextureParameters(target, t)
		_, _, internal := tx.formats(t)
		levels := int32(1)
		if needsMipmaps(t) {
			levels = int32(mipLevels(rt.Width, rt.Height))
		}
		if target == gpu.TEXTURE_3D || target == gpu.TEXTURE_2D_ARRAY {
			tx.ctx.TexStorage3D(target, levels, internal, w, h, d)
		} else {
			tx.ctx.TexStorage2D(target, levels, internal, w, h)
		}
		trec.version = t.Version
	}

	if rt.Kind == scene.RenderTargetCube {
		for i := range rec.faces {
			fb := tx.ctx.CreateFramebuffer()
			rec.faces[i] = fb
			tx.state.BindFramebuffer(gpu.FRAMEBUFFER, fb)
			face := gpu.TEXTURE_CUBE_MAP_POSITIVE_X + gpu.Enum(i)
			for j, t := range rt.Textures {
				tx.ctx.FramebufferTexture2D(gpu.FRAMEBUFFER, gpu.COLOR_ATTACHMENT0+gpu.Enum(j), face, tx.RenderTargetTexture(t), 0)
			}
			if rt.DepthBuffer {
				rec.depthBuffers = append(rec.depthBuffers, tx.attachDepthRenderbuffer(rt, 0))
			}
		}
	} else {
		rec.framebuffer = tx.ctx.CreateFramebuffer()
		if rt.Samples > 0 {
			if err := tx.setupMultisample(rt, rec); err != nil {
				return err
			}
		}
		tx.state.BindFramebuffer(gpu.FRAMEBUFFER, rec.framebuffer)
		for j, t := range rt.Textures {
			attachment := gpu.COLOR_ATTACHMENT0 + gpu.Enum(j)
			if target == gpu.TEXTURE_2D {
				tx.ctx.FramebufferTexture2D(gpu.FRAMEBUFFER, attachment, gpu.TEXTURE_2D, tx.RenderTargetTexture(t), 0)
			} else {
				tx.ctx.FramebufferTextureLayer(gpu.FRAMEBUFFER, attachment, tx.RenderTargetTexture(t), 0, 0)
			}
		}
		if rt.DepthTexture != nil {
			if err := tx.setupDepthTexture(rt); err != nil {
				return err
			}
		} else if rt.DepthBuffer && rt.Samples == 0 {
			rec.depthBuffers = append(rec.depthBuffers, tx.attachDepthRenderbuffer(rt, 0))
		}
		if status := tx.ctx.CheckFramebufferStatus(gpu.FRAMEBUFFER); status != gpu.FRAMEBUFFER_COMPLETE {
			return fmt.Errorf("render target %d: status 0x%x: %w", rt.ID(), uint32(status), ErrFramebuffer)
		}
	}

	for _, t := range rt.Textures {
		if needsMipmaps(t) {
			tx.state.BindTexture(target, tx.RenderTargetTexture(t), 0)
			tx.ctx.GenerateMipmap(target)
		}
	}
	tx.state.UnbindTexture()
	return nil
}

func (tx *Textures) setupMultisample(rt *scene.RenderTarget, rec *renderTargetRecord) error {
	samples := rt.Samples
	if samples > tx.caps.MaxSamples {
		logger.Log.Warn("Render target samples clamped",
			zap.Int("requested", samples),
			zap.Int("maxSamples", tx.caps.MaxSamples))
		samples = tx.caps.MaxSamples
	}
	rec.msFramebuffer = tx.ctx.CreateFramebuffer()
	tx.state.BindFramebuffer(gpu.FRAMEBUFFER, rec.msFramebuffer)
	for j, t := range rt.Textures {
		_, _, internal := tx.formats(t)
		rb := tx.ctx.CreateRenderbuffer()
		tx.ctx.BindRenderbuffer(gpu.RENDERBUFFER, rb)
		tx.ctx.RenderbufferStorageMultisample(gpu.RENDERBUFFER, int32(samples), internal, int32(rt.Width), int32(rt.Height))
		tx.ctx.FramebufferRenderbuffer(gpu.FRAMEBUFFER, gpu.COLOR_ATTACHMENT0+gpu.Enum(j), gpu.RENDERBUFFER, rb)
		rec.msColor = append(rec.msColor, rb)
	}
	if rt.DepthBuffer {
		rec.msDepth = tx.attachDepthRenderbuffer(rt, samples)
	}
	tx.ctx.BindRenderbuffer(gpu.RENDERBUFFER, 0)
	if status := tx.ctx.CheckFramebufferStatus(gpu.FRAMEBUFFER); status != gpu.FRAMEBUFFER_COMPLETE {
		return fmt.Errorf("render target %d multisample: status 0x%x: %w", rt.ID(), uint32(status), ErrFramebuffer)
	}
	return nil
}

// attachDepthRenderbuffer attaches depth, or depth and stencil, storage to the bound framebuffer.
func (tx *Textures) attachDepthRenderbuffer(rt *scene.RenderTarget, samples int) gpu.Renderbuffer {
	rb := tx.ctx.CreateRenderbuffer()
	tx.ctx.BindRenderbuffer(gpu.RENDERBUFFER, rb)
	internal, attachment := gpu.DEPTH_COMPONENT24, gpu.DEPTH_ATTACHMENT
	if rt.StencilBuffer {
		internal, attachment = gpu.DEPTH24_STENCIL8, gpu.DEPTH_STENCIL_ATTACHMENT
	}
	if samples > 0 {
		tx.ctx.RenderbufferStorageMultisample(gpu.RENDERBUFFER, int32(samples), internal, int32(rt.Width), int32(rt.Height))
	} else {
		tx.ctx.RenderbufferStorage(gpu.RENDERBUFFER, internal, int32(rt.Width), int32(rt.Height))
	}
	tx.ctx.FramebufferRenderbuffer(gpu.FRAMEBUFFER, attachment, gpu.RENDERBUFFER, rb)
	return rb
}

func (tx *Textures) setupDepthTexture(rt *scene.RenderTarget) error {
	dt := rt.DepthTexture
	if err := validateDepthTexture(dt); err != nil {
		return err
	}
	if dt.Source != nil {
		dt.Source.Width, dt.Source.Height = rt.Width, rt.Height
	}
	rec := tx.attachmentTexture(dt)
	tx.state.BindTexture(gpu.TEXTURE_2D, rec.native(), 0)
	tx.setTextureParameters(gpu.TEXTURE_2D, dt)
	_, _, internal := tx.formats(dt)
	tx.ctx.TexStorage2D(gpu.TEXTURE_2D, 1, internal, int32(rt.Width), int32(rt.Height))
	attachment := gpu.DEPTH_ATTACHMENT
	if dt.Format == scene.DepthStencilFormat {
		attachment = gpu.DEPTH_STENCIL_ATTACHMENT
	}
	tx.ctx.FramebufferTexture2D(gpu.FRAMEBUFFER, attachment, gpu.TEXTURE_2D, rec.native(), 0)
	rec.version = dt.Version
	return nil
}

// Framebuffer returns the framebuffer draws into rt go to. Multisampled targets draw into
// their renderbuffers until resolved.
func (tx *Textures) Framebuffer(rt *scene.RenderTarget, face int) gpu.Framebuffer {
	rec, ok := tx.targets.Lookup(rt.ID())
	if !ok {
		return 0
	}
	if rt.Kind == scene.RenderTargetCube {
		return rec.faces[face]
	}
	if rt.Samples > 0 && rec.msFramebuffer != 0 {
		return rec.msFramebuffer
	}
	return rec.framebuffer
}

// SetLayer attaches layer of a 3D or array target for the next draws.
func (tx *Textures) SetLayer(rt *scene.RenderTarget, layer int) {
	if rt.Kind != scene.RenderTarget3D && rt.Kind != scene.RenderTargetArray {
		return
	}
	for j, t := range rt.Textures {
		tx.ctx.FramebufferTextureLayer(gpu.FRAMEBUFFER, gpu.COLOR_ATTACHMENT0+gpu.Enum(j), tx.RenderTargetTexture(t), 0, int32(layer))
	}
}

// UpdateRenderTargetMipmap regenerates mip chains of rt's attachments after drawing.
func (tx *Textures) UpdateRenderTargetMipmap(rt *scene.RenderTarget) {
	target := renderTargetTarget(rt)
	for _, t := range rt.Textures {
		if !needsMipmaps(t) {
			continue
		}
		tx.state.BindTexture(target, tx.RenderTargetTexture(t), 0)
		tx.ctx.GenerateMipmap(target)
		tx.state.UnbindTexture()
	}
}

// UpdateMultisampleRenderTarget resolves the multisampled renderbuffers of rt into its textures.
func (tx *Textures) UpdateMultisampleRenderTarget(rt *scene.RenderTarget) {
	if rt.Samples == 0 {
		return
	}
	rec, ok := tx.targets.Lookup(rt.ID())
	if !ok || rec.msFramebuffer == 0 {
		return
	}
	w, h := int32(rt.Width), int32(rt.Height)
	tx.state.BindFramebuffer(gpu.READ_FRAMEBUFFER, rec.msFramebuffer)
	tx.state.BindFramebuffer(gpu.DRAW_FRAMEBUFFER, rec.framebuffer)
	for i := range rt.Textures {
		mask := gpu.COLOR_BUFFER_BIT
		if i == 0 && rt.ResolveDepth && rt.DepthBuffer {
			mask |= gpu.DEPTH_BUFFER_BIT
			if rt.StencilBuffer {
				mask |= gpu.STENCIL_BUFFER_BIT
			}
		}
		bufs := make([]gpu.Enum, len(rt.Textures))
		bufs[i] = gpu.COLOR_ATTACHMENT0 + gpu.Enum(i)
		tx.ctx.ReadBuffer(gpu.COLOR_ATTACHMENT0 + gpu.Enum(i))
		tx.ctx.DrawBuffers(bufs)
		tx.ctx.BlitFramebuffer(0, 0, w, h, 0, 0, w, h, mask, gpu.NEAREST)
	}
	delete(tx.state.drawBuffers, rec.framebuffer)
	tx.state.BindFramebuffer(gpu.READ_FRAMEBUFFER, 0)
	tx.state.BindFramebuffer(gpu.DRAW_FRAMEBUFFER, rec.msFramebuffer)
}

// DeallocateTexture releases t. Binding it afterwards is an error.
func (tx *Textures) DeallocateTexture(t *scene.Texture) {
	rec, ok := tx.textures.Lookup(t.ID())
	if ok && rec.initialized {
		if t.IsRenderTargetTexture {
			tx.releaseAttachment(t)
		} else {
			tx.releaseShared(rec.sourceID, rec.cacheKey)
		}
	}
	tx.textures.Remove(t.ID())
	tx.disposed[t.ID()] = true
}

// DeallocateRenderTarget frees every native object created for rt. rt may be set up again.
func (tx *Textures) DeallocateRenderTarget(rt *scene.RenderTarget) {
	rec, ok := tx.targets.Lookup(rt.ID())
	if !ok {
		return
	}
	for _, t := range rt.Textures {
		tx.releaseAttachment(t)
	}
	if rt.DepthTexture != nil {
		tx.releaseAttachment(rt.DepthTexture)
	}
	tx.deleteTargetObjects(rec)
	tx.targets.Remove(rt.ID())
}

// deleteTargetObjects frees the framebuffers and renderbuffers of one render target.
func (tx *Textures) deleteTargetObjects(rec *renderTargetRecord) {
	if rec.framebuffer != 0 {
		tx.ctx.DeleteFramebuffer(rec.framebuffer)
	}
	for _, fb := range rec.faces {
		if fb != 0 {
			tx.ctx.DeleteFramebuffer(fb)
		}
	}
	for _, rb := range rec.depthBuffers {
		tx.ctx.DeleteRenderbuffer(rb)
	}
	if rec.msFramebuffer != 0 {
		tx.ctx.DeleteFramebuffer(rec.msFramebuffer)
		for _, rb := range rec.msColor {
			tx.ctx.DeleteRenderbuffer(rb)
		}
		if rec.msDepth != 0 {
			tx.ctx.DeleteRenderbuffer(rec.msDepth)
		}
	}
}

func (tx *Textures) Dispose() {
	live := make(map[*sharedTexture]bool)
	for _, byKey := range tx.sources {
		for _, shared := range byKey {
			live[shared] = true
		}
	}
	for _, rec := range tx.textures.records {
		if rec.shared != nil {
			live[rec.shared] = true
		}
	}
	for shared := range live {
		tx.ctx.DeleteTexture(shared.texture)
	}
	for _, rec := range tx.targets.records {
		tx.deleteTargetObjects(rec)
	}
	tx.sources = make(map[int]map[string]*sharedTexture)
	tx.textures.Dispose()
	tx.targets.Dispose()
	tx.info.Memory.Textures = 0
}
