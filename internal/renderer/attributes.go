package renderer

import (
	"GopherScene/internal/gpu"
	"GopherScene/internal/logger"
	"GopherScene/internal/scene"

	"go.uber.org/zap"
)

// bufferRecord is the GPU side of one attribute array.
type bufferRecord struct {
	buffer          gpu.Buffer
	typ             gpu.Enum
	bytesPerElement int
	size            int
	version         int
}

// Attributes owns one GPU buffer per attribute array. Interleaved attributes share
// the record of their InterleavedBuffer.
type Attributes struct {
	ctx     gpu.Context
	utils   *Utils
	buffers map[int]*bufferRecord
}

func NewAttributes(ctx gpu.Context, utils *Utils) *Attributes {
	return &Attributes{ctx: ctx, utils: utils, buffers: make(map[int]*bufferRecord)}
}

// arraySource is the part of an attribute that backs a GPU buffer.
type arraySource struct {
	id      int
	array   scene.TypedArray
	version int
	usage   scene.Usage
	ranges  *[]scene.UpdateRange
}

func sourceOf(a scene.Attribute) arraySource {
	switch t := a.(type) {
	case *scene.BufferAttribute:
		return arraySource{t.ID(), t.Array, t.Version, t.Usage, &t.UpdateRanges}
	case *scene.InterleavedAttribute:
		d := t.Data
		return arraySource{d.ID(), d.Array, d.Version, d.Usage, &d.UpdateRanges}
	}
	return arraySource{}
}

// Get returns the buffer record of a, or nil before the first Update.
func (at *Attributes) Get(a scene.Attribute) *bufferRecord {
	return at.buffers[sourceOf(a).id]
}

// Update uploads a if it is new or its version moved past the recorded one.
func (at *Attributes) Update(a scene.Attribute, target gpu.Enum) {
	src := sourceOf(a)
	rec, ok := at.buffers[src.id]
	if !ok {
		at.buffers[src.id] = at.create(src, target)
		return
	}
	if rec.version >= src.version {
		return
	}
	at.update(rec, src, target)
	rec.version = src.version
}

func (at *Attributes) create(src arraySource, target gpu.Enum) *bufferRecord {
	data := src.array.Bytes()
	b := at.ctx.CreateBuffer()
	at.ctx.BindBuffer(target, b)
	at.ctx.BufferData(target, data, at.utils.Usage(src.usage))
	*src.ranges = (*src.ranges)[:0]
	return &bufferRecord{
		buffer:          b,
		typ:             at.utils.DataType(src.array.Type()),
		bytesPerElement: src.array.BytesPerElement(),
		size:            len(data),
		version:         src.version,
	}
}

func (at *Attributes) update(rec *bufferRecord, src arraySource, target gpu.Enum) {
	data := src.array.Bytes()
	at.ctx.BindBuffer(target, rec.buffer)
	if len(data) != rec.size {
		logger.Log.Debug("Attribute buffer resized",
			zap.Int("id", src.id),
			zap.Int("from", rec.size),
			zap.Int("to", len(data)))
		at.ctx.BufferData(target, data, at.utils.Usage(src.usage))
		rec.size = len(data)
		*src.ranges = (*src.ranges)[:0]
		return
	}
	ranges := *src.ranges
	if len(ranges) == 0 {
		at.ctx.BufferSubData(target, 0, data)
		return
	}
	bpe := rec.bytesPerElement
	for _, r := range ranges {
		end := (r.Start + r.Count) * bpe
		if end > len(data) {
			end = len(data)
		}
		at.ctx.BufferSubData(target, r.Start*bpe, data[r.Start*bpe:end])
	}
	*src.ranges = ranges[:0]
}

// Remove deletes the GPU buffer backing a.
func (at *Attributes) Remove(a scene.Attribute) {
	id := sourceOf(a).id
	if rec, ok := at.buffers[id]; ok {
		at.ctx.DeleteBuffer(rec.buffer)
		delete(at.buffers, id)
	}
}

func (at *Attributes) Dispose() {
	for id, rec := range at.buffers {
		at.ctx.DeleteBuffer(rec.buffer)
		delete(at.buffers, id)
	}
}
