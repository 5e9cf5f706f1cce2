package scene

import (
	"math"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// TypedArray is a flat numeric array backing an attribute.
type TypedArray interface {
	Len() int
	BytesPerElement() int
	Type() DataType
	Bytes() []byte
	Float(i int) float32
}

type (
	Float32Array []float32
	Uint32Array  []uint32
	Int32Array   []int32
	Uint16Array  []uint16
	Int16Array   []int16
	Uint8Array   []uint8
	Int8Array    []int8
)

func sliceBytes[T any](s []T) []byte {
	if len(s) == 0 {
		return nil
	}
	var zero T
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*int(unsafe.Sizeof(zero)))
}

func (a Float32Array) Len() int             { return len(a) }
func (a Float32Array) BytesPerElement() int { return 4 }
func (a Float32Array) Type() DataType       { return FloatType }
func (a Float32Array) Bytes() []byte        { return sliceBytes(a) }
func (a Float32Array) Float(i int) float32  { return a[i] }

func (a Uint32Array) Len() int             { return len(a) }
func (a Uint32Array) BytesPerElement() int { return 4 }
func (a Uint32Array) Type() DataType       { return UnsignedIntType }
func (a Uint32Array) Bytes() []byte        { return sliceBytes(a) }
func (a Uint32Array) Float(i int) float32  { return float32(a[i]) }

func (a Int32Array) Len() int             { return len(a) }
func (a Int32Array) BytesPerElement() int { return 4 }
func (a Int32Array) Type() DataType       { return IntType }
func (a Int32Array) Bytes() []byte        { return sliceBytes(a) }
func (a Int32Array) Float(i int) float32  { return float32(a[i]) }

func (a Uint16Array) Len() int             { return len(a) }
func (a Uint16Array) BytesPerElement() int { return 2 }
func (a Uint16Array) Type() DataType       { return UnsignedShortType }
func (a Uint16Array) Bytes() []byte        { return sliceBytes(a) }
func (a Uint16Array) Float(i int) float32  { return float32(a[i]) }

func (a Int16Array) Len() int             { return len(a) }
func (a Int16Array) BytesPerElement() int { return 2 }
func (a Int16Array) Type() DataType       { return ShortType }
func (a Int16Array) Bytes() []byte        { return sliceBytes(a) }
func (a Int16Array) Float(i int) float32  { return float32(a[i]) }

func (a Uint8Array) Len() int             { return len(a) }
func (a Uint8Array) BytesPerElement() int { return 1 }
func (a Uint8Array) Type() DataType       { return UnsignedByteType }
func (a Uint8Array) Bytes() []byte        { return a }
func (a Uint8Array) Float(i int) float32  { return float32(a[i]) }

func (a Int8Array) Len() int             { return len(a) }
func (a Int8Array) BytesPerElement() int { return 1 }
func (a Int8Array) Type() DataType       { return ByteType }
func (a Int8Array) Bytes() []byte        { return sliceBytes(a) }
func (a Int8Array) Float(i int) float32  { return float32(a[i]) }

// UpdateRange marks a sub range of elements for partial upload.
type UpdateRange struct {
	Start int
	Count int
}

// Attribute is either a *BufferAttribute or an *InterleavedAttribute.
type Attribute interface {
	ID() int
	Size() int
	Count() int
	IsNormalized() bool
}

// BufferAttribute owns its array. Mutations must be followed by NeedsUpdate.
type BufferAttribute struct {
	id               int
	Array            TypedArray
	ItemSize         int
	Normalized       bool
	Integer          bool
	Usage            Usage
	Version          int
	UpdateRanges     []UpdateRange
	Instanced        bool
	MeshPerAttribute int
}

// NewBufferAttribute wraps array with itemSize components per vertex.
func NewBufferAttribute(array TypedArray, itemSize int, normalized bool) *BufferAttribute {
	return &BufferAttribute{
		id:         NextID(),
		Array:      array,
		ItemSize:   itemSize,
		Normalized: normalized,
		Usage:      StaticDrawUsage,
	}
}

func (a *BufferAttribute) ID() int            { return a.id }
func (a *BufferAttribute) Size() int          { return a.ItemSize }
func (a *BufferAttribute) IsNormalized() bool { return a.Normalized }
func (a *BufferAttribute) NeedsUpdate()       { a.Version++ }
func (a *BufferAttribute) AddUpdateRange(start, count int) {
	a.UpdateRanges = append(a.UpdateRanges, UpdateRange{start, count})
}

func (a *BufferAttribute) Count() int {
	if a.ItemSize == 0 {
		return 0
	}
	return a.Array.Len() / a.ItemSize
}

// InterleavedBuffer holds several attributes packed per vertex. Stride is in elements.
type InterleavedBuffer struct {
	id               int
	Array            TypedArray
	Stride           int
	Usage            Usage
	Version          int
	UpdateRanges     []UpdateRange
	Instanced        bool
	MeshPerAttribute int
}

func NewInterleavedBuffer(array TypedArray, stride int) *InterleavedBuffer {
	return &InterleavedBuffer{id: NextID(), Array: array, Stride: stride, Usage: StaticDrawUsage}
}

func (b *InterleavedBuffer) ID() int      { return b.id }
func (b *InterleavedBuffer) NeedsUpdate() { b.Version++ }
func (b *InterleavedBuffer) Count() int {
	if b.Stride == 0 {
		return 0
	}
	return b.Array.Len() / b.Stride
}

// InterleavedAttribute is a view into an InterleavedBuffer. Offset is in elements.
type InterleavedAttribute struct {
	id         int
	Data       *InterleavedBuffer
	ItemSize   int
	Offset     int
	Normalized bool
}

func NewInterleavedAttribute(data *InterleavedBuffer, itemSize, offset int, normalized bool) *InterleavedAttribute {
	return &InterleavedAttribute{id: NextID(), Data: data, ItemSize: itemSize, Offset: offset, Normalized: normalized}
}

func (a *InterleavedAttribute) ID() int            { return a.id }
func (a *InterleavedAttribute) Size() int          { return a.ItemSize }
func (a *InterleavedAttribute) Count() int         { return a.Data.Count() }
func (a *InterleavedAttribute) IsNormalized() bool { return a.Normalized }

// Sphere is a bounding sphere.
type Sphere struct {
	Center mgl32.Vec3
	Radius float32
}

// Transformed returns the sphere under matrix m, scaling the radius by the largest axis scale.
func (s Sphere) Transformed(m mgl32.Mat4) Sphere {
	c := m.Mul4x1(s.Center.Vec4(1)).Vec3()
	sx := m.Col(0).Vec3().Len()
	sy := m.Col(1).Vec3().Len()
	sz := m.Col(2).Vec3().Len()
	scale := float32(math.Max(float64(sx), math.Max(float64(sy), float64(sz))))
	return Sphere{Center: c, Radius: s.Radius * scale}
}

// DrawRange limits the drawn vertex or index range. Count < 0 means everything.
type DrawRange struct {
	Start int
	Count int
}

type Geometry struct {
	id                   int
	Name                 string
	Attributes           map[string]Attribute
	Index                *BufferAttribute
	MorphAttributes      map[string][]*BufferAttribute
	MorphTargetsRelative bool
	Groups               []Group
	DrawRange            DrawRange
	BoundingSphere       *Sphere
}

func NewGeometry() *Geometry {
	return &Geometry{
		id:              NextID(),
		Attributes:      map[string]Attribute{},
		MorphAttributes: map[string][]*BufferAttribute{},
		DrawRange:       DrawRange{Start: 0, Count: -1},
	}
}

func (g *Geometry) ID() int { return g.id }

func (g *Geometry) SetAttribute(name string, a Attribute) *Geometry {
	g.Attributes[name] = a
	return g
}

func (g *Geometry) Attribute(name string) Attribute {
	return g.Attributes[name]
}

func (g *Geometry) DeleteAttribute(name string) {
	delete(g.Attributes, name)
}

func (g *Geometry) SetIndex(index *BufferAttribute) {
	g.Index = index
}

func (g *Geometry) AddGroup(start, count, materialIndex int) {
	g.Groups = append(g.Groups, Group{Start: start, Count: count, MaterialIndex: materialIndex})
}

// ComputeBoundingSphere derives a sphere around the position attribute.
func (g *Geometry) ComputeBoundingSphere() {
	pos, ok := g.Attributes["position"]
	if !ok {
		g.BoundingSphere = &Sphere{}
		return
	}
	n := pos.Count()
	if n == 0 {
		g.BoundingSphere = &Sphere{}
		return
	}
	min := mgl32.Vec3{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32}
	max := min.Mul(-1)
	for i := 0; i < n; i++ {
		p := vertexAt(pos, i)
		for k := 0; k < 3; k++ {
			if p[k] < min[k] {
				min[k] = p[k]
			}
			if p[k] > max[k] {
				max[k] = p[k]
			}
		}
	}
	center := min.Add(max).Mul(0.5)
	var r2 float32
	for i := 0; i < n; i++ {
		d := vertexAt(pos, i).Sub(center)
		if l := d.Dot(d); l > r2 {
			r2 = l
		}
	}
	g.BoundingSphere = &Sphere{Center: center, Radius: float32(math.Sqrt(float64(r2)))}
}

func vertexAt(a Attribute, i int) mgl32.Vec3 {
	var v mgl32.Vec3
	switch t := a.(type) {
	case *BufferAttribute:
		for k := 0; k < t.ItemSize && k < 3; k++ {
			v[k] = t.Array.Float(i*t.ItemSize + k)
		}
	case *InterleavedAttribute:
		base := i*t.Data.Stride + t.Offset
		for k := 0; k < t.ItemSize && k < 3; k++ {
			v[k] = t.Data.Array.Float(base + k)
		}
	}
	return v
}
