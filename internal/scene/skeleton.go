package scene

import "github.com/go-gl/mathgl/mgl32"

// Skeleton drives a SkinnedMesh. Several meshes may share one skeleton.
type Skeleton struct {
	id           int
	Bones        []*Object
	BoneInverses []mgl32.Mat4
	BoneMatrices []float32
	BoneTexture  *Texture
	version      int
}

// NewSkeleton computes inverse bind matrices from the bones' current world matrices
// when inverses is nil.
func NewSkeleton(bones []*Object, inverses []mgl32.Mat4) *Skeleton {
	s := &Skeleton{id: NextID(), Bones: bones, BoneMatrices: make([]float32, 16*len(bones))}
	if inverses == nil {
		inverses = make([]mgl32.Mat4, len(bones))
		for i, b := range bones {
			inverses[i] = b.MatrixWorld.Inv()
		}
	}
	s.BoneInverses = inverses
	return s
}

func (s *Skeleton) ID() int { return s.id }

// Version counts calls to Update.
func (s *Skeleton) Version() int { return s.version }

// ComputeBoneTexture packs the bone matrices into a float RGBA texture, 4 texels per bone.
func (s *Skeleton) ComputeBoneTexture() {
	size := 4
	for size*size < 4*len(s.Bones) {
		size *= 2
	}
	padded := make([]float32, size*size*4)
	copy(padded, s.BoneMatrices)
	s.BoneMatrices = padded
	t := NewTexture(&Source{id: NextID(), Data: Float32Array(padded).Bytes(), Width: size, Height: size, Depth: 1})
	t.Format, t.Type = RGBAFormat, FloatType
	t.MagFilter, t.MinFilter = NearestFilter, NearestFilter
	t.FlipY, t.GenerateMipmaps = false, false
	s.BoneTexture = t
}

// Update recomputes bone matrices from the bones' world matrices.
func (s *Skeleton) Update() {
	for i, b := range s.Bones {
		m := mgl32.Ident4()
		if b != nil {
			m = b.MatrixWorld.Mul4(s.BoneInverses[i])
		}
		copy(s.BoneMatrices[i*16:], m[:])
	}
	if s.BoneTexture != nil {
		s.BoneTexture.NeedsUpdate()
	}
	s.version++
}
