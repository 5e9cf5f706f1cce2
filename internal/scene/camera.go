package scene

import "github.com/go-gl/mathgl/mgl32"

type Camera struct {
	Object

	Projection         mgl32.Mat4
	ProjectionInverse  mgl32.Mat4
	MatrixWorldInverse mgl32.Mat4

	Orthographic bool
	Fov          float32 // degrees
	Aspect       float32
	Near         float32
	Far          float32
	Zoom         float32

	Left, Right, Top, Bottom float32
}

// NewPerspectiveCamera returns a camera with a vertical field of view in degrees.
func NewPerspectiveCamera(fov, aspect, near, far float32) *Camera {
	c := &Camera{Fov: fov, Aspect: aspect, Near: near, Far: far, Zoom: 1}
	c.Object.init(KindCamera)
	c.Object.camera = c
	c.MatrixWorldInverse = mgl32.Ident4()
	c.UpdateProjection()
	return c
}

// NewOrthographicCamera returns a camera with a box shaped frustum.
func NewOrthographicCamera(left, right, top, bottom, near, far float32) *Camera {
	c := &Camera{
		Orthographic: true,
		Left:         left, Right: right, Top: top, Bottom: bottom,
		Near: near, Far: far, Zoom: 1,
	}
	c.Object.init(KindCamera)
	c.Object.camera = c
	c.MatrixWorldInverse = mgl32.Ident4()
	c.UpdateProjection()
	return c
}

// UpdateProjection must be called after changing any projection parameter.
func (c *Camera) UpdateProjection() {
	if c.Orthographic {
		cx, cy := (c.Right+c.Left)/2, (c.Top+c.Bottom)/2
		dx, dy := (c.Right-c.Left)/(2*c.Zoom), (c.Top-c.Bottom)/(2*c.Zoom)
		c.Projection = mgl32.Ortho(cx-dx, cx+dx, cy-dy, cy+dy, c.Near, c.Far)
	} else {
		fov := c.Fov
		if c.Zoom > 0 {
			fov = mgl32.RadToDeg(2 * atan(tan(mgl32.DegToRad(c.Fov)/2)/c.Zoom))
		}
		c.Projection = mgl32.Perspective(mgl32.DegToRad(fov), c.Aspect, c.Near, c.Far)
	}
	c.ProjectionInverse = c.Projection.Inv()
}

// SetAspect updates the aspect ratio of a perspective camera.
func (c *Camera) SetAspect(aspect float32) {
	c.Aspect = aspect
	c.UpdateProjection()
}

// UpdateMatrixWorld refreshes the world and view matrices.
func (c *Camera) UpdateMatrixWorld() {
	c.Object.UpdateMatrixWorld()
}

// ViewProjection returns Projection * MatrixWorldInverse.
func (c *Camera) ViewProjection() mgl32.Mat4 {
	return c.Projection.Mul4(c.MatrixWorldInverse)
}
