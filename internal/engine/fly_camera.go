package engine

import (
	"math"

	"GopherScene/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
)

// Key is a movement action independent of the windowing backend.
type Key int

const (
	KeyForward Key = iota
	KeyBackward
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyBoost
)

// KeyState reports which movement keys are held.
type KeyState interface {
	Pressed(k Key) bool
}

// FlyCamera is a yaw/pitch free-look controller for a scene camera.
type FlyCamera struct {
	Camera *scene.Camera

	Yaw         float32 // degrees, -90 looks down -Z
	Pitch       float32 // degrees
	Speed       float32 // units per second
	Sensitivity float32
	InvertMouse bool
	BoostFactor float32

	Front   mgl32.Vec3
	Right   mgl32.Vec3
	Up      mgl32.Vec3
	WorldUp mgl32.Vec3
}

func NewFlyCamera(cam *scene.Camera) *FlyCamera {
	fc := &FlyCamera{
		Camera:      cam,
		Yaw:         -90,
		Speed:       20,
		Sensitivity: 0.1,
		BoostFactor: 2.5,
		WorldUp:     mgl32.Vec3{0, 1, 0},
	}
	fc.updateCameraVectors()
	return fc
}

// ProcessKeyboard moves the camera along its local axes. It reports whether the camera moved.
func (c *FlyCamera) ProcessKeyboard(keys KeyState, dt float32) bool {
	velocity := c.Speed * dt
	if keys.Pressed(KeyBoost) {
		velocity *= c.BoostFactor
	}

	var move mgl32.Vec3
	if keys.Pressed(KeyForward) {
		move = move.Add(c.Front)
	}
	if keys.Pressed(KeyBackward) {
		move = move.Sub(c.Front)
	}
	if keys.Pressed(KeyRight) {
		move = move.Add(c.Right)
	}
	if keys.Pressed(KeyLeft) {
		move = move.Sub(c.Right)
	}
	if keys.Pressed(KeyUp) {
		move = move.Add(c.WorldUp)
	}
	if keys.Pressed(KeyDown) {
		move = move.Sub(c.WorldUp)
	}
	if move.Len() == 0 {
		return false
	}
	c.Camera.Position = c.Camera.Position.Add(move.Mul(velocity))
	c.apply()
	return true
}

func (c *FlyCamera) ProcessMouseMovement(xoffset, yoffset float32, constrainPitch bool) {
	xoffset *= c.Sensitivity
	yoffset *= c.Sensitivity

	c.Yaw += xoffset
	if c.InvertMouse {
		c.Pitch -= yoffset
	} else {
		c.Pitch += yoffset
	}
	if constrainPitch {
		c.Pitch = mgl32.Clamp(c.Pitch, -89.0, 89.0)
	}
	c.updateCameraVectors()
}

// LookAt turns the camera toward target.
func (c *FlyCamera) LookAt(target mgl32.Vec3) {
	dir := target.Sub(c.Camera.Position)
	if dir.Len() == 0 {
		return
	}
	dir = dir.Normalize()
	c.Yaw = mgl32.RadToDeg(float32(math.Atan2(float64(dir.Z()), float64(dir.X()))))
	c.Pitch = mgl32.RadToDeg(float32(math.Asin(float64(mgl32.Clamp(dir.Y(), -1, 1)))))
	c.updateCameraVectors()
}

func (c *FlyCamera) updateCameraVectors() {
	yawRad := float64(mgl32.DegToRad(c.Yaw))
	pitchRad := float64(mgl32.DegToRad(c.Pitch))

	front := mgl32.Vec3{
		float32(math.Cos(yawRad) * math.Cos(pitchRad)),
		float32(math.Sin(pitchRad)),
		float32(math.Sin(yawRad) * math.Cos(pitchRad)),
	}
	c.Front = front.Normalize()
	c.Right = c.Front.Cross(c.WorldUp).Normalize()
	c.Up = c.Right.Cross(c.Front).Normalize()
	c.apply()
}

// apply writes position and orientation into the scene camera.
func (c *FlyCamera) apply() {
	cam := c.Camera
	view := mgl32.LookAtV(cam.Position, cam.Position.Add(c.Front), c.Up)
	cam.Rotation = mgl32.Mat4ToQuat(view.Inv()).Normalize()
	cam.UpdateMatrixWorld()
}
