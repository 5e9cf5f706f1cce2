package engine

import (
	"testing"

	"GopherScene/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

type fakeKeys map[Key]bool

func (k fakeKeys) Pressed(key Key) bool { return k[key] }

func assertVec(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	for i := 0; i < 3; i++ {
		assert.InDelta(t, want[i], got[i], 1e-4, "component %d of %v", i, got)
	}
}

func newTestFlyCamera() *FlyCamera {
	return NewFlyCamera(scene.NewPerspectiveCamera(60, 1, 0.1, 100))
}

func TestNewFlyCameraLooksDownNegativeZ(t *testing.T) {
	fc := newTestFlyCamera()
	assertVec(t, mgl32.Vec3{0, 0, -1}, fc.Front)
	assertVec(t, mgl32.Vec3{1, 0, 0}, fc.Right)
	assertVec(t, mgl32.Vec3{0, 1, 0}, fc.Up)
	assertVec(t, mgl32.Vec3{0, 0, -1}, fc.Camera.Rotation.Rotate(mgl32.Vec3{0, 0, -1}))
}

func TestProcessKeyboardMoves(t *testing.T) {
	fc := newTestFlyCamera()
	assert.False(t, fc.ProcessKeyboard(fakeKeys{}, 1))

	assert.True(t, fc.ProcessKeyboard(fakeKeys{KeyForward: true}, 1))
	assertVec(t, mgl32.Vec3{0, 0, -20}, fc.Camera.Position)

	fc.ProcessKeyboard(fakeKeys{KeyRight: true, KeyBoost: true}, 1)
	assertVec(t, mgl32.Vec3{50, 0, -20}, fc.Camera.Position)

	fc.ProcessKeyboard(fakeKeys{KeyUp: true}, 0.5)
	assertVec(t, mgl32.Vec3{50, 10, -20}, fc.Camera.Position)
	assertVec(t, mgl32.Vec3{50, 10, -20}, fc.Camera.WorldPosition())
}

func TestOpposingKeysCancel(t *testing.T) {
	fc := newTestFlyCamera()
	assert.False(t, fc.ProcessKeyboard(fakeKeys{KeyLeft: true, KeyRight: true}, 1))
	assertVec(t, mgl32.Vec3{}, fc.Camera.Position)
}

func TestProcessMouseMovementClampsPitch(t *testing.T) {
	fc := newTestFlyCamera()
	fc.ProcessMouseMovement(0, 10000, true)
	assert.Equal(t, float32(89), fc.Pitch)

	fc.InvertMouse = true
	fc.ProcessMouseMovement(0, 10000, true)
	assert.Equal(t, float32(-89), fc.Pitch)

	fc.ProcessMouseMovement(100, 0, true)
	assert.InDelta(t, -80, fc.Yaw, 1e-4)
}

func TestFlyCameraLookAt(t *testing.T) {
	fc := newTestFlyCamera()
	fc.LookAt(mgl32.Vec3{10, 0, 0})
	assert.InDelta(t, 0, fc.Yaw, 1e-4)
	assert.InDelta(t, 0, fc.Pitch, 1e-4)
	assertVec(t, mgl32.Vec3{1, 0, 0}, fc.Front)
	assertVec(t, mgl32.Vec3{1, 0, 0}, fc.Camera.Rotation.Rotate(mgl32.Vec3{0, 0, -1}))
}
