package behaviour

import (
	"testing"

	"GopherScene/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockComponent struct {
	BaseComponent
	awakeCalls   int
	startCalls   int
	updateCalls  int
	fixedCalls   int
	destroyCalls int
	lastDt       float32
}

func (m *MockComponent) Awake()     { m.awakeCalls++ }
func (m *MockComponent) Start()     { m.startCalls++ }
func (m *MockComponent) OnDestroy() { m.destroyCalls++ }
func (m *MockComponent) Update(dt float32) {
	m.updateCalls++
	m.lastDt = dt
}
func (m *MockComponent) FixedUpdate(dt float32) { m.fixedCalls++ }

func TestNewGameObjectWrapsSceneObject(t *testing.T) {
	mesh := scene.NewMesh(scene.NewBoxGeometry(1, 1, 1), scene.NewMaterial(scene.MeshBasicMaterial))

	obj := NewGameObject("Crate", mesh)

	assert.Same(t, mesh, obj.Object)
	assert.Equal(t, "Crate", mesh.Name)
	assert.True(t, obj.Active)
}

func TestNewGameObjectWithoutObjectMakesGroup(t *testing.T) {
	obj := NewGameObject("Empty", nil)

	require.NotNil(t, obj.Object)
	assert.Equal(t, scene.KindGroup, obj.Object.Kind)
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, obj.Object.Scale)
}

func TestTransformHelpersWriteThrough(t *testing.T) {
	obj := NewGameObject("Mover", nil)

	obj.Translate(mgl32.Vec3{1, 2, 3})
	obj.Rotate(mgl32.Vec3{0, 1, 0}, mgl32.DegToRad(90))

	assert.Equal(t, mgl32.Vec3{1, 2, 3}, obj.Object.Position)
	f := obj.Forward()
	assert.InDelta(t, -1, f.X(), 1e-5)
	assert.InDelta(t, 0, f.Z(), 1e-5)
	assert.InDelta(t, 1, obj.Up().Y(), 1e-5)
}

func TestAddComponentAwakesAndEnables(t *testing.T) {
	obj := NewGameObject("Test", nil)
	comp := &MockComponent{}

	obj.AddComponent(comp)

	assert.Equal(t, 1, comp.awakeCalls)
	assert.Zero(t, comp.startCalls)
	assert.True(t, comp.GetEnabled())
	assert.Same(t, obj, comp.GetGameObject())
}

func TestGetAndRemoveComponent(t *testing.T) {
	obj := NewGameObject("Test", nil)
	mock := &MockComponent{}
	rot := &RotateScript{Speed: 1}
	obj.AddComponent(mock)
	obj.AddComponent(rot)

	found := obj.GetComponent(func(c Component) bool {
		_, ok := c.(*RotateScript)
		return ok
	})
	assert.Same(t, rot, found)

	obj.RemoveComponent(mock)
	assert.Equal(t, 1, mock.destroyCalls)
	assert.Len(t, obj.Components, 1)
}

func TestDisabledComponentIsSkipped(t *testing.T) {
	cm := NewComponentManager()
	obj := NewGameObject("Test", nil)
	comp := &MockComponent{}
	obj.AddComponent(comp)
	comp.SetEnabled(false)
	cm.RegisterGameObject(obj)

	cm.UpdateAll(0.1)

	assert.Zero(t, comp.startCalls)
	assert.Zero(t, comp.updateCalls)
}

func TestDestroyNotifiesComponents(t *testing.T) {
	obj := NewGameObject("Test", nil)
	a, b := &MockComponent{}, &MockComponent{}
	obj.AddComponent(a)
	obj.AddComponent(b)

	obj.Destroy()

	assert.False(t, obj.Active)
	assert.Equal(t, 1, a.destroyCalls)
	assert.Equal(t, 1, b.destroyCalls)
}
