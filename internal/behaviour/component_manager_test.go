package behaviour

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComponentManagerRegisterStartsOnce(t *testing.T) {
	cm := NewComponentManager()
	obj := NewGameObject("Test", nil)
	comp := &MockComponent{}
	obj.AddComponent(comp)

	cm.RegisterGameObject(obj)
	cm.UpdateAll(0.016)
	cm.UpdateAll(0.016)

	assert.Len(t, cm.GetAllGameObjects(), 1)
	assert.Equal(t, 1, comp.startCalls)
	assert.Equal(t, 2, comp.updateCalls)
	assert.Equal(t, float32(0.016), comp.lastDt)
}

func TestComponentManagerIgnoresDuplicates(t *testing.T) {
	cm := NewComponentManager()
	obj := NewGameObject("Test", nil)
	comp := &MockComponent{}
	obj.AddComponent(comp)

	cm.RegisterGameObject(obj)
	cm.RegisterGameObject(obj)
	assert.Len(t, cm.GetAllGameObjects(), 1)

	cm.DestroyGameObject(obj)
	cm.DestroyGameObject(obj)
	cm.UpdateAll(0.016)
	assert.Empty(t, cm.GetAllGameObjects())
	assert.Equal(t, 1, comp.destroyCalls)
}

func TestComponentManagerLateComponentStarts(t *testing.T) {
	cm := NewComponentManager()
	obj := NewGameObject("Test", nil)
	cm.RegisterGameObject(obj)
	comp := &MockComponent{}

	obj.AddComponent(comp)

	assert.Equal(t, 1, comp.startCalls)
}

func TestComponentManagerUnregister(t *testing.T) {
	cm := NewComponentManager()
	obj := NewGameObject("Test", nil)
	comp := &MockComponent{}
	obj.AddComponent(comp)
	cm.RegisterGameObject(obj)

	cm.UnregisterGameObject(obj)

	assert.Empty(t, cm.GetAllGameObjects())
	assert.Equal(t, 1, comp.destroyCalls)
}

func TestComponentManagerFixedUpdateAll(t *testing.T) {
	cm := NewComponentManager()
	obj := NewGameObject("Test", nil)
	comp := &MockComponent{}
	obj.AddComponent(comp)
	cm.RegisterGameObject(obj)

	cm.FixedUpdateAll(DefaultFixedStep)

	assert.Equal(t, 1, comp.fixedCalls)
}

func TestComponentManagerInactiveObject(t *testing.T) {
	cm := NewComponentManager()
	obj := NewGameObject("Test", nil)
	obj.Active = false
	comp := &MockComponent{}
	obj.AddComponent(comp)
	cm.RegisterGameObject(obj)

	cm.UpdateAll(0.016)
	assert.Zero(t, comp.updateCalls)
	assert.Zero(t, comp.startCalls)

	obj.Active = true
	cm.UpdateAll(0.016)
	assert.Equal(t, 1, comp.startCalls)
	assert.Equal(t, 1, comp.updateCalls)
}

func TestComponentManagerDestroyIsDeferred(t *testing.T) {
	cm := NewComponentManager()
	obj := NewGameObject("Doomed", nil)
	comp := &MockComponent{}
	obj.AddComponent(comp)
	cm.RegisterGameObject(obj)

	cm.DestroyGameObject(obj)
	assert.Len(t, cm.GetAllGameObjects(), 1)

	cm.UpdateAll(0.016)
	assert.Empty(t, cm.GetAllGameObjects())
	assert.Zero(t, comp.updateCalls)
}

func TestComponentManagerFind(t *testing.T) {
	cm := NewComponentManager()
	a := NewGameObject("FindMe", nil)
	a.Tag = "enemy"
	b := NewGameObject("Other", nil)
	b.Tag = "enemy"
	cm.RegisterGameObject(a)
	cm.RegisterGameObject(b)

	assert.Same(t, a, cm.FindGameObject("FindMe"))
	assert.Nil(t, cm.FindGameObject("NotHere"))
	assert.Len(t, cm.FindGameObjectsWithTag("enemy"), 2)
}

func TestComponentManagerClear(t *testing.T) {
	cm := NewComponentManager()
	cm.RegisterGameObject(NewGameObject("A", nil))
	cm.RegisterGameObject(NewGameObject("B", nil))

	cm.Clear()

	assert.Empty(t, cm.GetAllGameObjects())
}

func TestBehaviourManagerFixedSteps(t *testing.T) {
	m := NewBehaviourManager()
	obj := NewGameObject("Test", nil)
	comp := &MockComponent{}
	obj.AddComponent(comp)
	m.Add(obj)

	assert.Equal(t, 0, m.Step(DefaultFixedStep/2))
	assert.Equal(t, 1, m.Step(DefaultFixedStep/2+DefaultFixedStep/4))
	assert.Equal(t, 1, comp.fixedCalls)
	assert.Equal(t, 2, comp.updateCalls)
}

func TestBehaviourManagerCapsSubSteps(t *testing.T) {
	m := NewBehaviourManager()
	obj := NewGameObject("Test", nil)
	comp := &MockComponent{}
	obj.AddComponent(comp)
	m.Add(obj)

	steps := m.Step(10)

	assert.Equal(t, m.MaxSubSteps, steps)
	// the backlog is dropped rather than replayed next frame
	assert.Equal(t, 0, m.Step(0))
}

func TestBuiltInScripts(t *testing.T) {
	obj := NewGameObject("Spinner", nil)
	obj.Object.Position[1] = 2
	bounce := CreateScript("BounceScript").(*BounceScript)
	orbit := CreateScript("OrbitScript").(*OrbitScript)
	obj.AddComponent(bounce)
	obj.AddComponent(orbit)
	m := NewBehaviourManager()
	m.Add(obj)

	m.Step(0)
	assert.InDelta(t, 10, obj.Object.Position.X(), 1e-5)
	assert.InDelta(t, 2, obj.Object.Position.Y(), 1e-5)

	m.Step(DefaultFixedStep)
	assert.Greater(t, obj.Object.Position.Y(), float32(2))
}
