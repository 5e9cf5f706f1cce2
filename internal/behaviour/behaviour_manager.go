package behaviour

// DefaultFixedStep is the fixed update interval in seconds.
const DefaultFixedStep = float32(1.0 / 60.0)

// BehaviourManager advances components with a variable frame step and a fixed
// physics step accumulated from frame time.
type BehaviourManager struct {
	Components *ComponentManager
	FixedStep  float32
	// MaxSubSteps caps fixed updates per frame so a long stall does not snowball
	MaxSubSteps int

	accumulator float32
}

func NewBehaviourManager() *BehaviourManager {
	return &BehaviourManager{
		Components:  NewComponentManager(),
		FixedStep:   DefaultFixedStep,
		MaxSubSteps: 5,
	}
}

func (m *BehaviourManager) Add(obj *GameObject) {
	m.Components.RegisterGameObject(obj)
}

func (m *BehaviourManager) Remove(obj *GameObject) {
	m.Components.UnregisterGameObject(obj)
}

// Step runs the fixed updates due for dt seconds of frame time, then one Update.
// It returns how many fixed updates ran.
func (m *BehaviourManager) Step(dt float32) int {
	if dt < 0 {
		dt = 0
	}
	m.accumulator += dt
	steps := 0
	for m.accumulator >= m.FixedStep && steps < m.MaxSubSteps {
		m.Components.FixedUpdateAll(m.FixedStep)
		m.accumulator -= m.FixedStep
		steps++
	}
	if steps == m.MaxSubSteps && m.accumulator > m.FixedStep {
		m.accumulator = 0
	}
	m.Components.UpdateAll(dt)
	return steps
}

func (m *BehaviourManager) Clear() {
	m.Components.Clear()
	m.accumulator = 0
}
