package renderer

// Properties attaches renderer private records to scene resources by their stable id.
// Records live until Remove is called from the owning cache's dispose path.
type Properties[T any] struct {
	records map[int]*T
}

func NewProperties[T any]() *Properties[T] {
	return &Properties[T]{records: make(map[int]*T)}
}

// Get returns the record for id, creating a zero record on first access.
func (p *Properties[T]) Get(id int) *T {
	r, ok := p.records[id]
	if !ok {
		r = new(T)
		p.records[id] = r
	}
	return r
}

// Lookup returns the record for id without creating one.
func (p *Properties[T]) Lookup(id int) (*T, bool) {
	r, ok := p.records[id]
	return r, ok
}

func (p *Properties[T]) Remove(id int) {
	delete(p.records, id)
}

func (p *Properties[T]) Len() int {
	return len(p.records)
}

func (p *Properties[T]) Dispose() {
	p.records = make(map[int]*T)
}
