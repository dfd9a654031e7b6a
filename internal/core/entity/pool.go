package entity

// Pool recycles entities made by a Factory. Get spawns, Put despawns. It is
// owned by one goroutine, like the entities it holds.
type Pool struct {
	factory Factory
	parked  []*Entity
}

func NewPool(factory Factory) *Pool {
	return &Pool{factory: factory}
}

// Get hands out a parked entity, or a new one when none is parked, and
// spawns it.
func (p *Pool) Get() (*Entity, error) {
	var e *Entity
	if n := len(p.parked); n > 0 {
		e = p.parked[n-1]
		p.parked[n-1] = nil
		p.parked = p.parked[:n-1]
	} else {
		if p.factory == nil {
			return nil, ErrNoFactory
		}
		created, err := p.factory.Create()
		if err != nil {
			return nil, err
		}
		e = created
	}

	if err := e.Spawn(); err != nil {
		return e, err
	}
	return e, nil
}

// Put despawns e and parks it for reuse. A nil entity is ignored.
func (p *Pool) Put(e *Entity) error {
	if e == nil {
		return nil
	}
	if err := e.Despawn(); err != nil {
		return err
	}
	p.parked = append(p.parked, e)
	return nil
}

// Len is the number of parked entities.
func (p *Pool) Len() int {
	return len(p.parked)
}
