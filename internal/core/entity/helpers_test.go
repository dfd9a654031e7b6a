package entity

import (
	"fmt"
	"io"
)

type journal struct {
	calls []string
}

func (j *journal) add(format string, args ...any) {
	j.calls = append(j.calls, fmt.Sprintf(format, args...))
}

func (j *journal) reset() {
	j.calls = nil
}

// spy implements every capability contract and records each call.
type spy struct {
	name string
	j    *journal
	fail map[string]error
	on   map[string]func(e *Entity)
}

func newSpy(name string, j *journal) *spy {
	return &spy{
		name: name,
		j:    j,
		fail: make(map[string]error),
		on:   make(map[string]func(e *Entity)),
	}
}

func (p *spy) hook(e *Entity, name string) error {
	p.j.add("%s.%s", p.name, name)
	if fn := p.on[name]; fn != nil {
		fn(e)
	}
	return p.fail[name]
}

func (p *spy) Init(e *Entity) error    { return p.hook(e, "init") }
func (p *spy) Enable(e *Entity) error  { return p.hook(e, "enable") }
func (p *spy) Disable(e *Entity) error { return p.hook(e, "disable") }
func (p *spy) Dispose(e *Entity) error { return p.hook(e, "dispose") }
func (p *spy) Spawn(e *Entity) error   { return p.hook(e, "spawn") }
func (p *spy) Despawn(e *Entity) error { return p.hook(e, "despawn") }

func (p *spy) Tick(e *Entity, dt float64) error {
	p.j.add("%s.tick(%g)", p.name, dt)
	if fn := p.on["tick"]; fn != nil {
		fn(e)
	}
	return p.fail["tick"]
}

func (p *spy) FixedTick(e *Entity, dt float64) error {
	p.j.add("%s.fixed(%g)", p.name, dt)
	return p.fail["fixed"]
}

func (p *spy) LateTick(e *Entity, dt float64) error {
	p.j.add("%s.late(%g)", p.name, dt)
	return p.fail["late"]
}

func (p *spy) DebugDraw(e *Entity, w io.Writer) error {
	_, err := fmt.Fprintf(w, "  spy %s\n", p.name)
	return err
}

// once wraps fn so that it runs on the first call only.
func once(fn func(e *Entity)) func(e *Entity) {
	done := false
	return func(e *Entity) {
		if !done {
			done = true
			fn(e)
		}
	}
}

// ticker only implements Ticker.
type ticker struct {
	name string
	j    *journal
}

func (t *ticker) Tick(e *Entity, dt float64) error {
	t.j.add("%s.tick(%g)", t.name, dt)
	return nil
}

// inert implements no contract at all.
type inert struct {
	n int
}

// unhashable cannot be used as a map key.
type unhashable struct {
	items []int
}
