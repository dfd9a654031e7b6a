package builtin

import (
	"fmt"
	"io"

	"github.com/zeusync/compose/internal/core/entity"
	"github.com/zeusync/compose/internal/core/keys"
)

// Counter counts frames into an int value and accumulates fixed-step time
// into a float64 value named "<key>.fixed".
type Counter struct {
	key   entity.Key
	fixed entity.Key
}

func NewCounter(key string) *Counter {
	return &Counter{
		key:   keys.Of(key),
		fixed: keys.Of(key + ".fixed"),
	}
}

func (c *Counter) Init(e *entity.Entity) error {
	e.SetValue(c.key, 0)
	e.SetValue(c.fixed, 0.0)
	return nil
}

func (c *Counter) Tick(e *entity.Entity, _ float64) error {
	n, _ := entity.TryValue[int](e, c.key)
	e.SetValue(c.key, n+1)
	return nil
}

func (c *Counter) FixedTick(e *entity.Entity, dt float64) error {
	total, _ := entity.TryValue[float64](e, c.fixed)
	e.SetValue(c.fixed, total+dt)
	return nil
}

func (c *Counter) DebugDraw(e *entity.Entity, w io.Writer) error {
	n, _ := entity.TryValue[int](e, c.key)
	_, err := fmt.Fprintf(w, "  counter %s = %d\n", c.key, n)
	return err
}
