package builtin

import (
	"github.com/zeusync/compose/internal/core/entity"
	"github.com/zeusync/compose/internal/core/observability/log"
)

// Trace logs every lifecycle hook of its entity at debug level.
type Trace struct {
	log log.Log
}

func NewTrace(logger log.Log) *Trace {
	return &Trace{log: logger.Named("trace")}
}

func (t *Trace) Init(e *entity.Entity) error    { return t.hook(e, "init") }
func (t *Trace) Enable(e *entity.Entity) error  { return t.hook(e, "enable") }
func (t *Trace) Disable(e *entity.Entity) error { return t.hook(e, "disable") }
func (t *Trace) Dispose(e *entity.Entity) error { return t.hook(e, "dispose") }
func (t *Trace) Spawn(e *entity.Entity) error   { return t.hook(e, "spawn") }
func (t *Trace) Despawn(e *entity.Entity) error { return t.hook(e, "despawn") }

func (t *Trace) hook(e *entity.Entity, phase string) error {
	t.log.Debug("entity hook",
		log.Uint64("entity_id", uint64(e.ID())),
		log.String("entity_name", e.Name()),
		log.String("phase", phase),
	)
	return nil
}
