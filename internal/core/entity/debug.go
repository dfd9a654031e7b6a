package entity

import (
	"fmt"
	"io"
	"strings"

	"github.com/zeusync/compose/internal/core/keys"
)

// DebugDraw writes a readable dump of the entity to w, then lets every
// DebugDrawer capability append its own lines, in insertion order.
func (e *Entity) DebugDraw(w io.Writer) error {
	tags := e.Tags()
	names := make([]string, len(tags))
	for i, k := range tags {
		names[i] = keys.Format(k)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s state=%s spawned=%t\n", e, e.State(), e.spawned)
	fmt.Fprintf(&b, "  tags: [%s]\n", strings.Join(names, ", "))
	fmt.Fprintf(&b, "  values:\n")
	for _, k := range e.valueKeys {
		fmt.Fprintf(&b, "    %s = %v\n", keys.Format(k), e.values[k])
	}
	fmt.Fprintf(&b, "  capabilities: %d\n", len(e.capabilities))
	if _, err := io.WriteString(w, b.String()); err != nil {
		return err
	}

	return e.sweep(func(c Capability) error {
		if d, ok := c.(DebugDrawer); ok {
			return d.DebugDraw(e, w)
		}
		return nil
	})
}
