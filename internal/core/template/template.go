package template

import (
	"fmt"
	"maps"
	"slices"

	"github.com/zeusync/compose/internal/core/entity"
	"github.com/zeusync/compose/internal/core/observability/log"
)

var (
	_ entity.Installer = (*Template)(nil)
	_ entity.Factory   = (*Template)(nil)
)

// Template is a validated Spec bound to the registry that resolves its
// capability types.
type Template struct {
	spec     Spec
	registry *Registry
	log      log.Log
}

func (t *Template) Name() string {
	return t.spec.Name
}

// Spec returns a copy of the underlying spec.
func (t *Template) Spec() Spec {
	s := t.spec
	s.Tags = slices.Clone(s.Tags)
	s.Values = maps.Clone(s.Values)
	s.Capabilities = slices.Clone(s.Capabilities)
	return s
}

// Install adds the template's tags, values and freshly constructed
// capabilities to e. Values are set in key name order.
func (t *Template) Install(e *entity.Entity) error {
	for _, tag := range t.spec.Tags {
		e.AddNamedTag(tag)
	}
	for _, name := range slices.Sorted(maps.Keys(t.spec.Values)) {
		e.SetNamedValue(name, t.spec.Values[name])
	}
	for i, cs := range t.spec.Capabilities {
		c, err := t.registry.New(cs.Type, cs.Params)
		if err != nil {
			return fmt.Errorf("template %s: capability %d: %w", t.spec.Name, i, err)
		}
		if _, err = e.AddCapability(c); err != nil {
			return fmt.Errorf("template %s: attach %s: %w", t.spec.Name, cs.Type, err)
		}
	}
	return nil
}

// Create returns a new installed, uninitialized entity named after the
// template.
func (t *Template) Create() (*entity.Entity, error) {
	e := entity.New(entity.WithName(t.spec.Name), entity.WithLogger(t.log))
	if _, err := e.Install(t); err != nil {
		return nil, err
	}
	return e, nil
}

func (t *Template) validate() error {
	if t.spec.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidTemplate)
	}
	for i, cs := range t.spec.Capabilities {
		if cs.Type == "" {
			return fmt.Errorf("%w: %s: capability %d has no type", ErrInvalidTemplate, t.spec.Name, i)
		}
		if !t.registry.Has(cs.Type) {
			return fmt.Errorf("template %s: %w: %s", t.spec.Name, ErrUnknownCapability, cs.Type)
		}
	}
	return nil
}
