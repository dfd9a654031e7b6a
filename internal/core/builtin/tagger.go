package builtin

import (
	"github.com/zeusync/compose/internal/core/entity"
	"github.com/zeusync/compose/internal/core/keys"
)

// Tagger holds its tags on the entity only while the entity is enabled.
type Tagger struct {
	tags []entity.Key
}

func NewTagger(names ...string) *Tagger {
	t := &Tagger{tags: make([]entity.Key, 0, len(names))}
	for _, name := range names {
		t.tags = append(t.tags, keys.Of(name))
	}
	return t
}

func (t *Tagger) Enable(e *entity.Entity) error {
	e.AddTags(t.tags...)
	return nil
}

func (t *Tagger) Disable(e *entity.Entity) error {
	for _, k := range t.tags {
		e.DelTag(k)
	}
	return nil
}
