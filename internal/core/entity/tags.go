package entity

import (
	"slices"

	"github.com/zeusync/compose/internal/core/keys"
)

// AddTag reports false when the tag was already present.
func (e *Entity) AddTag(k Key) bool {
	if _, ok := e.tags[k]; ok {
		return false
	}
	e.tags[k] = struct{}{}
	e.events.TagAdded.Emit(TagEvent{Entity: e, Key: k})
	return true
}

// AddTags adds every key and returns how many were new.
func (e *Entity) AddTags(ks ...Key) int {
	added := 0
	for _, k := range ks {
		if e.AddTag(k) {
			added++
		}
	}
	return added
}

func (e *Entity) DelTag(k Key) bool {
	if _, ok := e.tags[k]; !ok {
		return false
	}
	delete(e.tags, k)
	e.events.TagDeleted.Emit(TagEvent{Entity: e, Key: k})
	return true
}

// ClearTags removes all tags with a single TagsCleared notification.
func (e *Entity) ClearTags() bool {
	if len(e.tags) == 0 {
		return false
	}
	clear(e.tags)
	e.events.TagsCleared.Emit(e)
	return true
}

func (e *Entity) HasTag(k Key) bool {
	_, ok := e.tags[k]
	return ok
}

func (e *Entity) TagCount() int {
	return len(e.tags)
}

// Tags returns the tag keys in ascending order.
func (e *Entity) Tags() []Key {
	out := make([]Key, 0, len(e.tags))
	for k := range e.tags {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

func (e *Entity) AddNamedTag(name string) bool {
	return e.AddTag(keys.Of(name))
}

func (e *Entity) DelNamedTag(name string) bool {
	return e.DelTag(keys.Hash(name))
}

func (e *Entity) HasNamedTag(name string) bool {
	return e.HasTag(keys.Hash(name))
}
