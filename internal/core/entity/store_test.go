package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/compose/internal/core/keys"
)

func TestAddTagTwice(t *testing.T) {
	e := New()
	added := 0
	e.Events().TagAdded.Subscribe(func(ev TagEvent) {
		assert.Same(t, e, ev.Entity)
		assert.Equal(t, Key(5), ev.Key)
		added++
	})

	assert.True(t, e.AddTag(5))
	assert.False(t, e.AddTag(5))

	assert.Equal(t, 1, added)
	assert.Equal(t, []Key{5}, e.Tags())
	assert.Equal(t, 1, e.TagCount())
}

func TestTagRoundTrip(t *testing.T) {
	e := New()
	deleted := 0
	e.Events().TagDeleted.Subscribe(func(TagEvent) { deleted++ })

	e.AddTag(7)
	assert.True(t, e.HasTag(7))
	assert.True(t, e.DelTag(7))
	assert.False(t, e.DelTag(7))
	assert.False(t, e.HasTag(7))
	assert.Equal(t, 1, deleted)
}

func TestClearTags(t *testing.T) {
	e := New()
	cleared, deleted := 0, 0
	e.Events().TagsCleared.Subscribe(func(*Entity) { cleared++ })
	e.Events().TagDeleted.Subscribe(func(TagEvent) { deleted++ })

	assert.False(t, e.ClearTags())
	assert.Equal(t, 3, e.AddTags(3, 1, 2, 1))
	assert.Equal(t, []Key{1, 2, 3}, e.Tags())

	assert.True(t, e.ClearTags())
	assert.Zero(t, e.TagCount())
	assert.Equal(t, 1, cleared)
	assert.Zero(t, deleted)
	assert.Zero(t, e.AddTags())
}

func TestNamedTags(t *testing.T) {
	e := New()
	assert.True(t, e.AddNamedTag("enemy"))
	assert.False(t, e.AddNamedTag("enemy"))
	assert.True(t, e.HasTag(keys.Hash("enemy")))
	assert.True(t, e.HasNamedTag("enemy"))

	name, ok := keys.Name(keys.Hash("enemy"))
	require.True(t, ok)
	assert.Equal(t, "enemy", name)

	assert.True(t, e.DelNamedTag("enemy"))
	assert.False(t, e.HasNamedTag("enemy"))
}

func TestGetValue(t *testing.T) {
	e := New()
	require.True(t, e.AddValue(1, "x"))

	s, err := Value[string](e, 1)
	require.NoError(t, err)
	assert.Equal(t, "x", s)

	_, err = Value[string](e, 2)
	require.ErrorIs(t, err, ErrValueNotFound)

	_, err = Value[int](e, 1)
	require.ErrorIs(t, err, ErrValueType)

	_, err = e.GetValue(2)
	require.ErrorIs(t, err, ErrValueNotFound)

	v, ok := e.TryGetValue(2)
	assert.False(t, ok)
	assert.Nil(t, v)

	n, ok := TryValue[int](e, 1)
	assert.False(t, ok)
	assert.Zero(t, n)

	s, ok = TryValue[string](e, 1)
	assert.True(t, ok)
	assert.Equal(t, "x", s)
}

func TestAddValueDoesNotOverwrite(t *testing.T) {
	e := New()
	added := 0
	e.Events().ValueAdded.Subscribe(func(ValueEvent) { added++ })

	assert.True(t, e.AddValue(1, 10))
	assert.False(t, e.AddValue(1, 20))

	v, err := e.GetValue(1)
	require.NoError(t, err)
	assert.Equal(t, 10, v)
	assert.Equal(t, 1, added)
}

func TestSetValueOnFreshKeyMatchesAddValue(t *testing.T) {
	var viaAdd, viaSet []ValueEvent
	a, s := New(), New()
	a.Events().ValueAdded.Subscribe(func(ev ValueEvent) { viaAdd = append(viaAdd, ev) })
	s.Events().ValueAdded.Subscribe(func(ev ValueEvent) { viaSet = append(viaSet, ev) })
	changed := 0
	s.Events().ValueChanged.Subscribe(func(ValueEvent) { changed++ })

	a.AddValue(9, "v")
	s.SetValue(9, "v")

	require.Len(t, viaAdd, 1)
	require.Len(t, viaSet, 1)
	assert.Equal(t, viaAdd[0].Key, viaSet[0].Key)
	assert.Equal(t, viaAdd[0].Value, viaSet[0].Value)
	assert.Nil(t, viaSet[0].Previous)
	assert.Zero(t, changed)
	assert.Equal(t, a.ValueKeys(), s.ValueKeys())
}

func TestSetValueOverwrites(t *testing.T) {
	e := New()
	var changes []ValueEvent
	e.Events().ValueChanged.Subscribe(func(ev ValueEvent) { changes = append(changes, ev) })

	e.SetValue(1, "a")
	prev, existed := e.SwapValue(1, "b")

	assert.True(t, existed)
	assert.Equal(t, "a", prev)
	require.Len(t, changes, 1)
	assert.Equal(t, "b", changes[0].Value)
	assert.Equal(t, "a", changes[0].Previous)

	prev, existed = e.SwapValue(2, "c")
	assert.False(t, existed)
	assert.Nil(t, prev)
}

func TestValueRoundTrip(t *testing.T) {
	e := New()
	var deleted []ValueEvent
	e.Events().ValueDeleted.Subscribe(func(ev ValueEvent) { deleted = append(deleted, ev) })

	e.AddValue(3, 1.5)
	assert.True(t, e.DelValue(3))
	assert.False(t, e.HasValue(3))
	assert.False(t, e.DelValue(3))

	require.Len(t, deleted, 1)
	assert.Equal(t, 1.5, deleted[0].Value)

	e.AddValue(4, "kept")
	v, ok := e.TakeValue(4)
	assert.True(t, ok)
	assert.Equal(t, "kept", v)
	_, ok = e.TakeValue(4)
	assert.False(t, ok)
}

func TestValueKeysKeepInsertionOrder(t *testing.T) {
	e := New()
	e.AddValue(30, 0)
	e.AddValue(10, 0)
	e.AddValue(20, 0)
	e.DelValue(10)
	e.SetValue(10, 1)
	e.SetValue(30, 2)

	assert.Equal(t, []Key{30, 20, 10}, e.ValueKeys())
	assert.Equal(t, 3, e.ValueCount())
}

func TestClearValues(t *testing.T) {
	e := New()
	cleared := 0
	e.Events().ValuesCleared.Subscribe(func(*Entity) { cleared++ })

	assert.False(t, e.ClearValues())
	assert.Equal(t, 2, e.AddValues(map[Key]any{2: "b", 1: "a"}))
	assert.Equal(t, []Key{1, 2}, e.ValueKeys())
	assert.Zero(t, e.AddValues(nil))

	assert.True(t, e.ClearValues())
	assert.Zero(t, e.ValueCount())
	assert.Empty(t, e.ValueKeys())
	assert.Equal(t, 1, cleared)
}

func TestNamedValues(t *testing.T) {
	e := New()
	assert.True(t, e.AddNamedValue("hp", 100))
	assert.False(t, e.AddNamedValue("hp", 1))
	assert.True(t, e.HasNamedValue("hp"))

	v, err := e.GetNamedValue("hp")
	require.NoError(t, err)
	assert.Equal(t, 100, v)

	e.SetNamedValue("hp", 90)
	v, ok := e.TryGetNamedValue("hp")
	assert.True(t, ok)
	assert.Equal(t, 90, v)

	hp, err := Value[int](e, keys.Hash("hp"))
	require.NoError(t, err)
	assert.Equal(t, 90, hp)

	assert.True(t, e.DelNamedValue("hp"))
	_, err = e.GetNamedValue("hp")
	assert.ErrorIs(t, err, ErrValueNotFound)
}
