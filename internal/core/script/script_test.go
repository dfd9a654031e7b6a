package script

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/zeusync/compose/internal/core/entity"
	"github.com/zeusync/compose/internal/core/observability/log"
)

const counterScript = `
function init(e)
  e:set_value("ticks", 0)
end

function enable(e)
  e:add_tag("alive")
end

function disable(e)
  e:del_tag("alive")
end

function tick(e, dt)
  e:set_value("ticks", e:get_value("ticks") + 1)
  e:set_value("elapsed", (e:get_value("elapsed") or 0) + dt)
end
`

func TestLifecycleHooksDriveEntity(t *testing.T) {
	c, err := New("counter", counterScript, nil)
	require.NoError(t, err)
	defer c.Close()

	e := entity.New(entity.WithName("lua"))
	_, err = e.AddCapability(c)
	require.NoError(t, err)

	require.NoError(t, e.Enable())
	assert.True(t, e.HasNamedTag("alive"))

	require.NoError(t, e.Tick(0.5))
	require.NoError(t, e.Tick(0.25))

	ticks, err := e.GetNamedValue("ticks")
	require.NoError(t, err)
	assert.Equal(t, 2.0, ticks)
	elapsed, _ := e.GetNamedValue("elapsed")
	assert.Equal(t, 0.75, elapsed)

	require.NoError(t, e.Disable())
	assert.False(t, e.HasNamedTag("alive"))

	assert.True(t, c.Defines("tick"))
	assert.False(t, c.Defines("late_tick"))
	assert.Equal(t, "counter", c.Name())
}

func TestMissingHooksAreSkipped(t *testing.T) {
	c, err := New("empty", "", nil)
	require.NoError(t, err)
	defer c.Close()

	e := entity.New()
	_, _ = e.AddCapability(c)
	require.NoError(t, e.Enable())
	require.NoError(t, e.Tick(1))
	require.NoError(t, e.FixedTick(1))
	require.NoError(t, e.LateTick(1))
	require.NoError(t, e.Spawn())
	require.NoError(t, e.Despawn())
	require.NoError(t, e.Dispose())
}

func TestRuntimeErrorSurfacesAsTickError(t *testing.T) {
	c, err := New("faulty", `function tick(e, dt) error("overheated") end`, nil)
	require.NoError(t, err)
	defer c.Close()

	e := entity.New()
	_, _ = e.AddCapability(c)
	require.NoError(t, e.Enable())

	err = e.Tick(1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "overheated")
	assert.Contains(t, err.Error(), "script faulty: tick")
}

func TestCompileError(t *testing.T) {
	_, err := New("broken", "function (", nil)
	assert.Error(t, err)
}

func TestEntityBindings(t *testing.T) {
	c, err := New("bindings", `
function spawn(e)
  e:set_value("id", e:id())
  e:set_value("name", e:name())
  e:set_value("flag", true)
  e:set_value("had_tag", e:has_tag("x"))
  e:add_tag("x")
  e:set_value("has_tag", e:has_tag("x"))
  e:set_value("gone", 1)
  e:set_value("gone", nil)
  e:set_value("deleted", e:del_value("missing"))
  e:set_value("has_gone", e:has_value("gone"))
end

function despawn(e)
  e:del_tag("x")
  e:set_value("missing", e:get_value("nothing") == nil)
end

function fixed_tick(e, dt)
  e:set_value("fixed", dt)
end

function late_tick(e, dt)
  e:set_value("late", dt)
end
`, nil)
	require.NoError(t, err)
	defer c.Close()

	e := entity.New(entity.WithName("bound"))
	_, _ = e.AddCapability(c)
	require.NoError(t, e.Spawn())

	value := func(name string) any {
		v, ok := e.TryGetNamedValue(name)
		require.True(t, ok, name)
		return v
	}
	assert.Equal(t, float64(e.ID()), value("id"))
	assert.Equal(t, "bound", value("name"))
	assert.Equal(t, true, value("flag"))
	assert.Equal(t, false, value("had_tag"))
	assert.Equal(t, true, value("has_tag"))
	assert.Equal(t, false, value("deleted"))
	assert.Equal(t, false, value("has_gone"))
	assert.False(t, e.HasNamedValue("gone"))

	require.NoError(t, e.Despawn())
	assert.False(t, e.HasNamedTag("x"))
	assert.Equal(t, true, value("missing"))

	require.NoError(t, e.Enable())
	require.NoError(t, e.FixedTick(0.02))
	require.NoError(t, e.LateTick(0.5))
	assert.Equal(t, 0.02, value("fixed"))
	assert.Equal(t, 0.5, value("late"))
}

func TestBadReceiverRaises(t *testing.T) {
	c, err := New("misuse", `function tick(e, dt) e.add_tag("x", "y") end`, nil)
	require.NoError(t, err)
	defer c.Close()

	e := entity.New()
	_, _ = e.AddCapability(c)
	require.NoError(t, e.Enable())
	assert.Error(t, e.Tick(1))
}

func TestLoadFileAndLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "greeter.lua")
	require.NoError(t, os.WriteFile(path, []byte(`function init(e) log("hello " .. e:name()) end`), 0o644))

	core, logs := observer.New(zap.DebugLevel)
	c, err := Load(path, log.NewFromZap(zap.New(core), log.LevelDebug))
	require.NoError(t, err)
	defer c.Close()
	assert.Equal(t, "greeter", c.Name())

	e := entity.New(entity.WithName("bob"))
	_, _ = e.AddCapability(c)
	require.NoError(t, e.Init())

	entries := logs.FilterMessage("hello bob").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "greeter", entries[0].ContextMap()["script"])

	_, err = Load(filepath.Join(t.TempDir(), "missing.lua"), nil)
	assert.Error(t, err)
}

func TestDebugDraw(t *testing.T) {
	c, err := New("drawn", "", nil)
	require.NoError(t, err)
	defer c.Close()

	e := entity.New()
	_, _ = e.AddCapability(c)

	var buf bytes.Buffer
	require.NoError(t, e.DebugDraw(&buf))
	assert.Contains(t, buf.String(), "lua drawn")
}
