// Package script implements capabilities whose hooks are written in Lua.
//
// Each Capability owns one gopher-lua VM. A hook calls the global function of
// the same name when the script defines it:
//
//	init(e)  enable(e)  disable(e)  dispose(e)  spawn(e)  despawn(e)
//	tick(e, dt)  fixed_tick(e, dt)  late_tick(e, dt)
//
// e is an entity handle with the methods id, name, add_tag, del_tag, has_tag,
// set_value, get_value, del_value and has_value. Tags and values are
// addressed by name. A global log(msg) writes to the capability's logger.
//
// A Capability is not safe for concurrent use; like the entity it is attached
// to, it belongs to one goroutine.
package script

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/zeusync/compose/internal/core/entity"
	"github.com/zeusync/compose/internal/core/observability/log"
)

const entityTypeName = "compose.entity"

var _ interface {
	entity.Initializer
	entity.Enabler
	entity.Disabler
	entity.Disposer
	entity.Ticker
	entity.FixedTicker
	entity.LateTicker
	entity.Spawner
	entity.Despawner
	entity.DebugDrawer
	io.Closer
} = (*Capability)(nil)

type Capability struct {
	name   string
	vm     *lua.LState
	handle *lua.LUserData
	log    log.Log
	closed bool
}

// New compiles and runs source in a fresh VM. Top-level statements run once,
// here; hooks run later, when the entity drives them.
func New(name, source string, logger log.Log) (*Capability, error) {
	if logger == nil {
		logger = log.NewNop()
	}
	vm := lua.NewState()
	c := &Capability{
		name: name,
		vm:   vm,
		log:  logger.With(log.String("script", name)),
	}
	c.registerEntityType()
	vm.SetGlobal("log", vm.NewFunction(c.luaLog))
	c.handle = vm.NewUserData()
	vm.SetMetatable(c.handle, vm.GetTypeMetatable(entityTypeName))

	if err := vm.DoString(source); err != nil {
		vm.Close()
		return nil, fmt.Errorf("script %s: load: %w", name, err)
	}
	return c, nil
}

// Load reads a script file and compiles it with New, naming it after the
// file.
func Load(path string, logger log.Log) (*Capability, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("script: read %s: %w", path, err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return New(name, string(data), logger)
}

func (c *Capability) Name() string {
	return c.name
}

// Defines reports whether the script declares the global function fn.
func (c *Capability) Defines(fn string) bool {
	return c.vm.GetGlobal(fn).Type() == lua.LTFunction
}

// Close releases the VM. The capability must not be used afterwards; a
// second Close is a no-op.
func (c *Capability) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.vm.Close()
	return nil
}

func (c *Capability) Init(e *entity.Entity) error    { return c.call(e, "init") }
func (c *Capability) Enable(e *entity.Entity) error  { return c.call(e, "enable") }
func (c *Capability) Disable(e *entity.Entity) error { return c.call(e, "disable") }
func (c *Capability) Dispose(e *entity.Entity) error { return c.call(e, "dispose") }
func (c *Capability) Spawn(e *entity.Entity) error   { return c.call(e, "spawn") }
func (c *Capability) Despawn(e *entity.Entity) error { return c.call(e, "despawn") }

func (c *Capability) Tick(e *entity.Entity, dt float64) error {
	return c.call(e, "tick", lua.LNumber(dt))
}

func (c *Capability) FixedTick(e *entity.Entity, dt float64) error {
	return c.call(e, "fixed_tick", lua.LNumber(dt))
}

func (c *Capability) LateTick(e *entity.Entity, dt float64) error {
	return c.call(e, "late_tick", lua.LNumber(dt))
}

func (c *Capability) DebugDraw(_ *entity.Entity, w io.Writer) error {
	_, err := fmt.Fprintf(w, "  lua %s\n", c.name)
	return err
}

func (c *Capability) call(e *entity.Entity, fn string, args ...lua.LValue) error {
	f := c.vm.GetGlobal(fn)
	if f.Type() != lua.LTFunction {
		return nil
	}
	c.handle.Value = e

	params := make([]lua.LValue, 0, len(args)+1)
	params = append(params, c.handle)
	params = append(params, args...)
	if err := c.vm.CallByParam(lua.P{Fn: f, NRet: 0, Protect: true}, params...); err != nil {
		return fmt.Errorf("script %s: %s: %w", c.name, fn, err)
	}
	return nil
}

func (c *Capability) luaLog(L *lua.LState) int {
	c.log.Info(L.CheckString(1))
	return 0
}
