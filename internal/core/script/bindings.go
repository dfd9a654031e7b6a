package script

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/zeusync/compose/internal/core/entity"
)

func (c *Capability) registerEntityType() {
	mt := c.vm.NewTypeMetatable(entityTypeName)
	c.vm.SetField(mt, "__index", c.vm.SetFuncs(c.vm.NewTable(), map[string]lua.LGFunction{
		"id":        entityID,
		"name":      entityName,
		"add_tag":   entityAddTag,
		"del_tag":   entityDelTag,
		"has_tag":   entityHasTag,
		"set_value": entitySetValue,
		"get_value": entityGetValue,
		"del_value": entityDelValue,
		"has_value": entityHasValue,
	}))
}

func checkEntity(L *lua.LState) *entity.Entity {
	ud := L.CheckUserData(1)
	if e, ok := ud.Value.(*entity.Entity); ok && e != nil {
		return e
	}
	L.ArgError(1, "entity expected")
	return nil
}

func entityID(L *lua.LState) int {
	L.Push(lua.LNumber(checkEntity(L).ID()))
	return 1
}

func entityName(L *lua.LState) int {
	L.Push(lua.LString(checkEntity(L).Name()))
	return 1
}

func entityAddTag(L *lua.LState) int {
	e := checkEntity(L)
	L.Push(lua.LBool(e.AddNamedTag(L.CheckString(2))))
	return 1
}

func entityDelTag(L *lua.LState) int {
	e := checkEntity(L)
	L.Push(lua.LBool(e.DelNamedTag(L.CheckString(2))))
	return 1
}

func entityHasTag(L *lua.LState) int {
	e := checkEntity(L)
	L.Push(lua.LBool(e.HasNamedTag(L.CheckString(2))))
	return 1
}

// set_value(name, v) stores v; a nil v deletes the value.
func entitySetValue(L *lua.LState) int {
	e := checkEntity(L)
	name := L.CheckString(2)
	v := L.Get(3)
	if v == lua.LNil {
		e.DelNamedValue(name)
		return 0
	}
	e.SetNamedValue(name, fromLua(v))
	return 0
}

func entityGetValue(L *lua.LState) int {
	e := checkEntity(L)
	v, ok := e.TryGetNamedValue(L.CheckString(2))
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(toLua(v))
	return 1
}

func entityDelValue(L *lua.LState) int {
	e := checkEntity(L)
	L.Push(lua.LBool(e.DelNamedValue(L.CheckString(2))))
	return 1
}

func entityHasValue(L *lua.LState) int {
	e := checkEntity(L)
	L.Push(lua.LBool(e.HasNamedValue(L.CheckString(2))))
	return 1
}

// fromLua converts scalars; tables and functions are stored as their string
// form since they cannot outlive the VM.
func fromLua(v lua.LValue) any {
	switch v := v.(type) {
	case lua.LNumber:
		return float64(v)
	case lua.LString:
		return string(v)
	case lua.LBool:
		return bool(v)
	default:
		return v.String()
	}
}

func toLua(v any) lua.LValue {
	switch v := v.(type) {
	case nil:
		return lua.LNil
	case float64:
		return lua.LNumber(v)
	case float32:
		return lua.LNumber(v)
	case int:
		return lua.LNumber(v)
	case int32:
		return lua.LNumber(v)
	case int64:
		return lua.LNumber(v)
	case uint64:
		return lua.LNumber(v)
	case string:
		return lua.LString(v)
	case bool:
		return lua.LBool(v)
	case fmt.Stringer:
		return lua.LString(v.String())
	default:
		return lua.LString(fmt.Sprint(v))
	}
}
