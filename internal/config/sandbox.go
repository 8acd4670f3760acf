package config

import (
	"context"

	lua "github.com/yuin/gopher-lua"
)

// sandboxLibs are the only standard libraries a config file gets. os, io,
// debug, package and channel are never opened.
var sandboxLibs = []struct {
	name string
	open lua.LGFunction
}{
	{lua.BaseLibName, lua.OpenBase},
	{lua.TabLibName, lua.OpenTable},
	{lua.StringLibName, lua.OpenString},
	{lua.MathLibName, lua.OpenMath},
}

// sandboxLuaVM removes the base functions that load further code from disk
// or from strings.
func sandboxLuaVM(L *lua.LState) {
	for _, name := range []string{
		"require",
		"module",
		"dofile",
		"loadfile",
		"load",
		"loadstring",
	} {
		L.SetGlobal(name, lua.LNil)
	}
}

// newSandboxedVM creates a sandboxed Lua VM that stops executing when ctx
// is done.
func newSandboxedVM(ctx context.Context) *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, lib := range sandboxLibs {
		L.Push(L.NewFunction(lib.open))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}
	sandboxLuaVM(L)
	L.SetContext(ctx)
	return L
}
