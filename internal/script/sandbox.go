package script

import lua "github.com/yuin/gopher-lua"

// openSafeLibraries opens only the Lua standard libraries that give
// scripts no I/O capability. Functions are pure over their arguments
// and module state by construction: no clock, no network, no console.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	// Base sneaks in escape hatches; drop them. io, os, debug and
	// package are never opened.
	for _, name := range []string{
		"dofile",
		"loadfile",
		"load",
		"loadstring",
		"print",
		"collectgarbage",
	} {
		L.SetGlobal(name, lua.LNil)
	}
}
