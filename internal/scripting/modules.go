package scripting

import lua "github.com/yuin/gopher-lua"

// RegisterModules registers the engine.* Lua tables into L:
//
//	engine.log.debug/info/warn(msg)
//	engine.dice.one_in(n) -> bool
//	engine.villager(id) -> table or nil
//	engine.animal(id) -> table or nil
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: engine global is defined in L.
func (m *Manager) RegisterModules(L *lua.LState) {
	engine := L.NewTable()

	log := L.NewTable()
	L.SetField(log, "debug", L.NewFunction(func(L *lua.LState) int {
		m.logger.Debug(L.CheckString(1))
		return 0
	}))
	L.SetField(log, "info", L.NewFunction(func(L *lua.LState) int {
		m.logger.Info(L.CheckString(1))
		return 0
	}))
	L.SetField(log, "warn", L.NewFunction(func(L *lua.LState) int {
		m.logger.Warn(L.CheckString(1))
		return 0
	}))
	L.SetField(engine, "log", log)

	dice := L.NewTable()
	L.SetField(dice, "one_in", L.NewFunction(func(L *lua.LState) int {
		n := L.CheckInt(1)
		L.Push(lua.LBool(m.roller.OneIn("lua", n).Passed))
		return 1
	}))
	L.SetField(engine, "dice", dice)

	L.SetField(engine, "villager", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		if m.GetVillager == nil {
			L.Push(lua.LNil)
			return 1
		}
		info := m.GetVillager(id)
		if info == nil {
			L.Push(lua.LNil)
			return 1
		}
		t := L.NewTable()
		L.SetField(t, "id", lua.LString(info.ID))
		L.SetField(t, "name", lua.LString(info.Name))
		L.SetField(t, "activity", lua.LString(info.Activity))
		L.SetField(t, "pets", lua.LNumber(info.Pets))
		L.Push(t)
		return 1
	}))

	L.SetField(engine, "animal", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		if m.GetAnimal == nil {
			L.Push(lua.LNil)
			return 1
		}
		info := m.GetAnimal(id)
		if info == nil {
			L.Push(lua.LNil)
			return 1
		}
		t := L.NewTable()
		L.SetField(t, "id", lua.LString(info.ID))
		L.SetField(t, "species", lua.LString(info.Species))
		L.SetField(t, "health", lua.LNumber(info.Health))
		L.SetField(t, "max_health", lua.LNumber(info.MaxHealth))
		L.SetField(t, "owner", lua.LString(info.OwnerID))
		L.Push(t)
		return 1
	}))

	L.SetGlobal("engine", engine)
}
