package scripting_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/petcare/internal/game/event"
	"github.com/cory-johannsen/petcare/internal/scripting"
)

// repoRoot walks up from the test's working directory to find the module root.
func repoRoot(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	root := wd
	for {
		if _, err := os.Stat(filepath.Join(root, "go.mod")); err == nil {
			return root
		}
		parent := filepath.Dir(root)
		if parent == root {
			t.Fatalf("could not find repo root from %s", wd)
		}
		root = parent
	}
}

func TestTameVeto_FalseCancels(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "veto.lua", `
		function on_villager_tame(villager_id, animal_id, species, abandoned)
			return species ~= "parrot"
		end
	`)
	require.NoError(t, mgr.LoadVillage("oak", dir, 0))
	bus := event.NewBus(zap.NewNop())
	scripting.NewTameVeto(mgr, "oak", zap.NewNop()).Subscribe(bus)

	assert.True(t, bus.Call(&event.TameEvent{VillagerID: "v1", AnimalID: "w1", Species: "wolf"}))
	assert.False(t, bus.Call(&event.TameEvent{VillagerID: "v1", AnimalID: "p1", Species: "parrot"}))
}

func TestTameVeto_NoHookAllows(t *testing.T) {
	mgr, _ := newTestManager(t)
	bus := event.NewBus(zap.NewNop())
	scripting.NewTameVeto(mgr, "oak", zap.NewNop()).Subscribe(bus)
	assert.True(t, bus.Call(&event.TameEvent{VillagerID: "v1", AnimalID: "w1", Species: "wolf"}))
}

func TestTameVeto_ErroringHookAllows(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "veto.lua", `function on_villager_tame() error("broken") end`)
	require.NoError(t, mgr.LoadVillage("oak", dir, 0))
	bus := event.NewBus(zap.NewNop())
	scripting.NewTameVeto(mgr, "oak", zap.NewNop()).Subscribe(bus)
	assert.True(t, bus.Call(&event.TameEvent{VillagerID: "v1", AnimalID: "w1", Species: "wolf"}))
}

func TestTameVeto_Unsubscribe(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "veto.lua", `function on_villager_tame() return false end`)
	require.NoError(t, mgr.LoadVillage("oak", dir, 0))
	bus := event.NewBus(zap.NewNop())
	unsub := scripting.NewTameVeto(mgr, "oak", zap.NewNop()).Subscribe(bus)
	require.False(t, bus.Call(&event.TameEvent{}))
	unsub()
	assert.True(t, bus.Call(&event.TameEvent{}))
}

func TestContentScript_CapsPetsPerVillager(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.LoadGlobal(filepath.Join(repoRoot(t), "content", "scripts"), 0))
	pets := map[string]int{"busy": 3, "free": 1}
	mgr.GetVillager = func(id string) *scripting.VillagerInfo {
		n, ok := pets[id]
		if !ok {
			return nil
		}
		return &scripting.VillagerInfo{ID: id, Name: id, Activity: "idle", Pets: n}
	}
	bus := event.NewBus(zap.NewNop())
	scripting.NewTameVeto(mgr, "oak", zap.NewNop()).Subscribe(bus)

	assert.True(t, bus.Call(&event.TameEvent{VillagerID: "free", AnimalID: "w1", Species: "wolf"}))
	assert.False(t, bus.Call(&event.TameEvent{VillagerID: "busy", AnimalID: "w2", Species: "wolf"}))
	assert.True(t, bus.Call(&event.TameEvent{VillagerID: "busy", AnimalID: "w3", Species: "wolf", Abandoned: true}))
	assert.True(t, bus.Call(&event.TameEvent{VillagerID: "stranger", AnimalID: "w4", Species: "wolf"}))
}
