package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/petcare/internal/game/event"
)

// TameHook is the Lua global consulted before a villager tames an animal.
// It receives (villager_id, animal_id, species, abandoned); returning false
// vetoes the tame. Any other result, including no hook, allows it.
const TameHook = "on_villager_tame"

// TameVeto routes villager tame events through TameHook.
type TameVeto struct {
	mgr       *Manager
	villageID string
	logger    *zap.Logger
}

// NewTameVeto returns a TameVeto that calls TameHook in villageID's VM.
//
// Precondition: mgr and logger must be non-nil.
func NewTameVeto(mgr *Manager, villageID string, logger *zap.Logger) *TameVeto {
	return &TameVeto{mgr: mgr, villageID: villageID, logger: logger}
}

// Subscribe attaches the veto to bus at normal priority.
//
// Postcondition: returns the unsubscribe function.
func (v *TameVeto) Subscribe(bus *event.Bus) func() {
	return bus.Subscribe(event.NameVillagerTame, event.PriorityNormal, true, v.handle)
}

func (v *TameVeto) handle(e event.Event) {
	te, ok := e.(*event.TameEvent)
	if !ok {
		return
	}
	ret, err := v.mgr.CallHook(v.villageID, TameHook,
		lua.LString(te.VillagerID),
		lua.LString(te.AnimalID),
		lua.LString(te.Species),
		lua.LBool(te.Abandoned),
	)
	if err != nil {
		v.logger.Warn("tame hook failed", zap.Error(err))
		return
	}
	if ret == lua.LFalse {
		te.SetCancelled(true)
		v.logger.Debug("tame vetoed by script",
			zap.String("villager", te.VillagerID),
			zap.String("animal", te.AnimalID),
		)
	}
}
