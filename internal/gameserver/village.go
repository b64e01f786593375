// Package gameserver hosts the village simulation: the fixed-cadence tick
// loop, the game clock, and the per-tick villager update that feeds
// perception into memory, dispatches brains and applies movement.
package gameserver

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/petcare/internal/game/brain"
	"github.com/cory-johannsen/petcare/internal/game/npc"
	"github.com/cory-johannsen/petcare/internal/scripting"
)

// Village owns the villagers and animals of one settlement and advances them
// one tick at a time. All methods except the accessors must be called from
// the tick goroutine.
type Village struct {
	id      string
	npcs    *npc.Manager
	tracker *npc.Tracker
	clock   *GameClock
	radius  int
	logger  *zap.Logger

	schedules map[string]*brain.Schedule[*npc.Villager]
	order     []string
	departed  []func(villagerID string)
	leaving   []departure
}

// departure is a villager scheduled to leave at the start of a tick.
type departure struct {
	villagerID string
	tick       int64
}

// NewVillage creates an empty village.
//
// Precondition: npcs, tracker, clock and logger must be non-nil;
// perceptionRadius >= 1.
func NewVillage(id string, npcs *npc.Manager, tracker *npc.Tracker, clock *GameClock, perceptionRadius int, logger *zap.Logger) *Village {
	if npcs == nil || tracker == nil || clock == nil || logger == nil {
		panic("gameserver.NewVillage: npcs, tracker, clock and logger must be non-nil")
	}
	return &Village{
		id:        id,
		npcs:      npcs,
		tracker:   tracker,
		clock:     clock,
		radius:    perceptionRadius,
		logger:    logger.With(zap.String("village", id)),
		schedules: make(map[string]*brain.Schedule[*npc.Villager]),
	}
}

// ID returns the village identifier.
func (w *Village) ID() string { return w.id }

// NPCs returns the entity manager.
func (w *Village) NPCs() *npc.Manager { return w.npcs }

// Clock returns the village clock.
func (w *Village) Clock() *GameClock { return w.clock }

// OnDeparture registers fn to run after a villager is removed.
func (w *Village) OnDeparture(fn func(villagerID string)) {
	w.departed = append(w.departed, fn)
}

// AddVillager registers v with its behaviors, in dispatch order, and tracks
// its presence.
//
// Precondition: v must be non-nil with a unique ID; behavior names must be unique.
// Postcondition: On success v is updated by every subsequent Step.
func (w *Village) AddVillager(v *npc.Villager, behaviors ...brain.Behavior[*npc.Villager]) error {
	sched := brain.NewSchedule[*npc.Villager](w.logger.With(zap.String("villager_id", v.ID)))
	for _, b := range behaviors {
		if err := sched.Register(b); err != nil {
			return fmt.Errorf("villager %s: %w", v.ID, err)
		}
	}
	if err := w.npcs.AddVillager(v); err != nil {
		return err
	}
	v.Activity = w.clock.CurrentHour().Activity()
	w.tracker.Track(npc.TrackedVillager{ID: v.ID, Name: v.Name})
	w.schedules[v.ID] = sched
	w.order = append(w.order, v.ID)
	w.logger.Info("villager joined",
		zap.String("villager_id", v.ID),
		zap.String("name", v.Name),
		zap.Int("behaviors", len(behaviors)),
	)
	return nil
}

// ScheduleDeparture arranges for id to be removed at the start of the first
// Step whose tick is >= tick.
//
// Precondition: tick >= 1.
// Postcondition: Returns an error if id is not a villager of this village.
func (w *Village) ScheduleDeparture(id string, tick int64) error {
	if _, ok := w.schedules[id]; !ok {
		return fmt.Errorf("villager %q not in village %q", id, w.id)
	}
	w.leaving = append(w.leaving, departure{villagerID: id, tick: tick})
	return nil
}

// PendingDepartures returns the number of departures not yet applied.
func (w *Village) PendingDepartures() int { return len(w.leaving) }

// RemoveVillager stops the villager's behaviors and forgets it, cancelling any
// departure still scheduled for it. Pets it owned become abandoned.
//
// Postcondition: Returns an error if id is not a villager of this village.
func (w *Village) RemoveVillager(id string) error {
	sched, ok := w.schedules[id]
	if !ok {
		return fmt.Errorf("villager %q not in village %q", id, w.id)
	}
	if v, ok := w.npcs.Villager(id); ok {
		sched.StopAll(v)
	}
	if err := w.npcs.RemoveVillager(id); err != nil {
		return err
	}
	w.tracker.Forget(id)
	delete(w.schedules, id)
	for i, o := range w.order {
		if o == id {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
	kept := w.leaving[:0]
	for _, d := range w.leaving {
		if d.villagerID != id {
			kept = append(kept, d)
		}
	}
	w.leaving = kept
	w.logger.Info("villager departed",
		zap.String("villager_id", id),
		zap.Int("pets_left", len(w.PetsOf(id))),
	)
	for _, fn := range w.departed {
		fn(id)
	}
	return nil
}

// Step advances the village by one tick: the clock moves, due departures are
// applied, then each villager in join order gets its activity, memory expiry,
// perception snapshot, brain update and one movement step.
func (w *Village) Step(tick int64) {
	hour, changed := w.clock.Advance()
	w.depart(tick)
	if changed {
		w.logger.Info("hour changed",
			zap.Stringer("hour", hour),
			zap.String("period", string(hour.Period())),
			zap.String("activity", string(hour.Activity())),
		)
	}
	activity := hour.Activity()
	for _, id := range w.order {
		v, ok := w.npcs.Villager(id)
		if !ok {
			continue
		}
		v.Activity = activity
		mem := v.Memory()
		mem.Tick()
		mem.Set(brain.NearestVisibleEntities, w.npcs.Perceive(v.Pos, w.radius))
		w.schedules[id].Update(v, tick)
		w.move(v)
	}
}

// depart removes every villager whose departure is due at tick.
func (w *Village) depart(tick int64) {
	kept := w.leaving[:0]
	var due []string
	for _, d := range w.leaving {
		if d.tick <= tick {
			due = append(due, d.villagerID)
			continue
		}
		kept = append(kept, d)
	}
	w.leaving = kept
	for _, id := range due {
		if err := w.RemoveVillager(id); err != nil {
			w.logger.Warn("scheduled departure", zap.Int64("tick", tick), zap.Error(err))
		}
	}
}

// Shutdown preempts every running behavior so villagers put away what they
// were holding.
func (w *Village) Shutdown() {
	for _, id := range w.order {
		if v, ok := w.npcs.Villager(id); ok {
			w.schedules[id].StopAll(v)
		}
	}
}

// move takes one block toward the walk target, following the target entity
// when it is a live animal. The request is dropped once within CloseEnough.
func (w *Village) move(v *npc.Villager) {
	mem := v.Memory()
	walk, ok := brain.Value[brain.Walk](mem, brain.WalkTarget)
	if !ok {
		return
	}
	dest := walk.Target.Pos
	if a, ok := w.npcs.Animal(walk.Target.EntityID); ok {
		dest = a.Pos
	}
	reach := walk.CloseEnough * walk.CloseEnough
	if v.Pos.DistSqr(dest) > reach {
		v.Pos = v.Pos.StepToward(dest)
	}
	if v.Pos.DistSqr(dest) <= reach {
		mem.Erase(brain.WalkTarget)
	}
}

// PetsOf returns the animals owned by villagerID, ordered by ID.
func (w *Village) PetsOf(villagerID string) []*npc.Animal {
	var out []*npc.Animal
	for _, a := range w.npcs.Animals() {
		if a.OwnerID == villagerID {
			out = append(out, a)
		}
	}
	return out
}

// VillagerInfo returns the script view of a villager, or nil when unknown.
func (w *Village) VillagerInfo(id string) *scripting.VillagerInfo {
	v, ok := w.npcs.Villager(id)
	if !ok {
		return nil
	}
	return &scripting.VillagerInfo{
		ID:       v.ID,
		Name:     v.Name,
		Activity: string(v.Activity),
		Pets:     len(w.PetsOf(id)),
	}
}

// AnimalInfo returns the script view of an animal, or nil when unknown.
func (w *Village) AnimalInfo(id string) *scripting.AnimalInfo {
	a, ok := w.npcs.Animal(id)
	if !ok {
		return nil
	}
	return &scripting.AnimalInfo{
		ID:        a.ID,
		Species:   a.Template.ID,
		Health:    a.Health,
		MaxHealth: a.MaxHealth,
		OwnerID:   a.OwnerID,
	}
}
