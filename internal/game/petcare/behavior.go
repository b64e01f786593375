package petcare

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/petcare/internal/game/brain"
	"github.com/cory-johannsen/petcare/internal/game/dice"
	"github.com/cory-johannsen/petcare/internal/game/event"
	"github.com/cory-johannsen/petcare/internal/game/inventory"
	"github.com/cory-johannsen/petcare/internal/game/npc"
)

// Mode is what an activation cycle does to its candidate.
type Mode int

const (
	ModeTaming Mode = iota
	ModeFeeding
)

// String returns "taming" or "feeding".
func (m Mode) String() string {
	if m == ModeTaming {
		return "taming"
	}
	return "feeding"
}

// Nutrition looks up the food value of an item definition.
type Nutrition interface {
	Nutrition(itemDefID string) int
}

// Roller draws labelled one-in-N rolls.
type Roller interface {
	OneIn(label string, n int) dice.OneInResult
}

// Publisher delivers behavior events.
type Publisher interface {
	Publish(e event.Event)
	Call(c event.Cancellable) bool
}

// Deps are the host services a Behavior uses.
type Deps struct {
	Items   Nutrition
	Roller  Roller
	Events  Publisher
	Effects Effects
	// Adoption decides whether a candidate is abandoned.
	Adoption AdoptionPolicy
	// CooldownTicks is the HasTamedRecently expiry set when a cycle finishes;
	// zero disables the marker.
	CooldownTicks int64
	Logger        *zap.Logger
}

// Behavior tames or feeds pets on behalf of one villager.
//
// A Behavior holds per-cycle state and must be used by exactly one villager.
type Behavior struct {
	opts Options
	deps Deps

	mode          Mode
	started       bool
	finished      bool
	retryTicks    int
	selectedItem  string
	savedEquipped inventory.Stack
}

// New constructs a Behavior.
//
// Precondition: every Deps field except Adoption and CooldownTicks must be non-nil.
// Postcondition: returns an error if opts is invalid.
func New(opts Options, deps Deps) (*Behavior, error) {
	if deps.Items == nil || deps.Roller == nil || deps.Events == nil || deps.Effects == nil || deps.Logger == nil {
		panic("petcare.New: dependencies must not be nil")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Behavior{opts: opts, deps: deps}, nil
}

// Name implements brain.Behavior.
func (b *Behavior) Name() string {
	return "pet_care:" + b.opts.Species
}

// Mode returns the mode chosen by the last successful CanStart.
func (b *Behavior) Mode() Mode { return b.mode }

// Started reports whether a cycle is in progress.
func (b *Behavior) Started() bool { return b.started }

// RetryTicks returns the retry countdown.
func (b *Behavior) RetryTicks() int { return b.retryTicks }

// SelectedItem returns the item chosen at Start, or "".
func (b *Behavior) SelectedItem() string { return b.selectedItem }

// CanStart implements brain.Behavior.
//
// Postcondition: on true, Mode is ModeTaming when a tame candidate exists and
// ModeFeeding otherwise; on false, RetryTicks is RetryCooldown/4 unless the
// call only consumed one tick of an earlier throttle.
func (b *Behavior) CanStart(v *npc.Villager) bool {
	if !b.started && b.retryTicks > 0 {
		b.retryTicks--
		return false
	}
	// Another pet-care instance already holds this villager.
	if v.Task().Kind == npc.TaskTaming {
		b.retryTicks = RetryCooldown / 4
		return false
	}
	if !b.ready(v) {
		b.retryTicks = RetryCooldown / 4
		return false
	}
	switch {
	case b.canTame(v):
		b.mode = ModeTaming
	case b.canFeed(v):
		b.mode = ModeFeeding
	default:
		b.retryTicks = RetryCooldown / 4
		return false
	}
	return true
}

// CanStillUse implements brain.Behavior. The mode chosen at start is kept.
func (b *Behavior) CanStillUse(v *npc.Villager) bool {
	if b.finished {
		return false
	}
	return b.ready(v) && b.eligible(v)
}

// TimedOut implements brain.Behavior; pet care never times out.
func (b *Behavior) TimedOut(int64) bool { return false }

// Start implements brain.Behavior.
//
// Postcondition: the villager's task is TaskTaming. When a candidate and a
// matching inventory item exist, one unit of that item is in the main hand;
// otherwise the cycle is finished and nothing is equipped.
func (b *Behavior) Start(v *npc.Villager) {
	b.savedEquipped = v.MainHand()
	b.started = true

	target, ok := b.candidate(v)
	if !ok {
		v.SetTask(npc.Task{Kind: npc.TaskTaming})
		b.abort(v, "candidate vanished before start")
		return
	}
	v.SetTask(npc.Task{Kind: npc.TaskTaming, TargetID: target.ID})
	v.Memory().Set(brain.InteractionTarget, brain.Target{EntityID: target.ID, Pos: target.Pos})
	v.LookAt(target)

	var match func(inventory.Stack) bool
	if b.mode == ModeTaming {
		match = func(s inventory.Stack) bool { return b.opts.TameItems.Contains(s.ItemDefID) }
	} else {
		match = func(s inventory.Stack) bool { return target.IsFood(s.ItemDefID) }
	}
	stack, ok := v.Inventory().FirstMatching(match)
	if !ok {
		b.abort(v, "no usable item")
		return
	}
	b.selectedItem = stack.ItemDefID
	v.SetMainHand(inventory.Single(stack.ItemDefID))

	b.deps.Logger.Debug("pet care started",
		zap.String("behavior", b.Name()),
		zap.String("villager", v.ID),
		zap.String("animal", target.ID),
		zap.Stringer("mode", b.mode),
		zap.String("item", b.selectedItem),
	)
}

// Tick implements brain.Behavior.
func (b *Behavior) Tick(v *npc.Villager) {
	if b.finished {
		return
	}
	target, ok := b.candidate(v)
	if !ok {
		b.abort(v, "candidate vanished")
		return
	}
	v.LookAt(target)

	if !v.Pos.CloserThan(target.Pos, b.opts.DistanceToTame) {
		look := brain.Target{EntityID: target.ID, Pos: target.Pos}
		v.Memory().Set(brain.WalkTarget, brain.Walk{Target: look, Speed: b.opts.SpeedModifier, CloseEnough: 0})
		v.Memory().Set(brain.LookTarget, look)
		return
	}

	if b.retryTicks > 0 {
		b.retryTicks--
		return
	}

	tamed := false
	if b.mode == ModeTaming {
		tamed = b.tryTame(v, target)
		ev := EntityEventTameFailure
		if tamed {
			ev = EntityEventTameSuccess
		}
		b.deps.Effects.BroadcastEntityEvent(target.ID, ev)
	} else {
		healed := feed(target, b.deps.Items.Nutrition(b.selectedItem), b.deps.Effects)
		b.deps.Logger.Debug("pet fed",
			zap.String("villager", v.ID),
			zap.String("animal", target.ID),
			zap.String("item", b.selectedItem),
			zap.Int("healed", healed),
			zap.String("health", target.HealthDescription()),
		)
	}

	v.Inventory().RemoveItemType(b.selectedItem, 1)

	if b.mode == ModeFeeding || tamed || !b.eligible(v) {
		b.finish(v)
		return
	}
	b.retryTicks += RetryAfterFailedTame
}

// Stop implements brain.Behavior. Calling it more than once is harmless.
//
// Postcondition: the task is cleared, the saved main hand is restored, the
// retry countdown is zero and the target memories are erased.
func (b *Behavior) Stop(v *npc.Villager) {
	if b.started {
		v.SetMainHand(b.savedEquipped)
		v.ClearTask()
	}
	b.started = false
	b.finished = false
	b.retryTicks = 0
	b.selectedItem = ""
	b.savedEquipped = inventory.Stack{}

	mem := v.Memory()
	mem.Erase(brain.InteractionTarget)
	mem.Erase(brain.WalkTarget)
	mem.Erase(brain.LookTarget)
}

// ready checks the guards shared by CanStart and CanStillUse, apart from
// candidate eligibility.
func (b *Behavior) ready(v *npc.Villager) bool {
	mem := v.Memory()
	return v.IsDoingNothing(npc.TaskTaming) &&
		v.Activity == brain.ActivityIdle &&
		mem.Has(brain.NearestVisibleEntities) &&
		!mem.Has(brain.HasTamedRecently)
}

// eligible re-checks the candidate search for the current mode.
func (b *Behavior) eligible(v *npc.Villager) bool {
	if b.mode == ModeTaming {
		return b.canTame(v)
	}
	return b.canFeed(v)
}

func (b *Behavior) canTame(v *npc.Villager) bool {
	_, ok := b.nearestTameable(v)
	return ok && v.Inventory().HasAnyOf(b.opts.TameItems)
}

func (b *Behavior) canFeed(v *npc.Villager) bool {
	a, ok := b.nearestHungry(v)
	if !ok {
		return false
	}
	return v.Inventory().HasAnyMatching(func(s inventory.Stack) bool { return a.IsFood(s.ItemDefID) })
}

func (b *Behavior) candidate(v *npc.Villager) (*npc.Animal, bool) {
	if b.mode == ModeTaming {
		return b.nearestTameable(v)
	}
	return b.nearestHungry(v)
}

func (b *Behavior) nearestTameable(v *npc.Villager) (*npc.Animal, bool) {
	seen, ok := brain.Value[npc.Visible](v.Memory(), brain.NearestVisibleEntities)
	if !ok {
		return nil, false
	}
	return seen.FindClosest(func(a *npc.Animal) bool {
		return b.opts.TameFilter(a) || IsAbandoned(a, b.deps.Adoption)
	})
}

func (b *Behavior) nearestHungry(v *npc.Villager) (*npc.Animal, bool) {
	seen, ok := brain.Value[npc.Visible](v.Memory(), brain.NearestVisibleEntities)
	if !ok {
		return nil, false
	}
	return seen.FindClosest(func(a *npc.Animal) bool {
		return a.OwnerID == v.ID && a.IsInjured()
	})
}

// tryTame resolves one tame attempt against target.
//
// Postcondition: on true, target is owned by v and a PetTamedEvent was published.
func (b *Behavior) tryTame(v *npc.Villager, target *npc.Animal) bool {
	abandoned := IsAbandoned(target, b.deps.Adoption)
	if !abandoned {
		roll := b.deps.Roller.OneIn(fmt.Sprintf("tame %s by %s", target.ID, v.ID), b.opts.TameChance)
		if !roll.Passed {
			return false
		}
	}

	attempt := &event.TameEvent{
		VillagerID: v.ID,
		AnimalID:   target.ID,
		Species:    target.Template.ID,
		Abandoned:  abandoned,
	}
	if !b.deps.Events.Call(attempt) {
		b.deps.Logger.Debug("tame vetoed",
			zap.String("villager", v.ID),
			zap.String("animal", target.ID),
		)
		return false
	}

	target.TameBy(v.ID)
	b.deps.Events.Publish(&event.PetTamedEvent{
		VillagerID: v.ID,
		AnimalID:   target.ID,
		Species:    target.Template.ID,
		Abandoned:  abandoned,
	})
	b.deps.Logger.Debug("pet tamed",
		zap.String("villager", v.ID),
		zap.String("animal", target.ID),
		zap.Bool("abandoned", abandoned),
	)
	return true
}

// finish completes the cycle and sets the cooldown marker when one is configured.
func (b *Behavior) finish(v *npc.Villager) {
	b.finished = true
	if b.deps.CooldownTicks > 0 {
		v.Memory().SetWithExpiry(brain.HasTamedRecently, true, b.deps.CooldownTicks)
	}
	b.deps.Logger.Debug("pet care finished",
		zap.String("behavior", b.Name()),
		zap.String("villager", v.ID),
		zap.Stringer("mode", b.mode),
	)
}

// abort ends the cycle without a cooldown marker.
func (b *Behavior) abort(v *npc.Villager, reason string) {
	b.finished = true
	b.deps.Logger.Debug("pet care aborted",
		zap.String("behavior", b.Name()),
		zap.String("villager", v.ID),
		zap.String("reason", reason),
	)
}

var _ brain.Behavior[*npc.Villager] = (*Behavior)(nil)
