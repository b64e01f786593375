package gameserver_test

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/petcare/internal/config"
	"github.com/cory-johannsen/petcare/internal/game/brain"
	"github.com/cory-johannsen/petcare/internal/game/dice"
	"github.com/cory-johannsen/petcare/internal/game/event"
	"github.com/cory-johannsen/petcare/internal/game/inventory"
	"github.com/cory-johannsen/petcare/internal/game/npc"
	"github.com/cory-johannsen/petcare/internal/game/petcare"
	"github.com/cory-johannsen/petcare/internal/game/world"
	"github.com/cory-johannsen/petcare/internal/gameserver"
)

func repoRoot(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	return filepath.Join(filepath.Dir(file), "..", "..")
}

func loadContent(t *testing.T) *gameserver.Content {
	t.Helper()
	c, err := gameserver.LoadContent(filepath.Join(repoRoot(t), "content"))
	require.NoError(t, err)
	return c
}

type harness struct {
	content *gameserver.Content
	village *gameserver.Village
	tracker *npc.Tracker
	bus     *event.Bus
	factory *gameserver.PetCareFactory
	logs    *observer.ObservedLogs
	tamed   []*event.PetTamedEvent
	tick    int64
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)
	h := &harness{
		content: loadContent(t),
		tracker: npc.NewTracker(),
		bus:     event.NewBus(logger),
		logs:    logs,
	}
	h.village = gameserver.NewVillage("test", npc.NewManager(), h.tracker, gameserver.NewGameClock(6, 1000), 16, logger)
	h.bus.Subscribe(event.NamePetTamed, event.PriorityMonitor, true, func(e event.Event) {
		h.tamed = append(h.tamed, e.(*event.PetTamedEvent))
	})

	cfg := config.PetCareConfig{
		TameCooldownTicks:  100,
		AdoptAbandonedPets: true,
		Profiles: []config.PetCareProfile{
			{Species: "wolf", TameItems: []string{"bone"}, DistanceToTame: 2, TameChance: 1, SpeedModifier: 0.6},
			{Species: "cat", TameItems: []string{"cod", "salmon"}, DistanceToTame: 2, TameChance: 1, SpeedModifier: 0.6},
		},
	}
	f, err := gameserver.NewPetCareFactory(cfg, h.content, h.tracker, petcare.Deps{
		Items:   h.content.Items,
		Roller:  dice.NewLoggedRoller(dice.NewSeededSource(7), logger),
		Events:  h.bus,
		Effects: gameserver.NewLogEffects(logger),
		Logger:  logger,
	})
	require.NoError(t, err)
	h.factory = f
	return h
}

func (h *harness) addVillager(t *testing.T, id string, pos world.Pos, items ...gameserver.ItemSpec) *npc.Villager {
	t.Helper()
	v := npc.NewVillager(id, "villager "+id, pos, npc.DefaultInventorySize)
	for _, it := range items {
		require.NoError(t, v.Inventory().Add(it.Item, it.Quantity, h.content.Items))
	}
	v.SetMainHand(inventory.Single("hoe"))
	bs, err := h.factory.Behaviors()
	require.NoError(t, err)
	require.NoError(t, h.village.AddVillager(v, bs...))
	return v
}

func (h *harness) spawn(t *testing.T, id, species string, pos world.Pos) *npc.Animal {
	t.Helper()
	a, err := h.village.NPCs().SpawnAnimal(id, h.content.Species[species], pos)
	require.NoError(t, err)
	return a
}

func (h *harness) run(n int) {
	for i := 0; i < n; i++ {
		h.tick++
		h.village.Step(h.tick)
	}
}

func TestVillage_WalksToAndTamesWildWolf(t *testing.T) {
	h := newHarness(t)
	v := h.addVillager(t, "ada", world.Pos{}, gameserver.ItemSpec{Item: "bone", Quantity: 2})
	wolf := h.spawn(t, "wolf-1", "wolf", world.Pos{X: 4})

	h.run(10)

	assert.Equal(t, "ada", wolf.OwnerID)
	assert.True(t, wolf.TamedByVillager)
	require.Len(t, h.tamed, 1)
	assert.Equal(t, "wolf-1", h.tamed[0].AnimalID)
	assert.False(t, h.tamed[0].Abandoned)

	assert.Equal(t, 1, v.Inventory().Count("bone"), "one bone consumed")
	assert.Equal(t, "hoe", v.MainHand().ItemDefID, "main hand restored")
	assert.Equal(t, npc.TaskNone, v.Task().Kind)
	assert.True(t, v.Memory().Has(brain.HasTamedRecently))
	assert.Less(t, v.Pos.DistSqr(wolf.Pos), 4, "villager walked up to the wolf")
}

func TestVillage_AdoptsAbandonedCat(t *testing.T) {
	h := newHarness(t)
	h.addVillager(t, "bram", world.Pos{}, gameserver.ItemSpec{Item: "cod", Quantity: 1})
	cat := h.spawn(t, "cat-1", "cat", world.Pos{X: 1})
	cat.OwnerID = "long-gone"
	cat.TamedByVillager = true

	h.run(5)

	assert.Equal(t, "bram", cat.OwnerID)
	require.Len(t, h.tamed, 1)
	assert.True(t, h.tamed[0].Abandoned)
}

func TestVillage_FeedsInjuredPet(t *testing.T) {
	h := newHarness(t)
	h.addVillager(t, "ada", world.Pos{}, gameserver.ItemSpec{Item: "beef", Quantity: 2})
	wolf := h.spawn(t, "wolf-1", "wolf", world.Pos{X: 1})
	wolf.OwnerID = "ada"
	wolf.TamedByVillager = true
	wolf.Health = 3

	h.run(5)

	assert.Equal(t, 6, wolf.Health, "beef restores 3")
	healed := h.logs.FilterMessage("pet healed").All()
	require.Len(t, healed, 1)
	assert.Equal(t, "eating", healed[0].ContextMap()["reason"])
	assert.Empty(t, h.tamed)
}

func TestVillage_NoPetCareWhileWorking(t *testing.T) {
	h := newHarness(t)
	h.village = gameserver.NewVillage("test", npc.NewManager(), h.tracker, gameserver.NewGameClock(10, 1000), 16, zap.NewNop())
	v := h.addVillager(t, "ada", world.Pos{}, gameserver.ItemSpec{Item: "bone", Quantity: 2})
	wolf := h.spawn(t, "wolf-1", "wolf", world.Pos{X: 1})

	h.run(5)

	assert.Equal(t, brain.ActivityWork, v.Activity)
	assert.False(t, wolf.IsTamed())
	assert.Equal(t, 2, v.Inventory().Count("bone"))
}

func TestVillage_PerceptionRadiusLimitsCandidates(t *testing.T) {
	h := newHarness(t)
	v := h.addVillager(t, "ada", world.Pos{}, gameserver.ItemSpec{Item: "bone", Quantity: 2})
	wolf := h.spawn(t, "wolf-far", "wolf", world.Pos{X: 40})

	h.run(3)

	assert.False(t, wolf.IsTamed())
	seen, ok := brain.Value[npc.Visible](v.Memory(), brain.NearestVisibleEntities)
	require.True(t, ok)
	assert.Zero(t, seen.Len())
}

func TestVillage_RemoveVillagerAbandonsPets(t *testing.T) {
	h := newHarness(t)
	h.addVillager(t, "ada", world.Pos{})
	wolf := h.spawn(t, "wolf-1", "wolf", world.Pos{X: 5})
	wolf.TameBy("ada")

	var departed []string
	h.village.OnDeparture(func(id string) { departed = append(departed, id) })

	policy := petcare.AdoptionPolicy{AdoptAbandoned: true, Presence: h.tracker}
	assert.False(t, petcare.IsAbandoned(wolf, policy))

	require.NoError(t, h.village.RemoveVillager("ada"))
	assert.Equal(t, []string{"ada"}, departed)
	assert.False(t, h.tracker.Known("ada"))
	assert.True(t, petcare.IsAbandoned(wolf, policy))

	assert.Error(t, h.village.RemoveVillager("ada"))
}

func TestVillage_ScheduledDepartureLetsNeighbourAdopt(t *testing.T) {
	h := newHarness(t)
	h.addVillager(t, "ada", world.Pos{X: 20})
	h.addVillager(t, "bram", world.Pos{X: 4}, gameserver.ItemSpec{Item: "bone", Quantity: 1})
	wolf := h.spawn(t, "wolf-1", "wolf", world.Pos{X: 5})
	wolf.TameBy("ada")

	var departed []string
	h.village.OnDeparture(func(id string) { departed = append(departed, id) })
	require.NoError(t, h.village.ScheduleDeparture("ada", 3))
	assert.Equal(t, 1, h.village.PendingDepartures())

	h.run(2)
	_, ok := h.village.NPCs().Villager("ada")
	assert.True(t, ok, "ada is still here before the departure tick")
	assert.Empty(t, departed)

	h.run(1)
	_, ok = h.village.NPCs().Villager("ada")
	assert.False(t, ok)
	assert.Equal(t, []string{"ada"}, departed)
	assert.Zero(t, h.village.PendingDepartures())

	// bram's failed start attempt throttles it before it can adopt.
	h.run(400)
	assert.Equal(t, "bram", wolf.OwnerID)
	require.Len(t, h.tamed, 1)
	assert.True(t, h.tamed[0].Abandoned)
	assert.Equal(t, []string{"ada"}, departed, "a departure applies once")
}

func TestVillage_ScheduleDepartureUnknownVillager(t *testing.T) {
	h := newHarness(t)
	assert.Error(t, h.village.ScheduleDeparture("nobody", 1))
}

func TestVillage_RemoveVillagerCancelsScheduledDeparture(t *testing.T) {
	h := newHarness(t)
	h.addVillager(t, "ada", world.Pos{})
	require.NoError(t, h.village.ScheduleDeparture("ada", 5))
	require.NoError(t, h.village.RemoveVillager("ada"))
	assert.Zero(t, h.village.PendingDepartures())

	h.run(10)
	assert.Zero(t, h.logs.FilterMessage("scheduled departure").Len())
}

func TestVillage_ShutdownRestoresMainHand(t *testing.T) {
	h := newHarness(t)
	v := h.addVillager(t, "ada", world.Pos{}, gameserver.ItemSpec{Item: "bone", Quantity: 2})
	h.spawn(t, "wolf-1", "wolf", world.Pos{X: 8})

	h.run(2)
	require.Equal(t, "bone", v.MainHand().ItemDefID)
	require.Equal(t, npc.TaskTaming, v.Task().Kind)

	h.village.Shutdown()
	assert.Equal(t, "hoe", v.MainHand().ItemDefID)
	assert.Equal(t, npc.TaskNone, v.Task().Kind)
}

func TestVillage_ScriptViews(t *testing.T) {
	h := newHarness(t)
	h.addVillager(t, "ada", world.Pos{})
	wolf := h.spawn(t, "wolf-1", "wolf", world.Pos{X: 5})
	wolf.TameBy("ada")
	wolf.Health = 4

	vi := h.village.VillagerInfo("ada")
	require.NotNil(t, vi)
	assert.Equal(t, 1, vi.Pets)
	assert.Equal(t, string(brain.ActivityIdle), vi.Activity)

	ai := h.village.AnimalInfo("wolf-1")
	require.NotNil(t, ai)
	assert.Equal(t, "wolf", ai.Species)
	assert.Equal(t, 4, ai.Health)
	assert.Equal(t, "ada", ai.OwnerID)

	assert.Nil(t, h.village.VillagerInfo("nobody"))
	assert.Nil(t, h.village.AnimalInfo("nothing"))
}

func TestVillage_DuplicateVillagerRejected(t *testing.T) {
	h := newHarness(t)
	h.addVillager(t, "ada", world.Pos{})
	bs, err := h.factory.Behaviors()
	require.NoError(t, err)
	assert.Error(t, h.village.AddVillager(npc.NewVillager("ada", "Ada", world.Pos{}, 4), bs...))
}

func TestVillage_WalkRequestDroppedOnArrival(t *testing.T) {
	h := newHarness(t)
	v := npc.NewVillager("walker", "Walker", world.Pos{}, 1)
	require.NoError(t, h.village.AddVillager(v))
	v.Memory().Set(brain.WalkTarget, brain.Walk{Target: brain.Target{Pos: world.Pos{X: 2, Z: 2}}, Speed: 1})

	h.run(1)
	assert.Equal(t, world.Pos{X: 1, Z: 1}, v.Pos)
	assert.True(t, v.Memory().Has(brain.WalkTarget))

	h.run(1)
	assert.Equal(t, world.Pos{X: 2, Z: 2}, v.Pos)
	assert.False(t, v.Memory().Has(brain.WalkTarget))
}
