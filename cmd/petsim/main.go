// Package main provides the village simulation binary: villagers tame and
// feed pets under a fixed-cadence tick loop, with optional PostgreSQL
// persistence of villager presence and pet ownership.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/petcare/internal/config"
	"github.com/cory-johannsen/petcare/internal/game/dice"
	"github.com/cory-johannsen/petcare/internal/game/event"
	"github.com/cory-johannsen/petcare/internal/game/npc"
	"github.com/cory-johannsen/petcare/internal/game/petcare"
	"github.com/cory-johannsen/petcare/internal/gameserver"
	"github.com/cory-johannsen/petcare/internal/observability"
	"github.com/cory-johannsen/petcare/internal/scripting"
	"github.com/cory-johannsen/petcare/internal/server"
	"github.com/cory-johannsen/petcare/internal/storage/postgres"
)

const villageID = "riverside"

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	scenarioPath := flag.String("scenario", "", "scenario file; overrides simulation.scenario")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *scenarioPath != "" {
		cfg.Simulation.Scenario = *scenarioPath
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	var src dice.Source
	if cfg.Simulation.Seed != 0 {
		src = dice.NewSeededSource(cfg.Simulation.Seed)
	} else {
		src = dice.NewCryptoSource()
	}
	roller := dice.NewLoggedRoller(src, logger)

	logger.Info("starting village simulation",
		zap.Duration("tick_interval", cfg.Simulation.TickInterval),
		zap.Uint64("seed", cfg.Simulation.Seed),
		zap.Bool("database", cfg.Database.Enabled),
	)

	// Load content and scenario
	contentStart := time.Now()
	content, err := gameserver.LoadContent(cfg.Simulation.ContentDir)
	if err != nil {
		logger.Fatal("loading content", zap.Error(err))
	}
	scenario, err := gameserver.LoadScenario(cfg.Simulation.Scenario)
	if err != nil {
		logger.Fatal("loading scenario", zap.Error(err))
	}
	logger.Info("content loaded",
		zap.Strings("species", content.SpeciesIDs()),
		zap.Int("items", len(content.Items.AllItems())),
		zap.String("scenario", scenario.Name),
		zap.Duration("elapsed", time.Since(contentStart)),
	)

	tracker := npc.NewTracker()
	bus := event.NewBus(logger)
	clock := gameserver.NewGameClock(int32(cfg.Simulation.StartHour), int64(cfg.Simulation.TicksPerHour))
	village := gameserver.NewVillage(villageID, npc.NewManager(), tracker, clock, cfg.Simulation.PerceptionRadius, logger)

	// Connect to PostgreSQL for presence and ownership persistence
	var (
		pool      *postgres.Pool
		villagers *postgres.VillagerRepository
		pets      *postgres.PetRepository
		journal   *postgres.Journal
	)
	if cfg.Database.Enabled {
		dbStart := time.Now()
		pool, err = postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		defer pool.Close()
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Duration("elapsed", time.Since(dbStart)),
		)
		if err := pool.Health(ctx, 5*time.Second); err != nil {
			logger.Fatal("database not ready; run cmd/migrate up", zap.Error(err))
		}
		villagers = postgres.NewVillagerRepository(pool.DB())
		pets = postgres.NewPetRepository(pool.DB())
		n, err := villagers.SeedTracker(ctx, tracker)
		if err != nil {
			logger.Fatal("loading villager presence", zap.Error(err))
		}
		logger.Info("villager presence loaded", zap.Int("villagers", n))
		journal = postgres.NewJournal(pets, villagers, cfg.Database.JournalBuffer, logger)
		journal.Subscribe(bus)
	}

	// Initialise scripting engine
	if cfg.Scripting.Dir != "" {
		scriptMgr := scripting.NewManager(roller, logger)
		defer scriptMgr.Close()
		if err := scriptMgr.LoadGlobal(cfg.Scripting.Dir, cfg.Scripting.InstructionLimit); err != nil {
			logger.Fatal("loading scripts", zap.String("dir", cfg.Scripting.Dir), zap.Error(err))
		}
		scriptMgr.GetVillager = village.VillagerInfo
		scriptMgr.GetAnimal = village.AnimalInfo
		scripting.NewTameVeto(scriptMgr, village.ID(), logger).Subscribe(bus)
		logger.Info("scripting engine initialized",
			zap.String("dir", cfg.Scripting.Dir),
			zap.String("hook", scripting.TameHook),
		)
	}

	factory, err := gameserver.NewPetCareFactory(cfg.PetCare, content, tracker, petcare.Deps{
		Items:   content.Items,
		Roller:  roller,
		Events:  bus,
		Effects: gameserver.NewLogEffects(logger),
		Logger:  logger,
	})
	if err != nil {
		logger.Fatal("building pet care behaviors", zap.Error(err))
	}
	if err := scenario.Populate(village, content, factory.Behaviors); err != nil {
		logger.Fatal("populating village", zap.Error(err))
	}

	if villagers != nil {
		if err := persistPopulation(ctx, village, tracker, villagers, pets, logger); err != nil {
			logger.Fatal("syncing population", zap.Error(err))
		}
		village.OnDeparture(func(id string) { journal.EnqueueDeparture(id) })
	}

	ticker := gameserver.NewTickManager(cfg.Simulation.TickInterval, cfg.Simulation.MaxTicks, logger)
	ticker.RegisterTick(village.ID(), village.Step)

	// Wire lifecycle
	lifecycle := server.NewLifecycle(logger)

	if pool != nil {
		lifecycle.Add("postgres", &server.FuncService{
			StartFn: func(ctx context.Context) error {
				t := time.NewTicker(30 * time.Second)
				defer t.Stop()
				for {
					select {
					case <-ctx.Done():
						return nil
					case <-t.C:
						if err := pool.Health(ctx, 5*time.Second); err != nil {
							logger.Warn("database health check failed", zap.Error(err))
							continue
						}
						pool.LogStats(ctx, logger)
					}
				}
			},
		})
		// Run returns once the simulation closes the journal.
		lifecycle.Add("journal", &server.FuncService{StartFn: journal.Run})
	}

	lifecycle.Add("simulation", &server.FuncService{
		StartFn: func(ctx context.Context) error {
			err := ticker.Start(ctx)
			village.Shutdown()
			if journal != nil {
				journal.Close()
			}
			return err
		},
		StopFn: ticker.Stop,
	})

	logger.Info("village simulation initialized",
		zap.Duration("startup", time.Since(start)),
		zap.Int("villagers", len(village.NPCs().Villagers())),
		zap.Int("animals", len(village.NPCs().Animals())),
		zap.Int("departures", village.PendingDepartures()),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("simulation error", zap.Error(err))
	}

	for _, v := range village.NPCs().Villagers() {
		logger.Info("villager summary",
			zap.String("villager_id", v.ID),
			zap.String("name", v.Name),
			zap.Int("pets", len(village.PetsOf(v.ID))),
		)
	}
	logger.Info("simulation finished", zap.Int64("ticks", ticker.Ticks()))
}

// persistPopulation records the scenario's villagers and restores persisted
// owners onto animals that are present in the village.
func persistPopulation(ctx context.Context, village *gameserver.Village, tracker *npc.Tracker, villagers *postgres.VillagerRepository, pets *postgres.PetRepository, logger *zap.Logger) error {
	for _, v := range village.NPCs().Villagers() {
		if err := villagers.Upsert(ctx, npc.TrackedVillager{ID: v.ID, Name: v.Name}); err != nil {
			return err
		}
	}
	owned, err := pets.LoadOwnerships(ctx)
	if err != nil {
		return err
	}
	restored := 0
	for _, o := range owned {
		a, ok := village.NPCs().Animal(o.AnimalID)
		if !ok {
			continue
		}
		a.TameBy(o.VillagerID)
		restored++
	}
	logger.Info("population synced",
		zap.Int("tracked", len(tracker.Snapshot())),
		zap.Int("ownerships_restored", restored),
	)
	return nil
}
