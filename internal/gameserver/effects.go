package gameserver

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/petcare/internal/game/npc"
	"github.com/cory-johannsen/petcare/internal/game/petcare"
)

// LogEffects is the pet-care effect sink of a headless host: every client
// visible effect becomes a log entry.
type LogEffects struct {
	logger *zap.Logger
}

// NewLogEffects returns a LogEffects writing to logger.
//
// Precondition: logger must be non-nil.
func NewLogEffects(logger *zap.Logger) *LogEffects {
	return &LogEffects{logger: logger}
}

// BroadcastEntityEvent implements petcare.Effects.
func (e *LogEffects) BroadcastEntityEvent(entityID string, ev petcare.EntityEvent) {
	e.logger.Debug("entity event",
		zap.String("entity_id", entityID),
		zap.Uint8("event", uint8(ev)),
	)
}

// PlaySound implements petcare.Effects.
func (e *LogEffects) PlaySound(entityID string, sound petcare.Sound) {
	e.logger.Debug("sound",
		zap.String("entity_id", entityID),
		zap.String("sound", string(sound)),
	)
}

// Healed implements petcare.Effects.
func (e *LogEffects) Healed(a *npc.Animal, amount int, reason petcare.RegainReason) {
	e.logger.Info("pet healed",
		zap.String("animal_id", a.ID),
		zap.String("species", a.Template.ID),
		zap.Int("amount", amount),
		zap.Int("health", a.Health),
		zap.Int("max_health", a.MaxHealth),
		zap.String("state", a.HealthDescription()),
		zap.String("reason", string(reason)),
	)
}
