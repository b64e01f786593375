package event_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/cory-johannsen/petcare/internal/game/event"
)

func TestBus_PriorityOrder(t *testing.T) {
	bus := event.NewBus(zap.NewNop())
	var order []string
	bus.Subscribe(event.NamePetTamed, event.PriorityMonitor, false, func(event.Event) { order = append(order, "monitor") })
	bus.Subscribe(event.NamePetTamed, event.PriorityHigh, false, func(event.Event) { order = append(order, "high") })
	bus.Subscribe(event.NamePetTamed, event.PriorityLowest, false, func(event.Event) { order = append(order, "lowest") })
	bus.Subscribe(event.NamePetTamed, event.PriorityHigh, false, func(event.Event) { order = append(order, "high2") })

	bus.Publish(&event.PetTamedEvent{AnimalID: "a"})
	assert.Equal(t, []string{"lowest", "high", "high2", "monitor"}, order)
}

func TestBus_CallReportsCancellation(t *testing.T) {
	bus := event.NewBus(zap.NewNop())
	assert.True(t, bus.Call(&event.TameEvent{}), "no handlers means allowed")

	bus.Subscribe(event.NameVillagerTame, event.PriorityNormal, false, func(e event.Event) {
		e.(event.Cancellable).SetCancelled(true)
	})
	assert.False(t, bus.Call(&event.TameEvent{}))
}

func TestBus_IgnoreCancelledSkipsHandler(t *testing.T) {
	bus := event.NewBus(zap.NewNop())
	bus.Subscribe(event.NameVillagerTame, event.PriorityLow, false, func(e event.Event) {
		e.(event.Cancellable).SetCancelled(true)
	})
	called := false
	bus.Subscribe(event.NameVillagerTame, event.PriorityHigh, true, func(event.Event) { called = true })
	bus.Publish(&event.TameEvent{})
	assert.False(t, called)
}

func TestBus_UncancelByLaterHandler(t *testing.T) {
	bus := event.NewBus(zap.NewNop())
	bus.Subscribe(event.NameVillagerTame, event.PriorityLow, false, func(e event.Event) {
		e.(event.Cancellable).SetCancelled(true)
	})
	bus.Subscribe(event.NameVillagerTame, event.PriorityHighest, false, func(e event.Event) {
		e.(event.Cancellable).SetCancelled(false)
	})
	assert.True(t, bus.Call(&event.TameEvent{}))
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := event.NewBus(zap.NewNop())
	n := 0
	unsub := bus.Subscribe(event.NamePetTamed, event.PriorityNormal, false, func(event.Event) { n++ })
	bus.Publish(&event.PetTamedEvent{})
	unsub()
	unsub()
	bus.Publish(&event.PetTamedEvent{})
	assert.Equal(t, 1, n)
}

func TestBus_PanickingHandlerDoesNotStopDelivery(t *testing.T) {
	bus := event.NewBus(zap.NewNop())
	bus.Subscribe(event.NamePetTamed, event.PriorityLow, false, func(event.Event) { panic("boom") })
	reached := false
	bus.Subscribe(event.NamePetTamed, event.PriorityHigh, false, func(event.Event) { reached = true })
	assert.NotPanics(t, func() { bus.Publish(&event.PetTamedEvent{}) })
	assert.True(t, reached)
}
