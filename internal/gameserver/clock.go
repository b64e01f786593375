package gameserver

import (
	"fmt"
	"sync"

	"github.com/cory-johannsen/petcare/internal/game/brain"
)

// TimePeriod is a named phase of the village day.
type TimePeriod string

const (
	PeriodNight     TimePeriod = "Night"
	PeriodDawn      TimePeriod = "Dawn"
	PeriodMorning   TimePeriod = "Morning"
	PeriodAfternoon TimePeriod = "Afternoon"
	PeriodEvening   TimePeriod = "Evening"
)

// GameHour is a game-clock hour in [0, 23].
type GameHour int32

// Period returns the named time period for this hour.
//
// Precondition: h is in [0, 23].
// Postcondition: Returns one of the five TimePeriod constants.
func (h GameHour) Period() TimePeriod {
	switch {
	case h >= 5 && h <= 6:
		return PeriodDawn
	case h >= 7 && h <= 11:
		return PeriodMorning
	case h >= 12 && h <= 16:
		return PeriodAfternoon
	case h >= 17 && h <= 20:
		return PeriodEvening
	default: // 21-4
		return PeriodNight
	}
}

// Activity returns the villager schedule phase for this hour: rest overnight,
// work through the middle of the day, a meeting in the late afternoon, and
// idle time around meals.
//
// Precondition: h is in [0, 23].
func (h GameHour) Activity() brain.Activity {
	switch {
	case h <= 5, h >= 21:
		return brain.ActivityRest
	case h <= 8:
		return brain.ActivityIdle
	case h <= 14:
		return brain.ActivityWork
	case h <= 16:
		return brain.ActivityMeet
	default: // 17-20
		return brain.ActivityIdle
	}
}

// String returns the hour in "HH:00" format.
func (h GameHour) String() string {
	return fmt.Sprintf("%02d:00", int(h))
}

// GameClock converts simulation ticks into game hours and broadcasts each new
// hour to subscribers.
type GameClock struct {
	ticksPerHour int64

	mu          sync.Mutex
	hour        int32
	elapsed     int64
	subscribers map[chan<- GameHour]struct{}
}

// NewGameClock creates a GameClock at startHour that advances one hour every
// ticksPerHour calls to Advance.
//
// Precondition: startHour in [0, 23]; ticksPerHour > 0.
// Postcondition: Returns a non-nil *GameClock.
func NewGameClock(startHour int32, ticksPerHour int64) *GameClock {
	if ticksPerHour <= 0 {
		panic("gameserver.NewGameClock: ticksPerHour must be > 0")
	}
	return &GameClock{
		hour:         startHour % 24,
		ticksPerHour: ticksPerHour,
		subscribers:  make(map[chan<- GameHour]struct{}),
	}
}

// CurrentHour returns the current game hour.
func (c *GameClock) CurrentHour() GameHour {
	c.mu.Lock()
	defer c.mu.Unlock()
	return GameHour(c.hour)
}

// Subscribe registers ch to receive a GameHour value on each hour change.
// If ch is full, the hour is dropped for that subscriber (non-blocking).
//
// Precondition: ch must not be nil.
func (c *GameClock) Subscribe(ch chan<- GameHour) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscribers[ch] = struct{}{}
}

// Unsubscribe removes ch from the subscriber list.
func (c *GameClock) Unsubscribe(ch chan<- GameHour) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.subscribers, ch)
}

// Advance counts one tick.
//
// Postcondition: Returns the current hour and whether this tick started it.
func (c *GameClock) Advance() (GameHour, bool) {
	c.mu.Lock()
	c.elapsed++
	if c.elapsed < c.ticksPerHour {
		h := GameHour(c.hour)
		c.mu.Unlock()
		return h, false
	}
	c.elapsed = 0
	c.hour = (c.hour + 1) % 24
	h := GameHour(c.hour)
	subs := make([]chan<- GameHour, 0, len(c.subscribers))
	for ch := range c.subscribers {
		subs = append(subs, ch)
	}
	c.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- h:
		default:
		}
	}
	return h, true
}
