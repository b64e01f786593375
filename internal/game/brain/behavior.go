package brain

import (
	"fmt"

	"go.uber.org/zap"
)

// Behavior is the lifecycle a tick-driven behavior exposes to the host.
//
// The host calls CanStart while the behavior is stopped, Start once it agrees,
// then Tick every following tick while CanStillUse holds and TimedOut does not,
// and finally Stop. Calls for one actor are strictly sequential.
type Behavior[A any] interface {
	Name() string
	CanStart(actor A) bool
	Start(actor A)
	Tick(actor A)
	CanStillUse(actor A) bool
	Stop(actor A)
	TimedOut(gameTime int64) bool
}

// Status is a Runner's lifecycle state.
type Status int

const (
	StatusStopped Status = iota
	StatusRunning
)

// String returns "stopped" or "running".
func (s Status) String() string {
	if s == StatusRunning {
		return "running"
	}
	return "stopped"
}

// Runner drives one Behavior for one actor.
//
// Invariant: Start is called only from StatusStopped and Stop only from
// StatusRunning.
type Runner[A any] struct {
	behavior Behavior[A]
	status   Status
}

// NewRunner wraps b in a stopped Runner.
//
// Precondition: b must not be nil.
func NewRunner[A any](b Behavior[A]) *Runner[A] {
	if b == nil {
		panic("brain.NewRunner: behavior must not be nil")
	}
	return &Runner[A]{behavior: b}
}

// Status returns the current lifecycle state.
func (r *Runner[A]) Status() Status {
	return r.status
}

// Behavior returns the wrapped behavior.
func (r *Runner[A]) Behavior() Behavior[A] {
	return r.behavior
}

// Update advances the runner by one tick.
//
// Postcondition: a stopped runner either stays stopped or is started; a running
// runner either ticks or is stopped. Start and the first Tick never share a tick.
func (r *Runner[A]) Update(actor A, gameTime int64) {
	switch r.status {
	case StatusStopped:
		if r.behavior.CanStart(actor) {
			r.status = StatusRunning
			r.behavior.Start(actor)
		}
	case StatusRunning:
		if r.behavior.TimedOut(gameTime) || !r.behavior.CanStillUse(actor) {
			r.Preempt(actor)
			return
		}
		r.behavior.Tick(actor)
	}
}

// Preempt stops a running behavior. It is a no-op when already stopped.
func (r *Runner[A]) Preempt(actor A) {
	if r.status != StatusRunning {
		return
	}
	r.status = StatusStopped
	r.behavior.Stop(actor)
}

// Schedule is an actor's dispatch table: an ordered set of runners updated
// once per tick.
//
// Invariant: behavior names are unique within a Schedule.
type Schedule[A any] struct {
	runners []*Runner[A]
	names   map[string]struct{}
	logger  *zap.Logger
}

// NewSchedule returns an empty Schedule.
//
// Precondition: logger must be non-nil.
func NewSchedule[A any](logger *zap.Logger) *Schedule[A] {
	return &Schedule[A]{names: make(map[string]struct{}), logger: logger}
}

// Register appends b to the schedule.
//
// Postcondition: returns error on behavior name collision.
func (s *Schedule[A]) Register(b Behavior[A]) error {
	if _, exists := s.names[b.Name()]; exists {
		return fmt.Errorf("brain.Schedule: behavior %q already registered", b.Name())
	}
	s.names[b.Name()] = struct{}{}
	s.runners = append(s.runners, NewRunner(b))
	return nil
}

// Runners returns the registered runners in registration order.
func (s *Schedule[A]) Runners() []*Runner[A] {
	out := make([]*Runner[A], len(s.runners))
	copy(out, s.runners)
	return out
}

// Update advances every runner by one tick in registration order.
func (s *Schedule[A]) Update(actor A, gameTime int64) {
	for _, r := range s.runners {
		before := r.Status()
		r.Update(actor, gameTime)
		if after := r.Status(); after != before {
			s.logger.Debug("behavior status changed",
				zap.String("behavior", r.behavior.Name()),
				zap.Stringer("from", before),
				zap.Stringer("to", after),
				zap.Int64("game_time", gameTime),
			)
		}
	}
}

// StopAll preempts every running behavior.
func (s *Schedule[A]) StopAll(actor A) {
	for _, r := range s.runners {
		r.Preempt(actor)
	}
}
