package postgres

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/petcare/internal/game/event"
)

// OwnershipWriter stores a single ownership record.
type OwnershipWriter interface {
	RecordTame(ctx context.Context, o Ownership) error
}

// DepartureWriter marks a villager as gone.
type DepartureWriter interface {
	MarkDead(ctx context.Context, villagerID string) error
}

// writeTimeout bounds a single record write. Writes are not cut short by the
// cancellation of Run's context so queued records survive shutdown.
const writeTimeout = 5 * time.Second

// record is one queued write: an ownership change or a villager departure.
type record struct {
	ownership *Ownership
	departed  string
}

func (r record) fields() []zap.Field {
	if r.ownership != nil {
		return []zap.Field{
			zap.String("animal_id", r.ownership.AnimalID),
			zap.String("villager_id", r.ownership.VillagerID),
		}
	}
	return []zap.Field{zap.String("departed_villager_id", r.departed)}
}

// Journal moves ownership and departure writes off the simulation tick.
// Records are queued on a bounded channel and written by Run. A full queue
// drops the record and logs it; so does a closed journal.
//
// The producer owns shutdown: Run keeps writing until Close is called, then
// drains and returns, so every record accepted before Close is written.
type Journal struct {
	pets      OwnershipWriter
	villagers DepartureWriter
	queue     chan record
	logger    *zap.Logger
	now       func() time.Time

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

// NewJournal creates a journal with room for buffer pending records.
//
// Precondition: pets, villagers and logger must be non-nil; buffer > 0.
func NewJournal(pets OwnershipWriter, villagers DepartureWriter, buffer int, logger *zap.Logger) *Journal {
	if pets == nil || villagers == nil || logger == nil {
		panic("postgres.NewJournal: writers and logger must be non-nil")
	}
	if buffer <= 0 {
		panic("postgres.NewJournal: buffer must be > 0")
	}
	return &Journal{
		pets:      pets,
		villagers: villagers,
		queue:     make(chan record, buffer),
		logger:    logger,
		now:       time.Now,
		done:      make(chan struct{}),
	}
}

// Enqueue queues an ownership record without blocking.
//
// Postcondition: Returns false when o was dropped because the queue was full
// or the journal was closed.
func (j *Journal) Enqueue(o Ownership) bool {
	if o.TamedAt.IsZero() {
		o.TamedAt = j.now()
	}
	return j.enqueue(record{ownership: &o})
}

// EnqueueDeparture queues marking villagerID dead without blocking.
//
// Postcondition: Returns false when the record was dropped.
func (j *Journal) EnqueueDeparture(villagerID string) bool {
	return j.enqueue(record{departed: villagerID})
}

func (j *Journal) enqueue(r record) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		j.logger.Warn("journal closed, dropping record", r.fields()...)
		return false
	}
	select {
	case j.queue <- r:
		return true
	default:
		j.logger.Warn("journal full, dropping record", r.fields()...)
		return false
	}
}

// Close stops accepting records and lets Run drain and return. Idempotent.
//
// Postcondition: every later Enqueue returns false.
func (j *Journal) Close() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if !j.closed {
		j.closed = true
		close(j.done)
	}
}

// Pending returns the number of queued records.
func (j *Journal) Pending() int {
	return len(j.queue)
}

// Subscribe queues an ownership record for every PetTamedEvent on bus.
//
// Postcondition: Returns a function that removes the subscription.
func (j *Journal) Subscribe(bus *event.Bus) func() {
	return bus.Subscribe(event.NamePetTamed, event.PriorityMonitor, true, func(e event.Event) {
		te, ok := e.(*event.PetTamedEvent)
		if !ok {
			return
		}
		j.Enqueue(Ownership{
			AnimalID:   te.AnimalID,
			Species:    te.Species,
			VillagerID: te.VillagerID,
			Adopted:    te.Abandoned,
		})
	})
}

// Run writes queued records until Close is called, then drains whatever is
// still queued. Cancelling ctx does not stop Run. Write failures are logged
// and skipped.
//
// Precondition: Close must eventually be called for Run to return.
// Postcondition: Always returns nil; the queue is empty.
func (j *Journal) Run(ctx context.Context) error {
	for {
		select {
		case r := <-j.queue:
			j.write(ctx, r)
		case <-j.done:
			j.drain(ctx)
			return nil
		}
	}
}

func (j *Journal) drain(ctx context.Context) {
	for {
		select {
		case r := <-j.queue:
			j.write(ctx, r)
		default:
			return
		}
	}
}

func (j *Journal) write(ctx context.Context, r record) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()

	var err error
	if r.ownership != nil {
		err = j.pets.RecordTame(ctx, *r.ownership)
	} else {
		err = j.villagers.MarkDead(ctx, r.departed)
	}
	if err != nil {
		j.logger.Warn("writing journal record", append(r.fields(), zap.Error(err))...)
		return
	}
	if r.ownership != nil {
		j.logger.Debug("ownership recorded", append(r.fields(), zap.Bool("adopted", r.ownership.Adopted))...)
		return
	}
	j.logger.Debug("departure recorded", r.fields()...)
}
