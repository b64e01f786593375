package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/petcare/internal/game/npc"
)

// ErrVillagerNotFound is returned when a villager update matches no row.
var ErrVillagerNotFound = errors.New("villager not found")

// VillagerRepository persists villager presence records. A villager row stays
// after death with alive = false so its pets can be recognised as abandoned.
type VillagerRepository struct {
	db *pgxpool.Pool
}

// NewVillagerRepository creates a VillagerRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewVillagerRepository(db *pgxpool.Pool) *VillagerRepository {
	return &VillagerRepository{db: db}
}

// Upsert records a living villager, refreshing its name if it already exists.
//
// Precondition: v.ID must be non-empty.
// Postcondition: The villager row exists with alive = true.
func (r *VillagerRepository) Upsert(ctx context.Context, v npc.TrackedVillager) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO villagers (id, name)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, alive = TRUE, died_at = NULL, updated_at = NOW()`,
		v.ID, v.Name,
	)
	if err != nil {
		return fmt.Errorf("upserting villager %s: %w", v.ID, err)
	}
	return nil
}

// MarkDead flags a villager as no longer present.
//
// Postcondition: Returns nil on success, ErrVillagerNotFound if no row matched.
func (r *VillagerRepository) MarkDead(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE villagers SET alive = FALSE, died_at = NOW(), updated_at = NOW()
		WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("marking villager %s dead: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrVillagerNotFound
	}
	return nil
}

// LoadTracked returns every living villager ordered by ID.
//
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *VillagerRepository) LoadTracked(ctx context.Context) ([]npc.TrackedVillager, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name FROM villagers WHERE alive ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing villagers: %w", err)
	}
	defer rows.Close()

	out := make([]npc.TrackedVillager, 0)
	for rows.Next() {
		var v npc.TrackedVillager
		if err := rows.Scan(&v.ID, &v.Name); err != nil {
			return nil, fmt.Errorf("scanning villager row: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// SeedTracker loads every living villager into t.
//
// Postcondition: Returns the number of villagers tracked.
func (r *VillagerRepository) SeedTracker(ctx context.Context, t *npc.Tracker) (int, error) {
	recs, err := r.LoadTracked(ctx)
	if err != nil {
		return 0, err
	}
	for _, rec := range recs {
		t.Track(rec)
	}
	return len(recs), nil
}
