package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Ownership is the persisted record of a villager owning a pet.
type Ownership struct {
	AnimalID   string
	Species    string
	VillagerID string
	// Adopted is true when the pet was taken over from a vanished owner.
	Adopted bool
	TamedAt time.Time
}

// PetRepository persists pet ownership records.
type PetRepository struct {
	db *pgxpool.Pool
}

// NewPetRepository creates a PetRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewPetRepository(db *pgxpool.Pool) *PetRepository {
	return &PetRepository{db: db}
}

// RecordTame stores o, replacing any previous owner of the same animal.
//
// Precondition: o.AnimalID and o.VillagerID must be non-empty.
// Postcondition: Exactly one row exists for o.AnimalID.
func (r *PetRepository) RecordTame(ctx context.Context, o Ownership) error {
	if o.TamedAt.IsZero() {
		o.TamedAt = time.Now()
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO pet_ownerships (animal_id, species, villager_id, adopted, tamed_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (animal_id) DO UPDATE
		SET species = EXCLUDED.species, villager_id = EXCLUDED.villager_id,
		    adopted = EXCLUDED.adopted, tamed_at = EXCLUDED.tamed_at`,
		o.AnimalID, o.Species, o.VillagerID, o.Adopted, o.TamedAt,
	)
	if err != nil {
		return fmt.Errorf("recording ownership of %s: %w", o.AnimalID, err)
	}
	return nil
}

// LoadOwnerships returns every ownership record ordered by animal ID.
//
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *PetRepository) LoadOwnerships(ctx context.Context) ([]Ownership, error) {
	rows, err := r.db.Query(ctx, `
		SELECT animal_id, species, villager_id, adopted, tamed_at
		FROM pet_ownerships ORDER BY animal_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing ownerships: %w", err)
	}
	defer rows.Close()

	out := make([]Ownership, 0)
	for rows.Next() {
		var o Ownership
		if err := rows.Scan(&o.AnimalID, &o.Species, &o.VillagerID, &o.Adopted, &o.TamedAt); err != nil {
			return nil, fmt.Errorf("scanning ownership row: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// CountByVillager returns how many pets villagerID owns.
func (r *PetRepository) CountByVillager(ctx context.Context, villagerID string) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM pet_ownerships WHERE villager_id = $1`, villagerID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting pets of %s: %w", villagerID, err)
	}
	return n, nil
}
