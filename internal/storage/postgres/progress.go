package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/turnbattle/internal/game/person"
)

// ErrProgressNotFound is returned when no progress is stored for a person or party.
var ErrProgressNotFound = errors.New("progress not found")

// Progress is the persisted part of a person: everything else comes from
// its template.
type Progress struct {
	PersonID   string
	Level      int
	Experience int
	UpdatedAt  time.Time
}

// ProgressOf snapshots p.
func ProgressOf(p *person.Person) Progress {
	return Progress{PersonID: p.ID, Level: p.Level, Experience: p.Experience}
}

// ProgressRepository stores person progress and party purses.
type ProgressRepository struct {
	db *pgxpool.Pool
}

// NewProgressRepository creates a ProgressRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewProgressRepository(db *pgxpool.Pool) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// Load retrieves the progress of a person.
//
// Precondition: personID must be non-empty.
// Postcondition: Returns the Progress or ErrProgressNotFound.
func (r *ProgressRepository) Load(ctx context.Context, personID string) (Progress, error) {
	var p Progress
	err := r.db.QueryRow(ctx, `
		SELECT person_id, level, experience, updated_at
		FROM person_progress WHERE person_id = $1`,
		personID,
	).Scan(&p.PersonID, &p.Level, &p.Experience, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Progress{}, ErrProgressNotFound
		}
		return Progress{}, fmt.Errorf("querying progress: %w", err)
	}
	return p, nil
}

// ApplyProgress overlays the stored level and experience on p. A person with
// nothing stored keeps its template values.
//
// Precondition: p must be non-nil.
// Postcondition: Returns nil when nothing is stored; p is unchanged in that case.
func (r *ProgressRepository) ApplyProgress(ctx context.Context, p *person.Person) error {
	prog, err := r.Load(ctx, p.ID)
	if errors.Is(err, ErrProgressNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	p.Level = min(prog.Level, person.MaxLevel)
	p.Experience = prog.Experience
	return nil
}

// ApplyParty overlays the stored credits and inventory on party, then the
// stored progress of each member.
//
// Postcondition: Returns nil when nothing is stored for the party.
func (r *ProgressRepository) ApplyParty(ctx context.Context, party *person.Party) error {
	for _, m := range party.Members {
		if err := r.ApplyProgress(ctx, m); err != nil {
			return fmt.Errorf("applying progress of %q: %w", m.ID, err)
		}
	}

	var credits int
	err := r.db.QueryRow(ctx, `SELECT credits FROM parties WHERE party_id = $1`, party.ID).Scan(&credits)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("querying party: %w", err)
	}
	party.Credits = credits

	rows, err := r.db.Query(ctx, `SELECT item_id, quantity FROM party_items WHERE party_id = $1`, party.ID)
	if err != nil {
		return fmt.Errorf("querying party items: %w", err)
	}
	defer rows.Close()

	items := make(map[string]int)
	for rows.Next() {
		var id string
		var qty int
		if err := rows.Scan(&id, &qty); err != nil {
			return fmt.Errorf("scanning party item row: %w", err)
		}
		items[id] = qty
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("reading party items: %w", err)
	}
	party.SetInventory(items)
	return nil
}

// SaveVictory stores the progress of every person, the party's credits and
// its full inventory in one transaction.
//
// Precondition: partyID must be non-empty; credits >= 0; quantities >= 1.
// Postcondition: either everything is stored or nothing is.
func (r *ProgressRepository) SaveVictory(ctx context.Context, partyID string, progress []Progress, credits int, items map[string]int) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	batch := &pgx.Batch{}
	for _, p := range progress {
		batch.Queue(`
			INSERT INTO person_progress (person_id, level, experience, updated_at)
			VALUES ($1, $2, $3, NOW())
			ON CONFLICT (person_id) DO UPDATE
			SET level = EXCLUDED.level, experience = EXCLUDED.experience, updated_at = NOW()`,
			p.PersonID, p.Level, p.Experience,
		)
	}
	batch.Queue(`
		INSERT INTO parties (party_id, credits, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (party_id) DO UPDATE SET credits = EXCLUDED.credits, updated_at = NOW()`,
		partyID, credits,
	)
	batch.Queue(`DELETE FROM party_items WHERE party_id = $1`, partyID)
	for id, qty := range items {
		batch.Queue(`INSERT INTO party_items (party_id, item_id, quantity) VALUES ($1, $2, $3)`, partyID, id, qty)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("saving victory: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing victory: %w", err)
	}
	return nil
}

// SaveParty stores party's members, credits and inventory.
func (r *ProgressRepository) SaveParty(ctx context.Context, party *person.Party) error {
	progress := make([]Progress, 0, len(party.Members))
	for _, m := range party.Members {
		progress = append(progress, ProgressOf(m))
	}
	return r.SaveVictory(ctx, party.ID, progress, party.Credits, party.Inventory())
}
