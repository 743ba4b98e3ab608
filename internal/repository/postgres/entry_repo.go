package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/and161185/sleep-keeper/internal/errs"
	"github.com/and161185/sleep-keeper/internal/model"
)

const entryColumns = `id, user_id, bedtime, wake_time, duration, note, quality, created_at, updated_at`

// entryRow mirrors a sleep_entries row.
type entryRow struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Bedtime   time.Time
	WakeTime  time.Time
	Duration  float64
	Note      *string
	Quality   *int
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (r *entryRow) dest() []any {
	return []any{&r.ID, &r.UserID, &r.Bedtime, &r.WakeTime, &r.Duration, &r.Note, &r.Quality, &r.CreatedAt, &r.UpdatedAt}
}

func (r entryRow) toModel() model.SleepEntry {
	return model.SleepEntry{
		ID:        r.ID,
		UserID:    r.UserID,
		Bedtime:   r.Bedtime,
		WakeTime:  r.WakeTime,
		Duration:  r.Duration,
		Note:      r.Note,
		Quality:   r.Quality,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// EntryRepo implements EntryRepository using PostgreSQL.
type EntryRepo struct{ db *DB }

// NewEntryRepo constructs an entry repository.
func NewEntryRepo(db *DB) *EntryRepo { return &EntryRepo{db: db} }

// List returns all entries of the user, newest bedtime first.
func (r *EntryRepo) List(ctx context.Context, userID uuid.UUID) ([]model.SleepEntry, error) {
	const q = `
SELECT ` + entryColumns + `
FROM sleep_entries
WHERE user_id=$1
ORDER BY bedtime DESC`
	rows, err := r.db.Pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.SleepEntry{}
	for rows.Next() {
		var row entryRow
		if err = rows.Scan(row.dest()...); err != nil {
			return nil, err
		}
		out = append(out, row.toModel())
	}
	return out, rows.Err()
}

// Insert stores a new entry.
func (r *EntryRepo) Insert(ctx context.Context, e *model.SleepEntry) (*model.SleepEntry, error) {
	const q = `
INSERT INTO sleep_entries (` + entryColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
RETURNING ` + entryColumns
	var row entryRow
	err := r.db.Pool.QueryRow(ctx, q,
		e.ID, e.UserID, e.Bedtime, e.WakeTime, e.Duration, e.Note, e.Quality, e.CreatedAt, e.UpdatedAt,
	).Scan(row.dest()...)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, errs.ErrAlreadyExists
		}
		return nil, err
	}
	out := row.toModel()
	return &out, nil
}

// Replace overwrites the editable columns of an existing entry.
func (r *EntryRepo) Replace(ctx context.Context, e *model.SleepEntry) (*model.SleepEntry, error) {
	const q = `
UPDATE sleep_entries
SET bedtime=$3, wake_time=$4, duration=$5, note=$6, quality=$7, updated_at=$8
WHERE id=$1 AND user_id=$2
RETURNING ` + entryColumns
	var row entryRow
	err := r.db.Pool.QueryRow(ctx, q,
		e.ID, e.UserID, e.Bedtime, e.WakeTime, e.Duration, e.Note, e.Quality, e.UpdatedAt,
	).Scan(row.dest()...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	out := row.toModel()
	return &out, nil
}

// Delete removes a single entry of the user.
func (r *EntryRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	const q = `DELETE FROM sleep_entries WHERE id=$1 AND user_id=$2`
	tag, err := r.db.Pool.Exec(ctx, q, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// DeleteAll removes every entry of the user.
func (r *EntryRepo) DeleteAll(ctx context.Context, userID uuid.UUID) error {
	const q = `DELETE FROM sleep_entries WHERE user_id=$1`
	_, err := r.db.Pool.Exec(ctx, q, userID)
	return err
}
