package postgres

import (
	"context"
	"time"

	"github.com/and161185/lovary/internal/errs"
	"github.com/and161185/lovary/internal/model"
	"github.com/gofrs/uuid/v5"
)

// AnniversaryRepo implements AnniversaryRepository using PostgreSQL.
type AnniversaryRepo struct{ db *DB }

// NewAnniversaryRepo constructs an anniversary repository.
func NewAnniversaryRepo(db *DB) *AnniversaryRepo { return &AnniversaryRepo{db: db} }

// Upsert merges on (couple_id, anniv_date): an existing date only gets renamed.
func (r *AnniversaryRepo) Upsert(ctx context.Context, a *model.Anniversary) (*model.Anniversary, error) {
	const q = `
INSERT INTO anniversaries (id, couple_id, user_id, partner_id, anniv_date, name)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (couple_id, anniv_date) DO UPDATE SET name = EXCLUDED.name
RETURNING id, couple_id, user_id, partner_id, anniv_date, name`
	var (
		out  model.Anniversary
		date time.Time
	)
	err := r.db.Pool.QueryRow(ctx, q, a.ID, a.CoupleID, a.UserID, a.PartnerID, a.Date.Time(), a.Name).
		Scan(&out.ID, &out.CoupleID, &out.UserID, &out.PartnerID, &date, &out.Name)
	if err != nil {
		return nil, err
	}
	out.Date = model.DayOf(date)
	return &out, nil
}

// ListByCouple returns the couple's anniversaries ordered by date.
func (r *AnniversaryRepo) ListByCouple(ctx context.Context, coupleID string) ([]model.Anniversary, error) {
	const q = `
SELECT id, couple_id, user_id, partner_id, anniv_date, name
FROM anniversaries
WHERE couple_id=$1
ORDER BY anniv_date ASC`
	rows, err := r.db.Pool.Query(ctx, q, coupleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Anniversary
	for rows.Next() {
		var (
			a    model.Anniversary
			date time.Time
		)
		if err = rows.Scan(&a.ID, &a.CoupleID, &a.UserID, &a.PartnerID, &date, &a.Name); err != nil {
			return nil, err
		}
		a.Date = model.DayOf(date)
		out = append(out, a)
	}
	return out, rows.Err()
}

// Delete removes an anniversary if userID is one of its two parties.
func (r *AnniversaryRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	const q = `DELETE FROM anniversaries WHERE id=$1 AND (user_id=$2 OR partner_id=$2)`
	tag, err := r.db.Pool.Exec(ctx, q, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}
