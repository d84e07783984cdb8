package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/and161185/lovary/internal/errs"
	"github.com/and161185/lovary/internal/model"
	"github.com/jackc/pgx/v5"
)

// MonthlyPhotoRepo implements MonthlyPhotoRepository using PostgreSQL.
type MonthlyPhotoRepo struct{ db *DB }

// NewMonthlyPhotoRepo constructs a monthly photo repository.
func NewMonthlyPhotoRepo(db *DB) *MonthlyPhotoRepo { return &MonthlyPhotoRepo{db: db} }

const monthlyPhotoColumns = `id, couple_id, year, month, url, storage_key, created_by, created_at`

func scanMonthlyPhoto(row pgx.Row) (*model.MonthlyPhoto, error) {
	var (
		p     model.MonthlyPhoto
		month int
	)
	if err := row.Scan(&p.ID, &p.CoupleID, &p.Year, &month, &p.URL, &p.StorageKey, &p.CreatedBy, &p.CreatedAt); err != nil {
		return nil, noRows(err)
	}
	p.Month = time.Month(month)
	return &p, nil
}

// Get returns the couple's photo for the month.
func (r *MonthlyPhotoRepo) Get(ctx context.Context, coupleID string, year int, month time.Month) (*model.MonthlyPhoto, error) {
	q := `SELECT ` + monthlyPhotoColumns + ` FROM monthly_photos WHERE couple_id=$1 AND year=$2 AND month=$3`
	return scanMonthlyPhoto(r.db.Pool.QueryRow(ctx, q, coupleID, year, int(month)))
}

// Replace deletes the current row for the month (returning it) and inserts p.
func (r *MonthlyPhotoRepo) Replace(ctx context.Context, p *model.MonthlyPhoto) (prev *model.MonthlyPhoto, err error) {
	err = r.db.withTx(ctx, func(tx pgx.Tx) error {
		del := `DELETE FROM monthly_photos WHERE couple_id=$1 AND year=$2 AND month=$3 RETURNING ` + monthlyPhotoColumns
		old, err := scanMonthlyPhoto(tx.QueryRow(ctx, del, p.CoupleID, p.Year, int(p.Month)))
		switch {
		case err == nil:
			prev = old
		case errors.Is(err, errs.ErrNotFound):
		default:
			return err
		}

		const ins = `
INSERT INTO monthly_photos (id, couple_id, year, month, url, storage_key, created_by, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
		_, err = tx.Exec(ctx, ins, p.ID, p.CoupleID, p.Year, int(p.Month), p.URL, p.StorageKey, p.CreatedBy, p.CreatedAt)
		return err
	})
	if err != nil {
		return nil, err
	}
	return prev, nil
}
