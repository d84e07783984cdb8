package postgres

import (
	"context"
	"strings"

	"github.com/and161185/lovary/internal/errs"
	"github.com/and161185/lovary/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
)

// UserRepo implements UserRepository using PostgreSQL.
type UserRepo struct{ db *DB }

// NewUserRepo constructs a user repository.
func NewUserRepo(db *DB) *UserRepo { return &UserRepo{db: db} }

const userColumns = `id, email, name, pwd_hash, partner_id, reminder_time, push_subscription, created_at`

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PwdHash, &u.PartnerID, &u.ReminderTime, &u.PushSubscription, &u.CreatedAt)
	if err != nil {
		return nil, noRows(err)
	}
	return &u, nil
}

// Create inserts a new user row.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	const q = `
INSERT INTO users (id, email, name, pwd_hash)
VALUES ($1, $2, $3, $4)`
	_, err := r.db.Pool.Exec(ctx, q, u.ID, u.Email, u.Name, u.PwdHash)
	if isUniqueViolation(err) {
		return errs.ErrAlreadyExists
	}
	return err
}

// GetByID selects a user by ID.
func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	return scanUser(r.db.Pool.QueryRow(ctx, q, id))
}

// GetByEmail selects a user by email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE email=$1`
	return scanUser(r.db.Pool.QueryRow(ctx, q, strings.ToLower(email)))
}

// GetPartnerID returns the current partner of userID.
func (r *UserRepo) GetPartnerID(ctx context.Context, userID uuid.UUID) (uuid.UUID, bool, error) {
	const q = `SELECT partner_id FROM users WHERE id=$1`
	var p uuid.NullUUID
	if err := r.db.Pool.QueryRow(ctx, q, userID).Scan(&p); err != nil {
		return uuid.Nil, false, noRows(err)
	}
	return p.UUID, p.Valid, nil
}

// UpdateProfile sets the non-nil fields of upd.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uuid.UUID, upd model.ProfileUpdate) error {
	const q = `
UPDATE users
SET name = COALESCE($2, name),
    reminder_time = COALESCE($3, reminder_time)
WHERE id = $1`
	tag, err := r.db.Pool.Exec(ctx, q, id, upd.Name, upd.ReminderTime)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// SearchByEmail finds other users by a case-insensitive email fragment.
func (r *UserRepo) SearchByEmail(ctx context.Context, fragment string, exclude uuid.UUID, limit int) ([]model.UserSummary, error) {
	const q = `
SELECT id, email, name
FROM users
WHERE strpos(email, lower($1)) > 0 AND id <> $2
ORDER BY email
LIMIT $3`
	rows, err := r.db.Pool.Query(ctx, q, fragment, exclude, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.UserSummary
	for rows.Next() {
		var s model.UserSummary
		if err = rows.Scan(&s.ID, &s.Email, &s.Name); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// SetPushSubscription stores the subscription JSON for the user.
func (r *UserRepo) SetPushSubscription(ctx context.Context, id uuid.UUID, sub string) error {
	const q = `UPDATE users SET push_subscription=$2 WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, id, sub)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// Delete unpairs the partner and removes the user. Entries, photos, anniversaries
// and partner requests are removed by ON DELETE CASCADE.
func (r *UserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `UPDATE users SET partner_id=NULL WHERE partner_id=$1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return errs.ErrNotFound
		}
		return nil
	})
}
