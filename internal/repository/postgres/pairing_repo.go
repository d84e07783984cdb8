package postgres

import (
	"context"

	"github.com/and161185/lovary/internal/errs"
	"github.com/and161185/lovary/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
)

// PartnerRequestRepo implements PartnerRequestRepository using PostgreSQL.
type PartnerRequestRepo struct{ db *DB }

// NewPartnerRequestRepo constructs a partner request repository.
func NewPartnerRequestRepo(db *DB) *PartnerRequestRepo { return &PartnerRequestRepo{db: db} }

// Create inserts a pending request.
func (r *PartnerRequestRepo) Create(ctx context.Context, pr *model.PartnerRequest) error {
	const q = `
INSERT INTO partner_requests (id, requester_id, recipient_id, status, created_at)
VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.Pool.Exec(ctx, q, pr.ID, pr.RequesterID, pr.RecipientID, string(model.RequestPending), pr.CreatedAt)
	if isUniqueViolation(err) {
		return errs.ErrRequestExists
	}
	return err
}

// PendingBetween reports whether a or b has a pending request to the other.
func (r *PartnerRequestRepo) PendingBetween(ctx context.Context, a, b uuid.UUID) (bool, error) {
	const q = `
SELECT EXISTS (
  SELECT 1 FROM partner_requests
  WHERE status='pending'
    AND ((requester_id=$1 AND recipient_id=$2) OR (requester_id=$2 AND recipient_id=$1))
)`
	var ok bool
	err := r.db.Pool.QueryRow(ctx, q, a, b).Scan(&ok)
	return ok, err
}

// ListPending returns pending requests involving userID, newest first.
func (r *PartnerRequestRepo) ListPending(ctx context.Context, userID uuid.UUID) ([]model.PartnerRequest, error) {
	const q = `
SELECT pr.id, pr.requester_id, pr.recipient_id, pr.status, pr.created_at,
       rq.email, rq.name, rc.email, rc.name
FROM partner_requests pr
JOIN users rq ON rq.id = pr.requester_id
JOIN users rc ON rc.id = pr.recipient_id
WHERE pr.status='pending' AND (pr.requester_id=$1 OR pr.recipient_id=$1)
ORDER BY pr.created_at DESC`
	rows, err := r.db.Pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.PartnerRequest
	for rows.Next() {
		var (
			pr     model.PartnerRequest
			status string
		)
		if err = rows.Scan(&pr.ID, &pr.RequesterID, &pr.RecipientID, &status, &pr.CreatedAt,
			&pr.Requester.Email, &pr.Requester.Name, &pr.Recipient.Email, &pr.Recipient.Name); err != nil {
			return nil, err
		}
		pr.Status = model.RequestStatus(status)
		pr.Requester.ID = pr.RequesterID
		pr.Recipient.ID = pr.RecipientID
		out = append(out, pr)
	}
	return out, rows.Err()
}

// Accept pairs both users of a pending request addressed to recipientID.
func (r *PartnerRequestRepo) Accept(ctx context.Context, recipientID, requestID uuid.UUID) error {
	return r.db.withTx(ctx, func(tx pgx.Tx) error {
		const sel = `
SELECT requester_id FROM partner_requests
WHERE id=$1 AND recipient_id=$2 AND status='pending'
FOR UPDATE`
		var requesterID uuid.UUID
		if err := tx.QueryRow(ctx, sel, requestID, recipientID).Scan(&requesterID); err != nil {
			return noRows(err)
		}

		// Lock both accounts; either side may have paired with someone else meanwhile.
		const lock = `SELECT id, partner_id FROM users WHERE id IN ($1, $2) FOR UPDATE`
		rows, err := tx.Query(ctx, lock, recipientID, requesterID)
		if err != nil {
			return err
		}
		locked, paired := 0, false
		for rows.Next() {
			var id uuid.UUID
			var partner *uuid.UUID
			if err := rows.Scan(&id, &partner); err != nil {
				rows.Close()
				return err
			}
			locked++
			paired = paired || partner != nil
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}
		switch {
		case locked != 2:
			return errs.ErrNotFound
		case paired:
			return errs.ErrAlreadyPaired
		}

		const pair = `UPDATE users SET partner_id = CASE WHEN id=$1 THEN $2::uuid ELSE $1::uuid END WHERE id IN ($1, $2)`
		if _, err := tx.Exec(ctx, pair, recipientID, requesterID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `UPDATE partner_requests SET status='accepted' WHERE id=$1`, requestID); err != nil {
			return err
		}
		const rejectOthers = `
UPDATE partner_requests SET status='rejected'
WHERE status='pending' AND id<>$1
  AND (requester_id IN ($2, $3) OR recipient_id IN ($2, $3))`
		_, err = tx.Exec(ctx, rejectOthers, requestID, recipientID, requesterID)
		return err
	})
}

// Reject marks a pending request addressed to recipientID as rejected.
func (r *PartnerRequestRepo) Reject(ctx context.Context, recipientID, requestID uuid.UUID) error {
	const q = `UPDATE partner_requests SET status='rejected' WHERE id=$1 AND recipient_id=$2 AND status='pending'`
	tag, err := r.db.Pool.Exec(ctx, q, requestID, recipientID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// Disconnect unpairs both users and removes every request between them.
func (r *PartnerRequestRepo) Disconnect(ctx context.Context, userID, partnerID uuid.UUID) error {
	return r.db.withTx(ctx, func(tx pgx.Tx) error {
		const unpair = `UPDATE users SET partner_id=NULL WHERE id IN ($1, $2)`
		if _, err := tx.Exec(ctx, unpair, userID, partnerID); err != nil {
			return err
		}
		const drop = `
DELETE FROM partner_requests
WHERE (requester_id=$1 AND recipient_id=$2) OR (requester_id=$2 AND recipient_id=$1)`
		_, err := tx.Exec(ctx, drop, userID, partnerID)
		return err
	})
}
