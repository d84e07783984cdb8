package repository

import (
	"context"

	"github.com/and161185/lovary/internal/model"
	"github.com/gofrs/uuid/v5"
)

// PartnerRequestRepository stores the pairing workflow.
type PartnerRequestRepository interface {
	// Create inserts a pending request.
	Create(ctx context.Context, r *model.PartnerRequest) error
	// PendingBetween reports whether a pending request exists in either direction.
	PendingBetween(ctx context.Context, a, b uuid.UUID) (bool, error)
	// ListPending returns pending requests the user sent or received.
	ListPending(ctx context.Context, userID uuid.UUID) ([]model.PartnerRequest, error)
	// Accept pairs recipient and requester of a pending request and rejects
	// every other pending request of both users, in one transaction.
	Accept(ctx context.Context, recipientID, requestID uuid.UUID) error
	// Reject marks a pending request addressed to recipientID as rejected.
	Reject(ctx context.Context, recipientID, requestID uuid.UUID) error
	// Disconnect clears both partner pointers and drops requests between the two.
	Disconnect(ctx context.Context, userID, partnerID uuid.UUID) error
}
