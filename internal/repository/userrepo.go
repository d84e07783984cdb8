// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/and161185/lovary/internal/model"
	"github.com/gofrs/uuid/v5"
)

// PairingProvider resolves the active partner of a user.
type PairingProvider interface {
	// GetPartnerID returns the partner ID and true, or false when the user is unpaired.
	GetPartnerID(ctx context.Context, userID uuid.UUID) (uuid.UUID, bool, error)
}

// UserRepository provides access to accounts.
type UserRepository interface {
	PairingProvider

	// Create inserts a new user; ErrAlreadyExists on duplicate email.
	Create(ctx context.Context, u *model.User) error
	// GetByID loads a user by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	// GetByEmail loads a user by email.
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// UpdateProfile applies non-nil fields of upd.
	UpdateProfile(ctx context.Context, id uuid.UUID, upd model.ProfileUpdate) error
	// SearchByEmail returns up to limit users whose email contains fragment, excluding one ID.
	SearchByEmail(ctx context.Context, fragment string, exclude uuid.UUID, limit int) ([]model.UserSummary, error)
	// SetPushSubscription stores the JSON-encoded push subscription.
	SetPushSubscription(ctx context.Context, id uuid.UUID, sub string) error
	// Delete removes the account and unpairs its partner; owned rows cascade.
	Delete(ctx context.Context, id uuid.UUID) error
}
