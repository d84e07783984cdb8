package repository

import (
	"context"

	"github.com/and161185/lovary/internal/model"
	"github.com/gofrs/uuid/v5"
)

// AnniversaryRepository stores couple anniversaries. Unlike diary entries,
// saving a date that already exists for the couple updates it in place.
type AnniversaryRepository interface {
	// Upsert inserts or renames the anniversary for (couple, date) and returns the stored row.
	Upsert(ctx context.Context, a *model.Anniversary) (*model.Anniversary, error)
	// ListByCouple returns all anniversaries of a couple ordered by date.
	ListByCouple(ctx context.Context, coupleID string) ([]model.Anniversary, error)
	// Delete removes an anniversary the user is a party of, else ErrNotFound.
	Delete(ctx context.Context, userID, id uuid.UUID) error
}
