package repository

import (
	"context"
	"time"

	"github.com/and161185/lovary/internal/model"
)

// MonthlyPhotoRepository keeps at most one photo per couple and month.
type MonthlyPhotoRepository interface {
	// Get returns the couple's photo for year/month or ErrNotFound.
	Get(ctx context.Context, coupleID string, year int, month time.Month) (*model.MonthlyPhoto, error)
	// Replace stores p, removing the previous row for the same month.
	// The previous row, if any, is returned so its object can be released.
	Replace(ctx context.Context, p *model.MonthlyPhoto) (*model.MonthlyPhoto, error)
}
