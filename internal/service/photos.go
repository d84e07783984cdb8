package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strconv"
	"time"

	"github.com/and161185/lovary/internal/errs"
	"github.com/and161185/lovary/internal/model"
	"github.com/and161185/lovary/internal/repository"
	"github.com/and161185/lovary/internal/storage"
	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"
)

// PhotoService keeps one picture per couple and calendar month.
type PhotoService interface {
	// Upload replaces the couple's photo for year/month.
	Upload(ctx context.Context, userID uuid.UUID, year int, month time.Month, file model.PhotoUpload) (*model.MonthlyPhoto, error)
	// Get returns the photo, or nil when the month has none or the user is unpaired.
	Get(ctx context.Context, userID uuid.UUID, year int, month time.Month) (*model.MonthlyPhoto, error)
}

type PhotoServiceImpl struct {
	users repository.PairingProvider
	repo  repository.MonthlyPhotoRepository
	store storage.Store
	now   func() time.Time
	log   *zap.Logger
}

// NewPhotoService constructs PhotoService.
func NewPhotoService(users repository.PairingProvider, repo repository.MonthlyPhotoRepository, store storage.Store, log *zap.Logger) *PhotoServiceImpl {
	return &PhotoServiceImpl{users: users, repo: repo, store: store, now: time.Now, log: log}
}

func checkYearMonth(year int, month time.Month) error {
	if month < time.January || month > time.December || year < 1970 || year > 9999 {
		return fmt.Errorf("%w: bad year/month", errs.ErrValidation)
	}
	return nil
}

// Upload stores the new object first, swaps the row, then releases the old object.
func (s *PhotoServiceImpl) Upload(ctx context.Context, userID uuid.UUID, year int, month time.Month, file model.PhotoUpload) (*model.MonthlyPhoto, error) {
	if err := checkYearMonth(year, month); err != nil {
		return nil, err
	}
	if len(file.Data) == 0 {
		return nil, fmt.Errorf("%w: empty file", errs.ErrValidation)
	}
	partnerID, ok, err := s.users.GetPartnerID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.ErrNoPartner
	}
	couple := model.CoupleID(userID, partnerID)

	key := storage.NewKey(path.Join("monthly", couple, strconv.Itoa(year), strconv.Itoa(int(month))), file.Filename)
	url, err := s.store.Put(ctx, key, file.ContentType, file.Data)
	if err != nil {
		return nil, fmt.Errorf("store photo: %w", err)
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	p := &model.MonthlyPhoto{
		ID:         id,
		CoupleID:   couple,
		Year:       year,
		Month:      month,
		URL:        url,
		StorageKey: key,
		CreatedBy:  userID,
		CreatedAt:  s.now().UTC(),
	}
	prev, err := s.repo.Replace(ctx, p)
	if err != nil {
		if derr := s.store.Delete(ctx, key); derr != nil {
			s.log.Warn("release unsaved photo", zap.String("key", key), zap.Error(derr))
		}
		return nil, err
	}
	if prev != nil && prev.StorageKey != "" && prev.StorageKey != key {
		if err := s.store.Delete(ctx, prev.StorageKey); err != nil {
			s.log.Warn("release replaced photo", zap.String("key", prev.StorageKey), zap.Error(err))
		}
	}
	return s.resolve(ctx, p), nil
}

// Get looks up the couple's photo for the month.
func (s *PhotoServiceImpl) Get(ctx context.Context, userID uuid.UUID, year int, month time.Month) (*model.MonthlyPhoto, error) {
	if err := checkYearMonth(year, month); err != nil {
		return nil, err
	}
	partnerID, ok, err := s.users.GetPartnerID(ctx, userID)
	if err != nil || !ok {
		return nil, err
	}
	p, err := s.repo.Get(ctx, model.CoupleID(userID, partnerID), year, month)
	if errors.Is(err, errs.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, p), nil
}

// resolve returns a copy of p carrying a URL a client can fetch now.
func (s *PhotoServiceImpl) resolve(ctx context.Context, p *model.MonthlyPhoto) *model.MonthlyPhoto {
	out := *p
	u, err := s.store.Resolve(ctx, p.URL)
	if err != nil {
		s.log.Warn("resolve photo url", zap.String("key", p.StorageKey), zap.Error(err))
		return &out
	}
	out.URL = u
	return &out
}
