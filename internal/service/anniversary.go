package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/and161185/lovary/internal/errs"
	"github.com/and161185/lovary/internal/model"
	"github.com/and161185/lovary/internal/repository"
	"github.com/gofrs/uuid/v5"
)

// AnniversaryService manages the dates a couple celebrates.
type AnniversaryService interface {
	// Save creates the anniversary or renames the one already on that date.
	Save(ctx context.Context, userID uuid.UUID, date model.Day, name string) (*model.Anniversary, error)
	List(ctx context.Context, userID uuid.UUID) ([]model.Anniversary, error)
	// Month returns anniversaries falling in month of any year, ordered by day.
	Month(ctx context.Context, userID uuid.UUID, month time.Month) ([]model.Anniversary, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type AnniversaryServiceImpl struct {
	users repository.PairingProvider
	repo  repository.AnniversaryRepository
}

// NewAnniversaryService constructs AnniversaryService.
func NewAnniversaryService(users repository.PairingProvider, repo repository.AnniversaryRepository) *AnniversaryServiceImpl {
	return &AnniversaryServiceImpl{users: users, repo: repo}
}

// Save requires a partner.
func (s *AnniversaryServiceImpl) Save(ctx context.Context, userID uuid.UUID, date model.Day, name string) (*model.Anniversary, error) {
	name = strings.TrimSpace(name)
	if name == "" || date.IsZero() {
		return nil, fmt.Errorf("%w: date and name are required", errs.ErrValidation)
	}
	partnerID, ok, err := s.users.GetPartnerID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.ErrNoPartner
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	return s.repo.Upsert(ctx, &model.Anniversary{
		ID:        id,
		CoupleID:  model.CoupleID(userID, partnerID),
		UserID:    userID,
		PartnerID: partnerID,
		Date:      date,
		Name:      name,
	})
}

// List returns the couple's anniversaries; unpaired users get an empty list.
func (s *AnniversaryServiceImpl) List(ctx context.Context, userID uuid.UUID) ([]model.Anniversary, error) {
	partnerID, ok, err := s.users.GetPartnerID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []model.Anniversary{}, nil
	}
	list, err := s.repo.ListByCouple(ctx, model.CoupleID(userID, partnerID))
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []model.Anniversary{}
	}
	return list, nil
}

// Month filters List by calendar month; anniversaries recur yearly.
func (s *AnniversaryServiceImpl) Month(ctx context.Context, userID uuid.UUID, month time.Month) ([]model.Anniversary, error) {
	if month < time.January || month > time.December {
		return nil, fmt.Errorf("%w: bad month", errs.ErrValidation)
	}
	all, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]model.Anniversary, 0, len(all))
	for _, a := range all {
		if a.Date.Month == month {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Day < out[j].Date.Day })
	return out, nil
}

// Delete removes an anniversary the caller is a party of.
func (s *AnniversaryServiceImpl) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.Delete(ctx, userID, id)
}
