package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/and161185/lovary/internal/errs"
	"github.com/and161185/lovary/internal/model"
	"github.com/and161185/lovary/internal/repository"
	"github.com/gofrs/uuid/v5"
)

const searchLimit = 10

// Profile is the caller's account with a summary of the partner, if any.
type Profile struct {
	User    model.User
	Partner *model.UserSummary
}

// UserService manages the caller's own account.
type UserService interface {
	Me(ctx context.Context, userID uuid.UUID) (Profile, error)
	UpdateMe(ctx context.Context, userID uuid.UUID, upd model.ProfileUpdate) (Profile, error)
	// Search finds other accounts by an email fragment.
	Search(ctx context.Context, userID uuid.UUID, fragment string) ([]model.UserSummary, error)
	SavePushSubscription(ctx context.Context, userID uuid.UUID, sub model.PushSubscription) error
	// DeleteAccount removes the user with everything they own and unpairs the partner.
	DeleteAccount(ctx context.Context, userID uuid.UUID) error
}

type UserServiceImpl struct {
	users repository.UserRepository
}

// NewUserService constructs UserService.
func NewUserService(users repository.UserRepository) *UserServiceImpl {
	return &UserServiceImpl{users: users}
}

// Me loads the profile and the partner summary.
func (s *UserServiceImpl) Me(ctx context.Context, userID uuid.UUID) (Profile, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	p := Profile{User: *u}
	if u.HasPartner() {
		partner, err := s.users.GetByID(ctx, u.PartnerID.UUID)
		if err != nil {
			return Profile{}, fmt.Errorf("load partner: %w", err)
		}
		p.Partner = &model.UserSummary{ID: partner.ID, Email: partner.Email, Name: partner.Name}
	}
	return p, nil
}

// UpdateMe validates and applies a partial profile update.
func (s *UserServiceImpl) UpdateMe(ctx context.Context, userID uuid.UUID, upd model.ProfileUpdate) (Profile, error) {
	if upd.Name != nil {
		n := strings.TrimSpace(*upd.Name)
		if n == "" {
			return Profile{}, fmt.Errorf("%w: empty name", errs.ErrValidation)
		}
		upd.Name = &n
	}
	if upd.ReminderTime != nil && *upd.ReminderTime != "" {
		if _, err := time.Parse("15:04", *upd.ReminderTime); err != nil {
			return Profile{}, fmt.Errorf("%w: reminder time must be HH:MM", errs.ErrValidation)
		}
	}
	if err := s.users.UpdateProfile(ctx, userID, upd); err != nil {
		return Profile{}, err
	}
	return s.Me(ctx, userID)
}

// Search returns up to ten users whose email contains fragment.
func (s *UserServiceImpl) Search(ctx context.Context, userID uuid.UUID, fragment string) ([]model.UserSummary, error) {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return []model.UserSummary{}, nil
	}
	return s.users.SearchByEmail(ctx, fragment, userID, searchLimit)
}

// SavePushSubscription stores the browser subscription as JSON.
func (s *UserServiceImpl) SavePushSubscription(ctx context.Context, userID uuid.UUID, sub model.PushSubscription) error {
	if sub.Endpoint == "" || sub.Keys.P256dh == "" || sub.Keys.Auth == "" {
		return fmt.Errorf("%w: incomplete push subscription", errs.ErrValidation)
	}
	b, err := json.Marshal(sub)
	if err != nil {
		return err
	}
	return s.users.SetPushSubscription(ctx, userID, string(b))
}

// DeleteAccount deletes the user row; owned rows cascade in the database.
func (s *UserServiceImpl) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	return s.users.Delete(ctx, userID)
}
