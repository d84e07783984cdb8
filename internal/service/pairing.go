package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/and161185/lovary/internal/errs"
	"github.com/and161185/lovary/internal/model"
	"github.com/and161185/lovary/internal/repository"
	"github.com/gofrs/uuid/v5"
)

// PairingService links two accounts into a couple.
type PairingService interface {
	SendRequest(ctx context.Context, requesterID uuid.UUID, recipientEmail string) (model.PartnerRequest, error)
	ListPending(ctx context.Context, userID uuid.UUID) ([]model.PartnerRequest, error)
	Accept(ctx context.Context, userID, requestID uuid.UUID) error
	Reject(ctx context.Context, userID, requestID uuid.UUID) error
	Disconnect(ctx context.Context, userID uuid.UUID) error
}

type PairingServiceImpl struct {
	users    repository.UserRepository
	requests repository.PartnerRequestRepository
	now      func() time.Time
}

// NewPairingService constructs PairingService.
func NewPairingService(users repository.UserRepository, requests repository.PartnerRequestRepository) *PairingServiceImpl {
	return &PairingServiceImpl{users: users, requests: requests, now: time.Now}
}

// SendRequest creates a pending request from requester to the owner of recipientEmail.
func (s *PairingServiceImpl) SendRequest(ctx context.Context, requesterID uuid.UUID, recipientEmail string) (model.PartnerRequest, error) {
	requester, err := s.users.GetByID(ctx, requesterID)
	if err != nil {
		return model.PartnerRequest{}, err
	}
	if requester.HasPartner() {
		return model.PartnerRequest{}, errs.ErrAlreadyPaired
	}
	recipient, err := s.users.GetByEmail(ctx, normalizeEmail(recipientEmail))
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return model.PartnerRequest{}, fmt.Errorf("%w: no user with this email", errs.ErrNotFound)
		}
		return model.PartnerRequest{}, err
	}
	if recipient.ID == requester.ID {
		return model.PartnerRequest{}, errs.ErrSelfPairing
	}
	if recipient.HasPartner() {
		return model.PartnerRequest{}, errs.ErrAlreadyPaired
	}
	pending, err := s.requests.PendingBetween(ctx, requester.ID, recipient.ID)
	if err != nil {
		return model.PartnerRequest{}, err
	}
	if pending {
		return model.PartnerRequest{}, errs.ErrRequestExists
	}

	id, err := uuid.NewV4()
	if err != nil {
		return model.PartnerRequest{}, err
	}
	pr := model.PartnerRequest{
		ID:          id,
		RequesterID: requester.ID,
		RecipientID: recipient.ID,
		Status:      model.RequestPending,
		CreatedAt:   s.now().UTC(),
		Requester:   model.UserSummary{ID: requester.ID, Email: requester.Email, Name: requester.Name},
		Recipient:   model.UserSummary{ID: recipient.ID, Email: recipient.Email, Name: recipient.Name},
	}
	if err := s.requests.Create(ctx, &pr); err != nil {
		return model.PartnerRequest{}, err
	}
	return pr, nil
}

// ListPending returns requests the user sent or received that await an answer.
func (s *PairingServiceImpl) ListPending(ctx context.Context, userID uuid.UUID) ([]model.PartnerRequest, error) {
	return s.requests.ListPending(ctx, userID)
}

// Accept pairs the caller with the requester. Only the recipient may accept.
func (s *PairingServiceImpl) Accept(ctx context.Context, userID, requestID uuid.UUID) error {
	return s.requests.Accept(ctx, userID, requestID)
}

// Reject declines a request addressed to the caller.
func (s *PairingServiceImpl) Reject(ctx context.Context, userID, requestID uuid.UUID) error {
	return s.requests.Reject(ctx, userID, requestID)
}

// Disconnect unpairs the caller and the current partner.
func (s *PairingServiceImpl) Disconnect(ctx context.Context, userID uuid.UUID) error {
	partnerID, ok, err := s.users.GetPartnerID(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return errs.ErrNoPartner
	}
	return s.requests.Disconnect(ctx, userID, partnerID)
}
