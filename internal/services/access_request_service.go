package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/campus-qa/access-control-service/internal/events"
	"github.com/campus-qa/access-control-service/internal/models"
	"github.com/campus-qa/access-control-service/internal/repositories"
	"github.com/campus-qa/access-control-service/internal/validator"
)

type accessRequestService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher

	// elevatedCapability is granted on approve and revoked on close.
	elevatedCapability models.Capability
}

func NewAccessRequestService(
	repo repositories.Repository,
	logger *slog.Logger,
	v *validator.Validator,
	publisher events.EventPublisher,
	elevatedCapability models.Capability,
) AccessRequestService {
	if elevatedCapability == "" {
		elevatedCapability = models.CapAdmin
	}
	return &accessRequestService{
		repo:               repo,
		logger:             logger,
		validator:          v,
		publisher:          publisher,
		elevatedCapability: elevatedCapability,
	}
}

func (s *accessRequestService) Submit(ctx context.Context, username, reason string) (*models.AccessRequestRecord, error) {
	req := validator.SubmitAccessRequest{Username: username, Reason: reason}
	if errs := s.validator.GetBusinessValidator().Validate(req); len(errs) > 0 {
		return nil, NewValidationError(errs)
	}

	hasPending, err := s.repo.AccessRequest().HasPendingByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to check pending requests for %s: %w", username, err)
	}
	if hasPending {
		return nil, fmt.Errorf("requester %s: %w", username, ErrDuplicatePending)
	}

	request := &models.AccessRequest{
		Username:    username,
		Description: reason,
		Status:      models.RequestPending,
		Version:     1,
	}
	if err := s.repo.AccessRequest().Create(ctx, request); err != nil {
		return nil, fmt.Errorf("failed to create access request for %s: %w", username, err)
	}

	s.publishEvent(ctx, events.TypeRequestSubmitted, map[string]interface{}{
		"request_id": request.ID,
		"username":   username,
	})
	s.logger.Info("access request submitted", "request_id", request.ID, "username", username)
	return models.NewAccessRequestRecord(request), nil
}

// Approve moves the requester's pending request to Approved and grants the
// elevated capability. Both writes commit or roll back together.
func (s *accessRequestService) Approve(ctx context.Context, username string) (*models.AccessRequestRecord, error) {
	var approved *models.AccessRequest

	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		request, err := tx.AccessRequest().GetPendingByUsername(ctx, username)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return fmt.Errorf("no pending request for %s: %w", username, ErrNotFound)
			}
			return fmt.Errorf("failed to load pending request for %s: %w", username, err)
		}

		if errs := s.validator.GetBusinessValidator().ValidateStatusTransition(request.Status, models.RequestApproved); len(errs) > 0 {
			return NewValidationError(errs)
		}

		if err := tx.AccessRequest().UpdateStatusCAS(ctx, request.ID, request.Status, request.Version, models.RequestApproved); err != nil {
			return s.translateCASError(err, request.ID)
		}

		identity, err := tx.Identity().GetByUsername(ctx, username)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return fmt.Errorf("identity %s: %w", username, ErrNotFound)
			}
			return fmt.Errorf("failed to load identity %s: %w", username, err)
		}
		identity.Roles = identity.Roles.Add(s.elevatedCapability)
		if err := tx.Identity().Update(ctx, identity); err != nil {
			return fmt.Errorf("failed to grant %s to %s: %w", s.elevatedCapability, username, err)
		}

		request.Status = models.RequestApproved
		request.Version++
		approved = request
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.TypeRequestApproved, map[string]interface{}{
		"request_id": approved.ID,
		"username":   username,
		"capability": string(s.elevatedCapability),
	})
	s.logger.Info("access request approved", "request_id", approved.ID, "username", username)
	return models.NewAccessRequestRecord(approved), nil
}

func (s *accessRequestService) Deny(ctx context.Context, username string) (*models.AccessRequestRecord, error) {
	request, err := s.repo.AccessRequest().GetPendingByUsername(ctx, username)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, fmt.Errorf("no pending request for %s: %w", username, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load pending request for %s: %w", username, err)
	}

	if errs := s.validator.GetBusinessValidator().ValidateStatusTransition(request.Status, models.RequestDenied); len(errs) > 0 {
		return nil, NewValidationError(errs)
	}

	if err := s.repo.AccessRequest().UpdateStatusCAS(ctx, request.ID, request.Status, request.Version, models.RequestDenied); err != nil {
		return nil, s.translateCASError(err, request.ID)
	}

	request.Status = models.RequestDenied
	request.Version++

	s.publishEvent(ctx, events.TypeRequestDenied, map[string]interface{}{
		"request_id": request.ID,
		"username":   username,
	})
	s.logger.Info("access request denied", "request_id", request.ID, "username", username)
	return models.NewAccessRequestRecord(request), nil
}

// Close records that the elevated capability was removed from the identity at
// the given date, as a fresh Closed ledger entry, and performs the removal. It
// does not reference any earlier request.
func (s *accessRequestService) Close(ctx context.Context, username, reason string, date time.Time) (*models.AccessRequestRecord, error) {
	req := validator.CloseAccessRequest{
		Username: username,
		Reason:   reason,
		Date:     date.Format("2006-01-02"),
	}
	if errs := s.validator.GetBusinessValidator().Validate(req); len(errs) > 0 {
		return nil, NewValidationError(errs)
	}

	var closed *models.AccessRequest

	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		request := &models.AccessRequest{
			Username:    username,
			Description: reason,
			Status:      models.RequestClosed,
			Version:     1,
			CreatedAt:   date,
		}
		if err := tx.AccessRequest().Create(ctx, request); err != nil {
			return fmt.Errorf("failed to create closed entry for %s: %w", username, err)
		}

		identity, err := tx.Identity().GetByUsername(ctx, username)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return fmt.Errorf("identity %s: %w", username, ErrNotFound)
			}
			return fmt.Errorf("failed to load identity %s: %w", username, err)
		}
		removeCapability(identity, s.elevatedCapability)
		if err := tx.Identity().Update(ctx, identity); err != nil {
			return fmt.Errorf("failed to revoke %s from %s: %w", s.elevatedCapability, username, err)
		}

		closed = request
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.TypeRequestClosed, map[string]interface{}{
		"request_id": closed.ID,
		"username":   username,
		"capability": string(s.elevatedCapability),
	})
	s.logger.Info("access closed", "request_id", closed.ID, "username", username)
	return models.NewAccessRequestRecord(closed), nil
}

// Reopen creates a brand-new pending request superseding a closed entry. The
// closed entry itself stays untouched.
func (s *accessRequestService) Reopen(ctx context.Context, originalRequestID uint) (*models.AccessRequestRecord, error) {
	original, err := s.getRequest(ctx, originalRequestID)
	if err != nil {
		return nil, err
	}
	if original.Status != models.RequestClosed {
		return nil, fmt.Errorf("request %d is not closed: %w", originalRequestID, ErrNotFound)
	}

	hasPending, err := s.repo.AccessRequest().HasPendingByUsername(ctx, original.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check pending requests for %s: %w", original.Username, err)
	}
	if hasPending {
		return nil, fmt.Errorf("requester %s: %w", original.Username, ErrDuplicatePending)
	}

	reopened := &models.AccessRequest{
		Username:       original.Username,
		Description:    models.ReopenedPrefix + original.Description,
		Status:         models.RequestPending,
		ReopenedFromID: &original.ID,
		Version:        1,
	}
	if err := s.repo.AccessRequest().Create(ctx, reopened); err != nil {
		return nil, fmt.Errorf("failed to reopen request %d: %w", originalRequestID, err)
	}

	s.publishEvent(ctx, events.TypeRequestReopened, map[string]interface{}{
		"request_id":       reopened.ID,
		"reopened_from_id": original.ID,
		"username":         original.Username,
	})
	s.logger.Info("access request reopened", "request_id", reopened.ID, "reopened_from_id", original.ID)
	return models.NewAccessRequestRecord(reopened), nil
}

func (s *accessRequestService) UpdateDescription(ctx context.Context, requestID uint, description string) error {
	req := validator.UpdateDescriptionRequest{Description: description}
	if errs := s.validator.GetBusinessValidator().Validate(req); len(errs) > 0 {
		return NewValidationError(errs)
	}

	request, err := s.getRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if request.IsTerminal() {
		return fmt.Errorf("request %d is closed: %w", requestID, ErrConflict)
	}

	if err := s.repo.AccessRequest().UpdateDescriptionCAS(ctx, requestID, request.Version, description); err != nil {
		return s.translateCASError(err, requestID)
	}
	return nil
}

func (s *accessRequestService) GetByID(ctx context.Context, requestID uint) (*models.AccessRequestRecord, error) {
	request, err := s.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	return models.NewAccessRequestRecord(request), nil
}

func (s *accessRequestService) ListPending(ctx context.Context) ([]models.AccessRequestRecord, error) {
	return s.listByStatus(ctx, models.RequestPending)
}

func (s *accessRequestService) ListClosed(ctx context.Context) ([]models.AccessRequestRecord, error) {
	return s.listByStatus(ctx, models.RequestClosed)
}

func (s *accessRequestService) listByStatus(ctx context.Context, status models.RequestStatus) ([]models.AccessRequestRecord, error) {
	requests, err := s.repo.AccessRequest().ListByStatus(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s requests: %w", status, err)
	}

	records := make([]models.AccessRequestRecord, 0, len(requests))
	for _, r := range requests {
		records = append(records, *models.NewAccessRequestRecord(r))
	}
	return records, nil
}

func (s *accessRequestService) getRequest(ctx context.Context, requestID uint) (*models.AccessRequest, error) {
	request, err := s.repo.AccessRequest().GetByID(ctx, requestID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, fmt.Errorf("request %d: %w", requestID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load request %d: %w", requestID, err)
	}
	return request, nil
}

func (s *accessRequestService) translateCASError(err error, requestID uint) error {
	if repositories.IsConflictError(err) {
		return fmt.Errorf("request %d: %w", requestID, ErrConflict)
	}
	if repositories.IsNotFoundError(err) {
		return fmt.Errorf("request %d: %w", requestID, ErrNotFound)
	}
	return fmt.Errorf("failed to update request %d: %w", requestID, err)
}

func (s *accessRequestService) publishEvent(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events.NewEvent(eventType, data)); err != nil {
		s.logger.Warn("event publish failed", "event_type", eventType, "error", err)
	}
}
