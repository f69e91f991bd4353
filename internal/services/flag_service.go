package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/campus-qa/access-control-service/internal/events"
	"github.com/campus-qa/access-control-service/internal/models"
	"github.com/campus-qa/access-control-service/internal/repositories"
	"github.com/campus-qa/access-control-service/internal/validator"
)

type contentFlagService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher

	// contentReader fetches a snippet of the flagged item from the content
	// store. Optional; without it flags carry an empty snippet.
	contentReader ContentReader
}

func NewContentFlagService(
	repo repositories.Repository,
	logger *slog.Logger,
	v *validator.Validator,
	publisher events.EventPublisher,
	contentReader ContentReader,
) ContentFlagService {
	return &contentFlagService{
		repo:          repo,
		logger:        logger,
		validator:     v,
		publisher:     publisher,
		contentReader: contentReader,
	}
}

func (s *contentFlagService) Flag(ctx context.Context, targetType models.FlagTargetType, targetID, flaggedBy, reason string) (*models.ContentFlagRecord, error) {
	req := validator.FlagContentRequest{
		TargetType: string(targetType),
		TargetID:   targetID,
		FlaggedBy:  flaggedBy,
		Reason:     reason,
	}
	if errs := s.validator.GetBusinessValidator().Validate(req); len(errs) > 0 {
		return nil, NewValidationError(errs)
	}

	snippet := s.fetchSnippet(ctx, targetType, targetID)

	flag := &models.ContentFlag{
		TargetType:     targetType,
		TargetID:       targetID,
		FlaggedBy:      flaggedBy,
		Reason:         reason,
		ContentSnippet: snippet,
		Resolved:       false,
		Version:        1,
	}
	if err := s.repo.ContentFlag().Create(ctx, flag); err != nil {
		return nil, fmt.Errorf("failed to create flag on %s %s: %w", targetType, targetID, err)
	}

	s.publishEvent(ctx, events.TypeFlagCreated, map[string]interface{}{
		"flag_id":     flag.ID,
		"target_type": string(targetType),
		"target_id":   targetID,
		"flagged_by":  flaggedBy,
	})
	s.logger.Info("content flagged", "flag_id", flag.ID, "target_type", targetType, "target_id", targetID)
	return models.NewContentFlagRecord(flag), nil
}

func (s *contentFlagService) Resolve(ctx context.Context, flagID uint) error {
	flag, err := s.repo.ContentFlag().GetByID(ctx, flagID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return fmt.Errorf("flag %d: %w", flagID, ErrNotFound)
		}
		return fmt.Errorf("failed to load flag %d: %w", flagID, err)
	}
	if flag.Resolved {
		return fmt.Errorf("flag %d: %w", flagID, ErrAlreadyResolved)
	}

	if err := s.repo.ContentFlag().ResolveCAS(ctx, flagID, flag.Version); err != nil {
		if repositories.IsConflictError(err) {
			return fmt.Errorf("flag %d: %w", flagID, ErrConflict)
		}
		if repositories.IsNotFoundError(err) {
			return fmt.Errorf("flag %d: %w", flagID, ErrNotFound)
		}
		return fmt.Errorf("failed to resolve flag %d: %w", flagID, err)
	}

	s.publishEvent(ctx, events.TypeFlagResolved, map[string]interface{}{
		"flag_id": flagID,
	})
	s.logger.Info("flag resolved", "flag_id", flagID)
	return nil
}

func (s *contentFlagService) ListUnresolved(ctx context.Context) ([]models.ContentFlagRecord, error) {
	flags, err := s.repo.ContentFlag().ListUnresolved(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list unresolved flags: %w", err)
	}
	return toFlagRecords(flags), nil
}

func (s *contentFlagService) ListAll(ctx context.Context) ([]models.ContentFlagRecord, error) {
	flags, _, err := s.repo.ContentFlag().List(ctx, repositories.ContentFlagFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to list flags: %w", err)
	}
	return toFlagRecords(flags), nil
}

// fetchSnippet is best effort. A content store failure must not block the
// moderation flag itself.
func (s *contentFlagService) fetchSnippet(ctx context.Context, targetType models.FlagTargetType, targetID string) string {
	if s.contentReader == nil {
		return ""
	}
	snippet, err := s.contentReader.Snippet(ctx, targetType, targetID)
	if err != nil {
		s.logger.Warn("content snippet unavailable", "target_type", targetType, "target_id", targetID, "error", err)
		return ""
	}
	return snippet
}

func toFlagRecords(flags []*models.ContentFlag) []models.ContentFlagRecord {
	records := make([]models.ContentFlagRecord, 0, len(flags))
	for _, f := range flags {
		records = append(records, *models.NewContentFlagRecord(f))
	}
	return records
}

func (s *contentFlagService) publishEvent(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events.NewEvent(eventType, data)); err != nil {
		s.logger.Warn("event publish failed", "event_type", eventType, "error", err)
	}
}
