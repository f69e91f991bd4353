package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/campus-qa/access-control-service/internal/repositories"
)

type moderationGateService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewModerationGateService(repo repositories.Repository, logger *slog.Logger) ModerationGateService {
	return &moderationGateService{
		repo:   repo,
		logger: logger,
	}
}

// CanMutate reports whether the identity may perform mutating actions. Only
// the restriction overlay decides; capabilities play no part.
func (s *moderationGateService) CanMutate(ctx context.Context, username string) (bool, error) {
	identity, err := s.repo.Identity().GetByUsername(ctx, username)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return false, fmt.Errorf("identity %s: %w", username, ErrNotFound)
		}
		return false, fmt.Errorf("failed to load identity %s: %w", username, err)
	}
	return !identity.Restricted, nil
}
