package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/campus-qa/access-control-service/internal/models"
	"github.com/campus-qa/access-control-service/internal/repositories"
	"github.com/campus-qa/access-control-service/internal/validator"
)

type trustWeightService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewTrustWeightService(
	repo repositories.Repository,
	logger *slog.Logger,
	v *validator.Validator,
) TrustWeightService {
	return &trustWeightService{
		repo:      repo,
		logger:    logger,
		validator: v,
	}
}

func (s *trustWeightService) SetWeight(ctx context.Context, truster, trustee string, weight int) error {
	req := validator.SetTrustWeightRequest{
		TrusterUsername: truster,
		TrusteeUsername: trustee,
		Weight:          weight,
	}
	if errs := s.validator.GetBusinessValidator().Validate(req); len(errs) > 0 {
		return NewValidationError(errs)
	}

	// Weight zero withdraws the trust relation entirely.
	if weight == models.TrustWeightMin {
		if err := s.repo.TrustWeight().Delete(ctx, truster, trustee); err != nil {
			return fmt.Errorf("failed to remove trust %s -> %s: %w", truster, trustee, err)
		}
		s.logger.Info("trust removed", "truster", truster, "trustee", trustee)
		return nil
	}

	edge := &models.TrustWeight{
		TrusterUsername: truster,
		TrusteeUsername: trustee,
		Weight:          weight,
	}
	if err := s.repo.TrustWeight().Upsert(ctx, edge); err != nil {
		return fmt.Errorf("failed to set trust %s -> %s: %w", truster, trustee, err)
	}

	s.logger.Info("trust set", "truster", truster, "trustee", trustee, "weight", weight)
	return nil
}

// GetWeight returns the stored weight for the pair. An absent pair reads as
// zero, never as an error.
func (s *trustWeightService) GetWeight(ctx context.Context, truster, trustee string) (int, error) {
	edge, err := s.repo.TrustWeight().Get(ctx, truster, trustee)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return models.TrustWeightMin, nil
		}
		return 0, fmt.Errorf("failed to read trust %s -> %s: %w", truster, trustee, err)
	}
	return edge.Weight, nil
}

func (s *trustWeightService) ListTrusted(ctx context.Context, truster string) ([]models.TrustWeightRecord, error) {
	edges, err := s.repo.TrustWeight().ListByTruster(ctx, truster)
	if err != nil {
		return nil, fmt.Errorf("failed to list trusted for %s: %w", truster, err)
	}

	records := make([]models.TrustWeightRecord, 0, len(edges))
	for _, e := range edges {
		records = append(records, *models.NewTrustWeightRecord(e))
	}
	return records, nil
}
