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

type roleRegistryService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
}

func NewRoleRegistryService(
	repo repositories.Repository,
	logger *slog.Logger,
	v *validator.Validator,
	publisher events.EventPublisher,
) RoleRegistryService {
	return &roleRegistryService{
		repo:      repo,
		logger:    logger,
		validator: v,
		publisher: publisher,
	}
}

func (s *roleRegistryService) Register(ctx context.Context, username string, capabilities []models.Capability) error {
	roleNames := make([]string, 0, len(capabilities))
	for _, c := range capabilities {
		roleNames = append(roleNames, string(c))
	}
	if len(roleNames) == 0 {
		// New identities start as plain students.
		roleNames = []string{string(models.CapStudent)}
	}

	req := validator.RegisterIdentityRequest{Username: username, Roles: roleNames}
	if errs := s.validator.GetBusinessValidator().Validate(req); len(errs) > 0 {
		return NewValidationError(errs)
	}

	exists, err := s.repo.Identity().ExistsByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("failed to check identity %s: %w", username, err)
	}
	if exists {
		return fmt.Errorf("identity %s already registered: %w", username, ErrConflict)
	}

	var roles models.RoleSet
	for _, name := range roleNames {
		roles = roles.Add(models.Capability(name))
	}

	identity := &models.Identity{
		Username: username,
		Roles:    roles,
	}
	if err := s.repo.Identity().Create(ctx, identity); err != nil {
		return fmt.Errorf("failed to register identity %s: %w", username, err)
	}

	s.logger.Info("identity registered", "username", username, "roles", roleNames)
	return nil
}

func (s *roleRegistryService) Grant(ctx context.Context, username string, capability models.Capability) error {
	req := validator.GrantCapabilityRequest{Capability: string(capability)}
	if errs := s.validator.GetBusinessValidator().Validate(req); len(errs) > 0 {
		return NewValidationError(errs)
	}

	identity, err := s.getIdentity(ctx, username)
	if err != nil {
		return err
	}

	if identity.Roles.Has(capability) {
		return nil
	}
	identity.Roles = identity.Roles.Add(capability)

	if err := s.repo.Identity().Update(ctx, identity); err != nil {
		return fmt.Errorf("failed to grant %s to %s: %w", capability, username, err)
	}

	s.publishEvent(ctx, events.TypeCapabilityGrant, map[string]interface{}{
		"username":   username,
		"capability": string(capability),
	})
	s.logger.Info("capability granted", "username", username, "capability", capability)
	return nil
}

func (s *roleRegistryService) Revoke(ctx context.Context, username string, capability models.Capability) error {
	req := validator.RevokeCapabilityRequest{Capability: string(capability)}
	if errs := s.validator.GetBusinessValidator().Validate(req); len(errs) > 0 {
		return NewValidationError(errs)
	}

	identity, err := s.getIdentity(ctx, username)
	if err != nil {
		return err
	}

	removeCapability(identity, capability)

	if err := s.repo.Identity().Update(ctx, identity); err != nil {
		return fmt.Errorf("failed to revoke %s from %s: %w", capability, username, err)
	}

	s.publishEvent(ctx, events.TypeCapabilityRevoke, map[string]interface{}{
		"username":   username,
		"capability": string(capability),
	})
	s.logger.Info("capability revoked", "username", username, "capability", capability)
	return nil
}

func (s *roleRegistryService) SetRestricted(ctx context.Context, username string, restricted bool) error {
	identity, err := s.getIdentity(ctx, username)
	if err != nil {
		return err
	}

	if identity.Restricted == restricted {
		return nil
	}
	identity.Restricted = restricted

	if err := s.repo.Identity().Update(ctx, identity); err != nil {
		return fmt.Errorf("failed to set restriction for %s: %w", username, err)
	}

	s.publishEvent(ctx, events.TypeRestrictionSet, map[string]interface{}{
		"username":   username,
		"restricted": restricted,
	})
	s.logger.Info("restriction changed", "username", username, "restricted", restricted)
	return nil
}

func (s *roleRegistryService) CapabilitiesOf(ctx context.Context, username string) (*models.CapabilityListing, error) {
	identity, err := s.getIdentity(ctx, username)
	if err != nil {
		return nil, err
	}
	return models.NewCapabilityListing(identity), nil
}

// removeCapability drops capability from the identity's set. An identity
// never ends up without capabilities: when the removal empties the set,
// identities that held Instructor keep it, everyone else falls back to
// Student.
func removeCapability(identity *models.Identity, capability models.Capability) {
	hadInstructor := identity.Roles.Has(models.CapInstructor)
	identity.Roles = identity.Roles.Remove(capability)

	if len(identity.Roles) == 0 {
		fallback := models.CapStudent
		if hadInstructor {
			fallback = models.CapInstructor
		}
		identity.Roles = models.RoleSet{fallback}
	}
}

func (s *roleRegistryService) getIdentity(ctx context.Context, username string) (*models.Identity, error) {
	identity, err := s.repo.Identity().GetByUsername(ctx, username)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, fmt.Errorf("identity %s: %w", username, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load identity %s: %w", username, err)
	}
	return identity, nil
}

func (s *roleRegistryService) publishEvent(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events.NewEvent(eventType, data)); err != nil {
		s.logger.Warn("event publish failed", "event_type", eventType, "error", err)
	}
}
