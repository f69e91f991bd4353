package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/campus-qa/access-control-service/internal/events"
	"github.com/campus-qa/access-control-service/internal/models"
	"github.com/campus-qa/access-control-service/internal/repositories"
	"github.com/campus-qa/access-control-service/internal/validator"
)

// serviceManager wires the service instances over one repository and owns
// their lifecycle.
type serviceManager struct {
	mu          sync.RWMutex
	initialized bool

	repoManager repositories.RepositoryManager
	logger      *slog.Logger
	validator   *validator.Validator
	publisher   events.EventPublisher

	contentReader      ContentReader
	elevatedCapability models.Capability

	roleRegistry   RoleRegistryService
	accessRequests AccessRequestService
	trustWeights   TrustWeightService
	contentFlags   ContentFlagService
	moderationGate ModerationGateService
	export         ExportService
}

type ServiceManagerConfig struct {
	RepositoryManager repositories.RepositoryManager
	Logger            *slog.Logger
	Validator         *validator.Validator
	EventPublisher    events.EventPublisher

	// ContentReader may be nil; flags then carry empty snippets.
	ContentReader ContentReader

	// ElevatedCapability defaults to Admin when empty.
	ElevatedCapability models.Capability
}

func NewServiceManager(cfg ServiceManagerConfig) ServiceManager {
	return &serviceManager{
		repoManager:        cfg.RepositoryManager,
		logger:             cfg.Logger,
		validator:          cfg.Validator,
		publisher:          cfg.EventPublisher,
		contentReader:      cfg.ContentReader,
		elevatedCapability: cfg.ElevatedCapability,
	}
}

func (m *serviceManager) Initialize(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return fmt.Errorf("service manager already initialized")
	}

	repo := m.repoManager.GetRepository()
	if repo == nil {
		return fmt.Errorf("repository manager not initialized")
	}

	m.roleRegistry = NewRoleRegistryService(repo, m.logger, m.validator, m.publisher)
	m.accessRequests = NewAccessRequestService(repo, m.logger, m.validator, m.publisher, m.elevatedCapability)
	m.trustWeights = NewTrustWeightService(repo, m.logger, m.validator)
	m.contentFlags = NewContentFlagService(repo, m.logger, m.validator, m.publisher, m.contentReader)
	m.moderationGate = NewModerationGateService(repo, m.logger)
	m.export = NewExportService(repo, m.logger)

	m.initialized = true
	m.logger.Info("services initialized")
	return nil
}

func (m *serviceManager) GetRoleRegistryService() RoleRegistryService {
	m.mu.RLock()
	defer m.mu.RUnlock()
	m.mustBeInitialized()
	return m.roleRegistry
}

func (m *serviceManager) GetAccessRequestService() AccessRequestService {
	m.mu.RLock()
	defer m.mu.RUnlock()
	m.mustBeInitialized()
	return m.accessRequests
}

func (m *serviceManager) GetTrustWeightService() TrustWeightService {
	m.mu.RLock()
	defer m.mu.RUnlock()
	m.mustBeInitialized()
	return m.trustWeights
}

func (m *serviceManager) GetContentFlagService() ContentFlagService {
	m.mu.RLock()
	defer m.mu.RUnlock()
	m.mustBeInitialized()
	return m.contentFlags
}

func (m *serviceManager) GetModerationGateService() ModerationGateService {
	m.mu.RLock()
	defer m.mu.RUnlock()
	m.mustBeInitialized()
	return m.moderationGate
}

func (m *serviceManager) GetExportService() ExportService {
	m.mu.RLock()
	defer m.mu.RUnlock()
	m.mustBeInitialized()
	return m.export
}

func (m *serviceManager) HealthCheck(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.initialized {
		return fmt.Errorf("service manager not initialized")
	}
	return m.repoManager.HealthCheck(ctx)
}

func (m *serviceManager) Shutdown() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return nil
	}
	m.initialized = false

	if m.publisher != nil {
		if err := m.publisher.Close(); err != nil {
			m.logger.Warn("event publisher close failed", "error", err)
		}
	}
	m.logger.Info("services shut down")
	return nil
}

func (m *serviceManager) mustBeInitialized() {
	if !m.initialized {
		panic("service manager not initialized; call Initialize first")
	}
}
