package repositories

import "context"

// Repository aggregates the per-ledger repositories behind one handle.
type Repository interface {
	Identity() IdentityRepository
	AccessRequest() AccessRequestRepository
	TrustWeight() TrustWeightRepository
	ContentFlag() ContentFlagRepository

	// WithTransaction runs fn against a transactional view of the whole
	// aggregate. Approve spans the request ledger and the role registry
	// and relies on this.
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager owns the repository lifecycle.
type RepositoryManager interface {
	// Initialize repositories with database connections
	Initialize() error

	// Get repository instance
	GetRepository() Repository

	// Health check for all repositories
	HealthCheck(ctx context.Context) error

	// Graceful shutdown
	Shutdown(ctx context.Context) error
}
