package repositories

import (
	"context"
	"time"

	"github.com/campus-qa/access-control-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type AccessRequestFilters struct {
	Status    *models.RequestStatus `json:"status"`
	Username  *string               `json:"username"`
	DateFrom  *time.Time            `json:"date_from"`
	DateTo    *time.Time            `json:"date_to"`
	Limit     int                   `json:"limit"`
	Offset    int                   `json:"offset"`
	SortBy    string                `json:"sort_by"`    // "created_at", "username"
	SortOrder string                `json:"sort_order"` // "asc", "desc"
}

type ContentFlagFilters struct {
	TargetType *models.FlagTargetType `json:"target_type"`
	FlaggedBy  *string                `json:"flagged_by"`
	Resolved   *bool                  `json:"resolved"`
	Limit      int                    `json:"limit"`
	Offset     int                    `json:"offset"`
}

// ===== REPOSITORY INTERFACES =====

// IdentityRepository owns the capability set and restriction overlay of each
// identity. Account creation and credentials live outside this service; only
// Create is exposed so the portal can seed a row on first login.
type IdentityRepository interface {
	Create(ctx context.Context, identity *models.Identity) error
	GetByUsername(ctx context.Context, username string) (*models.Identity, error)
	Update(ctx context.Context, identity *models.Identity) error
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	List(ctx context.Context, limit, offset int) ([]*models.Identity, int64, error)
}

// AccessRequestRepository tracks the elevation-request ledger. Status
// mutations go through UpdateStatusCAS so a transition matching a stale
// status/version fails instead of silently overwriting.
type AccessRequestRepository interface {
	Create(ctx context.Context, request *models.AccessRequest) error
	GetByID(ctx context.Context, id uint) (*models.AccessRequest, error)
	GetPendingByUsername(ctx context.Context, username string) (*models.AccessRequest, error)
	HasPendingByUsername(ctx context.Context, username string) (bool, error)

	// UpdateStatusCAS transitions id from (expectedStatus, expectedVersion)
	// to newStatus, bumping the version. Returns ErrStaleVersion when the
	// expectation no longer holds and ErrNotFound when the row is absent.
	UpdateStatusCAS(ctx context.Context, id uint, expectedStatus models.RequestStatus, expectedVersion int, newStatus models.RequestStatus) error

	// UpdateDescriptionCAS edits the free text of a non-terminal record
	// under the same version guard.
	UpdateDescriptionCAS(ctx context.Context, id uint, expectedVersion int, description string) error

	List(ctx context.Context, filters AccessRequestFilters) ([]*models.AccessRequest, int64, error)
	ListByStatus(ctx context.Context, status models.RequestStatus) ([]*models.AccessRequest, error)
}

// TrustWeightRepository stores the (truster, trustee) weight ledger. Upsert
// replaces; Delete expresses weight-zero removal so no stale zero rows remain.
type TrustWeightRepository interface {
	Upsert(ctx context.Context, weight *models.TrustWeight) error
	Get(ctx context.Context, truster, trustee string) (*models.TrustWeight, error)
	Delete(ctx context.Context, truster, trustee string) error
	ListByTruster(ctx context.Context, truster string) ([]*models.TrustWeight, error)
}

// ContentFlagRepository tracks moderation flags. ResolveCAS enforces the
// terminal-state invariant at the storage layer.
type ContentFlagRepository interface {
	Create(ctx context.Context, flag *models.ContentFlag) error
	GetByID(ctx context.Context, id uint) (*models.ContentFlag, error)

	// ResolveCAS flips resolved from false to true for the expected
	// version. ErrStaleVersion when the row was already resolved or
	// concurrently modified; ErrNotFound when absent.
	ResolveCAS(ctx context.Context, id uint, expectedVersion int) error

	List(ctx context.Context, filters ContentFlagFilters) ([]*models.ContentFlag, int64, error)
	ListUnresolved(ctx context.Context) ([]*models.ContentFlag, error)
}
