package services

import (
	"context"
	"time"

	"github.com/campus-qa/access-control-service/internal/models"
)

// RoleRegistryService manages identities and their capability sets. The
// restricted overlay rides alongside the set and survives every grant and
// revoke.
type RoleRegistryService interface {
	// Register seeds an identity row. An empty capability slice defaults
	// to {Student}.
	Register(ctx context.Context, username string, capabilities []models.Capability) error

	// Grant adds a capability to the identity's set.
	Grant(ctx context.Context, username string, capability models.Capability) error

	// Revoke removes a capability. Emptying the set substitutes a default:
	// Instructor when Instructor was present before removal, Student
	// otherwise.
	Revoke(ctx context.Context, username string, capability models.Capability) error

	// SetRestricted toggles the restriction overlay without touching the
	// capability set.
	SetRestricted(ctx context.Context, username string, restricted bool) error

	// CapabilitiesOf lists the identity's capabilities in deterministic
	// order, together with the restriction overlay.
	CapabilitiesOf(ctx context.Context, username string) (*models.CapabilityListing, error)
}

// AccessRequestService is the append-mostly ledger of capability elevation
// requests. Status transitions are compare-and-swap on (status, version).
type AccessRequestService interface {
	Submit(ctx context.Context, username, reason string) (*models.AccessRequestRecord, error)

	// Approve locates the requester's pending request, moves it to
	// Approved and grants the elevated capability in one transaction.
	Approve(ctx context.Context, username string) (*models.AccessRequestRecord, error)

	Deny(ctx context.Context, username string) (*models.AccessRequestRecord, error)

	// Close inserts a Closed audit record and revokes the elevated
	// capability. It does not require a prior request for the identity.
	Close(ctx context.Context, username, reason string, date time.Time) (*models.AccessRequestRecord, error)

	// Reopen creates a fresh Pending request referencing a Closed one.
	Reopen(ctx context.Context, originalRequestID uint) (*models.AccessRequestRecord, error)

	UpdateDescription(ctx context.Context, requestID uint, description string) error

	GetByID(ctx context.Context, requestID uint) (*models.AccessRequestRecord, error)
	ListPending(ctx context.Context) ([]models.AccessRequestRecord, error)
	ListClosed(ctx context.Context) ([]models.AccessRequestRecord, error)
}

// TrustWeightService stores directed (truster, trustee) weights in [0, 5].
type TrustWeightService interface {
	// SetWeight upserts the pair's weight. Weight zero deletes the row.
	SetWeight(ctx context.Context, truster, trustee string, weight int) error

	// GetWeight returns the stored weight, or zero when no row exists.
	GetWeight(ctx context.Context, truster, trustee string) (int, error)

	// ListTrusted returns the truster's pairs with weight above zero.
	ListTrusted(ctx context.Context, truster string) ([]models.TrustWeightRecord, error)
}

// ContentFlagService records moderation flags raised against portal content.
type ContentFlagService interface {
	Flag(ctx context.Context, targetType models.FlagTargetType, targetID, flaggedBy, reason string) (*models.ContentFlagRecord, error)

	// Resolve moves a flag to its terminal resolved state. Resolving an
	// already-resolved flag fails with ErrAlreadyResolved.
	Resolve(ctx context.Context, flagID uint) error

	ListUnresolved(ctx context.Context) ([]models.ContentFlagRecord, error)
	ListAll(ctx context.Context) ([]models.ContentFlagRecord, error)
}

// ModerationGateService answers whether an identity may perform mutating
// actions. Read-only over registry state.
type ModerationGateService interface {
	CanMutate(ctx context.Context, username string) (bool, error)
}

// ContentReader is the narrow collaborator over the external content store,
// used to capture a snippet of the flagged content at flag time.
type ContentReader interface {
	Snippet(ctx context.Context, targetType models.FlagTargetType, targetID string) (string, error)
}

// ExportService produces xlsx audit exports of the ledgers.
type ExportService interface {
	ExportClosedRequests(ctx context.Context) ([]byte, error)
	ExportFlags(ctx context.Context) ([]byte, error)
}

// ServiceManager wires and owns the service instances.
type ServiceManager interface {
	Initialize(ctx context.Context) error

	GetRoleRegistryService() RoleRegistryService
	GetAccessRequestService() AccessRequestService
	GetTrustWeightService() TrustWeightService
	GetContentFlagService() ContentFlagService
	GetModerationGateService() ModerationGateService
	GetExportService() ExportService

	HealthCheck(ctx context.Context) error
	Shutdown() error
}
