package validator

// Request DTOs for the access-control API. Field rules lean on the custom
// validators registered in business_validator.go.

// RegisterIdentityRequest seeds an identity row; the portal calls this on
// first login.
type RegisterIdentityRequest struct {
	Username string   `json:"username" validate:"required,max=255"`
	Roles    []string `json:"roles" validate:"required,min=1,dive,capability"`
}

// GrantCapabilityRequest adds one capability to an identity.
type GrantCapabilityRequest struct {
	Capability string `json:"capability" validate:"required,capability"`
}

// RevokeCapabilityRequest removes one capability from an identity.
type RevokeCapabilityRequest struct {
	Capability string `json:"capability" validate:"required,capability"`
}

// SetRestrictedRequest sets or clears the restriction overlay.
type SetRestrictedRequest struct {
	Restricted *bool `json:"restricted" validate:"required"`
}

// SubmitAccessRequest opens a new elevation request.
type SubmitAccessRequest struct {
	Username string `json:"username" validate:"required,max=255"`
	Reason   string `json:"reason" validate:"required,notblank,max=2000"`
}

// CloseAccessRequest records the removal of an elevated capability.
type CloseAccessRequest struct {
	Username string `json:"username" validate:"required,max=255"`
	Reason   string `json:"reason" validate:"required,notblank,max=2000"`
	Date     string `json:"date" validate:"required,audit_date"`
}

// UpdateDescriptionRequest edits the free text of a non-terminal request.
type UpdateDescriptionRequest struct {
	Description string `json:"description" validate:"required,notblank,max=2000"`
}

// SetTrustWeightRequest upserts one (truster, trustee) trust edge.
type SetTrustWeightRequest struct {
	TrusterUsername string `json:"truster_username" validate:"required,max=255"`
	TrusteeUsername string `json:"trustee_username" validate:"required,max=255"`
	Weight          int    `json:"weight" validate:"trust_weight"`
}

// FlagContentRequest places a moderation flag on a content item.
type FlagContentRequest struct {
	TargetType string `json:"target_type" validate:"required,flag_target"`
	TargetID   string `json:"target_id" validate:"required,max=255"`
	FlaggedBy  string `json:"flagged_by" validate:"required,max=255"`
	Reason     string `json:"reason" validate:"required,notblank,max=2000"`
}
