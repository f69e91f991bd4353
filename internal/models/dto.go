package models

import "strconv"

// Wire shapes exposed to callers. Dates are rendered as strings and trust
// weights as string-encoded integers to match what the portal's presentation
// layer consumes.

const wireDateLayout = "2006-01-02"

// AccessRequestRecord is the caller-facing shape of a ledger entry.
type AccessRequestRecord struct {
	ID             uint   `json:"id"`
	Username       string `json:"username"`
	Description    string `json:"description"`
	Date           string `json:"date"`
	Status         string `json:"status"`
	ReopenedFromID *uint  `json:"reopened_from_id,omitempty"`
	IsReopened     bool   `json:"is_reopened"`
}

func NewAccessRequestRecord(r *AccessRequest) *AccessRequestRecord {
	return &AccessRequestRecord{
		ID:             r.ID,
		Username:       r.Username,
		Description:    r.Description,
		Date:           r.CreatedAt.Format(wireDateLayout),
		Status:         string(r.Status),
		ReopenedFromID: r.ReopenedFromID,
		IsReopened:     r.IsReopened(),
	}
}

// TrustWeightRecord is the caller-facing shape of a trust edge. Weight is
// string-encoded on the wire.
type TrustWeightRecord struct {
	TrusteeUsername string `json:"trustee_username"`
	Weight          string `json:"weight"`
}

func NewTrustWeightRecord(w *TrustWeight) *TrustWeightRecord {
	return &TrustWeightRecord{
		TrusteeUsername: w.TrusteeUsername,
		Weight:          strconv.Itoa(w.Weight),
	}
}

// ContentFlagRecord is the caller-facing shape of a moderation flag.
type ContentFlagRecord struct {
	ID             uint   `json:"id"`
	TargetType     string `json:"target_type"`
	TargetID       string `json:"target_id"`
	FlaggedBy      string `json:"flagged_by"`
	Date           string `json:"date"`
	Reason         string `json:"reason"`
	ContentSnippet string `json:"content_snippet"`
	Resolved       bool   `json:"resolved"`
}

func NewContentFlagRecord(f *ContentFlag) *ContentFlagRecord {
	return &ContentFlagRecord{
		ID:             f.ID,
		TargetType:     string(f.TargetType),
		TargetID:       f.TargetID,
		FlaggedBy:      f.FlaggedBy,
		Date:           f.CreatedAt.Format(wireDateLayout),
		Reason:         f.Reason,
		ContentSnippet: f.ContentSnippet,
		Resolved:       f.Resolved,
	}
}

// CapabilityListing is the caller-facing view of an identity's capability
// set. SelectableRoles never includes the restricted token, so role pickers
// can render it directly.
type CapabilityListing struct {
	Username        string   `json:"username"`
	SelectableRoles []string `json:"roles"`
	Restricted      bool     `json:"restricted"`
}

func NewCapabilityListing(i *Identity) *CapabilityListing {
	roles := make([]string, 0, len(i.Roles))
	for _, r := range i.Roles {
		roles = append(roles, string(r))
	}
	return &CapabilityListing{
		Username:        i.Username,
		SelectableRoles: roles,
		Restricted:      i.Restricted,
	}
}
