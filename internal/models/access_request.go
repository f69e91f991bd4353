package models

import (
	"time"
)

type RequestStatus string

const (
	RequestPending  RequestStatus = "Pending"
	RequestApproved RequestStatus = "Approved"
	RequestDenied   RequestStatus = "Denied"
	RequestClosed   RequestStatus = "Closed"
)

// ReopenedPrefix is prepended to the description of a request created by
// reopening a closed one.
const ReopenedPrefix = "Reopened: "

// AccessRequest is one entry in the elevation-request ledger. Status is the
// single source of truth; the version column guards every transition so two
// concurrent writers cannot both win.
type AccessRequest struct {
	ID          uint          `json:"id" gorm:"primaryKey"`
	Username    string        `json:"username" gorm:"not null;index;size:255"`
	Description string        `json:"description" gorm:"not null;type:text"`
	Status      RequestStatus `json:"status" gorm:"not null;default:Pending;index"`

	// ReopenedFromID links a request created by reopen back to the closed
	// record it supersedes. The closed record itself is never mutated.
	ReopenedFromID *uint `json:"reopened_from_id" gorm:"index"`

	// Version is bumped on every status transition; compare-and-swap
	// updates match on it.
	Version int `json:"version" gorm:"not null;default:1"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (AccessRequest) TableName() string {
	return "access_requests"
}

// IsReopened reports whether this request supersedes a closed one.
func (r *AccessRequest) IsReopened() bool {
	return r.ReopenedFromID != nil && *r.ReopenedFromID > 0
}

// IsTerminal reports whether no further transition is permitted.
func (r *AccessRequest) IsTerminal() bool {
	return r.Status == RequestClosed
}
