package models

import "time"

const (
	// TrustWeightMin marks absence of trust; rows at this weight are
	// deleted rather than stored.
	TrustWeightMin = 0
	// TrustWeightMax is the top of the 1-5 quality rating scale.
	TrustWeightMax = 5
)

// TrustWeight is one (truster, trustee) edge in the trust ledger. Weight is
// always in [1, TrustWeightMax] for stored rows; setting weight 0 removes the
// row, so the ledger never carries stale zero entries.
type TrustWeight struct {
	TrusterUsername string `json:"truster_username" gorm:"primaryKey;size:255"`
	TrusteeUsername string `json:"trustee_username" gorm:"primaryKey;size:255"`
	Weight          int    `json:"weight" gorm:"not null"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (TrustWeight) TableName() string {
	return "trust_weights"
}
