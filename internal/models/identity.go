package models

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

type Capability string

const (
	CapStudent    Capability = "Student"
	CapStaff      Capability = "Staff"
	CapInstructor Capability = "Instructor"
	CapReviewer   Capability = "Reviewer"
	CapAdmin      Capability = "Admin"
)

// restrictedToken is appended to the stored role string when the restricted
// overlay is set. It is never a selectable capability.
const restrictedToken = "Restricted"

// capabilityRank fixes the encoding order so the stored string is
// deterministic regardless of mutation order.
var capabilityRank = map[Capability]int{
	CapStudent:    0,
	CapStaff:      1,
	CapInstructor: 2,
	CapReviewer:   3,
	CapAdmin:      4,
}

// SelectableCapabilities lists every capability an identity may hold, in
// encoding order.
func SelectableCapabilities() []Capability {
	return []Capability{CapStudent, CapStaff, CapInstructor, CapReviewer, CapAdmin}
}

// IsValidCapability reports whether the token is one of the selectable
// capabilities. The restricted token is deliberately excluded.
func IsValidCapability(c Capability) bool {
	_, ok := capabilityRank[c]
	return ok
}

// RoleSet is an identity's capability set. The zero value is an empty set.
type RoleSet []Capability

func (rs RoleSet) Has(c Capability) bool {
	for _, r := range rs {
		if r == c {
			return true
		}
	}
	return false
}

// Add returns the set with c present, inserting it at its rank position.
func (rs RoleSet) Add(c Capability) RoleSet {
	if rs.Has(c) {
		return rs
	}
	out := append(RoleSet{}, rs...)
	out = append(out, c)
	out.normalize()
	return out
}

// Remove returns the set without c.
func (rs RoleSet) Remove(c Capability) RoleSet {
	out := RoleSet{}
	for _, r := range rs {
		if r != c {
			out = append(out, r)
		}
	}
	return out
}

// normalize sorts in place by capability rank. Insertion sort; sets hold at
// most five elements.
func (rs RoleSet) normalize() {
	for i := 1; i < len(rs); i++ {
		for j := i; j > 0 && capabilityRank[rs[j]] < capabilityRank[rs[j-1]]; j-- {
			rs[j], rs[j-1] = rs[j-1], rs[j]
		}
	}
}

// Identity is a portal account as seen by the access-control core. Credential
// data lives elsewhere; only the capability set and restriction overlay are
// owned here.
type Identity struct {
	Username   string  `json:"username" gorm:"primaryKey;size:255"`
	Roles      RoleSet `json:"roles" gorm:"-"`
	Restricted bool    `json:"restricted" gorm:"-"`

	// EncodedRoles is the storage form: comma-separated capability tokens
	// with Restricted appended when the overlay is set. Populated by the
	// gorm hooks below; never touched outside this package and the
	// repositories.
	EncodedRoles string `json:"-" gorm:"column:roles;not null;size:255"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Identity) TableName() string {
	return "identities"
}

// BeforeSave encodes the capability set into the delimited storage string.
func (i *Identity) BeforeSave(_ *gorm.DB) error {
	encoded, err := EncodeRoles(i.Roles, i.Restricted)
	if err != nil {
		return err
	}
	i.EncodedRoles = encoded
	return nil
}

// AfterFind decodes the storage string back into the capability set and
// restriction overlay.
func (i *Identity) AfterFind(_ *gorm.DB) error {
	roles, restricted, err := DecodeRoles(i.EncodedRoles)
	if err != nil {
		return fmt.Errorf("identity %s: %w", i.Username, err)
	}
	i.Roles = roles
	i.Restricted = restricted
	return nil
}

// EncodeRoles renders the wire/storage form of a capability set: tokens in
// rank order joined by commas, Restricted appended last when set.
func EncodeRoles(roles RoleSet, restricted bool) (string, error) {
	if len(roles) == 0 {
		return "", fmt.Errorf("role set must not be empty")
	}
	sorted := append(RoleSet{}, roles...)
	sorted.normalize()

	tokens := make([]string, 0, len(sorted)+1)
	for _, r := range sorted {
		if !IsValidCapability(r) {
			return "", fmt.Errorf("unknown capability %q", r)
		}
		tokens = append(tokens, string(r))
	}
	if restricted {
		tokens = append(tokens, restrictedToken)
	}
	return strings.Join(tokens, ","), nil
}

// DecodeRoles parses the stored delimited string. The Restricted token sets
// the overlay and is not returned as a capability.
func DecodeRoles(encoded string) (RoleSet, bool, error) {
	if encoded == "" {
		return nil, false, fmt.Errorf("empty role string")
	}

	var roles RoleSet
	restricted := false
	for _, token := range strings.Split(encoded, ",") {
		if token == restrictedToken {
			restricted = true
			continue
		}
		c := Capability(token)
		if !IsValidCapability(c) {
			return nil, false, fmt.Errorf("unknown capability token %q", token)
		}
		if !roles.Has(c) {
			roles = append(roles, c)
		}
	}
	if len(roles) == 0 {
		return nil, false, fmt.Errorf("role string %q holds no capability", encoded)
	}
	roles.normalize()
	return roles, restricted, nil
}
