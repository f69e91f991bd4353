package models

import (
	"reflect"
	"testing"
)

func TestEncodeRoles(t *testing.T) {
	tests := []struct {
		name       string
		roles      RoleSet
		restricted bool
		want       string
		wantErr    bool
	}{
		{
			name:  "single capability",
			roles: RoleSet{CapStudent},
			want:  "Student",
		},
		{
			name:  "rank order regardless of input order",
			roles: RoleSet{CapAdmin, CapStudent, CapReviewer},
			want:  "Student,Reviewer,Admin",
		},
		{
			name:       "restricted appended last",
			roles:      RoleSet{CapInstructor, CapStaff},
			restricted: true,
			want:       "Staff,Instructor,Restricted",
		},
		{
			name:    "empty set rejected",
			roles:   RoleSet{},
			wantErr: true,
		},
		{
			name:    "unknown token rejected",
			roles:   RoleSet{"Wizard"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeRoles(tt.roles, tt.restricted)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("EncodeRoles failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestDecodeRoles(t *testing.T) {
	t.Run("plain set", func(t *testing.T) {
		roles, restricted, err := DecodeRoles("Student,Reviewer")
		if err != nil {
			t.Fatalf("DecodeRoles failed: %v", err)
		}
		if restricted {
			t.Error("unexpected restriction")
		}
		if !reflect.DeepEqual(roles, RoleSet{CapStudent, CapReviewer}) {
			t.Errorf("unexpected roles %v", roles)
		}
	})

	t.Run("restricted token sets the overlay only", func(t *testing.T) {
		roles, restricted, err := DecodeRoles("Instructor,Restricted")
		if err != nil {
			t.Fatalf("DecodeRoles failed: %v", err)
		}
		if !restricted {
			t.Error("restriction not decoded")
		}
		if roles.Has("Restricted") {
			t.Error("Restricted leaked into the capability set")
		}
	})

	t.Run("duplicates collapse", func(t *testing.T) {
		roles, _, err := DecodeRoles("Student,Student,Staff")
		if err != nil {
			t.Fatalf("DecodeRoles failed: %v", err)
		}
		if !reflect.DeepEqual(roles, RoleSet{CapStudent, CapStaff}) {
			t.Errorf("unexpected roles %v", roles)
		}
	})

	t.Run("rejects empty and garbage", func(t *testing.T) {
		for _, encoded := range []string{"", "Restricted", "Student,Wizard"} {
			if _, _, err := DecodeRoles(encoded); err == nil {
				t.Errorf("expected error for %q", encoded)
			}
		}
	})

	t.Run("case sensitive tokens", func(t *testing.T) {
		if _, _, err := DecodeRoles("student"); err == nil {
			t.Error("expected error for lowercase token")
		}
	})
}

func TestRoleSet(t *testing.T) {
	t.Run("add keeps rank order and is idempotent", func(t *testing.T) {
		rs := RoleSet{CapAdmin}
		rs = rs.Add(CapStudent)
		rs = rs.Add(CapStudent)
		if !reflect.DeepEqual(rs, RoleSet{CapStudent, CapAdmin}) {
			t.Errorf("unexpected set %v", rs)
		}
	})

	t.Run("remove", func(t *testing.T) {
		rs := RoleSet{CapStudent, CapStaff}
		rs = rs.Remove(CapStaff)
		if rs.Has(CapStaff) || !rs.Has(CapStudent) {
			t.Errorf("unexpected set %v", rs)
		}
	})
}

func TestAccessRequest_IsReopened(t *testing.T) {
	var zero uint
	one := uint(1)

	if (&AccessRequest{}).IsReopened() {
		t.Error("nil link must not read as reopened")
	}
	if (&AccessRequest{ReopenedFromID: &zero}).IsReopened() {
		t.Error("zero link must not read as reopened")
	}
	if !(&AccessRequest{ReopenedFromID: &one}).IsReopened() {
		t.Error("positive link must read as reopened")
	}
}
