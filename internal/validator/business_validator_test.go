package validator

import (
	"testing"

	"github.com/campus-qa/access-control-service/internal/models"
)

func TestBusinessValidator_CustomRules(t *testing.T) {
	v := New()

	t.Run("capability tokens", func(t *testing.T) {
		if err := v.Validate(GrantCapabilityRequest{Capability: "Reviewer"}); err != nil {
			t.Errorf("Reviewer should pass: %v", err)
		}
		if err := v.Validate(GrantCapabilityRequest{Capability: "Restricted"}); err == nil {
			t.Error("Restricted is not a selectable capability")
		}
		if err := v.Validate(GrantCapabilityRequest{Capability: "reviewer"}); err == nil {
			t.Error("tokens are case sensitive")
		}
	})

	t.Run("trust weight range", func(t *testing.T) {
		for _, w := range []int{0, 1, 5} {
			req := SetTrustWeightRequest{TrusterUsername: "a", TrusteeUsername: "b", Weight: w}
			if err := v.Validate(req); err != nil {
				t.Errorf("weight %d should pass: %v", w, err)
			}
		}
		for _, w := range []int{-1, 6} {
			req := SetTrustWeightRequest{TrusterUsername: "a", TrusteeUsername: "b", Weight: w}
			if err := v.Validate(req); err == nil {
				t.Errorf("weight %d should fail", w)
			}
		}
	})

	t.Run("flag targets", func(t *testing.T) {
		base := FlagContentRequest{TargetID: "x", FlaggedBy: "m", Reason: "spam"}
		for _, target := range []string{"Question", "Answer", "Feedback"} {
			req := base
			req.TargetType = target
			if err := v.Validate(req); err != nil {
				t.Errorf("%s should pass: %v", target, err)
			}
		}
		req := base
		req.TargetType = "Comment"
		if err := v.Validate(req); err == nil {
			t.Error("Comment should fail")
		}
	})

	t.Run("notblank rejects whitespace", func(t *testing.T) {
		req := SubmitAccessRequest{Username: "a", Reason: "   "}
		if err := v.Validate(req); err == nil {
			t.Error("whitespace reason should fail")
		}
	})

	t.Run("audit date layouts", func(t *testing.T) {
		base := CloseAccessRequest{Username: "a", Reason: "done"}
		for _, date := range []string{"2025-06-01", "2025-06-01T10:00:00Z"} {
			req := base
			req.Date = date
			if err := v.Validate(req); err != nil {
				t.Errorf("date %q should pass: %v", date, err)
			}
		}
		req := base
		req.Date = "01/06/2025"
		if err := v.Validate(req); err == nil {
			t.Error("slash date should fail")
		}
	})
}

func TestBusinessValidator_ValidateStatusTransition(t *testing.T) {
	bv := NewBusinessValidator()

	allowed := []struct{ from, to models.RequestStatus }{
		{models.RequestPending, models.RequestApproved},
		{models.RequestPending, models.RequestDenied},
		{models.RequestApproved, models.RequestClosed},
		{models.RequestDenied, models.RequestClosed},
	}
	for _, tc := range allowed {
		if errs := bv.ValidateStatusTransition(tc.from, tc.to); len(errs) != 0 {
			t.Errorf("%s -> %s should be allowed: %v", tc.from, tc.to, errs)
		}
	}

	denied := []struct{ from, to models.RequestStatus }{
		{models.RequestPending, models.RequestClosed},
		{models.RequestApproved, models.RequestPending},
		{models.RequestApproved, models.RequestDenied},
		{models.RequestClosed, models.RequestPending},
		{models.RequestClosed, models.RequestApproved},
	}
	for _, tc := range denied {
		if errs := bv.ValidateStatusTransition(tc.from, tc.to); len(errs) == 0 {
			t.Errorf("%s -> %s should be rejected", tc.from, tc.to)
		}
	}
}

func TestParseAuditDate(t *testing.T) {
	if _, err := ParseAuditDate("2025-06-01"); err != nil {
		t.Errorf("plain date failed: %v", err)
	}
	if _, err := ParseAuditDate("2025-06-01T10:00:00Z"); err != nil {
		t.Errorf("RFC3339 failed: %v", err)
	}
	if _, err := ParseAuditDate("June 1"); err == nil {
		t.Error("expected error for free-form date")
	}
}
