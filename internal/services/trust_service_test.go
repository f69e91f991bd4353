package services

import (
	"context"
	"errors"
	"testing"

	"github.com/campus-qa/access-control-service/internal/validator"
)

func newTrustServiceForTest() (TrustWeightService, *mockRepository) {
	repo := newMockRepository()
	svc := NewTrustWeightService(repo, testLogger(), validator.New())
	return svc, repo
}

func TestTrustWeightService_SetWeight(t *testing.T) {
	ctx := context.Background()

	t.Run("stores a weight in range", func(t *testing.T) {
		svc, _ := newTrustServiceForTest()

		if err := svc.SetWeight(ctx, "alice", "bob", 4); err != nil {
			t.Fatalf("SetWeight failed: %v", err)
		}
		weight, err := svc.GetWeight(ctx, "alice", "bob")
		if err != nil {
			t.Fatalf("GetWeight failed: %v", err)
		}
		if weight != 4 {
			t.Errorf("expected 4, got %d", weight)
		}
	})

	t.Run("overwrites an existing weight", func(t *testing.T) {
		svc, _ := newTrustServiceForTest()

		if err := svc.SetWeight(ctx, "alice", "bob", 2); err != nil {
			t.Fatalf("SetWeight failed: %v", err)
		}
		if err := svc.SetWeight(ctx, "alice", "bob", 5); err != nil {
			t.Fatalf("second SetWeight failed: %v", err)
		}
		weight, _ := svc.GetWeight(ctx, "alice", "bob")
		if weight != 5 {
			t.Errorf("expected 5, got %d", weight)
		}
	})

	t.Run("weight zero removes the row", func(t *testing.T) {
		svc, repo := newTrustServiceForTest()

		if err := svc.SetWeight(ctx, "alice", "bob", 3); err != nil {
			t.Fatalf("SetWeight failed: %v", err)
		}
		if err := svc.SetWeight(ctx, "alice", "bob", 0); err != nil {
			t.Fatalf("SetWeight 0 failed: %v", err)
		}
		if len(repo.weights) != 0 {
			t.Errorf("expected no stored rows, got %d", len(repo.weights))
		}
		weight, err := svc.GetWeight(ctx, "alice", "bob")
		if err != nil || weight != 0 {
			t.Errorf("expected 0 after removal, got %d (%v)", weight, err)
		}
	})

	t.Run("weight zero on an absent pair is fine", func(t *testing.T) {
		svc, _ := newTrustServiceForTest()

		if err := svc.SetWeight(ctx, "alice", "nobody", 0); err != nil {
			t.Errorf("SetWeight 0 on absent pair failed: %v", err)
		}
	})

	t.Run("rejects out-of-range weights", func(t *testing.T) {
		svc, _ := newTrustServiceForTest()

		for _, w := range []int{-1, 6, 100} {
			if err := svc.SetWeight(ctx, "alice", "bob", w); !errors.Is(err, ErrValidationFailed) {
				t.Errorf("weight %d: expected ErrValidationFailed, got %v", w, err)
			}
		}
	})

	t.Run("directions are independent", func(t *testing.T) {
		svc, _ := newTrustServiceForTest()

		if err := svc.SetWeight(ctx, "alice", "bob", 5); err != nil {
			t.Fatalf("SetWeight failed: %v", err)
		}
		reverse, err := svc.GetWeight(ctx, "bob", "alice")
		if err != nil {
			t.Fatalf("GetWeight failed: %v", err)
		}
		if reverse != 0 {
			t.Errorf("reverse direction must stay 0, got %d", reverse)
		}
	})
}

func TestTrustWeightService_GetWeight(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTrustServiceForTest()

	// Absence is zero, never an error.
	weight, err := svc.GetWeight(ctx, "nobody", "nothing")
	if err != nil {
		t.Fatalf("GetWeight on absent pair failed: %v", err)
	}
	if weight != 0 {
		t.Errorf("expected 0, got %d", weight)
	}
}

func TestTrustWeightService_ListTrusted(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTrustServiceForTest()

	if err := svc.SetWeight(ctx, "alice", "bob", 3); err != nil {
		t.Fatalf("SetWeight failed: %v", err)
	}
	if err := svc.SetWeight(ctx, "alice", "carol", 5); err != nil {
		t.Fatalf("SetWeight failed: %v", err)
	}
	if err := svc.SetWeight(ctx, "alice", "dave", 1); err != nil {
		t.Fatalf("SetWeight failed: %v", err)
	}
	if err := svc.SetWeight(ctx, "alice", "dave", 0); err != nil {
		t.Fatalf("SetWeight 0 failed: %v", err)
	}
	if err := svc.SetWeight(ctx, "eve", "bob", 2); err != nil {
		t.Fatalf("SetWeight failed: %v", err)
	}

	trusted, err := svc.ListTrusted(ctx, "alice")
	if err != nil {
		t.Fatalf("ListTrusted failed: %v", err)
	}
	if len(trusted) != 2 {
		t.Fatalf("expected 2 trusted pairs, got %d", len(trusted))
	}
	if trusted[0].TrusteeUsername != "bob" || trusted[0].Weight != "3" {
		t.Errorf("unexpected first record: %+v", trusted[0])
	}
	if trusted[1].TrusteeUsername != "carol" || trusted[1].Weight != "5" {
		t.Errorf("unexpected second record: %+v", trusted[1])
	}
}
