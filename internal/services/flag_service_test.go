package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/campus-qa/access-control-service/internal/events"
	"github.com/campus-qa/access-control-service/internal/models"
	"github.com/campus-qa/access-control-service/internal/validator"
)

func newFlagServiceForTest(reader ContentReader) (ContentFlagService, *mockRepository, *events.MockEventPublisher) {
	repo := newMockRepository()
	publisher := events.NewMockEventPublisher(testLogger())
	svc := NewContentFlagService(repo, testLogger(), validator.New(), publisher, reader)
	return svc, repo, publisher
}

func TestContentFlagService_Flag(t *testing.T) {
	ctx := context.Background()

	t.Run("creates an unresolved flag with a content snippet", func(t *testing.T) {
		reader := &stubContentReader{snippet: "What is the derivative of x^2?"}
		svc, repo, publisher := newFlagServiceForTest(reader)

		record, err := svc.Flag(ctx, models.FlagTargetQuestion, "q-42", "moderator1", "spam")
		if err != nil {
			t.Fatalf("Flag failed: %v", err)
		}
		if record.Resolved {
			t.Error("fresh flag must be unresolved")
		}
		if record.ContentSnippet != reader.snippet {
			t.Errorf("snippet not captured: %q", record.ContentSnippet)
		}
		if reader.calls != 1 {
			t.Errorf("expected one content read, got %d", reader.calls)
		}
		if repo.flags[record.ID] == nil {
			t.Fatal("flag not stored")
		}

		published := publisher.GetPublishedEvents()
		if len(published) != 1 || published[0].Type != events.TypeFlagCreated {
			t.Errorf("expected flag_created event, got %v", published)
		}
	})

	t.Run("content store failure does not block the flag", func(t *testing.T) {
		reader := &stubContentReader{err: fmt.Errorf("content store down")}
		svc, _, _ := newFlagServiceForTest(reader)

		record, err := svc.Flag(ctx, models.FlagTargetAnswer, "a-7", "moderator1", "abuse")
		if err != nil {
			t.Fatalf("Flag failed: %v", err)
		}
		if record.ContentSnippet != "" {
			t.Errorf("expected empty snippet, got %q", record.ContentSnippet)
		}
	})

	t.Run("works without a content reader", func(t *testing.T) {
		svc, _, _ := newFlagServiceForTest(nil)

		if _, err := svc.Flag(ctx, models.FlagTargetFeedback, "f-1", "moderator1", "off topic"); err != nil {
			t.Fatalf("Flag failed: %v", err)
		}
	})

	t.Run("rejects unknown target type", func(t *testing.T) {
		svc, _, _ := newFlagServiceForTest(nil)

		_, err := svc.Flag(ctx, "Comment", "c-1", "moderator1", "spam")
		if !errors.Is(err, ErrValidationFailed) {
			t.Errorf("expected ErrValidationFailed, got %v", err)
		}
	})

	t.Run("rejects blank reason", func(t *testing.T) {
		svc, _, _ := newFlagServiceForTest(nil)

		_, err := svc.Flag(ctx, models.FlagTargetQuestion, "q-1", "moderator1", "  ")
		if !errors.Is(err, ErrValidationFailed) {
			t.Errorf("expected ErrValidationFailed, got %v", err)
		}
	})
}

func TestContentFlagService_Resolve(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves an open flag", func(t *testing.T) {
		svc, repo, publisher := newFlagServiceForTest(nil)

		record, err := svc.Flag(ctx, models.FlagTargetQuestion, "q-1", "moderator1", "spam")
		if err != nil {
			t.Fatalf("Flag failed: %v", err)
		}
		publisher.ClearEvents()

		if err := svc.Resolve(ctx, record.ID); err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		if !repo.flags[record.ID].Resolved {
			t.Error("flag not resolved in store")
		}

		published := publisher.GetPublishedEvents()
		if len(published) != 1 || published[0].Type != events.TypeFlagResolved {
			t.Errorf("expected flag_resolved event, got %v", published)
		}
	})

	t.Run("resolved is terminal", func(t *testing.T) {
		svc, _, _ := newFlagServiceForTest(nil)

		record, err := svc.Flag(ctx, models.FlagTargetQuestion, "q-1", "moderator1", "spam")
		if err != nil {
			t.Fatalf("Flag failed: %v", err)
		}
		if err := svc.Resolve(ctx, record.ID); err != nil {
			t.Fatalf("first Resolve failed: %v", err)
		}
		if err := svc.Resolve(ctx, record.ID); !errors.Is(err, ErrAlreadyResolved) {
			t.Errorf("expected ErrAlreadyResolved, got %v", err)
		}
	})

	t.Run("unknown flag id", func(t *testing.T) {
		svc, _, _ := newFlagServiceForTest(nil)

		if err := svc.Resolve(ctx, 9999); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestContentFlagService_Lists(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newFlagServiceForTest(nil)

	first, err := svc.Flag(ctx, models.FlagTargetQuestion, "q-1", "moderator1", "spam")
	if err != nil {
		t.Fatalf("Flag failed: %v", err)
	}
	second, err := svc.Flag(ctx, models.FlagTargetAnswer, "a-2", "moderator2", "abuse")
	if err != nil {
		t.Fatalf("Flag failed: %v", err)
	}
	if err := svc.Resolve(ctx, first.ID); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	unresolved, err := svc.ListUnresolved(ctx)
	if err != nil {
		t.Fatalf("ListUnresolved failed: %v", err)
	}
	if len(unresolved) != 1 || unresolved[0].ID != second.ID {
		t.Errorf("unexpected unresolved list: %+v", unresolved)
	}

	all, err := svc.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 flags, got %d", len(all))
	}
}
