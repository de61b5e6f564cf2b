package activity

import (
	"context"
	"testing"
	"time"

	"github.com/angelmondragon/comptoir-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/comptoir-backend/pkg/errors"
	"github.com/angelmondragon/comptoir-backend/pkg/store/storetest"
)

type stepClock struct {
	at time.Time
}

func (c *stepClock) now() time.Time {
	c.at = c.at.Add(time.Second)
	return c.at
}

func newTestService(t *testing.T) Service {
	t.Helper()
	clock := &stepClock{at: time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)}
	svc, err := NewService(NewRepository(storetest.NewStore(t)), clock.now)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestRecordDefaultsUnknownRole(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	if err := svc.Record(ctx, "  ", ActionNavigation, "Accès à la section tables"); err != nil {
		t.Fatalf("record: %v", err)
	}
	res, err := svc.List(ctx, ListParams{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(res.Items) != 1 || res.Items[0].Role != models.UnknownRecorder {
		t.Fatalf("unexpected entries %+v", res.Items)
	}
}

func TestRecordRejectsEmptyAction(t *testing.T) {
	svc := newTestService(t)
	err := svc.Record(context.Background(), "patron", "", "")
	if pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestListNewestFirstWithRoleFilterAndPaging(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	for _, role := range []string{"patron", "doc-emp", "patron", "patron"} {
		if err := svc.Record(ctx, role, ActionLogin, ""); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	first, err := svc.List(ctx, ListParams{Role: "patron", Limit: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(first.Items) != 2 || first.Cursor == "" {
		t.Fatalf("expected a full first page with cursor, got %+v", first)
	}
	if !first.Items[0].Timestamp.After(first.Items[1].Timestamp) {
		t.Fatal("expected newest entry first")
	}

	second, err := svc.List(ctx, ListParams{Role: "patron", Limit: 2, Cursor: first.Cursor})
	if err != nil {
		t.Fatalf("list page 2: %v", err)
	}
	if len(second.Items) != 1 || second.Cursor != "" {
		t.Fatalf("expected last page with one entry, got %+v", second)
	}
	for _, entry := range append(first.Items, second.Items...) {
		if entry.Role != "patron" {
			t.Fatalf("role filter leaked %+v", entry)
		}
	}
}

func TestListRejectsBadCursor(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.List(context.Background(), ListParams{Cursor: "!!"})
	if pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
