package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"newsly/internal/core"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestUserLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user, err := s.CreateUser(ctx, "jane@example.com", "Jane", `{"tone": "casual"}`)
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if user.ID == "" {
		t.Fatal("user should get an id")
	}

	got, err := s.GetUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if got.Email != "jane@example.com" || got.Spec != `{"tone": "casual"}` {
		t.Errorf("unexpected user: %+v", got)
	}

	byEmail, err := s.GetUserByEmail(ctx, "jane@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if byEmail.ID != user.ID {
		t.Error("lookup by email returned a different user")
	}

	newSpec := `{"tone": "technical"}`
	updated, err := s.UpdateUser(ctx, user.ID, &newSpec, nil)
	if err != nil {
		t.Fatalf("UpdateUser failed: %v", err)
	}
	if updated.Spec != newSpec {
		t.Errorf("spec not updated: %q", updated.Spec)
	}
	if updated.Name != "Jane" {
		t.Errorf("nil name pointer should leave name untouched, got %q", updated.Name)
	}
	if !updated.UpdatedAt.After(user.CreatedAt.Add(-time.Second)) {
		t.Error("updated_at should move forward")
	}

	if err := s.DeleteUser(ctx, user.ID); err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}
	if _, err := s.GetUser(ctx, user.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleted user should be gone, got %v", err)
	}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.CreateUser(ctx, "dup@example.com", "", "{}"); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	if _, err := s.CreateUser(ctx, "dup@example.com", "", "{}"); err == nil {
		t.Error("duplicate email should fail")
	}
}

func TestGetUser_NotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.GetUser(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteUser_NotFound(t *testing.T) {
	s := newTestStore(t)
	if err := s.DeleteUser(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListUsers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		if _, err := s.CreateUser(ctx, email, "", "{}"); err != nil {
			t.Fatalf("create %s: %v", email, err)
		}
	}

	users, err := s.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(users) != 3 {
		t.Errorf("expected 3 users, got %d", len(users))
	}
}

func TestNewsletterHistory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user, err := s.CreateUser(ctx, "reader@example.com", "Reader", "{}")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	other, err := s.CreateUser(ctx, "other@example.com", "", "{}")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := s.SaveNewsletter(ctx, user.ID, core.NewsletterContent{
			Subject: "issue",
			Content: "<p>body</p>",
		}); err != nil {
			t.Fatalf("SaveNewsletter failed: %v", err)
		}
	}
	if _, err := s.SaveNewsletter(ctx, other.ID, core.NewsletterContent{Subject: "x", Content: "y"}); err != nil {
		t.Fatalf("SaveNewsletter failed: %v", err)
	}

	byUser, err := s.ListNewslettersByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListNewslettersByUser failed: %v", err)
	}
	if len(byUser) != 3 {
		t.Errorf("expected 3 issues for user, got %d", len(byUser))
	}

	all, err := s.ListNewsletters(ctx)
	if err != nil {
		t.Fatalf("ListNewsletters failed: %v", err)
	}
	if len(all) != 4 {
		t.Errorf("expected 4 issues overall, got %d", len(all))
	}
	for _, nl := range all {
		if nl.UserEmail == "" {
			t.Error("global history should carry user email")
		}
	}
}

func TestDeleteUser_CascadesNewsletters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user, err := s.CreateUser(ctx, "gone@example.com", "", "{}")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if _, err := s.SaveNewsletter(ctx, user.ID, core.NewsletterContent{Subject: "s", Content: "c"}); err != nil {
		t.Fatalf("SaveNewsletter failed: %v", err)
	}

	if err := s.DeleteUser(ctx, user.ID); err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}

	issues, err := s.ListNewslettersByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListNewslettersByUser failed: %v", err)
	}
	if len(issues) != 0 {
		t.Errorf("newsletters should cascade on user delete, got %d", len(issues))
	}
}
