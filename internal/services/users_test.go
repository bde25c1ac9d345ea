package services_test

import (
	"errors"
	"testing"

	"signal-bot-backend/internal/config"
	"signal-bot-backend/internal/services"
)

func setupTestUsers(t *testing.T) *services.UserService {
	cfg := &config.Config{SQLitePath: ":memory:"}
	userService, err := services.NewUserService(cfg)
	if err != nil {
		t.Fatalf("Failed to open in-memory registry: %v", err)
	}
	return userService
}

func TestUserRegistry(t *testing.T) {
	users := setupTestUsers(t)
	userID := int64(555001)

	if users.IsApproved(userID) {
		t.Error("Unknown user must not be approved")
	}

	if err := users.UpsertUser(userID, "heidi"); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	first, err := users.GetUser(userID)
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if first.Approved {
		t.Error("Fresh user must start unapproved")
	}

	// Upsert is idempotent: same call, same state.
	if err := users.UpsertUser(userID, "heidi"); err != nil {
		t.Fatalf("Second upsert failed: %v", err)
	}
	again, _ := users.GetUser(userID)
	if *again != *first {
		t.Errorf("Repeated upsert changed state: %+v vs %+v", again, first)
	}

	// A username refresh never clobbers approval or the join time.
	if err := users.SetApproval(userID, true); err != nil {
		t.Fatalf("SetApproval failed: %v", err)
	}
	if err := users.UpsertUser(userID, "heidi_renamed"); err != nil {
		t.Fatalf("Rename upsert failed: %v", err)
	}
	renamed, _ := users.GetUser(userID)
	if renamed.Username != "heidi_renamed" {
		t.Errorf("Username not updated, got %q", renamed.Username)
	}
	if !renamed.Approved {
		t.Error("Upsert must not reset approval")
	}
	if !renamed.JoinedAt.Equal(first.JoinedAt) {
		t.Errorf("Upsert must not touch JoinedAt: %v vs %v", renamed.JoinedAt, first.JoinedAt)
	}
}

func TestUserRegistryLinking(t *testing.T) {
	users := setupTestUsers(t)
	userID := int64(555002)

	if err := users.LinkPlatformUID(userID, "DK-123"); !errors.Is(err, services.ErrNotFound) {
		t.Errorf("Linking unknown user should be ErrNotFound, got %v", err)
	}
	if err := users.SetApproval(userID, true); !errors.Is(err, services.ErrNotFound) {
		t.Errorf("Approving unknown user should be ErrNotFound, got %v", err)
	}

	users.UpsertUser(userID, "ivan")
	if err := users.LinkPlatformUID(userID, "DK-123"); err != nil {
		t.Fatalf("Link failed: %v", err)
	}

	// Re-linking overwrites the previous value.
	if err := users.LinkPlatformUID(userID, "DK-456"); err != nil {
		t.Fatalf("Re-link failed: %v", err)
	}
	u, _ := users.GetUser(userID)
	if u.PlatformUID != "DK-456" {
		t.Errorf("Expected DK-456, got %q", u.PlatformUID)
	}
	if u.Approved {
		t.Error("Linking must not touch approval")
	}
}

func TestUserRegistryListing(t *testing.T) {
	users := setupTestUsers(t)

	for i := int64(1); i <= 3; i++ {
		if err := users.UpsertUser(555100+i, ""); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
	}

	all, err := users.ListUsers()
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("Expected 3 users, got %d", len(all))
	}
}
