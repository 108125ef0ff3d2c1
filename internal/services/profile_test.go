package services

import (
	"context"
	"errors"
	"testing"

	"github.com/beaconsafety/beacon-server/internal/models"
)

func TestProfileService_Create_NormalizesEmail(t *testing.T) {
	env := newTestEnv(t)

	profile, err := env.profiles.Create(context.Background(), models.CreateProfileParams{
		Name:     "Alice",
		Username: "alice",
		Email:    "  Alice@Example.COM ",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profile.Email != "alice@example.com" {
		t.Fatalf("expected normalized email, got %q", profile.Email)
	}
	if profile.ProfileType != models.ProfileTypePublic {
		t.Fatalf("expected default public profile, got %q", profile.ProfileType)
	}
	if profile.ID == "" {
		t.Fatal("expected generated profile ID")
	}
}

func TestProfileService_Create_MissingFields(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.profiles.Create(context.Background(), models.CreateProfileParams{
		Name:  "Alice",
		Email: "alice@example.com",
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestProfileService_Create_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.createProfile(t, "Alice", "alice", "alice@example.com")

	_, err := env.profiles.Create(context.Background(), models.CreateProfileParams{
		Name:     "Other",
		Username: "other",
		Email:    "ALICE@example.com",
	})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestProfileService_Create_DuplicateUsername(t *testing.T) {
	env := newTestEnv(t)
	env.createProfile(t, "Alice", "alice", "alice@example.com")

	_, err := env.profiles.Create(context.Background(), models.CreateProfileParams{
		Name:     "Other",
		Username: "alice",
		Email:    "other@example.com",
	})
	if !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestProfileService_GetByID_NotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.profiles.GetByID(context.Background(), "missing")
	if !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestProfileService_FindByEmailOrUsername_EmailBeforeUsername(t *testing.T) {
	env := newTestEnv(t)
	// bob's username equals alice's email local part scenario: one profile
	// matches by email, another by username, for the same query string.
	byEmail := env.createProfile(t, "Alice", "alice", "taken@example.com")
	byUsername := env.createProfile(t, "Bob", "taken@example.com", "bob@example.com")

	profiles, err := env.profiles.FindByEmailOrUsername(context.Background(), "taken@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(profiles) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(profiles))
	}
	if profiles[0].ID != byEmail.ID {
		t.Fatalf("expected email match first, got %q", profiles[0].Username)
	}
	if profiles[1].ID != byUsername.ID {
		t.Fatalf("expected username match second, got %q", profiles[1].Username)
	}
}

func TestProfileService_FindByEmailOrUsername_DeduplicatesSelfMatch(t *testing.T) {
	env := newTestEnv(t)
	env.createProfile(t, "Alice", "alice@example.com", "alice@example.com")

	profiles, err := env.profiles.FindByEmailOrUsername(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(profiles) != 1 {
		t.Fatalf("expected the doc once, got %d matches", len(profiles))
	}
}

func TestProfileService_Update_Fields(t *testing.T) {
	env := newTestEnv(t)
	profile := env.createProfile(t, "Alice", "alice", "alice@example.com")

	name := "Alice B."
	private := models.ProfileTypePrivate
	photo := "https://cdn.example.com/alice.png"
	updated, err := env.profiles.Update(context.Background(), profile.ID, models.UpdateProfileParams{
		Name:        &name,
		ProfileType: &private,
		PhotoURL:    &photo,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Name != name || updated.ProfileType != private || updated.PhotoURL != photo {
		t.Fatalf("unexpected updated profile: %+v", updated)
	}
	if updated.Username != "alice" || updated.Email != "alice@example.com" {
		t.Fatalf("untouched fields changed: %+v", updated)
	}
}

func TestProfileService_Update_NoFieldsReturnsCurrent(t *testing.T) {
	env := newTestEnv(t)
	profile := env.createProfile(t, "Alice", "alice", "alice@example.com")

	updated, err := env.profiles.Update(context.Background(), profile.ID, models.UpdateProfileParams{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Name != "Alice" {
		t.Fatalf("unexpected profile: %+v", updated)
	}
}

func TestProfileService_Update_InvalidProfileType(t *testing.T) {
	env := newTestEnv(t)
	profile := env.createProfile(t, "Alice", "alice", "alice@example.com")

	bogus := models.ProfileType("hidden")
	_, err := env.profiles.Update(context.Background(), profile.ID, models.UpdateProfileParams{ProfileType: &bogus})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
