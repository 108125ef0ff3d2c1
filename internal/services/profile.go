package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/beaconsafety/beacon-server/internal/docstore"
	"github.com/beaconsafety/beacon-server/internal/models"
)

type ProfileService struct {
	store docstore.Store
}

func NewProfileService(store docstore.Store) *ProfileService {
	return &ProfileService{store: store}
}

func (s *ProfileService) Create(ctx context.Context, params models.CreateProfileParams) (*models.UserProfile, error) {
	params.Email = strings.ToLower(strings.TrimSpace(params.Email))
	params.Username = strings.TrimSpace(params.Username)
	params.Name = strings.TrimSpace(params.Name)
	if params.Email == "" || params.Username == "" || params.Name == "" {
		return nil, ErrInvalidInput
	}
	if params.ProfileType == "" {
		params.ProfileType = models.ProfileTypePublic
	}

	taken, err := s.exists(ctx, "email", params.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailTaken
	}
	taken, err = s.exists(ctx, "username", params.Username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrUsernameTaken
	}

	profile := &models.UserProfile{
		ID:          uuid.NewString(),
		Name:        params.Name,
		Username:    params.Username,
		Email:       params.Email,
		ProfileType: params.ProfileType,
		JoinDate:    time.Now().UTC(),
	}

	fields, err := docstore.FieldsOf(profile)
	if err != nil {
		return nil, err
	}
	if err := s.store.Set(ctx, colProfiles, profile.ID, fields); err != nil {
		return nil, fmt.Errorf("creating profile: %w", err)
	}

	return profile, nil
}

func (s *ProfileService) GetByID(ctx context.Context, id string) (*models.UserProfile, error) {
	doc, err := s.store.Get(ctx, colProfiles, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting profile: %w", err)
	}

	profile := &models.UserProfile{}
	if err := doc.DataTo(profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *ProfileService) GetByEmail(ctx context.Context, email string) (*models.UserProfile, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	docs, err := s.store.Query(ctx, colProfiles, docstore.Eq("email", email))
	if err != nil {
		return nil, fmt.Errorf("querying profile by email: %w", err)
	}
	if len(docs) == 0 {
		return nil, ErrProfileNotFound
	}

	profile := &models.UserProfile{}
	if err := docs[0].DataTo(profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// FindByEmailOrUsername resolves a query against profiles by exact email
// or exact username match. Email matches are returned before username
// matches; the caller applies its own eligibility rules.
func (s *ProfileService) FindByEmailOrUsername(ctx context.Context, query string) ([]models.UserProfile, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	byEmail, err := s.store.Query(ctx, colProfiles, docstore.Eq("email", strings.ToLower(query)))
	if err != nil {
		return nil, fmt.Errorf("querying profiles by email: %w", err)
	}
	byUsername, err := s.store.Query(ctx, colProfiles, docstore.Eq("username", query))
	if err != nil {
		return nil, fmt.Errorf("querying profiles by username: %w", err)
	}

	seen := map[string]struct{}{}
	var profiles []models.UserProfile
	for _, doc := range append(byEmail, byUsername...) {
		if _, ok := seen[doc.ID]; ok {
			continue
		}
		seen[doc.ID] = struct{}{}

		var p models.UserProfile
		if err := doc.DataTo(&p); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

func (s *ProfileService) Update(ctx context.Context, userID string, params models.UpdateProfileParams) (*models.UserProfile, error) {
	var updates []docstore.Update
	if params.Name != nil {
		if strings.TrimSpace(*params.Name) == "" {
			return nil, ErrInvalidInput
		}
		updates = append(updates, docstore.SetField(strings.TrimSpace(*params.Name), "name"))
	}
	if params.ProfileType != nil {
		if *params.ProfileType != models.ProfileTypePublic && *params.ProfileType != models.ProfileTypePrivate {
			return nil, ErrInvalidInput
		}
		updates = append(updates, docstore.SetField(*params.ProfileType, "profileType"))
	}
	if params.PhotoURL != nil {
		updates = append(updates, docstore.SetField(*params.PhotoURL, "photoUrl"))
	}
	if len(updates) == 0 {
		return s.GetByID(ctx, userID)
	}

	err := s.store.Update(ctx, colProfiles, userID, updates)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("updating profile: %w", err)
	}

	return s.GetByID(ctx, userID)
}

func (s *ProfileService) exists(ctx context.Context, field, value string) (bool, error) {
	docs, err := s.store.Query(ctx, colProfiles, docstore.Eq(field, value))
	if err != nil {
		return false, fmt.Errorf("checking profile %s: %w", field, err)
	}
	return len(docs) > 0, nil
}
