package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/beaconsafety/beacon-server/internal/models"
	"github.com/beaconsafety/beacon-server/internal/services"
)

func authedRequest(method, target string, body *bytes.Buffer) *http.Request {
	var req *http.Request
	if body == nil {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, body)
	}
	return req.WithContext(SetUserInContext(req.Context(), &models.UserProfile{ID: "user-1", Username: "alice"}))
}

func TestProfileGet(t *testing.T) {
	profiles := &mockProfileService{
		GetByIDFunc: func(ctx context.Context, id string) (*models.UserProfile, error) {
			if id != "user-2" {
				return nil, services.ErrProfileNotFound
			}
			return &models.UserProfile{ID: "user-2", Username: "bob"}, nil
		},
	}
	handler := NewProfileHandler(profiles)

	req := authedRequest(http.MethodGet, "/api/profiles/user-2", nil)
	req.SetPathValue("id", "user-2")
	rr := httptest.NewRecorder()
	handler.Get(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var response ProfileResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if response.Profile == nil || response.Profile.Username != "bob" {
		t.Fatalf("expected bob's profile, got %+v", response.Profile)
	}
}

func TestProfileGet_NotFound(t *testing.T) {
	profiles := &mockProfileService{
		GetByIDFunc: func(ctx context.Context, id string) (*models.UserProfile, error) {
			return nil, services.ErrProfileNotFound
		},
	}
	handler := NewProfileHandler(profiles)

	req := authedRequest(http.MethodGet, "/api/profiles/missing", nil)
	req.SetPathValue("id", "missing")
	rr := httptest.NewRecorder()
	handler.Get(rr, req)

	assertErrorResponse(t, rr, http.StatusNotFound, "Profile not found")
}

func TestProfileGet_Unauthenticated(t *testing.T) {
	handler := NewProfileHandler(&mockProfileService{})

	req := httptest.NewRequest(http.MethodGet, "/api/profiles/user-2", nil)
	req.SetPathValue("id", "user-2")
	rr := httptest.NewRecorder()
	handler.Get(rr, req)

	assertErrorResponse(t, rr, http.StatusUnauthorized, "Authentication required")
}

func TestProfileUpdate(t *testing.T) {
	profiles := &mockProfileService{
		UpdateFunc: func(ctx context.Context, userID string, params models.UpdateProfileParams) (*models.UserProfile, error) {
			if userID != "user-1" {
				t.Fatalf("expected update for acting user, got %q", userID)
			}
			if params.Name == nil || *params.Name != "New Name" {
				t.Fatalf("expected name update, got %+v", params.Name)
			}
			if params.ProfileType == nil || *params.ProfileType != models.ProfileTypePrivate {
				t.Fatalf("expected profile type update, got %+v", params.ProfileType)
			}
			return &models.UserProfile{ID: userID, Name: "New Name", ProfileType: models.ProfileTypePrivate}, nil
		},
	}
	handler := NewProfileHandler(profiles)

	body := bytes.NewBufferString(`{"name":"New Name","profile_type":"private"}`)
	req := authedRequest(http.MethodPatch, "/api/profiles/me", body)
	rr := httptest.NewRecorder()
	handler.Update(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestProfileUpdate_InvalidProfileType(t *testing.T) {
	profiles := &mockProfileService{
		UpdateFunc: func(ctx context.Context, userID string, params models.UpdateProfileParams) (*models.UserProfile, error) {
			t.Fatal("Update should not be called with an invalid profile type")
			return nil, nil
		},
	}
	handler := NewProfileHandler(profiles)

	body := bytes.NewBufferString(`{"profile_type":"hidden"}`)
	req := authedRequest(http.MethodPatch, "/api/profiles/me", body)
	rr := httptest.NewRecorder()
	handler.Update(rr, req)

	assertErrorResponse(t, rr, http.StatusBadRequest, "Invalid profile type")
}

func TestProfileUpdate_NoFields(t *testing.T) {
	profiles := &mockProfileService{
		UpdateFunc: func(ctx context.Context, userID string, params models.UpdateProfileParams) (*models.UserProfile, error) {
			return nil, services.ErrInvalidInput
		},
	}
	handler := NewProfileHandler(profiles)

	body := bytes.NewBufferString(`{}`)
	req := authedRequest(http.MethodPatch, "/api/profiles/me", body)
	rr := httptest.NewRecorder()
	handler.Update(rr, req)

	assertErrorResponse(t, rr, http.StatusBadRequest, "No fields to update")
}

func TestProfileSearch(t *testing.T) {
	profiles := &mockProfileService{
		FindByEmailOrUsernameFunc: func(ctx context.Context, query string) ([]models.UserProfile, error) {
			if query != "bob" {
				t.Fatalf("expected query bob, got %q", query)
			}
			return []models.UserProfile{{ID: "user-2", Username: "bob"}}, nil
		},
	}
	handler := NewProfileHandler(profiles)

	req := authedRequest(http.MethodGet, "/api/profiles/search?q=bob", nil)
	rr := httptest.NewRecorder()
	handler.Search(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var response ProfileSearchResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(response.Profiles) != 1 {
		t.Fatalf("expected 1 result, got %d", len(response.Profiles))
	}
}

func TestProfileSearch_ShortQuery(t *testing.T) {
	profiles := &mockProfileService{
		FindByEmailOrUsernameFunc: func(ctx context.Context, query string) ([]models.UserProfile, error) {
			t.Fatal("FindByEmailOrUsername should not be called for short queries")
			return nil, nil
		},
	}
	handler := NewProfileHandler(profiles)

	req := authedRequest(http.MethodGet, "/api/profiles/search?q=b", nil)
	rr := httptest.NewRecorder()
	handler.Search(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var response ProfileSearchResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(response.Profiles) != 0 {
		t.Fatalf("expected empty result set, got %d", len(response.Profiles))
	}
}
