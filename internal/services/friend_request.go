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

// FriendRequestService owns the friend request lifecycle: creation with
// duplicate/self/already-friend guards, and the accept/reject transition
// with its edge, chat and notification side effects.
type FriendRequestService struct {
	store       docstore.Store
	identity    Identity
	profiles    ProfileServiceInterface
	friendships FriendshipServiceInterface
	chats       ChatServiceInterface
	notifier    NotificationServiceInterface
}

func NewFriendRequestService(
	store docstore.Store,
	identity Identity,
	profiles ProfileServiceInterface,
	friendships FriendshipServiceInterface,
	chats ChatServiceInterface,
	notifier NotificationServiceInterface,
) *FriendRequestService {
	return &FriendRequestService{
		store:       store,
		identity:    identity,
		profiles:    profiles,
		friendships: friendships,
		chats:       chats,
		notifier:    notifier,
	}
}

// SendRequest resolves query against profiles by exact email or exact
// username, excluding the caller. Email matches are scanned before
// username matches; no eligible candidate is reported as not found.
func (s *FriendRequestService) SendRequest(ctx context.Context, query string) (*models.FriendRequest, error) {
	userID := s.identity.CurrentUserID(ctx)
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	if strings.TrimSpace(query) == "" {
		return nil, ErrInvalidInput
	}

	candidates, err := s.profiles.FindByEmailOrUsername(ctx, query)
	if err != nil {
		return nil, err
	}
	var target *models.UserProfile
	for i := range candidates {
		if candidates[i].ID != userID {
			target = &candidates[i]
			break
		}
	}
	if target == nil {
		return nil, ErrProfileNotFound
	}

	alreadyFriends, err := s.friendships.HasEdge(ctx, userID, target.ID)
	if err != nil {
		return nil, err
	}
	if alreadyFriends {
		return nil, ErrAlreadyFriends
	}

	// At most one pending request may exist for the ordered (from, to)
	// pair.
	pending, err := s.store.Query(ctx, colFriendRequests,
		docstore.Eq("fromUserId", userID),
		docstore.Eq("toUserId", target.ID),
		docstore.Eq("status", models.FriendRequestStatusPending),
	)
	if err != nil {
		return nil, fmt.Errorf("checking pending requests: %w", err)
	}
	if len(pending) > 0 {
		return nil, ErrDuplicateRequest
	}

	sender, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	request := &models.FriendRequest{
		ID:            uuid.NewString(),
		FromUserID:    userID,
		ToUserID:      target.ID,
		Status:        models.FriendRequestStatusPending,
		FromUserEmail: sender.Email,
		FromUserName:  sender.Name,
		CreatedAt:     time.Now().UTC(),
	}
	fields, err := docstore.FieldsOf(request)
	if err != nil {
		return nil, err
	}
	if err := s.store.Set(ctx, colFriendRequests, request.ID, fields); err != nil {
		return nil, fmt.Errorf("creating friend request: %w", err)
	}

	s.notifier.NotifyFriendRequest(ctx, target.ID, sender, request.ID)

	return request, nil
}

// Respond transitions a pending request to accepted or rejected. A
// request that is unknown or already terminal is rejected, never silently
// ignored: that is what keeps a double accept from provisioning a second
// chat or edge pair. The guard is a status read followed by a write; a
// true concurrent double accept can slip through it, in which case the
// second edge write is an idempotent re-create.
func (s *FriendRequestService) Respond(ctx context.Context, requestID string, accept bool) error {
	userID := s.identity.CurrentUserID(ctx)
	if userID == "" {
		return ErrNotAuthenticated
	}

	request, err := s.getByID(ctx, requestID)
	if err != nil {
		return err
	}
	if request.ToUserID != userID {
		return ErrNotAuthorized
	}
	if request.Status != models.FriendRequestStatusPending {
		return ErrRequestNotFound
	}

	if !accept {
		err := s.store.Update(ctx, colFriendRequests, requestID, []docstore.Update{
			docstore.SetField(models.FriendRequestStatusRejected, "status"),
		})
		if err != nil {
			return fmt.Errorf("rejecting friend request: %w", err)
		}
		return nil
	}

	err = s.store.Update(ctx, colFriendRequests, requestID, []docstore.Update{
		docstore.SetField(models.FriendRequestStatusAccepted, "status"),
	})
	if err != nil {
		return fmt.Errorf("accepting friend request: %w", err)
	}

	if err := s.friendships.CreateEdge(ctx, request.FromUserID, request.ToUserID); err != nil {
		return err
	}
	if _, err := s.chats.EnsureDirectChat(ctx, request.FromUserID, request.ToUserID); err != nil {
		return err
	}

	accepter, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	s.notifier.NotifyAccepted(ctx, request.FromUserID, accepter)

	return nil
}

func (s *FriendRequestService) ListIncoming(ctx context.Context) ([]models.FriendRequest, error) {
	userID := s.identity.CurrentUserID(ctx)
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	return s.list(ctx, docstore.Eq("toUserId", userID), docstore.Eq("status", models.FriendRequestStatusPending))
}

func (s *FriendRequestService) ListSent(ctx context.Context) ([]models.FriendRequest, error) {
	userID := s.identity.CurrentUserID(ctx)
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	return s.list(ctx, docstore.Eq("fromUserId", userID), docstore.Eq("status", models.FriendRequestStatusPending))
}

func (s *FriendRequestService) list(ctx context.Context, filters ...docstore.Filter) ([]models.FriendRequest, error) {
	docs, err := s.store.Query(ctx, colFriendRequests, filters...)
	if err != nil {
		return nil, fmt.Errorf("listing friend requests: %w", err)
	}

	requests := []models.FriendRequest{}
	for _, doc := range docs {
		var r models.FriendRequest
		if err := doc.DataTo(&r); err != nil {
			return nil, err
		}
		requests = append(requests, r)
	}
	return requests, nil
}

func (s *FriendRequestService) getByID(ctx context.Context, requestID string) (*models.FriendRequest, error) {
	doc, err := s.store.Get(ctx, colFriendRequests, requestID)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting friend request: %w", err)
	}

	request := &models.FriendRequest{}
	if err := doc.DataTo(request); err != nil {
		return nil, err
	}
	return request, nil
}
