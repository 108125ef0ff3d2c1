package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/beaconsafety/beacon-server/internal/docstore"
	"github.com/beaconsafety/beacon-server/internal/logging"
	"github.com/beaconsafety/beacon-server/internal/models"
)

// FriendshipService maintains the directed friendship edge documents. Each
// edge is keyed owner:friend so existence checks are a single Get keyed
// off the viewer's own edge.
type FriendshipService struct {
	store    docstore.Store
	profiles ProfileServiceInterface
}

func NewFriendshipService(store docstore.Store, profiles ProfileServiceInterface) *FriendshipService {
	return &FriendshipService{store: store, profiles: profiles}
}

func edgeDocID(ownerID, friendID string) string {
	return ownerID + ":" + friendID
}

// CreateEdge writes the relation symmetrically, each direction seeded with
// the counterpart's current username as the nickname. The two writes are
// grouped in a best-effort batch, not a transaction: a failure after the
// first write leaves a one-directional edge until the accept is retried.
// Re-creating an existing edge is not an error; it refreshes addedAt.
func (s *FriendshipService) CreateEdge(ctx context.Context, userA, userB string) error {
	profileA, err := s.profiles.GetByID(ctx, userA)
	if err != nil {
		return fmt.Errorf("loading profile %s: %w", userA, err)
	}
	profileB, err := s.profiles.GetByID(ctx, userB)
	if err != nil {
		return fmt.Errorf("loading profile %s: %w", userB, err)
	}

	now := time.Now().UTC()
	forward := models.FriendEdge{OwnerID: userA, FriendID: userB, Nickname: profileB.Username, AddedAt: now}
	backward := models.FriendEdge{OwnerID: userB, FriendID: userA, Nickname: profileA.Username, AddedAt: now}

	forwardFields, err := docstore.FieldsOf(forward)
	if err != nil {
		return err
	}
	backwardFields, err := docstore.FieldsOf(backward)
	if err != nil {
		return err
	}

	err = s.store.Batch(ctx, []docstore.Write{
		{Op: docstore.WriteSet, Collection: colFriends, ID: edgeDocID(userA, userB), Fields: forwardFields},
		{Op: docstore.WriteSet, Collection: colFriends, ID: edgeDocID(userB, userA), Fields: backwardFields},
	})
	if err != nil {
		return fmt.Errorf("writing friendship edges: %w", err)
	}
	return nil
}

func (s *FriendshipService) HasEdge(ctx context.Context, ownerID, friendID string) (bool, error) {
	_, err := s.store.Get(ctx, colFriends, edgeDocID(ownerID, friendID))
	if errors.Is(err, docstore.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking friendship edge: %w", err)
	}
	return true, nil
}

// UpdateNickname mutates only the owner's directed edge. The nickname is
// private to the owner and never visible to the friend.
func (s *FriendshipService) UpdateNickname(ctx context.Context, ownerID, friendID, nickname string) error {
	err := s.store.Update(ctx, colFriends, edgeDocID(ownerID, friendID), []docstore.Update{
		docstore.SetField(nickname, "nickname"),
	})
	if errors.Is(err, docstore.ErrNotFound) {
		return ErrNotFriends
	}
	if err != nil {
		return fmt.Errorf("updating nickname: %w", err)
	}
	return nil
}

// ListFriends returns the owner's friends with the nickname overlay. It
// fails open: a friend whose profile cannot be fetched is skipped rather
// than failing the whole call.
func (s *FriendshipService) ListFriends(ctx context.Context, ownerID string) ([]models.Friend, error) {
	edges, err := s.edges(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	friends := []models.Friend{}
	for _, edge := range edges {
		profile, err := s.profiles.GetByID(ctx, edge.FriendID)
		if err != nil {
			logging.Warn("Skipping friend with unavailable profile", map[string]interface{}{
				"owner_id":  ownerID,
				"friend_id": edge.FriendID,
				"error":     err.Error(),
			})
			continue
		}
		friends = append(friends, models.Friend{
			Profile:  *profile,
			Nickname: edge.Nickname,
			AddedAt:  edge.AddedAt,
		})
	}
	return friends, nil
}

func (s *FriendshipService) FriendIDs(ctx context.Context, ownerID string) ([]string, error) {
	edges, err := s.edges(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(edges))
	for _, edge := range edges {
		ids = append(ids, edge.FriendID)
	}
	return ids, nil
}

func (s *FriendshipService) edges(ctx context.Context, ownerID string) ([]models.FriendEdge, error) {
	docs, err := s.store.Query(ctx, colFriends, docstore.Eq("ownerId", ownerID))
	if err != nil {
		return nil, fmt.Errorf("listing friendship edges: %w", err)
	}

	edges := make([]models.FriendEdge, 0, len(docs))
	for _, doc := range docs {
		var edge models.FriendEdge
		if err := doc.DataTo(&edge); err != nil {
			return nil, err
		}
		edges = append(edges, edge)
	}
	return edges, nil
}
