package services

import (
	"context"
	"sync"
	"testing"

	"github.com/beaconsafety/beacon-server/internal/docstore"
	"github.com/beaconsafety/beacon-server/internal/models"
)

// testIdentity resolves every call to a fixed user id. Tests mutate ID to
// switch the acting user between calls.
type testIdentity struct {
	ID string
}

func (i *testIdentity) CurrentUserID(ctx context.Context) string {
	return i.ID
}

type sentPush struct {
	UserID string
	Title  string
	Body   string
}

// recordingSender captures pushes instead of delivering them.
type recordingSender struct {
	mu   sync.Mutex
	sent []sentPush
}

func (s *recordingSender) Send(ctx context.Context, userID, title, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, sentPush{UserID: userID, Title: title, Body: body})
	return nil
}

func (s *recordingSender) forUser(userID string) []sentPush {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []sentPush
	for _, p := range s.sent {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out
}

// testEnv wires the full service stack over the in-memory store.
type testEnv struct {
	store         *docstore.MemoryStore
	identity      *testIdentity
	sender        *recordingSender
	profiles      *ProfileService
	friendships   *FriendshipService
	requests      *FriendRequestService
	chats         *ChatService
	notifications *NotificationService
	reports       *ReportService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := docstore.NewMemoryStore()
	identity := &testIdentity{}
	sender := &recordingSender{}

	profiles := NewProfileService(store)
	notifications := NewNotificationService(store, sender)
	friendships := NewFriendshipService(store, profiles)
	chats := NewChatService(store, identity, profiles, notifications)
	requests := NewFriendRequestService(store, identity, profiles, friendships, chats, notifications)
	reports := NewReportService(store, identity, profiles, friendships, notifications)

	return &testEnv{
		store:         store,
		identity:      identity,
		sender:        sender,
		profiles:      profiles,
		friendships:   friendships,
		requests:      requests,
		chats:         chats,
		notifications: notifications,
		reports:       reports,
	}
}

func (e *testEnv) createProfile(t *testing.T, name, username, email string) *models.UserProfile {
	t.Helper()
	profile, err := e.profiles.Create(context.Background(), models.CreateProfileParams{
		Name:     name,
		Username: username,
		Email:    email,
	})
	if err != nil {
		t.Fatalf("creating profile %s: %v", username, err)
	}
	return profile
}

// befriend runs the full request/accept flow between two users and
// restores the acting identity afterwards.
func (e *testEnv) befriend(t *testing.T, from, to *models.UserProfile) {
	t.Helper()
	prev := e.identity.ID

	e.identity.ID = from.ID
	request, err := e.requests.SendRequest(context.Background(), to.Username)
	if err != nil {
		t.Fatalf("sending friend request: %v", err)
	}

	e.identity.ID = to.ID
	if err := e.requests.Respond(context.Background(), request.ID, true); err != nil {
		t.Fatalf("accepting friend request: %v", err)
	}

	e.identity.ID = prev
}
