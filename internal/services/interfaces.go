package services

import (
	"context"

	"github.com/beaconsafety/beacon-server/internal/models"
)

// Identity resolves the acting user for a workflow operation. An empty id
// means no authenticated user; workflows translate that into
// ErrNotAuthenticated.
type Identity interface {
	CurrentUserID(ctx context.Context) string
}

// Sender delivers a push notification to all of a user's devices. Fire and
// forget: no delivery confirmation is required.
type Sender interface {
	Send(ctx context.Context, userID, title, body string) error
}

// ProfileServiceInterface defines the contract for profile operations.
type ProfileServiceInterface interface {
	Create(ctx context.Context, params models.CreateProfileParams) (*models.UserProfile, error)
	GetByID(ctx context.Context, id string) (*models.UserProfile, error)
	GetByEmail(ctx context.Context, email string) (*models.UserProfile, error)
	FindByEmailOrUsername(ctx context.Context, query string) ([]models.UserProfile, error)
	Update(ctx context.Context, userID string, params models.UpdateProfileParams) (*models.UserProfile, error)
}

// FriendRequestServiceInterface defines the contract for the friend
// request workflow.
type FriendRequestServiceInterface interface {
	SendRequest(ctx context.Context, query string) (*models.FriendRequest, error)
	Respond(ctx context.Context, requestID string, accept bool) error
	ListIncoming(ctx context.Context) ([]models.FriendRequest, error)
	ListSent(ctx context.Context) ([]models.FriendRequest, error)
}

// FriendshipServiceInterface defines the contract for the friendship
// ledger.
type FriendshipServiceInterface interface {
	CreateEdge(ctx context.Context, userA, userB string) error
	HasEdge(ctx context.Context, ownerID, friendID string) (bool, error)
	UpdateNickname(ctx context.Context, ownerID, friendID, nickname string) error
	ListFriends(ctx context.Context, ownerID string) ([]models.Friend, error)
	FriendIDs(ctx context.Context, ownerID string) ([]string, error)
}

// ChatServiceInterface defines the contract for chat provisioning and
// group administration.
type ChatServiceInterface interface {
	EnsureDirectChat(ctx context.Context, userA, userB string) (string, error)
	CreateGroupChat(ctx context.Context, name string, participantIDs []string) (string, error)
	GetByID(ctx context.Context, chatID string) (*models.Chat, error)
	ListForUser(ctx context.Context) ([]models.Chat, error)
	RenameGroup(ctx context.Context, chatID, newName string) error
	AddAdmin(ctx context.Context, chatID, targetID string) error
	RemoveAdmin(ctx context.Context, chatID, targetID string) error
	AddParticipants(ctx context.Context, chatID string, newIDs []string) error
	PostMessage(ctx context.Context, chatID, text string) (*models.ChatMessage, error)
	ListMessages(ctx context.Context, chatID string) ([]models.ChatMessage, error)
	MarkRead(ctx context.Context, chatID string) error
}

// NotificationServiceInterface defines the contract for notification
// fan-out and the recipient-side read surface. The Notify methods are
// fire and forget: per-recipient failures are logged, never returned.
type NotificationServiceInterface interface {
	NotifyFriendRequest(ctx context.Context, recipientID string, from *models.UserProfile, requestID string)
	NotifyAccepted(ctx context.Context, recipientID string, accepter *models.UserProfile)
	NotifyGroupInvite(ctx context.Context, recipientIDs []string, inviter *models.UserProfile, chatID, chatName string)
	NotifyNewReport(ctx context.Context, recipientIDs []string, reporter *models.UserProfile, reportID string)
	NotifyFriendReport(ctx context.Context, recipientIDs []string, reporter *models.UserProfile, reportID string)
	NotifyReportComment(ctx context.Context, recipientID string, commenter *models.UserProfile, reportID string)
	List(ctx context.Context, userID string, unreadOnly bool) ([]models.Notification, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, userID, notificationID string) error
	MarkAllRead(ctx context.Context, userID string) error
	RegisterDevice(ctx context.Context, userID, token, platform string) error
}

// ReportServiceInterface defines the contract for incident reports.
type ReportServiceInterface interface {
	Create(ctx context.Context, params models.CreateReportParams) (*models.Report, error)
	GetByID(ctx context.Context, reportID string) (*models.Report, error)
	AddComment(ctx context.Context, reportID, text string) (*models.ReportComment, error)
	ListComments(ctx context.Context, reportID string) ([]models.ReportComment, error)
}

// AuthServiceInterface defines the contract for session authentication.
type AuthServiceInterface interface {
	Register(ctx context.Context, params models.CreateProfileParams, password string) (*models.UserProfile, error)
	Login(ctx context.Context, email, password string) (*models.UserProfile, string, error)
	ValidateSession(ctx context.Context, token string) (*models.UserProfile, error)
	DeleteSession(ctx context.Context, token string) error
}
