package handlers

import (
	"context"

	"github.com/beaconsafety/beacon-server/internal/models"
)

type mockAuthService struct {
	RegisterFunc        func(ctx context.Context, params models.CreateProfileParams, password string) (*models.UserProfile, error)
	LoginFunc           func(ctx context.Context, email, password string) (*models.UserProfile, string, error)
	ValidateSessionFunc func(ctx context.Context, token string) (*models.UserProfile, error)
	DeleteSessionFunc   func(ctx context.Context, token string) error
}

func (m *mockAuthService) Register(ctx context.Context, params models.CreateProfileParams, password string) (*models.UserProfile, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, params, password)
	}
	return nil, nil
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (*models.UserProfile, string, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password)
	}
	return nil, "token", nil
}

func (m *mockAuthService) ValidateSession(ctx context.Context, token string) (*models.UserProfile, error) {
	if m.ValidateSessionFunc != nil {
		return m.ValidateSessionFunc(ctx, token)
	}
	return nil, nil
}

func (m *mockAuthService) DeleteSession(ctx context.Context, token string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, token)
	}
	return nil
}

type mockProfileService struct {
	CreateFunc                func(ctx context.Context, params models.CreateProfileParams) (*models.UserProfile, error)
	GetByIDFunc               func(ctx context.Context, id string) (*models.UserProfile, error)
	GetByEmailFunc            func(ctx context.Context, email string) (*models.UserProfile, error)
	FindByEmailOrUsernameFunc func(ctx context.Context, query string) ([]models.UserProfile, error)
	UpdateFunc                func(ctx context.Context, userID string, params models.UpdateProfileParams) (*models.UserProfile, error)
}

func (m *mockProfileService) Create(ctx context.Context, params models.CreateProfileParams) (*models.UserProfile, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return nil, nil
}

func (m *mockProfileService) GetByID(ctx context.Context, id string) (*models.UserProfile, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockProfileService) GetByEmail(ctx context.Context, email string) (*models.UserProfile, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, nil
}

func (m *mockProfileService) FindByEmailOrUsername(ctx context.Context, query string) ([]models.UserProfile, error) {
	if m.FindByEmailOrUsernameFunc != nil {
		return m.FindByEmailOrUsernameFunc(ctx, query)
	}
	return nil, nil
}

func (m *mockProfileService) Update(ctx context.Context, userID string, params models.UpdateProfileParams) (*models.UserProfile, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, userID, params)
	}
	return nil, nil
}

type mockFriendRequestService struct {
	SendRequestFunc  func(ctx context.Context, query string) (*models.FriendRequest, error)
	RespondFunc      func(ctx context.Context, requestID string, accept bool) error
	ListIncomingFunc func(ctx context.Context) ([]models.FriendRequest, error)
	ListSentFunc     func(ctx context.Context) ([]models.FriendRequest, error)
}

func (m *mockFriendRequestService) SendRequest(ctx context.Context, query string) (*models.FriendRequest, error) {
	if m.SendRequestFunc != nil {
		return m.SendRequestFunc(ctx, query)
	}
	return nil, nil
}

func (m *mockFriendRequestService) Respond(ctx context.Context, requestID string, accept bool) error {
	if m.RespondFunc != nil {
		return m.RespondFunc(ctx, requestID, accept)
	}
	return nil
}

func (m *mockFriendRequestService) ListIncoming(ctx context.Context) ([]models.FriendRequest, error) {
	if m.ListIncomingFunc != nil {
		return m.ListIncomingFunc(ctx)
	}
	return nil, nil
}

func (m *mockFriendRequestService) ListSent(ctx context.Context) ([]models.FriendRequest, error) {
	if m.ListSentFunc != nil {
		return m.ListSentFunc(ctx)
	}
	return nil, nil
}

type mockFriendshipService struct {
	CreateEdgeFunc     func(ctx context.Context, userA, userB string) error
	HasEdgeFunc        func(ctx context.Context, ownerID, friendID string) (bool, error)
	UpdateNicknameFunc func(ctx context.Context, ownerID, friendID, nickname string) error
	ListFriendsFunc    func(ctx context.Context, ownerID string) ([]models.Friend, error)
	FriendIDsFunc      func(ctx context.Context, ownerID string) ([]string, error)
}

func (m *mockFriendshipService) CreateEdge(ctx context.Context, userA, userB string) error {
	if m.CreateEdgeFunc != nil {
		return m.CreateEdgeFunc(ctx, userA, userB)
	}
	return nil
}

func (m *mockFriendshipService) HasEdge(ctx context.Context, ownerID, friendID string) (bool, error) {
	if m.HasEdgeFunc != nil {
		return m.HasEdgeFunc(ctx, ownerID, friendID)
	}
	return false, nil
}

func (m *mockFriendshipService) UpdateNickname(ctx context.Context, ownerID, friendID, nickname string) error {
	if m.UpdateNicknameFunc != nil {
		return m.UpdateNicknameFunc(ctx, ownerID, friendID, nickname)
	}
	return nil
}

func (m *mockFriendshipService) ListFriends(ctx context.Context, ownerID string) ([]models.Friend, error) {
	if m.ListFriendsFunc != nil {
		return m.ListFriendsFunc(ctx, ownerID)
	}
	return nil, nil
}

func (m *mockFriendshipService) FriendIDs(ctx context.Context, ownerID string) ([]string, error) {
	if m.FriendIDsFunc != nil {
		return m.FriendIDsFunc(ctx, ownerID)
	}
	return nil, nil
}

type mockChatService struct {
	EnsureDirectChatFunc func(ctx context.Context, userA, userB string) (string, error)
	CreateGroupChatFunc  func(ctx context.Context, name string, participantIDs []string) (string, error)
	GetByIDFunc          func(ctx context.Context, chatID string) (*models.Chat, error)
	ListForUserFunc      func(ctx context.Context) ([]models.Chat, error)
	RenameGroupFunc      func(ctx context.Context, chatID, newName string) error
	AddAdminFunc         func(ctx context.Context, chatID, targetID string) error
	RemoveAdminFunc      func(ctx context.Context, chatID, targetID string) error
	AddParticipantsFunc  func(ctx context.Context, chatID string, newIDs []string) error
	PostMessageFunc      func(ctx context.Context, chatID, text string) (*models.ChatMessage, error)
	ListMessagesFunc     func(ctx context.Context, chatID string) ([]models.ChatMessage, error)
	MarkReadFunc         func(ctx context.Context, chatID string) error
}

func (m *mockChatService) EnsureDirectChat(ctx context.Context, userA, userB string) (string, error) {
	if m.EnsureDirectChatFunc != nil {
		return m.EnsureDirectChatFunc(ctx, userA, userB)
	}
	return "", nil
}

func (m *mockChatService) CreateGroupChat(ctx context.Context, name string, participantIDs []string) (string, error) {
	if m.CreateGroupChatFunc != nil {
		return m.CreateGroupChatFunc(ctx, name, participantIDs)
	}
	return "", nil
}

func (m *mockChatService) GetByID(ctx context.Context, chatID string) (*models.Chat, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, chatID)
	}
	return nil, nil
}

func (m *mockChatService) ListForUser(ctx context.Context) ([]models.Chat, error) {
	if m.ListForUserFunc != nil {
		return m.ListForUserFunc(ctx)
	}
	return nil, nil
}

func (m *mockChatService) RenameGroup(ctx context.Context, chatID, newName string) error {
	if m.RenameGroupFunc != nil {
		return m.RenameGroupFunc(ctx, chatID, newName)
	}
	return nil
}

func (m *mockChatService) AddAdmin(ctx context.Context, chatID, targetID string) error {
	if m.AddAdminFunc != nil {
		return m.AddAdminFunc(ctx, chatID, targetID)
	}
	return nil
}

func (m *mockChatService) RemoveAdmin(ctx context.Context, chatID, targetID string) error {
	if m.RemoveAdminFunc != nil {
		return m.RemoveAdminFunc(ctx, chatID, targetID)
	}
	return nil
}

func (m *mockChatService) AddParticipants(ctx context.Context, chatID string, newIDs []string) error {
	if m.AddParticipantsFunc != nil {
		return m.AddParticipantsFunc(ctx, chatID, newIDs)
	}
	return nil
}

func (m *mockChatService) PostMessage(ctx context.Context, chatID, text string) (*models.ChatMessage, error) {
	if m.PostMessageFunc != nil {
		return m.PostMessageFunc(ctx, chatID, text)
	}
	return nil, nil
}

func (m *mockChatService) ListMessages(ctx context.Context, chatID string) ([]models.ChatMessage, error) {
	if m.ListMessagesFunc != nil {
		return m.ListMessagesFunc(ctx, chatID)
	}
	return nil, nil
}

func (m *mockChatService) MarkRead(ctx context.Context, chatID string) error {
	if m.MarkReadFunc != nil {
		return m.MarkReadFunc(ctx, chatID)
	}
	return nil
}

type mockNotificationService struct {
	ListFunc           func(ctx context.Context, userID string, unreadOnly bool) ([]models.Notification, error)
	UnreadCountFunc    func(ctx context.Context, userID string) (int, error)
	MarkReadFunc       func(ctx context.Context, userID, notificationID string) error
	MarkAllReadFunc    func(ctx context.Context, userID string) error
	RegisterDeviceFunc func(ctx context.Context, userID, token, platform string) error
}

func (m *mockNotificationService) NotifyFriendRequest(ctx context.Context, recipientID string, from *models.UserProfile, requestID string) {
}

func (m *mockNotificationService) NotifyAccepted(ctx context.Context, recipientID string, accepter *models.UserProfile) {
}

func (m *mockNotificationService) NotifyGroupInvite(ctx context.Context, recipientIDs []string, inviter *models.UserProfile, chatID, chatName string) {
}

func (m *mockNotificationService) NotifyNewReport(ctx context.Context, recipientIDs []string, reporter *models.UserProfile, reportID string) {
}

func (m *mockNotificationService) NotifyFriendReport(ctx context.Context, recipientIDs []string, reporter *models.UserProfile, reportID string) {
}

func (m *mockNotificationService) NotifyReportComment(ctx context.Context, recipientID string, commenter *models.UserProfile, reportID string) {
}

func (m *mockNotificationService) List(ctx context.Context, userID string, unreadOnly bool) ([]models.Notification, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, userID, unreadOnly)
	}
	return nil, nil
}

func (m *mockNotificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	if m.UnreadCountFunc != nil {
		return m.UnreadCountFunc(ctx, userID)
	}
	return 0, nil
}

func (m *mockNotificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	if m.MarkReadFunc != nil {
		return m.MarkReadFunc(ctx, userID, notificationID)
	}
	return nil
}

func (m *mockNotificationService) MarkAllRead(ctx context.Context, userID string) error {
	if m.MarkAllReadFunc != nil {
		return m.MarkAllReadFunc(ctx, userID)
	}
	return nil
}

func (m *mockNotificationService) RegisterDevice(ctx context.Context, userID, token, platform string) error {
	if m.RegisterDeviceFunc != nil {
		return m.RegisterDeviceFunc(ctx, userID, token, platform)
	}
	return nil
}

type mockReportService struct {
	CreateFunc       func(ctx context.Context, params models.CreateReportParams) (*models.Report, error)
	GetByIDFunc      func(ctx context.Context, reportID string) (*models.Report, error)
	AddCommentFunc   func(ctx context.Context, reportID, text string) (*models.ReportComment, error)
	ListCommentsFunc func(ctx context.Context, reportID string) ([]models.ReportComment, error)
}

func (m *mockReportService) Create(ctx context.Context, params models.CreateReportParams) (*models.Report, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return nil, nil
}

func (m *mockReportService) GetByID(ctx context.Context, reportID string) (*models.Report, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, reportID)
	}
	return nil, nil
}

func (m *mockReportService) AddComment(ctx context.Context, reportID, text string) (*models.ReportComment, error) {
	if m.AddCommentFunc != nil {
		return m.AddCommentFunc(ctx, reportID, text)
	}
	return nil, nil
}

func (m *mockReportService) ListComments(ctx context.Context, reportID string) ([]models.ReportComment, error) {
	if m.ListCommentsFunc != nil {
		return m.ListCommentsFunc(ctx, reportID)
	}
	return nil, nil
}
