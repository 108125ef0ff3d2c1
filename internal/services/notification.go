package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/beaconsafety/beacon-server/internal/docstore"
	"github.com/beaconsafety/beacon-server/internal/logging"
	"github.com/beaconsafety/beacon-server/internal/models"
)

var ErrNotificationNotFound = errors.New("notification not found")

// NotificationService translates workflow events into per-recipient
// notification documents. Each recipient's write is independent: a
// failure for one recipient is logged and never blocks the rest, and the
// triggering operation is never rolled back.
type NotificationService struct {
	store  docstore.Store
	sender Sender
}

func NewNotificationService(store docstore.Store, sender Sender) *NotificationService {
	return &NotificationService{store: store, sender: sender}
}

func (s *NotificationService) NotifyFriendRequest(ctx context.Context, recipientID string, from *models.UserProfile, requestID string) {
	s.fanOut(ctx, []string{recipientID}, models.NotificationTypeFriendRequest,
		"New friend request",
		fmt.Sprintf("%s sent you a friend request.", displayName(from)),
		map[string]string{"requestId": requestID, "fromUserId": from.ID},
	)
}

func (s *NotificationService) NotifyAccepted(ctx context.Context, recipientID string, accepter *models.UserProfile) {
	s.fanOut(ctx, []string{recipientID}, models.NotificationTypeFriendRequestAccepted,
		"Friend request accepted",
		fmt.Sprintf("%s accepted your friend request.", displayName(accepter)),
		map[string]string{"userId": accepter.ID},
	)
}

func (s *NotificationService) NotifyGroupInvite(ctx context.Context, recipientIDs []string, inviter *models.UserProfile, chatID, chatName string) {
	s.fanOut(ctx, recipientIDs, models.NotificationTypeGroupInvite,
		"Added to a group",
		fmt.Sprintf("%s added you to %q.", displayName(inviter), chatName),
		map[string]string{"chatId": chatID, "inviterId": inviter.ID},
	)
}

func (s *NotificationService) NotifyNewReport(ctx context.Context, recipientIDs []string, reporter *models.UserProfile, reportID string) {
	s.fanOut(ctx, recipientIDs, models.NotificationTypeNewReport,
		"New incident report",
		fmt.Sprintf("%s reported an incident.", displayName(reporter)),
		map[string]string{"reportId": reportID, "reporterId": reporter.ID},
	)
}

func (s *NotificationService) NotifyFriendReport(ctx context.Context, recipientIDs []string, reporter *models.UserProfile, reportID string) {
	s.fanOut(ctx, recipientIDs, models.NotificationTypeFriendReport,
		"Safety contact alert",
		fmt.Sprintf("%s listed you as a safety contact on an incident.", displayName(reporter)),
		map[string]string{"reportId": reportID, "reporterId": reporter.ID},
	)
}

func (s *NotificationService) NotifyReportComment(ctx context.Context, recipientID string, commenter *models.UserProfile, reportID string) {
	s.fanOut(ctx, []string{recipientID}, models.NotificationTypeReportComment,
		"New comment on your report",
		fmt.Sprintf("%s commented on your report.", displayName(commenter)),
		map[string]string{"reportId": reportID, "commenterId": commenter.ID},
	)
}

func (s *NotificationService) List(ctx context.Context, userID string, unreadOnly bool) ([]models.Notification, error) {
	filters := []docstore.Filter{docstore.Eq("userId", userID)}
	if unreadOnly {
		filters = append(filters, docstore.Eq("isRead", false))
	}

	docs, err := s.store.Query(ctx, colNotifications, filters...)
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}

	notifications := []models.Notification{}
	for _, doc := range docs {
		var n models.Notification
		if err := doc.DataTo(&n); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	docs, err := s.store.Query(ctx, colNotifications,
		docstore.Eq("userId", userID),
		docstore.Eq("isRead", false),
	)
	if err != nil {
		return 0, fmt.Errorf("counting unread notifications: %w", err)
	}
	return len(docs), nil
}

// MarkRead flips isRead on the recipient's own notification. Notifications
// are never otherwise mutated.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	doc, err := s.store.Get(ctx, colNotifications, notificationID)
	if errors.Is(err, docstore.ErrNotFound) {
		return ErrNotificationNotFound
	}
	if err != nil {
		return fmt.Errorf("getting notification: %w", err)
	}

	var n models.Notification
	if err := doc.DataTo(&n); err != nil {
		return err
	}
	if n.UserID != userID {
		return ErrNotificationNotFound
	}

	err = s.store.Update(ctx, colNotifications, notificationID, []docstore.Update{
		docstore.SetField(true, "isRead"),
	})
	if err != nil {
		return fmt.Errorf("marking notification read: %w", err)
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	docs, err := s.store.Query(ctx, colNotifications,
		docstore.Eq("userId", userID),
		docstore.Eq("isRead", false),
	)
	if err != nil {
		return fmt.Errorf("listing unread notifications: %w", err)
	}

	for _, doc := range docs {
		err := s.store.Update(ctx, colNotifications, doc.ID, []docstore.Update{
			docstore.SetField(true, "isRead"),
		})
		if err != nil {
			logging.Warn("Failed to mark notification read", map[string]interface{}{
				"notification_id": doc.ID,
				"error":           err.Error(),
			})
		}
	}
	return nil
}

func (s *NotificationService) RegisterDevice(ctx context.Context, userID, token, platform string) error {
	if userID == "" || token == "" {
		return ErrInvalidInput
	}

	device := &models.DeviceToken{
		ID:        uuid.NewString(),
		UserID:    userID,
		Token:     token,
		Platform:  platform,
		CreatedAt: time.Now().UTC(),
	}

	// Re-registering the same token moves it to the new user.
	existing, err := s.store.Query(ctx, colDeviceTokens, docstore.Eq("token", token))
	if err != nil {
		return fmt.Errorf("checking device token: %w", err)
	}
	if len(existing) > 0 {
		device.ID = existing[0].ID
	}

	fields, err := docstore.FieldsOf(device)
	if err != nil {
		return err
	}
	if err := s.store.Set(ctx, colDeviceTokens, device.ID, fields); err != nil {
		return fmt.Errorf("registering device token: %w", err)
	}
	return nil
}

// fanOut persists one notification per recipient and fires a push for
// each. Failures are isolated per recipient: log and continue.
func (s *NotificationService) fanOut(ctx context.Context, recipientIDs []string, nType models.NotificationType, title, message string, data map[string]string) {
	for _, recipientID := range recipientIDs {
		if recipientID == "" {
			continue
		}

		n := &models.Notification{
			ID:        uuid.NewString(),
			UserID:    recipientID,
			Type:      nType,
			Title:     title,
			Message:   message,
			Data:      data,
			CreatedAt: time.Now().UTC(),
		}
		fields, err := docstore.FieldsOf(n)
		if err == nil {
			err = s.store.Set(ctx, colNotifications, n.ID, fields)
		}
		if err != nil {
			logging.Warn("Failed to deliver notification", map[string]interface{}{
				"recipient_id": recipientID,
				"type":         string(nType),
				"error":        err.Error(),
			})
			continue
		}

		if s.sender != nil {
			if err := s.sender.Send(ctx, recipientID, title, message); err != nil {
				logging.Warn("Push delivery failed", map[string]interface{}{
					"recipient_id": recipientID,
					"error":        err.Error(),
				})
			}
		}
	}
}

func displayName(profile *models.UserProfile) string {
	if profile == nil || profile.Name == "" {
		return "A friend"
	}
	return profile.Name
}
