package models

import "time"

type NotificationType string

const (
	NotificationTypeFriendRequest         NotificationType = "friendRequest"
	NotificationTypeFriendRequestAccepted NotificationType = "friendRequestAccepted"
	NotificationTypeFriendReport          NotificationType = "friendReport"
	NotificationTypeNewReport             NotificationType = "newReport"
	NotificationTypeReportComment         NotificationType = "reportComment"
	NotificationTypeGroupInvite           NotificationType = "groupInvite"
)

// Notification is an in-app notification record. Only IsRead is ever
// mutated after creation.
type Notification struct {
	ID        string            `json:"id"`
	UserID    string            `json:"userId"`
	Type      NotificationType  `json:"type"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	Data      map[string]string `json:"data,omitempty"`
	IsRead    bool              `json:"isRead"`
	CreatedAt time.Time         `json:"createdAt"`
}

// DeviceToken registers a push-capable device for a user.
type DeviceToken struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Token     string    `json:"token"`
	Platform  string    `json:"platform"`
	CreatedAt time.Time `json:"createdAt"`
}
