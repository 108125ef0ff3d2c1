package models

import "time"

type FriendRequestStatus string

const (
	FriendRequestStatusPending  FriendRequestStatus = "pending"
	FriendRequestStatusAccepted FriendRequestStatus = "accepted"
	FriendRequestStatusRejected FriendRequestStatus = "rejected"
)

// FriendRequest transitions pending -> accepted|rejected exactly once.
// At most one pending request may exist for an ordered (from, to) pair.
type FriendRequest struct {
	ID            string              `json:"id"`
	FromUserID    string              `json:"fromUserId"`
	ToUserID      string              `json:"toUserId"`
	Status        FriendRequestStatus `json:"status"`
	FromUserEmail string              `json:"fromUserEmail"`
	FromUserName  string              `json:"fromUserName"`
	CreatedAt     time.Time           `json:"createdAt"`
}

// FriendEdge is one directed friendship relation, owner -> friend. The
// nickname is private to the owner. Edges are written symmetrically on
// acceptance but stored as independent documents.
type FriendEdge struct {
	OwnerID  string    `json:"ownerId"`
	FriendID string    `json:"friendId"`
	Nickname string    `json:"nickname"`
	AddedAt  time.Time `json:"addedAt"`
}

// Friend is a profile enriched with the viewer's edge metadata.
type Friend struct {
	Profile  UserProfile `json:"profile"`
	Nickname string      `json:"nickname"`
	AddedAt  time.Time   `json:"addedAt"`
}
