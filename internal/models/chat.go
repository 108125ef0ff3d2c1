package models

import "time"

type ChatType string

const (
	ChatTypeDirect ChatType = "direct"
	ChatTypeGroup  ChatType = "group"
)

// Chat is a conversation document. Direct chats have exactly two
// participants and ignore AdminIDs; group chats keep AdminIDs a non-empty
// subset of Participants with the creator at index 0.
//
// MemberKeys mirrors Participants as a map so chats can be looked up with
// field-equality predicates (memberKeys.<userID> == true).
type Chat struct {
	ID                   string            `json:"id"`
	Type                 ChatType          `json:"type"`
	Name                 string            `json:"name"`
	Participants         []string          `json:"participants"`
	MemberKeys           map[string]bool   `json:"memberKeys"`
	AdminIDs             []string          `json:"adminIds"`
	LastMessage          string            `json:"lastMessage"`
	LastMessageTimestamp time.Time         `json:"lastMessageTimestamp"`
	UnreadCount          map[string]int    `json:"unreadCount"`
	ParticipantPhotos    map[string]string `json:"participantPhotos"`
	Nicknames            map[string]string `json:"nicknames"`
	CreatedAt            time.Time         `json:"createdAt"`
}

// IsAdmin reports whether userID may rename the chat, add participants or
// promote admins.
func (c *Chat) IsAdmin(userID string) bool {
	for _, id := range c.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Creator returns the original group creator, the only user permitted to
// demote admins.
func (c *Chat) Creator() string {
	if len(c.AdminIDs) == 0 {
		return ""
	}
	return c.AdminIDs[0]
}

func (c *Chat) HasParticipant(userID string) bool {
	return c.MemberKeys[userID]
}

// ChatMessage is a single message in a chat.
type ChatMessage struct {
	ID        string    `json:"id"`
	ChatID    string    `json:"chatId"`
	SenderID  string    `json:"senderId"`
	Text      string    `json:"text"`
	System    bool      `json:"system"`
	CreatedAt time.Time `json:"createdAt"`
}
