package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/beaconsafety/beacon-server/internal/docstore"
	"github.com/beaconsafety/beacon-server/internal/models"
)

const directChatGreeting = "Say hello to your new friend!"

// ChatService provisions chats and administers group membership. Admin
// list mutation is read-modify-write without a cross-operation lock; under
// true concurrency the last writer wins.
type ChatService struct {
	store    docstore.Store
	identity Identity
	profiles ProfileServiceInterface
	notifier NotificationServiceInterface
}

func NewChatService(store docstore.Store, identity Identity, profiles ProfileServiceInterface, notifier NotificationServiceInterface) *ChatService {
	return &ChatService{store: store, identity: identity, profiles: profiles, notifier: notifier}
}

// EnsureDirectChat returns the chat whose participants are exactly
// {userA, userB}, creating it if absent. Calling it again returns the same
// chat id.
func (s *ChatService) EnsureDirectChat(ctx context.Context, userA, userB string) (string, error) {
	if userA == "" || userB == "" || userA == userB {
		return "", ErrInvalidInput
	}

	existing, err := s.findDirectChat(ctx, userA, userB)
	if err != nil {
		return "", err
	}
	if existing != "" {
		return existing, nil
	}

	chat := &models.Chat{
		ID:                   uuid.NewString(),
		Type:                 models.ChatTypeDirect,
		Participants:         []string{userA, userB},
		MemberKeys:           map[string]bool{userA: true, userB: true},
		AdminIDs:             []string{},
		LastMessage:          directChatGreeting,
		LastMessageTimestamp: time.Now().UTC(),
		UnreadCount:          map[string]int{userA: 0, userB: 0},
		ParticipantPhotos:    map[string]string{},
		Nicknames:            map[string]string{},
		CreatedAt:            time.Now().UTC(),
	}
	if err := s.writeChat(ctx, chat); err != nil {
		return "", err
	}
	return chat.ID, nil
}

// CreateGroupChat creates a group with the caller as its sole admin and
// fans out an invite notification to every other participant.
func (s *ChatService) CreateGroupChat(ctx context.Context, name string, participantIDs []string) (string, error) {
	creatorID := s.identity.CurrentUserID(ctx)
	if creatorID == "" {
		return "", ErrNotAuthenticated
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrInvalidInput
	}

	participants := []string{creatorID}
	memberKeys := map[string]bool{creatorID: true}
	unread := map[string]int{creatorID: 0}
	for _, id := range participantIDs {
		if id == "" || memberKeys[id] {
			continue
		}
		participants = append(participants, id)
		memberKeys[id] = true
		unread[id] = 0
	}
	if len(participants) < 3 {
		return "", ErrInsufficientParticipants
	}

	chat := &models.Chat{
		ID:                   uuid.NewString(),
		Type:                 models.ChatTypeGroup,
		Name:                 name,
		Participants:         participants,
		MemberKeys:           memberKeys,
		AdminIDs:             []string{creatorID},
		LastMessage:          fmt.Sprintf("Group %q created", name),
		LastMessageTimestamp: time.Now().UTC(),
		UnreadCount:          unread,
		ParticipantPhotos:    map[string]string{},
		Nicknames:            map[string]string{},
		CreatedAt:            time.Now().UTC(),
	}
	if err := s.writeChat(ctx, chat); err != nil {
		return "", err
	}

	creator, err := s.profiles.GetByID(ctx, creatorID)
	if err != nil {
		return "", err
	}
	s.notifier.NotifyGroupInvite(ctx, participants[1:], creator, chat.ID, name)

	return chat.ID, nil
}

func (s *ChatService) GetByID(ctx context.Context, chatID string) (*models.Chat, error) {
	doc, err := s.store.Get(ctx, colChats, chatID)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, ErrChatNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting chat: %w", err)
	}

	chat := &models.Chat{}
	if err := doc.DataTo(chat); err != nil {
		return nil, err
	}
	return chat, nil
}

func (s *ChatService) ListForUser(ctx context.Context) ([]models.Chat, error) {
	userID := s.identity.CurrentUserID(ctx)
	if userID == "" {
		return nil, ErrNotAuthenticated
	}

	docs, err := s.store.Query(ctx, colChats, docstore.Eq("memberKeys."+userID, true))
	if err != nil {
		return nil, fmt.Errorf("listing chats: %w", err)
	}

	chats := []models.Chat{}
	for _, doc := range docs {
		var c models.Chat
		if err := doc.DataTo(&c); err != nil {
			return nil, err
		}
		chats = append(chats, c)
	}
	return chats, nil
}

func (s *ChatService) RenameGroup(ctx context.Context, chatID, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return ErrInvalidInput
	}

	chat, actorID, err := s.loadForActor(ctx, chatID)
	if err != nil {
		return err
	}
	if !chat.IsAdmin(actorID) {
		return ErrNotAuthorized
	}

	err = s.store.Update(ctx, colChats, chatID, []docstore.Update{
		docstore.SetField(newName, "name"),
	})
	if err != nil {
		return fmt.Errorf("renaming group: %w", err)
	}
	return nil
}

func (s *ChatService) AddAdmin(ctx context.Context, chatID, targetID string) error {
	chat, actorID, err := s.loadForActor(ctx, chatID)
	if err != nil {
		return err
	}
	if !chat.IsAdmin(actorID) {
		return ErrNotAuthorized
	}
	if !chat.HasParticipant(targetID) {
		return ErrNotParticipant
	}
	if chat.IsAdmin(targetID) {
		return ErrAlreadyAdmin
	}

	err = s.store.Update(ctx, colChats, chatID, []docstore.Update{
		docstore.SetField(append(chat.AdminIDs, targetID), "adminIds"),
	})
	if err != nil {
		return fmt.Errorf("adding admin: %w", err)
	}
	return nil
}

// RemoveAdmin demotes an admin. Only the original creator may demote, the
// creator can never be demoted, and the admin set can never become empty.
func (s *ChatService) RemoveAdmin(ctx context.Context, chatID, targetID string) error {
	chat, actorID, err := s.loadForActor(ctx, chatID)
	if err != nil {
		return err
	}
	if actorID != chat.Creator() {
		return ErrNotAuthorized
	}
	if targetID == chat.Creator() {
		return ErrCannotRemoveCreator
	}
	if !chat.IsAdmin(targetID) {
		return ErrNotAdmin
	}

	remaining := make([]string, 0, len(chat.AdminIDs)-1)
	for _, id := range chat.AdminIDs {
		if id != targetID {
			remaining = append(remaining, id)
		}
	}
	if len(remaining) == 0 {
		return ErrLastAdmin
	}

	err = s.store.Update(ctx, colChats, chatID, []docstore.Update{
		docstore.SetField(remaining, "adminIds"),
	})
	if err != nil {
		return fmt.Errorf("removing admin: %w", err)
	}
	return nil
}

// AddParticipants appends the given users, silently dropping ids already
// present, and announces the change with a system message.
func (s *ChatService) AddParticipants(ctx context.Context, chatID string, newIDs []string) error {
	chat, actorID, err := s.loadForActor(ctx, chatID)
	if err != nil {
		return err
	}
	if !chat.IsAdmin(actorID) {
		return ErrNotAuthorized
	}

	var added []string
	for _, id := range newIDs {
		if id == "" || chat.HasParticipant(id) {
			continue
		}
		chat.Participants = append(chat.Participants, id)
		chat.MemberKeys[id] = true
		added = append(added, id)
	}
	if len(added) == 0 {
		return ErrNoNewParticipants
	}

	announcement := fmt.Sprintf("%d participant(s) joined the group", len(added))
	updates := []docstore.Update{
		docstore.SetField(chat.Participants, "participants"),
		docstore.SetField(announcement, "lastMessage"),
		docstore.SetField(time.Now().UTC(), "lastMessageTimestamp"),
	}
	for _, id := range added {
		updates = append(updates,
			docstore.SetField(true, "memberKeys", id),
			docstore.SetField(0, "unreadCount", id),
		)
	}

	message := s.systemMessage(chatID, announcement)
	messageFields, err := docstore.FieldsOf(message)
	if err != nil {
		return err
	}
	err = s.store.Batch(ctx, []docstore.Write{
		{Op: docstore.WriteUpdate, Collection: colChats, ID: chatID, Updates: updates},
		{Op: docstore.WriteSet, Collection: colMessages, ID: message.ID, Fields: messageFields},
	})
	if err != nil {
		return fmt.Errorf("adding participants: %w", err)
	}

	actor, err := s.profiles.GetByID(ctx, actorID)
	if err == nil && chat.Type == models.ChatTypeGroup {
		s.notifier.NotifyGroupInvite(ctx, added, actor, chatID, chat.Name)
	}

	return nil
}

// PostMessage appends a message, updates the chat preview and bumps the
// unread counter of every other participant.
func (s *ChatService) PostMessage(ctx context.Context, chatID, text string) (*models.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrInvalidInput
	}

	chat, actorID, err := s.loadForActor(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.HasParticipant(actorID) {
		return nil, ErrNotParticipant
	}

	message := &models.ChatMessage{
		ID:        uuid.NewString(),
		ChatID:    chatID,
		SenderID:  actorID,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	messageFields, err := docstore.FieldsOf(message)
	if err != nil {
		return nil, err
	}

	updates := []docstore.Update{
		docstore.SetField(text, "lastMessage"),
		docstore.SetField(message.CreatedAt, "lastMessageTimestamp"),
	}
	for _, id := range chat.Participants {
		if id == actorID {
			continue
		}
		updates = append(updates, docstore.SetField(chat.UnreadCount[id]+1, "unreadCount", id))
	}

	err = s.store.Batch(ctx, []docstore.Write{
		{Op: docstore.WriteSet, Collection: colMessages, ID: message.ID, Fields: messageFields},
		{Op: docstore.WriteUpdate, Collection: colChats, ID: chatID, Updates: updates},
	})
	if err != nil {
		return nil, fmt.Errorf("posting message: %w", err)
	}
	return message, nil
}

// ListMessages returns the chat's messages, oldest first.
func (s *ChatService) ListMessages(ctx context.Context, chatID string) ([]models.ChatMessage, error) {
	chat, actorID, err := s.loadForActor(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.HasParticipant(actorID) {
		return nil, ErrNotParticipant
	}

	docs, err := s.store.Query(ctx, colMessages, docstore.Eq("chatId", chatID))
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}

	messages := []models.ChatMessage{}
	for _, doc := range docs {
		var m models.ChatMessage
		if err := doc.DataTo(&m); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	sort.Slice(messages, func(i, j int) bool {
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})
	return messages, nil
}

// MarkRead zeroes the caller's unread counter on the chat.
func (s *ChatService) MarkRead(ctx context.Context, chatID string) error {
	chat, actorID, err := s.loadForActor(ctx, chatID)
	if err != nil {
		return err
	}
	if !chat.HasParticipant(actorID) {
		return ErrNotParticipant
	}

	err = s.store.Update(ctx, colChats, chatID, []docstore.Update{
		docstore.SetField(0, "unreadCount", actorID),
	})
	if err != nil {
		return fmt.Errorf("marking chat read: %w", err)
	}
	return nil
}

func (s *ChatService) loadForActor(ctx context.Context, chatID string) (*models.Chat, string, error) {
	actorID := s.identity.CurrentUserID(ctx)
	if actorID == "" {
		return nil, "", ErrNotAuthenticated
	}
	chat, err := s.GetByID(ctx, chatID)
	if err != nil {
		return nil, "", err
	}
	return chat, actorID, nil
}

func (s *ChatService) findDirectChat(ctx context.Context, userA, userB string) (string, error) {
	docs, err := s.store.Query(ctx, colChats,
		docstore.Eq("type", models.ChatTypeDirect),
		docstore.Eq("memberKeys."+userA, true),
		docstore.Eq("memberKeys."+userB, true),
	)
	if err != nil {
		return "", fmt.Errorf("finding direct chat: %w", err)
	}
	for _, doc := range docs {
		var c models.Chat
		if err := doc.DataTo(&c); err != nil {
			return "", err
		}
		if len(c.Participants) == 2 {
			return c.ID, nil
		}
	}
	return "", nil
}

func (s *ChatService) writeChat(ctx context.Context, chat *models.Chat) error {
	fields, err := docstore.FieldsOf(chat)
	if err != nil {
		return err
	}
	if err := s.store.Set(ctx, colChats, chat.ID, fields); err != nil {
		return fmt.Errorf("writing chat: %w", err)
	}
	return nil
}

func (s *ChatService) systemMessage(chatID, text string) *models.ChatMessage {
	return &models.ChatMessage{
		ID:        uuid.NewString(),
		ChatID:    chatID,
		Text:      text,
		System:    true,
		CreatedAt: time.Now().UTC(),
	}
}
