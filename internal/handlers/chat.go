package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/beaconsafety/beacon-server/internal/models"
	"github.com/beaconsafety/beacon-server/internal/services"
)

type ChatHandler struct {
	chatService services.ChatServiceInterface
}

func NewChatHandler(chatService services.ChatServiceInterface) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

type CreateGroupRequest struct {
	Name         string   `json:"name"`
	Participants []string `json:"participants"`
}

type ChatCreatedResponse struct {
	ChatID string `json:"chat_id"`
}

type ChatResponse struct {
	Chat *models.Chat `json:"chat"`
}

type ChatListResponse struct {
	Chats []models.Chat `json:"chats"`
}

type MessageListResponse struct {
	Messages []models.ChatMessage `json:"messages"`
}

type PostMessageRequest struct {
	Text string `json:"text"`
}

type PostMessageResponse struct {
	Message *models.ChatMessage `json:"message"`
}

type RenameGroupRequest struct {
	Name string `json:"name"`
}

type AdminRequest struct {
	UserID string `json:"user_id"`
}

type AddParticipantsRequest struct {
	Participants []string `json:"participants"`
}

type ChatMessageResponse struct {
	Message string `json:"message"`
}

func (h *ChatHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	chatID, err := h.chatService.CreateGroupChat(r.Context(), req.Name, req.Participants)
	if errors.Is(err, services.ErrInvalidInput) {
		writeError(w, http.StatusBadRequest, "Group name is required")
		return
	}
	if errors.Is(err, services.ErrInsufficientParticipants) {
		writeError(w, http.StatusBadRequest, "Group chats need at least two other participants")
		return
	}
	if err != nil {
		log.Printf("Error creating group chat: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, ChatCreatedResponse{ChatID: chatID})
}

func (h *ChatHandler) List(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	chats, err := h.chatService.ListForUser(r.Context())
	if err != nil {
		log.Printf("Error listing chats: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, ChatListResponse{Chats: chats})
}

func (h *ChatHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	chat, err := h.chatService.GetByID(r.Context(), r.PathValue("id"))
	if errors.Is(err, services.ErrChatNotFound) {
		writeError(w, http.StatusNotFound, "Chat not found")
		return
	}
	if err != nil {
		log.Printf("Error getting chat: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if !chat.HasParticipant(user.ID) {
		writeError(w, http.StatusForbidden, "You are not a participant of this chat")
		return
	}

	writeJSON(w, http.StatusOK, ChatResponse{Chat: chat})
}

func (h *ChatHandler) Rename(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req RenameGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	err := h.chatService.RenameGroup(r.Context(), r.PathValue("id"), req.Name)
	if h.writeChatError(w, err, "renaming group") {
		return
	}

	writeJSON(w, http.StatusOK, ChatMessageResponse{Message: "Group renamed"})
}

func (h *ChatHandler) AddAdmin(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req AdminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	err := h.chatService.AddAdmin(r.Context(), r.PathValue("id"), req.UserID)
	if errors.Is(err, services.ErrAlreadyAdmin) {
		writeError(w, http.StatusConflict, "User is already an admin")
		return
	}
	if h.writeChatError(w, err, "adding admin") {
		return
	}

	writeJSON(w, http.StatusOK, ChatMessageResponse{Message: "Admin added"})
}

func (h *ChatHandler) RemoveAdmin(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	err := h.chatService.RemoveAdmin(r.Context(), r.PathValue("id"), r.PathValue("userId"))
	if errors.Is(err, services.ErrCannotRemoveCreator) {
		writeError(w, http.StatusBadRequest, "The group creator cannot be demoted")
		return
	}
	if errors.Is(err, services.ErrNotAdmin) {
		writeError(w, http.StatusBadRequest, "User is not an admin")
		return
	}
	if errors.Is(err, services.ErrLastAdmin) {
		writeError(w, http.StatusBadRequest, "Groups must retain at least one admin")
		return
	}
	if h.writeChatError(w, err, "removing admin") {
		return
	}

	writeJSON(w, http.StatusOK, ChatMessageResponse{Message: "Admin removed"})
}

func (h *ChatHandler) AddParticipants(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req AddParticipantsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	err := h.chatService.AddParticipants(r.Context(), r.PathValue("id"), req.Participants)
	if errors.Is(err, services.ErrNoNewParticipants) {
		writeError(w, http.StatusBadRequest, "All listed users are already participants")
		return
	}
	if h.writeChatError(w, err, "adding participants") {
		return
	}

	writeJSON(w, http.StatusOK, ChatMessageResponse{Message: "Participants added"})
}

func (h *ChatHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req PostMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	message, err := h.chatService.PostMessage(r.Context(), r.PathValue("id"), req.Text)
	if errors.Is(err, services.ErrInvalidInput) {
		writeError(w, http.StatusBadRequest, "Message text is required")
		return
	}
	if h.writeChatError(w, err, "posting message") {
		return
	}

	writeJSON(w, http.StatusCreated, PostMessageResponse{Message: message})
}

func (h *ChatHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	messages, err := h.chatService.ListMessages(r.Context(), r.PathValue("id"))
	if h.writeChatError(w, err, "listing messages") {
		return
	}

	writeJSON(w, http.StatusOK, MessageListResponse{Messages: messages})
}

func (h *ChatHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	err := h.chatService.MarkRead(r.Context(), r.PathValue("id"))
	if h.writeChatError(w, err, "marking chat read") {
		return
	}

	writeJSON(w, http.StatusOK, ChatMessageResponse{Message: "Chat marked as read"})
}

// writeChatError maps the shared chat service errors to HTTP responses.
// Returns true if a response was written.
func (h *ChatHandler) writeChatError(w http.ResponseWriter, err error, action string) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, services.ErrChatNotFound) {
		writeError(w, http.StatusNotFound, "Chat not found")
		return true
	}
	if errors.Is(err, services.ErrNotAuthorized) {
		writeError(w, http.StatusForbidden, "Only a group admin can do that")
		return true
	}
	if errors.Is(err, services.ErrNotParticipant) {
		writeError(w, http.StatusForbidden, "You are not a participant of this chat")
		return true
	}
	log.Printf("Error %s: %v", action, err)
	writeError(w, http.StatusInternalServerError, "Internal server error")
	return true
}
