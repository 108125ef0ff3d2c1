package services

import "errors"

var (
	ErrNotAuthenticated = errors.New("not authenticated")

	ErrProfileNotFound = errors.New("profile not found")
	ErrRequestNotFound = errors.New("friend request not found")
	ErrChatNotFound    = errors.New("chat not found")
	ErrReportNotFound  = errors.New("report not found")
	ErrNotFriends      = errors.New("users are not friends")

	ErrDuplicateRequest = errors.New("friend request already pending")
	ErrAlreadyFriends   = errors.New("users are already friends")
	ErrAlreadyAdmin     = errors.New("user is already an admin")
	ErrNotAdmin         = errors.New("user is not an admin")
	ErrUsernameTaken    = errors.New("username already taken")
	ErrEmailTaken       = errors.New("email already registered")

	ErrNotAuthorized       = errors.New("not authorized")
	ErrNotParticipant      = errors.New("user is not a chat participant")
	ErrCannotRemoveCreator = errors.New("cannot remove the group creator")
	ErrLastAdmin           = errors.New("group must retain at least one admin")

	ErrInvalidInput             = errors.New("invalid input")
	ErrNoNewParticipants        = errors.New("no new participants to add")
	ErrInsufficientParticipants = errors.New("group chats need at least two other participants")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionNotFound    = errors.New("session not found")
)
