package models

import "time"

type ProfileType string

const (
	ProfileTypePublic  ProfileType = "public"
	ProfileTypePrivate ProfileType = "private"
)

// UserProfile is the public identity document for a user. Created on first
// login; mutated only by its owner; never deleted.
type UserProfile struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Username    string      `json:"username"`
	Email       string      `json:"email"`
	ProfileType ProfileType `json:"profileType"`
	PhotoURL    string      `json:"photoUrl,omitempty"`
	JoinDate    time.Time   `json:"joinDate"`
}

type CreateProfileParams struct {
	Name        string
	Username    string
	Email       string
	ProfileType ProfileType
}

type UpdateProfileParams struct {
	Name        *string
	ProfileType *ProfileType
	PhotoURL    *string
}
