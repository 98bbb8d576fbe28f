package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Account roles
const (
	UserTypeBrand   = "brand"
	UserTypeCreator = "creator"
)

// NormalizeUserType maps accepted spellings onto a role, or "" when unknown.
// "influencer" is the legacy name for creators.
func NormalizeUserType(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case UserTypeBrand:
		return UserTypeBrand
	case UserTypeCreator, "influencer":
		return UserTypeCreator
	}
	return ""
}

// Account is a brand or a creator. Each role lives in its own table.
type Account struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	UserType     string    `json:"userType"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Identity is the authenticated caller as carried by the access token.
type Identity struct {
	UserID   uuid.UUID
	UserType string
	Name     string
	Email    string
}

func (i Identity) IsBrand() bool   { return i.UserType == UserTypeBrand }
func (i Identity) IsCreator() bool { return i.UserType == UserTypeCreator }
