package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type User struct {
	ID            uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Username      string         `json:"username" gorm:"uniqueIndex;not null"`
	Email         string         `json:"email" gorm:"uniqueIndex;not null"`
	FullName      string         `json:"fullName" gorm:"not null"`
	PasswordHash  string         `json:"-" gorm:"not null"`
	AvatarURL     string         `json:"avatarUrl" gorm:"not null"`
	CoverImageURL string         `json:"coverImageUrl"`
	RefreshToken  *string        `json:"-"`
	WatchHistory  datatypes.JSON `json:"watchHistory" gorm:"type:jsonb;default:'[]'"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// Sanitized returns a copy safe to hand back to callers. The password hash
// and the current refresh token never leave the service layer.
func (u User) Sanitized() *User {
	u.PasswordHash = ""
	u.RefreshToken = nil
	return &u
}
