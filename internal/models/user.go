package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// PlaceholderAvatar is served whenever a user has not uploaded a profile picture
const PlaceholderAvatar = "https://res.cloudinary.com/dayo1mpv0/image/upload/v1683686792/default/profile.jpg"

type User struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name"`
	Username    string    `json:"username" gorm:"uniqueIndex;size:64"`
	Email       string    `json:"email" gorm:"uniqueIndex"` // Ensure email is unique across all users
	Password    string    `json:"-"`                        // Store hashed password, ignore for JSON serialization
	Avatar      string    `json:"avatar"`
	Bio         string    `json:"bio"`
	Site        string    `json:"site"`
	FirebaseUID *string   `json:"-" gorm:"uniqueIndex"` // Link to Firebase User UID, nil for local accounts
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// UserCompact is the author/actor shape embedded in posts, comments and notifications
type UserCompact struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
	Bio      string `json:"bio,omitempty"`
}

// AvatarOrPlaceholder returns the avatar URL, falling back to the placeholder image
func (u *User) AvatarOrPlaceholder() string {
	if u.Avatar == "" {
		return PlaceholderAvatar
	}
	return u.Avatar
}

func (u *User) ToCompact() UserCompact {
	return UserCompact{
		ID:       u.ID,
		Name:     u.Name,
		Username: u.Username,
		Avatar:   u.AvatarOrPlaceholder(),
		Bio:      u.Bio,
	}
}

type CreateLocalUserRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=50"`
	Username string `json:"username" validate:"required,min=3,max=32,alphanum"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateUserRequest struct {
	Name   string `json:"name,omitempty" validate:"omitempty,min=2,max=50"`
	Avatar string `json:"avatar,omitempty" validate:"omitempty,url"`
	Bio    string `json:"bio,omitempty" validate:"omitempty,max=280"`
	Site   string `json:"site,omitempty" validate:"omitempty,url"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID   uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}
