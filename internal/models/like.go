package models

import "time"

// Like represents a like on a post
type Like struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PostID    string    `json:"postId" gorm:"index;size:24;uniqueIndex:idx_post_user_like"` // MongoDB ObjectID as string
	UserID    uint      `json:"userId" gorm:"index;uniqueIndex:idx_post_user_like"`
	CreatedAt time.Time `json:"createdAt"`
}

// LikePostRequest defines the request body for toggling a post like
type LikePostRequest struct {
	PostID string `json:"postId" validate:"required"`
}
