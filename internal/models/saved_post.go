package models

import "time"

// SavedPost represents a reading-list bookmark
type SavedPost struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"userId" gorm:"index;uniqueIndex:idx_user_post_save"`
	PostID    string    `json:"postId" gorm:"index;size:24;uniqueIndex:idx_user_post_save"`
	CreatedAt time.Time `json:"createdAt"`
}

type SavePostRequest struct {
	PostID string `json:"postID" validate:"required"`
}
