package models

import "time"

// Comment represents a comment on a post. Replies point at their parent through ParentID
// and always share the parent's PostID.
type Comment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	AuthorID  uint      `json:"authorId" gorm:"index;not null"`
	PostID    string    `json:"postId" gorm:"index;size:24;not null"` // MongoDB ObjectID as hex string
	ParentID  *uint     `json:"parentId" gorm:"index"`
	CreatedAt time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreateCommentRequest defines the request body for creating a new comment
type CreateCommentRequest struct {
	PostID  string `json:"postID" validate:"required"`
	Content string `json:"content" validate:"required,min=1,max=5000"`
}

// CreateReplyRequest defines the request body for replying to a comment
type CreateReplyRequest struct {
	CommentID uint   `json:"commentId" validate:"required"`
	ReplyText string `json:"replyText" validate:"required,min=1,max=5000"`
}

// LikeCommentRequest defines the request body for toggling a comment like
type LikeCommentRequest struct {
	CommentID uint `json:"commentId" validate:"required"`
}
