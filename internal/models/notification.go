package models

import "time"

type NotificationType string

const (
	NotificationLike    NotificationType = "like"
	NotificationComment NotificationType = "comment"
	NotificationReply   NotificationType = "reply"
)

// Notification is created as a side effect of likes, comments and replies. Only IsRead
// is ever updated.
type Notification struct {
	ID         uint             `json:"id" gorm:"primaryKey"`
	UserID     uint             `json:"userId" gorm:"index;not null"` // recipient
	FromUserID uint             `json:"fromUserId" gorm:"index;not null"`
	PostID     string           `json:"postId" gorm:"index;size:24"`
	CommentID  *uint            `json:"commentId,omitempty" gorm:"index"`
	Type       NotificationType `json:"type" gorm:"size:16;index"`
	IsRead     bool             `json:"isRead" gorm:"default:false;index"`
	CreatedAt  time.Time        `json:"createdAt" gorm:"index"`
}

// MarkReadRequest marks one notification when NotificationID is set, all otherwise
type MarkReadRequest struct {
	NotificationID uint `json:"notificationId"`
}
