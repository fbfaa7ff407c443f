package services

import (
	"context"
	"time"

	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/anonto42/inkwell/backend/internal/repositories"
	"github.com/rs/zerolog"
)

// Notifier records notifications produced by likes, comments and replies
type Notifier struct {
	notifications repositories.NotificationRepository
	users         repositories.UserRepository
	posts         repositories.PostRepository
	comments      repositories.CommentRepository
	log           zerolog.Logger
}

func NewNotifier(repos *repositories.Repositories, log zerolog.Logger) *Notifier {
	return &Notifier{
		notifications: repos.Notifications,
		users:         repos.Users,
		posts:         repos.Posts,
		comments:      repos.Comments,
		log:           log.With().Str("component", "notifier").Logger(),
	}
}

// Emit stores n unless the actor is also the recipient. It reports whether a row was written.
func (n *Notifier) Emit(ctx context.Context, notification models.Notification) (bool, error) {
	if notification.UserID == 0 || notification.UserID == notification.FromUserID {
		return false, nil
	}
	if err := n.notifications.CreateNotification(ctx, &notification); err != nil {
		return false, err
	}
	n.log.Debug().
		Uint("recipient", notification.UserID).
		Uint("actor", notification.FromUserID).
		Str("type", string(notification.Type)).
		Msg("notification emitted")
	return true, nil
}

// Retract deletes exactly the notifications an undone action had emitted
func (n *Notifier) Retract(ctx context.Context, match repositories.NotificationMatch) error {
	removed, err := n.notifications.DeleteMatching(ctx, match)
	if err != nil {
		return err
	}
	n.log.Debug().Int64("removed", removed).Str("type", string(match.Type)).Msg("notification retracted")
	return nil
}

type NotificationActor struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Avatar   string `json:"avatar"`
}

type NotificationPost struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Path  string `json:"path"`
}

type NotificationComment struct {
	ID      uint   `json:"id"`
	Content string `json:"content"`
}

// NotificationView is a notification with the shallow references needed to render it
type NotificationView struct {
	ID         uint                    `json:"id"`
	UserID     uint                    `json:"userId"`
	FromUserID uint                    `json:"fromUserId"`
	PostID     string                  `json:"postId"`
	CommentID  *uint                   `json:"commentId"`
	Type       models.NotificationType `json:"type"`
	IsRead     bool                    `json:"isRead"`
	CreatedAt  time.Time               `json:"createdAt"`
	FromUser   *NotificationActor      `json:"fromUser"`
	Post       *NotificationPost       `json:"post"`
	Comment    *NotificationComment    `json:"comment"`
}

// List returns every notification of recipientID, newest first
func (n *Notifier) List(ctx context.Context, recipientID uint) ([]NotificationView, error) {
	if recipientID == 0 {
		return nil, Unauthorized("Unauthorized")
	}
	rows, _, err := n.notifications.GetByRecipientID(ctx, recipientID, 1, 0)
	if err != nil {
		return nil, err
	}

	actorIDs := make([]uint, 0, len(rows))
	postIDs := make([]string, 0, len(rows))
	commentIDs := make([]uint, 0, len(rows))
	for _, row := range rows {
		actorIDs = append(actorIDs, row.FromUserID)
		if row.PostID != "" {
			postIDs = append(postIDs, row.PostID)
		}
		if row.CommentID != nil {
			commentIDs = append(commentIDs, *row.CommentID)
		}
	}

	actors, err := n.users.GetUsersByIDs(ctx, uniqueUints(actorIDs))
	if err != nil {
		return nil, err
	}
	posts, err := n.posts.GetPostsByIDs(ctx, uniqueStrings(postIDs))
	if err != nil {
		return nil, err
	}
	postByID := make(map[string]models.Post, len(posts))
	for _, p := range posts {
		postByID[p.ID.Hex()] = p
	}
	comments, err := n.comments.GetCommentsByIDs(ctx, uniqueUints(commentIDs))
	if err != nil {
		return nil, err
	}

	views := make([]NotificationView, len(rows))
	for i, row := range rows {
		v := NotificationView{
			ID:         row.ID,
			UserID:     row.UserID,
			FromUserID: row.FromUserID,
			PostID:     row.PostID,
			CommentID:  row.CommentID,
			Type:       row.Type,
			IsRead:     row.IsRead,
			CreatedAt:  row.CreatedAt,
		}
		if u, ok := actors[row.FromUserID]; ok {
			v.FromUser = &NotificationActor{ID: u.ID, Username: u.Username, Name: u.Name, Avatar: u.AvatarOrPlaceholder()}
		}
		if p, ok := postByID[row.PostID]; ok {
			v.Post = &NotificationPost{ID: p.ID.Hex(), Title: p.Title, Path: p.Path}
		}
		if row.CommentID != nil {
			if c, ok := comments[*row.CommentID]; ok {
				v.Comment = &NotificationComment{ID: c.ID, Content: c.Content}
			}
		}
		views[i] = v
	}
	return views, nil
}

// MarkRead marks one notification of recipientID as read, or all of them when notificationID is 0
func (n *Notifier) MarkRead(ctx context.Context, recipientID, notificationID uint) error {
	if recipientID == 0 {
		return Unauthorized("Unauthorized")
	}
	if notificationID == 0 {
		_, err := n.notifications.MarkAllAsRead(ctx, recipientID)
		return err
	}
	err := n.notifications.MarkAsRead(ctx, recipientID, notificationID)
	if repositories.IsNotFound(err) {
		return NotFound("Notification not found")
	}
	return err
}

func (n *Notifier) UnreadCount(ctx context.Context, recipientID uint) (int64, error) {
	if recipientID == 0 {
		return 0, Unauthorized("Unauthorized")
	}
	return n.notifications.GetUnreadCount(ctx, recipientID)
}

func uniqueUints(in []uint) []uint {
	seen := make(map[uint]struct{}, len(in))
	out := make([]uint, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
