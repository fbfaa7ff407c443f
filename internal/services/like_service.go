package services

import (
	"context"

	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/anonto42/inkwell/backend/internal/repositories"
	"github.com/rs/zerolog"
)

// LikeService toggles likes on posts and comments
type LikeService struct {
	likes        repositories.LikeRepository
	commentLikes repositories.CommentLikeRepository
	comments     repositories.CommentRepository
	posts        repositories.PostRepository
	notifier     *Notifier
	log          zerolog.Logger
}

func NewLikeService(repos *repositories.Repositories, notifier *Notifier, log zerolog.Logger) *LikeService {
	return &LikeService{
		likes:        repos.Likes,
		commentLikes: repos.CommentLikes,
		comments:     repos.Comments,
		posts:        repos.Posts,
		notifier:     notifier,
		log:          log.With().Str("component", "likes").Logger(),
	}
}

// TogglePost likes postID for userID, or unlikes it when already liked. It returns the new state.
func (s *LikeService) TogglePost(ctx context.Context, userID uint, postID string) (bool, error) {
	if postID == "" {
		return false, Invalid("Post ID is required")
	}
	if userID == 0 {
		return false, Unauthorized("Unauthorized")
	}
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return false, NotFound("Post not found")
		}
		return false, err
	}

	existing, err := s.likes.GetLike(ctx, postID, userID)
	if err != nil && !repositories.IsNotFound(err) {
		return false, err
	}

	if existing != nil {
		if err := s.likes.DeleteLikeByID(ctx, existing.ID); err != nil {
			return false, err
		}
		err := s.notifier.Retract(ctx, repositories.NotificationMatch{
			RecipientID: post.AuthorID,
			ActorID:     userID,
			PostID:      postID,
			Type:        models.NotificationLike,
		})
		return false, err
	}

	if err := s.likes.CreateLike(ctx, &models.Like{PostID: postID, UserID: userID}); err != nil {
		return false, err
	}
	_, err = s.notifier.Emit(ctx, models.Notification{
		UserID:     post.AuthorID,
		FromUserID: userID,
		PostID:     postID,
		Type:       models.NotificationLike,
	})
	return true, err
}

// ToggleComment is the comment counterpart of TogglePost
func (s *LikeService) ToggleComment(ctx context.Context, userID, commentID uint) (bool, error) {
	if commentID == 0 {
		return false, Invalid("Comment ID is required")
	}
	if userID == 0 {
		return false, Unauthorized("Unauthorized")
	}
	comment, err := s.comments.GetCommentByID(ctx, commentID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return false, NotFound("Comment not found")
		}
		return false, err
	}

	existing, err := s.commentLikes.GetCommentLike(ctx, commentID, userID)
	if err != nil && !repositories.IsNotFound(err) {
		return false, err
	}

	if existing != nil {
		if err := s.commentLikes.DeleteCommentLikeByID(ctx, existing.ID); err != nil {
			return false, err
		}
		err := s.notifier.Retract(ctx, repositories.NotificationMatch{
			RecipientID: comment.AuthorID,
			ActorID:     userID,
			PostID:      comment.PostID,
			CommentID:   &comment.ID,
			Type:        models.NotificationLike,
		})
		return false, err
	}

	if err := s.commentLikes.CreateCommentLike(ctx, &models.CommentLike{CommentID: commentID, UserID: userID}); err != nil {
		return false, err
	}
	_, err = s.notifier.Emit(ctx, models.Notification{
		UserID:     comment.AuthorID,
		FromUserID: userID,
		PostID:     comment.PostID,
		CommentID:  &comment.ID,
		Type:       models.NotificationLike,
	})
	return true, err
}
