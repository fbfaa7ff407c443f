package repositories

import (
	"context"

	"github.com/anonto42/inkwell/backend/internal/models"
	"gorm.io/gorm"
)

// CommentLikeRepository defines the interface for comment like operations
type CommentLikeRepository interface {
	GetCommentLike(ctx context.Context, commentID, userID uint) (*models.CommentLike, error)
	CreateCommentLike(ctx context.Context, like *models.CommentLike) error
	DeleteCommentLikeByID(ctx context.Context, id uint) error
	GetLikesByCommentIDs(ctx context.Context, commentIDs []uint) (map[uint][]models.CommentLike, error)
	DeleteByCommentIDs(ctx context.Context, commentIDs []uint) error
}

type postgresCommentLikeRepository struct {
	db *gorm.DB
}

func NewPostgresCommentLikeRepository(db *gorm.DB) CommentLikeRepository {
	return &postgresCommentLikeRepository{db: db}
}

func (r *postgresCommentLikeRepository) GetCommentLike(ctx context.Context, commentID, userID uint) (*models.CommentLike, error) {
	var like models.CommentLike
	err := r.db.WithContext(ctx).
		Where("comment_id = ? AND user_id = ?", commentID, userID).
		First(&like).Error
	if err != nil {
		return nil, err
	}
	return &like, nil
}

func (r *postgresCommentLikeRepository) CreateCommentLike(ctx context.Context, like *models.CommentLike) error {
	return r.db.WithContext(ctx).Create(like).Error
}

func (r *postgresCommentLikeRepository) DeleteCommentLikeByID(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.CommentLike{}, id).Error
}

// GetLikesByCommentIDs groups the likes of many comments by comment id, oldest first
func (r *postgresCommentLikeRepository) GetLikesByCommentIDs(ctx context.Context, commentIDs []uint) (map[uint][]models.CommentLike, error) {
	result := make(map[uint][]models.CommentLike, len(commentIDs))
	if len(commentIDs) == 0 {
		return result, nil
	}
	var likes []models.CommentLike
	err := r.db.WithContext(ctx).
		Where("comment_id IN ?", commentIDs).
		Order("id ASC").
		Find(&likes).Error
	if err != nil {
		return nil, err
	}
	for _, l := range likes {
		result[l.CommentID] = append(result[l.CommentID], l)
	}
	return result, nil
}

func (r *postgresCommentLikeRepository) DeleteByCommentIDs(ctx context.Context, commentIDs []uint) error {
	if len(commentIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("comment_id IN ?", commentIDs).Delete(&models.CommentLike{}).Error
}
