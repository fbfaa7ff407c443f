package repositories

import (
	"context"

	"github.com/anonto42/inkwell/backend/internal/models"
	"gorm.io/gorm"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentByID(ctx context.Context, id uint) (*models.Comment, error)
	GetCommentsByIDs(ctx context.Context, ids []uint) (map[uint]models.Comment, error)
	GetCommentsByPostID(ctx context.Context, postID string) ([]models.Comment, error)
	GetIDsByPostID(ctx context.Context, postID string) ([]uint, error)
	GetChildIDs(ctx context.Context, parentIDs []uint) ([]uint, error)
	CountByPostIDs(ctx context.Context, postIDs []string) (map[string]int64, error)
	DeleteComments(ctx context.Context, ids []uint) error
}

// PostgresCommentRepository implements CommentRepository for PostgreSQL
type PostgresCommentRepository struct {
	db *gorm.DB
}

// NewPostgresCommentRepository creates a new PostgresCommentRepository
func NewPostgresCommentRepository(db *gorm.DB) *PostgresCommentRepository {
	return &PostgresCommentRepository{db: db}
}

// CreateComment creates a new comment in PostgreSQL
func (r *PostgresCommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

// GetCommentByID retrieves a comment by ID from PostgreSQL
func (r *PostgresCommentRepository) GetCommentByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *PostgresCommentRepository) GetCommentsByIDs(ctx context.Context, ids []uint) (map[uint]models.Comment, error) {
	result := make(map[uint]models.Comment, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var comments []models.Comment
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&comments).Error; err != nil {
		return nil, err
	}
	for _, c := range comments {
		result[c.ID] = c
	}
	return result, nil
}

// GetCommentsByPostID returns every comment and reply of a post, oldest first
func (r *PostgresCommentRepository) GetCommentsByPostID(ctx context.Context, postID string) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// GetIDsByPostID returns the ids of every comment and reply of a post
func (r *PostgresCommentRepository) GetIDsByPostID(ctx context.Context, postID string) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("post_id = ?", postID).
		Pluck("id", &ids).Error
	return ids, err
}

// GetChildIDs returns the direct replies of all given parents in one query
func (r *PostgresCommentRepository) GetChildIDs(ctx context.Context, parentIDs []uint) ([]uint, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("parent_id IN ?", parentIDs).
		Pluck("id", &ids).Error
	return ids, err
}

// CountByPostIDs counts comments (replies included) per post
func (r *PostgresCommentRepository) CountByPostIDs(ctx context.Context, postIDs []string) (map[string]int64, error) {
	result := make(map[string]int64, len(postIDs))
	if len(postIDs) == 0 {
		return result, nil
	}
	var rows []struct {
		PostID string
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&models.Comment{}).
		Select("post_id, COUNT(*) AS count").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.PostID] = row.Count
	}
	return result, nil
}

// DeleteComments removes the given comments in a single statement
func (r *PostgresCommentRepository) DeleteComments(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&models.Comment{}).Error
}
