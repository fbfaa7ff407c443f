package repositories

import (
	"context"

	"github.com/anonto42/inkwell/backend/internal/models"
	"gorm.io/gorm"
)

// SavedPostRepository defines the interface for saved post operations
type SavedPostRepository interface {
	GetSavedPost(ctx context.Context, userID uint, postID string) (*models.SavedPost, error)
	SavePost(ctx context.Context, savedPost *models.SavedPost) error
	DeleteSavedPostByID(ctx context.Context, id uint) error
	DeleteByPostID(ctx context.Context, postID string) error
	GetSavedPostsByUser(ctx context.Context, userID uint) ([]models.SavedPost, error)
	GetSavedPostIDs(ctx context.Context, userID uint, postIDs []string) (map[string]bool, error)
}

// PostgresSavedPostRepository implements SavedPostRepository
type PostgresSavedPostRepository struct {
	db *gorm.DB
}

func NewPostgresSavedPostRepository(db *gorm.DB) *PostgresSavedPostRepository {
	return &PostgresSavedPostRepository{db: db}
}

func (r *PostgresSavedPostRepository) GetSavedPost(ctx context.Context, userID uint, postID string) (*models.SavedPost, error) {
	var saved models.SavedPost
	if err := r.db.WithContext(ctx).Where("user_id = ? AND post_id = ?", userID, postID).First(&saved).Error; err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *PostgresSavedPostRepository) SavePost(ctx context.Context, savedPost *models.SavedPost) error {
	return r.db.WithContext(ctx).Create(savedPost).Error
}

func (r *PostgresSavedPostRepository) DeleteSavedPostByID(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.SavedPost{}, id).Error
}

func (r *PostgresSavedPostRepository) DeleteByPostID(ctx context.Context, postID string) error {
	return r.db.WithContext(ctx).Where("post_id = ?", postID).Delete(&models.SavedPost{}).Error
}

func (r *PostgresSavedPostRepository) GetSavedPostsByUser(ctx context.Context, userID uint) ([]models.SavedPost, error) {
	var saved []models.SavedPost
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC, id DESC").Find(&saved).Error
	return saved, err
}

func (r *PostgresSavedPostRepository) GetSavedPostIDs(ctx context.Context, userID uint, postIDs []string) (map[string]bool, error) {
	result := make(map[string]bool)
	if len(postIDs) == 0 || userID == 0 {
		return result, nil
	}
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.SavedPost{}).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Pluck("post_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		result[id] = true
	}
	return result, nil
}
