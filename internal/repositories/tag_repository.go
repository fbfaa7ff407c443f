package repositories

import (
	"context"
	"errors"

	"github.com/anonto42/inkwell/backend/internal/models"
	"gorm.io/gorm"
)

// TagRepository defines the interface for tag operations
type TagRepository interface {
	ListTags(ctx context.Context) ([]models.Tag, error)
	GetTagByID(ctx context.Context, id uint) (*models.Tag, error)
	GetTagByValue(ctx context.Context, value string) (*models.Tag, error)
	GetTagsByIDs(ctx context.Context, ids []uint) (map[uint]models.Tag, error)
	CreateTag(ctx context.Context, tag *models.Tag) error
	UpdateTag(ctx context.Context, tag *models.Tag) error
	DeleteTag(ctx context.Context, id uint) error
	FindOrCreate(ctx context.Context, tag models.Tag) (*models.Tag, error)
}

type postgresTagRepository struct {
	db *gorm.DB
}

func NewPostgresTagRepository(db *gorm.DB) TagRepository {
	return &postgresTagRepository{db: db}
}

func (r *postgresTagRepository) ListTags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	err := r.db.WithContext(ctx).Order("label ASC").Find(&tags).Error
	return tags, err
}

func (r *postgresTagRepository) GetTagByID(ctx context.Context, id uint) (*models.Tag, error) {
	var tag models.Tag
	if err := r.db.WithContext(ctx).First(&tag, id).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *postgresTagRepository) GetTagByValue(ctx context.Context, value string) (*models.Tag, error) {
	var tag models.Tag
	if err := r.db.WithContext(ctx).Where("value = ?", value).First(&tag).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *postgresTagRepository) GetTagsByIDs(ctx context.Context, ids []uint) (map[uint]models.Tag, error) {
	result := make(map[uint]models.Tag, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var tags []models.Tag
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&tags).Error; err != nil {
		return nil, err
	}
	for _, t := range tags {
		result[t.ID] = t
	}
	return result, nil
}

func (r *postgresTagRepository) CreateTag(ctx context.Context, tag *models.Tag) error {
	return r.db.WithContext(ctx).Create(tag).Error
}

func (r *postgresTagRepository) UpdateTag(ctx context.Context, tag *models.Tag) error {
	return r.db.WithContext(ctx).Save(tag).Error
}

func (r *postgresTagRepository) DeleteTag(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Tag{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindOrCreate returns the tag with the same value, creating it from tag when missing
func (r *postgresTagRepository) FindOrCreate(ctx context.Context, tag models.Tag) (*models.Tag, error) {
	existing, err := r.GetTagByValue(ctx, tag.Value)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if err := r.CreateTag(ctx, &tag); err != nil {
		return nil, err
	}
	return &tag, nil
}
