package repositories

import (
	"errors"

	"github.com/anonto42/inkwell/backend/internal/models"
	"gorm.io/gorm"
)

// ErrPostNotFound is returned by PostRepository lookups that match no document
var ErrPostNotFound = errors.New("post not found")

// IsNotFound reports whether err means the requested record does not exist in either store
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, ErrPostNotFound)
}

// Repositories groups every repository the services depend on
type Repositories struct {
	Users         UserRepository
	Posts         PostRepository
	Comments      CommentRepository
	CommentLikes  CommentLikeRepository
	Likes         LikeRepository
	SavedPosts    SavedPostRepository
	Follows       FollowRepository
	Tags          TagRepository
	Notifications NotificationRepository
}

// NewRepositories builds the relational repositories on db next to the given post store
func NewRepositories(db *gorm.DB, posts PostRepository) *Repositories {
	return &Repositories{
		Users:         NewPostgresUserRepository(db),
		Posts:         posts,
		Comments:      NewPostgresCommentRepository(db),
		CommentLikes:  NewPostgresCommentLikeRepository(db),
		Likes:         NewPostgresLikeRepository(db),
		SavedPosts:    NewPostgresSavedPostRepository(db),
		Follows:       NewPostgresFollowRepository(db),
		Tags:          NewPostgresTagRepository(db),
		Notifications: NewPostgresNotificationRepository(db),
	}
}

// Migrate creates or updates the relational tables
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Comment{},
		&models.Like{},
		&models.CommentLike{},
		&models.SavedPost{},
		&models.Follow{},
		&models.Tag{},
		&models.Notification{},
	)
}
