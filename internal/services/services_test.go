package services

import (
	"context"
	"testing"
	"time"

	"github.com/anonto42/inkwell/backend/internal/content"
	"github.com/anonto42/inkwell/backend/internal/identity"
	"github.com/anonto42/inkwell/backend/internal/mocks"
	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/anonto42/inkwell/backend/internal/repositories"
	"github.com/anonto42/inkwell/backend/internal/throttle"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	db    *gorm.DB
	repos *repositories.Repositories
	posts *mocks.MockPostRepository
	media *mocks.MockMediaStore
	now   time.Time
	svc   *Services
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithFirebase(t, nil)
}

func newTestEnvWithFirebase(t *testing.T, fb FirebaseVerifier) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, repositories.Migrate(db))

	env := &testEnv{
		db:    db,
		posts: mocks.NewMockPostRepository(),
		media: mocks.NewMockMediaStore(),
		now:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	env.repos = repositories.NewRepositories(db, env.posts)
	views := throttle.New(throttle.DefaultCooldown, throttle.WithClock(func() time.Time { return env.now }))
	env.svc = NewServices(env.repos, Options{
		Tokens:   identity.NewTokens("test-secret", time.Hour),
		Media:    env.media,
		Firebase: fb,
		Views:    views,
	}, zerolog.Nop())
	return env
}

func (e *testEnv) user(t *testing.T, username string) *models.User {
	t.Helper()
	u := &models.User{Name: username, Username: username, Email: username + "@example.com"}
	require.NoError(t, e.repos.Users.CreateUser(context.Background(), u))
	return u
}

// post stores a published post directly; age pushes CreatedAt into the past
func (e *testEnv) post(t *testing.T, authorID uint, title string, age time.Duration) *models.Post {
	t.Helper()
	p := &models.Post{
		AuthorID:  authorID,
		Title:     title,
		Path:      content.PathFromTitle(title),
		Type:      models.PostPublished,
		Content:   content.Document{Blocks: []content.Block{{Type: "paragraph", Data: map[string]interface{}{"text": title}}}},
		CreatedAt: e.now.Add(-age),
	}
	require.NoError(t, e.posts.CreatePost(context.Background(), p))
	return p
}

func (e *testEnv) notifications(t *testing.T) []models.Notification {
	t.Helper()
	var rows []models.Notification
	require.NoError(t, e.db.Order("id").Find(&rows).Error)
	return rows
}

func (e *testEnv) count(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(model).Count(&n).Error)
	return n
}
