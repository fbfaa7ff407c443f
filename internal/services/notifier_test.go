package services

import (
	"context"
	"testing"

	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_EmitSkipsSelf(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	written, err := env.svc.Notifications.Emit(ctx, models.Notification{UserID: 1, FromUserID: 1, PostID: "p", Type: models.NotificationLike})
	require.NoError(t, err)
	assert.False(t, written)

	written, err = env.svc.Notifications.Emit(ctx, models.Notification{UserID: 0, FromUserID: 1, PostID: "p", Type: models.NotificationLike})
	require.NoError(t, err)
	assert.False(t, written)

	written, err = env.svc.Notifications.Emit(ctx, models.Notification{UserID: 2, FromUserID: 1, PostID: "p", Type: models.NotificationLike})
	require.NoError(t, err)
	assert.True(t, written)
	assert.Len(t, env.notifications(t), 1)
}

func TestNotifier_ListResolvesReferences(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := env.user(t, "author")
	reader := env.user(t, "reader")
	post := env.post(t, author.ID, "Great Title", 0)

	c, err := env.svc.Comments.Create(ctx, reader.ID, post.ID.Hex(), "hello there")
	require.NoError(t, err)
	_, err = env.svc.Likes.TogglePost(ctx, reader.ID, post.ID.Hex())
	require.NoError(t, err)

	views, err := env.svc.Notifications.List(ctx, author.ID)
	require.NoError(t, err)
	require.Len(t, views, 2)

	// newest first
	assert.Equal(t, models.NotificationLike, views[0].Type)
	assert.Nil(t, views[0].Comment)
	assert.Equal(t, models.NotificationComment, views[1].Type)

	require.NotNil(t, views[1].FromUser)
	assert.Equal(t, "reader", views[1].FromUser.Username)
	assert.Equal(t, models.PlaceholderAvatar, views[1].FromUser.Avatar)
	require.NotNil(t, views[1].Post)
	assert.Equal(t, "Great Title", views[1].Post.Title)
	assert.Equal(t, "great-title", views[1].Post.Path)
	require.NotNil(t, views[1].Comment)
	assert.Equal(t, c.ID, views[1].Comment.ID)
	assert.Equal(t, "hello there", views[1].Comment.Content)

	empty, err := env.svc.Notifications.List(ctx, reader.ID)
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = env.svc.Notifications.List(ctx, 0)
	assert.Equal(t, KindUnauthorized, KindOf(err))
}

func TestNotifier_MarkRead(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	n := env.svc.Notifications

	for i := 0; i < 3; i++ {
		_, err := n.Emit(ctx, models.Notification{UserID: 1, FromUserID: 2, PostID: "p", Type: models.NotificationLike})
		require.NoError(t, err)
	}
	_, err := n.Emit(ctx, models.Notification{UserID: 3, FromUserID: 2, PostID: "p", Type: models.NotificationLike})
	require.NoError(t, err)
	rows := env.notifications(t)

	count, err := n.UnreadCount(ctx, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)

	require.NoError(t, n.MarkRead(ctx, 1, rows[0].ID))
	count, err = n.UnreadCount(ctx, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	// another recipient's notification is invisible
	err = n.MarkRead(ctx, 1, rows[3].ID)
	assert.Equal(t, KindNotFound, KindOf(err))

	require.NoError(t, n.MarkRead(ctx, 1, 0))
	count, err = n.UnreadCount(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, count)

	count, err = n.UnreadCount(ctx, 3)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}
