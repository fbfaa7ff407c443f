package services

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedFeed(t *testing.T, env *testEnv, n int) uint {
	t.Helper()
	author := env.user(t, "author")
	for i := 0; i < n; i++ {
		p := env.post(t, author.ID, fmt.Sprintf("Post %d", i), time.Duration(i)*time.Hour)
		env.posts.Posts[p.ID.Hex()].Views = int64(i)
	}
	return author.ID
}

func titles(posts []PostSummary) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.Title
	}
	return out
}

func TestFeedService_DefaultPaginates(t *testing.T) {
	env := newTestEnv(t)
	seedFeed(t, env, 25)

	page, err := env.svc.Feed.Feed(context.Background(), FeedQuery{Page: 3, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 3, page.CurrentPage)
	assert.Len(t, page.Posts, 5)
	assert.Equal(t, "Post 20", page.Posts[0].Title)

	page, err = env.svc.Feed.Feed(context.Background(), FeedQuery{Sort: "for-you"})
	require.NoError(t, err)
	assert.Equal(t, 1, page.CurrentPage)
	assert.Equal(t, 3, page.TotalPages)
	assert.Len(t, page.Posts, 10)
}

func TestFeedService_LargeLimitIsNotClamped(t *testing.T) {
	env := newTestEnv(t)
	seedFeed(t, env, 150)

	page, err := env.svc.Feed.Feed(context.Background(), FeedQuery{Page: 1, Limit: 150})
	require.NoError(t, err)
	assert.Equal(t, 1, page.TotalPages)
	assert.Len(t, page.Posts, 150)

	page, err = env.svc.Feed.Feed(context.Background(), FeedQuery{Page: 1, Limit: 120})
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Posts, 120)
}

func TestFeedService_HugePageIsEmpty(t *testing.T) {
	env := newTestEnv(t)
	seedFeed(t, env, 5)

	page, err := env.svc.Feed.Feed(context.Background(), FeedQuery{Page: math.MaxInt, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, page.Posts)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, math.MaxInt, page.CurrentPage)

	page, err = env.svc.Feed.Feed(context.Background(), FeedQuery{Page: math.MaxInt, Limit: 10, Sort: SortLatest})
	require.NoError(t, err)
	assert.Empty(t, page.Posts)
}

func TestPageOffset(t *testing.T) {
	off, ok := pageOffset(3, 10)
	assert.True(t, ok)
	assert.Equal(t, int64(20), off)

	_, ok = pageOffset(math.MaxInt, math.MaxInt)
	assert.False(t, ok)
}

func TestFeedService_LatestIsCappedAtThree(t *testing.T) {
	env := newTestEnv(t)
	seedFeed(t, env, 25)

	page, err := env.svc.Feed.Feed(context.Background(), FeedQuery{Page: 2, Limit: 10, Sort: SortLatest})
	require.NoError(t, err)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, 2, page.CurrentPage)
	assert.Equal(t, []string{"Post 10", "Post 11", "Post 12"}, titles(page.Posts))
}

func TestFeedService_TrendingIgnoresPage(t *testing.T) {
	env := newTestEnv(t)
	seedFeed(t, env, 25)

	page, err := env.svc.Feed.Feed(context.Background(), FeedQuery{Page: 4, Limit: 10, Sort: SortTrending})
	require.NoError(t, err)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, []string{"Post 24", "Post 23", "Post 22"}, titles(page.Posts))
}

func TestFeedService_ExcludesDraftsAndEnriches(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	authorID := seedFeed(t, env, 2)
	draft := env.post(t, authorID, "Draft", 0)
	env.posts.Posts[draft.ID.Hex()].Type = models.PostDraft

	reader := env.user(t, "reader")
	var target string
	for id, p := range env.posts.Posts {
		if p.Title == "Post 0" {
			target = id
		}
	}
	_, err := env.svc.Likes.TogglePost(ctx, reader.ID, target)
	require.NoError(t, err)
	_, err = env.svc.Posts.ToggleSave(ctx, reader.ID, target)
	require.NoError(t, err)
	_, err = env.svc.Comments.Create(ctx, reader.ID, target, "hi")
	require.NoError(t, err)

	page, err := env.svc.Feed.Feed(ctx, FeedQuery{ViewerID: reader.ID})
	require.NoError(t, err)
	require.Equal(t, []string{"Post 0", "Post 1"}, titles(page.Posts))
	assert.Equal(t, 1, page.TotalPages)

	top := page.Posts[0]
	assert.True(t, top.IsLiked)
	assert.True(t, top.IsSaved)
	assert.EqualValues(t, 1, top.LikesCount)
	assert.EqualValues(t, 1, top.CommentsCount)
	assert.Equal(t, "author", top.Author.Username)
	assert.Equal(t, models.PlaceholderAvatar, top.Author.Avatar)
	assert.Equal(t, "Post 0", top.Excerpt)

	assert.False(t, page.Posts[1].IsLiked)

	anon, err := env.svc.Feed.Feed(ctx, FeedQuery{})
	require.NoError(t, err)
	assert.False(t, anon.Posts[0].IsLiked)
	assert.False(t, anon.Posts[0].IsSaved)
}

func TestFeedService_EmptyStore(t *testing.T) {
	env := newTestEnv(t)
	page, err := env.svc.Feed.Feed(context.Background(), FeedQuery{})
	require.NoError(t, err)
	assert.Empty(t, page.Posts)
	assert.Zero(t, page.TotalPages)
}
