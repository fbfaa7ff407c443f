package services

import (
	"context"
	"testing"

	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentService_CreateNotifiesPostAuthor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := env.user(t, "author")
	reader := env.user(t, "reader")
	post := env.post(t, author.ID, "Hello", 0)

	c, err := env.svc.Comments.Create(ctx, reader.ID, post.ID.Hex(), "  nice post ")
	require.NoError(t, err)
	assert.Equal(t, "nice post", c.Content)
	assert.Nil(t, c.ParentID)

	rows := env.notifications(t)
	require.Len(t, rows, 1)
	assert.Equal(t, author.ID, rows[0].UserID)
	assert.Equal(t, reader.ID, rows[0].FromUserID)
	assert.Equal(t, models.NotificationComment, rows[0].Type)
	require.NotNil(t, rows[0].CommentID)
	assert.Equal(t, c.ID, *rows[0].CommentID)
}

func TestCommentService_SelfCommentDoesNotNotify(t *testing.T) {
	env := newTestEnv(t)
	author := env.user(t, "author")
	post := env.post(t, author.ID, "Hello", 0)

	_, err := env.svc.Comments.Create(context.Background(), author.ID, post.ID.Hex(), "mine")
	require.NoError(t, err)
	assert.Empty(t, env.notifications(t))
}

func TestCommentService_CreateErrors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	reader := env.user(t, "reader")

	_, err := env.svc.Comments.Create(ctx, 0, "abc", "hi")
	assert.Equal(t, KindUnauthorized, KindOf(err))

	_, err = env.svc.Comments.Create(ctx, reader.ID, "", "hi")
	assert.Equal(t, KindInvalid, KindOf(err))

	_, err = env.svc.Comments.Create(ctx, reader.ID, "abc", "   ")
	assert.Equal(t, KindInvalid, KindOf(err))

	_, err = env.svc.Comments.Create(ctx, 999, "abc", "hi")
	assert.Equal(t, KindUnauthorized, KindOf(err))

	_, err = env.svc.Comments.Create(ctx, reader.ID, "000000000000000000000000", "hi")
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestCommentService_ReplyInheritsPostAndNotifiesParentAuthor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := env.user(t, "author")
	a := env.user(t, "alice")
	b := env.user(t, "bob")
	post := env.post(t, author.ID, "Hello", 0)

	root, err := env.svc.Comments.Create(ctx, a.ID, post.ID.Hex(), "root")
	require.NoError(t, err)
	reply, err := env.svc.Comments.Reply(ctx, b.ID, root.ID, "reply")
	require.NoError(t, err)

	assert.Equal(t, post.ID.Hex(), reply.PostID)
	require.NotNil(t, reply.ParentID)
	assert.Equal(t, root.ID, *reply.ParentID)

	rows := env.notifications(t)
	require.Len(t, rows, 2)
	assert.Equal(t, models.NotificationReply, rows[1].Type)
	assert.Equal(t, a.ID, rows[1].UserID)
	assert.Equal(t, b.ID, rows[1].FromUserID)

	_, err = env.svc.Comments.Reply(ctx, b.ID, 4242, "orphan")
	assert.Equal(t, KindNotFound, KindOf(err))
	_, err = env.svc.Comments.Reply(ctx, b.ID, root.ID, "")
	assert.Equal(t, KindInvalid, KindOf(err))
}

func TestCommentService_ListAndThread(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := env.user(t, "author")
	reader := env.user(t, "reader")
	post := env.post(t, author.ID, "Hello", 0)
	postID := post.ID.Hex()

	c1, err := env.svc.Comments.Create(ctx, reader.ID, postID, "first")
	require.NoError(t, err)
	c2, err := env.svc.Comments.Create(ctx, author.ID, postID, "second")
	require.NoError(t, err)
	r1, err := env.svc.Comments.Reply(ctx, author.ID, c1.ID, "reply to first")
	require.NoError(t, err)
	_, err = env.svc.Comments.Reply(ctx, reader.ID, r1.ID, "deep")
	require.NoError(t, err)
	_, err = env.svc.Likes.ToggleComment(ctx, author.ID, c1.ID)
	require.NoError(t, err)

	flat, err := env.svc.Comments.List(ctx, postID)
	require.NoError(t, err)
	require.Len(t, flat, 4)
	assert.Equal(t, []string{"first", "second", "reply to first", "deep"},
		[]string{flat[0].Content, flat[1].Content, flat[2].Content, flat[3].Content})
	assert.Equal(t, CommentCount{Replies: 1, Likes: 1}, flat[0].Count)
	assert.Equal(t, author.ID, flat[0].Likes[0].UserID)
	assert.Equal(t, "reader", flat[0].Author.Username)
	assert.Equal(t, models.PlaceholderAvatar, flat[0].Author.Avatar)

	roots := Thread(flat)
	require.Len(t, roots, 2)
	assert.Equal(t, c1.ID, roots[0].ID)
	assert.Equal(t, c2.ID, roots[1].ID)
	require.Len(t, roots[0].Replies, 1)
	require.Len(t, roots[0].Replies[0].Replies, 1)
	assert.Equal(t, "deep", roots[0].Replies[0].Replies[0].Content)
	assert.Empty(t, roots[1].Replies)
}

func TestCommentService_DeleteCascadesSubtree(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := env.user(t, "author")
	a := env.user(t, "alice")
	b := env.user(t, "bob")
	post := env.post(t, author.ID, "Hello", 0)
	postID := post.ID.Hex()

	root, err := env.svc.Comments.Create(ctx, a.ID, postID, "root")
	require.NoError(t, err)
	r1, err := env.svc.Comments.Reply(ctx, b.ID, root.ID, "r1")
	require.NoError(t, err)
	r2, err := env.svc.Comments.Reply(ctx, a.ID, r1.ID, "r2")
	require.NoError(t, err)
	keep, err := env.svc.Comments.Create(ctx, b.ID, postID, "keep")
	require.NoError(t, err)
	_, err = env.svc.Likes.ToggleComment(ctx, b.ID, r2.ID)
	require.NoError(t, err)

	// only the owner may delete
	err = env.svc.Comments.Delete(ctx, b.ID, root.ID)
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, "Comment not found or doesn't belong to the user", err.Error())

	require.NoError(t, env.svc.Comments.Delete(ctx, a.ID, root.ID))

	left, err := env.svc.Comments.List(ctx, postID)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, keep.ID, left[0].ID)
	assert.Zero(t, env.count(t, &models.CommentLike{}))

	for _, n := range env.notifications(t) {
		require.NotNil(t, n.CommentID)
		assert.Equal(t, keep.ID, *n.CommentID)
	}

	err = env.svc.Comments.Delete(ctx, a.ID, root.ID)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestCommentService_DeleteForPost(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := env.user(t, "author")
	p1 := env.post(t, author.ID, "One", 0)
	p2 := env.post(t, author.ID, "Two", 0)

	c, err := env.svc.Comments.Create(ctx, author.ID, p1.ID.Hex(), "a")
	require.NoError(t, err)
	_, err = env.svc.Comments.Reply(ctx, author.ID, c.ID, "b")
	require.NoError(t, err)
	_, err = env.svc.Comments.Create(ctx, author.ID, p2.ID.Hex(), "other post")
	require.NoError(t, err)

	require.NoError(t, env.svc.Comments.DeleteForPost(ctx, p1.ID.Hex()))

	gone, err := env.svc.Comments.List(ctx, p1.ID.Hex())
	require.NoError(t, err)
	assert.Empty(t, gone)
	kept, err := env.svc.Comments.List(ctx, p2.ID.Hex())
	require.NoError(t, err)
	assert.Len(t, kept, 1)
}

func TestCommentService_DeleteForPostRemovesOrphanedReplies(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := env.user(t, "author")
	p := env.post(t, author.ID, "One", 0)
	postID := p.ID.Hex()

	missing := uint(9999)
	orphan := &models.Comment{Content: "orphan", AuthorID: author.ID, PostID: postID, ParentID: &missing}
	require.NoError(t, env.db.Create(orphan).Error)
	child := &models.Comment{Content: "under orphan", AuthorID: author.ID, PostID: postID, ParentID: &orphan.ID}
	require.NoError(t, env.db.Create(child).Error)
	_, err := env.svc.Comments.Create(ctx, author.ID, postID, "root")
	require.NoError(t, err)

	require.NoError(t, env.svc.Comments.DeleteForPost(ctx, postID))

	assert.Zero(t, env.count(t, &models.Comment{}))
}
