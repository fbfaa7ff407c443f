package services

import (
	"context"

	"github.com/anonto42/inkwell/backend/internal/content"
	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/anonto42/inkwell/backend/internal/repositories"
)

const excerptLength = 200

// PostSummary is a post as it appears in feeds and profile listings
type PostSummary struct {
	models.Post
	Excerpt       string             `json:"excerpt"`
	Author        models.UserCompact `json:"author"`
	Tags          []models.Tag       `json:"tags"`
	LikesCount    int64              `json:"likesCount"`
	CommentsCount int64              `json:"commentsCount"`
	IsLiked       bool               `json:"isLiked"`
	IsSaved       bool               `json:"isSaved"`
}

// postEnricher attaches authors, tags, counts and per-viewer flags to a page of posts
// with a fixed number of batched queries
type postEnricher struct {
	users    repositories.UserRepository
	tags     repositories.TagRepository
	likes    repositories.LikeRepository
	comments repositories.CommentRepository
	saved    repositories.SavedPostRepository
}

func newPostEnricher(repos *repositories.Repositories) *postEnricher {
	return &postEnricher{
		users:    repos.Users,
		tags:     repos.Tags,
		likes:    repos.Likes,
		comments: repos.Comments,
		saved:    repos.SavedPosts,
	}
}

func (e *postEnricher) enrich(ctx context.Context, posts []models.Post, viewerID uint) ([]PostSummary, error) {
	out := make([]PostSummary, len(posts))
	if len(posts) == 0 {
		return out, nil
	}

	postIDs := make([]string, len(posts))
	authorIDs := make([]uint, len(posts))
	var tagIDs []uint
	for i, p := range posts {
		postIDs[i] = p.ID.Hex()
		authorIDs[i] = p.AuthorID
		tagIDs = append(tagIDs, p.TagIDs...)
	}

	authors, err := e.users.GetUsersByIDs(ctx, uniqueUints(authorIDs))
	if err != nil {
		return nil, err
	}
	tags, err := e.tags.GetTagsByIDs(ctx, uniqueUints(tagIDs))
	if err != nil {
		return nil, err
	}
	likeCounts, err := e.likes.CountByPostIDs(ctx, postIDs)
	if err != nil {
		return nil, err
	}
	commentCounts, err := e.comments.CountByPostIDs(ctx, postIDs)
	if err != nil {
		return nil, err
	}
	liked, err := e.likes.GetLikedPostIDs(ctx, viewerID, postIDs)
	if err != nil {
		return nil, err
	}
	saved, err := e.saved.GetSavedPostIDs(ctx, viewerID, postIDs)
	if err != nil {
		return nil, err
	}

	for i, p := range posts {
		id := postIDs[i]
		out[i] = PostSummary{
			Post:          p,
			Excerpt:       content.PlainText(p.Content, excerptLength),
			Author:        compactAuthor(authors, p.AuthorID),
			Tags:          tagsFor(tags, p.TagIDs),
			LikesCount:    likeCounts[id],
			CommentsCount: commentCounts[id],
			IsLiked:       liked[id],
			IsSaved:       saved[id],
		}
	}
	return out, nil
}

func compactAuthor(users map[uint]models.User, id uint) models.UserCompact {
	u, ok := users[id]
	if !ok {
		return models.UserCompact{ID: id, Avatar: models.PlaceholderAvatar}
	}
	c := u.ToCompact()
	c.Bio = ""
	return c
}

// tagsFor keeps the post's tag order and skips tags that no longer exist
func tagsFor(all map[uint]models.Tag, ids []uint) []models.Tag {
	out := make([]models.Tag, 0, len(ids))
	for _, id := range ids {
		if t, ok := all[id]; ok {
			out = append(out, t)
		}
	}
	return out
}
