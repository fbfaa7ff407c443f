package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anonto42/inkwell/backend/internal/content"
	"github.com/anonto42/inkwell/backend/internal/media"
	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/anonto42/inkwell/backend/internal/repositories"
	"github.com/anonto42/inkwell/backend/internal/throttle"
	"github.com/rs/zerolog"
)

const authorPostsInDetail = 4

// PostService creates, updates, deletes and reads single posts
type PostService struct {
	posts         repositories.PostRepository
	users         repositories.UserRepository
	likes         repositories.LikeRepository
	saved         repositories.SavedPostRepository
	follows       repositories.FollowRepository
	notifications repositories.NotificationRepository
	comments      *CommentService
	tags          *TagService
	enricher      *postEnricher
	media         media.Store
	views         *throttle.ViewThrottle
	log           zerolog.Logger
}

func NewPostService(
	repos *repositories.Repositories,
	comments *CommentService,
	tags *TagService,
	enricher *postEnricher,
	store media.Store,
	views *throttle.ViewThrottle,
	log zerolog.Logger,
) *PostService {
	if views == nil {
		views = throttle.New(throttle.DefaultCooldown)
	}
	return &PostService{
		posts:         repos.Posts,
		users:         repos.Users,
		likes:         repos.Likes,
		saved:         repos.SavedPosts,
		follows:       repos.Follows,
		notifications: repos.Notifications,
		comments:      comments,
		tags:          tags,
		enricher:      enricher,
		media:         store,
		views:         views,
		log:           log.With().Str("component", "posts").Logger(),
	}
}

// Create publishes (or drafts) a new post for authorID
func (s *PostService) Create(ctx context.Context, authorID uint, req models.CreatePostRequest) (*PostSummary, error) {
	if authorID == 0 {
		return nil, Unauthorized("Please login first!")
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, Invalid("title is required")
	}
	if req.Content.IsEmpty() {
		return nil, Invalid("content is required")
	}
	postType := req.Type
	if postType == "" {
		postType = models.PostPublished
	}

	path, err := content.UniquePath(content.PathFromTitle(title), func(p string) (bool, error) {
		return s.posts.PathExists(ctx, authorID, p)
	})
	if err != nil {
		return nil, err
	}
	tagIDs, err := s.tags.Resolve(ctx, req.Tags)
	if err != nil {
		return nil, err
	}

	var image string
	if req.Image != nil && *req.Image != "" {
		if image, err = s.upload(ctx, *req.Image); err != nil {
			return nil, err
		}
	}

	post := &models.Post{
		AuthorID: authorID,
		Title:    title,
		Path:     path,
		Content:  content.Normalize(req.Content),
		Image:    image,
		Type:     postType,
		TagIDs:   tagIDs,
	}
	if err := s.posts.CreatePost(ctx, post); err != nil {
		return nil, err
	}
	s.log.Info().Str("postId", post.ID.Hex()).Uint("author", authorID).Str("path", path).Msg("post created")

	summaries, err := s.enricher.enrich(ctx, []models.Post{*post}, authorID)
	if err != nil {
		return nil, err
	}
	return &summaries[0], nil
}

// Update edits a post owned by callerID. The path never changes.
func (s *PostService) Update(ctx context.Context, callerID uint, path string, req models.UpdatePostRequest) (*PostSummary, error) {
	if callerID == 0 {
		return nil, Unauthorized("You are not authorize!")
	}
	post, err := s.posts.GetPostByAuthorAndPath(ctx, callerID, path)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, NotFound("Post not found or you are not the author!")
		}
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, Invalid("title cannot be empty")
		}
		post.Title = title
	}
	if req.Content != nil {
		post.Content = content.Normalize(*req.Content)
	}
	if req.Type != nil {
		post.Type = *req.Type
	}
	if req.Tags != nil {
		if post.TagIDs, err = s.tags.Resolve(ctx, req.Tags); err != nil {
			return nil, err
		}
	}
	if err := s.applyImage(ctx, post, req.Image); err != nil {
		return nil, err
	}

	if err := s.posts.UpdatePost(ctx, post); err != nil {
		return nil, err
	}
	summaries, err := s.enricher.enrich(ctx, []models.Post{*post}, callerID)
	if err != nil {
		return nil, err
	}
	return &summaries[0], nil
}

// applyImage handles the three states of the image field: absent keeps the image,
// null removes it, a value replaces it
func (s *PostService) applyImage(ctx context.Context, post *models.Post, raw json.RawMessage) error {
	if len(raw) == 0 {
		return nil
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		if err := s.deleteImage(ctx, post.Image); err != nil {
			return err
		}
		post.Image = ""
		return nil
	}

	var image string
	if err := json.Unmarshal(raw, &image); err != nil {
		return Invalid("image must be a string or null")
	}
	if image == "" || image == post.Image {
		return nil
	}
	if err := s.deleteImage(ctx, post.Image); err != nil {
		return err
	}
	uploaded, err := s.upload(ctx, image)
	if err != nil {
		return err
	}
	post.Image = uploaded
	return nil
}

func (s *PostService) upload(ctx context.Context, image string) (string, error) {
	if media.IsRemoteURL(image) {
		return image, nil
	}
	if s.media == nil {
		return "", Invalid("image uploads are not configured")
	}
	url, err := s.media.Upload(ctx, image, media.ArticlesFolder)
	if err != nil {
		if errors.Is(err, media.ErrInvalidImage) {
			return "", Invalid("%s", err.Error())
		}
		return "", fmt.Errorf("upload image: %w", err)
	}
	return url, nil
}

func (s *PostService) deleteImage(ctx context.Context, url string) error {
	if url == "" || s.media == nil {
		return nil
	}
	if err := s.media.Delete(ctx, url); err != nil {
		return fmt.Errorf("delete image: %w", err)
	}
	return nil
}

// Delete removes a post owned by callerID after its image, likes, bookmarks,
// notifications and comment threads
func (s *PostService) Delete(ctx context.Context, callerID uint, postID string) error {
	if postID == "" {
		return Invalid("Invalid post ID!")
	}
	if callerID == 0 {
		return Unauthorized("You are not authorize!")
	}
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil && !repositories.IsNotFound(err) {
		return err
	}
	if post == nil || post.AuthorID != callerID {
		return NotFound("Post not found or you are not the author!")
	}

	if err := s.deleteImage(ctx, post.Image); err != nil {
		return err
	}
	if err := s.likes.DeleteByPostID(ctx, postID); err != nil {
		return err
	}
	if err := s.saved.DeleteByPostID(ctx, postID); err != nil {
		return err
	}
	if err := s.notifications.DeleteByPostID(ctx, postID); err != nil {
		return err
	}
	if err := s.comments.DeleteForPost(ctx, postID); err != nil {
		return err
	}
	if err := s.posts.DeletePost(ctx, postID); err != nil {
		return err
	}
	s.log.Info().Str("postId", postID).Uint("author", callerID).Msg("post deleted")
	return nil
}

// DetailQuery identifies a post page request. Username is optional and narrows the path lookup.
type DetailQuery struct {
	Path     string
	Username string
	ViewerID uint
	ClientIP string
}

type AuthorPostRef struct {
	ID    string `json:"id"`
	Path  string `json:"path"`
	Title string `json:"title"`
}

type DetailAuthor struct {
	models.UserCompact
	Site           string          `json:"site"`
	FollowersCount int64           `json:"followersCount"`
	FollowingCount int64           `json:"followingCount"`
	Posts          []AuthorPostRef `json:"posts"`
}

// PostDetail is the full post page payload
type PostDetail struct {
	models.Post
	Author        DetailAuthor `json:"author"`
	Tags          []models.Tag `json:"tags"`
	LikesCount    int64        `json:"likesCount"`
	CommentsCount int64        `json:"commentsCount"`
	IsLiked       bool         `json:"isLiked"`
	IsSaved       bool         `json:"isSaved"`
}

// Detail loads a post page and counts the view unless this viewer was counted recently
func (s *PostService) Detail(ctx context.Context, q DetailQuery) (*PostDetail, error) {
	post, err := s.findByPath(ctx, q.Username, q.Path)
	if err != nil {
		return nil, err
	}
	postID := post.ID.Hex()

	viewer := viewerKey(q.ViewerID, q.ClientIP)
	if s.views.Allow(viewer, postID) {
		if err := s.posts.IncrementViews(ctx, postID); err != nil {
			s.views.Forget(viewer, postID)
			return nil, err
		}
		post.Views++
	}

	summaries, err := s.enricher.enrich(ctx, []models.Post{*post}, q.ViewerID)
	if err != nil {
		return nil, err
	}
	sum := summaries[0]

	author, err := s.detailAuthor(ctx, post)
	if err != nil {
		return nil, err
	}
	return &PostDetail{
		Post:          *post,
		Author:        author,
		Tags:          sum.Tags,
		LikesCount:    sum.LikesCount,
		CommentsCount: sum.CommentsCount,
		IsLiked:       sum.IsLiked,
		IsSaved:       sum.IsSaved,
	}, nil
}

func (s *PostService) findByPath(ctx context.Context, username, path string) (*models.Post, error) {
	var (
		post *models.Post
		err  error
	)
	if username == "" {
		post, err = s.posts.GetPostByPath(ctx, path)
	} else {
		user, uerr := s.users.GetUserByUsername(ctx, username)
		if uerr != nil {
			if repositories.IsNotFound(uerr) {
				return nil, NotFound("Post not found!")
			}
			return nil, uerr
		}
		post, err = s.posts.GetPostByAuthorAndPath(ctx, user.ID, path)
	}
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, NotFound("Post not found!")
		}
		return nil, err
	}
	return post, nil
}

func (s *PostService) detailAuthor(ctx context.Context, post *models.Post) (DetailAuthor, error) {
	author := DetailAuthor{Posts: []AuthorPostRef{}}
	user, err := s.users.GetUserByID(ctx, post.AuthorID)
	if err != nil {
		if repositories.IsNotFound(err) {
			author.UserCompact = models.UserCompact{ID: post.AuthorID, Avatar: models.PlaceholderAvatar}
			return author, nil
		}
		return author, err
	}
	author.UserCompact = user.ToCompact()
	author.Site = user.Site

	if author.FollowersCount, err = s.follows.GetFollowersCount(ctx, user.ID); err != nil {
		return author, err
	}
	if author.FollowingCount, err = s.follows.GetFollowingCount(ctx, user.ID); err != nil {
		return author, err
	}

	others, err := s.posts.GetPostsByAuthor(ctx, user.ID, true)
	if err != nil {
		return author, err
	}
	for _, p := range others {
		if len(author.Posts) == authorPostsInDetail {
			break
		}
		if p.ID == post.ID {
			continue
		}
		author.Posts = append(author.Posts, AuthorPostRef{ID: p.ID.Hex(), Path: p.Path, Title: p.Title})
	}
	return author, nil
}

func viewerKey(userID uint, ip string) string {
	if userID != 0 {
		return fmt.Sprintf("user:%d", userID)
	}
	if ip == "" {
		ip = "anonymous"
	}
	return "ip:" + ip
}

// ToggleSave adds postID to the user's reading list, or removes it when already saved
func (s *PostService) ToggleSave(ctx context.Context, userID uint, postID string) (bool, error) {
	if postID == "" {
		return false, Invalid("postID is required")
	}
	if userID == 0 {
		return false, Unauthorized("Please login first!")
	}
	if _, err := s.posts.GetPostByID(ctx, postID); err != nil {
		if repositories.IsNotFound(err) {
			return false, NotFound("Post not found")
		}
		return false, err
	}

	existing, err := s.saved.GetSavedPost(ctx, userID, postID)
	if err != nil && !repositories.IsNotFound(err) {
		return false, err
	}
	if existing != nil {
		return false, s.saved.DeleteSavedPostByID(ctx, existing.ID)
	}
	return true, s.saved.SavePost(ctx, &models.SavedPost{UserID: userID, PostID: postID})
}

// SavedPostView is one reading-list entry
type SavedPostView struct {
	ID        uint        `json:"id"`
	PostID    string      `json:"postId"`
	CreatedAt time.Time   `json:"createdAt"`
	Post      PostSummary `json:"post"`
}

// Saved lists the user's reading list, most recently saved first. Entries whose post
// no longer exists are skipped.
func (s *PostService) Saved(ctx context.Context, userID uint) ([]SavedPostView, error) {
	if userID == 0 {
		return nil, Unauthorized("Please login first!")
	}
	entries, err := s.saved.GetSavedPostsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.PostID
	}
	posts, err := s.posts.GetPostsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	summaries, err := s.enricher.enrich(ctx, posts, userID)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]PostSummary, len(summaries))
	for _, sum := range summaries {
		byID[sum.ID.Hex()] = sum
	}

	out := make([]SavedPostView, 0, len(entries))
	for _, e := range entries {
		sum, ok := byID[e.PostID]
		if !ok {
			continue
		}
		out = append(out, SavedPostView{ID: e.ID, PostID: e.PostID, CreatedAt: e.CreatedAt, Post: sum})
	}
	return out, nil
}
