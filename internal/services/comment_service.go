package services

import (
	"context"
	"strings"
	"time"

	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/anonto42/inkwell/backend/internal/repositories"
	"github.com/rs/zerolog"
)

// CommentService manages comment threads: create, reply, list and cascade delete
type CommentService struct {
	comments      repositories.CommentRepository
	commentLikes  repositories.CommentLikeRepository
	notifications repositories.NotificationRepository
	users         repositories.UserRepository
	posts         repositories.PostRepository
	notifier      *Notifier
	log           zerolog.Logger
}

func NewCommentService(repos *repositories.Repositories, notifier *Notifier, log zerolog.Logger) *CommentService {
	return &CommentService{
		comments:      repos.Comments,
		commentLikes:  repos.CommentLikes,
		notifications: repos.Notifications,
		users:         repos.Users,
		posts:         repos.Posts,
		notifier:      notifier,
		log:           log.With().Str("component", "comments").Logger(),
	}
}

// Create adds a top-level comment and notifies the post author
func (s *CommentService) Create(ctx context.Context, authorID uint, postID, content string) (*models.Comment, error) {
	if authorID == 0 {
		return nil, Unauthorized("Please try login first!")
	}
	content = strings.TrimSpace(content)
	if content == "" || postID == "" {
		return nil, Invalid("content and postID are required")
	}
	if _, err := s.users.GetUserByID(ctx, authorID); err != nil {
		if repositories.IsNotFound(err) {
			return nil, Unauthorized("Please try login first!")
		}
		return nil, err
	}
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, NotFound("Post not found please provide correct postID")
		}
		return nil, err
	}

	comment := &models.Comment{Content: content, AuthorID: authorID, PostID: postID}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return nil, err
	}

	_, err = s.notifier.Emit(ctx, models.Notification{
		UserID:     post.AuthorID,
		FromUserID: authorID,
		PostID:     postID,
		CommentID:  &comment.ID,
		Type:       models.NotificationComment,
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// Reply answers parentID. The reply always belongs to the parent's post.
func (s *CommentService) Reply(ctx context.Context, authorID, parentID uint, text string) (*models.Comment, error) {
	text = strings.TrimSpace(text)
	if parentID == 0 || text == "" {
		return nil, Invalid("Invalid data sent.")
	}
	if authorID == 0 {
		return nil, Unauthorized("Please log in first!")
	}
	parent, err := s.comments.GetCommentByID(ctx, parentID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, NotFound("Comment not found.")
		}
		return nil, err
	}

	reply := &models.Comment{
		Content:  text,
		AuthorID: authorID,
		PostID:   parent.PostID,
		ParentID: &parent.ID,
	}
	if err := s.comments.CreateComment(ctx, reply); err != nil {
		return nil, err
	}

	_, err = s.notifier.Emit(ctx, models.Notification{
		UserID:     parent.AuthorID,
		FromUserID: authorID,
		PostID:     parent.PostID,
		CommentID:  &reply.ID,
		Type:       models.NotificationReply,
	})
	if err != nil {
		return nil, err
	}
	return reply, nil
}

type CommentAuthor struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CommentLikeRef struct {
	ID     uint `json:"id"`
	UserID uint `json:"userId"`
}

type CommentCount struct {
	Replies int `json:"replies"`
	Likes   int `json:"likes"`
}

// CommentView is one entry of the flat comment list
type CommentView struct {
	ID        uint             `json:"id"`
	Content   string           `json:"content"`
	AuthorID  uint             `json:"authorId"`
	PostID    string           `json:"postId"`
	ParentID  *uint            `json:"parentId"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
	Author    CommentAuthor    `json:"author"`
	Likes     []CommentLikeRef `json:"likes"`
	Count     CommentCount     `json:"_count"`
}

// List returns every comment of postID in creation order, replies included
func (s *CommentService) List(ctx context.Context, postID string) ([]CommentView, error) {
	if postID == "" {
		return nil, Invalid("Invalid data send!")
	}
	comments, err := s.comments.GetCommentsByPostID(ctx, postID)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, len(comments))
	authorIDs := make([]uint, len(comments))
	replies := make(map[uint]int)
	for i, c := range comments {
		ids[i] = c.ID
		authorIDs[i] = c.AuthorID
		if c.ParentID != nil {
			replies[*c.ParentID]++
		}
	}

	authors, err := s.users.GetUsersByIDs(ctx, uniqueUints(authorIDs))
	if err != nil {
		return nil, err
	}
	likes, err := s.commentLikes.GetLikesByCommentIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]CommentView, len(comments))
	for i, c := range comments {
		refs := make([]CommentLikeRef, 0, len(likes[c.ID]))
		for _, l := range likes[c.ID] {
			refs = append(refs, CommentLikeRef{ID: l.ID, UserID: l.UserID})
		}
		author := authors[c.AuthorID]
		views[i] = CommentView{
			ID:        c.ID,
			Content:   c.Content,
			AuthorID:  c.AuthorID,
			PostID:    c.PostID,
			ParentID:  c.ParentID,
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
			Author: CommentAuthor{
				ID:        c.AuthorID,
				Username:  author.Username,
				Name:      author.Name,
				Avatar:    author.AvatarOrPlaceholder(),
				CreatedAt: author.CreatedAt,
				UpdatedAt: author.UpdatedAt,
			},
			Likes: refs,
			Count: CommentCount{Replies: replies[c.ID], Likes: len(refs)},
		}
	}
	return views, nil
}

// CommentNode is a comment with its replies attached
type CommentNode struct {
	CommentView
	Replies []*CommentNode `json:"replies"`
}

// Thread groups a flat list by parent id. Order within each level follows the input.
// Comments whose parent is not in the list are treated as roots.
func Thread(flat []CommentView) []*CommentNode {
	nodes := make(map[uint]*CommentNode, len(flat))
	for i := range flat {
		nodes[flat[i].ID] = &CommentNode{CommentView: flat[i], Replies: []*CommentNode{}}
	}
	roots := []*CommentNode{}
	for i := range flat {
		node := nodes[flat[i].ID]
		if flat[i].ParentID != nil {
			if parent, ok := nodes[*flat[i].ParentID]; ok && parent != node {
				parent.Replies = append(parent.Replies, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots
}

// Delete removes a comment owned by callerID together with every reply beneath it
func (s *CommentService) Delete(ctx context.Context, callerID, commentID uint) error {
	if callerID == 0 {
		return Unauthorized("Please log in first!")
	}
	if commentID == 0 {
		return Invalid("Please provide a valid comment Id")
	}
	comment, err := s.comments.GetCommentByID(ctx, commentID)
	if err != nil && !repositories.IsNotFound(err) {
		return err
	}
	if comment == nil || comment.AuthorID != callerID {
		return NotFound("Comment not found or doesn't belong to the user")
	}
	return s.deleteSubtrees(ctx, []uint{comment.ID})
}

// DeleteForPost removes every comment and reply of a post, including replies
// whose parent is already gone
func (s *CommentService) DeleteForPost(ctx context.Context, postID string) error {
	ids, err := s.comments.GetIDsByPostID(ctx, postID)
	if err != nil {
		return err
	}
	return s.deleteSubtrees(ctx, ids)
}

// deleteSubtrees walks the reply tree one level per query, then deletes from the
// deepest level up so no reply ever outlives its parent
func (s *CommentService) deleteSubtrees(ctx context.Context, roots []uint) error {
	if len(roots) == 0 {
		return nil
	}
	levels := [][]uint{roots}
	seen := make(map[uint]bool, len(roots))
	for _, id := range roots {
		seen[id] = true
	}
	for frontier := roots; len(frontier) > 0; {
		children, err := s.comments.GetChildIDs(ctx, frontier)
		if err != nil {
			return err
		}
		next := children[:0]
		for _, id := range children {
			if !seen[id] {
				seen[id] = true
				next = append(next, id)
			}
		}
		if len(next) > 0 {
			levels = append(levels, next)
		}
		frontier = next
	}

	for i := len(levels) - 1; i >= 0; i-- {
		ids := levels[i]
		if err := s.commentLikes.DeleteByCommentIDs(ctx, ids); err != nil {
			return err
		}
		if err := s.notifications.DeleteByCommentIDs(ctx, ids); err != nil {
			return err
		}
		if err := s.comments.DeleteComments(ctx, ids); err != nil {
			return err
		}
		s.log.Debug().Int("depth", i).Int("deleted", len(ids)).Msg("comment level deleted")
	}
	return nil
}
