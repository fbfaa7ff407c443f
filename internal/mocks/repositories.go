package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/anonto42/inkwell/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MockPostRepository is an in-memory implementation of repositories.PostRepository
type MockPostRepository struct {
	mu    sync.Mutex
	Posts map[string]*models.Post

	// Err, when set, is returned by every call
	Err            error
	IncrementErr   error
	IncrementCalls int
}

func NewMockPostRepository() *MockPostRepository {
	return &MockPostRepository{Posts: make(map[string]*models.Post)}
}

var _ repositories.PostRepository = (*MockPostRepository)(nil)

// CreatePost keeps a preset CreatedAt so tests can control ordering
func (m *MockPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now()
	}
	post.UpdatedAt = post.CreatedAt
	if post.TagIDs == nil {
		post.TagIDs = []uint{}
	}
	cp := *post
	m.Posts[post.ID.Hex()] = &cp
	return nil
}

func (m *MockPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	p, ok := m.Posts[id]
	if !ok {
		return nil, repositories.ErrPostNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockPostRepository) GetPostsByIDs(ctx context.Context, ids []string) ([]models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := []models.Post{}
	for _, id := range ids {
		if p, ok := m.Posts[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *MockPostRepository) GetPostByPath(ctx context.Context, path string) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	var found *models.Post
	for _, p := range m.Posts {
		if p.Path == path && (found == nil || p.CreatedAt.Before(found.CreatedAt)) {
			found = p
		}
	}
	if found == nil {
		return nil, repositories.ErrPostNotFound
	}
	cp := *found
	return &cp, nil
}

func (m *MockPostRepository) GetPostByAuthorAndPath(ctx context.Context, authorID uint, path string) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, p := range m.Posts {
		if p.AuthorID == authorID && p.Path == path {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repositories.ErrPostNotFound
}

func (m *MockPostRepository) PathExists(ctx context.Context, authorID uint, path string) (bool, error) {
	_, err := m.GetPostByAuthorAndPath(ctx, authorID, path)
	if repositories.IsNotFound(err) {
		return false, nil
	}
	return err == nil, err
}

func (m *MockPostRepository) published() []models.Post {
	out := []models.Post{}
	for _, p := range m.Posts {
		if p.Type != models.PostDraft {
			out = append(out, *p)
		}
	}
	return out
}

func (m *MockPostRepository) ListPublished(ctx context.Context, order repositories.PostSort, skip, limit int64) ([]models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	posts := m.published()
	sort.Slice(posts, func(i, j int) bool {
		if order == repositories.SortMostViewed && posts[i].Views != posts[j].Views {
			return posts[i].Views > posts[j].Views
		}
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	if skip >= int64(len(posts)) {
		return []models.Post{}, nil
	}
	posts = posts[skip:]
	if limit > 0 && int64(len(posts)) > limit {
		posts = posts[:limit]
	}
	return posts, nil
}

func (m *MockPostRepository) CountPublished(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}
	return int64(len(m.published())), nil
}

func (m *MockPostRepository) GetPostsByAuthor(ctx context.Context, authorID uint, publishedOnly bool) ([]models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := []models.Post{}
	for _, p := range m.Posts {
		if p.AuthorID != authorID || (publishedOnly && p.Type == models.PostDraft) {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MockPostRepository) UpdatePost(ctx context.Context, post *models.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	existing, ok := m.Posts[post.ID.Hex()]
	if !ok {
		return repositories.ErrPostNotFound
	}
	post.UpdatedAt = time.Now()
	existing.Title = post.Title
	existing.Content = post.Content
	existing.Image = post.Image
	existing.Type = post.Type
	existing.TagIDs = append([]uint{}, post.TagIDs...)
	existing.UpdatedAt = post.UpdatedAt
	return nil
}

func (m *MockPostRepository) DeletePost(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.Posts[id]; !ok {
		return repositories.ErrPostNotFound
	}
	delete(m.Posts, id)
	return nil
}

func (m *MockPostRepository) IncrementViews(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if m.IncrementErr != nil {
		return m.IncrementErr
	}
	m.IncrementCalls++
	if p, ok := m.Posts[id]; ok {
		p.Views++
	}
	return nil
}

func (m *MockPostRepository) CountByTagIDs(ctx context.Context, tagIDs []uint) (map[uint]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	wanted := make(map[uint]bool, len(tagIDs))
	for _, id := range tagIDs {
		wanted[id] = true
	}
	out := make(map[uint]int64)
	for _, p := range m.Posts {
		for _, id := range p.TagIDs {
			if wanted[id] {
				out[id]++
			}
		}
	}
	return out, nil
}

func (m *MockPostRepository) RemoveTag(ctx context.Context, tagID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for _, p := range m.Posts {
		kept := p.TagIDs[:0]
		for _, id := range p.TagIDs {
			if id != tagID {
				kept = append(kept, id)
			}
		}
		p.TagIDs = kept
	}
	return nil
}
