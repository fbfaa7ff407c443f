package services

import (
	"context"
	"strings"

	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/anonto42/inkwell/backend/internal/repositories"
	"github.com/rs/zerolog"
)

type TagService struct {
	tags  repositories.TagRepository
	posts repositories.PostRepository
	log   zerolog.Logger
}

func NewTagService(repos *repositories.Repositories, log zerolog.Logger) *TagService {
	return &TagService{
		tags:  repos.Tags,
		posts: repos.Posts,
		log:   log.With().Str("component", "tags").Logger(),
	}
}

// TagWithCount is a tag together with the number of posts using it
type TagWithCount struct {
	models.Tag
	PostCount int64 `json:"postCount"`
}

func (s *TagService) List(ctx context.Context) ([]TagWithCount, error) {
	tags, err := s.tags.ListTags(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, len(tags))
	for i, t := range tags {
		ids[i] = t.ID
	}
	counts, err := s.posts.CountByTagIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]TagWithCount, len(tags))
	for i, t := range tags {
		out[i] = TagWithCount{Tag: t, PostCount: counts[t.ID]}
	}
	return out, nil
}

// Create returns the existing tag when one with the same value exists; created reports which case applied
func (s *TagService) Create(ctx context.Context, req models.CreateTagRequest) (tag *models.Tag, created bool, err error) {
	label, value := strings.TrimSpace(req.Label), strings.TrimSpace(req.Value)
	if label == "" || value == "" {
		return nil, false, Invalid("Invalid tag data")
	}
	existing, err := s.tags.GetTagByValue(ctx, value)
	if err == nil {
		return existing, false, nil
	}
	if !repositories.IsNotFound(err) {
		return nil, false, err
	}

	tag = &models.Tag{Label: label, Value: value, Description: req.Description, Color: req.Color}
	if tag.Color == "" {
		tag.Color = models.DefaultTagColor
	}
	if err := s.tags.CreateTag(ctx, tag); err != nil {
		return nil, false, err
	}
	return tag, true, nil
}

func (s *TagService) Update(ctx context.Context, id uint, req models.UpdateTagRequest) (*models.Tag, error) {
	tag, err := s.tags.GetTagByID(ctx, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, NotFound("Tag not found")
		}
		return nil, err
	}
	if req.Label != nil {
		tag.Label = *req.Label
	}
	if req.Value != nil && *req.Value != tag.Value {
		if other, err := s.tags.GetTagByValue(ctx, *req.Value); err == nil && other.ID != tag.ID {
			return nil, Conflict("Tag with value %q already exists", *req.Value)
		}
		tag.Value = *req.Value
	}
	if req.Description != nil {
		tag.Description = *req.Description
	}
	if req.Color != nil {
		tag.Color = *req.Color
	}
	if err := s.tags.UpdateTag(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

// Delete removes the tag and detaches it from every post
func (s *TagService) Delete(ctx context.Context, id uint) error {
	if err := s.tags.DeleteTag(ctx, id); err != nil {
		if repositories.IsNotFound(err) {
			return NotFound("Tag not found")
		}
		return err
	}
	return s.posts.RemoveTag(ctx, id)
}

// Resolve finds or creates a tag for each value, keeping order and dropping duplicates
func (s *TagService) Resolve(ctx context.Context, values []string) ([]uint, error) {
	ids := make([]uint, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		tag, err := s.tags.FindOrCreate(ctx, models.Tag{Label: v, Value: v, Color: models.DefaultTagColor})
		if err != nil {
			return nil, err
		}
		ids = append(ids, tag.ID)
	}
	return ids, nil
}
