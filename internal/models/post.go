package models

import (
	"encoding/json"
	"time"

	"github.com/anonto42/inkwell/backend/internal/content"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PostType string

const (
	PostDraft     PostType = "DRAFT"
	PostPublished PostType = "PUBLISHED"
)

// Post represents a blog post stored in MongoDB
type Post struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	AuthorID  uint               `json:"authorId" bson:"author_id"`
	Title     string             `json:"title" bson:"title"`
	Path      string             `json:"path" bson:"path"` // unique per author
	Content   content.Document   `json:"content" bson:"content"`
	Image     string             `json:"image,omitempty" bson:"image,omitempty"`
	Type      PostType           `json:"type" bson:"type"`
	Views     int64              `json:"views" bson:"views"`
	TagIDs    []uint             `json:"tagIds" bson:"tag_ids"`
	CreatedAt time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updated_at"`
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Title   string           `json:"title" validate:"required,min=1,max=200"`
	Content content.Document `json:"content"`
	Image   *string          `json:"image"` // data URI or URL, null for none
	Type    PostType         `json:"type" validate:"omitempty,oneof=DRAFT PUBLISHED"`
	Tags    []string         `json:"tags" validate:"omitempty,max=10,dive,min=1,max=40"`
}

// UpdatePostRequest defines the request body for updating an existing post.
// Image keeps the raw JSON so that an explicit null (remove) differs from absent (keep).
type UpdatePostRequest struct {
	Title   *string           `json:"title" validate:"omitempty,min=1,max=200"`
	Content *content.Document `json:"content"`
	Image   json.RawMessage   `json:"image"`
	Type    *PostType         `json:"type" validate:"omitempty,oneof=DRAFT PUBLISHED"`
	Tags    []string          `json:"tags" validate:"omitempty,max=10,dive,min=1,max=40"`
}
