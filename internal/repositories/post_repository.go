package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/anonto42/inkwell/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PostSort selects the ordering of ListPublished
type PostSort int

const (
	SortNewest PostSort = iota
	SortMostViewed
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	GetPostsByIDs(ctx context.Context, ids []string) ([]models.Post, error)
	GetPostByPath(ctx context.Context, path string) (*models.Post, error)
	GetPostByAuthorAndPath(ctx context.Context, authorID uint, path string) (*models.Post, error)
	PathExists(ctx context.Context, authorID uint, path string) (bool, error)
	ListPublished(ctx context.Context, sort PostSort, skip, limit int64) ([]models.Post, error)
	CountPublished(ctx context.Context) (int64, error)
	GetPostsByAuthor(ctx context.Context, authorID uint, publishedOnly bool) ([]models.Post, error)
	UpdatePost(ctx context.Context, post *models.Post) error
	DeletePost(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, id string) error
	CountByTagIDs(ctx context.Context, tagIDs []uint) (map[uint]int64, error)
	RemoveTag(ctx context.Context, tagID uint) error
}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection("posts")}
}

// EnsureIndexes creates the indexes the feed and path lookups rely on
func (r *MongoPostRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "author_id", Value: 1}, {Key: "path", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "type", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "type", Value: 1}, {Key: "views", Value: -1}}},
		{Keys: bson.D{{Key: "tag_ids", Value: 1}}},
	})
	return err
}

func objectID(id string) (primitive.ObjectID, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("invalid post ID %q: %w", id, ErrPostNotFound)
	}
	return objID, nil
}

func (r *MongoPostRepository) findOne(ctx context.Context, filter bson.M, opts ...*options.FindOneOptions) (*models.Post, error) {
	var post models.Post
	err := r.collection.FindOne(ctx, filter, opts...).Decode(&post)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

func (r *MongoPostRepository) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Post, error) {
	cursor, err := r.collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// CreatePost creates a new post in MongoDB
func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	now := time.Now()
	post.ID = primitive.NewObjectID()
	post.CreatedAt = now
	post.UpdatedAt = now
	if post.TagIDs == nil {
		post.TagIDs = []uint{}
	}
	_, err := r.collection.InsertOne(ctx, post)
	return err
}

// GetPostByID retrieves a post by ID from MongoDB
func (r *MongoPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	objID, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": objID})
}

// GetPostsByIDs skips malformed ids; result order is unspecified
func (r *MongoPostRepository) GetPostsByIDs(ctx context.Context, ids []string) ([]models.Post, error) {
	objIDs := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if objID, err := objectID(id); err == nil {
			objIDs = append(objIDs, objID)
		}
	}
	if len(objIDs) == 0 {
		return []models.Post{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": objIDs}})
}

// GetPostByPath returns the oldest post with the given path across all authors
func (r *MongoPostRepository) GetPostByPath(ctx context.Context, path string) (*models.Post, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: 1}})
	return r.findOne(ctx, bson.M{"path": path}, opts)
}

func (r *MongoPostRepository) GetPostByAuthorAndPath(ctx context.Context, authorID uint, path string) (*models.Post, error) {
	return r.findOne(ctx, bson.M{"author_id": authorID, "path": path})
}

func (r *MongoPostRepository) PathExists(ctx context.Context, authorID uint, path string) (bool, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"author_id": authorID, "path": path}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListPublished pages through non-draft posts
func (r *MongoPostRepository) ListPublished(ctx context.Context, sort PostSort, skip, limit int64) ([]models.Post, error) {
	order := bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}
	if sort == SortMostViewed {
		order = bson.D{{Key: "views", Value: -1}, {Key: "created_at", Value: -1}}
	}
	findOptions := options.Find().SetSkip(skip).SetLimit(limit).SetSort(order)
	return r.find(ctx, publishedFilter(), findOptions)
}

func (r *MongoPostRepository) CountPublished(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, publishedFilter())
}

// GetPostsByAuthor lists an author's posts, newest first
func (r *MongoPostRepository) GetPostsByAuthor(ctx context.Context, authorID uint, publishedOnly bool) ([]models.Post, error) {
	filter := bson.M{"author_id": authorID}
	if publishedOnly {
		filter["type"] = bson.M{"$ne": models.PostDraft}
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return r.find(ctx, filter, findOptions)
}

// UpdatePost writes the mutable fields of post back to MongoDB
func (r *MongoPostRepository) UpdatePost(ctx context.Context, post *models.Post) error {
	post.UpdatedAt = time.Now()
	if post.TagIDs == nil {
		post.TagIDs = []uint{}
	}
	update := bson.M{
		"$set": bson.M{
			"title":      post.Title,
			"content":    post.Content,
			"image":      post.Image,
			"type":       post.Type,
			"tag_ids":    post.TagIDs,
			"updated_at": post.UpdatedAt,
		},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": post.ID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrPostNotFound
	}
	return nil
}

// DeletePost deletes a post by ID from MongoDB
func (r *MongoPostRepository) DeletePost(ctx context.Context, id string) error {
	objID, err := objectID(id)
	if err != nil {
		return err
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrPostNotFound
	}
	return nil
}

// IncrementViews adds one to the view counter of a post
func (r *MongoPostRepository) IncrementViews(ctx context.Context, id string) error {
	objID, err := objectID(id)
	if err != nil {
		return err
	}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$inc": bson.M{"views": 1}})
	return err
}

// CountByTagIDs counts posts (drafts included) carrying each tag
func (r *MongoPostRepository) CountByTagIDs(ctx context.Context, tagIDs []uint) (map[uint]int64, error) {
	result := make(map[uint]int64, len(tagIDs))
	if len(tagIDs) == 0 {
		return result, nil
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"tag_ids": bson.M{"$in": tagIDs}}}},
		{{Key: "$unwind", Value: "$tag_ids"}},
		{{Key: "$match", Value: bson.M{"tag_ids": bson.M{"$in": tagIDs}}}},
		{{Key: "$group", Value: bson.M{"_id": "$tag_ids", "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		TagID int64 `bson:"_id"`
		Count int64 `bson:"count"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[uint(row.TagID)] = row.Count
	}
	return result, nil
}

// RemoveTag detaches a deleted tag from every post
func (r *MongoPostRepository) RemoveTag(ctx context.Context, tagID uint) error {
	_, err := r.collection.UpdateMany(ctx,
		bson.M{"tag_ids": tagID},
		bson.M{"$pull": bson.M{"tag_ids": tagID}},
	)
	return err
}

func publishedFilter() bson.M {
	return bson.M{"type": bson.M{"$ne": models.PostDraft}}
}
