package services

import (
	"context"
	"math"

	"github.com/anonto42/inkwell/backend/internal/repositories"
	"github.com/rs/zerolog"
)

const (
	SortLatest   = "latest"
	SortTrending = "trending"

	// highlightSize is how many posts the latest and trending modes return, whatever the limit
	highlightSize    = 3
	defaultPageLimit = 10
)

// FeedQuery selects a page of the home feed
type FeedQuery struct {
	Page     int
	Limit    int
	Sort     string
	ViewerID uint
}

type FeedPage struct {
	Posts       []PostSummary `json:"posts"`
	TotalPages  int           `json:"totalPages"`
	CurrentPage int           `json:"currentPage"`
}

// FeedService assembles the home feed
type FeedService struct {
	posts    repositories.PostRepository
	enricher *postEnricher
	log      zerolog.Logger
}

func NewFeedService(repos *repositories.Repositories, enricher *postEnricher, log zerolog.Logger) *FeedService {
	return &FeedService{
		posts:    repos.Posts,
		enricher: enricher,
		log:      log.With().Str("component", "feed").Logger(),
	}
}

// Feed returns published posts. "latest" and "trending" are highlight modes capped at
// three posts with a single page; every other sort value, including none and "for-you",
// pages through all posts newest first.
func (s *FeedService) Feed(ctx context.Context, q FeedQuery) (*FeedPage, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = defaultPageLimit
	}
	skip, inRange := pageOffset(q.Page, q.Limit)

	var (
		order      = repositories.SortNewest
		take       = int64(q.Limit)
		totalPages = 1
	)
	switch q.Sort {
	case SortLatest:
		take = highlightSize
	case SortTrending:
		order = repositories.SortMostViewed
		skip, inRange = 0, true
		take = highlightSize
	default:
		total, err := s.posts.CountPublished(ctx)
		if err != nil {
			return nil, err
		}
		totalPages = int(math.Ceil(float64(total) / float64(q.Limit)))
	}

	if !inRange {
		return &FeedPage{Posts: []PostSummary{}, TotalPages: totalPages, CurrentPage: q.Page}, nil
	}
	posts, err := s.posts.ListPublished(ctx, order, skip, take)
	if err != nil {
		return nil, err
	}
	summaries, err := s.enricher.enrich(ctx, posts, q.ViewerID)
	if err != nil {
		return nil, err
	}
	return &FeedPage{Posts: summaries, TotalPages: totalPages, CurrentPage: q.Page}, nil
}

// pageOffset is (page-1)*limit in int64; false means the offset overflows and no post can be there
func pageOffset(page, limit int) (int64, bool) {
	p, l := int64(page-1), int64(limit)
	if p > 0 && l > math.MaxInt64/p {
		return 0, false
	}
	return p * l, true
}
