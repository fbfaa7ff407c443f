package services

import (
	"github.com/anonto42/inkwell/backend/internal/identity"
	"github.com/anonto42/inkwell/backend/internal/media"
	"github.com/anonto42/inkwell/backend/internal/repositories"
	"github.com/anonto42/inkwell/backend/internal/throttle"
	"github.com/rs/zerolog"
)

// Services holds every domain service
type Services struct {
	Auth          *AuthService
	Users         *UserService
	Posts         *PostService
	Feed          *FeedService
	Comments      *CommentService
	Likes         *LikeService
	Notifications *Notifier
	Tags          *TagService
}

// Options carries the collaborators that are not repositories. Media and Firebase may be nil.
type Options struct {
	Tokens   *identity.Tokens
	Media    media.Store
	Firebase FirebaseVerifier
	Views    *throttle.ViewThrottle
}

// NewServices creates all services
func NewServices(repos *repositories.Repositories, opts Options, log zerolog.Logger) *Services {
	notifier := NewNotifier(repos, log)
	comments := NewCommentService(repos, notifier, log)
	tags := NewTagService(repos, log)
	enricher := newPostEnricher(repos)

	return &Services{
		Auth:          NewAuthService(repos.Users, opts.Tokens, opts.Firebase, log),
		Users:         NewUserService(repos, enricher, log),
		Posts:         NewPostService(repos, comments, tags, enricher, opts.Media, opts.Views, log),
		Feed:          NewFeedService(repos, enricher, log),
		Comments:      comments,
		Likes:         NewLikeService(repos, notifier, log),
		Notifications: notifier,
		Tags:          tags,
	}
}
