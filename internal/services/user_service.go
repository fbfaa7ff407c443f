package services

import (
	"context"
	"errors"
	"strings"

	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/anonto42/inkwell/backend/internal/repositories"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type UserService struct {
	users    repositories.UserRepository
	follows  repositories.FollowRepository
	posts    repositories.PostRepository
	enricher *postEnricher
	log      zerolog.Logger
}

func NewUserService(repos *repositories.Repositories, enricher *postEnricher, log zerolog.Logger) *UserService {
	return &UserService{
		users:    repos.Users,
		follows:  repos.Follows,
		posts:    repos.Posts,
		enricher: enricher,
		log:      log.With().Str("component", "users").Logger(),
	}
}

// Profile is the public profile page
type Profile struct {
	models.User
	FollowersCount int64                `json:"followersCount"`
	FollowingCount int64                `json:"followingCount"`
	Followers      []models.UserCompact `json:"followers"`
	Following      []models.UserCompact `json:"following"`
	IsFollowing    bool                 `json:"isFollowing"`
	Posts          []PostSummary        `json:"posts"`
}

// Profile loads a user by username. Owners also see their drafts.
func (s *UserService) Profile(ctx context.Context, username string, viewerID uint) (*Profile, error) {
	user, err := s.byUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	user.Avatar = user.AvatarOrPlaceholder()

	followers, err := s.follows.GetFollowers(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	following, err := s.follows.GetFollowing(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	isFollowing := false
	if viewerID != 0 && viewerID != user.ID {
		if isFollowing, err = s.follows.IsFollowing(ctx, viewerID, user.ID); err != nil {
			return nil, err
		}
	}

	posts, err := s.posts.GetPostsByAuthor(ctx, user.ID, viewerID != user.ID)
	if err != nil {
		return nil, err
	}
	summaries, err := s.enricher.enrich(ctx, posts, viewerID)
	if err != nil {
		return nil, err
	}

	return &Profile{
		User:           *user,
		FollowersCount: int64(len(followers)),
		FollowingCount: int64(len(following)),
		Followers:      toCompacts(followers),
		Following:      toCompacts(following),
		IsFollowing:    isFollowing,
		Posts:          summaries,
	}, nil
}

// UpdateProfile applies the non-empty fields of req to the caller's account
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, req models.UpdateUserRequest) (*models.User, error) {
	if userID == 0 {
		return nil, Unauthorized("Please login first!")
	}
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, Unauthorized("Please login first!")
		}
		return nil, err
	}
	if req.Name != "" {
		user.Name = strings.TrimSpace(req.Name)
	}
	if req.Avatar != "" {
		user.Avatar = req.Avatar
	}
	if req.Bio != "" {
		user.Bio = req.Bio
	}
	if req.Site != "" {
		user.Site = req.Site
	}
	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ToggleFollow makes followerID follow username, or unfollow when already following
func (s *UserService) ToggleFollow(ctx context.Context, followerID uint, username string) (bool, error) {
	if followerID == 0 {
		return false, Unauthorized("Please login first!")
	}
	target, err := s.byUsername(ctx, username)
	if err != nil {
		return false, err
	}
	if target.ID == followerID {
		return false, Invalid("You cannot follow yourself")
	}

	following, err := s.follows.IsFollowing(ctx, followerID, target.ID)
	if err != nil {
		return false, err
	}
	if following {
		err := s.follows.DeleteFollow(ctx, followerID, target.ID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return false, err
		}
		return false, nil
	}
	if err := s.follows.CreateFollow(ctx, &models.Follow{FollowerID: followerID, FollowingID: target.ID}); err != nil {
		return false, err
	}
	s.log.Debug().Uint("follower", followerID).Uint("following", target.ID).Msg("follow created")
	return true, nil
}

func (s *UserService) byUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, NotFound("User not found")
		}
		return nil, err
	}
	return user, nil
}

func toCompacts(users []models.User) []models.UserCompact {
	out := make([]models.UserCompact, len(users))
	for i := range users {
		out[i] = users[i].ToCompact()
	}
	return out
}
