package services

import (
	"context"
	"fmt"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/inkwell/backend/internal/identity"
	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/anonto42/inkwell/backend/internal/repositories"
	"github.com/gosimple/slug"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// FirebaseVerifier verifies Firebase ID tokens. *auth.Client satisfies it.
type FirebaseVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

const maxUsernameAttempts = 50

// AuthService registers and signs in users and issues session tokens
type AuthService struct {
	users    repositories.UserRepository
	tokens   *identity.Tokens
	firebase FirebaseVerifier
	log      zerolog.Logger
}

func NewAuthService(users repositories.UserRepository, tokens *identity.Tokens, firebase FirebaseVerifier, log zerolog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		tokens:   tokens,
		firebase: firebase,
		log:      log.With().Str("component", "auth").Logger(),
	}
}

// Session is a signed-in user with its token
type Session struct {
	User  *models.User
	Token string
}

// Register creates a local account with a bcrypt password hash
func (s *AuthService) Register(ctx context.Context, req models.CreateLocalUserRequest) (*Session, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.TrimSpace(req.Username)

	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return nil, Conflict("User with this email already registered")
	} else if !repositories.IsNotFound(err) {
		return nil, err
	}
	if _, err := s.users.GetUserByUsername(ctx, username); err == nil {
		return nil, Conflict("Username is already taken")
	} else if !repositories.IsNotFound(err) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Name:     strings.TrimSpace(req.Name),
		Username: username,
		Email:    email,
		Password: string(hashedPassword),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	s.log.Info().Uint("userId", user.ID).Str("username", username).Msg("user registered")
	return s.session(user)
}

// Login checks an email and password pair
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*Session, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, Unauthorized("User not found with email: %s", email)
		}
		return nil, err
	}
	if user.Password == "" {
		return nil, Invalid("This account signs in with Google")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, Invalid("Invalid password")
	}
	return s.session(user)
}

// Me returns the account behind a resolved user id
func (s *AuthService) Me(ctx context.Context, userID uint) (*models.User, error) {
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
	user.Avatar = user.AvatarOrPlaceholder()
	return user, nil
}

// FirebaseEnabled reports whether Firebase sign-in is configured
func (s *AuthService) FirebaseEnabled() bool { return s.firebase != nil }

// FirebaseLogin exchanges a verified Firebase ID token for a local session.
// Accounts are matched by Firebase UID, then by email, and created otherwise.
func (s *AuthService) FirebaseLogin(ctx context.Context, idToken string) (*Session, error) {
	if s.firebase == nil {
		return nil, Invalid("Firebase login is not configured")
	}
	if idToken == "" {
		return nil, Invalid("idToken is required")
	}
	token, err := s.firebase.VerifyIDToken(ctx, idToken)
	if err != nil {
		s.log.Debug().Err(err).Msg("firebase token rejected")
		return nil, Unauthorized("Invalid Firebase ID token")
	}

	uid := token.UID
	email, _ := token.Claims["email"].(string)
	email = strings.ToLower(email)
	name, _ := token.Claims["name"].(string)
	picture, _ := token.Claims["picture"].(string)

	user, err := s.users.GetUserByFirebaseUID(ctx, uid)
	switch {
	case err == nil:
	case !repositories.IsNotFound(err):
		return nil, err
	case email == "":
		return nil, Invalid("Firebase account has no email")
	default:
		user, err = s.users.GetUserByEmail(ctx, email)
		if err != nil && !repositories.IsNotFound(err) {
			return nil, err
		}
		if user == nil {
			if user, err = s.createFirebaseUser(ctx, uid, email, name, picture); err != nil {
				return nil, err
			}
			return s.session(user)
		}
		user.FirebaseUID = &uid
		if user.Avatar == "" {
			user.Avatar = picture
		}
		if err := s.users.UpdateUser(ctx, user); err != nil {
			return nil, err
		}
	}
	return s.session(user)
}

func (s *AuthService) createFirebaseUser(ctx context.Context, uid, email, name, picture string) (*models.User, error) {
	username, err := s.uniqueUsername(ctx, email)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = username
	}
	user := &models.User{
		Name:        name,
		Username:    username,
		Email:       email,
		Avatar:      picture,
		FirebaseUID: &uid,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	s.log.Info().Uint("userId", user.ID).Str("username", username).Msg("user created from firebase")
	return user, nil
}

// uniqueUsername derives an alphanumeric username from the email's local part
func (s *AuthService) uniqueUsername(ctx context.Context, email string) (string, error) {
	local := email
	if at := strings.IndexByte(email, '@'); at > 0 {
		local = email[:at]
	}
	base := strings.ReplaceAll(slug.Make(local), "-", "")
	if len(base) < 3 {
		base = "user" + base
	}
	if len(base) > 24 {
		base = base[:24]
	}

	candidate := base
	for i := 2; i <= maxUsernameAttempts+1; i++ {
		_, err := s.users.GetUserByUsername(ctx, candidate)
		if repositories.IsNotFound(err) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
		candidate = fmt.Sprintf("%s%d", base, i)
	}
	return "", Conflict("could not generate a username for %s", email)
}

func (s *AuthService) session(user *models.User) (*Session, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	user.Avatar = user.AvatarOrPlaceholder()
	return &Session{User: user, Token: token}, nil
}
