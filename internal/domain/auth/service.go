package auth

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/aihotel/hotel-api/internal/domain/user"
	"github.com/aihotel/hotel-api/internal/pkg/jwt"
	"github.com/aihotel/hotel-api/internal/pkg/oauth"
	"github.com/aihotel/hotel-api/internal/pkg/password"
)

// LinkMailer delivers magic sign-in links
type LinkMailer interface {
	SendMagicLink(to, name, link, expiresIn string)
}

// GoogleProvider runs the Google authorization code flow
type GoogleProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth.GoogleProfile, error)
}

// Service handles authentication business logic
type Service struct {
	userRepo    user.Repository
	jwtService  *jwt.Service
	redis       *redis.Client // nil if Redis disabled
	mailer      LinkMailer
	google      GoogleProvider // nil if Google sign-in disabled
	frontendURL string
}

// NewService creates auth service
func NewService(userRepo user.Repository, jwtService *jwt.Service, redis *redis.Client, mailer LinkMailer, google GoogleProvider, frontendURL string) *Service {
	return &Service{
		userRepo:    userRepo,
		jwtService:  jwtService,
		redis:       redis,
		mailer:      mailer,
		google:      google,
		frontendURL: strings.TrimRight(frontendURL, "/"),
	}
}

// Register creates a password account and signs it in
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	if err := password.CheckNew(req.Password, req.ConfirmPassword); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.GetByEmail(ctx, user.NormalizeEmail(req.Email))
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailAlreadyExists
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	u := user.New(req.Name, req.Email)
	u.PasswordHash = hash
	if err := s.userRepo.Create(ctx, u); err != nil {
		if errors.Is(err, user.ErrEmailAlreadyExists) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, err
	}

	log.Info().Str("user_id", u.ID.String()).Msg("User registered")
	return s.issue(u)
}

// Login authenticates with email and password
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	u, err := s.userRepo.GetByEmail(ctx, user.NormalizeEmail(req.Email))
	if err != nil {
		return nil, err
	}
	if u == nil || !password.Verify(req.Password, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return s.issue(u)
}

// RequestMagicLink emails a sign-in link. The outcome is the same whether
// or not an account exists.
func (s *Service) RequestMagicLink(ctx context.Context, email string) error {
	email = user.NormalizeEmail(email)

	token, err := s.jwtService.GenerateMagicLinkToken(email)
	if err != nil {
		return fmt.Errorf("sign magic link: %w", err)
	}

	name := user.NameFromEmail(email)
	if u, err := s.userRepo.GetByEmail(ctx, email); err == nil && u != nil {
		name = u.Name
	}

	link := s.frontendURL + "/auth/magic?token=" + url.QueryEscape(token)
	s.mailer.SendMagicLink(email, name, link, s.jwtService.LinkTTL().String())
	return nil
}

// VerifyMagicLink consumes a link token, creating the account on first use
func (s *Service) VerifyMagicLink(ctx context.Context, token string) (*AuthResponse, error) {
	email, err := s.jwtService.ValidateMagicLinkToken(token)
	if err != nil {
		return nil, ErrInvalidLink
	}
	if err := s.consumeLink(ctx, token); err != nil {
		return nil, err
	}

	u, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if u == nil {
		u = user.New(user.NameFromEmail(email), email)
		u.IsVerified = true
		if err := s.userRepo.Create(ctx, u); err != nil {
			return nil, err
		}
		log.Info().Str("user_id", u.ID.String()).Msg("User created from magic link")
	} else if !u.IsVerified {
		if err := s.userRepo.MarkVerified(ctx, u.ID); err != nil {
			return nil, err
		}
		u.IsVerified = true
	}

	return s.issue(u)
}

// GoogleAuthURL returns the consent URL with a signed state
func (s *Service) GoogleAuthURL() (string, error) {
	if s.google == nil {
		return "", ErrGoogleDisabled
	}
	state, err := s.jwtService.GenerateStateToken()
	if err != nil {
		return "", err
	}
	return s.google.AuthCodeURL(state), nil
}

// GoogleCallback finds the account by Google id, links by email, or creates it
func (s *Service) GoogleCallback(ctx context.Context, code, state string) (*AuthResponse, error) {
	if s.google == nil {
		return nil, ErrGoogleDisabled
	}
	if err := s.jwtService.ValidateStateToken(state); err != nil {
		return nil, ErrInvalidState
	}

	profile, err := s.google.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}

	u, err := s.userRepo.GetByGoogleID(ctx, profile.ID)
	if err != nil {
		return nil, err
	}
	if u != nil {
		return s.issue(u)
	}

	u, err = s.userRepo.GetByEmail(ctx, profile.Email)
	if err != nil {
		return nil, err
	}
	if u != nil {
		if err := s.userRepo.LinkGoogle(ctx, u.ID, profile.ID); err != nil {
			return nil, err
		}
		u.GoogleID = sql.NullString{String: profile.ID, Valid: true}
		u.IsVerified = true
		log.Info().Str("user_id", u.ID.String()).Msg("Existing account linked with Google")
		return s.issue(u)
	}

	name := profile.Name
	if name == "" {
		name = user.NameFromEmail(profile.Email)
	}
	u = user.New(name, profile.Email)
	u.GoogleID = sql.NullString{String: profile.ID, Valid: true}
	u.IsVerified = true
	if err := s.userRepo.Create(ctx, u); err != nil {
		return nil, err
	}
	log.Info().Str("user_id", u.ID.String()).Msg("User created via Google")
	return s.issue(u)
}

// Me returns the signed-in user
func (s *Service) Me(ctx context.Context, userID uuid.UUID) (*user.User, error) {
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// FrontendURL is where browser flows land after sign-in
func (s *Service) FrontendURL() string {
	return s.frontendURL
}

func (s *Service) issue(u *user.User) (*AuthResponse, error) {
	accessToken, err := s.jwtService.GenerateAccessToken(u.ID, string(u.Role))
	if err != nil {
		return nil, err
	}
	return &AuthResponse{
		User: user.UserResponseFromEntity(u),
		Tokens: TokensResponse{
			AccessToken: accessToken,
			ExpiresIn:   int(s.jwtService.AccessTTL().Seconds()),
			TokenType:   "Bearer",
		},
	}, nil
}

// consumeLink makes a magic link single-use when Redis is available
func (s *Service) consumeLink(ctx context.Context, token string) error {
	if s.redis == nil {
		return nil
	}
	sum := sha256.Sum256([]byte(token))
	ok, err := s.redis.SetNX(ctx, "magic_link:used:"+hex.EncodeToString(sum[:]), 1, s.jwtService.LinkTTL()).Result()
	if err != nil {
		log.Warn().Err(err).Msg("Could not record magic link use")
		return nil
	}
	if !ok {
		return ErrLinkAlreadyUsed
	}
	return nil
}
