// Package jwt issues and validates the signed tokens used by the API:
// bearer access tokens, single-purpose magic-link tokens and OAuth state tokens.
package jwt

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

const (
	TokenTypeAccess     = "access"
	TokenTypeMagicLink  = "magic_link"
	TokenTypeOAuthState = "oauth_state"
)

const stateTTL = 10 * time.Minute

// Claims represents access JWT claims
type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	Role   string    `json:"role"`
	Type   string    `json:"type"`
	jwt.RegisteredClaims
}

// LinkClaims carries the email a magic link was issued for
type LinkClaims struct {
	Email string `json:"email"`
	Type  string `json:"type"`
	jwt.RegisteredClaims
}

// Service handles JWT operations
type Service struct {
	secret    []byte
	accessTTL time.Duration
	linkTTL   time.Duration
	now       func() time.Time
}

// NewService creates JWT service
func NewService(secret string, accessTTL, linkTTL time.Duration) *Service {
	return &Service{secret: []byte(secret), accessTTL: accessTTL, linkTTL: linkTTL, now: time.Now}
}

// GenerateAccessToken generates access token
func (s *Service) GenerateAccessToken(userID uuid.UUID, role string) (string, error) {
	now := s.now()
	claims := Claims{
		UserID: userID,
		Role:   role,
		Type:   TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// ValidateAccessToken validates and parses access token
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	if err := s.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.Type != TokenTypeAccess {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// GenerateMagicLinkToken signs a short-lived login token for email
func (s *Service) GenerateMagicLinkToken(email string) (string, error) {
	return s.linkToken(strings.ToLower(strings.TrimSpace(email)), TokenTypeMagicLink, s.linkTTL)
}

// ValidateMagicLinkToken returns the email a magic link was issued for
func (s *Service) ValidateMagicLinkToken(tokenString string) (string, error) {
	return s.validateLink(tokenString, TokenTypeMagicLink)
}

// GenerateStateToken signs an OAuth state value
func (s *Service) GenerateStateToken() (string, error) {
	return s.linkToken("", TokenTypeOAuthState, stateTTL)
}

// ValidateStateToken checks an OAuth state value
func (s *Service) ValidateStateToken(tokenString string) error {
	_, err := s.validateLink(tokenString, TokenTypeOAuthState)
	return err
}

func (s *Service) linkToken(email, tokenType string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := LinkClaims{
		Email: email,
		Type:  tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Service) validateLink(tokenString, tokenType string) (string, error) {
	claims := &LinkClaims{}
	if err := s.parse(tokenString, claims); err != nil {
		return "", err
	}
	if claims.Type != tokenType {
		return "", ErrInvalidToken
	}
	return claims.Email, nil
}

func (s *Service) parse(tokenString string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrExpiredToken
		}
		return ErrInvalidToken
	}
	if !token.Valid {
		return ErrInvalidToken
	}
	return nil
}

// AccessTTL returns the lifetime of access tokens
func (s *Service) AccessTTL() time.Duration { return s.accessTTL }

// LinkTTL returns the lifetime of magic-link tokens
func (s *Service) LinkTTL() time.Duration { return s.linkTTL }
