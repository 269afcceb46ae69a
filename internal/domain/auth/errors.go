package auth

import "errors"

var (
	ErrEmailAlreadyExists = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidLink        = errors.New("invalid or expired sign-in link")
	ErrLinkAlreadyUsed    = errors.New("sign-in link already used")
	ErrGoogleDisabled     = errors.New("google sign-in is not configured")
	ErrInvalidState       = errors.New("invalid oauth state")
	ErrUserNotFound       = errors.New("user not found")
)
