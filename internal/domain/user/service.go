package user

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/aihotel/hotel-api/internal/pkg/password"
)

// Service handles profile and account management
type Service struct {
	repo Repository
}

// NewService creates user service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetByID returns a user or ErrUserNotFound
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// UpdateProfile changes the display name
func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, name string) (*User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Name = strings.TrimSpace(name)
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdatePreferences stores the preferences the recommender reads
func (s *Service) UpdatePreferences(ctx context.Context, id uuid.UUID, req *PreferencesRequest) (*User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.PreferredFloor = orDefault(req.PreferredFloor)
	user.RoomLocation = orDefault(req.RoomLocation)
	interests := pq.StringArray{}
	for _, i := range req.Interests {
		if i = strings.TrimSpace(i); i != "" {
			interests = append(interests, i)
		}
	}
	user.Interests = interests

	if err := s.repo.UpdatePreferences(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword verifies the current password before storing a new hash
func (s *Service) ChangePassword(ctx context.Context, id uuid.UUID, req *ChangePasswordRequest) error {
	if err := password.CheckNew(req.NewPassword, req.ConfirmPassword); err != nil {
		return err
	}

	user, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !password.Verify(req.CurrentPassword, user.PasswordHash) {
		return ErrInvalidCredentials
	}

	hash, err := password.Hash(req.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.repo.UpdatePassword(ctx, id, hash); err != nil {
		return err
	}

	log.Info().Str("user_id", id.String()).Msg("Password changed")
	return nil
}

// Search lists users matching name or email
func (s *Service) Search(ctx context.Context, query string) ([]*User, error) {
	return s.repo.Search(ctx, strings.TrimSpace(query))
}

// SetRole changes a user's role on behalf of an admin
func (s *Service) SetRole(ctx context.Context, actorID, id uuid.UUID, role Role) (*User, error) {
	if !role.IsValid() {
		return nil, ErrInvalidRole
	}
	if actorID == id && role != RoleAdmin {
		return nil, ErrSelfDemotion
	}

	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateRole(ctx, id, role); err != nil {
		return nil, err
	}
	user.Role = role

	log.Info().
		Str("actor_id", actorID.String()).
		Str("user_id", id.String()).
		Str("role", string(role)).
		Msg("User role updated")
	return user, nil
}

// Count returns the number of registered users
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

func orDefault(v string) string {
	if v == "" {
		return NoPreference
	}
	return v
}
