package user

import (
	"time"

	"github.com/google/uuid"
)

// UpdateProfileRequest changes the display name
type UpdateProfileRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

// PreferencesRequest updates stay preferences
type PreferencesRequest struct {
	PreferredFloor string   `json:"preferred_floor" validate:"omitempty,floor_pref"`
	RoomLocation   string   `json:"room_location" validate:"omitempty,location_pref"`
	Interests      []string `json:"interests" validate:"omitempty,max=20,dive,max=60"`
}

// ChangePasswordRequest changes the account password
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

// UpdateRoleRequest is the admin role change payload
type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,user_role"`
}

// UserResponse represents user in API response
type UserResponse struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Role           Role      `json:"role"`
	IsVerified     bool      `json:"is_verified"`
	HasPassword    bool      `json:"has_password"`
	GoogleLinked   bool      `json:"google_linked"`
	PreferredFloor string    `json:"preferred_floor"`
	RoomLocation   string    `json:"room_location"`
	Interests      []string  `json:"interests"`
	CreatedAt      time.Time `json:"created_at"`
}

// UserResponseFromEntity converts entity to response
func UserResponseFromEntity(u *User) *UserResponse {
	interests := []string(u.Interests)
	if interests == nil {
		interests = []string{}
	}
	return &UserResponse{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		Role:           u.Role,
		IsVerified:     u.IsVerified,
		HasPassword:    u.HasPassword(),
		GoogleLinked:   u.GoogleID.Valid,
		PreferredFloor: u.PreferredFloor,
		RoomLocation:   u.RoomLocation,
		Interests:      interests,
		CreatedAt:      u.CreatedAt,
	}
}
