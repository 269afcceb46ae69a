package room

import (
	"strings"

	"github.com/google/uuid"
)

// CreateRoomRequest is the admin payload for a new room
type CreateRoomRequest struct {
	RoomNumber  string   `json:"room_number" validate:"required,max=10"`
	Type        string   `json:"type" validate:"required,room_type"`
	Price       float64  `json:"price" validate:"gt=0"`
	Description string   `json:"description" validate:"max=2000"`
	Images      []string `json:"images" validate:"omitempty,dive,url"`
	Amenities   []string `json:"amenities" validate:"omitempty,dive,max=60"`
}

// UpdateRoomRequest replaces the editable attributes of a room
type UpdateRoomRequest struct {
	RoomNumber  string   `json:"room_number" validate:"required,max=10"`
	Type        string   `json:"type" validate:"required,room_type"`
	Price       float64  `json:"price" validate:"gt=0"`
	Description string   `json:"description" validate:"max=2000"`
	Images      []string `json:"images" validate:"omitempty,dive,url"`
	Amenities   []string `json:"amenities" validate:"omitempty,dive,max=60"`
}

// RoomResponse is the public representation of a room
type RoomResponse struct {
	ID          uuid.UUID `json:"id"`
	RoomNumber  string    `json:"room_number"`
	Type        Type      `json:"type"`
	Price       float64   `json:"price"`
	IsAvailable bool      `json:"is_available"`
	Floor       string    `json:"floor"`
	Description string    `json:"description"`
	Images      []string  `json:"images"`
	Amenities   []string  `json:"amenities"`
}

// RoomResponseFromEntity maps a room to its response
func RoomResponseFromEntity(r *Room) *RoomResponse {
	return &RoomResponse{
		ID:          r.ID,
		RoomNumber:  r.RoomNumber,
		Type:        r.Type,
		Price:       r.Price,
		IsAvailable: r.IsAvailable,
		Floor:       r.Floor(),
		Description: r.Description,
		Images:      nonNil(r.Images),
		Amenities:   nonNil(r.Amenities),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// cleanList trims entries and drops empty ones
func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
