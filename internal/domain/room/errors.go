package room

import "errors"

var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrRoomNumberTaken     = errors.New("room number already exists")
	ErrRoomHasReservations = errors.New("room has active reservations")
	ErrInvalidImage        = errors.New("invalid image file")
	ErrImageStorage        = errors.New("image storage unavailable")
)
