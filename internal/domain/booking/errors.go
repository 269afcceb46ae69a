package booking

import "errors"

var (
	ErrInvalidRange             = errors.New("check-out must be after check-in")
	ErrNoAvailability           = errors.New("no rooms available for the requested dates")
	ErrRoomNotFound             = errors.New("room not found")
	ErrRoomUnavailable          = errors.New("room is no longer available for these dates")
	ErrBookingNotFound          = errors.New("booking not found")
	ErrNotAuthorizedForBooking  = errors.New("not authorized for this booking")
	ErrCancellationWindowClosed = errors.New("cancellation window has closed")
	ErrInvalidTransition        = errors.New("booking is not active")
	ErrNegotiationExpired       = errors.New("booking session expired")
	ErrNotACandidate            = errors.New("room was not offered for this booking")
	ErrGuestNotFound            = errors.New("guest not found")
)
