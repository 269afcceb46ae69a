package room

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/aihotel/hotel-api/internal/pkg/imaging"
	"github.com/aihotel/hotel-api/internal/pkg/storage"
)

// ImageProcessor resizes uploaded photos
type ImageProcessor interface {
	Process(data []byte) (*imaging.ProcessedImage, error)
}

// Service handles room catalog business logic
type Service struct {
	repo      Repository
	storage   storage.Storage
	processor ImageProcessor
}

// NewService creates room service. storage and processor may be nil when uploads are disabled.
func NewService(repo Repository, store storage.Storage, processor ImageProcessor) *Service {
	return &Service{repo: repo, storage: store, processor: processor}
}

// List returns rooms, optionally filtered by type
func (s *Service) List(ctx context.Context, roomType Type) ([]*Room, error) {
	return s.repo.List(ctx, roomType)
}

// GetByID returns a room or ErrRoomNotFound
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Room, error) {
	room, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

// Create adds a room to the catalog
func (s *Service) Create(ctx context.Context, req *CreateRoomRequest) (*Room, error) {
	room := &Room{
		ID:          uuid.New(),
		RoomNumber:  strings.TrimSpace(req.RoomNumber),
		Type:        Type(req.Type),
		Price:       req.Price,
		IsAvailable: true,
		Description: strings.TrimSpace(req.Description),
		Images:      cleanList(req.Images),
		Amenities:   cleanList(req.Amenities),
	}
	if room.Description == "" {
		room.Description = DefaultDescription
	}
	if len(room.Amenities) == 0 {
		room.Amenities = DefaultAmenities()
	}

	if err := s.repo.Create(ctx, room); err != nil {
		return nil, err
	}

	log.Info().Str("room_id", room.ID.String()).Str("room_number", room.RoomNumber).Msg("Room created")
	return room, nil
}

// Update replaces the editable attributes of a room. The availability flag is
// owned by booking transitions and is left untouched.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *UpdateRoomRequest) (*Room, error) {
	room, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	room.RoomNumber = strings.TrimSpace(req.RoomNumber)
	room.Type = Type(req.Type)
	room.Price = req.Price
	room.Description = strings.TrimSpace(req.Description)
	if room.Description == "" {
		room.Description = DefaultDescription
	}
	if req.Images != nil {
		room.Images = cleanList(req.Images)
	}
	if req.Amenities != nil {
		room.Amenities = cleanList(req.Amenities)
	}

	if err := s.repo.Update(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

// Delete removes a room that no reservation references
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	active, err := s.repo.HasActiveReservations(ctx, id)
	if err != nil {
		return err
	}
	if active {
		return ErrRoomHasReservations
	}

	return s.repo.Delete(ctx, id)
}

// UploadImage stores a resized photo and its thumbnail and appends the photo URL to the room
func (s *Service) UploadImage(ctx context.Context, id uuid.UUID, file io.Reader) (string, error) {
	if s.storage == nil || s.processor == nil {
		return "", ErrImageStorage
	}
	if _, err := s.GetByID(ctx, id); err != nil {
		return "", err
	}

	data, _, err := storage.ReadImage(file, storage.MaxImageSize)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	processed, err := s.processor.Process(data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	base := fmt.Sprintf("rooms/%s/%s", id, uuid.New())
	originalKey := base + processed.Extension
	thumbKey := base + "_thumb" + processed.Extension

	if err := s.storage.Put(ctx, originalKey, bytes.NewReader(processed.Original), processed.ContentType); err != nil {
		return "", errors.Join(ErrImageStorage, err)
	}
	if err := s.storage.Put(ctx, thumbKey, bytes.NewReader(processed.Thumbnail), processed.ContentType); err != nil {
		s.storage.Delete(ctx, originalKey)
		return "", errors.Join(ErrImageStorage, err)
	}

	url := s.storage.GetURL(originalKey)
	if err := s.repo.AppendImage(ctx, id, url); err != nil {
		s.storage.Delete(ctx, originalKey)
		s.storage.Delete(ctx, thumbKey)
		return "", err
	}

	return url, nil
}
