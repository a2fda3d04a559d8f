package design

import (
	"context"
	"errors"
	"time"

	"github.com/example/printshop/internal/infrastructure/store"
	"github.com/google/uuid"
)

const AggregateType = "Design"

var (
	ErrDesignNotFound = errors.New("design not found")
	ErrInvalidName    = errors.New("name is required")
	ErrMissingImage   = errors.New("image_url is required")
)

// Design is customer-uploaded artwork that can be placed on products
type Design struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	ImageURL  string    `json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Service struct {
	eventStore store.EventStoreInterface
}

func NewService(es store.EventStoreInterface) *Service {
	return &Service{eventStore: es}
}

func (s *Service) exists(designID string) bool {
	return len(s.eventStore.GetEvents(designID)) > 0
}

func (s *Service) Upload(ctx context.Context, userID, name, imageURL string) (*Design, error) {
	if name == "" {
		return nil, ErrInvalidName
	}
	if imageURL == "" {
		return nil, ErrMissingImage
	}

	designID := uuid.New().String()
	now := time.Now()

	event := DesignUploaded{
		DesignID:   designID,
		UserID:     userID,
		Name:       name,
		ImageURL:   imageURL,
		UploadedAt: now,
	}

	if _, err := s.eventStore.Append(ctx, designID, AggregateType, EventDesignUploaded, event); err != nil {
		return nil, err
	}

	return &Design{
		ID:        designID,
		UserID:    userID,
		Name:      name,
		ImageURL:  imageURL,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *Service) Rename(ctx context.Context, designID, name string) error {
	if name == "" {
		return ErrInvalidName
	}
	if !s.exists(designID) {
		return ErrDesignNotFound
	}

	event := DesignRenamed{
		DesignID:  designID,
		Name:      name,
		RenamedAt: time.Now(),
	}

	_, err := s.eventStore.Append(ctx, designID, AggregateType, EventDesignRenamed, event)
	return err
}

func (s *Service) Delete(ctx context.Context, designID string) error {
	if !s.exists(designID) {
		return ErrDesignNotFound
	}

	event := DesignDeleted{
		DesignID:  designID,
		DeletedAt: time.Now(),
	}

	_, err := s.eventStore.Append(ctx, designID, AggregateType, EventDesignDeleted, event)
	return err
}
