package product

import (
	"context"
	"errors"
	"time"

	"github.com/example/printshop/internal/infrastructure/store"
	"github.com/google/uuid"
)

const AggregateType = "Product"

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidPrice    = errors.New("base price must be positive")
	ErrInvalidName     = errors.New("name is required")
	ErrInvalidVariant  = errors.New("variant size and color are required")
)

type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	BasePrice   int       `json:"base_price"`
	PrintAreas  []string  `json:"print_areas,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	Variants    []Variant `json:"variants"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Service struct {
	eventStore store.EventStoreInterface
}

func NewService(es store.EventStoreInterface) *Service {
	return &Service{eventStore: es}
}

func (s *Service) exists(productID string) bool {
	return len(s.eventStore.GetEvents(productID)) > 0
}

func (s *Service) Create(ctx context.Context, name, description, category string, basePrice int, printAreas []string, variants []Variant) (*Product, error) {
	if name == "" {
		return nil, ErrInvalidName
	}
	if basePrice <= 0 {
		return nil, ErrInvalidPrice
	}
	for idx := range variants {
		if variants[idx].Size == "" || variants[idx].Color == "" {
			return nil, ErrInvalidVariant
		}
		if variants[idx].VariantID == "" {
			variants[idx].VariantID = uuid.New().String()
		}
	}

	productID := uuid.New().String()
	now := time.Now()

	event := ProductCreated{
		ProductID:   productID,
		Name:        name,
		Description: description,
		Category:    category,
		BasePrice:   basePrice,
		PrintAreas:  printAreas,
		Variants:    variants,
		CreatedAt:   now,
	}

	if _, err := s.eventStore.Append(ctx, productID, AggregateType, EventProductCreated, event); err != nil {
		return nil, err
	}

	return &Product{
		ID:          productID,
		Name:        name,
		Description: description,
		Category:    category,
		BasePrice:   basePrice,
		PrintAreas:  printAreas,
		Variants:    variants,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (s *Service) Update(ctx context.Context, productID, name, description, category string, basePrice int, printAreas []string) error {
	if name == "" {
		return ErrInvalidName
	}
	if basePrice <= 0 {
		return ErrInvalidPrice
	}
	if !s.exists(productID) {
		return ErrProductNotFound
	}

	event := ProductUpdated{
		ProductID:   productID,
		Name:        name,
		Description: description,
		Category:    category,
		BasePrice:   basePrice,
		PrintAreas:  printAreas,
		UpdatedAt:   time.Now(),
	}

	_, err := s.eventStore.Append(ctx, productID, AggregateType, EventProductUpdated, event)
	return err
}

// Deactivate hides a product from the storefront without deleting its history
func (s *Service) Deactivate(ctx context.Context, productID string) error {
	if !s.exists(productID) {
		return ErrProductNotFound
	}

	event := ProductDeactivated{
		ProductID:     productID,
		DeactivatedAt: time.Now(),
	}

	_, err := s.eventStore.Append(ctx, productID, AggregateType, EventProductDeactivated, event)
	return err
}

func (s *Service) AddVariant(ctx context.Context, productID string, variant Variant) (*Variant, error) {
	if variant.Size == "" || variant.Color == "" {
		return nil, ErrInvalidVariant
	}
	if !s.exists(productID) {
		return nil, ErrProductNotFound
	}

	if variant.VariantID == "" {
		variant.VariantID = uuid.New().String()
	}

	event := VariantAdded{
		ProductID: productID,
		Variant:   variant,
		AddedAt:   time.Now(),
	}

	if _, err := s.eventStore.Append(ctx, productID, AggregateType, EventVariantAdded, event); err != nil {
		return nil, err
	}
	return &variant, nil
}

func (s *Service) RemoveVariant(ctx context.Context, productID, variantID string) error {
	if !s.exists(productID) {
		return ErrProductNotFound
	}

	event := VariantRemoved{
		ProductID: productID,
		VariantID: variantID,
		RemovedAt: time.Now(),
	}

	_, err := s.eventStore.Append(ctx, productID, AggregateType, EventVariantRemoved, event)
	return err
}

func (s *Service) UpdateImage(ctx context.Context, productID, imageURL string) error {
	if !s.exists(productID) {
		return ErrProductNotFound
	}

	event := ProductImageUpdated{
		ProductID: productID,
		ImageURL:  imageURL,
		UpdatedAt: time.Now(),
	}

	_, err := s.eventStore.Append(ctx, productID, AggregateType, EventProductImageUpdated, event)
	return err
}
