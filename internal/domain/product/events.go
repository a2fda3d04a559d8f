package product

import "time"

const (
	EventProductCreated      = "ProductCreated"
	EventProductUpdated      = "ProductUpdated"
	EventProductDeactivated  = "ProductDeactivated"
	EventVariantAdded        = "ProductVariantAdded"
	EventVariantRemoved      = "ProductVariantRemoved"
	EventProductImageUpdated = "ProductImageUpdated"
)

type Variant struct {
	VariantID  string `json:"variant_id"`
	Size       string `json:"size"`
	Color      string `json:"color"`
	PriceDelta int    `json:"price_delta"`
}

type ProductCreated struct {
	ProductID   string    `json:"product_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	BasePrice   int       `json:"base_price"`
	PrintAreas  []string  `json:"print_areas,omitempty"`
	Variants    []Variant `json:"variants,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type ProductUpdated struct {
	ProductID   string    `json:"product_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	BasePrice   int       `json:"base_price"`
	PrintAreas  []string  `json:"print_areas,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ProductDeactivated struct {
	ProductID     string    `json:"product_id"`
	DeactivatedAt time.Time `json:"deactivated_at"`
}

type VariantAdded struct {
	ProductID string    `json:"product_id"`
	Variant   Variant   `json:"variant"`
	AddedAt   time.Time `json:"added_at"`
}

type VariantRemoved struct {
	ProductID string    `json:"product_id"`
	VariantID string    `json:"variant_id"`
	RemovedAt time.Time `json:"removed_at"`
}

// ProductImageUpdated is emitted when the product image is replaced
type ProductImageUpdated struct {
	ProductID string    `json:"product_id"`
	ImageURL  string    `json:"image_url"`
	UpdatedAt time.Time `json:"updated_at"`
}
