package cart

import "time"

const (
	EventLineAdded           = "CartLineAdded"
	EventLineQuantityChanged = "CartLineQuantityChanged"
	EventLineRemoved         = "CartLineRemoved"
	EventCartCleared         = "CartCleared"
)

type LineAdded struct {
	CartID    string    `json:"cart_id"`
	UserID    string    `json:"user_id"`
	LineID    string    `json:"line_id"`
	ProductID string    `json:"product_id"`
	VariantID string    `json:"variant_id"`
	DesignID  string    `json:"design_id,omitempty"`
	Quantity  int       `json:"quantity"`
	UnitPrice int       `json:"unit_price"`
	AddedAt   time.Time `json:"added_at"`
}

type LineQuantityChanged struct {
	CartID    string    `json:"cart_id"`
	LineID    string    `json:"line_id"`
	Quantity  int       `json:"quantity"`
	ChangedAt time.Time `json:"changed_at"`
}

type LineRemoved struct {
	CartID    string    `json:"cart_id"`
	LineID    string    `json:"line_id"`
	RemovedAt time.Time `json:"removed_at"`
}

type CartCleared struct {
	CartID    string    `json:"cart_id"`
	UserID    string    `json:"user_id"`
	ClearedAt time.Time `json:"cleared_at"`
}
