package stock

import "time"

const (
	EventBlanksReceived = "BlanksReceived"
	EventBlanksReserved = "BlanksReserved"
	EventBlanksReleased = "BlanksReleased"
	EventBlanksConsumed = "BlanksConsumed"
)

type BlanksReceived struct {
	ProductID  string    `json:"product_id"`
	VariantID  string    `json:"variant_id"`
	Quantity   int       `json:"quantity"`
	Supplier   string    `json:"supplier,omitempty"`
	ReceivedAt time.Time `json:"received_at"`
}

type BlanksReserved struct {
	ProductID  string    `json:"product_id"`
	VariantID  string    `json:"variant_id"`
	OrderID    string    `json:"order_id"`
	Quantity   int       `json:"quantity"`
	ReservedAt time.Time `json:"reserved_at"`
}

type BlanksReleased struct {
	ProductID  string    `json:"product_id"`
	VariantID  string    `json:"variant_id"`
	OrderID    string    `json:"order_id"`
	Quantity   int       `json:"quantity"`
	ReleasedAt time.Time `json:"released_at"`
}

type BlanksConsumed struct {
	ProductID  string    `json:"product_id"`
	VariantID  string    `json:"variant_id"`
	OrderID    string    `json:"order_id"`
	Quantity   int       `json:"quantity"`
	ConsumedAt time.Time `json:"consumed_at"`
}
