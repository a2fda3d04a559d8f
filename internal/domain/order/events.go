package order

import "time"

const (
	EventOrderPlaced            = "OrderPlaced"
	EventOrderPaid              = "OrderPaid"
	EventOrderProductionStarted = "OrderProductionStarted"
	EventOrderShipped           = "OrderShipped"
	EventOrderDelivered         = "OrderDelivered"
	EventOrderCancelled         = "OrderCancelled"
)

type OrderItem struct {
	ItemID    string `json:"item_id"`
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id"`
	DesignID  string `json:"design_id,omitempty"`
	Quantity  int    `json:"quantity"`
	UnitPrice int    `json:"unit_price"`
}

type OrderPlaced struct {
	OrderID          string      `json:"order_id"`
	UserID           string      `json:"user_id"`
	Items            []OrderItem `json:"items"`
	Total            int         `json:"total"`
	ReprintOfIssueID string      `json:"reprint_of_issue_id,omitempty"`
	PlacedAt         time.Time   `json:"placed_at"`
}

type OrderPaid struct {
	OrderID string    `json:"order_id"`
	PaidAt  time.Time `json:"paid_at"`
}

type OrderProductionStarted struct {
	OrderID   string    `json:"order_id"`
	StartedAt time.Time `json:"started_at"`
}

type OrderShipped struct {
	OrderID        string    `json:"order_id"`
	Carrier        string    `json:"carrier"`
	TrackingNumber string    `json:"tracking_number"`
	ShippedAt      time.Time `json:"shipped_at"`
}

type OrderDelivered struct {
	OrderID     string    `json:"order_id"`
	DeliveredAt time.Time `json:"delivered_at"`
}

type OrderCancelled struct {
	OrderID     string    `json:"order_id"`
	Reason      string    `json:"reason"`
	CancelledAt time.Time `json:"cancelled_at"`
}
