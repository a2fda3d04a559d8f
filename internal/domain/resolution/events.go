package resolution

import "time"

const (
	EventResolutionCreated   = "ResolutionCreated"
	EventResolutionCompleted = "ResolutionCompleted"
	EventResolutionCancelled = "ResolutionCancelled"
)

type ResolutionCreated struct {
	ResolutionID   string    `json:"resolution_id"`
	OrderID        string    `json:"order_id"`
	Type           string    `json:"type"` // "reprint" or "refund"
	RefundAmount   int       `json:"refund_amount,omitempty"`
	ReprintOrderID string    `json:"reprint_order_id,omitempty"`
	Note           string    `json:"note,omitempty"`
	CreatedBy      string    `json:"created_by"`
	CreatedAt      time.Time `json:"created_at"`
}

type ResolutionCompleted struct {
	ResolutionID string    `json:"resolution_id"`
	CompletedAt  time.Time `json:"completed_at"`
}

type ResolutionCancelled struct {
	ResolutionID string    `json:"resolution_id"`
	Reason       string    `json:"reason,omitempty"`
	CancelledAt  time.Time `json:"cancelled_at"`
}
