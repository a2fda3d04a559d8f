package expense

import "time"

const (
	EventExpenseRecorded = "ExpenseRecorded"
	EventExpenseUpdated  = "ExpenseUpdated"
	EventExpenseDeleted  = "ExpenseDeleted"
)

type ExpenseRecorded struct {
	ExpenseID  string    `json:"expense_id"`
	Category   string    `json:"category"`
	Supplier   string    `json:"supplier,omitempty"`
	Amount     int       `json:"amount"` // cents
	Currency   string    `json:"currency"`
	IncurredOn string    `json:"incurred_on"` // YYYY-MM-DD
	Note       string    `json:"note,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

type ExpenseUpdated struct {
	ExpenseID  string    `json:"expense_id"`
	Category   string    `json:"category"`
	Supplier   string    `json:"supplier,omitempty"`
	Amount     int       `json:"amount"`
	Currency   string    `json:"currency"`
	IncurredOn string    `json:"incurred_on"`
	Note       string    `json:"note,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type ExpenseDeleted struct {
	ExpenseID string    `json:"expense_id"`
	DeletedAt time.Time `json:"deleted_at"`
}
