package expense

import (
	"context"
	"errors"
	"time"

	"github.com/example/printshop/internal/infrastructure/store"
	"github.com/google/uuid"
)

const AggregateType = "Expense"

var (
	ErrExpenseNotFound = errors.New("expense not found")
	ErrInvalidCategory = errors.New("category is required")
	ErrInvalidAmount   = errors.New("amount must be positive")
	ErrInvalidDate     = errors.New("incurred_on must be a YYYY-MM-DD date")
)

// Expense is one business expense entry (blanks, ink, shipping supplies)
type Expense struct {
	ID         string    `json:"id"`
	Category   string    `json:"category"`
	Supplier   string    `json:"supplier,omitempty"`
	Amount     int       `json:"amount"`
	Currency   string    `json:"currency"`
	IncurredOn string    `json:"incurred_on"`
	Note       string    `json:"note,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type Service struct {
	eventStore store.EventStoreInterface
}

func NewService(es store.EventStoreInterface) *Service {
	return &Service{eventStore: es}
}

func (s *Service) exists(expenseID string) bool {
	return len(s.eventStore.GetEvents(expenseID)) > 0
}

func validate(category string, amount int, incurredOn string) error {
	if category == "" {
		return ErrInvalidCategory
	}
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if _, err := time.Parse("2006-01-02", incurredOn); err != nil {
		return ErrInvalidDate
	}
	return nil
}

func (s *Service) Record(ctx context.Context, category, supplier string, amount int, currency, incurredOn, note string) (*Expense, error) {
	if err := validate(category, amount, incurredOn); err != nil {
		return nil, err
	}
	if currency == "" {
		currency = "EUR"
	}

	expenseID := uuid.New().String()
	now := time.Now()

	event := ExpenseRecorded{
		ExpenseID:  expenseID,
		Category:   category,
		Supplier:   supplier,
		Amount:     amount,
		Currency:   currency,
		IncurredOn: incurredOn,
		Note:       note,
		RecordedAt: now,
	}

	if _, err := s.eventStore.Append(ctx, expenseID, AggregateType, EventExpenseRecorded, event); err != nil {
		return nil, err
	}

	return &Expense{
		ID:         expenseID,
		Category:   category,
		Supplier:   supplier,
		Amount:     amount,
		Currency:   currency,
		IncurredOn: incurredOn,
		Note:       note,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

func (s *Service) Update(ctx context.Context, expenseID, category, supplier string, amount int, currency, incurredOn, note string) error {
	if err := validate(category, amount, incurredOn); err != nil {
		return err
	}
	if !s.exists(expenseID) {
		return ErrExpenseNotFound
	}

	event := ExpenseUpdated{
		ExpenseID:  expenseID,
		Category:   category,
		Supplier:   supplier,
		Amount:     amount,
		Currency:   currency,
		IncurredOn: incurredOn,
		Note:       note,
		UpdatedAt:  time.Now(),
	}

	_, err := s.eventStore.Append(ctx, expenseID, AggregateType, EventExpenseUpdated, event)
	return err
}

func (s *Service) Delete(ctx context.Context, expenseID string) error {
	if !s.exists(expenseID) {
		return ErrExpenseNotFound
	}

	event := ExpenseDeleted{
		ExpenseID: expenseID,
		DeletedAt: time.Now(),
	}

	_, err := s.eventStore.Append(ctx, expenseID, AggregateType, EventExpenseDeleted, event)
	return err
}
