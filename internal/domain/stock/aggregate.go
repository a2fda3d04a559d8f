package stock

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/example/printshop/internal/domain/aggregate"
	"github.com/example/printshop/internal/infrastructure/store"
)

const AggregateType = "Stock"

var (
	ErrInsufficientBlanks = errors.New("insufficient blank stock")
	ErrInvalidQuantity    = errors.New("quantity must be positive")
)

// Stock tracks blank garments for one product variant. Blanks are
// reserved when an order is placed, released on cancellation, and
// consumed when the order ships.
type Stock struct {
	ID             string `json:"id"`
	ProductID      string `json:"product_id"`
	VariantID      string `json:"variant_id"`
	TotalBlanks    int    `json:"total_blanks"`
	ReservedBlanks int    `json:"reserved_blanks"`
	Version        int    `json:"version"`
}

// Aggregate interface implementation
func (st *Stock) GetID() string    { return st.ID }
func (st *Stock) GetVersion() int  { return st.Version }
func (st *Stock) SetVersion(v int) { st.Version = v }

func (st *Stock) Available() int {
	return st.TotalBlanks - st.ReservedBlanks
}

// GetStockID returns the aggregate ID for a product variant
func GetStockID(productID, variantID string) string {
	return "stock-" + productID + ":" + variantID
}

// ApplyEvent applies a single event to the stock state (implements aggregate.Aggregate)
func (st *Stock) ApplyEvent(event store.Event) error {
	switch event.EventType {
	case EventBlanksReceived:
		var data BlanksReceived
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		st.ProductID = data.ProductID
		st.VariantID = data.VariantID
		st.TotalBlanks += data.Quantity
	case EventBlanksReserved:
		var data BlanksReserved
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		st.ReservedBlanks += data.Quantity
	case EventBlanksReleased:
		var data BlanksReleased
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		st.ReservedBlanks -= data.Quantity
		if st.ReservedBlanks < 0 {
			st.ReservedBlanks = 0
		}
	case EventBlanksConsumed:
		var data BlanksConsumed
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		st.TotalBlanks -= data.Quantity
		st.ReservedBlanks -= data.Quantity
		if st.TotalBlanks < 0 {
			st.TotalBlanks = 0
		}
		if st.ReservedBlanks < 0 {
			st.ReservedBlanks = 0
		}
	}
	st.Version = event.Version
	return nil
}

type Service struct {
	eventStore store.EventStoreInterface
}

func NewService(es store.EventStoreInterface) *Service {
	return &Service{eventStore: es}
}

// loadStock replays the stock record. Missing stock is an empty record.
func (s *Service) loadStock(ctx context.Context, productID, variantID string) (*Stock, error) {
	stockID := GetStockID(productID, variantID)
	st, _, err := aggregate.LoadAggregate(ctx, s.eventStore, stockID, func() *Stock {
		return &Stock{}
	})
	if err != nil {
		return nil, err
	}
	st.ID = stockID
	st.ProductID = productID
	st.VariantID = variantID
	return st, nil
}

// Load exposes the replayed stock record
func (s *Service) Load(ctx context.Context, productID, variantID string) (*Stock, error) {
	return s.loadStock(ctx, productID, variantID)
}

func (s *Service) checkSnapshot(ctx context.Context, st *Stock) {
	if err := aggregate.MaybeCreateSnapshot(ctx, s.eventStore, st, AggregateType); err != nil {
		log.Printf("[Stock] Failed to create snapshot for %s: %v", st.ID, err)
	}
}

// Receive books new blanks into stock
func (s *Service) Receive(ctx context.Context, productID, variantID string, quantity int, supplier string) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	st, err := s.loadStock(ctx, productID, variantID)
	if err != nil {
		return err
	}

	event := BlanksReceived{
		ProductID:  productID,
		VariantID:  variantID,
		Quantity:   quantity,
		Supplier:   supplier,
		ReceivedAt: time.Now(),
	}
	storedEvent, err := s.eventStore.Append(ctx, st.ID, AggregateType, EventBlanksReceived, event)
	if err != nil {
		return err
	}

	st.TotalBlanks += quantity
	if storedEvent != nil {
		st.Version = storedEvent.Version
	}
	s.checkSnapshot(ctx, st)
	return nil
}

// Reserve holds blanks for an order
func (s *Service) Reserve(ctx context.Context, productID, variantID, orderID string, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	st, err := s.loadStock(ctx, productID, variantID)
	if err != nil {
		return err
	}
	if st.Available() < quantity {
		return ErrInsufficientBlanks
	}

	event := BlanksReserved{
		ProductID:  productID,
		VariantID:  variantID,
		OrderID:    orderID,
		Quantity:   quantity,
		ReservedAt: time.Now(),
	}
	storedEvent, err := s.eventStore.Append(ctx, st.ID, AggregateType, EventBlanksReserved, event)
	if err != nil {
		return err
	}

	st.ReservedBlanks += quantity
	if storedEvent != nil {
		st.Version = storedEvent.Version
	}
	s.checkSnapshot(ctx, st)
	return nil
}

// Release returns reserved blanks to stock when an order is cancelled
func (s *Service) Release(ctx context.Context, productID, variantID, orderID string, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	st, err := s.loadStock(ctx, productID, variantID)
	if err != nil {
		return err
	}

	event := BlanksReleased{
		ProductID:  productID,
		VariantID:  variantID,
		OrderID:    orderID,
		Quantity:   quantity,
		ReleasedAt: time.Now(),
	}
	storedEvent, err := s.eventStore.Append(ctx, st.ID, AggregateType, EventBlanksReleased, event)
	if err != nil {
		return err
	}

	st.ReservedBlanks -= quantity
	if storedEvent != nil {
		st.Version = storedEvent.Version
	}
	s.checkSnapshot(ctx, st)
	return nil
}

// Consume uses up reserved blanks when the order ships
func (s *Service) Consume(ctx context.Context, productID, variantID, orderID string, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	st, err := s.loadStock(ctx, productID, variantID)
	if err != nil {
		return err
	}

	event := BlanksConsumed{
		ProductID:  productID,
		VariantID:  variantID,
		OrderID:    orderID,
		Quantity:   quantity,
		ConsumedAt: time.Now(),
	}
	storedEvent, err := s.eventStore.Append(ctx, st.ID, AggregateType, EventBlanksConsumed, event)
	if err != nil {
		return err
	}

	st.TotalBlanks -= quantity
	st.ReservedBlanks -= quantity
	if storedEvent != nil {
		st.Version = storedEvent.Version
	}
	s.checkSnapshot(ctx, st)
	return nil
}
