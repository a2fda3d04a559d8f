package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/example/printshop/internal/domain/aggregate"
	"github.com/example/printshop/internal/infrastructure/store"
	"github.com/google/uuid"
)

const AggregateType = "Order"

type Status string

const (
	StatusPending      Status = "pending"
	StatusPaid         Status = "paid"
	StatusInProduction Status = "in_production"
	StatusShipped      Status = "shipped"
	StatusDelivered    Status = "delivered"
	StatusCancelled    Status = "cancelled"
)

var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrEmptyOrder       = errors.New("order must have at least one item")
	ErrInvalidStatus    = errors.New("invalid order status transition")
	ErrOrderAlreadyPaid = errors.New("order is already paid")
	ErrOrderNotPaid     = errors.New("order must be paid before production")
	ErrOrderShipped     = errors.New("cannot cancel an order that left production")
	ErrOrderCancelled   = errors.New("order is already cancelled")
	ErrMissingTracking  = errors.New("carrier and tracking number are required")
)

// validTransitions defines allowed state transitions. Cancellation is
// only possible before production starts.
var validTransitions = map[Status][]Status{
	StatusPending:      {StatusPaid, StatusCancelled},
	StatusPaid:         {StatusInProduction, StatusCancelled},
	StatusInProduction: {StatusShipped},
	StatusShipped:      {StatusDelivered},
	StatusDelivered:    {}, // terminal
	StatusCancelled:    {}, // terminal
}

type Order struct {
	ID               string      `json:"id"`
	UserID           string      `json:"user_id"`
	Items            []OrderItem `json:"items"`
	Total            int         `json:"total"`
	Status           Status      `json:"status"`
	Carrier          string      `json:"carrier,omitempty"`
	TrackingNumber   string      `json:"tracking_number,omitempty"`
	ReprintOfIssueID string      `json:"reprint_of_issue_id,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
	Version          int         `json:"version"` // Current event version
}

// Aggregate interface implementation
func (o *Order) GetID() string    { return o.ID }
func (o *Order) GetVersion() int  { return o.Version }
func (o *Order) SetVersion(v int) { o.Version = v }

// IsReprint reports whether this order replaces a faulty one
func (o *Order) IsReprint() bool {
	return o.ReprintOfIssueID != ""
}

// CanTransitionTo checks if the order can transition to the target status
func (o *Order) CanTransitionTo(target Status) bool {
	allowed, exists := validTransitions[o.Status]
	if !exists {
		return false
	}
	for _, s := range allowed {
		if s == target {
			return true
		}
	}
	return false
}

// transitionError returns an appropriate error for an invalid transition
func (o *Order) transitionError(target Status) error {
	switch {
	case o.Status == StatusCancelled:
		return ErrOrderCancelled
	case target == StatusCancelled:
		return ErrOrderShipped
	case target == StatusPaid:
		return ErrOrderAlreadyPaid
	case o.Status == StatusPending && target == StatusInProduction:
		return ErrOrderNotPaid
	default:
		return fmt.Errorf("%w: cannot transition from %s to %s", ErrInvalidStatus, o.Status, target)
	}
}

// ApplyEvent applies a single event to the order state (implements aggregate.Aggregate)
func (o *Order) ApplyEvent(event store.Event) error {
	switch event.EventType {
	case EventOrderPlaced:
		var data OrderPlaced
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		o.ID = data.OrderID
		o.UserID = data.UserID
		o.Items = data.Items
		o.Total = data.Total
		o.ReprintOfIssueID = data.ReprintOfIssueID
		o.Status = StatusPending
		o.CreatedAt = data.PlacedAt
		o.UpdatedAt = data.PlacedAt
	case EventOrderPaid:
		var data OrderPaid
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		o.Status = StatusPaid
		o.UpdatedAt = data.PaidAt
	case EventOrderProductionStarted:
		var data OrderProductionStarted
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		o.Status = StatusInProduction
		o.UpdatedAt = data.StartedAt
	case EventOrderShipped:
		var data OrderShipped
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		o.Status = StatusShipped
		o.Carrier = data.Carrier
		o.TrackingNumber = data.TrackingNumber
		o.UpdatedAt = data.ShippedAt
	case EventOrderDelivered:
		var data OrderDelivered
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		o.Status = StatusDelivered
		o.UpdatedAt = data.DeliveredAt
	case EventOrderCancelled:
		var data OrderCancelled
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		o.Status = StatusCancelled
		o.UpdatedAt = data.CancelledAt
	}
	o.Version = event.Version
	return nil
}

type Service struct {
	eventStore store.EventStoreInterface
}

func NewService(es store.EventStoreInterface) *Service {
	return &Service{eventStore: es}
}

// loadOrder loads an order by replaying events, using snapshot if available
func (s *Service) loadOrder(ctx context.Context, orderID string) (*Order, error) {
	order, found, err := aggregate.LoadAggregate(ctx, s.eventStore, orderID, func() *Order {
		return &Order{}
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// Load exposes the replayed aggregate
func (s *Service) Load(ctx context.Context, orderID string) (*Order, error) {
	return s.loadOrder(ctx, orderID)
}

func (s *Service) checkSnapshot(ctx context.Context, order *Order) {
	if err := aggregate.MaybeCreateSnapshot(ctx, s.eventStore, order, AggregateType); err != nil {
		log.Printf("[Order] Failed to create snapshot for order %s: %v", order.ID, err)
	}
}

// Place creates a new order. Item IDs are assigned here so later issue
// reports can reference a specific item.
func (s *Service) Place(ctx context.Context, userID string, items []OrderItem) (*Order, error) {
	return s.place(ctx, userID, items, "")
}

// PlaceReprint creates a zero-cost replacement order for a faulty one
func (s *Service) PlaceReprint(ctx context.Context, userID string, items []OrderItem, issueID string) (*Order, error) {
	return s.place(ctx, userID, items, issueID)
}

func (s *Service) place(ctx context.Context, userID string, items []OrderItem, reprintOfIssueID string) (*Order, error) {
	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}

	orderID := uuid.New().String()
	now := time.Now()

	var total int
	for idx := range items {
		if items[idx].ItemID == "" {
			items[idx].ItemID = uuid.New().String()
		}
		total += items[idx].UnitPrice * items[idx].Quantity
	}
	if reprintOfIssueID != "" {
		// Reprints are free for the customer
		total = 0
	}

	event := OrderPlaced{
		OrderID:          orderID,
		UserID:           userID,
		Items:            items,
		Total:            total,
		ReprintOfIssueID: reprintOfIssueID,
		PlacedAt:         now,
	}

	storedEvent, err := s.eventStore.Append(ctx, orderID, AggregateType, EventOrderPlaced, event)
	if err != nil {
		return nil, err
	}

	order := &Order{
		ID:               orderID,
		UserID:           userID,
		Items:            items,
		Total:            total,
		ReprintOfIssueID: reprintOfIssueID,
		Status:           StatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if storedEvent != nil {
		order.Version = storedEvent.Version
	}

	s.checkSnapshot(ctx, order)
	return order, nil
}

func (s *Service) Pay(ctx context.Context, orderID string) error {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return err
	}

	if !order.CanTransitionTo(StatusPaid) {
		return order.transitionError(StatusPaid)
	}

	event := OrderPaid{OrderID: orderID, PaidAt: time.Now()}
	storedEvent, err := s.eventStore.Append(ctx, orderID, AggregateType, EventOrderPaid, event)
	if err != nil {
		return err
	}

	order.Status = StatusPaid
	if storedEvent != nil {
		order.Version = storedEvent.Version
	}
	s.checkSnapshot(ctx, order)
	return nil
}

// StartProduction moves a paid order onto the print queue
func (s *Service) StartProduction(ctx context.Context, orderID string) error {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return err
	}

	if !order.CanTransitionTo(StatusInProduction) {
		return order.transitionError(StatusInProduction)
	}

	event := OrderProductionStarted{OrderID: orderID, StartedAt: time.Now()}
	storedEvent, err := s.eventStore.Append(ctx, orderID, AggregateType, EventOrderProductionStarted, event)
	if err != nil {
		return err
	}

	order.Status = StatusInProduction
	if storedEvent != nil {
		order.Version = storedEvent.Version
	}
	s.checkSnapshot(ctx, order)
	return nil
}

func (s *Service) Ship(ctx context.Context, orderID, carrier, trackingNumber string) error {
	if carrier == "" || trackingNumber == "" {
		return ErrMissingTracking
	}

	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return err
	}

	if !order.CanTransitionTo(StatusShipped) {
		return order.transitionError(StatusShipped)
	}

	event := OrderShipped{
		OrderID:        orderID,
		Carrier:        carrier,
		TrackingNumber: trackingNumber,
		ShippedAt:      time.Now(),
	}
	storedEvent, err := s.eventStore.Append(ctx, orderID, AggregateType, EventOrderShipped, event)
	if err != nil {
		return err
	}

	order.Status = StatusShipped
	if storedEvent != nil {
		order.Version = storedEvent.Version
	}
	s.checkSnapshot(ctx, order)
	return nil
}

func (s *Service) Deliver(ctx context.Context, orderID string) error {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return err
	}

	if !order.CanTransitionTo(StatusDelivered) {
		return order.transitionError(StatusDelivered)
	}

	event := OrderDelivered{OrderID: orderID, DeliveredAt: time.Now()}
	storedEvent, err := s.eventStore.Append(ctx, orderID, AggregateType, EventOrderDelivered, event)
	if err != nil {
		return err
	}

	order.Status = StatusDelivered
	if storedEvent != nil {
		order.Version = storedEvent.Version
	}
	s.checkSnapshot(ctx, order)
	return nil
}

func (s *Service) Cancel(ctx context.Context, orderID, reason string) error {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return err
	}

	if !order.CanTransitionTo(StatusCancelled) {
		return order.transitionError(StatusCancelled)
	}

	event := OrderCancelled{OrderID: orderID, Reason: reason, CancelledAt: time.Now()}
	storedEvent, err := s.eventStore.Append(ctx, orderID, AggregateType, EventOrderCancelled, event)
	if err != nil {
		return err
	}

	order.Status = StatusCancelled
	if storedEvent != nil {
		order.Version = storedEvent.Version
	}
	s.checkSnapshot(ctx, order)
	return nil
}
