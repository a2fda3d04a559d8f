package resolution

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/example/printshop/internal/domain/aggregate"
	"github.com/example/printshop/internal/infrastructure/store"
	"github.com/google/uuid"
)

const AggregateType = "Resolution"

const (
	TypeReprint = "reprint"
	TypeRefund  = "refund"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

var (
	ErrResolutionNotFound = errors.New("resolution not found")
	ErrInvalidType        = errors.New("resolution type must be reprint or refund")
	ErrInvalidRefund      = errors.New("refund amount must be positive")
	ErrNotPending         = errors.New("resolution is no longer pending")
)

// Resolution is an order-level goodwill record: a refund or reprint
// granted directly on an order, outside the issue workflow.
type Resolution struct {
	ID             string    `json:"id"`
	OrderID        string    `json:"order_id"`
	Type           string    `json:"type"`
	RefundAmount   int       `json:"refund_amount,omitempty"`
	ReprintOrderID string    `json:"reprint_order_id,omitempty"`
	Note           string    `json:"note,omitempty"`
	Status         Status    `json:"status"`
	CreatedBy      string    `json:"created_by"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	Version        int       `json:"version"`
}

// Aggregate interface implementation
func (r *Resolution) GetID() string    { return r.ID }
func (r *Resolution) GetVersion() int  { return r.Version }
func (r *Resolution) SetVersion(v int) { r.Version = v }

// ApplyEvent applies a single event to the resolution state (implements aggregate.Aggregate)
func (r *Resolution) ApplyEvent(event store.Event) error {
	switch event.EventType {
	case EventResolutionCreated:
		var data ResolutionCreated
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		r.ID = data.ResolutionID
		r.OrderID = data.OrderID
		r.Type = data.Type
		r.RefundAmount = data.RefundAmount
		r.ReprintOrderID = data.ReprintOrderID
		r.Note = data.Note
		r.Status = StatusPending
		r.CreatedBy = data.CreatedBy
		r.CreatedAt = data.CreatedAt
		r.UpdatedAt = data.CreatedAt
	case EventResolutionCompleted:
		var data ResolutionCompleted
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		r.Status = StatusCompleted
		r.UpdatedAt = data.CompletedAt
	case EventResolutionCancelled:
		var data ResolutionCancelled
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		r.Status = StatusCancelled
		r.UpdatedAt = data.CancelledAt
	}
	r.Version = event.Version
	return nil
}

type Service struct {
	eventStore store.EventStoreInterface
}

func NewService(es store.EventStoreInterface) *Service {
	return &Service{eventStore: es}
}

func (s *Service) loadResolution(ctx context.Context, resolutionID string) (*Resolution, error) {
	resolution, found, err := aggregate.LoadAggregate(ctx, s.eventStore, resolutionID, func() *Resolution {
		return &Resolution{}
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrResolutionNotFound
	}
	return resolution, nil
}

// Create records a reprint or refund granted on an order
func (s *Service) Create(ctx context.Context, orderID, resolutionType string, refundAmount int, reprintOrderID, note, createdBy string) (*Resolution, error) {
	switch resolutionType {
	case TypeReprint, TypeRefund:
	default:
		return nil, ErrInvalidType
	}
	if resolutionType == TypeRefund && refundAmount <= 0 {
		return nil, ErrInvalidRefund
	}

	resolutionID := uuid.New().String()
	now := time.Now()

	event := ResolutionCreated{
		ResolutionID:   resolutionID,
		OrderID:        orderID,
		Type:           resolutionType,
		RefundAmount:   refundAmount,
		ReprintOrderID: reprintOrderID,
		Note:           note,
		CreatedBy:      createdBy,
		CreatedAt:      now,
	}

	if _, err := s.eventStore.Append(ctx, resolutionID, AggregateType, EventResolutionCreated, event); err != nil {
		return nil, err
	}

	return &Resolution{
		ID:             resolutionID,
		OrderID:        orderID,
		Type:           resolutionType,
		RefundAmount:   refundAmount,
		ReprintOrderID: reprintOrderID,
		Note:           note,
		Status:         StatusPending,
		CreatedBy:      createdBy,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// Complete marks the refund as paid out or the reprint as delivered
func (s *Service) Complete(ctx context.Context, resolutionID string) error {
	resolution, err := s.loadResolution(ctx, resolutionID)
	if err != nil {
		return err
	}
	if resolution.Status != StatusPending {
		return fmt.Errorf("%w: status is %s", ErrNotPending, resolution.Status)
	}

	event := ResolutionCompleted{ResolutionID: resolutionID, CompletedAt: time.Now()}
	_, err = s.eventStore.Append(ctx, resolutionID, AggregateType, EventResolutionCompleted, event)
	return err
}

// Cancel withdraws a pending resolution
func (s *Service) Cancel(ctx context.Context, resolutionID, reason string) error {
	resolution, err := s.loadResolution(ctx, resolutionID)
	if err != nil {
		return err
	}
	if resolution.Status != StatusPending {
		return fmt.Errorf("%w: status is %s", ErrNotPending, resolution.Status)
	}

	event := ResolutionCancelled{ResolutionID: resolutionID, Reason: reason, CancelledAt: time.Now()}
	_, err = s.eventStore.Append(ctx, resolutionID, AggregateType, EventResolutionCancelled, event)
	return err
}
