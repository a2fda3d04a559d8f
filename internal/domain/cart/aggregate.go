package cart

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

const AggregateType = "Cart"

var (
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrInvalidProduct  = errors.New("product_id is required")
	ErrLineNotFound    = errors.New("cart line not found")
	ErrVersionConflict = errors.New("cart was modified since the client's base version")
)

// Line is one entry of a cart. LineID is server-assigned; clients refer
// to lines by it once the server has acknowledged them.
type Line struct {
	LineID    string `json:"line_id"`
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id"`
	DesignID  string `json:"design_id,omitempty"`
	Quantity  int    `json:"quantity"`
	UnitPrice int    `json:"unit_price"`
}

type Cart struct {
	ID      string `json:"id"`
	UserID  string `json:"user_id"`
	Lines   []Line `json:"lines"`
	Version int    `json:"version"`
}

// Aggregate interface implementation
func (c *Cart) GetID() string    { return c.ID }
func (c *Cart) GetVersion() int  { return c.Version }
func (c *Cart) SetVersion(v int) { c.Version = v }

// Total returns the cart total in cents
func (c *Cart) Total() int {
	total := 0
	for _, line := range c.Lines {
		total += line.UnitPrice * line.Quantity
	}
	return total
}

func (c *Cart) findLine(lineID string) int {
	for idx, line := range c.Lines {
		if line.LineID == lineID {
			return idx
		}
	}
	return -1
}

// ApplyEvent applies a single event to the cart state (implements aggregate.Aggregate)
func (c *Cart) ApplyEvent(event store.Event) error {
	switch event.EventType {
	case EventLineAdded:
		var data LineAdded
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		c.ID = data.CartID
		c.UserID = data.UserID
		c.Lines = append(c.Lines, Line{
			LineID:    data.LineID,
			ProductID: data.ProductID,
			VariantID: data.VariantID,
			DesignID:  data.DesignID,
			Quantity:  data.Quantity,
			UnitPrice: data.UnitPrice,
		})
	case EventLineQuantityChanged:
		var data LineQuantityChanged
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		if idx := c.findLine(data.LineID); idx >= 0 {
			c.Lines[idx].Quantity = data.Quantity
		}
	case EventLineRemoved:
		var data LineRemoved
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		if idx := c.findLine(data.LineID); idx >= 0 {
			c.Lines = append(c.Lines[:idx], c.Lines[idx+1:]...)
		}
	case EventCartCleared:
		var data CartCleared
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		c.Lines = nil
	}
	c.Version = event.Version
	return nil
}

type Service struct {
	eventStore store.EventStoreInterface
}

func NewService(es store.EventStoreInterface) *Service {
	return &Service{eventStore: es}
}

// GetCartID returns the cart ID for a user (one cart per user)
func GetCartID(userID string) string {
	return "cart-" + userID
}

// loadCart replays the user's cart. A cart with no events is an empty
// cart, not an error.
func (s *Service) loadCart(ctx context.Context, userID string) (*Cart, error) {
	cartID := GetCartID(userID)
	cart, _, err := aggregate.LoadAggregate(ctx, s.eventStore, cartID, func() *Cart {
		return &Cart{}
	})
	if err != nil {
		return nil, err
	}
	cart.ID = cartID
	cart.UserID = userID
	return cart, nil
}

// Load exposes the replayed cart
func (s *Service) Load(ctx context.Context, userID string) (*Cart, error) {
	return s.loadCart(ctx, userID)
}

func (s *Service) checkSnapshot(ctx context.Context, cart *Cart) {
	if err := aggregate.MaybeCreateSnapshot(ctx, s.eventStore, cart, AggregateType); err != nil {
		log.Printf("[Cart] Failed to create snapshot for cart %s: %v", cart.ID, err)
	}
}

// AddLine adds a new line and returns it with its server-assigned ID
func (s *Service) AddLine(ctx context.Context, userID, productID, variantID, designID string, quantity, unitPrice int) (*Line, error) {
	if productID == "" {
		return nil, ErrInvalidProduct
	}
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	cart, err := s.loadCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	line := Line{
		LineID:    uuid.New().String(),
		ProductID: productID,
		VariantID: variantID,
		DesignID:  designID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
	}

	event := LineAdded{
		CartID:    cart.ID,
		UserID:    userID,
		LineID:    line.LineID,
		ProductID: productID,
		VariantID: variantID,
		DesignID:  designID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		AddedAt:   time.Now(),
	}
	storedEvent, err := s.eventStore.Append(ctx, cart.ID, AggregateType, EventLineAdded, event)
	if err != nil {
		return nil, err
	}

	cart.Lines = append(cart.Lines, line)
	if storedEvent != nil {
		cart.Version = storedEvent.Version
	}
	s.checkSnapshot(ctx, cart)
	return &line, nil
}

// ChangeQuantity sets a line's quantity
func (s *Service) ChangeQuantity(ctx context.Context, userID, lineID string, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	cart, err := s.loadCart(ctx, userID)
	if err != nil {
		return err
	}
	if cart.findLine(lineID) < 0 {
		return ErrLineNotFound
	}

	event := LineQuantityChanged{
		CartID:    cart.ID,
		LineID:    lineID,
		Quantity:  quantity,
		ChangedAt: time.Now(),
	}
	storedEvent, err := s.eventStore.Append(ctx, cart.ID, AggregateType, EventLineQuantityChanged, event)
	if err != nil {
		return err
	}

	if storedEvent != nil {
		cart.Version = storedEvent.Version
	}
	s.checkSnapshot(ctx, cart)
	return nil
}

// RemoveLine removes a line from the cart
func (s *Service) RemoveLine(ctx context.Context, userID, lineID string) error {
	cart, err := s.loadCart(ctx, userID)
	if err != nil {
		return err
	}
	if cart.findLine(lineID) < 0 {
		return ErrLineNotFound
	}

	event := LineRemoved{
		CartID:    cart.ID,
		LineID:    lineID,
		RemovedAt: time.Now(),
	}
	storedEvent, err := s.eventStore.Append(ctx, cart.ID, AggregateType, EventLineRemoved, event)
	if err != nil {
		return err
	}

	if storedEvent != nil {
		cart.Version = storedEvent.Version
	}
	s.checkSnapshot(ctx, cart)
	return nil
}

// Clear empties the cart
func (s *Service) Clear(ctx context.Context, userID string) error {
	cart, err := s.loadCart(ctx, userID)
	if err != nil {
		return err
	}

	event := CartCleared{
		CartID:    cart.ID,
		UserID:    userID,
		ClearedAt: time.Now(),
	}
	storedEvent, err := s.eventStore.Append(ctx, cart.ID, AggregateType, EventCartCleared, event)
	if err != nil {
		return err
	}

	if storedEvent != nil {
		cart.Version = storedEvent.Version
	}
	s.checkSnapshot(ctx, cart)
	return nil
}

// DesiredLine is one line of the client's desired cart state. New lines
// carry a ClientID in place of a LineID; the server assigns the real ID
// and reports the mapping back.
type DesiredLine struct {
	ClientID  string `json:"client_id,omitempty"`
	LineID    string `json:"line_id,omitempty"`
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id"`
	DesignID  string `json:"design_id,omitempty"`
	Quantity  int    `json:"quantity"`
	UnitPrice int    `json:"unit_price"`
}

// SyncResult is the outcome of a successful sync
type SyncResult struct {
	Cart  *Cart             `json:"cart"`
	IDMap map[string]string `json:"id_map"` // client temp ID -> server line ID
}

// Sync reconciles the client's desired cart state against the server
// cart. The client sends the version it last saw; if the server cart
// has moved past it the sync is rejected and the client must refetch.
func (s *Service) Sync(ctx context.Context, userID string, baseVersion int, desired []DesiredLine) (*SyncResult, error) {
	cart, err := s.loadCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	if cart.Version != baseVersion {
		return nil, fmt.Errorf("%w: base %d, current %d", ErrVersionConflict, baseVersion, cart.Version)
	}

	for _, d := range desired {
		if d.ProductID == "" {
			return nil, ErrInvalidProduct
		}
		if d.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		if d.LineID != "" && cart.findLine(d.LineID) < 0 {
			return nil, fmt.Errorf("%w: %s", ErrLineNotFound, d.LineID)
		}
	}

	now := time.Now()
	idMap := make(map[string]string)
	desiredByLineID := make(map[string]DesiredLine)

	for _, d := range desired {
		if d.LineID != "" {
			desiredByLineID[d.LineID] = d
		}
	}

	// Remove lines the client dropped
	for _, line := range append([]Line(nil), cart.Lines...) {
		if _, keep := desiredByLineID[line.LineID]; keep {
			continue
		}
		event := LineRemoved{CartID: cart.ID, LineID: line.LineID, RemovedAt: now}
		storedEvent, err := s.eventStore.Append(ctx, cart.ID, AggregateType, EventLineRemoved, event)
		if err != nil {
			return nil, err
		}
		idx := cart.findLine(line.LineID)
		cart.Lines = append(cart.Lines[:idx], cart.Lines[idx+1:]...)
		if storedEvent != nil {
			cart.Version = storedEvent.Version
		}
	}

	for _, d := range desired {
		if d.LineID != "" {
			// Existing line: apply quantity changes only
			idx := cart.findLine(d.LineID)
			if idx < 0 || cart.Lines[idx].Quantity == d.Quantity {
				continue
			}
			event := LineQuantityChanged{CartID: cart.ID, LineID: d.LineID, Quantity: d.Quantity, ChangedAt: now}
			storedEvent, err := s.eventStore.Append(ctx, cart.ID, AggregateType, EventLineQuantityChanged, event)
			if err != nil {
				return nil, err
			}
			cart.Lines[idx].Quantity = d.Quantity
			if storedEvent != nil {
				cart.Version = storedEvent.Version
			}
			continue
		}

		// New line: assign a server ID and record the mapping
		lineID := uuid.New().String()
		event := LineAdded{
			CartID:    cart.ID,
			UserID:    userID,
			LineID:    lineID,
			ProductID: d.ProductID,
			VariantID: d.VariantID,
			DesignID:  d.DesignID,
			Quantity:  d.Quantity,
			UnitPrice: d.UnitPrice,
			AddedAt:   now,
		}
		storedEvent, err := s.eventStore.Append(ctx, cart.ID, AggregateType, EventLineAdded, event)
		if err != nil {
			return nil, err
		}
		cart.Lines = append(cart.Lines, Line{
			LineID:    lineID,
			ProductID: d.ProductID,
			VariantID: d.VariantID,
			DesignID:  d.DesignID,
			Quantity:  d.Quantity,
			UnitPrice: d.UnitPrice,
		})
		if storedEvent != nil {
			cart.Version = storedEvent.Version
		}
		if d.ClientID != "" {
			idMap[d.ClientID] = lineID
		}
	}

	s.checkSnapshot(ctx, cart)
	return &SyncResult{Cart: cart, IDMap: idMap}, nil
}
