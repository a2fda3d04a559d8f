package projection

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/example/printshop/internal/domain/cart"
	"github.com/example/printshop/internal/domain/design"
	"github.com/example/printshop/internal/domain/expense"
	"github.com/example/printshop/internal/domain/issue"
	"github.com/example/printshop/internal/domain/order"
	"github.com/example/printshop/internal/domain/product"
	"github.com/example/printshop/internal/domain/resolution"
	"github.com/example/printshop/internal/domain/stock"
	"github.com/example/printshop/internal/domain/user"
	"github.com/example/printshop/internal/infrastructure/cache"
	"github.com/example/printshop/internal/infrastructure/store"
	"github.com/example/printshop/internal/readmodel"
)

type Projector struct {
	readStore store.ReadStoreInterface
	cartCache *cache.CartCache // optional, nil disables invalidation
}

func NewProjector(readStore store.ReadStoreInterface) *Projector {
	return &Projector{readStore: readStore}
}

// NewProjectorWithCache invalidates the Redis cart cache on cart events
func NewProjectorWithCache(readStore store.ReadStoreInterface, cartCache *cache.CartCache) *Projector {
	return &Projector{readStore: readStore, cartCache: cartCache}
}

// HandleEvent consumes one event from the bus and applies it
func (p *Projector) HandleEvent(ctx context.Context, key, value []byte) error {
	var event store.Event
	if err := json.Unmarshal(value, &event); err != nil {
		return err
	}

	log.Printf("[Projector] Received event: %s (aggregate: %s)", event.EventType, event.AggregateType)
	return p.Apply(ctx, event)
}

// Apply routes an event to its aggregate projection
func (p *Projector) Apply(ctx context.Context, event store.Event) error {
	switch event.AggregateType {
	case product.AggregateType:
		return p.handleProductEvent(event)
	case design.AggregateType:
		return p.handleDesignEvent(event)
	case cart.AggregateType:
		return p.handleCartEvent(ctx, event)
	case order.AggregateType:
		return p.handleOrderEvent(event)
	case issue.AggregateType:
		return p.handleIssueEvent(event)
	case resolution.AggregateType:
		return p.handleResolutionEvent(event)
	case stock.AggregateType:
		return p.handleStockEvent(event)
	case expense.AggregateType:
		return p.handleExpenseEvent(event)
	case user.AggregateType:
		return p.handleUserEvent(event)
	}

	return nil
}

func (p *Projector) handleProductEvent(event store.Event) error {
	switch event.EventType {
	case product.EventProductCreated:
		var e product.ProductCreated
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		variants := make([]readmodel.VariantReadModel, len(e.Variants))
		for i, v := range e.Variants {
			variants[i] = readmodel.VariantReadModel{
				VariantID:  v.VariantID,
				Size:       v.Size,
				Color:      v.Color,
				PriceDelta: v.PriceDelta,
			}
		}
		p.readStore.Set("products", e.ProductID, &readmodel.ProductReadModel{
			ID:          e.ProductID,
			Name:        e.Name,
			Description: e.Description,
			Category:    e.Category,
			BasePrice:   e.BasePrice,
			PrintAreas:  e.PrintAreas,
			Variants:    variants,
			Active:      true,
			CreatedAt:   e.CreatedAt,
			UpdatedAt:   e.CreatedAt,
		})

	case product.EventProductUpdated:
		var e product.ProductUpdated
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.readStore.Update("products", e.ProductID, func(current any) any {
			prod := current.(*readmodel.ProductReadModel)
			prod.Name = e.Name
			prod.Description = e.Description
			prod.Category = e.Category
			prod.BasePrice = e.BasePrice
			prod.PrintAreas = e.PrintAreas
			prod.UpdatedAt = e.UpdatedAt
			return prod
		})

	case product.EventProductDeactivated:
		var e product.ProductDeactivated
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.readStore.Update("products", e.ProductID, func(current any) any {
			prod := current.(*readmodel.ProductReadModel)
			prod.Active = false
			prod.UpdatedAt = e.DeactivatedAt
			return prod
		})

	case product.EventVariantAdded:
		var e product.VariantAdded
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.readStore.Update("products", e.ProductID, func(current any) any {
			prod := current.(*readmodel.ProductReadModel)
			prod.Variants = append(prod.Variants, readmodel.VariantReadModel{
				VariantID:  e.Variant.VariantID,
				Size:       e.Variant.Size,
				Color:      e.Variant.Color,
				PriceDelta: e.Variant.PriceDelta,
			})
			prod.UpdatedAt = e.AddedAt
			return prod
		})

	case product.EventVariantRemoved:
		var e product.VariantRemoved
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.readStore.Update("products", e.ProductID, func(current any) any {
			prod := current.(*readmodel.ProductReadModel)
			kept := make([]readmodel.VariantReadModel, 0, len(prod.Variants))
			for _, v := range prod.Variants {
				if v.VariantID != e.VariantID {
					kept = append(kept, v)
				}
			}
			prod.Variants = kept
			prod.UpdatedAt = e.RemovedAt
			return prod
		})

	case product.EventProductImageUpdated:
		var e product.ProductImageUpdated
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.readStore.Update("products", e.ProductID, func(current any) any {
			prod := current.(*readmodel.ProductReadModel)
			prod.ImageURL = e.ImageURL
			prod.UpdatedAt = e.UpdatedAt
			return prod
		})
	}

	return nil
}

func (p *Projector) handleDesignEvent(event store.Event) error {
	switch event.EventType {
	case design.EventDesignUploaded:
		var e design.DesignUploaded
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.readStore.Set("designs", e.DesignID, &readmodel.DesignReadModel{
			ID:        e.DesignID,
			UserID:    e.UserID,
			Name:      e.Name,
			ImageURL:  e.ImageURL,
			CreatedAt: e.UploadedAt,
			UpdatedAt: e.UploadedAt,
		})

	case design.EventDesignRenamed:
		var e design.DesignRenamed
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.readStore.Update("designs", e.DesignID, func(current any) any {
			d := current.(*readmodel.DesignReadModel)
			d.Name = e.Name
			d.UpdatedAt = e.RenamedAt
			return d
		})

	case design.EventDesignDeleted:
		var e design.DesignDeleted
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.readStore.Delete("designs", e.DesignID)
	}

	return nil
}

func (p *Projector) handleCartEvent(ctx context.Context, event store.Event) error {
	switch event.EventType {
	case cart.EventLineAdded:
		var e cart.LineAdded
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}

		productName := ""
		if prod, ok, err := p.readStore.Get("products", e.ProductID); err == nil && ok {
			productName = prod.(*readmodel.ProductReadModel).Name
		}
		line := readmodel.CartLineReadModel{
			LineID:      e.LineID,
			ProductID:   e.ProductID,
			ProductName: productName,
			VariantID:   e.VariantID,
			DesignID:    e.DesignID,
			Quantity:    e.Quantity,
			UnitPrice:   e.UnitPrice,
		}

		if _, ok, err := p.readStore.Get("carts", e.CartID); err != nil || !ok {
			p.readStore.Set("carts", e.CartID, &readmodel.CartReadModel{
				ID:      e.CartID,
				UserID:  e.UserID,
				Lines:   []readmodel.CartLineReadModel{line},
				Total:   e.UnitPrice * e.Quantity,
				Version: event.Version,
			})
		} else {
			p.readStore.Update("carts", e.CartID, func(current any) any {
				c := current.(*readmodel.CartReadModel)
				c.Lines = append(c.Lines, line)
				c.Total = calculateCartTotal(c.Lines)
				c.Version = event.Version
				return c
			})
		}
		p.invalidateCart(ctx, e.CartID)

	case cart.EventLineQuantityChanged:
		var e cart.LineQuantityChanged
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.readStore.Update("carts", e.CartID, func(current any) any {
			c := current.(*readmodel.CartReadModel)
			for i := range c.Lines {
				if c.Lines[i].LineID == e.LineID {
					c.Lines[i].Quantity = e.Quantity
					break
				}
			}
			c.Total = calculateCartTotal(c.Lines)
			c.Version = event.Version
			return c
		})
		p.invalidateCart(ctx, e.CartID)

	case cart.EventLineRemoved:
		var e cart.LineRemoved
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.readStore.Update("carts", e.CartID, func(current any) any {
			c := current.(*readmodel.CartReadModel)
			kept := make([]readmodel.CartLineReadModel, 0, len(c.Lines))
			for _, line := range c.Lines {
				if line.LineID != e.LineID {
					kept = append(kept, line)
				}
			}
			c.Lines = kept
			c.Total = calculateCartTotal(c.Lines)
			c.Version = event.Version
			return c
		})
		p.invalidateCart(ctx, e.CartID)

	case cart.EventCartCleared:
		var e cart.CartCleared
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.readStore.Set("carts", e.CartID, &readmodel.CartReadModel{
			ID:      e.CartID,
			UserID:  e.UserID,
			Lines:   []readmodel.CartLineReadModel{},
			Total:   0,
			Version: event.Version,
		})
		p.invalidateCart(ctx, e.CartID)
	}

	return nil
}

func (p *Projector) invalidateCart(ctx context.Context, cartID string) {
	if p.cartCache == nil {
		return
	}
	if err := p.cartCache.Invalidate(ctx, cartID); err != nil {
		log.Printf("[Projector] Failed to invalidate cart cache for %s: %v", cartID, err)
	}
}

func calculateCartTotal(lines []readmodel.CartLineReadModel) int {
	total := 0
	for _, line := range lines {
		total += line.UnitPrice * line.Quantity
	}
	return total
}

func (p *Projector) handleOrderEvent(event store.Event) error {
	switch event.EventType {
	case order.EventOrderPlaced:
		var e order.OrderPlaced
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		items := make([]readmodel.OrderItemReadModel, len(e.Items))
		for i, item := range e.Items {
			items[i] = readmodel.OrderItemReadModel{
				ItemID:    item.ItemID,
				ProductID: item.ProductID,
				VariantID: item.VariantID,
				DesignID:  item.DesignID,
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice,
			}
		}
		p.readStore.Set("orders", e.OrderID, &readmodel.OrderReadModel{
			ID:               e.OrderID,
			UserID:           e.UserID,
			Items:            items,
			Total:            e.Total,
			Status:           string(order.StatusPending),
			ReprintOfIssueID: e.ReprintOfIssueID,
			CreatedAt:        e.PlacedAt,
			UpdatedAt:        e.PlacedAt,
		})

	case order.EventOrderPaid:
		var e order.OrderPaid
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.updateOrderStatus(e.OrderID, order.StatusPaid, e.PaidAt)

	case order.EventOrderProductionStarted:
		var e order.OrderProductionStarted
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.updateOrderStatus(e.OrderID, order.StatusInProduction, e.StartedAt)

	case order.EventOrderShipped:
		var e order.OrderShipped
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.readStore.Update("orders", e.OrderID, func(current any) any {
			o := current.(*readmodel.OrderReadModel)
			o.Status = string(order.StatusShipped)
			o.Carrier = e.Carrier
			o.TrackingNumber = e.TrackingNumber
			o.UpdatedAt = e.ShippedAt
			return o
		})

	case order.EventOrderDelivered:
		var e order.OrderDelivered
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.updateOrderStatus(e.OrderID, order.StatusDelivered, e.DeliveredAt)

	case order.EventOrderCancelled:
		var e order.OrderCancelled
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.updateOrderStatus(e.OrderID, order.StatusCancelled, e.CancelledAt)
	}

	return nil
}

func (p *Projector) updateOrderStatus(orderID string, status order.Status, at time.Time) {
	p.readStore.Update("orders", orderID, func(current any) any {
		o := current.(*readmodel.OrderReadModel)
		o.Status = string(status)
		o.UpdatedAt = at
		return o
	})
}

func (p *Projector) handleIssueEvent(event store.Event) error {
	switch event.EventType {
	case issue.EventIssueSubmitted:
		var e issue.IssueSubmitted
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.readStore.Set("issues", e.IssueID, &readmodel.IssueReadModel{
			ID:           e.IssueID,
			OrderID:      e.OrderID,
			OrderItemID:  e.OrderItemID,
			UserID:       e.UserID,
			Reason:       e.Reason,
			Description:  e.Description,
			PhotoURLs:    e.PhotoURLs,
			Status:       string(issue.StatusSubmitted),
			CarrierFault: string(issue.FaultUnknown),
			ClaimStatus:  string(issue.ClaimNotFiled),
			CreatedAt:    e.SubmittedAt,
			UpdatedAt:    e.SubmittedAt,
		})

	case issue.EventIssueQueuedForReview:
		var e issue.IssueQueuedForReview
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.readStore.Update("issues", e.IssueID, func(current any) any {
			i := current.(*readmodel.IssueReadModel)
			i.Status = string(issue.StatusAwaitingReview)
			i.InfoRequestedAt = nil
			i.UpdatedAt = e.QueuedAt
			return i
		})

	case issue.EventInfoRequested:
		var e issue.InfoRequested
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.readStore.Update("issues", e.IssueID, func(current any) any {
			i := current.(*readmodel.IssueReadModel)
			i.Status = string(issue.StatusInfoRequested)
			requestedAt := e.RequestedAt
			i.InfoRequestedAt = &requestedAt
			i.UpdatedAt = e.RequestedAt
			return i
		})

	case issue.EventIssueApproved:
		var e issue.IssueApproved
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.readStore.Update("issues", e.IssueID, func(current any) any {
			i := current.(*readmodel.IssueReadModel)
			if e.ResolvedType == "reprint" {
				i.Status = string(issue.StatusApprovedReprint)
			} else {
				i.Status = string(issue.StatusApprovedRefund)
			}
			i.ResolvedType = e.ResolvedType
			i.ReprintOrderID = e.ReprintOrderID
			i.RefundAmount = e.RefundAmount
			i.UpdatedAt = e.ApprovedAt
			return i
		})

	case issue.EventProcessingStarted:
		var e issue.ProcessingStarted
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.updateIssueStatus(e.IssueID, issue.StatusProcessing, e.StartedAt)

	case issue.EventIssueCompleted:
		var e issue.IssueCompleted
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.updateIssueStatus(e.IssueID, issue.StatusCompleted, e.CompletedAt)

	case issue.EventIssueRejected:
		var e issue.IssueRejected
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.updateIssueStatus(e.IssueID, issue.StatusRejected, e.RejectedAt)

	case issue.EventIssueClosed:
		var e issue.IssueClosed
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.updateIssueStatus(e.IssueID, issue.StatusClosed, e.ClosedAt)

	case issue.EventIssueReopened:
		var e issue.IssueReopened
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.readStore.Update("issues", e.IssueID, func(current any) any {
			i := current.(*readmodel.IssueReadModel)
			i.Status = string(issue.StatusAwaitingReview)
			i.IsConcluded = false
			i.ConcludedBy = ""
			i.ConcludedReason = ""
			i.ConcludedAt = nil
			i.UpdatedAt = e.ReopenedAt
			return i
		})

	case issue.EventIssueConcluded:
		var e issue.IssueConcluded
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.readStore.Update("issues", e.IssueID, func(current any) any {
			i := current.(*readmodel.IssueReadModel)
			i.IsConcluded = true
			i.ConcludedBy = e.ConcludedBy
			i.ConcludedReason = e.Reason
			concludedAt := e.ConcludedAt
			i.ConcludedAt = &concludedAt
			i.UpdatedAt = e.ConcludedAt
			return i
		})

	case issue.EventCarrierFaultClassified:
		var e issue.CarrierFaultClassified
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.readStore.Update("issues", e.IssueID, func(current any) any {
			i := current.(*readmodel.IssueReadModel)
			i.CarrierFault = e.Fault
			i.UpdatedAt = e.ClassifiedAt
			return i
		})

	case issue.EventClaimFiled:
		var e issue.ClaimFiled
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.readStore.Update("issues", e.IssueID, func(current any) any {
			i := current.(*readmodel.IssueReadModel)
			i.ClaimStatus = string(issue.ClaimFiledStatus)
			i.ClaimReference = e.Reference
			i.UpdatedAt = e.FiledAt
			return i
		})

	case issue.EventClaimStatusChanged:
		var e issue.ClaimStatusChanged
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.readStore.Update("issues", e.IssueID, func(current any) any {
			i := current.(*readmodel.IssueReadModel)
			i.ClaimStatus = e.Status
			if issue.ClaimStatus(e.Status) == issue.ClaimPaid {
				i.ClaimPayoutAmount = e.PayoutAmount
			}
			i.UpdatedAt = e.ChangedAt
			return i
		})

	case issue.EventMessagePosted:
		var e issue.MessagePosted
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.readStore.Set("issue_messages", e.MessageID, &readmodel.IssueMessageReadModel{
			ID:             e.MessageID,
			IssueID:        e.IssueID,
			Sender:         e.Sender,
			SenderID:       e.SenderID,
			Body:           e.Body,
			ImageURLs:      e.ImageURLs,
			ReadByAdmin:    e.Sender == issue.SenderAdmin,
			ReadByCustomer: e.Sender == issue.SenderCustomer,
			PostedAt:       e.PostedAt,
		})
		p.readStore.Update("issues", e.IssueID, func(current any) any {
			i := current.(*readmodel.IssueReadModel)
			i.MessageCount++
			if e.Sender == issue.SenderCustomer {
				i.UnreadByAdmin++
			} else {
				i.UnreadByCustomer++
			}
			i.UpdatedAt = e.PostedAt
			return i
		})

	case issue.EventMessagesRead:
		var e issue.MessagesRead
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.markMessagesRead(e.IssueID, e.Side)
		p.readStore.Update("issues", e.IssueID, func(current any) any {
			i := current.(*readmodel.IssueReadModel)
			if e.Side == issue.SenderAdmin {
				i.UnreadByAdmin = 0
			} else {
				i.UnreadByCustomer = 0
			}
			i.UpdatedAt = e.ReadAt
			return i
		})
	}

	return nil
}

func (p *Projector) updateIssueStatus(issueID string, status issue.Status, at time.Time) {
	p.readStore.Update("issues", issueID, func(current any) any {
		i := current.(*readmodel.IssueReadModel)
		i.Status = string(status)
		i.UpdatedAt = at
		return i
	})
}

// markMessagesRead flips the read flag on every message of the thread.
// The Postgres store can do it in one statement; other stores walk the
// collection.
func (p *Projector) markMessagesRead(issueID, side string) {
	if pgStore, ok := p.readStore.(*store.PostgresReadStore); ok {
		pgStore.MarkIssueMessagesRead(issueID, side)
		return
	}

	items, err := p.readStore.GetAll("issue_messages")
	if err != nil {
		log.Printf("[Projector] Failed to list messages for issue %s: %v", issueID, err)
		return
	}
	for _, item := range items {
		m := item.(*readmodel.IssueMessageReadModel)
		if m.IssueID != issueID {
			continue
		}
		p.readStore.Update("issue_messages", m.ID, func(current any) any {
			msg := current.(*readmodel.IssueMessageReadModel)
			if side == issue.SenderAdmin {
				msg.ReadByAdmin = true
			} else {
				msg.ReadByCustomer = true
			}
			return msg
		})
	}
}

func (p *Projector) handleResolutionEvent(event store.Event) error {
	switch event.EventType {
	case resolution.EventResolutionCreated:
		var e resolution.ResolutionCreated
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.readStore.Set("resolutions", e.ResolutionID, &readmodel.ResolutionReadModel{
			ID:             e.ResolutionID,
			OrderID:        e.OrderID,
			Type:           e.Type,
			RefundAmount:   e.RefundAmount,
			ReprintOrderID: e.ReprintOrderID,
			Note:           e.Note,
			Status:         string(resolution.StatusPending),
			CreatedBy:      e.CreatedBy,
			CreatedAt:      e.CreatedAt,
			UpdatedAt:      e.CreatedAt,
		})

	case resolution.EventResolutionCompleted:
		var e resolution.ResolutionCompleted
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.readStore.Update("resolutions", e.ResolutionID, func(current any) any {
			r := current.(*readmodel.ResolutionReadModel)
			r.Status = string(resolution.StatusCompleted)
			r.UpdatedAt = e.CompletedAt
			return r
		})

	case resolution.EventResolutionCancelled:
		var e resolution.ResolutionCancelled
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.readStore.Update("resolutions", e.ResolutionID, func(current any) any {
			r := current.(*readmodel.ResolutionReadModel)
			r.Status = string(resolution.StatusCancelled)
			r.UpdatedAt = e.CancelledAt
			return r
		})
	}

	return nil
}

func (p *Projector) handleStockEvent(event store.Event) error {
	apply := func(productID, variantID string, delta func(*readmodel.StockReadModel)) {
		stockID := stock.GetStockID(productID, variantID)
		existing, ok, err := p.readStore.Get("stock", stockID)
		if err != nil {
			log.Printf("[Projector] Failed to read stock %s: %v", stockID, err)
			return
		}
		var record *readmodel.StockReadModel
		if ok {
			record = existing.(*readmodel.StockReadModel)
		} else {
			record = &readmodel.StockReadModel{
				ID:        stockID,
				ProductID: productID,
				VariantID: variantID,
			}
		}
		delta(record)
		record.Available = record.TotalBlanks - record.ReservedBlanks
		p.readStore.Set("stock", stockID, record)
	}

	switch event.EventType {
	case stock.EventBlanksReceived:
		var e stock.BlanksReceived
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		apply(e.ProductID, e.VariantID, func(r *readmodel.StockReadModel) {
			r.TotalBlanks += e.Quantity
		})

	case stock.EventBlanksReserved:
		var e stock.BlanksReserved
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		apply(e.ProductID, e.VariantID, func(r *readmodel.StockReadModel) {
			r.ReservedBlanks += e.Quantity
		})

	case stock.EventBlanksReleased:
		var e stock.BlanksReleased
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		apply(e.ProductID, e.VariantID, func(r *readmodel.StockReadModel) {
			r.ReservedBlanks -= e.Quantity
		})

	case stock.EventBlanksConsumed:
		var e stock.BlanksConsumed
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		apply(e.ProductID, e.VariantID, func(r *readmodel.StockReadModel) {
			r.TotalBlanks -= e.Quantity
			r.ReservedBlanks -= e.Quantity
		})
	}

	return nil
}

func (p *Projector) handleExpenseEvent(event store.Event) error {
	switch event.EventType {
	case expense.EventExpenseRecorded:
		var e expense.ExpenseRecorded
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.readStore.Set("expenses", e.ExpenseID, &readmodel.ExpenseReadModel{
			ID:         e.ExpenseID,
			Category:   e.Category,
			Supplier:   e.Supplier,
			Amount:     e.Amount,
			Currency:   e.Currency,
			IncurredOn: e.IncurredOn,
			Note:       e.Note,
			CreatedAt:  e.RecordedAt,
			UpdatedAt:  e.RecordedAt,
		})

	case expense.EventExpenseUpdated:
		var e expense.ExpenseUpdated
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.readStore.Update("expenses", e.ExpenseID, func(current any) any {
			exp := current.(*readmodel.ExpenseReadModel)
			exp.Category = e.Category
			exp.Supplier = e.Supplier
			exp.Amount = e.Amount
			exp.Currency = e.Currency
			exp.IncurredOn = e.IncurredOn
			exp.Note = e.Note
			exp.UpdatedAt = e.UpdatedAt
			return exp
		})

	case expense.EventExpenseDeleted:
		var e expense.ExpenseDeleted
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.readStore.Delete("expenses", e.ExpenseID)
	}

	return nil
}

func (p *Projector) handleUserEvent(event store.Event) error {
	switch event.EventType {
	case user.EventUserCreated:
		var e user.UserCreated
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.readStore.Set("users", e.UserID, &readmodel.UserReadModel{
			ID:           e.UserID,
			Email:        e.Email,
			PasswordHash: e.PasswordHash,
			Name:         e.Name,
			Role:         e.Role,
			IsActive:     true,
			CreatedAt:    e.CreatedAt,
			UpdatedAt:    e.CreatedAt,
		})

	case user.EventUserUpdated:
		var e user.UserUpdated
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.readStore.Update("users", e.UserID, func(current any) any {
			u := current.(*readmodel.UserReadModel)
			u.Name = e.Name
			u.UpdatedAt = e.UpdatedAt
			return u
		})

	case user.EventUserPasswordChanged:
		var e user.UserPasswordChanged
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.readStore.Update("users", e.UserID, func(current any) any {
			u := current.(*readmodel.UserReadModel)
			u.PasswordHash = e.PasswordHash
			u.UpdatedAt = e.ChangedAt
			return u
		})

	case user.EventUserDeactivated:
		var e user.UserDeactivated
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.readStore.Update("users", e.UserID, func(current any) any {
			u := current.(*readmodel.UserReadModel)
			u.IsActive = false
			u.UpdatedAt = e.DeactivatedAt
			return u
		})

	case user.EventUserActivated:
		var e user.UserActivated
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.readStore.Update("users", e.UserID, func(current any) any {
			u := current.(*readmodel.UserReadModel)
			u.IsActive = true
			u.UpdatedAt = e.ActivatedAt
			return u
		})
	}

	return nil
}
