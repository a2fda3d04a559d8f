package command

import (
	"context"
	"testing"
	"time"

	"github.com/example/printshop/internal/domain/cart"
	"github.com/example/printshop/internal/domain/design"
	"github.com/example/printshop/internal/domain/expense"
	"github.com/example/printshop/internal/domain/issue"
	"github.com/example/printshop/internal/domain/order"
	"github.com/example/printshop/internal/domain/product"
	"github.com/example/printshop/internal/domain/resolution"
	"github.com/example/printshop/internal/domain/stock"
	"github.com/example/printshop/internal/infrastructure/store/mocks"
	"github.com/example/printshop/internal/readmodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler() (*Handler, *mocks.MockEventStore, *mocks.MockReadStore) {
	eventStore := mocks.NewMockEventStore()
	readStore := mocks.NewMockReadStore()

	handler := NewHandler(
		product.NewService(eventStore),
		design.NewService(eventStore),
		cart.NewService(eventStore),
		order.NewService(eventStore),
		issue.NewService(eventStore),
		resolution.NewService(eventStore),
		stock.NewService(eventStore),
		expense.NewService(eventStore),
		readStore,
	)
	return handler, eventStore, readStore
}

func seedProductModel(readStore *mocks.MockReadStore) {
	readStore.SetData("products", "prod-1", &readmodel.ProductReadModel{
		ID:        "prod-1",
		Name:      "Classic Tee",
		BasePrice: 1500,
		Variants: []readmodel.VariantReadModel{
			{VariantID: "var-m-black", Size: "M", Color: "black", PriceDelta: 0},
			{VariantID: "var-xl-black", Size: "XL", Color: "black", PriceDelta: 200},
		},
		Active: true,
	})
}

func seedCartLine(eventStore *mocks.MockEventStore, userID string) {
	cartID := cart.GetCartID(userID)
	eventStore.AddEvent(cartID, cart.AggregateType, cart.EventLineAdded, cart.LineAdded{
		CartID:    cartID,
		UserID:    userID,
		LineID:    "line-1",
		ProductID: "prod-1",
		VariantID: "var-m-black",
		Quantity:  2,
		UnitPrice: 1500,
		AddedAt:   time.Now(),
	})
}

func seedStock(eventStore *mocks.MockEventStore, productID, variantID string, quantity int) {
	stockID := stock.GetStockID(productID, variantID)
	eventStore.AddEvent(stockID, stock.AggregateType, stock.EventBlanksReceived, stock.BlanksReceived{
		ProductID:  productID,
		VariantID:  variantID,
		Quantity:   quantity,
		ReceivedAt: time.Now(),
	})
}

// ============================================
// Catalog Tests
// ============================================

func TestHandler_CreateProduct_Success(t *testing.T) {
	handler, eventStore, _ := newTestHandler()

	p, err := handler.CreateProduct(context.Background(), CreateProduct{
		Name:      "Classic Tee",
		Category:  "t-shirts",
		BasePrice: 1500,
		Variants:  []product.Variant{{Size: "M", Color: "black"}},
	})

	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Len(t, eventStore.AppendCalls, 1)
	assert.Equal(t, product.EventProductCreated, eventStore.AppendCalls[0].EventType)
}

func TestHandler_CreateProduct_InvalidName(t *testing.T) {
	handler, _, _ := newTestHandler()

	p, err := handler.CreateProduct(context.Background(), CreateProduct{BasePrice: 1500})

	assert.ErrorIs(t, err, product.ErrInvalidName)
	assert.Nil(t, p)
}

func TestHandler_RenameDesign_NotOwner(t *testing.T) {
	handler, _, readStore := newTestHandler()

	readStore.SetData("designs", "design-1", &readmodel.DesignReadModel{
		ID:     "design-1",
		UserID: "user-1",
	})

	err := handler.RenameDesign(context.Background(), RenameDesign{
		DesignID: "design-1",
		UserID:   "user-2",
		Name:     "New Name",
	})

	assert.ErrorIs(t, err, ErrNotDesignOwner)
}

func TestHandler_DeleteDesign_NotFound(t *testing.T) {
	handler, _, _ := newTestHandler()

	err := handler.DeleteDesign(context.Background(), DeleteDesign{DesignID: "missing", UserID: "user-1"})

	assert.ErrorIs(t, err, design.ErrDesignNotFound)
}

// ============================================
// Cart Tests
// ============================================

func TestHandler_AddCartLine_Success(t *testing.T) {
	handler, eventStore, readStore := newTestHandler()
	seedProductModel(readStore)

	line, err := handler.AddCartLine(context.Background(), AddCartLine{
		UserID:    "user-1",
		ProductID: "prod-1",
		VariantID: "var-xl-black",
		Quantity:  2,
	})

	require.NoError(t, err)
	assert.NotEmpty(t, line.LineID)
	// Base price plus XL delta
	assert.Equal(t, 1700, line.UnitPrice)
	assert.Equal(t, cart.EventLineAdded, eventStore.AppendCalls[0].EventType)
}

func TestHandler_AddCartLine_ProductNotFound(t *testing.T) {
	handler, _, _ := newTestHandler()

	_, err := handler.AddCartLine(context.Background(), AddCartLine{
		UserID:    "user-1",
		ProductID: "missing",
		Quantity:  1,
	})

	assert.ErrorIs(t, err, product.ErrProductNotFound)
}

func TestHandler_AddCartLine_VariantNotFound(t *testing.T) {
	handler, _, readStore := newTestHandler()
	seedProductModel(readStore)

	_, err := handler.AddCartLine(context.Background(), AddCartLine{
		UserID:    "user-1",
		ProductID: "prod-1",
		VariantID: "var-missing",
		Quantity:  1,
	})

	assert.ErrorIs(t, err, ErrVariantNotFound)
}

func TestHandler_AddCartLine_InactiveProduct(t *testing.T) {
	handler, _, readStore := newTestHandler()

	readStore.SetData("products", "prod-retired", &readmodel.ProductReadModel{
		ID:        "prod-retired",
		BasePrice: 1500,
		Active:    false,
	})

	_, err := handler.AddCartLine(context.Background(), AddCartLine{
		UserID:    "user-1",
		ProductID: "prod-retired",
		Quantity:  1,
	})

	assert.ErrorIs(t, err, ErrProductInactive)
}

func TestHandler_SyncCart_PricesResolvedServerSide(t *testing.T) {
	handler, _, readStore := newTestHandler()
	seedProductModel(readStore)

	result, err := handler.SyncCart(context.Background(), SyncCart{
		UserID:      "user-1",
		BaseVersion: 0,
		Lines: []cart.DesiredLine{
			// Client-supplied price is ignored
			{ClientID: "tmp-1", ProductID: "prod-1", VariantID: "var-xl-black", Quantity: 1, UnitPrice: 1},
		},
	})

	require.NoError(t, err)
	require.Len(t, result.Cart.Lines, 1)
	assert.Equal(t, 1700, result.Cart.Lines[0].UnitPrice)
	assert.NotEmpty(t, result.IDMap["tmp-1"])
}

// ============================================
// Place Order Tests
// ============================================

func TestHandler_PlaceOrder_Success(t *testing.T) {
	handler, eventStore, _ := newTestHandler()
	ctx := context.Background()

	seedCartLine(eventStore, "user-1")
	seedStock(eventStore, "prod-1", "var-m-black", 10)

	o, err := handler.PlaceOrder(ctx, PlaceOrder{UserID: "user-1"})

	require.NoError(t, err)
	assert.Equal(t, "user-1", o.UserID)
	assert.Equal(t, 3000, o.Total)
	assert.Equal(t, order.StatusPending, o.Status)

	// OrderPlaced + BlanksReserved + CartCleared
	require.Len(t, eventStore.AppendCalls, 3)
	assert.Equal(t, order.EventOrderPlaced, eventStore.AppendCalls[0].EventType)
	assert.Equal(t, stock.EventBlanksReserved, eventStore.AppendCalls[1].EventType)
	assert.Equal(t, cart.EventCartCleared, eventStore.AppendCalls[2].EventType)
}

func TestHandler_PlaceOrder_EmptyCart(t *testing.T) {
	handler, _, _ := newTestHandler()

	o, err := handler.PlaceOrder(context.Background(), PlaceOrder{UserID: "user-1"})

	assert.ErrorIs(t, err, order.ErrEmptyOrder)
	assert.Nil(t, o)
}

func TestHandler_PlaceOrder_InsufficientBlanks(t *testing.T) {
	handler, eventStore, _ := newTestHandler()

	seedCartLine(eventStore, "user-1")
	seedStock(eventStore, "prod-1", "var-m-black", 1) // cart wants 2

	o, err := handler.PlaceOrder(context.Background(), PlaceOrder{UserID: "user-1"})

	assert.ErrorIs(t, err, stock.ErrInsufficientBlanks)
	assert.Nil(t, o)

	// Order was placed, then cancelled as compensation
	hasCancellation := false
	for _, call := range eventStore.AppendCalls {
		if call.EventType == order.EventOrderCancelled {
			hasCancellation = true
		}
	}
	assert.True(t, hasCancellation)
}

func TestHandler_PlaceOrder_PartialReserveRollsBack(t *testing.T) {
	handler, eventStore, _ := newTestHandler()
	userID := "user-1"
	cartID := cart.GetCartID(userID)

	eventStore.AddEvent(cartID, cart.AggregateType, cart.EventLineAdded, cart.LineAdded{
		CartID: cartID, UserID: userID, LineID: "line-1",
		ProductID: "prod-1", VariantID: "var-m-black", Quantity: 1, UnitPrice: 1500,
	})
	eventStore.AddEvent(cartID, cart.AggregateType, cart.EventLineAdded, cart.LineAdded{
		CartID: cartID, UserID: userID, LineID: "line-2",
		ProductID: "prod-2", VariantID: "var-l-white", Quantity: 5, UnitPrice: 2000,
	})
	seedStock(eventStore, "prod-1", "var-m-black", 10)
	// No stock at all for prod-2

	o, err := handler.PlaceOrder(context.Background(), PlaceOrder{UserID: userID})

	assert.ErrorIs(t, err, stock.ErrInsufficientBlanks)
	assert.Nil(t, o)

	hasRelease := false
	hasCancellation := false
	for _, call := range eventStore.AppendCalls {
		if call.EventType == stock.EventBlanksReleased {
			hasRelease = true
		}
		if call.EventType == order.EventOrderCancelled {
			hasCancellation = true
		}
	}
	assert.True(t, hasRelease, "expected first reservation to be released")
	assert.True(t, hasCancellation, "expected order to be cancelled")
}

// ============================================
// Ship / Cancel Order Tests
// ============================================

func seedOrder(eventStore *mocks.MockEventStore, orderID, userID string, extraEvents ...string) {
	eventStore.AddEvent(orderID, order.AggregateType, order.EventOrderPlaced, order.OrderPlaced{
		OrderID: orderID,
		UserID:  userID,
		Items: []order.OrderItem{
			{ItemID: "item-1", ProductID: "prod-1", VariantID: "var-m-black", Quantity: 2, UnitPrice: 1500},
		},
		Total:    3000,
		PlacedAt: time.Now(),
	})
	for _, eventType := range extraEvents {
		switch eventType {
		case order.EventOrderPaid:
			eventStore.AddEvent(orderID, order.AggregateType, eventType, order.OrderPaid{OrderID: orderID, PaidAt: time.Now()})
		case order.EventOrderProductionStarted:
			eventStore.AddEvent(orderID, order.AggregateType, eventType, order.OrderProductionStarted{OrderID: orderID, StartedAt: time.Now()})
		}
	}
}

func TestHandler_ShipOrder_ConsumesBlanks(t *testing.T) {
	handler, eventStore, _ := newTestHandler()
	ctx := context.Background()

	seedOrder(eventStore, "order-1", "user-1", order.EventOrderPaid, order.EventOrderProductionStarted)
	seedStock(eventStore, "prod-1", "var-m-black", 10)

	err := handler.ShipOrder(ctx, ShipOrder{
		OrderID:        "order-1",
		Carrier:        "dhl",
		TrackingNumber: "JD014600003RS",
	})

	require.NoError(t, err)
	assert.Equal(t, order.EventOrderShipped, eventStore.AppendCalls[0].EventType)
	assert.Equal(t, stock.EventBlanksConsumed, eventStore.AppendCalls[1].EventType)
}

func TestHandler_ShipOrder_MissingTracking(t *testing.T) {
	handler, eventStore, _ := newTestHandler()

	seedOrder(eventStore, "order-1", "user-1", order.EventOrderPaid, order.EventOrderProductionStarted)

	err := handler.ShipOrder(context.Background(), ShipOrder{OrderID: "order-1"})

	assert.ErrorIs(t, err, order.ErrMissingTracking)
}

func TestHandler_CancelOrder_ReleasesBlanks(t *testing.T) {
	handler, eventStore, _ := newTestHandler()

	seedOrder(eventStore, "order-1", "user-1")
	seedStock(eventStore, "prod-1", "var-m-black", 10)

	err := handler.CancelOrder(context.Background(), CancelOrder{OrderID: "order-1", Reason: "changed mind"})

	require.NoError(t, err)
	assert.Equal(t, order.EventOrderCancelled, eventStore.AppendCalls[0].EventType)
	assert.Equal(t, stock.EventBlanksReleased, eventStore.AppendCalls[1].EventType)
}

func TestHandler_CancelOrder_AfterProduction(t *testing.T) {
	handler, eventStore, _ := newTestHandler()

	seedOrder(eventStore, "order-1", "user-1", order.EventOrderPaid, order.EventOrderProductionStarted)

	err := handler.CancelOrder(context.Background(), CancelOrder{OrderID: "order-1", Reason: "too late"})

	assert.ErrorIs(t, err, order.ErrOrderShipped)
	// No blanks released for a cancel that was refused
	for _, call := range eventStore.AppendCalls {
		assert.NotEqual(t, stock.EventBlanksReleased, call.EventType)
	}
}

// ============================================
// Issue Tests
// ============================================

func seedOrderModel(readStore *mocks.MockReadStore, orderID, userID string) {
	readStore.SetData("orders", orderID, &readmodel.OrderReadModel{
		ID:     orderID,
		UserID: userID,
		Items: []readmodel.OrderItemReadModel{
			{ItemID: "item-1", ProductID: "prod-1", VariantID: "var-m-black", Quantity: 2, UnitPrice: 1500},
		},
		Status: "delivered",
	})
}

func TestHandler_SubmitIssue_Success(t *testing.T) {
	handler, eventStore, readStore := newTestHandler()

	seedOrderModel(readStore, "order-1", "user-1")

	iss, err := handler.SubmitIssue(context.Background(), SubmitIssue{
		UserID:      "user-1",
		OrderID:     "order-1",
		OrderItemID: "item-1",
		Reason:      "damaged",
		Description: "Print cracked after one wash",
	})

	require.NoError(t, err)
	assert.Equal(t, issue.StatusAwaitingReview, iss.Status)
	require.Len(t, eventStore.AppendCalls, 2)
	assert.Equal(t, issue.EventIssueSubmitted, eventStore.AppendCalls[0].EventType)
	assert.Equal(t, issue.EventIssueQueuedForReview, eventStore.AppendCalls[1].EventType)
}

func TestHandler_SubmitIssue_OrderNotFound(t *testing.T) {
	handler, _, _ := newTestHandler()

	_, err := handler.SubmitIssue(context.Background(), SubmitIssue{
		UserID:      "user-1",
		OrderID:     "missing",
		OrderItemID: "item-1",
		Description: "broken",
	})

	assert.ErrorIs(t, err, order.ErrOrderNotFound)
}

func TestHandler_SubmitIssue_NotOwner(t *testing.T) {
	handler, _, readStore := newTestHandler()

	seedOrderModel(readStore, "order-1", "user-1")

	_, err := handler.SubmitIssue(context.Background(), SubmitIssue{
		UserID:      "user-2",
		OrderID:     "order-1",
		OrderItemID: "item-1",
		Description: "broken",
	})

	assert.ErrorIs(t, err, ErrNotOrderOwner)
}

func TestHandler_SubmitIssue_ItemNotInOrder(t *testing.T) {
	handler, _, readStore := newTestHandler()

	seedOrderModel(readStore, "order-1", "user-1")

	_, err := handler.SubmitIssue(context.Background(), SubmitIssue{
		UserID:      "user-1",
		OrderID:     "order-1",
		OrderItemID: "item-unknown",
		Description: "broken",
	})

	assert.ErrorIs(t, err, ErrItemNotInOrder)
}

func seedIssue(eventStore *mocks.MockEventStore, issueID, orderID, userID string) {
	eventStore.AddEvent(issueID, issue.AggregateType, issue.EventIssueSubmitted, issue.IssueSubmitted{
		IssueID:     issueID,
		OrderID:     orderID,
		OrderItemID: "item-1",
		UserID:      userID,
		Reason:      "damaged",
		Description: "Print cracked",
		SubmittedAt: time.Now(),
	})
	eventStore.AddEvent(issueID, issue.AggregateType, issue.EventIssueQueuedForReview, issue.IssueQueuedForReview{
		IssueID:  issueID,
		QueuedAt: time.Now(),
	})
}

func TestHandler_ApproveReprint_PlacesZeroTotalOrder(t *testing.T) {
	handler, eventStore, _ := newTestHandler()
	ctx := context.Background()

	seedOrder(eventStore, "order-1", "user-1")
	seedIssue(eventStore, "issue-1", "order-1", "user-1")
	seedStock(eventStore, "prod-1", "var-m-black", 10)

	reprint, err := handler.ApproveReprint(ctx, ApproveReprint{IssueID: "issue-1", AdminID: "admin-1"})

	require.NoError(t, err)
	assert.Equal(t, 0, reprint.Total)
	assert.Equal(t, "issue-1", reprint.ReprintOfIssueID)
	require.Len(t, reprint.Items, 1)
	assert.NotEqual(t, "item-1", reprint.Items[0].ItemID)

	var approvedCall *mocks.AppendCall
	hasReserve := false
	for idx, call := range eventStore.AppendCalls {
		if call.EventType == issue.EventIssueApproved {
			approvedCall = &eventStore.AppendCalls[idx]
		}
		if call.EventType == stock.EventBlanksReserved {
			hasReserve = true
		}
	}
	require.NotNil(t, approvedCall)
	assert.Equal(t, reprint.ID, approvedCall.Data.(issue.IssueApproved).ReprintOrderID)
	assert.True(t, hasReserve)
}

func TestHandler_ApproveReprint_ConcludedIssue(t *testing.T) {
	handler, eventStore, _ := newTestHandler()

	seedIssue(eventStore, "issue-1", "order-1", "user-1")
	eventStore.AddEvent("issue-1", issue.AggregateType, issue.EventIssueConcluded, issue.IssueConcluded{
		IssueID:     "issue-1",
		ConcludedBy: "admin-1",
		ConcludedAt: time.Now(),
	})

	_, err := handler.ApproveReprint(context.Background(), ApproveReprint{IssueID: "issue-1", AdminID: "admin-1"})

	assert.ErrorIs(t, err, issue.ErrIssueConcluded)
}

func TestHandler_ApproveReprint_NoBlanks(t *testing.T) {
	handler, eventStore, _ := newTestHandler()

	seedOrder(eventStore, "order-1", "user-1")
	seedIssue(eventStore, "issue-1", "order-1", "user-1")
	// No blanks in stock

	_, err := handler.ApproveReprint(context.Background(), ApproveReprint{IssueID: "issue-1", AdminID: "admin-1"})

	assert.ErrorIs(t, err, stock.ErrInsufficientBlanks)
}

// ============================================
// Resolution Tests
// ============================================

func TestHandler_CreateResolution_Success(t *testing.T) {
	handler, eventStore, readStore := newTestHandler()

	seedOrderModel(readStore, "order-1", "user-1")

	r, err := handler.CreateResolution(context.Background(), CreateResolution{
		OrderID:      "order-1",
		Type:         resolution.TypeRefund,
		RefundAmount: 1500,
		CreatedBy:    "admin-1",
	})

	require.NoError(t, err)
	assert.Equal(t, resolution.StatusPending, r.Status)
	assert.Equal(t, resolution.EventResolutionCreated, eventStore.AppendCalls[0].EventType)
}

func TestHandler_CreateResolution_OrderNotFound(t *testing.T) {
	handler, _, _ := newTestHandler()

	_, err := handler.CreateResolution(context.Background(), CreateResolution{
		OrderID:   "missing",
		Type:      resolution.TypeReprint,
		CreatedBy: "admin-1",
	})

	assert.ErrorIs(t, err, order.ErrOrderNotFound)
}
