package order

import (
	"context"
	"testing"

	"github.com/example/printshop/internal/infrastructure/store/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrderService() (*Service, *mocks.MockEventStore) {
	eventStore := mocks.NewMockEventStore()
	service := NewService(eventStore)
	return service, eventStore
}

func testItems() []OrderItem {
	return []OrderItem{
		{ProductID: "prod-1", VariantID: "var-1", DesignID: "design-1", Quantity: 2, UnitPrice: 1500},
		{ProductID: "prod-2", VariantID: "var-2", Quantity: 1, UnitPrice: 2000},
	}
}

// ============================================
// Place Order Tests
// ============================================

func TestService_Place_Success(t *testing.T) {
	service, eventStore := newTestOrderService()
	ctx := context.Background()

	order, err := service.Place(ctx, "user-123", testItems())

	require.NoError(t, err)
	assert.NotEmpty(t, order.ID)
	assert.Equal(t, "user-123", order.UserID)
	assert.Equal(t, 5000, order.Total) // 2*1500 + 1*2000
	assert.Equal(t, StatusPending, order.Status)
	assert.False(t, order.IsReprint())

	// Each item got a server-assigned ID
	for _, item := range order.Items {
		assert.NotEmpty(t, item.ItemID)
	}

	assert.Len(t, eventStore.AppendCalls, 1)
	assert.Equal(t, EventOrderPlaced, eventStore.AppendCalls[0].EventType)
}

func TestService_Place_EmptyItems(t *testing.T) {
	service, eventStore := newTestOrderService()

	order, err := service.Place(context.Background(), "user-123", nil)

	assert.ErrorIs(t, err, ErrEmptyOrder)
	assert.Nil(t, order)
	assert.Empty(t, eventStore.AppendCalls)
}

func TestService_PlaceReprint_ZeroTotal(t *testing.T) {
	service, _ := newTestOrderService()

	order, err := service.PlaceReprint(context.Background(), "user-123", testItems(), "issue-1")

	require.NoError(t, err)
	assert.True(t, order.IsReprint())
	assert.Equal(t, "issue-1", order.ReprintOfIssueID)
	assert.Equal(t, 0, order.Total)
}

// ============================================
// Lifecycle Tests
// ============================================

func TestService_FullLifecycle(t *testing.T) {
	service, _ := newTestOrderService()
	ctx := context.Background()

	order, err := service.Place(ctx, "user-123", testItems())
	require.NoError(t, err)

	require.NoError(t, service.Pay(ctx, order.ID))
	require.NoError(t, service.StartProduction(ctx, order.ID))
	require.NoError(t, service.Ship(ctx, order.ID, "dhl", "TRACK-1"))
	require.NoError(t, service.Deliver(ctx, order.ID))

	loaded, err := service.Load(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusDelivered, loaded.Status)
	assert.Equal(t, "dhl", loaded.Carrier)
	assert.Equal(t, "TRACK-1", loaded.TrackingNumber)
}

func TestService_Pay_NotFound(t *testing.T) {
	service, _ := newTestOrderService()

	err := service.Pay(context.Background(), "missing")

	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestService_Pay_AlreadyPaid(t *testing.T) {
	service, _ := newTestOrderService()
	ctx := context.Background()

	order, err := service.Place(ctx, "user-123", testItems())
	require.NoError(t, err)
	require.NoError(t, service.Pay(ctx, order.ID))

	err = service.Pay(ctx, order.ID)

	assert.ErrorIs(t, err, ErrOrderAlreadyPaid)
}

func TestService_StartProduction_BeforePayment(t *testing.T) {
	service, _ := newTestOrderService()
	ctx := context.Background()

	order, err := service.Place(ctx, "user-123", testItems())
	require.NoError(t, err)

	err = service.StartProduction(ctx, order.ID)

	assert.ErrorIs(t, err, ErrOrderNotPaid)
}

func TestService_Ship_MissingTracking(t *testing.T) {
	service, _ := newTestOrderService()
	ctx := context.Background()

	order, err := service.Place(ctx, "user-123", testItems())
	require.NoError(t, err)
	require.NoError(t, service.Pay(ctx, order.ID))
	require.NoError(t, service.StartProduction(ctx, order.ID))

	err = service.Ship(ctx, order.ID, "", "")

	assert.ErrorIs(t, err, ErrMissingTracking)
}

func TestService_Ship_SkippingProduction(t *testing.T) {
	service, _ := newTestOrderService()
	ctx := context.Background()

	order, err := service.Place(ctx, "user-123", testItems())
	require.NoError(t, err)
	require.NoError(t, service.Pay(ctx, order.ID))

	err = service.Ship(ctx, order.ID, "dhl", "TRACK-1")

	assert.ErrorIs(t, err, ErrInvalidStatus)
}

// ============================================
// Cancel Tests
// ============================================

func TestService_Cancel_FromPending(t *testing.T) {
	service, _ := newTestOrderService()
	ctx := context.Background()

	order, err := service.Place(ctx, "user-123", testItems())
	require.NoError(t, err)

	require.NoError(t, service.Cancel(ctx, order.ID, "changed my mind"))

	loaded, err := service.Load(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, loaded.Status)
}

func TestService_Cancel_FromPaid(t *testing.T) {
	service, _ := newTestOrderService()
	ctx := context.Background()

	order, err := service.Place(ctx, "user-123", testItems())
	require.NoError(t, err)
	require.NoError(t, service.Pay(ctx, order.ID))

	require.NoError(t, service.Cancel(ctx, order.ID, "duplicate order"))
}

func TestService_Cancel_AfterProductionStarted(t *testing.T) {
	service, _ := newTestOrderService()
	ctx := context.Background()

	order, err := service.Place(ctx, "user-123", testItems())
	require.NoError(t, err)
	require.NoError(t, service.Pay(ctx, order.ID))
	require.NoError(t, service.StartProduction(ctx, order.ID))

	err = service.Cancel(ctx, order.ID, "too late")

	assert.ErrorIs(t, err, ErrOrderShipped)
}

func TestService_Cancel_AlreadyCancelled(t *testing.T) {
	service, _ := newTestOrderService()
	ctx := context.Background()

	order, err := service.Place(ctx, "user-123", testItems())
	require.NoError(t, err)
	require.NoError(t, service.Cancel(ctx, order.ID, "first"))

	err = service.Cancel(ctx, order.ID, "second")

	assert.ErrorIs(t, err, ErrOrderCancelled)
}
