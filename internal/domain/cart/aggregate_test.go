package cart

import (
	"context"
	"testing"

	"github.com/example/printshop/internal/infrastructure/store/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCartService() (*Service, *mocks.MockEventStore) {
	eventStore := mocks.NewMockEventStore()
	service := NewService(eventStore)
	return service, eventStore
}

// ============================================
// AddLine Tests
// ============================================

func TestService_AddLine_Success(t *testing.T) {
	service, eventStore := newTestCartService()
	ctx := context.Background()

	line, err := service.AddLine(ctx, "user-123", "prod-1", "var-1", "design-1", 2, 1500)

	require.NoError(t, err)
	assert.NotEmpty(t, line.LineID)
	assert.Equal(t, 2, line.Quantity)

	assert.Len(t, eventStore.AppendCalls, 1)
	assert.Equal(t, EventLineAdded, eventStore.AppendCalls[0].EventType)
	assert.Equal(t, GetCartID("user-123"), eventStore.AppendCalls[0].AggregateID)
}

func TestService_AddLine_InvalidInput(t *testing.T) {
	service, _ := newTestCartService()
	ctx := context.Background()

	_, err := service.AddLine(ctx, "user-123", "", "var-1", "", 1, 1000)
	assert.ErrorIs(t, err, ErrInvalidProduct)

	_, err = service.AddLine(ctx, "user-123", "prod-1", "var-1", "", 0, 1000)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestService_AddLine_DuplicateProductGetsOwnLine(t *testing.T) {
	service, _ := newTestCartService()
	ctx := context.Background()

	first, err := service.AddLine(ctx, "user-123", "prod-1", "var-1", "", 1, 1000)
	require.NoError(t, err)
	second, err := service.AddLine(ctx, "user-123", "prod-1", "var-1", "", 1, 1000)
	require.NoError(t, err)

	// Same product and variant can appear twice with different designs,
	// so every add creates a distinct line
	assert.NotEqual(t, first.LineID, second.LineID)

	cart, err := service.Load(ctx, "user-123")
	require.NoError(t, err)
	assert.Len(t, cart.Lines, 2)
}

// ============================================
// ChangeQuantity / RemoveLine Tests
// ============================================

func TestService_ChangeQuantity_Success(t *testing.T) {
	service, _ := newTestCartService()
	ctx := context.Background()

	line, err := service.AddLine(ctx, "user-123", "prod-1", "var-1", "", 1, 1000)
	require.NoError(t, err)

	require.NoError(t, service.ChangeQuantity(ctx, "user-123", line.LineID, 5))

	cart, err := service.Load(ctx, "user-123")
	require.NoError(t, err)
	assert.Equal(t, 5, cart.Lines[0].Quantity)
	assert.Equal(t, 5000, cart.Total())
}

func TestService_ChangeQuantity_LineNotFound(t *testing.T) {
	service, _ := newTestCartService()

	err := service.ChangeQuantity(context.Background(), "user-123", "missing", 2)

	assert.ErrorIs(t, err, ErrLineNotFound)
}

func TestService_RemoveLine_Success(t *testing.T) {
	service, _ := newTestCartService()
	ctx := context.Background()

	line, err := service.AddLine(ctx, "user-123", "prod-1", "var-1", "", 1, 1000)
	require.NoError(t, err)

	require.NoError(t, service.RemoveLine(ctx, "user-123", line.LineID))

	cart, err := service.Load(ctx, "user-123")
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)
}

func TestService_Clear(t *testing.T) {
	service, _ := newTestCartService()
	ctx := context.Background()

	_, err := service.AddLine(ctx, "user-123", "prod-1", "var-1", "", 1, 1000)
	require.NoError(t, err)
	_, err = service.AddLine(ctx, "user-123", "prod-2", "var-2", "", 1, 2000)
	require.NoError(t, err)

	require.NoError(t, service.Clear(ctx, "user-123"))

	cart, err := service.Load(ctx, "user-123")
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)
	assert.Equal(t, 0, cart.Total())
}

// ============================================
// Sync Tests
// ============================================

func TestService_Sync_NewLinesGetServerIDs(t *testing.T) {
	service, _ := newTestCartService()
	ctx := context.Background()

	result, err := service.Sync(ctx, "user-123", 0, []DesiredLine{
		{ClientID: "tmp-1", ProductID: "prod-1", VariantID: "var-1", Quantity: 2, UnitPrice: 1500},
		{ClientID: "tmp-2", ProductID: "prod-2", VariantID: "var-2", Quantity: 1, UnitPrice: 2000},
	})

	require.NoError(t, err)
	assert.Len(t, result.Cart.Lines, 2)
	assert.Len(t, result.IDMap, 2)
	assert.Equal(t, result.Cart.Lines[0].LineID, result.IDMap["tmp-1"])
	assert.Equal(t, result.Cart.Lines[1].LineID, result.IDMap["tmp-2"])
	assert.Equal(t, 5000, result.Cart.Total())
}

func TestService_Sync_VersionConflict(t *testing.T) {
	service, _ := newTestCartService()
	ctx := context.Background()

	_, err := service.AddLine(ctx, "user-123", "prod-1", "var-1", "", 1, 1000)
	require.NoError(t, err)

	// Client still thinks the cart is empty
	_, err = service.Sync(ctx, "user-123", 0, []DesiredLine{
		{ClientID: "tmp-1", ProductID: "prod-2", VariantID: "var-1", Quantity: 1, UnitPrice: 500},
	})

	assert.ErrorIs(t, err, ErrVersionConflict)
}

func TestService_Sync_MixedChanges(t *testing.T) {
	service, _ := newTestCartService()
	ctx := context.Background()

	kept, err := service.AddLine(ctx, "user-123", "prod-1", "var-1", "", 1, 1000)
	require.NoError(t, err)
	_, err = service.AddLine(ctx, "user-123", "prod-2", "var-2", "", 1, 2000)
	require.NoError(t, err)

	cart, err := service.Load(ctx, "user-123")
	require.NoError(t, err)

	// Keep the first line with a new quantity, drop the second, add a third
	result, err := service.Sync(ctx, "user-123", cart.Version, []DesiredLine{
		{LineID: kept.LineID, ProductID: "prod-1", VariantID: "var-1", Quantity: 3, UnitPrice: 1000},
		{ClientID: "tmp-9", ProductID: "prod-3", VariantID: "var-3", Quantity: 1, UnitPrice: 750},
	})

	require.NoError(t, err)
	require.Len(t, result.Cart.Lines, 2)
	assert.Equal(t, kept.LineID, result.Cart.Lines[0].LineID)
	assert.Equal(t, 3, result.Cart.Lines[0].Quantity)
	assert.Equal(t, result.Cart.Lines[1].LineID, result.IDMap["tmp-9"])
	assert.Equal(t, 3750, result.Cart.Total())
}

func TestService_Sync_UnknownLineID(t *testing.T) {
	service, _ := newTestCartService()
	ctx := context.Background()

	_, err := service.Sync(ctx, "user-123", 0, []DesiredLine{
		{LineID: "never-issued", ProductID: "prod-1", VariantID: "var-1", Quantity: 1, UnitPrice: 1000},
	})

	assert.ErrorIs(t, err, ErrLineNotFound)
}

func TestService_Sync_NoopKeepsVersion(t *testing.T) {
	service, eventStore := newTestCartService()
	ctx := context.Background()

	line, err := service.AddLine(ctx, "user-123", "prod-1", "var-1", "", 2, 1000)
	require.NoError(t, err)

	cart, err := service.Load(ctx, "user-123")
	require.NoError(t, err)

	before := len(eventStore.AppendCalls)
	result, err := service.Sync(ctx, "user-123", cart.Version, []DesiredLine{
		{LineID: line.LineID, ProductID: "prod-1", VariantID: "var-1", Quantity: 2, UnitPrice: 1000},
	})

	require.NoError(t, err)
	assert.Equal(t, cart.Version, result.Cart.Version)
	assert.Len(t, eventStore.AppendCalls, before)
}

func TestService_Sync_EmptyDesiredClearsCart(t *testing.T) {
	service, _ := newTestCartService()
	ctx := context.Background()

	_, err := service.AddLine(ctx, "user-123", "prod-1", "var-1", "", 1, 1000)
	require.NoError(t, err)

	cart, err := service.Load(ctx, "user-123")
	require.NoError(t, err)

	result, err := service.Sync(ctx, "user-123", cart.Version, nil)

	require.NoError(t, err)
	assert.Empty(t, result.Cart.Lines)
}
