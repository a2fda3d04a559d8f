package product

import (
	"context"
	"testing"

	"github.com/example/printshop/internal/infrastructure/store/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProductService() (*Service, *mocks.MockEventStore) {
	eventStore := mocks.NewMockEventStore()
	return NewService(eventStore), eventStore
}

func TestService_Create_Success(t *testing.T) {
	service, eventStore := newTestProductService()
	ctx := context.Background()

	variants := []Variant{
		{Size: "M", Color: "black", PriceDelta: 0},
		{Size: "XL", Color: "black", PriceDelta: 200},
	}

	product, err := service.Create(ctx, "Classic Tee", "Heavy cotton tee", "apparel", 1900, []string{"front", "back"}, variants)

	require.NoError(t, err)
	assert.NotEmpty(t, product.ID)
	assert.True(t, product.Active)
	for _, v := range product.Variants {
		assert.NotEmpty(t, v.VariantID)
	}

	assert.Len(t, eventStore.AppendCalls, 1)
	assert.Equal(t, EventProductCreated, eventStore.AppendCalls[0].EventType)
}

func TestService_Create_Validation(t *testing.T) {
	service, _ := newTestProductService()
	ctx := context.Background()

	_, err := service.Create(ctx, "", "desc", "apparel", 1900, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = service.Create(ctx, "Tee", "desc", "apparel", 0, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidPrice)

	_, err = service.Create(ctx, "Tee", "desc", "apparel", 1900, nil, []Variant{{Size: "M"}})
	assert.ErrorIs(t, err, ErrInvalidVariant)
}

func TestService_Update_NotFound(t *testing.T) {
	service, _ := newTestProductService()

	err := service.Update(context.Background(), "missing", "Tee", "desc", "apparel", 1900, nil)

	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestService_AddVariant_Success(t *testing.T) {
	service, eventStore := newTestProductService()
	ctx := context.Background()

	product, err := service.Create(ctx, "Classic Tee", "desc", "apparel", 1900, nil, nil)
	require.NoError(t, err)

	variant, err := service.AddVariant(ctx, product.ID, Variant{Size: "S", Color: "white"})

	require.NoError(t, err)
	assert.NotEmpty(t, variant.VariantID)
	assert.Equal(t, EventVariantAdded, eventStore.AppendCalls[1].EventType)
}

func TestService_Deactivate(t *testing.T) {
	service, eventStore := newTestProductService()
	ctx := context.Background()

	product, err := service.Create(ctx, "Classic Tee", "desc", "apparel", 1900, nil, nil)
	require.NoError(t, err)

	require.NoError(t, service.Deactivate(ctx, product.ID))
	assert.Equal(t, EventProductDeactivated, eventStore.AppendCalls[1].EventType)

	err = service.Deactivate(ctx, "missing")
	assert.ErrorIs(t, err, ErrProductNotFound)
}
