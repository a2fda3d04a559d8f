package resolution

import (
	"context"
	"testing"

	"github.com/example/printshop/internal/infrastructure/store/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResolutionService() (*Service, *mocks.MockEventStore) {
	eventStore := mocks.NewMockEventStore()
	return NewService(eventStore), eventStore
}

func TestService_Create_Refund(t *testing.T) {
	service, eventStore := newTestResolutionService()

	resolution, err := service.Create(context.Background(), "order-1", TypeRefund, 1500, "", "late delivery", "admin-1")

	require.NoError(t, err)
	assert.Equal(t, StatusPending, resolution.Status)
	assert.Equal(t, 1500, resolution.RefundAmount)
	assert.Equal(t, EventResolutionCreated, eventStore.AppendCalls[0].EventType)
}

func TestService_Create_Validation(t *testing.T) {
	service, _ := newTestResolutionService()
	ctx := context.Background()

	_, err := service.Create(ctx, "order-1", "store-credit", 0, "", "", "admin-1")
	assert.ErrorIs(t, err, ErrInvalidType)

	_, err = service.Create(ctx, "order-1", TypeRefund, 0, "", "", "admin-1")
	assert.ErrorIs(t, err, ErrInvalidRefund)
}

func TestService_Complete(t *testing.T) {
	service, _ := newTestResolutionService()
	ctx := context.Background()

	resolution, err := service.Create(ctx, "order-1", TypeReprint, 0, "order-r1", "", "admin-1")
	require.NoError(t, err)

	require.NoError(t, service.Complete(ctx, resolution.ID))

	// Completed resolutions cannot be touched again
	assert.ErrorIs(t, service.Complete(ctx, resolution.ID), ErrNotPending)
	assert.ErrorIs(t, service.Cancel(ctx, resolution.ID, "oops"), ErrNotPending)
}

func TestService_Cancel(t *testing.T) {
	service, _ := newTestResolutionService()
	ctx := context.Background()

	resolution, err := service.Create(ctx, "order-1", TypeRefund, 500, "", "", "admin-1")
	require.NoError(t, err)

	require.NoError(t, service.Cancel(ctx, resolution.ID, "granted in error"))
	assert.ErrorIs(t, service.Complete(ctx, resolution.ID), ErrNotPending)
}

func TestService_Complete_NotFound(t *testing.T) {
	service, _ := newTestResolutionService()

	err := service.Complete(context.Background(), "missing")

	assert.ErrorIs(t, err, ErrResolutionNotFound)
}
