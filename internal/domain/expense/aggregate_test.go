package expense

import (
	"context"
	"testing"

	"github.com/example/printshop/internal/infrastructure/store/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExpenseService() (*Service, *mocks.MockEventStore) {
	eventStore := mocks.NewMockEventStore()
	return NewService(eventStore), eventStore
}

func TestService_Record_Success(t *testing.T) {
	service, eventStore := newTestExpenseService()

	expense, err := service.Record(context.Background(), "blanks", "acme-blanks", 45000, "EUR", "2026-08-12", "200 white tees")

	require.NoError(t, err)
	assert.NotEmpty(t, expense.ID)
	assert.Equal(t, "2026-08-12", expense.IncurredOn)
	assert.Equal(t, EventExpenseRecorded, eventStore.AppendCalls[0].EventType)
}

func TestService_Record_DefaultCurrency(t *testing.T) {
	service, _ := newTestExpenseService()

	expense, err := service.Record(context.Background(), "ink", "", 1200, "", "2026-08-12", "")

	require.NoError(t, err)
	assert.Equal(t, "EUR", expense.Currency)
}

func TestService_Record_Validation(t *testing.T) {
	service, _ := newTestExpenseService()
	ctx := context.Background()

	_, err := service.Record(ctx, "", "", 100, "EUR", "2026-08-12", "")
	assert.ErrorIs(t, err, ErrInvalidCategory)

	_, err = service.Record(ctx, "ink", "", 0, "EUR", "2026-08-12", "")
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = service.Record(ctx, "ink", "", 100, "EUR", "12.08.2026", "")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestService_Update_NotFound(t *testing.T) {
	service, _ := newTestExpenseService()

	err := service.Update(context.Background(), "missing", "ink", "", 100, "EUR", "2026-08-12", "")

	assert.ErrorIs(t, err, ErrExpenseNotFound)
}

func TestService_Delete(t *testing.T) {
	service, eventStore := newTestExpenseService()
	ctx := context.Background()

	expense, err := service.Record(ctx, "shipping", "", 900, "EUR", "2026-08-12", "")
	require.NoError(t, err)

	require.NoError(t, service.Delete(ctx, expense.ID))
	assert.Equal(t, EventExpenseDeleted, eventStore.AppendCalls[1].EventType)
}
