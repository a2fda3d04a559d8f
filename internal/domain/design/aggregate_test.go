package design

import (
	"context"
	"testing"

	"github.com/example/printshop/internal/infrastructure/store/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDesignService() (*Service, *mocks.MockEventStore) {
	eventStore := mocks.NewMockEventStore()
	return NewService(eventStore), eventStore
}

func TestService_Upload_Success(t *testing.T) {
	service, eventStore := newTestDesignService()

	d, err := service.Upload(context.Background(), "user-1", "Skull Print", "https://cdn.example.com/skull.png")

	require.NoError(t, err)
	assert.NotEmpty(t, d.ID)
	assert.Equal(t, "user-1", d.UserID)
	assert.Equal(t, EventDesignUploaded, eventStore.AppendCalls[0].EventType)
}

func TestService_Upload_Validation(t *testing.T) {
	service, _ := newTestDesignService()
	ctx := context.Background()

	_, err := service.Upload(ctx, "user-1", "", "https://cdn.example.com/skull.png")
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = service.Upload(ctx, "user-1", "Skull Print", "")
	assert.ErrorIs(t, err, ErrMissingImage)
}

func TestService_Rename(t *testing.T) {
	service, eventStore := newTestDesignService()
	ctx := context.Background()

	d, err := service.Upload(ctx, "user-1", "Skull Print", "https://cdn.example.com/skull.png")
	require.NoError(t, err)

	require.NoError(t, service.Rename(ctx, d.ID, "Skull Print v2"))
	assert.Equal(t, EventDesignRenamed, eventStore.AppendCalls[1].EventType)
}

func TestService_Rename_NotFound(t *testing.T) {
	service, _ := newTestDesignService()

	err := service.Rename(context.Background(), "missing", "New Name")

	assert.ErrorIs(t, err, ErrDesignNotFound)
}

func TestService_Delete(t *testing.T) {
	service, eventStore := newTestDesignService()
	ctx := context.Background()

	d, err := service.Upload(ctx, "user-1", "Skull Print", "https://cdn.example.com/skull.png")
	require.NoError(t, err)

	require.NoError(t, service.Delete(ctx, d.ID))
	assert.Equal(t, EventDesignDeleted, eventStore.AppendCalls[1].EventType)
}
