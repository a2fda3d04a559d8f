package user

import (
	"context"
	"testing"

	"github.com/example/printshop/internal/infrastructure/store/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUserService() (*Service, *mocks.MockEventStore) {
	eventStore := mocks.NewMockEventStore()
	return NewService(eventStore), eventStore
}

func TestService_Register_Success(t *testing.T) {
	service, eventStore := newTestUserService()

	u, err := service.Register(context.Background(), "jane@example.com", "secret123", "Jane")

	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, RoleCustomer, u.Role)
	assert.True(t, u.IsActive)

	require.Len(t, eventStore.AppendCalls, 1)
	assert.Equal(t, EventUserCreated, eventStore.AppendCalls[0].EventType)

	// Password hash is stored in the event, never plaintext
	created := eventStore.AppendCalls[0].Data.(UserCreated)
	assert.NotEmpty(t, created.PasswordHash)
	assert.NotEqual(t, "secret123", created.PasswordHash)
}

func TestService_RegisterAdmin(t *testing.T) {
	service, _ := newTestUserService()

	u, err := service.RegisterAdmin(context.Background(), "ops@example.com", "secret123", "Ops")

	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, u.Role)
}

func TestService_Register_Validation(t *testing.T) {
	service, _ := newTestUserService()
	ctx := context.Background()

	_, err := service.Register(ctx, "", "secret123", "Jane")
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = service.Register(ctx, "jane@example.com", "secret123", "")
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestService_UpdateProfile_NotFound(t *testing.T) {
	service, _ := newTestUserService()

	err := service.UpdateProfile(context.Background(), "missing", "New Name")

	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestService_ChangePassword(t *testing.T) {
	service, eventStore := newTestUserService()
	ctx := context.Background()

	u, err := service.Register(ctx, "jane@example.com", "secret123", "Jane")
	require.NoError(t, err)

	require.NoError(t, service.ChangePassword(ctx, u.ID, "newsecret"))
	assert.Equal(t, EventUserPasswordChanged, eventStore.AppendCalls[1].EventType)
}

func TestService_DeactivateActivate(t *testing.T) {
	service, eventStore := newTestUserService()
	ctx := context.Background()

	u, err := service.Register(ctx, "jane@example.com", "secret123", "Jane")
	require.NoError(t, err)

	require.NoError(t, service.Deactivate(ctx, u.ID))
	require.NoError(t, service.Activate(ctx, u.ID))
	assert.Equal(t, EventUserDeactivated, eventStore.AppendCalls[1].EventType)
	assert.Equal(t, EventUserActivated, eventStore.AppendCalls[2].EventType)
}
