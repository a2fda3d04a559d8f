package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/example/printshop/internal/auth"
	"github.com/example/printshop/internal/infrastructure/store"
	"github.com/google/uuid"
)

const AggregateType = "User"

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidEmail       = errors.New("email is required")
	ErrInvalidName        = errors.New("name is required")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserDeactivated    = errors.New("user account is deactivated")
)

// User is the account aggregate. Credentials live here as a bcrypt hash;
// plaintext passwords never reach the event store.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	Role         string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Service struct {
	eventStore store.EventStoreInterface
}

func NewService(es store.EventStoreInterface) *Service {
	return &Service{eventStore: es}
}

func (s *Service) exists(userID string) bool {
	return len(s.eventStore.GetEvents(userID)) > 0
}

func (s *Service) record(ctx context.Context, userID, eventType string, payload any) error {
	_, err := s.eventStore.Append(ctx, userID, AggregateType, eventType, payload)
	return err
}

// Register creates a storefront customer account
func (s *Service) Register(ctx context.Context, email, password, name string) (*User, error) {
	return s.RegisterWithRole(ctx, email, password, name, RoleCustomer)
}

// RegisterAdmin creates a back-office account
func (s *Service) RegisterAdmin(ctx context.Context, email, password, name string) (*User, error) {
	return s.RegisterWithRole(ctx, email, password, name, RoleAdmin)
}

func (s *Service) RegisterWithRole(ctx context.Context, email, password, name, role string) (*User, error) {
	if email == "" || !strings.Contains(email, "@") {
		return nil, ErrInvalidEmail
	}
	if name == "" {
		return nil, ErrInvalidName
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	userID := uuid.New().String()
	now := time.Now()

	err = s.record(ctx, userID, EventUserCreated, UserCreated{
		UserID:       userID,
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		Role:         role,
		CreatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	return &User{
		ID:        userID,
		Email:     email,
		Name:      name,
		Role:      role,
		IsActive:  true,
		CreatedAt: now,
	}, nil
}

// RecordLogin appends a login event for the audit trail
func (s *Service) RecordLogin(ctx context.Context, userID, sessionID, ipAddress, userAgent string) error {
	return s.record(ctx, userID, EventUserLoggedIn, UserLoggedIn{
		UserID:    userID,
		SessionID: sessionID,
		IPAddress: ipAddress,
		UserAgent: userAgent,
		LoggedAt:  time.Now(),
	})
}

// RecordLogout appends a logout event
func (s *Service) RecordLogout(ctx context.Context, userID, sessionID string) error {
	return s.record(ctx, userID, EventUserLoggedOut, UserLoggedOut{
		UserID:    userID,
		SessionID: sessionID,
		LoggedAt:  time.Now(),
	})
}

// UpdateProfile changes the display name
func (s *Service) UpdateProfile(ctx context.Context, userID, name string) error {
	if name == "" {
		return ErrInvalidName
	}
	if !s.exists(userID) {
		return ErrUserNotFound
	}

	return s.record(ctx, userID, EventUserUpdated, UserUpdated{
		UserID:    userID,
		Name:      name,
		UpdatedAt: time.Now(),
	})
}

// ChangePassword hashes and stores a new password
func (s *Service) ChangePassword(ctx context.Context, userID, newPassword string) error {
	if !s.exists(userID) {
		return ErrUserNotFound
	}

	passwordHash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}

	return s.record(ctx, userID, EventUserPasswordChanged, UserPasswordChanged{
		UserID:       userID,
		PasswordHash: passwordHash,
		ChangedAt:    time.Now(),
	})
}

// Deactivate disables an account; existing sessions are cleared by the caller
func (s *Service) Deactivate(ctx context.Context, userID string) error {
	if !s.exists(userID) {
		return ErrUserNotFound
	}

	return s.record(ctx, userID, EventUserDeactivated, UserDeactivated{
		UserID:        userID,
		DeactivatedAt: time.Now(),
	})
}

// Activate re-enables a deactivated account
func (s *Service) Activate(ctx context.Context, userID string) error {
	if !s.exists(userID) {
		return ErrUserNotFound
	}

	return s.record(ctx, userID, EventUserActivated, UserActivated{
		UserID:      userID,
		ActivatedAt: time.Now(),
	})
}
