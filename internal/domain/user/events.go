package user

import "time"

const (
	EventUserCreated         = "UserCreated"
	EventUserUpdated         = "UserUpdated"
	EventUserPasswordChanged = "UserPasswordChanged"
	EventUserLoggedIn        = "UserLoggedIn"
	EventUserLoggedOut       = "UserLoggedOut"
	EventUserDeactivated     = "UserDeactivated"
	EventUserActivated       = "UserActivated"
)

type UserCreated struct {
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

type UserUpdated struct {
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	UpdatedAt time.Time `json:"updated_at"`
}

type UserPasswordChanged struct {
	UserID       string    `json:"user_id"`
	PasswordHash string    `json:"password_hash"`
	ChangedAt    time.Time `json:"changed_at"`
}

// Login and logout events exist only for the audit trail; the projector
// touches no read model state for them.
type UserLoggedIn struct {
	UserID    string    `json:"user_id"`
	SessionID string    `json:"session_id"`
	IPAddress string    `json:"ip_address"`
	UserAgent string    `json:"user_agent"`
	LoggedAt  time.Time `json:"logged_at"`
}

type UserLoggedOut struct {
	UserID    string    `json:"user_id"`
	SessionID string    `json:"session_id"`
	LoggedAt  time.Time `json:"logged_at"`
}

type UserDeactivated struct {
	UserID        string    `json:"user_id"`
	DeactivatedAt time.Time `json:"deactivated_at"`
}

type UserActivated struct {
	UserID      string    `json:"user_id"`
	ActivatedAt time.Time `json:"activated_at"`
}
