package api

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"time"

	"github.com/example/printshop/internal/api/middleware"
	"github.com/example/printshop/internal/auth"
	"github.com/example/printshop/internal/domain/user"
	"github.com/example/printshop/internal/infrastructure/store"
	"github.com/example/printshop/internal/readmodel"
	"github.com/google/uuid"
)

const (
	cookieAccess  = "access_token"
	cookieRefresh = "refresh_token"
	cookieSession = "session_id"

	refreshPath = "/auth/refresh"
)

// Only the SHA-256 of the refresh token is persisted
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// AuthHandlers serves registration, login and session endpoints
type AuthHandlers struct {
	userService *user.Service
	jwtService  *auth.JWTService
	readStore   *store.PostgresReadStore
}

func NewAuthHandlers(userService *user.Service, jwtService *auth.JWTService, readStore *store.PostgresReadStore) *AuthHandlers {
	return &AuthHandlers{
		userService: userService,
		jwtService:  jwtService,
		readStore:   readStore,
	}
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	User    UserResponse `json:"user"`
	Message string       `json:"message,omitempty"`
}

type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func userView(m *readmodel.UserReadModel) UserResponse {
	return UserResponse{
		ID:        m.ID,
		Email:     m.Email,
		Name:      m.Name,
		Role:      m.Role,
		CreatedAt: m.CreatedAt,
	}
}

// Register creates a customer account and signs it in
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if _, taken := h.readStore.GetUserByEmail(req.Email); taken {
		respondJSONError(w, "Email already registered", http.StatusConflict)
		return
	}

	account, err := h.userService.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		if err == auth.ErrPasswordTooShort {
			respondJSONError(w, "Password must be at least 8 characters", http.StatusBadRequest)
			return
		}
		respondJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.openSession(w, r, account.ID, account.Email, account.Role)

	respondJSON(w, http.StatusCreated, AuthResponse{
		User: UserResponse{
			ID:        account.ID,
			Email:     account.Email,
			Name:      account.Name,
			Role:      account.Role,
			CreatedAt: account.CreatedAt,
		},
		Message: "Registration successful",
	})
}

// Login verifies credentials and opens a session
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	account, found := h.readStore.GetUserByEmail(req.Email)
	if !found {
		// Same message for unknown email and bad password
		respondJSONError(w, "Invalid email or password", http.StatusUnauthorized)
		return
	}
	if !account.IsActive {
		respondJSONError(w, "Account is deactivated", http.StatusForbidden)
		return
	}
	if !auth.CheckPassword(req.Password, account.PasswordHash) {
		respondJSONError(w, "Invalid email or password", http.StatusUnauthorized)
		return
	}

	sessionID := h.openSession(w, r, account.ID, account.Email, account.Role)

	// Best-effort audit event; a failed append must not block login
	_ = h.userService.RecordLogin(r.Context(), account.ID, sessionID, r.RemoteAddr, r.UserAgent())

	respondJSON(w, http.StatusOK, AuthResponse{
		User:    userView(account),
		Message: "Login successful",
	})
}

// Logout drops all sessions for the user and expires the cookies
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if claims, ok := middleware.GetUserFromContext(r.Context()); ok {
		sessionID := ""
		if c, err := r.Cookie(cookieSession); err == nil {
			sessionID = c.Value
		}
		_ = h.userService.RecordLogout(r.Context(), claims.UserID, sessionID)
		h.readStore.DeleteSessionsByUserID(claims.UserID)
	}

	h.dropSessionCookies(w)
	respondJSON(w, http.StatusOK, map[string]string{"message": "Logout successful"})
}

// Refresh rotates the token pair against a stored session
func (h *AuthHandlers) Refresh(w http.ResponseWriter, r *http.Request) {
	refreshCookie, err := r.Cookie(cookieRefresh)
	if err != nil {
		respondJSONError(w, "No refresh token", http.StatusUnauthorized)
		return
	}
	sessionCookie, err := r.Cookie(cookieSession)
	if err != nil {
		h.rejectSession(w, "No session")
		return
	}

	userID, err := h.jwtService.ValidateRefreshToken(refreshCookie.Value)
	if err != nil {
		h.rejectSession(w, "Invalid refresh token")
		return
	}

	session := h.lookupSession(sessionCookie.Value)
	if session == nil {
		h.rejectSession(w, "Session not found")
		return
	}
	if time.Now().After(session.ExpiresAt) {
		h.readStore.Delete("sessions", session.ID)
		h.rejectSession(w, "Session expired")
		return
	}
	if hashToken(refreshCookie.Value) != session.RefreshTokenHash {
		h.rejectSession(w, "Invalid refresh token")
		return
	}

	account := h.lookupUser(userID)
	if account == nil {
		h.rejectSession(w, "User not found")
		return
	}
	if !account.IsActive {
		h.dropSessionCookies(w)
		respondJSONError(w, "Account is deactivated", http.StatusForbidden)
		return
	}

	// Rotate: old session out, new session in with fresh tokens
	h.readStore.Delete("sessions", session.ID)
	h.openSession(w, r, account.ID, account.Email, account.Role)

	respondJSON(w, http.StatusOK, map[string]string{"message": "Token refreshed"})
}

// Me returns the authenticated user's profile
func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		respondJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	account := h.lookupUser(claims.UserID)
	if account == nil {
		respondJSONError(w, "User not found", http.StatusNotFound)
		return
	}

	respondJSON(w, http.StatusOK, userView(account))
}

// ChangePassword verifies the current password before rotating it
func (h *AuthHandlers) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		respondJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	account := h.lookupUser(claims.UserID)
	if account == nil {
		respondJSONError(w, "User not found", http.StatusNotFound)
		return
	}
	if !auth.CheckPassword(req.CurrentPassword, account.PasswordHash) {
		respondJSONError(w, "Current password is incorrect", http.StatusBadRequest)
		return
	}

	if err := h.userService.ChangePassword(r.Context(), claims.UserID, req.NewPassword); err != nil {
		if err == auth.ErrPasswordTooShort {
			respondJSONError(w, "New password must be at least 8 characters", http.StatusBadRequest)
			return
		}
		respondJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Password changed successfully"})
}

func (h *AuthHandlers) lookupUser(userID string) *readmodel.UserReadModel {
	data, exists, err := h.readStore.Get("users", userID)
	if err != nil || !exists {
		return nil
	}
	account, ok := data.(*readmodel.UserReadModel)
	if !ok {
		return nil
	}
	return account
}

func (h *AuthHandlers) lookupSession(sessionID string) *readmodel.SessionReadModel {
	data, exists, err := h.readStore.Get("sessions", sessionID)
	if err != nil || !exists {
		return nil
	}
	session, ok := data.(*readmodel.SessionReadModel)
	if !ok {
		return nil
	}
	return session
}

func (h *AuthHandlers) rejectSession(w http.ResponseWriter, msg string) {
	h.dropSessionCookies(w)
	respondJSONError(w, msg, http.StatusUnauthorized)
}

// openSession issues a token pair, persists the session read model and
// sets the three auth cookies. Returns the new session ID.
func (h *AuthHandlers) openSession(w http.ResponseWriter, r *http.Request, userID, email, role string) string {
	accessToken, accessExpiry, _ := h.jwtService.GenerateAccessToken(userID, email, role)
	refreshToken, refreshExpiry, _ := h.jwtService.GenerateRefreshToken(userID)

	sessionID := uuid.New().String()
	h.readStore.Set("sessions", sessionID, &readmodel.SessionReadModel{
		ID:               sessionID,
		UserID:           userID,
		RefreshTokenHash: hashToken(refreshToken),
		ExpiresAt:        refreshExpiry,
		CreatedAt:        time.Now(),
		IPAddress:        r.RemoteAddr,
		UserAgent:        r.UserAgent(),
	})

	secure := r.TLS != nil
	setSessionCookie(w, cookieAccess, accessToken, "/", accessExpiry, secure)
	setSessionCookie(w, cookieRefresh, refreshToken, refreshPath, refreshExpiry, secure)
	setSessionCookie(w, cookieSession, sessionID, "/", refreshExpiry, secure)

	return sessionID
}

func setSessionCookie(w http.ResponseWriter, name, value, path string, expires time.Time, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Expires:  expires,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandlers) dropSessionCookies(w http.ResponseWriter) {
	for _, c := range []struct{ name, path string }{
		{cookieAccess, "/"},
		{cookieRefresh, refreshPath},
		{cookieSession, "/"},
	} {
		http.SetCookie(w, &http.Cookie{
			Name:     c.name,
			Value:    "",
			Path:     c.path,
			MaxAge:   -1,
			HttpOnly: true,
		})
	}
}
