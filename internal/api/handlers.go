package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/example/printshop/internal/api/middleware"
	"github.com/example/printshop/internal/command"
	"github.com/example/printshop/internal/domain/cart"
	"github.com/example/printshop/internal/domain/design"
	"github.com/example/printshop/internal/domain/expense"
	"github.com/example/printshop/internal/domain/issue"
	"github.com/example/printshop/internal/domain/order"
	"github.com/example/printshop/internal/domain/product"
	"github.com/example/printshop/internal/domain/resolution"
	"github.com/example/printshop/internal/domain/stock"
	"github.com/example/printshop/internal/query"
)

type Handlers struct {
	cmdHandler   *command.Handler
	queryHandler *query.Handler
}

func NewHandlers(cmdHandler *command.Handler, queryHandler *query.Handler) *Handlers {
	return &Handlers{
		cmdHandler:   cmdHandler,
		queryHandler: queryHandler,
	}
}

// ============================================
// Product Handlers (public)
// ============================================

func (h *Handlers) GetProducts(w http.ResponseWriter, r *http.Request) {
	if isAdmin(r) {
		respondJSON(w, http.StatusOK, h.queryHandler.ListProducts())
		return
	}
	respondJSON(w, http.StatusOK, h.queryHandler.ListActiveProducts())
}

func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/products/")
	p, ok := h.queryHandler.GetProduct(id)
	if !ok {
		respondJSONError(w, "Product not found", http.StatusNotFound)
		return
	}
	if !p.Active && !isAdmin(r) {
		respondJSONError(w, "Product not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// ============================================
// Design Handlers
// ============================================

func (h *Handlers) GetDesigns(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r)
	respondJSON(w, http.StatusOK, h.queryHandler.ListDesignsByUser(userID))
}

func (h *Handlers) UploadDesign(w http.ResponseWriter, r *http.Request) {
	var cmd command.UploadDesign
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	cmd.UserID = getUserID(r)

	d, err := h.cmdHandler.UploadDesign(r.Context(), cmd)
	if err != nil {
		respondCommandError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, d)
}

func (h *Handlers) RenameDesign(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/designs/")

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	cmd := command.RenameDesign{DesignID: id, UserID: getUserID(r), Name: req.Name}
	if err := h.cmdHandler.RenameDesign(r.Context(), cmd); err != nil {
		respondCommandError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Design renamed"})
}

func (h *Handlers) DeleteDesign(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/designs/")

	cmd := command.DeleteDesign{DesignID: id, UserID: getUserID(r)}
	if err := h.cmdHandler.DeleteDesign(r.Context(), cmd); err != nil {
		respondCommandError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Design deleted"})
}

// ============================================
// Cart Handlers
// ============================================

func (h *Handlers) GetCart(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r)
	c, _ := h.queryHandler.GetCart(r.Context(), userID)
	respondJSON(w, http.StatusOK, c)
}

func (h *Handlers) AddCartLine(w http.ResponseWriter, r *http.Request) {
	var cmd command.AddCartLine
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	cmd.UserID = getUserID(r)

	line, err := h.cmdHandler.AddCartLine(r.Context(), cmd)
	if err != nil {
		respondCommandError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, line)
}

func (h *Handlers) ChangeCartLineQuantity(w http.ResponseWriter, r *http.Request) {
	lineID := extractPathParam(r.URL.Path, "/cart/lines/")

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	cmd := command.ChangeCartLineQuantity{UserID: getUserID(r), LineID: lineID, Quantity: req.Quantity}
	if err := h.cmdHandler.ChangeCartLineQuantity(r.Context(), cmd); err != nil {
		respondCommandError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) RemoveCartLine(w http.ResponseWriter, r *http.Request) {
	lineID := extractPathParam(r.URL.Path, "/cart/lines/")

	cmd := command.RemoveCartLine{UserID: getUserID(r), LineID: lineID}
	if err := h.cmdHandler.RemoveCartLine(r.Context(), cmd); err != nil {
		respondCommandError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) ClearCart(w http.ResponseWriter, r *http.Request) {
	cmd := command.ClearCart{UserID: getUserID(r)}
	if err := h.cmdHandler.ClearCart(r.Context(), cmd); err != nil {
		respondCommandError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// SyncCart reconciles the client's optimistic cart state in one batch.
// A stale base version comes back as 409 so the client refetches.
func (h *Handlers) SyncCart(w http.ResponseWriter, r *http.Request) {
	var cmd command.SyncCart
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	cmd.UserID = getUserID(r)

	result, err := h.cmdHandler.SyncCart(r.Context(), cmd)
	if err != nil {
		respondCommandError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// ============================================
// Order Handlers (customer)
// ============================================

func (h *Handlers) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r)
	o, err := h.cmdHandler.PlaceOrder(r.Context(), command.PlaceOrder{UserID: userID})
	if err != nil {
		respondCommandError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, o)
}

func (h *Handlers) GetOrders(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r)
	respondJSON(w, http.StatusOK, h.queryHandler.ListOrdersByUser(userID))
}

func (h *Handlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/orders/")
	id = strings.TrimSuffix(id, "/cancel")

	o, ok := h.queryHandler.GetOrder(id)
	if !ok {
		respondJSONError(w, "Order not found", http.StatusNotFound)
		return
	}

	if o.UserID != getUserID(r) && !isAdmin(r) {
		respondJSONError(w, "Forbidden", http.StatusForbidden)
		return
	}

	respondJSON(w, http.StatusOK, o)
}

func (h *Handlers) CancelOrder(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/orders/")
	id := strings.TrimSuffix(path, "/cancel")

	o, ok := h.queryHandler.GetOrder(id)
	if !ok {
		respondJSONError(w, "Order not found", http.StatusNotFound)
		return
	}

	if o.UserID != getUserID(r) && !isAdmin(r) {
		respondJSONError(w, "Forbidden", http.StatusForbidden)
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	json.NewDecoder(r.Body).Decode(&req)

	cmd := command.CancelOrder{OrderID: id, Reason: req.Reason}
	if err := h.cmdHandler.CancelOrder(r.Context(), cmd); err != nil {
		respondCommandError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// ============================================
// Helpers
// ============================================

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondJSONError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// respondCommandError translates domain sentinel errors to HTTP statuses
func respondCommandError(w http.ResponseWriter, err error) {
	respondJSONError(w, err.Error(), statusForError(err))
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, product.ErrProductNotFound),
		errors.Is(err, design.ErrDesignNotFound),
		errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, issue.ErrIssueNotFound),
		errors.Is(err, resolution.ErrResolutionNotFound),
		errors.Is(err, expense.ErrExpenseNotFound),
		errors.Is(err, cart.ErrLineNotFound),
		errors.Is(err, command.ErrVariantNotFound):
		return http.StatusNotFound
	case errors.Is(err, command.ErrNotOrderOwner),
		errors.Is(err, command.ErrNotDesignOwner):
		return http.StatusForbidden
	case errors.Is(err, cart.ErrVersionConflict),
		errors.Is(err, issue.ErrInvalidTransition),
		errors.Is(err, issue.ErrIssueConcluded),
		errors.Is(err, issue.ErrInvalidClaimTransition),
		errors.Is(err, issue.ErrClaimAlreadyFiled),
		errors.Is(err, order.ErrInvalidStatus),
		errors.Is(err, order.ErrOrderShipped),
		errors.Is(err, stock.ErrInsufficientBlanks),
		errors.Is(err, resolution.ErrNotPending):
		return http.StatusConflict
	case errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, cart.ErrInvalidProduct),
		errors.Is(err, command.ErrProductInactive),
		errors.Is(err, command.ErrItemNotInOrder),
		errors.Is(err, order.ErrEmptyOrder),
		errors.Is(err, order.ErrMissingTracking),
		errors.Is(err, issue.ErrEmptyDescription),
		errors.Is(err, issue.ErrEmptyMessage),
		errors.Is(err, issue.ErrInvalidFault),
		errors.Is(err, issue.ErrNotCarrierFault),
		errors.Is(err, issue.ErrNotReopenable),
		errors.Is(err, issue.ErrRefundAmountInvalid),
		errors.Is(err, product.ErrInvalidName),
		errors.Is(err, product.ErrInvalidPrice),
		errors.Is(err, product.ErrInvalidVariant),
		errors.Is(err, design.ErrInvalidName),
		errors.Is(err, design.ErrMissingImage),
		errors.Is(err, resolution.ErrInvalidType),
		errors.Is(err, resolution.ErrInvalidRefund),
		errors.Is(err, expense.ErrInvalidCategory),
		errors.Is(err, expense.ErrInvalidAmount),
		errors.Is(err, expense.ErrInvalidDate),
		errors.Is(err, stock.ErrInvalidQuantity):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func extractPathParam(path, prefix string) string {
	return strings.TrimPrefix(path, prefix)
}

func getUserID(r *http.Request) string {
	return middleware.GetUserID(r.Context())
}

func isAdmin(r *http.Request) bool {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		return false
	}
	return claims.Role == "admin"
}
