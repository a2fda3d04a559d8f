package notification

import (
	"context"
	"encoding/json"
	"log"

	"github.com/example/printshop/internal/domain/issue"
	"github.com/example/printshop/internal/domain/order"
	"github.com/example/printshop/internal/email"
	"github.com/example/printshop/internal/infrastructure/store"
	"github.com/example/printshop/internal/readmodel"
)

// Handler processes events for sending notifications
type Handler struct {
	emailService *email.Service
	readStore    store.ReadStoreInterface
}

func NewHandler(emailSvc *email.Service, readStore store.ReadStoreInterface) *Handler {
	return &Handler{
		emailService: emailSvc,
		readStore:    readStore,
	}
}

// HandleEvent processes an event from the bus
func (h *Handler) HandleEvent(ctx context.Context, key, value []byte) error {
	var event store.Event
	if err := json.Unmarshal(value, &event); err != nil {
		log.Printf("[Notifier] Failed to unmarshal event: %v", err)
		return err
	}

	switch event.EventType {
	case order.EventOrderPlaced:
		return h.handleOrderPlaced(event)
	case issue.EventInfoRequested:
		return h.handleInfoRequested(event)
	case issue.EventIssueApproved:
		return h.handleIssueApproved(event)
	case issue.EventIssueCompleted, issue.EventIssueRejected, issue.EventIssueClosed:
		return h.handleIssueStatusChange(event)
	}

	return nil
}

func (h *Handler) handleOrderPlaced(event store.Event) error {
	var e order.OrderPlaced
	if err := json.Unmarshal(event.Data, &e); err != nil {
		log.Printf("[Notifier] Failed to unmarshal OrderPlaced event: %v", err)
		return err
	}

	// Reprint orders are announced by the issue approval email instead
	if e.ReprintOfIssueID != "" {
		return nil
	}

	log.Printf("[Notifier] Processing OrderPlaced event for order %s, user %s", e.OrderID, e.UserID)

	user := h.lookupUser(e.UserID)
	if user == nil {
		return nil
	}

	emailItems := make([]email.OrderItem, len(e.Items))
	for i, item := range e.Items {
		productName := item.ProductID
		if productData, exists, _ := h.readStore.Get("products", item.ProductID); exists {
			if product, ok := productData.(*readmodel.ProductReadModel); ok {
				productName = product.Name
			}
		}

		emailItems[i] = email.OrderItem{
			ProductID: item.ProductID,
			Name:      productName,
			Quantity:  item.Quantity,
			Price:     item.UnitPrice,
		}
	}

	if err := h.emailService.SendOrderConfirmation(user.Email, e.OrderID, e.Total, emailItems); err != nil {
		log.Printf("[Notifier] Failed to send email to %s: %v", user.Email, err)
		return err
	}

	log.Printf("[Notifier] Order confirmation email sent to %s for order %s", user.Email, e.OrderID)
	return nil
}

func (h *Handler) handleInfoRequested(event store.Event) error {
	var e issue.InfoRequested
	if err := json.Unmarshal(event.Data, &e); err != nil {
		log.Printf("[Notifier] Failed to unmarshal InfoRequested event: %v", err)
		return err
	}

	user := h.lookupIssueCustomer(e.IssueID)
	if user == nil {
		return nil
	}

	if err := h.emailService.SendInfoRequest(user.Email, e.IssueID, e.Note); err != nil {
		log.Printf("[Notifier] Failed to send info request email to %s: %v", user.Email, err)
		return err
	}

	log.Printf("[Notifier] Info request email sent to %s for issue %s", user.Email, e.IssueID)
	return nil
}

func (h *Handler) handleIssueApproved(event store.Event) error {
	var e issue.IssueApproved
	if err := json.Unmarshal(event.Data, &e); err != nil {
		log.Printf("[Notifier] Failed to unmarshal IssueApproved event: %v", err)
		return err
	}

	user := h.lookupIssueCustomer(e.IssueID)
	if user == nil {
		return nil
	}

	var err error
	if e.ResolvedType == "reprint" {
		err = h.emailService.SendReprintConfirmation(user.Email, e.IssueID, e.ReprintOrderID)
	} else {
		err = h.emailService.SendRefundConfirmation(user.Email, e.IssueID, e.RefundAmount)
	}
	if err != nil {
		log.Printf("[Notifier] Failed to send approval email to %s: %v", user.Email, err)
		return err
	}

	log.Printf("[Notifier] Approval email (%s) sent to %s for issue %s", e.ResolvedType, user.Email, e.IssueID)
	return nil
}

func (h *Handler) handleIssueStatusChange(event store.Event) error {
	// The status payloads share the issue_id field; decode just that
	var e struct {
		IssueID string `json:"issue_id"`
	}
	if err := json.Unmarshal(event.Data, &e); err != nil {
		log.Printf("[Notifier] Failed to unmarshal %s event: %v", event.EventType, err)
		return err
	}

	user := h.lookupIssueCustomer(e.IssueID)
	if user == nil {
		return nil
	}

	var status string
	switch event.EventType {
	case issue.EventIssueCompleted:
		status = string(issue.StatusCompleted)
	case issue.EventIssueRejected:
		status = string(issue.StatusRejected)
	case issue.EventIssueClosed:
		status = string(issue.StatusClosed)
	}

	if err := h.emailService.SendIssueStatusUpdate(user.Email, e.IssueID, status); err != nil {
		log.Printf("[Notifier] Failed to send status email to %s: %v", user.Email, err)
		return err
	}

	log.Printf("[Notifier] Status email (%s) sent to %s for issue %s", status, user.Email, e.IssueID)
	return nil
}

func (h *Handler) lookupUser(userID string) *readmodel.UserReadModel {
	userData, exists, err := h.readStore.Get("users", userID)
	if err != nil {
		log.Printf("[Notifier] Error getting user %s: %v", userID, err)
		return nil
	}
	if !exists {
		log.Printf("[Notifier] User not found: %s", userID)
		return nil
	}
	user, ok := userData.(*readmodel.UserReadModel)
	if !ok {
		log.Printf("[Notifier] Invalid user data type for user: %s", userID)
		return nil
	}
	return user
}

func (h *Handler) lookupIssueCustomer(issueID string) *readmodel.UserReadModel {
	issueData, exists, err := h.readStore.Get("issues", issueID)
	if err != nil || !exists {
		log.Printf("[Notifier] Issue not found: %s", issueID)
		return nil
	}
	iss, ok := issueData.(*readmodel.IssueReadModel)
	if !ok {
		log.Printf("[Notifier] Invalid issue data type for issue: %s", issueID)
		return nil
	}
	return h.lookupUser(iss.UserID)
}
