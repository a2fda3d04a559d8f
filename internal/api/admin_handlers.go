package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/example/printshop/internal/accounting"
	"github.com/example/printshop/internal/command"
)

// Admin handlers. All routes here sit behind RequireRole("admin") in the
// router; handlers still pull the acting admin's ID from the claims for
// the audit fields on issue events.

func adminID(r *http.Request) string {
	return getUserID(r)
}

// adminPathID extracts {id} from /admin/<resource>/{id}[/action]
func adminPathID(path, resource string) string {
	rest := strings.TrimPrefix(path, "/admin/"+resource+"/")
	if idx := strings.Index(rest, "/"); idx >= 0 {
		return rest[:idx]
	}
	return rest
}

// decodeOptionalBody decodes a JSON body into dst for actions where the
// body may be omitted entirely. An empty body leaves dst zeroed; a
// malformed one is still an error.
func decodeOptionalBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && err != io.EOF {
		return err
	}
	return nil
}

// ============================================
// Product administration
// ============================================

func (h *Handlers) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var cmd command.CreateProduct
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	p, err := h.cmdHandler.CreateProduct(r.Context(), cmd)
	if err != nil {
		respondCommandError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, p)
}

func (h *Handlers) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id := adminPathID(r.URL.Path, "products")

	var cmd command.UpdateProduct
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	cmd.ProductID = id

	if err := h.cmdHandler.UpdateProduct(r.Context(), cmd); err != nil {
		respondCommandError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Product updated"})
}

func (h *Handlers) DeactivateProduct(w http.ResponseWriter, r *http.Request) {
	id := adminPathID(r.URL.Path, "products")

	cmd := command.DeactivateProduct{ProductID: id}
	if err := h.cmdHandler.DeactivateProduct(r.Context(), cmd); err != nil {
		respondCommandError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Product deactivated"})
}

func (h *Handlers) AddVariant(w http.ResponseWriter, r *http.Request) {
	id := adminPathID(r.URL.Path, "products")

	var cmd command.AddVariant
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	cmd.ProductID = id

	v, err := h.cmdHandler.AddVariant(r.Context(), cmd)
	if err != nil {
		respondCommandError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, v)
}

func (h *Handlers) RemoveVariant(w http.ResponseWriter, r *http.Request) {
	// /admin/products/{id}/variants/{variantID}
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/admin/products/"), "/")
	if len(parts) != 3 || parts[1] != "variants" {
		respondJSONError(w, "Not found", http.StatusNotFound)
		return
	}

	cmd := command.RemoveVariant{ProductID: parts[0], VariantID: parts[2]}
	if err := h.cmdHandler.RemoveVariant(r.Context(), cmd); err != nil {
		respondCommandError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) UpdateProductImage(w http.ResponseWriter, r *http.Request) {
	id := adminPathID(r.URL.Path, "products")

	var req struct {
		ImageURL string `json:"image_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	cmd := command.UpdateProductImage{ProductID: id, ImageURL: req.ImageURL}
	if err := h.cmdHandler.UpdateProductImage(r.Context(), cmd); err != nil {
		respondCommandError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// ============================================
// Order administration
// ============================================

func (h *Handlers) GetAllOrders(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.queryHandler.ListAllOrders())
}

func (h *Handlers) PayOrder(w http.ResponseWriter, r *http.Request) {
	id := adminPathID(r.URL.Path, "orders")
	if err := h.cmdHandler.PayOrder(r.Context(), command.PayOrder{OrderID: id}); err != nil {
		respondCommandError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) StartProduction(w http.ResponseWriter, r *http.Request) {
	id := adminPathID(r.URL.Path, "orders")
	if err := h.cmdHandler.StartProduction(r.Context(), command.StartProduction{OrderID: id}); err != nil {
		respondCommandError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) ShipOrder(w http.ResponseWriter, r *http.Request) {
	id := adminPathID(r.URL.Path, "orders")

	var req struct {
		Carrier        string `json:"carrier"`
		TrackingNumber string `json:"tracking_number"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	cmd := command.ShipOrder{OrderID: id, Carrier: req.Carrier, TrackingNumber: req.TrackingNumber}
	if err := h.cmdHandler.ShipOrder(r.Context(), cmd); err != nil {
		respondCommandError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) DeliverOrder(w http.ResponseWriter, r *http.Request) {
	id := adminPathID(r.URL.Path, "orders")
	if err := h.cmdHandler.DeliverOrder(r.Context(), command.DeliverOrder{OrderID: id}); err != nil {
		respondCommandError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// ============================================
// Issue administration
// ============================================

// GetAllIssues lists every issue, optionally filtered by ?status=
func (h *Handlers) GetAllIssues(w http.ResponseWriter, r *http.Request) {
	if status := r.URL.Query().Get("status"); status != "" {
		respondJSON(w, http.StatusOK, h.queryHandler.ListIssuesByStatus(status))
		return
	}
	respondJSON(w, http.StatusOK, h.queryHandler.ListAllIssues())
}

func (h *Handlers) RequestIssueInfo(w http.ResponseWriter, r *http.Request) {
	id := issuePathID(r.URL.Path)

	var req struct {
		Note string `json:"note"`
	}
	if err := decodeOptionalBody(r, &req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	cmd := command.RequestIssueInfo{IssueID: id, AdminID: adminID(r), Note: req.Note}
	if err := h.cmdHandler.RequestIssueInfo(r.Context(), cmd); err != nil {
		respondCommandError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// ApproveReprint places a zero-total replacement order and moves the
// issue to approved_reprint in one command.
func (h *Handlers) ApproveReprint(w http.ResponseWriter, r *http.Request) {
	id := issuePathID(r.URL.Path)

	cmd := command.ApproveReprint{IssueID: id, AdminID: adminID(r)}
	reprint, err := h.cmdHandler.ApproveReprint(r.Context(), cmd)
	if err != nil {
		respondCommandError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, reprint)
}

func (h *Handlers) ApproveRefund(w http.ResponseWriter, r *http.Request) {
	id := issuePathID(r.URL.Path)

	var req struct {
		RefundAmount int `json:"refund_amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	cmd := command.ApproveRefund{IssueID: id, AdminID: adminID(r), RefundAmount: req.RefundAmount}
	if err := h.cmdHandler.ApproveRefund(r.Context(), cmd); err != nil {
		respondCommandError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) StartIssueProcessing(w http.ResponseWriter, r *http.Request) {
	id := issuePathID(r.URL.Path)
	if err := h.cmdHandler.StartIssueProcessing(r.Context(), command.StartIssueProcessing{IssueID: id}); err != nil {
		respondCommandError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) CompleteIssue(w http.ResponseWriter, r *http.Request) {
	id := issuePathID(r.URL.Path)
	if err := h.cmdHandler.CompleteIssue(r.Context(), command.CompleteIssue{IssueID: id}); err != nil {
		respondCommandError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) RejectIssue(w http.ResponseWriter, r *http.Request) {
	id := issuePathID(r.URL.Path)

	var req struct {
		Reason string `json:"reason"`
	}
	if err := decodeOptionalBody(r, &req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	cmd := command.RejectIssue{IssueID: id, AdminID: adminID(r), Reason: req.Reason}
	if err := h.cmdHandler.RejectIssue(r.Context(), cmd); err != nil {
		respondCommandError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) CloseIssue(w http.ResponseWriter, r *http.Request) {
	id := issuePathID(r.URL.Path)

	var req struct {
		Reason string `json:"reason"`
	}
	if err := decodeOptionalBody(r, &req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	cmd := command.CloseIssue{IssueID: id, ClosedBy: adminID(r), Reason: req.Reason}
	if err := h.cmdHandler.CloseIssue(r.Context(), cmd); err != nil {
		respondCommandError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) ConcludeIssue(w http.ResponseWriter, r *http.Request) {
	id := issuePathID(r.URL.Path)

	var req struct {
		Reason string `json:"reason"`
	}
	if err := decodeOptionalBody(r, &req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	cmd := command.ConcludeIssue{IssueID: id, ConcludedBy: adminID(r), Reason: req.Reason}
	if err := h.cmdHandler.ConcludeIssue(r.Context(), cmd); err != nil {
		respondCommandError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) ReopenIssue(w http.ResponseWriter, r *http.Request) {
	id := issuePathID(r.URL.Path)

	cmd := command.ReopenIssue{IssueID: id, AdminID: adminID(r)}
	if err := h.cmdHandler.ReopenIssue(r.Context(), cmd); err != nil {
		respondCommandError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) ClassifyCarrierFault(w http.ResponseWriter, r *http.Request) {
	id := issuePathID(r.URL.Path)

	var req struct {
		Fault string `json:"fault"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	cmd := command.ClassifyCarrierFault{IssueID: id, AdminID: adminID(r), Fault: req.Fault}
	if err := h.cmdHandler.ClassifyCarrierFault(r.Context(), cmd); err != nil {
		respondCommandError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) FileCarrierClaim(w http.ResponseWriter, r *http.Request) {
	id := issuePathID(r.URL.Path)

	var req struct {
		Reference string `json:"reference"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	cmd := command.FileCarrierClaim{IssueID: id, Reference: req.Reference}
	if err := h.cmdHandler.FileCarrierClaim(r.Context(), cmd); err != nil {
		respondCommandError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) UpdateCarrierClaim(w http.ResponseWriter, r *http.Request) {
	id := issuePathID(r.URL.Path)

	var req struct {
		Status       string `json:"status"`
		PayoutAmount int    `json:"payout_amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	cmd := command.UpdateCarrierClaim{IssueID: id, Status: req.Status, PayoutAmount: req.PayoutAmount}
	if err := h.cmdHandler.UpdateCarrierClaim(r.Context(), cmd); err != nil {
		respondCommandError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) GetClaimSummary(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.queryHandler.GetClaimSummary())
}

func (h *Handlers) GetCarrierFaultIssues(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.queryHandler.ListCarrierFaultIssues())
}

// ============================================
// Resolutions
// ============================================

func (h *Handlers) CreateResolution(w http.ResponseWriter, r *http.Request) {
	var cmd command.CreateResolution
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	cmd.CreatedBy = adminID(r)

	res, err := h.cmdHandler.CreateResolution(r.Context(), cmd)
	if err != nil {
		respondCommandError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, res)
}

func (h *Handlers) GetResolutionsByOrder(w http.ResponseWriter, r *http.Request) {
	orderID := r.URL.Query().Get("order_id")
	respondJSON(w, http.StatusOK, h.queryHandler.ListResolutionsByOrder(orderID))
}

func (h *Handlers) CompleteResolution(w http.ResponseWriter, r *http.Request) {
	id := adminPathID(r.URL.Path, "resolutions")
	if err := h.cmdHandler.CompleteResolution(r.Context(), command.CompleteResolution{ResolutionID: id}); err != nil {
		respondCommandError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) CancelResolution(w http.ResponseWriter, r *http.Request) {
	id := adminPathID(r.URL.Path, "resolutions")

	var req struct {
		Reason string `json:"reason"`
	}
	if err := decodeOptionalBody(r, &req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	cmd := command.CancelResolution{ResolutionID: id, Reason: req.Reason}
	if err := h.cmdHandler.CancelResolution(r.Context(), cmd); err != nil {
		respondCommandError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// ============================================
// Accounting
// ============================================

func (h *Handlers) GetExpenses(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.queryHandler.ListExpenses())
}

func (h *Handlers) GetExpenseSummary(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")
	if month == "" {
		respondJSONError(w, "month query parameter is required (YYYY-MM)", http.StatusBadRequest)
		return
	}
	respondJSON(w, http.StatusOK, h.queryHandler.ExpenseSummaryByMonth(month))
}

func (h *Handlers) RecordExpense(w http.ResponseWriter, r *http.Request) {
	var cmd command.RecordExpense
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	exp, err := h.cmdHandler.RecordExpense(r.Context(), cmd)
	if err != nil {
		respondCommandError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, exp)
}

func (h *Handlers) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	id := adminPathID(r.URL.Path, "expenses")

	var cmd command.UpdateExpense
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	cmd.ExpenseID = id

	if err := h.cmdHandler.UpdateExpense(r.Context(), cmd); err != nil {
		respondCommandError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Expense updated"})
}

func (h *Handlers) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	id := adminPathID(r.URL.Path, "expenses")

	if err := h.cmdHandler.DeleteExpense(r.Context(), command.DeleteExpense{ExpenseID: id}); err != nil {
		respondCommandError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Expense deleted"})
}

// ImportExpenses ingests a CSV file (multipart field "file"). Valid rows
// become expenses; bad rows come back in the response with line numbers.
func (h *Handlers) ImportExpenses(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		respondJSONError(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respondJSONError(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	result, err := accounting.ImportExpenses(r.Context(), h.cmdHandler, file)
	if err != nil {
		respondJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// ============================================
// Stock
// ============================================

func (h *Handlers) GetStock(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.queryHandler.ListStock())
}

func (h *Handlers) ReceiveBlanks(w http.ResponseWriter, r *http.Request) {
	var cmd command.ReceiveBlanks
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.cmdHandler.ReceiveBlanks(r.Context(), cmd); err != nil {
		respondCommandError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"message": "Blanks received"})
}
