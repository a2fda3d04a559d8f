package query

import (
	"context"
	"log"
	"sort"
	"strings"

	"github.com/example/printshop/internal/domain/cart"
	"github.com/example/printshop/internal/domain/stock"
	"github.com/example/printshop/internal/infrastructure/cache"
	"github.com/example/printshop/internal/infrastructure/store"
	"github.com/example/printshop/internal/readmodel"
)

type Handler struct {
	readStore store.ReadStoreInterface
	cartCache *cache.CartCache // optional, nil disables caching
}

func NewHandler(readStore store.ReadStoreInterface) *Handler {
	return &Handler{readStore: readStore}
}

// NewHandlerWithCache wires a Redis cart cache in front of the read store
func NewHandlerWithCache(readStore store.ReadStoreInterface, cartCache *cache.CartCache) *Handler {
	return &Handler{readStore: readStore, cartCache: cartCache}
}

// ============================================
// Catalog
// ============================================

func (h *Handler) GetProduct(id string) (*readmodel.ProductReadModel, bool) {
	data, ok, err := h.readStore.Get("products", id)
	if err != nil {
		log.Printf("[Query] Error getting product %s: %v", id, err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	return data.(*readmodel.ProductReadModel), true
}

// ListProducts returns every product, active or not (admin view)
func (h *Handler) ListProducts() []*readmodel.ProductReadModel {
	items, err := h.readStore.GetAll("products")
	if err != nil {
		log.Printf("[Query] Error listing products: %v", err)
		return nil
	}
	products := make([]*readmodel.ProductReadModel, 0, len(items))
	for _, item := range items {
		products = append(products, item.(*readmodel.ProductReadModel))
	}
	return products
}

// ListActiveProducts returns the storefront catalog
func (h *Handler) ListActiveProducts() []*readmodel.ProductReadModel {
	products := make([]*readmodel.ProductReadModel, 0)
	for _, p := range h.ListProducts() {
		if p.Active {
			products = append(products, p)
		}
	}
	return products
}

func (h *Handler) GetDesign(id string) (*readmodel.DesignReadModel, bool) {
	data, ok, err := h.readStore.Get("designs", id)
	if err != nil {
		log.Printf("[Query] Error getting design %s: %v", id, err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	return data.(*readmodel.DesignReadModel), true
}

func (h *Handler) ListDesignsByUser(userID string) []*readmodel.DesignReadModel {
	items, err := h.readStore.GetAll("designs")
	if err != nil {
		log.Printf("[Query] Error listing designs: %v", err)
		return nil
	}
	designs := make([]*readmodel.DesignReadModel, 0)
	for _, item := range items {
		d := item.(*readmodel.DesignReadModel)
		if d.UserID == userID {
			designs = append(designs, d)
		}
	}
	return designs
}

// ============================================
// Cart
// ============================================

// GetCart returns the user's cart, consulting the Redis cache first
// when one is wired. A user without cart events gets an empty cart.
func (h *Handler) GetCart(ctx context.Context, userID string) (*readmodel.CartReadModel, bool) {
	cartID := cart.GetCartID(userID)

	if h.cartCache != nil {
		cached, err := h.cartCache.Get(ctx, cartID)
		if err != nil {
			log.Printf("[Query] Cart cache read failed for %s: %v", cartID, err)
		} else if cached != nil {
			return cached, true
		}
	}

	data, ok, err := h.readStore.Get("carts", cartID)
	if err != nil {
		log.Printf("[Query] Error getting cart %s: %v", cartID, err)
		return nil, false
	}
	if !ok {
		return &readmodel.CartReadModel{
			ID:     cartID,
			UserID: userID,
			Lines:  []readmodel.CartLineReadModel{},
		}, true
	}

	c := data.(*readmodel.CartReadModel)
	if h.cartCache != nil {
		if err := h.cartCache.Put(ctx, c); err != nil {
			log.Printf("[Query] Cart cache write failed for %s: %v", cartID, err)
		}
	}
	return c, true
}

// ============================================
// Orders
// ============================================

func (h *Handler) GetOrder(id string) (*readmodel.OrderReadModel, bool) {
	data, ok, err := h.readStore.Get("orders", id)
	if err != nil {
		log.Printf("[Query] Error getting order %s: %v", id, err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	return data.(*readmodel.OrderReadModel), true
}

func (h *Handler) ListOrdersByUser(userID string) []*readmodel.OrderReadModel {
	items, err := h.readStore.GetAll("orders")
	if err != nil {
		log.Printf("[Query] Error listing orders: %v", err)
		return nil
	}
	orders := make([]*readmodel.OrderReadModel, 0)
	for _, item := range items {
		o := item.(*readmodel.OrderReadModel)
		if o.UserID == userID {
			orders = append(orders, o)
		}
	}
	return orders
}

// ListAllOrders returns all orders (for admin use)
func (h *Handler) ListAllOrders() []*readmodel.OrderReadModel {
	items, err := h.readStore.GetAll("orders")
	if err != nil {
		log.Printf("[Query] Error listing all orders: %v", err)
		return nil
	}
	orders := make([]*readmodel.OrderReadModel, 0, len(items))
	for _, item := range items {
		orders = append(orders, item.(*readmodel.OrderReadModel))
	}
	return orders
}

// ============================================
// Issues
// ============================================

func (h *Handler) GetIssue(id string) (*readmodel.IssueReadModel, bool) {
	data, ok, err := h.readStore.Get("issues", id)
	if err != nil {
		log.Printf("[Query] Error getting issue %s: %v", id, err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	return data.(*readmodel.IssueReadModel), true
}

func (h *Handler) ListIssuesByUser(userID string) []*readmodel.IssueReadModel {
	return h.filterIssues(func(i *readmodel.IssueReadModel) bool {
		return i.UserID == userID
	})
}

// ListIssuesByStatus returns the admin review queue for one status
func (h *Handler) ListIssuesByStatus(status string) []*readmodel.IssueReadModel {
	return h.filterIssues(func(i *readmodel.IssueReadModel) bool {
		return i.Status == status
	})
}

func (h *Handler) ListAllIssues() []*readmodel.IssueReadModel {
	return h.filterIssues(func(*readmodel.IssueReadModel) bool { return true })
}

// ListCarrierFaultIssues returns issues classified as carrier fault,
// the working set for the claims screen
func (h *Handler) ListCarrierFaultIssues() []*readmodel.IssueReadModel {
	return h.filterIssues(func(i *readmodel.IssueReadModel) bool {
		return i.CarrierFault == "carrier_fault"
	})
}

func (h *Handler) filterIssues(keep func(*readmodel.IssueReadModel) bool) []*readmodel.IssueReadModel {
	items, err := h.readStore.GetAll("issues")
	if err != nil {
		log.Printf("[Query] Error listing issues: %v", err)
		return nil
	}
	issues := make([]*readmodel.IssueReadModel, 0)
	for _, item := range items {
		i := item.(*readmodel.IssueReadModel)
		if keep(i) {
			issues = append(issues, i)
		}
	}
	sort.Slice(issues, func(a, b int) bool {
		return issues[a].CreatedAt.Before(issues[b].CreatedAt)
	})
	return issues
}

func (h *Handler) ListIssueMessages(issueID string) []*readmodel.IssueMessageReadModel {
	items, err := h.readStore.GetAll("issue_messages")
	if err != nil {
		log.Printf("[Query] Error listing issue messages: %v", err)
		return nil
	}
	messages := make([]*readmodel.IssueMessageReadModel, 0)
	for _, item := range items {
		m := item.(*readmodel.IssueMessageReadModel)
		if m.IssueID == issueID {
			messages = append(messages, m)
		}
	}
	sort.Slice(messages, func(a, b int) bool {
		return messages[a].PostedAt.Before(messages[b].PostedAt)
	})
	return messages
}

// ClaimSummary aggregates carrier claim bookkeeping across issues
type ClaimSummary struct {
	TotalCarrierFault int            `json:"total_carrier_fault"`
	ByClaimStatus     map[string]int `json:"by_claim_status"`
	TotalPayout       int            `json:"total_payout"`
}

// GetClaimSummary totals carrier-fault issues by claim status
func (h *Handler) GetClaimSummary() *ClaimSummary {
	summary := &ClaimSummary{ByClaimStatus: make(map[string]int)}
	for _, i := range h.ListCarrierFaultIssues() {
		summary.TotalCarrierFault++
		summary.ByClaimStatus[i.ClaimStatus]++
		summary.TotalPayout += i.ClaimPayoutAmount
	}
	return summary
}

// ============================================
// Resolutions
// ============================================

func (h *Handler) GetResolution(id string) (*readmodel.ResolutionReadModel, bool) {
	data, ok, err := h.readStore.Get("resolutions", id)
	if err != nil {
		log.Printf("[Query] Error getting resolution %s: %v", id, err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	return data.(*readmodel.ResolutionReadModel), true
}

func (h *Handler) ListResolutionsByOrder(orderID string) []*readmodel.ResolutionReadModel {
	items, err := h.readStore.GetAll("resolutions")
	if err != nil {
		log.Printf("[Query] Error listing resolutions: %v", err)
		return nil
	}
	resolutions := make([]*readmodel.ResolutionReadModel, 0)
	for _, item := range items {
		r := item.(*readmodel.ResolutionReadModel)
		if r.OrderID == orderID {
			resolutions = append(resolutions, r)
		}
	}
	return resolutions
}

// ============================================
// Accounting
// ============================================

func (h *Handler) ListExpenses() []*readmodel.ExpenseReadModel {
	items, err := h.readStore.GetAll("expenses")
	if err != nil {
		log.Printf("[Query] Error listing expenses: %v", err)
		return nil
	}
	expenses := make([]*readmodel.ExpenseReadModel, 0, len(items))
	for _, item := range items {
		expenses = append(expenses, item.(*readmodel.ExpenseReadModel))
	}
	sort.Slice(expenses, func(a, b int) bool {
		return expenses[a].IncurredOn < expenses[b].IncurredOn
	})
	return expenses
}

// CategoryTotal is one row of the monthly expense summary
type CategoryTotal struct {
	Category string `json:"category"`
	Total    int    `json:"total"`
}

// ExpenseSummaryByMonth totals expenses per category for one month
// (YYYY-MM)
func (h *Handler) ExpenseSummaryByMonth(month string) []CategoryTotal {
	totals := make(map[string]int)
	for _, e := range h.ListExpenses() {
		if strings.HasPrefix(e.IncurredOn, month+"-") {
			totals[e.Category] += e.Amount
		}
	}

	summary := make([]CategoryTotal, 0, len(totals))
	for category, total := range totals {
		summary = append(summary, CategoryTotal{Category: category, Total: total})
	}
	sort.Slice(summary, func(a, b int) bool {
		return summary[a].Category < summary[b].Category
	})
	return summary
}

// ============================================
// Stock & Users
// ============================================

func (h *Handler) GetStock(productID, variantID string) (*readmodel.StockReadModel, bool) {
	stockID := stock.GetStockID(productID, variantID)
	data, ok, err := h.readStore.Get("stock", stockID)
	if err != nil {
		log.Printf("[Query] Error getting stock %s: %v", stockID, err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	return data.(*readmodel.StockReadModel), true
}

func (h *Handler) ListStock() []*readmodel.StockReadModel {
	items, err := h.readStore.GetAll("stock")
	if err != nil {
		log.Printf("[Query] Error listing stock: %v", err)
		return nil
	}
	records := make([]*readmodel.StockReadModel, 0, len(items))
	for _, item := range items {
		records = append(records, item.(*readmodel.StockReadModel))
	}
	return records
}

func (h *Handler) GetUser(id string) (*readmodel.UserReadModel, bool) {
	data, ok, err := h.readStore.Get("users", id)
	if err != nil {
		log.Printf("[Query] Error getting user %s: %v", id, err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	return data.(*readmodel.UserReadModel), true
}

// GetUserByEmail scans users for a matching email (login path)
func (h *Handler) GetUserByEmail(email string) (*readmodel.UserReadModel, bool) {
	items, err := h.readStore.GetAll("users")
	if err != nil {
		log.Printf("[Query] Error listing users: %v", err)
		return nil, false
	}
	for _, item := range items {
		u := item.(*readmodel.UserReadModel)
		if u.Email == email {
			return u, true
		}
	}
	return nil, false
}
