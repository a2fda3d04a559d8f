package query

import (
	"context"
	"testing"
	"time"

	"github.com/example/printshop/internal/infrastructure/store/mocks"
	"github.com/example/printshop/internal/readmodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestQueryHandler() (*Handler, *mocks.MockReadStore) {
	readStore := mocks.NewMockReadStore()
	return NewHandler(readStore), readStore
}

func TestHandler_GetProduct(t *testing.T) {
	handler, readStore := newTestQueryHandler()

	readStore.SetData("products", "prod-1", &readmodel.ProductReadModel{ID: "prod-1", Name: "Classic Tee"})

	p, ok := handler.GetProduct("prod-1")
	require.True(t, ok)
	assert.Equal(t, "Classic Tee", p.Name)

	_, ok = handler.GetProduct("missing")
	assert.False(t, ok)
}

func TestHandler_ListActiveProducts(t *testing.T) {
	handler, readStore := newTestQueryHandler()

	readStore.SetData("products", "prod-1", &readmodel.ProductReadModel{ID: "prod-1", Active: true})
	readStore.SetData("products", "prod-2", &readmodel.ProductReadModel{ID: "prod-2", Active: false})

	assert.Len(t, handler.ListProducts(), 2)

	active := handler.ListActiveProducts()
	require.Len(t, active, 1)
	assert.Equal(t, "prod-1", active[0].ID)
}

func TestHandler_GetCart_EmptyDefault(t *testing.T) {
	handler, _ := newTestQueryHandler()

	c, ok := handler.GetCart(context.Background(), "user-1")

	require.True(t, ok)
	assert.Equal(t, "cart-user-1", c.ID)
	assert.Empty(t, c.Lines)
	assert.Equal(t, 0, c.Version)
}

func TestHandler_GetCart_FromStore(t *testing.T) {
	handler, readStore := newTestQueryHandler()

	readStore.SetData("carts", "cart-user-1", &readmodel.CartReadModel{
		ID:      "cart-user-1",
		UserID:  "user-1",
		Lines:   []readmodel.CartLineReadModel{{LineID: "line-1", Quantity: 2, UnitPrice: 1500}},
		Total:   3000,
		Version: 3,
	})

	c, ok := handler.GetCart(context.Background(), "user-1")

	require.True(t, ok)
	assert.Equal(t, 3, c.Version)
	assert.Equal(t, 3000, c.Total)
}

func TestHandler_ListOrdersByUser(t *testing.T) {
	handler, readStore := newTestQueryHandler()

	readStore.SetData("orders", "order-1", &readmodel.OrderReadModel{ID: "order-1", UserID: "user-1"})
	readStore.SetData("orders", "order-2", &readmodel.OrderReadModel{ID: "order-2", UserID: "user-2"})

	orders := handler.ListOrdersByUser("user-1")

	require.Len(t, orders, 1)
	assert.Equal(t, "order-1", orders[0].ID)
}

func TestHandler_ListIssuesByStatus(t *testing.T) {
	handler, readStore := newTestQueryHandler()

	now := time.Now()
	readStore.SetData("issues", "issue-1", &readmodel.IssueReadModel{ID: "issue-1", Status: "awaiting_review", CreatedAt: now})
	readStore.SetData("issues", "issue-2", &readmodel.IssueReadModel{ID: "issue-2", Status: "completed", CreatedAt: now.Add(time.Minute)})
	readStore.SetData("issues", "issue-3", &readmodel.IssueReadModel{ID: "issue-3", Status: "awaiting_review", CreatedAt: now.Add(-time.Hour)})

	queue := handler.ListIssuesByStatus("awaiting_review")

	require.Len(t, queue, 2)
	// Oldest first
	assert.Equal(t, "issue-3", queue[0].ID)
	assert.Equal(t, "issue-1", queue[1].ID)
}

func TestHandler_ListIssueMessages_SortedByTime(t *testing.T) {
	handler, readStore := newTestQueryHandler()

	now := time.Now()
	readStore.SetData("issue_messages", "msg-2", &readmodel.IssueMessageReadModel{
		ID: "msg-2", IssueID: "issue-1", PostedAt: now.Add(time.Minute),
	})
	readStore.SetData("issue_messages", "msg-1", &readmodel.IssueMessageReadModel{
		ID: "msg-1", IssueID: "issue-1", PostedAt: now,
	})
	readStore.SetData("issue_messages", "msg-other", &readmodel.IssueMessageReadModel{
		ID: "msg-other", IssueID: "issue-2", PostedAt: now,
	})

	messages := handler.ListIssueMessages("issue-1")

	require.Len(t, messages, 2)
	assert.Equal(t, "msg-1", messages[0].ID)
	assert.Equal(t, "msg-2", messages[1].ID)
}

func TestHandler_GetClaimSummary(t *testing.T) {
	handler, readStore := newTestQueryHandler()

	readStore.SetData("issues", "issue-1", &readmodel.IssueReadModel{
		ID: "issue-1", CarrierFault: "carrier_fault", ClaimStatus: "paid", ClaimPayoutAmount: 1800,
	})
	readStore.SetData("issues", "issue-2", &readmodel.IssueReadModel{
		ID: "issue-2", CarrierFault: "carrier_fault", ClaimStatus: "filed",
	})
	readStore.SetData("issues", "issue-3", &readmodel.IssueReadModel{
		ID: "issue-3", CarrierFault: "not_carrier_fault", ClaimStatus: "not_filed",
	})

	summary := handler.GetClaimSummary()

	assert.Equal(t, 2, summary.TotalCarrierFault)
	assert.Equal(t, 1, summary.ByClaimStatus["paid"])
	assert.Equal(t, 1, summary.ByClaimStatus["filed"])
	assert.Equal(t, 1800, summary.TotalPayout)
}

func TestHandler_ExpenseSummaryByMonth(t *testing.T) {
	handler, readStore := newTestQueryHandler()

	readStore.SetData("expenses", "exp-1", &readmodel.ExpenseReadModel{
		ID: "exp-1", Category: "blanks", Amount: 45000, IncurredOn: "2026-08-12",
	})
	readStore.SetData("expenses", "exp-2", &readmodel.ExpenseReadModel{
		ID: "exp-2", Category: "blanks", Amount: 5000, IncurredOn: "2026-08-20",
	})
	readStore.SetData("expenses", "exp-3", &readmodel.ExpenseReadModel{
		ID: "exp-3", Category: "ink", Amount: 1200, IncurredOn: "2026-08-01",
	})
	readStore.SetData("expenses", "exp-4", &readmodel.ExpenseReadModel{
		ID: "exp-4", Category: "blanks", Amount: 99999, IncurredOn: "2026-07-30",
	})

	summary := handler.ExpenseSummaryByMonth("2026-08")

	require.Len(t, summary, 2)
	assert.Equal(t, CategoryTotal{Category: "blanks", Total: 50000}, summary[0])
	assert.Equal(t, CategoryTotal{Category: "ink", Total: 1200}, summary[1])
}

func TestHandler_GetStock(t *testing.T) {
	handler, readStore := newTestQueryHandler()

	readStore.SetData("stock", "stock-prod-1:var-m", &readmodel.StockReadModel{
		ID: "stock-prod-1:var-m", ProductID: "prod-1", VariantID: "var-m", TotalBlanks: 10, ReservedBlanks: 2, Available: 8,
	})

	st, ok := handler.GetStock("prod-1", "var-m")

	require.True(t, ok)
	assert.Equal(t, 8, st.Available)
}

func TestHandler_GetUserByEmail(t *testing.T) {
	handler, readStore := newTestQueryHandler()

	readStore.SetData("users", "user-1", &readmodel.UserReadModel{ID: "user-1", Email: "jane@example.com"})

	u, ok := handler.GetUserByEmail("jane@example.com")
	require.True(t, ok)
	assert.Equal(t, "user-1", u.ID)

	_, ok = handler.GetUserByEmail("nobody@example.com")
	assert.False(t, ok)
}
