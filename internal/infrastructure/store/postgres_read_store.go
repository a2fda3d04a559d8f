package store

import (
	"database/sql"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/example/printshop/internal/readmodel"
)

// PostgresReadStore implements ReadStoreInterface using PostgreSQL.
// Indexable fields live in real columns; nested slices are stored as jsonb.
type PostgresReadStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewPostgresReadStore creates a new PostgreSQL-based read store
func NewPostgresReadStore(db *sql.DB) *PostgresReadStore {
	return &PostgresReadStore{db: db}
}

// Set stores a read model
func (rs *PostgresReadStore) Set(collection, id string, data any) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	switch collection {
	case "products":
		rs.setProduct(id, data.(*readmodel.ProductReadModel))
	case "designs":
		rs.setDesign(id, data.(*readmodel.DesignReadModel))
	case "carts":
		rs.setCart(id, data.(*readmodel.CartReadModel))
	case "orders":
		rs.setOrder(id, data.(*readmodel.OrderReadModel))
	case "issues":
		rs.setIssue(id, data.(*readmodel.IssueReadModel))
	case "issue_messages":
		rs.setIssueMessage(id, data.(*readmodel.IssueMessageReadModel))
	case "resolutions":
		rs.setResolution(id, data.(*readmodel.ResolutionReadModel))
	case "expenses":
		rs.setExpense(id, data.(*readmodel.ExpenseReadModel))
	case "stock":
		rs.setStock(id, data.(*readmodel.StockReadModel))
	case "users":
		rs.setUser(id, data.(*readmodel.UserReadModel))
	case "sessions":
		rs.setSession(id, data.(*readmodel.SessionReadModel))
	}
}

// Get retrieves a read model by id
func (rs *PostgresReadStore) Get(collection, id string) (any, bool, error) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return rs.getUnsafe(collection, id)
}

func (rs *PostgresReadStore) getUnsafe(collection, id string) (any, bool, error) {
	switch collection {
	case "products":
		m, ok, err := rs.getProduct(id)
		return anyOrNil(m, ok), ok, err
	case "designs":
		m, ok, err := rs.getDesign(id)
		return anyOrNil(m, ok), ok, err
	case "carts":
		m, ok, err := rs.getCart(id)
		return anyOrNil(m, ok), ok, err
	case "orders":
		m, ok, err := rs.getOrder(id)
		return anyOrNil(m, ok), ok, err
	case "issues":
		m, ok, err := rs.getIssue(id)
		return anyOrNil(m, ok), ok, err
	case "issue_messages":
		m, ok, err := rs.getIssueMessage(id)
		return anyOrNil(m, ok), ok, err
	case "resolutions":
		m, ok, err := rs.getResolution(id)
		return anyOrNil(m, ok), ok, err
	case "expenses":
		m, ok, err := rs.getExpense(id)
		return anyOrNil(m, ok), ok, err
	case "stock":
		m, ok, err := rs.getStock(id)
		return anyOrNil(m, ok), ok, err
	case "users":
		m, ok, err := rs.getUser(id)
		return anyOrNil(m, ok), ok, err
	case "sessions":
		m, ok, err := rs.getSession(id)
		return anyOrNil(m, ok), ok, err
	}
	return nil, false, nil
}

// anyOrNil avoids returning a typed nil pointer inside a non-nil interface
func anyOrNil(m any, ok bool) any {
	if !ok {
		return nil
	}
	return m
}

// GetAll retrieves all items in a collection
func (rs *PostgresReadStore) GetAll(collection string) ([]any, error) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	switch collection {
	case "products":
		return rs.getAllProducts()
	case "designs":
		return rs.getAllDesigns()
	case "carts":
		return rs.getAllCarts()
	case "orders":
		return rs.getAllOrders()
	case "issues":
		return rs.getAllIssues()
	case "issue_messages":
		return rs.getAllIssueMessages()
	case "resolutions":
		return rs.getAllResolutions()
	case "expenses":
		return rs.getAllExpenses()
	case "stock":
		return rs.getAllStock()
	case "users":
		return rs.getAllUsers()
	case "sessions":
		return rs.getAllSessions()
	}
	return nil, nil
}

// Delete removes a read model
func (rs *PostgresReadStore) Delete(collection, id string) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	table, ok := tableFor(collection)
	if !ok {
		return
	}
	if _, err := rs.db.Exec("DELETE FROM "+table+" WHERE id = $1", id); err != nil {
		log.Printf("[PostgresReadStore] Error deleting from %s: %v", collection, err)
	}
}

func tableFor(collection string) (string, bool) {
	tables := map[string]string{
		"products":       "read_products",
		"designs":        "read_designs",
		"carts":          "read_carts",
		"orders":         "read_orders",
		"issues":         "read_issues",
		"issue_messages": "read_issue_messages",
		"resolutions":    "read_resolutions",
		"expenses":       "read_expenses",
		"stock":          "read_stock",
		"users":          "read_users",
		"sessions":       "user_sessions",
	}
	t, ok := tables[collection]
	return t, ok
}

// Update modifies a read model using an update function
func (rs *PostgresReadStore) Update(collection, id string, updateFn func(current any) any) bool {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	current, found, err := rs.getUnsafe(collection, id)
	if err != nil || !found {
		return false
	}

	updated := updateFn(current)

	switch collection {
	case "products":
		rs.setProduct(id, updated.(*readmodel.ProductReadModel))
	case "designs":
		rs.setDesign(id, updated.(*readmodel.DesignReadModel))
	case "carts":
		rs.setCart(id, updated.(*readmodel.CartReadModel))
	case "orders":
		rs.setOrder(id, updated.(*readmodel.OrderReadModel))
	case "issues":
		rs.setIssue(id, updated.(*readmodel.IssueReadModel))
	case "issue_messages":
		rs.setIssueMessage(id, updated.(*readmodel.IssueMessageReadModel))
	case "resolutions":
		rs.setResolution(id, updated.(*readmodel.ResolutionReadModel))
	case "expenses":
		rs.setExpense(id, updated.(*readmodel.ExpenseReadModel))
	case "stock":
		rs.setStock(id, updated.(*readmodel.StockReadModel))
	case "users":
		rs.setUser(id, updated.(*readmodel.UserReadModel))
	case "sessions":
		rs.setSession(id, updated.(*readmodel.SessionReadModel))
	default:
		return false
	}
	return true
}

// ---- products ----

func (rs *PostgresReadStore) setProduct(id string, p *readmodel.ProductReadModel) {
	variants, _ := json.Marshal(p.Variants)
	printAreas, _ := json.Marshal(p.PrintAreas)
	_, err := rs.db.Exec(
		`INSERT INTO read_products (id, name, description, category, base_price, print_areas, image_url, variants, active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 ON CONFLICT (id) DO UPDATE SET
		   name = $2, description = $3, category = $4, base_price = $5, print_areas = $6,
		   image_url = $7, variants = $8, active = $9, updated_at = $11`,
		id, p.Name, p.Description, p.Category, p.BasePrice, printAreas, p.ImageURL, variants, p.Active, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		log.Printf("[PostgresReadStore] Error setting product %s: %v", id, err)
	}
}

func (rs *PostgresReadStore) scanProduct(row interface{ Scan(...any) error }) (*readmodel.ProductReadModel, error) {
	var p readmodel.ProductReadModel
	var variants, printAreas []byte
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.BasePrice, &printAreas, &p.ImageURL, &variants, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	_ = json.Unmarshal(variants, &p.Variants)
	_ = json.Unmarshal(printAreas, &p.PrintAreas)
	return &p, nil
}

const productColumns = `id, name, description, category, base_price, print_areas, image_url, variants, active, created_at, updated_at`

func (rs *PostgresReadStore) getProduct(id string) (*readmodel.ProductReadModel, bool, error) {
	row := rs.db.QueryRow(`SELECT `+productColumns+` FROM read_products WHERE id = $1`, id)
	p, err := rs.scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return p, true, nil
}

func (rs *PostgresReadStore) getAllProducts() ([]any, error) {
	rows, err := rs.db.Query(`SELECT ` + productColumns + ` FROM read_products ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []any
	for rows.Next() {
		p, err := rs.scanProduct(rows)
		if err != nil {
			continue
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

// ---- designs ----

func (rs *PostgresReadStore) setDesign(id string, d *readmodel.DesignReadModel) {
	_, err := rs.db.Exec(
		`INSERT INTO read_designs (id, user_id, name, image_url, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE SET user_id = $2, name = $3, image_url = $4, updated_at = $6`,
		id, d.UserID, d.Name, d.ImageURL, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		log.Printf("[PostgresReadStore] Error setting design %s: %v", id, err)
	}
}

func (rs *PostgresReadStore) getDesign(id string) (*readmodel.DesignReadModel, bool, error) {
	var d readmodel.DesignReadModel
	err := rs.db.QueryRow(
		`SELECT id, user_id, name, image_url, created_at, updated_at FROM read_designs WHERE id = $1`, id,
	).Scan(&d.ID, &d.UserID, &d.Name, &d.ImageURL, &d.CreatedAt, &d.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &d, true, nil
}

func (rs *PostgresReadStore) getAllDesigns() ([]any, error) {
	rows, err := rs.db.Query(`SELECT id, user_id, name, image_url, created_at, updated_at FROM read_designs ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []any
	for rows.Next() {
		var d readmodel.DesignReadModel
		if err := rows.Scan(&d.ID, &d.UserID, &d.Name, &d.ImageURL, &d.CreatedAt, &d.UpdatedAt); err != nil {
			continue
		}
		items = append(items, &d)
	}
	return items, rows.Err()
}

// ListDesignsByUser returns all designs owned by a user
func (rs *PostgresReadStore) ListDesignsByUser(userID string) []*readmodel.DesignReadModel {
	rows, err := rs.db.Query(
		`SELECT id, user_id, name, image_url, created_at, updated_at FROM read_designs WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		log.Printf("[PostgresReadStore] Error listing designs for user %s: %v", userID, err)
		return nil
	}
	defer rows.Close()

	var items []*readmodel.DesignReadModel
	for rows.Next() {
		var d readmodel.DesignReadModel
		if err := rows.Scan(&d.ID, &d.UserID, &d.Name, &d.ImageURL, &d.CreatedAt, &d.UpdatedAt); err != nil {
			continue
		}
		items = append(items, &d)
	}
	return items
}

// ---- carts ----

func (rs *PostgresReadStore) setCart(id string, c *readmodel.CartReadModel) {
	lines, _ := json.Marshal(c.Lines)
	_, err := rs.db.Exec(
		`INSERT INTO read_carts (id, user_id, lines, total, version)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO UPDATE SET user_id = $2, lines = $3, total = $4, version = $5`,
		id, c.UserID, lines, c.Total, c.Version,
	)
	if err != nil {
		log.Printf("[PostgresReadStore] Error setting cart %s: %v", id, err)
	}
}

func (rs *PostgresReadStore) getCart(id string) (*readmodel.CartReadModel, bool, error) {
	var c readmodel.CartReadModel
	var lines []byte
	err := rs.db.QueryRow(
		`SELECT id, user_id, lines, total, version FROM read_carts WHERE id = $1`, id,
	).Scan(&c.ID, &c.UserID, &lines, &c.Total, &c.Version)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	_ = json.Unmarshal(lines, &c.Lines)
	return &c, true, nil
}

func (rs *PostgresReadStore) getAllCarts() ([]any, error) {
	rows, err := rs.db.Query(`SELECT id, user_id, lines, total, version FROM read_carts`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []any
	for rows.Next() {
		var c readmodel.CartReadModel
		var lines []byte
		if err := rows.Scan(&c.ID, &c.UserID, &lines, &c.Total, &c.Version); err != nil {
			continue
		}
		_ = json.Unmarshal(lines, &c.Lines)
		items = append(items, &c)
	}
	return items, rows.Err()
}

// ---- orders ----

func (rs *PostgresReadStore) setOrder(id string, o *readmodel.OrderReadModel) {
	items, _ := json.Marshal(o.Items)
	_, err := rs.db.Exec(
		`INSERT INTO read_orders (id, user_id, items, total, status, tracking_number, carrier, reprint_of_issue_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (id) DO UPDATE SET
		   user_id = $2, items = $3, total = $4, status = $5, tracking_number = $6,
		   carrier = $7, reprint_of_issue_id = $8, updated_at = $10`,
		id, o.UserID, items, o.Total, o.Status, o.TrackingNumber, o.Carrier, o.ReprintOfIssueID, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		log.Printf("[PostgresReadStore] Error setting order %s: %v", id, err)
	}
}

const orderColumns = `id, user_id, items, total, status, tracking_number, carrier, reprint_of_issue_id, created_at, updated_at`

func (rs *PostgresReadStore) scanOrder(row interface{ Scan(...any) error }) (*readmodel.OrderReadModel, error) {
	var o readmodel.OrderReadModel
	var items []byte
	err := row.Scan(&o.ID, &o.UserID, &items, &o.Total, &o.Status, &o.TrackingNumber, &o.Carrier, &o.ReprintOfIssueID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	_ = json.Unmarshal(items, &o.Items)
	return &o, nil
}

func (rs *PostgresReadStore) getOrder(id string) (*readmodel.OrderReadModel, bool, error) {
	row := rs.db.QueryRow(`SELECT `+orderColumns+` FROM read_orders WHERE id = $1`, id)
	o, err := rs.scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return o, true, nil
}

func (rs *PostgresReadStore) getAllOrders() ([]any, error) {
	rows, err := rs.db.Query(`SELECT ` + orderColumns + ` FROM read_orders ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []any
	for rows.Next() {
		o, err := rs.scanOrder(rows)
		if err != nil {
			continue
		}
		items = append(items, o)
	}
	return items, rows.Err()
}

// ListOrdersByUser returns a user's orders, newest first
func (rs *PostgresReadStore) ListOrdersByUser(userID string) []*readmodel.OrderReadModel {
	rows, err := rs.db.Query(`SELECT `+orderColumns+` FROM read_orders WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		log.Printf("[PostgresReadStore] Error listing orders for user %s: %v", userID, err)
		return nil
	}
	defer rows.Close()

	var orders []*readmodel.OrderReadModel
	for rows.Next() {
		o, err := rs.scanOrder(rows)
		if err != nil {
			continue
		}
		orders = append(orders, o)
	}
	return orders
}

// ---- issues ----

func (rs *PostgresReadStore) setIssue(id string, i *readmodel.IssueReadModel) {
	photos, _ := json.Marshal(i.PhotoURLs)
	_, err := rs.db.Exec(
		`INSERT INTO read_issues (id, order_id, order_item_id, user_id, reason, description, photo_urls, status,
		   carrier_fault, claim_status, claim_reference, claim_payout_amount, resolved_type, reprint_order_id,
		   refund_amount, is_concluded, concluded_by, concluded_reason, concluded_at, message_count,
		   unread_by_admin, unread_by_customer, info_requested_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)
		 ON CONFLICT (id) DO UPDATE SET
		   order_id = $2, order_item_id = $3, user_id = $4, reason = $5, description = $6, photo_urls = $7,
		   status = $8, carrier_fault = $9, claim_status = $10, claim_reference = $11, claim_payout_amount = $12,
		   resolved_type = $13, reprint_order_id = $14, refund_amount = $15, is_concluded = $16, concluded_by = $17,
		   concluded_reason = $18, concluded_at = $19, message_count = $20, unread_by_admin = $21,
		   unread_by_customer = $22, info_requested_at = $23, updated_at = $25`,
		id, i.OrderID, i.OrderItemID, i.UserID, i.Reason, i.Description, photos, i.Status,
		i.CarrierFault, i.ClaimStatus, i.ClaimReference, i.ClaimPayoutAmount, i.ResolvedType, i.ReprintOrderID,
		i.RefundAmount, i.IsConcluded, i.ConcludedBy, i.ConcludedReason, i.ConcludedAt, i.MessageCount,
		i.UnreadByAdmin, i.UnreadByCustomer, i.InfoRequestedAt, i.CreatedAt, i.UpdatedAt,
	)
	if err != nil {
		log.Printf("[PostgresReadStore] Error setting issue %s: %v", id, err)
	}
}

const issueColumns = `id, order_id, order_item_id, user_id, reason, description, photo_urls, status,
	carrier_fault, claim_status, claim_reference, claim_payout_amount, resolved_type, reprint_order_id,
	refund_amount, is_concluded, concluded_by, concluded_reason, concluded_at, message_count,
	unread_by_admin, unread_by_customer, info_requested_at, created_at, updated_at`

func (rs *PostgresReadStore) scanIssue(row interface{ Scan(...any) error }) (*readmodel.IssueReadModel, error) {
	var i readmodel.IssueReadModel
	var photos []byte
	err := row.Scan(&i.ID, &i.OrderID, &i.OrderItemID, &i.UserID, &i.Reason, &i.Description, &photos, &i.Status,
		&i.CarrierFault, &i.ClaimStatus, &i.ClaimReference, &i.ClaimPayoutAmount, &i.ResolvedType, &i.ReprintOrderID,
		&i.RefundAmount, &i.IsConcluded, &i.ConcludedBy, &i.ConcludedReason, &i.ConcludedAt, &i.MessageCount,
		&i.UnreadByAdmin, &i.UnreadByCustomer, &i.InfoRequestedAt, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return nil, err
	}
	_ = json.Unmarshal(photos, &i.PhotoURLs)
	return &i, nil
}

func (rs *PostgresReadStore) getIssue(id string) (*readmodel.IssueReadModel, bool, error) {
	row := rs.db.QueryRow(`SELECT `+issueColumns+` FROM read_issues WHERE id = $1`, id)
	i, err := rs.scanIssue(row)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return i, true, nil
}

func (rs *PostgresReadStore) getAllIssues() ([]any, error) {
	rows, err := rs.db.Query(`SELECT ` + issueColumns + ` FROM read_issues ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []any
	for rows.Next() {
		i, err := rs.scanIssue(rows)
		if err != nil {
			continue
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

func (rs *PostgresReadStore) queryIssues(query string, args ...any) []*readmodel.IssueReadModel {
	rows, err := rs.db.Query(query, args...)
	if err != nil {
		log.Printf("[PostgresReadStore] Error querying issues: %v", err)
		return nil
	}
	defer rows.Close()

	var issues []*readmodel.IssueReadModel
	for rows.Next() {
		i, err := rs.scanIssue(rows)
		if err != nil {
			continue
		}
		issues = append(issues, i)
	}
	return issues
}

// ListIssuesByUser returns a user's issues, newest first
func (rs *PostgresReadStore) ListIssuesByUser(userID string) []*readmodel.IssueReadModel {
	return rs.queryIssues(`SELECT `+issueColumns+` FROM read_issues WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

// ListIssuesByStatus returns all issues in a given status, oldest first (review queue order)
func (rs *PostgresReadStore) ListIssuesByStatus(status string) []*readmodel.IssueReadModel {
	return rs.queryIssues(`SELECT `+issueColumns+` FROM read_issues WHERE status = $1 ORDER BY created_at ASC`, status)
}

// ListStaleInfoRequested returns unconcluded issues that have been waiting on
// customer info since before the cutoff. Used by the stale-issue sweeper.
func (rs *PostgresReadStore) ListStaleInfoRequested(cutoff time.Time) []*readmodel.IssueReadModel {
	return rs.queryIssues(
		`SELECT `+issueColumns+` FROM read_issues
		 WHERE status = 'info_requested' AND is_concluded = false AND info_requested_at < $1
		 ORDER BY info_requested_at ASC`,
		cutoff,
	)
}

// ListCarrierFaultIssues returns issues classified as carrier fault (claim bookkeeping view)
func (rs *PostgresReadStore) ListCarrierFaultIssues() []*readmodel.IssueReadModel {
	return rs.queryIssues(`SELECT ` + issueColumns + ` FROM read_issues WHERE carrier_fault = 'carrier_fault' ORDER BY created_at DESC`)
}

// ---- issue messages ----

func (rs *PostgresReadStore) setIssueMessage(id string, m *readmodel.IssueMessageReadModel) {
	images, _ := json.Marshal(m.ImageURLs)
	_, err := rs.db.Exec(
		`INSERT INTO read_issue_messages (id, issue_id, sender, sender_id, body, image_urls, read_by_admin, read_by_customer, posted_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (id) DO UPDATE SET read_by_admin = $7, read_by_customer = $8`,
		id, m.IssueID, m.Sender, m.SenderID, m.Body, images, m.ReadByAdmin, m.ReadByCustomer, m.PostedAt,
	)
	if err != nil {
		log.Printf("[PostgresReadStore] Error setting issue message %s: %v", id, err)
	}
}

const issueMessageColumns = `id, issue_id, sender, sender_id, body, image_urls, read_by_admin, read_by_customer, posted_at`

func (rs *PostgresReadStore) scanIssueMessage(row interface{ Scan(...any) error }) (*readmodel.IssueMessageReadModel, error) {
	var m readmodel.IssueMessageReadModel
	var images []byte
	err := row.Scan(&m.ID, &m.IssueID, &m.Sender, &m.SenderID, &m.Body, &images, &m.ReadByAdmin, &m.ReadByCustomer, &m.PostedAt)
	if err != nil {
		return nil, err
	}
	_ = json.Unmarshal(images, &m.ImageURLs)
	return &m, nil
}

func (rs *PostgresReadStore) getIssueMessage(id string) (*readmodel.IssueMessageReadModel, bool, error) {
	row := rs.db.QueryRow(`SELECT `+issueMessageColumns+` FROM read_issue_messages WHERE id = $1`, id)
	m, err := rs.scanIssueMessage(row)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return m, true, nil
}

func (rs *PostgresReadStore) getAllIssueMessages() ([]any, error) {
	rows, err := rs.db.Query(`SELECT ` + issueMessageColumns + ` FROM read_issue_messages ORDER BY posted_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []any
	for rows.Next() {
		m, err := rs.scanIssueMessage(rows)
		if err != nil {
			continue
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

// ListMessagesByIssue returns an issue's message thread in posting order
func (rs *PostgresReadStore) ListMessagesByIssue(issueID string) []*readmodel.IssueMessageReadModel {
	rows, err := rs.db.Query(`SELECT `+issueMessageColumns+` FROM read_issue_messages WHERE issue_id = $1 ORDER BY posted_at ASC`, issueID)
	if err != nil {
		log.Printf("[PostgresReadStore] Error listing messages for issue %s: %v", issueID, err)
		return nil
	}
	defer rows.Close()

	var messages []*readmodel.IssueMessageReadModel
	for rows.Next() {
		m, err := rs.scanIssueMessage(rows)
		if err != nil {
			continue
		}
		messages = append(messages, m)
	}
	return messages
}

// MarkIssueMessagesRead marks all messages on an issue as read by one side
func (rs *PostgresReadStore) MarkIssueMessagesRead(issueID, side string) {
	var column string
	switch side {
	case "admin":
		column = "read_by_admin"
	case "customer":
		column = "read_by_customer"
	default:
		return
	}
	if _, err := rs.db.Exec(`UPDATE read_issue_messages SET `+column+` = true WHERE issue_id = $1`, issueID); err != nil {
		log.Printf("[PostgresReadStore] Error marking messages read for issue %s: %v", issueID, err)
	}
}

// ---- resolutions ----

func (rs *PostgresReadStore) setResolution(id string, r *readmodel.ResolutionReadModel) {
	_, err := rs.db.Exec(
		`INSERT INTO read_resolutions (id, order_id, type, refund_amount, reprint_order_id, note, status, created_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (id) DO UPDATE SET
		   order_id = $2, type = $3, refund_amount = $4, reprint_order_id = $5, note = $6, status = $7, updated_at = $10`,
		id, r.OrderID, r.Type, r.RefundAmount, r.ReprintOrderID, r.Note, r.Status, r.CreatedBy, r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		log.Printf("[PostgresReadStore] Error setting resolution %s: %v", id, err)
	}
}

const resolutionColumns = `id, order_id, type, refund_amount, reprint_order_id, note, status, created_by, created_at, updated_at`

func (rs *PostgresReadStore) scanResolution(row interface{ Scan(...any) error }) (*readmodel.ResolutionReadModel, error) {
	var r readmodel.ResolutionReadModel
	err := row.Scan(&r.ID, &r.OrderID, &r.Type, &r.RefundAmount, &r.ReprintOrderID, &r.Note, &r.Status, &r.CreatedBy, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (rs *PostgresReadStore) getResolution(id string) (*readmodel.ResolutionReadModel, bool, error) {
	row := rs.db.QueryRow(`SELECT `+resolutionColumns+` FROM read_resolutions WHERE id = $1`, id)
	r, err := rs.scanResolution(row)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return r, true, nil
}

func (rs *PostgresReadStore) getAllResolutions() ([]any, error) {
	rows, err := rs.db.Query(`SELECT ` + resolutionColumns + ` FROM read_resolutions ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []any
	for rows.Next() {
		r, err := rs.scanResolution(rows)
		if err != nil {
			continue
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

// ListResolutionsByOrder returns an order's resolution records
func (rs *PostgresReadStore) ListResolutionsByOrder(orderID string) []*readmodel.ResolutionReadModel {
	rows, err := rs.db.Query(`SELECT `+resolutionColumns+` FROM read_resolutions WHERE order_id = $1 ORDER BY created_at`, orderID)
	if err != nil {
		log.Printf("[PostgresReadStore] Error listing resolutions for order %s: %v", orderID, err)
		return nil
	}
	defer rows.Close()

	var resolutions []*readmodel.ResolutionReadModel
	for rows.Next() {
		r, err := rs.scanResolution(rows)
		if err != nil {
			continue
		}
		resolutions = append(resolutions, r)
	}
	return resolutions
}

// ---- expenses ----

func (rs *PostgresReadStore) setExpense(id string, e *readmodel.ExpenseReadModel) {
	_, err := rs.db.Exec(
		`INSERT INTO read_expenses (id, category, supplier, amount, currency, incurred_on, note, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (id) DO UPDATE SET
		   category = $2, supplier = $3, amount = $4, currency = $5, incurred_on = $6, note = $7, updated_at = $9`,
		id, e.Category, e.Supplier, e.Amount, e.Currency, e.IncurredOn, e.Note, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		log.Printf("[PostgresReadStore] Error setting expense %s: %v", id, err)
	}
}

const expenseColumns = `id, category, supplier, amount, currency, incurred_on, note, created_at, updated_at`

func (rs *PostgresReadStore) scanExpense(row interface{ Scan(...any) error }) (*readmodel.ExpenseReadModel, error) {
	var e readmodel.ExpenseReadModel
	err := row.Scan(&e.ID, &e.Category, &e.Supplier, &e.Amount, &e.Currency, &e.IncurredOn, &e.Note, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (rs *PostgresReadStore) getExpense(id string) (*readmodel.ExpenseReadModel, bool, error) {
	row := rs.db.QueryRow(`SELECT `+expenseColumns+` FROM read_expenses WHERE id = $1`, id)
	e, err := rs.scanExpense(row)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return e, true, nil
}

func (rs *PostgresReadStore) getAllExpenses() ([]any, error) {
	rows, err := rs.db.Query(`SELECT ` + expenseColumns + ` FROM read_expenses ORDER BY incurred_on DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []any
	for rows.Next() {
		e, err := rs.scanExpense(rows)
		if err != nil {
			continue
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

// CategoryTotal is one row of a monthly expense summary
type CategoryTotal struct {
	Category string `json:"category"`
	Total    int    `json:"total"`
}

// ExpenseSummaryByMonth returns per-category totals for a month ("2026-08")
func (rs *PostgresReadStore) ExpenseSummaryByMonth(month string) []CategoryTotal {
	rows, err := rs.db.Query(
		`SELECT category, SUM(amount) FROM read_expenses
		 WHERE incurred_on LIKE $1 || '-%'
		 GROUP BY category
		 ORDER BY category`,
		month,
	)
	if err != nil {
		log.Printf("[PostgresReadStore] Error summarizing expenses for %s: %v", month, err)
		return nil
	}
	defer rows.Close()

	var totals []CategoryTotal
	for rows.Next() {
		var t CategoryTotal
		if err := rows.Scan(&t.Category, &t.Total); err != nil {
			continue
		}
		totals = append(totals, t)
	}
	return totals
}

// ---- stock ----

func (rs *PostgresReadStore) setStock(id string, s *readmodel.StockReadModel) {
	_, err := rs.db.Exec(
		`INSERT INTO read_stock (id, product_id, variant_id, total_blanks, reserved_blanks, available)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE SET total_blanks = $4, reserved_blanks = $5, available = $6`,
		id, s.ProductID, s.VariantID, s.TotalBlanks, s.ReservedBlanks, s.Available,
	)
	if err != nil {
		log.Printf("[PostgresReadStore] Error setting stock %s: %v", id, err)
	}
}

func (rs *PostgresReadStore) getStock(id string) (*readmodel.StockReadModel, bool, error) {
	var s readmodel.StockReadModel
	err := rs.db.QueryRow(
		`SELECT id, product_id, variant_id, total_blanks, reserved_blanks, available FROM read_stock WHERE id = $1`, id,
	).Scan(&s.ID, &s.ProductID, &s.VariantID, &s.TotalBlanks, &s.ReservedBlanks, &s.Available)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &s, true, nil
}

func (rs *PostgresReadStore) getAllStock() ([]any, error) {
	rows, err := rs.db.Query(`SELECT id, product_id, variant_id, total_blanks, reserved_blanks, available FROM read_stock ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []any
	for rows.Next() {
		var s readmodel.StockReadModel
		if err := rows.Scan(&s.ID, &s.ProductID, &s.VariantID, &s.TotalBlanks, &s.ReservedBlanks, &s.Available); err != nil {
			continue
		}
		items = append(items, &s)
	}
	return items, rows.Err()
}

// ---- users ----

func (rs *PostgresReadStore) setUser(id string, u *readmodel.UserReadModel) {
	_, err := rs.db.Exec(
		`INSERT INTO read_users (id, email, password_hash, name, role, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (id) DO UPDATE SET
		   email = $2, password_hash = $3, name = $4, role = $5, is_active = $6, updated_at = $8`,
		id, u.Email, u.PasswordHash, u.Name, u.Role, u.IsActive, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		log.Printf("[PostgresReadStore] Error setting user %s: %v", id, err)
	}
}

const userColumns = `id, email, password_hash, name, role, is_active, created_at, updated_at`

func (rs *PostgresReadStore) scanUser(row interface{ Scan(...any) error }) (*readmodel.UserReadModel, error) {
	var u readmodel.UserReadModel
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (rs *PostgresReadStore) getUser(id string) (*readmodel.UserReadModel, bool, error) {
	row := rs.db.QueryRow(`SELECT `+userColumns+` FROM read_users WHERE id = $1`, id)
	u, err := rs.scanUser(row)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return u, true, nil
}

// GetUserByEmail looks up a user by email address
func (rs *PostgresReadStore) GetUserByEmail(email string) (*readmodel.UserReadModel, bool) {
	row := rs.db.QueryRow(`SELECT `+userColumns+` FROM read_users WHERE email = $1`, email)
	u, err := rs.scanUser(row)
	if err == sql.ErrNoRows {
		return nil, false
	}
	if err != nil {
		log.Printf("[PostgresReadStore] Error getting user by email: %v", err)
		return nil, false
	}
	return u, true
}

func (rs *PostgresReadStore) getAllUsers() ([]any, error) {
	rows, err := rs.db.Query(`SELECT ` + userColumns + ` FROM read_users ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []any
	for rows.Next() {
		u, err := rs.scanUser(rows)
		if err != nil {
			continue
		}
		items = append(items, u)
	}
	return items, rows.Err()
}

// ---- sessions ----

func (rs *PostgresReadStore) setSession(id string, s *readmodel.SessionReadModel) {
	_, err := rs.db.Exec(
		`INSERT INTO user_sessions (id, user_id, refresh_token_hash, expires_at, created_at, ip_address, user_agent)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO UPDATE SET refresh_token_hash = $3, expires_at = $4`,
		id, s.UserID, s.RefreshTokenHash, s.ExpiresAt, s.CreatedAt, s.IPAddress, s.UserAgent,
	)
	if err != nil {
		log.Printf("[PostgresReadStore] Error setting session %s: %v", id, err)
	}
}

const sessionColumns = `id, user_id, refresh_token_hash, expires_at, created_at, ip_address, user_agent`

func (rs *PostgresReadStore) getSession(id string) (*readmodel.SessionReadModel, bool, error) {
	var s readmodel.SessionReadModel
	err := rs.db.QueryRow(`SELECT `+sessionColumns+` FROM user_sessions WHERE id = $1`, id).
		Scan(&s.ID, &s.UserID, &s.RefreshTokenHash, &s.ExpiresAt, &s.CreatedAt, &s.IPAddress, &s.UserAgent)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &s, true, nil
}

// GetSessionByUserID returns the most recent session for a user
func (rs *PostgresReadStore) GetSessionByUserID(userID string) (*readmodel.SessionReadModel, bool) {
	var s readmodel.SessionReadModel
	err := rs.db.QueryRow(
		`SELECT `+sessionColumns+` FROM user_sessions WHERE user_id = $1 ORDER BY created_at DESC LIMIT 1`, userID,
	).Scan(&s.ID, &s.UserID, &s.RefreshTokenHash, &s.ExpiresAt, &s.CreatedAt, &s.IPAddress, &s.UserAgent)
	if err != nil {
		return nil, false
	}
	return &s, true
}

// DeleteSessionsByUserID removes all sessions for a user
func (rs *PostgresReadStore) DeleteSessionsByUserID(userID string) {
	if _, err := rs.db.Exec(`DELETE FROM user_sessions WHERE user_id = $1`, userID); err != nil {
		log.Printf("[PostgresReadStore] Error deleting sessions for user %s: %v", userID, err)
	}
}

// DeleteExpiredSessions removes sessions past their expiry
func (rs *PostgresReadStore) DeleteExpiredSessions() {
	if _, err := rs.db.Exec(`DELETE FROM user_sessions WHERE expires_at < NOW()`); err != nil {
		log.Printf("[PostgresReadStore] Error deleting expired sessions: %v", err)
	}
}

func (rs *PostgresReadStore) getAllSessions() ([]any, error) {
	rows, err := rs.db.Query(`SELECT ` + sessionColumns + ` FROM user_sessions`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []any
	for rows.Next() {
		var s readmodel.SessionReadModel
		if err := rows.Scan(&s.ID, &s.UserID, &s.RefreshTokenHash, &s.ExpiresAt, &s.CreatedAt, &s.IPAddress, &s.UserAgent); err != nil {
			continue
		}
		items = append(items, &s)
	}
	return items, rows.Err()
}
