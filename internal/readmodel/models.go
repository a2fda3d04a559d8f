package readmodel

import "time"

// ProductReadModel is the read model for catalog products
type ProductReadModel struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Category    string             `json:"category"`
	BasePrice   int                `json:"base_price"`
	PrintAreas  []string           `json:"print_areas,omitempty"`
	ImageURL    string             `json:"image_url,omitempty"`
	Variants    []VariantReadModel `json:"variants"`
	Active      bool               `json:"active"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// VariantReadModel is one size/color combination of a product
type VariantReadModel struct {
	VariantID  string `json:"variant_id"`
	Size       string `json:"size"`
	Color      string `json:"color"`
	PriceDelta int    `json:"price_delta"`
}

// DesignReadModel is the read model for customer-uploaded artwork
type DesignReadModel struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	ImageURL  string    `json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CartLineReadModel is one line of a cart
type CartLineReadModel struct {
	LineID      string `json:"line_id"`
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	VariantID   string `json:"variant_id"`
	DesignID    string `json:"design_id,omitempty"`
	Quantity    int    `json:"quantity"`
	UnitPrice   int    `json:"unit_price"`
}

// CartReadModel is the read model for the shopping cart. Version lets clients
// detect that their optimistic local state is stale.
type CartReadModel struct {
	ID      string              `json:"id"`
	UserID  string              `json:"user_id"`
	Lines   []CartLineReadModel `json:"lines"`
	Total   int                 `json:"total"`
	Version int                 `json:"version"`
}

// OrderItemReadModel is one item of an order
type OrderItemReadModel struct {
	ItemID    string `json:"item_id"`
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id"`
	DesignID  string `json:"design_id,omitempty"`
	Quantity  int    `json:"quantity"`
	UnitPrice int    `json:"unit_price"`
}

// OrderReadModel is the read model for orders
type OrderReadModel struct {
	ID               string               `json:"id"`
	UserID           string               `json:"user_id"`
	Items            []OrderItemReadModel `json:"items"`
	Total            int                  `json:"total"`
	Status           string               `json:"status"`
	TrackingNumber   string               `json:"tracking_number,omitempty"`
	Carrier          string               `json:"carrier,omitempty"`
	ReprintOfIssueID string               `json:"reprint_of_issue_id,omitempty"`
	CreatedAt        time.Time            `json:"created_at"`
	UpdatedAt        time.Time            `json:"updated_at"`
}

// IssueReadModel is the read model for reported fulfillment issues
type IssueReadModel struct {
	ID                string     `json:"id"`
	OrderID           string     `json:"order_id"`
	OrderItemID       string     `json:"order_item_id"`
	UserID            string     `json:"user_id"`
	Reason            string     `json:"reason"`
	Description       string     `json:"description"`
	PhotoURLs         []string   `json:"photo_urls,omitempty"`
	Status            string     `json:"status"`
	CarrierFault      string     `json:"carrier_fault"`
	ClaimStatus       string     `json:"claim_status"`
	ClaimReference    string     `json:"claim_reference,omitempty"`
	ClaimPayoutAmount int        `json:"claim_payout_amount,omitempty"`
	ResolvedType      string     `json:"resolved_type,omitempty"`
	ReprintOrderID    string     `json:"reprint_order_id,omitempty"`
	RefundAmount      int        `json:"refund_amount,omitempty"`
	IsConcluded       bool       `json:"is_concluded"`
	ConcludedBy       string     `json:"concluded_by,omitempty"`
	ConcludedReason   string     `json:"concluded_reason,omitempty"`
	ConcludedAt       *time.Time `json:"concluded_at,omitempty"`
	MessageCount      int        `json:"message_count"`
	UnreadByAdmin     int        `json:"unread_by_admin"`
	UnreadByCustomer  int        `json:"unread_by_customer"`
	InfoRequestedAt   *time.Time `json:"info_requested_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// IssueMessageReadModel is one message of an issue thread
type IssueMessageReadModel struct {
	ID             string    `json:"id"`
	IssueID        string    `json:"issue_id"`
	Sender         string    `json:"sender"` // "customer" or "admin"
	SenderID       string    `json:"sender_id"`
	Body           string    `json:"body"`
	ImageURLs      []string  `json:"image_urls,omitempty"`
	ReadByAdmin    bool      `json:"read_by_admin"`
	ReadByCustomer bool      `json:"read_by_customer"`
	PostedAt       time.Time `json:"posted_at"`
}

// ResolutionReadModel is the read model for order-level reprint/refund records
type ResolutionReadModel struct {
	ID             string    `json:"id"`
	OrderID        string    `json:"order_id"`
	Type           string    `json:"type"` // "reprint" or "refund"
	RefundAmount   int       `json:"refund_amount,omitempty"`
	ReprintOrderID string    `json:"reprint_order_id,omitempty"`
	Note           string    `json:"note,omitempty"`
	Status         string    `json:"status"`
	CreatedBy      string    `json:"created_by"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ExpenseReadModel is the read model for accounting expenses
type ExpenseReadModel struct {
	ID         string    `json:"id"`
	Category   string    `json:"category"`
	Supplier   string    `json:"supplier,omitempty"`
	Amount     int       `json:"amount"` // cents
	Currency   string    `json:"currency"`
	IncurredOn string    `json:"incurred_on"` // YYYY-MM-DD
	Note       string    `json:"note,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// StockReadModel tracks blank garment stock per product variant
type StockReadModel struct {
	ID             string `json:"id"` // productID:variantID
	ProductID      string `json:"product_id"`
	VariantID      string `json:"variant_id"`
	TotalBlanks    int    `json:"total_blanks"`
	ReservedBlanks int    `json:"reserved_blanks"`
	Available      int    `json:"available"`
}

// UserReadModel is the read model for users
type UserReadModel struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose in JSON
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SessionReadModel is the read model for user sessions
type SessionReadModel struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	RefreshTokenHash string    `json:"-"`
	ExpiresAt        time.Time `json:"expires_at"`
	CreatedAt        time.Time `json:"created_at"`
	IPAddress        string    `json:"ip_address"`
	UserAgent        string    `json:"user_agent"`
}
