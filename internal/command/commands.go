package command

import (
	"github.com/example/printshop/internal/domain/cart"
	"github.com/example/printshop/internal/domain/product"
)

// Product Commands
type CreateProduct struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Category    string            `json:"category"`
	BasePrice   int               `json:"base_price"`
	PrintAreas  []string          `json:"print_areas"`
	Variants    []product.Variant `json:"variants"`
}

type UpdateProduct struct {
	ProductID   string   `json:"product_id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	BasePrice   int      `json:"base_price"`
	PrintAreas  []string `json:"print_areas"`
}

type DeactivateProduct struct {
	ProductID string `json:"product_id"`
}

type AddVariant struct {
	ProductID string          `json:"product_id"`
	Variant   product.Variant `json:"variant"`
}

type RemoveVariant struct {
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id"`
}

type UpdateProductImage struct {
	ProductID string `json:"product_id"`
	ImageURL  string `json:"image_url"`
}

// Design Commands
type UploadDesign struct {
	UserID   string `json:"user_id"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url"`
}

type RenameDesign struct {
	DesignID string `json:"design_id"`
	UserID   string `json:"user_id"`
	Name     string `json:"name"`
}

type DeleteDesign struct {
	DesignID string `json:"design_id"`
	UserID   string `json:"user_id"`
}

// Cart Commands
type AddCartLine struct {
	UserID    string `json:"user_id"`
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id"`
	DesignID  string `json:"design_id"`
	Quantity  int    `json:"quantity"`
}

type ChangeCartLineQuantity struct {
	UserID   string `json:"user_id"`
	LineID   string `json:"line_id"`
	Quantity int    `json:"quantity"`
}

type RemoveCartLine struct {
	UserID string `json:"user_id"`
	LineID string `json:"line_id"`
}

type ClearCart struct {
	UserID string `json:"user_id"`
}

type SyncCart struct {
	UserID      string             `json:"user_id"`
	BaseVersion int                `json:"base_version"`
	Lines       []cart.DesiredLine `json:"lines"`
}

// Order Commands
type PlaceOrder struct {
	UserID string `json:"user_id"`
}

type PayOrder struct {
	OrderID string `json:"order_id"`
}

type StartProduction struct {
	OrderID string `json:"order_id"`
}

type ShipOrder struct {
	OrderID        string `json:"order_id"`
	Carrier        string `json:"carrier"`
	TrackingNumber string `json:"tracking_number"`
}

type DeliverOrder struct {
	OrderID string `json:"order_id"`
}

type CancelOrder struct {
	OrderID string `json:"order_id"`
	Reason  string `json:"reason"`
}

// Issue Commands
type SubmitIssue struct {
	UserID      string   `json:"user_id"`
	OrderID     string   `json:"order_id"`
	OrderItemID string   `json:"order_item_id"`
	Reason      string   `json:"reason"`
	Description string   `json:"description"`
	PhotoURLs   []string `json:"photo_urls"`
}

type RequestIssueInfo struct {
	IssueID string `json:"issue_id"`
	AdminID string `json:"admin_id"`
	Note    string `json:"note"`
}

type ApproveReprint struct {
	IssueID string `json:"issue_id"`
	AdminID string `json:"admin_id"`
}

type ApproveRefund struct {
	IssueID      string `json:"issue_id"`
	AdminID      string `json:"admin_id"`
	RefundAmount int    `json:"refund_amount"`
}

type StartIssueProcessing struct {
	IssueID string `json:"issue_id"`
}

type CompleteIssue struct {
	IssueID string `json:"issue_id"`
}

type RejectIssue struct {
	IssueID string `json:"issue_id"`
	AdminID string `json:"admin_id"`
	Reason  string `json:"reason"`
}

type CloseIssue struct {
	IssueID  string `json:"issue_id"`
	ClosedBy string `json:"closed_by"`
	Reason   string `json:"reason"`
}

type ConcludeIssue struct {
	IssueID     string `json:"issue_id"`
	ConcludedBy string `json:"concluded_by"`
	Reason      string `json:"reason"`
}

type ReopenIssue struct {
	IssueID string `json:"issue_id"`
	AdminID string `json:"admin_id"`
}

type ClassifyCarrierFault struct {
	IssueID string `json:"issue_id"`
	AdminID string `json:"admin_id"`
	Fault   string `json:"fault"`
}

type FileCarrierClaim struct {
	IssueID   string `json:"issue_id"`
	Reference string `json:"reference"`
}

type UpdateCarrierClaim struct {
	IssueID      string `json:"issue_id"`
	Status       string `json:"status"`
	PayoutAmount int    `json:"payout_amount"`
}

type PostIssueMessage struct {
	IssueID   string   `json:"issue_id"`
	Sender    string   `json:"sender"`
	SenderID  string   `json:"sender_id"`
	Body      string   `json:"body"`
	ImageURLs []string `json:"image_urls"`
}

type MarkIssueMessagesRead struct {
	IssueID string `json:"issue_id"`
	Side    string `json:"side"`
}

// Resolution Commands
type CreateResolution struct {
	OrderID        string `json:"order_id"`
	Type           string `json:"type"`
	RefundAmount   int    `json:"refund_amount"`
	ReprintOrderID string `json:"reprint_order_id"`
	Note           string `json:"note"`
	CreatedBy      string `json:"created_by"`
}

type CompleteResolution struct {
	ResolutionID string `json:"resolution_id"`
}

type CancelResolution struct {
	ResolutionID string `json:"resolution_id"`
	Reason       string `json:"reason"`
}

// Stock Commands
type ReceiveBlanks struct {
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id"`
	Quantity  int    `json:"quantity"`
	Supplier  string `json:"supplier"`
}

// Expense Commands
type RecordExpense struct {
	Category   string `json:"category"`
	Supplier   string `json:"supplier"`
	Amount     int    `json:"amount"`
	Currency   string `json:"currency"`
	IncurredOn string `json:"incurred_on"`
	Note       string `json:"note"`
}

type UpdateExpense struct {
	ExpenseID  string `json:"expense_id"`
	Category   string `json:"category"`
	Supplier   string `json:"supplier"`
	Amount     int    `json:"amount"`
	Currency   string `json:"currency"`
	IncurredOn string `json:"incurred_on"`
	Note       string `json:"note"`
}

type DeleteExpense struct {
	ExpenseID string `json:"expense_id"`
}
