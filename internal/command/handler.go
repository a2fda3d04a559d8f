package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/printshop/internal/domain/cart"
	"github.com/example/printshop/internal/domain/design"
	"github.com/example/printshop/internal/domain/expense"
	"github.com/example/printshop/internal/domain/issue"
	"github.com/example/printshop/internal/domain/order"
	"github.com/example/printshop/internal/domain/product"
	"github.com/example/printshop/internal/domain/resolution"
	"github.com/example/printshop/internal/domain/stock"
	"github.com/example/printshop/internal/infrastructure/store"
	"github.com/example/printshop/internal/readmodel"
)

var (
	ErrNotOrderOwner   = errors.New("order does not belong to this user")
	ErrNotDesignOwner  = errors.New("design does not belong to this user")
	ErrItemNotInOrder  = errors.New("order item not found in order")
	ErrProductInactive = errors.New("product is not available")
	ErrVariantNotFound = errors.New("product variant not found")
)

type Handler struct {
	productSvc    *product.Service
	designSvc     *design.Service
	cartSvc       *cart.Service
	orderSvc      *order.Service
	issueSvc      *issue.Service
	resolutionSvc *resolution.Service
	stockSvc      *stock.Service
	expenseSvc    *expense.Service
	readStore     store.ReadStoreInterface
}

func NewHandler(
	productSvc *product.Service,
	designSvc *design.Service,
	cartSvc *cart.Service,
	orderSvc *order.Service,
	issueSvc *issue.Service,
	resolutionSvc *resolution.Service,
	stockSvc *stock.Service,
	expenseSvc *expense.Service,
	readStore store.ReadStoreInterface,
) *Handler {
	return &Handler{
		productSvc:    productSvc,
		designSvc:     designSvc,
		cartSvc:       cartSvc,
		orderSvc:      orderSvc,
		issueSvc:      issueSvc,
		resolutionSvc: resolutionSvc,
		stockSvc:      stockSvc,
		expenseSvc:    expenseSvc,
		readStore:     readStore,
	}
}

// ============================================
// Catalog
// ============================================

// CreateProduct creates a new product (async projection - updates via Kafka)
func (h *Handler) CreateProduct(ctx context.Context, cmd CreateProduct) (*product.Product, error) {
	return h.productSvc.Create(ctx, cmd.Name, cmd.Description, cmd.Category, cmd.BasePrice, cmd.PrintAreas, cmd.Variants)
}

func (h *Handler) UpdateProduct(ctx context.Context, cmd UpdateProduct) error {
	return h.productSvc.Update(ctx, cmd.ProductID, cmd.Name, cmd.Description, cmd.Category, cmd.BasePrice, cmd.PrintAreas)
}

func (h *Handler) DeactivateProduct(ctx context.Context, cmd DeactivateProduct) error {
	return h.productSvc.Deactivate(ctx, cmd.ProductID)
}

func (h *Handler) AddVariant(ctx context.Context, cmd AddVariant) (*product.Variant, error) {
	return h.productSvc.AddVariant(ctx, cmd.ProductID, cmd.Variant)
}

func (h *Handler) RemoveVariant(ctx context.Context, cmd RemoveVariant) error {
	return h.productSvc.RemoveVariant(ctx, cmd.ProductID, cmd.VariantID)
}

func (h *Handler) UpdateProductImage(ctx context.Context, cmd UpdateProductImage) error {
	return h.productSvc.UpdateImage(ctx, cmd.ProductID, cmd.ImageURL)
}

func (h *Handler) UploadDesign(ctx context.Context, cmd UploadDesign) (*design.Design, error) {
	return h.designSvc.Upload(ctx, cmd.UserID, cmd.Name, cmd.ImageURL)
}

func (h *Handler) RenameDesign(ctx context.Context, cmd RenameDesign) error {
	if err := h.checkDesignOwner(cmd.DesignID, cmd.UserID); err != nil {
		return err
	}
	return h.designSvc.Rename(ctx, cmd.DesignID, cmd.Name)
}

func (h *Handler) DeleteDesign(ctx context.Context, cmd DeleteDesign) error {
	if err := h.checkDesignOwner(cmd.DesignID, cmd.UserID); err != nil {
		return err
	}
	return h.designSvc.Delete(ctx, cmd.DesignID)
}

func (h *Handler) checkDesignOwner(designID, userID string) error {
	d, ok, err := h.readStore.Get("designs", designID)
	if err != nil {
		return err
	}
	if !ok {
		return design.ErrDesignNotFound
	}
	if d.(*readmodel.DesignReadModel).UserID != userID {
		return ErrNotDesignOwner
	}
	return nil
}

// ============================================
// Cart
// ============================================

// resolveUnitPrice prices a product variant from the read model:
// base price plus the variant's price delta.
func (h *Handler) resolveUnitPrice(productID, variantID string) (int, error) {
	p, ok, err := h.readStore.Get("products", productID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, product.ErrProductNotFound
	}
	prod := p.(*readmodel.ProductReadModel)
	if !prod.Active {
		return 0, ErrProductInactive
	}

	if variantID == "" {
		return prod.BasePrice, nil
	}
	for _, v := range prod.Variants {
		if v.VariantID == variantID {
			return prod.BasePrice + v.PriceDelta, nil
		}
	}
	return 0, ErrVariantNotFound
}

// AddCartLine adds a line to the cart and returns it with its
// server-assigned line ID
func (h *Handler) AddCartLine(ctx context.Context, cmd AddCartLine) (*cart.Line, error) {
	unitPrice, err := h.resolveUnitPrice(cmd.ProductID, cmd.VariantID)
	if err != nil {
		return nil, err
	}
	return h.cartSvc.AddLine(ctx, cmd.UserID, cmd.ProductID, cmd.VariantID, cmd.DesignID, cmd.Quantity, unitPrice)
}

func (h *Handler) ChangeCartLineQuantity(ctx context.Context, cmd ChangeCartLineQuantity) error {
	return h.cartSvc.ChangeQuantity(ctx, cmd.UserID, cmd.LineID, cmd.Quantity)
}

func (h *Handler) RemoveCartLine(ctx context.Context, cmd RemoveCartLine) error {
	return h.cartSvc.RemoveLine(ctx, cmd.UserID, cmd.LineID)
}

func (h *Handler) ClearCart(ctx context.Context, cmd ClearCart) error {
	return h.cartSvc.Clear(ctx, cmd.UserID)
}

// SyncCart reconciles the client's desired cart state. Unit prices are
// always resolved server-side; the client never prices its own lines.
func (h *Handler) SyncCart(ctx context.Context, cmd SyncCart) (*cart.SyncResult, error) {
	lines := make([]cart.DesiredLine, len(cmd.Lines))
	for idx, d := range cmd.Lines {
		unitPrice, err := h.resolveUnitPrice(d.ProductID, d.VariantID)
		if err != nil {
			return nil, err
		}
		d.UnitPrice = unitPrice
		lines[idx] = d
	}
	return h.cartSvc.Sync(ctx, cmd.UserID, cmd.BaseVersion, lines)
}

// ============================================
// Orders
// ============================================

// PlaceOrder creates an order from the user's cart, reserving blanks
// for every line. Reservations already made are released again if a
// later one fails (compensating events).
func (h *Handler) PlaceOrder(ctx context.Context, cmd PlaceOrder) (*order.Order, error) {
	c, err := h.cartSvc.Load(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}
	if len(c.Lines) == 0 {
		return nil, order.ErrEmptyOrder
	}

	var items []order.OrderItem
	for _, line := range c.Lines {
		items = append(items, order.OrderItem{
			ProductID: line.ProductID,
			VariantID: line.VariantID,
			DesignID:  line.DesignID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		})
	}

	// Place order (emits OrderPlaced event)
	o, err := h.orderSvc.Place(ctx, cmd.UserID, items)
	if err != nil {
		return nil, err
	}

	// Reserve blanks for each item (emits BlanksReserved events)
	if err := h.reserveOrderStock(ctx, o); err != nil {
		return nil, err
	}

	// Clear cart (emits CartCleared event)
	if err := h.cartSvc.Clear(ctx, cmd.UserID); err != nil {
		return nil, err
	}

	return o, nil
}

func (h *Handler) reserveOrderStock(ctx context.Context, o *order.Order) error {
	for idx, item := range o.Items {
		err := h.stockSvc.Reserve(ctx, item.ProductID, item.VariantID, o.ID, item.Quantity)
		if err == nil {
			continue
		}
		// Roll back: release what was reserved, cancel the order
		for _, reserved := range o.Items[:idx] {
			if relErr := h.stockSvc.Release(ctx, reserved.ProductID, reserved.VariantID, o.ID, reserved.Quantity); relErr != nil {
				return fmt.Errorf("reserve failed (%w), release failed: %v", err, relErr)
			}
		}
		if cancelErr := h.orderSvc.Cancel(ctx, o.ID, "stock reservation failed"); cancelErr != nil {
			return fmt.Errorf("reserve failed (%w), cancel failed: %v", err, cancelErr)
		}
		return err
	}
	return nil
}

func (h *Handler) PayOrder(ctx context.Context, cmd PayOrder) error {
	return h.orderSvc.Pay(ctx, cmd.OrderID)
}

func (h *Handler) StartProduction(ctx context.Context, cmd StartProduction) error {
	return h.orderSvc.StartProduction(ctx, cmd.OrderID)
}

// ShipOrder ships the order and consumes the reserved blanks
func (h *Handler) ShipOrder(ctx context.Context, cmd ShipOrder) error {
	o, err := h.orderSvc.Load(ctx, cmd.OrderID)
	if err != nil {
		return err
	}

	if err := h.orderSvc.Ship(ctx, cmd.OrderID, cmd.Carrier, cmd.TrackingNumber); err != nil {
		return err
	}

	for _, item := range o.Items {
		if err := h.stockSvc.Consume(ctx, item.ProductID, item.VariantID, o.ID, item.Quantity); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) DeliverOrder(ctx context.Context, cmd DeliverOrder) error {
	return h.orderSvc.Deliver(ctx, cmd.OrderID)
}

// CancelOrder cancels an order and releases its reserved blanks
func (h *Handler) CancelOrder(ctx context.Context, cmd CancelOrder) error {
	o, err := h.orderSvc.Load(ctx, cmd.OrderID)
	if err != nil {
		return err
	}

	// Cancel first so a non-cancellable order releases nothing
	if err := h.orderSvc.Cancel(ctx, cmd.OrderID, cmd.Reason); err != nil {
		return err
	}

	for _, item := range o.Items {
		if err := h.stockSvc.Release(ctx, item.ProductID, item.VariantID, o.ID, item.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// ============================================
// Issues
// ============================================

// SubmitIssue reports a problem with an order item. The order must
// exist, belong to the reporting user, and contain the item.
func (h *Handler) SubmitIssue(ctx context.Context, cmd SubmitIssue) (*issue.Issue, error) {
	o, ok, err := h.readStore.Get("orders", cmd.OrderID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	orderModel := o.(*readmodel.OrderReadModel)
	if orderModel.UserID != cmd.UserID {
		return nil, ErrNotOrderOwner
	}

	found := false
	for _, item := range orderModel.Items {
		if item.ItemID == cmd.OrderItemID {
			found = true
			break
		}
	}
	if !found {
		return nil, ErrItemNotInOrder
	}

	return h.issueSvc.Submit(ctx, cmd.UserID, cmd.OrderID, cmd.OrderItemID, cmd.Reason, cmd.Description, cmd.PhotoURLs)
}

func (h *Handler) RequestIssueInfo(ctx context.Context, cmd RequestIssueInfo) error {
	return h.issueSvc.RequestInfo(ctx, cmd.IssueID, cmd.AdminID, cmd.Note)
}

// ApproveReprint approves an issue with a replacement print run: a
// zero-total reprint order is placed for the affected item and its
// blanks are reserved before the issue itself is approved.
func (h *Handler) ApproveReprint(ctx context.Context, cmd ApproveReprint) (*order.Order, error) {
	iss, err := h.issueSvc.Load(ctx, cmd.IssueID)
	if err != nil {
		return nil, err
	}
	if iss.IsConcluded {
		return nil, issue.ErrIssueConcluded
	}
	if !iss.CanTransitionTo(issue.StatusApprovedReprint) {
		return nil, fmt.Errorf("%w: cannot approve reprint from %s", issue.ErrInvalidTransition, iss.Status)
	}

	original, err := h.orderSvc.Load(ctx, iss.OrderID)
	if err != nil {
		return nil, err
	}
	var reprintItems []order.OrderItem
	for _, item := range original.Items {
		if item.ItemID == iss.OrderItemID {
			item.ItemID = "" // reprint item gets its own ID
			reprintItems = append(reprintItems, item)
			break
		}
	}
	if len(reprintItems) == 0 {
		return nil, ErrItemNotInOrder
	}

	reprint, err := h.orderSvc.PlaceReprint(ctx, iss.UserID, reprintItems, cmd.IssueID)
	if err != nil {
		return nil, err
	}
	if err := h.reserveOrderStock(ctx, reprint); err != nil {
		return nil, err
	}

	if err := h.issueSvc.ApproveReprint(ctx, cmd.IssueID, cmd.AdminID, reprint.ID); err != nil {
		return nil, err
	}
	return reprint, nil
}

func (h *Handler) ApproveRefund(ctx context.Context, cmd ApproveRefund) error {
	return h.issueSvc.ApproveRefund(ctx, cmd.IssueID, cmd.AdminID, cmd.RefundAmount)
}

func (h *Handler) StartIssueProcessing(ctx context.Context, cmd StartIssueProcessing) error {
	return h.issueSvc.StartProcessing(ctx, cmd.IssueID)
}

func (h *Handler) CompleteIssue(ctx context.Context, cmd CompleteIssue) error {
	return h.issueSvc.Complete(ctx, cmd.IssueID)
}

func (h *Handler) RejectIssue(ctx context.Context, cmd RejectIssue) error {
	return h.issueSvc.Reject(ctx, cmd.IssueID, cmd.AdminID, cmd.Reason)
}

func (h *Handler) CloseIssue(ctx context.Context, cmd CloseIssue) error {
	return h.issueSvc.Close(ctx, cmd.IssueID, cmd.ClosedBy, cmd.Reason)
}

func (h *Handler) ConcludeIssue(ctx context.Context, cmd ConcludeIssue) error {
	return h.issueSvc.Conclude(ctx, cmd.IssueID, cmd.ConcludedBy, cmd.Reason)
}

func (h *Handler) ReopenIssue(ctx context.Context, cmd ReopenIssue) error {
	return h.issueSvc.Reopen(ctx, cmd.IssueID, cmd.AdminID)
}

func (h *Handler) ClassifyCarrierFault(ctx context.Context, cmd ClassifyCarrierFault) error {
	return h.issueSvc.ClassifyCarrierFault(ctx, cmd.IssueID, cmd.AdminID, issue.CarrierFault(cmd.Fault))
}

func (h *Handler) FileCarrierClaim(ctx context.Context, cmd FileCarrierClaim) error {
	return h.issueSvc.FileClaim(ctx, cmd.IssueID, cmd.Reference)
}

func (h *Handler) UpdateCarrierClaim(ctx context.Context, cmd UpdateCarrierClaim) error {
	return h.issueSvc.UpdateClaimStatus(ctx, cmd.IssueID, issue.ClaimStatus(cmd.Status), cmd.PayoutAmount)
}

func (h *Handler) PostIssueMessage(ctx context.Context, cmd PostIssueMessage) (*issue.Message, error) {
	return h.issueSvc.PostMessage(ctx, cmd.IssueID, cmd.Sender, cmd.SenderID, cmd.Body, cmd.ImageURLs)
}

func (h *Handler) MarkIssueMessagesRead(ctx context.Context, cmd MarkIssueMessagesRead) error {
	return h.issueSvc.MarkMessagesRead(ctx, cmd.IssueID, cmd.Side)
}

// ============================================
// Resolutions
// ============================================

func (h *Handler) CreateResolution(ctx context.Context, cmd CreateResolution) (*resolution.Resolution, error) {
	if _, ok, err := h.readStore.Get("orders", cmd.OrderID); err != nil {
		return nil, err
	} else if !ok {
		return nil, order.ErrOrderNotFound
	}
	return h.resolutionSvc.Create(ctx, cmd.OrderID, cmd.Type, cmd.RefundAmount, cmd.ReprintOrderID, cmd.Note, cmd.CreatedBy)
}

func (h *Handler) CompleteResolution(ctx context.Context, cmd CompleteResolution) error {
	return h.resolutionSvc.Complete(ctx, cmd.ResolutionID)
}

func (h *Handler) CancelResolution(ctx context.Context, cmd CancelResolution) error {
	return h.resolutionSvc.Cancel(ctx, cmd.ResolutionID, cmd.Reason)
}

// ============================================
// Stock & Accounting
// ============================================

func (h *Handler) ReceiveBlanks(ctx context.Context, cmd ReceiveBlanks) error {
	return h.stockSvc.Receive(ctx, cmd.ProductID, cmd.VariantID, cmd.Quantity, cmd.Supplier)
}

func (h *Handler) RecordExpense(ctx context.Context, cmd RecordExpense) (*expense.Expense, error) {
	return h.expenseSvc.Record(ctx, cmd.Category, cmd.Supplier, cmd.Amount, cmd.Currency, cmd.IncurredOn, cmd.Note)
}

func (h *Handler) UpdateExpense(ctx context.Context, cmd UpdateExpense) error {
	return h.expenseSvc.Update(ctx, cmd.ExpenseID, cmd.Category, cmd.Supplier, cmd.Amount, cmd.Currency, cmd.IncurredOn, cmd.Note)
}

func (h *Handler) DeleteExpense(ctx context.Context, cmd DeleteExpense) error {
	return h.expenseSvc.Delete(ctx, cmd.ExpenseID)
}
