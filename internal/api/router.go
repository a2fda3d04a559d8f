package api

import (
	"log"
	"net/http"
	"strings"

	"github.com/example/printshop/internal/api/middleware"
	"github.com/example/printshop/internal/auth"
)

type RouterConfig struct {
	Handlers     *Handlers
	AuthHandlers *AuthHandlers
	JWTService   *auth.JWTService
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	h := cfg.Handlers
	authRequired := middleware.AuthMiddleware(cfg.JWTService)
	authOptional := middleware.OptionalAuthMiddleware(cfg.JWTService)
	adminOnly := func(fn http.HandlerFunc) http.Handler {
		return authRequired(middleware.RequireRole("admin")(fn))
	}
	authed := func(fn http.HandlerFunc) http.Handler {
		return authRequired(fn)
	}

	// Auth
	mux.HandleFunc("/auth/register", methodHandler(http.MethodPost, cfg.AuthHandlers.Register))
	mux.HandleFunc("/auth/login", methodHandler(http.MethodPost, cfg.AuthHandlers.Login))
	mux.HandleFunc("/auth/refresh", methodHandler(http.MethodPost, cfg.AuthHandlers.Refresh))
	mux.Handle("/auth/logout", authed(methodHandler(http.MethodPost, cfg.AuthHandlers.Logout)))
	mux.Handle("/auth/me", authed(methodHandler(http.MethodGet, cfg.AuthHandlers.Me)))
	mux.Handle("/auth/password", authed(methodHandler(http.MethodPost, cfg.AuthHandlers.ChangePassword)))

	// Products (public browse; admins see inactive products too)
	mux.Handle("/products", authOptional(methodHandler(http.MethodGet, h.GetProducts)))
	mux.Handle("/products/", authOptional(methodHandler(http.MethodGet, h.GetProduct)))

	// Designs
	mux.Handle("/designs", authed(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			h.GetDesigns(w, r)
		case http.MethodPost:
			h.UploadDesign(w, r)
		default:
			methodNotAllowed(w)
		}
	}))
	mux.Handle("/designs/", authed(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPut:
			h.RenameDesign(w, r)
		case http.MethodDelete:
			h.DeleteDesign(w, r)
		default:
			methodNotAllowed(w)
		}
	}))

	// Cart
	mux.Handle("/cart", authed(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			h.GetCart(w, r)
		case http.MethodDelete:
			h.ClearCart(w, r)
		default:
			methodNotAllowed(w)
		}
	}))
	mux.Handle("/cart/sync", authed(methodHandler(http.MethodPost, h.SyncCart)))
	mux.Handle("/cart/lines", authed(methodHandler(http.MethodPost, h.AddCartLine)))
	mux.Handle("/cart/lines/", authed(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPut:
			h.ChangeCartLineQuantity(w, r)
		case http.MethodDelete:
			h.RemoveCartLine(w, r)
		default:
			methodNotAllowed(w)
		}
	}))

	// Orders (customer)
	mux.Handle("/orders", authed(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			h.GetOrders(w, r)
		case http.MethodPost:
			h.PlaceOrder(w, r)
		default:
			methodNotAllowed(w)
		}
	}))
	mux.Handle("/orders/", authed(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/cancel") && r.Method == http.MethodPost:
			h.CancelOrder(w, r)
		case r.Method == http.MethodGet:
			h.GetOrder(w, r)
		default:
			methodNotAllowed(w)
		}
	}))

	// Issues (customer + shared detail/thread)
	mux.Handle("/issues", authed(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			h.GetIssues(w, r)
		case http.MethodPost:
			h.SubmitIssue(w, r)
		default:
			methodNotAllowed(w)
		}
	}))
	mux.Handle("/issues/", authed(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		switch {
		case strings.HasSuffix(path, "/messages/read") && r.Method == http.MethodPost:
			h.MarkIssueMessagesRead(w, r)
		case strings.HasSuffix(path, "/messages") && r.Method == http.MethodGet:
			h.GetIssueMessages(w, r)
		case strings.HasSuffix(path, "/messages") && r.Method == http.MethodPost:
			h.PostIssueMessage(w, r)
		case r.Method == http.MethodGet:
			h.GetIssue(w, r)
		default:
			methodNotAllowed(w)
		}
	}))

	// Admin: issue review desk
	mux.Handle("/admin/issues", adminOnly(methodHandler(http.MethodGet, h.GetAllIssues)))
	mux.Handle("/admin/issues/", adminOnly(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		switch {
		case strings.HasSuffix(r.URL.Path, "/info-request"):
			h.RequestIssueInfo(w, r)
		case strings.HasSuffix(r.URL.Path, "/approve-reprint"):
			h.ApproveReprint(w, r)
		case strings.HasSuffix(r.URL.Path, "/approve-refund"):
			h.ApproveRefund(w, r)
		case strings.HasSuffix(r.URL.Path, "/process"):
			h.StartIssueProcessing(w, r)
		case strings.HasSuffix(r.URL.Path, "/complete"):
			h.CompleteIssue(w, r)
		case strings.HasSuffix(r.URL.Path, "/reject"):
			h.RejectIssue(w, r)
		case strings.HasSuffix(r.URL.Path, "/close"):
			h.CloseIssue(w, r)
		case strings.HasSuffix(r.URL.Path, "/conclude"):
			h.ConcludeIssue(w, r)
		case strings.HasSuffix(r.URL.Path, "/reopen"):
			h.ReopenIssue(w, r)
		case strings.HasSuffix(r.URL.Path, "/carrier-fault"):
			h.ClassifyCarrierFault(w, r)
		case strings.HasSuffix(r.URL.Path, "/claim"):
			h.FileCarrierClaim(w, r)
		case strings.HasSuffix(r.URL.Path, "/claim-status"):
			h.UpdateCarrierClaim(w, r)
		default:
			http.NotFound(w, r)
		}
	}))
	mux.Handle("/admin/claims", adminOnly(methodHandler(http.MethodGet, h.GetCarrierFaultIssues)))
	mux.Handle("/admin/claims/summary", adminOnly(methodHandler(http.MethodGet, h.GetClaimSummary)))

	// Admin: orders
	mux.Handle("/admin/orders", adminOnly(methodHandler(http.MethodGet, h.GetAllOrders)))
	mux.Handle("/admin/orders/", adminOnly(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		switch {
		case strings.HasSuffix(r.URL.Path, "/pay"):
			h.PayOrder(w, r)
		case strings.HasSuffix(r.URL.Path, "/production"):
			h.StartProduction(w, r)
		case strings.HasSuffix(r.URL.Path, "/ship"):
			h.ShipOrder(w, r)
		case strings.HasSuffix(r.URL.Path, "/deliver"):
			h.DeliverOrder(w, r)
		default:
			http.NotFound(w, r)
		}
	}))

	// Admin: catalog
	mux.Handle("/admin/products", adminOnly(methodHandler(http.MethodPost, h.CreateProduct)))
	mux.Handle("/admin/products/", adminOnly(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/variants") && r.Method == http.MethodPost:
			h.AddVariant(w, r)
		case strings.Contains(r.URL.Path, "/variants/") && r.Method == http.MethodDelete:
			h.RemoveVariant(w, r)
		case strings.HasSuffix(r.URL.Path, "/image") && r.Method == http.MethodPut:
			h.UpdateProductImage(w, r)
		case r.Method == http.MethodPut:
			h.UpdateProduct(w, r)
		case r.Method == http.MethodDelete:
			h.DeactivateProduct(w, r)
		default:
			methodNotAllowed(w)
		}
	}))

	// Admin: resolutions (order-level reprint/refund records)
	mux.Handle("/admin/resolutions", adminOnly(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			h.GetResolutionsByOrder(w, r)
		case http.MethodPost:
			h.CreateResolution(w, r)
		default:
			methodNotAllowed(w)
		}
	}))
	mux.Handle("/admin/resolutions/", adminOnly(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		switch {
		case strings.HasSuffix(r.URL.Path, "/complete"):
			h.CompleteResolution(w, r)
		case strings.HasSuffix(r.URL.Path, "/cancel"):
			h.CancelResolution(w, r)
		default:
			http.NotFound(w, r)
		}
	}))

	// Admin: accounting
	mux.Handle("/admin/expenses", adminOnly(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			h.GetExpenses(w, r)
		case http.MethodPost:
			h.RecordExpense(w, r)
		default:
			methodNotAllowed(w)
		}
	}))
	mux.Handle("/admin/expenses/import", adminOnly(methodHandler(http.MethodPost, h.ImportExpenses)))
	mux.Handle("/admin/expenses/summary", adminOnly(methodHandler(http.MethodGet, h.GetExpenseSummary)))
	mux.Handle("/admin/expenses/", adminOnly(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPut:
			h.UpdateExpense(w, r)
		case http.MethodDelete:
			h.DeleteExpense(w, r)
		default:
			methodNotAllowed(w)
		}
	}))

	// Admin: blank stock
	mux.Handle("/admin/stock", adminOnly(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			h.GetStock(w, r)
		case http.MethodPost:
			h.ReceiveBlanks(w, r)
		default:
			methodNotAllowed(w)
		}
	}))

	return withLogging(mux)
}

func methodHandler(method string, fn http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			methodNotAllowed(w)
			return
		}
		fn(w, r)
	}
}

func methodNotAllowed(w http.ResponseWriter) {
	respondJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Printf("[API] %s %s", r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}
