package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	domcart "example.com/storefront/app/internal/domain/cart"
	domcatalog "example.com/storefront/app/internal/domain/catalog"
	domcontent "example.com/storefront/app/internal/domain/content"
	domorder "example.com/storefront/app/internal/domain/order"
	"example.com/storefront/app/internal/infra/security"
	cartuc "example.com/storefront/app/internal/usecase/cart"
	cataloguc "example.com/storefront/app/internal/usecase/catalog"
	checkoutuc "example.com/storefront/app/internal/usecase/checkout"
	contentuc "example.com/storefront/app/internal/usecase/content"
	orderuc "example.com/storefront/app/internal/usecase/order"
)

const defaultMaxUploadSize = 5 << 20

// SessionTokens binds cart session ids to the tokens clients carry.
type SessionTokens interface {
	Issue(sessionID string) (string, error)
	Parse(token string) (string, error)
}

type API struct {
	catalogSvc    *cataloguc.Service
	cartSvc       *cartuc.Service
	checkoutSvc   *checkoutuc.Service
	orderSvc      *orderuc.Service
	contentSvc    *contentuc.Service
	tokens        SessionTokens
	validator     *validator.Validate
	logger        *zap.Logger
	maxUploadSize int64
}

type Dependencies struct {
	CatalogService  *cataloguc.Service
	CartService     *cartuc.Service
	CheckoutService *checkoutuc.Service
	OrderService    *orderuc.Service
	ContentService  *contentuc.Service
	SessionTokens   SessionTokens
	Logger          *zap.Logger
	MaxUploadSize   int64
}

func NewAPI(deps Dependencies) *API {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	maxUpload := deps.MaxUploadSize
	if maxUpload <= 0 {
		maxUpload = defaultMaxUploadSize
	}
	return &API{
		catalogSvc:    deps.CatalogService,
		cartSvc:       deps.CartService,
		checkoutSvc:   deps.CheckoutService,
		orderSvc:      deps.OrderService,
		contentSvc:    deps.ContentService,
		tokens:        deps.SessionTokens,
		validator:     validator.New(),
		logger:        logger,
		maxUploadSize: maxUpload,
	}
}

// Router serves the storefront API.
func (a *API) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(a.requestLogger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.AllowContentType("application/json", "text/plain"))

	r.Get("/health", handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/catalog", a.handleListCatalog)
		r.Get("/catalog/{id}", a.handleGetCatalogEntry)
		r.Get("/pages/{name}", a.handleGetPage)
		r.Post("/cart/session", a.handleStartSession)

		r.Group(func(cr chi.Router) {
			cr.Use(a.cartSessionMiddleware)
			cr.Get("/cart", a.handleGetCart)
			cr.Delete("/cart", a.handleEndSession)
			cr.Post("/cart/items", a.handleAddCartItem)
			cr.Put("/cart/items/{id}", a.handleSetCartItem)
			cr.Delete("/cart/items/{id}", a.handleRemoveCartItem)
			cr.Post("/cart/checkout", a.handleCheckout)
		})
	})

	return r
}

// AdminRouter serves the back office. It is mounted on its own listener
// that must not be reachable from the public network.
func (a *API) AdminRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(a.requestLogger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.AllowContentType("application/json", "multipart/form-data"))

	r.Get("/health", handleHealth)

	r.Route("/admin", func(admin chi.Router) {
		admin.Route("/catalog", func(rr chi.Router) {
			rr.Get("/", a.handleListCatalogAdmin)
			rr.Post("/", a.handleCreateCatalogEntry)
			rr.Get("/{id}", a.handleGetCatalogEntryAdmin)
			rr.Put("/{id}", a.handleUpdateCatalogEntry)
			rr.Delete("/{id}", a.handleDeleteCatalogEntry)
			rr.Post("/{id}/image", a.handleUploadCatalogImage)
		})

		admin.Route("/pages", func(rr chi.Router) {
			rr.Get("/", a.handleListPages)
			rr.Post("/", a.handleCreatePage)
			rr.Get("/{id}", a.handleGetPageAdmin)
			rr.Put("/{id}", a.handleUpdatePage)
			rr.Delete("/{id}", a.handleDeletePage)
		})

		admin.Route("/orders", func(rr chi.Router) {
			rr.Get("/", a.handleListOrders)
			rr.Get("/{id}", a.handleGetOrder)
			rr.Patch("/{id}", a.handleUpdateOrderStatus)
		})
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) decodeAndValidate(r *http.Request, dst any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return err
	}
	return a.validator.Struct(dst)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func respondError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func parseIDParam(r *http.Request, key string) (int64, error) {
	idStr := chi.URLParam(r, key)
	return strconv.ParseInt(idStr, 10, 64)
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func mapEntry(e *domcatalog.Entry) map[string]any {
	return map[string]any{
		"id":          e.ID,
		"kind":        e.Kind,
		"name":        e.Name,
		"description": e.Description,
		"image_url":   e.ImageURL,
		"unit_price":  money(e.UnitPrice),
		"stock":       e.Stock,
		"is_active":   e.IsActive,
	}
}

func mapCartView(v *cartuc.View) map[string]any {
	lines := make([]map[string]any, 0, len(v.Lines))
	for _, l := range v.Lines {
		lines = append(lines, map[string]any{
			"id":          l.ID,
			"name":        l.Name,
			"unit_price":  money(l.UnitPrice),
			"quantity":    l.Quantity,
			"stock_limit": l.StockLimit,
			"subtotal":    money(l.Subtotal()),
		})
	}

	adjustments := make([]map[string]any, 0, len(v.Adjustments))
	for _, adj := range v.Adjustments {
		item := map[string]any{
			"id":      adj.ID,
			"name":    adj.Name,
			"from":    adj.From,
			"to":      adj.To,
			"removed": adj.Removed,
		}
		if adj.PriceChanged {
			item["old_price"] = money(adj.OldPrice)
			item["new_price"] = money(adj.NewPrice)
		}
		adjustments = append(adjustments, item)
	}

	return map[string]any{
		"session_id":  v.SessionID,
		"lines":       lines,
		"total":       money(v.Total),
		"item_count":  v.ItemCount,
		"line_count":  v.LineCount,
		"adjustments": adjustments,
	}
}

func mapStockWarning(err *domcart.StockExceededError) map[string]any {
	return map[string]any{
		"code":      "stock_exceeded",
		"message":   err.Error(),
		"id":        err.ID,
		"requested": err.Requested,
		"limit":     err.Limit,
	}
}

func mapOrder(o *domorder.Order) map[string]any {
	items := make([]map[string]any, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, map[string]any{
			"catalog_id": item.CatalogID,
			"name":       item.Name,
			"unit_price": money(item.UnitPrice),
			"quantity":   item.Quantity,
			"subtotal":   money(item.Subtotal()),
		})
	}

	return map[string]any{
		"id":           o.ID,
		"reference":    o.Reference,
		"status":       o.Status,
		"total_amount": money(o.TotalAmount),
		"created_at":   o.CreatedAt,
		"items":        items,
	}
}

func mapPage(p *domcontent.Page) map[string]any {
	resp := map[string]any{
		"id":      p.ID,
		"name":    p.Name,
		"content": p.Content,
	}
	if !p.UpdatedAt.IsZero() {
		resp["updated_at"] = p.UpdatedAt.Format(time.RFC3339)
	}
	return resp
}

func handleDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domcatalog.ErrEntryNotFound),
		errors.Is(err, domcart.ErrSessionNotFound),
		errors.Is(err, domorder.ErrOrderNotFound),
		errors.Is(err, domcontent.ErrPageNotFound):
		respondError(w, http.StatusNotFound, err)
	case errors.Is(err, security.ErrInvalidSessionToken):
		respondError(w, http.StatusUnauthorized, err)
	case errors.Is(err, domcontent.ErrPageNameExists),
		errors.Is(err, domcart.ErrSessionExists),
		errors.Is(err, checkoutuc.ErrCartAdjusted):
		respondError(w, http.StatusConflict, err)
	case errors.Is(err, domcatalog.ErrInvalidEntry),
		errors.Is(err, domcart.ErrInvalidQuantity),
		errors.Is(err, domcart.ErrStockExceeded),
		errors.Is(err, domcontent.ErrPageInvalidName),
		errors.Is(err, domcontent.ErrPageInvalidContent),
		errors.Is(err, domorder.ErrEmptyOrderItems),
		errors.Is(err, domorder.ErrCheckoutValidation),
		errors.Is(err, domorder.ErrInvalidStatus),
		errors.Is(err, domorder.ErrStatusTransition):
		respondError(w, http.StatusUnprocessableEntity, err)
	case errors.Is(err, cataloguc.ErrUploadsDisabled):
		respondError(w, http.StatusServiceUnavailable, err)
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusGatewayTimeout, err)
	default:
		respondError(w, http.StatusInternalServerError, err)
	}
}
