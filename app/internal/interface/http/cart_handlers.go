package http

import (
	"errors"
	"net/http"

	domcart "example.com/storefront/app/internal/domain/cart"
	cartuc "example.com/storefront/app/internal/usecase/cart"
	checkoutuc "example.com/storefront/app/internal/usecase/checkout"
)

type addCartItemRequest struct {
	EntryID  int64  `json:"entry_id" validate:"required,gt=0"`
	Quantity *int64 `json:"quantity"`
}

type setCartItemRequest struct {
	Quantity *int64 `json:"quantity" validate:"required"`
}

func (a *API) handleStartSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := a.cartSvc.StartSession(r.Context())
	if err != nil {
		handleDomainError(w, err)
		return
	}

	token, err := a.tokens.Issue(sessionID)
	if err != nil {
		_ = a.cartSvc.EndSession(r.Context(), sessionID)
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"session_id": sessionID,
		"token":      token,
	})
}

func (a *API) handleEndSession(w http.ResponseWriter, r *http.Request) {
	if err := a.cartSvc.EndSession(r.Context(), getSessionID(r.Context())); err != nil {
		handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleGetCart(w http.ResponseWriter, r *http.Request) {
	view, err := a.cartSvc.Get(r.Context(), getSessionID(r.Context()))
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCartView(view))
}

func (a *API) handleAddCartItem(w http.ResponseWriter, r *http.Request) {
	var req addCartItemRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	quantity := int64(1)
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	view, err := a.cartSvc.AddItem(r.Context(), getSessionID(r.Context()), req.EntryID, quantity)
	respondCartMutation(w, view, err)
}

func (a *API) handleSetCartItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	var req setCartItemRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	view, err := a.cartSvc.SetQuantity(r.Context(), getSessionID(r.Context()), id, *req.Quantity)
	respondCartMutation(w, view, err)
}

func (a *API) handleRemoveCartItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	view, err := a.cartSvc.RemoveItem(r.Context(), getSessionID(r.Context()), id)
	respondCartMutation(w, view, err)
}

// respondCartMutation reports a clamped mutation as a success carrying a
// warning, since the cart has already been changed.
func respondCartMutation(w http.ResponseWriter, view *cartuc.View, err error) {
	var stockErr *domcart.StockExceededError
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, mapCartView(view))
	case errors.As(err, &stockErr) && view != nil:
		resp := mapCartView(view)
		resp["warning"] = mapStockWarning(stockErr)
		writeJSON(w, http.StatusOK, resp)
	default:
		handleDomainError(w, err)
	}
}

func (a *API) handleCheckout(w http.ResponseWriter, r *http.Request) {
	sessionID := getSessionID(r.Context())

	order, err := a.checkoutSvc.Checkout(r.Context(), sessionID)
	var adjusted *checkoutuc.AdjustedError
	if errors.As(err, &adjusted) {
		view, viewErr := a.cartSvc.Get(r.Context(), sessionID)
		if viewErr != nil {
			handleDomainError(w, viewErr)
			return
		}
		view.Adjustments = append(adjusted.Adjustments, view.Adjustments...)
		writeJSON(w, http.StatusConflict, map[string]any{
			"error": err.Error(),
			"cart":  mapCartView(view),
		})
		return
	}
	if err != nil {
		handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, mapOrder(order))
}
