package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	domcatalog "example.com/storefront/app/internal/domain/catalog"
	domcontent "example.com/storefront/app/internal/domain/content"
	domorder "example.com/storefront/app/internal/domain/order"
)

var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

type createEntryRequest struct {
	Kind        string           `json:"kind" validate:"omitempty,oneof=product service"`
	Name        string           `json:"name" validate:"required"`
	Description string           `json:"description"`
	ImageURL    string           `json:"image_url" validate:"omitempty,url"`
	UnitPrice   *decimal.Decimal `json:"unit_price" validate:"required"`
	Stock       int64            `json:"stock" validate:"gte=0"`
	IsActive    *bool            `json:"is_active"`
}

type updateEntryRequest struct {
	Kind        *string          `json:"kind" validate:"omitempty,oneof=product service"`
	Name        *string          `json:"name" validate:"omitempty,min=1"`
	Description *string          `json:"description"`
	ImageURL    *string          `json:"image_url" validate:"omitempty,url"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
	Stock       *int64           `json:"stock" validate:"omitempty,gte=0"`
	IsActive    *bool            `json:"is_active"`
}

func (a *API) handleListCatalogAdmin(w http.ResponseWriter, r *http.Request) {
	filter, err := listFilterFromQuery(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if status := r.URL.Query().Get("only_active"); status == "1" || status == "true" {
		filter.OnlyActive = true
	}

	entries, err := a.catalogSvc.List(r.Context(), filter)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	resp := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, mapEntry(e))
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": resp})
}

func (a *API) handleGetCatalogEntryAdmin(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	e, err := a.catalogSvc.GetByID(r.Context(), id)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapEntry(e))
}

func (a *API) handleCreateCatalogEntry(w http.ResponseWriter, r *http.Request) {
	var req createEntryRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	e, err := a.catalogSvc.Create(r.Context(), &domcatalog.Entry{
		Kind:        domcatalog.Kind(req.Kind),
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		UnitPrice:   *req.UnitPrice,
		Stock:       req.Stock,
		IsActive:    isActive,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapEntry(e))
}

func (a *API) handleUpdateCatalogEntry(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	var req updateEntryRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	patch := domcatalog.Patch{
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		UnitPrice:   req.UnitPrice,
		Stock:       req.Stock,
		IsActive:    req.IsActive,
	}
	if req.Kind != nil {
		kind := domcatalog.Kind(*req.Kind)
		patch.Kind = &kind
	}

	e, err := a.catalogSvc.Update(r.Context(), id, patch)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapEntry(e))
}

func (a *API) handleDeleteCatalogEntry(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if err := a.catalogSvc.Delete(r.Context(), id); err != nil {
		handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleUploadCatalogImage(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, a.maxUploadSize)
	if err := r.ParseMultipartForm(a.maxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, fmt.Errorf("image larger than %d bytes", a.maxUploadSize))
			return
		}
		respondError(w, http.StatusBadRequest, err)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("image")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedImageExts[ext] {
		respondError(w, http.StatusBadRequest, errors.New("image must be jpg, jpeg, png, gif or webp"))
		return
	}

	e, err := a.catalogSvc.UploadImage(r.Context(), id, file)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapEntry(e))
}

type createPageRequest struct {
	Name    string          `json:"name" validate:"required,max=64"`
	Content json.RawMessage `json:"content" validate:"required"`
}

type updatePageRequest struct {
	Content json.RawMessage `json:"content" validate:"required"`
}

func (a *API) handleListPages(w http.ResponseWriter, r *http.Request) {
	pages, err := a.contentSvc.List(r.Context())
	if err != nil {
		handleDomainError(w, err)
		return
	}

	resp := make([]map[string]any, 0, len(pages))
	for _, p := range pages {
		resp = append(resp, mapPage(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": resp})
}

func (a *API) handleGetPageAdmin(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	p, err := a.contentSvc.GetByID(r.Context(), id)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapPage(p))
}

func (a *API) handleCreatePage(w http.ResponseWriter, r *http.Request) {
	var req createPageRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	p, err := a.contentSvc.Create(r.Context(), &domcontent.Page{Name: req.Name, Content: req.Content})
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapPage(p))
}

func (a *API) handleUpdatePage(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	var req updatePageRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	p, err := a.contentSvc.Update(r.Context(), id, req.Content)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapPage(p))
}

func (a *API) handleDeletePage(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if err := a.contentSvc.Delete(r.Context(), id); err != nil {
		handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type updateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (a *API) handleListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := a.orderSvc.List(r.Context())
	if err != nil {
		handleDomainError(w, err)
		return
	}

	resp := make([]map[string]any, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, mapOrder(o))
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": resp})
}

func (a *API) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	o, err := a.orderSvc.GetByID(r.Context(), id)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrder(o))
}

func (a *API) handleUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	var req updateOrderStatusRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	o, err := a.orderSvc.UpdateStatus(r.Context(), id, domorder.Status(strings.ToUpper(req.Status)))
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrder(o))
}
