package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	domcatalog "example.com/storefront/app/internal/domain/catalog"
)

var errInvalidKind = errors.New("kind must be product or service")

func listFilterFromQuery(r *http.Request) (domcatalog.ListFilter, error) {
	filter := domcatalog.ListFilter{Search: r.URL.Query().Get("q")}
	if kind := r.URL.Query().Get("kind"); kind != "" {
		filter.Kind = domcatalog.Kind(kind)
		if !filter.Kind.IsValid() {
			return filter, errInvalidKind
		}
	}
	return filter, nil
}

func (a *API) handleListCatalog(w http.ResponseWriter, r *http.Request) {
	filter, err := listFilterFromQuery(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	filter.OnlyActive = true

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

func (a *API) handleGetCatalogEntry(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	e, err := a.catalogSvc.GetActive(r.Context(), id)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapEntry(e))
}

func (a *API) handleGetPage(w http.ResponseWriter, r *http.Request) {
	p, err := a.contentSvc.GetByName(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapPage(p))
}
