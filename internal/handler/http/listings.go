package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rizzani/grovi-sub000/internal/service"
	"github.com/rizzani/grovi-sub000/pkg/httputil"
	"github.com/rizzani/grovi-sub000/pkg/validator"
)

// ListingHandler handles listing ingest requests.
type ListingHandler struct {
	catalog *service.CatalogService
	logger  *slog.Logger
}

// NewListingHandler creates a listing handler.
func NewListingHandler(catalog *service.CatalogService, logger *slog.Logger) *ListingHandler {
	return &ListingHandler{catalog: catalog, logger: logger}
}

// Index handles POST /api/v1/listings.
func (h *ListingHandler) Index(w http.ResponseWriter, r *http.Request) {
	var req service.ListingInput
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	listing, err := h.catalog.IndexListing(r.Context(), &req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/v1/listings/"+listing.Key())
	httputil.WriteData(w, http.StatusCreated, listing)
}

// BulkIndex handles POST /api/v1/listings/bulk.
func (h *ListingHandler) BulkIndex(w http.ResponseWriter, r *http.Request) {
	var req service.BulkListingInput
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	n, err := h.catalog.BulkIndex(r.Context(), &req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteData(w, http.StatusOK, map[string]int{"indexed": n})
}

// Delete handles DELETE /api/v1/listings/{id}, where id is
// "store_id:product_id".
func (h *ListingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteListing(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ListingHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		httputil.WriteValidationError(w, r, err)
		return
	}
	httputil.WriteError(w, r, err, h.logger)
}
