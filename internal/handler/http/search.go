// Package http exposes the search service over a chi router.
package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/rizzani/grovi-sub000/internal/domain"
	"github.com/rizzani/grovi-sub000/internal/service"
	apperrors "github.com/rizzani/grovi-sub000/pkg/errors"
	"github.com/rizzani/grovi-sub000/pkg/httputil"
	"github.com/rizzani/grovi-sub000/pkg/pagination"
)

// MaxSuggestLimit caps the limit parameter of the suggest endpoint.
const MaxSuggestLimit = 20

// SearchHandler handles HTTP requests for search endpoints.
type SearchHandler struct {
	service         *service.SearchService
	defaultPageSize int
	maxPageSize     int
	logger          *slog.Logger
}

// NewSearchHandler creates a search handler. Page sizes default to
// defaultPageSize and are capped at maxPageSize.
func NewSearchHandler(svc *service.SearchService, defaultPageSize, maxPageSize int, logger *slog.Logger) *SearchHandler {
	if defaultPageSize < 1 {
		defaultPageSize = pagination.DefaultPageSize
	}
	if maxPageSize < defaultPageSize {
		maxPageSize = defaultPageSize
	}
	return &SearchHandler{
		service:         svc,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
		logger:          logger,
	}
}

// Search handles GET /api/v1/search. With a limit parameter the response is
// a flat list of at most limit results instead of a page.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	in, err := h.parseSearch(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	limit, err := httputil.QueryInt(r, "limit")
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if limit != nil {
		if *limit < 1 {
			httputil.WriteError(w, r, apperrors.InvalidInput("limit must be positive"), h.logger)
			return
		}
		results := h.service.Top(r.Context(), in, min(*limit, h.maxPageSize))
		httputil.WriteData(w, http.StatusOK, results)
		return
	}

	page := h.service.Search(r.Context(), in)
	httputil.WriteData(w, http.StatusOK, page)
}

// Suggest handles GET /api/v1/search/suggest.
func (h *SearchHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	prefix := strings.TrimSpace(r.URL.Query().Get("q"))
	if prefix == "" {
		httputil.WriteData(w, http.StatusOK, map[string]any{"suggestions": []domain.Suggestion{}})
		return
	}

	limit, err := httputil.QueryInt(r, "limit")
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	n := 0
	if limit != nil {
		if *limit < 1 || *limit > MaxSuggestLimit {
			httputil.WriteError(w, r, apperrors.InvalidInput(fmt.Sprintf("limit must be between 1 and %d", MaxSuggestLimit)), h.logger)
			return
		}
		n = *limit
	}

	suggestions := h.service.Suggest(r.Context(), prefix, n)
	httputil.WriteData(w, http.StatusOK, map[string]any{"suggestions": suggestions})
}

// Analyze handles GET /api/v1/search/analyze.
func (h *SearchHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, http.StatusOK, h.service.Analyze(r.URL.Query().Get("q")))
}

func (h *SearchHandler) parseSearch(r *http.Request) (service.SearchInput, error) {
	q := r.URL.Query()

	sort, ok := domain.ParseSortMode(strings.TrimSpace(q.Get("sort")))
	if !ok {
		modes := make([]string, 0, len(domain.ValidSortModes()))
		for _, m := range domain.ValidSortModes() {
			modes = append(modes, string(m))
		}
		return service.SearchInput{}, apperrors.InvalidInput("sort must be one of: " + strings.Join(modes, ", "))
	}

	filters, err := parseFilters(r)
	if err != nil {
		return service.SearchInput{}, err
	}

	opts := pagination.FromRequest(r, h.maxPageSize)
	if opts.PageSize == nil {
		opts.PageSize = pagination.Int(h.defaultPageSize)
	}

	return service.SearchInput{
		Query:   q.Get("q"),
		Filters: filters,
		Sort:    sort,
		Preferences: domain.UserPreferences{
			PreferredCategories: httputil.QueryList(r, "preferred_categories"),
			DietaryPreferences:  httputil.QueryList(r, "dietary"),
		},
		Pagination: opts,
	}, nil
}

func parseFilters(r *http.Request) (domain.Filters, error) {
	f := domain.Filters{
		CategoryID: strings.TrimSpace(r.URL.Query().Get("category_id")),
		Brand:      strings.TrimSpace(r.URL.Query().Get("brand")),
	}

	var err error
	if f.MinPrice, err = nonNegative(r, "min_price"); err != nil {
		return f, err
	}
	if f.MaxPrice, err = nonNegative(r, "max_price"); err != nil {
		return f, err
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return f, apperrors.InvalidInput("min_price must not exceed max_price")
	}
	if f.InStockOnly, err = httputil.QueryBool(r, "in_stock"); err != nil {
		return f, err
	}
	return f, nil
}

func nonNegative(r *http.Request, name string) (*int64, error) {
	v, err := httputil.QueryInt64(r, name)
	if err != nil {
		return nil, err
	}
	if v != nil && *v < 0 {
		return nil, apperrors.InvalidInput(name + " must not be negative")
	}
	return v, nil
}
