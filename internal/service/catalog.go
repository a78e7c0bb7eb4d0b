package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rizzani/grovi-sub000/internal/domain"
	"github.com/rizzani/grovi-sub000/internal/retrieval"
	apperrors "github.com/rizzani/grovi-sub000/pkg/errors"
	"github.com/rizzani/grovi-sub000/pkg/validator"
)

// ListingInput holds the fields of a listing to index.
type ListingInput struct {
	StoreID         string   `json:"store_id" validate:"required,keypart,max=128"`
	ProductID       string   `json:"product_id" validate:"required,keypart,max=128"`
	SKU             string   `json:"sku" validate:"max=128"`
	Title           string   `json:"title" validate:"required,max=512"`
	Brand           string   `json:"brand" validate:"max=256"`
	CategoryID      string   `json:"category_id" validate:"max=128"`
	CategoryName    string   `json:"category_name" validate:"max=256"`
	LeafCategoryID  string   `json:"leaf_category_id" validate:"max=128"`
	CategoryPathIDs []string `json:"category_path_ids" validate:"max=32,dive,required,max=128"`
	InStock         bool     `json:"in_stock"`
	Price           int64    `json:"price" validate:"gte=0"`
}

// Listing converts the input to a listing, trimming surrounding whitespace.
func (in ListingInput) Listing() domain.CandidateListing {
	var path []string
	if len(in.CategoryPathIDs) > 0 {
		path = make([]string, len(in.CategoryPathIDs))
		for i, id := range in.CategoryPathIDs {
			path[i] = strings.TrimSpace(id)
		}
	}
	return domain.CandidateListing{
		ProductID:       strings.TrimSpace(in.ProductID),
		SKU:             strings.TrimSpace(in.SKU),
		Title:           strings.TrimSpace(in.Title),
		Brand:           strings.TrimSpace(in.Brand),
		CategoryID:      strings.TrimSpace(in.CategoryID),
		CategoryName:    strings.TrimSpace(in.CategoryName),
		LeafCategoryID:  strings.TrimSpace(in.LeafCategoryID),
		CategoryPathIDs: path,
		InStock:         in.InStock,
		Price:           in.Price,
		StoreID:         strings.TrimSpace(in.StoreID),
	}
}

// BulkListingInput is a batch of listings to index.
type BulkListingInput struct {
	Listings []ListingInput `json:"listings" validate:"required,min=1,max=1000,dive"`
}

// CatalogService writes listings to the retrieval backend.
type CatalogService struct {
	indexer retrieval.Indexer
	logger  *slog.Logger
}

// NewCatalogService creates a catalog service over backend. Writes fail
// with ErrNotSupported when backend is not a retrieval.Indexer.
func NewCatalogService(backend retrieval.Retriever, logger *slog.Logger) *CatalogService {
	idx, _ := backend.(retrieval.Indexer)
	return &CatalogService{indexer: idx, logger: logger}
}

// IndexListing validates and indexes one listing, replacing any listing
// with the same key.
func (s *CatalogService) IndexListing(ctx context.Context, in *ListingInput) (*domain.CandidateListing, error) {
	if err := s.writable(); err != nil {
		return nil, err
	}
	if err := validator.Validate(in); err != nil {
		return nil, err
	}

	listing := in.Listing()
	if err := s.indexer.Index(ctx, &listing); err != nil {
		listingWrites.WithLabelValues("index", "error").Inc()
		return nil, fmt.Errorf("index listing %s: %w", listing.Key(), err)
	}
	listingWrites.WithLabelValues("index", "ok").Inc()

	s.logger.InfoContext(ctx, "listing indexed",
		slog.String("listing", listing.Key()),
		slog.String("title", listing.Title),
	)
	return &listing, nil
}

// DeleteListing removes the listing with key "store_id:product_id". Unknown
// keys are not an error.
func (s *CatalogService) DeleteListing(ctx context.Context, key string) error {
	if err := s.writable(); err != nil {
		return err
	}
	if _, _, ok := domain.ParseListingKey(key); !ok {
		return apperrors.InvalidInput(fmt.Sprintf("listing id %q must have the form store_id:product_id", key))
	}

	if err := s.indexer.Delete(ctx, key); err != nil {
		listingWrites.WithLabelValues("delete", "error").Inc()
		return fmt.Errorf("delete listing %s: %w", key, err)
	}
	listingWrites.WithLabelValues("delete", "ok").Inc()

	s.logger.InfoContext(ctx, "listing deleted", slog.String("listing", key))
	return nil
}

// BulkIndex validates and indexes a batch of listings. Nothing is written
// when any listing is invalid.
func (s *CatalogService) BulkIndex(ctx context.Context, in *BulkListingInput) (int, error) {
	if err := s.writable(); err != nil {
		return 0, err
	}
	if err := validator.Validate(in); err != nil {
		return 0, err
	}

	listings := make([]domain.CandidateListing, len(in.Listings))
	for i := range in.Listings {
		listings[i] = in.Listings[i].Listing()
	}

	if err := s.indexer.BulkIndex(ctx, listings); err != nil {
		listingWrites.WithLabelValues("bulk", "error").Inc()
		return 0, fmt.Errorf("bulk index: %w", err)
	}
	listingWrites.WithLabelValues("bulk", "ok").Inc()

	s.logger.InfoContext(ctx, "bulk index completed", slog.Int("count", len(listings)))
	return len(listings), nil
}

func (s *CatalogService) writable() error {
	if s.indexer == nil {
		return apperrors.NotSupported("the configured retrieval backend is read-only")
	}
	return nil
}
