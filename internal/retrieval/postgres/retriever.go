// Package postgres serves candidate listings from the store_listings table.
package postgres

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"strconv"
	"strings"

	"github.com/rizzani/grovi-sub000/internal/domain"
	"github.com/rizzani/grovi-sub000/internal/retrieval"
	"github.com/rizzani/grovi-sub000/pkg/database"
	apperrors "github.com/rizzani/grovi-sub000/pkg/errors"
	"github.com/rizzani/grovi-sub000/pkg/textnorm"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrations returns the schema migrations for the store_listings table.
func Migrations() fs.FS {
	sub, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

// defaultLimit caps a query that carries no limit of its own.
const defaultLimit = 1000

const listingColumns = `store_id, product_id, sku, title, brand, category_id, category_name,
		leaf_category_id, category_path_ids, in_stock, price`

const upsertListing = `
	INSERT INTO store_listings (store_id, product_id, sku, title, brand, category_id, category_name,
		leaf_category_id, category_path_ids, in_stock, price, search_text, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW())
	ON CONFLICT (store_id, product_id) DO UPDATE SET
		sku = EXCLUDED.sku,
		title = EXCLUDED.title,
		brand = EXCLUDED.brand,
		category_id = EXCLUDED.category_id,
		category_name = EXCLUDED.category_name,
		leaf_category_id = EXCLUDED.leaf_category_id,
		category_path_ids = EXCLUDED.category_path_ids,
		in_stock = EXCLUDED.in_stock,
		price = EXCLUDED.price,
		search_text = EXCLUDED.search_text,
		updated_at = EXCLUDED.updated_at`

// Retriever implements retrieval.Retriever and retrieval.Indexer over
// PostgreSQL. Matching is a substring match of any query term against the
// normalized search_text column.
type Retriever struct {
	pool database.DBTX
}

// New creates a PostgreSQL-backed retriever.
func New(pool database.DBTX) *Retriever {
	return &Retriever{pool: pool}
}

// Ping checks the database is reachable.
func (r *Retriever) Ping(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, "SELECT 1"); err != nil {
		return fmt.Errorf("postgres ping: %w", err)
	}
	return nil
}

// Retrieve returns listings matching q ordered by store and product id.
func (r *Retriever) Retrieve(ctx context.Context, q retrieval.Query) (listings []domain.CandidateListing, err error) {
	query, args := buildRetrieveQuery(q)

	ctx, end := database.TraceQuery(ctx, "RetrieveListings", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("retrieve listings: %w", err)
	}
	defer rows.Close()

	listings = make([]domain.CandidateListing, 0)
	for rows.Next() {
		var l domain.CandidateListing
		if err := rows.Scan(
			&l.StoreID,
			&l.ProductID,
			&l.SKU,
			&l.Title,
			&l.Brand,
			&l.CategoryID,
			&l.CategoryName,
			&l.LeafCategoryID,
			&l.CategoryPathIDs,
			&l.InStock,
			&l.Price,
		); err != nil {
			return nil, fmt.Errorf("scan listing: %w", err)
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate listings: %w", err)
	}
	return listings, nil
}

// buildRetrieveQuery assembles the SELECT with one positional argument per
// active condition.
func buildRetrieveQuery(q retrieval.Query) (string, []any) {
	var (
		conditions []string
		args       []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if !q.IsEmpty() {
		terms := q.Terms()
		patterns := make([]string, 0, len(terms)+len(q.Variants))
		for _, v := range q.Variants {
			patterns = append(patterns, "%"+v+"%")
		}
		for _, t := range terms {
			patterns = append(patterns, "%"+t+"%")
		}
		conditions = append(conditions, "search_text ILIKE ANY("+arg(patterns)+")")
	}

	f := q.Filters
	if f.CategoryID != "" {
		p := arg(f.CategoryID)
		conditions = append(conditions, "(category_id = "+p+" OR leaf_category_id = "+p+" OR "+p+" = ANY(category_path_ids))")
	}
	if f.Brand != "" {
		conditions = append(conditions, "lower(brand) = lower("+arg(strings.TrimSpace(f.Brand))+")")
	}
	if f.MinPrice != nil {
		conditions = append(conditions, "price >= "+arg(*f.MinPrice))
	}
	if f.MaxPrice != nil {
		conditions = append(conditions, "price <= "+arg(*f.MaxPrice))
	}
	if f.InStockOnly {
		conditions = append(conditions, "in_stock = TRUE")
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(listingColumns)
	b.WriteString("\n\t\tFROM store_listings")
	if len(conditions) > 0 {
		b.WriteString("\n\t\tWHERE ")
		b.WriteString(strings.Join(conditions, " AND "))
	}

	limit := q.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	b.WriteString("\n\t\tORDER BY store_id, product_id\n\t\tLIMIT ")
	b.WriteString(arg(limit))
	return b.String(), args
}

func upsertArgs(l *domain.CandidateListing) []any {
	pathIDs := l.CategoryPathIDs
	if pathIDs == nil {
		pathIDs = []string{}
	}
	return []any{
		l.StoreID,
		l.ProductID,
		l.SKU,
		l.Title,
		l.Brand,
		l.CategoryID,
		l.CategoryName,
		l.LeafCategoryID,
		pathIDs,
		l.InStock,
		l.Price,
		textnorm.Normalize(strings.Join([]string{l.Title, l.Brand, l.CategoryName}, " ")),
	}
}

// Index inserts or updates a listing.
func (r *Retriever) Index(ctx context.Context, listing *domain.CandidateListing) (err error) {
	ctx, end := database.TraceQuery(ctx, "UpsertListing", upsertListing)
	defer func() { end(err) }()

	if _, err = r.pool.Exec(ctx, upsertListing, upsertArgs(listing)...); err != nil {
		return fmt.Errorf("upsert listing %s: %w", listing.Key(), err)
	}
	return nil
}

// Delete removes a listing by key. Deleting a missing listing is not an
// error; a malformed key is.
func (r *Retriever) Delete(ctx context.Context, key string) (err error) {
	storeID, productID, ok := domain.ParseListingKey(key)
	if !ok {
		return apperrors.InvalidInput(fmt.Sprintf("malformed listing key %q", key))
	}

	const query = `DELETE FROM store_listings WHERE store_id = $1 AND product_id = $2`
	ctx, end := database.TraceQuery(ctx, "DeleteListing", query)
	defer func() { end(err) }()

	if _, err = r.pool.Exec(ctx, query, storeID, productID); err != nil {
		return fmt.Errorf("delete listing %s: %w", key, err)
	}
	return nil
}

// BulkIndex upserts listings in a single transaction.
func (r *Retriever) BulkIndex(ctx context.Context, listings []domain.CandidateListing) (err error) {
	if len(listings) == 0 {
		return nil
	}

	ctx, end := database.TraceQuery(ctx, "BulkUpsertListings", upsertListing)
	defer func() { end(err) }()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin bulk upsert: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	for i := range listings {
		if _, err = tx.Exec(ctx, upsertListing, upsertArgs(&listings[i])...); err != nil {
			return fmt.Errorf("upsert listing %s: %w", listings[i].Key(), err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit bulk upsert: %w", err)
	}
	return nil
}
