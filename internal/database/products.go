// Storefront - Multi-vendor Commerce Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tomtom215/storefront/internal/database/query"
	"github.com/tomtom215/storefront/internal/recommend"
)

// productColumns is the column list shared by every product SELECT.
const productColumns = `id, title, description, category, price, is_active,
	image_vector, text_vector,
	views_count, add_to_cart_count, purchase_count, popularity_score,
	created_at, updated_at`

// hasImageVector is true for rows carrying a non-empty image vector.
const hasImageVector = `COALESCE(len(image_vector), 0) > 0`

// hasAnyVector is true for rows carrying a non-empty image or text vector.
const hasAnyVector = `(COALESCE(len(image_vector), 0) > 0 OR COALESCE(len(text_vector), 0) > 0)`

var _ recommend.CatalogRepository = (*DB)(nil)

// FindByID returns a product regardless of its active flag.
func (db *DB) FindByID(ctx context.Context, id recommend.ProductID) (*recommend.Product, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	row := db.conn.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = ?`, string(id))
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("product %s: %w", id, recommend.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product %s: %w", id, err)
	}
	return p, nil
}

// FindActiveByID returns an active product or ErrNotFound.
func (db *DB) FindActiveByID(ctx context.Context, id recommend.ProductID) (*recommend.Product, error) {
	p, err := db.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.Active {
		return nil, fmt.Errorf("product %s: %w", id, recommend.ErrNotFound)
	}
	return p, nil
}

// FindActiveByIDs returns the active products among ids in the order of ids.
func (db *DB) FindActiveByIDs(ctx context.Context, ids []recommend.ProductID) ([]*recommend.Product, error) {
	if len(ids) == 0 {
		return []*recommend.Product{}, nil
	}

	wb := query.NewWhereBuilder().AddActive().AddIn("id", productIDStrings(ids))
	where, args := wb.Build()
	found, err := db.queryProducts(ctx, `SELECT `+productColumns+` FROM products WHERE `+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get products by id: %w", err)
	}

	byID := make(map[recommend.ProductID]*recommend.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	out := make([]*recommend.Product, 0, len(found))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// FindActiveByCategory returns active products in category other than exclude.
func (db *DB) FindActiveByCategory(ctx context.Context, category string, exclude recommend.ProductID) ([]*recommend.Product, error) {
	products, err := db.queryProducts(ctx,
		`SELECT `+productColumns+` FROM products
		WHERE is_active = true AND category = ? AND id <> ?
		ORDER BY id`, category, string(exclude))
	if err != nil {
		return nil, fmt.Errorf("failed to get products in category %s: %w", category, err)
	}
	return products, nil
}

// FindActiveByCategoryOrPriceBand returns active products sharing the category
// or priced within the band, excluding the base.
func (db *DB) FindActiveByCategoryOrPriceBand(ctx context.Context, q recommend.PriceBandQuery) ([]*recommend.Product, error) {
	wb := query.NewWhereBuilder().
		AddActive().
		AddClause("id <> ?", string(q.Exclude)).
		AddClause("(category = ? OR price BETWEEN ? AND ?)", q.Category, q.MinPrice, q.MaxPrice)
	where, args := wb.Build()

	products, err := db.queryProducts(ctx, withLimit(`SELECT `+productColumns+` FROM products WHERE `+where+` ORDER BY id`, q.Limit), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get category or price band products: %w", err)
	}
	return products, nil
}

// FindActiveExcluding returns active products outside q.Exclude.
func (db *DB) FindActiveExcluding(ctx context.Context, q recommend.ExclusionQuery) ([]*recommend.Product, error) {
	wb := query.NewWhereBuilder().
		AddActive().
		AddNotIn("id", productIDStrings(q.Exclude)).
		AddIn("category", q.Categories)
	if q.RequireVector {
		wb.AddClause(hasAnyVector)
	}
	where, args := wb.Build()

	products, err := db.queryProducts(ctx, withLimit(`SELECT `+productColumns+` FROM products WHERE `+where+` ORDER BY id`, q.Limit), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get products excluding history: %w", err)
	}
	return products, nil
}

// FindActiveWithImageVector returns active products carrying an image vector.
func (db *DB) FindActiveWithImageVector(ctx context.Context, limit int) ([]*recommend.Product, error) {
	products, err := db.queryProducts(ctx, withLimit(
		`SELECT `+productColumns+` FROM products
		WHERE is_active = true AND `+hasImageVector+`
		ORDER BY id`, limit))
	if err != nil {
		return nil, fmt.Errorf("failed to get products with image vectors: %w", err)
	}
	return products, nil
}

// popularityOrderBy maps an order to its ORDER BY clause.
var popularityOrderBy = map[recommend.PopularityOrder]string{
	recommend.OrderTrending:   "popularity_score DESC, views_count DESC, created_at DESC, id",
	recommend.OrderColdStart:  "popularity_score DESC, created_at DESC, id",
	recommend.OrderPopularity: "popularity_score DESC, id",
}

// FindTopByPopularity returns the top active products in the given order.
func (db *DB) FindTopByPopularity(ctx context.Context, order recommend.PopularityOrder, limit int) ([]*recommend.Product, error) {
	orderBy, ok := popularityOrderBy[order]
	if !ok {
		return nil, fmt.Errorf("unknown popularity order %d: %w", order, recommend.ErrInvalidInput)
	}

	products, err := db.queryProducts(ctx, withLimit(
		`SELECT `+productColumns+` FROM products WHERE is_active = true ORDER BY `+orderBy, limit))
	if err != nil {
		return nil, fmt.Errorf("failed to get %s products: %w", order, err)
	}
	return products, nil
}

// Save inserts a product or replaces its content fields. Counters and
// created_at are written on insert only; afterwards they belong to
// ApplyPopularity. Timestamps on p are filled in.
func (db *DB) Save(ctx context.Context, p *recommend.Product) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	now := db.now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	imageVec, err := encodeVector(p.ImageVector)
	if err != nil {
		return fmt.Errorf("failed to encode image vector for %s: %w", p.ID, err)
	}
	textVec, err := encodeVector(p.TextVector)
	if err != nil {
		return fmt.Errorf("failed to encode text vector for %s: %w", p.ID, err)
	}

	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, CAST(? AS DOUBLE[]), CAST(? AS DOUBLE[]), ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			category = excluded.category,
			price = excluded.price,
			is_active = excluded.is_active,
			image_vector = excluded.image_vector,
			text_vector = excluded.text_vector,
			updated_at = excluded.updated_at`,
		string(p.ID), p.Title, p.Description, p.Category, p.Price, p.Active,
		imageVec, textVec,
		p.ViewsCount, p.AddToCartCount, p.PurchaseCount,
		recommend.PopularityScore(p.ViewsCount, p.AddToCartCount, p.PurchaseCount),
		p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save product %s: %w", p.ID, err)
	}
	return nil
}

// ApplyPopularity adds the counter deltas and recomputes popularity_score in
// the same statement.
func (db *DB) ApplyPopularity(ctx context.Context, u recommend.PopularityUpdate) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	res, err := db.conn.ExecContext(ctx, `
		UPDATE products SET
			views_count = views_count + ?,
			add_to_cart_count = add_to_cart_count + ?,
			purchase_count = purchase_count + ?,
			popularity_score = (views_count + ?) + 3 * (add_to_cart_count + ?) + 5 * (purchase_count + ?),
			updated_at = ?
		WHERE id = ?`,
		u.Views, u.Carts, u.Purchases,
		u.Views, u.Carts, u.Purchases,
		db.now(), string(u.ProductID))
	if err != nil {
		return fmt.Errorf("failed to apply popularity to %s: %w", u.ProductID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows for %s: %w", u.ProductID, err)
	}
	if n == 0 {
		return fmt.Errorf("product %s: %w", u.ProductID, recommend.ErrNotFound)
	}
	return nil
}

// AllProducts returns every stored product, active or not, ordered by ID.
func (db *DB) AllProducts(ctx context.Context) ([]*recommend.Product, error) {
	products, err := db.queryProducts(ctx, `SELECT `+productColumns+` FROM products ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// queryProducts runs a product SELECT and scans every row.
func (db *DB) queryProducts(ctx context.Context, sqlQuery string, args ...interface{}) ([]*recommend.Product, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, err
	}
	defer closeWithLog(rows, "rows")

	products := []*recommend.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

// withLimit appends a LIMIT clause when limit is positive.
func withLimit(sqlQuery string, limit int) string {
	if limit <= 0 {
		return sqlQuery
	}
	return fmt.Sprintf("%s LIMIT %d", sqlQuery, limit)
}

func productIDStrings(ids []recommend.ProductID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}
