// Storefront - Multi-vendor Commerce Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package database

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/tomtom215/storefront/internal/recommend"
	"github.com/tomtom215/storefront/internal/vector"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanProduct scans one row selected with productColumns.
func scanProduct(row rowScanner) (*recommend.Product, error) {
	var (
		p        recommend.Product
		id       string
		imageRaw interface{}
		textRaw  interface{}
	)
	err := row.Scan(
		&id, &p.Title, &p.Description, &p.Category, &p.Price, &p.Active,
		&imageRaw, &textRaw,
		&p.ViewsCount, &p.AddToCartCount, &p.PurchaseCount, &p.PopularityScore,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.ID = recommend.ProductID(id)

	if p.ImageVector, err = decodeVector(imageRaw); err != nil {
		return nil, fmt.Errorf("image vector of %s: %w", id, err)
	}
	if p.TextVector, err = decodeVector(textRaw); err != nil {
		return nil, fmt.Errorf("text vector of %s: %w", id, err)
	}
	return &p, nil
}

// encodeVector renders v as a DuckDB list literal for CAST(? AS DOUBLE[]).
// An empty vector is stored as NULL.
func encodeVector(v vector.Vector) (interface{}, error) {
	if v.IsEmpty() {
		return nil, nil
	}
	b, err := json.Marshal([]float64(v))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// decodeVector converts a scanned DOUBLE[] value into a vector.
// The driver returns LIST values as []interface{}.
func decodeVector(raw interface{}) (vector.Vector, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case []interface{}:
		if len(v) == 0 {
			return nil, nil
		}
		out := make(vector.Vector, len(v))
		for i, x := range v {
			switch f := x.(type) {
			case float64:
				out[i] = f
			case float32:
				out[i] = float64(f)
			case nil:
				out[i] = 0
			default:
				return nil, fmt.Errorf("unexpected element type %T at %d", x, i)
			}
		}
		return out, nil
	case []float64:
		if len(v) == 0 {
			return nil, nil
		}
		return vector.Vector(v).Clone(), nil
	case string:
		var out []float64
		if err := json.Unmarshal([]byte(v), &out); err != nil {
			return nil, err
		}
		if len(out) == 0 {
			return nil, nil
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unexpected vector type %T", raw)
	}
}
