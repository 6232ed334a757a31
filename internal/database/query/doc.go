// Storefront - Multi-vendor Commerce Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

// Package query provides SQL query building utilities for the database package.
//
// The WhereBuilder provides a fluent interface for constructing WHERE clauses
// with parameterized values:
//
//	wb := query.NewWhereBuilder()
//	wb.AddActive()
//	wb.AddNotIn("id", excluded)
//	wb.AddIn("category", categories)
//	whereClause, args := wb.Build()
//
//	sql := fmt.Sprintf(`SELECT ... FROM products WHERE %s ORDER BY id LIMIT ?`, whereClause)
//	args = append(args, limit)
//
// Values are always bound through ? placeholders. Column names passed to AddIn
// and AddNotIn are identifiers chosen by the caller and must never come from
// request input.
//
// WhereBuilder instances are not thread-safe. Create a new instance per query.
package query
