// Storefront - Multi-vendor Commerce Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package query

import (
	"fmt"
	"strings"
)

// WhereBuilder constructs SQL WHERE clauses with parameterized arguments.
//
// Example usage:
//
//	wb := query.NewWhereBuilder()
//	wb.AddClause("is_active = ?", true)
//	wb.AddNotIn("id", []string{"p1", "p2"})
//	whereClause, args := wb.Build()
//	// is_active = ? AND id NOT IN (?, ?)
type WhereBuilder struct {
	clauses []string
	args    []interface{}
}

// NewWhereBuilder creates a new WhereBuilder instance.
func NewWhereBuilder() *WhereBuilder {
	return &WhereBuilder{
		clauses: []string{},
		args:    []interface{}{},
	}
}

// AddClause adds a raw WHERE clause with its arguments.
//
// Parameters:
//   - clause: SQL condition fragment (e.g., "category = ?")
//   - args: Arguments to bind to placeholders in the clause
func (wb *WhereBuilder) AddClause(clause string, args ...interface{}) *WhereBuilder {
	wb.clauses = append(wb.clauses, clause)
	wb.args = append(wb.args, args...)
	return wb
}

// AddActive restricts the query to active products.
func (wb *WhereBuilder) AddActive() *WhereBuilder {
	return wb.AddClause("is_active = ?", true)
}

// AddIn adds "column IN (?, ...)". An empty values slice is skipped.
// column must be a trusted identifier, never user input.
func (wb *WhereBuilder) AddIn(column string, values []string) *WhereBuilder {
	return wb.addList(column, "IN", values)
}

// AddNotIn adds "column NOT IN (?, ...)". An empty values slice is skipped.
// column must be a trusted identifier, never user input.
func (wb *WhereBuilder) AddNotIn(column string, values []string) *WhereBuilder {
	return wb.addList(column, "NOT IN", values)
}

func (wb *WhereBuilder) addList(column, op string, values []string) *WhereBuilder {
	if len(values) == 0 {
		return wb
	}
	wb.clauses = append(wb.clauses, fmt.Sprintf("%s %s (%s)", column, op, Placeholders(len(values))))
	for _, v := range values {
		wb.args = append(wb.args, v)
	}
	return wb
}

// Build constructs the final WHERE clause and returns it with arguments.
// Clauses are joined with "AND". Returns ("1=1", []) if no clauses were added.
func (wb *WhereBuilder) Build() (string, []interface{}) {
	if len(wb.clauses) == 0 {
		return "1=1", []interface{}{}
	}
	return strings.Join(wb.clauses, " AND "), wb.args
}

// Placeholders returns n comma-separated "?" placeholders.
func Placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
