// Storefront - Multi-vendor Commerce Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package recommend

import "errors"

var (
	// ErrNotFound is returned when a product or user does not exist, or the
	// product exists but is inactive.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput is returned for unusable request input (empty image, bad id).
	ErrInvalidInput = errors.New("invalid input")

	// ErrAlreadyInWishlist is returned when adding a product twice.
	ErrAlreadyInWishlist = errors.New("already in wishlist")
)
