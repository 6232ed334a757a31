// Storefront - Multi-vendor Commerce Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package eventprocessor

import (
	"fmt"

	"github.com/goccy/go-json"
)

// Event is implemented by every payload carried on the bus.
type Event interface {
	ID() string
	Validate() error
	Topic() string
}

// Marshal validates an event and encodes it as JSON.
func Marshal(event Event) ([]byte, error) {
	if err := event.Validate(); err != nil {
		return nil, fmt.Errorf("validate event: %w", err)
	}
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return data, nil
}

// Unmarshal decodes data into event and validates it.
func Unmarshal(data []byte, event Event) error {
	if err := json.Unmarshal(data, event); err != nil {
		return fmt.Errorf("unmarshal event: %w", err)
	}
	if err := event.Validate(); err != nil {
		return fmt.Errorf("validate event: %w", err)
	}
	return nil
}
