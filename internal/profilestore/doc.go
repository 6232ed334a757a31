// Storefront - Multi-vendor Commerce Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

// Package profilestore persists shopper profiles in BadgerDB.
//
// Store implements recommend.UserRepository. Each profile is one JSON value
// under the key "user:<id>", so a profile write is a single-key transaction.
// Concurrent updates to the same user are serialized by the recommend
// Accumulator, not by the store.
//
// Compactor runs value log GC on an interval and plugs into the supervisor
// tree through its Start/Stop/IsRunning lifecycle.
package profilestore
