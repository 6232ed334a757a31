// Storefront - Multi-vendor Commerce Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package profilestore

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/storefront/internal/config"
	"github.com/tomtom215/storefront/internal/logging"
	"github.com/tomtom215/storefront/internal/recommend"
)

// Key prefix for BadgerDB storage
const userKeyPrefix = "user:"

// gcDiscardRatio is the value log discard ratio passed to RunValueLogGC.
const gcDiscardRatio = 0.5

// ErrStoreClosed is returned when the store is used after Close.
var ErrStoreClosed = errors.New("profile store is closed")

// Store implements recommend.UserRepository on BadgerDB.
// Profiles are stored as JSON under "user:<id>".
type Store struct {
	db       *badger.DB
	inMemory bool
	closed   atomic.Bool
}

var _ recommend.UserRepository = (*Store)(nil)

// Open opens (or creates) the profile store described by cfg.
func Open(cfg *config.ProfilesConfig) (*Store, error) {
	opts := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}

	// Reduce logging verbosity
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	logging.Info().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.InMemory).
		Msg("Profile store opened")
	return &Store{db: db, inMemory: cfg.InMemory}, nil
}

func userKey(id recommend.UserID) []byte {
	return []byte(userKeyPrefix + string(id))
}

func (s *Store) checkNotClosed() error {
	if s.closed.Load() {
		return ErrStoreClosed
	}
	return nil
}

// Ping checks that the store is open and readable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.checkNotClosed(); err != nil {
		return err
	}
	return s.db.View(func(*badger.Txn) error {
		return ctx.Err()
	})
}

// FindByID returns the profile or recommend.ErrNotFound.
func (s *Store) FindByID(ctx context.Context, id recommend.UserID) (*recommend.UserProfile, error) {
	if err := s.checkNotClosed(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var profile recommend.UserProfile
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("user %s: %w", id, recommend.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("get user: %w", err)
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &profile)
		})
	})
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// Save inserts or replaces a profile.
func (s *Store) Save(ctx context.Context, u *recommend.UserProfile) error {
	if err := s.checkNotClosed(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if u.ID == "" {
		return fmt.Errorf("save user: empty id: %w", recommend.ErrInvalidInput)
	}

	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(userKey(u.ID), data); err != nil {
			return fmt.Errorf("set user: %w", err)
		}
		return nil
	})
}

// RunGC runs value log garbage collection until nothing is left to rewrite.
// It is a no-op for in-memory stores.
func (s *Store) RunGC() error {
	if err := s.checkNotClosed(); err != nil {
		return err
	}
	if s.inMemory {
		return nil
	}

	for {
		err := s.db.RunValueLogGC(gcDiscardRatio)
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrGCInMemoryMode) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("run GC: %w", err)
		}
	}
}

// Close closes the underlying database. Subsequent calls are no-ops.
func (s *Store) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close BadgerDB: %w", err)
	}
	return nil
}
