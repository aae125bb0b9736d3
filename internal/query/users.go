// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package query

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jandash/jandash/internal/backend"
	"github.com/jandash/jandash/internal/cache"
	"github.com/jandash/jandash/internal/model"
)

// Backend is the subset of the backend client the query layer needs.
// Declared here so tests can substitute a fake.
type Backend interface {
	GetUserByID(ctx context.Context, id string) (backend.Envelope, error)
	ListUsers(ctx context.Context, page, perPage int) (backend.ListEnvelope, error)
	GetRealUserByEmail(ctx context.Context, email string) (backend.Envelope, error)
	CreateUser(ctx context.Context, params backend.CreateUserParams) (backend.Envelope, error)
}

// Users reads user records through the cache and owns invalidation.
// It is an explicit object constructed once in main and handed to every
// consumer; there is no package-level cache state.
type Users struct {
	cache   cache.Cacher
	backend Backend
	group   singleflight.Group
	ttl     time.Duration
}

// NewUsers creates the users query layer. ttl 0 defers to the cache's
// default TTL.
func NewUsers(c cache.Cacher, b Backend, ttl time.Duration) *Users {
	return &Users{cache: c, backend: b, ttl: ttl}
}

// User returns a single user by backend ID, from cache when possible.
func (u *Users) User(ctx context.Context, id string) (model.User, error) {
	return through(ctx, u, UserKey(id), func() (model.User, error) {
		env, err := u.backend.GetUserByID(ctx, id)
		if err != nil {
			return model.User{}, err
		}
		return env.Normalize(), nil
	})
}

// Page returns one page of the users listing, from cache when possible.
func (u *Users) Page(ctx context.Context, page, perPage int) (model.UserPage, error) {
	return through(ctx, u, UsersPageKey(page, perPage), func() (model.UserPage, error) {
		list, err := u.backend.ListUsers(ctx, page, perPage)
		if err != nil {
			return model.UserPage{}, err
		}
		return list.Normalize(), nil
	})
}

// RealUser returns the signed-in operator's own record by email.
func (u *Users) RealUser(ctx context.Context, email string) (model.User, error) {
	return through(ctx, u, RealUserKey(email), func() (model.User, error) {
		env, err := u.backend.GetRealUserByEmail(ctx, email)
		if err != nil {
			return model.User{}, err
		}
		return env.Normalize(), nil
	})
}

// Create creates a user and, on success, invalidates every cached users
// read so the next listing or detail view refetches.
func (u *Users) Create(ctx context.Context, params backend.CreateUserParams) (model.User, error) {
	env, err := u.backend.CreateUser(ctx, params)
	if err != nil {
		return model.User{}, err
	}

	u.InvalidateUsers(ctx)
	return env.Normalize(), nil
}

// InvalidateUsers drops every cache entry under the users prefix.
func (u *Users) InvalidateUsers(ctx context.Context) {
	if err := u.cache.DeleteByPrefix(ctx, UsersPrefix); err != nil {
		slog.Warn("failed to invalidate users cache", "error", err)
	}
}

// through implements the read path: cache hit, else a coalesced fetch that
// populates the cache. Concurrent callers for the same key share one
// backend call. Cache write failures are logged, not propagated; the
// fetched value is still good.
func through[T any](ctx context.Context, u *Users, key string, fetch func() (T, error)) (T, error) {
	var zero T

	if data, err := u.cache.Get(ctx, key); err == nil {
		var value T
		if err := json.Unmarshal(data, &value); err == nil {
			return value, nil
		}
		// Undecodable entry: drop it and fall through to a fresh fetch.
		_ = u.cache.Delete(ctx, key)
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		slog.Warn("cache read failed", "key", key, "error", err)
	}

	result, err, _ := u.group.Do(key, func() (any, error) {
		value, err := fetch()
		if err != nil {
			return nil, err
		}

		if data, err := json.Marshal(value); err == nil {
			if err := u.cache.Set(ctx, key, data, u.ttl); err != nil {
				slog.Warn("cache write failed", "key", key, "error", err)
			}
		}
		return value, nil
	})
	if err != nil {
		return zero, err
	}
	return result.(T), nil
}
