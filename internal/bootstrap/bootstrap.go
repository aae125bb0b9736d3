// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package bootstrap runs the post-sign-in sequence: upsert the visitor
// into the backend, then warm the caches the dashboard reads first.
package bootstrap

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jandash/jandash/internal/backend"
	"github.com/jandash/jandash/internal/model"
	"github.com/jandash/jandash/internal/session"
)

// Placeholder profile values for identities that arrive without them.
const (
	DefaultSex        = "Não informado"
	DefaultProfession = "Não informado"
)

// Pagination of the first listing page warmed on sign-in.
const (
	prefetchPage    = 1
	prefetchPerPage = 10
)

// Syncer upserts a visitor record in the backend.
type Syncer interface {
	SyncUser(ctx context.Context, params backend.CreateUserParams) error
}

// Warmer loads the reads the dashboard issues first, filling the cache
// as a side effect.
type Warmer interface {
	RealUser(ctx context.Context, email string) (model.User, error)
	Page(ctx context.Context, page, perPage int) (model.UserPage, error)
}

// Flow wires the sign-in sequence together.
type Flow struct {
	syncer Syncer
	warmer Warmer
}

func New(s Syncer, w Warmer) *Flow {
	return &Flow{syncer: s, warmer: w}
}

// Run executes the full sequence for a signed-in identity. Neither step
// is allowed to block the welcome page: sync failures are retried once
// and then logged, prefetch failures are logged only. Every record the
// prefetch would have warmed is fetched again on first page view, so a
// failure here costs latency, not correctness.
func (f *Flow) Run(ctx context.Context, id session.Identity) {
	f.Sync(ctx, id)
	f.Prefetch(ctx, id)
}

// Sync upserts the visitor into the backend. The upsert is idempotent
// on email, so a repeat sign-in is a no-op server-side. A transient
// failure gets one retry; a second failure is logged and the visitor
// proceeds anyway.
func (f *Flow) Sync(ctx context.Context, id session.Identity) {
	params := backend.CreateUserParams{
		Name:       id.Name,
		Email:      id.Email,
		Sex:        DefaultSex,
		Profession: DefaultProfession,
	}
	if params.Name == "" {
		params.Name = id.Email
	}

	err := f.syncer.SyncUser(ctx, params)
	if err == nil {
		return
	}
	slog.Warn("visitor sync failed, retrying", "email", id.Email, "error", err)

	select {
	case <-time.After(200 * time.Millisecond):
	case <-ctx.Done():
		return
	}
	if err := f.syncer.SyncUser(ctx, params); err != nil {
		slog.Error("visitor sync failed after retry", "email", id.Email, "error", err)
	}
}

// Prefetch warms the visitor card and the first users page concurrently.
func (f *Flow) Prefetch(ctx context.Context, id session.Identity) {
	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		if _, err := f.warmer.RealUser(ctx, id.Email); err != nil {
			slog.Warn("visitor card prefetch failed", "email", id.Email, "error", err)
		}
	}()
	go func() {
		defer wg.Done()
		if _, err := f.warmer.Page(ctx, prefetchPage, prefetchPerPage); err != nil {
			slog.Warn("users page prefetch failed", "error", err)
		}
	}()
	wg.Wait()
}
