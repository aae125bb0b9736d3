// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler keeps the hot cache entries warm in the background.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jandash/jandash/internal/model"
)

// refreshTimeout bounds one background refresh run.
const refreshTimeout = 30 * time.Second

// Warmer reloads the first users page, filling the cache as a side effect.
type Warmer interface {
	InvalidateUsers(ctx context.Context)
	Page(ctx context.Context, page, perPage int) (model.UserPage, error)
}

// Scheduler handles periodic cache refresh.
type Scheduler struct {
	warmer   Warmer
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger
}

// New creates a new scheduler instance. The schedule uses cron syntax,
// including the @every shorthand.
func New(warmer Warmer, schedule string, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		warmer:   warmer,
		schedule: schedule,
		cron:     cron.New(),
		logger:   logger,
	}
}

// Start begins the periodic refresh of the first users page. That page
// backs the listing every visitor lands on, so it is the one entry worth
// keeping warm between requests.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.schedule, s.refreshUsers)
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "schedule", s.schedule, "jobs", len(s.cron.Entries()))
	return nil
}

// Stop gracefully stops the scheduler, waiting for a running job.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// refreshUsers drops the users cache entries and reloads the first page,
// so stale listings age out even when nobody creates a record.
func (s *Scheduler) refreshUsers() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	s.warmer.InvalidateUsers(ctx)
	page, err := s.warmer.Page(ctx, 1, 10)
	if err != nil {
		s.logger.Error("background users refresh failed", "error", err)
		return
	}

	s.logger.Debug("users cache refreshed", "total", page.Total)
}
