// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler implements the dashboard's HTTP handlers.
package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/jandash/jandash/internal/backend"
	"github.com/jandash/jandash/internal/bootstrap"
	"github.com/jandash/jandash/internal/middleware"
	"github.com/jandash/jandash/internal/model"
	"github.com/jandash/jandash/internal/query"
	"github.com/jandash/jandash/internal/render"
	"github.com/jandash/jandash/internal/session"
)

// PagesHandler handles the landing, welcome and dashboard pages.
type PagesHandler struct {
	renderer       *render.Renderer
	sessionManager *scs.SessionManager
	users          *query.Users
	flow           *bootstrap.Flow
	idpLoginURL    string
}

// NewPagesHandler creates a new PagesHandler.
func NewPagesHandler(renderer *render.Renderer, sm *scs.SessionManager, users *query.Users, flow *bootstrap.Flow, idpLoginURL string) *PagesHandler {
	return &PagesHandler{
		renderer:       renderer,
		sessionManager: sm,
		users:          users,
		flow:           flow,
		idpLoginURL:    idpLoginURL,
	}
}

// LandingData holds data for the landing template.
type LandingData struct {
	LoginURL string
}

// Landing handles GET / - the public entry page. Signed-in visitors go
// straight to the dashboard.
func (h *PagesHandler) Landing(w http.ResponseWriter, r *http.Request) {
	if _, ok := session.IdentityFrom(r.Context(), h.sessionManager); ok {
		http.Redirect(w, r, redirectDashboard, http.StatusSeeOther)
		return
	}

	err := h.renderer.Render(w, r, "landing", render.TemplateData{
		Title: "Bem-vindo",
		Data:  LandingData{LoginURL: h.idpLoginURL},
	})
	if err != nil {
		logAndInternalError(w, "failed to render landing page", "error", err)
	}
}

// Welcome handles GET /welcome - runs the sign-in sequence and shows a
// short transition page that forwards to the dashboard.
func (h *PagesHandler) Welcome(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.GetIdentity(r)
	if !ok {
		http.Redirect(w, r, redirectRoot, http.StatusSeeOther)
		return
	}

	h.flow.Run(r.Context(), id)

	err := h.renderer.Render(w, r, "welcome", render.TemplateData{
		Title: "Bem-vindo",
		Data:  id,
	})
	if err != nil {
		logAndInternalError(w, "failed to render welcome page", "error", err)
	}
}

// DashboardData holds data for the dashboard template.
type DashboardData struct {
	Identity   session.Identity
	Profile    model.User
	HasProfile bool
	TotalUsers int64
}

// Dashboard handles GET /dashboard - the signed-in home page with the
// visitor's own record card.
func (h *PagesHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.GetIdentity(r)

	data := DashboardData{Identity: id}

	profile, err := h.users.RealUser(r.Context(), id.Email)
	switch {
	case err == nil:
		data.Profile = profile
		data.HasProfile = true
	case errors.Is(err, backend.ErrNotFound):
		// Upsert may still be in flight; the card just stays empty.
	default:
		slog.Warn("failed to load visitor card", "email", id.Email, "error", err)
	}

	if page, err := h.users.Page(r.Context(), 1, UsersPerPage); err == nil {
		data.TotalUsers = page.Total
	}

	err = h.renderer.Render(w, r, "dashboard", render.TemplateData{
		Title: "Dashboard",
		Data:  data,
	})
	if err != nil {
		logAndInternalError(w, "failed to render dashboard", "error", err)
	}
}

// Logout handles GET /logout - destroys the session and returns to the
// landing page.
func (h *PagesHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessionManager.Destroy(r.Context()); err != nil {
		slog.Error("failed to destroy session", "error", err)
	}
	http.Redirect(w, r, redirectRoot, http.StatusSeeOther)
}

// DevLogin handles GET /dev/login - a development-only stand-in for the
// identity provider callback. Registered only when running in dev mode.
func (h *PagesHandler) DevLogin(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		http.Error(w, "email query parameter required", http.StatusBadRequest)
		return
	}

	session.PutIdentity(r.Context(), h.sessionManager, session.Identity{
		Email: email,
		Name:  r.URL.Query().Get("name"),
	})
	http.Redirect(w, r, redirectWelcome, http.StatusSeeOther)
}
