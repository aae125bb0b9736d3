// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for session gating,
// request hardening, and request context handling.
package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/alexedwards/scs/v2"

	"github.com/jandash/jandash/internal/session"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// ContextKeyIdentity is the context key for the signed-in identity.
const ContextKeyIdentity ContextKey = "identity"

// RequireSession creates middleware that gates a route on a signed-in
// session. Visitors without one land back on the public page.
func RequireSession(sm *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := session.IdentityFrom(r.Context(), sm)
			if !ok {
				http.Redirect(w, r, "/", http.StatusSeeOther)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyIdentity, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetIdentity retrieves the signed-in identity from the request context.
// The boolean is false outside RequireSession-wrapped routes.
func GetIdentity(r *http.Request) (session.Identity, bool) {
	id, ok := r.Context().Value(ContextKeyIdentity).(session.Identity)
	return id, ok
}

// RefererGate creates middleware that sends visitors arriving from
// outside the site back through the welcome flow. It mirrors the
// in-page navigation check the dashboard uses and is a UX measure,
// not a security boundary.
func RefererGate(siteURL string) func(http.Handler) http.Handler {
	host := siteURL
	if u, err := url.Parse(siteURL); err == nil && u.Host != "" {
		host = u.Host
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if host != "" && !strings.Contains(r.Referer(), host) {
				http.Redirect(w, r, "/welcome", http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
