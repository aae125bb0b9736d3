// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alexedwards/scs/v2"

	"github.com/jandash/jandash/internal/session"
)

func TestRequireSession(t *testing.T) {
	t.Run("anonymous visitor is sent to the public page", func(t *testing.T) {
		sm := scs.New()

		final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler reached without a session")
		})
		h := sm.LoadAndSave(RequireSession(sm)(final))

		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusSeeOther {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
		}
		if loc := rec.Header().Get("Location"); loc != "/" {
			t.Errorf("Location = %q, want %q", loc, "/")
		}
	})

	t.Run("signed-in visitor passes with identity in context", func(t *testing.T) {
		sm := scs.New()

		final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := GetIdentity(r)
			if !ok {
				t.Error("GetIdentity() not found inside gated handler")
			}
			if id.Email != "ana@example.com" {
				t.Errorf("identity email = %q, want %q", id.Email, "ana@example.com")
			}
			w.WriteHeader(http.StatusOK)
		})
		gated := RequireSession(sm)(final)

		// Populate the session on the same request before hitting the gate,
		// the way the identity provider callback would.
		h := sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session.PutIdentity(r.Context(), sm, session.Identity{
				Email: "ana@example.com",
				Name:  "Ana Souza",
			})
			gated.ServeHTTP(w, r)
		}))

		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}
	})
}

func TestGetIdentity_OutsideGate(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ok := GetIdentity(req); ok {
		t.Error("GetIdentity() = ok outside RequireSession")
	}
}

func TestRefererGate(t *testing.T) {
	tests := []struct {
		name     string
		referer  string
		wantPass bool
	}{
		{"no referer", "", false},
		{"external referer", "https://evil.example.org/page", false},
		{"site referer", "https://dash.example.com/users", true},
		{"site referer deep path", "https://dash.example.com/dashboard", true},
	}

	gate := RefererGate("https://dash.example.com")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			passed := false
			h := gate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				passed = true
			}))

			req := httptest.NewRequest(http.MethodGet, "/users/new", nil)
			if tt.referer != "" {
				req.Header.Set("Referer", tt.referer)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if passed != tt.wantPass {
				t.Fatalf("passed = %v, want %v", passed, tt.wantPass)
			}
			if !tt.wantPass {
				if loc := rec.Header().Get("Location"); loc != "/welcome" {
					t.Errorf("Location = %q, want %q", loc, "/welcome")
				}
			}
		})
	}
}
