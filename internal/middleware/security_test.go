// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func serveWithHeaders(t *testing.T, cfg SecurityHeadersConfig) http.Header {
	t.Helper()
	h := SecurityHeaders(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	return rec.Header()
}

func TestSecurityHeaders_Production(t *testing.T) {
	hdr := serveWithHeaders(t, DefaultSecurityHeadersConfig(false))

	if got := hdr.Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
	if got := hdr.Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q, want DENY", got)
	}
	if got := hdr.Get("Referrer-Policy"); got != "same-origin" {
		t.Errorf("Referrer-Policy = %q, want same-origin", got)
	}
	hsts := hdr.Get("Strict-Transport-Security")
	if !strings.Contains(hsts, "max-age=31536000") || !strings.Contains(hsts, "includeSubDomains") {
		t.Errorf("Strict-Transport-Security = %q", hsts)
	}
	csp := hdr.Get("Content-Security-Policy")
	if !strings.Contains(csp, "default-src 'self'") || !strings.Contains(csp, "form-action 'self'") {
		t.Errorf("Content-Security-Policy = %q", csp)
	}
}

func TestSecurityHeaders_DevelopmentSkipsHSTS(t *testing.T) {
	hdr := serveWithHeaders(t, DefaultSecurityHeadersConfig(true))

	if got := hdr.Get("Strict-Transport-Security"); got != "" {
		t.Errorf("Strict-Transport-Security = %q, want empty in development", got)
	}
}

func TestMutationLimiter(t *testing.T) {
	ml := NewMutationLimiter(1, 2)
	defer ml.Close()

	h := ml.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func(method, ip string) int {
		req := httptest.NewRequest(method, "/users", nil)
		req.Header.Set("X-Real-IP", ip)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	t.Run("reads are never limited", func(t *testing.T) {
		for range 10 {
			if code := do(http.MethodGet, "10.0.0.1"); code != http.StatusOK {
				t.Fatalf("GET status = %d, want %d", code, http.StatusOK)
			}
		}
	})

	t.Run("writes beyond burst are rejected", func(t *testing.T) {
		if code := do(http.MethodPost, "10.0.0.2"); code != http.StatusOK {
			t.Fatalf("first POST status = %d, want %d", code, http.StatusOK)
		}
		if code := do(http.MethodPost, "10.0.0.2"); code != http.StatusOK {
			t.Fatalf("second POST status = %d, want %d", code, http.StatusOK)
		}
		if code := do(http.MethodPost, "10.0.0.2"); code != http.StatusTooManyRequests {
			t.Fatalf("third POST status = %d, want %d", code, http.StatusTooManyRequests)
		}
	})

	t.Run("limits are per IP", func(t *testing.T) {
		if code := do(http.MethodPost, "10.0.0.3"); code != http.StatusOK {
			t.Fatalf("POST from fresh IP status = %d, want %d", code, http.StatusOK)
		}
	})
}

func TestTimeout(t *testing.T) {
	t.Run("fast handler completes", func(t *testing.T) {
		h := Timeout(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}
	})

	t.Run("slow handler gets 503", func(t *testing.T) {
		h := Timeout(20*time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
		}
	})
}

func TestRequestLogger_PassesThrough(t *testing.T) {
	h := RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) Firefox/130.0")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusCreated)
	}
}
