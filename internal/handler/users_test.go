// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func postForm(target string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func validForm() url.Values {
	return url.Values{
		"name":       {"ana souza"},
		"email":      {"ANA@Example.com"},
		"profession": {"engenheira de software"},
		"sex":        {"Feminino"},
	}
}

func TestUsersCreate_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(url.Values)
		wantErr string
	}{
		{"missing name", func(v url.Values) { v.Set("name", "") }, "err:name=Nome é obrigatório"},
		{"whitespace name", func(v url.Values) { v.Set("name", "   ") }, "err:name=Nome é obrigatório"},
		{"missing email", func(v url.Values) { v.Set("email", "") }, "err:email=E-mail é obrigatório"},
		{"malformed email", func(v url.Values) { v.Set("email", "not-an-email") }, "err:email=Digite um e-mail válido"},
		{"display-name email", func(v url.Values) { v.Set("email", "Ana Souza <ana@example.com>") }, "err:email=Digite um e-mail válido"},
		{"dotless email domain", func(v url.Values) { v.Set("email", "ana@localhost") }, "err:email=Digite um e-mail válido"},
		{"missing profession", func(v url.Values) { v.Set("profession", "") }, "err:profession=Profissão é obrigatório"},
		{"missing sex", func(v url.Values) { v.Set("sex", "") }, "err:sex=Sexo é obrigatório"},
		{"unknown sex option", func(v url.Values) { v.Set("sex", "Outro") }, "err:sex=Sexo é obrigatório"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			h := NewUsersHandler(env.users, env.renderer)

			form := validForm()
			tt.mutate(form)

			rec := env.serve(t, http.HandlerFunc(h.Create), postForm("/users", form))

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want %d (form re-rendered)", rec.Code, http.StatusOK)
			}
			body := rec.Body.String()
			if !strings.Contains(body, tt.wantErr) {
				t.Errorf("body missing %q: %s", tt.wantErr, body)
			}
			if env.backend.lastCreate.Email != "" {
				t.Error("backend create called despite validation errors")
			}
		})
	}
}

func TestUsersCreate_ValidationKeepsValues(t *testing.T) {
	env := newTestEnv(t)
	h := NewUsersHandler(env.users, env.renderer)

	form := validForm()
	form.Set("email", "")

	rec := env.serve(t, http.HandlerFunc(h.Create), postForm("/users", form))

	body := rec.Body.String()
	if !strings.Contains(body, "val:name=ana souza") {
		t.Errorf("re-rendered form lost the name value: %s", body)
	}
	if !strings.Contains(body, "val:profession=engenheira de software") {
		t.Errorf("re-rendered form lost the profession value: %s", body)
	}
}

func TestUsersCreate_Success(t *testing.T) {
	env := newTestEnv(t)
	h := NewUsersHandler(env.users, env.renderer)

	rec := env.serve(t, http.HandlerFunc(h.Create), postForm("/users", validForm()))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/users" {
		t.Errorf("Location = %q, want /users", loc)
	}

	// The record reaches the backend normalized: capitalized name and
	// profession, lowercased email.
	got := env.backend.lastCreate
	if got.Name != "Ana Souza" {
		t.Errorf("created name = %q, want %q", got.Name, "Ana Souza")
	}
	if got.Email != "ana@example.com" {
		t.Errorf("created email = %q, want %q", got.Email, "ana@example.com")
	}
	if got.Profession != "Engenheira De Software" {
		t.Errorf("created profession = %q, want %q", got.Profession, "Engenheira De Software")
	}
	if got.Sex != "Feminino" {
		t.Errorf("created sex = %q, want %q", got.Sex, "Feminino")
	}
}

func TestUsersCreate_PunctuationReachesBackendIntact(t *testing.T) {
	env := newTestEnv(t)
	h := NewUsersHandler(env.users, env.renderer)

	form := validForm()
	form.Set("name", "pedro d'alcântara")
	form.Set("profession", "sócio & gerente")

	rec := env.serve(t, http.HandlerFunc(h.Create), postForm("/users", form))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}

	// The backend stores plain text, so markup stripping must not leave
	// HTML entities behind in names or professions.
	got := env.backend.lastCreate
	if !strings.Contains(got.Name, "'") || strings.Contains(got.Name, "&#") {
		t.Errorf("created name = %q, apostrophe not preserved", got.Name)
	}
	if got.Profession != "Sócio & Gerente" {
		t.Errorf("created profession = %q, want %q", got.Profession, "Sócio & Gerente")
	}
}

func TestUsersCreate_SuccessFlashShownOnNextPage(t *testing.T) {
	env := newTestEnv(t)
	h := NewUsersHandler(env.users, env.renderer)

	// Success sets the flash and the following listing render pops it.
	// Both run inside one session-wrapped handler so the test shares the
	// session state between the two steps.
	var listBody string
	combined := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.Create(httptest.NewRecorder(), r)

		listReq := httptest.NewRequest(http.MethodGet, "/users", nil).WithContext(r.Context())
		listRec := httptest.NewRecorder()
		h.List(listRec, listReq)
		listBody = listRec.Body.String()
	})

	env.serve(t, combined, postForm("/users", validForm()))

	if !strings.Contains(listBody, "[flash:success:Usuário cadastrado com sucesso!]") {
		t.Errorf("listing missing success flash: %s", listBody)
	}
}

func TestUsersCreate_Conflict(t *testing.T) {
	env := newTestEnv(t)
	env.backend.conflictEmails["ana@example.com"] = "Usuário já cadastrado com este e-mail."
	h := NewUsersHandler(env.users, env.renderer)

	rec := env.serve(t, http.HandlerFunc(h.Create), postForm("/users", validForm()))

	// No redirect: the visitor stays on the form with the backend's
	// message and the submitted values.
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "banner=Usuário já cadastrado com este e-mail.") {
		t.Errorf("body missing conflict banner: %s", body)
	}
	if !strings.Contains(body, "val:name=ana souza") {
		t.Errorf("conflict re-render lost form values: %s", body)
	}
}

func TestUsersCreate_BackendFailure(t *testing.T) {
	env := newTestEnv(t)
	env.backend.failCreate = true
	h := NewUsersHandler(env.users, env.renderer)

	rec := env.serve(t, http.HandlerFunc(h.Create), postForm("/users", validForm()))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "banner=Não foi possível cadastrar o usuário. Tente novamente.") {
		t.Errorf("body missing failure banner: %s", rec.Body.String())
	}
}

func TestUsersList(t *testing.T) {
	env := newTestEnv(t)
	env.backend.addRecord("Ana Souza", "ana@example.com", "Engenheira", "Feminino")
	env.backend.addRecord("Bruno Lima", "bruno@example.com", "Professor", "Masculino")
	h := NewUsersHandler(env.users, env.renderer)

	rec := env.serve(t, http.HandlerFunc(h.List), httptest.NewRequest(http.MethodGet, "/users", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "total=2") {
		t.Errorf("body missing total: %s", body)
	}
	if !strings.Contains(body, "[1:Ana Souza]") || !strings.Contains(body, "[2:Bruno Lima]") {
		t.Errorf("body missing records: %s", body)
	}
}

func TestUsersList_ClampsPastTheEndPage(t *testing.T) {
	env := newTestEnv(t)
	env.backend.addRecord("Ana Souza", "ana@example.com", "Engenheira", "Feminino")
	h := NewUsersHandler(env.users, env.renderer)

	rec := env.serve(t, http.HandlerFunc(h.List), httptest.NewRequest(http.MethodGet, "/users?page=99", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "page=1/1") {
		t.Errorf("page not clamped: %s", rec.Body.String())
	}
}

func TestUsersDetail(t *testing.T) {
	env := newTestEnv(t)
	id := env.backend.addRecord("Ana Souza", "ana@example.com", "Engenheira", "Feminino")
	h := NewUsersHandler(env.users, env.renderer)

	router := chi.NewRouter()
	router.Get(RouteUsersID, h.Detail)

	rec := env.serve(t, router, httptest.NewRequest(http.MethodGet, "/users/"+id, nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Ana Souza") || !strings.Contains(body, "ana@example.com") {
		t.Errorf("body missing record fields: %s", body)
	}
	if !strings.Contains(body, "15 de março de 2024") {
		t.Errorf("body missing formatted date: %s", body)
	}
}

func TestUsersDetail_NotFound(t *testing.T) {
	env := newTestEnv(t)
	h := NewUsersHandler(env.users, env.renderer)

	router := chi.NewRouter()
	router.Get(RouteUsersID, h.Detail)

	rec := env.serve(t, router, httptest.NewRequest(http.MethodGet, "/users/999", nil))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/users" {
		t.Errorf("Location = %q, want /users", loc)
	}
}

func TestUsersNewForm(t *testing.T) {
	env := newTestEnv(t)
	h := NewUsersHandler(env.users, env.renderer)

	rec := env.serve(t, http.HandlerFunc(h.NewForm), httptest.NewRequest(http.MethodGet, "/users/new", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if strings.Contains(rec.Body.String(), "err:") {
		t.Errorf("fresh form rendered with errors: %s", rec.Body.String())
	}
}
