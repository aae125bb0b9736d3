// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/jandash/jandash/internal/backend"
	"github.com/jandash/jandash/internal/model"
	"github.com/jandash/jandash/internal/query"
	"github.com/jandash/jandash/internal/render"
	"github.com/jandash/jandash/internal/util"
)

// UsersPerPage is the number of users to display per page.
const UsersPerPage = 10

// SexOptions are the accepted values for the sex field, in display order.
var SexOptions = []string{"Masculino", "Feminino", "Prefiro não responder"}

// UsersHandler handles the user record routes.
type UsersHandler struct {
	users    *query.Users
	renderer *render.Renderer
}

// NewUsersHandler creates a new UsersHandler.
func NewUsersHandler(users *query.Users, renderer *render.Renderer) *UsersHandler {
	return &UsersHandler{
		users:    users,
		renderer: renderer,
	}
}

// UsersListData holds data for the users list template.
type UsersListData struct {
	Users      []model.User
	TotalUsers int64
	Pagination Pagination
}

// List handles GET /users - displays a paginated list of user records.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	page := ParsePageParam(r)

	result, err := h.users.Page(r.Context(), page, UsersPerPage)
	if err != nil {
		logAndInternalError(w, "failed to list users", "error", err, "page", page)
		return
	}

	// Clamp past-the-end pages back to the last one
	totalPages := int((result.Total + UsersPerPage - 1) / UsersPerPage)
	if clamped := ClampPage(page, totalPages); clamped != page {
		page = clamped
		result, err = h.users.Page(r.Context(), page, UsersPerPage)
		if err != nil {
			logAndInternalError(w, "failed to list users", "error", err, "page", page)
			return
		}
	}

	data := UsersListData{
		Users:      result.Users,
		TotalUsers: result.Total,
		Pagination: BuildPagination(page, result.Total, UsersPerPage, redirectUsers),
	}

	err = h.renderer.Render(w, r, "users_list", render.TemplateData{
		Title: "Usuários",
		Data:  data,
	})
	if err != nil {
		logAndInternalError(w, "failed to render users list", "error", err)
	}
}

// Detail handles GET /users/{id} - displays a single user record.
func (h *UsersHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		flashError(w, r, h.renderer, redirectUsers, "Usuário inválido")
		return
	}

	user, err := h.users.User(r.Context(), id)
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			flashError(w, r, h.renderer, redirectUsers, "Usuário não encontrado")
			return
		}
		logAndInternalError(w, "failed to load user", "error", err, "user_id", id)
		return
	}

	err = h.renderer.Render(w, r, "users_detail", render.TemplateData{
		Title: user.Name,
		Data:  user,
	})
	if err != nil {
		logAndInternalError(w, "failed to render user detail", "error", err)
	}
}

// UserFormData holds data for the new user form template.
type UserFormData struct {
	SexOptions []string
	Errors     map[string]string
	FormValues map[string]string
	// Banner carries a backend rejection message shown above the form.
	Banner string
}

// NewForm handles GET /users/new - displays the new user form.
func (h *UsersHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	h.renderUserForm(w, r, UserFormData{
		SexOptions: SexOptions,
		Errors:     make(map[string]string),
		FormValues: make(map[string]string),
	})
}

// Create handles POST /users - creates a new user record.
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, redirectUsersNew) {
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	email := strings.TrimSpace(r.FormValue("email"))
	profession := strings.TrimSpace(r.FormValue("profession"))
	sex := r.FormValue("sex")

	formValues := map[string]string{
		"name":       name,
		"email":      email,
		"profession": profession,
		"sex":        sex,
	}

	validationErrors := make(map[string]string)

	if name == "" {
		validationErrors["name"] = "Nome é obrigatório"
	}

	if email == "" {
		validationErrors["email"] = "E-mail é obrigatório"
	} else if !isValidEmail(email) {
		validationErrors["email"] = "Digite um e-mail válido"
	}

	if profession == "" {
		validationErrors["profession"] = "Profissão é obrigatório"
	}

	if sex == "" {
		validationErrors["sex"] = "Sexo é obrigatório"
	} else if !isValidSex(sex) {
		validationErrors["sex"] = "Sexo é obrigatório"
	}

	if len(validationErrors) > 0 {
		h.renderUserForm(w, r, UserFormData{
			SexOptions: SexOptions,
			Errors:     validationErrors,
			FormValues: formValues,
		})
		return
	}

	params := backend.CreateUserParams{
		Name:       util.Capitalize(util.Sanitize(name)),
		Email:      util.NormalizeEmail(util.Sanitize(email)),
		Profession: util.Capitalize(util.Sanitize(profession)),
		Sex:        sex,
	}

	created, err := h.users.Create(r.Context(), params)
	if err != nil {
		var conflict *backend.ConflictError
		if errors.As(err, &conflict) {
			// Duplicate email: keep the visitor on the form with the
			// backend's own message and the values intact.
			h.renderUserForm(w, r, UserFormData{
				SexOptions: SexOptions,
				Errors:     make(map[string]string),
				FormValues: formValues,
				Banner:     conflict.Message,
			})
			return
		}

		slog.Error("failed to create user", "error", err, "email", params.Email)
		h.renderUserForm(w, r, UserFormData{
			SexOptions: SexOptions,
			Errors:     make(map[string]string),
			FormValues: formValues,
			Banner:     "Não foi possível cadastrar o usuário. Tente novamente.",
		})
		return
	}

	slog.Info("user created", "user_id", created.ID, "email", created.Email)
	flashSuccess(w, r, h.renderer, redirectUsers, "Usuário cadastrado com sucesso!")
}

// isValidEmail accepts only a bare address with a dotted domain.
// mail.ParseAddress also tolerates display-name forms like
// "Ana Souza <ana@example.com>", which would put a non-address into the
// record's natural key, so anything the parser rewrites is rejected.
func isValidEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}
	domain := email[strings.LastIndex(email, "@")+1:]
	return strings.Contains(domain, ".")
}

// isValidSex checks if a sex value is one of the accepted options.
func isValidSex(sex string) bool {
	for _, s := range SexOptions {
		if s == sex {
			return true
		}
	}
	return false
}

// renderUserForm renders the new user form with the given data.
func (h *UsersHandler) renderUserForm(w http.ResponseWriter, r *http.Request, data UserFormData) {
	err := h.renderer.Render(w, r, "users_form", render.TemplateData{
		Title: "Novo usuário",
		Data:  data,
	})
	if err != nil {
		logAndInternalError(w, "failed to render user form", "error", err)
	}
}
