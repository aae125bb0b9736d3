package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/jandash/jandash/internal/backend"
	"github.com/jandash/jandash/internal/cache"
	"github.com/jandash/jandash/internal/query"
	"github.com/jandash/jandash/internal/render"
)

// fakeBackend implements query.Backend against an in-memory record set.
type fakeBackend struct {
	mu      sync.Mutex
	records []backend.Envelope
	nextID  int

	// lastCreate captures the params of the most recent create call.
	lastCreate backend.CreateUserParams

	// conflictEmails makes CreateUser return a ConflictError for these emails.
	conflictEmails map[string]string

	// failCreate makes CreateUser return a generic error.
	failCreate bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{nextID: 1, conflictEmails: make(map[string]string)}
}

func (f *fakeBackend) addRecord(name, email, profession, sex string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := fmt.Sprintf("%d", f.nextID)
	f.nextID++
	f.records = append(f.records, backend.Envelope{
		Ref: &backend.Ref{Inner: backend.RefInner{ID: id}},
		Data: backend.EnvelopeData{
			Name:       name,
			Email:      email,
			Profession: profession,
			Sex:        sex,
			CreatedAt:  "2024-03-15T10:30:00Z",
			UpdatedAt:  "2024-03-15T10:30:00Z",
		},
	})
	return id
}

func (f *fakeBackend) GetUserByID(ctx context.Context, id string) (backend.Envelope, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rec := range f.records {
		if rec.Ref != nil && rec.Ref.Inner.ID == id {
			return rec, nil
		}
	}
	return backend.Envelope{}, backend.ErrNotFound
}

func (f *fakeBackend) ListUsers(ctx context.Context, page, perPage int) (backend.ListEnvelope, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	start := (page - 1) * perPage
	end := start + perPage
	if start > len(f.records) {
		start = len(f.records)
	}
	if end > len(f.records) {
		end = len(f.records)
	}
	return backend.ListEnvelope{
		Data:  f.records[start:end],
		Total: int64(len(f.records)),
	}, nil
}

func (f *fakeBackend) GetRealUserByEmail(ctx context.Context, email string) (backend.Envelope, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rec := range f.records {
		if rec.Data.Email == email {
			return rec, nil
		}
	}
	return backend.Envelope{}, backend.ErrNotFound
}

func (f *fakeBackend) CreateUser(ctx context.Context, params backend.CreateUserParams) (backend.Envelope, error) {
	f.mu.Lock()
	f.lastCreate = params
	if msg, ok := f.conflictEmails[params.Email]; ok {
		f.mu.Unlock()
		return backend.Envelope{}, &backend.ConflictError{Message: msg}
	}
	if f.failCreate {
		f.mu.Unlock()
		return backend.Envelope{}, fmt.Errorf("backend unavailable")
	}
	f.mu.Unlock()

	id := f.addRecord(params.Name, params.Email, params.Profession, params.Sex)
	env, _ := f.GetUserByID(ctx, id)
	return env, nil
}

// testTemplates are stripped-down page templates that surface the data
// the handlers feed them, so tests can assert on the rendered output.
var testTemplates = fstest.MapFS{
	"layouts/base.html": &fstest.MapFile{
		Data: []byte(`{{define "base"}}{{if .Flash}}[flash:{{.FlashType}}:{{.Flash}}]{{end}}{{template "content" .}}{{end}}`),
	},
	"pages/landing.html": &fstest.MapFile{
		Data: []byte(`{{define "content"}}landing login={{.Data.LoginURL}}{{end}}`),
	},
	"pages/welcome.html": &fstest.MapFile{
		Data: []byte(`{{define "content"}}welcome {{.Data.Email}}{{end}}`),
	},
	"pages/dashboard.html": &fstest.MapFile{
		Data: []byte(`{{define "content"}}dashboard {{.Data.Identity.Email}} profile={{if .Data.HasProfile}}{{.Data.Profile.Name}}{{else}}none{{end}} total={{.Data.TotalUsers}}{{end}}`),
	},
	"pages/users_list.html": &fstest.MapFile{
		Data: []byte(`{{define "content"}}users total={{.Data.TotalUsers}}{{range .Data.Users}} [{{.ID}}:{{.Name}}]{{end}} page={{.Data.Pagination.CurrentPage}}/{{.Data.Pagination.TotalPages}}{{end}}`),
	},
	"pages/users_detail.html": &fstest.MapFile{
		Data: []byte(`{{define "content"}}user {{.Data.Name}} {{.Data.Email}} {{.Data.Profession}} {{.Data.Sex}} {{.Data.CreatedAt}}{{end}}`),
	},
	"pages/users_form.html": &fstest.MapFile{
		Data: []byte(`{{define "content"}}form{{if .Data.Banner}} banner={{.Data.Banner}}{{end}}{{range $k, $v := .Data.Errors}} err:{{$k}}={{$v}}{{end}}{{range $k, $v := .Data.FormValues}} val:{{$k}}={{$v}}{{end}}{{end}}`),
	},
}

// testEnv bundles the pieces a handler test needs.
type testEnv struct {
	backend  *fakeBackend
	users    *query.Users
	renderer *render.Renderer
	sm       *scs.SessionManager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	sm := scs.New()

	renderer, err := render.New(render.Config{
		TemplatesFS:    testTemplates,
		SessionManager: sm,
		SiteName:       "jandash",
	})
	if err != nil {
		t.Fatalf("failed to build renderer: %v", err)
	}

	c := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Minute})
	t.Cleanup(func() { _ = c.Close() })

	fb := newFakeBackend()
	return &testEnv{
		backend:  fb,
		users:    query.NewUsers(c, fb, time.Minute),
		renderer: renderer,
		sm:       sm,
	}
}

// serve runs a request through the session middleware and the given handler.
func (e *testEnv) serve(t *testing.T, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	e.sm.LoadAndSave(h).ServeHTTP(rec, req)
	return rec
}
