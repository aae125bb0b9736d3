// Package session configures the scs session manager and reads the
// externally-issued identity out of it.
//
// jandash never authenticates anyone itself: the identity provider
// integration populates the session, and this package only reads the
// result on each request.
package session

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
)

// Session keys written by the identity provider integration.
const (
	KeyEmail = "user_email"
	KeyName  = "user_name"
)

// Identity is the minimum the identity provider guarantees in a session.
type Identity struct {
	Email string
	Name  string
}

// New creates a session manager backed by the SQLite sessions table.
func New(db *sql.DB, isDev bool) *scs.SessionManager {
	sm := scs.New()

	sm.Store = sqlite3store.New(db)

	sm.Lifetime = 24 * time.Hour
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = !isDev // Secure cookies in production only

	return sm
}

// IdentityFrom reads the signed-in identity from the session.
// The second return is false when no session identity is present,
// which gates every protected page.
func IdentityFrom(ctx context.Context, sm *scs.SessionManager) (Identity, bool) {
	email := sm.GetString(ctx, KeyEmail)
	if email == "" {
		return Identity{}, false
	}
	return Identity{
		Email: email,
		Name:  sm.GetString(ctx, KeyName),
	}, true
}

// PutIdentity stores an identity into the session. Used by the identity
// provider integration and by the development-only login route.
func PutIdentity(ctx context.Context, sm *scs.SessionManager, id Identity) {
	sm.Put(ctx, KeyEmail, id.Email)
	sm.Put(ctx, KeyName, id.Name)
}
