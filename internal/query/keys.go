// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package query is the typed read-through layer between page handlers and
// the backend. Reads go through the keyed cache with per-key coalescing;
// the one mutation (create) invalidates the whole users prefix.
package query

import "fmt"

// UsersPrefix groups every cache key the create mutation must invalidate.
const UsersPrefix = "users:"

// UserKey is the cache key for a single user by ID.
func UserKey(id string) string {
	return UsersPrefix + "id:" + id
}

// UsersPageKey is the cache key for one page of the users listing.
func UsersPageKey(page, perPage int) string {
	return fmt.Sprintf("%spage:%d:%d", UsersPrefix, page, perPage)
}

// RealUserKey is the cache key for the signed-in operator's own record.
// It lives outside the users prefix: creating a user does not change the
// operator's identity card.
func RealUserKey(email string) string {
	return "realuser:" + email
}
