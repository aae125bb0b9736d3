// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package util provides small text helpers shared by handlers and the
// backend client.
package util

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	titleCaser = cases.Title(language.BrazilianPortuguese)
	sanitizer  = bluemonday.StrictPolicy()
)

// Capitalize returns s with the first letter of each word upper-cased and
// the rest lowered, using Brazilian Portuguese casing rules.
// "ana souza" becomes "Ana Souza".
func Capitalize(s string) string {
	return titleCaser.String(strings.TrimSpace(s))
}

// NormalizeEmail lowercases and trims an email address for storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Sanitize strips any markup from user-supplied text before it is sent to
// the backend or echoed into a form. The policy entity-encodes the text it
// keeps, so the output is unescaped again: the backend stores plain text,
// and a name like "D'Alcântara" must arrive with its apostrophe, not
// "&#39;".
func Sanitize(s string) string {
	return strings.TrimSpace(html.UnescapeString(sanitizer.Sanitize(s)))
}
