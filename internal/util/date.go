// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"fmt"
	"time"
)

// ptBRMonths maps time.Month to Brazilian Portuguese month names.
var ptBRMonths = [...]string{
	time.January:   "janeiro",
	time.February:  "fevereiro",
	time.March:     "março",
	time.April:     "abril",
	time.May:       "maio",
	time.June:      "junho",
	time.July:      "julho",
	time.August:    "agosto",
	time.September: "setembro",
	time.October:   "outubro",
	time.November:  "novembro",
	time.December:  "dezembro",
}

// FormatLongDatePTBR renders t as a Brazilian Portuguese long date,
// e.g. "15 de março de 2024".
func FormatLongDatePTBR(t time.Time) string {
	return fmt.Sprintf("%02d de %s de %d", t.Day(), ptBRMonths[t.Month()], t.Year())
}

// FormatLongDateString parses an RFC 3339 timestamp and renders it as a
// long date. Unparseable or empty input yields an empty string so that a
// malformed backend record degrades to a blank field instead of an error.
func FormatLongDateString(raw string) string {
	if raw == "" {
		return ""
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return ""
	}
	return FormatLongDatePTBR(t)
}
