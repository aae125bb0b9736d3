// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the domain records shared across the application.
package model

// User is a normalized user record as rendered by the dashboard.
//
// ID is an opaque identifier assigned by the backend document store at
// creation time and never generated or mutated on this side. CreatedAt and
// UpdatedAt are display strings in Brazilian Portuguese long-date form
// ("15 de março de 2024"); the raw timestamps are not retained after
// normalization.
type User struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Profession string `json:"profession"`
	Sex        string `json:"sex"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

// UserPage is one page of the users listing plus the backend's total count.
type UserPage struct {
	Users []User `json:"users"`
	Total int64  `json:"total"`
}
