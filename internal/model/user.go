// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model holds domain constants and value types shared between the
// store, handlers, and renderers.
package model

// User roles.
const (
	// RoleAdmin grants access to every site and every admin surface.
	RoleAdmin = "admin"
	// RoleOwner grants access to content belonging to the user's own site only.
	RoleOwner = "owner"
)
