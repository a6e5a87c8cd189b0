// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "Xk9#mP2$vL8@nQ5!wR3^tY7&uI1*oE4z"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AMP_SESSION_SECRET", testSecret)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "./data/amp.db", cfg.DBPath)
	assert.Equal(t, "localhost", cfg.ServerHost)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "demo-gaming", cfg.DefaultSite)
	assert.True(t, cfg.AutoLink)
	assert.False(t, cfg.DoSeed)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "localhost:8080", cfg.ServerAddr())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("AMP_SESSION_SECRET", testSecret)
	t.Setenv("AMP_ENV", "production")
	t.Setenv("AMP_SERVER_HOST", "0.0.0.0")
	t.Setenv("AMP_SERVER_PORT", "9000")
	t.Setenv("AMP_DEFAULT_SITE", "demo-beauty")
	t.Setenv("AMP_AUTO_LINK", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, "0.0.0.0:9000", cfg.ServerAddr())
	assert.Equal(t, "demo-beauty", cfg.DefaultSite)
	assert.False(t, cfg.AutoLink)
}

func TestLoadRejectsShortSecret(t *testing.T) {
	t.Setenv("AMP_SESSION_SECRET", "too-short")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AMP_SESSION_SECRET")
}

func TestLoadRejectsKnownWeakSecret(t *testing.T) {
	t.Setenv("AMP_SESSION_SECRET", "change-me-to-32-byte-secret-key!")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "known default")
}

func TestHasMinimumEntropy(t *testing.T) {
	assert.True(t, hasMinimumEntropy(testSecret))
	assert.True(t, hasMinimumEntropy("abcDEF123"))
	assert.False(t, hasMinimumEntropy("abcdefghijklmnopqrstuvwxyzabcdef"))
	assert.False(t, hasMinimumEntropy("abc123abc123abc123abc123abc12345"))
}
