// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package version exposes build-time version information.
package version

import "fmt"

// Info holds version information injected at build time.
type Info struct {
	Version   string
	GitCommit string
	BuildTime string
}

// String returns a human-readable version string.
func (i *Info) String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", i.Version, i.GitCommit, i.BuildTime)
}
