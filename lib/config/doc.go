// Copyright 2026 The Nassif Clinic Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for the triage
// dashboard.
//
// Configuration is loaded from a single YAML file named by:
//   - the TRIAGE_CONFIG environment variable, or
//   - the --config flag passed to the command
//
// When neither is present, built-in development defaults apply (local
// service on port 8000). The config file may contain
// environment-specific sections (development, staging, production)
// that override base values when the environment matches.
package config
