// Copyright 2026 The glite-authz PEP Client Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads pep-request's configuration from a single YAML
// file.
//
// The file is located by --config or the PEP_CLIENT_CONFIG
// environment variable, never by searching well-known paths. There is
// no per-deployment-environment override section like Bureau's config
// carries: a PEP client talks to whatever endpoints are in the file,
// and there is no "development vs. production" concept for it to
// switch on.
package config
