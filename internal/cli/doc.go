// Copyright 2026 The glite-authz PEP Client Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli is a small Command/Flags/Run dispatch tree for
// pep-request, adapted from a larger CLI framework down to the scope a
// two-command tool needs: nested subcommands, pflag-based flag
// parsing, --help handling, and typo suggestions for an unknown
// command or flag.
//
// Unlike the framework this is adapted from, every FlagSet here is a
// *pflag.FlagSet end to end — Command.Flags, the dispatch in Execute,
// and the suggestion lookup in suggestFlag all agree on the same flag
// package, so a flag typo is actually caught and suggested rather than
// silently mismatching two different flag types.
package cli
