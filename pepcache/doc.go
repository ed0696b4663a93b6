// Copyright 2026 The glite-authz PEP Client Authors
// SPDX-License-Identifier: Apache-2.0

// Package pepcache is a short-lived decision cache in front of
// pepclient.Client.Authorize. It never influences byte-level codec
// behavior: it is keyed on the marshaled request bytes, not the
// domain object, so cache correctness follows directly from the
// codec's determinism (the same Request always marshals to the same
// bytes). A nil *Cache means every Authorize call hits the wire.
//
// The in-memory tier evicts by TTL and, optionally, by an
// insertion-ordered entry cap. An optional on-disk tier
// (NewPersistTier) survives process restarts: entries are
// zstd-compressed and age-encrypted before being written, since a
// cached decision carries the Subject's DN and the Resource's
// attributes from the original request.
package pepcache
