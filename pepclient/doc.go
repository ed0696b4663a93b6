// Copyright 2026 The glite-authz PEP Client Authors
// SPDX-License-Identifier: Apache-2.0

// Package pepclient is the HTTP(S) transport for a glite-authz PEP
// daemon: it serializes a [pep.Request] with pep.MarshalRequest, POSTs
// it to one of a configured list of endpoints, and decodes the body
// with pep.UnmarshalResponse.
//
// Client holds an ordered list of endpoint URLs and fails over to the
// next one on a connection-level failure. A decoded error response —
// a daemon that answered but returned Indeterminate — is not a
// failover trigger; only a transport failure (dial error, TLS
// handshake failure, connection reset) advances to the next endpoint.
//
// TLS client-certificate authentication and the optional OCSP check
// of the daemon's leaf certificate are in tls.go.
package pepclient
