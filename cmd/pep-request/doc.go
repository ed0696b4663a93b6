// Copyright 2026 The glite-authz PEP Client Authors
// SPDX-License-Identifier: Apache-2.0

// Command pep-request is a companion CLI for the pep-client library:
// "authorize" sends a one-off XACML authorization request built from
// flags, and "hessian dump" inspects a raw Hessian stream for
// debugging against a reference PEPd's byte-exact output.
package main
