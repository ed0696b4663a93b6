// Copyright 2026 The glite-authz PEP Client Authors
// SPDX-License-Identifier: Apache-2.0

package pep

// XACML status code URNs, the values that appear in StatusCode.Code.
const (
	StatusOK                = "urn:oasis:names:tc:xacml:1.0:status:ok"
	StatusMissingAttribute  = "urn:oasis:names:tc:xacml:1.0:status:missing-attribute"
	StatusSyntaxError       = "urn:oasis:names:tc:xacml:1.0:status:syntax-error"
	StatusProcessingError   = "urn:oasis:names:tc:xacml:1.0:status:processing-error"
)

// IsOK reports whether s signals successful evaluation. A nil Status,
// or a nil/absent StatusCode within it, is treated as OK: many
// daemons omit Status entirely on a clean Permit/Deny.
func IsOK(s *Status) bool {
	if s == nil {
		return true
	}
	return s.Code.IsOK()
}

// IsOK reports whether c signals successful evaluation. A nil
// StatusCode is treated as OK.
func (c *StatusCode) IsOK() bool {
	if c == nil {
		return true
	}
	return c.Code == StatusOK
}

// Walk calls fn for c and then, depth-first, every code in its
// Subcode chain.
func (c *StatusCode) Walk(fn func(*StatusCode)) {
	for cur := c; cur != nil; cur = cur.Subcode {
		fn(cur)
	}
}

// Depth returns the number of codes in c's Subcode chain, including c
// itself. A nil StatusCode has depth 0.
func (c *StatusCode) Depth() int {
	n := 0
	c.Walk(func(*StatusCode) { n++ })
	return n
}
