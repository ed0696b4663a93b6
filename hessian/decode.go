// Copyright 2026 The glite-authz PEP Client Authors
// SPDX-License-Identifier: Apache-2.0

package hessian

// Deserialize decodes the single Hessian node (and, for a List or
// Map, its entire subtree) at the start of data. Trailing bytes
// after the node are not an error; a caller reading a stream that
// contains exactly one top-level value can ignore the remainder, and
// a caller framing multiple values (none of this package's callers
// do) can track the consumed length itself by decoding with a
// [Cursor] directly and checking [Cursor.Offset].
func Deserialize(data []byte) (Node, error) {
	c := NewCursor(data)
	return c.DecodeNode()
}
