// Copyright 2026 The glite-authz PEP Client Authors
// SPDX-License-Identifier: Apache-2.0

package hessian

// Serialize encodes node to its Hessian wire bytes. The only error it
// returns is an [EncodeError] of kind EncodeOversize, for a
// string/binary value too large to represent within the memory cap. A
// node with an unrecognized Kind, or a Map whose key and value counts
// differ, panics.
func Serialize(node Node) ([]byte, error) {
	b := NewBuilder()
	if err := b.EncodeNode(node); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}
