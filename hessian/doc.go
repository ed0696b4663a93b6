// Copyright 2026 The glite-authz PEP Client Authors
// SPDX-License-Identifier: Apache-2.0

// Package hessian implements the byte and node layers of a Hessian
// 1.0 object-stream subset: a self-describing binary grammar with
// big-endian scalars, chunked strings and binaries, typed lists and
// maps, and a per-stream back-reference table.
//
// [Node] is a tagged tree over eleven variants (Null, Bool, Int32,
// Int64, Double, Date, String, Binary, List, Map, Ref). [Serialize]
// and [Deserialize] convert between a Node and its wire bytes.
//
// The decoder is strict: an unrecognized tag, a truncated stream, a
// ref index outside the current table, or a malformed UTF-8 string
// chunk all fail with a [DecodeError] carrying the byte offset and a
// reason. The encoder returns an [EncodeError] only for a string or
// binary value too large for the stream-size cap; a Node with an
// unrecognized Kind, or a Map whose key and value counts differ, makes
// it panic instead of returning an error.
//
// The decoder maintains the per-stream reference table required to
// accept another implementation's back-references (List and Map
// nodes register themselves in the table before their children are
// read, so self- and forward-references resolve to the same node
// identity). The encoder does not emit references — nothing built on
// top of this package constructs aliased or cyclic node graphs, so
// every container is written out in full each time it appears.
package hessian
