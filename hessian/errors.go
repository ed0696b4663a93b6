// Copyright 2026 The glite-authz PEP Client Authors
// SPDX-License-Identifier: Apache-2.0

package hessian

import "fmt"

// DecodeErrorKind taxonomizes why deserialization failed. Package pep
// reuses these kinds (rather than defining its own) when a decode
// failure originates at the byte or node layer but is discovered
// while walking the domain mapping, so a caller's errors.As check on
// [DecodeError] works regardless of which layer raised it.
type DecodeErrorKind int

const (
	// Truncated means the cursor ran off the end of the input mid-node.
	Truncated DecodeErrorKind = iota
	// UnknownTag means a node's leading byte is not a recognized tag.
	UnknownTag
	// BadUTF8 means a string chunk failed UTF-8 or UTF-16 code-unit validation.
	BadUTF8
	// BadRef means a Ref index is outside the current reference table.
	BadRef
	// ShapeMismatch means a typed slot received the wrong node variant,
	// a Map had an unexpected class name, or a Map had an odd number
	// of child nodes.
	ShapeMismatch
	// MissingRequired means a required domain field was absent or Null.
	MissingRequired
	// EnumOutOfRange means an integer did not decode to a valid enum variant.
	EnumOutOfRange
	// DepthExceeded means recursive nesting (e.g. a StatusCode chain)
	// exceeded the decoder's cap.
	DepthExceeded
	// Oversize means a stream's cumulative reassembled string or
	// binary content exceeded the decoder's memory cap.
	Oversize
)

func (k DecodeErrorKind) String() string {
	switch k {
	case Truncated:
		return "truncated"
	case UnknownTag:
		return "unknown tag"
	case BadUTF8:
		return "bad utf-8"
	case BadRef:
		return "bad ref"
	case ShapeMismatch:
		return "shape mismatch"
	case MissingRequired:
		return "missing required field"
	case EnumOutOfRange:
		return "enum out of range"
	case DepthExceeded:
		return "depth exceeded"
	case Oversize:
		return "oversize"
	default:
		return fmt.Sprintf("DecodeErrorKind(%d)", int(k))
	}
}

// DecodeError is returned by [Deserialize] and by package pep's
// unmarshal operations. Offset is the byte offset in the input at
// which the failure was detected; it is -1 when the error originates
// above the byte layer (a domain-mapping shape or required-field
// check). Path, when non-empty, is a field path like
// "Request.subjects[2].attributes[0].id" set by package pep when it
// re-raises a byte-layer error with domain context.
type DecodeError struct {
	Offset int
	Kind   DecodeErrorKind
	Path   string
	Detail string
}

func (e *DecodeError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("hessian: decode error at %s: %s: %s", e.Path, e.Kind, e.Detail)
	}
	if e.Offset >= 0 {
		return fmt.Sprintf("hessian: decode error at offset %d: %s: %s", e.Offset, e.Kind, e.Detail)
	}
	return fmt.Sprintf("hessian: decode error: %s: %s", e.Kind, e.Detail)
}

// WithPath returns a copy of e with Path set, for a caller one layer
// up that knows the field the error occurred in but not the byte
// offset (or wants to keep both).
func (e *DecodeError) WithPath(path string) *DecodeError {
	copied := *e
	copied.Path = path
	return &copied
}

// EncodeErrorKind taxonomizes why serialization failed.
type EncodeErrorKind int

const (
	// EncodeMissingRequired means the caller presented a graph with a
	// required field unset.
	EncodeMissingRequired EncodeErrorKind = iota
	// EncodeOversize means a string or binary value's encoded size
	// exceeds the stream-size cap once chunked.
	EncodeOversize
)

func (k EncodeErrorKind) String() string {
	switch k {
	case EncodeMissingRequired:
		return "missing required field"
	case EncodeOversize:
		return "oversize"
	default:
		return fmt.Sprintf("EncodeErrorKind(%d)", int(k))
	}
}

// EncodeError is returned by [Serialize] and by package pep's
// marshal operations. Path, when non-empty, identifies the offending
// field (e.g. "Request.subjects[2].attributes[0].id").
type EncodeError struct {
	Kind   EncodeErrorKind
	Path   string
	Detail string
}

func (e *EncodeError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("hessian: encode error at %s: %s: %s", e.Path, e.Kind, e.Detail)
	}
	return fmt.Sprintf("hessian: encode error: %s: %s", e.Kind, e.Detail)
}

// WithPath returns a copy of e with Path set.
func (e *EncodeError) WithPath(path string) *EncodeError {
	copied := *e
	copied.Path = path
	return &copied
}
